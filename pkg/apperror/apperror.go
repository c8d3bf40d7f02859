package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so transport layers can map it to a
// response without inspecting message text.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindForbidden          Kind = "forbidden"
	KindUnauthorized       Kind = "unauthorized"
	KindInvalidState       Kind = "invalid_state"
	KindInsufficientTokens Kind = "insufficient_tokens"
	KindInternal           Kind = "internal"
)

// Error is the structured error type returned across service boundaries.
// Business-rule failures carry a Kind the caller can branch on plus optional
// machine-readable details (e.g. the current balance on an insufficient-tokens
// failure).
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

// NewValidationError reports caller-correctable bad input.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewNotFoundError reports an absent resource.
func NewNotFoundError(resource, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
		Details: map[string]any{"resource": resource, "id": id},
	}
}

// NewConflictError reports a business-state conflict (overlapping range,
// concurrent modification).
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewForbiddenError reports an authenticated caller lacking the required
// relation to the resource.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewUnauthorizedError reports a missing or invalid caller identity.
func NewUnauthorizedError(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// NewInvalidStateError reports an illegal lifecycle transition.
func NewInvalidStateError(from, to string) *Error {
	return &Error{
		Kind:    KindInvalidState,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
		Details: map[string]any{"from": from, "to": to},
	}
}

// NewInsufficientTokensError reports a recoverable balance shortfall. The
// details carry the current balance and required amount so the caller can
// remediate (top up) and retry the same request.
func NewInsufficientTokensError(balance, required int64) *Error {
	return &Error{
		Kind:    KindInsufficientTokens,
		Message: fmt.Sprintf("insufficient tokens: balance %d, required %d", balance, required),
		Details: map[string]any{"balance": balance, "required": required},
	}
}

// KindOf returns the Kind of err, or KindInternal for unrecognized errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
