package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stayloop/service-booking/pkg/apperror"
)

// envelope is the standard response body shape.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *errorBody  `json:"error,omitempty"`
	Meta    *metaBody   `json:"meta,omitempty"`
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type metaBody struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Success writes a 200 response with the given data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// Created writes a 201 response with the given data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with items and pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, envelope{
		Success: true,
		Data:    items,
		Meta:    &metaBody{Total: total, Page: page, Limit: limit},
	})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope{
		Success: false,
		Error:   &errorBody{Code: string(apperror.KindValidation), Message: message},
	})
}

// Error maps an application error to its HTTP status. Unrecognized errors are
// collapsed to a generic 500 so internals never leak to callers.
func Error(c *gin.Context, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, envelope{
			Success: false,
			Error:   &errorBody{Code: string(apperror.KindInternal), Message: "internal server error"},
		})
		return
	}

	c.JSON(statusFor(appErr.Kind), envelope{
		Success: false,
		Error: &errorBody{
			Code:    string(appErr.Kind),
			Message: appErr.Message,
			Details: appErr.Details,
		},
	})
}

func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindInsufficientTokens:
		return http.StatusPaymentRequired
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict, apperror.KindInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
