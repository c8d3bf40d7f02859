package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	userDomain "github.com/stayloop/service-booking/internal/domain/user"
	"github.com/stayloop/service-booking/internal/events"
	"github.com/stayloop/service-booking/pkg/apperror"
	"github.com/stayloop/service-booking/pkg/kafka"
)

// IdentityProfile carries the profile fields synced from the identity
// provider's webhook payload.
type IdentityProfile struct {
	ExternalID string
	Name       string
	Email      string
	Avatar     string
}

// PurchaseTokensRequest is the direct HTTP entry point for a settled token
// purchase. payment_id deduplicates retries.
type PurchaseTokensRequest struct {
	PaymentID string `json:"payment_id" binding:"required"`
	Tokens    int64  `json:"tokens" binding:"required"`
}

// UserDTO is the response representation of a user.
type UserDTO struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Avatar     string    `json:"avatar,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	Location   string    `json:"location,omitempty"`
	Tokens     int64     `json:"tokens"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BalanceDTO is returned after a token credit.
type BalanceDTO struct {
	UserID  uuid.UUID `json:"user_id"`
	Balance int64     `json:"balance"`
}

// UserService handles user provisioning, identity sync and the token ledger's
// credit side.
type UserService struct {
	users    userDomain.UserRepository
	producer EventPublisher
	logger   *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users userDomain.UserRepository, producer EventPublisher, logger *zap.Logger) *UserService {
	return &UserService{users: users, producer: producer, logger: logger}
}

// EnsureUser provisions a local user record for an authenticated identity the
// first time it is seen. The call is idempotent: an existing record is
// returned unchanged. New users start with a zero token balance.
func (s *UserService) EnsureUser(ctx context.Context, profile IdentityProfile) (*UserDTO, error) {
	existing, err := s.users.FindByExternalID(ctx, profile.ExternalID)
	if err == nil {
		result := toUserDTO(existing)
		return &result, nil
	}
	if !apperror.IsKind(err, apperror.KindNotFound) {
		return nil, err
	}

	usr, err := userDomain.NewUser(profile.ExternalID, profile.Name, profile.Email, 0)
	if err != nil {
		return nil, err
	}
	if profile.Avatar != "" {
		usr.UpdateProfile(profile.Name, profile.Email, profile.Avatar, usr.Bio(), usr.Location())
	}
	if err := s.users.Save(ctx, usr); err != nil {
		// Concurrent first requests for the same identity race on the unique
		// external_id index; the loser re-reads the winner's record.
		if apperror.IsKind(err, apperror.KindConflict) {
			existing, findErr := s.users.FindByExternalID(ctx, profile.ExternalID)
			if findErr != nil {
				return nil, findErr
			}
			result := toUserDTO(existing)
			return &result, nil
		}
		return nil, err
	}

	s.logger.Info("provisioned user",
		zap.String("user_id", usr.ID().String()),
		zap.String("external_id", usr.ExternalID()))

	result := toUserDTO(usr)
	return &result, nil
}

// SyncFromIdentityProvider upserts a user record from an identity provider
// webhook (user.created or user.updated).
func (s *UserService) SyncFromIdentityProvider(ctx context.Context, profile IdentityProfile) (*UserDTO, error) {
	existing, err := s.users.FindByExternalID(ctx, profile.ExternalID)
	if err != nil {
		if !apperror.IsKind(err, apperror.KindNotFound) {
			return nil, err
		}
		return s.EnsureUser(ctx, profile)
	}

	existing.UpdateProfile(profile.Name, profile.Email, profile.Avatar, existing.Bio(), existing.Location())
	if err := s.users.Update(ctx, existing); err != nil {
		return nil, err
	}

	result := toUserDTO(existing)
	return &result, nil
}

// RemoveByExternalID deletes the local record for an identity deleted at the
// provider. Unknown identities are ignored.
func (s *UserService) RemoveByExternalID(ctx context.Context, externalID string) error {
	existing, err := s.users.FindByExternalID(ctx, externalID)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil
		}
		return err
	}
	return s.users.Delete(ctx, existing.ID())
}

// GetMe returns the authenticated user's profile and token balance.
func (s *UserService) GetMe(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	usr, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := toUserDTO(usr)
	return &result, nil
}

// PurchaseTokens credits a settled token purchase to the user's balance and
// publishes the settlement event. Replays of the same payment_id are no-ops
// that return the current balance.
func (s *UserService) PurchaseTokens(ctx context.Context, userID uuid.UUID, req PurchaseTokensRequest) (*BalanceDTO, error) {
	if userID == uuid.Nil {
		return nil, apperror.NewUnauthorizedError("authentication required")
	}
	if req.Tokens <= 0 {
		return nil, apperror.NewValidationError("tokens must be positive")
	}

	balance, err := s.users.Credit(ctx, userID, req.Tokens, req.PaymentID)
	if err != nil {
		return nil, err
	}

	s.publishTokensPurchased(ctx, events.TokensPurchasedEvent{
		PaymentID:  req.PaymentID,
		UserID:     userID,
		Tokens:     req.Tokens,
		OccurredAt: time.Now().UTC(),
	})

	return &BalanceDTO{UserID: userID, Balance: balance}, nil
}

// CreditTokens applies a settled purchase consumed from the payment event
// stream. It shares the payment_id idempotency of PurchaseTokens, so an event
// replaying an HTTP-settled purchase (or vice versa) credits only once.
func (s *UserService) CreditTokens(ctx context.Context, userID uuid.UUID, tokens int64, paymentID string) (int64, error) {
	if tokens <= 0 {
		return 0, apperror.NewValidationError("tokens must be positive")
	}
	return s.users.Credit(ctx, userID, tokens, paymentID)
}

func (s *UserService) publishTokensPurchased(ctx context.Context, payload events.TokensPurchasedEvent) {
	if s.producer == nil {
		return
	}
	cloudEvent, err := kafka.NewCloudEvent(eventSource, events.PaymentTokensPurchased, payload)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", events.PaymentTokensPurchased),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicPaymentEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicPaymentEvents),
			zap.String("event_type", events.PaymentTokensPurchased),
			zap.Error(err),
		)
	}
}

func toUserDTO(u *userDomain.User) UserDTO {
	return UserDTO{
		ID:         u.ID(),
		ExternalID: u.ExternalID(),
		Name:       u.Name(),
		Email:      u.Email(),
		Avatar:     u.Avatar(),
		Bio:        u.Bio(),
		Location:   u.Location(),
		Tokens:     u.Tokens(),
		CreatedAt:  u.CreatedAt(),
		UpdatedAt:  u.UpdatedAt(),
	}
}
