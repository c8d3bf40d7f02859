package user

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the persistence contract for user records.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByExternalID(ctx context.Context, externalID string) (*User, error)
	Save(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Credit atomically increments the user's token balance and returns the
	// new balance. The paymentID deduplicates retried settlements: a payment
	// already credited returns the current balance without a second credit.
	Credit(ctx context.Context, id uuid.UUID, amount int64, paymentID string) (int64, error)
}
