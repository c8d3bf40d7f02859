package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/stayloop/service-booking/pkg/apperror"
)

// User is a marketplace member. The same record acts as guest and host; the
// token balance is the platform's internal unit of account and never goes
// negative.
type User struct {
	id         uuid.UUID
	externalID string
	name       string
	email      string
	avatar     string
	bio        string
	location   string
	tokens     int64
	createdAt  time.Time
	updatedAt  time.Time
}

// NewUser creates a User for a first-seen identity. externalID is the
// identity provider's subject and must be unique.
func NewUser(externalID, name, email string, startingTokens int64) (*User, error) {
	if externalID == "" {
		return nil, apperror.NewValidationError("external ID is required")
	}
	if email == "" {
		return nil, apperror.NewValidationError("email is required")
	}
	if startingTokens < 0 {
		return nil, apperror.NewValidationError("starting tokens must not be negative")
	}

	now := time.Now().UTC()
	return &User{
		id:         uuid.New(),
		externalID: externalID,
		name:       name,
		email:      email,
		tokens:     startingTokens,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructUser rebuilds a User from persistence data (no validation).
func ReconstructUser(id uuid.UUID, externalID, name, email, avatar, bio, location string, tokens int64, createdAt, updatedAt time.Time) *User {
	return &User{
		id:         id,
		externalID: externalID,
		name:       name,
		email:      email,
		avatar:     avatar,
		bio:        bio,
		location:   location,
		tokens:     tokens,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// ID returns the user's unique identifier.
func (u *User) ID() uuid.UUID { return u.id }

// ExternalID returns the identity provider's subject for this user.
func (u *User) ExternalID() string { return u.externalID }

// Name returns the display name.
func (u *User) Name() string { return u.name }

// Email returns the email address.
func (u *User) Email() string { return u.email }

// Avatar returns the avatar URL.
func (u *User) Avatar() string { return u.avatar }

// Bio returns the profile bio.
func (u *User) Bio() string { return u.bio }

// Location returns the profile location.
func (u *User) Location() string { return u.location }

// Tokens returns the current token balance.
func (u *User) Tokens() int64 { return u.tokens }

// CreatedAt returns the creation timestamp.
func (u *User) CreatedAt() time.Time { return u.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// UpdateProfile replaces the profile fields synced from the identity provider
// or edited by the user.
func (u *User) UpdateProfile(name, email, avatar, bio, location string) {
	u.name = name
	u.email = email
	u.avatar = avatar
	u.bio = bio
	u.location = location
	u.updatedAt = time.Now().UTC()
}

// Credit increases the token balance by amount.
func (u *User) Credit(amount int64) error {
	if amount <= 0 {
		return apperror.NewValidationError("credit amount must be positive")
	}
	u.tokens += amount
	u.updatedAt = time.Now().UTC()
	return nil
}

// Debit decreases the token balance by amount, failing with the current
// balance and required amount if the balance is too low.
func (u *User) Debit(amount int64) error {
	if amount <= 0 {
		return apperror.NewValidationError("debit amount must be positive")
	}
	if u.tokens < amount {
		return apperror.NewInsufficientTokensError(u.tokens, amount)
	}
	u.tokens -= amount
	u.updatedAt = time.Now().UTC()
	return nil
}
