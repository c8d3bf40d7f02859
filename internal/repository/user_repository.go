package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stayloop/service-booking/internal/domain/user"
	"github.com/stayloop/service-booking/pkg/apperror"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ExternalID string    `gorm:"uniqueIndex;not null;size:100"`
	Name       string    `gorm:"size:200"`
	Email      string    `gorm:"uniqueIndex;not null;size:320"`
	Avatar     string    `gorm:"size:500"`
	Bio        string    `gorm:"size:2000"`
	Location   string    `gorm:"size:200"`
	Tokens     int64     `gorm:"not null;default:0;check:tokens >= 0"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (UserModel) TableName() string {
	return "users"
}

// TokenCreditModel records settled token purchases so retried settlement
// events credit at most once.
type TokenCreditModel struct {
	PaymentID   string    `gorm:"primaryKey;size:100"`
	UserID      uuid.UUID `gorm:"type:uuid;index;not null"`
	Amount      int64     `gorm:"not null"`
	ProcessedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (TokenCreditModel) TableName() string {
	return "token_credits"
}

// GormUserRepository is the GORM-based implementation of UserRepository.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID retrieves a user by their unique identifier.
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("User", id.String())
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return toDomainUser(&model), nil
}

// FindByExternalID retrieves a user by their identity-provider subject.
func (r *GormUserRepository) FindByExternalID(ctx context.Context, externalID string) (*user.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("User", externalID)
		}
		return nil, fmt.Errorf("failed to find user by external ID: %w", err)
	}
	return toDomainUser(&model), nil
}

// Save persists a new user. A duplicate external ID or email surfaces as a
// conflict so callers can fall back to the existing record.
func (r *GormUserRepository) Save(ctx context.Context, u *user.User) error {
	if err := r.db.WithContext(ctx).Create(toUserModel(u)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.NewConflictError("user already exists")
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// Update persists profile changes. The token balance is deliberately not
// written here; only Credit and the ledger mutate it.
func (r *GormUserRepository) Update(ctx context.Context, u *user.User) error {
	model := toUserModel(u)
	result := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":       model.Name,
			"email":      model.Email,
			"avatar":     model.Avatar,
			"bio":        model.Bio,
			"location":   model.Location,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("User", model.ID.String())
	}
	return nil
}

// Delete removes a user record (identity-provider deletion sync).
func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&UserModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("User", id.String())
	}
	return nil
}

// Credit atomically increments the user's token balance and returns the new
// balance. The payment ID is recorded in the same transaction; a payment seen
// before returns the current balance without crediting again.
func (r *GormUserRepository) Credit(ctx context.Context, id uuid.UUID, amount int64, paymentID string) (int64, error) {
	if amount <= 0 {
		return 0, apperror.NewValidationError("credit amount must be positive")
	}

	var newBalance int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model UserModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NewNotFoundError("User", id.String())
			}
			return fmt.Errorf("failed to lock user row: %w", err)
		}

		var seen int64
		if err := tx.Model(&TokenCreditModel{}).Where("payment_id = ?", paymentID).Count(&seen).Error; err != nil {
			return fmt.Errorf("failed to check payment dedup: %w", err)
		}
		if seen > 0 {
			newBalance = model.Tokens
			return nil
		}

		if err := tx.Model(&UserModel{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"tokens":     gorm.Expr("tokens + ?", amount),
				"updated_at": time.Now().UTC(),
			}).Error; err != nil {
			return fmt.Errorf("failed to credit tokens: %w", err)
		}

		record := TokenCreditModel{
			PaymentID:   paymentID,
			UserID:      id,
			Amount:      amount,
			ProcessedAt: time.Now().UTC(),
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to record token credit: %w", err)
		}

		newBalance = model.Tokens + amount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// --- Conversion helpers ---

func toUserModel(u *user.User) *UserModel {
	return &UserModel{
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

func toDomainUser(m *UserModel) *user.User {
	return user.ReconstructUser(
		m.ID,
		m.ExternalID,
		m.Name,
		m.Email,
		m.Avatar,
		m.Bio,
		m.Location,
		m.Tokens,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
