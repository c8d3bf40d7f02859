package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stayloop/service-booking/internal/domain/availability"
	"github.com/stayloop/service-booking/internal/domain/daterange"
	"github.com/stayloop/service-booking/pkg/apperror"
)

// AvailabilityPeriodModel is the GORM model for the availability_periods table.
type AvailabilityPeriodModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ListingID uuid.UUID `gorm:"type:uuid;index;not null"`
	StartDate time.Time `gorm:"type:date;not null"`
	EndDate   time.Time `gorm:"type:date;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (AvailabilityPeriodModel) TableName() string {
	return "availability_periods"
}

// GormPeriodRepository is the GORM-based implementation of PeriodRepository.
type GormPeriodRepository struct {
	db *gorm.DB
}

// NewGormPeriodRepository creates a new GormPeriodRepository.
func NewGormPeriodRepository(db *gorm.DB) *GormPeriodRepository {
	return &GormPeriodRepository{db: db}
}

// FindByID retrieves a period by its unique identifier.
func (r *GormPeriodRepository) FindByID(ctx context.Context, id uuid.UUID) (*availability.Period, error) {
	var model AvailabilityPeriodModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("AvailabilityPeriod", id.String())
		}
		return nil, fmt.Errorf("failed to find period by ID: %w", err)
	}
	return toDomainPeriod(&model), nil
}

// FindByListingID retrieves all periods for a listing, start date ascending.
func (r *GormPeriodRepository) FindByListingID(ctx context.Context, listingID uuid.UUID) ([]*availability.Period, error) {
	var models []AvailabilityPeriodModel
	if err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("start_date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find periods for listing: %w", err)
	}

	periods := make([]*availability.Period, len(models))
	for i, m := range models {
		periods[i] = toDomainPeriod(&m)
	}
	return periods, nil
}

// Save persists a new period after verifying, under the listing row lock,
// that it overlaps none of the listing's existing periods. Overlap between
// inclusive ranges: existing.start <= new.end AND existing.end >= new.start.
// Locking the listing row rather than the conflicting period rows matters:
// two concurrent inserts whose new ranges overlap only each other would
// otherwise both find nothing to lock and both pass the check.
func (r *GormPeriodRepository) Save(ctx context.Context, period *availability.Period) error {
	model := toPeriodModel(period)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockListingRow(tx, model.ListingID); err != nil {
			return err
		}

		var conflicting AvailabilityPeriodModel
		err := tx.Model(&AvailabilityPeriodModel{}).
			Where("listing_id = ?", model.ListingID).
			Where("start_date <= ? AND end_date >= ?", model.EndDate, model.StartDate).
			Take(&conflicting).Error

		if err == nil {
			appErr := apperror.NewConflictError("date range overlaps an existing availability period")
			appErr.Details = map[string]any{
				"conflicting_period_id": conflicting.ID.String(),
				"conflicting_start":     conflicting.StartDate.Format(time.DateOnly),
				"conflicting_end":       conflicting.EndDate.Format(time.DateOnly),
			}
			return appErr
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check period overlap: %w", err)
		}

		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to save period: %w", err)
		}
		return nil
	})
}

// Delete removes a period. The active-booking guard runs inside the same
// transaction under the listing row lock, so a reservation committing
// concurrently cannot leave a confirmed booking without a backing period.
func (r *GormPeriodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model AvailabilityPeriodModel
		if err := tx.Where("id = ?", id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NewNotFoundError("AvailabilityPeriod", id.String())
			}
			return fmt.Errorf("failed to load period: %w", err)
		}

		// Serializes against Save and the reservation ledger. Any caller-side
		// guard may be stale by the time we get here.
		if err := lockListingRow(tx, model.ListingID); err != nil {
			return err
		}

		period := toDomainPeriod(&model)
		active, err := loadActiveBookingsTx(tx, model.ListingID)
		if err != nil {
			return err
		}
		for _, b := range active {
			if period.CoversStay(b.Stay()) {
				appErr := apperror.NewConflictError("period has active bookings and cannot be removed")
				appErr.Details = map[string]any{"blocking_booking_id": b.ID().String()}
				return appErr
			}
		}

		result := tx.Delete(&AvailabilityPeriodModel{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete period: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperror.NewNotFoundError("AvailabilityPeriod", id.String())
		}
		return nil
	})
}

// lockListingRow takes the listing's FOR UPDATE lock, the same lock the
// reservation ledger holds while checking and writing.
func lockListingRow(tx *gorm.DB, listingID uuid.UUID) error {
	var listingRow ListingModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", listingID).First(&listingRow).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NewNotFoundError("Listing", listingID.String())
		}
		return fmt.Errorf("failed to lock listing row: %w", err)
	}
	return nil
}

// --- Conversion helpers ---

func toPeriodModel(p *availability.Period) *AvailabilityPeriodModel {
	return &AvailabilityPeriodModel{
		ID:        p.ID(),
		ListingID: p.ListingID(),
		StartDate: p.Dates().Start,
		EndDate:   p.Dates().End,
		CreatedAt: p.CreatedAt(),
	}
}

func toDomainPeriod(m *AvailabilityPeriodModel) *availability.Period {
	return availability.ReconstructPeriod(m.ID, m.ListingID,
		daterange.Truncate(m.StartDate), daterange.Truncate(m.EndDate), m.CreatedAt)
}
