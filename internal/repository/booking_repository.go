package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	"github.com/stayloop/service-booking/internal/domain/daterange"
	"github.com/stayloop/service-booking/pkg/apperror"
)

// BookingModel is the GORM model for the bookings table. StartDate is the
// check-in date; EndDate is the checkout date, exclusive of the last occupied
// night.
type BookingModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ListingID  uuid.UUID `gorm:"type:uuid;index;not null"`
	GuestID    uuid.UUID `gorm:"type:uuid;index;not null"`
	StartDate  time.Time `gorm:"type:date;not null"`
	EndDate    time.Time `gorm:"type:date;not null"`
	TotalPrice int64     `gorm:"not null"`
	Status     string    `gorm:"not null;size:20;index"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindActiveByListingID retrieves all non-cancelled bookings for a listing,
// check-in ascending.
func (r *GormBookingRepository) FindActiveByListingID(ctx context.Context, listingID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("listing_id = ? AND status <> ?", listingID, string(bookingDomain.StatusCancelled)).
		Order("start_date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find active bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FindByGuestID retrieves bookings made by a guest with pagination.
func (r *GormBookingRepository) FindByGuestID(ctx context.Context, guestID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPaginated(ctx, "guest_id = ?", guestID, page, limit)
}

// FindByListingID retrieves bookings for a listing with pagination.
func (r *GormBookingRepository) FindByListingID(ctx context.Context, listingID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPaginated(ctx, "listing_id = ?", listingID, page, limit)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Update persists a status change.
func (r *GormBookingRepository) Update(ctx context.Context, b *bookingDomain.Booking) error {
	model := toBookingModel(b)
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("Booking", model.ID.String())
	}
	return nil
}

func (r *GormBookingRepository) findPaginated(ctx context.Context, cond string, arg uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where(cond, arg).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where(cond, arg).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// --- Conversion helpers ---

func toBookingModel(b *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:         b.ID(),
		ListingID:  b.ListingID(),
		GuestID:    b.GuestID(),
		StartDate:  b.Stay().Start,
		EndDate:    b.Stay().End,
		TotalPrice: b.TotalPrice(),
		Status:     string(b.Status()),
		CreatedAt:  b.CreatedAt(),
		UpdatedAt:  b.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	stay := daterange.DateRange{
		Start: daterange.Truncate(m.StartDate),
		End:   daterange.Truncate(m.EndDate),
	}
	return bookingDomain.ReconstructBooking(
		m.ID,
		m.ListingID,
		m.GuestID,
		stay,
		m.TotalPrice,
		status,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		b, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = b
	}
	return bookings, nil
}
