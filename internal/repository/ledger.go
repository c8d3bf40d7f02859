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
	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	"github.com/stayloop/service-booking/pkg/apperror"
)

// GormBookingLedger executes the reserve-and-pay transaction. The conflict
// re-check, balance check, token debit, and booking insert run inside one
// database transaction.
//
// Concurrency: the guest's user row and then the listing row are locked FOR
// UPDATE before any read the decision depends on. The listing lock serializes
// concurrent reservations per listing, so two overlapping stays can never
// both pass the conflict check; the user lock does the same for the balance.
// Lock order is fixed (user, then listing) to keep concurrent reservations
// deadlock-free.
type GormBookingLedger struct {
	db *gorm.DB
}

// NewGormBookingLedger creates a new GormBookingLedger.
func NewGormBookingLedger(db *gorm.DB) *GormBookingLedger {
	return &GormBookingLedger{db: db}
}

// Reserve atomically validates, debits, and books. On any failure the guest's
// balance and the bookings table are left unchanged.
func (l *GormBookingLedger) Reserve(ctx context.Context, cmd bookingDomain.ReserveCommand) (*bookingDomain.Booking, error) {
	var created *bookingDomain.Booking

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the guest row. An absent record means the caller's identity
		// does not map to a user: unauthorized, not not-found.
		var guest UserModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", cmd.GuestID).First(&guest).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NewUnauthorizedError("requesting user not found")
			}
			return fmt.Errorf("failed to lock guest row: %w", err)
		}

		if guest.Tokens < cmd.QuotedTotal {
			return apperror.NewInsufficientTokensError(guest.Tokens, cmd.QuotedTotal)
		}

		// Lock the listing row for the duration of check and write.
		var listingRow ListingModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", cmd.ListingID).First(&listingRow).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NewNotFoundError("Listing", cmd.ListingID.String())
			}
			return fmt.Errorf("failed to lock listing row: %w", err)
		}

		// Recompute the price server-side; the quoted total must match and
		// is what gets debited.
		quote, err := bookingDomain.NewQuote(cmd.Stay, listingRow.PricePerNight)
		if err != nil {
			return err
		}
		if !quote.Matches(cmd.QuotedTotal) {
			return apperror.NewValidationError(
				fmt.Sprintf("quoted total %d does not match current price %d", cmd.QuotedTotal, quote.Total))
		}

		// Re-run the conflict check under the listing lock. An earlier
		// UI-side check may be stale by now.
		periods, err := loadPeriodsTx(tx, cmd.ListingID)
		if err != nil {
			return err
		}
		existing, err := loadActiveBookingsTx(tx, cmd.ListingID)
		if err != nil {
			return err
		}
		if err := bookingDomain.CheckStay(cmd.Stay, periods, existing); err != nil {
			return err
		}

		booking, err := bookingDomain.NewBooking(cmd.ListingID, cmd.GuestID, cmd.Stay, quote.Total)
		if err != nil {
			return err
		}

		// Debit and insert; both succeed or the transaction rolls back.
		debit := tx.Model(&UserModel{}).
			Where("id = ? AND tokens >= ?", cmd.GuestID, quote.Total).
			Updates(map[string]interface{}{
				"tokens":     gorm.Expr("tokens - ?", quote.Total),
				"updated_at": time.Now().UTC(),
			})
		if debit.Error != nil {
			return fmt.Errorf("failed to debit tokens: %w", debit.Error)
		}
		if debit.RowsAffected == 0 {
			return apperror.NewInsufficientTokensError(guest.Tokens, quote.Total)
		}

		if err := tx.Create(toBookingModel(booking)).Error; err != nil {
			return fmt.Errorf("failed to insert booking: %w", err)
		}

		created = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func loadPeriodsTx(tx *gorm.DB, listingID uuid.UUID) ([]*availability.Period, error) {
	var models []AvailabilityPeriodModel
	if err := tx.Where("listing_id = ?", listingID).
		Order("start_date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load availability periods: %w", err)
	}
	periods := make([]*availability.Period, len(models))
	for i, m := range models {
		periods[i] = toDomainPeriod(&m)
	}
	return periods, nil
}

func loadActiveBookingsTx(tx *gorm.DB, listingID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := tx.Where("listing_id = ? AND status <> ?", listingID, string(bookingDomain.StatusCancelled)).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load active bookings: %w", err)
	}
	return toDomainBookings(models)
}
