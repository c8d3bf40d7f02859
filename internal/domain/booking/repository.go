package booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/stayloop/service-booking/internal/domain/daterange"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindActiveByListingID retrieves all non-cancelled bookings for a
	// listing, ordered by check-in ascending.
	FindActiveByListingID(ctx context.Context, listingID uuid.UUID) ([]*Booking, error)

	// FindByGuestID retrieves bookings made by a guest with pagination,
	// newest first.
	FindByGuestID(ctx context.Context, guestID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByListingID retrieves bookings for a listing with pagination,
	// newest first (host view).
	FindByListingID(ctx context.Context, listingID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Update persists a status change.
	Update(ctx context.Context, booking *Booking) error
}

// ReserveCommand is the input to a ledger reservation.
type ReserveCommand struct {
	GuestID     uuid.UUID
	ListingID   uuid.UUID
	Stay        daterange.DateRange
	QuotedTotal int64
}

// Ledger executes the atomic reserve-and-pay transaction: re-validate the
// date conflict, verify and debit the guest's token balance, and insert the
// booking, all as one unit. Implementations must serialize concurrent
// reservations per listing so no two overlapping stays can both commit.
type Ledger interface {
	Reserve(ctx context.Context, cmd ReserveCommand) (*Booking, error)
}
