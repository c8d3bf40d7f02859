package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/stayloop/service-booking/internal/domain/daterange"
	"github.com/stayloop/service-booking/pkg/apperror"
)

// Booking is the aggregate root for the booking domain: a guest's reservation
// of a listing for a half-open [check-in, checkout) stay, with the total
// price snapshotted in tokens at creation time.
type Booking struct {
	id         uuid.UUID
	listingID  uuid.UUID
	guestID    uuid.UUID
	stay       daterange.DateRange
	totalPrice int64
	status     Status
	createdAt  time.Time
	updatedAt  time.Time
}

// NewBooking creates a confirmed Booking. Only the ledger constructs
// bookings; callers never assemble one piecemeal.
func NewBooking(listingID, guestID uuid.UUID, stay daterange.DateRange, totalPrice int64) (*Booking, error) {
	if listingID == uuid.Nil {
		return nil, apperror.NewValidationError("listing ID is required")
	}
	if guestID == uuid.Nil {
		return nil, apperror.NewValidationError("guest ID is required")
	}
	if stay.Nights() < 1 {
		return nil, apperror.NewValidationError("stay must be at least one night")
	}
	if totalPrice <= 0 {
		return nil, apperror.NewValidationError("total price must be positive")
	}

	now := time.Now().UTC()
	return &Booking{
		id:         uuid.New(),
		listingID:  listingID,
		guestID:    guestID,
		stay:       stay,
		totalPrice: totalPrice,
		status:     StatusConfirmed,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(id, listingID, guestID uuid.UUID, stay daterange.DateRange, totalPrice int64, status Status, createdAt, updatedAt time.Time) *Booking {
	return &Booking{
		id:         id,
		listingID:  listingID,
		guestID:    guestID,
		stay:       stay,
		totalPrice: totalPrice,
		status:     status,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// ListingID returns the booked listing's identifier.
func (b *Booking) ListingID() uuid.UUID { return b.listingID }

// GuestID returns the guest's user ID.
func (b *Booking) GuestID() uuid.UUID { return b.guestID }

// Stay returns the half-open date range of the stay.
func (b *Booking) Stay() daterange.DateRange { return b.stay }

// TotalPrice returns the snapshotted total price in tokens.
func (b *Booking) TotalPrice() int64 { return b.totalPrice }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// Nights returns the number of nights in the stay.
func (b *Booking) Nights() int { return b.stay.Nights() }

// IsActive reports whether the booking still occupies its dates.
func (b *Booking) IsActive() bool { return b.status.IsActive() }

// IsUpcoming reports whether the booking is active and its checkout is today
// or later. The classification is derived, never stored.
func (b *Booking) IsUpcoming(today time.Time) bool {
	return b.IsActive() && !b.stay.End.Before(daterange.Truncate(today))
}

// IsPast reports whether the booking's checkout is before today.
func (b *Booking) IsPast(today time.Time) bool {
	return b.stay.End.Before(daterange.Truncate(today))
}

// OccupiesDates reports whether an active booking overlaps the candidate
// half-open range. Back-to-back stays do not overlap.
func (b *Booking) OccupiesDates(candidate daterange.DateRange) bool {
	return b.IsActive() && b.stay.Overlaps(candidate)
}

// TransitionTo moves the booking to target, enforcing the state machine and
// returning an invalid-state error for illegal transitions.
func (b *Booking) TransitionTo(target Status) error {
	if !target.IsValid() {
		return apperror.NewValidationError("invalid booking status: " + string(target))
	}
	if !b.status.CanTransitionTo(target) {
		return apperror.NewInvalidStateError(string(b.status), string(target))
	}
	b.status = target
	b.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions the booking to cancelled, releasing its dates.
func (b *Booking) Cancel() error {
	return b.TransitionTo(StatusCancelled)
}

// Complete transitions the booking to completed after the stay has ended.
func (b *Booking) Complete() error {
	return b.TransitionTo(StatusCompleted)
}
