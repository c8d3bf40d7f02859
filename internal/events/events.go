package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics this service produces to and consumes from.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Event types on booking.events.
const (
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"
	BookingCompleted = "booking.completed"
)

// Event types on payment.events.
const (
	PaymentTokensPurchased = "payment.tokens_purchased"
)

// BookingCreatedEvent is published after a reservation commits.
type BookingCreatedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ListingID  uuid.UUID `json:"listing_id"`
	GuestID    uuid.UUID `json:"guest_id"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	TotalPrice int64     `json:"total_price"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published after a booking is cancelled.
type BookingCancelledEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	ListingID   uuid.UUID `json:"listing_id"`
	CancelledBy uuid.UUID `json:"cancelled_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// BookingCompletedEvent is published after a stay is marked completed.
type BookingCompletedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ListingID  uuid.UUID `json:"listing_id"`
	GuestID    uuid.UUID `json:"guest_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TokensPurchasedEvent is consumed from the payment service when a token
// purchase settles out of band.
type TokensPurchasedEvent struct {
	PaymentID  string    `json:"payment_id"`
	UserID     uuid.UUID `json:"user_id"`
	Tokens     int64     `json:"tokens"`
	OccurredAt time.Time `json:"occurred_at"`
}
