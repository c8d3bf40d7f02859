package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stayloop/service-booking/internal/domain/availability"
	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	"github.com/stayloop/service-booking/internal/domain/daterange"
	listingDomain "github.com/stayloop/service-booking/internal/domain/listing"
	"github.com/stayloop/service-booking/internal/events"
	"github.com/stayloop/service-booking/pkg/apperror"
	"github.com/stayloop/service-booking/pkg/kafka"
	"github.com/stayloop/service-booking/pkg/pagination"
)

const eventSource = "service-booking"

// EventPublisher is the slice of the Kafka producer the services need.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// CreateBookingRequest holds the data needed to reserve a stay.
type CreateBookingRequest struct {
	ListingID        uuid.UUID `json:"listing_id" binding:"required"`
	StartDate        string    `json:"start_date" binding:"required"`
	EndDate          string    `json:"end_date" binding:"required"`
	QuotedTotalPrice int64     `json:"quoted_total_price" binding:"required"`
}

// UpdateBookingStatusRequest holds a requested status transition.
type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID         uuid.UUID `json:"id"`
	ListingID  uuid.UUID `json:"listing_id"`
	GuestID    uuid.UUID `json:"guest_id"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	Nights     int       `json:"nights"`
	TotalPrice int64     `json:"total_price"`
	Status     string    `json:"status"`
	Timeframe  string    `json:"timeframe"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AvailabilityCheckDTO is the advisory result of a pre-booking check.
type AvailabilityCheckDTO struct {
	Available bool                 `json:"available"`
	Quote     *bookingDomain.Quote `json:"quote,omitempty"`
}

// Booking list scopes.
const (
	ScopeAll      = ""
	ScopeUpcoming = "upcoming"
	ScopePast     = "past"
)

// BookingService orchestrates booking use cases around the ledger.
type BookingService struct {
	bookings bookingDomain.BookingRepository
	ledger   bookingDomain.Ledger
	listings listingDomain.ListingRepository
	periods  availability.PeriodRepository
	producer EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.BookingRepository,
	ledger bookingDomain.Ledger,
	listings listingDomain.ListingRepository,
	periods availability.PeriodRepository,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		ledger:   ledger,
		listings: listings,
		periods:  periods,
		producer: producer,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the service clock, for tests.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// CreateBooking reserves a stay for the guest through the ledger. All
// validations run again inside the ledger transaction; the checks here only
// reject requests that can never succeed.
func (s *BookingService) CreateBooking(ctx context.Context, guestID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	if guestID == uuid.Nil {
		return nil, apperror.NewUnauthorizedError("authentication required")
	}

	stay, err := daterange.Parse(req.StartDate, req.EndDate)
	if err != nil {
		return nil, apperror.NewValidationError(err.Error())
	}
	if stay.Nights() < 1 {
		return nil, apperror.NewValidationError("checkout must be after check-in")
	}

	// Same-day bookings are not accepted; check-in starts tomorrow at the
	// earliest.
	today := daterange.Truncate(s.now())
	if !stay.Start.After(today) {
		return nil, apperror.NewValidationError("check-in must be at least one day ahead")
	}

	booking, err := s.ledger.Reserve(ctx, bookingDomain.ReserveCommand{
		GuestID:     guestID,
		ListingID:   req.ListingID,
		Stay:        stay,
		QuotedTotal: req.QuotedTotalPrice,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCreated, events.BookingCreatedEvent{
		BookingID:  booking.ID(),
		ListingID:  booking.ListingID(),
		GuestID:    booking.GuestID(),
		StartDate:  booking.Stay().StartDate(),
		EndDate:    booking.Stay().EndDate(),
		TotalPrice: booking.TotalPrice(),
		OccurredAt: time.Now().UTC(),
	})

	result := s.toBookingDTO(booking)
	return &result, nil
}

// UpdateStatus transitions a booking's status. Only the booking's guest or
// the listing's host may do so, and the transition must be legal in the
// status state machine.
func (s *BookingService) UpdateStatus(ctx context.Context, requestingUserID, bookingID uuid.UUID, req UpdateBookingStatusRequest) (*BookingDTO, error) {
	if requestingUserID == uuid.Nil {
		return nil, apperror.NewUnauthorizedError("authentication required")
	}

	target, err := bookingDomain.ParseStatus(req.Status)
	if err != nil {
		return nil, apperror.NewValidationError(err.Error())
	}

	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	lst, err := s.listings.FindByID(ctx, booking.ListingID())
	if err != nil {
		return nil, err
	}
	if booking.GuestID() != requestingUserID && !lst.IsOwnedBy(requestingUserID) {
		return nil, apperror.NewForbiddenError("only the guest or the host may change this booking")
	}

	if err := booking.TransitionTo(target); err != nil {
		return nil, err
	}
	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, err
	}

	switch target {
	case bookingDomain.StatusCancelled:
		s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCancelled, events.BookingCancelledEvent{
			BookingID:   booking.ID(),
			ListingID:   booking.ListingID(),
			CancelledBy: requestingUserID,
			OccurredAt:  time.Now().UTC(),
		})
	case bookingDomain.StatusCompleted:
		s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCompleted, events.BookingCompletedEvent{
			BookingID:  booking.ID(),
			ListingID:  booking.ListingID(),
			GuestID:    booking.GuestID(),
			OccurredAt: time.Now().UTC(),
		})
	}

	result := s.toBookingDTO(booking)
	return &result, nil
}

// GetBooking retrieves a single booking, visible to its guest and the
// listing's host only.
func (s *BookingService) GetBooking(ctx context.Context, requestingUserID, bookingID uuid.UUID) (*BookingDTO, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	lst, err := s.listings.FindByID(ctx, booking.ListingID())
	if err != nil {
		return nil, err
	}
	if booking.GuestID() != requestingUserID && !lst.IsOwnedBy(requestingUserID) {
		return nil, apperror.NewForbiddenError("only the guest or the host may view this booking")
	}

	result := s.toBookingDTO(booking)
	return &result, nil
}

// GetGuestBookings retrieves a guest's bookings, optionally filtered to
// upcoming or past stays. The classification is derived from today's date,
// never stored.
func (s *BookingService) GetGuestBookings(ctx context.Context, guestID uuid.UUID, scope string, page, limit int) (*pagination.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.FindByGuestID(ctx, guestID, page, limit)
	if err != nil {
		return nil, err
	}

	today := s.now()
	dtos := make([]BookingDTO, 0, len(bookings))
	for _, b := range bookings {
		switch scope {
		case ScopeUpcoming:
			if !b.IsUpcoming(today) {
				continue
			}
		case ScopePast:
			if !b.IsPast(today) {
				continue
			}
		}
		dtos = append(dtos, s.toBookingDTO(b))
	}

	result := pagination.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetListingBookings retrieves bookings for a listing; host only.
func (s *BookingService) GetListingBookings(ctx context.Context, requestingUserID, listingID uuid.UUID, page, limit int) (*pagination.PaginatedResult[BookingDTO], error) {
	lst, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !lst.IsOwnedBy(requestingUserID) {
		return nil, apperror.NewForbiddenError("only the host may view a listing's bookings")
	}

	bookings, total, err := s.bookings.FindByListingID(ctx, listingID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		dtos[i] = s.toBookingDTO(b)
	}

	result := pagination.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// CheckAvailability runs the advisory conflict check for a candidate stay and
// prices it. The result can be stale by booking time; the ledger re-checks.
func (s *BookingService) CheckAvailability(ctx context.Context, listingID uuid.UUID, startDate, endDate string) (*AvailabilityCheckDTO, error) {
	stay, err := daterange.Parse(startDate, endDate)
	if err != nil {
		return nil, apperror.NewValidationError(err.Error())
	}
	if stay.Nights() < 1 {
		return nil, apperror.NewValidationError("checkout must be after check-in")
	}

	lst, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	periods, err := s.periods.FindByListingID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	existing, err := s.bookings.FindActiveByListingID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if !bookingDomain.IsStayBookable(stay, periods, existing) {
		return &AvailabilityCheckDTO{Available: false}, nil
	}

	quote, err := bookingDomain.NewQuote(stay, lst.PricePerNight())
	if err != nil {
		return nil, err
	}
	return &AvailabilityCheckDTO{Available: true, Quote: &quote}, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.bookings.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		dtos[i] = s.toBookingDTO(b)
	}
	return dtos, total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{TotalBookings: total, ByStatus: counts}, nil
}

// --- Helpers ---

func (s *BookingService) toBookingDTO(b *bookingDomain.Booking) BookingDTO {
	timeframe := ScopeUpcoming
	if b.IsPast(s.now()) {
		timeframe = ScopePast
	}
	return BookingDTO{
		ID:         b.ID(),
		ListingID:  b.ListingID(),
		GuestID:    b.GuestID(),
		StartDate:  b.Stay().StartDate(),
		EndDate:    b.Stay().EndDate(),
		Nights:     b.Nights(),
		TotalPrice: b.TotalPrice(),
		Status:     string(b.Status()),
		Timeframe:  timeframe,
		CreatedAt:  b.CreatedAt(),
		UpdatedAt:  b.UpdatedAt(),
	}
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
