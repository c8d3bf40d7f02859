package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stayloop/service-booking/internal/domain/availability"
	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	"github.com/stayloop/service-booking/internal/domain/daterange"
	listingDomain "github.com/stayloop/service-booking/internal/domain/listing"
	"github.com/stayloop/service-booking/pkg/apperror"
)

// AddPeriodRequest holds a new availability period declaration.
type AddPeriodRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

// PeriodDTO is the response representation of an availability period.
type PeriodDTO struct {
	ID        uuid.UUID `json:"id"`
	ListingID uuid.UUID `json:"listing_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
}

// AvailabilityService manages host-declared availability periods.
type AvailabilityService struct {
	periods  availability.PeriodRepository
	listings listingDomain.ListingRepository
	bookings bookingDomain.BookingRepository
	logger   *zap.Logger
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(
	periods availability.PeriodRepository,
	listings listingDomain.ListingRepository,
	bookings bookingDomain.BookingRepository,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		periods:  periods,
		listings: listings,
		bookings: bookings,
		logger:   logger,
	}
}

// AddPeriod declares a new open range for a listing. Only the listing's host
// may do so; the range must not overlap the listing's other periods.
func (s *AvailabilityService) AddPeriod(ctx context.Context, hostID, listingID uuid.UUID, req AddPeriodRequest) (*PeriodDTO, error) {
	if hostID == uuid.Nil {
		return nil, apperror.NewUnauthorizedError("authentication required")
	}

	lst, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !lst.IsOwnedBy(hostID) {
		return nil, apperror.NewForbiddenError("only the host may manage availability")
	}

	dates, err := daterange.Parse(req.StartDate, req.EndDate)
	if err != nil {
		return nil, apperror.NewValidationError(err.Error())
	}

	period, err := availability.NewPeriod(listingID, dates.Start, dates.End)
	if err != nil {
		return nil, err
	}
	if err := s.periods.Save(ctx, period); err != nil {
		return nil, err
	}

	result := toPeriodDTO(period)
	return &result, nil
}

// RemovePeriod deletes a declared period. Removal is refused while any active
// booking still depends on the period, so existing reservations keep a
// declared range backing them.
func (s *AvailabilityService) RemovePeriod(ctx context.Context, hostID, periodID uuid.UUID) error {
	if hostID == uuid.Nil {
		return apperror.NewUnauthorizedError("authentication required")
	}

	period, err := s.periods.FindByID(ctx, periodID)
	if err != nil {
		return err
	}

	lst, err := s.listings.FindByID(ctx, period.ListingID())
	if err != nil {
		return err
	}
	if !lst.IsOwnedBy(hostID) {
		return apperror.NewForbiddenError("only the host may manage availability")
	}

	// Early guard for a clear error; the repository re-runs the same check
	// inside the delete transaction under the listing lock.
	active, err := s.bookings.FindActiveByListingID(ctx, period.ListingID())
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

	return s.periods.Delete(ctx, periodID)
}

// ListPeriods returns a listing's declared periods, start date ascending.
func (s *AvailabilityService) ListPeriods(ctx context.Context, listingID uuid.UUID) ([]PeriodDTO, error) {
	if _, err := s.listings.FindByID(ctx, listingID); err != nil {
		return nil, err
	}

	periods, err := s.periods.FindByListingID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	dtos := make([]PeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = toPeriodDTO(p)
	}
	return dtos, nil
}

func toPeriodDTO(p *availability.Period) PeriodDTO {
	return PeriodDTO{
		ID:        p.ID(),
		ListingID: p.ListingID(),
		StartDate: p.Dates().StartDate(),
		EndDate:   p.Dates().EndDate(),
		CreatedAt: p.CreatedAt(),
	}
}
