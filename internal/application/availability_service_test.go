package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stayloop/service-booking/pkg/apperror"
)

func newAvailabilityService(f *bookingFixture) *AvailabilityService {
	return NewAvailabilityService(f.periods, f.listings, f.bookings, zap.NewNop())
}

func TestAddPeriod(t *testing.T) {
	f := newBookingFixture(t, 0)
	svc := newAvailabilityService(f)

	dto, err := svc.AddPeriod(context.Background(), f.hostID, f.listingID, AddPeriodRequest{
		StartDate: "2025-08-01",
		EndDate:   "2025-08-31",
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-08-01", dto.StartDate)
	assert.Equal(t, "2025-08-31", dto.EndDate)
}

func TestAddPeriod_NonHostForbidden(t *testing.T) {
	f := newBookingFixture(t, 0)
	svc := newAvailabilityService(f)

	_, err := svc.AddPeriod(context.Background(), f.guestID, f.listingID, AddPeriodRequest{
		StartDate: "2025-08-01",
		EndDate:   "2025-08-31",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
}

func TestAddPeriod_RejectsOverlap(t *testing.T) {
	f := newBookingFixture(t, 0)
	svc := newAvailabilityService(f)
	ctx := context.Background()

	// The fixture already declared June 1-30. A range sharing even a single
	// date with it conflicts; periods never merge.
	_, err := svc.AddPeriod(ctx, f.hostID, f.listingID, AddPeriodRequest{
		StartDate: "2025-06-30",
		EndDate:   "2025-07-15",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	_, err = svc.AddPeriod(ctx, f.hostID, f.listingID, AddPeriodRequest{
		StartDate: "2025-07-01",
		EndDate:   "2025-07-15",
	})
	assert.NoError(t, err)
}

func TestAddPeriod_RejectsReversedRange(t *testing.T) {
	f := newBookingFixture(t, 0)
	svc := newAvailabilityService(f)

	_, err := svc.AddPeriod(context.Background(), f.hostID, f.listingID, AddPeriodRequest{
		StartDate: "2025-08-31",
		EndDate:   "2025-08-01",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestRemovePeriod(t *testing.T) {
	f := newBookingFixture(t, 0)
	svc := newAvailabilityService(f)
	ctx := context.Background()

	dto, err := svc.AddPeriod(ctx, f.hostID, f.listingID, AddPeriodRequest{
		StartDate: "2025-08-01",
		EndDate:   "2025-08-31",
	})
	require.NoError(t, err)

	require.NoError(t, svc.RemovePeriod(ctx, f.hostID, dto.ID))

	periods, err := svc.ListPeriods(ctx, f.listingID)
	require.NoError(t, err)
	for _, p := range periods {
		assert.NotEqual(t, dto.ID, p.ID)
	}
}

func TestRemovePeriod_BlockedByActiveBooking(t *testing.T) {
	f := newBookingFixture(t, 20)
	svc := newAvailabilityService(f)
	ctx := context.Background()

	booking, err := f.service.CreateBooking(ctx, f.guestID, CreateBookingRequest{
		ListingID:        f.listingID,
		StartDate:        "2025-06-10",
		EndDate:          "2025-06-14",
		QuotedTotalPrice: 12,
	})
	require.NoError(t, err)

	periods, err := svc.ListPeriods(ctx, f.listingID)
	require.NoError(t, err)
	require.Len(t, periods, 1)

	err = svc.RemovePeriod(ctx, f.hostID, periods[0].ID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	// Cancelling the booking unblocks removal.
	_, err = f.service.UpdateStatus(ctx, f.guestID, booking.ID, UpdateBookingStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	assert.NoError(t, svc.RemovePeriod(ctx, f.hostID, periods[0].ID))
}

func TestRemovePeriod_NonHostForbidden(t *testing.T) {
	f := newBookingFixture(t, 0)
	svc := newAvailabilityService(f)
	ctx := context.Background()

	periods, err := svc.ListPeriods(ctx, f.listingID)
	require.NoError(t, err)
	require.Len(t, periods, 1)

	err = svc.RemovePeriod(ctx, f.guestID, periods[0].ID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
}
