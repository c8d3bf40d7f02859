package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayloop/service-booking/internal/domain/daterange"
	"github.com/stayloop/service-booking/pkg/apperror"
)

func stay(t *testing.T, start, end string) daterange.DateRange {
	t.Helper()
	r, err := daterange.Parse(start, end)
	require.NoError(t, err)
	return r
}

func TestNewBooking(t *testing.T) {
	b, err := NewBooking(uuid.New(), uuid.New(), stay(t, "2025-06-05", "2025-06-10"), 500)
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, b.Status())
	assert.Equal(t, 5, b.Nights())
	assert.Equal(t, int64(500), b.TotalPrice())
}

func TestNewBooking_Validation(t *testing.T) {
	listingID, guestID := uuid.New(), uuid.New()
	oneNight := stay(t, "2025-06-05", "2025-06-06")

	_, err := NewBooking(uuid.Nil, guestID, oneNight, 100)
	assert.Error(t, err)

	_, err = NewBooking(listingID, uuid.Nil, oneNight, 100)
	assert.Error(t, err)

	_, err = NewBooking(listingID, guestID, stay(t, "2025-06-05", "2025-06-05"), 100)
	assert.Error(t, err, "zero-night stay")

	_, err = NewBooking(listingID, guestID, oneNight, 0)
	assert.Error(t, err, "free stays are not a thing")
}

func TestBooking_CancelReleasesDates(t *testing.T) {
	b, err := NewBooking(uuid.New(), uuid.New(), stay(t, "2025-06-05", "2025-06-10"), 500)
	require.NoError(t, err)

	candidate := stay(t, "2025-06-07", "2025-06-12")
	assert.True(t, b.OccupiesDates(candidate))

	require.NoError(t, b.Cancel())
	assert.False(t, b.OccupiesDates(candidate))
}

func TestBooking_CompletedStillOccupiesDates(t *testing.T) {
	b, err := NewBooking(uuid.New(), uuid.New(), stay(t, "2025-06-05", "2025-06-10"), 500)
	require.NoError(t, err)
	require.NoError(t, b.Complete())

	assert.True(t, b.OccupiesDates(stay(t, "2025-06-07", "2025-06-12")))
}

func TestBooking_IllegalTransition(t *testing.T) {
	b, err := NewBooking(uuid.New(), uuid.New(), stay(t, "2025-06-05", "2025-06-10"), 500)
	require.NoError(t, err)
	require.NoError(t, b.Cancel())

	err = b.Complete()
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
}

func TestBooking_TimeframeClassification(t *testing.T) {
	b, err := NewBooking(uuid.New(), uuid.New(), stay(t, "2025-06-05", "2025-06-10"), 500)
	require.NoError(t, err)

	before := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	checkoutDay := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	after := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, b.IsUpcoming(before))
	assert.False(t, b.IsPast(before))

	// The checkout date itself still counts as upcoming.
	assert.True(t, b.IsUpcoming(checkoutDay))
	assert.False(t, b.IsPast(checkoutDay))

	assert.False(t, b.IsUpcoming(after))
	assert.True(t, b.IsPast(after))
}

func TestBooking_CancelledIsNeitherUpcomingNorOccupying(t *testing.T) {
	b, err := NewBooking(uuid.New(), uuid.New(), stay(t, "2025-06-05", "2025-06-10"), 500)
	require.NoError(t, err)
	require.NoError(t, b.Cancel())

	before := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, b.IsUpcoming(before))
}
