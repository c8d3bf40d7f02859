package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stayloop/service-booking/pkg/apperror"
)

func TestCreateAndGetListing(t *testing.T) {
	svc := NewListingService(newMemListings(), zap.NewNop())
	ctx := context.Background()
	hostID := uuid.New()

	created, err := svc.CreateListing(ctx, hostID, ListingRequest{
		Title:         "Seaside cabin",
		Location:      "Langkawi",
		PricePerNight: 3,
		Amenities:     []string{"wifi", "kitchen"},
	})
	require.NoError(t, err)
	assert.Equal(t, hostID, created.HostID)

	got, err := svc.GetListing(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Seaside cabin", got.Title)
	assert.Equal(t, []string{"wifi", "kitchen"}, got.Amenities)
	assert.Equal(t, []string{}, got.Images, "absent arrays serialize as empty, not null")
}

func TestUpdateListing_HostOnly(t *testing.T) {
	svc := NewListingService(newMemListings(), zap.NewNop())
	ctx := context.Background()
	hostID := uuid.New()

	created, err := svc.CreateListing(ctx, hostID, ListingRequest{
		Title:         "Seaside cabin",
		Location:      "Langkawi",
		PricePerNight: 3,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateListing(ctx, hostID, created.ID, ListingRequest{
		Title:         "Seaside cabin, renovated",
		Location:      "Langkawi",
		PricePerNight: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated.PricePerNight)

	_, err = svc.UpdateListing(ctx, uuid.New(), created.ID, ListingRequest{
		Title:         "Hijacked",
		Location:      "Langkawi",
		PricePerNight: 1,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
}

func TestListListings_Pagination(t *testing.T) {
	svc := NewListingService(newMemListings(), zap.NewNop())
	ctx := context.Background()
	hostID := uuid.New()

	for i := 0; i < 5; i++ {
		_, err := svc.CreateListing(ctx, hostID, ListingRequest{
			Title:         "Cabin",
			Location:      "Langkawi",
			PricePerNight: 3,
		})
		require.NoError(t, err)
	}

	page, err := svc.ListListings(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(5), page.Total)

	last, err := svc.ListListings(ctx, 3, 2)
	require.NoError(t, err)
	assert.Len(t, last.Items, 1)
}

func TestGetHostListings(t *testing.T) {
	svc := NewListingService(newMemListings(), zap.NewNop())
	ctx := context.Background()
	hostA, hostB := uuid.New(), uuid.New()

	_, err := svc.CreateListing(ctx, hostA, ListingRequest{Title: "A", Location: "KL", PricePerNight: 2})
	require.NoError(t, err)
	_, err = svc.CreateListing(ctx, hostB, ListingRequest{Title: "B", Location: "KL", PricePerNight: 2})
	require.NoError(t, err)

	mine, err := svc.GetHostListings(ctx, hostA)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "A", mine[0].Title)
}
