package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	listingDomain "github.com/stayloop/service-booking/internal/domain/listing"
	"github.com/stayloop/service-booking/pkg/apperror"
	"github.com/stayloop/service-booking/pkg/pagination"
)

// ListingRequest holds the data for creating or updating a listing.
type ListingRequest struct {
	Title         string   `json:"title" binding:"required"`
	Description   string   `json:"description"`
	Location      string   `json:"location" binding:"required"`
	PricePerNight int64    `json:"price_per_night" binding:"required"`
	Images        []string `json:"images"`
	Amenities     []string `json:"amenities"`
}

// ListingDTO is the response representation of a listing.
type ListingDTO struct {
	ID            uuid.UUID `json:"id"`
	HostID        uuid.UUID `json:"host_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	PricePerNight int64     `json:"price_per_night"`
	Images        []string  `json:"images"`
	Amenities     []string  `json:"amenities"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ListingService handles listing directory use cases.
type ListingService struct {
	listings listingDomain.ListingRepository
	logger   *zap.Logger
}

// NewListingService creates a new ListingService.
func NewListingService(listings listingDomain.ListingRepository, logger *zap.Logger) *ListingService {
	return &ListingService{listings: listings, logger: logger}
}

// CreateListing creates a listing owned by the requesting host.
func (s *ListingService) CreateListing(ctx context.Context, hostID uuid.UUID, req ListingRequest) (*ListingDTO, error) {
	if hostID == uuid.Nil {
		return nil, apperror.NewUnauthorizedError("authentication required")
	}

	lst, err := listingDomain.NewListing(hostID, req.Title, req.Description, req.Location, req.PricePerNight, req.Images, req.Amenities)
	if err != nil {
		return nil, err
	}
	if err := s.listings.Save(ctx, lst); err != nil {
		return nil, err
	}

	result := toListingDTO(lst)
	return &result, nil
}

// UpdateListing updates a listing's details; host only. Price changes never
// touch existing bookings, whose totals are snapshotted.
func (s *ListingService) UpdateListing(ctx context.Context, hostID, listingID uuid.UUID, req ListingRequest) (*ListingDTO, error) {
	lst, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !lst.IsOwnedBy(hostID) {
		return nil, apperror.NewForbiddenError("only the host may update this listing")
	}

	if err := lst.UpdateDetails(req.Title, req.Description, req.Location, req.PricePerNight, req.Images, req.Amenities); err != nil {
		return nil, err
	}
	if err := s.listings.Update(ctx, lst); err != nil {
		return nil, err
	}

	result := toListingDTO(lst)
	return &result, nil
}

// GetListing retrieves a single listing.
func (s *ListingService) GetListing(ctx context.Context, listingID uuid.UUID) (*ListingDTO, error) {
	lst, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	result := toListingDTO(lst)
	return &result, nil
}

// ListListings returns a paginated directory of listings.
func (s *ListingService) ListListings(ctx context.Context, page, limit int) (*pagination.PaginatedResult[ListingDTO], error) {
	listings, total, err := s.listings.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]ListingDTO, len(listings))
	for i, l := range listings {
		dtos[i] = toListingDTO(l)
	}

	result := pagination.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetHostListings returns all listings owned by a host.
func (s *ListingService) GetHostListings(ctx context.Context, hostID uuid.UUID) ([]ListingDTO, error) {
	listings, err := s.listings.FindByHostID(ctx, hostID)
	if err != nil {
		return nil, err
	}

	dtos := make([]ListingDTO, len(listings))
	for i, l := range listings {
		dtos[i] = toListingDTO(l)
	}
	return dtos, nil
}

func toListingDTO(l *listingDomain.Listing) ListingDTO {
	images := l.Images()
	if images == nil {
		images = []string{}
	}
	amenities := l.Amenities()
	if amenities == nil {
		amenities = []string{}
	}
	return ListingDTO{
		ID:            l.ID(),
		HostID:        l.HostID(),
		Title:         l.Title(),
		Description:   l.Description(),
		Location:      l.Location(),
		PricePerNight: l.PricePerNight(),
		Images:        images,
		Amenities:     amenities,
		CreatedAt:     l.CreatedAt(),
		UpdatedAt:     l.UpdatedAt(),
	}
}
