package listing

import (
	"context"

	"github.com/google/uuid"
)

// ListingRepository defines the persistence contract for listings.
type ListingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	FindByHostID(ctx context.Context, hostID uuid.UUID) ([]*Listing, error)
	ListAll(ctx context.Context, page, limit int) ([]*Listing, int64, error)
	Save(ctx context.Context, listing *Listing) error
	Update(ctx context.Context, listing *Listing) error
}
