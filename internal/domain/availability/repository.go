package availability

import (
	"context"

	"github.com/google/uuid"
)

// PeriodRepository defines the persistence contract for availability periods.
type PeriodRepository interface {
	// FindByID retrieves a period by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Period, error)

	// FindByListingID retrieves all periods for a listing, ordered by start
	// date ascending.
	FindByListingID(ctx context.Context, listingID uuid.UUID) ([]*Period, error)

	// Save persists a new period, failing with a conflict if it overlaps an
	// existing period of the same listing.
	Save(ctx context.Context, period *Period) error

	// Delete removes a period, failing with a conflict if an active booking's
	// stay is still covered by it.
	Delete(ctx context.Context, id uuid.UUID) error
}
