package availability

import (
	"time"

	"github.com/google/uuid"

	"github.com/stayloop/service-booking/internal/domain/daterange"
	"github.com/stayloop/service-booking/pkg/apperror"
)

// Period is a host-declared contiguous date range during which a listing is
// open for booking. Both bounds are inclusive calendar dates. Periods are
// never mutated in place; replacing a range is delete plus add.
type Period struct {
	id        uuid.UUID
	listingID uuid.UUID
	dates     daterange.DateRange
	createdAt time.Time
}

// NewPeriod creates a Period after validating the range. Overlap against the
// listing's other periods is enforced by the store, not here, because it
// requires the full set.
func NewPeriod(listingID uuid.UUID, start, end time.Time) (*Period, error) {
	if listingID == uuid.Nil {
		return nil, apperror.NewValidationError("listing ID is required")
	}
	start = daterange.Truncate(start)
	end = daterange.Truncate(end)
	if end.Before(start) {
		return nil, apperror.NewValidationError("end date must not be before start date")
	}

	return &Period{
		id:        uuid.New(),
		listingID: listingID,
		dates:     daterange.DateRange{Start: start, End: end},
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstructPeriod rebuilds a Period from persistence data (no validation).
func ReconstructPeriod(id, listingID uuid.UUID, start, end, createdAt time.Time) *Period {
	return &Period{
		id:        id,
		listingID: listingID,
		dates:     daterange.DateRange{Start: start, End: end},
		createdAt: createdAt,
	}
}

// ID returns the period's unique identifier.
func (p *Period) ID() uuid.UUID { return p.id }

// ListingID returns the owning listing's identifier.
func (p *Period) ListingID() uuid.UUID { return p.listingID }

// Dates returns the inclusive date range of the period.
func (p *Period) Dates() daterange.DateRange { return p.dates }

// CreatedAt returns the creation timestamp.
func (p *Period) CreatedAt() time.Time { return p.createdAt }

// ConflictsWith reports whether two periods share at least one calendar date.
func (p *Period) ConflictsWith(other *Period) bool {
	return p.dates.OverlapsInclusive(other.dates)
}

// CoversStay reports whether the half-open stay fits entirely inside this
// period: the period must start on or before check-in and end on or after the
// checkout date. A stay may not span a gap between two separate periods even
// when they are adjacent.
func (p *Period) CoversStay(stay daterange.DateRange) bool {
	return p.dates.Covers(stay)
}
