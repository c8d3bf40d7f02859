package listing

import (
	"time"

	"github.com/google/uuid"

	"github.com/stayloop/service-booking/pkg/apperror"
)

// Listing is a bookable property with a per-night token price and a host.
type Listing struct {
	id            uuid.UUID
	hostID        uuid.UUID
	title         string
	description   string
	location      string
	pricePerNight int64
	images        []string
	amenities     []string
	createdAt     time.Time
	updatedAt     time.Time
}

// NewListing creates a Listing owned by the given host.
func NewListing(hostID uuid.UUID, title, description, location string, pricePerNight int64, images, amenities []string) (*Listing, error) {
	if hostID == uuid.Nil {
		return nil, apperror.NewValidationError("host ID is required")
	}
	if title == "" {
		return nil, apperror.NewValidationError("title is required")
	}
	if location == "" {
		return nil, apperror.NewValidationError("location is required")
	}
	if pricePerNight <= 0 {
		return nil, apperror.NewValidationError("price per night must be positive")
	}

	now := time.Now().UTC()
	return &Listing{
		id:            uuid.New(),
		hostID:        hostID,
		title:         title,
		description:   description,
		location:      location,
		pricePerNight: pricePerNight,
		images:        images,
		amenities:     amenities,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructListing rebuilds a Listing from persistence data (no validation).
func ReconstructListing(id, hostID uuid.UUID, title, description, location string, pricePerNight int64, images, amenities []string, createdAt, updatedAt time.Time) *Listing {
	return &Listing{
		id:            id,
		hostID:        hostID,
		title:         title,
		description:   description,
		location:      location,
		pricePerNight: pricePerNight,
		images:        images,
		amenities:     amenities,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// ID returns the listing's unique identifier.
func (l *Listing) ID() uuid.UUID { return l.id }

// HostID returns the owning host's user ID.
func (l *Listing) HostID() uuid.UUID { return l.hostID }

// Title returns the listing title.
func (l *Listing) Title() string { return l.title }

// Description returns the listing description.
func (l *Listing) Description() string { return l.description }

// Location returns the listing location.
func (l *Listing) Location() string { return l.location }

// PricePerNight returns the nightly price in tokens.
func (l *Listing) PricePerNight() int64 { return l.pricePerNight }

// Images returns the image URLs.
func (l *Listing) Images() []string { return l.images }

// Amenities returns the amenity names.
func (l *Listing) Amenities() []string { return l.amenities }

// CreatedAt returns the creation timestamp.
func (l *Listing) CreatedAt() time.Time { return l.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (l *Listing) UpdatedAt() time.Time { return l.updatedAt }

// IsOwnedBy reports whether the given user is this listing's host.
func (l *Listing) IsOwnedBy(userID uuid.UUID) bool {
	return l.hostID == userID
}

// UpdateDetails replaces the listing's mutable fields. Price changes affect
// future bookings only; existing bookings keep their snapshotted total.
func (l *Listing) UpdateDetails(title, description, location string, pricePerNight int64, images, amenities []string) error {
	if title == "" {
		return apperror.NewValidationError("title is required")
	}
	if location == "" {
		return apperror.NewValidationError("location is required")
	}
	if pricePerNight <= 0 {
		return apperror.NewValidationError("price per night must be positive")
	}

	l.title = title
	l.description = description
	l.location = location
	l.pricePerNight = pricePerNight
	l.images = images
	l.amenities = amenities
	l.updatedAt = time.Now().UTC()
	return nil
}
