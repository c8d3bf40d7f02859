package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/stayloop/service-booking/internal/domain/listing"
	"github.com/stayloop/service-booking/pkg/apperror"
)

// ListingModel is the GORM model for the listings table. Images and amenities
// are native JSON array columns, not stringly-encoded text.
type ListingModel struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	HostID        uuid.UUID      `gorm:"type:uuid;index;not null"`
	Title         string         `gorm:"not null;size:200"`
	Description   string         `gorm:"size:5000"`
	Location      string         `gorm:"not null;size:200"`
	PricePerNight int64          `gorm:"not null"`
	Images        datatypes.JSON `gorm:"type:jsonb"`
	Amenities     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"not null"`
	UpdatedAt     time.Time      `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ListingModel) TableName() string {
	return "listings"
}

// GormListingRepository is the GORM-based implementation of ListingRepository.
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository creates a new GormListingRepository.
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// FindByID retrieves a listing by its unique identifier.
func (r *GormListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	var model ListingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Listing", id.String())
		}
		return nil, fmt.Errorf("failed to find listing by ID: %w", err)
	}
	return toDomainListing(&model)
}

// FindByHostID retrieves all listings owned by a host.
func (r *GormListingRepository) FindByHostID(ctx context.Context, hostID uuid.UUID) ([]*listing.Listing, error) {
	var models []ListingModel
	if err := r.db.WithContext(ctx).
		Where("host_id = ?", hostID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find listings by host: %w", err)
	}

	listings := make([]*listing.Listing, len(models))
	for i, m := range models {
		l, err := toDomainListing(&m)
		if err != nil {
			return nil, err
		}
		listings[i] = l
	}
	return listings, nil
}

// ListAll retrieves listings with pagination, newest first.
func (r *GormListingRepository) ListAll(ctx context.Context, page, limit int) ([]*listing.Listing, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ListingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	var models []ListingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list listings: %w", err)
	}

	listings := make([]*listing.Listing, len(models))
	for i, m := range models {
		l, err := toDomainListing(&m)
		if err != nil {
			return nil, 0, err
		}
		listings[i] = l
	}
	return listings, total, nil
}

// Save persists a new listing.
func (r *GormListingRepository) Save(ctx context.Context, l *listing.Listing) error {
	model, err := toListingModel(l)
	if err != nil {
		return fmt.Errorf("failed to convert listing to model: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save listing: %w", err)
	}
	return nil
}

// Update persists changes to an existing listing.
func (r *GormListingRepository) Update(ctx context.Context, l *listing.Listing) error {
	model, err := toListingModel(l)
	if err != nil {
		return fmt.Errorf("failed to convert listing to model: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&ListingModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"title":           model.Title,
			"description":     model.Description,
			"location":        model.Location,
			"price_per_night": model.PricePerNight,
			"images":          model.Images,
			"amenities":       model.Amenities,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update listing: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("Listing", model.ID.String())
	}
	return nil
}

// --- Conversion helpers ---

func toListingModel(l *listing.Listing) (*ListingModel, error) {
	images, err := json.Marshal(l.Images())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal images: %w", err)
	}
	amenities, err := json.Marshal(l.Amenities())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal amenities: %w", err)
	}

	return &ListingModel{
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
	}, nil
}

func toDomainListing(m *ListingModel) (*listing.Listing, error) {
	var images []string
	if len(m.Images) > 0 {
		if err := json.Unmarshal(m.Images, &images); err != nil {
			return nil, fmt.Errorf("failed to unmarshal images: %w", err)
		}
	}
	var amenities []string
	if len(m.Amenities) > 0 {
		if err := json.Unmarshal(m.Amenities, &amenities); err != nil {
			return nil, fmt.Errorf("failed to unmarshal amenities: %w", err)
		}
	}

	return listing.ReconstructListing(
		m.ID,
		m.HostID,
		m.Title,
		m.Description,
		m.Location,
		m.PricePerNight,
		images,
		amenities,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
