package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pulppixels/pulppixels-backend/pkg/db/models"
	"github.com/pulppixels/pulppixels-backend/pkg/enums"
)

// SortOrder selects how the browse query is ordered.
type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
)

// ParseSortOrder validates a storefront sort value. Empty means newest.
func ParseSortOrder(value string) (SortOrder, error) {
	switch SortOrder(value) {
	case "", SortNewest:
		return SortNewest, nil
	case SortPriceLow:
		return SortPriceLow, nil
	case SortPriceHigh:
		return SortPriceHigh, nil
	default:
		return "", fmt.Errorf("invalid sort order %q", value)
	}
}

// ListFilter narrows the browse query.
type ListFilter struct {
	Category *enums.WallpaperCategory
	FreeOnly bool
	Featured bool
	Sort     SortOrder
	Limit    int
}

// Repository wires together wallpaper persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a wallpaper by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Wallpaper, error) {
	var wallpaper models.Wallpaper
	if err := r.db.WithContext(ctx).First(&wallpaper, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &wallpaper, nil
}

// Create inserts a new wallpaper row.
func (r *Repository) Create(ctx context.Context, wallpaper *models.Wallpaper) (*models.Wallpaper, error) {
	if wallpaper.ID == uuid.Nil {
		wallpaper.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(wallpaper).Error; err != nil {
		return nil, err
	}
	return wallpaper, nil
}

// Update persists the full wallpaper row.
func (r *Repository) Update(ctx context.Context, wallpaper *models.Wallpaper) (*models.Wallpaper, error) {
	if err := r.db.WithContext(ctx).Save(wallpaper).Error; err != nil {
		return nil, err
	}
	return wallpaper, nil
}

// Delete removes the wallpaper row. Ratings cascade at the schema level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Wallpaper{}, "id = ?", id).Error
}

// List returns wallpapers newest first, honoring the filter.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Wallpaper, error) {
	query := r.db.WithContext(ctx).Model(&models.Wallpaper{})
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.FreeOnly {
		query = query.Where("price = 0")
	}
	if filter.Featured {
		query = query.Where("is_featured = ?", true)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	switch filter.Sort {
	case SortPriceLow:
		query = query.Order("price ASC")
	case SortPriceHigh:
		query = query.Order("price DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var wallpapers []models.Wallpaper
	if err := query.Find(&wallpapers).Error; err != nil {
		return nil, err
	}
	return wallpapers, nil
}

// SearchByText matches the query against title and description, newest first.
func (r *Repository) SearchByText(ctx context.Context, text string) ([]models.Wallpaper, error) {
	pattern := "%" + text + "%"

	var wallpapers []models.Wallpaper
	err := r.db.WithContext(ctx).
		Where("title ILIKE ? OR description ILIKE ?", pattern, pattern).
		Order("created_at DESC").
		Find(&wallpapers).
		Error
	if err != nil {
		return nil, err
	}
	return wallpapers, nil
}

// UpdateRatingAggregate recomputes the denormalized rating columns from the
// ratings table inside the caller's transaction.
func (r *Repository) UpdateRatingAggregate(ctx context.Context, wallpaperID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE wallpapers
		SET average_rating = COALESCE((SELECT ROUND(AVG(rating)::numeric, 2) FROM ratings WHERE wallpaper_id = ?), 0),
		    total_ratings  = (SELECT COUNT(*) FROM ratings WHERE wallpaper_id = ?)
		WHERE id = ?`,
		wallpaperID, wallpaperID, wallpaperID,
	).Error
}
