package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pulppixels/pulppixels-backend/pkg/enums"
)

// Wallpaper represents a purchasable or free catalog item.
type Wallpaper struct {
	ID            uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title         string                  `gorm:"column:title;not null"`
	Description   *string                 `gorm:"column:description"`
	Price         int                     `gorm:"column:price;not null;default:0"`
	Category      enums.WallpaperCategory `gorm:"column:category;type:wallpaper_category;not null"`
	ImagePath     string                  `gorm:"column:image_path;not null"`
	PreviewURL    string                  `gorm:"column:preview_url;not null"`
	Tags          pq.StringArray          `gorm:"column:tags;type:text[]"`
	AverageRating float64                 `gorm:"column:average_rating;type:numeric(3,2);not null;default:0"`
	TotalRatings  int                     `gorm:"column:total_ratings;not null;default:0"`
	IsFeatured    bool                    `gorm:"column:is_featured;not null;default:false"`
	UploadedBy    uuid.UUID               `gorm:"column:uploaded_by;type:uuid;not null"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime"`
}

// IsFree reports whether the wallpaper can be downloaded without payment.
func (w Wallpaper) IsFree() bool {
	return w.Price == 0
}
