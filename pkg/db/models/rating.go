package models

import (
	"time"

	"github.com/google/uuid"
)

// Rating is a single 1-5 star vote. Uniqueness per (wallpaper, fingerprint)
// is enforced by the ratings_wallpaper_fingerprint_key index.
type Rating struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WallpaperID uuid.UUID `gorm:"column:wallpaper_id;type:uuid;not null;uniqueIndex:ratings_wallpaper_fingerprint_key"`
	Rating      int       `gorm:"column:rating;not null"`
	Fingerprint string    `gorm:"column:fingerprint;not null;uniqueIndex:ratings_wallpaper_fingerprint_key"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
