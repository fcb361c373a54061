package models

import (
	"time"

	"github.com/google/uuid"
)

// DownloadRequest is the audit row for every signed URL handed out.
type DownloadRequest struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WallpaperID uuid.UUID `gorm:"column:wallpaper_id;type:uuid;not null"`
	Email       string    `gorm:"column:email;not null"`
	DownloadURL string    `gorm:"column:download_url;not null"`
	ExpiresAt   time.Time `gorm:"column:expires_at;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
