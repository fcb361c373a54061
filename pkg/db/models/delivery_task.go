package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pulppixels/pulppixels-backend/pkg/enums"
)

// DeliveryTask is an outbox row for a download-link email. It is inserted in
// the same transaction as the payment (or download request) so a recorded
// purchase can never silently lose its delivery.
type DeliveryTask struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WallpaperID    uuid.UUID            `gorm:"column:wallpaper_id;type:uuid;not null"`
	WallpaperTitle string               `gorm:"column:wallpaper_title;not null"`
	Email          string               `gorm:"column:email;not null"`
	DownloadURL    string               `gorm:"column:download_url;not null"`
	ExpiresAt      time.Time            `gorm:"column:expires_at;not null"`
	Status         enums.DeliveryStatus `gorm:"column:status;type:delivery_status;not null;default:'pending'"`
	AttemptCount   int                  `gorm:"column:attempt_count;not null;default:0"`
	LastError      *string              `gorm:"column:last_error"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	SentAt         *time.Time           `gorm:"column:sent_at"`
}
