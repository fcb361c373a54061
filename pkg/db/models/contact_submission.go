package models

import (
	"time"

	"github.com/google/uuid"
)

// ContactSubmission is a durable record of an admitted contact-form message.
// The daily cap itself is enforced in Redis; these rows back audits and the
// midnight-reset property.
type ContactSubmission struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email          string    `gorm:"column:email;not null"`
	LastSubmission time.Time `gorm:"column:last_submission;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
