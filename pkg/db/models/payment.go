package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pulppixels/pulppixels-backend/pkg/enums"
)

// Payment records a verified (or, for the UPI variant, attempted) purchase.
// Rows are written exactly once per verified transaction; only the UPI path
// transitions pending to completed afterwards.
type Payment struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RazorpayOrderID   *string             `gorm:"column:razorpay_order_id"`
	RazorpayPaymentID *string             `gorm:"column:razorpay_payment_id"`
	TransactionID     *string             `gorm:"column:transaction_id"`
	WallpaperID       uuid.UUID           `gorm:"column:wallpaper_id;type:uuid;not null"`
	PayerEmail        string              `gorm:"column:payer_email;not null"`
	Amount            int                 `gorm:"column:amount;not null"`
	Status            enums.PaymentStatus `gorm:"column:status;type:payment_status;not null;default:'pending'"`
	Method            enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
}
