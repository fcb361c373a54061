package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pulppixels/pulppixels-backend/pkg/db/models"
	"github.com/pulppixels/pulppixels-backend/pkg/enums"
)

// Repository wires together payment, download request, and delivery task
// persistence. The three rows travel together in one transaction.
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

// CreatePayment inserts a payment row.
func (r *Repository) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

// UpdatePaymentStatus transitions a payment row.
func (r *Repository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Update("status", status).
		Error
}

// FindPaymentByRazorpayPaymentID loads a payment by the gateway payment id.
func (r *Repository) FindPaymentByRazorpayPaymentID(ctx context.Context, paymentID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "razorpay_payment_id = ?", paymentID).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// CreateDownloadRequest records the signed URL handed to the buyer.
func (r *Repository) CreateDownloadRequest(ctx context.Context, request *models.DownloadRequest) (*models.DownloadRequest, error) {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

// CreateDeliveryTask enqueues the download-link email in the outbox.
func (r *Repository) CreateDeliveryTask(ctx context.Context, task *models.DeliveryTask) (*models.DeliveryTask, error) {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.Status == "" {
		task.Status = enums.DeliveryStatusPending
	}
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}
