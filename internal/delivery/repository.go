package delivery

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pulppixels/pulppixels-backend/pkg/db/models"
	"github.com/pulppixels/pulppixels-backend/pkg/enums"
)

// Repository handles the delivery task outbox.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert enqueues a task inside the caller's transaction.
func (r *Repository) Insert(tx *gorm.DB, task models.DeliveryTask) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(&task).Error
}

// ClaimNext row-locks the oldest sendable task for the caller's transaction.
// Concurrent workers skip locked rows instead of double-claiming them; the
// lock only exists on Postgres, SQLite serializes writers on its own. The
// exclude list keeps a task that already burned an attempt in this batch
// from being claimed again before the next poll.
func (r *Repository) ClaimNext(tx *gorm.DB, maxAttempts int, exclude []uuid.UUID) (*models.DeliveryTask, error) {
	if tx == nil {
		return nil, errors.New("transaction required")
	}

	query := tx.Where("status = ?", enums.DeliveryStatusPending).
		Where("attempt_count < ?", maxAttempts)
	if len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
	}

	var rows []models.DeliveryTask
	err := query.Order("created_at ASC").
		Order("id ASC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// MarkSent finalizes a delivered task.
func (r *Repository) MarkSent(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&models.DeliveryTask{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":  enums.DeliveryStatusSent,
			"sent_at": time.Now().UTC(),
		}).Error
}

// MarkRetry records a failed attempt, leaving the task pending.
func (r *Repository) MarkRetry(tx *gorm.DB, id uuid.UUID, sendErr error) error {
	return tx.Model(&models.DeliveryTask{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_error":    sendErr.Error(),
			"attempt_count": gorm.Expr("attempt_count + 1"),
		}).Error
}

// MarkFailed moves a task to the terminal failed state.
func (r *Repository) MarkFailed(tx *gorm.DB, id uuid.UUID, sendErr error) error {
	return tx.Model(&models.DeliveryTask{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        enums.DeliveryStatusFailed,
			"last_error":    sendErr.Error(),
			"attempt_count": gorm.Expr("attempt_count + 1"),
		}).Error
}

// CountByStatus reports queue depth for diagnostics.
func (r *Repository) CountByStatus(ctx context.Context, status enums.DeliveryStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DeliveryTask{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
