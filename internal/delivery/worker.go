package delivery

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pulppixels/pulppixels-backend/pkg/config"
	"github.com/pulppixels/pulppixels-backend/pkg/db/models"
	"github.com/pulppixels/pulppixels-backend/pkg/enums"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
	"github.com/pulppixels/pulppixels-backend/pkg/mailer"
	"github.com/pulppixels/pulppixels-backend/pkg/metrics"
)

const (
	defaultBatchSize   = 25
	defaultPollMs      = 1000
	defaultMaxAttempts = 8
	maxBackoff         = 10 * time.Second
	jitterWindow       = 250 * time.Millisecond
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type taskRepository interface {
	ClaimNext(tx *gorm.DB, maxAttempts int, exclude []uuid.UUID) (*models.DeliveryTask, error)
	MarkSent(tx *gorm.DB, id uuid.UUID) error
	MarkRetry(tx *gorm.DB, id uuid.UUID, sendErr error) error
	MarkFailed(tx *gorm.DB, id uuid.UUID, sendErr error) error
	CountByStatus(ctx context.Context, status enums.DeliveryStatus) (int64, error)
}

type linkSender interface {
	SendDownloadLink(ctx context.Context, to string, data mailer.DownloadLinkData) error
}

// WorkerParams collects the dependencies for the delivery worker.
type WorkerParams struct {
	Config     config.DeliveryConfig
	Logger     *logger.Logger
	DB         dbClient
	Repository taskRepository
	Sender     linkSender
	Metrics    *metrics.DeliveryMetrics
}

// Worker drains the delivery task outbox and emails download links.
type Worker struct {
	logg         *logger.Logger
	db           dbClient
	repo         taskRepository
	sender       linkSender
	metrics      *metrics.DeliveryMetrics
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
}

// NewWorker validates dependencies and applies config defaults.
func NewWorker(params WorkerParams) (*Worker, error) {
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	if params.Repository == nil {
		return nil, errors.New("task repository is required")
	}
	if params.Sender == nil {
		return nil, errors.New("link sender is required")
	}

	batch := params.Config.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	pollMs := params.Config.PollIntervalMS
	if pollMs <= 0 {
		pollMs = defaultPollMs
	}
	maxAttempts := params.Config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	return &Worker{
		logg:         params.Logger,
		db:           params.DB,
		repo:         params.Repository,
		sender:       params.Sender,
		metrics:      params.Metrics,
		batchSize:    batch,
		maxAttempts:  maxAttempts,
		pollInterval: time.Duration(pollMs) * time.Millisecond,
	}, nil
}

// Run polls the outbox until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := w.db.Ping(ctx); err != nil {
		w.logg.Error(ctx, "database ping failed", err)
		return fmt.Errorf("database ping failed: %w", err)
	}

	interval := w.pollInterval
	backoff := interval

	for {
		select {
		case <-ctx.Done():
			w.logg.Info(ctx, "delivery worker context canceled")
			return ctx.Err()
		default:
		}

		processed, err := w.ProcessBatch(ctx)
		if err != nil {
			w.logg.Error(ctx, "delivery batch error", err)
			backoff = nextBackoff(backoff, interval, maxBackoff)
			if err := w.sleep(ctx, withJitter(backoff)); err != nil {
				return err
			}
			continue
		}

		backoff = interval

		if processed {
			continue
		}

		w.reportQueueDepth(ctx)

		if err := w.sleep(ctx, withJitter(interval)); err != nil {
			return err
		}
	}
}

// reportQueueDepth refreshes the pending gauge while the queue is idle.
func (w *Worker) reportQueueDepth(ctx context.Context) {
	pending, err := w.repo.CountByStatus(ctx, enums.DeliveryStatusPending)
	if err != nil {
		w.logg.Warn(w.logg.WithField(ctx, "error", err.Error()), "queue depth check failed")
		return
	}
	w.metrics.SetQueueDepth(string(enums.DeliveryStatusPending), pending)
}

// ProcessBatch drains up to one batch of pending tasks, one task per
// transaction. It reports whether any task was handled so the caller can
// skip the idle sleep.
func (w *Worker) ProcessBatch(ctx context.Context) (bool, error) {
	start := time.Now()
	handled := make([]uuid.UUID, 0, w.batchSize)

	for len(handled) < w.batchSize {
		taskID, err := w.processNext(ctx, handled)
		if err != nil {
			w.metrics.ObserveBatch("send", time.Since(start))
			return len(handled) > 0, err
		}
		if taskID == uuid.Nil {
			break
		}
		handled = append(handled, taskID)
	}

	w.metrics.ObserveBatch("send", time.Since(start))
	return len(handled) > 0, nil
}

// processNext claims and handles a single task in its own transaction. The
// row lock spans the send, so a concurrent worker skips the task instead of
// emailing it a second time, and a mark error rolls back nothing beyond
// this one row. Returns uuid.Nil once the queue is drained.
func (w *Worker) processNext(ctx context.Context, exclude []uuid.UUID) (uuid.UUID, error) {
	claimed := uuid.Nil

	err := w.db.WithTx(ctx, func(tx *gorm.DB) error {
		task, err := w.repo.ClaimNext(tx, w.maxAttempts, exclude)
		if err != nil {
			return err
		}
		if task == nil {
			return nil
		}
		claimed = task.ID

		taskCtx := w.logg.WithFields(ctx, map[string]any{
			"task_id":      task.ID.String(),
			"wallpaper_id": task.WallpaperID.String(),
		})

		sendErr := w.sender.SendDownloadLink(ctx, task.Email, mailer.DownloadLinkData{
			WallpaperTitle: task.WallpaperTitle,
			DownloadURL:    task.DownloadURL,
			ExpiresAt:      task.ExpiresAt,
		})
		if sendErr == nil {
			if err := w.repo.MarkSent(tx, task.ID); err != nil {
				return err
			}
			w.metrics.IncSent()
			w.logg.Info(taskCtx, "download link delivered")
			return nil
		}

		nextAttempt := task.AttemptCount + 1
		if nextAttempt >= w.maxAttempts {
			if err := w.repo.MarkFailed(tx, task.ID, sendErr); err != nil {
				return err
			}
			w.metrics.IncFailed()
			w.logg.Error(taskCtx, "download link delivery abandoned", sendErr)
			return nil
		}

		if err := w.repo.MarkRetry(tx, task.ID, sendErr); err != nil {
			return err
		}
		w.metrics.IncRetried()
		w.logg.Warn(taskCtx, "download link delivery failed, will retry")
		return nil
	})

	return claimed, err
}

func (w *Worker) sleep(ctx context.Context, duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextBackoff(current, base, ceiling time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	next := current * 2
	if next > ceiling {
		return ceiling
	}
	return next
}

func withJitter(base time.Duration) time.Duration {
	if base <= 0 {
		return base
	}
	return base + time.Duration(jitterSource.Int63n(int64(jitterWindow)))
}
