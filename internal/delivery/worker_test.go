package delivery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pulppixels/pulppixels-backend/pkg/config"
	"github.com/pulppixels/pulppixels-backend/pkg/db"
	"github.com/pulppixels/pulppixels-backend/pkg/db/models"
	"github.com/pulppixels/pulppixels-backend/pkg/enums"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
	"github.com/pulppixels/pulppixels-backend/pkg/mailer"
)

const testSchema = `
CREATE TABLE delivery_tasks (
    id TEXT PRIMARY KEY,
    wallpaper_id TEXT NOT NULL,
    wallpaper_title TEXT NOT NULL,
    email TEXT NOT NULL,
    download_url TEXT NOT NULL,
    expires_at DATETIME NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    attempt_count INTEGER NOT NULL DEFAULT 0,
    last_error TEXT,
    created_at DATETIME,
    sent_at DATETIME
);
`

type stubLinkSender struct {
	sent    []string
	failFor map[string]error
}

func (s *stubLinkSender) SendDownloadLink(_ context.Context, to string, _ mailer.DownloadLinkData) error {
	if err, ok := s.failFor[to]; ok {
		return err
	}
	s.sent = append(s.sent, to)
	return nil
}

type fixture struct {
	worker *Worker
	conn   *gorm.DB
	sender *stubLinkSender
}

func newFixture(t *testing.T, maxAttempts int) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.Exec(testSchema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}

	sender := &stubLinkSender{failFor: map[string]error{}}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})

	worker, err := NewWorker(WorkerParams{
		Config:     config.DeliveryConfig{BatchSize: 10, PollIntervalMS: 10, MaxAttempts: maxAttempts},
		Logger:     logg,
		DB:         db.FromGorm(conn),
		Repository: NewRepository(conn),
		Sender:     sender,
	})
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}
	return &fixture{worker: worker, conn: conn, sender: sender}
}

func (f *fixture) enqueue(t *testing.T, email string, attempts int) uuid.UUID {
	t.Helper()
	task := models.DeliveryTask{
		ID:             uuid.New(),
		WallpaperID:    uuid.New(),
		WallpaperTitle: "Test Wallpaper",
		Email:          email,
		DownloadURL:    "https://signed.example.com/test.jpg",
		ExpiresAt:      time.Now().UTC().Add(time.Hour),
		Status:         enums.DeliveryStatusPending,
		AttemptCount:   attempts,
		CreatedAt:      time.Now().UTC(),
	}
	if err := f.conn.Create(&task).Error; err != nil {
		t.Fatalf("enqueue task: %v", err)
	}
	return task.ID
}

func (f *fixture) load(t *testing.T, id uuid.UUID) models.DeliveryTask {
	t.Helper()
	var task models.DeliveryTask
	if err := f.conn.First(&task, "id = ?", id).Error; err != nil {
		t.Fatalf("load task: %v", err)
	}
	return task
}

func TestProcessBatchSendsPendingTasks(t *testing.T) {
	f := newFixture(t, 3)
	id := f.enqueue(t, "buyer@example.com", 0)

	processed, err := f.worker.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to process")
	}
	if len(f.sender.sent) != 1 || f.sender.sent[0] != "buyer@example.com" {
		t.Fatalf("unexpected sent list %v", f.sender.sent)
	}

	task := f.load(t, id)
	if task.Status != enums.DeliveryStatusSent {
		t.Fatalf("expected sent, got %s", task.Status)
	}
	if task.SentAt == nil {
		t.Fatal("expected sent_at populated")
	}
}

func TestProcessBatchRetriesFailures(t *testing.T) {
	f := newFixture(t, 3)
	id := f.enqueue(t, "flaky@example.com", 0)
	f.sender.failFor["flaky@example.com"] = errors.New("smtp timeout")

	if _, err := f.worker.ProcessBatch(context.Background()); err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}

	task := f.load(t, id)
	if task.Status != enums.DeliveryStatusPending {
		t.Fatalf("expected still pending, got %s", task.Status)
	}
	if task.AttemptCount != 1 {
		t.Fatalf("expected 1 attempt, got %d", task.AttemptCount)
	}
	if task.LastError == nil || *task.LastError != "smtp timeout" {
		t.Fatal("expected last error recorded")
	}
}

func TestProcessBatchAbandonsAfterMaxAttempts(t *testing.T) {
	f := newFixture(t, 3)
	id := f.enqueue(t, "dead@example.com", 2)
	f.sender.failFor["dead@example.com"] = errors.New("mailbox unavailable")

	if _, err := f.worker.ProcessBatch(context.Background()); err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}

	task := f.load(t, id)
	if task.Status != enums.DeliveryStatusFailed {
		t.Fatalf("expected failed, got %s", task.Status)
	}
	if task.AttemptCount != 3 {
		t.Fatalf("expected 3 attempts, got %d", task.AttemptCount)
	}
}

func TestProcessBatchEmptyQueue(t *testing.T) {
	f := newFixture(t, 3)

	processed, err := f.worker.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if processed {
		t.Fatal("expected idle batch")
	}
}

func TestProcessBatchOldestFirstAcrossRetries(t *testing.T) {
	f := newFixture(t, 5)

	first := f.enqueue(t, "first@example.com", 0)
	f.conn.Model(&models.DeliveryTask{}).Where("id = ?", first).
		Update("created_at", time.Now().UTC().Add(-time.Hour))
	f.enqueue(t, "second@example.com", 0)

	if _, err := f.worker.ProcessBatch(context.Background()); err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}

	if len(f.sender.sent) != 2 || f.sender.sent[0] != "first@example.com" {
		t.Fatalf("expected oldest first, got %v", f.sender.sent)
	}
}

func TestClaimNextSkipsExhaustedTasks(t *testing.T) {
	f := newFixture(t, 3)
	ok := f.enqueue(t, "ok@example.com", 0)
	f.enqueue(t, "done@example.com", 3)

	repo := NewRepository(f.conn)
	task, err := repo.ClaimNext(f.conn, 3, nil)
	if err != nil {
		t.Fatalf("ClaimNext: %v", err)
	}
	if task == nil || task.ID != ok {
		t.Fatalf("expected the sendable task, got %+v", task)
	}
}

type flakyMarkRepo struct {
	*Repository
	failMarkFor uuid.UUID
}

func (r *flakyMarkRepo) MarkSent(tx *gorm.DB, id uuid.UUID) error {
	if id == r.failMarkFor {
		return errors.New("write conflict")
	}
	return r.Repository.MarkSent(tx, id)
}

func TestProcessBatchMarkErrorKeepsEarlierDeliveries(t *testing.T) {
	f := newFixture(t, 3)

	first := f.enqueue(t, "first@example.com", 0)
	f.conn.Model(&models.DeliveryTask{}).Where("id = ?", first).
		Update("created_at", time.Now().UTC().Add(-time.Hour))
	second := f.enqueue(t, "second@example.com", 0)

	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})
	worker, err := NewWorker(WorkerParams{
		Config:     config.DeliveryConfig{BatchSize: 10, PollIntervalMS: 10, MaxAttempts: 3},
		Logger:     logg,
		DB:         db.FromGorm(f.conn),
		Repository: &flakyMarkRepo{Repository: NewRepository(f.conn), failMarkFor: second},
		Sender:     f.sender,
	})
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	processed, err := worker.ProcessBatch(context.Background())
	if err == nil {
		t.Fatal("expected the mark error to surface")
	}
	if !processed {
		t.Fatal("first task was handled, batch must report progress")
	}

	// Each task commits in its own transaction, so the failed mark on the
	// second task must not undo the first task's sent status.
	got := f.load(t, first)
	if got.Status != enums.DeliveryStatusSent {
		t.Fatalf("first task should stay sent, got %s", got.Status)
	}
	got = f.load(t, second)
	if got.Status != enums.DeliveryStatusPending {
		t.Fatalf("second task should roll back to pending, got %s", got.Status)
	}
}
