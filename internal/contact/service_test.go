package contact

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pulppixels/pulppixels-backend/pkg/config"
	"github.com/pulppixels/pulppixels-backend/pkg/db"
	pkgerrors "github.com/pulppixels/pulppixels-backend/pkg/errors"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
	"github.com/pulppixels/pulppixels-backend/pkg/mailer"
)

const testSchema = `
CREATE TABLE contact_submissions (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL,
    last_submission DATETIME NOT NULL,
    created_at DATETIME
);
`

type memoryCounter struct {
	counts map[string]int64
}

func (m *memoryCounter) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	if m.counts == nil {
		m.counts = map[string]int64{}
	}
	m.counts[key]++
	return m.counts[key], nil
}

func (m *memoryCounter) ContactDailyKey(email string, day time.Time) string {
	return "pp:counter:contact:" + strings.ToLower(email) + ":" + day.UTC().Format("2006-01-02")
}

type stubNotifier struct {
	sent []mailer.ContactNotificationData
	to   []string
	err  error
}

func (s *stubNotifier) SendContactNotification(_ context.Context, to string, data mailer.ContactNotificationData) error {
	if s.err != nil {
		return s.err
	}
	s.to = append(s.to, to)
	s.sent = append(s.sent, data)
	return nil
}

type fixture struct {
	svc      *service
	conn     *gorm.DB
	counter  *memoryCounter
	notifier *stubNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.Exec(testSchema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}

	counter := &memoryCounter{}
	notifier := &stubNotifier{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})

	svc, err := NewService(db.FromGorm(conn), counter, notifier, config.ContactConfig{
		MaxPerDay: 2,
		Inbox:     "hello@pulppixels.example",
	}, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &fixture{svc: svc.(*service), conn: conn, counter: counter, notifier: notifier}
}

func validInput() SubmitInput {
	return SubmitInput{
		Name:    "Ada",
		Email:   "ada@example.com",
		Message: "Love the desktop pack!",
	}
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*SubmitInput)
	}{
		{"empty name", func(in *SubmitInput) { in.Name = " " }},
		{"empty email", func(in *SubmitInput) { in.Email = "" }},
		{"bad email", func(in *SubmitInput) { in.Email = "nope" }},
		{"empty message", func(in *SubmitInput) { in.Message = "  " }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			err := f.svc.Submit(ctx, input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	if len(f.counter.counts) != 0 {
		t.Fatal("invalid input must not touch the counter")
	}
}

func TestSubmitEnforcesDailyCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := f.svc.Submit(ctx, validInput()); err != nil {
			t.Fatalf("submission %d: %v", i+1, err)
		}
	}

	err := f.svc.Submit(ctx, validInput())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeRateLimit {
		t.Fatalf("expected rate limit on third submission, got %v", err)
	}

	var count int64
	if err := f.conn.Table("contact_submissions").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 stored submissions, got %d", count)
	}
	if len(f.notifier.sent) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(f.notifier.sent))
	}
}

func TestSubmitCapResetsAtUTCMidnight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	day1 := time.Date(2026, 8, 30, 23, 50, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return day1 }

	for i := 0; i < 2; i++ {
		if err := f.svc.Submit(ctx, validInput()); err != nil {
			t.Fatalf("day1 submission %d: %v", i+1, err)
		}
	}
	if err := f.svc.Submit(ctx, validInput()); err == nil {
		t.Fatal("expected third submission rejected before midnight")
	}

	f.svc.now = func() time.Time { return day1.Add(15 * time.Minute) } // past UTC midnight
	if err := f.svc.Submit(ctx, validInput()); err != nil {
		t.Fatalf("first submission after midnight should pass: %v", err)
	}
}

func TestSubmitCapIsPerEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := f.svc.Submit(ctx, validInput()); err != nil {
			t.Fatalf("submission %d: %v", i+1, err)
		}
	}

	other := validInput()
	other.Email = "grace@example.com"
	if err := f.svc.Submit(ctx, other); err != nil {
		t.Fatalf("other sender should not be capped: %v", err)
	}
}

func TestSubmitForwardsToInbox(t *testing.T) {
	f := newFixture(t)

	if err := f.svc.Submit(context.Background(), validInput()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(f.notifier.to) != 1 || f.notifier.to[0] != "hello@pulppixels.example" {
		t.Fatalf("expected notification to inbox, got %v", f.notifier.to)
	}
	if f.notifier.sent[0].Email != "ada@example.com" {
		t.Fatalf("unexpected sender email %q", f.notifier.sent[0].Email)
	}
}
