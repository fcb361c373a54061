package contact

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pulppixels/pulppixels-backend/pkg/config"
	"github.com/pulppixels/pulppixels-backend/pkg/db"
	"github.com/pulppixels/pulppixels-backend/pkg/db/models"
	pkgerrors "github.com/pulppixels/pulppixels-backend/pkg/errors"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
	"github.com/pulppixels/pulppixels-backend/pkg/mailer"
)

// counterTTL keeps the daily key alive past UTC midnight so a stale counter
// never blocks the next day; the date inside the key does the real reset.
const counterTTL = 26 * time.Hour

// Service admits contact-form submissions under a per-email daily cap.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) error
}

// SubmitInput is the validated contact form payload.
type SubmitInput struct {
	Name    string
	Email   string
	Message string
}

type dailyCounter interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	ContactDailyKey(email string, day time.Time) string
}

type notifier interface {
	SendContactNotification(ctx context.Context, to string, data mailer.ContactNotificationData) error
}

// service implements the contact service.
type service struct {
	dbClient *db.Client
	counter  dailyCounter
	notify   notifier
	cfg      config.ContactConfig
	now      func() time.Time
	logger   *logger.Logger
}

// NewService constructs a contact service instance.
func NewService(dbClient *db.Client, counter dailyCounter, notify notifier, cfg config.ContactConfig, logg *logger.Logger) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if counter == nil {
		return nil, fmt.Errorf("daily counter required")
	}
	if notify == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if cfg.MaxPerDay <= 0 {
		return nil, fmt.Errorf("contact max per day must be positive")
	}
	if strings.TrimSpace(cfg.Inbox) == "" {
		return nil, fmt.Errorf("contact inbox required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		dbClient: dbClient,
		counter:  counter,
		notify:   notify,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logg,
	}, nil
}

// Submit admits the message if the sender is under the daily cap. The cap is
// a single atomic increment on a UTC-dated key, so two racing submissions
// can never both slip under the limit.
func (s *service) Submit(ctx context.Context, input SubmitInput) error {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	message := strings.TrimSpace(input.Message)

	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is invalid")
	}
	if message == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}

	now := s.now()
	key := s.counter.ContactDailyKey(email, now)
	count, err := s.counter.IncrWithTTL(ctx, key, counterTTL)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking daily contact limit")
	}
	if count > int64(s.cfg.MaxPerDay) {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "daily contact limit reached, try again tomorrow")
	}

	submission := &models.ContactSubmission{
		ID:             uuid.New(),
		Email:          email,
		LastSubmission: now,
	}
	if err := s.dbClient.DB().WithContext(ctx).Create(submission).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording contact submission")
	}

	if err := s.notify.SendContactNotification(ctx, s.cfg.Inbox, mailer.ContactNotificationData{
		Name:    name,
		Email:   email,
		Message: message,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "forwarding contact message")
	}

	s.logger.Info(s.logger.WithField(ctx, "contact_count", count), "contact submission admitted")
	return nil
}
