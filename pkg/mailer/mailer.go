package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/pulppixels/pulppixels-backend/pkg/config"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
)

var (
	errHostRequired   = errors.New("smtp host is required")
	errFromRequired   = errors.New("smtp sender address is required")
	errLoggerRequired = errors.New("mailer logger is required")
)

type smtpSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// Mailer sends storefront transactional email over SMTP.
type Mailer struct {
	sender smtpSender
	from   string
	logger *logger.Logger
}

// New builds an SMTP mailer from the configured credentials.
func New(cfg config.SMTPConfig, logg *logger.Logger) (*Mailer, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, errHostRequired
	}
	from := strings.TrimSpace(cfg.Sender())
	if from == "" {
		return nil, errFromRequired
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
		gomail.WithTimeout(15 * time.Second),
	}
	if cfg.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.User),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("building smtp client: %w", err)
	}

	return &Mailer{
		sender: client,
		from:   from,
		logger: logg,
	}, nil
}

// SendDownloadLink mails a signed download URL to the buyer. The link text
// calls out the expiry window so stale links do not surprise anyone.
func (m *Mailer) SendDownloadLink(ctx context.Context, to string, data DownloadLinkData) error {
	html, err := renderDownloadLink(data)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Your wallpaper is ready: %s", data.WallpaperTitle)
	return m.send(ctx, to, subject, html)
}

// SendContactNotification forwards a contact-form message to the inbox.
func (m *Mailer) SendContactNotification(ctx context.Context, to string, data ContactNotificationData) error {
	html, err := renderContactNotification(data)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("New contact message from %s", data.Name)
	return m.send(ctx, to, subject, html)
}

// SendTestEmail delivers a diagnostics message to verify SMTP wiring.
func (m *Mailer) SendTestEmail(ctx context.Context, to string) error {
	html, err := renderTestEmail(time.Now().UTC())
	if err != nil {
		return err
	}
	return m.send(ctx, to, "Pulp Pixels delivery check", html)
}

func (m *Mailer) send(ctx context.Context, to, subject, html string) error {
	if m == nil || m.sender == nil {
		return errors.New("mailer not initialized")
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return errors.New("recipient address is required")
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, html)

	if err := m.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email to %s: %w", to, err)
	}

	m.logger.Info(m.logger.WithField(ctx, "subject", subject), "email sent")
	return nil
}
