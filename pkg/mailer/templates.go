package mailer

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// DownloadLinkData feeds the purchase confirmation email.
type DownloadLinkData struct {
	WallpaperTitle string
	DownloadURL    string
	ExpiresAt      time.Time
}

// ContactNotificationData feeds the contact-form forwarding email.
type ContactNotificationData struct {
	Name    string
	Email   string
	Message string
}

var downloadLinkTmpl = template.Must(template.New("download_link").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; background-color: #f4f4f5; padding: 24px;">
    <div style="max-width: 520px; margin: 0 auto; background: #ffffff; border-radius: 8px; padding: 32px;">
      <h1 style="font-size: 20px; color: #18181b;">Thanks for choosing Pulp Pixels!</h1>
      <p style="color: #3f3f46;">Your wallpaper <strong>{{.WallpaperTitle}}</strong> is ready to download.</p>
      <p style="text-align: center; margin: 32px 0;">
        <a href="{{.DownloadURL}}" style="background: #7c3aed; color: #ffffff; padding: 12px 28px; border-radius: 6px; text-decoration: none;">Download Wallpaper</a>
      </p>
      <p style="color: #71717a; font-size: 13px;">This link expires in 1 hour (at {{.ExpiresAt.Format "15:04 MST"}}). If it has lapsed, reply to this email and we will send a fresh one.</p>
    </div>
  </body>
</html>`))

var contactNotificationTmpl = template.Must(template.New("contact_notification").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; background-color: #f4f4f5; padding: 24px;">
    <div style="max-width: 520px; margin: 0 auto; background: #ffffff; border-radius: 8px; padding: 32px;">
      <h1 style="font-size: 18px; color: #18181b;">New contact message</h1>
      <p style="color: #3f3f46;"><strong>From:</strong> {{.Name}} &lt;{{.Email}}&gt;</p>
      <p style="color: #3f3f46; white-space: pre-wrap;">{{.Message}}</p>
    </div>
  </body>
</html>`))

var testEmailTmpl = template.Must(template.New("test_email").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif;">
    <p>SMTP delivery check from the Pulp Pixels backend.</p>
    <p>Sent at {{.Format "2006-01-02 15:04:05 MST"}}.</p>
  </body>
</html>`))

func renderDownloadLink(data DownloadLinkData) (string, error) {
	if strings.TrimSpace(data.DownloadURL) == "" {
		return "", fmt.Errorf("download url is required")
	}
	var sb strings.Builder
	if err := downloadLinkTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering download link email: %w", err)
	}
	return sb.String(), nil
}

func renderContactNotification(data ContactNotificationData) (string, error) {
	var sb strings.Builder
	if err := contactNotificationTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering contact email: %w", err)
	}
	return sb.String(), nil
}

func renderTestEmail(at time.Time) (string, error) {
	var sb strings.Builder
	if err := testEmailTmpl.Execute(&sb, at); err != nil {
		return "", fmt.Errorf("rendering test email: %w", err)
	}
	return sb.String(), nil
}
