package controllers

import (
	"context"
	"net/http"

	"github.com/pulppixels/pulppixels-backend/api/responses"
	"github.com/pulppixels/pulppixels-backend/api/validators"
	pkgerrors "github.com/pulppixels/pulppixels-backend/pkg/errors"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
)

type testEmailSender interface {
	SendTestEmail(ctx context.Context, to string) error
}

type testEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// AdminSendTestEmail fires a throwaway email so operators can verify SMTP
// settings from the console.
func AdminSendTestEmail(sender testEmailSender, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sender == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "mailer unavailable"))
			return
		}

		var payload testEmailRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := sender.SendTestEmail(r.Context(), payload.Email); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send test email"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "sent"})
	}
}
