package controllers

import (
	"net/http"

	"github.com/pulppixels/pulppixels-backend/api/responses"
	"github.com/pulppixels/pulppixels-backend/api/validators"
	"github.com/pulppixels/pulppixels-backend/internal/contact"
	pkgerrors "github.com/pulppixels/pulppixels-backend/pkg/errors"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
)

type contactRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=4000"`
}

// SubmitContact records a contact form submission and forwards it to the
// support inbox.
func SubmitContact(svc contact.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		var payload contactRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err := svc.Submit(r.Context(), contact.SubmitInput{
			Name:    payload.Name,
			Email:   payload.Email,
			Message: payload.Message,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "received"})
	}
}
