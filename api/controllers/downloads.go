package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pulppixels/pulppixels-backend/api/responses"
	"github.com/pulppixels/pulppixels-backend/api/validators"
	"github.com/pulppixels/pulppixels-backend/internal/downloads"
	pkgerrors "github.com/pulppixels/pulppixels-backend/pkg/errors"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
)

type downloadRequest struct {
	WallpaperID string `json:"wallpaper_id" validate:"required,uuid4"`
	Email       string `json:"email" validate:"required,email"`
}

// RequestDownload grants a signed link for a free wallpaper and queues the
// same link for email delivery.
func RequestDownload(svc downloads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "downloads service unavailable"))
			return
		}

		var payload downloadRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		wallpaperID, err := uuid.Parse(payload.WallpaperID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid wallpaper id"))
			return
		}

		grant, err := svc.RequestFree(r.Context(), downloads.RequestInput{
			WallpaperID: wallpaperID,
			Email:       payload.Email,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, grant)
	}
}
