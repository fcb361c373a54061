package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pulppixels/pulppixels-backend/api/responses"
	"github.com/pulppixels/pulppixels-backend/api/validators"
	"github.com/pulppixels/pulppixels-backend/internal/catalog"
	"github.com/pulppixels/pulppixels-backend/internal/ratings"
	"github.com/pulppixels/pulppixels-backend/pkg/enums"
	pkgerrors "github.com/pulppixels/pulppixels-backend/pkg/errors"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
)

const maxBrowseLimit = 100

func parseWallpaperID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "wallpaperId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid wallpaper id")
	}
	return id, nil
}

// ListWallpapers serves the public browse endpoint with optional filters.
func ListWallpapers(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, maxBrowseLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		freeOnly, err := validators.ParseQueryBool(r, "free")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		featured, err := validators.ParseQueryBool(r, "featured")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.ListInput{
			FreeOnly: freeOnly,
			Featured: featured,
			Sort:     strings.TrimSpace(r.URL.Query().Get("sort")),
			Limit:    limit,
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
			if _, err := enums.ParseWallpaperCategory(raw); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
				return
			}
			input.Category = &raw
		}

		wallpapers, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, wallpapers)
	}
}

// GetWallpaper serves a single wallpaper by id.
func GetWallpaper(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := parseWallpaperID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		wallpaper, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, wallpaper)
	}
}

// SearchWallpapers serves keyword search over the catalog.
func SearchWallpapers(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		query := r.URL.Query().Get("q")
		wallpapers, err := svc.Search(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, wallpapers)
	}
}

type rateRequest struct {
	Stars       int    `json:"stars" validate:"required,min=1,max=5"`
	Fingerprint string `json:"fingerprint" validate:"required"`
}

// RateWallpaper records a star rating from a storefront device.
func RateWallpaper(svc ratings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ratings service unavailable"))
			return
		}

		id, err := parseWallpaperID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload rateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Rate(r.Context(), id, ratings.RateInput{
			Stars:       payload.Stars,
			Fingerprint: payload.Fingerprint,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}
