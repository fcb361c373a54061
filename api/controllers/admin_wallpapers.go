package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/pulppixels/pulppixels-backend/api/middleware"
	"github.com/pulppixels/pulppixels-backend/api/responses"
	"github.com/pulppixels/pulppixels-backend/api/validators"
	"github.com/pulppixels/pulppixels-backend/internal/catalog"
	"github.com/pulppixels/pulppixels-backend/pkg/enums"
	pkgerrors "github.com/pulppixels/pulppixels-backend/pkg/errors"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
)

const maxUploadBytes = 32 << 20

// AdminListWallpapers returns the full catalog with storage internals.
func AdminListWallpapers(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		wallpapers, err := svc.ListAdmin(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, wallpapers)
	}
}

// AdminCreateWallpaper accepts a multipart form with the wallpaper image and
// its metadata fields.
func AdminCreateWallpaper(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		adminID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		input, err := parseCreateForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image file is required"))
			return
		}
		defer file.Close()

		input.Filename = header.Filename
		input.ContentType = header.Header.Get("Content-Type")
		input.Image = file

		wallpaper, err := svc.Create(r.Context(), adminID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, wallpaper)
	}
}

func parseCreateForm(r *http.Request) (catalog.CreateWallpaperInput, error) {
	var input catalog.CreateWallpaperInput

	input.Title = validators.SanitizeString(r.FormValue("title"), 200)
	if input.Title == "" {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}

	if desc := validators.SanitizeString(r.FormValue("description"), 2000); desc != "" {
		input.Description = &desc
	}

	priceRaw := strings.TrimSpace(r.FormValue("price"))
	if priceRaw == "" {
		priceRaw = "0"
	}
	price, err := strconv.Atoi(priceRaw)
	if err != nil {
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price must be numeric")
	}
	input.Price = price

	category, err := enums.ParseWallpaperCategory(strings.TrimSpace(r.FormValue("category")))
	if err != nil {
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	input.Category = category

	if tagsRaw := strings.TrimSpace(r.FormValue("tags")); tagsRaw != "" {
		input.Tags = strings.Split(tagsRaw, ",")
	}

	if featuredRaw := strings.TrimSpace(r.FormValue("is_featured")); featuredRaw != "" {
		featured, err := strconv.ParseBool(featuredRaw)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "is_featured must be a boolean")
		}
		input.IsFeatured = featured
	}

	return input, nil
}

type updateWallpaperRequest struct {
	Title       *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Price       *int      `json:"price,omitempty" validate:"omitempty,min=0"`
	Category    *string   `json:"category,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	IsFeatured  *bool     `json:"is_featured,omitempty"`
}

// AdminUpdateWallpaper applies a partial metadata update.
func AdminUpdateWallpaper(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload updateWallpaperRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.UpdateWallpaperInput{
			Title:       payload.Title,
			Description: payload.Description,
			Price:       payload.Price,
			Tags:        payload.Tags,
			IsFeatured:  payload.IsFeatured,
		}
		if payload.Category != nil {
			category, err := enums.ParseWallpaperCategory(strings.TrimSpace(*payload.Category))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
				return
			}
			input.Category = &category
		}

		wallpaper, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, wallpaper)
	}
}

// AdminDeleteWallpaper removes a wallpaper and its stored image.
func AdminDeleteWallpaper(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
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

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
