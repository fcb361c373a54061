package ratings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pulppixels/pulppixels-backend/internal/catalog"
	"github.com/pulppixels/pulppixels-backend/pkg/db"
	"github.com/pulppixels/pulppixels-backend/pkg/db/models"
	pkgerrors "github.com/pulppixels/pulppixels-backend/pkg/errors"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
)

// uniqueConstraint guards one vote per fingerprint per wallpaper.
const uniqueConstraint = "ratings_wallpaper_fingerprint_key"

// Service records star ratings and keeps the wallpaper aggregate in sync.
type Service interface {
	Rate(ctx context.Context, wallpaperID uuid.UUID, input RateInput) (*SummaryDTO, error)
	Summary(ctx context.Context, wallpaperID uuid.UUID) (*SummaryDTO, error)
}

// RateInput is the validated rating submission.
type RateInput struct {
	Stars       int
	Fingerprint string
}

// SummaryDTO is the aggregate returned after every rating operation.
type SummaryDTO struct {
	WallpaperID   uuid.UUID `json:"wallpaper_id"`
	AverageRating float64   `json:"average_rating"`
	TotalRatings  int       `json:"total_ratings"`
}

// service implements the ratings service.
type service struct {
	dbClient *db.Client
	logger   *logger.Logger
}

// NewService constructs a ratings service instance.
func NewService(dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{dbClient: dbClient, logger: logg}, nil
}

// Rate inserts the vote and recomputes the wallpaper aggregate in a single
// transaction. A second vote from the same fingerprint is a conflict, not an
// update; the first vote stands.
func (s *service) Rate(ctx context.Context, wallpaperID uuid.UUID, input RateInput) (*SummaryDTO, error) {
	if input.Stars < 1 || input.Stars > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	fingerprint := strings.TrimSpace(input.Fingerprint)
	if fingerprint == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fingerprint is required")
	}

	var summary *SummaryDTO
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		wallpapers := catalog.NewRepository(tx)

		if _, err := wallpapers.FindByID(ctx, wallpaperID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "wallpaper not found")
			}
			return err
		}

		rating := &models.Rating{
			ID:          uuid.New(),
			WallpaperID: wallpaperID,
			Rating:      input.Stars,
			Fingerprint: fingerprint,
		}
		if err := tx.WithContext(ctx).Create(rating).Error; err != nil {
			if pkgerrors.IsUniqueViolation(err, uniqueConstraint) || db.IsUniqueViolation(err, uniqueConstraint) {
				return pkgerrors.New(pkgerrors.CodeConflict, "wallpaper already rated from this device")
			}
			return err
		}

		if err := wallpapers.UpdateRatingAggregate(ctx, wallpaperID); err != nil {
			return err
		}

		wallpaper, err := wallpapers.FindByID(ctx, wallpaperID)
		if err != nil {
			return err
		}
		summary = &SummaryDTO{
			WallpaperID:   wallpaper.ID,
			AverageRating: wallpaper.AverageRating,
			TotalRatings:  wallpaper.TotalRatings,
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording rating")
	}

	s.logger.Info(s.logger.WithWallpaperID(ctx, wallpaperID.String()), "rating recorded")
	return summary, nil
}

// Summary returns the current aggregate for a wallpaper.
func (s *service) Summary(ctx context.Context, wallpaperID uuid.UUID) (*SummaryDTO, error) {
	wallpapers := catalog.NewRepository(s.dbClient.DB())
	wallpaper, err := wallpapers.FindByID(ctx, wallpaperID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wallpaper not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading wallpaper")
	}
	return &SummaryDTO{
		WallpaperID:   wallpaper.ID,
		AverageRating: wallpaper.AverageRating,
		TotalRatings:  wallpaper.TotalRatings,
	}, nil
}
