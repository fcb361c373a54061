package downloads

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pulppixels/pulppixels-backend/internal/payments"
	"github.com/pulppixels/pulppixels-backend/pkg/db"
	"github.com/pulppixels/pulppixels-backend/pkg/db/models"
	pkgerrors "github.com/pulppixels/pulppixels-backend/pkg/errors"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
	"github.com/pulppixels/pulppixels-backend/pkg/storage/supastore"
)

// Service hands out free wallpaper downloads. Paid wallpapers are refused
// here outright; they only flow through payment verification.
type Service interface {
	RequestFree(ctx context.Context, input RequestInput) (*GrantDTO, error)
}

// RequestInput identifies the wallpaper and where to send the link.
type RequestInput struct {
	WallpaperID uuid.UUID
	Email       string
}

// GrantDTO is the immediate response; the same link is queued for email.
type GrantDTO struct {
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
	EmailQueued bool      `json:"email_queued"`
}

type urlSigner interface {
	CreateSignedURL(ctx context.Context, path string, expiry time.Duration) (*supastore.SignedURL, error)
}

type wallpaperReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Wallpaper, error)
}

// service implements the downloads service.
type service struct {
	dbClient   *db.Client
	signer     urlSigner
	wallpapers wallpaperReader
	urlExpiry  time.Duration
	logger     *logger.Logger
}

// NewService constructs a downloads service instance.
func NewService(dbClient *db.Client, signer urlSigner, wallpapers wallpaperReader, urlExpiry time.Duration, logg *logger.Logger) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if signer == nil {
		return nil, fmt.Errorf("url signer required")
	}
	if wallpapers == nil {
		return nil, fmt.Errorf("wallpaper reader required")
	}
	if urlExpiry <= 0 {
		return nil, fmt.Errorf("download url expiry must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		dbClient:   dbClient,
		signer:     signer,
		wallpapers: wallpapers,
		urlExpiry:  urlExpiry,
		logger:     logg,
	}, nil
}

// RequestFree signs a time-limited URL for a free wallpaper and queues the
// email. A paid wallpaper is forbidden; the payment gateway is never involved
// on this path.
func (s *service) RequestFree(ctx context.Context, input RequestInput) (*GrantDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is invalid")
	}
	if input.WallpaperID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wallpaper id is required")
	}

	wallpaper, err := s.wallpapers.FindByID(ctx, input.WallpaperID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wallpaper not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading wallpaper")
	}
	if !wallpaper.IsFree() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "wallpaper requires purchase")
	}

	signed, err := s.signer.CreateSignedURL(ctx, wallpaper.ImagePath, s.urlExpiry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "signing download url")
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := payments.NewRepository(tx)
		if _, err := repo.CreateDownloadRequest(ctx, &models.DownloadRequest{
			WallpaperID: wallpaper.ID,
			Email:       email,
			DownloadURL: signed.URL,
			ExpiresAt:   signed.ExpiresAt,
		}); err != nil {
			return err
		}
		_, err := repo.CreateDeliveryTask(ctx, &models.DeliveryTask{
			WallpaperID:    wallpaper.ID,
			WallpaperTitle: wallpaper.Title,
			Email:          email,
			DownloadURL:    signed.URL,
			ExpiresAt:      signed.ExpiresAt,
		})
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording download request")
	}

	ctx = s.logger.WithStep(s.logger.WithWallpaperID(ctx, wallpaper.ID.String()), "free_download_granted")
	s.logger.Info(ctx, "free download granted")

	return &GrantDTO{
		DownloadURL: signed.URL,
		ExpiresAt:   signed.ExpiresAt,
		EmailQueued: true,
	}, nil
}
