package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pulppixels/pulppixels-backend/pkg/db/models"
	"github.com/pulppixels/pulppixels-backend/pkg/enums"
	pkgerrors "github.com/pulppixels/pulppixels-backend/pkg/errors"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
)

// Service exposes the wallpaper catalog to the storefront and admin console.
type Service interface {
	List(ctx context.Context, input ListInput) ([]WallpaperDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*WallpaperDTO, error)
	Search(ctx context.Context, query string) ([]WallpaperDTO, error)
	ListAdmin(ctx context.Context) ([]AdminWallpaperDTO, error)
	Create(ctx context.Context, adminID uuid.UUID, input CreateWallpaperInput) (*AdminWallpaperDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateWallpaperInput) (*AdminWallpaperDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListInput narrows the public browse endpoint.
type ListInput struct {
	Category *string
	FreeOnly bool
	Featured bool
	Sort     string
	Limit    int
}

// CreateWallpaperInput holds the validated payload plus the uploaded image.
type CreateWallpaperInput struct {
	Title       string
	Description *string
	Price       int
	Category    enums.WallpaperCategory
	Tags        []string
	IsFeatured  bool
	Filename    string
	ContentType string
	Image       io.Reader
}

// UpdateWallpaperInput holds optional mutation values for a wallpaper.
type UpdateWallpaperInput struct {
	Title       *string
	Description *string
	Price       *int
	Category    *enums.WallpaperCategory
	Tags        *[]string
	IsFeatured  *bool
}

type objectStore interface {
	Upload(ctx context.Context, path string, contentType string, body io.Reader) error
	Remove(ctx context.Context, paths ...string) error
	PublicURL(path string) string
}

// service implements the catalog service.
type service struct {
	repo    *Repository
	storage objectStore
	logger  *logger.Logger
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, storage objectStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if storage == nil {
		return nil, fmt.Errorf("object store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, storage: storage, logger: logg}, nil
}

// List returns the storefront catalog, newest first.
func (s *service) List(ctx context.Context, input ListInput) ([]WallpaperDTO, error) {
	filter := ListFilter{
		FreeOnly: input.FreeOnly,
		Featured: input.Featured,
		Limit:    input.Limit,
	}
	if input.Category != nil && *input.Category != "" {
		category, err := enums.ParseWallpaperCategory(*input.Category)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		filter.Category = &category
	}
	sort, err := ParseSortOrder(input.Sort)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	filter.Sort = sort

	wallpapers, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing wallpapers")
	}
	return toDTOs(wallpapers), nil
}

// Get loads a single wallpaper for the storefront detail page.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*WallpaperDTO, error) {
	wallpaper, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wallpaper not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading wallpaper")
	}
	dto := toDTO(wallpaper)
	return &dto, nil
}

// Search resolves a storefront query, with a handful of phrase shortcuts.
func (s *service) Search(ctx context.Context, query string) ([]WallpaperDTO, error) {
	plan := planSearch(query)

	switch {
	case plan.empty:
		return []WallpaperDTO{}, nil
	case plan.filter != nil:
		wallpapers, err := s.repo.List(ctx, *plan.filter)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "searching wallpapers")
		}
		return toDTOs(wallpapers), nil
	default:
		wallpapers, err := s.repo.SearchByText(ctx, plan.text)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "searching wallpapers")
		}
		return toDTOs(wallpapers), nil
	}
}

// ListAdmin returns the full catalog including storage paths.
func (s *service) ListAdmin(ctx context.Context) ([]AdminWallpaperDTO, error) {
	wallpapers, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing wallpapers")
	}
	dtos := make([]AdminWallpaperDTO, 0, len(wallpapers))
	for i := range wallpapers {
		dtos = append(dtos, toAdminDTO(&wallpapers[i]))
	}
	return dtos, nil
}

// Create uploads the image and inserts the catalog row. The object is removed
// again if the insert fails so storage does not accumulate orphans.
func (s *service) Create(ctx context.Context, adminID uuid.UUID, input CreateWallpaperInput) (*AdminWallpaperDTO, error) {
	if err := validateCreate(adminID, input); err != nil {
		return nil, err
	}

	id := uuid.New()
	objectPath := buildObjectPath(input.Category, id, input.Filename)

	if err := s.storage.Upload(ctx, objectPath, input.ContentType, input.Image); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "uploading wallpaper image")
	}

	wallpaper := &models.Wallpaper{
		ID:          id,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		ImagePath:   objectPath,
		PreviewURL:  s.storage.PublicURL(objectPath),
		Tags:        normalizeTags(input.Tags),
		IsFeatured:  input.IsFeatured,
		UploadedBy:  adminID,
	}

	created, err := s.repo.Create(ctx, wallpaper)
	if err != nil {
		if removeErr := s.storage.Remove(ctx, objectPath); removeErr != nil {
			s.logger.Warn(s.logger.WithWallpaperID(ctx, id.String()), "orphaned storage object after failed insert")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating wallpaper")
	}

	s.logger.Info(s.logger.WithWallpaperID(ctx, created.ID.String()), "wallpaper created")
	dto := toAdminDTO(created)
	return &dto, nil
}

// Update applies the partial mutation and persists the row.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateWallpaperInput) (*AdminWallpaperDTO, error) {
	wallpaper, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wallpaper not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading wallpaper")
	}

	if err := applyUpdate(wallpaper, input); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, wallpaper)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating wallpaper")
	}

	dto := toAdminDTO(updated)
	return &dto, nil
}

// Delete removes the catalog row, then the stored image. A failed object
// removal is logged but does not fail the request since the row is gone.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	wallpaper, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "wallpaper not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading wallpaper")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting wallpaper")
	}

	if wallpaper.ImagePath != "" {
		if err := s.storage.Remove(ctx, wallpaper.ImagePath); err != nil {
			s.logger.Warn(s.logger.WithWallpaperID(ctx, id.String()), "orphaned storage object after delete")
		}
	}

	s.logger.Info(s.logger.WithWallpaperID(ctx, id.String()), "wallpaper deleted")
	return nil
}

func validateCreate(adminID uuid.UUID, input CreateWallpaperInput) error {
	if adminID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "uploader id is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.Price < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if !input.Category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}
	if input.Image == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "image file is required")
	}
	return nil
}

func applyUpdate(wallpaper *models.Wallpaper, input UpdateWallpaperInput) error {
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		wallpaper.Title = title
	}
	if input.Description != nil {
		wallpaper.Description = input.Description
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		wallpaper.Price = *input.Price
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
		}
		wallpaper.Category = *input.Category
	}
	if input.Tags != nil {
		wallpaper.Tags = normalizeTags(*input.Tags)
	}
	if input.IsFeatured != nil {
		wallpaper.IsFeatured = *input.IsFeatured
	}
	return nil
}

func normalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		normalized = append(normalized, tag)
	}
	return normalized
}

func buildObjectPath(category enums.WallpaperCategory, id uuid.UUID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%s/%s%s", category, id, ext)
}
