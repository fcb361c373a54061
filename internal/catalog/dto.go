package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/pulppixels/pulppixels-backend/pkg/db/models"
	"github.com/pulppixels/pulppixels-backend/pkg/enums"
)

// WallpaperDTO is the public catalog projection of a wallpaper.
type WallpaperDTO struct {
	ID            uuid.UUID               `json:"id"`
	Title         string                  `json:"title"`
	Description   *string                 `json:"description,omitempty"`
	Price         int                     `json:"price"`
	IsFree        bool                    `json:"is_free"`
	Category      enums.WallpaperCategory `json:"category"`
	PreviewURL    string                  `json:"preview_url"`
	Tags          []string                `json:"tags"`
	AverageRating float64                 `json:"average_rating"`
	TotalRatings  int                     `json:"total_ratings"`
	IsFeatured    bool                    `json:"is_featured"`
	CreatedAt     time.Time               `json:"created_at"`
}

// AdminWallpaperDTO extends the public projection with storage internals.
type AdminWallpaperDTO struct {
	WallpaperDTO
	ImagePath  string    `json:"image_path"`
	UploadedBy uuid.UUID `json:"uploaded_by"`
}

func toDTO(w *models.Wallpaper) WallpaperDTO {
	tags := []string(w.Tags)
	if tags == nil {
		tags = []string{}
	}
	return WallpaperDTO{
		ID:            w.ID,
		Title:         w.Title,
		Description:   w.Description,
		Price:         w.Price,
		IsFree:        w.IsFree(),
		Category:      w.Category,
		PreviewURL:    w.PreviewURL,
		Tags:          tags,
		AverageRating: w.AverageRating,
		TotalRatings:  w.TotalRatings,
		IsFeatured:    w.IsFeatured,
		CreatedAt:     w.CreatedAt,
	}
}

func toAdminDTO(w *models.Wallpaper) AdminWallpaperDTO {
	return AdminWallpaperDTO{
		WallpaperDTO: toDTO(w),
		ImagePath:    w.ImagePath,
		UploadedBy:   w.UploadedBy,
	}
}

func toDTOs(wallpapers []models.Wallpaper) []WallpaperDTO {
	dtos := make([]WallpaperDTO, 0, len(wallpapers))
	for i := range wallpapers {
		dtos = append(dtos, toDTO(&wallpapers[i]))
	}
	return dtos
}
