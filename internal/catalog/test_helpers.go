package catalog

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/pulppixels/pulppixels-backend/pkg/db/models"
	"github.com/pulppixels/pulppixels-backend/pkg/enums"
)

func mustCreateTestAdmin(t *testing.T, tx *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("pp_test_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		IsAdmin:      true,
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return user
}

func mustCreateTestWallpaper(t *testing.T, tx *gorm.DB, uploadedBy uuid.UUID, price int, category enums.WallpaperCategory) *models.Wallpaper {
	t.Helper()
	id := uuid.New()
	wallpaper := &models.Wallpaper{
		ID:         id,
		Title:      fmt.Sprintf("Test Wallpaper %s", id),
		Price:      price,
		Category:   category,
		ImagePath:  fmt.Sprintf("%s/%s.jpg", category, id),
		PreviewURL: fmt.Sprintf("https://cdn.example.com/%s/%s.jpg", category, id),
		Tags:       pq.StringArray{"test"},
		UploadedBy: uploadedBy,
	}
	if err := tx.Create(wallpaper).Error; err != nil {
		t.Fatalf("create wallpaper: %v", err)
	}
	return wallpaper
}
