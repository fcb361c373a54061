package enums

import "fmt"

// WallpaperCategory represents the device class a wallpaper targets.
type WallpaperCategory string

const (
	WallpaperCategoryMobile  WallpaperCategory = "mobile"
	WallpaperCategoryDesktop WallpaperCategory = "desktop"
)

var validWallpaperCategories = []WallpaperCategory{
	WallpaperCategoryMobile,
	WallpaperCategoryDesktop,
}

// String implements fmt.Stringer.
func (c WallpaperCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known WallpaperCategory.
func (c WallpaperCategory) IsValid() bool {
	for _, candidate := range validWallpaperCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseWallpaperCategory converts raw input into a WallpaperCategory.
func ParseWallpaperCategory(value string) (WallpaperCategory, error) {
	for _, candidate := range validWallpaperCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallpaper category %q", value)
}
