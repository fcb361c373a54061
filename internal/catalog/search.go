package catalog

import (
	"strings"

	"github.com/pulppixels/pulppixels-backend/pkg/enums"
)

// searchPlan routes a raw storefront query to either a structured filter or a
// free-text match. Empty queries short-circuit to an empty result.
type searchPlan struct {
	empty  bool
	filter *ListFilter
	text   string
}

func categoryFilter(category enums.WallpaperCategory, freeOnly bool) *ListFilter {
	return &ListFilter{Category: &category, FreeOnly: freeOnly}
}

// planSearch interprets well-known phrases anywhere in the query before
// falling back to a title/description match. Containment wins over exactness,
// so "free mobile wallpapers" still filters to free mobile, and precedence
// runs compound phrases first.
func planSearch(raw string) searchPlan {
	q := strings.ToLower(strings.TrimSpace(raw))

	switch {
	case q == "":
		return searchPlan{empty: true}
	case strings.Contains(q, "free mobile"):
		return searchPlan{filter: categoryFilter(enums.WallpaperCategoryMobile, true)}
	case strings.Contains(q, "free desktop"):
		return searchPlan{filter: categoryFilter(enums.WallpaperCategoryDesktop, true)}
	case strings.Contains(q, "mobile"):
		return searchPlan{filter: categoryFilter(enums.WallpaperCategoryMobile, false)}
	case strings.Contains(q, "desktop"):
		return searchPlan{filter: categoryFilter(enums.WallpaperCategoryDesktop, false)}
	case strings.Contains(q, "free"):
		return searchPlan{filter: &ListFilter{FreeOnly: true}}
	}

	return searchPlan{text: q}
}
