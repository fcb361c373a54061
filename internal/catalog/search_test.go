package catalog

import (
	"testing"

	"github.com/pulppixels/pulppixels-backend/pkg/enums"
)

func TestPlanSearchEmptyQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\t"} {
		plan := planSearch(q)
		if !plan.empty {
			t.Fatalf("expected empty plan for %q", q)
		}
	}
}

func TestPlanSearchPhraseShortcuts(t *testing.T) {
	cases := []struct {
		query    string
		category *enums.WallpaperCategory
		freeOnly bool
	}{
		{"free mobile", ptrCategory(enums.WallpaperCategoryMobile), true},
		{"  Free Mobile  ", ptrCategory(enums.WallpaperCategoryMobile), true},
		{"free mobile wallpapers", ptrCategory(enums.WallpaperCategoryMobile), true},
		{"best free desktop art", ptrCategory(enums.WallpaperCategoryDesktop), true},
		{"free desktop", ptrCategory(enums.WallpaperCategoryDesktop), true},
		{"mobile", ptrCategory(enums.WallpaperCategoryMobile), false},
		// "mobile" outranks the lone "free" keyword; only the compound
		// "free mobile" phrase adds the price filter.
		{"mobile free", ptrCategory(enums.WallpaperCategoryMobile), false},
		{"mobile backgrounds", ptrCategory(enums.WallpaperCategoryMobile), false},
		{"desktop", ptrCategory(enums.WallpaperCategoryDesktop), false},
		{"free", nil, true},
		{"free stuff", nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			plan := planSearch(tc.query)
			if plan.empty {
				t.Fatal("unexpected empty plan")
			}
			if plan.filter == nil {
				t.Fatalf("expected filter plan, got text %q", plan.text)
			}
			if plan.filter.FreeOnly != tc.freeOnly {
				t.Fatalf("expected freeOnly=%v", tc.freeOnly)
			}
			if tc.category == nil {
				if plan.filter.Category != nil {
					t.Fatalf("expected no category, got %v", *plan.filter.Category)
				}
				return
			}
			if plan.filter.Category == nil || *plan.filter.Category != *tc.category {
				t.Fatalf("expected category %v, got %v", *tc.category, plan.filter.Category)
			}
		})
	}
}

func TestPlanSearchFallsBackToText(t *testing.T) {
	plan := planSearch("  Neon Sunset  ")
	if plan.empty || plan.filter != nil {
		t.Fatal("expected text plan")
	}
	if plan.text != "neon sunset" {
		t.Fatalf("expected lowered trimmed text, got %q", plan.text)
	}
}

func ptrCategory(c enums.WallpaperCategory) *enums.WallpaperCategory {
	return &c
}
