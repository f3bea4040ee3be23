package service

import (
	"time"

	"github.com/zphrs/ucsc-menu/internal/menu"
)

type GetLocationsRequest struct {
	// IDs keeps only these locations, empty keeps all of them.
	IDs []string `json:"ids,omitempty"`
	// Start and End bound the menu dates inclusively.
	Start *menu.Date `json:"start,omitempty"`
	End   *menu.Date `json:"end,omitempty"`
	// MealType is one of the menu.MealType strings, ex. "late_night".
	MealType string `json:"meal_type,omitempty"`

	// Allergen lists take either the display ("Gluten Friendly") or the
	// enum ("GLUTEN_FRIENDLY") names.
	ContainsAll []string `json:"contains_all,omitempty"`
	ContainsAny []string `json:"contains_any,omitempty"`
	ExcludesAll []string `json:"excludes_all,omitempty"`

	NameContains  string `json:"name_contains,omitempty"`
	NameSimilarTo string `json:"name_similar_to,omitempty"`

	// MetaOnly drops the menus from the response.
	MetaOnly bool `json:"meta_only,omitempty"`
}

type Location struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	URL   string           `json:"url"`
	Menus []menu.DailyMenu `json:"menus,omitempty"`
}

type GetLocationsResponse struct {
	CachedAt  time.Time  `json:"cached_at"`
	Locations []Location `json:"locations"`
}

type RequestRefreshRequest struct{}

type RequestRefreshResponse struct {
	Refreshed bool      `json:"refreshed"`
	CachedAt  time.Time `json:"cached_at"`
}
