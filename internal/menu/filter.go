package menu

import (
	"slices"

	"github.com/zphrs/ucsc-menu/lib/textutil"
)

// SimilarityThreshold is the minimum Jaro-Winkler similarity for
// FoodFilter.NameSimilarTo to match.
const SimilarityThreshold = 0.85

// FoodFilter narrows down the items of each section. Zero fields match
// everything.
type FoodFilter struct {
	// ContainsAll keeps items tagged with every allergen in the set.
	ContainsAll AllergenSet
	// ContainsAny keeps items tagged with at least one allergen in the set.
	ContainsAny AllergenSet
	// ExcludesAll drops items tagged with any allergen in the set.
	ExcludesAll AllergenSet

	NameContains  string
	NameSimilarTo string
}

func (f FoodFilter) IsZero() bool {
	return f == FoodFilter{}
}

func (f FoodFilter) Matches(item FoodItem) bool {
	if !f.ContainsAll.IsEmpty() && !item.Allergens.Contains(f.ContainsAll) {
		return false
	}
	if !f.ContainsAny.IsEmpty() && !item.Allergens.Intersects(f.ContainsAny) {
		return false
	}
	if item.Allergens.Intersects(f.ExcludesAll) {
		return false
	}
	if f.NameContains != "" && !textutil.ContainsFold(item.Name, f.NameContains) {
		return false
	}
	if f.NameSimilarTo != "" && textutil.Similarity(item.Name, f.NameSimilarTo) < SimilarityThreshold {
		return false
	}
	return true
}

// Query selects a subset of Locations.
type Query struct {
	// IDs keeps only these locations, empty keeps all of them.
	IDs []string
	// Start and End bound the menu dates inclusively, nil is unbounded.
	Start *Date
	End   *Date
	// MealType keeps only meals of this type, empty keeps all of them.
	MealType MealType
	Food     FoodFilter
}

// Select returns a filtered copy of locs, locs itself is left untouched.
// Sections left without items by the food filter are kept.
func Select(locs Locations, q Query) Locations {
	out := make(Locations, 0, len(locs))
	for _, loc := range locs {
		if len(q.IDs) > 0 && !slices.Contains(q.IDs, loc.Meta.ID) {
			continue
		}

		filtered := NewLocation(loc.Meta)
		for _, day := range loc.Menus.Between(q.Start, q.End) {
			// the source buffer has unique dates so this cannot overflow
			_ = filtered.Menus.Add(selectDay(day, q))
		}
		out = append(out, filtered)
	}
	return out
}

func selectDay(day DailyMenu, q Query) DailyMenu {
	out := DailyMenu{Date: day.Date, Meals: []Meal{}}
	for _, meal := range day.Meals {
		if q.MealType != "" && meal.Type != q.MealType {
			continue
		}
		out.Meals = append(out.Meals, selectMeal(meal, q.Food))
	}
	return out
}

func selectMeal(meal Meal, filter FoodFilter) Meal {
	out := Meal{
		Type:     meal.Type,
		Sections: make([]MealSection, len(meal.Sections)),
	}
	matchAll := filter.IsZero()
	for i, section := range meal.Sections {
		items := []FoodItem{}
		for _, item := range section.FoodItems {
			if matchAll || filter.Matches(item) {
				items = append(items, item)
			}
		}
		out.Sections[i] = MealSection{Name: section.Name, FoodItems: items}
	}
	return out
}
