package menu

import (
	"strings"
)

// FoodItem is one row of a meal section.
type FoodItem struct {
	Name      string      `json:"name"`
	Allergens AllergenSet `json:"allergens"`
	// Price is nil when the page shows no price.
	Price *Price `json:"price,omitempty"`
}

// Equal compares name and allergens, price is not part of an item's identity.
func (f FoodItem) Equal(other FoodItem) bool {
	return f.Name == other.Name && f.Allergens == other.Allergens
}

type MealSection struct {
	Name      string     `json:"name"`
	FoodItems []FoodItem `json:"food_items"`
}

type MealType string

const (
	MealBreakfast      MealType = "breakfast"
	MealLunch          MealType = "lunch"
	MealDinner         MealType = "dinner"
	MealLateNight      MealType = "late_night"
	MealLateNightOakes MealType = "late_night_oakes"
	MealMenu           MealType = "menu"
	MealAllDay         MealType = "all_day"
	MealUnknown        MealType = "unknown"
)

var mealLabels = map[string]MealType{
	"breakfast":          MealBreakfast,
	"lunch":              MealLunch,
	"dinner":             MealDinner,
	"late night":         MealLateNight,
	"late night @ oakes": MealLateNightOakes,
	"menu":               MealMenu,
	"all day":            MealAllDay,
}

// MealTypeFromLabel maps the label printed above a meal block. Labels that
// are not recognized map to MealUnknown.
func MealTypeFromLabel(label string) MealType {
	key := strings.ToLower(strings.Join(strings.Fields(label), " "))
	mt, ok := mealLabels[key]
	if !ok {
		return MealUnknown
	}
	return mt
}

// ParseMealType parses the string form of a MealType ("late_night").
func ParseMealType(s string) (MealType, bool) {
	switch mt := MealType(strings.ToLower(strings.TrimSpace(s))); mt {
	case MealBreakfast, MealLunch, MealDinner, MealLateNight,
		MealLateNightOakes, MealMenu, MealAllDay, MealUnknown:
		return mt, true
	}
	return "", false
}

func (m MealType) Label() string {
	switch m {
	case MealBreakfast:
		return "Breakfast"
	case MealLunch:
		return "Lunch"
	case MealDinner:
		return "Dinner"
	case MealLateNight:
		return "Late Night"
	case MealLateNightOakes:
		return "Late Night @ Oakes"
	case MealMenu:
		return "Menu"
	case MealAllDay:
		return "All Day"
	}
	return "Unknown"
}

type Meal struct {
	Type     MealType      `json:"type"`
	Sections []MealSection `json:"sections"`
}

// DailyMenu is every meal served at a location on one date. Two daily menus
// with the same date are duplicates regardless of their meals.
type DailyMenu struct {
	Date  Date   `json:"date"`
	Meals []Meal `json:"meals"`
}

func (d DailyMenu) Compare(other DailyMenu) int {
	return d.Date.Compare(other.Date)
}

func (d DailyMenu) Equal(other DailyMenu) bool {
	return d.Date == other.Date
}
