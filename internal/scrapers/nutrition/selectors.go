package nutrition

import (
	"github.com/andybalholm/cascadia"
)

const (
	selectorDateField       = "input[name=strCurSearchDays]"
	selectorMealBlock       = `table[bordercolor="#CCC"] table[bordercolor="#FFFF00"]`
	selectorMealLabel       = ".shortmenumeals"
	selectorSectionName     = ".shortmenucats > span"
	selectorFoodName        = ".shortmenurecipes > span"
	selectorAllergenIcon    = "td > img"
	selectorPrice           = ".shortmenuprices > span"
	selectorLocationChoices = "div#locationchoices"
	selectorLocation        = "li.locations"
	selectorLocationAnchor  = "a"
)

// Selectors holds every selector the parsers use, compiled once.
type Selectors struct {
	DateField       cascadia.Selector
	MealBlock       cascadia.Selector
	MealLabel       cascadia.Selector
	SectionName     cascadia.Selector
	FoodName        cascadia.Selector
	AllergenIcon    cascadia.Selector
	Price           cascadia.Selector
	LocationChoices cascadia.Selector
	Location        cascadia.Selector
	LocationAnchor  cascadia.Selector

	tbody cascadia.Selector
	tr    cascadia.Selector
	table cascadia.Selector
}

// NewSelectors compiles the selectors, it panics if any of them is invalid.
func NewSelectors() *Selectors {
	return &Selectors{
		DateField:       cascadia.MustCompile(selectorDateField),
		MealBlock:       cascadia.MustCompile(selectorMealBlock),
		MealLabel:       cascadia.MustCompile(selectorMealLabel),
		SectionName:     cascadia.MustCompile(selectorSectionName),
		FoodName:        cascadia.MustCompile(selectorFoodName),
		AllergenIcon:    cascadia.MustCompile(selectorAllergenIcon),
		Price:           cascadia.MustCompile(selectorPrice),
		LocationChoices: cascadia.MustCompile(selectorLocationChoices),
		Location:        cascadia.MustCompile(selectorLocation),
		LocationAnchor:  cascadia.MustCompile(selectorLocationAnchor),

		tbody: cascadia.MustCompile("tbody"),
		tr:    cascadia.MustCompile("tr"),
		table: cascadia.MustCompile("table"),
	}
}
