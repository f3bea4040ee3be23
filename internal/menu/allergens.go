package menu

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"strings"
)

// AllergenSet is a bitset of the allergen and dietary tags shown in the
// dining site's legend.
type AllergenSet uint16

const (
	Egg AllergenSet = 1 << iota
	Fish
	GlutenFriendly
	Milk
	Peanut
	Soy
	TreeNut
	Alcohol
	Vegan
	Vegetarian
	Pork
	Beef
	Halal
	Shellfish
	Sesame

	// AllAllergens has every known tag set.
	AllAllergens = Egg | Fish | GlutenFriendly | Milk | Peanut | Soy | TreeNut |
		Alcohol | Vegan | Vegetarian | Pork | Beef | Halal | Shellfish | Sesame
)

type allergenName struct {
	flag    AllergenSet
	enum    string
	display string
}

// ordered by bit
var allergenNames = []allergenName{
	{Egg, "EGG", "Egg"},
	{Fish, "FISH", "Fish"},
	{GlutenFriendly, "GLUTEN_FRIENDLY", "Gluten Friendly"},
	{Milk, "MILK", "Milk"},
	{Peanut, "PEANUT", "Peanut"},
	{Soy, "SOY", "Soy"},
	{TreeNut, "TREE_NUT", "Tree Nut"},
	{Alcohol, "ALCOHOL", "Alcohol"},
	{Vegan, "VEGAN", "Vegan"},
	{Vegetarian, "VEGETARIAN", "Vegetarian"},
	{Pork, "PORK", "Pork"},
	{Beef, "BEEF", "Beef"},
	{Halal, "HALAL", "Halal"},
	{Shellfish, "SHELLFISH", "Shellfish"},
	{Sesame, "SESAME", "Sesame"},
}

// Union returns the set of tags in either set.
func (s AllergenSet) Union(other AllergenSet) AllergenSet {
	return s | other
}

// Contains reports whether every tag of other is in s.
func (s AllergenSet) Contains(other AllergenSet) bool {
	return s&other == other
}

// Intersects reports whether s and other share at least one tag.
func (s AllergenSet) Intersects(other AllergenSet) bool {
	return s&other != 0
}

func (s AllergenSet) IsEmpty() bool {
	return s&AllAllergens == 0
}

func (s AllergenSet) Len() int {
	return bits.OnesCount16(uint16(s & AllAllergens))
}

// Names returns the display names of the tags in s, in bit order.
func (s AllergenSet) Names() []string {
	out := make([]string, 0, s.Len())
	for _, n := range allergenNames {
		if s.Contains(n.flag) {
			out = append(out, n.display)
		}
	}
	return out
}

// Enums returns the enum names (EGG, TREE_NUT, ...) of the tags in s.
func (s AllergenSet) Enums() []string {
	out := make([]string, 0, s.Len())
	for _, n := range allergenNames {
		if s.Contains(n.flag) {
			out = append(out, n.enum)
		}
	}
	return out
}

func (s AllergenSet) String() string {
	return strings.Join(s.Names(), ", ")
}

// ParseAllergen resolves either an enum name (TREE_NUT) or a display name
// (Tree Nut) to its flag, ignoring case.
func ParseAllergen(name string) (AllergenSet, error) {
	for _, n := range allergenNames {
		if strings.EqualFold(name, n.enum) || strings.EqualFold(name, n.display) {
			return n.flag, nil
		}
	}
	return 0, fmt.Errorf("unknown allergen %q", name)
}

// ParseAllergens unions every name in names.
func ParseAllergens(names []string) (AllergenSet, error) {
	var out AllergenSet
	for _, name := range names {
		flag, err := ParseAllergen(name)
		if err != nil {
			return 0, err
		}
		out |= flag
	}
	return out, nil
}

// MarshalJSON encodes the raw bits.
func (s AllergenSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint16(s))
}

// UnmarshalJSON decodes the raw bits, dropping any bit that is not a known tag.
func (s *AllergenSet) UnmarshalJSON(data []byte) error {
	var raw uint16
	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}
	*s = AllergenSet(raw) & AllAllergens
	return nil
}
