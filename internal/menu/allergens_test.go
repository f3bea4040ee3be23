package menu

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllergenSetOperations(t *testing.T) {
	set := Egg | Milk | Vegetarian

	require.True(t, set.Contains(Egg|Milk))
	require.False(t, set.Contains(Egg|Soy))
	require.True(t, set.Intersects(Soy|Milk))
	require.False(t, set.Intersects(Soy|Pork))
	require.Equal(t, 3, set.Len())
	require.Equal(t, []string{"Egg", "Milk", "Vegetarian"}, set.Names())
	require.Equal(t, []string{"EGG", "MILK", "VEGETARIAN"}, set.Enums())
	require.Equal(t, set, Egg.Union(Milk).Union(Vegetarian))

	var empty AllergenSet
	require.True(t, empty.IsEmpty())
	require.False(t, empty.Intersects(AllAllergens))
	require.True(t, AllAllergens.Contains(empty))
}

func TestAllergenBitsAreDistinct(t *testing.T) {
	seen := AllergenSet(0)
	for _, n := range allergenNames {
		require.Equal(t, 1, n.flag.Len(), n.enum)
		require.False(t, seen.Intersects(n.flag), n.enum)
		seen |= n.flag
	}
	require.Equal(t, AllAllergens, seen)
	require.Equal(t, 15, AllAllergens.Len())
}

func TestParseAllergen(t *testing.T) {
	cases := []struct {
		input    string
		expected AllergenSet
	}{
		{input: "EGG", expected: Egg},
		{input: "tree_nut", expected: TreeNut},
		{input: "Tree Nut", expected: TreeNut},
		{input: "gluten friendly", expected: GlutenFriendly},
		{input: "SESAME", expected: Sesame},
	}
	for _, c := range cases {
		flag, err := ParseAllergen(c.input)
		require.NoError(t, err, c.input)
		require.Equal(t, c.expected, flag, c.input)
	}

	_, err := ParseAllergen("gluten")
	require.Error(t, err)

	set, err := ParseAllergens([]string{"EGG", "Milk"})
	require.NoError(t, err)
	require.Equal(t, Egg|Milk, set)
}

func TestAllergenSetJSON(t *testing.T) {
	encoded, err := json.Marshal(Egg | Sesame)
	require.NoError(t, err)
	require.Equal(t, "16385", string(encoded))

	var decoded AllergenSet
	// bit 15 is not a known tag and is dropped
	err = json.Unmarshal([]byte("49153"), &decoded)
	require.NoError(t, err)
	require.Equal(t, Egg|Sesame, decoded)
}
