package menu

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{input: "$5.00", expected: "$5.00"},
		{input: "5", expected: "$5.00"},
		{input: " $1.25 ", expected: "$1.25"},
		{input: "$0.10", expected: "$0.10"},
	}
	for _, c := range cases {
		p, err := ParsePrice(c.input)
		require.NoError(t, err, c.input)
		require.Equal(t, c.expected, p.String())
	}

	for _, bad := range []string{"", "$", "five dollars", "$1.2.3", "-1.00"} {
		_, err := ParsePrice(bad)
		require.Error(t, err, bad)
	}
}

func TestPriceIsExact(t *testing.T) {
	a := MustParsePrice("0.10")
	b := MustParsePrice("0.20")
	sum := Price{amount: a.Amount().Add(b.Amount())}
	require.True(t, sum.Equal(MustParsePrice("0.30")))
}

func TestPriceJSON(t *testing.T) {
	item := FoodItem{Name: "Coffee", Price: ptr(MustParsePrice("2.5"))}
	encoded, err := json.Marshal(item)
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"Coffee","allergens":0,"price":"$2.50"}`, string(encoded))

	var decoded FoodItem
	err = json.Unmarshal(encoded, &decoded)
	require.NoError(t, err)
	require.NotNil(t, decoded.Price)
	require.True(t, decoded.Price.Equal(*item.Price))

	encoded, err = json.Marshal(FoodItem{Name: "Water"})
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"Water","allergens":0}`, string(encoded))
}

func ptr[T any](v T) *T {
	return &v
}
