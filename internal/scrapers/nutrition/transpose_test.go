package nutrition

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTranspose(t *testing.T) {
	testCases := []struct {
		name     string
		input    [][]string
		expected [][]string
	}{
		{
			name:     "empty",
			input:    nil,
			expected: [][]string{},
		},
		{
			name:     "square",
			input:    [][]string{{"a1", "b1"}, {"a2", "b2"}},
			expected: [][]string{{"a1", "a2"}, {"b1", "b2"}},
		},
		{
			name:     "dates by locations",
			input:    [][]string{{"a1", "b1"}, {"a2", "b2"}, {"a3", "b3"}},
			expected: [][]string{{"a1", "a2", "a3"}, {"b1", "b2", "b3"}},
		},
		{
			name:     "ragged",
			input:    [][]string{{"a1", "b1", "c1"}, {"a2"}},
			expected: [][]string{{"a1", "a2"}, {"b1"}, {"c1"}},
		},
	}

	for _, tc := range testCases {
		got := Transpose(tc.input)
		if diff := cmp.Diff(tc.expected, got); diff != "" {
			t.Fatalf("%s: %s", tc.name, diff)
		}
	}

	// transposing twice gives back a rectangular matrix
	square := [][]int{{1, 2, 3}, {4, 5, 6}}
	if diff := cmp.Diff(square, Transpose(Transpose(square))); diff != "" {
		t.Fatal(diff)
	}
}
