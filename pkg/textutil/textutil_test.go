package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "KOC", expected: "koc"},
		{input: " Ko C\t\n", expected: "koc"},
		{input: "SpJ", expected: "spj"},
	}

	for _, row := range table {
		require.Equal(t, row.expected, NormalizeName(row.input))
	}
}

func TestSuggest(t *testing.T) {
	suggestions := Suggest("KOH", []string{"MUE", "KOC", "KOHL"}, 2)
	require.Len(t, suggestions, 2)
	for _, s := range suggestions {
		require.NotEqual(t, "MUE", s.Value)
	}
	require.GreaterOrEqual(t, suggestions[0].Similarity, suggestions[1].Similarity)

	require.Empty(t, Suggest("abc", nil, 3))
}
