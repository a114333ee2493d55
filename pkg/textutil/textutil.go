package textutil

import (
	"regexp"
	"slices"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// Suggestion is a candidate returned by Suggest together with its
// Jaro-Winkler similarity to the query.
type Suggestion struct {
	Value      string
	Similarity float64
}

// Suggest returns up to `limit` candidates most similar to query, ordered by
// descending similarity. Candidates with zero similarity are dropped.
func Suggest(query string, candidates []string, limit int) []Suggestion {
	normalized := NormalizeName(query)

	var out []Suggestion
	for _, c := range candidates {
		similarity := matchr.JaroWinkler(normalized, NormalizeName(c), false)
		if similarity <= 0 {
			continue
		}
		out = append(out, Suggestion{Value: c, Similarity: similarity})
	}

	slices.SortStableFunc(out, func(a, b Suggestion) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		}
		return 0
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
