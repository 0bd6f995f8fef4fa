package facet

import (
	"strings"

	"github.com/utafrali/StorefrontFilterGo/internal/domain"
)

// GroupSimilarValues merges facet values that differ only by case or
// surrounding whitespace, summing their counts. The first occurrence of a
// normalized key fixes the representative casing; later occurrences only add
// their count (missing counts add zero). Output order is first-seen order of
// the distinct normalized keys.
//
// Grouping is idempotent: running it over an already-grouped list returns the
// same list.
func GroupSimilarValues(items []domain.FacetValue) []domain.FacetValue {
	type group struct {
		value string
		count int64
	}

	var order []string
	seen := make(map[string]*group, len(items))

	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.Value))
		if g, ok := seen[key]; ok {
			if item.Count != nil {
				g.count += *item.Count
			}
			continue
		}
		g := &group{value: item.Value}
		if item.Count != nil {
			g.count = *item.Count
		}
		seen[key] = g
		order = append(order, key)
	}

	out := make([]domain.FacetValue, 0, len(order))
	for _, key := range order {
		g := seen[key]
		count := g.count
		out = append(out, domain.FacetValue{Value: g.value, Count: &count})
	}
	return out
}
