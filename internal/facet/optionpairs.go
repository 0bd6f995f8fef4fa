package facet

import (
	"sort"
	"strings"

	"github.com/utafrali/StorefrontFilterGo/internal/domain"
)

// FormatOptionPairs decodes combined "name<sep>value" bucket keys into option
// groups. The separator is injected by the caller (it is part of the index
// mapping, not of this package) so it can be changed without touching the
// pipeline.
//
// Buckets whose key does not contain the separator exactly once are skipped:
// the separator is reserved and must never appear inside an option name or
// value. Buckets with an empty name or value half are skipped too. Groups are
// keyed by first-seen option name in bucket encounter order; within each
// group values are stable-sorted by count descending, so equal counts retain
// their relative encounter order.
func FormatOptionPairs(buckets []domain.Bucket, sep string) *domain.OptionGroups {
	groups := domain.NewOptionGroups()
	if sep == "" {
		return groups
	}

	for _, b := range buckets {
		if strings.Count(b.Key, sep) != 1 {
			continue
		}
		name, value, _ := strings.Cut(b.Key, sep)
		if name == "" || value == "" {
			continue
		}

		count := b.DocCount
		existing, _ := groups.Get(name)
		groups.Set(name, append(existing, domain.FacetValue{Value: value, Count: &count}))
	}

	for _, name := range groups.Keys() {
		values, _ := groups.Get(name)
		sort.SliceStable(values, func(i, j int) bool {
			return countOf(values[i]) > countOf(values[j])
		})
		groups.Set(name, values)
	}

	return groups
}

func countOf(v domain.FacetValue) int64 {
	if v.Count == nil {
		return 0
	}
	return *v.Count
}
