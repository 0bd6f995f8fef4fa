// Package facet turns raw search-engine aggregation buckets into the shaped,
// per-shop-configurable filter payload served to the storefront widget.
//
// Every function in this package is pure: no I/O, no shared state, safe for
// unlimited concurrent use. Malformed or partial filter configuration always
// degrades to pass-through behavior rather than an error.
package facet

import (
	"github.com/utafrali/StorefrontFilterGo/internal/domain"
)

// NormalizeBuckets converts a terms aggregation into a canonical facet value
// list. Buckets with an empty key are dropped; input order is preserved and
// no sorting is applied. A nil aggregation yields an empty list.
func NormalizeBuckets(agg *domain.BucketAggregation) []domain.FacetValue {
	if agg == nil || len(agg.Buckets) == 0 {
		return nil
	}

	values := make([]domain.FacetValue, 0, len(agg.Buckets))
	for _, b := range agg.Buckets {
		if b.Key == "" {
			continue
		}
		count := b.DocCount
		values = append(values, domain.FacetValue{Value: b.Key, Count: &count})
	}
	return values
}
