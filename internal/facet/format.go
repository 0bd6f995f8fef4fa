package facet

import (
	"github.com/utafrali/StorefrontFilterGo/internal/domain"
)

// FormatFilters shapes raw aggregations into the storefront filter payload.
// Facets are normalized, option pairs are decoded with the given separator and
// run through the shop's filter configuration, and price stats become ranges.
// Only facets with content are set, so the payload carries no empty keys. A
// nil aggregation result yields an empty payload, never an error.
func FormatFilters(aggs *domain.FacetAggregations, cfg *domain.FilterConfig, sep string) *domain.ProductFilters {
	filters := &domain.ProductFilters{}
	if aggs == nil {
		return filters
	}

	filters.Vendors = NormalizeBuckets(aggs.Vendors)
	filters.ProductTypes = NormalizeBuckets(aggs.ProductTypes)
	filters.Tags = NormalizeBuckets(aggs.Tags)
	filters.Collections = NormalizeBuckets(aggs.Collections)

	if aggs.OptionPairs != nil {
		options := ProcessOptions(FormatOptionPairs(aggs.OptionPairs.Buckets, sep), cfg)
		if options.Len() > 0 {
			filters.Options = options
		}
	}

	filters.PriceRange = priceRange(aggs.PriceRange)
	filters.VariantPriceRange = priceRange(aggs.VariantPriceRange)

	return filters
}

// priceRange converts min/max stats into a storefront price range. Stats with
// no matched documents (both bounds nil) collapse to an absent range.
func priceRange(agg *domain.RangeAggregation) *domain.PriceRange {
	if agg == nil || (agg.Min == nil && agg.Max == nil) {
		return nil
	}
	return &domain.PriceRange{Min: agg.Min, Max: agg.Max}
}
