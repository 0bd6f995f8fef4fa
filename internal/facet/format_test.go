package facet

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/StorefrontFilterGo/internal/domain"
)

func price(v float64) *float64 {
	return &v
}

func TestFormatFilters_NilAggregations(t *testing.T) {
	filters := FormatFilters(nil, nil, sep)
	require.NotNil(t, filters)
	assert.True(t, filters.IsEmpty())

	body, err := json.Marshal(filters)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(body))
}

func TestFormatFilters_AllFacets(t *testing.T) {
	aggs := &domain.FacetAggregations{
		Vendors: &domain.BucketAggregation{Buckets: []domain.Bucket{
			{Key: "Acme", DocCount: 12},
		}},
		ProductTypes: &domain.BucketAggregation{Buckets: []domain.Bucket{
			{Key: "Shirts", DocCount: 7},
		}},
		Tags: &domain.BucketAggregation{Buckets: []domain.Bucket{
			{Key: "sale", DocCount: 3},
		}},
		Collections: &domain.BucketAggregation{Buckets: []domain.Bucket{
			{Key: "summer", DocCount: 9},
		}},
		OptionPairs: &domain.BucketAggregation{Buckets: []domain.Bucket{
			{Key: "Color::Red", DocCount: 5},
		}},
		PriceRange:        &domain.RangeAggregation{Min: price(9.99), Max: price(199)},
		VariantPriceRange: &domain.RangeAggregation{Min: price(4.5), Max: price(210)},
	}

	filters := FormatFilters(aggs, nil, sep)
	require.Len(t, filters.Vendors, 1)
	assert.Equal(t, "Acme", filters.Vendors[0].Value)
	require.Len(t, filters.ProductTypes, 1)
	require.Len(t, filters.Tags, 1)
	require.Len(t, filters.Collections, 1)

	require.NotNil(t, filters.Options)
	colors, ok := filters.Options.Get("Color")
	require.True(t, ok)
	assert.Equal(t, "Red", colors[0].Value)

	require.NotNil(t, filters.PriceRange)
	assert.Equal(t, 9.99, *filters.PriceRange.Min)
	require.NotNil(t, filters.VariantPriceRange)
	assert.Equal(t, 210.0, *filters.VariantPriceRange.Max)
}

func TestFormatFilters_EmptyFacetsOmitted(t *testing.T) {
	aggs := &domain.FacetAggregations{
		Vendors: &domain.BucketAggregation{},
		OptionPairs: &domain.BucketAggregation{Buckets: []domain.Bucket{
			{Key: "malformed-no-separator", DocCount: 1},
		}},
		PriceRange: &domain.RangeAggregation{},
	}

	filters := FormatFilters(aggs, nil, sep)
	assert.True(t, filters.IsEmpty())

	body, err := json.Marshal(filters)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(body))
}

func TestFormatFilters_HalfOpenPriceRangeKept(t *testing.T) {
	aggs := &domain.FacetAggregations{
		PriceRange: &domain.RangeAggregation{Min: price(10)},
	}

	filters := FormatFilters(aggs, nil, sep)
	require.NotNil(t, filters.PriceRange)
	assert.Equal(t, 10.0, *filters.PriceRange.Min)
	assert.Nil(t, filters.PriceRange.Max)
}

func TestFormatFilters_AppliesConfig(t *testing.T) {
	aggs := &domain.FacetAggregations{
		OptionPairs: &domain.BucketAggregation{Buckets: []domain.Bucket{
			{Key: "Color::red", DocCount: 5},
			{Key: "Color::RED", DocCount: 2},
			{Key: "Color::blue", DocCount: 4},
		}},
	}

	opt := domain.FilterOptionConfig{
		Label:       "Color",
		TargetScope: domain.TargetScopeAll,
		ShowCount:   showCount(true),
		Status:      domain.OptionStatusPublished,
		OptionSettings: domain.OptionSettings{
			GroupBySimilarValues: true,
			TextTransform:        domain.TransformCapitalize,
		},
	}
	cfg := &domain.FilterConfig{Options: []domain.FilterOptionConfig{opt}}

	filters := FormatFilters(aggs, cfg, sep)
	require.NotNil(t, filters.Options)
	colors, _ := filters.Options.Get("Color")
	require.Len(t, colors, 2)
	assert.Equal(t, "Red", colors[0].Value)
	assert.Equal(t, int64(7), *colors[0].Count)
	assert.Equal(t, "Blue", colors[1].Value)
}

func TestFormatFilters_OptionsSerializeInOrder(t *testing.T) {
	aggs := &domain.FacetAggregations{
		OptionPairs: &domain.BucketAggregation{Buckets: []domain.Bucket{
			{Key: "Size::M", DocCount: 2},
			{Key: "Color::Red", DocCount: 1},
		}},
	}

	filters := FormatFilters(aggs, nil, sep)
	body, err := json.Marshal(filters)
	require.NoError(t, err)
	// Encounter order, not alphabetical.
	assert.Equal(t, `{"options":{"Size":[{"value":"M","count":2}],"Color":[{"value":"Red","count":1}]}}`, string(body))
}
