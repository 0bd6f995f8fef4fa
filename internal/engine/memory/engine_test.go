package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/StorefrontFilterGo/internal/domain"
)

const testShop = "demo.myshopify.com"

func seedProducts(t *testing.T, e *Engine) {
	t.Helper()
	ctx := context.Background()

	products := []domain.StorefrontProduct{
		{
			ID: "1", Shop: testShop, Title: "Wool Sweater", Vendor: "Acme",
			ProductType: "Sweaters", Tags: []string{"winter", "sale"},
			Collections: []string{"new-arrivals"},
			Options:     map[string][]string{"Color": {"Red", "Blue"}, "Size": {"M", "L"}},
			MinPrice:    49.99, MaxPrice: 59.99, Status: "active",
			CreatedAt: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			ID: "2", Shop: testShop, Title: "Linen Shirt", Vendor: "Acme",
			ProductType: "Shirts", Tags: []string{"summer"},
			Options:  map[string][]string{"Color": {"Blue"}, "Size": {"S", "M"}},
			MinPrice: 29.99, MaxPrice: 34.99, Status: "active",
			CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID: "3", Shop: testShop, Title: "Silk Scarf", Vendor: "Luxe",
			ProductType: "Accessories", Tags: []string{"sale"},
			Options:  map[string][]string{"Color": {"Red"}},
			MinPrice: 19.99, MaxPrice: 19.99, Status: "active",
			CreatedAt: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			ID: "4", Shop: testShop, Title: "Hidden Draft", Vendor: "Acme",
			MinPrice: 9.99, MaxPrice: 9.99, Status: "draft",
		},
		{
			ID: "5", Shop: "other.myshopify.com", Title: "Wool Hat", Vendor: "Acme",
			MinPrice: 14.99, MaxPrice: 14.99, Status: "active",
		},
	}
	require.NoError(t, e.BulkIndex(ctx, products))
}

func TestEngine_Search_ScopedToShopAndActive(t *testing.T) {
	e := New("::")
	seedProducts(t, e)

	result, err := e.Search(context.Background(), &domain.SearchQuery{Shop: testShop})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	for _, p := range result.Products {
		assert.Equal(t, testShop, p.Shop)
		assert.Equal(t, "active", p.Status)
	}
}

func TestEngine_Search_FullText(t *testing.T) {
	e := New("::")
	seedProducts(t, e)

	result, err := e.Search(context.Background(), &domain.SearchQuery{Shop: testShop, Query: "wool"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "Wool Sweater", result.Products[0].Title)
}

func TestEngine_Search_OptionFilterORWithinName(t *testing.T) {
	e := New("::")
	seedProducts(t, e)

	result, err := e.Search(context.Background(), &domain.SearchQuery{
		Shop:    testShop,
		Options: map[string][]string{"Color": {"Red", "Blue"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
}

func TestEngine_Search_OptionFilterANDAcrossNames(t *testing.T) {
	e := New("::")
	seedProducts(t, e)

	result, err := e.Search(context.Background(), &domain.SearchQuery{
		Shop:    testShop,
		Options: map[string][]string{"Color": {"Red"}, "Size": {"M"}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "Wool Sweater", result.Products[0].Title)
}

func TestEngine_Search_PriceRangeOverlap(t *testing.T) {
	e := New("::")
	seedProducts(t, e)

	min := 30.0
	result, err := e.Search(context.Background(), &domain.SearchQuery{Shop: testShop, MinPrice: &min})
	require.NoError(t, err)
	// The shirt's variant range tops out above 30, so it still matches.
	assert.Equal(t, 2, result.Total)
}

func TestEngine_Search_SortPriceAsc(t *testing.T) {
	e := New("::")
	seedProducts(t, e)

	result, err := e.Search(context.Background(), &domain.SearchQuery{Shop: testShop, SortBy: domain.SortPriceAsc})
	require.NoError(t, err)
	require.Equal(t, 3, result.Total)
	assert.Equal(t, "Silk Scarf", result.Products[0].Title)
	assert.Equal(t, "Wool Sweater", result.Products[2].Title)
}

func TestEngine_Search_Pagination(t *testing.T) {
	e := New("::")
	seedProducts(t, e)

	result, err := e.Search(context.Background(), &domain.SearchQuery{Shop: testShop, Page: 2, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Len(t, result.Products, 1)
}

func TestEngine_Aggregate_Buckets(t *testing.T) {
	e := New("::")
	seedProducts(t, e)

	aggs, err := e.Aggregate(context.Background(), &domain.SearchQuery{Shop: testShop})
	require.NoError(t, err)
	require.NotNil(t, aggs)

	require.NotNil(t, aggs.Vendors)
	require.Len(t, aggs.Vendors.Buckets, 2)
	assert.Equal(t, domain.Bucket{Key: "Acme", DocCount: 2}, aggs.Vendors.Buckets[0])
	assert.Equal(t, domain.Bucket{Key: "Luxe", DocCount: 1}, aggs.Vendors.Buckets[1])

	require.NotNil(t, aggs.OptionPairs)
	counts := make(map[string]int64)
	for _, b := range aggs.OptionPairs.Buckets {
		counts[b.Key] = b.DocCount
	}
	assert.Equal(t, int64(2), counts["Color::Red"])
	assert.Equal(t, int64(2), counts["Color::Blue"])
	assert.Equal(t, int64(2), counts["Size::M"])
	assert.Equal(t, int64(1), counts["Size::L"])
}

func TestEngine_Aggregate_PriceRanges(t *testing.T) {
	e := New("::")
	seedProducts(t, e)

	aggs, err := e.Aggregate(context.Background(), &domain.SearchQuery{Shop: testShop})
	require.NoError(t, err)

	require.NotNil(t, aggs.PriceRange)
	assert.Equal(t, 19.99, *aggs.PriceRange.Min)
	assert.Equal(t, 49.99, *aggs.PriceRange.Max)

	require.NotNil(t, aggs.VariantPriceRange)
	assert.Equal(t, 19.99, *aggs.VariantPriceRange.Min)
	assert.Equal(t, 59.99, *aggs.VariantPriceRange.Max)
}

func TestEngine_Aggregate_EmptyShop(t *testing.T) {
	e := New("::")

	aggs, err := e.Aggregate(context.Background(), &domain.SearchQuery{Shop: testShop})
	require.NoError(t, err)
	require.NotNil(t, aggs)
	assert.Nil(t, aggs.PriceRange)
	assert.Empty(t, aggs.Vendors.Buckets)
}

func TestEngine_DeleteAndDeleteByShop(t *testing.T) {
	ctx := context.Background()
	e := New("::")
	seedProducts(t, e)

	require.NoError(t, e.Delete(ctx, testShop, "1"))
	result, err := e.Search(ctx, &domain.SearchQuery{Shop: testShop})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)

	require.NoError(t, e.DeleteByShop(ctx, testShop))
	result, err = e.Search(ctx, &domain.SearchQuery{Shop: testShop})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)

	// The other shop is untouched.
	result, err = e.Search(ctx, &domain.SearchQuery{Shop: "other.myshopify.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
}
