package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/utafrali/StorefrontFilterGo/internal/domain"
)

// Engine is an in-memory implementation of the SearchEngine interface with
// simple substring matching and full facet aggregation computation. It backs
// the service tests and local development without an Elasticsearch cluster.
// Thread-safe via sync.RWMutex.
type Engine struct {
	mu       sync.RWMutex
	pairSep  string
	products map[string]domain.StorefrontProduct
}

// New creates a new in-memory search engine. An empty separator falls back
// to "::".
func New(pairSep string) *Engine {
	if pairSep == "" {
		pairSep = "::"
	}
	return &Engine{
		pairSep:  pairSep,
		products: make(map[string]domain.StorefrontProduct),
	}
}

func docID(shop, id string) string {
	return shop + ":" + id
}

// Index adds or updates a single product in the in-memory index.
func (e *Engine) Index(_ context.Context, product *domain.StorefrontProduct) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.products[docID(product.Shop, product.ID)] = *product
	return nil
}

// Delete removes a shop's product from the in-memory index by its ID.
func (e *Engine) Delete(_ context.Context, shop, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.products, docID(shop, id))
	return nil
}

// DeleteByShop removes every document belonging to a shop.
func (e *Engine) DeleteByShop(_ context.Context, shop string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for key, p := range e.products {
		if p.Shop == shop {
			delete(e.products, key)
		}
	}
	return nil
}

// BulkIndex adds or updates multiple products in the in-memory index.
func (e *Engine) BulkIndex(_ context.Context, products []domain.StorefrontProduct) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range products {
		e.products[docID(products[i].Shop, products[i].ID)] = products[i]
	}
	return nil
}

// Search executes a storefront query against the in-memory index.
func (e *Engine) Search(_ context.Context, query *domain.SearchQuery) (*domain.SearchResult, error) {
	start := time.Now()

	e.mu.RLock()
	defer e.mu.RUnlock()

	matched := e.matchAll(query)
	e.sortProducts(matched, query.SortBy)

	total := len(matched)

	page := query.Page
	if page < 1 {
		page = 1
	}
	perPage := query.PerPage
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	offset := (page - 1) * perPage
	if offset > total {
		offset = total
	}
	end := offset + perPage
	if end > total {
		end = total
	}

	return &domain.SearchResult{
		Products:     matched[offset:end],
		Total:        total,
		Page:         page,
		PerPage:      perPage,
		TookMs:       time.Since(start).Milliseconds(),
		Aggregations: e.aggregate(matched),
	}, nil
}

// Aggregate computes the facet aggregations for a query without returning
// product hits.
func (e *Engine) Aggregate(_ context.Context, query *domain.SearchQuery) (*domain.FacetAggregations, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.aggregate(e.matchAll(query)), nil
}

func (e *Engine) matchAll(query *domain.SearchQuery) []domain.StorefrontProduct {
	matched := make([]domain.StorefrontProduct, 0)
	queryLower := strings.ToLower(query.Query)

	for _, p := range e.products {
		if e.matches(p, query, queryLower) {
			matched = append(matched, p)
		}
	}
	// Map iteration order is random; pin a stable base order before any
	// explicit sort or aggregation.
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID < matched[j].ID
	})
	return matched
}

// matches checks whether a product matches the given search query filters.
func (e *Engine) matches(p domain.StorefrontProduct, query *domain.SearchQuery, queryLower string) bool {
	if p.Shop != query.Shop {
		return false
	}
	if p.Status != "active" {
		return false
	}

	// Full-text match on title, description, and vendor.
	if queryLower != "" {
		if !strings.Contains(strings.ToLower(p.Title), queryLower) &&
			!strings.Contains(strings.ToLower(p.Description), queryLower) &&
			!strings.Contains(strings.ToLower(p.Vendor), queryLower) {
			return false
		}
	}

	if len(query.Vendors) > 0 && !containsString(query.Vendors, p.Vendor) {
		return false
	}

	if query.ProductType != nil && *query.ProductType != "" {
		if p.ProductType != *query.ProductType {
			return false
		}
	}

	if len(query.Tags) > 0 && !intersects(p.Tags, query.Tags) {
		return false
	}

	if query.Collection != nil && *query.Collection != "" {
		if !containsString(p.Collections, *query.Collection) {
			return false
		}
	}

	// OR within one option name, AND across names.
	for name, wanted := range query.Options {
		if len(wanted) == 0 {
			continue
		}
		if !intersects(p.Options[name], wanted) {
			return false
		}
	}

	if query.MinPrice != nil && p.MaxPrice < *query.MinPrice {
		return false
	}
	if query.MaxPrice != nil && p.MinPrice > *query.MaxPrice {
		return false
	}

	return true
}

// aggregate computes the facet aggregations over the matched set. Terms
// buckets are ordered by count descending with key ascending tie-break,
// mirroring Elasticsearch terms aggregation ordering.
func (e *Engine) aggregate(matched []domain.StorefrontProduct) *domain.FacetAggregations {
	vendors := make(map[string]int64)
	productTypes := make(map[string]int64)
	tags := make(map[string]int64)
	collections := make(map[string]int64)
	optionPairs := make(map[string]int64)

	var minLow, maxLow, maxHigh *float64

	for _, p := range matched {
		if p.Vendor != "" {
			vendors[p.Vendor]++
		}
		if p.ProductType != "" {
			productTypes[p.ProductType]++
		}
		for _, t := range uniqueStrings(p.Tags) {
			tags[t]++
		}
		for _, c := range uniqueStrings(p.Collections) {
			collections[c]++
		}
		for name, values := range p.Options {
			for _, v := range uniqueStrings(values) {
				optionPairs[name+e.pairSep+v]++
			}
		}

		low, high := p.MinPrice, p.MaxPrice
		if minLow == nil || low < *minLow {
			minLow = &low
		}
		if maxLow == nil || low > *maxLow {
			maxLow = &low
		}
		if maxHigh == nil || high > *maxHigh {
			maxHigh = &high
		}
	}

	aggs := &domain.FacetAggregations{
		Vendors:      bucketsFrom(vendors),
		ProductTypes: bucketsFrom(productTypes),
		Tags:         bucketsFrom(tags),
		Collections:  bucketsFrom(collections),
		OptionPairs:  bucketsFrom(optionPairs),
	}
	if minLow != nil {
		aggs.PriceRange = &domain.RangeAggregation{Min: minLow, Max: maxLow}
		aggs.VariantPriceRange = &domain.RangeAggregation{Min: minLow, Max: maxHigh}
	}
	return aggs
}

func bucketsFrom(counts map[string]int64) *domain.BucketAggregation {
	buckets := make([]domain.Bucket, 0, len(counts))
	for key, count := range counts {
		buckets = append(buckets, domain.Bucket{Key: key, DocCount: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].DocCount != buckets[j].DocCount {
			return buckets[i].DocCount > buckets[j].DocCount
		}
		return buckets[i].Key < buckets[j].Key
	})
	return &domain.BucketAggregation{Buckets: buckets}
}

// sortProducts sorts the matched products based on the sort option.
func (e *Engine) sortProducts(products []domain.StorefrontProduct, sortBy string) {
	switch sortBy {
	case domain.SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].MinPrice < products[j].MinPrice
		})
	case domain.SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].MinPrice > products[j].MinPrice
		})
	case domain.SortNewest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	case domain.SortTitleAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Title < products[j].Title
		})
	case domain.SortTitleDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Title > products[j].Title
		})
	default:
		// SortRelevance or unknown: keep the stable base order.
	}
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func intersects(values, wanted []string) bool {
	for _, w := range wanted {
		if containsString(values, w) {
			return true
		}
	}
	return false
}

func uniqueStrings(values []string) []string {
	if len(values) < 2 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
