package domain

import (
	"time"
)

// StorefrontProduct represents a product document in the search index.
// Options maps a variant option name (e.g. "Color") to the distinct values
// present across the product's variants.
type StorefrontProduct struct {
	ID           string              `json:"id"`
	Shop         string              `json:"shop"`
	Title        string              `json:"title"`
	Handle       string              `json:"handle"`
	Description  string              `json:"description"`
	Vendor       string              `json:"vendor"`
	ProductType  string              `json:"product_type"`
	Tags         []string            `json:"tags"`
	Collections  []string            `json:"collections"`
	Options      map[string][]string `json:"options"`
	MinPrice     float64             `json:"min_price"`
	MaxPrice     float64             `json:"max_price"`
	Currency     string              `json:"currency"`
	Status       string              `json:"status"`
	ImageURL     string              `json:"image_url"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Sort options for search results.
const (
	SortRelevance = "relevance"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
	SortTitleAsc  = "title_asc"
	SortTitleDesc = "title_desc"
)

// ValidSortOptions returns the list of valid sort options.
func ValidSortOptions() []string {
	return []string{SortRelevance, SortPriceAsc, SortPriceDesc, SortNewest, SortTitleAsc, SortTitleDesc}
}

// IsValidSort checks whether the given sort string is a valid sort option.
func IsValidSort(sort string) bool {
	for _, s := range ValidSortOptions() {
		if s == sort {
			return true
		}
	}
	return false
}

// SearchQuery holds all parameters for a storefront search request.
// Options maps an option name to the selected values (OR within a name,
// AND across names).
type SearchQuery struct {
	Shop        string              `json:"shop"`
	Query       string              `json:"query"`
	Vendors     []string            `json:"vendors,omitempty"`
	ProductType *string             `json:"product_type,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	Collection  *string             `json:"collection,omitempty"`
	Options     map[string][]string `json:"options,omitempty"`
	MinPrice    *float64            `json:"min_price,omitempty"`
	MaxPrice    *float64            `json:"max_price,omitempty"`
	SortBy      string              `json:"sort_by"`
	Page        int                 `json:"page"`
	PerPage     int                 `json:"per_page"`
}

// AppliedFilters echoes back the filter criteria that shaped a result set so
// the widget can render its active-filter chips without re-deriving them.
type AppliedFilters struct {
	Query       string              `json:"query,omitempty"`
	Vendors     []string            `json:"vendors,omitempty"`
	ProductType *string             `json:"productType,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	Collection  *string             `json:"collection,omitempty"`
	Options     map[string][]string `json:"options,omitempty"`
	MinPrice    *float64            `json:"minPrice,omitempty"`
	MaxPrice    *float64            `json:"maxPrice,omitempty"`
}

// Applied projects the query's filter criteria into an AppliedFilters echo.
func (q *SearchQuery) Applied() AppliedFilters {
	return AppliedFilters{
		Query:       q.Query,
		Vendors:     q.Vendors,
		ProductType: q.ProductType,
		Tags:        q.Tags,
		Collection:  q.Collection,
		Options:     q.Options,
		MinPrice:    q.MinPrice,
		MaxPrice:    q.MaxPrice,
	}
}

// SearchResult holds the paginated search response with its raw facet
// aggregations (shaped later by the facet pipeline).
type SearchResult struct {
	Products     []StorefrontProduct `json:"products"`
	Total        int                 `json:"total"`
	Page         int                 `json:"page"`
	PerPage      int                 `json:"per_page"`
	TookMs       int64               `json:"took_ms"`
	Aggregations *FacetAggregations  `json:"-"`
}
