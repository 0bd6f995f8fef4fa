package engine

import (
	"context"

	"github.com/utafrali/StorefrontFilterGo/internal/domain"
)

// SearchEngine defines the interface for indexing and searching storefront
// products. Implementations may use Elasticsearch, in-memory storage, or
// other backends.
type SearchEngine interface {
	// Index adds or updates a single product in the search index.
	Index(ctx context.Context, product *domain.StorefrontProduct) error

	// Delete removes a shop's product from the search index by its ID.
	Delete(ctx context.Context, shop, id string) error

	// DeleteByShop removes every document belonging to a shop, used before a
	// full reindex.
	DeleteByShop(ctx context.Context, shop string) error

	// BulkIndex adds or updates multiple products in the search index.
	BulkIndex(ctx context.Context, products []domain.StorefrontProduct) error

	// Search executes a storefront query and returns matching products with
	// the raw facet aggregations computed over the filtered result set.
	Search(ctx context.Context, query *domain.SearchQuery) (*domain.SearchResult, error)

	// Aggregate computes the raw facet aggregations for a query without
	// fetching any product hits.
	Aggregate(ctx context.Context, query *domain.SearchQuery) (*domain.FacetAggregations, error)
}
