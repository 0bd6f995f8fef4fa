package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/StorefrontFilterGo/internal/domain"
	"github.com/utafrali/StorefrontFilterGo/internal/engine"
	"github.com/utafrali/StorefrontFilterGo/internal/facet"
	apperrors "github.com/utafrali/StorefrontFilterGo/pkg/errors"
	"github.com/utafrali/StorefrontFilterGo/pkg/httpclient"
)

const (
	formattedFiltersCacheTTL = time.Minute
	reindexPageSize          = 200
)

// SearchService implements the business logic for storefront search, facet
// shaping, and index management.
type SearchService struct {
	engine        engine.SearchEngine
	configs       *FilterConfigService
	cache         *redis.Client
	productAPI    *httpclient.CircuitBreakerClient
	productAPIURL string
	pairSep       string
	logger        *slog.Logger
}

// NewSearchService creates a new search service. A nil cache disables the
// formatted-filters cache; a nil productAPI disables reindexing.
func NewSearchService(
	eng engine.SearchEngine,
	configs *FilterConfigService,
	cache *redis.Client,
	productAPI *httpclient.CircuitBreakerClient,
	productAPIURL string,
	pairSep string,
	logger *slog.Logger,
) *SearchService {
	if pairSep == "" {
		pairSep = "::"
	}
	return &SearchService{
		engine:        eng,
		configs:       configs,
		cache:         cache,
		productAPI:    productAPI,
		productAPIURL: productAPIURL,
		pairSep:       pairSep,
		logger:        logger,
	}
}

// StorefrontFilters is the payload of the storefront filters endpoint.
type StorefrontFilters struct {
	FilterConfig   *domain.StorefrontFilterConfig `json:"filterConfig"`
	Filters        *domain.ProductFilters         `json:"filters"`
	AppliedFilters domain.AppliedFilters          `json:"appliedFilters"`
}

// StorefrontSearch is the payload of the storefront search endpoint.
type StorefrontSearch struct {
	Products       []domain.StorefrontProduct `json:"products"`
	Total          int                        `json:"total"`
	Page           int                        `json:"page"`
	PerPage        int                        `json:"perPage"`
	TotalPages     int                        `json:"totalPages"`
	TookMs         int64                      `json:"tookMs"`
	Filters        *domain.ProductFilters     `json:"filters"`
	AppliedFilters domain.AppliedFilters      `json:"appliedFilters"`
}

// GetFilters computes the shaped filter payload for a storefront query: raw
// aggregations from the engine, run through the shop's active filter config.
func (s *SearchService) GetFilters(ctx context.Context, query *domain.SearchQuery) (*StorefrontFilters, error) {
	if query.Shop == "" {
		return nil, apperrors.InvalidInput("shop is required")
	}

	cfg, err := s.configs.ActiveForShop(ctx, query.Shop)
	if err != nil {
		return nil, fmt.Errorf("get filters: %w", err)
	}

	aggs, err := s.engine.Aggregate(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get filters: %w", err)
	}

	filters := s.formatFiltersCached(ctx, query.Shop, cfg, aggs)

	return &StorefrontFilters{
		FilterConfig:   FormatStorefrontConfig(cfg),
		Filters:        filters,
		AppliedFilters: query.Applied(),
	}, nil
}

// Search executes a storefront query, returning products and the shaped
// filters computed from the same result set.
func (s *SearchService) Search(ctx context.Context, query *domain.SearchQuery) (*StorefrontSearch, error) {
	if query.Shop == "" {
		return nil, apperrors.InvalidInput("shop is required")
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PerPage <= 0 {
		query.PerPage = 20
	}
	if query.PerPage > 100 {
		query.PerPage = 100
	}
	if query.SortBy == "" {
		query.SortBy = domain.SortRelevance
	}
	if !domain.IsValidSort(query.SortBy) {
		return nil, apperrors.InvalidInput("invalid sort option: " + query.SortBy)
	}

	cfg, err := s.configs.ActiveForShop(ctx, query.Shop)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	result, err := s.engine.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	filters := s.formatFiltersCached(ctx, query.Shop, cfg, result.Aggregations)

	totalPages := 0
	if result.Total > 0 {
		totalPages = (result.Total + result.PerPage - 1) / result.PerPage
	}

	s.logger.DebugContext(ctx, "storefront search executed",
		slog.String("shop", query.Shop),
		slog.String("query", query.Query),
		slog.Int("total", result.Total),
		slog.Int64("took_ms", result.TookMs),
	)

	return &StorefrontSearch{
		Products:       result.Products,
		Total:          result.Total,
		Page:           result.Page,
		PerPage:        result.PerPage,
		TotalPages:     totalPages,
		TookMs:         result.TookMs,
		Filters:        filters,
		AppliedFilters: query.Applied(),
	}, nil
}

// formatFiltersCached runs the facet pipeline, memoized by shop, config
// version, and a fingerprint of the raw aggregations. The pipeline is pure,
// so identical inputs always yield identical payloads.
func (s *SearchService) formatFiltersCached(ctx context.Context, shop string, cfg *domain.FilterConfig, aggs *domain.FacetAggregations) *domain.ProductFilters {
	if s.cache == nil {
		return facet.FormatFilters(aggs, cfg, s.pairSep)
	}

	version := 0
	if cfg != nil {
		version = cfg.Version
	}
	key := fmt.Sprintf("filters:%s:v%d:%s", shop, version, fingerprint(aggs))

	if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
		var filters domain.ProductFilters
		if err := json.Unmarshal(data, &filters); err == nil {
			return &filters
		}
	}

	filters := facet.FormatFilters(aggs, cfg, s.pairSep)

	if data, err := json.Marshal(filters); err == nil {
		if err := s.cache.Set(ctx, key, data, formattedFiltersCacheTTL).Err(); err != nil {
			s.logger.WarnContext(ctx, "failed to cache formatted filters",
				slog.String("shop", shop),
				slog.String("error", err.Error()),
			)
		}
	}

	return filters
}

func fingerprint(aggs *domain.FacetAggregations) string {
	data, err := json.Marshal(aggs)
	if err != nil {
		return "unhashable"
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// IndexProductInput holds the parameters for indexing a product.
type IndexProductInput struct {
	ID          string              `json:"id"`
	Shop        string              `json:"shop"`
	Title       string              `json:"title"`
	Handle      string              `json:"handle"`
	Description string              `json:"description"`
	Vendor      string              `json:"vendor"`
	ProductType string              `json:"product_type"`
	Tags        []string            `json:"tags"`
	Collections []string            `json:"collections"`
	Options     map[string][]string `json:"options"`
	MinPrice    float64             `json:"min_price"`
	MaxPrice    float64             `json:"max_price"`
	Currency    string              `json:"currency"`
	Status      string              `json:"status"`
	ImageURL    string              `json:"image_url"`
}

func (input *IndexProductInput) toProduct(now time.Time) domain.StorefrontProduct {
	product := domain.StorefrontProduct{
		ID:          input.ID,
		Shop:        input.Shop,
		Title:       input.Title,
		Handle:      input.Handle,
		Description: input.Description,
		Vendor:      input.Vendor,
		ProductType: input.ProductType,
		Tags:        input.Tags,
		Collections: input.Collections,
		Options:     input.Options,
		MinPrice:    input.MinPrice,
		MaxPrice:    input.MaxPrice,
		Currency:    input.Currency,
		Status:      input.Status,
		ImageURL:    input.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if product.Tags == nil {
		product.Tags = []string{}
	}
	if product.Collections == nil {
		product.Collections = []string{}
	}
	if product.Options == nil {
		product.Options = make(map[string][]string)
	}
	if product.Status == "" {
		product.Status = "active"
	}
	return product
}

// IndexProduct indexes a single product in the search engine.
func (s *SearchService) IndexProduct(ctx context.Context, input *IndexProductInput) error {
	if input.ID == "" {
		return apperrors.InvalidInput("index product: id is required")
	}
	if input.Shop == "" {
		return apperrors.InvalidInput("index product: shop is required")
	}
	if input.Title == "" {
		return apperrors.InvalidInput("index product: title is required")
	}

	product := input.toProduct(time.Now().UTC())
	if err := s.engine.Index(ctx, &product); err != nil {
		return fmt.Errorf("index product: %w", err)
	}

	s.logger.InfoContext(ctx, "product indexed",
		slog.String("shop", input.Shop),
		slog.String("product_id", input.ID),
		slog.String("title", input.Title),
	)

	return nil
}

// DeleteProduct removes a shop's product from the search index.
func (s *SearchService) DeleteProduct(ctx context.Context, shop, id string) error {
	if shop == "" {
		return apperrors.InvalidInput("delete product: shop is required")
	}
	if id == "" {
		return apperrors.InvalidInput("delete product: id is required")
	}

	if err := s.engine.Delete(ctx, shop, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.logger.InfoContext(ctx, "product deleted from index",
		slog.String("shop", shop),
		slog.String("product_id", id),
	)

	return nil
}

// BulkIndex indexes multiple products in the search engine. Inputs without an
// ID or shop are skipped.
func (s *SearchService) BulkIndex(ctx context.Context, inputs []IndexProductInput) error {
	products := make([]domain.StorefrontProduct, 0, len(inputs))
	now := time.Now().UTC()

	for i := range inputs {
		if inputs[i].ID == "" || inputs[i].Shop == "" {
			continue
		}
		products = append(products, inputs[i].toProduct(now))
	}

	if err := s.engine.BulkIndex(ctx, products); err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}

	s.logger.InfoContext(ctx, "bulk index completed",
		slog.Int("count", len(products)),
	)

	return nil
}

// productPage is the paginated response shape of the product API.
type productPage struct {
	Data       []IndexProductInput `json:"data"`
	TotalCount int                 `json:"total_count"`
	Page       int                 `json:"page"`
	TotalPages int                 `json:"total_pages"`
}

// Reindex rebuilds a shop's index from the product API: existing documents
// are dropped, then pages are pulled and bulk-indexed until exhausted.
func (s *SearchService) Reindex(ctx context.Context, shop string) (int, error) {
	if shop == "" {
		return 0, apperrors.InvalidInput("reindex: shop is required")
	}
	if s.productAPI == nil || s.productAPIURL == "" {
		return 0, apperrors.Conflict("reindex: product API is not configured")
	}

	if err := s.engine.DeleteByShop(ctx, shop); err != nil {
		return 0, fmt.Errorf("reindex: clear shop index: %w", err)
	}

	indexed := 0
	for page := 1; ; page++ {
		pageData, err := s.fetchProductPage(ctx, shop, page)
		if err != nil {
			return indexed, fmt.Errorf("reindex: %w", err)
		}
		if len(pageData.Data) == 0 {
			break
		}

		for i := range pageData.Data {
			pageData.Data[i].Shop = shop
		}
		if err := s.BulkIndex(ctx, pageData.Data); err != nil {
			return indexed, fmt.Errorf("reindex: %w", err)
		}
		indexed += len(pageData.Data)

		if pageData.TotalPages > 0 && page >= pageData.TotalPages {
			break
		}
	}

	s.logger.InfoContext(ctx, "reindex completed",
		slog.String("shop", shop),
		slog.Int("indexed", indexed),
	)

	return indexed, nil
}

func (s *SearchService) fetchProductPage(ctx context.Context, shop string, page int) (*productPage, error) {
	reqURL := fmt.Sprintf("%s/api/v1/products?shop=%s&page=%d&per_page=%d",
		s.productAPIURL, url.QueryEscape(shop), page, reindexPageSize)

	resp, err := s.productAPI.Get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("fetch product page %d: %w", page, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("fetch product page %d: unexpected status %d", page, resp.StatusCode)
	}

	var pageData productPage
	if err := json.NewDecoder(resp.Body).Decode(&pageData); err != nil {
		return nil, fmt.Errorf("decode product page %d: %w", page, err)
	}
	return &pageData, nil
}
