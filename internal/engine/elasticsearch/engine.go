package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/utafrali/StorefrontFilterGo/internal/domain"
)

// Engine is an Elasticsearch-backed implementation of the SearchEngine
// interface. Option name/value pairs are flattened into a keyword field at
// index time using the configured separator so a single terms aggregation
// covers all options.
type Engine struct {
	client    *elasticsearch.Client
	indexName string
	pairSep   string
	logger    *slog.Logger
}

// document is the indexed shape of a storefront product: the product itself
// plus the flattened option pairs.
type document struct {
	domain.StorefrontProduct
	OptionPairs []string `json:"option_pairs"`
}

// esSearchResponse is the structure used to decode Elasticsearch search responses.
type esSearchResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations *esAggregations `json:"aggregations"`
}

// esStats decodes a stats aggregation; min/max are null when no documents
// matched, which maps onto RangeAggregation directly.
type esStats struct {
	Count int64    `json:"count"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
}

// esAggregations decodes the facet aggregations block of a search response.
type esAggregations struct {
	Vendors      *domain.BucketAggregation `json:"vendors"`
	ProductTypes *domain.BucketAggregation `json:"productTypes"`
	Tags         *domain.BucketAggregation `json:"tags"`
	Collections  *domain.BucketAggregation `json:"collections"`
	OptionPairs  *domain.BucketAggregation `json:"optionPairs"`
	MinPrices    *esStats                  `json:"minPrices"`
	MaxPrices    *esStats                  `json:"maxPrices"`
}

// esBulkResponse is the structure used to decode Elasticsearch bulk responses.
type esBulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"index"`
	} `json:"items"`
}

// esErrorResponse is used to decode Elasticsearch error responses.
type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// New creates a new Elasticsearch engine connected to the given URL.
// It ensures the products index exists, creating it if necessary.
// Empty indexName and pairSep fall back to the package defaults.
func New(esURL, indexName, pairSep string, logger *slog.Logger) (*Engine, error) {
	if indexName == "" {
		indexName = DefaultIndexName
	}
	if pairSep == "" {
		pairSep = DefaultPairSeparator
	}

	cfg := elasticsearch.Config{
		Addresses: []string{esURL},
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: failed to create client: %w", err)
	}

	e := &Engine{
		client:    client,
		indexName: indexName,
		pairSep:   pairSep,
		logger:    logger,
	}

	if err := e.ensureIndex(); err != nil {
		return nil, fmt.Errorf("elasticsearch: failed to ensure index: %w", err)
	}

	return e, nil
}

// Ping checks whether the Elasticsearch cluster is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

// ensureIndex checks whether the products index exists and creates it if not.
func (e *Engine) ensureIndex() error {
	res, err := e.client.Indices.Exists([]string{e.indexName})
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	// Status 200 means the index exists.
	if res.StatusCode == 200 {
		e.logger.Info("elasticsearch index already exists", "index", e.indexName)
		return nil
	}

	mapping := buildIndexMapping()
	res, err = e.client.Indices.Create(
		e.indexName,
		e.client.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		var errResp esErrorResponse
		if decErr := json.NewDecoder(res.Body).Decode(&errResp); decErr == nil {
			return fmt.Errorf("create index: %s: %s", errResp.Error.Type, errResp.Error.Reason)
		}
		return fmt.Errorf("create index: unexpected status %s", res.Status())
	}

	e.logger.Info("elasticsearch index created", "index", e.indexName)
	return nil
}

// docID scopes the document ID by shop so product IDs from different shops
// never collide in the shared index.
func (e *Engine) docID(shop, id string) string {
	return shop + ":" + id
}

// toDocument flattens a product's options into indexed pairs.
func (e *Engine) toDocument(product *domain.StorefrontProduct) document {
	doc := document{StorefrontProduct: *product}
	for name, values := range product.Options {
		for _, v := range values {
			doc.OptionPairs = append(doc.OptionPairs, name+e.pairSep+v)
		}
	}
	return doc
}

// Index adds or updates a single product in the Elasticsearch index.
func (e *Engine) Index(ctx context.Context, product *domain.StorefrontProduct) error {
	doc := e.toDocument(product)

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("elasticsearch index: marshal product: %w", err)
	}

	res, err := e.client.Index(
		e.indexName,
		bytes.NewReader(data),
		e.client.Index.WithDocumentID(e.docID(product.Shop, product.ID)),
		e.client.Index.WithRefresh("true"),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		var errResp esErrorResponse
		if decErr := json.NewDecoder(res.Body).Decode(&errResp); decErr == nil {
			return fmt.Errorf("elasticsearch index: %s: %s", errResp.Error.Type, errResp.Error.Reason)
		}
		return fmt.Errorf("elasticsearch index: unexpected status %s", res.Status())
	}

	e.logger.Debug("indexed product", "shop", product.Shop, "id", product.ID, "title", product.Title)
	return nil
}

// Delete removes a shop's product from the Elasticsearch index by its ID.
// It does not return an error if the document does not exist (404 is ignored).
func (e *Engine) Delete(ctx context.Context, shop, id string) error {
	res, err := e.client.Delete(
		e.indexName,
		e.docID(shop, id),
		e.client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch delete: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	// Ignore 404, the document might not exist.
	if res.IsError() && res.StatusCode != 404 {
		var errResp esErrorResponse
		if decErr := json.NewDecoder(res.Body).Decode(&errResp); decErr == nil {
			return fmt.Errorf("elasticsearch delete: %s: %s", errResp.Error.Type, errResp.Error.Reason)
		}
		return fmt.Errorf("elasticsearch delete: unexpected status %s", res.Status())
	}

	e.logger.Debug("deleted product", "shop", shop, "id", id)
	return nil
}

// DeleteByShop removes every document belonging to a shop via delete_by_query.
func (e *Engine) DeleteByShop(ctx context.Context, shop string) error {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				"shop": shop,
			},
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("elasticsearch delete by shop: marshal query: %w", err)
	}

	res, err := e.client.DeleteByQuery(
		[]string{e.indexName},
		bytes.NewReader(data),
		e.client.DeleteByQuery.WithContext(ctx),
		e.client.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch delete by shop: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		var errResp esErrorResponse
		if decErr := json.NewDecoder(res.Body).Decode(&errResp); decErr == nil {
			return fmt.Errorf("elasticsearch delete by shop: %s: %s", errResp.Error.Type, errResp.Error.Reason)
		}
		return fmt.Errorf("elasticsearch delete by shop: unexpected status %s", res.Status())
	}

	e.logger.Info("deleted shop documents", "shop", shop)
	return nil
}

// BulkIndex adds or updates multiple products in the Elasticsearch index
// using the bulk NDJSON API.
func (e *Engine) BulkIndex(ctx context.Context, products []domain.StorefrontProduct) error {
	if len(products) == 0 {
		return nil
	}

	var buf bytes.Buffer

	for i := range products {
		action := map[string]interface{}{
			"index": map[string]interface{}{
				"_index": e.indexName,
				"_id":    e.docID(products[i].Shop, products[i].ID),
			},
		}
		if err := json.NewEncoder(&buf).Encode(action); err != nil {
			return fmt.Errorf("elasticsearch bulk index: encode action: %w", err)
		}

		doc := e.toDocument(&products[i])
		if err := json.NewEncoder(&buf).Encode(doc); err != nil {
			return fmt.Errorf("elasticsearch bulk index: encode document: %w", err)
		}
	}

	res, err := e.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		e.client.Bulk.WithIndex(e.indexName),
		e.client.Bulk.WithRefresh("true"),
		e.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch bulk index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		var errResp esErrorResponse
		if decErr := json.NewDecoder(res.Body).Decode(&errResp); decErr == nil {
			return fmt.Errorf("elasticsearch bulk index: %s: %s", errResp.Error.Type, errResp.Error.Reason)
		}
		return fmt.Errorf("elasticsearch bulk index: unexpected status %s", res.Status())
	}

	// Parse the bulk response to check for per-item errors.
	var bulkResp esBulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("elasticsearch bulk index: decode response: %w", err)
	}

	if bulkResp.Errors {
		var errMsgs []string
		for _, item := range bulkResp.Items {
			if item.Index.Error.Type != "" {
				errMsgs = append(errMsgs, fmt.Sprintf("id=%s: %s: %s", item.Index.ID, item.Index.Error.Type, item.Index.Error.Reason))
			}
		}
		return fmt.Errorf("elasticsearch bulk index: partial errors: %s", strings.Join(errMsgs, "; "))
	}

	e.logger.Info("bulk indexed products", "count", len(products))
	return nil
}

// Search executes a storefront query against Elasticsearch and returns
// matching products with their facet aggregations.
func (e *Engine) Search(ctx context.Context, query *domain.SearchQuery) (*domain.SearchResult, error) {
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

	esQuery := e.buildSearchQuery(query, (page-1)*perPage, perPage)

	esResp, err := e.execute(ctx, esQuery)
	if err != nil {
		return nil, err
	}

	products := make([]domain.StorefrontProduct, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		products = append(products, hit.Source.StorefrontProduct)
	}

	return &domain.SearchResult{
		Products:     products,
		Total:        esResp.Hits.Total.Value,
		Page:         page,
		PerPage:      perPage,
		TookMs:       int64(esResp.Took),
		Aggregations: esResp.Aggregations.toDomain(),
	}, nil
}

// Aggregate computes the facet aggregations for a query with size zero, so no
// product hits are fetched.
func (e *Engine) Aggregate(ctx context.Context, query *domain.SearchQuery) (*domain.FacetAggregations, error) {
	esQuery := e.buildSearchQuery(query, 0, 0)

	esResp, err := e.execute(ctx, esQuery)
	if err != nil {
		return nil, err
	}
	return esResp.Aggregations.toDomain(), nil
}

func (e *Engine) execute(ctx context.Context, esQuery map[string]interface{}) (*esSearchResponse, error) {
	data, err := json.Marshal(esQuery)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithContext(ctx),
		e.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		var errResp esErrorResponse
		if decErr := json.NewDecoder(res.Body).Decode(&errResp); decErr == nil {
			return nil, fmt.Errorf("elasticsearch search: %s: %s", errResp.Error.Type, errResp.Error.Reason)
		}
		return nil, fmt.Errorf("elasticsearch search: unexpected status %s", res.Status())
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch search: decode response: %w", err)
	}
	return &esResp, nil
}

// buildSearchQuery constructs the Elasticsearch query DSL as a map.
func (e *Engine) buildSearchQuery(query *domain.SearchQuery, from, size int) map[string]interface{} {
	var mustClause interface{}
	if query.Query != "" {
		mustClause = map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":         query.Query,
				"fields":        []string{"title^3", "title.autocomplete^2", "description", "vendor", "product_type", "tags"},
				"type":          "best_fields",
				"fuzziness":     "AUTO",
				"prefix_length": 1,
			},
		}
	} else {
		mustClause = map[string]interface{}{
			"match_all": map[string]interface{}{},
		}
	}

	boolQuery := map[string]interface{}{
		"must":   []interface{}{mustClause},
		"filter": e.buildFilters(query),
	}

	esQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
		"from":             from,
		"size":             size,
		"track_total_hits": true,
		"aggs":             e.buildAggregations(),
	}

	if sortClause := e.buildSort(query.SortBy); sortClause != nil {
		esQuery["sort"] = sortClause
	}

	return esQuery
}

// buildFilters constructs the filter clauses based on the search query. The
// shop term is always present; the storefront only ever sees active products.
func (e *Engine) buildFilters(query *domain.SearchQuery) []interface{} {
	filters := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"shop": query.Shop},
		},
		map[string]interface{}{
			"term": map[string]interface{}{"status": "active"},
		},
	}

	if len(query.Vendors) > 0 {
		filters = append(filters, map[string]interface{}{
			"terms": map[string]interface{}{"vendor.keyword": query.Vendors},
		})
	}

	if query.ProductType != nil && *query.ProductType != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"product_type.keyword": *query.ProductType},
		})
	}

	if len(query.Tags) > 0 {
		filters = append(filters, map[string]interface{}{
			"terms": map[string]interface{}{"tags": query.Tags},
		})
	}

	if query.Collection != nil && *query.Collection != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"collections": *query.Collection},
		})
	}

	// OR within one option name, AND across names.
	for name, values := range query.Options {
		if len(values) == 0 {
			continue
		}
		pairs := make([]string, 0, len(values))
		for _, v := range values {
			pairs = append(pairs, name+e.pairSep+v)
		}
		filters = append(filters, map[string]interface{}{
			"terms": map[string]interface{}{"option_pairs": pairs},
		})
	}

	if query.MinPrice != nil {
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{
				"max_price": map[string]interface{}{"gte": *query.MinPrice},
			},
		})
	}
	if query.MaxPrice != nil {
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{
				"min_price": map[string]interface{}{"lte": *query.MaxPrice},
			},
		})
	}

	return filters
}

// buildAggregations constructs the facet aggregation block. Terms sizes are
// generous because the facet pipeline prunes and reorders downstream.
func (e *Engine) buildAggregations() map[string]interface{} {
	terms := func(field string, size int) map[string]interface{} {
		return map[string]interface{}{
			"terms": map[string]interface{}{"field": field, "size": size},
		}
	}
	stats := func(field string) map[string]interface{} {
		return map[string]interface{}{
			"stats": map[string]interface{}{"field": field},
		}
	}

	return map[string]interface{}{
		"vendors":      terms("vendor.keyword", 100),
		"productTypes": terms("product_type.keyword", 100),
		"tags":         terms("tags", 250),
		"collections":  terms("collections", 250),
		"optionPairs":  terms("option_pairs", 500),
		"minPrices":    stats("min_price"),
		"maxPrices":    stats("max_price"),
	}
}

// buildSort constructs the sort clause based on the sort option.
func (e *Engine) buildSort(sortBy string) []interface{} {
	switch sortBy {
	case domain.SortPriceAsc:
		return []interface{}{
			map[string]interface{}{"min_price": "asc"},
		}
	case domain.SortPriceDesc:
		return []interface{}{
			map[string]interface{}{"min_price": "desc"},
		}
	case domain.SortNewest:
		return []interface{}{
			map[string]interface{}{"created_at": "desc"},
		}
	case domain.SortTitleAsc:
		return []interface{}{
			map[string]interface{}{"title.keyword": "asc"},
		}
	case domain.SortTitleDesc:
		return []interface{}{
			map[string]interface{}{"title.keyword": "desc"},
		}
	default:
		// SortRelevance: use default ES scoring.
		return []interface{}{
			map[string]interface{}{"_score": "desc"},
		}
	}
}

// toDomain maps the decoded aggregation block onto the domain shape. The
// price range spans the lowest variant minimum to the highest variant
// maximum; the product price range covers the starting prices.
func (a *esAggregations) toDomain() *domain.FacetAggregations {
	if a == nil {
		return nil
	}

	out := &domain.FacetAggregations{
		Vendors:      a.Vendors,
		ProductTypes: a.ProductTypes,
		Tags:         a.Tags,
		Collections:  a.Collections,
		OptionPairs:  a.OptionPairs,
	}

	if a.MinPrices != nil && a.MinPrices.Count > 0 {
		out.PriceRange = &domain.RangeAggregation{Min: a.MinPrices.Min, Max: a.MinPrices.Max}
	}
	if a.MinPrices != nil && a.MaxPrices != nil && a.MinPrices.Count > 0 {
		out.VariantPriceRange = &domain.RangeAggregation{Min: a.MinPrices.Min, Max: a.MaxPrices.Max}
	}

	return out
}

// DeleteIndex removes the entire Elasticsearch index.
// It is intended for testing and administrative operations only.
// A 404 response is treated as success (index already absent).
func (e *Engine) DeleteIndex(ctx context.Context) error {
	res, err := e.client.Indices.Delete(
		[]string{e.indexName},
		e.client.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch delete index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() && res.StatusCode != 404 {
		var errResp esErrorResponse
		if decErr := json.NewDecoder(res.Body).Decode(&errResp); decErr == nil {
			return fmt.Errorf("elasticsearch delete index: %s: %s", errResp.Error.Type, errResp.Error.Reason)
		}
		return fmt.Errorf("elasticsearch delete index: unexpected status %s", res.Status())
	}

	e.logger.Info("elasticsearch index deleted", "index", e.indexName)
	return nil
}
