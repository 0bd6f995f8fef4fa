package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/StorefrontFilterGo/internal/domain"
	"github.com/utafrali/StorefrontFilterGo/internal/engine/memory"
	"github.com/utafrali/StorefrontFilterGo/pkg/httpclient"
)

func newReindexService(productAPIURL string) *SearchService {
	configs, _ := newConfigService()
	eng := memory.New("::")
	logger := newTestLogger()
	client := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("product-api-test"),
		logger,
	)
	return NewSearchService(eng, configs, nil, client, productAPIURL, "::", logger)
}

func TestReindex_IndexesProductsFromRemoteService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := productPage{
			Data: []IndexProductInput{
				{ID: "prod-1", Title: "Reindexed Sweater", Vendor: "Acme", MinPrice: 49.99, MaxPrice: 59.99, Status: "active"},
				{ID: "prod-2", Title: "Reindexed Scarf", Vendor: "Luxe", MinPrice: 19.99, MaxPrice: 19.99, Status: "active"},
			},
			TotalCount: 2,
			Page:       1,
			TotalPages: 1,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	svc := newReindexService(srv.URL)

	indexed, err := svc.Reindex(context.Background(), testShop)
	require.NoError(t, err)
	assert.Equal(t, 2, indexed)

	result, err := svc.Search(context.Background(), &domain.SearchQuery{Shop: testShop, Query: "reindexed"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
}

func TestReindex_HandlesMultiplePages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		resp := productPage{
			Data: []IndexProductInput{
				{ID: "prod-" + strconv.Itoa(page), Title: "Paged Product " + strconv.Itoa(page), Status: "active"},
			},
			TotalCount: 3,
			Page:       page,
			TotalPages: 3,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	svc := newReindexService(srv.URL)

	indexed, err := svc.Reindex(context.Background(), testShop)
	require.NoError(t, err)
	assert.Equal(t, 3, indexed)
}

func TestReindex_ClearsExistingShopDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(productPage{TotalPages: 1})
	}))
	defer srv.Close()

	svc := newReindexService(srv.URL)

	require.NoError(t, svc.IndexProduct(context.Background(), sampleInput("stale-1", "Stale Product")))

	indexed, err := svc.Reindex(context.Background(), testShop)
	require.NoError(t, err)
	assert.Equal(t, 0, indexed)

	result, err := svc.Search(context.Background(), &domain.SearchQuery{Shop: testShop})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
}

func TestReindex_RequiresShop(t *testing.T) {
	svc := newReindexService("http://localhost:0")

	_, err := svc.Reindex(context.Background(), "")
	assert.Error(t, err)
}

func TestReindex_WithoutProductAPI(t *testing.T) {
	configs, _ := newConfigService()
	svc := NewSearchService(memory.New("::"), configs, nil, nil, "", "::", newTestLogger())

	_, err := svc.Reindex(context.Background(), testShop)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "product API is not configured")
}
