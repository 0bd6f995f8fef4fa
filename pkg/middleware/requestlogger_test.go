package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/StorefrontFilterGo/pkg/logger"
)

func TestRequestLogger_ShopFromQuery(t *testing.T) {
	var buf bytes.Buffer
	base := logger.NewWithWriter("filter-service", "info", &buf)

	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).InfoContext(r.Context(), "handled")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/storefront/filters?shop=demo.myshopify.com", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "demo.myshopify.com", line["shop_domain"])
}

func TestRequestLogger_ShopFromHeader(t *testing.T) {
	var buf bytes.Buffer
	base := logger.NewWithWriter("filter-service", "info", &buf)

	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).InfoContext(r.Context(), "handled")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/filter-configs", nil)
	req.Header.Set("X-Shop-Domain", "other.myshopify.com")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "other.myshopify.com", line["shop_domain"])
}

func TestRequestLogger_NoShop(t *testing.T) {
	var buf bytes.Buffer
	base := logger.NewWithWriter("filter-service", "info", &buf)

	var got string
	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = logger.ShopDomainFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Empty(t, got)
}
