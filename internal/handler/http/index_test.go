package http

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexProduct_AcceptsValidBody(t *testing.T) {
	router, _ := newTestRouter()

	body := `{"id":"prod-1","shop":"` + testShop + `","title":"Wool Sweater","min_price":49.99,"max_price":59.99}`
	w := doJSON(t, router, http.MethodPost, "/api/v1/index", body)
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "prod-1", data["id"])
	assert.Equal(t, "indexed", data["status"])
}

func TestIndexProduct_RequiresIDShopAndTitle(t *testing.T) {
	router, _ := newTestRouter()

	cases := []struct {
		name string
		body string
	}{
		{"missing id", `{"shop":"` + testShop + `","title":"No ID"}`},
		{"missing shop", `{"id":"prod-1","title":"No Shop"}`},
		{"missing title", `{"id":"prod-1","shop":"` + testShop + `"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/v1/index", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestIndexProduct_RejectsUnknownStatus(t *testing.T) {
	router, _ := newTestRouter()

	body := `{"id":"prod-1","shop":"` + testShop + `","title":"Bad Status","status":"discontinued"}`
	w := doJSON(t, router, http.MethodPost, "/api/v1/index", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIndexProduct_RejectsInvalidJSON(t *testing.T) {
	router, _ := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/index", "not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIndexProduct_RejectsBodyOver1MB(t *testing.T) {
	router, _ := newTestRouter()

	largeTitle := strings.Repeat("x", 1<<20+1)
	body := `{"id":"big","shop":"` + testShop + `","title":"` + largeTitle + `"}`
	w := doJSON(t, router, http.MethodPost, "/api/v1/index", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBulkIndex_AcceptsValidBody(t *testing.T) {
	router, _ := newTestRouter()

	body := `{"products":[` +
		`{"id":"b1","shop":"` + testShop + `","title":"Bulk One"},` +
		`{"id":"b2","shop":"` + testShop + `","title":"Bulk Two"}]}`
	w := doJSON(t, router, http.MethodPost, "/api/v1/index/bulk", body)
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(2), data["indexed"])
}

func TestBulkIndex_RejectsEmptyProducts(t *testing.T) {
	router, _ := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/index/bulk", `{"products":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteIndexedProduct_ReturnsOK(t *testing.T) {
	router, _ := newTestRouter()
	indexTestProduct(t, router, "del-1", "To Delete")

	w := doJSON(t, router, http.MethodDelete, "/api/v1/index/del-1?shop="+testShop, "")
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "deleted", data["status"])

	w = doJSON(t, router, http.MethodGet, "/api/v1/storefront/search?shop="+testShop+"&q=delete", "")
	require.Equal(t, http.StatusOK, w.Code)
	searchData := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(0), searchData["total"])
}

func TestDeleteIndexedProduct_RequiresShop(t *testing.T) {
	router, _ := newTestRouter()

	w := doJSON(t, router, http.MethodDelete, "/api/v1/index/del-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReindex_RequiresShop(t *testing.T) {
	router, _ := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/index/reindex", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReindex_WithoutProductAPIReturnsConflict(t *testing.T) {
	router, _ := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/index/reindex?shop="+testShop, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}
