package http

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig(t *testing.T, router http.Handler, name string) string {
	t.Helper()
	body := `{"shop":"` + testShop + `","name":"` + name + `"}`
	w := doJSON(t, router, http.MethodPost, "/api/v1/filter-configs", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody(t, w)["data"].(map[string]any)["id"].(string)
}

func TestFilterConfigCreate_ReturnsCreated(t *testing.T) {
	router, _ := newTestRouter()

	body := `{"shop":"` + testShop + `","name":"Default","options":[{"label":"Color","status":"published"}]}`
	w := doJSON(t, router, http.MethodPost, "/api/v1/filter-configs", body)
	assert.Equal(t, http.StatusCreated, w.Code)

	data := decodeBody(t, w)["data"].(map[string]any)
	assert.NotEmpty(t, data["id"])
	assert.Equal(t, float64(1), data["version"])
	assert.Equal(t, false, data["active"])
}

func TestFilterConfigCreate_RequiresShopAndName(t *testing.T) {
	router, _ := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/filter-configs", `{"name":"Default"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	errResp := decodeBody(t, w)["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errResp["code"])

	w = doJSON(t, router, http.MethodPost, "/api/v1/filter-configs", `{"shop":"`+testShop+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFilterConfigCreate_RejectsInvalidShopDomain(t *testing.T) {
	router, _ := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/filter-configs", `{"shop":"not a domain","name":"Default"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFilterConfigCreate_RejectsInvalidJSON(t *testing.T) {
	router, _ := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/filter-configs", "not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFilterConfigGet_ReturnsConfig(t *testing.T) {
	router, _ := newTestRouter()
	id := createTestConfig(t, router, "Default")

	w := doJSON(t, router, http.MethodGet, "/api/v1/filter-configs/"+id, "")
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, id, data["id"])
	assert.Equal(t, testShop, data["shop"])
}

func TestFilterConfigGet_UnknownIDReturns404(t *testing.T) {
	router, _ := newTestRouter()

	w := doJSON(t, router, http.MethodGet, "/api/v1/filter-configs/"+uuid.New().String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFilterConfigGet_RejectsMalformedID(t *testing.T) {
	router, _ := newTestRouter()

	w := doJSON(t, router, http.MethodGet, "/api/v1/filter-configs/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	errResp := decodeBody(t, w)["error"].(map[string]any)
	assert.Equal(t, "INVALID_PARAMETER", errResp["code"])
}

func TestFilterConfigList_ReturnsPaginatedConfigs(t *testing.T) {
	router, _ := newTestRouter()
	createTestConfig(t, router, "First")
	createTestConfig(t, router, "Second")

	w := doJSON(t, router, http.MethodGet, "/api/v1/filter-configs?shop="+testShop, "")
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(2), data["total_count"])
	assert.Len(t, data["data"].([]any), 2)
}

func TestFilterConfigUpdate_BumpsVersion(t *testing.T) {
	router, _ := newTestRouter()
	id := createTestConfig(t, router, "Default")

	body := `{"name":"Renamed","options":[{"label":"Size","status":"published"}]}`
	w := doJSON(t, router, http.MethodPut, "/api/v1/filter-configs/"+id, body)
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "Renamed", data["name"])
	assert.Equal(t, float64(2), data["version"])
}

func TestFilterConfigDelete_RemovesConfig(t *testing.T) {
	router, _ := newTestRouter()
	id := createTestConfig(t, router, "Doomed")

	w := doJSON(t, router, http.MethodDelete, "/api/v1/filter-configs/"+id, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/filter-configs/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFilterConfigActivate_SwitchesSiblings(t *testing.T) {
	router, repo := newTestRouter()
	first := createTestConfig(t, router, "First")
	second := createTestConfig(t, router, "Second")

	w := doJSON(t, router, http.MethodPost, "/api/v1/filter-configs/"+first+"/activate", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/filter-configs/"+second+"/activate", "")
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, true, data["active"])

	stored := repo.configs[first]
	assert.False(t, stored.Active)
}

func TestFilterConfigActivate_UnknownIDReturns404(t *testing.T) {
	router, _ := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/filter-configs/"+uuid.New().String()+"/activate", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
