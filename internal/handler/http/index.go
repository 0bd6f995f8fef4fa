package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/StorefrontFilterGo/internal/service"
	"github.com/utafrali/StorefrontFilterGo/pkg/httputil"
	"github.com/utafrali/StorefrontFilterGo/pkg/validator"
)

// IndexHandler handles the internal index management endpoints used by the
// product sync jobs.
type IndexHandler struct {
	service *service.SearchService
	logger  *slog.Logger
}

// NewIndexHandler creates a new index management HTTP handler.
func NewIndexHandler(svc *service.SearchService, logger *slog.Logger) *IndexHandler {
	return &IndexHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// IndexProductRequest is the JSON request body for indexing a product.
type IndexProductRequest struct {
	ID          string              `json:"id" validate:"required"`
	Shop        string              `json:"shop" validate:"required,fqdn"`
	Title       string              `json:"title" validate:"required,min=1"`
	Handle      string              `json:"handle"`
	Description string              `json:"description"`
	Vendor      string              `json:"vendor"`
	ProductType string              `json:"product_type"`
	Tags        []string            `json:"tags"`
	Collections []string            `json:"collections"`
	Options     map[string][]string `json:"options"`
	MinPrice    float64             `json:"min_price" validate:"gte=0"`
	MaxPrice    float64             `json:"max_price" validate:"gte=0"`
	Currency    string              `json:"currency"`
	Status      string              `json:"status" validate:"omitempty,oneof=active draft archived"`
	ImageURL    string              `json:"image_url"`
}

func (req *IndexProductRequest) toInput() service.IndexProductInput {
	return service.IndexProductInput{
		ID:          req.ID,
		Shop:        req.Shop,
		Title:       req.Title,
		Handle:      req.Handle,
		Description: req.Description,
		Vendor:      req.Vendor,
		ProductType: req.ProductType,
		Tags:        req.Tags,
		Collections: req.Collections,
		Options:     req.Options,
		MinPrice:    req.MinPrice,
		MaxPrice:    req.MaxPrice,
		Currency:    req.Currency,
		Status:      req.Status,
		ImageURL:    req.ImageURL,
	}
}

// BulkIndexRequest is the JSON request body for bulk indexing products.
type BulkIndexRequest struct {
	Products []IndexProductRequest `json:"products" validate:"required,min=1,max=500,dive"`
}

// --- Handlers ---

// IndexProduct handles POST /api/v1/index
func (h *IndexHandler) IndexProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req IndexProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Fail(&httputil.ErrorResponse{
			Code:    "INVALID_INPUT",
			Message: "invalid request body: " + err.Error(),
		}))
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := req.toInput()
	if err := h.service.IndexProduct(r.Context(), &input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.OK(map[string]string{"id": req.ID, "status": "indexed"}))
}

// BulkIndex handles POST /api/v1/index/bulk
func (h *IndexHandler) BulkIndex(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20) // 10MB limit for bulk endpoint

	var req BulkIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Fail(&httputil.ErrorResponse{
			Code:    "INVALID_INPUT",
			Message: "invalid request body: " + err.Error(),
		}))
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	inputs := make([]service.IndexProductInput, 0, len(req.Products))
	for i := range req.Products {
		inputs = append(inputs, req.Products[i].toInput())
	}

	if err := h.service.BulkIndex(r.Context(), inputs); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.OK(map[string]any{"indexed": len(inputs), "status": "ok"}))
}

// DeleteProduct handles DELETE /api/v1/index/{id}
func (h *IndexHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	shop := r.URL.Query().Get("shop")
	if shop == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Fail(&httputil.ErrorResponse{
			Code:    "INVALID_PARAMETER",
			Message: "shop is required",
		}))
		return
	}

	if err := h.service.DeleteProduct(r.Context(), shop, id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.OK(map[string]string{"id": id, "status": "deleted"}))
}

// Reindex handles POST /api/v1/index/reindex
func (h *IndexHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	if shop == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Fail(&httputil.ErrorResponse{
			Code:    "INVALID_PARAMETER",
			Message: "shop is required",
		}))
		return
	}

	indexed, err := h.service.Reindex(r.Context(), shop)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.OK(map[string]any{"shop": shop, "indexed": indexed}))
}
