package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/StorefrontFilterGo/internal/domain"
	"github.com/utafrali/StorefrontFilterGo/internal/service"
	"github.com/utafrali/StorefrontFilterGo/pkg/httputil"
	"github.com/utafrali/StorefrontFilterGo/pkg/pagination"
	"github.com/utafrali/StorefrontFilterGo/pkg/validator"
)

// FilterConfigHandler handles the merchant admin endpoints for filter
// configurations.
type FilterConfigHandler struct {
	service *service.FilterConfigService
	logger  *slog.Logger
}

// NewFilterConfigHandler creates a new filter-config HTTP handler.
func NewFilterConfigHandler(svc *service.FilterConfigService, logger *slog.Logger) *FilterConfigHandler {
	return &FilterConfigHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateFilterConfigRequest is the JSON request body for creating a filter config.
type CreateFilterConfigRequest struct {
	Shop    string                      `json:"shop" validate:"required,fqdn"`
	Name    string                      `json:"name" validate:"required,min=1,max=100"`
	Options []domain.FilterOptionConfig `json:"options" validate:"omitempty,max=100"`
}

// UpdateFilterConfigRequest is the JSON request body for updating a filter config.
type UpdateFilterConfigRequest struct {
	Name    string                      `json:"name" validate:"omitempty,min=1,max=100"`
	Options []domain.FilterOptionConfig `json:"options" validate:"omitempty,max=100"`
}

// --- Handlers ---

// Create handles POST /api/v1/filter-configs
func (h *FilterConfigHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateFilterConfigRequest
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

	cfg, err := h.service.Create(r.Context(), &service.CreateFilterConfigInput{
		Shop:    req.Shop,
		Name:    req.Name,
		Options: req.Options,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.OK(cfg))
}

// Get handles GET /api/v1/filter-configs/{id}
func (h *FilterConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	cfg, err := h.service.Get(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.OK(cfg))
}

// List handles GET /api/v1/filter-configs
func (h *FilterConfigHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	shop := r.URL.Query().Get("shop")

	configs, total, err := h.service.List(r.Context(), shop, params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	resp := httputil.NewPaginatedResponse(configs, total, params.Page, params.PerPage)
	httputil.WriteJSON(w, http.StatusOK, httputil.OK(resp))
}

// Update handles PUT /api/v1/filter-configs/{id}
func (h *FilterConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateFilterConfigRequest
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

	cfg, err := h.service.Update(r.Context(), id.String(), &service.UpdateFilterConfigInput{
		Name:    req.Name,
		Options: req.Options,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.OK(cfg))
}

// Delete handles DELETE /api/v1/filter-configs/{id}
func (h *FilterConfigHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.OK(map[string]string{"id": id.String(), "status": "deleted"}))
}

// Activate handles POST /api/v1/filter-configs/{id}/activate
func (h *FilterConfigHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	cfg, err := h.service.Activate(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.OK(cfg))
}
