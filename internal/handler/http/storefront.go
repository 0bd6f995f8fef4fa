package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/utafrali/StorefrontFilterGo/internal/domain"
	"github.com/utafrali/StorefrontFilterGo/internal/service"
	"github.com/utafrali/StorefrontFilterGo/pkg/httputil"
	"github.com/utafrali/StorefrontFilterGo/pkg/pagination"
)

// StorefrontHandler handles the public storefront endpoints consumed by the
// theme widget.
type StorefrontHandler struct {
	service *service.SearchService
	pairSep string
	logger  *slog.Logger
}

// NewStorefrontHandler creates a new storefront HTTP handler.
func NewStorefrontHandler(svc *service.SearchService, pairSep string, logger *slog.Logger) *StorefrontHandler {
	if pairSep == "" {
		pairSep = "::"
	}
	return &StorefrontHandler{
		service: svc,
		pairSep: pairSep,
		logger:  logger,
	}
}

// Filters handles GET /api/v1/storefront/filters
func (h *StorefrontHandler) Filters(w http.ResponseWriter, r *http.Request) {
	query, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	filters, err := h.service.GetFilters(r.Context(), query)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.OK(filters))
}

// Search handles GET /api/v1/storefront/search
func (h *StorefrontHandler) Search(w http.ResponseWriter, r *http.Request) {
	query, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	result, err := h.service.Search(r.Context(), query)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.OK(result))
}

// parseQuery builds a SearchQuery from storefront query parameters. On a bad
// parameter it writes a 400 response and returns false.
func (h *StorefrontHandler) parseQuery(w http.ResponseWriter, r *http.Request) (*domain.SearchQuery, bool) {
	params := r.URL.Query()

	shop := strings.TrimSpace(params.Get("shop"))
	if shop == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Fail(&httputil.ErrorResponse{
			Code:    "INVALID_PARAMETER",
			Message: "shop is required",
		}))
		return nil, false
	}

	sortBy := params.Get("sort")
	if sortBy != "" && !domain.IsValidSort(sortBy) {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Fail(&httputil.ErrorResponse{
			Code:    "INVALID_PARAMETER",
			Message: "sort must be one of: " + strings.Join(domain.ValidSortOptions(), ", "),
		}))
		return nil, false
	}

	page := pagination.FromRequest(r)

	query := &domain.SearchQuery{
		Shop:    shop,
		Query:   strings.TrimSpace(params.Get("q")),
		Vendors: multiValue(params["vendor"]),
		Tags:    multiValue(params["tag"]),
		SortBy:  sortBy,
		Page:    page.Page,
		PerPage: page.PerPage,
	}

	if v := params.Get("product_type"); v != "" {
		query.ProductType = &v
	}
	if v := params.Get("collection"); v != "" {
		query.Collection = &v
	}

	// Selected variant options arrive as repeated option=Name<sep>Value pairs,
	// e.g. option=Color::Red&option=Color::Blue.
	for _, raw := range params["option"] {
		name, value, found := strings.Cut(raw, h.pairSep)
		if !found || name == "" || value == "" {
			continue
		}
		if query.Options == nil {
			query.Options = make(map[string][]string)
		}
		query.Options[name] = append(query.Options[name], value)
	}

	var ok bool
	if query.MinPrice, ok = h.parsePrice(w, params.Get("min_price"), "min_price"); !ok {
		return nil, false
	}
	if query.MaxPrice, ok = h.parsePrice(w, params.Get("max_price"), "max_price"); !ok {
		return nil, false
	}
	if query.MinPrice != nil && query.MaxPrice != nil && *query.MinPrice > *query.MaxPrice {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Fail(&httputil.ErrorResponse{
			Code:    "INVALID_PARAMETER",
			Message: "min_price must not exceed max_price",
		}))
		return nil, false
	}

	return query, true
}

func (h *StorefrontHandler) parsePrice(w http.ResponseWriter, raw, name string) (*float64, bool) {
	if raw == "" {
		return nil, true
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Fail(&httputil.ErrorResponse{
			Code:    "INVALID_PARAMETER",
			Message: name + " must be a valid number",
		}))
		return nil, false
	}
	if price < 0 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Fail(&httputil.ErrorResponse{
			Code:    "INVALID_PARAMETER",
			Message: name + " must not be negative",
		}))
		return nil, false
	}
	return &price, true
}

// multiValue flattens repeated and comma-separated query parameters into a
// single list, dropping empty entries.
func multiValue(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
