package middleware

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/StorefrontFilterGo/pkg/logger"
)

// RequestLogger returns middleware that builds a request-scoped logger enriched
// with correlation_id, shop_domain, trace_id, and span_id, then stores it in
// context via logger.NewContext. Downstream handlers retrieve it with
// logger.FromContext(ctx).
//
// This middleware should be mounted AFTER RequestLogging (which sets
// correlation_id).
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Storefront widgets and the embedded dashboard identify the
			// shop via query param or header.
			shop := r.URL.Query().Get("shop")
			if shop == "" {
				shop = r.Header.Get("X-Shop-Domain")
			}
			if shop != "" {
				ctx = logger.WithShopDomain(ctx, shop)
			}

			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
