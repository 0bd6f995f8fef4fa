package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// panicBody matches the httputil response envelope. Pre-rendered because
// encoding can itself fail mid-panic.
const panicBody = `{"success":false,"error":{"code":"INTERNAL_ERROR","message":"an internal error occurred"}}`

// Recovery recovers from handler panics, logs the stack, and answers with
// the standard error envelope instead of tearing down the connection.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					l.ErrorContext(r.Context(), "panic recovered",
						slog.Any("panic", rec),
						slog.String("stack", string(debug.Stack())),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(panicBody))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
