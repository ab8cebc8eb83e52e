package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"zotproxy/internal/httputil"
)

// RequestID attaches a request-scoped logger carrying a generated request ID
// and basic request attrs. Components receive this logger explicitly through
// the request context; there is no process-wide mutable logging state.
func RequestID(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.NewString()

			reqLogger := logger.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			w.Header().Set("X-Request-ID", id)
			next.ServeHTTP(w, httputil.WithLogger(r, reqLogger))
		})
	}
}
