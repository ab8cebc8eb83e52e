package httputil

import (
	"context"
	"log/slog"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	apiKeyKey contextKey = "apiKey"
	loggerKey contextKey = "logger"
)

// WithAPIKey adds the caller's upstream credential to the request context
func WithAPIKey(r *http.Request, apiKey string) *http.Request {
	ctx := context.WithValue(r.Context(), apiKeyKey, apiKey)
	return r.WithContext(ctx)
}

// GetAPIKey retrieves the credential from context, returns empty string if not found
func GetAPIKey(r *http.Request) string {
	apiKey, _ := r.Context().Value(apiKeyKey).(string)
	return apiKey
}

// WithLogger attaches a request-scoped logger to the request context
func WithLogger(r *http.Request, logger *slog.Logger) *http.Request {
	ctx := context.WithValue(r.Context(), loggerKey, logger)
	return r.WithContext(ctx)
}

// GetLogger retrieves the request-scoped logger, falling back to the default
func GetLogger(r *http.Request) *slog.Logger {
	if logger, ok := r.Context().Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
