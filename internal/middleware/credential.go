package middleware

import (
	"net/http"

	"zotproxy/internal/httputil"
)

// HeaderAPIKey is the header carrying the upstream library API key. The
// api_key query parameter is accepted as a fallback for plugin callers.
const HeaderAPIKey = "Zotero-API-Key"

// Credential extracts the caller-supplied upstream credential and rejects
// the request before any outbound call when it is missing. The credential is
// only forwarded, never validated or stored locally.
func Credential() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(HeaderAPIKey)
			if apiKey == "" {
				apiKey = httputil.QueryParam(r, "api_key")
			}

			if apiKey == "" {
				httputil.RespondError(w, http.StatusBadRequest, "missing Zotero API key")
				return
			}

			next.ServeHTTP(w, httputil.WithAPIKey(r, apiKey))
		})
	}
}
