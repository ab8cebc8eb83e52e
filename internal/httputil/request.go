package httputil

import (
	"net/http"
	"strings"
)

// QueryParam returns a trimmed query parameter value.
func QueryParam(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}

// QueryParamLower returns a trimmed, lowercased query parameter value.
func QueryParamLower(r *http.Request, name string) string {
	return strings.ToLower(QueryParam(r, name))
}
