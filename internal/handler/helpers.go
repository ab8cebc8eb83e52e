package handler

import (
	"errors"
	"net/http"

	"zotproxy/internal/domain"
	"zotproxy/internal/httputil"
)

// handleError converts domain errors to HTTP responses. Not-found outcomes
// carry their suggestions and candidates as RFC 7807 problem extras.
func handleError(w http.ResponseWriter, err error) {
	var httpErr domain.HTTPError
	if !errors.As(err, &httpErr) {
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		extras := map[string]interface{}{}
		if len(notFound.Suggestions) > 0 {
			extras["suggestions"] = notFound.Suggestions
		}
		if len(notFound.Candidates) > 0 {
			extras["candidates"] = notFound.Candidates
		}
		httputil.RespondErrorWithExtras(w, notFound.StatusCode(), notFound.Error(), extras)
		return
	}

	httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
}
