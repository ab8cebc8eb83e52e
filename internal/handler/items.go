package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"zotproxy/internal/domain"
	"zotproxy/internal/httputil"
	"zotproxy/internal/search"
	"zotproxy/internal/zotero"
)

// ItemsHandler handles item search requests
type ItemsHandler struct {
	orchestrator *search.Orchestrator
	client       zotero.LibraryClient
	logger       *slog.Logger
}

// NewItemsHandler creates a new items handler
func NewItemsHandler(orchestrator *search.Orchestrator, client zotero.LibraryClient, logger *slog.Logger) *ItemsHandler {
	return &ItemsHandler{orchestrator: orchestrator, client: client, logger: logger}
}

// SearchItems resolves a free-text query (optionally scoped to a fuzzy
// collection name) into items via the fallback ladder.
// GET /api/items?q=...&collection=...
func (h *ItemsHandler) SearchItems(w http.ResponseWriter, r *http.Request) {
	apiKey := httputil.GetAPIKey(r)
	query := httputil.QueryParam(r, "q")
	collection := httputil.QueryParamLower(r, "collection")

	keyInfo, err := h.client.CurrentKey(r.Context(), apiKey)
	if err != nil {
		handleError(w, err)
		return
	}

	result, err := h.orchestrator.Search(r.Context(), search.Request{
		APIKey:     apiKey,
		UserID:     keyInfo.UserID,
		Query:      query,
		Collection: collection,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	if len(result.Items) == 0 {
		h.logger.Debug("item search exhausted every tier",
			"query", query,
			"collection", collection,
			"suggestions", len(result.Suggestions),
		)
		handleError(w, &domain.NotFoundError{
			Message:     fmt.Sprintf("no items found for query %q", query),
			Suggestions: result.Suggestions,
		})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result.Items)
}
