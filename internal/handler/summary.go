package handler

import (
	"log/slog"
	"net/http"

	"zotproxy/internal/domain"
	"zotproxy/internal/httputil"
	"zotproxy/internal/summary"
	"zotproxy/internal/zotero"
)

// SummaryHandler handles collection summarization requests
type SummaryHandler struct {
	pipeline *summary.Pipeline
	client   zotero.LibraryClient
	logger   *slog.Logger
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(pipeline *summary.Pipeline, client zotero.LibraryClient, logger *slog.Logger) *SummaryHandler {
	return &SummaryHandler{pipeline: pipeline, client: client, logger: logger}
}

// SummarizeCollection resolves a collection name and summarizes the PDFs of
// the whole subtree across every matching library scope.
// GET /api/collections/summary?collection=...
func (h *SummaryHandler) SummarizeCollection(w http.ResponseWriter, r *http.Request) {
	apiKey := httputil.GetAPIKey(r)
	collection := httputil.QueryParamLower(r, "collection")

	if collection == "" {
		handleError(w, &domain.ValidationError{Message: "collection is required"})
		return
	}

	keyInfo, err := h.client.CurrentKey(r.Context(), apiKey)
	if err != nil {
		handleError(w, err)
		return
	}

	result, err := h.pipeline.Summarize(r.Context(), apiKey, keyInfo.UserID, collection)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Debug("summary served",
		"collection", collection,
		"pdfs_read", result.PDFsRead,
	)

	httputil.RespondJSON(w, http.StatusOK, result)
}
