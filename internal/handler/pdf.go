package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"zotproxy/internal/domain"
	"zotproxy/internal/domain/models"
	"zotproxy/internal/httputil"
	"zotproxy/internal/search"
	"zotproxy/internal/summary"
	"zotproxy/internal/zotero"
)

// PDFHandler handles full-text PDF read requests
type PDFHandler struct {
	orchestrator *search.Orchestrator
	client       zotero.LibraryClient
	fetcher      *summary.Fetcher
	previewChars int
	logger       *slog.Logger
}

// NewPDFHandler creates a new PDF read handler
func NewPDFHandler(orchestrator *search.Orchestrator, client zotero.LibraryClient, fetcher *summary.Fetcher, previewChars int, logger *slog.Logger) *PDFHandler {
	return &PDFHandler{
		orchestrator: orchestrator,
		client:       client,
		fetcher:      fetcher,
		previewChars: previewChars,
		logger:       logger,
	}
}

// PDFTextResponse is the capped full-text preview of one item's PDF.
type PDFTextResponse struct {
	ItemKey   string `json:"item_key"`
	Title     string `json:"title,omitempty"`
	Text      string `json:"text"`
	Truncated bool   `json:"truncated"`
}

// ReadPDF resolves an item by key or fuzzy title, selects its PDF text
// source, and returns the extracted text capped to the preview length.
// GET /api/items/read?itemKey=...&title=...&collection=...
func (h *PDFHandler) ReadPDF(w http.ResponseWriter, r *http.Request) {
	apiKey := httputil.GetAPIKey(r)
	itemKey := httputil.QueryParam(r, "itemKey")
	title := httputil.QueryParam(r, "title")
	collection := httputil.QueryParamLower(r, "collection")

	if itemKey == "" && title == "" {
		handleError(w, &domain.ValidationError{Message: "itemKey or title is required"})
		return
	}

	keyInfo, err := h.client.CurrentKey(r.Context(), apiKey)
	if err != nil {
		handleError(w, err)
		return
	}

	item, scope, err := h.resolveItem(r, apiKey, keyInfo.UserID, itemKey, title, collection)
	if err != nil {
		handleError(w, err)
		return
	}

	sourceKey, err := h.selectTextSource(r, apiKey, scope, item)
	if err != nil {
		handleError(w, err)
		return
	}

	text, err := h.fetcher.FetchText(r.Context(), apiKey, scope, sourceKey)
	if err != nil {
		handleError(w, err)
		return
	}

	truncated := false
	if runes := []rune(text); len(runes) > h.previewChars {
		text = string(runes[:h.previewChars])
		truncated = true
	}

	h.logger.Debug("pdf text served",
		"item_key", item.Key,
		"chars", len(text),
		"truncated", truncated,
	)

	httputil.RespondJSON(w, http.StatusOK, PDFTextResponse{
		ItemKey:   item.Key,
		Title:     item.Title,
		Text:      text,
		Truncated: truncated,
	})
}

// resolveItem returns the target item and its owning scope, either from an
// exact key or by running the fallback ladder over the title.
func (h *PDFHandler) resolveItem(r *http.Request, apiKey, userID, itemKey, title, collection string) (*models.Item, models.LibraryScope, error) {
	personal := models.PersonalScope(userID)

	if itemKey != "" {
		item, err := h.client.GetItem(r.Context(), apiKey, personal, itemKey)
		if err != nil {
			return nil, personal, err
		}
		return item, personal, nil
	}

	result, err := h.orchestrator.Search(r.Context(), search.Request{
		APIKey:     apiKey,
		UserID:     userID,
		Query:      title,
		Collection: collection,
		QMode:      zotero.QModeTitle,
		Limit:      5,
	})
	if err != nil {
		return nil, personal, err
	}

	if len(result.Items) == 0 {
		return nil, personal, &domain.NotFoundError{
			Message:     fmt.Sprintf("could not resolve an item from title %q", title),
			Suggestions: result.Suggestions,
			Candidates:  itemCandidates(result.Candidates),
		}
	}

	resolved := result.Items[0]
	return &resolved.Item, resolved.Scope, nil
}

// selectTextSource picks the PDF attachment to read: the item itself when it
// is a PDF attachment, otherwise its first PDF child.
func (h *PDFHandler) selectTextSource(r *http.Request, apiKey string, scope models.LibraryScope, item *models.Item) (string, error) {
	if item.IsPDFAttachment() {
		return item.Key, nil
	}
	if item.ItemType == models.ItemTypeAttachment {
		return "", &domain.NotFoundError{
			Message: fmt.Sprintf("item %q is not a PDF attachment", item.Key),
		}
	}

	children, err := h.client.GetItemChildren(r.Context(), apiKey, scope, item.Key, models.ItemTypeAttachment)
	if err != nil {
		return "", err
	}
	for _, child := range children {
		if child.ContentType == models.ContentTypePDF {
			return child.Key, nil
		}
	}

	return "", &domain.NotFoundError{
		Message: fmt.Sprintf("item %q has no PDF attachment", item.Key),
	}
}
