package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"zotproxy/internal/domain"
	"zotproxy/internal/domain/models"
	"zotproxy/internal/httputil"
	"zotproxy/internal/search"
	"zotproxy/internal/zotero"
)

// NotesHandler handles note retrieval requests
type NotesHandler struct {
	orchestrator *search.Orchestrator
	client       zotero.LibraryClient
	logger       *slog.Logger
}

// NewNotesHandler creates a new notes handler
func NewNotesHandler(orchestrator *search.Orchestrator, client zotero.LibraryClient, logger *slog.Logger) *NotesHandler {
	return &NotesHandler{orchestrator: orchestrator, client: client, logger: logger}
}

// GetNotes returns the child notes of an item resolved either by exact key
// or through the search fallback ladder.
// GET /api/notes?itemKey=...&q=...&collection=...
func (h *NotesHandler) GetNotes(w http.ResponseWriter, r *http.Request) {
	apiKey := httputil.GetAPIKey(r)
	itemKey := httputil.QueryParam(r, "itemKey")
	query := httputil.QueryParam(r, "q")
	collection := httputil.QueryParamLower(r, "collection")

	if itemKey == "" && query == "" {
		handleError(w, &domain.ValidationError{Message: "itemKey or q is required"})
		return
	}

	keyInfo, err := h.client.CurrentKey(r.Context(), apiKey)
	if err != nil {
		handleError(w, err)
		return
	}

	scope := models.PersonalScope(keyInfo.UserID)
	if itemKey == "" {
		result, err := h.orchestrator.Search(r.Context(), search.Request{
			APIKey:     apiKey,
			UserID:     keyInfo.UserID,
			Query:      query,
			Collection: collection,
			Limit:      50,
		})
		if err != nil {
			handleError(w, err)
			return
		}

		if len(result.Items) == 0 {
			h.logger.Debug("note lookup could not resolve an item",
				"query", query,
				"candidates", len(result.Candidates),
			)
			handleError(w, &domain.NotFoundError{
				Message:     fmt.Sprintf("no item matching %q", query),
				Suggestions: result.Suggestions,
				Candidates:  itemCandidates(result.Candidates),
			})
			return
		}

		itemKey = result.Items[0].Key
		scope = result.Items[0].Scope
	}

	notes, err := h.client.GetItemChildren(r.Context(), apiKey, scope, itemKey, models.ItemTypeNote)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, notes)
}

// GetItemNotes returns the child notes of an item addressed by path key.
// GET /api/items/{key}/notes
func (h *NotesHandler) GetItemNotes(w http.ResponseWriter, r *http.Request) {
	apiKey := httputil.GetAPIKey(r)
	itemKey := r.PathValue("key")

	keyInfo, err := h.client.CurrentKey(r.Context(), apiKey)
	if err != nil {
		handleError(w, err)
		return
	}

	notes, err := h.client.GetItemChildren(r.Context(), apiKey, models.PersonalScope(keyInfo.UserID), itemKey, models.ItemTypeNote)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, notes)
}

// itemCandidates converts scoped items into disambiguation hints.
func itemCandidates(items []search.ScopedItem) []domain.ItemCandidate {
	candidates := make([]domain.ItemCandidate, 0, len(items))
	for _, item := range items {
		title := item.Title
		if title == "" {
			title = "Untitled"
		}
		candidates = append(candidates, domain.ItemCandidate{Title: title, Key: item.Key})
	}
	return candidates
}
