package handler

import (
	"log/slog"
	"net/http"

	"zotproxy/internal/domain/models"
	"zotproxy/internal/httputil"
	"zotproxy/internal/library"
	"zotproxy/internal/zotero"
)

// CollectionsHandler handles collection listing requests
type CollectionsHandler struct {
	client zotero.LibraryClient
	logger *slog.Logger
}

// NewCollectionsHandler creates a new collections handler
func NewCollectionsHandler(client zotero.LibraryClient, logger *slog.Logger) *CollectionsHandler {
	return &CollectionsHandler{client: client, logger: logger}
}

// CollectionEntry is one flattened collection with its hierarchical path
// and library scope tag.
type CollectionEntry struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	ParentKey string `json:"parent_key,omitempty"`
	FullPath  string `json:"full_path"`
	Library   string `json:"library"`
}

// CollectionListResponse splits the flattened listing into personal and
// group collections.
type CollectionListResponse struct {
	PersonalCollections []CollectionEntry `json:"personal_collections"`
	GroupCollections    []CollectionEntry `json:"group_collections"`
}

// ListCollections returns every collection across the personal library and
// all reachable groups, flattened with full paths and scope tags.
// GET /api/collections
func (h *CollectionsHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	apiKey := httputil.GetAPIKey(r)
	logger := httputil.GetLogger(r)

	keyInfo, err := h.client.CurrentKey(r.Context(), apiKey)
	if err != nil {
		handleError(w, err)
		return
	}

	index, err := library.BuildIndex(r.Context(), h.client, apiKey, keyInfo.UserID, logger)
	if err != nil {
		handleError(w, err)
		return
	}

	resp := CollectionListResponse{
		PersonalCollections: []CollectionEntry{},
		GroupCollections:    []CollectionEntry{},
	}
	for _, entry := range index.Entries() {
		ce := CollectionEntry{
			Key:       entry.Collection.Key,
			Name:      entry.Collection.Name,
			ParentKey: entry.Collection.ParentKey,
			FullPath:  entry.FullPath,
			Library:   entry.Scope.Label(),
		}
		if entry.Scope.Type == models.ScopePersonal {
			resp.PersonalCollections = append(resp.PersonalCollections, ce)
		} else {
			resp.GroupCollections = append(resp.GroupCollections, ce)
		}
	}

	h.logger.Debug("collections listed",
		"personal", len(resp.PersonalCollections),
		"group", len(resp.GroupCollections),
	)

	httputil.RespondJSON(w, http.StatusOK, resp)
}
