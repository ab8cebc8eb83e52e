package handler

import (
	"log/slog"
	"net/http"

	"zotproxy/internal/httputil"
	"zotproxy/internal/zotero"
)

// IdentityHandler handles the identity check endpoint
type IdentityHandler struct {
	client zotero.LibraryClient
	logger *slog.Logger
}

// NewIdentityHandler creates a new identity handler
func NewIdentityHandler(client zotero.LibraryClient, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{client: client, logger: logger}
}

// Ping verifies the caller's credential against the upstream API and
// returns the resolved identity.
// GET /ping
func (h *IdentityHandler) Ping(w http.ResponseWriter, r *http.Request) {
	apiKey := httputil.GetAPIKey(r)

	keyInfo, err := h.client.CurrentKey(r.Context(), apiKey)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Debug("credential verified", "user_id", keyInfo.UserID)

	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"user_id":  keyInfo.UserID,
		"username": keyInfo.Username,
	})
}
