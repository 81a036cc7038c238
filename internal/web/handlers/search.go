package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-finder/internal/config"
	"github.com/kozaktomas/face-finder/internal/extract"
	"github.com/kozaktomas/face-finder/internal/match"
	"github.com/kozaktomas/face-finder/internal/store"
)

// SearchHandler streams face search results over SSE.
type SearchHandler struct {
	config    *config.Config
	extractor extract.Extractor
	store     *store.Store
	sessions  *SessionRegistry
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(cfg *config.Config, extractor extract.Extractor, st *store.Store, sessions *SessionRegistry) *SearchHandler {
	return &SearchHandler{
		config:    cfg,
		extractor: extractor,
		store:     st,
		sessions:  sessions,
	}
}

// Search runs a scan of one album against the session's reference and
// streams every event as it is produced. Closing the connection cancels
// the scan between items via the request context.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	albumName := chi.URLParam(r, "album")
	album, err := h.store.Album(albumName)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session query parameter is required")
		return
	}
	ref := h.sessions.Get(sessionID)
	if ref == nil {
		respondError(w, http.StatusNotFound, "unknown session")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	scanner := &match.Scanner{
		Extractor:     h.extractor,
		Tolerance:     h.config.Search.Tolerance,
		MinConfidence: h.config.Search.MinConfidence,
	}

	for event := range scanner.Scan(r.Context(), ref, album) {
		io.WriteString(w, event.SSE())
		flusher.Flush()
	}
}
