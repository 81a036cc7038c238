package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-finder/internal/store"
)

// ImagesHandler serves stored album images.
type ImagesHandler struct {
	store *store.Store
}

// NewImagesHandler creates a new images handler.
func NewImagesHandler(st *store.Store) *ImagesHandler {
	return &ImagesHandler{store: st}
}

// Serve streams one album image. Album and item names are validated
// against directory traversal before touching the filesystem.
func (h *ImagesHandler) Serve(w http.ResponseWriter, r *http.Request) {
	album, err := h.store.Album(chi.URLParam(r, "album"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	path, err := album.Path(chi.URLParam(r, "item"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "image not found")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	http.ServeFile(w, r, path)
}
