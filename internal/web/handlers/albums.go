package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-finder/internal/store"
)

// AlbumsHandler handles album CRUD endpoints.
type AlbumsHandler struct {
	store *store.Store
}

// NewAlbumsHandler creates a new albums handler.
func NewAlbumsHandler(st *store.Store) *AlbumsHandler {
	return &AlbumsHandler{store: st}
}

// List returns all album names.
func (h *AlbumsHandler) List(w http.ResponseWriter, r *http.Request) {
	albums, err := h.store.ListAlbums()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if albums == nil {
		albums = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"albums": albums,
		"count":  len(albums),
	})
}

// Create creates a new album.
func (h *AlbumsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	slug, err := h.store.CreateAlbum(req.Name)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"album": slug})
}

// Delete removes an album and its items.
func (h *AlbumsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "album")
	if err := h.store.DeleteAlbum(name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "album not found")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListItems returns the image items of one album, sorted.
func (h *AlbumsHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	album, err := h.store.Album(chi.URLParam(r, "album"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := album.Items()
	if err != nil {
		respondError(w, http.StatusNotFound, "album not found")
		return
	}
	if items == nil {
		items = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"album": album.Name(),
		"items": items,
		"count": len(items),
	})
}

// DeleteItem removes one item from an album.
func (h *AlbumsHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	album, err := h.store.Album(chi.URLParam(r, "album"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := album.Delete(chi.URLParam(r, "item")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "item not found")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
