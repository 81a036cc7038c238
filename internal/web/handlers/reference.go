package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-finder/internal/config"
	"github.com/kozaktomas/face-finder/internal/extract"
	"github.com/kozaktomas/face-finder/internal/match"
)

// maxReferenceSize caps reference image uploads at 32MB.
const maxReferenceSize = 32 << 20

// ReferenceHandler manages reference face sessions.
type ReferenceHandler struct {
	config    *config.Config
	extractor extract.Extractor
	sessions  *SessionRegistry
}

// NewReferenceHandler creates a new reference handler.
func NewReferenceHandler(cfg *config.Config, extractor extract.Extractor, sessions *SessionRegistry) *ReferenceHandler {
	return &ReferenceHandler{
		config:    cfg,
		extractor: extractor,
		sessions:  sessions,
	}
}

// Create loads a reference face from an uploaded image and opens a search
// session owning it. The first detected face wins; no face is an error.
func (h *ReferenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxReferenceSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	sourceID := filepath.Base(header.Filename)
	ref, err := match.LoadReference(r.Context(), h.extractor, data, sourceID)
	if err != nil {
		if errors.Is(err, match.ErrNoFace) {
			respondError(w, http.StatusUnprocessableEntity, "no face detected in reference image")
			return
		}
		respondError(w, http.StatusBadGateway, "failed to extract reference face: "+err.Error())
		return
	}

	sessionID := h.sessions.Create(ref)
	log.Printf("reference session %s created from %s", sessionID, sanitizeForLog(sourceID))

	respondJSON(w, http.StatusCreated, map[string]any{
		"session":   sessionID,
		"source_id": ref.SourceID,
	})
}

// Status reports whether the session's reference is loaded, plus the
// thresholds the scan will use.
func (h *ReferenceHandler) Status(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session")
	ref := h.sessions.Get(sessionID)

	resp := map[string]any{
		"reference_loaded": ref != nil,
		"tolerance":        h.config.Search.Tolerance,
		"min_confidence":   h.config.Search.MinConfidence,
	}
	if ref != nil {
		resp["source_id"] = ref.SourceID
	}
	respondJSON(w, http.StatusOK, resp)
}

// Delete closes a reference session.
func (h *ReferenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.sessions.Delete(chi.URLParam(r, "session"))
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
