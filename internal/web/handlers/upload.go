package handlers

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-finder/internal/config"
	"github.com/kozaktomas/face-finder/internal/normalize"
	"github.com/kozaktomas/face-finder/internal/store"
)

// maxUploadSize is the maximum multipart upload size in bytes (100MB).
const maxUploadSize = 100 << 20

// UploadHandler accepts image uploads and normalizes them into an album.
type UploadHandler struct {
	config *config.Config
	store  *store.Store
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(cfg *config.Config, st *store.Store) *UploadHandler {
	return &UploadHandler{config: cfg, store: st}
}

// uploadResult reports what happened to one uploaded file.
type uploadResult struct {
	File   string            `json:"file"`
	Item   string            `json:"item,omitempty"`
	Error  string            `json:"error,omitempty"`
	Detail *normalize.Result `json:"normalization,omitempty"`
}

// Upload feeds every uploaded file through the adaptive normalizer and
// stores the result in the album. A file that fails to decode is reported
// in its slot of the response; the remaining files still go through.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	album, err := h.store.Album(chi.URLParam(r, "album"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "no files provided")
		return
	}

	opts := normalize.Options{
		TargetBytes:    h.config.Normalize.TargetSizeKB * 1024,
		MaxDimension:   h.config.Normalize.MaxDimension,
		InitialQuality: h.config.Normalize.InitialQuality,
		QualityFloor:   h.config.Normalize.QualityFloor,
		QualityStep:    h.config.Normalize.QualityStep,
		MaxAttempts:    h.config.Normalize.MaxAttempts,
	}

	results := make([]uploadResult, 0, len(files))
	stored := 0
	for _, fileHeader := range files {
		res := h.processUpload(fileHeader, album, opts)
		if res.Error == "" {
			stored++
		}
		results = append(results, res)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"album":    album.Name(),
		"uploaded": stored,
		"results":  results,
	})
}

// processUpload normalizes and stores a single uploaded file.
func (h *UploadHandler) processUpload(fileHeader *multipart.FileHeader, album *store.Album, opts normalize.Options) uploadResult {
	name := filepath.Base(fileHeader.Filename)
	result := uploadResult{File: name}

	file, err := fileHeader.Open()
	if err != nil {
		result.Error = "failed to open file"
		return result
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		result.Error = "failed to read file"
		return result
	}

	norm, err := normalize.Normalize(data, opts)
	if err != nil {
		if errors.Is(err, normalize.ErrDecode) {
			result.Error = "not a decodable image"
		} else {
			result.Error = err.Error()
		}
		return result
	}

	// Everything in the corpus is JPEG after normalization.
	item := strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
	if err := album.Save(item, norm.Data); err != nil {
		result.Error = err.Error()
		return result
	}

	log.Printf("stored %s/%s (%d -> %d bytes, q%d, %d attempts)",
		album.Name(), sanitizeForLog(item), norm.OriginalBytes, norm.FinalBytes, norm.Quality, norm.Attempts)

	result.Item = item
	result.Detail = norm
	return result
}
