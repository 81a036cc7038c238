package handlers

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-finder/internal/config"
	"github.com/kozaktomas/face-finder/internal/extract"
)

// testConfig creates a config with defaults for testing.
func testConfig() *config.Config {
	return config.Defaults()
}

// fakeExtractor returns canned detections keyed by image content.
type fakeExtractor struct {
	faces map[string][]extract.Detection
	err   error
}

func (e *fakeExtractor) Extract(ctx context.Context, imageData []byte) ([]extract.Detection, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.faces[string(imageData)], nil
}

// failingExtractor fails for one specific image and answers from the
// canned map for everything else.
type failingExtractor struct {
	failFor string
	faces   map[string][]extract.Detection
}

func (e *failingExtractor) Extract(ctx context.Context, imageData []byte) ([]extract.Detection, error) {
	if string(imageData) == e.failFor {
		return nil, errors.New("extractor unavailable")
	}
	return e.faces[string(imageData)], nil
}

// requestWithChiParams creates a request with chi URL parameters.
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// writeTestAlbum creates an album directory with the given items.
func writeTestAlbum(t *testing.T, root, album string, items map[string][]byte) {
	t.Helper()
	dir := filepath.Join(root, album)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	for name, data := range items {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o640); err != nil {
			t.Fatal(err)
		}
	}
}

// testJPEG encodes a small valid JPEG.
func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: 100, G: 100, B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// testPNG encodes a small valid PNG.
func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: 30, G: 200, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// multipartBody builds a multipart form with one or more files in the
// given field.
func multipartBody(t *testing.T, field string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := writer.CreateFormFile(field, name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, writer.FormDataContentType()
}

// doRequest runs a handler and returns the recorder.
func doRequest(handler http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}
