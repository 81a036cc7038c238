package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kozaktomas/face-finder/internal/store"
)

func TestAlbumLifecycle(t *testing.T) {
	st := store.New(t.TempDir())
	handler := NewAlbumsHandler(st)

	// Empty store lists no albums.
	w := doRequest(handler.List, httptest.NewRequest(http.MethodGet, "/api/v1/albums", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var listing struct {
		Albums []string `json:"albums"`
		Count  int      `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatal(err)
	}
	if listing.Count != 0 || listing.Albums == nil {
		t.Errorf("listing = %+v, want empty non-nil albums", listing)
	}

	// Create slugs the display name.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/albums", strings.NewReader(`{"name": "Léto 2026"}`))
	w = doRequest(handler.Create, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Album string `json:"album"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Album != "leto-2026" {
		t.Errorf("album = %q, want leto-2026", created.Album)
	}

	w = doRequest(handler.List, httptest.NewRequest(http.MethodGet, "/api/v1/albums", nil))
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatal(err)
	}
	if listing.Count != 1 || listing.Albums[0] != "leto-2026" {
		t.Errorf("listing = %+v", listing)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/albums/leto-2026", nil)
	w = doRequest(handler.Delete, requestWithChiParams(req, map[string]string{"album": "leto-2026"}))
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/albums/leto-2026", nil)
	w = doRequest(handler.Delete, requestWithChiParams(req, map[string]string{"album": "leto-2026"}))
	if w.Code != http.StatusNotFound {
		t.Errorf("deleting twice: status = %d, want 404", w.Code)
	}
}

func TestAlbumCreateRejectsBadBody(t *testing.T) {
	handler := NewAlbumsHandler(store.New(t.TempDir()))

	for _, body := range []string{"", "{}", `{"name": ""}`, "not json"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/albums", strings.NewReader(body))
		if w := doRequest(handler.Create, req); w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestAlbumListItems(t *testing.T) {
	root := t.TempDir()
	writeTestAlbum(t, root, "trip", map[string][]byte{
		"b.jpg":     []byte("x"),
		"a.jpg":     []byte("x"),
		"notes.txt": []byte("skip me"),
	})
	handler := NewAlbumsHandler(store.New(root))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/albums/trip/items", nil)
	w := doRequest(handler.ListItems, requestWithChiParams(req, map[string]string{"album": "trip"}))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Album string   `json:"album"`
		Items []string `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 2 || resp.Items[0] != "a.jpg" || resp.Items[1] != "b.jpg" {
		t.Errorf("items = %v, want sorted [a.jpg b.jpg]", resp.Items)
	}
}

func TestAlbumListItemsMissingAlbum(t *testing.T) {
	handler := NewAlbumsHandler(store.New(t.TempDir()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/albums/nope/items", nil)
	w := doRequest(handler.ListItems, requestWithChiParams(req, map[string]string{"album": "nope"}))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestAlbumDeleteItem(t *testing.T) {
	root := t.TempDir()
	writeTestAlbum(t, root, "trip", map[string][]byte{"a.jpg": []byte("x")})
	handler := NewAlbumsHandler(store.New(root))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/albums/trip/items/a.jpg", nil)
	w := doRequest(handler.DeleteItem, requestWithChiParams(req, map[string]string{"album": "trip", "item": "a.jpg"}))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/albums/trip/items/a.jpg", nil)
	w = doRequest(handler.DeleteItem, requestWithChiParams(req, map[string]string{"album": "trip", "item": "a.jpg"}))
	if w.Code != http.StatusNotFound {
		t.Errorf("deleting twice: status = %d, want 404", w.Code)
	}
}

func TestAlbumTraversalRejected(t *testing.T) {
	handler := NewAlbumsHandler(store.New(t.TempDir()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/albums/x/items", nil)
	w := doRequest(handler.ListItems, requestWithChiParams(req, map[string]string{"album": "../outside"}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestImagesServe(t *testing.T) {
	root := t.TempDir()
	writeTestAlbum(t, root, "trip", map[string][]byte{"a.jpg": testJPEG(t)})
	handler := NewImagesHandler(store.New(root))

	req := httptest.NewRequest(http.MethodGet, "/images/trip/a.jpg", nil)
	w := doRequest(handler.Serve, requestWithChiParams(req, map[string]string{"album": "trip", "item": "a.jpg"}))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("content type = %q, want image/jpeg", ct)
	}

	req = httptest.NewRequest(http.MethodGet, "/images/trip/missing.jpg", nil)
	w = doRequest(handler.Serve, requestWithChiParams(req, map[string]string{"album": "trip", "item": "missing.jpg"}))
	if w.Code != http.StatusNotFound {
		t.Errorf("missing image: status = %d, want 404", w.Code)
	}
}
