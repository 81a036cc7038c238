// Package store is the directory-backed album store: each album is a
// subdirectory of the root, each corpus item a file inside it.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrNotFound is returned when an album or item does not exist.
var ErrNotFound = errors.New("not found")

// imageExtensions lists the file extensions treated as corpus items.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Store manages albums under one root directory.
type Store struct {
	root string
}

// New creates a store rooted at dir. The directory is created on demand.
func New(root string) *Store {
	return &Store{root: root}
}

// removeDiacritics strips diacritical marks from a string (e.g. "Jiří" -> "Jiri").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// Slug normalizes an album name into a filesystem-safe identifier:
// diacritics stripped, lowercased, spaces collapsed to dashes, everything
// else outside [a-z0-9._-] dropped.
func Slug(name string) string {
	name = removeDiacritics(name)
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "-")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), ".")
}

// CreateAlbum creates a new album directory and returns its slug.
func (s *Store) CreateAlbum(name string) (string, error) {
	slug := Slug(name)
	if slug == "" {
		return "", fmt.Errorf("invalid album name %q", name)
	}
	if err := os.MkdirAll(filepath.Join(s.root, slug), 0o750); err != nil {
		return "", fmt.Errorf("creating album %s: %w", slug, err)
	}
	return slug, nil
}

// ListAlbums returns the album slugs under the root, sorted.
func (s *Store) ListAlbums() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing albums: %w", err)
	}

	var albums []string
	for _, entry := range entries {
		if entry.IsDir() {
			albums = append(albums, entry.Name())
		}
	}
	sort.Strings(albums)
	return albums, nil
}

// DeleteAlbum removes an album and all its items.
func (s *Store) DeleteAlbum(name string) error {
	album, err := s.Album(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(album.path); os.IsNotExist(err) {
		return fmt.Errorf("album %s: %w", name, ErrNotFound)
	}
	return os.RemoveAll(album.path)
}

// Album returns a handle to the named album. The album may not exist yet;
// Items reports that as an error so scans see a missing corpus.
func (s *Store) Album(name string) (*Album, error) {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return nil, fmt.Errorf("invalid album name %q", name)
	}
	return &Album{name: name, path: filepath.Join(s.root, name)}, nil
}

// Album is one directory of corpus items. It implements the corpus
// contract consumed by the scanner.
type Album struct {
	name string
	path string
}

// Open wraps an arbitrary directory as an album. Used by the CLI to scan
// folders outside the store root.
func Open(dir string) *Album {
	return &Album{name: filepath.Base(dir), path: dir}
}

// Name returns the album identifier.
func (a *Album) Name() string { return a.name }

// Items returns the image file names in the album, sorted lexicographically
// for deterministic scan order. A missing directory is an error.
func (a *Album) Items() ([]string, error) {
	entries, err := os.ReadDir(a.path)
	if err != nil {
		return nil, fmt.Errorf("album %s: %w", a.name, err)
	}

	var items []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			items = append(items, entry.Name())
		}
	}
	sort.Strings(items)
	return items, nil
}

// Bytes returns the content of one item.
func (a *Album) Bytes(id string) ([]byte, error) {
	path, err := a.itemPath(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path validated by itemPath
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("reading item %s: %w", id, err)
	}
	return data, nil
}

// Save writes an item into the album, creating the directory if needed.
func (a *Album) Save(id string, data []byte) error {
	path, err := a.itemPath(id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(a.path, 0o750); err != nil {
		return fmt.Errorf("creating album %s: %w", a.name, err)
	}
	if err := os.WriteFile(path, data, 0o640); err != nil { //nolint:gosec // path validated by itemPath
		return fmt.Errorf("writing item %s: %w", id, err)
	}
	return nil
}

// Delete removes one item from the album.
func (a *Album) Delete(id string) error {
	path, err := a.itemPath(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("item %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("deleting item %s: %w", id, err)
	}
	return nil
}

// Path returns the on-disk location of an item for file serving. The item
// must exist.
func (a *Album) Path(id string) (string, error) {
	path, err := a.itemPath(id)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("item %s: %w", id, ErrNotFound)
		}
		return "", err
	}
	return path, nil
}

// itemPath validates an item id against directory traversal and the image
// extension whitelist, then resolves it inside the album directory.
func (a *Album) itemPath(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.Contains(id, "..") {
		return "", fmt.Errorf("invalid item name %q", id)
	}
	if !imageExtensions[strings.ToLower(filepath.Ext(id))] {
		return "", fmt.Errorf("unsupported file type %q", id)
	}
	return filepath.Join(a.path, id), nil
}
