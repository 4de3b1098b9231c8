// Package file persists the product collection as a single JSON array
// file, the format the warehouse team exchanges with suppliers. It is
// the default backend when no database path is configured.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/iudanet/masterdata/internal/models"
	"github.com/iudanet/masterdata/internal/storage"
)

// Store reads and writes the master JSON file. A parsed copy is cached
// and keyed by the file's mtime, so an external edit of the file (the
// team sometimes fixes records by hand) drops the cache instead of
// being silently overwritten by stale memory.
//
// The mutex guards the cache fields only. Mutations are read-mutate-
// write without a collection lock; concurrent writers are last-write-
// wins, as documented on the storage package.
type Store struct {
	path   string
	logger *slog.Logger

	mu       sync.Mutex
	cache    []*models.Product
	cachedAt time.Time
}

// New creates a file store over the given JSON file. The file does not
// have to exist yet; a missing file reads as an empty collection.
func New(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("file store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{path: path, logger: logger}, nil
}

// Load returns the collection in file order.
func (s *Store) Load(_ context.Context) ([]*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// load returns the cached collection, re-reading the file whenever its
// mtime no longer matches the cached one. Callers hold s.mu.
func (s *Store) load() ([]*models.Product, error) {
	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.cache, s.cachedAt = nil, time.Time{}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat data file: %w", err)
	}

	if s.cache != nil && info.ModTime().Equal(s.cachedAt) {
		return s.cache, nil
	}
	s.cache = nil

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var products []*models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("parse data file: %w", err)
	}

	s.cache, s.cachedAt = products, info.ModTime()
	return products, nil
}

// Replace overwrites the whole collection. The previous file content is
// kept as a timestamped safety copy first; losing the old base to a bad
// upload is the one mistake undo cannot fix.
func (s *Store) Replace(_ context.Context, products []*models.Product, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range products {
		if p.Source == "" {
			p.Source = source
		}
	}

	s.safetyCopy()
	return s.save(products)
}

// UpdateField sets one field on every record carrying the id. Duplicate
// ids in the file are a data defect; all of them receive the write so
// none drifts.
func (s *Store) UpdateField(_ context.Context, key int64, field string, value models.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return err
	}

	v := coerce(value)
	hit := false
	for _, p := range products {
		if productID(p) == key {
			p.Set(field, v)
			hit = true
		}
	}
	if !hit {
		return storage.ErrNotFound
	}
	return s.save(products)
}

// BatchUpdate sets one field on every record whose id is listed.
func (s *Store) BatchUpdate(_ context.Context, keys []int64, field string, value models.Value) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return 0, err
	}

	wanted := keySet(keys)
	v := coerce(value)
	updated := 0
	for _, p := range products {
		if _, ok := wanted[productID(p)]; ok {
			p.Set(field, v)
			updated++
		}
	}
	if updated == 0 {
		return 0, nil
	}
	return updated, s.save(products)
}

// Delete removes every record whose id is listed.
func (s *Store) Delete(_ context.Context, keys []int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return 0, err
	}

	wanted := keySet(keys)
	kept := products[:0:0]
	deleted := 0
	for _, p := range products {
		if _, ok := wanted[productID(p)]; ok {
			deleted++
			continue
		}
		kept = append(kept, p)
	}
	if deleted == 0 {
		return 0, nil
	}
	return deleted, s.save(kept)
}

// Clear wipes the collection, keeping a safety copy of the old file.
func (s *Store) Clear(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return 0, err
	}
	n := len(products)

	s.safetyCopy()
	if err := s.save(nil); err != nil {
		return 0, err
	}
	return n, nil
}

// ProductIDs echoes back the ids that exist in the collection, 0 where
// no record carries the id. File keys already are product identities.
func (s *Store) ProductIDs(_ context.Context, keys []int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return nil, err
	}

	known := make(map[int64]struct{}, len(products))
	for _, p := range products {
		if id := productID(p); id != 0 {
			known[id] = struct{}{}
		}
	}

	out := make([]int64, len(keys))
	for i, k := range keys {
		if _, ok := known[k]; ok {
			out[i] = k
		}
	}
	return out, nil
}

// save writes the collection atomically (temp file + rename) and
// refreshes the cache from the new file state. Callers hold s.mu.
func (s *Store) save(products []*models.Product) error {
	if products == nil {
		products = []*models.Product{}
	}

	raw, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".products-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace data file: %w", err)
	}

	info, err := os.Stat(s.path)
	if err != nil {
		s.cache, s.cachedAt = nil, time.Time{}
		return nil
	}
	s.cache, s.cachedAt = products, info.ModTime()
	return nil
}

// safetyCopy duplicates the current file next to itself with a
// timestamp suffix. Best-effort: a failed copy is logged, not fatal,
// because blocking an import over it would strand the upload.
func (s *Store) safetyCopy() {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && len(raw) == 0) {
		return
	}
	if err != nil {
		s.logger.Warn("safety copy skipped, read failed", "path", s.path, "error", err)
		return
	}

	ext := filepath.Ext(s.path)
	stem := strings.TrimSuffix(s.path, ext)
	copyPath := fmt.Sprintf("%s_backup_%s%s", stem, time.Now().Format("20060102_150405"), ext)
	if err := os.WriteFile(copyPath, raw, 0o644); err != nil {
		s.logger.Warn("safety copy failed", "path", copyPath, "error", err)
	}
}

// coerce is the file backend's storage form: trimmed strings, numbers
// untouched. The file keeps whatever text the editor typed.
func coerce(v models.Value) models.Value {
	if v.IsString() {
		return models.String(strings.TrimSpace(v.Text()))
	}
	return v
}

func productID(p *models.Product) int64 {
	f, ok := p.Attr(models.AttrIDProduktu).Float()
	if !ok {
		return 0
	}
	return int64(f)
}

func keySet(keys []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}
