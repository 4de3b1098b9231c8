package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/iudanet/masterdata/internal/models"
	"github.com/iudanet/masterdata/internal/storage"
)

// Saved bases live under <dir>/<actor>/baza_<timestamp>.json, newest
// three per actor, older ones evicted on save.
const maxBasesPerActor = 3

// Workspaces stores manual "save my work" copies on disk, one
// subdirectory per actor.
type Workspaces struct {
	dir string
}

// NewWorkspaces creates the workspace store rooted at dir.
func NewWorkspaces(dir string) (*Workspaces, error) {
	if dir == "" {
		return nil, fmt.Errorf("workspace store: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace directory: %w", err)
	}
	return &Workspaces{dir: dir}, nil
}

// SaveBase writes the collection as a new saved base for the actor and
// evicts the oldest bases beyond the per-actor cap.
func (w *Workspaces) SaveBase(_ context.Context, actor string, products []*models.Product) (models.WorkspaceInfo, error) {
	actorDir := filepath.Join(w.dir, sanitizeActor(actor))
	if err := os.MkdirAll(actorDir, 0o755); err != nil {
		return models.WorkspaceInfo{}, fmt.Errorf("create actor directory: %w", err)
	}

	if products == nil {
		products = []*models.Product{}
	}
	raw, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return models.WorkspaceInfo{}, fmt.Errorf("encode base: %w", err)
	}

	// Second-precision names collide on rapid saves; suffix until free.
	now := time.Now()
	stamp := now.Format("20060102_150405")
	filename := fmt.Sprintf("baza_%s.json", stamp)
	path := filepath.Join(actorDir, filename)
	for n := 2; ; n++ {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			break
		}
		filename = fmt.Sprintf("baza_%s_%d.json", stamp, n)
		path = filepath.Join(actorDir, filename)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return models.WorkspaceInfo{}, fmt.Errorf("write base: %w", err)
	}

	w.evict(actorDir)

	return models.WorkspaceInfo{
		Filename:  filename,
		Timestamp: now.Format("2006-01-02 15:04:05"),
		Size:      int64(len(raw)),
	}, nil
}

// ListBases lists the actor's saved bases, newest first.
func (w *Workspaces) ListBases(_ context.Context, actor string) ([]models.WorkspaceInfo, error) {
	actorDir := filepath.Join(w.dir, sanitizeActor(actor))
	names, err := baseFiles(actorDir)
	if err != nil {
		return nil, err
	}

	// Timestamped names sort chronologically; newest first for display.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	out := make([]models.WorkspaceInfo, 0, len(names))
	for _, name := range names {
		info := models.WorkspaceInfo{Filename: name}
		if fi, err := os.Stat(filepath.Join(actorDir, name)); err == nil {
			info.Size = fi.Size()
			info.Timestamp = fi.ModTime().Format("2006-01-02 15:04:05")
		}
		out = append(out, info)
	}
	return out, nil
}

// GetBase reads one saved base back.
func (w *Workspaces) GetBase(_ context.Context, actor, filename string) ([]*models.Product, error) {
	if !validBaseName(filename) {
		return nil, storage.ErrWorkspaceNotFound
	}

	path := filepath.Join(w.dir, sanitizeActor(actor), filename)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read base: %w", err)
	}

	var products []*models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("parse base: %w", err)
	}
	return products, nil
}

// evict removes the oldest bases beyond the cap. Best-effort; a
// leftover file only wastes disk.
func (w *Workspaces) evict(actorDir string) {
	names, err := baseFiles(actorDir)
	if err != nil || len(names) <= maxBasesPerActor {
		return
	}
	sort.Strings(names) // oldest first
	for _, name := range names[:len(names)-maxBasesPerActor] {
		os.Remove(filepath.Join(actorDir, name))
	}
}

func baseFiles(actorDir string) ([]string, error) {
	entries, err := os.ReadDir(actorDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list bases: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && validBaseName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// validBaseName accepts only names this store itself produces; anything
// with a path separator or a foreign prefix is rejected outright.
func validBaseName(name string) bool {
	return strings.HasPrefix(name, "baza_") &&
		strings.HasSuffix(name, ".json") &&
		!strings.ContainsAny(name, `/\`) &&
		name == filepath.Base(name)
}

// sanitizeActor maps an actor name to a safe directory component.
func sanitizeActor(actor string) string {
	if actor == "" {
		return "_anonim"
	}
	var b strings.Builder
	for _, r := range actor {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
