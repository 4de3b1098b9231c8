// Package history keeps the per-actor undo snapshots, the modified
// counter, and (for the file backend, which has no tables) the audit
// trail. Everything lives in one bbolt file next to the data file.
package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var (
	bucketSnapshots    = []byte("snapshots")     // nested bucket per actor: key -> gzipped payload
	bucketSnapshotMeta = []byte("snapshot_meta") // nested bucket per actor: key -> JSON meta
	bucketChangeLog    = []byte("change_log")
	bucketStats        = []byte("stats")
)

// Store is the bbolt-backed history store.
type Store struct {
	db *bbolt.DB
}

// New opens (or creates) the history database at path.
func New(_ context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	store := &Store{db: db}
	if err := store.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history buckets: %w", err)
	}
	return store, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketSnapshots, bucketSnapshotMeta, bucketChangeLog, bucketStats} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
}
