package history

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/iudanet/masterdata/internal/models"
	"github.com/iudanet/masterdata/internal/storage"
)

// Each actor keeps at most this many undo steps; the oldest is evicted
// on save. Snapshots are full collection copies, so the cap also bounds
// disk usage.
const maxSnapshotsPerActor = 20

// snapshotPayload is the gzipped value stored per snapshot.
type snapshotPayload struct {
	Action   string            `json:"action"`
	TakenAt  time.Time         `json:"taken_at"`
	Products []*models.Product `json:"products"`
}

// snapshotMeta is the small uncompressed record used for listings, so
// showing the history panel never has to gunzip twenty collections.
type snapshotMeta struct {
	ID      string    `json:"id"`
	Action  string    `json:"action"`
	TakenAt time.Time `json:"taken_at"`
}

// SaveSnapshot stores a copy of the collection in the actor's undo ring
// and returns the snapshot id.
func (s *Store) SaveSnapshot(actor string, products []*models.Product, action string) (string, error) {
	if actor == "" {
		return "", fmt.Errorf("save snapshot: empty actor")
	}

	id := uuid.NewString()
	takenAt := time.Now()
	key := []byte(takenAt.UTC().Format(time.RFC3339Nano) + "_" + id)

	payload, err := compressPayload(snapshotPayload{Action: action, TakenAt: takenAt, Products: products})
	if err != nil {
		return "", err
	}
	meta, err := json.Marshal(snapshotMeta{ID: id, Action: action, TakenAt: takenAt})
	if err != nil {
		return "", fmt.Errorf("encode snapshot meta: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		data, err := tx.Bucket(bucketSnapshots).CreateBucketIfNotExists([]byte(actor))
		if err != nil {
			return fmt.Errorf("create actor bucket: %w", err)
		}
		metas, err := tx.Bucket(bucketSnapshotMeta).CreateBucketIfNotExists([]byte(actor))
		if err != nil {
			return fmt.Errorf("create actor meta bucket: %w", err)
		}

		if err := data.Put(key, payload); err != nil {
			return fmt.Errorf("put snapshot: %w", err)
		}
		if err := metas.Put(key, meta); err != nil {
			return fmt.Errorf("put snapshot meta: %w", err)
		}
		return evictOldest(data, metas)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// evictOldest trims the ring to the cap. Keys are RFC3339Nano-prefixed,
// so lexicographic order is chronological order. Keys are collected
// before deleting; bbolt cursors must not survive a bucket Delete.
func evictOldest(data, metas *bbolt.Bucket) error {
	var keys [][]byte
	c := data.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		keys = append(keys, append([]byte(nil), k...))
	}
	for i := 0; i < len(keys)-maxSnapshotsPerActor; i++ {
		if err := data.Delete(keys[i]); err != nil {
			return fmt.Errorf("evict snapshot: %w", err)
		}
		if err := metas.Delete(keys[i]); err != nil {
			return fmt.Errorf("evict snapshot meta: %w", err)
		}
	}
	return nil
}

// LoadSnapshot returns the products frozen in the snapshot.
func (s *Store) LoadSnapshot(actor, id string) ([]*models.Product, error) {
	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSnapshots).Bucket([]byte(actor))
		if data == nil {
			return storage.ErrSnapshotNotFound
		}
		k, v := findByID(data, id)
		if k == nil {
			return storage.ErrSnapshotNotFound
		}
		raw = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	payload, err := decompressPayload(raw)
	if err != nil {
		return nil, err
	}
	return payload.Products, nil
}

// ListSnapshots lists the actor's snapshots, newest first.
func (s *Store) ListSnapshots(actor string) ([]models.SnapshotInfo, error) {
	var out []models.SnapshotInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		metas := tx.Bucket(bucketSnapshotMeta).Bucket([]byte(actor))
		if metas == nil {
			return nil
		}
		c := metas.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var m snapshotMeta
			if err := json.Unmarshal(v, &m); err != nil {
				continue // skip a corrupt meta record, the payload may still restore
			}
			out = append(out, models.SnapshotInfo{
				TakenAt:       m.TakenAt,
				ID:            m.ID,
				Action:        m.Action,
				Timestamp:     m.TakenAt.Format(time.RFC3339),
				FormattedTime: m.TakenAt.Format("02-01-2006 15:04:05"),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return out, nil
}

// DeleteSnapshot removes one snapshot from the actor's ring.
func (s *Store) DeleteSnapshot(actor, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSnapshots).Bucket([]byte(actor))
		if data == nil {
			return storage.ErrSnapshotNotFound
		}
		k, _ := findByID(data, id)
		if k == nil {
			return storage.ErrSnapshotNotFound
		}
		if err := data.Delete(k); err != nil {
			return fmt.Errorf("delete snapshot: %w", err)
		}
		if metas := tx.Bucket(bucketSnapshotMeta).Bucket([]byte(actor)); metas != nil {
			if err := metas.Delete(k); err != nil {
				return fmt.Errorf("delete snapshot meta: %w", err)
			}
		}
		return nil
	})
}

// ClearSnapshots drops the actor's whole ring.
func (s *Store) ClearSnapshots(actor string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, top := range [][]byte{bucketSnapshots, bucketSnapshotMeta} {
			err := tx.Bucket(top).DeleteBucket([]byte(actor))
			if err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
				return fmt.Errorf("clear snapshots: %w", err)
			}
		}
		return nil
	})
}

// findByID scans the actor bucket for the key carrying the id suffix.
// The ring holds at most twenty keys, so a scan is fine.
func findByID(b *bbolt.Bucket, id string) (key, value []byte) {
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		if strings.HasSuffix(string(k), "_"+id) {
			return k, v
		}
	}
	return nil, nil
}

func compressPayload(p snapshotPayload) ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

func decompressPayload(raw []byte) (snapshotPayload, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return snapshotPayload{}, fmt.Errorf("decompress snapshot: %w", err)
	}
	defer zr.Close()

	decoded, err := io.ReadAll(zr)
	if err != nil {
		return snapshotPayload{}, fmt.Errorf("decompress snapshot: %w", err)
	}
	var p snapshotPayload
	if err := json.Unmarshal(decoded, &p); err != nil {
		return snapshotPayload{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return p, nil
}
