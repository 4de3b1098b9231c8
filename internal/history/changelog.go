package history

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/masterdata/internal/models"
)

// Append adds one audit entry. Ids come from the bucket sequence, so
// they are strictly increasing and usable as a polling watermark.
func (s *Store) Append(_ context.Context, entry models.ChangeEntry) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketChangeLog)
		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("next change id: %w", err)
		}
		entry.ID = int64(seq)
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = time.Now()
		}

		raw, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("encode change entry: %w", err)
		}
		if err := b.Put(itob(seq), raw); err != nil {
			return fmt.Errorf("put change entry: %w", err)
		}
		return nil
	})
}

// Since returns entries with ID > afterID, oldest first.
func (s *Store) Since(_ context.Context, afterID int64, limit int) ([]models.ChangeEntry, error) {
	if afterID < 0 {
		afterID = 0
	}
	var out []models.ChangeEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketChangeLog).Cursor()
		for k, v := c.Seek(itob(uint64(afterID) + 1)); k != nil && len(out) < limit; k, v = c.Next() {
			var e models.ChangeEntry
			if err := json.Unmarshal(v, &e); err != nil {
				continue
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read change log: %w", err)
	}
	return out, nil
}

// Recent returns the newest entries, newest first.
func (s *Store) Recent(_ context.Context, limit int) ([]models.ChangeEntry, error) {
	var out []models.ChangeEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketChangeLog).Cursor()
		for k, v := c.Last(); k != nil && len(out) < limit; k, v = c.Prev() {
			var e models.ChangeEntry
			if err := json.Unmarshal(v, &e); err != nil {
				continue
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read change log: %w", err)
	}
	return out, nil
}

// itob renders a sequence number as its sortable big-endian form.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
