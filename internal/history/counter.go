package history

import (
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"
)

var keyModifiedCount = []byte("modified_count")

// IncrementModified bumps the dashboard counter and returns the new
// value.
func (s *Store) IncrementModified() (int64, error) {
	var n uint64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketStats)
		n = btoi(b.Get(keyModifiedCount)) + 1
		if err := b.Put(keyModifiedCount, itob(n)); err != nil {
			return fmt.Errorf("put counter: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

// ModifiedCount reads the counter.
func (s *Store) ModifiedCount() (int64, error) {
	var n uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = btoi(tx.Bucket(bucketStats).Get(keyModifiedCount))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

// ResetModified zeroes the counter.
func (s *Store) ResetModified() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketStats).Put(keyModifiedCount, itob(0)); err != nil {
			return fmt.Errorf("reset counter: %w", err)
		}
		return nil
	})
}

func btoi(raw []byte) uint64 {
	if len(raw) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(raw)
}
