package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/masterdata/internal/models"
	"github.com/iudanet/masterdata/internal/storage"
)

// The system keeps at most this many whole-collection backups.
const maxBackups = 3

// CreateBackup freezes the current collection into the backup ring and
// returns the backup id.
func (s *Store) CreateBackup(ctx context.Context) (int64, error) {
	products, err := s.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load for backup: %w", err)
	}

	payload, err := json.Marshal(models.ExportCollection(products))
	if err != nil {
		return 0, fmt.Errorf("encode backup: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO base_backups (payload, created_at) VALUES (?, ?)`,
		string(payload), time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("insert backup: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("backup id: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM base_backups
		WHERE id NOT IN (SELECT id FROM base_backups ORDER BY id DESC LIMIT ?)
	`, maxBackups)
	if err != nil {
		return 0, fmt.Errorf("evict old backups: %w", err)
	}
	return id, nil
}

// RestoreLatest replaces the collection with the newest backup.
func (s *Store) RestoreLatest(ctx context.Context) error {
	var payload string
	err := s.db.GetContext(ctx, &payload,
		`SELECT payload FROM base_backups ORDER BY id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNoBackup
	}
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}

	var products []*models.Product
	if err := json.Unmarshal([]byte(payload), &products); err != nil {
		return fmt.Errorf("parse backup: %w", err)
	}
	return s.Replace(ctx, products, "json")
}
