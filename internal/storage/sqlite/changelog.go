package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iudanet/masterdata/internal/models"
)

// Append adds one audit entry.
func (s *Store) Append(ctx context.Context, entry models.ChangeEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO change_log (created_at, user_id, field_name, new_value, id_produktu)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		createdAt.Unix(), entry.Actor, entry.Field, entry.NewValue, entry.ProductID)
	if err != nil {
		return fmt.Errorf("insert change entry: %w", err)
	}
	return nil
}

// Since returns entries with id > afterID, oldest first.
func (s *Store) Since(ctx context.Context, afterID int64, limit int) ([]models.ChangeEntry, error) {
	query := `
		SELECT id, created_at, user_id, field_name, new_value, id_produktu
		FROM change_log
		WHERE id > ?
		ORDER BY id ASC
		LIMIT ?
	`
	return s.queryChanges(ctx, query, afterID, limit)
}

// Recent returns the newest entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.ChangeEntry, error) {
	query := `
		SELECT id, created_at, user_id, field_name, new_value, id_produktu
		FROM change_log
		ORDER BY id DESC
		LIMIT ?
	`
	return s.queryChanges(ctx, query, limit)
}

func (s *Store) queryChanges(ctx context.Context, query string, args ...any) ([]models.ChangeEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query change log: %w", err)
	}
	defer rows.Close()

	var out []models.ChangeEntry
	for rows.Next() {
		var e models.ChangeEntry
		var createdAt int64
		var newValue sql.NullString
		if err := rows.Scan(&e.ID, &createdAt, &e.Actor, &e.Field, &newValue, &e.ProductID); err != nil {
			return nil, fmt.Errorf("scan change entry: %w", err)
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		e.NewValue = newValue.String
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return out, nil
}
