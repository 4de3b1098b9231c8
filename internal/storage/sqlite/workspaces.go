package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/masterdata/internal/models"
	"github.com/iudanet/masterdata/internal/storage"
)

// Each actor keeps at most this many saved bases.
const maxBasesPerActor = 3

// SaveBase stores a manual copy of the collection for the actor and
// evicts saves beyond the per-actor cap.
func (s *Store) SaveBase(ctx context.Context, actor string, products []*models.Product) (models.WorkspaceInfo, error) {
	if products == nil {
		products = []*models.Product{}
	}
	payload, err := json.Marshal(products)
	if err != nil {
		return models.WorkspaceInfo{}, fmt.Errorf("encode base: %w", err)
	}

	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO user_saved_bases (user_id, payload, size, created_at) VALUES (?, ?, ?, ?)`,
		actor, string(payload), len(payload), now.Unix())
	if err != nil {
		return models.WorkspaceInfo{}, fmt.Errorf("insert base: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.WorkspaceInfo{}, fmt.Errorf("base id: %w", err)
	}

	// Drop everything older than the newest N for this actor.
	_, err = s.db.ExecContext(ctx, `
		DELETE FROM user_saved_bases
		WHERE user_id = ? AND id NOT IN (
			SELECT id FROM user_saved_bases
			WHERE user_id = ?
			ORDER BY id DESC
			LIMIT ?
		)
	`, actor, actor, maxBasesPerActor)
	if err != nil {
		return models.WorkspaceInfo{}, fmt.Errorf("evict old bases: %w", err)
	}

	return models.WorkspaceInfo{
		Filename:  baseFilename(id),
		Timestamp: now.Format("2006-01-02 15:04:05"),
		Size:      int64(len(payload)),
		ID:        id,
	}, nil
}

// ListBases lists the actor's saved bases, newest first.
func (s *Store) ListBases(ctx context.Context, actor string) ([]models.WorkspaceInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, size, created_at
		FROM user_saved_bases
		WHERE user_id = ?
		ORDER BY id DESC
	`, actor)
	if err != nil {
		return nil, fmt.Errorf("query bases: %w", err)
	}
	defer rows.Close()

	var out []models.WorkspaceInfo
	for rows.Next() {
		var id, size, createdAt int64
		if err := rows.Scan(&id, &size, &createdAt); err != nil {
			return nil, fmt.Errorf("scan base: %w", err)
		}
		out = append(out, models.WorkspaceInfo{
			Filename:  baseFilename(id),
			Timestamp: time.Unix(createdAt, 0).Format("2006-01-02 15:04:05"),
			Size:      size,
			ID:        id,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return out, nil
}

// GetBase reads one saved base back by its filename.
func (s *Store) GetBase(ctx context.Context, actor, filename string) ([]*models.Product, error) {
	id, ok := baseID(filename)
	if !ok {
		return nil, storage.ErrWorkspaceNotFound
	}

	var payload string
	err := s.db.GetContext(ctx, &payload,
		`SELECT payload FROM user_saved_bases WHERE id = ? AND user_id = ?`, id, actor)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read base: %w", err)
	}

	var products []*models.Product
	if err := json.Unmarshal([]byte(payload), &products); err != nil {
		return nil, fmt.Errorf("parse base: %w", err)
	}
	return products, nil
}

func baseFilename(id int64) string {
	return fmt.Sprintf("baza_%d.json", id)
}

func baseID(filename string) (int64, bool) {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(filename, "baza_"), ".json")
	if trimmed == filename || len(trimmed)+len("baza_.json") != len(filename) {
		return 0, false
	}
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
