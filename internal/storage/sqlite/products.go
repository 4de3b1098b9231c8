package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iudanet/masterdata/internal/models"
	"github.com/iudanet/masterdata/internal/storage"
)

// selectColumns and insertColumns are built once from the fixed schema;
// no user input ever reaches an identifier position.
var (
	selectColumns = `id, source, "` + strings.Join(models.AttributeNames, `", "`) + `"`
	insertColumns = `source, "` + strings.Join(models.AttributeNames, `", "`) + `"`
	insertMarks   = strings.TrimSuffix(strings.Repeat("?, ", len(models.AttributeNames)+1), ", ")
)

// Load returns the full collection in row order.
func (s *Store) Load(ctx context.Context) ([]*models.Product, error) {
	query := `SELECT ` + selectColumns + ` FROM products ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return products, nil
}

// Replace swaps the whole table content for the given collection inside
// one transaction. Rows get fresh primary keys.
func (s *Store) Replace(ctx context.Context, products []*models.Product, source string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}

	query := `INSERT INTO products (` + insertColumns + `) VALUES (` + insertMarks + `)`
	for _, p := range products {
		args := make([]any, 0, len(models.AttributeNames)+1)
		src := p.Source
		if src == "" {
			src = source
		}
		args = append(args, src)
		for _, name := range models.AttributeNames {
			args = append(args, bindValue(models.CoerceForStorage(name, p.Attr(name))))
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

// UpdateField sets one column on one row. Keys are row primary keys.
func (s *Store) UpdateField(ctx context.Context, key int64, field string, value models.Value) error {
	if !models.IsAttribute(field) {
		return fmt.Errorf("unknown column %q", field)
	}

	query := `UPDATE products SET "` + field + `" = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, query, bindValue(models.CoerceForStorage(field, value)), key)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// BatchUpdate sets one column on every listed row.
func (s *Store) BatchUpdate(ctx context.Context, keys []int64, field string, value models.Value) (int, error) {
	if !models.IsAttribute(field) {
		return 0, fmt.Errorf("unknown column %q", field)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(
		`UPDATE products SET "`+field+`" = ? WHERE id IN (?)`,
		bindValue(models.CoerceForStorage(field, value)), keys,
	)
	if err != nil {
		return 0, fmt.Errorf("build batch update: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("batch update: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

// Delete removes every listed row.
func (s *Store) Delete(ctx context.Context, keys []int64) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`DELETE FROM products WHERE id IN (?)`, keys)
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete products: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

// Clear wipes the table, returning the removed row count.
func (s *Store) Clear(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM products`); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return 0, fmt.Errorf("clear products: %w", err)
	}
	return count, nil
}

// ProductIDs maps row keys to their ID_produktu values, in order, 0
// where the row is missing or carries no product id.
func (s *Store) ProductIDs(ctx context.Context, keys []int64) ([]int64, error) {
	out := make([]int64, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT id, ID_produktu FROM products WHERE id IN (?)`, keys)
	if err != nil {
		return nil, fmt.Errorf("build id lookup: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup product ids: %w", err)
	}
	defer rows.Close()

	found := make(map[int64]int64, len(keys))
	for rows.Next() {
		var rowID int64
		var raw any
		if err := rows.Scan(&rowID, &raw); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		if f, ok := valueFromSQL(raw).Float(); ok {
			found[rowID] = int64(f)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	for i, k := range keys {
		out[i] = found[k]
	}
	return out, nil
}

// scanner covers both *sql.Rows and *sql.Row.
type scanner interface {
	Scan(dest ...any) error
}

// scanProduct reads one row in selectColumns order. Column values are
// taken as whatever SQLite holds; legacy text in a numeric column loads
// as text instead of failing the whole collection.
func scanProduct(row scanner) (*models.Product, error) {
	dest := make([]any, len(models.AttributeNames)+2)
	var rowID int64
	var source string
	dest[0], dest[1] = &rowID, &source
	raws := make([]any, len(models.AttributeNames))
	for i := range raws {
		dest[i+2] = &raws[i]
	}

	if err := row.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}

	p := models.NewProduct()
	p.RowID = rowID
	p.Source = source
	for i, name := range models.AttributeNames {
		p.Set(name, valueFromSQL(raws[i]))
	}
	return p, nil
}

// bindValue renders a Value as a driver argument.
func bindValue(v models.Value) any {
	if v.IsNull() {
		return nil
	}
	if f, ok := v.Number(); ok {
		return f
	}
	return v.Text()
}

// valueFromSQL converts a driver scalar back to a Value.
func valueFromSQL(raw any) models.Value {
	switch x := raw.(type) {
	case nil:
		return models.Null()
	case float64:
		return models.Number(x)
	case int64:
		return models.Number(float64(x))
	case string:
		return models.String(x)
	case []byte:
		return models.String(string(x))
	default:
		return models.String(fmt.Sprint(x))
	}
}
