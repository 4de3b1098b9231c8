package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iudanet/masterdata/internal/models"
	"github.com/iudanet/masterdata/internal/storage"
)

// Service orchestrates mutations over the injected collaborators:
// validate eagerly, snapshot before the write when an actor is known,
// persist, then append audit entries best-effort. Reads go through the
// same service so handlers never touch a store directly.
type Service struct {
	store      storage.ProductStore
	history    storage.SnapshotStore
	audit      storage.ChangeLog
	workspaces storage.WorkspaceStore
	backups    storage.BackupStore // nil for the file backend
	counter    storage.Counter
	logger     *slog.Logger
	limits     PageLimits
}

// NewService wires the catalog core. backups may be nil; every other
// collaborator is required.
func NewService(
	store storage.ProductStore,
	history storage.SnapshotStore,
	audit storage.ChangeLog,
	workspaces storage.WorkspaceStore,
	backups storage.BackupStore,
	counter storage.Counter,
	limits PageLimits,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:      store,
		history:    history,
		audit:      audit,
		workspaces: workspaces,
		backups:    backups,
		counter:    counter,
		limits:     limits,
		logger:     logger,
	}
}

// --- reads ---

// List runs the query pipeline over the stored collection.
func (s *Service) List(ctx context.Context, q Query) (Result, error) {
	products, err := s.store.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load products: %w", err)
	}
	return Run(products, q, s.limits), nil
}

// ColumnValues lists the distinct non-empty values of one column.
func (s *Service) ColumnValues(ctx context.Context, column string) ([]string, error) {
	products, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return ColumnValues(products, column), nil
}

// ProducerNames lists the distinct canonicalized producers.
func (s *Service) ProducerNames(ctx context.Context) ([]string, error) {
	products, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return Producers(products), nil
}

// DuplicateReport lists EAN or SKU values shared by several records.
func (s *Service) DuplicateReport(ctx context.Context, field string) ([]Duplicate, error) {
	products, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return Duplicates(products, field), nil
}

// Summary returns the dashboard counters.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	products, err := s.store.Load(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load products: %w", err)
	}
	return Summarize(products), nil
}

// Export returns the collection shaped like the master JSON file.
func (s *Service) Export(ctx context.Context) ([]*models.Product, error) {
	products, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return models.ExportCollection(products), nil
}

// --- mutations ---

func validateField(field string) error {
	if field == "" {
		return ErrFieldRequired
	}
	if field == models.AttrIDProduktu {
		return ErrFieldNotEditable
	}
	if !models.IsAttribute(field) {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// responseValue is what mutation endpoints echo back: trimmed text for
// strings, everything else untouched. Backend coercion happens inside
// the store and may differ (the relational backend stores numbers).
func responseValue(v models.Value) models.Value {
	if v.IsString() {
		return models.String(strings.TrimSpace(v.Text()))
	}
	return v
}

// UpdateField sets one field on the record with the given key and
// returns the echoed value. ID_produktu is never editable.
func (s *Service) UpdateField(ctx context.Context, key int64, field string, value models.Value, actor string) (models.Value, error) {
	if err := validateField(field); err != nil {
		return models.Null(), err
	}

	s.snapshotBefore(ctx, actor, "edit")

	if err := s.store.UpdateField(ctx, key, field, value); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Null(), ErrNotFound
		}
		return models.Null(), fmt.Errorf("update field: %w", err)
	}

	s.logChange(ctx, actor, []int64{key}, field, value)
	if _, err := s.counter.IncrementModified(); err != nil {
		s.logger.Warn("failed to bump modified counter", "error", err)
	}
	return responseValue(value), nil
}

// BatchUpdate sets one field on every record whose key is listed and
// returns how many records changed. Unmatched keys are skipped, not
// errors.
func (s *Service) BatchUpdate(ctx context.Context, keys []int64, field string, value models.Value, actor string) (int, error) {
	if err := validateField(field); err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	s.snapshotBefore(ctx, actor, "batch_edit")

	updated, err := s.store.BatchUpdate(ctx, keys, field, value)
	if err != nil {
		return 0, fmt.Errorf("batch update: %w", err)
	}
	if updated > 0 {
		s.logChange(ctx, actor, keys, field, value)
	}
	return updated, nil
}

// BatchDelete removes every record whose key is listed. Returns the
// deleted and remaining counts.
func (s *Service) BatchDelete(ctx context.Context, keys []int64, actor string) (deleted, remaining int, err error) {
	if len(keys) == 0 {
		products, loadErr := s.store.Load(ctx)
		if loadErr != nil {
			return 0, 0, fmt.Errorf("load products: %w", loadErr)
		}
		return 0, len(products), nil
	}

	s.snapshotBefore(ctx, actor, "delete")

	deleted, err = s.store.Delete(ctx, keys)
	if err != nil {
		return 0, 0, fmt.Errorf("delete products: %w", err)
	}
	products, err := s.store.Load(ctx)
	if err != nil {
		return deleted, 0, fmt.Errorf("load products: %w", err)
	}
	return deleted, len(products), nil
}

// Clear wipes the whole collection. The confirm flag is mandatory;
// this is the one operation with no way back except a backup.
func (s *Service) Clear(ctx context.Context, confirm bool) (int, error) {
	if !confirm {
		return 0, ErrConfirmationRequired
	}
	n, err := s.store.Clear(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear products: %w", err)
	}
	return n, nil
}

// ImportResult describes one processed upload.
type ImportResult struct {
	Count  int
	Merged bool
}

// Import reconciles an uploaded collection with the stored one. When
// records already exist the two are merged (upload wins on conflict,
// existing data fills gaps, unmatched existing records survive);
// an empty store takes the upload as-is.
func (s *Service) Import(ctx context.Context, incoming []*models.Product, source, actor string) (ImportResult, error) {
	existing, err := s.store.Load(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("load products: %w", err)
	}

	s.snapshotBefore(ctx, actor, "import")

	merged := incoming
	if len(existing) > 0 {
		merged = Merge(existing, incoming)
	}
	if err := s.store.Replace(ctx, merged, source); err != nil {
		return ImportResult{}, fmt.Errorf("replace products: %w", err)
	}
	return ImportResult{Count: len(merged), Merged: len(existing) > 0}, nil
}

// --- undo history ---

// History lists the actor's undo snapshots, newest first.
func (s *Service) History(actor string) ([]models.SnapshotInfo, error) {
	return s.history.ListSnapshots(actor)
}

// Undo restores the actor's newest snapshot and consumes it. The
// restore itself takes no snapshot; undoing an undo is done by the
// next entry in the ring, not by a new one.
func (s *Service) Undo(ctx context.Context, actor string) (string, error) {
	snapshots, err := s.history.ListSnapshots(actor)
	if err != nil {
		return "", fmt.Errorf("list snapshots: %w", err)
	}
	if len(snapshots) == 0 {
		return "", ErrNoHistory
	}
	id := snapshots[0].ID

	products, err := s.history.LoadSnapshot(actor, id)
	if err != nil {
		return "", fmt.Errorf("load snapshot: %w", err)
	}
	if err := s.store.Replace(ctx, products, "json"); err != nil {
		return "", fmt.Errorf("restore snapshot: %w", err)
	}
	if err := s.history.DeleteSnapshot(actor, id); err != nil {
		s.logger.Warn("failed to drop consumed snapshot", "actor", actor, "snapshot", id, "error", err)
	}
	return id, nil
}

// ClearHistory drops the actor's undo ring.
func (s *Service) ClearHistory(actor string) error {
	return s.history.ClearSnapshots(actor)
}

// --- saved bases ---

// SaveWork stores a manual copy of the collection for the actor.
func (s *Service) SaveWork(ctx context.Context, actor string) (models.WorkspaceInfo, error) {
	products, err := s.store.Load(ctx)
	if err != nil {
		return models.WorkspaceInfo{}, fmt.Errorf("load products: %w", err)
	}
	return s.workspaces.SaveBase(ctx, actor, models.ExportCollection(products))
}

// ListWork lists the actor's saved bases, newest first.
func (s *Service) ListWork(ctx context.Context, actor string) ([]models.WorkspaceInfo, error) {
	return s.workspaces.ListBases(ctx, actor)
}

// LoadWork replaces the collection with a previously saved base.
func (s *Service) LoadWork(ctx context.Context, actor, filename string) (int, error) {
	products, err := s.workspaces.GetBase(ctx, actor, filename)
	if err != nil {
		return 0, err
	}
	if err := s.store.Replace(ctx, products, "json"); err != nil {
		return 0, fmt.Errorf("replace products: %w", err)
	}
	return len(products), nil
}

// --- system backups ---

// CreateBackup stores a system-wide backup of the collection.
func (s *Service) CreateBackup(ctx context.Context) (int64, error) {
	if s.backups == nil {
		return 0, storage.ErrNotSupported
	}
	return s.backups.CreateBackup(ctx)
}

// RestoreBackup restores the newest system backup.
func (s *Service) RestoreBackup(ctx context.Context) error {
	if s.backups == nil {
		return storage.ErrNotSupported
	}
	return s.backups.RestoreLatest(ctx)
}

// --- audit trail ---

// ChangesSince returns audit entries after the given id, oldest first.
func (s *Service) ChangesSince(ctx context.Context, afterID int64, limit int) ([]models.ChangeEntry, error) {
	return s.audit.Since(ctx, afterID, limit)
}

// ChangeLogGrouped renders the audit trail grouped by day for the
// journal panel.
func (s *Service) ChangeLogGrouped(ctx context.Context, limit int) ([]models.ChangeGroup, error) {
	entries, err := s.audit.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load change log: %w", err)
	}
	return GroupChanges(entries, nowWarsaw()), nil
}

// ModifiedCount reads the dashboard counter.
func (s *Service) ModifiedCount() (int64, error) { return s.counter.ModifiedCount() }

// ResetModified zeroes the dashboard counter.
func (s *Service) ResetModified() error { return s.counter.ResetModified() }

// --- best-effort side effects ---

// snapshotBefore copies the current collection into the actor's undo
// ring. Failures are logged and swallowed; an undo gap must not block
// the edit itself.
func (s *Service) snapshotBefore(ctx context.Context, actor, action string) {
	if actor == "" {
		return
	}
	products, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("snapshot skipped, load failed", "actor", actor, "action", action, "error", err)
		return
	}
	if _, err := s.history.SaveSnapshot(actor, products, action); err != nil {
		s.logger.Warn("snapshot failed", "actor", actor, "action", action, "error", err)
	}
}

// logChange appends one audit entry per affected record, best-effort.
// Keys are resolved to product identities first; the journal speaks in
// ID_produktu, never in backend row keys.
func (s *Service) logChange(ctx context.Context, actor string, keys []int64, field string, value models.Value) {
	if actor == "" {
		return
	}
	pids, err := s.store.ProductIDs(ctx, keys)
	if err != nil {
		s.logger.Warn("change log skipped, id lookup failed", "error", err)
		return
	}
	newValue := responseValue(value).Norm()
	for _, pid := range pids {
		if pid == 0 {
			continue
		}
		entry := models.ChangeEntry{Actor: actor, ProductID: pid, Field: field, NewValue: newValue}
		if err := s.audit.Append(ctx, entry); err != nil {
			s.logger.Warn("change log append failed", "actor", actor, "product", pid, "error", err)
		}
	}
}
