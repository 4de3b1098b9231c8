// Package storage declares the persistence collaborators the catalog
// core writes through, plus their sentinel errors. Two ProductStore
// implementations exist, a flat JSON file and a SQLite table, and
// the core never learns which one it holds.
//
// Concurrency: no store takes locks around the collection. A mutation
// is expected to run read-mutate-write to completion before the next
// begins; concurrent writers racing on the file store lose updates
// (last writer wins). The SQLite store pushes per-row updates, so a
// single-field edit is atomic at the row level, but a batch is not
// atomic across rows. This mirrors the deployed behavior and is a
// documented limitation, not a guarantee.
package storage

import (
	"context"

	"github.com/iudanet/masterdata/internal/models"
)

// ProductStore persists the record collection.
//
// Record keys are backend-defined: the file store keys records by
// ID_produktu (and updates every record sharing a duplicated id),
// the SQLite store by its row primary key, which is unique.
type ProductStore interface {
	// Load returns the full collection in stored order.
	Load(ctx context.Context) ([]*models.Product, error)

	// Replace overwrites the whole collection. source tags records
	// that do not carry their own feed source.
	Replace(ctx context.Context, products []*models.Product, source string) error

	// UpdateField sets one field on the record with the given key,
	// applying the backend's storage coercion. Returns ErrNotFound
	// when no record matches. ID_produktu is not updatable through
	// any store; callers validate that before reaching here.
	UpdateField(ctx context.Context, key int64, field string, value models.Value) error

	// BatchUpdate sets one field on every record whose key is listed.
	// Zero matches is not an error.
	BatchUpdate(ctx context.Context, keys []int64, field string, value models.Value) (int, error)

	// Delete removes every record whose key is listed, returning the
	// number removed.
	Delete(ctx context.Context, keys []int64) (int, error)

	// Clear removes all records, returning the number removed.
	Clear(ctx context.Context) (int, error)

	// ProductIDs maps backend keys to ID_produktu values, in the same
	// order, 0 where unknown. The audit log always records the product
	// identity, never the backend key.
	ProductIDs(ctx context.Context, keys []int64) ([]int64, error)
}

// SnapshotStore is the undo collaborator: a bounded ring of full
// collection copies per actor, newest first, oldest evicted.
type SnapshotStore interface {
	SaveSnapshot(actor string, products []*models.Product, action string) (string, error)
	LoadSnapshot(actor, id string) ([]*models.Product, error)
	ListSnapshots(actor string) ([]models.SnapshotInfo, error)
	DeleteSnapshot(actor, id string) error
	ClearSnapshots(actor string) error
}

// ChangeLog is the append-only audit trail. Append failures must never
// fail the mutation that produced the entry.
type ChangeLog interface {
	Append(ctx context.Context, entry models.ChangeEntry) error

	// Since returns entries with ID > afterID, oldest first, for the
	// live-refresh polling of other browser windows.
	Since(ctx context.Context, afterID int64, limit int) ([]models.ChangeEntry, error)

	// Recent returns the newest entries, newest first.
	Recent(ctx context.Context, limit int) ([]models.ChangeEntry, error)
}

// WorkspaceStore keeps manual "save my work" copies of the collection,
// at most three per actor, oldest evicted.
type WorkspaceStore interface {
	SaveBase(ctx context.Context, actor string, products []*models.Product) (models.WorkspaceInfo, error)
	ListBases(ctx context.Context, actor string) ([]models.WorkspaceInfo, error)
	GetBase(ctx context.Context, actor, filename string) ([]*models.Product, error)
}

// BackupStore keeps system-wide collection backups, at most three,
// oldest evicted. Only the relational backend provides one.
type BackupStore interface {
	CreateBackup(ctx context.Context) (int64, error)
	RestoreLatest(ctx context.Context) error
}

// Counter tracks the modified-records dashboard counter.
type Counter interface {
	IncrementModified() (int64, error)
	ModifiedCount() (int64, error)
	ResetModified() error
}
