package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/masterdata/internal/models"
	"github.com/iudanet/masterdata/internal/storage"
)

// --- fakes ---

// fakeStore behaves like the file backend: keys are ID_produktu,
// strings are trimmed, no numeric coercion.
type fakeStore struct {
	products   []*models.Product
	loadErr    error
	replaceErr error
}

func (f *fakeStore) Load(context.Context) ([]*models.Product, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.products, nil
}

func (f *fakeStore) Replace(_ context.Context, products []*models.Product, _ string) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.products = products
	return nil
}

func (f *fakeStore) UpdateField(_ context.Context, key int64, field string, value models.Value) error {
	for _, p := range f.products {
		if pid, ok := p.Attr(models.AttrIDProduktu).Float(); ok && int64(pid) == key {
			p.Set(field, value)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) BatchUpdate(_ context.Context, keys []int64, field string, value models.Value) (int, error) {
	set := map[int64]struct{}{}
	for _, k := range keys {
		set[k] = struct{}{}
	}
	n := 0
	for _, p := range f.products {
		if pid, ok := p.Attr(models.AttrIDProduktu).Float(); ok {
			if _, hit := set[int64(pid)]; hit {
				p.Set(field, value)
				n++
			}
		}
	}
	return n, nil
}

func (f *fakeStore) Delete(_ context.Context, keys []int64) (int, error) {
	set := map[int64]struct{}{}
	for _, k := range keys {
		set[k] = struct{}{}
	}
	var kept []*models.Product
	n := 0
	for _, p := range f.products {
		pid, _ := p.Attr(models.AttrIDProduktu).Float()
		if _, hit := set[int64(pid)]; hit {
			n++
			continue
		}
		kept = append(kept, p)
	}
	f.products = kept
	return n, nil
}

func (f *fakeStore) Clear(context.Context) (int, error) {
	n := len(f.products)
	f.products = nil
	return n, nil
}

func (f *fakeStore) ProductIDs(_ context.Context, keys []int64) ([]int64, error) {
	out := make([]int64, len(keys))
	for i, k := range keys {
		for _, p := range f.products {
			if pid, ok := p.Attr(models.AttrIDProduktu).Float(); ok && int64(pid) == k {
				out[i] = k
				break
			}
		}
	}
	return out, nil
}

type fakeHistory struct {
	snapshots []fakeSnapshot
	saveErr   error
}

type fakeSnapshot struct {
	id       string
	action   string
	products []*models.Product
}

func (f *fakeHistory) SaveSnapshot(_ string, products []*models.Product, action string) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	id := fmt.Sprintf("snap-%d", len(f.snapshots)+1)
	copied := make([]*models.Product, len(products))
	for i, p := range products {
		copied[i] = p.Clone()
	}
	f.snapshots = append(f.snapshots, fakeSnapshot{id: id, action: action, products: copied})
	return id, nil
}

func (f *fakeHistory) LoadSnapshot(_, id string) ([]*models.Product, error) {
	for _, s := range f.snapshots {
		if s.id == id {
			return s.products, nil
		}
	}
	return nil, storage.ErrSnapshotNotFound
}

func (f *fakeHistory) ListSnapshots(string) ([]models.SnapshotInfo, error) {
	out := make([]models.SnapshotInfo, 0, len(f.snapshots))
	for i := len(f.snapshots) - 1; i >= 0; i-- { // newest first
		out = append(out, models.SnapshotInfo{ID: f.snapshots[i].id, Action: f.snapshots[i].action})
	}
	return out, nil
}

func (f *fakeHistory) DeleteSnapshot(_, id string) error {
	for i, s := range f.snapshots {
		if s.id == id {
			f.snapshots = append(f.snapshots[:i], f.snapshots[i+1:]...)
			return nil
		}
	}
	return storage.ErrSnapshotNotFound
}

func (f *fakeHistory) ClearSnapshots(string) error {
	f.snapshots = nil
	return nil
}

type fakeAudit struct {
	entries   []models.ChangeEntry
	appendErr error
}

func (f *fakeAudit) Append(_ context.Context, e models.ChangeEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	e.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeAudit) Since(_ context.Context, afterID int64, limit int) ([]models.ChangeEntry, error) {
	var out []models.ChangeEntry
	for _, e := range f.entries {
		if e.ID > afterID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAudit) Recent(_ context.Context, limit int) ([]models.ChangeEntry, error) {
	var out []models.ChangeEntry
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}

type fakeWorkspaces struct {
	bases map[string][]*models.Product
}

func (f *fakeWorkspaces) SaveBase(_ context.Context, actor string, products []*models.Product) (models.WorkspaceInfo, error) {
	if f.bases == nil {
		f.bases = map[string][]*models.Product{}
	}
	name := fmt.Sprintf("baza_%d.json", len(f.bases)+1)
	f.bases[actor+"/"+name] = products
	return models.WorkspaceInfo{Filename: name}, nil
}

func (f *fakeWorkspaces) ListBases(context.Context, string) ([]models.WorkspaceInfo, error) {
	return nil, nil
}

func (f *fakeWorkspaces) GetBase(_ context.Context, actor, filename string) ([]*models.Product, error) {
	base, ok := f.bases[actor+"/"+filename]
	if !ok {
		return nil, storage.ErrWorkspaceNotFound
	}
	return base, nil
}

type fakeCounter struct{ n int64 }

func (f *fakeCounter) IncrementModified() (int64, error) { f.n++; return f.n, nil }
func (f *fakeCounter) ModifiedCount() (int64, error)     { return f.n, nil }
func (f *fakeCounter) ResetModified() error              { f.n = 0; return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type serviceFixture struct {
	svc     *Service
	store   *fakeStore
	history *fakeHistory
	audit   *fakeAudit
	counter *fakeCounter
}

func newFixture(products ...*models.Product) *serviceFixture {
	store := &fakeStore{products: products}
	history := &fakeHistory{}
	audit := &fakeAudit{}
	counter := &fakeCounter{}
	svc := NewService(store, history, audit, &fakeWorkspaces{}, nil, counter, DefaultPageLimits, testLogger())
	return &serviceFixture{svc: svc, store: store, history: history, audit: audit, counter: counter}
}

func record(id float64, name string) *models.Product {
	return prod(map[string]models.Value{
		models.AttrIDProduktu: models.Number(id),
		models.AttrNazwa:      models.String(name),
	})
}

// --- tests ---

func TestService_UpdateField_RejectsIdentityField(t *testing.T) {
	f := newFixture(record(1, "a"))

	_, err := f.svc.UpdateField(context.Background(), 1, models.AttrIDProduktu, models.Number(9), "marzena")
	assert.ErrorIs(t, err, ErrFieldNotEditable)
	assert.Empty(t, f.history.snapshots, "rejected edits must not snapshot")
}

func TestService_UpdateField_Validation(t *testing.T) {
	f := newFixture(record(1, "a"))
	ctx := context.Background()

	_, err := f.svc.UpdateField(ctx, 1, "", models.String("x"), "")
	assert.ErrorIs(t, err, ErrFieldRequired)

	_, err = f.svc.UpdateField(ctx, 1, "Kolor", models.String("x"), "")
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = f.svc.UpdateField(ctx, 99, models.AttrNazwa, models.String("x"), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_UpdateField_SnapshotAuditCounter(t *testing.T) {
	f := newFixture(record(1, "old"))

	got, err := f.svc.UpdateField(context.Background(), 1, models.AttrNazwa, models.String("  new  "), "marzena")
	require.NoError(t, err)

	assert.Equal(t, "new", got.Text(), "echoed value is trimmed")
	require.Len(t, f.history.snapshots, 1)
	assert.Equal(t, "edit", f.history.snapshots[0].action)
	assert.Equal(t, "old", f.history.snapshots[0].products[0].Attr(models.AttrNazwa).Text(),
		"snapshot holds the pre-mutation state")

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, "marzena", f.audit.entries[0].Actor)
	assert.Equal(t, int64(1), f.audit.entries[0].ProductID)
	assert.Equal(t, models.AttrNazwa, f.audit.entries[0].Field)
	assert.Equal(t, int64(1), f.counter.n)
}

func TestService_UpdateField_NoActorNoSideEffects(t *testing.T) {
	f := newFixture(record(1, "a"))

	_, err := f.svc.UpdateField(context.Background(), 1, models.AttrNazwa, models.String("b"), "")
	require.NoError(t, err)
	assert.Empty(t, f.history.snapshots)
	assert.Empty(t, f.audit.entries)
}

func TestService_UpdateField_AuditFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture(record(1, "a"))
	f.audit.appendErr = fmt.Errorf("journal down")

	_, err := f.svc.UpdateField(context.Background(), 1, models.AttrNazwa, models.String("b"), "marzena")
	require.NoError(t, err)
	assert.Equal(t, "b", f.store.products[0].Attr(models.AttrNazwa).Text())
}

func TestService_UpdateField_SnapshotFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture(record(1, "a"))
	f.history.saveErr = fmt.Errorf("disk full")

	_, err := f.svc.UpdateField(context.Background(), 1, models.AttrNazwa, models.String("b"), "marzena")
	require.NoError(t, err)
}

func TestService_BatchUpdate_PartialMatches(t *testing.T) {
	f := newFixture(record(1, "a"), record(2, "b"), record(3, "c"))

	updated, err := f.svc.BatchUpdate(context.Background(), []int64{1, 3, 77, 88}, "Tryb", models.String("gotowe"), "jan")
	require.NoError(t, err)
	assert.Equal(t, 2, updated, "unmatched keys are skipped, not errors")
	assert.Len(t, f.audit.entries, 2, "one change event per affected record")
}

func TestService_BatchUpdate_EmptyKeys(t *testing.T) {
	f := newFixture(record(1, "a"))
	updated, err := f.svc.BatchUpdate(context.Background(), nil, "Tryb", models.String("x"), "jan")
	require.NoError(t, err)
	assert.Zero(t, updated)
	assert.Empty(t, f.history.snapshots, "no-op batches do not snapshot")
}

func TestService_BatchDelete(t *testing.T) {
	f := newFixture(record(1, "a"), record(2, "b"), record(3, "c"))

	deleted, remaining, err := f.svc.BatchDelete(context.Background(), []int64{2, 99}, "jan")
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, 2, remaining)
	require.Len(t, f.history.snapshots, 1)
	assert.Equal(t, "delete", f.history.snapshots[0].action)
}

func TestService_Clear_RequiresConfirmation(t *testing.T) {
	f := newFixture(record(1, "a"))

	_, err := f.svc.Clear(context.Background(), false)
	assert.ErrorIs(t, err, ErrConfirmationRequired)
	assert.Len(t, f.store.products, 1)

	n, err := f.svc.Clear(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, f.store.products)
}

func TestService_Import_MergesWithExisting(t *testing.T) {
	f := newFixture(prod(map[string]models.Value{
		models.AttrIDProduktu: models.Number(1),
		models.AttrSKU:        models.String("A"),
		models.AttrNazwa:      models.String("Old"),
	}))

	incoming := []*models.Product{prod(map[string]models.Value{
		models.AttrIDProduktu: models.Number(1),
		models.AttrNazwa:      models.String(""),
	})}

	res, err := f.svc.Import(context.Background(), incoming, "xml", "jan")
	require.NoError(t, err)
	assert.True(t, res.Merged)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, "Old", f.store.products[0].Attr(models.AttrNazwa).Text())
	assert.Equal(t, "A", f.store.products[0].Attr(models.AttrSKU).Text())
}

func TestService_Import_EmptyStoreTakesUploadDirectly(t *testing.T) {
	f := newFixture()
	incoming := []*models.Product{record(5, "fresh")}

	res, err := f.svc.Import(context.Background(), incoming, "json", "")
	require.NoError(t, err)
	assert.False(t, res.Merged)
	assert.Equal(t, 1, res.Count)
}

func TestService_Undo(t *testing.T) {
	f := newFixture(record(1, "original"))
	ctx := context.Background()

	_, err := f.svc.UpdateField(ctx, 1, models.AttrNazwa, models.String("changed"), "marzena")
	require.NoError(t, err)
	require.Equal(t, "changed", f.store.products[0].Attr(models.AttrNazwa).Text())

	id, err := f.svc.Undo(ctx, "marzena")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, "original", f.store.products[0].Attr(models.AttrNazwa).Text())
	assert.Empty(t, f.history.snapshots, "consumed snapshot leaves the ring, no new one is taken")

	_, err = f.svc.Undo(ctx, "marzena")
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestService_SaveAndLoadWork(t *testing.T) {
	f := newFixture(record(1, "a"), record(2, "b"))
	ctx := context.Background()

	info, err := f.svc.SaveWork(ctx, "jan")
	require.NoError(t, err)

	_, err = f.svc.Clear(ctx, true)
	require.NoError(t, err)

	n, err := f.svc.LoadWork(ctx, "jan", info.Filename)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, f.store.products, 2)

	_, err = f.svc.LoadWork(ctx, "jan", "nope.json")
	assert.ErrorIs(t, err, storage.ErrWorkspaceNotFound)
}

func TestService_BackupsUnsupportedWithoutStore(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateBackup(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotSupported)
	assert.ErrorIs(t, f.svc.RestoreBackup(context.Background()), storage.ErrNotSupported)
}

func TestService_List(t *testing.T) {
	f := newFixture(record(1, "Pergola 3x4"), record(2, "Donica"))

	res, err := f.svc.List(context.Background(), Query{Search: "3 x 4"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.True(t, strings.Contains(res.Items[0].Attr(models.AttrNazwa).Text(), "Pergola"))
}
