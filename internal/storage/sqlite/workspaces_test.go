package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/masterdata/internal/models"
	"github.com/iudanet/masterdata/internal/storage"
)

func TestWorkspaces_SaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	info, err := s.SaveBase(ctx, "marzena", []*models.Product{product(1, "Pergola")})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("baza_%d.json", info.ID), info.Filename)
	assert.Positive(t, info.Size)

	got, err := s.GetBase(ctx, "marzena", info.Filename)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Pergola", got[0].Attr(models.AttrNazwa).Text())
}

func TestWorkspaces_PerActorIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	info, err := s.SaveBase(ctx, "marzena", nil)
	require.NoError(t, err)

	_, err = s.GetBase(ctx, "jan", info.Filename)
	assert.ErrorIs(t, err, storage.ErrWorkspaceNotFound)
}

func TestWorkspaces_RingOfThree(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var infos []models.WorkspaceInfo
	for i := 0; i < 5; i++ {
		info, err := s.SaveBase(ctx, "jan", []*models.Product{product(float64(i), fmt.Sprintf("v%d", i))})
		require.NoError(t, err)
		infos = append(infos, info)
	}

	bases, err := s.ListBases(ctx, "jan")
	require.NoError(t, err)
	require.Len(t, bases, 3)
	assert.Equal(t, infos[4].Filename, bases[0].Filename, "newest first")

	_, err = s.GetBase(ctx, "jan", infos[0].Filename)
	assert.ErrorIs(t, err, storage.ErrWorkspaceNotFound, "oldest saves are evicted")
}

func TestWorkspaces_RejectsForeignFilenames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"", "baza_x.json", "baza_-1.json", "notes.txt", "../baza_1.json"} {
		_, err := s.GetBase(ctx, "jan", name)
		assert.ErrorIs(t, err, storage.ErrWorkspaceNotFound, name)
	}
}

func TestBackups_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed(t, s, product(1, "Pergola"))

	id, err := s.CreateBackup(ctx)
	require.NoError(t, err)
	assert.Positive(t, id)

	_, err = s.Clear(ctx)
	require.NoError(t, err)

	require.NoError(t, s.RestoreLatest(ctx))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Pergola", got[0].Attr(models.AttrNazwa).Text())
}

func TestBackups_RingOfThree(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seed(t, s, product(float64(i), fmt.Sprintf("v%d", i)))
		_, err := s.CreateBackup(ctx)
		require.NoError(t, err)
	}

	var count int
	require.NoError(t, s.DB().GetContext(ctx, &count, `SELECT COUNT(*) FROM base_backups`))
	assert.Equal(t, 3, count)

	// The newest backup wins the restore.
	_, err := s.Clear(ctx)
	require.NoError(t, err)
	require.NoError(t, s.RestoreLatest(ctx))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "v4", got[0].Attr(models.AttrNazwa).Text())
}

func TestBackups_EmptyRing(t *testing.T) {
	s := newTestStore(t)
	assert.ErrorIs(t, s.RestoreLatest(context.Background()), storage.ErrNoBackup)
}
