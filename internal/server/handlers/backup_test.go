package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/masterdata/internal/storage"
)

type fakeBackupService struct {
	createID   int64
	createErr  error
	restoreErr error
}

func (f *fakeBackupService) CreateBackup(_ context.Context) (int64, error) {
	return f.createID, f.createErr
}

func (f *fakeBackupService) RestoreBackup(_ context.Context) error {
	return f.restoreErr
}

func TestBackupHandler_Create(t *testing.T) {
	h := NewBackupHandler(testLogger(), &fakeBackupService{createID: 3})

	req := httptest.NewRequest(http.MethodPost, "/api/backup/create", nil)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, decodeBody(t, rec)["backup_id"])
}

func TestBackupHandler_CreateUnsupportedBackend(t *testing.T) {
	h := NewBackupHandler(testLogger(), &fakeBackupService{createErr: storage.ErrNotSupported})

	req := httptest.NewRequest(http.MethodPost, "/api/backup/create", nil)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "database_required", decodeBody(t, rec)["error"])
}

func TestBackupHandler_Restore(t *testing.T) {
	h := NewBackupHandler(testLogger(), &fakeBackupService{})

	req := httptest.NewRequest(http.MethodPost, "/api/restore-from-backup", nil)
	rec := httptest.NewRecorder()
	h.HandleRestore(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])
}

func TestBackupHandler_RestoreWithoutBackup(t *testing.T) {
	h := NewBackupHandler(testLogger(), &fakeBackupService{restoreErr: storage.ErrNoBackup})

	req := httptest.NewRequest(http.MethodPost, "/api/restore-from-backup", nil)
	rec := httptest.NewRecorder()
	h.HandleRestore(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no_backup", decodeBody(t, rec)["error"])
}
