package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/masterdata/internal/catalog"
	"github.com/iudanet/masterdata/internal/models"
)

type fakeHistoryService struct {
	snapshots []models.SnapshotInfo
	undoErr   error
	undoID    string
	undoActor string
	cleared   string
}

func (f *fakeHistoryService) History(actor string) ([]models.SnapshotInfo, error) {
	return f.snapshots, nil
}

func (f *fakeHistoryService) Undo(_ context.Context, actor string) (string, error) {
	if f.undoErr != nil {
		return "", f.undoErr
	}
	f.undoActor = actor
	return f.undoID, nil
}

func (f *fakeHistoryService) ClearHistory(actor string) error {
	f.cleared = actor
	return nil
}

func TestHistoryHandler_ListRequiresActor(t *testing.T) {
	h := NewHistoryHandler(testLogger(), &fakeHistoryService{})

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "user_required", decodeBody(t, rec)["error"])
}

func TestHistoryHandler_List(t *testing.T) {
	svc := &fakeHistoryService{snapshots: []models.SnapshotInfo{
		{ID: "snap-2", Action: "edit", FormattedTime: "15-03-2026 10:31:00"},
		{ID: "snap-1", Action: "delete", FormattedTime: "15-03-2026 10:30:00"},
	}}
	h := NewHistoryHandler(testLogger(), svc)

	req := httptest.NewRequest(http.MethodGet, "/api/history?user_id=marzena", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	snapshots, ok := decodeBody(t, rec)["snapshots"].([]any)
	require.True(t, ok)
	require.Len(t, snapshots, 2)
	first, ok := snapshots[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "snap-2", first["id"])
}

func TestHistoryHandler_Undo(t *testing.T) {
	svc := &fakeHistoryService{undoID: "snap-7"}
	h := NewHistoryHandler(testLogger(), svc)

	req := httptest.NewRequest(http.MethodPost, "/api/history/undo",
		bytes.NewBufferString(`{"user_id":"marzena"}`))
	rec := httptest.NewRecorder()
	h.HandleUndo(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "marzena", svc.undoActor)
	assert.Equal(t, "snap-7", decodeBody(t, rec)["restored_id"])
}

func TestHistoryHandler_UndoEmptyRing(t *testing.T) {
	h := NewHistoryHandler(testLogger(), &fakeHistoryService{undoErr: catalog.ErrNoHistory})

	req := httptest.NewRequest(http.MethodPost, "/api/history/undo",
		bytes.NewBufferString(`{"user_id":"marzena"}`))
	rec := httptest.NewRecorder()
	h.HandleUndo(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no_history", decodeBody(t, rec)["error"])
}

func TestHistoryHandler_UndoWithoutBodyUsesQueryActor(t *testing.T) {
	svc := &fakeHistoryService{undoID: "snap-1"}
	h := NewHistoryHandler(testLogger(), svc)

	req := httptest.NewRequest(http.MethodPost, "/api/history/undo?user_id=jacek", nil)
	rec := httptest.NewRecorder()
	h.HandleUndo(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jacek", svc.undoActor)
}

func TestHistoryHandler_Clear(t *testing.T) {
	svc := &fakeHistoryService{}
	h := NewHistoryHandler(testLogger(), svc)

	req := httptest.NewRequest(http.MethodPost, "/api/history/clear",
		bytes.NewBufferString(`{"user_id":"marzena"}`))
	rec := httptest.NewRecorder()
	h.HandleClear(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "marzena", svc.cleared)
}
