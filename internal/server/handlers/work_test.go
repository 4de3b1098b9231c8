package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/masterdata/internal/models"
	"github.com/iudanet/masterdata/internal/storage"
)

type fakeWorkService struct {
	saved    models.WorkspaceInfo
	bases    []models.WorkspaceInfo
	loadErr  error
	loaded   int
	lastName string
}

func (f *fakeWorkService) SaveWork(_ context.Context, actor string) (models.WorkspaceInfo, error) {
	return f.saved, nil
}

func (f *fakeWorkService) ListWork(_ context.Context, actor string) ([]models.WorkspaceInfo, error) {
	return f.bases, nil
}

func (f *fakeWorkService) LoadWork(_ context.Context, actor, filename string) (int, error) {
	if f.loadErr != nil {
		return 0, f.loadErr
	}
	f.lastName = filename
	return f.loaded, nil
}

func TestWorkHandler_Save(t *testing.T) {
	svc := &fakeWorkService{saved: models.WorkspaceInfo{
		Filename:  "baza_20260315_103000.json",
		Timestamp: "2026-03-15 10:30:00",
		Size:      2048,
	}}
	h := NewWorkHandler(testLogger(), svc)

	req := httptest.NewRequest(http.MethodPost, "/api/work/save",
		bytes.NewBufferString(`{"user_id":"marzena"}`))
	rec := httptest.NewRecorder()
	h.HandleSave(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	base, ok := decodeBody(t, rec)["base"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "baza_20260315_103000.json", base["filename"])
	assert.EqualValues(t, 2048, base["size"])
}

func TestWorkHandler_SaveRequiresActor(t *testing.T) {
	h := NewWorkHandler(testLogger(), &fakeWorkService{})

	req := httptest.NewRequest(http.MethodPost, "/api/work/save", nil)
	rec := httptest.NewRecorder()
	h.HandleSave(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "user_required", decodeBody(t, rec)["error"])
}

func TestWorkHandler_List(t *testing.T) {
	svc := &fakeWorkService{bases: []models.WorkspaceInfo{
		{Filename: "baza_2.json"},
		{Filename: "baza_1.json"},
	}}
	h := NewWorkHandler(testLogger(), svc)

	req := httptest.NewRequest(http.MethodGet, "/api/work/list?user_id=marzena", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	bases, ok := decodeBody(t, rec)["bases"].([]any)
	require.True(t, ok)
	require.Len(t, bases, 2)
}

func TestWorkHandler_LoadRequiresFilename(t *testing.T) {
	h := NewWorkHandler(testLogger(), &fakeWorkService{})

	req := httptest.NewRequest(http.MethodPost, "/api/work/load",
		bytes.NewBufferString(`{"user_id":"marzena"}`))
	rec := httptest.NewRecorder()
	h.HandleLoad(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "filename_required", decodeBody(t, rec)["error"])
}

func TestWorkHandler_Load(t *testing.T) {
	svc := &fakeWorkService{loaded: 42}
	h := NewWorkHandler(testLogger(), svc)

	req := httptest.NewRequest(http.MethodPost, "/api/work/load",
		bytes.NewBufferString(`{"user_id":"marzena","filename":"baza_1.json"}`))
	rec := httptest.NewRecorder()
	h.HandleLoad(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "baza_1.json", svc.lastName)
	assert.EqualValues(t, 42, decodeBody(t, rec)["count"])
}

func TestWorkHandler_LoadUnknownBase(t *testing.T) {
	h := NewWorkHandler(testLogger(), &fakeWorkService{loadErr: storage.ErrWorkspaceNotFound})

	req := httptest.NewRequest(http.MethodPost, "/api/work/load",
		bytes.NewBufferString(`{"user_id":"marzena","filename":"baza_x.json"}`))
	rec := httptest.NewRecorder()
	h.HandleLoad(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "base_not_found", decodeBody(t, rec)["error"])
}
