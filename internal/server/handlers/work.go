package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/masterdata/internal/models"
	"github.com/iudanet/masterdata/pkg/api"
)

// WorkService is the catalog surface of the saved-base endpoints.
type WorkService interface {
	SaveWork(ctx context.Context, actor string) (models.WorkspaceInfo, error)
	ListWork(ctx context.Context, actor string) ([]models.WorkspaceInfo, error)
	LoadWork(ctx context.Context, actor, filename string) (int, error)
}

// WorkHandler serves the manual "save my work" copies.
type WorkHandler struct {
	logger *slog.Logger
	svc    WorkService
}

// NewWorkHandler creates the work handler.
func NewWorkHandler(logger *slog.Logger, svc WorkService) *WorkHandler {
	return &WorkHandler{logger: logger, svc: svc}
}

// HandleSave handles POST /api/work/save.
func (h *WorkHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req api.WorkSaveRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	actor := actorFrom(r, req.UserID)
	if actor == "" {
		writeError(w, http.StatusBadRequest, "user_required", "user_id jest wymagany")
		return
	}

	info, err := h.svc.SaveWork(r.Context(), actor)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("Base saved", "user_id", actor, "filename", info.Filename, "size", info.Size)
	writeJSON(w, http.StatusOK, api.WorkSaveResponse{Success: true, Base: workspaceDTO(info)})
}

// HandleList handles GET /api/work/list.
func (h *WorkHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r, "")
	if actor == "" {
		writeError(w, http.StatusBadRequest, "user_required", "user_id jest wymagany")
		return
	}

	bases, err := h.svc.ListWork(r.Context(), actor)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	out := make([]api.WorkspaceInfo, 0, len(bases))
	for _, b := range bases {
		out = append(out, workspaceDTO(b))
	}
	writeJSON(w, http.StatusOK, api.WorkListResponse{Bases: out})
}

// HandleLoad handles POST /api/work/load.
func (h *WorkHandler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	var req api.WorkLoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "niepoprawne body")
		return
	}

	actor := actorFrom(r, req.UserID)
	if actor == "" {
		writeError(w, http.StatusBadRequest, "user_required", "user_id jest wymagany")
		return
	}
	if req.Filename == "" {
		writeError(w, http.StatusBadRequest, "filename_required", "filename jest wymagany")
		return
	}

	count, err := h.svc.LoadWork(r.Context(), actor, req.Filename)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("Base loaded", "user_id", actor, "filename", req.Filename, "count", count)
	writeJSON(w, http.StatusOK, api.WorkLoadResponse{Success: true, Count: count})
}

func workspaceDTO(info models.WorkspaceInfo) api.WorkspaceInfo {
	return api.WorkspaceInfo{
		Filename:  info.Filename,
		Timestamp: info.Timestamp,
		Size:      info.Size,
	}
}
