package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/masterdata/internal/models"
	"github.com/iudanet/masterdata/pkg/api"
)

// HistoryService is the catalog surface of the undo endpoints.
type HistoryService interface {
	History(actor string) ([]models.SnapshotInfo, error)
	Undo(ctx context.Context, actor string) (string, error)
	ClearHistory(actor string) error
}

// HistoryHandler serves the per-actor undo ring.
type HistoryHandler struct {
	logger *slog.Logger
	svc    HistoryService
}

// NewHistoryHandler creates the history handler.
func NewHistoryHandler(logger *slog.Logger, svc HistoryService) *HistoryHandler {
	return &HistoryHandler{logger: logger, svc: svc}
}

// HandleList handles GET /api/history.
func (h *HistoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r, "")
	if actor == "" {
		writeError(w, http.StatusBadRequest, "user_required", "user_id jest wymagany")
		return
	}

	snapshots, err := h.svc.History(actor)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	out := make([]api.SnapshotInfo, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, api.SnapshotInfo{
			ID:            s.ID,
			Action:        s.Action,
			Timestamp:     s.Timestamp,
			FormattedTime: s.FormattedTime,
		})
	}
	writeJSON(w, http.StatusOK, api.HistoryResponse{Snapshots: out})
}

// HandleUndo handles POST /api/history/undo.
func (h *HistoryHandler) HandleUndo(w http.ResponseWriter, r *http.Request) {
	var req api.UndoRequest
	_ = json.NewDecoder(r.Body).Decode(&req) // empty body means session-only attribution

	actor := actorFrom(r, req.UserID)
	if actor == "" {
		writeError(w, http.StatusBadRequest, "user_required", "user_id jest wymagany")
		return
	}

	restored, err := h.svc.Undo(r.Context(), actor)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("Undo applied", "user_id", actor, "snapshot", restored)
	writeJSON(w, http.StatusOK, api.UndoResponse{Success: true, RestoredID: restored})
}

// HandleClear handles POST /api/history/clear.
func (h *HistoryHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	var req api.UndoRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	actor := actorFrom(r, req.UserID)
	if actor == "" {
		writeError(w, http.StatusBadRequest, "user_required", "user_id jest wymagany")
		return
	}

	if err := h.svc.ClearHistory(actor); err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
