package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/iudanet/masterdata/internal/catalog"
	"github.com/iudanet/masterdata/internal/models"
	"github.com/iudanet/masterdata/pkg/api"
)

// The polling endpoint never returns more than this many entries at
// once; clients catch up over several polls after a long absence.
const maxChangesPerPoll = 500

// defaultJournalLimit bounds the rendered journal panel.
const defaultJournalLimit = 200

// AuditService is the catalog surface of the audit endpoints.
type AuditService interface {
	ChangesSince(ctx context.Context, afterID int64, limit int) ([]models.ChangeEntry, error)
	ChangeLogGrouped(ctx context.Context, limit int) ([]models.ChangeGroup, error)
	Summary(ctx context.Context) (catalog.Summary, error)
	ModifiedCount() (int64, error)
	ResetModified() error
}

// AuditHandler serves the change trail and the dashboard counters.
type AuditHandler struct {
	logger *slog.Logger
	svc    AuditService
}

// NewAuditHandler creates the audit handler.
func NewAuditHandler(logger *slog.Logger, svc AuditService) *AuditHandler {
	return &AuditHandler{logger: logger, svc: svc}
}

// HandleChangesSince handles GET /api/changes-since?id=N. Other open
// browser windows poll this to refresh rows edited elsewhere.
func (h *AuditHandler) HandleChangesSince(w http.ResponseWriter, r *http.Request) {
	var afterID int64
	if v := r.URL.Query().Get("id"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_query", "niepoprawny parametr id")
			return
		}
		afterID = n
	}

	entries, err := h.svc.ChangesSince(r.Context(), afterID, maxChangesPerPoll)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	out := make([]api.ChangeEntry, 0, len(entries))
	lastID := afterID
	for _, e := range entries {
		out = append(out, api.ChangeEntry{
			ID:        e.ID,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
			UserID:    e.Actor,
			ProductID: e.ProductID,
			Field:     e.Field,
			NewValue:  e.NewValue,
		})
		if e.ID > lastID {
			lastID = e.ID
		}
	}
	writeJSON(w, http.StatusOK, api.ChangesSinceResponse{Changes: out, LastID: lastID})
}

// HandleChangeLog handles GET /api/change-log: the journal grouped by
// day, rendered lines included.
func (h *AuditHandler) HandleChangeLog(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.ChangeLogGrouped(r.Context(), defaultJournalLimit)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	out := make([]api.ChangeGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, api.ChangeGroup{DateLabel: g.DateLabel, Entries: g.Entries})
	}
	writeJSON(w, http.StatusOK, api.ChangeLogResponse{Groups: out})
}

// HandleStats handles GET /api/stats.
func (h *AuditHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Summary(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	modified, err := h.svc.ModifiedCount()
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, api.StatsResponse{
		Total:            s.Total,
		MissingProducer:  s.MissingProducer,
		MissingSKU:       s.MissingSKU,
		MissingEAN:       s.MissingEAN,
		UnavailableCount: s.UnavailableCount,
		ModifiedCount:    modified,
	})
}

// HandleResetModified handles POST /api/stats/reset-modified.
func (h *AuditHandler) HandleResetModified(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ResetModified(); err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ResetModifiedResponse{Success: true})
}
