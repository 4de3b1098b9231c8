package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iudanet/masterdata/pkg/api"
)

// BackupService is the catalog surface of the system-backup endpoints.
type BackupService interface {
	CreateBackup(ctx context.Context) (int64, error)
	RestoreBackup(ctx context.Context) error
}

// BackupHandler serves whole-collection backups. Only the relational
// backend supports them; the file backend answers database_required.
type BackupHandler struct {
	logger *slog.Logger
	svc    BackupService
}

// NewBackupHandler creates the backup handler.
func NewBackupHandler(logger *slog.Logger, svc BackupService) *BackupHandler {
	return &BackupHandler{logger: logger, svc: svc}
}

// HandleCreate handles POST /api/backup/create.
func (h *BackupHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.CreateBackup(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("Backup created", "backup_id", id)
	writeJSON(w, http.StatusOK, api.BackupCreateResponse{Success: true, BackupID: id})
}

// HandleRestore handles POST /api/restore-from-backup.
func (h *BackupHandler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RestoreBackup(r.Context()); err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("Backup restored")
	writeJSON(w, http.StatusOK, api.RestoreResponse{Success: true})
}
