package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/iudanet/masterdata/internal/catalog"
	"github.com/iudanet/masterdata/internal/importer"
	"github.com/iudanet/masterdata/internal/models"
	"github.com/iudanet/masterdata/internal/storage"
	"github.com/iudanet/masterdata/pkg/api"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, reference, message string) {
	writeJSON(w, status, api.ErrorResponse{Error: reference, Message: message})
}

// respondError maps domain sentinels onto HTTP codes and the stable
// reference strings the UI matches on. Unknown errors are logged and
// hidden behind internal_error.
func respondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, catalog.ErrFieldRequired):
		writeError(w, http.StatusBadRequest, "field_required", "pole jest wymagane")
	case errors.Is(err, catalog.ErrFieldNotEditable):
		writeError(w, http.StatusBadRequest, "field_not_editable", "tego pola nie można edytować")
	case errors.Is(err, catalog.ErrUnknownField):
		writeError(w, http.StatusBadRequest, "unknown_field", "nieznane pole")
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "product_not_found", "nie znaleziono rekordu")
	case errors.Is(err, catalog.ErrConfirmationRequired):
		writeError(w, http.StatusBadRequest, "confirmation_required", "operacja wymaga potwierdzenia")
	case errors.Is(err, catalog.ErrNoHistory):
		writeError(w, http.StatusBadRequest, "no_history", "brak operacji do cofnięcia")
	case errors.Is(err, storage.ErrSnapshotNotFound):
		writeError(w, http.StatusNotFound, "snapshot_not_found", "")
	case errors.Is(err, storage.ErrWorkspaceNotFound):
		writeError(w, http.StatusNotFound, "base_not_found", "nie znaleziono zapisanej bazy")
	case errors.Is(err, storage.ErrNoBackup):
		writeError(w, http.StatusNotFound, "no_backup", "brak kopii zapasowej")
	case errors.Is(err, storage.ErrNotSupported):
		writeError(w, http.StatusBadRequest, "database_required", "operacja wymaga backendu bazodanowego")
	case errors.Is(err, importer.ErrInvalidFormat):
		writeError(w, http.StatusBadRequest, "invalid_format", "niepoprawny format pliku")
	default:
		logger.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

// actorFrom resolves who is editing: the session token wins, then the
// payload user_id, then the user_id query parameter. Empty means the
// edit is anonymous: no snapshot, no journal entry.
func actorFrom(r *http.Request, payloadUserID string) string {
	if actor, ok := GetActor(r.Context()); ok {
		return actor
	}
	if actor := strings.TrimSpace(payloadUserID); actor != "" {
		return actor
	}
	return strings.TrimSpace(r.URL.Query().Get("user_id"))
}

// parseIDs reads record keys sent as JSON numbers or numeric strings.
// Anything else poisons the whole batch.
func parseIDs(raw []json.RawMessage) ([]int64, error) {
	out := make([]int64, 0, len(raw))
	for _, msg := range raw {
		var n int64
		if err := json.Unmarshal(msg, &n); err == nil {
			out = append(out, n)
			continue
		}
		var f float64
		if err := json.Unmarshal(msg, &f); err == nil && f == float64(int64(f)) {
			out = append(out, int64(f))
			continue
		}
		var s string
		if err := json.Unmarshal(msg, &s); err == nil {
			if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
				out = append(out, n)
				continue
			}
		}
		return nil, errors.New("unparseable record id")
	}
	return out, nil
}

// parseValue reads an attribute value from the request body. Absent
// means null; the Value decoder itself is lenient about kinds.
func parseValue(raw json.RawMessage) models.Value {
	if len(raw) == 0 {
		return models.Null()
	}
	var v models.Value
	_ = v.UnmarshalJSON(raw)
	return v
}
