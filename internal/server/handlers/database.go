package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/iudanet/masterdata/internal/catalog"
	"github.com/iudanet/masterdata/internal/importer"
	"github.com/iudanet/masterdata/internal/models"
	"github.com/iudanet/masterdata/pkg/api"
)

// Uploads above this size are rejected outright; the biggest master
// file seen so far is under 30 MB.
const maxUploadBytes = 100 << 20

// DatabaseService is the catalog surface of the whole-collection
// endpoints.
type DatabaseService interface {
	Import(ctx context.Context, incoming []*models.Product, source, actor string) (catalog.ImportResult, error)
	Clear(ctx context.Context, confirm bool) (int, error)
	Export(ctx context.Context) ([]*models.Product, error)
}

// DatabaseHandler serves upload, clear, and download.
type DatabaseHandler struct {
	logger *slog.Logger
	svc    DatabaseService
}

// NewDatabaseHandler creates the database handler.
func NewDatabaseHandler(logger *slog.Logger, svc DatabaseService) *DatabaseHandler {
	return &DatabaseHandler{logger: logger, svc: svc}
}

// HandleUpload handles POST /api/database/upload: a multipart form with
// one "file" part, .json or .xml by extension.
func (h *DatabaseHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "oczekiwano formularza multipart z plikiem")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file_required", "brak pliku w formularzu")
		return
	}
	defer file.Close()

	var products []*models.Product
	var source string
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".json":
		source = "json"
		products, err = importer.FromJSON(file)
	case ".xml":
		source = "xml"
		products, err = importer.FromSupplierXML(file)
	default:
		writeError(w, http.StatusBadRequest, "invalid_format", "obsługiwane są tylko pliki .json i .xml")
		return
	}
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	actor := actorFrom(r, r.FormValue("user_id"))
	result, err := h.svc.Import(r.Context(), products, source, actor)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("Upload processed",
		"filename", header.Filename, "source", source,
		"count", result.Count, "merged", result.Merged, "user_id", actor)

	writeJSON(w, http.StatusOK, api.UploadResponse{
		Success: true,
		Count:   result.Count,
		Merged:  result.Merged,
		Source:  source,
	})
}

// HandleClear handles POST /api/database/clear.
func (h *DatabaseHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	var req api.ClearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "niepoprawne body")
		return
	}

	deleted, err := h.svc.Clear(r.Context(), req.Confirm)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("Collection cleared", "deleted", deleted, "user_id", actorFrom(r, req.UserID))
	writeJSON(w, http.StatusOK, api.ClearResponse{Success: true, Deleted: deleted})
}

// HandleDownload handles GET /api/database/download: the collection in
// master-file shape, as an attachment.
func (h *DatabaseHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Export(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if products == nil {
		products = []*models.Product{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="products.json"`)
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(products); err != nil {
		h.logger.Error("Failed to stream download", "error", err)
	}
}
