// Package server assembles the HTTP API: route table plus the
// middleware chain (recovery, logging, optional actor session).
package server

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/masterdata/internal/catalog"
	"github.com/iudanet/masterdata/internal/server/handlers"
	"github.com/iudanet/masterdata/internal/server/middleware"
)

// NewRouter builds the full API handler. backend names the active
// product store for the health endpoint.
func NewRouter(logger *slog.Logger, svc *catalog.Service, sessionCfg handlers.SessionConfig, backend string) http.Handler {
	products := handlers.NewProductsHandler(logger, svc)
	database := handlers.NewDatabaseHandler(logger, svc)
	history := handlers.NewHistoryHandler(logger, svc)
	work := handlers.NewWorkHandler(logger, svc)
	backup := handlers.NewBackupHandler(logger, svc)
	audit := handlers.NewAuditHandler(logger, svc)
	session := handlers.NewSessionHandler(logger, sessionCfg)
	health := handlers.NewHealthHandler(backend)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/products", products.HandleList)
	mux.HandleFunc("PATCH /api/products/{id}", products.HandleUpdate)
	mux.HandleFunc("POST /api/products/batch-update", products.HandleBatchUpdate)
	mux.HandleFunc("POST /api/products/batch-delete", products.HandleBatchDelete)
	mux.HandleFunc("GET /api/column-values", products.HandleColumnValues)
	mux.HandleFunc("GET /api/producers", products.HandleProducers)
	mux.HandleFunc("GET /api/duplicates", products.HandleDuplicates)
	mux.HandleFunc("GET /api/summary", products.HandleSummary)

	mux.HandleFunc("POST /api/database/upload", database.HandleUpload)
	mux.HandleFunc("POST /api/database/clear", database.HandleClear)
	mux.HandleFunc("GET /api/database/download", database.HandleDownload)

	mux.HandleFunc("GET /api/history", history.HandleList)
	mux.HandleFunc("POST /api/history/undo", history.HandleUndo)
	mux.HandleFunc("POST /api/history/clear", history.HandleClear)

	mux.HandleFunc("POST /api/work/save", work.HandleSave)
	mux.HandleFunc("GET /api/work/list", work.HandleList)
	mux.HandleFunc("POST /api/work/load", work.HandleLoad)

	mux.HandleFunc("POST /api/backup/create", backup.HandleCreate)
	mux.HandleFunc("POST /api/restore-from-backup", backup.HandleRestore)

	mux.HandleFunc("GET /api/changes-since", audit.HandleChangesSince)
	mux.HandleFunc("GET /api/change-log", audit.HandleChangeLog)
	mux.HandleFunc("GET /api/stats", audit.HandleStats)
	mux.HandleFunc("POST /api/stats/reset-modified", audit.HandleResetModified)

	mux.HandleFunc("POST /api/session", session.HandleSession)
	mux.HandleFunc("GET /health", health.HandleHealth)

	var handler http.Handler = mux
	handler = middleware.Session(logger, sessionCfg)(handler)
	handler = middleware.LoggingWithSkip(logger, []string{"/health"})(handler)
	handler = middleware.Recovery(logger)(handler)
	return handler
}
