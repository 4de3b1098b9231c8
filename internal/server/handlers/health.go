package handlers

import (
	"net/http"

	"github.com/iudanet/masterdata/pkg/api"
)

// HealthHandler answers liveness probes.
type HealthHandler struct {
	backend string
}

// NewHealthHandler creates the health handler. backend names the active
// product store ("file" or "sqlite").
func NewHealthHandler(backend string) *HealthHandler {
	return &HealthHandler{backend: backend}
}

// HandleHealth handles GET /health.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok", Backend: h.backend})
}
