package api

import (
	"net/http"
	"time"

	respond "github.com/daytrace/daytrace/internal/api/respond"
)

// HealthHandler handles health check endpoints
type HealthHandler struct{}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

// BindServiceHealth allows the service binary to inject the aggregate
// health function. Before binding, the service reports unhealthy.
var serviceIsHealthy func() bool = func() bool { return false }

func BindServiceHealth(f func() bool) { serviceIsHealthy = f }

// BindStoreHealth injects the session-store probe for the readiness
// endpoint.
var storeIsHealthy func() bool = func() bool { return false }

func BindStoreHealth(f func() bool) { storeIsHealthy = f }

// CheckHealth handles GET /api/health
// Always returns 200; body reports healthy/unhealthy. 500 indicates handler failure only.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "unhealthy"
	if serviceIsHealthy() {
		status = "healthy"
	}
	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	respond.WriteJSON(w, http.StatusOK, response)
}

// CheckStoreHealth handles GET /api/health/store
// Returns 503 while the session store is unreachable so orchestrators
// can gate traffic on it.
func (h *HealthHandler) CheckStoreHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "healthy", http.StatusOK
	if !storeIsHealthy() {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	respond.WriteJSON(w, code, response)
}
