package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/daytrace/daytrace/internal/api/recovery"
	"github.com/daytrace/daytrace/internal/api/respond"
)

// NewRouter creates the HTTP router with all API routes.
func NewRouter(h *TrackerHandler) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)

	// Unmatched routes answer JSON like everything else
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.WriteNotFound(w, "Route not found")
	})

	healthHandler := NewHealthHandler()

	// Health endpoints
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	router.HandleFunc("/api/health/store", healthHandler.CheckStoreHealth).Methods("GET")

	// Session and statistics endpoints
	router.HandleFunc("/api/users/{userId}/session", h.GetSession).Methods("GET")
	router.HandleFunc("/api/users/{userId}/stats", h.GetStats).Methods("GET")

	// Transition endpoints
	router.HandleFunc("/api/users/{userId}/activities", h.StartActivity).Methods("POST")
	router.HandleFunc("/api/users/{userId}/sleep", h.Sleep).Methods("POST")

	// Supervision endpoints
	router.HandleFunc("/api/admin/close-open-sessions", h.CloseOpenSessions).Methods("POST")

	// Prometheus metrics
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}
