package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"car-telemetry/backend/internal/config"
	"car-telemetry/backend/internal/hub"
	"car-telemetry/backend/internal/metrics"
	"car-telemetry/backend/internal/store"
)

// Server is the HTTP surface: the vehicle registry API, telemetry history and
// export, the live-viewer websocket endpoint, and operational endpoints.
type Server struct {
	log   *zap.Logger
	store store.Store
	hub   *hub.Hub
	srv   *http.Server
}

func NewServer(cfg *config.Config, log *zap.Logger, st store.Store, h *hub.Hub) *Server {
	s := &Server{
		log:   log,
		store: st,
		hub:   h,
	}

	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	api.HandleFunc("/vehicles", s.handleCreateVehicle).Methods(http.MethodPost)
	api.HandleFunc("/vehicles", s.handleListVehicles).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}", s.handleGetVehicle).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}", s.handleUpdateVehicle).Methods(http.MethodPut)
	api.HandleFunc("/vehicles/{id}", s.handleDeleteVehicle).Methods(http.MethodDelete)
	api.HandleFunc("/vehicles/{id}/telemetry", s.handleTelemetryHistory).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}/telemetry/export", s.handleTelemetryExport).Methods(http.MethodGet)

	r.HandleFunc("/ws/telemetry", s.handleTelemetryWS)
	r.Handle("/metrics", metrics.Handler())
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	// CORS wraps the whole router so preflight requests are answered even
	// for method mismatches.
	s.srv = &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: NewCORSMiddleware(cfg.CORSOrigins).Wrap(r),
	}
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) ListenAndServe() error {
	s.log.Info("http server listening", zap.String("addr", s.srv.Addr))
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Connected Car Telemetry Dashboard API",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"viewers": s.hub.Count(),
	})
}
