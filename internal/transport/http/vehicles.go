package http

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"car-telemetry/backend/internal/domain"
	"car-telemetry/backend/internal/store"
)

// VehicleRequest is the create/update payload (descriptive fields only).
type VehicleRequest struct {
	Name         string `json:"name"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	LicensePlate string `json:"license_plate"`
}

func (s *Server) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req VehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	v := &domain.Vehicle{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Model:        req.Model,
		Year:         req.Year,
		LicensePlate: req.LicensePlate,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateVehicle(r.Context(), v); err != nil {
		s.log.Error("vehicle create failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create vehicle")
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := s.store.ListActiveVehicles(r.Context())
	if err != nil {
		s.log.Error("vehicle list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list vehicles")
		return
	}
	if vehicles == nil {
		vehicles = []domain.Vehicle{}
	}
	writeJSON(w, http.StatusOK, vehicles)
}

func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	v, err := s.store.GetVehicle(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "vehicle not found")
		return
	}
	if err != nil {
		s.log.Error("vehicle get failed", zap.String("vehicle_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get vehicle")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req VehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	v := &domain.Vehicle{
		ID:           id,
		Name:         req.Name,
		Model:        req.Model,
		Year:         req.Year,
		LicensePlate: req.LicensePlate,
	}
	err := s.store.UpdateVehicle(r.Context(), v)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "vehicle not found")
		return
	}
	if err != nil {
		s.log.Error("vehicle update failed", zap.String("vehicle_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update vehicle")
		return
	}

	updated, err := s.store.GetVehicle(r.Context(), id)
	if err != nil {
		s.log.Error("vehicle reload failed", zap.String("vehicle_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load vehicle")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	err := s.store.DeactivateVehicle(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "vehicle not found")
		return
	}
	if err != nil {
		s.log.Error("vehicle delete failed", zap.String("vehicle_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete vehicle")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Vehicle deleted successfully"})
}

func (s *Server) handleTelemetryHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	samples, err := s.store.RecentTelemetry(r.Context(), id, limit)
	if err != nil {
		s.log.Error("telemetry history failed", zap.String("vehicle_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load telemetry")
		return
	}
	if samples == nil {
		samples = []domain.TelemetrySample{}
	}
	writeJSON(w, http.StatusOK, samples)
}

var exportHeader = []string{
	"timestamp",
	"vehicle_id",
	"speed_kmh",
	"engine_rpm",
	"fuel_level_percent",
	"engine_temperature_celsius",
	"latitude",
	"longitude",
}

func (s *Server) handleTelemetryExport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid days")
			return
		}
		days = n
	}

	from := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -days)
	samples, err := s.store.TelemetrySince(r.Context(), id, from)
	if err != nil {
		s.log.Error("telemetry export failed", zap.String("vehicle_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to export telemetry")
		return
	}
	if len(samples) == 0 {
		writeError(w, http.StatusNotFound, "no telemetry data found")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=telemetry_%s_%ddays.csv", id, days))

	cw := csv.NewWriter(w)
	_ = cw.Write(exportHeader)
	for _, t := range samples {
		_ = cw.Write([]string{
			t.Timestamp.Format(time.RFC3339),
			t.VehicleID,
			formatFloat(t.Speed),
			formatFloat(t.EngineRPM),
			formatFloat(t.FuelLevel),
			formatFloat(t.EngineTemperature),
			formatFloat(t.Latitude),
			formatFloat(t.Longitude),
		})
	}
	cw.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
