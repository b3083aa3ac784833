package http

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"car-telemetry/backend/internal/config"
	"car-telemetry/backend/internal/domain"
	"car-telemetry/backend/internal/hub"
	"car-telemetry/backend/internal/store"
)

type testEnv struct {
	ts    *httptest.Server
	store *store.MemoryStore
	hub   *hub.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		HTTPPort:    "0",
		CORSOrigins: []string{"*"},
	}
	st := store.NewMemoryStore()
	h := hub.New(zap.NewNop())
	srv := NewServer(cfg, zap.NewNop(), st, h)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{ts: ts, store: st, hub: h}
}

func (e *testEnv) createVehicle(t *testing.T, name string) domain.Vehicle {
	t.Helper()
	body, _ := json.Marshal(VehicleRequest{
		Name:         name,
		Model:        "Ford Transit",
		Year:         2023,
		LicensePlate: "7ABC123",
	})
	resp, err := http.Post(e.ts.URL+"/api/vehicles", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var v domain.Vehicle
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestCreateAndGetVehicle(t *testing.T) {
	env := newTestEnv(t)
	created := env.createVehicle(t, "Van 1")

	assert.NotEmpty(t, created.ID)
	assert.True(t, created.IsActive)
	assert.Equal(t, "Van 1", created.Name)

	resp, err := http.Get(env.ts.URL + "/api/vehicles/" + created.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got domain.Vehicle
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Van 1", got.Name)
}

func TestCreateVehicleRejectsBadBody(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Post(env.ts.URL+"/api/vehicles", "application/json",
		strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(env.ts.URL+"/api/vehicles", "application/json",
		strings.NewReader(`{"model":"nameless"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetVehicleNotFound(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.ts.URL + "/api/vehicles/" + uuid.NewString())
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateVehicle(t *testing.T) {
	env := newTestEnv(t)
	created := env.createVehicle(t, "Van 1")

	body, _ := json.Marshal(VehicleRequest{
		Name:         "Van 1 renamed",
		Model:        "Ford Transit",
		Year:         2024,
		LicensePlate: "7XYZ999",
	})
	req, _ := http.NewRequest(http.MethodPut, env.ts.URL+"/api/vehicles/"+created.ID, bytes.NewReader(body))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got domain.Vehicle
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "Van 1 renamed", got.Name)
	assert.Equal(t, 2024, got.Year)
	assert.True(t, got.IsActive)
}

func TestDeleteVehicleIsSoft(t *testing.T) {
	env := newTestEnv(t)
	created := env.createVehicle(t, "Van 1")

	req, _ := http.NewRequest(http.MethodDelete, env.ts.URL+"/api/vehicles/"+created.ID, nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Gone from the active listing...
	resp, err = http.Get(env.ts.URL + "/api/vehicles")
	require.NoError(t, err)
	defer resp.Body.Close()
	var vehicles []domain.Vehicle
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&vehicles))
	assert.Empty(t, vehicles)

	// ...but the record survives.
	resp, err = http.Get(env.ts.URL + "/api/vehicles/" + created.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got domain.Vehicle
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.False(t, got.IsActive)
}

func seedTelemetry(t *testing.T, env *testEnv, vehicleID string, n int) {
	t.Helper()
	base := time.Now().UTC().Add(-time.Duration(n) * time.Minute)
	for i := 0; i < n; i++ {
		require.NoError(t, env.store.BatchInsert(context.Background(), []*domain.TelemetrySample{{
			ID:                uuid.NewString(),
			VehicleID:         vehicleID,
			Speed:             70 + float64(i),
			EngineRPM:         2500,
			FuelLevel:         80,
			EngineTemperature: 90,
			Latitude:          37.7749,
			Longitude:         -122.4194,
			Timestamp:         base.Add(time.Duration(i) * time.Minute),
		}}))
	}
}

func TestTelemetryHistory(t *testing.T) {
	env := newTestEnv(t)
	created := env.createVehicle(t, "Van 1")
	seedTelemetry(t, env, created.ID, 5)

	resp, err := http.Get(fmt.Sprintf("%s/api/vehicles/%s/telemetry?limit=3", env.ts.URL, created.ID))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var samples []domain.TelemetrySample
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&samples))
	require.Len(t, samples, 3)
	// Newest first.
	assert.Equal(t, 74.0, samples[0].Speed)
	assert.Equal(t, 73.0, samples[1].Speed)
}

func TestTelemetryExportCSV(t *testing.T) {
	env := newTestEnv(t)
	created := env.createVehicle(t, "Van 1")
	seedTelemetry(t, env, created.ID, 4)

	resp, err := http.Get(fmt.Sprintf("%s/api/vehicles/%s/telemetry/export?days=1", env.ts.URL, created.ID))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	records, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5) // header + 4 rows
	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, created.ID, records[1][1])
	// Ascending time: first data row is the oldest sample.
	assert.Equal(t, "70", records[1][2])
}

func TestTelemetryExportEmpty(t *testing.T) {
	env := newTestEnv(t)
	created := env.createVehicle(t, "Van 1")

	resp, err := http.Get(fmt.Sprintf("%s/api/vehicles/%s/telemetry/export", env.ts.URL, created.ID))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocketViewerReceivesBroadcast(t *testing.T) {
	env := newTestEnv(t)

	wsURL := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/ws/telemetry"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return env.hub.Count() == 1 },
		time.Second, 5*time.Millisecond)

	env.hub.Publish(&domain.BatchMessage{
		Type:      domain.BatchMessageType,
		Timestamp: time.Now().UTC(),
		Data:      []domain.TelemetrySample{{ID: "s-1", VehicleID: "veh-1", Speed: 72.4}},
		Alerts:    []domain.Alert{},
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	msgType, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, msgType)

	var msg domain.BatchMessage
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, domain.BatchMessageType, msg.Type)
	require.Len(t, msg.Data, 1)
	assert.Equal(t, "veh-1", msg.Data[0].VehicleID)
}

func TestWebSocketDisconnectDetaches(t *testing.T) {
	env := newTestEnv(t)

	wsURL := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/ws/telemetry"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return env.hub.Count() == 1 },
		time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool { return env.hub.Count() == 0 },
		time.Second, 5*time.Millisecond)
}

func TestCORSHeaders(t *testing.T) {
	env := newTestEnv(t)

	req, _ := http.NewRequest(http.MethodOptions, env.ts.URL+"/api/vehicles", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
