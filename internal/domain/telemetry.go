package domain

import "time"

// Vehicle is a registry record. Deleting a vehicle is a soft delete: the row
// stays, IsActive flips to false and the simulation loop drops its state.
type Vehicle struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	LicensePlate string    `json:"license_plate"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// TelemetrySample is one reading for one vehicle, immutable once emitted.
type TelemetrySample struct {
	ID                string    `json:"id"`
	VehicleID         string    `json:"vehicle_id"`
	Speed             float64   `json:"speed"`              // km/h
	EngineRPM         float64   `json:"engine_rpm"`         // RPM
	FuelLevel         float64   `json:"fuel_level"`         // percentage
	EngineTemperature float64   `json:"engine_temperature"` // Celsius
	Latitude          float64   `json:"latitude"`
	Longitude         float64   `json:"longitude"`
	Timestamp         time.Time `json:"timestamp"`
}

type AlertSeverity string

const (
	SeverityLow    AlertSeverity = "low"
	SeverityMedium AlertSeverity = "medium"
	SeverityHigh   AlertSeverity = "high"
)

// Alert is produced per tick and broadcast with the batch; the loop does not
// persist alerts itself.
type Alert struct {
	VehicleID string        `json:"vehicle_id"`
	Metric    string        `json:"metric"`
	Value     float64       `json:"value"`
	Threshold float64       `json:"threshold"`
	Severity  AlertSeverity `json:"severity"`
	Message   string        `json:"message"`
}

// Monitored metric names. These double as JSON keys and threshold-table keys.
const (
	MetricSpeed      = "speed"
	MetricEngineRPM  = "engine_rpm"
	MetricFuelLevel  = "fuel_level"
	MetricEngineTemp = "engine_temperature"
)

// MonitoredMetrics fixes the evaluation (and alert output) order.
var MonitoredMetrics = []string{MetricSpeed, MetricEngineRPM, MetricFuelLevel, MetricEngineTemp}

// Threshold is a static min/max band for one metric.
type Threshold struct {
	Min float64
	Max float64
}

// DefaultThresholds is read-only for the lifetime of the process.
var DefaultThresholds = map[string]Threshold{
	MetricSpeed:      {Min: 0, Max: 120},    // km/h
	MetricEngineRPM:  {Min: 800, Max: 6000}, // RPM
	MetricFuelLevel:  {Min: 10, Max: 100},   // percentage
	MetricEngineTemp: {Min: 80, Max: 100},   // Celsius
}

// BatchMessageType tags the per-tick broadcast payload.
const BatchMessageType = "telemetry_update"

// BatchMessage is the wire payload pushed to every connected viewer once per
// tick: all samples and all alerts drawn from the same active-vehicle snapshot.
type BatchMessage struct {
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Data      []TelemetrySample `json:"data"`
	Alerts    []Alert           `json:"alerts"`
}
