package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-telemetry/backend/internal/domain"
)

// nominalSample has every metric inside its threshold band.
func nominalSample() domain.TelemetrySample {
	return domain.TelemetrySample{
		ID:                "s-1",
		VehicleID:         "veh-1",
		Speed:             80,
		EngineRPM:         2500,
		FuelLevel:         60,
		EngineTemperature: 90,
		Latitude:          37.77,
		Longitude:         -122.42,
		Timestamp:         time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCheckNominalSampleNoAlerts(t *testing.T) {
	e := NewAlertEvaluator(nil)
	sample := nominalSample()
	assert.Empty(t, e.Check(&sample))
}

func TestCheckSpeedHighSeverity(t *testing.T) {
	e := NewAlertEvaluator(nil)
	sample := nominalSample()
	sample.Speed = 145 // above 120*1.2

	alerts := e.Check(&sample)
	require.Len(t, alerts, 1)
	a := alerts[0]
	assert.Equal(t, "veh-1", a.VehicleID)
	assert.Equal(t, domain.MetricSpeed, a.Metric)
	assert.Equal(t, 145.0, a.Value)
	assert.Equal(t, 120.0, a.Threshold)
	assert.Equal(t, domain.SeverityHigh, a.Severity)
	assert.Equal(t, "Speed is critically high: 145", a.Message)
}

func TestCheckSpeedMediumSeverity(t *testing.T) {
	e := NewAlertEvaluator(nil)
	sample := nominalSample()
	sample.Speed = 130 // above max, not past 120*1.2=144

	alerts := e.Check(&sample)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.SeverityMedium, alerts[0].Severity)
}

func TestCheckLowFuelHighSeverity(t *testing.T) {
	e := NewAlertEvaluator(nil)
	sample := nominalSample()
	sample.FuelLevel = 5 // below 10*0.8

	alerts := e.Check(&sample)
	require.Len(t, alerts, 1)
	a := alerts[0]
	assert.Equal(t, domain.MetricFuelLevel, a.Metric)
	assert.Equal(t, 10.0, a.Threshold)
	assert.Equal(t, domain.SeverityHigh, a.Severity)
	assert.Equal(t, "Fuel Level is critically low: 5", a.Message)
}

func TestCheckLowFuelMediumSeverity(t *testing.T) {
	e := NewAlertEvaluator(nil)
	sample := nominalSample()
	sample.FuelLevel = 9 // below min 10, above 10*0.8=8

	alerts := e.Check(&sample)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.SeverityMedium, alerts[0].Severity)
}

func TestCheckMultipleBreachesKeepMetricOrder(t *testing.T) {
	e := NewAlertEvaluator(nil)
	sample := nominalSample()
	sample.Speed = 130
	sample.EngineRPM = 6200
	sample.FuelLevel = 5
	sample.EngineTemperature = 115

	alerts := e.Check(&sample)
	require.Len(t, alerts, 4)
	assert.Equal(t, domain.MetricSpeed, alerts[0].Metric)
	assert.Equal(t, domain.MetricEngineRPM, alerts[1].Metric)
	assert.Equal(t, domain.MetricFuelLevel, alerts[2].Metric)
	assert.Equal(t, domain.MetricEngineTemp, alerts[3].Metric)
}

func TestCheckIsPure(t *testing.T) {
	e := NewAlertEvaluator(nil)
	sample := nominalSample()
	sample.EngineTemperature = 125

	first := e.Check(&sample)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Check(&sample))
	}
	// The sample itself is untouched.
	assert.Equal(t, 125.0, sample.EngineTemperature)
}

func TestMetricLabel(t *testing.T) {
	assert.Equal(t, "Speed", metricLabel("speed"))
	assert.Equal(t, "Engine Rpm", metricLabel("engine_rpm"))
	assert.Equal(t, "Fuel Level", metricLabel("fuel_level"))
	assert.Equal(t, "Engine Temperature", metricLabel("engine_temperature"))
}
