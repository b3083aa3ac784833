package pipeline

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"car-telemetry/backend/internal/domain"
)

// Simulator advances per-vehicle state and emits telemetry samples. It is not
// safe for concurrent use; the simulation loop is its only caller.
type Simulator struct {
	rng     *rand.Rand
	baseLat float64
	baseLng float64
}

func NewSimulator(rng *rand.Rand, baseLat, baseLng float64) *Simulator {
	return &Simulator{rng: rng, baseLat: baseLat, baseLng: baseLng}
}

// Initialize returns a plausible starting state for a newly sighted vehicle:
// cruising speed, warm engine, position jittered around the base coordinate.
func (s *Simulator) Initialize(now time.Time) *VehicleState {
	return &VehicleState{
		Speed:             s.uniform(60, 80),
		EngineRPM:         s.uniform(1500, 2500),
		FuelLevel:         s.uniform(50, 100),
		EngineTemperature: s.uniform(85, 95),
		Latitude:          s.baseLat + s.uniform(-0.1, 0.1),
		Longitude:         s.baseLng + s.uniform(-0.1, 0.1),
		Heading:           s.uniform(0, 360),
		LastUpdate:        now,
	}
}

// Step advances st by the elapsed time since its last update and returns the
// resulting sample. RPM is re-derived from speed every step while temperature
// approaches its target gradually; the asymmetry is intentional.
func (s *Simulator) Step(vehicleID string, st *VehicleState, now time.Time) domain.TelemetrySample {
	dt := now.Sub(st.LastUpdate).Seconds()
	if dt < 0 {
		dt = 0
	}

	st.Speed = clamp(st.Speed+s.uniform(-5, 5)*dt, 0, 140)

	targetRPM := st.Speed*35 + s.uniform(-200, 200)
	st.EngineRPM = clamp(targetRPM, 800, 6500)

	consumption := (st.Speed*0.001 + st.EngineRPM*0.0001) * dt
	st.FuelLevel = math.Max(0, st.FuelLevel-consumption)

	targetTemp := 90 + (st.EngineRPM-2000)*0.005
	st.EngineTemperature = clamp(st.EngineTemperature+(targetTemp-st.EngineTemperature)*0.1*dt, 70, 120)

	// Flat-earth displacement: km/h over dt seconds to approximate degrees.
	displacement := st.Speed * dt / 3600 / 111
	headingRad := st.Heading * math.Pi / 180
	st.Latitude += displacement * math.Cos(headingRad)
	st.Longitude += displacement * math.Sin(headingRad)

	if s.rng.Float64() < 0.1 {
		st.Heading = wrapHeading(st.Heading + s.uniform(-30, 30))
	}

	st.LastUpdate = now

	return domain.TelemetrySample{
		ID:                uuid.NewString(),
		VehicleID:         vehicleID,
		Speed:             roundTo(st.Speed, 1),
		EngineRPM:         math.Round(st.EngineRPM),
		FuelLevel:         roundTo(st.FuelLevel, 1),
		EngineTemperature: roundTo(st.EngineTemperature, 1),
		Latitude:          roundTo(st.Latitude, 6),
		Longitude:         roundTo(st.Longitude, 6),
		Timestamp:         now,
	}
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func wrapHeading(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

func roundTo(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}
