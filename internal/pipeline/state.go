package pipeline

import "time"

// VehicleState is the mutable per-vehicle simulation state. It is owned by
// the simulation loop: created on first sighting of an active vehicle,
// mutated only by Simulator.Step, and discarded when the vehicle leaves the
// active set. No locking — single writer.
type VehicleState struct {
	Speed             float64 // km/h, [0, 140]
	EngineRPM         float64 // [800, 6500]
	FuelLevel         float64 // percentage, floor 0
	EngineTemperature float64 // Celsius, [70, 120]
	Latitude          float64
	Longitude         float64
	Heading           float64 // degrees, [0, 360)
	LastUpdate        time.Time
}
