package store

import (
	"context"
	"errors"
	"time"

	"car-telemetry/backend/internal/domain"
)

// ErrNotFound is returned when a vehicle id has no registry record.
var ErrNotFound = errors.New("vehicle not found")

// Store combines the vehicle registry and the append-only telemetry history.
// Postgres backs it in production; the memory implementation covers dev mode
// and tests.
type Store interface {
	CreateVehicle(ctx context.Context, v *domain.Vehicle) error
	ListActiveVehicles(ctx context.Context) ([]domain.Vehicle, error)
	ListActiveVehicleIDs(ctx context.Context) ([]string, error)
	GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error)
	UpdateVehicle(ctx context.Context, v *domain.Vehicle) error
	DeactivateVehicle(ctx context.Context, id string) error

	BatchInsert(ctx context.Context, samples []*domain.TelemetrySample) error
	RecentTelemetry(ctx context.Context, vehicleID string, limit int) ([]domain.TelemetrySample, error)
	TelemetrySince(ctx context.Context, vehicleID string, from time.Time) ([]domain.TelemetrySample, error)

	Close()
}
