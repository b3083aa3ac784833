package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"car-telemetry/backend/internal/config"
	"car-telemetry/backend/internal/domain"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(ctx context.Context, cfg *config.Config) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?pool_max_conns=%d",
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBMaxConns,
	)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create db pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// ── Vehicle registry ─────────────────────────────────────────

func (s *PostgresStore) CreateVehicle(ctx context.Context, v *domain.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, name, model, year, license_plate, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.pool.Exec(ctx, query,
		v.ID, v.Name, v.Model, v.Year, v.LicensePlate, v.IsActive, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert vehicle %s: %w", v.ID, err)
	}
	return nil
}

func (s *PostgresStore) ListActiveVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	query := `
		SELECT id, name, model, year, license_plate, is_active, created_at
		FROM vehicles
		WHERE is_active
		ORDER BY created_at
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.Name, &v.Model, &v.Year, &v.LicensePlate, &v.IsActive, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (s *PostgresStore) ListActiveVehicleIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM vehicles WHERE is_active ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list active vehicle ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan vehicle id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `
		SELECT id, name, model, year, license_plate, is_active, created_at
		FROM vehicles
		WHERE id = $1
	`
	var v domain.Vehicle
	err := s.pool.QueryRow(ctx, query, id).
		Scan(&v.ID, &v.Name, &v.Model, &v.Year, &v.LicensePlate, &v.IsActive, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vehicle %s: %w", id, err)
	}
	return &v, nil
}

func (s *PostgresStore) UpdateVehicle(ctx context.Context, v *domain.Vehicle) error {
	query := `
		UPDATE vehicles
		SET name = $2, model = $3, year = $4, license_plate = $5
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query, v.ID, v.Name, v.Model, v.Year, v.LicensePlate)
	if err != nil {
		return fmt.Errorf("update vehicle %s: %w", v.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeactivateVehicle(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE vehicles SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate vehicle %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ── Telemetry history ────────────────────────────────────────

var telemetryColumns = []string{
	"id",
	"vehicle_id",
	"speed",
	"engine_rpm",
	"fuel_level",
	"engine_temperature",
	"latitude",
	"longitude",
	"timestamp",
}

func (s *PostgresStore) BatchInsert(ctx context.Context, samples []*domain.TelemetrySample) error {
	if len(samples) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(samples))
	for i, t := range samples {
		rows[i] = []interface{}{
			t.ID,
			t.VehicleID,
			t.Speed,
			t.EngineRPM,
			t.FuelLevel,
			t.EngineTemperature,
			t.Latitude,
			t.Longitude,
			t.Timestamp,
		}
	}

	_, err := s.pool.CopyFrom(
		ctx,
		pgx.Identifier{"vehicle_telemetry"},
		telemetryColumns,
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("CopyFrom failed for batch of %d: %w", len(samples), err)
	}

	return nil
}

func (s *PostgresStore) RecentTelemetry(ctx context.Context, vehicleID string, limit int) ([]domain.TelemetrySample, error) {
	query := `
		SELECT id, vehicle_id, speed, engine_rpm, fuel_level, engine_temperature, latitude, longitude, timestamp
		FROM vehicle_telemetry
		WHERE vehicle_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, query, vehicleID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent telemetry for %s: %w", vehicleID, err)
	}
	defer rows.Close()
	return scanSamples(rows)
}

func (s *PostgresStore) TelemetrySince(ctx context.Context, vehicleID string, from time.Time) ([]domain.TelemetrySample, error) {
	query := `
		SELECT id, vehicle_id, speed, engine_rpm, fuel_level, engine_temperature, latitude, longitude, timestamp
		FROM vehicle_telemetry
		WHERE vehicle_id = $1 AND timestamp >= $2
		ORDER BY timestamp ASC
	`
	rows, err := s.pool.Query(ctx, query, vehicleID, from)
	if err != nil {
		return nil, fmt.Errorf("telemetry since %s for %s: %w", from, vehicleID, err)
	}
	defer rows.Close()
	return scanSamples(rows)
}

func scanSamples(rows pgx.Rows) ([]domain.TelemetrySample, error) {
	var samples []domain.TelemetrySample
	for rows.Next() {
		var t domain.TelemetrySample
		err := rows.Scan(&t.ID, &t.VehicleID, &t.Speed, &t.EngineRPM, &t.FuelLevel,
			&t.EngineTemperature, &t.Latitude, &t.Longitude, &t.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, t)
	}
	return samples, rows.Err()
}
