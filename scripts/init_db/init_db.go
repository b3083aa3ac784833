package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found — using system environment variables")
	}

	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		dbGetEnv("DB_USER", "telemetry_user"),
		dbGetEnv("DB_PASSWORD", "telemetry_password"),
		dbGetEnv("DB_HOST", "localhost"),
		dbGetEnv("DB_PORT", "5432"),
		dbGetEnv("DB_NAME", "car_telemetry"),
	)

	ctx := context.Background()

	fmt.Println("Connecting to Postgres...")
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		log.Fatalf("Connection failed: %v\n\nMake sure Postgres is running:\n  docker-compose up -d postgres", err)
	}
	defer conn.Close(ctx)
	fmt.Println("✓ Connected")

	step1_vehicles_table(ctx, conn)
	step2_telemetry_table(ctx, conn)
	step3_indexes(ctx, conn)
	step4_verify(ctx, conn)

	fmt.Println("\n✅ Database initialised successfully")
	fmt.Println("   Run next: go run ./scripts/seed_vehicles")
}

// ─────────────────────────────────────────────────────────────
// Step 1 — vehicles table
// ─────────────────────────────────────────────────────────────
func step1_vehicles_table(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 1: vehicles table ──────────────────────")

	execOrFatal(ctx, conn, `
		CREATE TABLE IF NOT EXISTS vehicles (
			id            UUID         PRIMARY KEY,
			name          TEXT         NOT NULL,
			model         TEXT         NOT NULL DEFAULT '',
			year          INT          NOT NULL DEFAULT 0,
			license_plate TEXT         NOT NULL DEFAULT '',

			-- Soft delete: deactivated vehicles keep their history
			is_active     BOOLEAN      NOT NULL DEFAULT TRUE,
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
	`, "vehicles table")
}

// ─────────────────────────────────────────────────────────────
// Step 2 — vehicle_telemetry table
// ─────────────────────────────────────────────────────────────
func step2_telemetry_table(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 2: vehicle_telemetry table ─────────────")

	execOrFatal(ctx, conn, `
		CREATE TABLE IF NOT EXISTS vehicle_telemetry (
			id                  UUID             NOT NULL,
			vehicle_id          UUID             NOT NULL,

			speed               DOUBLE PRECISION NOT NULL,
			engine_rpm          DOUBLE PRECISION NOT NULL,
			fuel_level          DOUBLE PRECISION NOT NULL,
			engine_temperature  DOUBLE PRECISION NOT NULL,
			latitude            DOUBLE PRECISION NOT NULL,
			longitude           DOUBLE PRECISION NOT NULL,

			-- TIMESTAMPTZ always stores in UTC
			timestamp           TIMESTAMPTZ      NOT NULL
		);
	`, "vehicle_telemetry table")
}

// ─────────────────────────────────────────────────────────────
// Step 3 — Indexes
// ─────────────────────────────────────────────────────────────
func step3_indexes(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 3: Indexes ─────────────────────────────")

	// History and export both query by vehicle + time range
	execOrFatal(ctx, conn, `
		CREATE INDEX IF NOT EXISTS idx_telemetry_vehicle_time
		ON vehicle_telemetry (vehicle_id, timestamp DESC);
	`, "vehicle/time index")

	// The simulation loop lists active vehicles every tick
	execOrFatal(ctx, conn, `
		CREATE INDEX IF NOT EXISTS idx_vehicles_active
		ON vehicles (is_active)
		WHERE is_active;
	`, "active vehicle index")
}

// ─────────────────────────────────────────────────────────────
// Step 4 — Verification
// ─────────────────────────────────────────────────────────────
func step4_verify(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 4: Verification ────────────────────────")

	for _, table := range []string{"vehicles", "vehicle_telemetry"} {
		var count int
		err := conn.QueryRow(ctx,
			"SELECT COUNT(*) FROM information_schema.tables WHERE table_name = $1", table,
		).Scan(&count)
		if err != nil || count == 0 {
			log.Fatalf("Verification failed for table %s: %v", table, err)
		}
		fmt.Printf("  ✓ table %s exists\n", table)
	}
}

func execOrFatal(ctx context.Context, conn *pgx.Conn, sql, what string) {
	if _, err := conn.Exec(ctx, sql); err != nil {
		log.Fatalf("Failed to create %s: %v", what, err)
	}
	fmt.Printf("  ✓ %s\n", what)
}

func dbGetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
