package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

type seedVehicle struct {
	name         string
	model        string
	year         int
	licensePlate string
}

var demoFleet = []seedVehicle{
	{"Delivery Van 1", "Ford Transit", 2022, "7ABC123"},
	{"Delivery Van 2", "Ford Transit", 2023, "7DEF456"},
	{"Sedan 1", "Tesla Model 3", 2024, "8GHI789"},
	{"Box Truck 1", "Isuzu NPR", 2021, "9JKL012"},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file — using system environment variables")
	}

	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		seedGetEnv("DB_USER", "telemetry_user"),
		seedGetEnv("DB_PASSWORD", "telemetry_password"),
		seedGetEnv("DB_HOST", "localhost"),
		seedGetEnv("DB_PORT", "5432"),
		seedGetEnv("DB_NAME", "car_telemetry"),
	)

	ctx := context.Background()

	fmt.Println("Connecting to Postgres...")
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		log.Fatalf("Connection failed: %v\n\nRun scripts/init_db first", err)
	}
	defer conn.Close(ctx)
	fmt.Println("✓ Connected")

	step1_seed(ctx, conn)
	step2_verify(ctx, conn)

	fmt.Println("\n✅ Demo fleet seeded successfully")
	fmt.Println("   Run next: go run ./cmd/server")
}

func step1_seed(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 1: Seeding vehicles ────────────────────")

	for _, v := range demoFleet {
		id := uuid.NewString()
		_, err := conn.Exec(ctx, `
			INSERT INTO vehicles (id, name, model, year, license_plate, is_active, created_at)
			VALUES ($1, $2, $3, $4, $5, TRUE, $6)
		`, id, v.name, v.model, v.year, v.licensePlate, time.Now().UTC())
		if err != nil {
			log.Fatalf("Failed to insert %s: %v", v.name, err)
		}
		fmt.Printf("  ✓ %-16s %-14s → %s\n", v.name, v.licensePlate, id)
	}
}

func step2_verify(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 2: Verification ────────────────────────")

	var count int
	if err := conn.QueryRow(ctx, "SELECT COUNT(*) FROM vehicles WHERE is_active").Scan(&count); err != nil {
		log.Fatalf("Verification failed: %v", err)
	}
	fmt.Printf("  ✓ %d active vehicles in registry\n", count)
}

func seedGetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
