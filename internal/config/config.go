package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// HTTP
	HTTPPort    string
	CORSOrigins []string

	// Storage backend: "postgres" or "memory" (dev mode, no external services)
	StorageBackend string

	// Postgres
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBMaxConns int32

	// Redis live-state cache (optional; empty addr disables)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Simulation
	SimTickMS int
	BaseLat   float64
	BaseLng   float64

	// Pipeline channels
	DBChannelSize    int
	StateChannelSize int
	SinkChannelSize  int

	// Batch writer tuning
	DBBatchSize       int
	DBFlushIntervalMS int

	// Optional Kafka sample sink (empty brokers disables)
	KafkaBrokers []string
	KafkaTopic   string
}

func Load() *Config {
	return &Config{
		HTTPPort:          getEnv("HTTP_PORT", "8001"),
		CORSOrigins:       splitNonEmpty(getEnv("CORS_ORIGINS", "*")),
		StorageBackend:    getEnv("STORAGE_BACKEND", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "telemetry_user"),
		DBPassword:        getEnv("DB_PASSWORD", "telemetry_password"),
		DBName:            getEnv("DB_NAME", "car_telemetry"),
		DBMaxConns:        int32(getEnvInt("DB_MAX_CONNS", 15)),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		SimTickMS:         getEnvInt("SIM_TICK_MS", 1000),
		BaseLat:           getEnvFloat("BASE_LAT", 37.7749),
		BaseLng:           getEnvFloat("BASE_LNG", -122.4194),
		DBChannelSize:     getEnvInt("DB_CHANNEL_SIZE", 10000),
		StateChannelSize:  getEnvInt("STATE_CHANNEL_SIZE", 10000),
		SinkChannelSize:   getEnvInt("SINK_CHANNEL_SIZE", 10000),
		DBBatchSize:       getEnvInt("DB_BATCH_SIZE", 500),
		DBFlushIntervalMS: getEnvInt("DB_FLUSH_INTERVAL_MS", 500),
		KafkaBrokers:      splitNonEmpty(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "vehicle-telemetry"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
