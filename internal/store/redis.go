package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"car-telemetry/backend/internal/config"
	"car-telemetry/backend/internal/domain"
)

// RedisStore holds last-known vehicle state for fast dashboard reads and
// republishes each sample on a pub/sub channel for out-of-process consumers.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(ctx context.Context, cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     20,
		MinIdleConns: 5,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// LiveStateUpdate writes the sample as the vehicle's current state (with a
// TTL so stale vehicles age out), refreshes the geo index, and publishes the
// sample on the live channel. All four commands go in one pipeline.
func (r *RedisStore) LiveStateUpdate(ctx context.Context, sample *domain.TelemetrySample) error {
	stateData := map[string]interface{}{
		"vehicle_id":         sample.VehicleID,
		"speed":              sample.Speed,
		"engine_rpm":         sample.EngineRPM,
		"fuel_level":         sample.FuelLevel,
		"engine_temperature": sample.EngineTemperature,
		"latitude":           sample.Latitude,
		"longitude":          sample.Longitude,
		"timestamp":          sample.Timestamp.Unix(),
	}

	pubPayload, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("failed to marshal sample: %w", err)
	}

	stateKey := fmt.Sprintf("vehicle:%s:state", sample.VehicleID)

	pipe := r.client.Pipeline()

	pipe.HSet(ctx, stateKey, stateData)
	pipe.Expire(ctx, stateKey, 30*time.Second)
	pipe.GeoAdd(ctx, "vehicles:geo", &redis.GeoLocation{
		Name:      sample.VehicleID,
		Longitude: sample.Longitude,
		Latitude:  sample.Latitude,
	})
	pipe.Publish(ctx, "telemetry:live", pubPayload)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("redis pipeline failed: %w", err)
	}

	return nil
}
