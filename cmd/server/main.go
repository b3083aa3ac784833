package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"car-telemetry/backend/internal/config"
	"car-telemetry/backend/internal/domain"
	"car-telemetry/backend/internal/hub"
	"car-telemetry/backend/internal/pipeline"
	"car-telemetry/backend/internal/sink"
	"car-telemetry/backend/internal/store"
	httptransport "car-telemetry/backend/internal/transport/http"
)

func main() {
	// Missing .env just means system environment variables apply.
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("store init failed", zap.Error(err))
	}
	defer st.Close()

	dispatch := buildDispatcher(cfg)

	broadcastHub := hub.New(log.Named("hub"))
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	sim := pipeline.NewSimulator(rng, cfg.BaseLat, cfg.BaseLng)
	evaluator := pipeline.NewAlertEvaluator(domain.DefaultThresholds)
	loop := pipeline.NewLoop(
		log.Named("loop"),
		st,
		sim,
		evaluator,
		broadcastHub,
		dispatch,
		time.Duration(cfg.SimTickMS)*time.Millisecond,
	)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		writer := pipeline.NewDBWriter(
			dispatch.DBChan,
			st,
			log.Named("db_writer"),
			cfg.DBBatchSize,
			time.Duration(cfg.DBFlushIntervalMS)*time.Millisecond,
		)
		writer.Run(ctx)
	}()

	if dispatch.StateChan != nil {
		cache, err := store.NewRedisStore(ctx, cfg)
		if err != nil {
			log.Fatal("redis init failed", zap.Error(err))
		}
		defer cache.Close() //nolint:errcheck
		wg.Add(1)
		go func() {
			defer wg.Done()
			pipeline.NewStateWriter(dispatch.StateChan, cache, log.Named("state_writer")).Run(ctx)
		}()
	}

	if dispatch.SinkChan != nil {
		kafkaSink := sink.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaSink.Close() //nolint:errcheck
		wg.Add(1)
		go func() {
			defer wg.Done()
			pipeline.NewSinkWriter(dispatch.SinkChan, kafkaSink, log.Named("sink_writer")).Run(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		loop.Run(ctx)
	}()

	server := httptransport.NewServer(cfg, log.Named("http"), st, broadcastHub)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown failed", zap.Error(err))
	}

	wg.Wait()
	log.Info("shutdown complete")
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Store, error) {
	switch cfg.StorageBackend {
	case "memory":
		log.Info("using in-memory storage backend")
		return store.NewMemoryStore(), nil
	default:
		log.Info("using postgres storage backend",
			zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))
		return store.NewPostgresStore(ctx, cfg)
	}
}

func buildDispatcher(cfg *config.Config) *pipeline.Dispatcher {
	stateSize := 0
	if cfg.RedisAddr != "" {
		stateSize = cfg.StateChannelSize
	}
	sinkSize := 0
	if len(cfg.KafkaBrokers) > 0 {
		sinkSize = cfg.SinkChannelSize
	}
	return pipeline.NewDispatcher(cfg.DBChannelSize, stateSize, sinkSize)
}
