package pipeline

import (
	"context"

	"go.uber.org/zap"

	"car-telemetry/backend/internal/domain"
)

// LiveStateStore mirrors last-known vehicle state into a fast cache so other
// surfaces (ops dashboards, geo queries) can read it without hitting the
// telemetry history store.
type LiveStateStore interface {
	LiveStateUpdate(ctx context.Context, sample *domain.TelemetrySample) error
}

// StateWriter drains the dispatcher's state channel into the live cache.
// Failures are logged and swallowed; the cache is advisory.
type StateWriter struct {
	ch    <-chan *domain.TelemetrySample
	cache LiveStateStore
	log   *zap.Logger
}

func NewStateWriter(ch <-chan *domain.TelemetrySample, cache LiveStateStore, log *zap.Logger) *StateWriter {
	return &StateWriter{ch: ch, cache: cache, log: log}
}

func (w *StateWriter) Run(ctx context.Context) {
	for {
		select {
		case sample, ok := <-w.ch:
			if !ok {
				return
			}
			if err := w.cache.LiveStateUpdate(ctx, sample); err != nil {
				w.log.Warn("live state update failed",
					zap.String("vehicle_id", sample.VehicleID), zap.Error(err))
			}

		case <-ctx.Done():
			return
		}
	}
}
