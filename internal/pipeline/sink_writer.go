package pipeline

import (
	"context"

	"go.uber.org/zap"

	"car-telemetry/backend/internal/domain"
)

// SampleSink is an optional downstream feed for raw samples (e.g. a Kafka
// topic consumed by rule engines or archival jobs).
type SampleSink interface {
	Write(ctx context.Context, sample *domain.TelemetrySample) error
}

// SinkWriter drains the dispatcher's sink channel into a SampleSink.
type SinkWriter struct {
	ch   <-chan *domain.TelemetrySample
	sink SampleSink
	log  *zap.Logger
}

func NewSinkWriter(ch <-chan *domain.TelemetrySample, sink SampleSink, log *zap.Logger) *SinkWriter {
	return &SinkWriter{ch: ch, sink: sink, log: log}
}

func (w *SinkWriter) Run(ctx context.Context) {
	for {
		select {
		case sample, ok := <-w.ch:
			if !ok {
				return
			}
			if err := w.sink.Write(ctx, sample); err != nil {
				w.log.Warn("sink write failed",
					zap.String("vehicle_id", sample.VehicleID), zap.Error(err))
			}

		case <-ctx.Done():
			return
		}
	}
}
