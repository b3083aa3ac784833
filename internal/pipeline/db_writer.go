package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"car-telemetry/backend/internal/domain"
	"car-telemetry/backend/internal/metrics"
)

// TelemetryAppender is the narrow slice of the storage collaborator the
// writer needs: append-only sample persistence.
type TelemetryAppender interface {
	BatchInsert(ctx context.Context, samples []*domain.TelemetrySample) error
}

// DBWriter drains the dispatcher's DB channel and persists samples in
// batches, keeping storage latency off the simulation tick path. A failed
// flush is retried once, then the batch is dropped with a log line —
// persistence failures are never fatal to simulation.
type DBWriter struct {
	ch        <-chan *domain.TelemetrySample
	db        TelemetryAppender
	log       *zap.Logger
	batchSize int
	flush     time.Duration
}

func NewDBWriter(ch <-chan *domain.TelemetrySample, db TelemetryAppender, log *zap.Logger, batchSize int, flush time.Duration) *DBWriter {
	return &DBWriter{ch: ch, db: db, log: log, batchSize: batchSize, flush: flush}
}

func (w *DBWriter) Run(ctx context.Context) {
	batch := make([]*domain.TelemetrySample, 0, w.batchSize)
	ticker := time.NewTicker(w.flush)
	defer ticker.Stop()

	for {
		select {
		case sample, ok := <-w.ch:
			if !ok {
				w.flushBatch(context.Background(), batch)
				return
			}
			batch = append(batch, sample)
			if len(batch) >= w.batchSize {
				w.flushBatch(ctx, batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.flushBatch(ctx, batch)
				batch = batch[:0]
			}

		case <-ctx.Done():
			w.flushBatch(context.Background(), batch)
			return
		}
	}
}

func (w *DBWriter) flushBatch(ctx context.Context, batch []*domain.TelemetrySample) {
	if len(batch) == 0 {
		return
	}
	err := w.db.BatchInsert(ctx, batch)
	if err != nil {
		w.log.Warn("telemetry write failed, retrying",
			zap.Int("batch", len(batch)), zap.Error(err))
		time.Sleep(500 * time.Millisecond)
		err = w.db.BatchInsert(ctx, batch)
		if err != nil {
			w.log.Error("telemetry write permanently failed, dropping batch",
				zap.Int("batch", len(batch)), zap.Error(err))
			metrics.DBWriteFailures.Add(float64(len(batch)))
			return
		}
	}
	metrics.DBWriteSuccess.Add(float64(len(batch)))
}
