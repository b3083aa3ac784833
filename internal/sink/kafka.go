// Package sink feeds raw telemetry samples to downstream consumers.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"car-telemetry/backend/internal/domain"
)

// KafkaSink writes samples to a Kafka topic, keyed by vehicle id so one
// vehicle's history stays in partition order. The writer batches and sends
// asynchronously; delivery is best effort.
type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaSink{writer: w}
}

func (s *KafkaSink) Write(ctx context.Context, sample *domain.TelemetrySample) error {
	data, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(sample.VehicleID),
		Value: data,
	})
}

// Close flushes pending messages and closes the connection.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
