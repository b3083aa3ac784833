package pipeline

import (
	"car-telemetry/backend/internal/domain"
	"car-telemetry/backend/internal/metrics"
)

// Dispatcher fans each sample out to the persistence, live-state, and sink
// writers over buffered channels. A full channel drops the sample for that
// consumer rather than blocking the simulation loop.
type Dispatcher struct {
	DBChan    chan *domain.TelemetrySample
	StateChan chan *domain.TelemetrySample
	SinkChan  chan *domain.TelemetrySample
}

// NewDispatcher sizes the three channels; a zero stateSize or sinkSize leaves
// that leg disabled (nil channel, never dispatched to).
func NewDispatcher(dbSize, stateSize, sinkSize int) *Dispatcher {
	d := &Dispatcher{
		DBChan: make(chan *domain.TelemetrySample, dbSize),
	}
	if stateSize > 0 {
		d.StateChan = make(chan *domain.TelemetrySample, stateSize)
	}
	if sinkSize > 0 {
		d.SinkChan = make(chan *domain.TelemetrySample, sinkSize)
	}
	return d
}

func (d *Dispatcher) Dispatch(sample *domain.TelemetrySample) {
	select {
	case d.DBChan <- sample:
	default:
		metrics.DBChannelDrops.Inc()
	}

	if d.StateChan != nil {
		select {
		case d.StateChan <- sample:
		default:
			metrics.StateChannelDrops.Inc()
		}
	}

	if d.SinkChan != nil {
		select {
		case d.SinkChan <- sample:
		default:
			metrics.SinkChannelDrops.Inc()
		}
	}
}

// Close signals the writers to flush and exit once drained.
func (d *Dispatcher) Close() {
	close(d.DBChan)
	if d.StateChan != nil {
		close(d.StateChan)
	}
	if d.SinkChan != nil {
		close(d.SinkChan)
	}
}
