// Package hub fans batch messages out to live viewer connections.
package hub

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"car-telemetry/backend/internal/domain"
	"car-telemetry/backend/internal/metrics"
)

// Conn is one viewer's transport handle. SendText must be safe to call from
// the hub's publishing goroutine.
type Conn interface {
	SendText(payload []byte) error
}

// Hub is the viewer-connection registry. Attach and Detach are called from
// per-viewer goroutines while Publish runs on the simulation loop; the set is
// the only state shared between the two.
//
// Delivery is best effort: a send failure on one connection is swallowed and
// never prevents delivery to the others, and the failing connection stays
// registered until its owner detaches it.
type Hub struct {
	log *zap.Logger

	mu    sync.RWMutex
	conns map[Conn]struct{}
}

func New(log *zap.Logger) *Hub {
	return &Hub{
		log:   log,
		conns: make(map[Conn]struct{}),
	}
}

func (h *Hub) Attach(c Conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
	metrics.ConnectedViewers.Inc()
}

// Detach removes c; calling it for a connection that was never attached (or
// already detached) is a no-op.
func (h *Hub) Detach(c Conn) {
	h.mu.Lock()
	_, ok := h.conns[c]
	delete(h.conns, c)
	h.mu.Unlock()
	if ok {
		metrics.ConnectedViewers.Dec()
	}
}

// Count reports the number of attached viewers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Publish marshals msg once and sends it to every attached connection. A
// connection attaching or detaching mid-publish may or may not receive this
// message; that is acceptable.
func (h *Hub) Publish(msg *domain.BatchMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("batch message marshal failed", zap.Error(err))
		return
	}

	h.mu.RLock()
	targets := make([]Conn, 0, len(h.conns))
	for c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.SendText(payload); err != nil {
			metrics.BroadcastSendFailures.Inc()
			h.log.Debug("viewer send failed", zap.Error(err))
		}
	}
}
