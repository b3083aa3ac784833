package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"car-telemetry/backend/internal/domain"
	"car-telemetry/backend/internal/metrics"
)

// VehicleLister is the read side of the vehicle registry the loop depends on.
type VehicleLister interface {
	ListActiveVehicleIDs(ctx context.Context) ([]string, error)
}

// Broadcaster receives one batch message per tick.
type Broadcaster interface {
	Publish(msg *domain.BatchMessage)
}

const listTimeout = 5 * time.Second

// Loop drives the whole simulation: once per tick it snapshots the active
// vehicle set, steps each vehicle's state, dispatches samples for
// persistence, evaluates alerts, and publishes a single batch message to the
// hub. The state map is touched by no one else.
type Loop struct {
	log      *zap.Logger
	registry VehicleLister
	sim      *Simulator
	alerts   *AlertEvaluator
	hub      Broadcaster
	dispatch *Dispatcher
	interval time.Duration

	states map[string]*VehicleState
}

func NewLoop(log *zap.Logger, registry VehicleLister, sim *Simulator, alerts *AlertEvaluator, hub Broadcaster, dispatch *Dispatcher, interval time.Duration) *Loop {
	return &Loop{
		log:      log,
		registry: registry,
		sim:      sim,
		alerts:   alerts,
		hub:      hub,
		dispatch: dispatch,
		interval: interval,
		states:   make(map[string]*VehicleState),
	}
}

// Run ticks until ctx is cancelled. Cadence is best effort: a tick that
// overruns the interval delays the next, it is never run concurrently.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.log.Info("simulation loop started", zap.Duration("interval", l.interval))
	for {
		select {
		case <-ticker.C:
			l.tick(ctx)

		case <-ctx.Done():
			l.log.Info("simulation loop stopped")
			return
		}
	}
}

// StateCount reports the number of tracked vehicle states.
func (l *Loop) StateCount() int {
	return len(l.states)
}

func (l *Loop) tick(ctx context.Context) {
	now := time.Now().UTC()
	metrics.TicksTotal.Inc()

	listCtx, cancel := context.WithTimeout(ctx, listTimeout)
	ids, err := l.registry.ListActiveVehicleIDs(listCtx)
	cancel()
	if err != nil {
		// No partial batch from a failed fetch; wait for the next tick.
		metrics.TickFetchFailures.Inc()
		l.log.Warn("active vehicle fetch failed, skipping tick", zap.Error(err))
		return
	}

	active := make(map[string]struct{}, len(ids))
	samples := make([]domain.TelemetrySample, 0, len(ids))
	alerts := make([]domain.Alert, 0)

	for _, id := range ids {
		active[id] = struct{}{}

		st, ok := l.states[id]
		if !ok {
			st = l.sim.Initialize(now)
			l.states[id] = st
		}

		sample := l.sim.Step(id, st, now)
		l.dispatch.Dispatch(&sample)
		alerts = append(alerts, l.alerts.Check(&sample)...)
		samples = append(samples, sample)
	}

	// Prune state for vehicles that left the active set so the map cannot
	// grow without bound.
	for id := range l.states {
		if _, ok := active[id]; !ok {
			delete(l.states, id)
			l.log.Info("dropped simulation state", zap.String("vehicle_id", id))
		}
	}

	metrics.SamplesGenerated.Add(float64(len(samples)))
	metrics.AlertsGenerated.Add(float64(len(alerts)))

	l.hub.Publish(&domain.BatchMessage{
		Type:      domain.BatchMessageType,
		Timestamp: now,
		Data:      samples,
		Alerts:    alerts,
	})
	metrics.BroadcastsTotal.Inc()
}
