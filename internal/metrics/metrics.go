package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_sim_ticks_total",
		Help: "Simulation ticks executed.",
	})
	TickFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_sim_tick_fetch_failures_total",
		Help: "Ticks skipped because the active-vehicle fetch failed.",
	})
	SamplesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_samples_generated_total",
		Help: "Telemetry samples produced by the simulator.",
	})
	AlertsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_alerts_generated_total",
		Help: "Threshold alerts produced.",
	})
	BroadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_broadcasts_total",
		Help: "Batch messages published to the hub.",
	})
	BroadcastSendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_broadcast_send_failures_total",
		Help: "Individual viewer sends that failed during a broadcast.",
	})
	ConnectedViewers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "telemetry_connected_viewers",
		Help: "Currently attached viewer connections.",
	})
	DBWriteSuccess = promauto.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_db_write_success_total",
		Help: "Samples persisted to the telemetry store.",
	})
	DBWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_db_write_failures_total",
		Help: "Samples dropped after persistence retries.",
	})
	DBChannelDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_db_channel_drops_total",
		Help: "Samples dropped because the DB writer channel was full.",
	})
	StateChannelDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_state_channel_drops_total",
		Help: "Samples dropped because the state writer channel was full.",
	})
	SinkChannelDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_sink_channel_drops_total",
		Help: "Samples dropped because the sink channel was full.",
	})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
