// Package observability exposes the dashboard's sync outcomes as Prometheus
// metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
)

const namespace = "weatherdash"

// Metrics holds the Prometheus counters and gauges for the sync engine.
type Metrics struct {
	SnapshotFetches *prometheus.CounterVec // labels: outcome={ready,empty,error}
	SeedResults     *prometheus.CounterVec // labels: outcome={created,existed,failed}
	IngestRuns      *prometheus.CounterVec // labels: outcome={ok,error}
	HourlyDiscards  prometheus.Counter

	// BackendCircuitState is 0 when closed, 1 when half-open and 2 when open.
	BackendCircuitState prometheus.Gauge
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SnapshotFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_fetch_total",
			Help:      "Current-snapshot fetches by outcome.",
		}, []string{"outcome"}),
		SeedResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seed_total",
			Help:      "Preset location creations by outcome.",
		}, []string{"outcome"}),
		IngestRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_runs_total",
			Help:      "Backend ingestion triggers by outcome.",
		}, []string{"outcome"}),
		HourlyDiscards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hourly_discarded_total",
			Help:      "Hourly forecast responses dropped because the selection moved on.",
		}),
		BackendCircuitState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backend_circuit_state",
			Help:      "Backend circuit breaker state: 0 closed, 1 half-open, 2 open.",
		}),
	}

	reg.MustRegister(
		m.SnapshotFetches,
		m.SeedResults,
		m.IngestRuns,
		m.HourlyDiscards,
		m.BackendCircuitState,
	)

	return m
}

// SnapshotFetched counts one settled current-snapshot request.
func (m *Metrics) SnapshotFetched(outcome string) {
	m.SnapshotFetches.WithLabelValues(outcome).Inc()
}

// Seeded counts one preset entry.
func (m *Metrics) Seeded(outcome string) {
	m.SeedResults.WithLabelValues(outcome).Inc()
}

// IngestRan counts one ingestion trigger.
func (m *Metrics) IngestRan(outcome string) {
	m.IngestRuns.WithLabelValues(outcome).Inc()
}

// HourlyDiscarded counts one superseded hourly response.
func (m *Metrics) HourlyDiscarded() {
	m.HourlyDiscards.Inc()
}

// CircuitStateChanged tracks the backend breaker. Its signature matches the
// breaker's OnStateChange hook.
func (m *Metrics) CircuitStateChanged(_ string, _ gobreaker.State, to gobreaker.State) {
	m.BackendCircuitState.Set(float64(to))
}
