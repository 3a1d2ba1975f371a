package observability_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weatherdash/weatherdash/internal/dashboard"
	"github.com/weatherdash/weatherdash/internal/observability"
)

var _ dashboard.Recorder = (*observability.Metrics)(nil)

func TestMetrics_Counters(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())

	m.SnapshotFetched(dashboard.OutcomeReady)
	m.SnapshotFetched(dashboard.OutcomeReady)
	m.SnapshotFetched(dashboard.OutcomeEmpty)
	m.Seeded(dashboard.OutcomeExisted)
	m.IngestRan(dashboard.OutcomeError)
	m.HourlyDiscarded()

	assert.InDelta(t, 2, testutil.ToFloat64(m.SnapshotFetches.WithLabelValues("ready")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SnapshotFetches.WithLabelValues("empty")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SeedResults.WithLabelValues("existed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.IngestRuns.WithLabelValues("error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.HourlyDiscards), 0)
}

func TestMetrics_CircuitState(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())

	m.CircuitStateChanged("weather-backend", gobreaker.StateClosed, gobreaker.StateOpen)
	assert.InDelta(t, 2, testutil.ToFloat64(m.BackendCircuitState), 0)

	m.CircuitStateChanged("weather-backend", gobreaker.StateOpen, gobreaker.StateHalfOpen)
	assert.InDelta(t, 1, testutil.ToFloat64(m.BackendCircuitState), 0)
}

func TestMetrics_Registered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	m.IngestRan(dashboard.OutcomeOK)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "weatherdash_ingest_runs_total")
	assert.Contains(t, names, "weatherdash_hourly_discarded_total")
	assert.Contains(t, names, "weatherdash_backend_circuit_state")
}
