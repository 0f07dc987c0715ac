// internal/telemetry/metrics.go
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are registered on the default registry, which /metrics serves.
var (
	// RunsTotal counts engine runs by algorithm and outcome (ok|unreachable|error|cached).
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pairdp_runs_total",
		Help: "Pairwise DP runs by algorithm and outcome",
	}, []string{"algorithm", "outcome"})

	// RunDuration tracks wall time per engine run.
	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pairdp_run_duration_seconds",
		Help:    "Pairwise DP run duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
	}, []string{"algorithm"})

	// GridCells tracks grid size (padding included) per run.
	GridCells = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pairdp_grid_cells",
		Help:    "DP grid cells per run",
		Buckets: prometheus.ExponentialBuckets(4, 4, 12),
	})

	// EmissionCache mirrors the DP emission cache counters (hit|miss|reset).
	EmissionCache = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pairdp_emission_cache",
		Help: "Emission cache lookups since the engine was built",
	}, []string{"kind"})

	// StoreLookups counts result store lookups by outcome (hit|miss|error).
	StoreLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pairdp_store_lookups_total",
		Help: "Result store lookups by outcome",
	}, []string{"outcome"})

	// ModelReloads counts server model reloads by outcome (ok|error).
	ModelReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pairdp_model_reloads_total",
		Help: "Model file reloads by outcome",
	}, []string{"outcome"})
)
