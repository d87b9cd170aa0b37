package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scan pipeline instrumentation. Registered on the default registry so an
// embedding process can expose them alongside its own collectors.
var (
	ScansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podds_scans_total",
		Help: "Number of slate scans executed",
	})

	FixturesAnalyzed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podds_fixtures_analyzed_total",
		Help: "Number of fixtures fully analysed",
	})

	FixtureFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podds_fixture_failures_total",
		Help: "Number of fixtures that failed analysis",
	})

	FixturesTimedOut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podds_fixtures_timed_out_total",
		Help: "Number of fixtures dropped because the scan budget expired",
	})

	CouponsBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podds_coupons_built_total",
		Help: "Number of coupons successfully constructed",
	})

	SimCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podds_sim_cache_hits_total",
		Help: "Simulation cache hits",
	})

	SimCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podds_sim_cache_misses_total",
		Help: "Simulation cache misses",
	})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "podds_scan_duration_seconds",
		Help:    "Wall time of a full slate scan",
		Buckets: prometheus.DefBuckets,
	})
)
