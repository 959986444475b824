package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	placementsAccepted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotnik",
			Name:      "placements_accepted_total",
			Help:      "Count of appointment placements accepted, by operation.",
		},
		[]string{"op"},
	)

	placementsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotnik",
			Name:      "placements_rejected_total",
			Help:      "Count of appointment placements rejected, by reason.",
		},
		[]string{"reason"},
	)

	sweepTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotnik",
			Name:      "sweep_transitions_total",
			Help:      "Count of lifecycle transitions applied by the sweep, by target status.",
		},
		[]string{"to"},
	)

	gridCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotnik",
			Name:      "grid_cache_requests_total",
			Help:      "Count of day-grid cache lookups, by outcome.",
		},
		[]string{"outcome"},
	)

	gridBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "slotnik",
			Name:      "grid_build_duration_seconds",
			Help:      "Time to resolve and render one resource-day grid.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1},
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			placementsAccepted,
			placementsRejected,
			sweepTransitions,
			gridCacheHits,
			gridBuildDuration,
		)
	})
}

func IncPlacementAccepted(op string) {
	placementsAccepted.WithLabelValues(op).Inc()
}

func IncPlacementRejected(reason string) {
	placementsRejected.WithLabelValues(reason).Inc()
}

func IncSweepTransition(to string) {
	sweepTransitions.WithLabelValues(to).Inc()
}

func IncGridCacheHit() {
	gridCacheHits.WithLabelValues("hit").Inc()
}

func IncGridCacheMiss() {
	gridCacheHits.WithLabelValues("miss").Inc()
}

func ObserveGridBuild(seconds float64) {
	gridBuildDuration.Observe(seconds)
}
