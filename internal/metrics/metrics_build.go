package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConfigTransformCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tfbp_config_transform_count",
			Help: "Total number of bundler configurations transformed, by target",
		},
		[]string{"target"},
	)

	TargetBuildFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tfbp_target_build_failed",
			Help: "Number of times a target build has failed",
		},
		[]string{"target", "error_type"},
	)

	TargetBuildCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tfbp_target_build_count",
			Help: "Total number of target builds run",
		},
	)

	TargetBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tfbp_target_build_duration_seconds",
			Help:    "Target build duration in seconds",
			Buckets: []float64{0.1, 0.2, 0.5, 1, 1.5, 2, 5, 10, 30, 60},
		},
		[]string{"target"},
	)

	LastTargetBuildEnd = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tfbp_last_target_build_end_timestamp",
			Help: "Unix timestamp of when the last target build ended",
		},
		[]string{"target"},
	)
)

func TargetBuildSucceeded(target string, startTime time.Time) {
	TargetBuildCount.Inc()
	TargetBuildDuration.WithLabelValues(target).Observe(time.Since(startTime).Seconds())
	LastTargetBuildEnd.WithLabelValues(target).SetToCurrentTime()
}
