package griddata

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/larschri/griddata/griddata")

var (
	pointsComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "griddata_points_total",
		Help: "Number of query points computed, by the method that produced the value.",
	}, []string{"outcome"})

	computeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "griddata_compute_duration_seconds",
		Help:    "Duration of complete computations.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"mode"})
)

// Outcomes recorded by pointsComputed.
const (
	outcomePrimary = "primary"
	outcomeBackup  = "backup"
	outcomeDefault = "default"
)
