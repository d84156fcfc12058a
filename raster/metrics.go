package raster

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var windowReads = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "griddata_raster_window_reads_total",
	Help: "Number of pixel windows read, by backing (source or memory).",
}, []string{"backing"})
