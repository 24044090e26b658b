package fetcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for fetch engine operations. The subscription label is
// the engine's cache key, which is stable and low-cardinality.
var (
	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flightxml_fetches_total",
		Help: "Total fetch deliveries by source and status",
	}, []string{"source", "status"}) // source: live|cache|simulation

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flightxml_fetch_duration_seconds",
		Help:    "Live fetch duration in seconds by subscription",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"subscription"})

	sequenceContinuations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flightxml_sequence_continuations_total",
		Help: "Total pagination continuations by subscription",
	}, []string{"subscription"})

	resultSetSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "flightxml_result_set_size",
		Help: "Current published result set size by subscription",
	}, []string{"subscription"})

	cacheWritebacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flightxml_cache_writebacks_total",
		Help: "Total settled result sets persisted to the cache by subscription",
	}, []string{"subscription"})
)
