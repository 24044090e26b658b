// Package metrics provides the centralized Prometheus registry reference
// for the FlightXML client. All metrics are defined in their respective
// packages (fetcher, cache, simulation) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the FlightXML client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Fetch Engine Metrics (pkg/fetcher):
//   - flightxml_fetches_total{source, status} (Counter): Deliveries by path
//     (live, cache, simulation) and outcome (ok, transport_error, http_error,
//     decode_error)
//   - flightxml_fetch_duration_seconds{subscription} (Histogram): Live fetch
//     duration by subscription cache key
//   - flightxml_sequence_continuations_total{subscription} (Counter):
//     Pagination continuations performed
//   - flightxml_result_set_size{subscription} (Gauge): Published result set size
//   - flightxml_cache_writebacks_total{subscription} (Counter): Settled result
//     sets persisted to the cache
//
// Cache Metrics (pkg/cache):
//   - flightxml_cache_hits_total{backend} (Counter): Cache hits by backend
//   - flightxml_cache_misses_total{backend} (Counter): Cache misses by backend
//   - flightxml_cache_write_bytes{backend} (Gauge): Size of the most recent write
//   - flightxml_cache_errors_total{backend, operation} (Counter): Backend errors
//
// Simulation Metrics (pkg/simulation):
//   - flightxml_simulation_hits_total (Counter): Fixture lookups that matched
//   - flightxml_simulation_misses_total (Counter): Fixture lookups that missed
//   - flightxml_simulation_captures_total (Counter): Live bodies captured
