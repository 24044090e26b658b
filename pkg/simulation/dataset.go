// Package simulation provides the canned-response dataset and the time
// source used when no API credentials are configured.
package simulation

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	simulationHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flightxml_simulation_hits_total",
		Help: "Total number of fixture lookups that found a payload",
	})

	simulationMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flightxml_simulation_misses_total",
		Help: "Total number of fixture lookups that found nothing",
	})

	simulationCaptures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flightxml_simulation_captures_total",
		Help: "Total number of live response bodies captured into the dataset",
	})
)

// Dataset maps exact query strings to canned response payloads. It stands in
// for the live API when no credentials are configured, and can optionally
// record real responses when capture mode is enabled.
//
// A Dataset is shared by all subscriptions in a process; access is
// internally locked with last-writer-wins semantics.
type Dataset struct {
	mu        sync.RWMutex
	responses map[string]string
	capture   bool
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{responses: make(map[string]string)}
}

// Add stores a fixture payload under the exact query string.
func (d *Dataset) Add(query, body string) {
	d.mu.Lock()
	d.responses[query] = body
	d.mu.Unlock()
}

// Lookup returns the fixture payload for the exact query string.
func (d *Dataset) Lookup(query string) (string, bool) {
	d.mu.RLock()
	body, ok := d.responses[query]
	d.mu.RUnlock()

	if ok {
		simulationHits.Inc()
	} else {
		simulationMisses.Inc()
	}
	return body, ok
}

// SetCapture enables or disables capture mode.
func (d *Dataset) SetCapture(enabled bool) {
	d.mu.Lock()
	d.capture = enabled
	d.mu.Unlock()
}

// Capture records a live response body under the query string when capture
// mode is enabled; otherwise it is a no-op.
func (d *Dataset) Capture(query, body string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.capture {
		return
	}
	d.responses[query] = body
	simulationCaptures.Inc()
}

// Len returns the number of stored fixtures.
func (d *Dataset) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.responses)
}
