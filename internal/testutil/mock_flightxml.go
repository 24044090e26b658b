// Package testutil provides testing utilities for the FlightXML client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for one mock query response.
type MockResponse struct {
	StatusCode int
	Body       string
	Delay      time.Duration
}

// MockFlightXML is a configurable mock FlightXML server for testing.
// Responses are keyed by the query string after the FlightXML2 path prefix
// (e.g. "Enroute?airport=KSFO"), matching the engine's query strings.
type MockFlightXML struct {
	server *httptest.Server

	mu        sync.Mutex
	responses map[string]MockResponse
	sequences map[string][]MockResponse

	// Tracking
	requestCount      int
	lastAuthorization string
	queries           []string
}

// NewMockFlightXML creates and starts a mock server.
func NewMockFlightXML() *MockFlightXML {
	m := &MockFlightXML{
		responses: make(map[string]MockResponse),
		sequences: make(map[string][]MockResponse),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

func (m *MockFlightXML) handle(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimPrefix(r.URL.Path, "/json/FlightXML2/")
	query = strings.TrimPrefix(query, "/")
	if r.URL.RawQuery != "" {
		query += "?" + r.URL.RawQuery
	}

	m.mu.Lock()
	m.requestCount++
	m.lastAuthorization = r.Header.Get("Authorization")
	m.queries = append(m.queries, query)

	resp, ok := m.responses[query]
	if seq, has := m.sequences[query]; has && len(seq) > 0 {
		resp, ok = seq[0], true
		m.sequences[query] = seq[1:]
	}
	m.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `{"error":"unknown operation"}`)
		return
	}

	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, resp.Body)
}

// Respond sets the canned response for a query string.
func (m *MockFlightXML) Respond(query string, resp MockResponse) {
	m.mu.Lock()
	m.responses[query] = resp
	m.mu.Unlock()
}

// RespondSequence queues responses returned one at a time for a query
// string; when the queue drains, the Respond value (if any) applies.
func (m *MockFlightXML) RespondSequence(query string, resps ...MockResponse) {
	m.mu.Lock()
	m.sequences[query] = resps
	m.mu.Unlock()
}

// BaseURL returns the FlightXML2 endpoint root served by the mock.
func (m *MockFlightXML) BaseURL() string {
	return m.server.URL + "/json/FlightXML2/"
}

// RequestCount returns the number of requests received.
func (m *MockFlightXML) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// LastAuthorization returns the Authorization header of the last request.
func (m *MockFlightXML) LastAuthorization() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastAuthorization
}

// Queries returns the query strings received, in order.
func (m *MockFlightXML) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.queries))
	copy(out, m.queries)
	return out
}

// Close shuts the server down.
func (m *MockFlightXML) Close() {
	m.server.Close()
}
