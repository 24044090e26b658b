package request

import (
	"context"
	"net/http"
)

// DefaultBaseURL is the FlightXML2 JSON endpoint root. Every query string
// is appended directly to it.
const DefaultBaseURL = "https://flightxml.flightaware.com/json/FlightXML2/"

// Build constructs an authenticated GET request for the given query string.
// It returns (nil, false) when credentials are absent; that is the signal
// that the caller should fall back to simulation mode, not an error.
func Build(ctx context.Context, baseURL, query string, creds Credentials) (*http.Request, bool) {
	if !creds.Configured() {
		return nil, false
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+query, nil)
	if err != nil {
		// Query strings are produced by Query and are always well-formed;
		// a malformed base URL degrades to the no-request path.
		return nil, false
	}

	req.Header.Set("Authorization", creds.basicAuth())
	req.Header.Set("Accept", "application/json")

	return req, true
}
