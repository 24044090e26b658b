// Package request builds authenticated FlightXML requests and query strings.
package request

import (
	"encoding/base64"
	"strings"
)

// Credentials is the configured "account:api-key" string. An empty value is
// not an error: it signals simulation mode.
type Credentials string

// Configured reports whether a non-empty credential string is present.
func (c Credentials) Configured() bool {
	return strings.TrimSpace(string(c)) != ""
}

// Account returns the account half of "account:api-key" (for logging;
// the key half must never be logged).
func (c Credentials) Account() string {
	account, _, _ := strings.Cut(string(c), ":")
	return account
}

// basicAuth returns the Authorization header value for the credential pair.
func (c Credentials) basicAuth() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c))
}
