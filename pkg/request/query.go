package request

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Query builds a FlightXML query string: the operation name followed by
// name=value pairs, "?" before the first pair and "&" thereafter.
//
// The zero-default elision rule matters for cache and fixture keys: integer
// parameters equal to their stated default are omitted entirely, so the
// first page of a subscription produces the same query string with or
// without explicit paging parameters.
type Query struct {
	b      strings.Builder
	params int
}

// NewQuery starts a query for the given operation (e.g. "Enroute").
func NewQuery(op string) *Query {
	q := &Query{}
	q.b.WriteString(op)
	return q
}

func (q *Query) sep() {
	if q.params == 0 {
		q.b.WriteByte('?')
	} else {
		q.b.WriteByte('&')
	}
	q.params++
}

// Str appends a string parameter.
func (q *Query) Str(name, value string) *Query {
	q.sep()
	q.b.WriteString(name)
	q.b.WriteByte('=')
	q.b.WriteString(url.QueryEscape(value))
	return q
}

// Int appends an integer parameter, omitting it when equal to def.
func (q *Query) Int(name string, value, def int) *Query {
	if value == def {
		return q
	}
	q.sep()
	q.b.WriteString(name)
	q.b.WriteByte('=')
	q.b.WriteString(strconv.Itoa(value))
	return q
}

// Time appends a date parameter encoded as integer epoch seconds.
func (q *Query) Time(name string, t time.Time) *Query {
	q.sep()
	q.b.WriteString(name)
	q.b.WriteByte('=')
	q.b.WriteString(strconv.FormatInt(t.Unix(), 10))
	return q
}

// Build returns the assembled query string.
func (q *Query) Build() string {
	return q.b.String()
}
