// Package flightxml provides typed FlightXML2 bindings for the generic
// fetch engine: the Flight record, response decoders, and query
// constructors for the airport board operations.
package flightxml

import (
	"encoding/json"
	"fmt"

	"github.com/flightwatch/flightxml-client/pkg/request"
)

// DefaultBatchSize is the FlightXML2 default page size for board queries.
const DefaultBatchSize = 15

// Flight is one flight record as returned by the Enroute, Departed,
// Arrived and Scheduled operations. All fields are value types so Flight
// is comparable and deduplicates by value equality.
type Flight struct {
	Ident                string `json:"ident"`
	AircraftType         string `json:"aircrafttype"`
	Origin               string `json:"origin"`
	Destination          string `json:"destination"`
	FiledDepartureTime   int64  `json:"filed_departuretime"`
	EstimatedArrivalTime int64  `json:"estimatedarrivaltime"`
}

// board is the inner payload shared by all four board operations; the JSON
// field carrying the flight array differs per operation.
type board struct {
	NextOffset int      `json:"next_offset"`
	Enroute    []Flight `json:"enroute"`
	Departures []Flight `json:"departures"`
	Arrivals   []Flight `json:"arrivals"`
	Scheduled  []Flight `json:"scheduled"`
}

func (b board) flights() []Flight {
	switch {
	case b.Enroute != nil:
		return b.Enroute
	case b.Departures != nil:
		return b.Departures
	case b.Arrivals != nil:
		return b.Arrivals
	default:
		return b.Scheduled
	}
}

func decodeBoard(data []byte, envelope string) ([]Flight, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", envelope, err)
	}

	inner, ok := raw[envelope]
	if !ok {
		return nil, fmt.Errorf("decode %s response: missing result envelope", envelope)
	}

	var b board
	if err := json.Unmarshal(inner, &b); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", envelope, err)
	}

	return b.flights(), nil
}

// DecodeEnroute parses an Enroute response body.
func DecodeEnroute(data []byte) ([]Flight, error) {
	return decodeBoard(data, "EnrouteResult")
}

// DecodeDeparted parses a Departed response body.
func DecodeDeparted(data []byte) ([]Flight, error) {
	return decodeBoard(data, "DepartedResult")
}

// DecodeArrived parses an Arrived response body.
func DecodeArrived(data []byte) ([]Flight, error) {
	return decodeBoard(data, "ArrivedResult")
}

// DecodeScheduled parses a Scheduled response body.
func DecodeScheduled(data []byte) ([]Flight, error) {
	return decodeBoard(data, "ScheduledResult")
}

func boardQuery(op, airport, filter string) func(offset, batchSize int) string {
	return func(offset, batchSize int) string {
		q := request.NewQuery(op).Str("airport", airport)
		if filter != "" {
			q.Str("filter", filter)
		}
		return q.
			Int("howMany", batchSize, DefaultBatchSize).
			Int("offset", offset, 0).
			Build()
	}
}

// EnrouteQuery returns a query constructor for flights en route to airport.
// filter narrows to "airline" or "ga" traffic; empty means no filter.
func EnrouteQuery(airport, filter string) func(offset, batchSize int) string {
	return boardQuery("Enroute", airport, filter)
}

// DepartedQuery returns a query constructor for flights departed from airport.
func DepartedQuery(airport, filter string) func(offset, batchSize int) string {
	return boardQuery("Departed", airport, filter)
}

// ArrivedQuery returns a query constructor for flights arrived at airport.
func ArrivedQuery(airport, filter string) func(offset, batchSize int) string {
	return boardQuery("Arrived", airport, filter)
}

// ScheduledQuery returns a query constructor for scheduled departures from airport.
func ScheduledQuery(airport, filter string) func(offset, batchSize int) string {
	return boardQuery("Scheduled", airport, filter)
}
