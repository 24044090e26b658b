package flightxml

import "testing"

const enrouteBody = `{"EnrouteResult":{"next_offset":2,"enroute":[
	{"ident":"UAL123","aircrafttype":"B738","origin":"KLAX","destination":"KSFO",
	 "filed_departuretime":1714060800,"estimatedarrivaltime":1714066200},
	{"ident":"SWA456","aircrafttype":"B737","origin":"KSAN","destination":"KSFO",
	 "filed_departuretime":1714061400,"estimatedarrivaltime":1714067100}
]}}`

func TestDecodeEnroute(t *testing.T) {
	flights, err := DecodeEnroute([]byte(enrouteBody))
	if err != nil {
		t.Fatalf("DecodeEnroute failed: %v", err)
	}
	if len(flights) != 2 {
		t.Fatalf("Flights: got %d, want 2", len(flights))
	}

	want := Flight{
		Ident:                "UAL123",
		AircraftType:         "B738",
		Origin:               "KLAX",
		Destination:          "KSFO",
		FiledDepartureTime:   1714060800,
		EstimatedArrivalTime: 1714066200,
	}
	if flights[0] != want {
		t.Errorf("First flight: got %+v, want %+v", flights[0], want)
	}
}

func TestDecodeDeparted(t *testing.T) {
	body := `{"DepartedResult":{"next_offset":1,"departures":[
		{"ident":"DAL789","aircrafttype":"A320","origin":"KSFO","destination":"KSEA"}
	]}}`

	flights, err := DecodeDeparted([]byte(body))
	if err != nil {
		t.Fatalf("DecodeDeparted failed: %v", err)
	}
	if len(flights) != 1 || flights[0].Ident != "DAL789" {
		t.Errorf("Flights: got %+v", flights)
	}
}

func TestDecode_MissingEnvelope(t *testing.T) {
	if _, err := DecodeEnroute([]byte(`{"error":"NO DATA"}`)); err == nil {
		t.Error("DecodeEnroute accepted a body without the result envelope")
	}
}

func TestDecode_MalformedJSON(t *testing.T) {
	if _, err := DecodeEnroute([]byte(`not json`)); err == nil {
		t.Error("DecodeEnroute accepted malformed JSON")
	}
}

func TestDecode_EmptyBoard(t *testing.T) {
	flights, err := DecodeArrived([]byte(`{"ArrivedResult":{"next_offset":-1,"arrivals":[]}}`))
	if err != nil {
		t.Fatalf("DecodeArrived failed: %v", err)
	}
	if len(flights) != 0 {
		t.Errorf("Empty board: got %d flights, want 0", len(flights))
	}
}

func TestEnrouteQuery(t *testing.T) {
	tests := []struct {
		name      string
		airport   string
		filter    string
		offset    int
		batchSize int
		want      string
	}{
		{"first page defaults elided", "KSFO", "", 0, 15, "Enroute?airport=KSFO"},
		{"continuation page", "KSFO", "", 15, 15, "Enroute?airport=KSFO&offset=15"},
		{"custom batch size", "KSFO", "", 0, 30, "Enroute?airport=KSFO&howMany=30"},
		{"with filter", "KLAX", "airline", 0, 15, "Enroute?airport=KLAX&filter=airline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnrouteQuery(tt.airport, tt.filter)(tt.offset, tt.batchSize)
			if got != tt.want {
				t.Errorf("Query: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBoardQueries_OperationNames(t *testing.T) {
	cases := map[string]func(string, string) func(int, int) string{
		"Enroute":   EnrouteQuery,
		"Departed":  DepartedQuery,
		"Arrived":   ArrivedQuery,
		"Scheduled": ScheduledQuery,
	}

	for op, ctor := range cases {
		got := ctor("KSFO", "")(0, DefaultBatchSize)
		want := op + "?airport=KSFO"
		if got != want {
			t.Errorf("%s query: got %q, want %q", op, got, want)
		}
	}
}
