package integration

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/flightwatch/flightxml-client/internal/testutil"
	"github.com/flightwatch/flightxml-client/pkg/cache"
	"github.com/flightwatch/flightxml-client/pkg/fetcher"
	"github.com/flightwatch/flightxml-client/pkg/flightxml"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available for integration testing: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

const enrouteBody = `{"EnrouteResult":{"next_offset":2,"enroute":[
	{"ident":"UAL123","aircrafttype":"B738","origin":"KLAX","destination":"KSFO",
	 "filed_departuretime":1714060800,"estimatedarrivaltime":1714066200},
	{"ident":"SWA456","aircrafttype":"B737","origin":"KSAN","destination":"KSFO",
	 "filed_departuretime":1714061400,"estimatedarrivaltime":1714067100}
]}}`

func newEngine(t *testing.T, mock *testutil.MockFlightXML, store cache.Store) (*fetcher.Engine[flightxml.Flight], chan []flightxml.Flight) {
	t.Helper()

	engine, err := fetcher.New(fetcher.Config[flightxml.Flight]{
		CacheKey:    "enroute.KSFO",
		Query:       flightxml.EnrouteQuery("KSFO", ""),
		Decode:      flightxml.DecodeEnroute,
		BatchSize:   flightxml.DefaultBatchSize,
		Credentials: "account:key",
		BaseURL:     mock.BaseURL(),
		Cache:       store,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(engine.Stop)

	updates := make(chan []flightxml.Flight, 16)
	engine.Results().Subscribe(func(flights []flightxml.Flight) {
		updates <- flights
	})

	return engine, updates
}

func waitUpdate(t *testing.T, updates chan []flightxml.Flight) []flightxml.Flight {
	t.Helper()
	select {
	case flights := <-updates:
		return flights
	case <-time.After(10 * time.Second):
		t.Fatal("Timed out waiting for result delivery")
		return nil
	}
}

// TestFullFetchFlow exercises the complete flow against a real Redis:
// live fetch → cache writeback → cache read by a second subscription.
func TestFullFetchFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockFlightXML()
	defer mock.Close()
	mock.Respond("Enroute?airport=KSFO", testutil.MockResponse{Body: enrouteBody})

	store := cache.NewRedisStore(redisClient)

	// First subscription: live fetch, settled result written to Redis.
	first, firstUpdates := newEngine(t, mock, store)
	first.Start(0)
	flights := waitUpdate(t, firstUpdates)
	first.Stop()

	if len(flights) != 2 {
		t.Fatalf("Live fetch: got %d flights, want 2", len(flights))
	}
	if got := mock.RequestCount(); got != 1 {
		t.Fatalf("Requests: got %d, want 1", got)
	}

	if _, err := store.Timestamp(context.Background(), "enroute.KSFO"); err != nil {
		t.Fatalf("Settled result not in Redis: %v", err)
	}

	// Give the cache entry measurable age; the engine requires age > 0.
	time.Sleep(50 * time.Millisecond)

	// Second subscription: must be served from Redis without a live request.
	second, secondUpdates := newEngine(t, mock, store)
	second.Start(5 * time.Minute)
	cached := waitUpdate(t, secondUpdates)
	second.Stop()

	if len(cached) != 2 {
		t.Fatalf("Cache read: got %d flights, want 2", len(cached))
	}
	if got := mock.RequestCount(); got != 1 {
		t.Errorf("Cache read hit the network: %d requests, want 1", got)
	}
}

// TestAuthorizationHeader verifies the Basic-Auth header reaches the wire.
func TestAuthorizationHeader(t *testing.T) {
	mock := testutil.NewMockFlightXML()
	defer mock.Close()
	mock.Respond("Enroute?airport=KSFO", testutil.MockResponse{Body: enrouteBody})

	engine, updates := newEngine(t, mock, cache.NewMemoryStore())
	engine.Start(0, false)
	waitUpdate(t, updates)

	// base64("account:key")
	want := "Basic YWNjb3VudDprZXk="
	if got := mock.LastAuthorization(); got != want {
		t.Errorf("Authorization: got %q, want %q", got, want)
	}
}
