// Command flightwatchd runs one FlightXML subscription as a daemon and
// exposes Prometheus metrics and a health endpoint.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/flightwatch/flightxml-client/pkg/cache"
	"github.com/flightwatch/flightxml-client/pkg/fetcher"
	"github.com/flightwatch/flightxml-client/pkg/flightxml"
	"github.com/flightwatch/flightxml-client/pkg/logging"
	"github.com/flightwatch/flightxml-client/pkg/request"
	"github.com/flightwatch/flightxml-client/pkg/simulation"
)

func main() {
	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnv("LOG_PRETTY", "") == "true",
		Output: os.Stderr,
	})

	// Configuration from environment
	creds := request.Credentials(getEnv("FLIGHTXML_CREDENTIALS", ""))
	redisURL := getEnv("REDIS_URL", "")
	airport := getEnv("AIRPORT", "KSFO")
	port := getEnv("PORT", "8080")
	interval := time.Duration(getEnvInt("FETCH_INTERVAL_SECONDS", 300)) * time.Second
	howMany := getEnvInt("HOW_MANY", flightxml.DefaultBatchSize)

	// Simulation fixtures: optional JSON file mapping query string to body.
	dataset := simulation.NewDataset()
	if path := getEnv("FIXTURES_FILE", ""); path != "" {
		if err := loadFixtures(dataset, path); err != nil {
			logger.Fatal().Err(err).Str("path", path).Msg("Failed to load fixtures")
		}
		logger.Info().Int("fixtures", dataset.Len()).Str("path", path).Msg("Fixtures loaded")
	}
	capture := getEnv("CAPTURE", "") == "true"

	var anchor time.Time
	if s := getEnv("SIMULATION_ANCHOR", ""); s != "" {
		epoch, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			logger.Fatal().Err(err).Msg("SIMULATION_ANCHOR must be epoch seconds")
		}
		anchor = time.Unix(epoch, 0)
	}
	clock := simulation.SelectTimeSource(creds.Configured(), dataset, anchor)

	// Cache backend: Redis when configured, in-process otherwise.
	var store cache.Store
	if redisURL != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: redisURL})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Str("redis", redisURL).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		store = cache.NewRedisStore(redisClient)
		logger.Info().Str("redis", redisURL).Msg("Connected to Redis")
	} else {
		store = cache.NewMemoryStore()
		logger.Info().Msg("Using in-memory cache store")
	}

	engine, err := fetcher.New(fetcher.Config[flightxml.Flight]{
		CacheKey:    "enroute." + airport,
		Query:       flightxml.EnrouteQuery(airport, ""),
		Decode:      flightxml.DecodeEnroute,
		BatchSize:   flightxml.DefaultBatchSize,
		HowMany:     howMany,
		Credentials: creds,
		Cache:       store,
		Dataset:     dataset,
		Capture:     capture,
		Clock:       clock,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create fetch engine")
	}

	unsubscribe := engine.Results().Subscribe(func(flights []flightxml.Flight) {
		logger.Info().
			Str("airport", airport).
			Int("flights", len(flights)).
			Msg("Result set updated")
	})
	defer unsubscribe()

	engine.Start(interval)
	defer engine.Stop()

	// HTTP surface
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	server := &http.Server{Addr: ":" + port, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Str("airport", airport).Msg("Starting flightwatchd")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("flightwatchd failed")
	}
}

// loadFixtures reads a JSON object mapping query strings to response bodies.
func loadFixtures(dataset *simulation.Dataset, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fixtures map[string]string
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return err
	}

	for query, body := range fixtures {
		dataset.Add(query, body)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
