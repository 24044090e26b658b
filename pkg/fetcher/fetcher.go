package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/flightwatch/flightxml-client/pkg/cache"
	"github.com/flightwatch/flightxml-client/pkg/logging"
	"github.com/flightwatch/flightxml-client/pkg/observable"
	"github.com/flightwatch/flightxml-client/pkg/request"
	"github.com/flightwatch/flightxml-client/pkg/simulation"
)

// storeTimeout bounds cache backend round-trips so a hung backend cannot
// stall a fetch cycle.
const storeTimeout = 5 * time.Second

// Config holds the engine configuration for a record type T. T must be
// comparable (records are deduplicated by value equality) and
// JSON-serializable (result sets are persisted as JSON arrays).
type Config[T comparable] struct {
	// CacheKey identifies this subscription in the cache store.
	// Empty disables cache consultation and writeback.
	CacheKey string

	// Query constructs the query string for a page, given the pagination
	// offset and the batch size. Required.
	Query func(offset, batchSize int) string

	// Decode parses one response body into a record batch. Required.
	Decode func(data []byte) ([]T, error)

	// Filter, if set, is applied to the merged set before publication.
	Filter func(records []T) []T

	// BatchSize is the fixed page size. Required.
	BatchSize int

	// HowMany is the target total record count the engine paginates toward.
	// Defaults to one batch.
	HowMany int

	// SequenceDelay is the short delay between pagination continuations.
	// Defaults to 1 second.
	SequenceDelay time.Duration

	// Credentials in "account:api-key" form. Empty selects simulation mode.
	Credentials request.Credentials

	// BaseURL overrides the FlightXML endpoint root (for testing).
	BaseURL string

	// Cache is the optional cache store shared across subscriptions.
	Cache cache.Store

	// Dataset is the optional simulation fixture dataset.
	Dataset *simulation.Dataset

	// Capture appends live response bodies to the dataset when enabled.
	// New switches the dataset into capture mode, so this flag alone
	// controls recording.
	Capture bool

	// Clock is the engine's time source. Defaults to the wall clock.
	Clock simulation.TimeSource

	// HTTPClient overrides the default client (30s timeout).
	HTTPClient *http.Client
}

// Engine is one fetch subscription: it fetches batches of T, merges them
// into an accumulating deduplicated set, persists settled results to the
// cache, and reschedules itself.
//
// All state mutation and result publication is serialized under one mutex;
// at most one network operation is in flight and at most one re-fetch timer
// is pending at any time.
type Engine[T comparable] struct {
	cfg      Config[T]
	httpc    *http.Client
	clock    simulation.TimeSource
	logger   zerolog.Logger
	subLabel string
	results  *observable.Value[[]T]

	mu             sync.Mutex
	gen            uint64
	set            map[T]struct{}
	seqCount       int
	offset         int
	interval       time.Duration
	inFlightCtx    context.Context
	cancelInFlight context.CancelFunc
	timer          *scheduledTask
}

// New creates a fetch engine.
func New[T comparable](cfg Config[T]) (*Engine[T], error) {
	if cfg.Query == nil {
		return nil, fmt.Errorf("query constructor is required")
	}
	if cfg.Decode == nil {
		return nil, fmt.Errorf("decoder is required")
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive (got %d)", cfg.BatchSize)
	}
	if cfg.HowMany <= 0 {
		cfg.HowMany = cfg.BatchSize
	}
	if cfg.SequenceDelay <= 0 {
		cfg.SequenceDelay = 1 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = request.DefaultBaseURL
	}
	if cfg.Clock == nil {
		cfg.Clock = simulation.RealTime()
	}
	if cfg.Capture && cfg.Dataset != nil {
		cfg.Dataset.SetCapture(true)
	}

	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}

	subLabel := cfg.CacheKey
	if subLabel == "" {
		subLabel = "unkeyed"
	}

	return &Engine[T]{
		cfg:      cfg,
		httpc:    httpc,
		clock:    cfg.Clock,
		logger:   logging.NewLogger("fetcher").With().Str("cache_key", cfg.CacheKey).Logger(),
		subLabel: subLabel,
		results:  observable.NewValue[[]T](),
		set:      make(map[T]struct{}),
	}, nil
}

// Results returns the observable holding the published result set.
// Subscriber callbacks run on the engine's delivery context and must not
// call back into the engine.
func (e *Engine[T]) Results() *observable.Value[[]T] {
	return e.results
}

// Start sets the refresh interval and begins (or resumes) fetching.
// interval 0 means one-shot: no rescheduling after the result settles.
// The optional override forces whether the first attempt consults the cache.
func (e *Engine[T]) Start(interval time.Duration, useCacheOverride ...bool) {
	e.mu.Lock()
	e.interval = interval
	useCache := true
	if len(useCacheOverride) > 0 {
		useCache = useCacheOverride[0]
	}
	e.mu.Unlock()

	e.logger.Info().
		Dur("interval", interval).
		Bool("use_cache", useCache).
		Msg("Subscription started")

	e.Fetch(useCache)
}

// Stop cancels the in-flight request and the pending timer, and resets the
// interval and continuation counter. Idempotent. No result delivery happens
// after Stop returns.
func (e *Engine[T]) Stop() {
	e.mu.Lock()
	e.gen++
	if e.cancelInFlight != nil {
		e.cancelInFlight()
		e.cancelInFlight = nil
		e.inFlightCtx = nil
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.interval = 0
	e.seqCount = 0
	e.offset = 0
	e.mu.Unlock()

	e.logger.Info().Msg("Subscription stopped")
}

// Fetch runs one fetch attempt: cache first (when useCache and no pagination
// sequence is in progress), then the live path, then simulation. Errors on
// any path degrade to an empty batch or a no-op; nothing propagates.
func (e *Engine[T]) Fetch(useCache bool) {
	e.mu.Lock()
	gen := e.gen
	e.mu.Unlock()
	e.fetch(gen, useCache)
}

// fetch is the generation-fenced fetch attempt. gen is the generation the
// caller observed when it decided to fetch; a mismatch means Stop intervened
// and the attempt is abandoned before any state changes or network traffic.
func (e *Engine[T]) fetch(gen uint64, useCache bool) {
	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		return
	}
	if e.seqCount == 0 {
		// New top-level cycle: cursor back to start.
		e.offset = 0
	}
	seqCount := e.seqCount
	offset := e.offset
	e.mu.Unlock()

	query := e.cfg.Query(offset, e.cfg.BatchSize)

	if useCache && seqCount == 0 && e.tryCache(gen, query) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	if req, ok := request.Build(ctx, e.cfg.BaseURL, query, e.cfg.Credentials); ok {
		e.mu.Lock()
		if e.gen != gen {
			e.mu.Unlock()
			cancel()
			return
		}
		if e.cancelInFlight != nil {
			// A new operation supersedes any prior one still pending.
			e.cancelInFlight()
		}
		e.inFlightCtx = ctx
		e.cancelInFlight = cancel
		e.mu.Unlock()

		go e.fetchLive(ctx, cancel, gen, query, req)
		return
	}
	cancel()

	// Simulation mode: exact-query fixture or silent no-op.
	if e.cfg.Dataset == nil {
		return
	}
	body, ok := e.cfg.Dataset.Lookup(query)
	if !ok {
		e.logger.Debug().Str("query", query).Msg("No fixture for query")
		return
	}

	batch, err := e.cfg.Decode([]byte(body))
	if err != nil {
		fetchesTotal.WithLabelValues("simulation", "decode_error").Inc()
		e.logger.Warn().Err(err).Str("query", query).Msg("Fixture decode failed")
		batch = nil
	} else {
		fetchesTotal.WithLabelValues("simulation", "ok").Inc()
	}

	e.handleResult(gen, batch, 0, false)
}

// fetchLive executes the request and delivers the decoded batch. Transport
// and decode failures substitute an empty batch; a cancelled context means
// the operation was superseded or stopped and delivers nothing.
func (e *Engine[T]) fetchLive(ctx context.Context, cancel context.CancelFunc, gen uint64, query string, req *http.Request) {
	defer cancel()

	start := time.Now()
	var batch []T

	resp, err := e.httpc.Do(req)
	if ctx.Err() != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return
	}

	switch {
	case err != nil:
		fetchesTotal.WithLabelValues("live", "transport_error").Inc()
		e.logger.Warn().Err(err).Str("query", query).Msg("Transport failure, substituting empty batch")

	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		fetchesTotal.WithLabelValues("live", "http_error").Inc()
		e.logger.Warn().
			Str("query", query).
			Int("status", resp.StatusCode).
			Msg("Non-2xx response, substituting empty batch")

	default:
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			fetchesTotal.WithLabelValues("live", "transport_error").Inc()
			e.logger.Warn().Err(readErr).Str("query", query).Msg("Body read failed, substituting empty batch")
			break
		}

		if e.cfg.Capture && e.cfg.Dataset != nil {
			e.cfg.Dataset.Capture(query, string(body))
		}

		batch, err = e.cfg.Decode(body)
		if err != nil {
			fetchesTotal.WithLabelValues("live", "decode_error").Inc()
			e.logger.Warn().Err(err).Str("query", query).Msg("Decode failed, substituting empty batch")
			batch = nil
		} else {
			fetchesTotal.WithLabelValues("live", "ok").Inc()
		}
	}

	fetchDuration.WithLabelValues(e.subLabel).Observe(time.Since(start).Seconds())

	// Release the in-flight slot if it is still ours.
	e.mu.Lock()
	if e.inFlightCtx == ctx {
		e.inFlightCtx = nil
		e.cancelInFlight = nil
	}
	e.mu.Unlock()

	e.handleResult(gen, batch, 0, true)
}

// tryCache attempts the cache path for a top-level fetch cycle. Returns true
// when a usable entry was delivered to result handling; false (with a logged
// reason for corrupt entries) lets the caller proceed to the live or
// simulated path.
func (e *Engine[T]) tryCache(gen uint64, query string) bool {
	if e.cfg.Cache == nil || e.cfg.CacheKey == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	ts, err := e.cfg.Cache.Timestamp(ctx, e.cfg.CacheKey)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			e.logger.Warn().Err(err).Msg("Cache timestamp read failed")
		}
		return false
	}

	age := e.clock.Now().Sub(epochToTime(ts))
	if age <= 0 {
		return false
	}

	e.mu.Lock()
	interval := e.interval
	e.mu.Unlock()

	// Usable when the subscription is one-shot, the entry is younger than
	// the refresh interval, or there is no live alternative anyway.
	usable := interval == 0 || age < interval || !e.cfg.Credentials.Configured()
	if !usable {
		e.logger.Debug().
			Dur("age", age).
			Dur("interval", interval).
			Msg("Cache entry stale, proceeding to live fetch")
		return false
	}

	data, err := e.cfg.Cache.Get(ctx, e.cfg.CacheKey)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			e.logger.Warn().Err(err).Msg("Cache read failed")
		}
		return false
	}

	var merged []T
	if err := json.Unmarshal(data, &merged); err != nil {
		fetchesTotal.WithLabelValues("cache", "decode_error").Inc()
		e.logger.Warn().Err(err).Msg("Cache entry corrupt, falling through")
		return false
	}

	fetchesTotal.WithLabelValues("cache", "ok").Inc()
	e.logger.Debug().Dur("age", age).Int("records", len(merged)).Msg("Cache hit")
	e.handleResult(gen, merged, age, true)
	return true
}

// handleResult is the single result-handling path: merge, filter, publish,
// decide sequencing and the next delay, persist settled results, reschedule.
// age 0 means freshly fetched; nonzero means a cache entry that old.
func (e *Engine[T]) handleResult(gen uint64, batch []T, age time.Duration, cacheable bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		return
	}

	prev := len(e.set)
	for _, rec := range batch {
		e.set[rec] = struct{}{}
	}
	added := len(e.set) - prev

	merged := make([]T, 0, len(e.set))
	for rec := range e.set {
		merged = append(merged, rec)
	}

	published := merged
	if e.cfg.Filter != nil {
		published = e.cfg.Filter(append([]T(nil), merged...))
	}

	resultSetSize.WithLabelValues(e.subLabel).Set(float64(len(published)))
	e.results.Set(published)

	// One continuation is implied by the first page, hence the -1.
	maxContinuations := (e.cfg.HowMany+e.cfg.BatchSize-1)/e.cfg.BatchSize - 1
	sequencing := age == 0 &&
		added == e.cfg.BatchSize &&
		len(published) < e.cfg.HowMany &&
		e.seqCount < maxContinuations

	var delay time.Duration
	switch {
	case sequencing:
		delay = e.cfg.SequenceDelay
	case age > 0 && age < e.interval:
		// Land the next live fetch on the original schedule.
		delay = e.interval - age
	default:
		delay = e.interval
	}

	e.logger.Debug().
		Int("added", added).
		Int("published", len(published)).
		Dur("age", age).
		Bool("sequencing", sequencing).
		Dur("delay", delay).
		Int("seq_count", e.seqCount).
		Msg("Result handled")

	// Only the settled final merge is persisted; mid-pagination pages are not.
	if cacheable && age == 0 && !sequencing {
		e.persistLocked(merged)
	}

	if delay <= 0 {
		e.seqCount = 0
		e.offset = 0
		return
	}

	if sequencing {
		e.seqCount++
		e.offset = e.seqCount * e.cfg.BatchSize
		sequenceContinuations.WithLabelValues(e.subLabel).Inc()
	} else {
		e.seqCount = 0
		e.offset = 0
	}

	if e.timer != nil {
		e.timer.Stop()
	}
	g := e.gen
	e.timer = schedule(delay, func() {
		e.mu.Lock()
		if e.gen != g {
			e.mu.Unlock()
			return
		}
		e.timer = nil
		refetch := e.interval != 0 || e.seqCount > 0
		e.mu.Unlock()

		if refetch {
			e.fetch(g, true)
		}
	})
}

// persistLocked writes the merged pre-filter set to the cache store.
// Caller holds e.mu.
func (e *Engine[T]) persistLocked(merged []T) {
	if e.cfg.Cache == nil || e.cfg.CacheKey == "" {
		return
	}

	data, err := json.Marshal(merged)
	if err != nil {
		e.logger.Warn().Err(err).Msg("Result set marshal failed, skipping cache write")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	ts := timeToEpoch(e.clock.Now())
	if err := e.cfg.Cache.Set(ctx, e.cfg.CacheKey, data, ts); err != nil {
		e.logger.Warn().Err(err).Msg("Cache write failed")
		return
	}

	cacheWritebacks.WithLabelValues(e.subLabel).Inc()
	e.logger.Debug().Int("bytes", len(data)).Float64("ts", ts).Msg("Result set cached")
}

// epochToTime converts float64 epoch seconds to a time.Time.
func epochToTime(ts float64) time.Time {
	return time.Unix(0, int64(ts*float64(time.Second)))
}

// timeToEpoch converts a time.Time to float64 epoch seconds.
func timeToEpoch(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
