// Package fetcher implements a generic, schedulable fetch engine for the
// FlightXML2 paginated JSON API.
//
// One Engine instance owns one logical subscription. Each fetch cycle tries
// the cache, then the network, then the simulation dataset:
//
//   - Cache: consulted only at the top of a cycle (never mid-pagination).
//     An entry is usable when the subscription is one-shot, when the entry
//     is younger than the refresh interval, or when no credentials exist.
//   - Live: authenticated GET against the FlightXML endpoint. Transport and
//     decode failures degrade to an empty batch and never surface to the
//     caller.
//   - Simulation: exact-query fixture lookup; a missing fixture is a silent
//     no-op.
//
// Every delivered batch is merged (set union) into the accumulated result
// set, filtered, and published through an observable value holder. When a
// full page arrived and the target size has not been reached, the engine
// paginates: it advances the offset and re-fetches after a short fixed
// delay. Otherwise it reschedules for the refresh interval (adjusted by the
// age of a cache read, so live fetches stay on the original cadence), and
// persists the settled merge to the cache.
//
// Example usage:
//
//	engine, err := fetcher.New(fetcher.Config[flightxml.Flight]{
//		CacheKey:    "enroute.KSFO",
//		Query:       flightxml.EnrouteQuery("KSFO", ""),
//		Decode:      flightxml.DecodeEnroute,
//		BatchSize:   15,
//		HowMany:     30,
//		Credentials: request.Credentials(os.Getenv("FLIGHTXML_CREDENTIALS")),
//		Cache:       cache.NewRedisStore(redisClient),
//	})
//	if err != nil {
//		return err
//	}
//	cancel := engine.Results().Subscribe(func(flights []flightxml.Flight) {
//		// consume the deduplicated, filtered set
//	})
//	defer cancel()
//	engine.Start(5 * time.Minute)
//	defer engine.Stop()
//
// The engine exports Prometheus metrics:
//
//   - flightxml_fetches_total{source, status} - deliveries by path
//   - flightxml_fetch_duration_seconds{subscription} - live fetch duration
//   - flightxml_sequence_continuations_total{subscription} - pagination continuations
//   - flightxml_result_set_size{subscription} - published set size
//   - flightxml_cache_writebacks_total{subscription} - settled sets persisted
package fetcher
