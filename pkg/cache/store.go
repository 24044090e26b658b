// Package cache provides the timestamped key-value store backing fetch
// subscriptions.
//
// Each cache key holds two entries: the raw serialized result set under the
// key itself, and a float64 epoch-seconds timestamp under "<key>.timestamp".
// Entries are only ever overwritten, never deleted; staleness decisions
// belong to the fetch engine, which knows the refresh interval.
package cache

import (
	"context"
	"errors"
)

var (
	// ErrCacheMiss indicates the requested key was not found in the store.
	ErrCacheMiss = errors.New("cache miss")
)

// TimestampSuffix is appended to a cache key to address its write timestamp.
const TimestampSuffix = ".timestamp"

// Store is the contract for cache backends.
type Store interface {
	// Get returns the raw bytes stored under key.
	// Returns ErrCacheMiss if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores data under key and ts (epoch seconds) under "<key>.timestamp".
	// Both writes happen together; an existing entry is overwritten.
	Set(ctx context.Context, key string, data []byte, ts float64) error

	// Timestamp returns the epoch-seconds write timestamp for key.
	// Returns ErrCacheMiss if no timestamp was ever written.
	Timestamp(ctx context.Context, key string) (float64, error)
}
