package cache

import (
	"context"
	"sync"
)

// MemoryStore implements Store with an in-process map. It backs tests,
// the example binary, and simulation-only deployments that have no Redis.
type MemoryStore struct {
	mu         sync.RWMutex
	data       map[string][]byte
	timestamps map[string]float64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:       make(map[string][]byte),
		timestamps: make(map[string]float64),
	}
}

// Get returns a copy of the bytes stored under key.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		CacheMisses.WithLabelValues("memory").Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("memory").Inc()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Set stores a copy of the payload and its write timestamp.
func (s *MemoryStore) Set(_ context.Context, key string, data []byte, ts float64) error {
	stored := make([]byte, len(data))
	copy(stored, data)

	s.mu.Lock()
	s.data[key] = stored
	s.timestamps[key] = ts
	s.mu.Unlock()

	CacheWriteBytes.WithLabelValues("memory").Set(float64(len(data)))
	return nil
}

// Timestamp returns the epoch-seconds write timestamp for key.
func (s *MemoryStore) Timestamp(_ context.Context, key string) (float64, error) {
	s.mu.RLock()
	ts, ok := s.timestamps[key]
	s.mu.RUnlock()

	if !ok {
		return 0, ErrCacheMiss
	}
	return ts, nil
}

// Len returns the number of cached payloads (for tests).
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
