// Package observable provides a current-value container with synchronous
// change notification.
package observable

import (
	"sort"
	"sync"
)

// Value holds the most recent value of type T and notifies subscribers on
// every update. Notifications are delivered synchronously, in subscription
// order, one update at a time; subscribers never run concurrently with each
// other, so single-threaded observers need no additional locking.
//
// Subscriber callbacks must not block and must not call Set.
type Value[T any] struct {
	mu      sync.Mutex
	deliver sync.Mutex
	hasVal  bool
	current T
	subs    map[int]func(T)
	nextID  int
}

// NewValue creates an empty container.
func NewValue[T any]() *Value[T] {
	return &Value[T]{subs: make(map[int]func(T))}
}

// Get returns the current value and whether one was ever set.
func (v *Value[T]) Get() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current, v.hasVal
}

// Set stores a new value and notifies all subscribers.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	v.current = val
	v.hasVal = true
	subs := make([]func(T), 0, len(v.subs))
	ids := make([]int, 0, len(v.subs))
	for id := range v.subs {
		ids = append(ids, id)
	}
	// Map iteration order is random; deliver in subscription order.
	sort.Ints(ids)
	for _, id := range ids {
		subs = append(subs, v.subs[id])
	}
	v.mu.Unlock()

	v.deliver.Lock()
	defer v.deliver.Unlock()
	for _, fn := range subs {
		fn(val)
	}
}

// Subscribe registers fn and returns a cancel func. If a value was ever set,
// fn immediately receives the current value on the caller's goroutine. This
// initial delivery is not serialized against Set notifications, so
// subscribing from within another subscriber's callback is safe.
func (v *Value[T]) Subscribe(fn func(T)) func() {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	current, ok := v.current, v.hasVal
	v.mu.Unlock()

	if ok {
		fn(current)
	}

	return func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}
