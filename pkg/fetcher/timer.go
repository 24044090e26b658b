package fetcher

import (
	"sync"
	"time"
)

// scheduledTask is a cancellable one-shot timer. Stop prevents the callback
// from starting once it returns; a callback already past the stopped check
// is fenced off by the engine's generation counter instead, so a torn-down
// engine is never mutated by a late fire.
type scheduledTask struct {
	mu      sync.Mutex
	stopped bool
	timer   *time.Timer
}

// schedule runs fn once after delay and returns a stoppable handle.
func schedule(delay time.Duration, fn func()) *scheduledTask {
	t := &scheduledTask{}
	t.timer = time.AfterFunc(delay, func() {
		t.mu.Lock()
		stopped := t.stopped
		t.mu.Unlock()
		if stopped {
			return
		}
		fn()
	})
	return t
}

// Stop cancels the pending fire. Safe to call more than once.
func (t *scheduledTask) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
	t.timer.Stop()
}
