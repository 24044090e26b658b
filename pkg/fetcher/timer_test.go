package fetcher

import (
	"testing"
	"time"
)

func TestSchedule_Fires(t *testing.T) {
	fired := make(chan struct{})
	schedule(10*time.Millisecond, func() {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(1 * time.Second):
		t.Fatal("Scheduled task did not fire")
	}
}

func TestSchedule_StopPreventsFire(t *testing.T) {
	fired := make(chan struct{}, 1)
	task := schedule(30*time.Millisecond, func() {
		fired <- struct{}{}
	})
	task.Stop()

	select {
	case <-fired:
		t.Fatal("Task fired after Stop")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSchedule_StopIdempotent(t *testing.T) {
	task := schedule(time.Hour, func() {})
	task.Stop()
	task.Stop()
}
