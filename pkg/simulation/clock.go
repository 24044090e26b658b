package simulation

import "time"

// TimeSource provides the engine's notion of "now". Cache-age arithmetic
// goes through a TimeSource so demo runs with fixture data can be replayed
// deterministically against a fixed anchor.
type TimeSource interface {
	Now() time.Time
}

type realTime struct{}

func (realTime) Now() time.Time { return time.Now() }

// RealTime returns a TimeSource backed by the wall clock.
func RealTime() TimeSource {
	return realTime{}
}

type simulatedTime struct {
	anchor  time.Time
	started time.Time
}

func (s simulatedTime) Now() time.Time {
	return s.anchor.Add(time.Since(s.started))
}

// SimulatedTime returns a TimeSource that reports the anchor advanced by the
// wall-clock time elapsed since construction.
func SimulatedTime(anchor time.Time) TimeSource {
	return simulatedTime{anchor: anchor, started: time.Now()}
}

// SelectTimeSource applies the simulation-mode rule: simulated time is used
// only when credentials are absent, fixture data exists, and an anchor is
// configured. Everything else gets the wall clock.
func SelectTimeSource(credentialsConfigured bool, dataset *Dataset, anchor time.Time) TimeSource {
	if !credentialsConfigured && dataset != nil && dataset.Len() > 0 && !anchor.IsZero() {
		return SimulatedTime(anchor)
	}
	return RealTime()
}
