// SPDX-License-Identifier: EPL-2.0

package playback

import "time"

// Clock supplies wall-clock time to the tracker.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the real wall clock.
var SystemClock Clock = systemClock{}

// Tracker derives the play position from the time playback started. The
// device cannot report its position, so wall-clock time stands in for it.
type Tracker struct {
	start time.Time
	total time.Duration
}

func NewTracker(start time.Time, total time.Duration) Tracker {
	return Tracker{start: start, total: max(total, 0)}
}

func (t Tracker) Start() time.Time     { return t.start }
func (t Tracker) Total() time.Duration { return t.total }

// Elapsed is now-start clamped to [0, total].
func (t Tracker) Elapsed(now time.Time) time.Duration {
	return min(max(now.Sub(t.start), 0), t.total)
}

// Fraction is Elapsed as a share of the total in [0, 1]. A zero-length
// track counts as finished.
func (t Tracker) Fraction(now time.Time) float64 {
	if t.total <= 0 {
		return 1
	}
	return float64(t.Elapsed(now)) / float64(t.total)
}
