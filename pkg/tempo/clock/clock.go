package clock

import "time"

// minPeriod is the shortest repeating period; shorter ones are clamped.
const minPeriod = time.Millisecond

// Handle identifies an armed timer. The zero Handle is never issued.
type Handle uint64

// Clock schedules callbacks. Callbacks run on a goroutine owned by the
// clock and should hand long work off rather than block it.
type Clock interface {
	// After runs f once after d.
	After(d time.Duration, f func()) Handle
	// Cancel releases a one-shot or repeating timer. It reports whether the
	// timer was still armed.
	Cancel(h Handle) bool
	// Every runs f every d until cancelled.
	Every(d time.Duration, f func()) Handle
	// CancelRepeating is Cancel for timers armed with Every.
	CancelRepeating(h Handle) bool
	Now() time.Time
}
