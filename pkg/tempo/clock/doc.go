// Package clock provides the timer primitives the rest of tempo schedules
// against: one-shot After/Cancel and repeating Every/CancelRepeating, both
// keyed by an opaque Handle.
//
// System is backed by the runtime timers. Manual keeps its timers in a
// min-heap ordered by due time and only moves when Advance is called, which
// makes timing-sensitive tests deterministic.
//
// Releasing a handle is idempotent: cancelling one that already fired or was
// already cancelled is a no-op and reports false.
package clock
