// Package tempo holds the settled-value model shared by every time-driven
// component: Outcome[T] records how a wait ended (resolved, cancelled or
// failed) and Future[T] is the awaitable handle that eventually carries one.
//
// Subpackages build on it:
// - clock: one-shot and repeating timer primitives behind opaque handles
// - signal: the revocable, generation-based abort signal
// - delay: waits that lose to an abort signal
// - sequence: ordered task runs guarded by a cooperative stop flag
// - session, canceller: timer-armed firings and their teardown
package tempo
