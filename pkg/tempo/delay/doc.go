// Package delay provides waits that race a timer against the active abort
// signal.
//
// Sleep is the raw race. Catching and Propagating are the two entry points
// built on it: Catching absorbs a cancellation so the code after the wait
// still runs, Propagating hands the rejection to whoever awaits it. Callers
// choose the behavior by choosing the entry point.
package delay
