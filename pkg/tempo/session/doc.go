// Package session arms the timers that start task runs.
//
// A one-shot session fires once after its initial delay; a repeating
// session fires every period until its handle is cleared. Each firing
// starts its own run over the same task shape, and firings are not
// synchronised with one another: when a run outlives the period, runs
// overlap. Clearing a handle only prevents future firings; a run already
// dispatched continues until it finishes or its current wait is aborted.
package session
