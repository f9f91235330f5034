// Package scenario wires the tempo components into the cancellation
// demonstrations.
//
// Every Harness owns its own clock, abort-signal source, continue flag,
// delayer, sequencer, session manager and canceller, so scenarios running
// side by side never share state. The ordering nondeterminism the scenarios
// demonstrate is left in place: nothing here synchronises independently
// armed timers.
//
// All offsets are expressed in thousandths of the configured step, so a
// scenario written against a one-second cadence runs unchanged at test
// speed.
package scenario
