// Package signal implements the revocable abort signal.
//
// A Signal is single-use: Trigger notifies every registered waiter exactly
// once and the signal is spent. A Source owns the active signal and replaces
// it wholesale on every completed cancellation; signals are never reset in
// place. Each signal carries the generation it was armed with.
//
// Subscription through Source.OnAbort is late-bound: it attaches to whichever
// signal is active when OnAbort runs, not when the waiting work was created.
// A cancellation that completes between creating work and subscribing it is
// therefore invisible to that work.
package signal
