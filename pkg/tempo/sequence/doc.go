// Package sequence runs an ordered list of tasks one at a time.
//
// Before each task the sequencer reads a shared Flag; once the flag is false
// the run stops without starting the remaining tasks. The flag is
// cooperative: it never interrupts a task already being awaited, only the
// advance to the next one. A rejected task unwinds the run.
package sequence
