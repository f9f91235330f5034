// Package timeline fires named actions at points in time from a single
// goroutine.
//
// It replaces nested timer callbacks that mutate shared variables: a script
// of actions becomes a list of Events kept in a min-heap sorted by trigger
// time. Events with a cron expression (six fields, seconds first) are
// re-scheduled after each firing. Sleeps are capped at maxSleepCap so a
// stepped wall clock is noticed.
package timeline
