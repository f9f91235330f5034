package sequence

import "sync/atomic"

// Flag is the cooperative continue flag shared by every sequencer built on
// it. Writes are last-writer-wins.
type Flag struct {
	v atomic.Bool
}

func NewFlag(initial bool) *Flag {
	f := &Flag{}
	f.v.Store(initial)
	return f
}

func (f *Flag) Set(v bool) {
	f.v.Store(v)
}

func (f *Flag) Continue() bool {
	return f.v.Load()
}
