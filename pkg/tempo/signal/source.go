package signal

import "sync"

// Source holds the currently active Signal.
type Source struct {
	mu         sync.Mutex
	generation uint64
	current    *Signal
}

// NewSource creates a source with its first signal armed.
func NewSource() *Source {
	s := &Source{}
	s.Arm()
	return s
}

// Arm installs a fresh signal. Waiters of the previous one are dropped
// without being notified.
func (s *Source) Arm() *Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armLocked()
}

func (s *Source) armLocked() *Signal {
	s.generation++
	s.current = newSignal(s.generation)
	return s.current
}

func (s *Source) Current() *Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// OnAbort subscribes w to the signal active right now and returns it.
func (s *Source) OnAbort(w func()) (*Signal, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current.Subscribe(w)
}

// Trigger triggers the active signal without replacing it.
func (s *Source) Trigger() int {
	return s.Current().Trigger()
}

// TriggerAndArm triggers the active signal and installs a fresh one. No
// OnAbort call can observe the spent signal in between. Waiters run after
// the fresh signal is installed, so anything they subscribe binds to it.
func (s *Source) TriggerAndArm() (notified int, fresh *Signal) {
	s.mu.Lock()
	old := s.current
	fresh = s.armLocked()
	s.mu.Unlock()

	return old.Trigger(), fresh
}
