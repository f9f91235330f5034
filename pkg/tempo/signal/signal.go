package signal

import "sync"

// Signal is a broadcast, single-use abort primitive.
type Signal struct {
	generation uint64

	mu      sync.Mutex
	next    uint64
	waiters map[uint64]func()
	spent   bool
	done    chan struct{}
}

func newSignal(generation uint64) *Signal {
	return &Signal{
		generation: generation,
		waiters:    make(map[uint64]func()),
		done:       make(chan struct{}),
	}
}

func (s *Signal) Generation() uint64 {
	return s.generation
}

// Subscribe registers w to run when the signal triggers. Subscribing to a
// spent signal registers nothing and w never runs. The returned func removes
// the waiter and is safe to call more than once.
func (s *Signal) Subscribe(w func()) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spent {
		return func() {}
	}
	s.next++
	id := s.next
	s.waiters[id] = w
	return func() {
		s.mu.Lock()
		delete(s.waiters, id)
		s.mu.Unlock()
	}
}

// Trigger notifies every current waiter once and spends the signal. It
// returns the number of waiters notified; later calls return 0.
func (s *Signal) Trigger() int {
	s.mu.Lock()
	if s.spent {
		s.mu.Unlock()
		return 0
	}
	s.spent = true
	waiters := make([]func(), 0, len(s.waiters))
	for _, w := range s.waiters {
		waiters = append(waiters, w)
	}
	s.waiters = nil
	close(s.done)
	s.mu.Unlock()

	for _, w := range waiters {
		w()
	}
	return len(waiters)
}

func (s *Signal) Spent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spent
}

// Done is closed when the signal triggers.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}

// Waiters returns the number of registered waiters.
func (s *Signal) Waiters() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiters)
}
