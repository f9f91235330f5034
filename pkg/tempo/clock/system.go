package clock

import (
	"sync"
	"time"
)

type systemTimer struct {
	timer *time.Timer
	stop  chan struct{}
}

// System is a Clock backed by time.AfterFunc and time.Ticker.
type System struct {
	mu     sync.Mutex
	next   uint64
	timers map[Handle]*systemTimer
}

func NewSystem() *System {
	return &System{timers: make(map[Handle]*systemTimer)}
}

func (s *System) After(d time.Duration, f func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.issue()
	t := &systemTimer{}
	s.timers[h] = t
	// the callback blocks on s.mu until the timer is registered
	t.timer = time.AfterFunc(d, func() {
		if s.release(h) != nil {
			f()
		}
	})
	return h
}

func (s *System) Every(d time.Duration, f func()) Handle {
	if d < minPeriod {
		d = minPeriod
	}

	s.mu.Lock()
	h := s.issue()
	t := &systemTimer{stop: make(chan struct{})}
	s.timers[h] = t
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()

		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				if !s.armed(h) {
					return
				}
				f()
			}
		}
	}()
	return h
}

func (s *System) Cancel(h Handle) bool {
	t := s.release(h)
	if t == nil {
		return false
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	if t.stop != nil {
		close(t.stop)
	}
	return true
}

func (s *System) CancelRepeating(h Handle) bool {
	return s.Cancel(h)
}

func (s *System) Now() time.Time {
	return time.Now()
}

// Pending returns the number of armed timers.
func (s *System) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *System) issue() Handle {
	s.next++
	return Handle(s.next)
}

func (s *System) armed(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[h]
	return ok
}

// release removes h and returns its timer; only the first caller gets it.
func (s *System) release(h Handle) *systemTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[h]
	if !ok {
		return nil
	}
	delete(s.timers, h)
	return t
}

var _ Clock = (*System)(nil)
