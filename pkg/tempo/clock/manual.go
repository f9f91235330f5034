package clock

import (
	"sync"
	"time"

	"github.com/ib-77/timerace/pkg/tempo/internal/due"
)

type manualTimer struct {
	handle Handle
	when   time.Time
	period time.Duration
	f      func()
}

func (t *manualTimer) DueAt() time.Time {
	return t.when
}

// Manual is a Clock whose time only moves on Advance. Due callbacks run
// synchronously on the goroutine calling Advance, in due-time order.
type Manual struct {
	mu   sync.Mutex
	now  time.Time
	next uint64
	q    due.Queue[*manualTimer]
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) After(d time.Duration, f func()) Handle {
	return m.arm(d, 0, f)
}

func (m *Manual) Every(d time.Duration, f func()) Handle {
	if d < minPeriod {
		d = minPeriod
	}
	return m.arm(d, d, f)
}

func (m *Manual) arm(d, period time.Duration, f func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d < 0 {
		d = 0
	}
	m.next++
	h := Handle(m.next)
	m.q.Push(&manualTimer{handle: h, when: m.now.Add(d), period: period, f: f})
	return h
}

func (m *Manual) Cancel(h Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.q.RemoveFunc(func(t *manualTimer) bool { return t.handle == h }) > 0
}

func (m *Manual) CancelRepeating(h Handle) bool {
	return m.Cancel(h)
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of armed timers.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.q.Len()
}

// Advance moves time forward by d and fires every timer that falls due,
// including timers armed by callbacks during the advance.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		t, ok := m.q.PopDue(target)
		if !ok {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = t.when
		if t.period > 0 {
			m.q.Push(&manualTimer{handle: t.handle, when: t.when.Add(t.period), period: t.period, f: t.f})
		}
		m.mu.Unlock()

		t.f()
	}
}

var _ Clock = (*Manual)(nil)
