package timeline

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"github.com/ib-77/timerace/pkg/logger"
	"github.com/ib-77/timerace/pkg/tempo/clock"
	"github.com/ib-77/timerace/pkg/tempo/internal/due"
)

const maxSleepCap = 60 * time.Second

// Event is an action due at At. A non-empty CronExpr makes it recurring;
// when At is zero the first occurrence is taken from the expression.
type Event struct {
	Name     string
	At       time.Time
	CronExpr string
	Action   func()
}

func (e Event) DueAt() time.Time {
	return e.At
}

// Timeline runs a background goroutine that sleeps until the next event is
// due, then calls its Action on that goroutine. Actions must not block.
type Timeline struct {
	addChan    chan Event
	removeChan chan string
	ctx        context.Context
	clock      clock.Clock
	log        logger.Logger
	done       chan struct{}
}

// New creates and starts a timeline. It exits when ctx is cancelled.
func New(ctx context.Context, c clock.Clock, log logger.Logger) *Timeline {
	if log == nil {
		log = logger.NewNopLogger()
	}
	t := &Timeline{
		addChan:    make(chan Event, 64),
		removeChan: make(chan string, 64),
		ctx:        ctx,
		clock:      c,
		log:        log,
		done:       make(chan struct{}),
	}
	go t.run()
	return t
}

// Add schedules e. It fails on an invalid cron expression.
func (t *Timeline) Add(e Event) error {
	if err := t.ctx.Err(); err != nil {
		return err
	}
	if e.Action == nil {
		return fmt.Errorf("event %q: no action", e.Name)
	}
	if e.CronExpr != "" {
		if !gronx.IsValid(e.CronExpr) {
			return fmt.Errorf("event %q: invalid cron expression %q", e.Name, e.CronExpr)
		}
		if e.At.IsZero() {
			next, err := NextOccurrence(e.CronExpr, t.clock.Now())
			if err != nil {
				return fmt.Errorf("event %q: %w", e.Name, err)
			}
			e.At = next
		}
	}

	select {
	case t.addChan <- e:
	case <-t.ctx.Done():
		return t.ctx.Err()
	}
	return nil
}

// Remove drops every pending event with the given name.
func (t *Timeline) Remove(name string) {
	select {
	case t.removeChan <- name:
	case <-t.ctx.Done():
	}
}

// Done is closed once the timeline goroutine has exited.
func (t *Timeline) Done() <-chan struct{} {
	return t.done
}

func (t *Timeline) run() {
	defer close(t.done)

	var q due.Queue[Event]

	wake := make(chan struct{}, 1)
	var handle clock.Handle
	defer func() {
		if handle != 0 {
			t.clock.Cancel(handle)
		}
	}()

	resetTimer := func() {
		if handle != 0 {
			t.clock.Cancel(handle)
			handle = 0
		}
		next, ok := q.Peek()
		if !ok {
			return
		}
		dur := next.At.Sub(t.clock.Now())
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		handle = t.clock.After(dur, func() {
			select {
			case wake <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-t.ctx.Done():
			return

		case e := <-t.addChan:
			q.Push(e)
			resetTimer()

		case name := <-t.removeChan:
			q.RemoveFunc(func(e Event) bool { return e.Name == name })
			resetTimer()

		case <-wake:
			now := t.clock.Now()
			for {
				e, ok := q.PopDue(now)
				if !ok {
					break
				}
				e.Action()
				if e.CronExpr == "" {
					continue
				}
				next, err := NextOccurrence(e.CronExpr, t.clock.Now())
				if err != nil {
					t.log.Error("event %s: %v", e.Name, err)
					continue
				}
				e.At = next
				q.Push(e)
			}
			resetTimer()
		}
	}
}

// NextOccurrence returns the next time expr fires strictly after start.
func NextOccurrence(expr string, start time.Time) (time.Time, error) {
	return gronx.NextTickAfter(expr, start, false)
}
