// Package canceller tears sessions down: after a delay it clears their
// timers, triggers the active abort signal and arms a fresh one.
//
// The delay matters. Triggering in the same instant the timers are armed
// reaches no delay at all, because none has subscribed yet; only waits that
// are subscribed when the trigger runs are aborted.
package canceller

import (
	"context"
	"sync"
	"time"

	"github.com/ib-77/timerace/pkg/logger"
	"github.com/ib-77/timerace/pkg/tempo"
	"github.com/ib-77/timerace/pkg/tempo/clock"
	"github.com/ib-77/timerace/pkg/tempo/signal"
)

// Summary describes a completed cancellation.
type Summary struct {
	// Cleared counts handles that were still armed.
	Cleared int
	// Aborted counts waits notified by the trigger.
	Aborted int
	// Generation of the freshly armed signal.
	Generation uint64
}

type Canceller struct {
	clock   clock.Clock
	signals *signal.Source
	log     logger.Logger
}

func New(c clock.Clock, signals *signal.Source, log logger.Logger) *Canceller {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Canceller{clock: c, signals: signals, log: log}
}

// CancelAfter waits d, then clears every handle, triggers the active signal,
// arms a fresh one and resolves. Clearing only prevents future firings; a
// run already dispatched keeps going. If ctx ends first the cancellation is
// dropped and the future rejects with the context error.
func (c *Canceller) CancelAfter(ctx context.Context, id string, d time.Duration, handles ...clock.Handle) *tempo.Future[Summary] {
	p := tempo.NewPromise[Summary]()

	var (
		mu   sync.Mutex
		stop func() bool
	)
	h := c.clock.After(d, func() {
		mu.Lock()
		release := stop
		mu.Unlock()
		if release != nil {
			release()
		}
		if ctx.Err() != nil {
			p.Reject(ctx.Err())
			return
		}
		p.Resolve(c.cancel(id, handles))
	})
	mu.Lock()
	stop = context.AfterFunc(ctx, func() {
		if c.clock.Cancel(h) {
			p.Reject(ctx.Err())
		}
	})
	mu.Unlock()

	return p.Future()
}

// Cancel runs the teardown immediately.
func (c *Canceller) Cancel(id string, handles ...clock.Handle) Summary {
	return c.cancel(id, handles)
}

func (c *Canceller) cancel(id string, handles []clock.Handle) Summary {
	var s Summary
	for _, h := range handles {
		if c.clock.Cancel(h) {
			s.Cleared++
		}
	}
	aborted, fresh := c.signals.TriggerAndArm()
	s.Aborted = aborted
	s.Generation = fresh.Generation()
	c.log.Info("cancel done %s", id)
	return s
}
