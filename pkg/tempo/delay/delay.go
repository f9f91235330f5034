package delay

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ib-77/timerace/pkg/logger"
	"github.com/ib-77/timerace/pkg/tempo"
	"github.com/ib-77/timerace/pkg/tempo/clock"
	"github.com/ib-77/timerace/pkg/tempo/signal"
)

// Entry is the shape shared by Catching and Propagating.
type Entry func(ctx context.Context, d time.Duration, label string) *tempo.Future[struct{}]

type Delayer struct {
	clock   clock.Clock
	signals *signal.Source
	log     logger.Logger
}

func New(c clock.Clock, signals *signal.Source, log logger.Logger) *Delayer {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Delayer{clock: c, signals: signals, log: log}
}

// Sleep arms a timer for d and subscribes to the signal active at call time.
// Expiry resolves with the elapsed time; a trigger clears the timer and
// rejects with *tempo.CancelledError. The losing side is always released.
func (d *Delayer) Sleep(dur time.Duration, label string) *tempo.Future[time.Duration] {
	p := tempo.NewPromise[time.Duration]()
	start := d.clock.Now()

	var (
		settled     atomic.Bool
		mu          sync.Mutex
		unsubscribe func()
	)
	release := func() {
		mu.Lock()
		u := unsubscribe
		unsubscribe = nil
		mu.Unlock()
		if u != nil {
			u()
		}
	}

	handle := d.clock.After(dur, func() {
		if !settled.CompareAndSwap(false, true) {
			return
		}
		release()
		p.Resolve(d.clock.Now().Sub(start))
	})

	_, unsub := d.signals.OnAbort(func() {
		if !settled.CompareAndSwap(false, true) {
			return
		}
		d.log.Info("Aborted triggered %s", label)
		d.clock.Cancel(handle)
		p.Reject(&tempo.CancelledError{Label: label})
	})

	mu.Lock()
	if settled.Load() {
		mu.Unlock()
		unsub()
	} else {
		unsubscribe = unsub
		mu.Unlock()
	}

	return p.Future()
}

// Catching waits like Sleep but absorbs the rejection: a cancellation is
// logged, any other error is logged as an unknown failure, and the wait
// always ends with "I finish". When ctx ends first the wait is abandoned
// silently and the future rejects with the context error.
func (d *Delayer) Catching(ctx context.Context, dur time.Duration, label string) *tempo.Future[struct{}] {
	sleep := d.Sleep(dur, label)
	return tempo.Go(func() (struct{}, error) {
		if _, err := sleep.Await(ctx); err != nil {
			if tempo.IsContextDone(err) {
				return struct{}{}, err
			}
			if tempo.IsCancelled(err) {
				d.log.Info("Sleep was aborted %s", label)
			} else {
				d.log.Error("An error occurred: %v", tempo.Classify(err))
			}
		}
		d.log.Info("I finish %s", label)
		return struct{}{}, nil
	})
}

// Propagating waits like Sleep and rejects with the same error, unwinding
// whoever awaits it. The end of ctx is passed on the same way.
func (d *Delayer) Propagating(ctx context.Context, dur time.Duration, label string) *tempo.Future[struct{}] {
	sleep := d.Sleep(dur, label)
	return tempo.Go(func() (struct{}, error) {
		if _, err := sleep.Await(ctx); err != nil {
			return struct{}{}, err
		}
		d.log.Info("I finish %s", label)
		return struct{}{}, nil
	})
}

var (
	_ Entry = (*Delayer)(nil).Catching
	_ Entry = (*Delayer)(nil).Propagating
)
