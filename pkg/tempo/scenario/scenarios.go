package scenario

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ib-77/timerace/pkg/tempo"
	"github.com/ib-77/timerace/pkg/tempo/canceller"
)

// Zero arms both sessions and cancels with no delay. The cancellation timer
// is armed after the session timers but is due first, so both timers are
// cleared while still pending and no run ever starts.
func Zero(ctx context.Context, h *Harness) (*Run, error) {
	r := h.arm(ctx, 0, h.Delayer.Catching)
	r.Cancel = h.cancelAfter(ctx, r, 0)
	return r, nil
}

// One cancels one step after arming. The aborted waits are absorbed, so
// every run that already started carries on with its next task.
func One(ctx context.Context, h *Harness) (*Run, error) {
	r := h.arm(ctx, 1, h.Delayer.Catching)
	r.Cancel = h.cancelAfter(ctx, r, 1000)
	h.Log.Info("hard to predict my order")
	return r, nil
}

// Two cancels with no delay once the first run of each session has
// finished. The one-shot is already exhausted; the repeating session loses
// only its future firings, and the runs it already started are only
// interrupted in the wait they are in at that moment.
func Two(ctx context.Context, h *Harness) (*Run, error) {
	r := h.arm(ctx, 2, h.Delayer.Catching)
	r.Cancel = tempo.Go(func() (canceller.Summary, error) {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			_, err := r.Once.First().Await(gctx)
			return err
		})
		g.Go(func() error {
			_, err := r.Repeating.First().Await(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return canceller.Summary{}, err
		}
		return h.cancelAfter(ctx, r, 0).Await(ctx)
	})
	return r, nil
}

// Three waits for a one-step cancellation and then lowers the flag, which
// stops every in-flight run before its next task. Clearing timers alone
// cannot do that.
func Three(ctx context.Context, h *Harness) (*Run, error) {
	r := h.arm(ctx, 3, h.Delayer.Catching)
	r.Cancel = h.cancelAfter(ctx, r, 1000)
	if _, err := r.Cancel.Await(ctx); err != nil {
		return r, err
	}
	h.Flag.Set(false)
	return r, nil
}

// Four lowers the flag right after scheduling the cancellation, before any
// session fires, so every run stops before its first task.
func Four(ctx context.Context, h *Harness) (*Run, error) {
	h.Flag.Set(true)
	r := h.arm(ctx, 4, h.Delayer.Catching)
	r.Cancel = h.cancelAfter(ctx, r, 1000)
	h.Flag.Set(false)
	return r, nil
}

// Five uses the propagating delay: the cancellation after two steps rejects
// the waits in flight and unwinds their runs, which a cleared timer cannot
// do.
func Five(ctx context.Context, h *Harness) (*Run, error) {
	h.Flag.Set(true)
	r := h.arm(ctx, 5, h.Delayer.Propagating)
	r.Cancel = h.cancelAfter(ctx, r, 2000)
	return r, nil
}

// SevenReport holds the three waits of Seven.
type SevenReport struct {
	// Immediate was subscribed before a synchronous trigger.
	Immediate *tempo.Future[struct{}]
	// Awaited was aborted half a step into the wait.
	Awaited error
	// Handled settles after its rejection handler has logged.
	Handled *tempo.Future[struct{}]
}

// Seven shows that only subscribed waits can be aborted, and that a
// rejection is observed either by awaiting it or by chaining a handler.
func Seven(ctx context.Context, h *Harness) (*SevenReport, error) {
	step := h.Config.Step
	h.Signals.Arm()
	h.Log.Info("start %d", 7)

	rep := &SevenReport{}
	rep.Immediate = tempo.Chain(h.Delayer.Sleep(step, "7"), discard)
	h.Signals.TriggerAndArm()

	h.Clock.After(h.Config.Scale(500), func() { h.Signals.TriggerAndArm() })
	if _, err := h.Delayer.Sleep(step, "7").Await(ctx); err != nil {
		if tempo.IsContextDone(err) {
			return rep, err
		}
		h.Log.Info("%v", err)
		rep.Awaited = err
	}

	h.Signals.Arm()
	h.Clock.After(h.Config.Scale(500), func() { h.Signals.TriggerAndArm() })
	rep.Handled = tempo.Chain(h.Delayer.Sleep(step, "7"), func(o tempo.Outcome[time.Duration]) (struct{}, error) {
		if o.Err() != nil {
			h.Log.Info("no try/catch %v", o.Err())
		}
		return struct{}{}, nil
	})
	return rep, nil
}

func discard(o tempo.Outcome[time.Duration]) (struct{}, error) {
	return struct{}{}, o.Err()
}
