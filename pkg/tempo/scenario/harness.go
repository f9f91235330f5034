package scenario

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ib-77/timerace/pkg/config"
	"github.com/ib-77/timerace/pkg/logger"
	"github.com/ib-77/timerace/pkg/tempo"
	"github.com/ib-77/timerace/pkg/tempo/canceller"
	"github.com/ib-77/timerace/pkg/tempo/clock"
	"github.com/ib-77/timerace/pkg/tempo/delay"
	"github.com/ib-77/timerace/pkg/tempo/sequence"
	"github.com/ib-77/timerace/pkg/tempo/session"
	"github.com/ib-77/timerace/pkg/tempo/signal"
)

type Harness struct {
	Config    config.Config
	Log       logger.Logger
	Clock     clock.Clock
	Signals   *signal.Source
	Flag      *sequence.Flag
	Delayer   *delay.Delayer
	Sequencer *sequence.Sequencer
	Sessions  *session.Manager
	Canceller *canceller.Canceller

	observe func(f session.Firing) sequence.Handlers
}

type Option func(*Harness)

func WithClock(c clock.Clock) Option {
	return func(h *Harness) { h.Clock = c }
}

// WithObserver attaches sequencer handlers to every firing.
func WithObserver(observe func(f session.Firing) sequence.Handlers) Option {
	return func(h *Harness) { h.observe = observe }
}

func WithSequencerOptions(opts ...sequence.Option) Option {
	return func(h *Harness) {
		h.Sequencer = sequence.New(h.Flag, append([]sequence.Option{sequence.WithLogger(h.Log)}, opts...)...)
	}
}

func NewHarness(cfg config.Config, log logger.Logger, opts ...Option) *Harness {
	if log == nil {
		log = logger.NewNopLogger()
	}
	h := &Harness{
		Config:  cfg,
		Log:     log,
		Clock:   clock.NewSystem(),
		Signals: signal.NewSource(),
		Flag:    sequence.NewFlag(true),
	}
	h.Sequencer = sequence.New(h.Flag, sequence.WithLogger(log))
	for _, opt := range opts {
		opt(h)
	}
	h.Delayer = delay.New(h.Clock, h.Signals, log)
	h.Sessions = session.NewManager(h.Clock, log)
	h.Canceller = canceller.New(h.Clock, h.Signals, log)
	return h
}

// Run is the state of one scenario invocation.
type Run struct {
	ID        int
	Once      *session.Armed
	Repeating *session.Armed
	Cancel    *tempo.Future[canceller.Summary]
}

// Stop clears whatever timers the run still holds.
func (r *Run) Stop() {
	if r.Once != nil {
		r.Once.Stop()
	}
	if r.Repeating != nil {
		r.Repeating.Stop()
	}
}

func (h *Harness) runner(entry delay.Entry) session.FireFunc {
	return session.ObservedRunner(h.Sequencer, entry, h.Config.Step, h.Config.Tasks, h.observe)
}

// arm starts the one-shot and the repeating session of scenario id with the
// configured timing.
func (h *Harness) arm(ctx context.Context, id int, entry delay.Entry) *Run {
	h.Log.Info("start %d", id)
	return h.armWith(ctx, id, h.Config.InitialDelay, h.Config.Period, entry)
}

func (h *Harness) armWith(ctx context.Context, id int, initialDelay, period time.Duration, entry delay.Entry) *Run {
	sid := strconv.Itoa(id)
	return &Run{
		ID:        id,
		Once:      h.Sessions.ArmOnce(ctx, sid, initialDelay, h.runner(entry)),
		Repeating: h.Sessions.ArmRepeating(ctx, sid, period, h.runner(entry)),
	}
}

func (h *Harness) cancelAfter(ctx context.Context, r *Run, milli int) *tempo.Future[canceller.Summary] {
	return h.Canceller.CancelAfter(ctx, strconv.Itoa(r.ID), h.Config.Scale(milli), r.Once.Handle, r.Repeating.Handle)
}

// Func is the signature shared by the scenarios.
type Func func(ctx context.Context, h *Harness) (*Run, error)

// Registry maps scenario names to their implementation.
var Registry = map[string]Func{
	"zero":  Zero,
	"one":   One,
	"two":   Two,
	"three": Three,
	"four":  Four,
	"five":  Five,
	"seven": func(ctx context.Context, h *Harness) (*Run, error) {
		_, err := Seven(ctx, h)
		return &Run{ID: 7}, err
	},
}

// Lookup returns the named scenario.
func Lookup(name string) (Func, error) {
	f, ok := Registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q", name)
	}
	return f, nil
}
