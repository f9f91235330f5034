package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ib-77/timerace/pkg/logger"
	"github.com/ib-77/timerace/pkg/tempo"
	"github.com/ib-77/timerace/pkg/tempo/clock"
	"github.com/ib-77/timerace/pkg/tempo/sequence"
)

type Kind string

const (
	KindOnce      Kind = "timeout"
	KindRepeating Kind = "interval"
)

// Firing identifies one invocation of a session's run.
type Firing struct {
	Session string
	Kind    Kind
	Seq     int
	ID      uuid.UUID
}

// FireFunc starts the run for a firing. It is called on the clock's
// goroutine and must not block.
type FireFunc func(ctx context.Context, f Firing) *tempo.Future[sequence.Report]

// Armed is a scheduled session. Its handle stays owned by the session until
// it is cleared or, for a one-shot, the timer fires.
type Armed struct {
	Handle clock.Handle
	Kind   Kind
	ID     string

	clock   clock.Clock
	first   *tempo.Promise[sequence.Report]
	firings atomic.Int64
	release func() bool

	mu   sync.Mutex
	runs []*tempo.Future[sequence.Report]
}

// First settles with the first run to finish.
func (a *Armed) First() *tempo.Future[sequence.Report] {
	return a.first.Future()
}

// Firings returns the number of dispatched firings.
func (a *Armed) Firings() int {
	return int(a.firings.Load())
}

// Runs returns the futures of every dispatched run.
func (a *Armed) Runs() []*tempo.Future[sequence.Report] {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*tempo.Future[sequence.Report](nil), a.runs...)
}

// Stop clears the timer. It reports whether the timer was still armed;
// stopping twice is a no-op.
func (a *Armed) Stop() bool {
	if a.release != nil {
		a.release()
	}
	return a.clear()
}

func (a *Armed) clear() bool {
	if a.Kind == KindRepeating {
		return a.clock.CancelRepeating(a.Handle)
	}
	return a.clock.Cancel(a.Handle)
}

func (a *Armed) track(run *tempo.Future[sequence.Report]) {
	a.mu.Lock()
	a.runs = append(a.runs, run)
	a.mu.Unlock()
}

type Manager struct {
	clock clock.Clock
	log   logger.Logger
}

func NewManager(c clock.Clock, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Manager{clock: c, log: log}
}

// ArmOnce fires onFire once after initialDelay.
func (m *Manager) ArmOnce(ctx context.Context, id string, initialDelay time.Duration, onFire FireFunc) *Armed {
	a := m.newArmed(id, KindOnce)
	a.Handle = m.clock.After(initialDelay, func() { m.fire(ctx, a, onFire) })
	m.bind(ctx, a)
	return a
}

// ArmRepeating fires onFire every period until the handle is cleared.
func (m *Manager) ArmRepeating(ctx context.Context, id string, period time.Duration, onFire FireFunc) *Armed {
	a := m.newArmed(id, KindRepeating)
	a.Handle = m.clock.Every(period, func() { m.fire(ctx, a, onFire) })
	m.bind(ctx, a)
	return a
}

func (m *Manager) newArmed(id string, kind Kind) *Armed {
	return &Armed{
		ID:    id,
		Kind:  kind,
		clock: m.clock,
		first: tempo.NewPromise[sequence.Report](),
	}
}

// bind clears the timer once ctx is done.
func (m *Manager) bind(ctx context.Context, a *Armed) {
	a.release = context.AfterFunc(ctx, func() { a.clear() })
}

func (m *Manager) fire(ctx context.Context, a *Armed, onFire FireFunc) {
	if ctx.Err() != nil {
		return
	}

	f := Firing{Session: a.ID, Kind: a.Kind, Seq: int(a.firings.Add(1)), ID: uuid.New()}
	run := onFire(WithFiring(ctx, f), f)
	a.track(run)

	run.Then(func(o tempo.Outcome[sequence.Report]) {
		a.first.Settle(o)
		m.report(f, o)
	})
}

// report logs how a run ended. A run cut short by the end of its context is
// shutdown, not a failure, and is not logged.
func (m *Manager) report(f Firing, o tempo.Settlement) {
	switch {
	case tempo.IsContextDone(o.Err()):
	case o.IsCancel():
		m.log.Warning("%s id %s firing %d aborted: %v", f.Kind, f.Session, f.Seq, o.Err())
	case o.IsFailure():
		m.log.Error("%s id %s firing %d (run %s): %v", f.Kind, f.Session, f.Seq, o.Id(), tempo.Classify(o.Err()))
	}
}
