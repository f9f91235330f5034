package scenario

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/timerace/pkg/config"
	"github.com/ib-77/timerace/pkg/logger"
	"github.com/ib-77/timerace/pkg/tempo"
	"github.com/ib-77/timerace/pkg/tempo/sequence"
	"github.com/ib-77/timerace/pkg/tempo/session"
)

const step = 20 * time.Millisecond

func newHarness(t *testing.T, cfg config.Config, opts ...Option) (*Harness, *logger.Recorder) {
	t.Helper()
	rec := logger.NewRecorder(0)
	return NewHarness(cfg, rec, opts...), rec
}

func settle[T any](t *testing.T, f *tempo.Future[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v, err := f.Await(ctx)
	require.NoError(t, ctx.Err(), "future did not settle")
	return v, err
}

func settleRuns(t *testing.T, a *session.Armed) []sequence.Report {
	t.Helper()
	var out []sequence.Report
	for _, run := range a.Runs() {
		rep, err := settle(t, run)
		var stepErr *sequence.StepError
		if err != nil {
			require.ErrorAs(t, err, &stepErr)
			rep = stepErr.Report
		}
		out = append(out, rep)
	}
	return out
}

func TestZero_NoRunEverStarts(t *testing.T) {
	h, rec := newHarness(t, config.Default().WithStep(step))

	r, err := Zero(context.Background(), h)
	require.NoError(t, err)
	sum, err := settle(t, r.Cancel)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Cleared)
	assert.Equal(t, 0, sum.Aborted)

	time.Sleep(5 * step)
	assert.Equal(t, 0, r.Once.Firings())
	assert.Equal(t, 0, r.Repeating.Firings())
	assert.Equal(t, 1, rec.Count("cancel done 0"))
	assert.Equal(t, 0, rec.Count("I finish"))
}

func TestTwo_CancelsAfterBothFirstRuns(t *testing.T) {
	h, _ := newHarness(t, config.Default().WithStep(step))

	r, err := Two(context.Background(), h)
	require.NoError(t, err)
	sum, err := settle(t, r.Cancel)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Cleared, "the one-shot handle is already exhausted")
	assert.Positive(t, sum.Aborted, "later repeating runs are waiting")
	assert.Equal(t, 1, r.Once.Firings())

	fired := r.Repeating.Firings()
	time.Sleep(3 * step)
	assert.Equal(t, fired, r.Repeating.Firings(), "no firing after the cancellation")

	first, err := settle(t, r.Once.First())
	require.NoError(t, err)
	assert.Equal(t, sequence.Report{Total: 5, Ran: 5}, first)

	// Aborted waits are absorbed, so every dispatched run still completes.
	for _, rep := range settleRuns(t, r.Repeating) {
		assert.Equal(t, 5, rep.Ran)
		assert.False(t, rep.Stopped)
	}
}

func TestThree_FlagStopsRunsInFlight(t *testing.T) {
	h, _ := newHarness(t, config.Default().WithStep(step))

	r, err := Three(context.Background(), h)
	require.NoError(t, err)
	require.True(t, r.Cancel.Settled())
	assert.False(t, h.Flag.Continue())

	for _, rep := range append(settleRuns(t, r.Once), settleRuns(t, r.Repeating)...) {
		assert.True(t, rep.Stopped)
		assert.Less(t, rep.Ran, 5)
	}
}

func TestFour_RunsStopBeforeFirstTask(t *testing.T) {
	h, rec := newHarness(t, config.Default().WithStep(step))

	r, err := Four(context.Background(), h)
	require.NoError(t, err)
	assert.False(t, h.Flag.Continue())
	_, err = settle(t, r.Cancel)
	require.NoError(t, err)

	for _, rep := range append(settleRuns(t, r.Once), settleRuns(t, r.Repeating)...) {
		assert.Equal(t, sequence.Report{Total: 5, Ran: 0, Stopped: true}, rep)
	}
	assert.Equal(t, 0, rec.Count("I finish"))
}

func TestFive_PropagatingDelayUnwindsRuns(t *testing.T) {
	cfg := config.Default().WithStep(step)
	cfg.InitialDelay = cfg.Scale(1500)
	cfg.Period = cfg.Scale(1500)
	h, rec := newHarness(t, cfg)

	r, err := Five(context.Background(), h)
	require.NoError(t, err)
	_, err = settle(t, r.Cancel)
	require.NoError(t, err)

	_, err = settle(t, r.Once.First())
	assert.ErrorIs(t, err, tempo.ErrCancelled)
	_, err = settle(t, r.Repeating.First())
	assert.ErrorIs(t, err, tempo.ErrCancelled)

	assert.Equal(t, 1, rec.Count("timeout id 5 firing 1 aborted"))
	assert.Equal(t, 1, rec.Count("interval id 5 firing 1 aborted"))
	assert.Equal(t, 0, rec.Count("Sleep was aborted"))
}

func TestSeven_AbortBeforeAndDuringWait(t *testing.T) {
	h, rec := newHarness(t, config.Default().WithStep(step))

	rep, err := Seven(context.Background(), h)
	require.NoError(t, err)

	_, err = settle(t, rep.Immediate)
	assert.ErrorIs(t, err, tempo.ErrCancelled)
	assert.ErrorIs(t, rep.Awaited, tempo.ErrCancelled)

	_, err = settle(t, rep.Handled)
	assert.NoError(t, err)
	assert.Equal(t, 1, rec.Count("no try/catch"))
}

func TestScript_ThreePhases(t *testing.T) {
	h, rec := newHarness(t, config.Default().WithStep(10*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := Script(ctx, h)
	require.NoError(t, err)
	sums, err := settle(t, s.Finished)
	require.NoError(t, err)

	require.Len(t, sums, 3)
	for i := 1; i < len(sums); i++ {
		assert.Greater(t, sums[i].Generation, sums[i-1].Generation)
	}
	phases := s.Phases()
	require.Len(t, phases, 3)
	assert.True(t, h.Flag.Continue(), "the last phase raises the flag again")
	assert.Equal(t, 3, rec.Count("start"))
	assert.Equal(t, 1, rec.Count("hard to predict my order"))

	fired := phases[2].Repeating.Firings()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, fired, phases[2].Repeating.Firings())
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"zero", "one", "two", "three", "four", "five", "seven"} {
		f, err := Lookup(name)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}

	_, err := Lookup("six")
	assert.Error(t, err)
}

func TestWithObserver_SeesEveryFiring(t *testing.T) {
	cfg := config.Default().WithStep(step)
	cfg.Tasks = 2

	seen := make(chan session.Firing, 16)
	h, _ := newHarness(t, cfg, WithObserver(func(f session.Firing) sequence.Handlers {
		return sequence.Handlers{OnStart: func(context.Context, int) { seen <- f }}
	}))

	r, err := One(context.Background(), h)
	require.NoError(t, err)
	_, err = settle(t, r.Cancel)
	require.NoError(t, err)
	settleRuns(t, r.Once)
	settleRuns(t, r.Repeating)

	assert.Equal(t, r.Once.Firings()+r.Repeating.Firings(), len(seen))
}
