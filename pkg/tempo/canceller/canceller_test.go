package canceller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/timerace/pkg/logger"
	"github.com/ib-77/timerace/pkg/tempo"
	"github.com/ib-77/timerace/pkg/tempo/clock"
	"github.com/ib-77/timerace/pkg/tempo/delay"
	"github.com/ib-77/timerace/pkg/tempo/signal"
)

func await(t *testing.T, f *tempo.Future[Summary]) (Summary, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s, err := f.Await(ctx)
	require.False(t, tempo.IsContextDone(err) && ctx.Err() != nil, "future did not settle")
	return s, err
}

func TestCancelAfter_ClearsTriggersAndRearms(t *testing.T) {
	c := clock.NewManual(time.Unix(0, 0))
	src := signal.NewSource()
	rec := logger.NewRecorder(0)
	d := delay.New(c, src, rec)
	cn := New(c, src, rec)

	fired := 0
	once := c.After(5*time.Second, func() { fired++ })
	every := c.Every(5*time.Second, func() { fired++ })
	sleep := d.Sleep(10*time.Second, "pending")
	before := src.Current()

	f := cn.CancelAfter(context.Background(), "1", time.Second, once, every)
	c.Advance(999 * time.Millisecond)
	assert.False(t, f.Settled())

	c.Advance(time.Millisecond)
	s, err := await(t, f)
	require.NoError(t, err)
	assert.Equal(t, Summary{Cleared: 2, Aborted: 1, Generation: before.Generation() + 1}, s)
	assert.True(t, before.Spent())
	assert.NotSame(t, before, src.Current())
	assert.Equal(t, 1, rec.Count("cancel done 1"))

	_, err = sleep.Await(context.Background())
	assert.ErrorIs(t, err, tempo.ErrCancelled)

	c.Advance(time.Minute)
	assert.Equal(t, 0, fired)
}

func TestCancelAfter_AlreadyClearedHandlesAreNoop(t *testing.T) {
	c := clock.NewManual(time.Unix(0, 0))
	src := signal.NewSource()
	cn := New(c, src, nil)

	every := c.Every(time.Second, func() {})
	require.True(t, c.CancelRepeating(every))

	f := cn.CancelAfter(context.Background(), "2", 0, every, every)
	c.Advance(0)
	s, err := await(t, f)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Cleared)
	assert.Equal(t, 0, s.Aborted, "no waiters, nothing aborted")
}

func TestCancelAfter_ContextEndsFirst(t *testing.T) {
	c := clock.NewManual(time.Unix(0, 0))
	src := signal.NewSource()
	cn := New(c, src, nil)
	gen := src.Current().Generation()

	ctx, cancel := context.WithCancel(context.Background())
	f := cn.CancelAfter(ctx, "3", time.Second)
	cancel()

	_, err := await(t, f)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, c.Pending())

	c.Advance(time.Second)
	assert.Equal(t, gen, src.Current().Generation(), "a dropped cancellation never re-arms")
}

func TestCancel_ZeroDelayBeatsPendingTimers(t *testing.T) {
	t.Parallel()

	sys := clock.NewSystem()
	src := signal.NewSource()
	cn := New(sys, src, nil)

	fired := make(chan struct{}, 2)
	once := sys.After(50*time.Millisecond, func() { fired <- struct{}{} })
	every := sys.Every(50*time.Millisecond, func() { fired <- struct{}{} })

	s, err := await(t, cn.CancelAfter(context.Background(), "0", 0, once, every))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Cleared)

	select {
	case <-fired:
		t.Fatal("cleared timers must not fire")
	case <-time.After(120 * time.Millisecond):
	}
}
