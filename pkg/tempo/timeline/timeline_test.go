package timeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/timerace/pkg/tempo/clock"
)

type fired struct {
	mu    sync.Mutex
	names []string
}

func (f *fired) action(name string) func() {
	return func() {
		f.mu.Lock()
		f.names = append(f.names, name)
		f.mu.Unlock()
	}
}

func (f *fired) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.names...)
}

func TestTimeline_FiresInTimeOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := clock.NewSystem()
	tl := New(ctx, c, nil)
	f := &fired{}
	now := c.Now()

	require.NoError(t, tl.Add(Event{Name: "cancel", At: now.Add(60 * time.Millisecond), Action: f.action("cancel")}))
	require.NoError(t, tl.Add(Event{Name: "arm", At: now.Add(20 * time.Millisecond), Action: f.action("arm")}))
	require.NoError(t, tl.Add(Event{Name: "flag", At: now.Add(40 * time.Millisecond), Action: f.action("flag")}))

	require.Eventually(t, func() bool { return len(f.snapshot()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"arm", "flag", "cancel"}, f.snapshot())
}

func TestTimeline_RemoveBeforeFire(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := clock.NewSystem()
	tl := New(ctx, c, nil)
	f := &fired{}

	require.NoError(t, tl.Add(Event{Name: "gone", At: c.Now().Add(100 * time.Millisecond), Action: f.action("gone")}))
	require.NoError(t, tl.Add(Event{Name: "kept", At: c.Now().Add(150 * time.Millisecond), Action: f.action("kept")}))
	tl.Remove("gone")

	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, []string{"kept"}, f.snapshot())
}

func TestTimeline_ShutdownViaContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	c := clock.NewSystem()
	tl := New(ctx, c, nil)
	f := &fired{}
	require.NoError(t, tl.Add(Event{Name: "late", At: c.Now().Add(100 * time.Millisecond), Action: f.action("late")}))

	cancel()
	select {
	case <-tl.Done():
	case <-time.After(time.Second):
		t.Fatal("timeline did not stop")
	}

	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, f.snapshot())
	assert.Error(t, tl.Add(Event{Name: "after", At: c.Now(), Action: f.action("after")}))
}

func TestTimeline_CronRecurs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := clock.NewSystem()
	tl := New(ctx, c, nil)
	f := &fired{}

	require.NoError(t, tl.Add(Event{Name: "tick", CronExpr: "* * * * * *", Action: f.action("tick")}))
	require.Eventually(t, func() bool { return len(f.snapshot()) >= 2 }, 3*time.Second, 20*time.Millisecond)
}

func TestTimeline_InvalidEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tl := New(ctx, clock.NewSystem(), nil)
	assert.ErrorContains(t, tl.Add(Event{Name: "bad", CronExpr: "not a cron", Action: func() {}}), "invalid cron")
	assert.ErrorContains(t, tl.Add(Event{Name: "empty"}), "no action")
}

func TestNextOccurrence(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	next, err := NextOccurrence("*/10 * * * * *", start)
	require.NoError(t, err)
	assert.Equal(t, start.Add(10*time.Second), next)
}
