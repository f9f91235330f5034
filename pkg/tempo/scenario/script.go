package scenario

import (
	"context"
	"strconv"
	"sync"

	"github.com/ib-77/timerace/pkg/tempo"
	"github.com/ib-77/timerace/pkg/tempo/canceller"
	"github.com/ib-77/timerace/pkg/tempo/delay"
	"github.com/ib-77/timerace/pkg/tempo/timeline"
)

// ScriptRun tracks the phases armed by Script.
type ScriptRun struct {
	Timeline *timeline.Timeline
	// Finished resolves after the last cancellation has run.
	Finished *tempo.Future[[]canceller.Summary]

	mu        sync.Mutex
	phases    []*Run
	summaries []canceller.Summary
}

// Phases returns the runs armed so far, oldest first.
func (s *ScriptRun) Phases() []*Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Run, len(s.phases))
	copy(out, s.phases)
	return out
}

func (s *ScriptRun) add(r *Run) {
	s.mu.Lock()
	s.phases = append(s.phases, r)
	s.mu.Unlock()
}

func (s *ScriptRun) current() *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.phases) == 0 {
		return nil
	}
	return s.phases[len(s.phases)-1]
}

// Script replays a fixed schedule on a timeline: three phases of sessions
// armed with a 0.9 step cadence, each torn down by a cancellation, with the
// flag lowered between the second and third phase and raised again for the
// third, which uses the propagating delay.
func Script(ctx context.Context, h *Harness) (*ScriptRun, error) {
	tl := timeline.New(ctx, h.Clock, h.Log)
	finished := tempo.NewPromise[[]canceller.Summary]()
	s := &ScriptRun{Timeline: tl, Finished: finished.Future()}

	cadence := h.Config.Scale(900)
	start := h.Clock.Now()

	armPhase := func(entry delay.Entry) {
		h.Log.Info("start")
		s.add(h.armWith(ctx, len(s.Phases())+1, cadence, cadence, entry))
	}
	cancel := func(last bool) func() {
		return func() {
			r := s.current()
			if r == nil {
				return
			}
			sum := h.Canceller.Cancel(strconv.Itoa(r.ID), r.Once.Handle, r.Repeating.Handle)
			s.mu.Lock()
			s.summaries = append(s.summaries, sum)
			all := append([]canceller.Summary(nil), s.summaries...)
			s.mu.Unlock()
			if last {
				finished.Resolve(all)
			}
		}
	}

	armPhase(h.Delayer.Catching)

	events := []struct {
		name   string
		milli  int
		action func()
	}{
		{"cancel-1", 1200, cancel(false)},
		{"arm-2", 7000, func() { armPhase(h.Delayer.Catching) }},
		{"cancel-2", 8000, cancel(false)},
		{"stop", 9000, func() { h.Flag.Set(false) }},
		{"arm-3", 10000, func() {
			h.Flag.Set(true)
			armPhase(h.Delayer.Propagating)
		}},
		{"cancel-3", 11000, cancel(true)},
	}
	for _, e := range events {
		if err := tl.Add(timeline.Event{Name: e.name, At: start.Add(h.Config.Scale(e.milli)), Action: e.action}); err != nil {
			s.Phases()[0].Stop()
			return nil, err
		}
	}

	h.Log.Info("hard to predict my order")
	return s, nil
}
