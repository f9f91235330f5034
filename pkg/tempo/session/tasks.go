package session

import (
	"context"
	"fmt"
	"time"

	"github.com/ib-77/timerace/pkg/tempo"
	"github.com/ib-77/timerace/pkg/tempo/delay"
	"github.com/ib-77/timerace/pkg/tempo/sequence"
)

// Shape is the number of tasks each firing runs.
const Shape = 5

func Label(kind Kind, id string, ordinal int) string {
	return fmt.Sprintf("%s id %s number %d", kind, id, ordinal)
}

// Tasks builds n delay tasks labelled with the session kind, id and ordinal.
// The delay is only created, and only subscribes to the abort signal, when
// the task runs.
func Tasks(entry delay.Entry, kind Kind, id string, step time.Duration, n int) []sequence.Task {
	tasks := make([]sequence.Task, n)
	for i := range n {
		label := Label(kind, id, i)
		tasks[i] = func(ctx context.Context) *tempo.Future[struct{}] {
			return entry(ctx, step, label)
		}
	}
	return tasks
}

// Runner returns a FireFunc running seq over n tasks of the given entry.
func Runner(seq *sequence.Sequencer, entry delay.Entry, step time.Duration, n int) FireFunc {
	return ObservedRunner(seq, entry, step, n, nil)
}

// ObservedRunner is Runner with per-firing sequencer handlers.
func ObservedRunner(seq *sequence.Sequencer, entry delay.Entry, step time.Duration, n int,
	observe func(f Firing) sequence.Handlers) FireFunc {
	return func(ctx context.Context, f Firing) *tempo.Future[sequence.Report] {
		tasks := Tasks(entry, f.Kind, f.Session, step, n)
		if observe == nil {
			return seq.Run(ctx, tasks)
		}
		return seq.RunWith(ctx, tasks, observe(f))
	}
}
