package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/ib-77/timerace/pkg/tempo/sequence"
	"github.com/ib-77/timerace/pkg/tempo/session"
)

// progress draws one bar per firing, advanced by each finished task.
type progress struct {
	p *mpb.Progress
}

func newProgress(out io.Writer) *progress {
	rr := time.Millisecond * 30
	return &progress{p: mpb.New(mpb.WithOutput(out), mpb.WithWidth(40), mpb.WithRefreshRate(rr), mpb.WithAutoRefresh())}
}

func (p *progress) observe(f session.Firing) sequence.Handlers {
	var bar *mpb.Bar
	return sequence.Handlers{
		OnStart: func(_ context.Context, total int) {
			name := fmt.Sprintf("%s id %s #%d", f.Kind, f.Session, f.Seq)
			// Add fails once drawing has been shut down; such a run gets no bar.
			bar, _ = p.p.Add(int64(total),
				mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟").Build(),
				mpb.PrependDecorators(
					decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}),
					decor.OnAbort(decor.CountersNoUnit("%d/%d", decor.WC{W: 6}), "stopped"),
				),
				mpb.AppendDecorators(decor.OnComplete(decor.Elapsed(decor.ET_STYLE_GO), "done")),
			)
		},
		OnStep: func(_ context.Context, _ int, err error) {
			if bar == nil {
				return
			}
			if err != nil {
				bar.Abort(false)
				return
			}
			bar.Increment()
		},
		OnBreak: func(context.Context, int) {
			if bar != nil {
				bar.Abort(false)
			}
		},
	}
}

// shutdown stops drawing, leaving bars of unfinished runs as they are.
func (p *progress) shutdown() {
	p.p.Shutdown()
}
