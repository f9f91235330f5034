package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/urfave/cli"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ib-77/timerace/pkg/config"
	"github.com/ib-77/timerace/pkg/logger"
	"github.com/ib-77/timerace/pkg/tempo/clock"
	"github.com/ib-77/timerace/pkg/tempo/scenario"
	"github.com/ib-77/timerace/pkg/tempo/sequence"
	"github.com/ib-77/timerace/pkg/tempo/timeline"
)

const tracerName = "github.com/ib-77/timerace/cmd/timerace"

// spans returns harness options recording sequencer spans when --spans is
// set, and a function printing their summary.
func spans(out io.Writer) ([]scenario.Option, func()) {
	if !showSpans {
		return nil, func() {}
	}
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	opt := scenario.WithSequencerOptions(sequence.WithTracer(tp.Tracer(tracerName)))
	return []scenario.Option{opt}, func() {
		_ = tp.Shutdown(context.Background())
		events := map[string]int{}
		ended := sr.Ended()
		for _, s := range ended {
			for _, e := range s.Events() {
				events[e.Name]++
			}
		}
		fmt.Fprintf(out, "--- spans: %d runs ---\n", len(ended))
		names := make([]string, 0, len(events))
		for name := range events {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "%s: %d\n", name, events[name])
		}
	}
}

func run(out io.Writer) cli.ActionFunc {
	return func(c *cli.Context) error {
		name := c.Args().First()
		if name == "" {
			return cli.NewExitError("missing scenario, see 'timerace list'", 1)
		}
		f, err := scenario.Lookup(name)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		l, rec := newLogger(out, cfg)
		defer l.Close()

		opts, printSpans := spans(out)
		var bars *progress
		if showProgress {
			bars = newProgress(out)
			opts = append(opts, scenario.WithObserver(bars.observe))
		}
		h := scenario.NewHarness(cfg, l, opts...)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Observe)
		defer cancel()
		r, err := f(ctx, h)
		if err != nil {
			return fmt.Errorf("scenario %s: %w", name, err)
		}
		<-ctx.Done()
		r.Stop()

		if bars != nil {
			bars.shutdown()
		}
		printSpans()
		printTrace(out, rec)
		return nil
	}
}

func script(out io.Writer) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		l, rec := newLogger(out, cfg)
		defer l.Close()

		opts, printSpans := spans(out)
		h := scenario.NewHarness(cfg, l, opts...)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Observe)
		defer cancel()
		s, err := scenario.Script(ctx, h)
		if err != nil {
			return err
		}
		if _, err := s.Finished.Await(ctx); err != nil {
			l.Warning("script interrupted: %v", err)
		}
		for _, r := range s.Phases() {
			r.Stop()
		}
		printSpans()
		printTrace(out, rec)
		return nil
	}
}

func cron(out io.Writer) cli.ActionFunc {
	return func(c *cli.Context) error {
		f, err := scenario.Lookup(cronScenario)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		l, rec := newLogger(out, cfg)
		defer l.Close()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Observe)
		defer cancel()

		opts, printSpans := spans(out)
		tl := timeline.New(ctx, clock.NewSystem(), l)
		err = tl.Add(timeline.Event{
			Name:     cronScenario,
			CronExpr: cronExpr,
			Action:   startScenario(ctx, f, cfg, l, opts),
		})
		if err != nil {
			return err
		}
		<-tl.Done()
		printSpans()
		printTrace(out, rec)
		return nil
	}
}

// startScenario runs f on a fresh harness per tick, so that flags and
// signals are not shared between ticks.
func startScenario(ctx context.Context, f scenario.Func, cfg config.Config, l logger.Logger, opts []scenario.Option) func() {
	return func() {
		go func() {
			if _, err := f(ctx, scenario.NewHarness(cfg, l, opts...)); err != nil && ctx.Err() == nil {
				l.Error("%s: %v", cronScenario, err)
			}
		}()
	}
}
