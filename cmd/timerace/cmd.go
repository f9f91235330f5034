package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/urfave/cli"

	"github.com/ib-77/timerace/pkg/config"
	"github.com/ib-77/timerace/pkg/logger"
	"github.com/ib-77/timerace/pkg/tempo/scenario"
)

const description = `timerace replays cooperative cancellation scenarios: one-shot and
repeating sessions of abortable delays, torn down by a shared abort signal
and a continue flag. Timing defaults come from TIMERACE_* variables.`

var (
	step         time.Duration
	observe      time.Duration
	showProgress bool
	dumpTrace    bool
	showSpans    bool
	cronExpr     string
	cronScenario string
)

var timingFlags = []cli.Flag{
	cli.DurationFlag{
		Name:        "step, s",
		Usage:       "duration of one scenario step (default: TIMERACE_STEP or 1s)",
		Destination: &step,
	},
	cli.DurationFlag{
		Name:        "observe, o",
		Usage:       "how long to watch before tearing everything down (default: TIMERACE_OBSERVE or 15s)",
		Destination: &observe,
	},
	cli.BoolFlag{
		Name:        "trace, t",
		Usage:       "print the recorded log once the run is over",
		Destination: &dumpTrace,
	},
	cli.BoolFlag{
		Name:        "spans",
		Usage:       "print a summary of the sequencer spans",
		Destination: &showSpans,
	},
}

var runFlags = append([]cli.Flag{
	cli.BoolFlag{
		Name:        "progress, p",
		Usage:       "draw a progress bar per firing",
		Destination: &showProgress,
	},
}, timingFlags...)

var cronFlags = append([]cli.Flag{
	cli.StringFlag{
		Name:        "expr, e",
		Usage:       "6-field cron expression, seconds first",
		Value:       "*/5 * * * * *",
		Destination: &cronExpr,
	},
	cli.StringFlag{
		Name:        "scenario",
		Usage:       "scenario started on every tick",
		Value:       "one",
		Destination: &cronScenario,
	},
}, timingFlags...)

func Execute(args []string, out io.Writer) error {
	app := cli.App{
		Name:        "timerace",
		HelpName:    "timerace",
		Usage:       "cooperative cancellation playground",
		UsageText:   "timerace <command> [arguments...]",
		Description: description,
		Writer:      out,
		Commands: []cli.Command{
			{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "list the scenarios",
				Action:  list(out),
			},
			{
				Name:      "run",
				Aliases:   []string{"r"},
				Usage:     "run one scenario",
				ArgsUsage: "<scenario>",
				Action:    run(out),
				Flags:     runFlags,
			},
			{
				Name:   "script",
				Usage:  "replay the scheduled script",
				Action: script(out),
				Flags:  timingFlags,
			},
			{
				Name:   "cron",
				Usage:  "start a scenario on a cron schedule",
				Action: cron(out),
				Flags:  cronFlags,
			},
		},
	}
	return app.Run(args)
}

func list(out io.Writer) cli.ActionFunc {
	return func(*cli.Context) error {
		names := make([]string, 0, len(scenario.Registry))
		for name := range scenario.Registry {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
		return nil
	}
}

// loadConfig reads the environment and applies the flags that were set.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.ParseEnv()
	if err != nil {
		return cfg, err
	}
	if c.IsSet("step") {
		cfg = cfg.WithStep(step)
	}
	if c.IsSet("observe") {
		cfg.Observe = observe
	}
	return cfg, cfg.Validate()
}

func newLogger(out io.Writer, cfg config.Config) (logger.Logger, *logger.Recorder) {
	rec := logger.NewRecorder(cfg.TraceCapacity, logger.NewConsole(out))
	return rec, rec
}

func printTrace(out io.Writer, rec *logger.Recorder) {
	if !dumpTrace {
		return
	}
	fmt.Fprintln(out, "--- trace ---")
	for _, e := range rec.Entries() {
		fmt.Fprintln(out, e)
	}
	if n := rec.Dropped(); n > 0 {
		fmt.Fprintf(out, "(%d older entries dropped)\n", n)
	}
}
