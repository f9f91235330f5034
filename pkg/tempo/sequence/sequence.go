package sequence

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ib-77/timerace/pkg/logger"
	"github.com/ib-77/timerace/pkg/tempo"
)

const tracerName = "github.com/ib-77/timerace/pkg/tempo/sequence"

// Task is an opaque unit of work producing a future.
type Task func(ctx context.Context) *tempo.Future[struct{}]

// Report describes how far a run got. Ran counts the tasks that were
// started.
type Report struct {
	Total   int
	Ran     int
	Stopped bool
}

// Handlers are optional callbacks invoked on the run's goroutine.
type Handlers struct {
	OnStart func(ctx context.Context, total int)
	OnStep  func(ctx context.Context, step int, err error)
	OnBreak func(ctx context.Context, rest int)
}

// StepError is the rejection of a run whose task, or context, failed.
type StepError struct {
	Step   int
	Report Report
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type Sequencer struct {
	flag     *Flag
	log      logger.Logger
	tracer   trace.Tracer
	handlers Handlers
}

type Option func(*Sequencer)

func WithLogger(l logger.Logger) Option {
	return func(s *Sequencer) { s.log = l }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Sequencer) { s.tracer = t }
}

// WithHandlers sets the handlers used by Run.
func WithHandlers(h Handlers) Option {
	return func(s *Sequencer) { s.handlers = h }
}

func New(flag *Flag, opts ...Option) *Sequencer {
	s := &Sequencer{
		flag:   flag,
		log:    logger.NewNopLogger(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sequencer) Flag() *Flag {
	return s.flag
}

// Run starts tasks in order on a new goroutine.
func (s *Sequencer) Run(ctx context.Context, tasks []Task) *tempo.Future[Report] {
	return s.RunWith(ctx, tasks, s.handlers)
}

// RunWith is Run with handlers for this run only.
func (s *Sequencer) RunWith(ctx context.Context, tasks []Task, h Handlers) *tempo.Future[Report] {
	return tempo.Go(func() (Report, error) {
		return s.run(ctx, tasks, h)
	})
}

func (s *Sequencer) run(ctx context.Context, tasks []Task, h Handlers) (Report, error) {
	ctx, span := s.tracer.Start(ctx, "sequence.run",
		trace.WithAttributes(attribute.Int("sequence.tasks", len(tasks))))
	defer span.End()

	report := Report{Total: len(tasks)}
	if h.OnStart != nil {
		h.OnStart(ctx, len(tasks))
	}

	for i, task := range tasks {
		if !s.flag.Continue() {
			report.Stopped = true
			span.AddEvent("sequence.break", trace.WithAttributes(attribute.Int("sequence.step", i)))
			if h.OnBreak != nil {
				h.OnBreak(ctx, len(tasks)-i)
			}
			break
		}

		if err := ctx.Err(); err != nil {
			return report, s.fail(span, i, report, err)
		}

		report.Ran++
		_, err := task(ctx).Await(ctx)
		if h.OnStep != nil {
			h.OnStep(ctx, i, err)
		}
		span.AddEvent("sequence.step", trace.WithAttributes(
			attribute.Int("sequence.step", i),
			attribute.Bool("sequence.cancelled", tempo.IsCancelled(err)),
		))
		if err != nil {
			return report, s.fail(span, i, report, err)
		}
	}

	span.SetAttributes(attribute.Int("sequence.ran", report.Ran), attribute.Bool("sequence.stopped", report.Stopped))
	return report, nil
}

func (s *Sequencer) fail(span trace.Span, step int, report Report, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if !tempo.IsCancelled(err) && !tempo.IsContextDone(err) {
		s.log.Error("sequence step %d failed: %v", step, err)
	}
	return &StepError{Step: step, Report: report, Err: err}
}
