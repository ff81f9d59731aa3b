package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/llmctx/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Do executes the step, writing its section of info.
	// Non-critical failures are recorded in info as placeholders and
	// Do returns nil.
	Do(ctx context.Context, info *model.SystemInfo) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to keep executing steps
	// after one fails.
	continueOnError bool

	// concurrency is the number of steps allowed to run at the same time.
	concurrency int

	// mu guards info.PerformedSteps while steps run concurrently.
	mu sync.Mutex
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to keep running the
// remaining steps when one returns an error. The first error is still
// returned from Execute.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// WithConcurrency sets how many steps may run at the same time.
// Values below 1 are ignored; the default is 1 (sequential).
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:       make([]Step, 0),
		concurrency: 1,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps and stamps info.CollectedAt when done.
//
// With a concurrency of 1 steps run in the order they were added and
// cancellation is checked before each one. With a higher concurrency up
// to that many steps run at once using errgroup.
func (p *Pipeline) Execute(ctx context.Context, info *model.SystemInfo) error {
	start := time.Now()
	var err error
	if p.concurrency <= 1 {
		err = p.executeSequential(ctx, info)
	} else {
		err = p.executeConcurrent(ctx, info)
	}
	info.CollectedAt = time.Now()

	p.logger.Debug("collection finished",
		"steps", len(p.steps),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return err
}

func (p *Pipeline) executeSequential(ctx context.Context, info *model.SystemInfo) error {
	var firstErr error
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled", "step", step.Name(), "reason", ctx.Err())
			return ctx.Err()
		default:
		}

		if err := p.run(ctx, step, info); err != nil {
			if !p.continueOnError {
				return err
			}
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (p *Pipeline) executeConcurrent(ctx context.Context, info *model.SystemInfo) error {
	var (
		g        *errgroup.Group
		groupCtx context.Context
	)
	if p.continueOnError {
		g, groupCtx = &errgroup.Group{}, ctx
	} else {
		g, groupCtx = errgroup.WithContext(ctx)
	}
	g.SetLimit(p.concurrency)

	for _, step := range p.steps {
		g.Go(func() error {
			select {
			case <-groupCtx.Done():
				return groupCtx.Err()
			default:
			}
			return p.run(groupCtx, step, info)
		})
	}
	return g.Wait()
}

// run executes one step with logging and bookkeeping.
func (p *Pipeline) run(ctx context.Context, step Step, info *model.SystemInfo) error {
	p.logger.Debug("executing step", "step", step.Name())
	start := time.Now()

	if err := step.Do(ctx, info); err != nil {
		p.logger.Error("step failed", "step", step.Name(), "error", err)
		return fmt.Errorf("%s: %w", step.Name(), err)
	}

	p.logger.Debug("step completed",
		"step", step.Name(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	p.mu.Lock()
	info.PerformedSteps = append(info.PerformedSteps, step.Name())
	p.mu.Unlock()
	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
