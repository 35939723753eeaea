package bootstrap

import (
	"context"
	"errors"
	"iter"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/nicodoggie/devctl-plugin-kind/internal/platform/shell"
	"github.com/nicodoggie/devctl-plugin-kind/internal/util/retry"
)

const (
	defaultAttempts = 3
	defaultDelay    = time.Second
	defaultMaxDelay = 10 * time.Second
)

// StepOutcome is the result of one attempted step.
type StepOutcome struct {
	// Type is the label of the owning group.
	Type string
	Step Step
	// Group and Index locate the step in the plan, both zero based.
	Group int
	Index int

	// Output is the standard output of the last attempt.
	Output    string
	Succeeded bool
	Attempts  int
	Duration  time.Duration
	// Err is a *StepExecutionError when Succeeded is false.
	Err error
}

// Sequencer executes bootstrap plans.
type Sequencer struct {
	exec     shell.Executor
	root     string
	attempts int
	delay    time.Duration
	maxDelay time.Duration
	timeout  time.Duration
	onRetry  func(step Step, attempt int, err error)
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithAttempts sets how many times a failing step is attempted.
func WithAttempts(n int) Option {
	return func(s *Sequencer) {
		s.attempts = n
	}
}

// WithBackoff sets the bounds of the wait between attempts.
func WithBackoff(initial, maxDelay time.Duration) Option {
	return func(s *Sequencer) {
		s.delay = initial
		s.maxDelay = maxDelay
	}
}

// WithStepTimeout bounds every single attempt. Zero disables the bound.
func WithStepTimeout(d time.Duration) Option {
	return func(s *Sequencer) {
		s.timeout = d
	}
}

// WithRetryHook is called after a failed attempt that will be retried.
func WithRetryHook(fn func(step Step, attempt int, err error)) Option {
	return func(s *Sequencer) {
		s.onRetry = fn
	}
}

// NewSequencer returns a Sequencer running steps through exec with root as
// the working directory.
func NewSequencer(exec shell.Executor, root string, opts ...Option) *Sequencer {
	s := &Sequencer{
		exec:     exec,
		root:     root,
		attempts: defaultAttempts,
		delay:    defaultDelay,
		maxDelay: defaultMaxDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run returns the outcomes of executing plan. Nothing runs until the
// sequence is ranged over, and a step runs only when the previous outcome
// has been consumed. The sequence can be consumed once; ranging over it a
// second time yields nothing.
//
// The first failed step is yielded and ends the sequence, so later steps
// and later groups never run.
func (s *Sequencer) Run(ctx context.Context, plan Plan) iter.Seq[StepOutcome] {
	var used atomic.Bool

	return func(yield func(StepOutcome) bool) {
		if used.Swap(true) {
			return
		}

		for gi, group := range plan {
			for si, step := range group.Steps {
				out := s.runStep(ctx, group.Type, step)
				out.Group, out.Index = gi, si

				if !yield(out) || !out.Succeeded {
					return
				}
			}
		}
	}
}

func (s *Sequencer) runStep(ctx context.Context, groupType string, step Step) StepOutcome {
	out := StepOutcome{Type: groupType, Step: step}
	cmd := shell.Script(step.Run, s.dir(step))
	start := time.Now()

	err := retry.WithExponentialBackoff(ctx, func() error {
		out.Attempts++
		attemptCtx, cancel := s.attemptContext(ctx)
		defer cancel()

		res, err := s.exec.Run(attemptCtx, cmd)
		if res != nil {
			out.Output = res.Stdout
		}
		return err
	},
		retry.WithMaxAttempts(s.attempts),
		retry.WithInitialDelay(s.delay),
		retry.WithMaxDelay(s.maxDelay),
		retry.WithRetryable(func(err error) bool {
			return ctx.Err() == nil && !errors.Is(err, context.Canceled)
		}),
		retry.WithOnRetry(func(attempt int, err error, _ time.Duration) {
			if s.onRetry != nil {
				s.onRetry(step, attempt, err)
			}
		}),
	)

	out.Duration = time.Since(start)
	if err != nil {
		out.Err = &StepExecutionError{Type: groupType, Step: step.Run, Attempts: out.Attempts, Err: err}
		return out
	}
	out.Succeeded = true
	return out
}

func (s *Sequencer) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

func (s *Sequencer) dir(step Step) string {
	switch {
	case step.Dir == "":
		return s.root
	case filepath.IsAbs(step.Dir):
		return step.Dir
	default:
		return filepath.Join(s.root, step.Dir)
	}
}
