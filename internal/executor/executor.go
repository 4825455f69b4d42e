// Package executor runs a single workflow step through its handler with
// condition checks, a per-attempt deadline, and a fixed-delay retry policy.
// It never touches the stores; recording results is the orchestrator's job
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/floeworks/floe/internal/registry"
	"github.com/floeworks/floe/pkg/api"
	"github.com/floeworks/floe/pkg/log"
)

type (
	// Executor dispatches steps to their registered handlers
	Executor struct {
		reg   *registry.Registry
		sleep SleepFunc
	}

	// SleepFunc waits out the fixed retry delay. Tests substitute an
	// instantaneous implementation
	SleepFunc func(context.Context, time.Duration) error

	// Option configures an Executor
	Option func(*Executor)

	outcome struct {
		out api.Args
		err error
	}
)

var (
	ErrStepTimeout     = errors.New("step timed out")
	ErrConditionFailed = errors.New("condition evaluation failed")
)

// New creates an Executor resolving handlers from the given registry
func New(reg *registry.Registry, opts ...Option) *Executor {
	e := &Executor{
		reg:   reg,
		sleep: sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithSleep overrides the retry delay wait
func WithSleep(s SleepFunc) Option {
	return func(e *Executor) {
		e.sleep = s
	}
}

// Execute runs one step to a terminal result. Conditions are evaluated
// against the context snapshot and prior results first; an unsatisfied
// condition skips the step without invoking its handler. Handler errors and
// timeouts are retried up to the step's retry count with a fixed delay
// between attempts
func (e *Executor) Execute(
	ctx context.Context, step *api.WorkflowStep, execCtx api.Args,
	results api.StepResults,
) *api.StepResult {
	started := time.Now()

	ok, err := e.conditionsHold(step, execCtx, results)
	if err != nil {
		return finalize(failed(err, 0), started)
	}
	if !ok {
		slog.Debug("Step conditions not met, skipping",
			log.StepID(step.ID))
		return finalize(&api.StepResult{Status: api.StepSkipped}, started)
	}

	handler, ok := e.reg.Resolve(step.Type)
	if !ok {
		err := fmt.Errorf("%w: %s", registry.ErrUnknownStepType, step.Type)
		return finalize(failed(err, 0), started)
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		out, err := e.invoke(ctx, handler, step, execCtx)
		if err == nil {
			return finalize(&api.StepResult{
				Status:   api.StepCompleted,
				Output:   out,
				Attempts: attempt,
			}, started)
		}
		lastErr = err

		if attempt > step.RetryCount || ctx.Err() != nil {
			return finalize(failed(lastErr, attempt), started)
		}

		slog.Warn("Step attempt failed, retrying",
			log.StepID(step.ID),
			log.Attempt(attempt),
			log.Error(err))

		if err := e.sleep(ctx, step.RetryDelayDuration()); err != nil {
			return finalize(failed(lastErr, attempt), started)
		}
	}
}

func (e *Executor) conditionsHold(
	step *api.WorkflowStep, execCtx api.Args, results api.StepResults,
) (bool, error) {
	if len(step.Conditions) == 0 {
		return true, nil
	}

	doc, err := api.ConditionDocument(execCtx, results)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrConditionFailed, err)
	}

	ok, err := step.Conditions.Evaluate(doc)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrConditionFailed, err)
	}
	return ok, nil
}

// invoke runs one handler attempt under the step's deadline. Handlers that
// ignore cancellation are abandoned once the deadline passes; their result
// is discarded
func (e *Executor) invoke(
	ctx context.Context, handler api.Handler, step *api.WorkflowStep,
	execCtx api.Args,
) (api.Args, error) {
	actx, cancel := context.WithTimeout(ctx, step.TimeoutDuration())
	defer cancel()

	ch := make(chan outcome, 1)
	go func() {
		out, err := handler(actx, step, execCtx)
		ch <- outcome{out: out, err: err}
	}()

	select {
	case oc := <-ch:
		return oc.out, oc.err
	case <-actx.Done():
		if errors.Is(actx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s after %s",
				ErrStepTimeout, step.ID, step.TimeoutDuration())
		}
		return nil, actx.Err()
	}
}

func failed(err error, attempts int) *api.StepResult {
	return &api.StepResult{
		Status:   api.StepFailed,
		Error:    err.Error(),
		Attempts: attempts,
	}
}

func finalize(res *api.StepResult, started time.Time) *api.StepResult {
	completed := time.Now()
	res.StartedAt = started
	res.CompletedAt = completed
	res.Duration = completed.Sub(started).Milliseconds()
	return res
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
