package helpers

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/floeworks/floe/pkg/api"
)

type (
	// StepRecorder registers handlers that record every invocation, letting
	// tests assert which steps ran and how often
	StepRecorder struct {
		mu     sync.Mutex
		counts map[string]int
		order  []string
	}

	// Gate is a handler whose invocations block until released, used to hold
	// an execution mid-batch while the test issues control requests
	Gate struct {
		Entered chan string
		release chan struct{}
		once    sync.Once
	}
)

// NewStepRecorder creates an empty invocation recorder
func NewStepRecorder() *StepRecorder {
	return &StepRecorder{
		counts: map[string]int{},
	}
}

// Handler returns a handler that records the step id and returns output
func (r *StepRecorder) Handler(output api.Args) api.Handler {
	return func(
		_ context.Context, step *api.WorkflowStep, _ api.Args,
	) (api.Args, error) {
		r.record(step.ID)
		return output, nil
	}
}

// FailingHandler returns a handler that records the step id and fails
func (r *StepRecorder) FailingHandler(err error) api.Handler {
	return func(
		_ context.Context, step *api.WorkflowStep, _ api.Args,
	) (api.Args, error) {
		r.record(step.ID)
		return nil, err
	}
}

// Count returns the number of invocations recorded for a step
func (r *StepRecorder) Count(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[id]
}

// Order returns the recorded step ids in invocation order
func (r *StepRecorder) Order() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.order...)
}

func (r *StepRecorder) record(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[id]++
	r.order = append(r.order, id)
}

// NewGate creates an unreleased gate
func NewGate() *Gate {
	return &Gate{
		Entered: make(chan string, 16),
		release: make(chan struct{}),
	}
}

// Handler returns a handler that announces entry and blocks until the gate
// is released or the attempt is cancelled
func (g *Gate) Handler(output api.Args) api.Handler {
	return func(
		ctx context.Context, step *api.WorkflowStep, _ api.Args,
	) (api.Args, error) {
		g.Entered <- step.ID
		select {
		case <-g.release:
			return output, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Release lets all blocked invocations proceed
func (g *Gate) Release() {
	g.once.Do(func() {
		close(g.release)
	})
}

// Step builds a workflow step of the given type and dependencies
func Step(id string, typ api.StepType, deps ...string) *api.WorkflowStep {
	return &api.WorkflowStep{
		ID:           id,
		Name:         id,
		Type:         typ,
		Dependencies: deps,
	}
}

// Register installs a handler on the environment's engine
func (env *TestEngineEnv) Register(
	t *testing.T, typ api.StepType, h api.Handler,
) {
	t.Helper()
	require.NoError(t, env.Engine.RegisterHandler(typ, h))
}
