package helpers

import (
	"testing"
	"time"

	"github.com/floeworks/floe/internal/engine"
	"github.com/floeworks/floe/pkg/api"
)

// DefaultWaitTimeout bounds how long a test waits for an execution to settle
const DefaultWaitTimeout = 10 * time.Second

// settled reports event types after which the execution record is stable
// until the next control request
func settled(t engine.EventType) bool {
	switch t {
	case engine.EventExecutionCompleted, engine.EventExecutionFailed,
		engine.EventExecutionCancelled, engine.EventExecutionPaused:
		return true
	default:
		return false
	}
}

// RunToSettled subscribes to the engine hub, invokes start to begin the
// execution, and blocks until it reaches a settled status. The subscription
// is created first so no event can be missed
func (env *TestEngineEnv) RunToSettled(
	t *testing.T, start func() *api.WorkflowExecution,
) *api.WorkflowExecution {
	t.Helper()

	sub := env.Engine.Hub().Subscribe()
	defer sub.Close()

	exec := start()
	deadline := time.After(DefaultWaitTimeout)
	for {
		select {
		case ev, ok := <-sub.Receive():
			if !ok {
				t.Fatal("event hub closed while waiting")
			}
			if ev.ExecutionID != exec.ID || !settled(ev.Type) {
				continue
			}
			return env.GetExecution(t, exec.ID)
		case <-deadline:
			t.Fatalf("timeout waiting for execution %s", exec.ID)
		}
	}
}

// StartAndWait starts an execution of the workflow and waits for it to settle
func (env *TestEngineEnv) StartAndWait(
	t *testing.T, workflowID string, initCtx api.Args,
) *api.WorkflowExecution {
	t.Helper()
	return env.RunToSettled(t, func() *api.WorkflowExecution {
		return env.StartExecution(t, workflowID, initCtx)
	})
}

// StartExecution begins an execution, failing the test on error
func (env *TestEngineEnv) StartExecution(
	t *testing.T, workflowID string, initCtx api.Args,
) *api.WorkflowExecution {
	t.Helper()

	exec, err := env.Engine.StartExecution(
		testContext(t), workflowID, initCtx,
	)
	if err != nil {
		t.Fatalf("failed to start execution: %v", err)
	}
	return exec
}

// WaitForEntry blocks until the gate reports that a step has entered its
// handler
func WaitForEntry(t *testing.T, g *Gate) string {
	t.Helper()
	select {
	case id := <-g.Entered:
		return id
	case <-time.After(DefaultWaitTimeout):
		t.Fatal("timeout waiting for a step to enter its handler")
		return ""
	}
}
