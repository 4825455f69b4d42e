package api_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/floeworks/floe/pkg/api"
)

func TestExecutionStatusIsTerminal(t *testing.T) {
	assert.False(t, api.ExecutionPending.IsTerminal())
	assert.False(t, api.ExecutionRunning.IsTerminal())
	assert.False(t, api.ExecutionPaused.IsTerminal())
	assert.True(t, api.ExecutionCompleted.IsTerminal())
	assert.True(t, api.ExecutionFailed.IsTerminal())
	assert.True(t, api.ExecutionCancelled.IsTerminal())
}

func TestStepResultSucceeded(t *testing.T) {
	assert.True(t, (&api.StepResult{Status: api.StepCompleted}).Succeeded())
	assert.True(t, (&api.StepResult{Status: api.StepSkipped}).Succeeded())
	assert.False(t, (&api.StepResult{Status: api.StepFailed}).Succeeded())
}

func TestExecutionSetters(t *testing.T) {
	exec := &api.WorkflowExecution{
		ID:         "exec-1",
		WorkflowID: "wf-1",
		Status:     api.ExecutionPending,
	}

	running := exec.SetStatus(api.ExecutionRunning)
	assert.Equal(t, api.ExecutionPending, exec.Status)
	assert.Equal(t, api.ExecutionRunning, running.Status)

	stepped := running.SetCurrentStep("build")
	assert.Empty(t, running.CurrentStep)
	assert.Equal(t, "build", stepped.CurrentStep)

	now := time.Now()
	done := stepped.SetCompletedAt(now).SetError("boom")
	assert.True(t, stepped.CompletedAt.IsZero())
	assert.Equal(t, now, done.CompletedAt)
	assert.Equal(t, "boom", done.ErrorMessage)
}

func TestExecutionSetStepResult(t *testing.T) {
	exec := &api.WorkflowExecution{ID: "exec-1"}

	first := exec.SetStepResult("a", &api.StepResult{
		Status: api.StepCompleted,
	})
	assert.Nil(t, exec.StepResults)
	assert.Len(t, first.StepResults, 1)

	second := first.SetStepResult("b", &api.StepResult{
		Status: api.StepFailed,
	})
	assert.Len(t, first.StepResults, 1)
	assert.Len(t, second.StepResults, 2)
}

func TestExecutionFailedSteps(t *testing.T) {
	exec := &api.WorkflowExecution{
		StepResults: api.StepResults{
			"a": {Status: api.StepCompleted},
			"b": {Status: api.StepFailed},
			"c": {Status: api.StepSkipped},
		},
	}
	assert.Equal(t, []string{"b"}, exec.FailedSteps())
}
