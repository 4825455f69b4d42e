package api_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/floeworks/floe/pkg/api"
)

func TestStepValidate(t *testing.T) {
	step := &api.WorkflowStep{ID: "build", Type: api.StepTypeTesting}
	assert.NoError(t, step.Validate())

	step = &api.WorkflowStep{Type: api.StepTypeTesting}
	assert.ErrorIs(t, step.Validate(), api.ErrEmptyStepID)

	step = &api.WorkflowStep{ID: "build"}
	assert.ErrorIs(t, step.Validate(), api.ErrEmptyStepType)

	step = &api.WorkflowStep{
		ID: "build", Type: api.StepTypeTesting, RetryCount: -1,
	}
	assert.ErrorIs(t, step.Validate(), api.ErrNegativeRetry)

	step = &api.WorkflowStep{
		ID: "build", Type: api.StepTypeTesting,
		Conditions: api.Conditions{
			{Path: "context.env", Op: "matches"},
		},
	}
	assert.ErrorIs(t, step.Validate(), api.ErrUnknownConditionOp)
}

func TestStepDurations(t *testing.T) {
	step := &api.WorkflowStep{ID: "s", Type: api.StepTypeWait}
	assert.Equal(t, api.DefaultStepTimeout, step.TimeoutDuration())
	assert.Equal(t, api.DefaultRetryDelay, step.RetryDelayDuration())

	step.Timeout = 10
	step.RetryDelay = 5
	assert.Equal(t, 10*time.Second, step.TimeoutDuration())
	assert.Equal(t, 5*time.Second, step.RetryDelayDuration())
}

func TestWorkflowValidate(t *testing.T) {
	wf := &api.Workflow{
		Name: "pipeline",
		Steps: []*api.WorkflowStep{
			{ID: "a", Type: api.StepTypeNotification},
		},
	}
	assert.NoError(t, wf.Validate())

	wf = &api.Workflow{
		Steps: []*api.WorkflowStep{
			{ID: "a", Type: api.StepTypeNotification},
		},
	}
	assert.ErrorIs(t, wf.Validate(), api.ErrEmptyWorkflow)

	wf = &api.Workflow{Name: "pipeline"}
	assert.ErrorIs(t, wf.Validate(), api.ErrNoSteps)

	wf = &api.Workflow{
		Name: "pipeline",
		Steps: []*api.WorkflowStep{
			{ID: "a", Type: api.StepTypeNotification},
			{ID: "", Type: api.StepTypeNotification},
		},
	}
	assert.ErrorIs(t, wf.Validate(), api.ErrEmptyStepID)
}

func TestWorkflowStepLookup(t *testing.T) {
	wf := &api.Workflow{
		Name: "pipeline",
		Steps: []*api.WorkflowStep{
			{ID: "a", Type: api.StepTypeNotification},
			{ID: "b", Type: api.StepTypeWait},
		},
	}

	step, ok := wf.Step("b")
	assert.True(t, ok)
	assert.Equal(t, api.StepTypeWait, step.Type)

	_, ok = wf.Step("missing")
	assert.False(t, ok)
}
