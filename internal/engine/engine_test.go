package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floeworks/floe/internal/assert/helpers"
	"github.com/floeworks/floe/internal/engine"
	"github.com/floeworks/floe/internal/graph"
	"github.com/floeworks/floe/internal/registry"
	"github.com/floeworks/floe/pkg/api"
)

func TestCreateWorkflow(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		rec := helpers.NewStepRecorder()
		env.Register(t, api.StepTypeNotification, rec.Handler(nil))

		w := env.CreateWorkflow(t, "pipeline",
			helpers.Step("notify", api.StepTypeNotification))

		assert.NotEmpty(t, w.ID)
		assert.True(t, w.IsActive)
		assert.False(t, w.CreatedAt.IsZero())

		got, err := env.Engine.GetWorkflow(t.Context(), w.ID)
		require.NoError(t, err)
		assert.Equal(t, "pipeline", got.Name)

		all, err := env.Engine.ListWorkflows(t.Context())
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestCreateWorkflowRejectsInvalidSteps(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		_, err := env.Engine.CreateWorkflow(t.Context(),
			&api.CreateWorkflowRequest{Name: "bad"})
		assert.ErrorIs(t, err, engine.ErrValidation)
		assert.ErrorIs(t, err, api.ErrNoSteps)

		_, err = env.Engine.CreateWorkflow(t.Context(),
			&api.CreateWorkflowRequest{
				Steps: []*api.WorkflowStep{
					{ID: "a", Type: api.StepTypeNotification},
				},
			})
		assert.ErrorIs(t, err, api.ErrEmptyWorkflow)
	})
}

func TestCreateWorkflowRejectsCycles(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		rec := helpers.NewStepRecorder()
		env.Register(t, api.StepTypeNotification, rec.Handler(nil))

		_, err := env.Engine.CreateWorkflow(t.Context(),
			&api.CreateWorkflowRequest{
				Name: "cyclic",
				Steps: []*api.WorkflowStep{
					helpers.Step("a", api.StepTypeNotification, "b"),
					helpers.Step("b", api.StepTypeNotification, "a"),
				},
			})
		assert.ErrorIs(t, err, engine.ErrValidation)
		assert.ErrorIs(t, err, graph.ErrCycleDetected)
	})
}

func TestCreateWorkflowRejectsUnknownStepType(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		_, err := env.Engine.CreateWorkflow(t.Context(),
			&api.CreateWorkflowRequest{
				Name: "unregistered",
				Steps: []*api.WorkflowStep{
					helpers.Step("a", "never_registered"),
				},
			})
		assert.ErrorIs(t, err, engine.ErrValidation)
		assert.ErrorIs(t, err, registry.ErrUnknownStepType)
	})
}

func TestStartExecutionUnknownWorkflow(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		_, err := env.Engine.StartExecution(t.Context(), "missing", nil)
		assert.Error(t, err)
	})
}

func TestTemplatesAreValid(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		rec := helpers.NewStepRecorder()
		for _, typ := range []api.StepType{
			api.StepTypeAIGeneration, api.StepTypeCodeReview,
			api.StepTypeTesting, api.StepTypeDeployment,
			api.StepTypeNotification, api.StepTypeDataProcessing,
		} {
			env.Register(t, typ, rec.Handler(nil))
		}

		templates := engine.Templates()
		require.NotEmpty(t, templates)
		for _, tpl := range templates {
			w, err := env.Engine.CreateWorkflow(t.Context(), tpl)
			require.NoError(t, err, tpl.Name)
			assert.NotEmpty(t, w.Steps)
		}
	})
}
