package tests

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floeworks/floe/internal/assert/helpers"
	"github.com/floeworks/floe/pkg/api"
)

// TestFailurePrunesDependents verifies that when a step fails, its
// transitive dependents never run and the execution fails with a message
// naming both the failed and the pruned steps
func TestFailurePrunesDependents(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		rec := helpers.NewStepRecorder()
		env.Register(t, api.StepTypeAPICall, rec.Handler(nil))
		env.Register(t, api.StepTypeTesting,
			rec.FailingHandler(errors.New("tests are red")))
		env.Register(t, api.StepTypeDeployment, rec.Handler(nil))
		env.Register(t, api.StepTypeNotification, rec.Handler(nil))

		w := env.CreateWorkflow(t, "pruned",
			helpers.Step("fetch", api.StepTypeAPICall),
			helpers.Step("test", api.StepTypeTesting, "fetch"),
			helpers.Step("deploy", api.StepTypeDeployment, "test"),
			helpers.Step("announce", api.StepTypeNotification, "deploy"),
		)

		exec := env.StartAndWait(t, w.ID, nil)

		assert.Equal(t, api.ExecutionFailed, exec.Status)
		assert.Contains(t, exec.ErrorMessage, "steps failed: test")
		assert.Contains(t, exec.ErrorMessage, "deploy")
		assert.Contains(t, exec.ErrorMessage, "announce")

		assert.Equal(t, 0, rec.Count("deploy"))
		assert.Equal(t, 0, rec.Count("announce"))

		// pruned steps are not recorded as attempted
		assert.NotContains(t, exec.StepResults, "deploy")
		assert.NotContains(t, exec.StepResults, "announce")

		res := exec.StepResults["test"]
		require.NotNil(t, res)
		assert.Equal(t, api.StepFailed, res.Status)
		assert.Contains(t, res.Error, "tests are red")
	})
}

// TestFailureIndependentBranchCompletes verifies that a failure in one branch
// does not stop an unrelated branch from finishing; the execution still
// reports Failed once everything settles
func TestFailureIndependentBranchCompletes(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		rec := helpers.NewStepRecorder()
		env.Register(t, api.StepTypeTesting,
			rec.FailingHandler(errors.New("flaky suite")))
		env.Register(t, api.StepTypeNotification,
			rec.Handler(api.Args{"notified": true}))

		w := env.CreateWorkflow(t, "branches",
			helpers.Step("test", api.StepTypeTesting),
			helpers.Step("announce", api.StepTypeNotification),
		)

		exec := env.StartAndWait(t, w.ID, nil)

		assert.Equal(t, api.ExecutionFailed, exec.Status)
		assert.Equal(t, 1, rec.Count("announce"))

		res := exec.StepResults["announce"]
		require.NotNil(t, res)
		assert.Equal(t, api.StepCompleted, res.Status)
		assert.True(t, exec.Context.GetBool("notified", false))
	})
}

// TestFailedExecutionStaysQueryable verifies that a failed execution's
// record remains available with its partial results
func TestFailedExecutionStaysQueryable(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEngineEnv) {
		rec := helpers.NewStepRecorder()
		env.Register(t, api.StepTypeAPICall,
			rec.Handler(api.Args{"fetched": true}))
		env.Register(t, api.StepTypeTesting,
			rec.FailingHandler(errors.New("boom")))

		w := env.CreateWorkflow(t, "history",
			helpers.Step("fetch", api.StepTypeAPICall),
			helpers.Step("test", api.StepTypeTesting, "fetch"),
		)

		exec := env.StartAndWait(t, w.ID, nil)
		assert.Equal(t, api.ExecutionFailed, exec.Status)

		again := env.GetExecution(t, exec.ID)
		assert.Equal(t, api.ExecutionFailed, again.Status)
		assert.Equal(t, api.StepCompleted,
			again.StepResults["fetch"].Status)
		assert.Equal(t, api.StepFailed, again.StepResults["test"].Status)
		assert.NotEmpty(t, again.ErrorMessage)

		listed, err := env.Engine.ListExecutions(t.Context(), w.ID)
		require.NoError(t, err)
		assert.Len(t, listed, 1)
	})
}
