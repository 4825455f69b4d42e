package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floeworks/floe/internal/archive"
	"github.com/floeworks/floe/internal/assert/helpers"
	"github.com/floeworks/floe/pkg/api"
)

// TestTerminalExecutionArchived verifies that completed and failed
// executions land in the archive bucket with their full records
func TestTerminalExecutionArchived(t *testing.T) {
	ctx := context.Background()
	arch, err := archive.New(ctx, "mem://", "test")
	require.NoError(t, err)
	defer func() { _ = arch.Close() }()

	env := helpers.NewTestEngineWithArchiver(t, arch)
	defer env.Cleanup()

	rec := helpers.NewStepRecorder()
	env.Register(t, api.StepTypeNotification,
		rec.Handler(api.Args{"notified": true}))
	env.Register(t, api.StepTypeTesting,
		rec.FailingHandler(errors.New("red suite")))

	completed := env.CreateWorkflow(t, "green",
		helpers.Step("announce", api.StepTypeNotification))
	failed := env.CreateWorkflow(t, "red",
		helpers.Step("test", api.StepTypeTesting))

	okExec := env.StartAndWait(t, completed.ID, nil)
	assert.Equal(t, api.ExecutionCompleted, okExec.Status)

	badExec := env.StartAndWait(t, failed.ID, nil)
	assert.Equal(t, api.ExecutionFailed, badExec.Status)

	archived, err := arch.Load(ctx, okExec.ID)
	require.NoError(t, err)
	assert.Equal(t, api.ExecutionCompleted, archived.Status)
	assert.True(t, archived.Context.GetBool("notified", false))

	archived, err = arch.Load(ctx, badExec.ID)
	require.NoError(t, err)
	assert.Equal(t, api.ExecutionFailed, archived.Status)
	assert.NotEmpty(t, archived.ErrorMessage)
}

// TestPausedExecutionNotArchived verifies that pausing does not archive; the
// execution is still live
func TestPausedExecutionNotArchived(t *testing.T) {
	ctx := context.Background()
	arch, err := archive.New(ctx, "mem://", "test")
	require.NoError(t, err)
	defer func() { _ = arch.Close() }()

	env := helpers.NewTestEngineWithArchiver(t, arch)
	defer env.Cleanup()

	gate := helpers.NewGate()
	env.Register(t, api.StepTypeAPICall, gate.Handler(nil))

	w := env.CreateWorkflow(t, "paused",
		helpers.Step("fetch", api.StepTypeAPICall))

	paused := env.RunToSettled(t, func() *api.WorkflowExecution {
		exec := env.StartExecution(t, w.ID, nil)
		go func() {
			<-gate.Entered
			env.Engine.Pause(exec.ID)
			gate.Release()
		}()
		return exec
	})
	require.Equal(t, api.ExecutionPaused, paused.Status)

	_, err = arch.Load(ctx, paused.ID)
	assert.ErrorIs(t, err, archive.ErrNotArchived)
}
