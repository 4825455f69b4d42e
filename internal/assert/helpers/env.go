// Package helpers provides the shared environment and step builders used by
// the engine's behavioral test suites
package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/floeworks/floe/internal/config"
	"github.com/floeworks/floe/internal/engine"
	"github.com/floeworks/floe/internal/executor"
	"github.com/floeworks/floe/internal/store"
	"github.com/floeworks/floe/pkg/api"
)

// TestEngineEnv holds all the components needed for engine testing
type TestEngineEnv struct {
	Engine     *engine.Engine
	Workflows  *store.MemoryWorkflowStore
	Executions *store.MemoryExecutionStore
	Config     *config.Config
	Cleanup    func()
}

const defaultStoreTimeout = 5 * time.Second

// NewTestConfig creates a default configuration with debug logging enabled
// and a short shutdown window
func NewTestConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.LogLevel = "debug"
	cfg.ShutdownTimeout = 2 * time.Second
	return cfg
}

// NewTestEngine creates a fully configured test engine environment backed by
// in-memory stores. Retry delays are collapsed so retry scenarios run
// instantly
func NewTestEngine(t *testing.T) *TestEngineEnv {
	t.Helper()
	return NewTestEngineWithArchiver(t, nil)
}

// NewTestEngineWithArchiver creates a test environment whose engine archives
// terminal executions to the given archiver
func NewTestEngineWithArchiver(
	t *testing.T, archiver engine.Archiver,
) *TestEngineEnv {
	t.Helper()

	cfg := NewTestConfig()
	workflows := store.NewMemoryWorkflowStore()
	executions := store.NewMemoryExecutionStore()

	eng := engine.New(cfg, engine.Dependencies{
		Workflows:  workflows,
		Executions: executions,
		Archiver:   archiver,
		Executor: []executor.Option{
			executor.WithSleep(func(context.Context, time.Duration) error {
				return nil
			}),
		},
	})

	return &TestEngineEnv{
		Engine:     eng,
		Workflows:  workflows,
		Executions: executions,
		Config:     cfg,
		Cleanup: func() {
			_ = eng.Stop()
		},
	}
}

// WithTestEnv runs a test body against a fresh engine environment and tears
// it down afterwards
func WithTestEnv(t *testing.T, body func(env *TestEngineEnv)) {
	t.Helper()
	env := NewTestEngine(t)
	defer env.Cleanup()
	body(env)
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(
		context.Background(), defaultStoreTimeout,
	)
	t.Cleanup(cancel)
	return ctx
}

// CreateWorkflow creates and stores a workflow from the given steps
func (env *TestEngineEnv) CreateWorkflow(
	t *testing.T, name string, steps ...*api.WorkflowStep,
) *api.Workflow {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), defaultStoreTimeout)
	defer cancel()

	w, err := env.Engine.CreateWorkflow(ctx, &api.CreateWorkflowRequest{
		Name:  name,
		Steps: steps,
	})
	require.NoError(t, err)
	return w
}

// GetExecution fetches the current execution record
func (env *TestEngineEnv) GetExecution(
	t *testing.T, id string,
) *api.WorkflowExecution {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), defaultStoreTimeout)
	defer cancel()

	exec, err := env.Engine.GetExecution(ctx, id)
	require.NoError(t, err)
	return exec
}
