package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floeworks/floe/internal/store"
	"github.com/floeworks/floe/pkg/api"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestRedisWorkflowStore(t *testing.T) {
	ctx := context.Background()
	s := store.NewRedisWorkflowStore(newRedisClient(t), "floe")

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrWorkflowNotFound)

	wf := makeWorkflow("wf-1", "pipeline", time.Now().UTC())
	require.NoError(t, s.Put(ctx, wf))

	got, err := s.Get(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "pipeline", got.Name)
	assert.True(t, got.IsActive)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRedisWorkflowStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := store.NewRedisWorkflowStore(newRedisClient(t), "floe")

	require.NoError(t, s.Put(ctx,
		makeWorkflow("wf-1", "x", time.Now().UTC())))
	require.NoError(t, s.Delete(ctx, "wf-1"))

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	assert.ErrorIs(t, s.Delete(ctx, "wf-1"), store.ErrWorkflowNotFound)
}

func TestRedisExecutionStore(t *testing.T) {
	ctx := context.Background()
	s := store.NewRedisExecutionStore(newRedisClient(t), "floe")

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrExecutionNotFound)

	exec := &api.WorkflowExecution{
		ID:         "exec-1",
		WorkflowID: "wf-1",
		Status:     api.ExecutionRunning,
		StartedAt:  time.Now().UTC(),
		Context:    api.Args{"environment": "staging"},
		StepResults: api.StepResults{
			"build": {Status: api.StepCompleted, Attempts: 1},
		},
	}
	require.NoError(t, s.Put(ctx, exec))

	got, err := s.Get(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, api.ExecutionRunning, got.Status)
	assert.Equal(t, "staging", got.Context.GetString("environment", ""))
	require.Contains(t, got.StepResults, "build")
	assert.Equal(t, api.StepCompleted, got.StepResults["build"].Status)
}

func TestRedisExecutionStoreListByWorkflow(t *testing.T) {
	ctx := context.Background()
	s := store.NewRedisExecutionStore(newRedisClient(t), "floe")

	for _, id := range []string{"exec-1", "exec-2"} {
		require.NoError(t, s.Put(ctx, &api.WorkflowExecution{
			ID: id, WorkflowID: "wf-1", Status: api.ExecutionCompleted,
		}))
	}

	listed, err := s.ListByWorkflow(ctx, "wf-1")
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	listed, err = s.ListByWorkflow(ctx, "wf-other")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestRedisExecutionStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := store.NewRedisExecutionStore(newRedisClient(t), "floe")

	require.NoError(t, s.Put(ctx, &api.WorkflowExecution{
		ID: "exec-1", WorkflowID: "wf-1", Status: api.ExecutionCancelled,
	}))
	require.NoError(t, s.Delete(ctx, "exec-1"))

	listed, err := s.ListByWorkflow(ctx, "wf-1")
	require.NoError(t, err)
	assert.Empty(t, listed)

	assert.ErrorIs(t, s.Delete(ctx, "exec-1"), store.ErrExecutionNotFound)
}
