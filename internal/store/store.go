// Package store persists workflow definitions and execution records behind
// a small key-value contract. The engine is agnostic to the backing
// technology; an in-memory implementation serves tests and embedding, and a
// Redis implementation serves deployments that need durable history
package store

import (
	"context"
	"errors"

	"github.com/floeworks/floe/pkg/api"
)

type (
	// WorkflowStore holds immutable workflow definitions keyed by id
	WorkflowStore interface {
		Get(ctx context.Context, id string) (*api.Workflow, error)
		Put(ctx context.Context, w *api.Workflow) error
		List(ctx context.Context) ([]*api.Workflow, error)
		Delete(ctx context.Context, id string) error
	}

	// ExecutionStore holds mutable run-time state for every in-flight or
	// historical run. Callers must serialize writes to a single execution;
	// the orchestrator does so by giving each execution one writer
	ExecutionStore interface {
		Get(ctx context.Context, id string) (*api.WorkflowExecution, error)
		Put(ctx context.Context, e *api.WorkflowExecution) error
		ListByWorkflow(
			ctx context.Context, workflowID string,
		) ([]*api.WorkflowExecution, error)
		Delete(ctx context.Context, id string) error
	}
)

var (
	ErrWorkflowNotFound  = errors.New("workflow not found")
	ErrExecutionNotFound = errors.New("execution not found")
)
