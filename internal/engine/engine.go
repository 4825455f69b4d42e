package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/floeworks/floe/internal/config"
	"github.com/floeworks/floe/internal/executor"
	"github.com/floeworks/floe/internal/graph"
	"github.com/floeworks/floe/internal/registry"
	"github.com/floeworks/floe/internal/store"
	"github.com/floeworks/floe/internal/util"
	"github.com/floeworks/floe/pkg/api"
	"github.com/floeworks/floe/pkg/log"
)

type (
	// Engine is the workflow orchestration engine
	Engine struct {
		cfg        *config.Config
		workflows  store.WorkflowStore
		executions store.ExecutionStore
		registry   *registry.Registry
		executor   *executor.Executor
		graphs     *util.LRUCache[*graph.Graph]
		hub        *Hub
		archiver   Archiver
		ctx        context.Context
		cancel     context.CancelFunc
		wg         sync.WaitGroup
		actors     sync.Map // map[executionID]*actor
	}

	// Dependencies carries the engine's external collaborators
	Dependencies struct {
		Workflows  store.WorkflowStore
		Executions store.ExecutionStore
		Archiver   Archiver
		Executor   []executor.Option
	}

	// Archiver receives terminal executions for long-term storage. A nil
	// archiver disables archival
	Archiver interface {
		Archive(context.Context, *api.WorkflowExecution) error
	}
)

var (
	ErrShutdownTimeout  = errors.New("shutdown timeout exceeded")
	ErrWorkflowInactive = errors.New("workflow is not active")
	ErrNotResumable     = errors.New("execution is not paused")
	ErrValidation       = errors.New("invalid workflow definition")
)

// New creates an orchestrator with the specified stores and configuration
func New(cfg *config.Config, deps Dependencies) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	reg := registry.New()
	return &Engine{
		cfg:        cfg,
		workflows:  deps.Workflows,
		executions: deps.Executions,
		registry:   reg,
		executor:   executor.New(reg, deps.Executor...),
		graphs:     util.NewLRUCache[*graph.Graph](cfg.GraphCacheSize),
		hub:        NewHub(),
		archiver:   deps.Archiver,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Hub returns the engine's execution event hub
func (e *Engine) Hub() *Hub {
	return e.hub
}

// RegisterHandler installs the handler for a step type. Each external
// collaborator calls this once at startup
func (e *Engine) RegisterHandler(t api.StepType, h api.Handler) error {
	return e.registry.Register(t, h)
}

// Stop shuts the engine down, waiting for in-flight executions to settle
// up to the configured shutdown timeout
func (e *Engine) Stop() error {
	e.cancel()
	defer e.hub.Close()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Engine stopped")
		return nil
	case <-time.After(e.cfg.ShutdownTimeout):
		return ErrShutdownTimeout
	}
}

// CreateWorkflow validates and stores a new workflow definition. The
// definition is rejected before any run starts if its steps are malformed,
// its dependency edges contain a cycle or unknown id, or a step's type has
// no registered handler
func (e *Engine) CreateWorkflow(
	ctx context.Context, req *api.CreateWorkflowRequest,
) (*api.Workflow, error) {
	w := &api.Workflow{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Steps:       req.Steps,
		Triggers:    req.Triggers,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}

	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if _, err := graph.Build(w.Steps); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	for _, step := range w.Steps {
		if _, ok := e.registry.Resolve(step.Type); !ok {
			return nil, fmt.Errorf("%w: step %s: %w: %s",
				ErrValidation, step.ID, registry.ErrUnknownStepType,
				step.Type)
		}
	}

	if err := e.workflows.Put(ctx, w); err != nil {
		return nil, err
	}

	slog.Info("Workflow created",
		log.WorkflowID(w.ID),
		slog.String("name", w.Name),
		slog.Int("steps", len(w.Steps)))
	return w, nil
}

// GetWorkflow retrieves a workflow definition by id
func (e *Engine) GetWorkflow(
	ctx context.Context, id string,
) (*api.Workflow, error) {
	return e.workflows.Get(ctx, id)
}

// ListWorkflows returns all stored workflow definitions
func (e *Engine) ListWorkflows(ctx context.Context) ([]*api.Workflow, error) {
	return e.workflows.List(ctx)
}

// graphFor returns the workflow's dependency graph, building it at most
// once per workflow id. Workflows are immutable, so the cache never goes
// stale
func (e *Engine) graphFor(w *api.Workflow) (*graph.Graph, error) {
	return e.graphs.Get(w.ID, func() (*graph.Graph, error) {
		return graph.Build(w.Steps)
	})
}
