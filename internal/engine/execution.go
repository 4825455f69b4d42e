package engine

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/floeworks/floe/internal/graph"
	"github.com/floeworks/floe/internal/util"
	"github.com/floeworks/floe/pkg/api"
	"github.com/floeworks/floe/pkg/log"
)

// actor drives one execution through the scheduling loop. It is the only
// writer of its execution record, which serializes store writes without
// locks. Halt requests from Cancel and Pause are flag-checked between
// batches, never mid-step
type actor struct {
	eng  *Engine
	wf   *api.Workflow
	g    *graph.Graph
	exec *api.WorkflowExecution

	mu   sync.Mutex
	halt api.ExecutionStatus
}

// StartExecution creates a Pending execution for the workflow and begins
// running it asynchronously. The returned record reflects the state at
// creation; use GetExecution to observe progress
func (e *Engine) StartExecution(
	ctx context.Context, workflowID string, initCtx api.Args,
) (*api.WorkflowExecution, error) {
	w, err := e.workflows.Get(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if !w.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowInactive, workflowID)
	}

	g, err := e.graphFor(w)
	if err != nil {
		return nil, err
	}

	exec := &api.WorkflowExecution{
		ID:          uuid.NewString(),
		WorkflowID:  workflowID,
		Status:      api.ExecutionPending,
		StartedAt:   time.Now(),
		Context:     initCtx.Clone(),
		StepResults: api.StepResults{},
	}
	if err := e.executions.Put(ctx, exec); err != nil {
		return nil, err
	}

	e.spawn(&actor{eng: e, wf: w, g: g, exec: exec})

	slog.Info("Execution started",
		log.ExecutionID(exec.ID),
		log.WorkflowID(workflowID))
	return exec, nil
}

// GetExecution retrieves an execution record by id. Failed executions stay
// queryable with their error message and every attempted step's result
func (e *Engine) GetExecution(
	ctx context.Context, id string,
) (*api.WorkflowExecution, error) {
	return e.executions.Get(ctx, id)
}

// ListExecutions returns all executions recorded for a workflow
func (e *Engine) ListExecutions(
	ctx context.Context, workflowID string,
) ([]*api.WorkflowExecution, error) {
	return e.executions.ListByWorkflow(ctx, workflowID)
}

// PurgeExecution removes a historical execution record
func (e *Engine) PurgeExecution(ctx context.Context, id string) error {
	return e.executions.Delete(ctx, id)
}

// Cancel requests cooperative cancellation of a running execution. Steps
// already dispatched finish naturally and their results are recorded, but
// no further batches are scheduled. Returns false when the execution is
// not currently running
func (e *Engine) Cancel(id string) bool {
	return e.requestHalt(id, api.ExecutionCancelled)
}

// Pause stops a running execution from dispatching further batches while
// keeping it resumable
func (e *Engine) Pause(id string) bool {
	return e.requestHalt(id, api.ExecutionPaused)
}

// Resume re-enters the scheduling loop for a paused execution, picking up
// from its recorded step results
func (e *Engine) Resume(
	ctx context.Context, id string,
) (*api.WorkflowExecution, error) {
	exec, err := e.executions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if exec.Status != api.ExecutionPaused {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotResumable, id,
			exec.Status)
	}

	w, err := e.workflows.Get(ctx, exec.WorkflowID)
	if err != nil {
		return nil, err
	}
	g, err := e.graphFor(w)
	if err != nil {
		return nil, err
	}

	e.spawn(&actor{eng: e, wf: w, g: g, exec: exec})
	e.publish(EventExecutionResumed, exec, "")

	slog.Info("Execution resumed",
		log.ExecutionID(id))
	return exec, nil
}

func (e *Engine) spawn(a *actor) {
	e.actors.Store(a.exec.ID, a)
	e.wg.Add(1)
	go a.run()
}

func (e *Engine) requestHalt(id string, status api.ExecutionStatus) bool {
	v, ok := e.actors.Load(id)
	if !ok {
		return false
	}
	v.(*actor).requestHalt(status)
	return true
}

func (a *actor) requestHalt(status api.ExecutionStatus) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.halt == "" {
		a.halt = status
	}
}

func (a *actor) haltRequested() (api.ExecutionStatus, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.halt, a.halt != ""
}

func (a *actor) run() {
	e := a.eng
	defer func() {
		e.actors.Delete(a.exec.ID)
		e.wg.Done()
	}()

	a.update(a.exec.SetStatus(api.ExecutionRunning))
	e.publish(EventExecutionRunning, a.exec, "")

	attempted := util.Set[string]{}
	succeeded := util.Set[string]{}
	for id, r := range a.exec.StepResults {
		attempted.Add(id)
		if r.Succeeded() {
			succeeded.Add(id)
		}
	}

	for {
		if status, ok := a.haltRequested(); ok {
			a.finishHalted(status)
			return
		}
		if e.ctx.Err() != nil {
			a.finishHalted(api.ExecutionCancelled)
			return
		}

		batch := a.g.Ready(attempted, succeeded)
		if len(batch) == 0 {
			break
		}
		if m := e.cfg.MaxBatchSize; m > 0 && len(batch) > m {
			batch = batch[:m]
		}

		a.runBatch(batch, attempted, succeeded)
	}

	a.finish(attempted)
}

// runBatch dispatches every step of the batch concurrently, joins them,
// and merges results back under a single writer. Steps in a batch share no
// dependency relationship, so results may arrive in any order; merging in
// step-id order keeps context writes deterministic
func (a *actor) runBatch(batch []string, attempted, succeeded util.Set[string]) {
	e := a.eng
	a.update(a.exec.SetCurrentStep(strings.Join(batch, ",")))

	snapshot := a.exec.Context.Clone()
	prior := maps.Clone(a.exec.StepResults)
	results := make([]*api.StepResult, len(batch))

	var wg sync.WaitGroup
	for i, id := range batch {
		step, ok := a.wf.Step(id)
		if !ok {
			// graph and workflow are built from the same list
			continue
		}
		wg.Add(1)
		go func(i int, step *api.WorkflowStep) {
			defer wg.Done()
			e.publish(EventStepStarted, a.exec, step.ID)
			results[i] = e.executor.Execute(e.ctx, step, snapshot, prior)
		}(i, step)
	}
	wg.Wait()

	exec := a.exec
	for i, id := range batch {
		res := results[i]
		if res == nil {
			continue
		}
		attempted.Add(id)
		exec = exec.SetStepResult(id, res)
		if res.Succeeded() {
			succeeded.Add(id)
			exec = exec.SetContext(exec.Context.Merge(res.Output))
		}

		slog.Info("Step finished",
			log.ExecutionID(exec.ID),
			log.StepID(id),
			log.Status(res.Status),
			log.Attempt(res.Attempts))
	}
	a.update(exec)

	for i, id := range batch {
		if results[i] == nil {
			continue
		}
		e.publish(stepEventType(results[i].Status), a.exec, id)
	}
}

// finish computes the terminal status once no further steps can run. A
// step left unattempted here was pruned by an upstream failure, which
// drives the execution to Failed even when its own handler never ran
func (a *actor) finish(attempted util.Set[string]) {
	exec := a.exec.SetCurrentStep("")

	failed := exec.FailedSteps()
	slices.Sort(failed)

	var pruned []string
	for _, id := range a.g.IDs() {
		if !attempted.Contains(id) {
			pruned = append(pruned, id)
		}
	}

	status := api.ExecutionCompleted
	if len(failed) > 0 || len(pruned) > 0 {
		status = api.ExecutionFailed
		exec = exec.SetError(failureMessage(failed, pruned))
	}

	exec = exec.SetStatus(status).SetCompletedAt(time.Now())
	a.update(exec)
	a.eng.publish(executionEventType(status), exec, "")
	a.archive(exec)

	slog.Info("Execution finished",
		log.ExecutionID(exec.ID),
		log.WorkflowID(exec.WorkflowID),
		log.Status(status),
		log.ErrorString(exec.ErrorMessage))
}

func (a *actor) finishHalted(status api.ExecutionStatus) {
	exec := a.exec.SetStatus(status).SetCurrentStep("")
	if status != api.ExecutionPaused {
		exec = exec.SetCompletedAt(time.Now())
	}
	a.update(exec)
	a.eng.publish(executionEventType(status), exec, "")
	if status.IsTerminal() {
		a.archive(exec)
	}

	slog.Info("Execution halted",
		log.ExecutionID(exec.ID),
		log.Status(status))
}

func (a *actor) archive(exec *api.WorkflowExecution) {
	if a.eng.archiver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.eng.archiver.Archive(ctx, exec); err != nil {
		slog.Error("Failed to archive execution",
			log.ExecutionID(exec.ID),
			log.Error(err))
	}
}

// update persists the new revision of the execution record. Store errors
// are logged rather than aborting the run; the in-memory record remains
// authoritative until the next write
func (a *actor) update(exec *api.WorkflowExecution) {
	a.exec = exec

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.eng.executions.Put(ctx, exec); err != nil {
		slog.Error("Failed to persist execution",
			log.ExecutionID(exec.ID),
			log.Error(err))
	}
}

func failureMessage(failed, pruned []string) string {
	var parts []string
	if len(failed) > 0 {
		parts = append(parts, fmt.Sprintf("steps failed: %s",
			strings.Join(failed, ", ")))
	}
	if len(pruned) > 0 {
		parts = append(parts, fmt.Sprintf(
			"steps never became ready due to upstream failures: %s",
			strings.Join(pruned, ", ")))
	}
	return strings.Join(parts, "; ")
}
