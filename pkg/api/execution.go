package api

import (
	"maps"
	"time"
)

type (
	// ExecutionStatus represents the current state of a workflow execution
	ExecutionStatus string

	// StepStatus represents the terminal state of one step's execution
	StepStatus string

	// StepResult is the recorded outcome of one step within an execution
	StepResult struct {
		Status      StepStatus `json:"status"`
		Output      Args       `json:"output,omitempty"`
		Error       string     `json:"error,omitempty"`
		Attempts    int        `json:"attempts,omitempty"`
		StartedAt   time.Time  `json:"started_at"`
		CompletedAt time.Time  `json:"completed_at,omitempty"`
		Duration    int64      `json:"duration_ms,omitempty"`
	}

	// StepResults maps step ids to their recorded outcomes
	StepResults map[string]*StepResult

	// WorkflowExecution is one run of a workflow. It is created Pending
	// when a trigger fires, mutated only by the orchestrator, and retained
	// after completion for history until explicitly purged
	WorkflowExecution struct {
		ID           string          `json:"id"`
		WorkflowID   string          `json:"workflow_id"`
		Status       ExecutionStatus `json:"status"`
		StartedAt    time.Time       `json:"started_at"`
		CompletedAt  time.Time       `json:"completed_at,omitempty"`
		CurrentStep  string          `json:"current_step,omitempty"`
		Context      Args            `json:"context,omitempty"`
		StepResults  StepResults     `json:"step_results,omitempty"`
		ErrorMessage string          `json:"error_message,omitempty"`
	}
)

const (
	ExecutionPending   ExecutionStatus = "pending"
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionFailed    ExecutionStatus = "failed"
	ExecutionCancelled ExecutionStatus = "cancelled"
	ExecutionPaused    ExecutionStatus = "paused"
)

const (
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// IsTerminal returns true once an execution can no longer make progress
// without an explicit Resume
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case ExecutionCompleted, ExecutionFailed, ExecutionCancelled:
		return true
	default:
		return false
	}
}

// Succeeded reports whether the step reached a terminal success state.
// Skipped steps satisfy their dependents just as completed steps do
func (r *StepResult) Succeeded() bool {
	return r.Status == StepCompleted || r.Status == StepSkipped
}

// SetStatus returns a new WorkflowExecution with the updated status
func (e *WorkflowExecution) SetStatus(s ExecutionStatus) *WorkflowExecution {
	res := *e
	res.Status = s
	return &res
}

// SetCurrentStep returns a new WorkflowExecution with the informational
// current step marker set
func (e *WorkflowExecution) SetCurrentStep(id string) *WorkflowExecution {
	res := *e
	res.CurrentStep = id
	return &res
}

// SetContext returns a new WorkflowExecution with the context replaced
func (e *WorkflowExecution) SetContext(ctx Args) *WorkflowExecution {
	res := *e
	res.Context = ctx
	return &res
}

// SetStepResult returns a new WorkflowExecution with the given step's
// result recorded
func (e *WorkflowExecution) SetStepResult(
	stepID string, r *StepResult,
) *WorkflowExecution {
	res := *e
	res.StepResults = maps.Clone(e.StepResults)
	if res.StepResults == nil {
		res.StepResults = StepResults{}
	}
	res.StepResults[stepID] = r
	return &res
}

// SetCompletedAt returns a new WorkflowExecution with the completion
// timestamp set
func (e *WorkflowExecution) SetCompletedAt(t time.Time) *WorkflowExecution {
	res := *e
	res.CompletedAt = t
	return &res
}

// SetError returns a new WorkflowExecution with the error message set
func (e *WorkflowExecution) SetError(msg string) *WorkflowExecution {
	res := *e
	res.ErrorMessage = msg
	return &res
}

// FailedSteps returns the ids of steps recorded with a hard failure
func (e *WorkflowExecution) FailedSteps() []string {
	var failed []string
	for id, r := range e.StepResults {
		if r.Status == StepFailed {
			failed = append(failed, id)
		}
	}
	return failed
}
