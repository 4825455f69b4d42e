package api

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type (
	// StepType tags a step with the handler responsible for running it
	StepType string

	// WorkflowStep is one node in a workflow's dependency graph
	WorkflowStep struct {
		ID           string     `json:"id"`
		Name         string     `json:"name"`
		Type         StepType   `json:"type"`
		Config       Args       `json:"config,omitempty"`
		Dependencies []string   `json:"dependencies,omitempty"`
		Timeout      int64      `json:"timeout_seconds,omitempty"`
		RetryCount   int        `json:"retry_count"`
		RetryDelay   int64      `json:"retry_delay_seconds,omitempty"`
		Conditions   Conditions `json:"conditions,omitempty"`
	}

	// Trigger describes how a workflow may be started. Triggers are opaque
	// to the engine; ingestion lives with external collaborators
	Trigger struct {
		Type   string `json:"type"`
		Config Args   `json:"config,omitempty"`
	}

	// Workflow is an immutable named pipeline of steps. The engine only
	// ever reads workflows; they are never mutated after creation
	Workflow struct {
		ID          string          `json:"id"`
		Name        string          `json:"name"`
		Description string          `json:"description,omitempty"`
		Steps       []*WorkflowStep `json:"steps"`
		Triggers    []*Trigger      `json:"triggers,omitempty"`
		IsActive    bool            `json:"is_active"`
		CreatedAt   time.Time       `json:"created_at"`
	}

	// Handler implements the behavior of one step type. It receives the
	// step being run and a read-only snapshot of the execution context and
	// returns its output values, which the orchestrator merges back into
	// the context after the step's batch joins
	Handler func(context.Context, *WorkflowStep, Args) (Args, error)
)

// Built-in step type tags. AI generation, code review, test execution, and
// deployment handlers are registered by their owning services at startup
const (
	StepTypeAIGeneration   StepType = "ai_generation"
	StepTypeCodeReview     StepType = "code_review"
	StepTypeTesting        StepType = "testing"
	StepTypeDeployment     StepType = "deployment"
	StepTypeNotification   StepType = "notification"
	StepTypeAPICall        StepType = "api_call"
	StepTypeDataProcessing StepType = "data_processing"
	StepTypeWait           StepType = "wait"
)

const (
	// DefaultStepTimeout applies when a step declares no timeout
	DefaultStepTimeout = 300 * time.Second

	// DefaultRetryDelay applies when a retrying step declares no delay
	DefaultRetryDelay = 60 * time.Second
)

var (
	ErrEmptyStepID    = errors.New("step id must not be empty")
	ErrEmptyStepType  = errors.New("step type must not be empty")
	ErrNegativeRetry  = errors.New("retry count must not be negative")
	ErrNoSteps        = errors.New("workflow requires at least one step")
	ErrEmptyWorkflow  = errors.New("workflow name must not be empty")
	ErrStepValidation = errors.New("invalid step")
)

// TimeoutDuration returns the step's per-attempt deadline
func (s *WorkflowStep) TimeoutDuration() time.Duration {
	if s.Timeout <= 0 {
		return DefaultStepTimeout
	}
	return time.Duration(s.Timeout) * time.Second
}

// RetryDelayDuration returns the fixed wait between retry attempts
func (s *WorkflowStep) RetryDelayDuration() time.Duration {
	if s.RetryDelay <= 0 {
		return DefaultRetryDelay
	}
	return time.Duration(s.RetryDelay) * time.Second
}

// Validate checks the step's own fields. Graph-level checks such as unknown
// dependencies and cycles belong to the graph builder
func (s *WorkflowStep) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: %w", ErrStepValidation, ErrEmptyStepID)
	}
	if s.Type == "" {
		return fmt.Errorf("%w: %s: %w", ErrStepValidation, s.ID,
			ErrEmptyStepType)
	}
	if s.RetryCount < 0 {
		return fmt.Errorf("%w: %s: %w", ErrStepValidation, s.ID,
			ErrNegativeRetry)
	}
	return s.Conditions.Validate()
}

// Validate checks the workflow definition's own fields and each of its steps
func (w *Workflow) Validate() error {
	if w.Name == "" {
		return ErrEmptyWorkflow
	}
	if len(w.Steps) == 0 {
		return ErrNoSteps
	}
	for _, step := range w.Steps {
		if err := step.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Step returns the step with the given id, if present
func (w *Workflow) Step(id string) (*WorkflowStep, bool) {
	for _, step := range w.Steps {
		if step.ID == id {
			return step, true
		}
	}
	return nil, false
}
