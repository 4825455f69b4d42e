package api

import "time"

type (
	// CreateWorkflowRequest contains a workflow definition to register
	CreateWorkflowRequest struct {
		Name        string          `json:"name"`
		Description string          `json:"description,omitempty"`
		Steps       []*WorkflowStep `json:"steps"`
		Triggers    []*Trigger      `json:"triggers,omitempty"`
	}

	// StartExecutionRequest contains parameters for starting an execution
	StartExecutionRequest struct {
		Context Args `json:"context,omitempty"`
	}

	// ExecutionStartedResponse is returned when an execution is accepted
	ExecutionStartedResponse struct {
		Message   string             `json:"message"`
		Execution *WorkflowExecution `json:"execution"`
	}

	// ExecutionDigest provides summary information about an execution
	ExecutionDigest struct {
		ID          string          `json:"id"`
		WorkflowID  string          `json:"workflow_id"`
		Status      ExecutionStatus `json:"status"`
		StartedAt   time.Time       `json:"started_at"`
		CompletedAt time.Time       `json:"completed_at,omitempty"`
		Error       string          `json:"error,omitempty"`
	}

	// ExecutionsListResponse contains a list of execution summaries
	ExecutionsListResponse struct {
		Executions []*ExecutionDigest `json:"executions"`
		Count      int                `json:"count"`
	}

	// WorkflowsListResponse contains all registered workflows
	WorkflowsListResponse struct {
		Workflows []*Workflow `json:"workflows"`
		Count     int         `json:"count"`
	}

	// TemplatesResponse contains the predefined workflow templates
	TemplatesResponse struct {
		Templates []*CreateWorkflowRequest `json:"templates"`
		Count     int                      `json:"count"`
	}

	// HealthResponse provides service health information
	HealthResponse struct {
		Service string `json:"service"`
		Status  string `json:"status"`
		Version string `json:"version"`
	}

	// MessageResponse contains a simple message string
	MessageResponse struct {
		Message string `json:"message"`
	}

	// ErrorResponse contains error details for failed requests
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status"`
	}
)

// Digest returns the execution's summary form
func (e *WorkflowExecution) Digest() *ExecutionDigest {
	return &ExecutionDigest{
		ID:          e.ID,
		WorkflowID:  e.WorkflowID,
		Status:      e.Status,
		StartedAt:   e.StartedAt,
		CompletedAt: e.CompletedAt,
		Error:       e.ErrorMessage,
	}
}
