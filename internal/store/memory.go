package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/floeworks/floe/pkg/api"
)

type (
	// MemoryWorkflowStore is an in-process WorkflowStore. Records are held
	// as JSON documents so readers always receive independent copies
	MemoryWorkflowStore struct {
		workflows map[string][]byte
		mu        sync.RWMutex
	}

	// MemoryExecutionStore is an in-process ExecutionStore
	MemoryExecutionStore struct {
		executions map[string][]byte
		byWorkflow map[string][]string
		mu         sync.RWMutex
	}
)

// NewMemoryWorkflowStore creates an empty in-memory workflow store
func NewMemoryWorkflowStore() *MemoryWorkflowStore {
	return &MemoryWorkflowStore{
		workflows: map[string][]byte{},
	}
}

func (s *MemoryWorkflowStore) Get(
	_ context.Context, id string,
) (*api.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.workflows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}
	return decodeWorkflow(data)
}

func (s *MemoryWorkflowStore) Put(
	_ context.Context, w *api.Workflow,
) error {
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[w.ID] = data
	return nil
}

func (s *MemoryWorkflowStore) List(
	_ context.Context,
) ([]*api.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*api.Workflow, 0, len(s.workflows))
	for _, data := range s.workflows {
		w, err := decodeWorkflow(data)
		if err != nil {
			return nil, err
		}
		res = append(res, w)
	}
	slices.SortFunc(res, func(l, r *api.Workflow) int {
		return l.CreatedAt.Compare(r.CreatedAt)
	})
	return res, nil
}

func (s *MemoryWorkflowStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workflows[id]; !ok {
		return fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}
	delete(s.workflows, id)
	return nil
}

// NewMemoryExecutionStore creates an empty in-memory execution store
func NewMemoryExecutionStore() *MemoryExecutionStore {
	return &MemoryExecutionStore{
		executions: map[string][]byte{},
		byWorkflow: map[string][]string{},
	}
}

func (s *MemoryExecutionStore) Get(
	_ context.Context, id string,
) (*api.WorkflowExecution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.executions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrExecutionNotFound, id)
	}
	return decodeExecution(data)
}

func (s *MemoryExecutionStore) Put(
	_ context.Context, e *api.WorkflowExecution,
) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.executions[e.ID]; !ok {
		s.byWorkflow[e.WorkflowID] = append(s.byWorkflow[e.WorkflowID], e.ID)
	}
	s.executions[e.ID] = data
	return nil
}

func (s *MemoryExecutionStore) ListByWorkflow(
	_ context.Context, workflowID string,
) ([]*api.WorkflowExecution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byWorkflow[workflowID]
	res := make([]*api.WorkflowExecution, 0, len(ids))
	for _, id := range ids {
		data, ok := s.executions[id]
		if !ok {
			continue
		}
		e, err := decodeExecution(data)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, nil
}

func (s *MemoryExecutionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.executions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrExecutionNotFound, id)
	}
	e, err := decodeExecution(data)
	if err != nil {
		return err
	}

	delete(s.executions, id)
	ids := s.byWorkflow[e.WorkflowID]
	s.byWorkflow[e.WorkflowID] = slices.DeleteFunc(ids,
		func(existing string) bool {
			return existing == id
		})
	return nil
}

func decodeWorkflow(data []byte) (*api.Workflow, error) {
	var w api.Workflow
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func decodeExecution(data []byte) (*api.WorkflowExecution, error) {
	var e api.WorkflowExecution
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
