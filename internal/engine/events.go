package engine

import (
	"sync"
	"time"

	"github.com/floeworks/floe/pkg/api"
)

type (
	// EventType identifies an execution lifecycle event
	EventType string

	// ExecutionEvent is published on the engine hub as executions and
	// their steps change state
	ExecutionEvent struct {
		Type        EventType           `json:"type"`
		ExecutionID string              `json:"execution_id"`
		WorkflowID  string              `json:"workflow_id"`
		StepID      string              `json:"step_id,omitempty"`
		Status      api.ExecutionStatus `json:"status"`
		Timestamp   time.Time           `json:"timestamp"`
	}

	// Hub fans execution events out to subscribers. Slow subscribers drop
	// events rather than stalling the orchestrator
	Hub struct {
		mu     sync.RWMutex
		subs   map[*Subscriber]struct{}
		closed bool
	}

	// Subscriber receives events from a Hub until closed
	Subscriber struct {
		hub *Hub
		ch  chan *ExecutionEvent
	}
)

const (
	EventExecutionRunning   EventType = "execution_running"
	EventExecutionCompleted EventType = "execution_completed"
	EventExecutionFailed    EventType = "execution_failed"
	EventExecutionCancelled EventType = "execution_cancelled"
	EventExecutionPaused    EventType = "execution_paused"
	EventExecutionResumed   EventType = "execution_resumed"
	EventStepStarted        EventType = "step_started"
	EventStepCompleted      EventType = "step_completed"
	EventStepFailed         EventType = "step_failed"
	EventStepSkipped        EventType = "step_skipped"
)

const subscriberBuffer = 64

// NewHub creates an empty event hub
func NewHub() *Hub {
	return &Hub{
		subs: map[*Subscriber]struct{}{},
	}
}

// Subscribe registers a new subscriber with a buffered event channel
func (h *Hub) Subscribe() *Subscriber {
	s := &Subscriber{
		hub: h,
		ch:  make(chan *ExecutionEvent, subscriberBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(s.ch)
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

// Publish delivers an event to every subscriber without blocking
func (h *Hub) Publish(ev *ExecutionEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	for s := range h.subs {
		select {
		case s.ch <- ev:
		default:
		}
	}
}

// Close shuts the hub down and closes all subscriber channels
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		close(s.ch)
	}
	clear(h.subs)
}

// Receive returns the subscriber's event channel. The channel closes when
// either side closes the subscription
func (s *Subscriber) Receive() <-chan *ExecutionEvent {
	return s.ch
}

// Close removes the subscriber from its hub
func (s *Subscriber) Close() {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	close(s.ch)
}

func (e *Engine) publish(t EventType, exec *api.WorkflowExecution, stepID string) {
	e.hub.Publish(&ExecutionEvent{
		Type:        t,
		ExecutionID: exec.ID,
		WorkflowID:  exec.WorkflowID,
		StepID:      stepID,
		Status:      exec.Status,
		Timestamp:   time.Now(),
	})
}

func stepEventType(s api.StepStatus) EventType {
	switch s {
	case api.StepFailed:
		return EventStepFailed
	case api.StepSkipped:
		return EventStepSkipped
	default:
		return EventStepCompleted
	}
}

func executionEventType(s api.ExecutionStatus) EventType {
	switch s {
	case api.ExecutionFailed:
		return EventExecutionFailed
	case api.ExecutionCancelled:
		return EventExecutionCancelled
	case api.ExecutionPaused:
		return EventExecutionPaused
	default:
		return EventExecutionCompleted
	}
}
