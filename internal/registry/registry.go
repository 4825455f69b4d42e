// Package registry maps step type tags to the handlers that run them.
// External collaborators register their handlers once at startup
package registry

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/floeworks/floe/pkg/api"
)

// Registry is a thread-safe lookup table from step type to handler
type Registry struct {
	handlers map[api.StepType]api.Handler
	mu       sync.RWMutex
}

var (
	ErrNilHandler      = errors.New("handler must not be nil")
	ErrUnknownStepType = errors.New("unknown step type")
)

// New creates an empty handler registry
func New() *Registry {
	return &Registry{
		handlers: map[api.StepType]api.Handler{},
	}
}

// Register installs the handler for a step type, replacing any previous one
func (r *Registry) Register(t api.StepType, h api.Handler) error {
	if h == nil {
		return fmt.Errorf("%w: %s", ErrNilHandler, t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[t] = h
	return nil
}

// Resolve returns the handler for a step type
func (r *Registry) Resolve(t api.StepType) (api.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[t]
	return h, ok
}

// Types returns the registered step types in sorted order
func (r *Registry) Types() []api.StepType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]api.StepType, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
