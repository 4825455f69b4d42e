// Package graph builds and validates the dependency graph for a workflow's
// steps. Building is a pure function of the step list; the orchestrator
// caches the result per workflow id
package graph

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/floeworks/floe/internal/util"
	"github.com/floeworks/floe/pkg/api"
)

type (
	// Graph maps each step id to its dependency set and the inverse edges
	// needed for failure pruning
	Graph struct {
		deps       map[string]util.Set[string]
		dependents map[string]util.Set[string]
		ids        []string
	}

	// visitColor tracks DFS progress during cycle detection
	visitColor uint8
)

const (
	unvisited visitColor = iota
	visiting
	visited
)

var (
	ErrDuplicateStep     = errors.New("duplicate step id")
	ErrUnknownDependency = errors.New("unknown dependency")
	ErrCycleDetected     = errors.New("cycle detected")
)

// Build constructs the dependency graph for the given steps, failing when a
// step lists an unknown dependency or the edges contain a cycle
func Build(steps []*api.WorkflowStep) (*Graph, error) {
	g := &Graph{
		deps:       make(map[string]util.Set[string], len(steps)),
		dependents: make(map[string]util.Set[string], len(steps)),
		ids:        make([]string, 0, len(steps)),
	}

	for _, step := range steps {
		if _, ok := g.deps[step.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStep, step.ID)
		}
		g.deps[step.ID] = util.SetOf(step.Dependencies...)
		g.ids = append(g.ids, step.ID)
	}
	slices.Sort(g.ids)

	for id, deps := range g.deps {
		for dep := range deps {
			if _, ok := g.deps[dep]; !ok {
				return nil, fmt.Errorf("%w: step %s depends on %s",
					ErrUnknownDependency, id, dep)
			}
			set, ok := g.dependents[dep]
			if !ok {
				set = util.Set[string]{}
				g.dependents[dep] = set
			}
			set.Add(id)
		}
	}

	if err := g.checkAcyclic(); err != nil {
		return nil, err
	}
	return g, nil
}

// Len returns the number of steps in the graph
func (g *Graph) Len() int {
	return len(g.ids)
}

// IDs returns all step ids in sorted order
func (g *Graph) IDs() []string {
	return slices.Clone(g.ids)
}

// Dependencies returns the dependency set for a step
func (g *Graph) Dependencies(id string) util.Set[string] {
	return g.deps[id]
}

// Ready returns the unattempted steps whose every dependency has reached a
// terminal success state, in sorted order. Steps downstream of a failure
// never satisfy this and are thereby pruned
func (g *Graph) Ready(attempted, succeeded util.Set[string]) []string {
	var ready []string
	for _, id := range g.ids {
		if attempted.Contains(id) {
			continue
		}
		if succeeded.ContainsAll(g.deps[id]) {
			ready = append(ready, id)
		}
	}
	return ready
}

// Blocked returns the set of steps that transitively depend on any of the
// given failed steps
func (g *Graph) Blocked(failed util.Set[string]) util.Set[string] {
	blocked := util.Set[string]{}
	var visit func(id string)
	visit = func(id string) {
		for dep := range g.dependents[id] {
			if blocked.Contains(dep) {
				continue
			}
			blocked.Add(dep)
			visit(dep)
		}
	}
	for id := range failed {
		visit(id)
	}
	return blocked
}

func (g *Graph) checkAcyclic() error {
	colors := make(map[string]visitColor, len(g.ids))
	var stack []string

	var visit func(id string) error
	visit = func(id string) error {
		switch colors[id] {
		case visited:
			return nil
		case visiting:
			start := slices.Index(stack, id)
			path := append(slices.Clone(stack[start:]), id)
			return fmt.Errorf("%w: %s",
				ErrCycleDetected, strings.Join(path, " -> "))
		}

		colors[id] = visiting
		stack = append(stack, id)
		for dep := range g.deps[id] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		colors[id] = visited
		return nil
	}

	for _, id := range g.ids {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}
