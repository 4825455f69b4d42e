// Package engine implements the workflow orchestrator
//
// The orchestrator owns an execution's lifecycle: it resolves a workflow's
// dependency graph, computes which steps are ready, dispatches ready steps
// as concurrent batches to the step executor, folds results back into the
// execution record, and decides overall completion or failure. Each
// execution runs on its own goroutine; steps within a dispatch batch fan
// out and join before the next batch is considered
package engine
