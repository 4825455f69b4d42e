// Package floe is a workflow orchestration engine. A workflow is an
// immutable, named pipeline of typed steps joined by dependency edges;
// the engine resolves those edges into dispatch batches, runs each batch
// concurrently with per-step timeouts and retries, and tracks run-time
// state through to completion, failure, or cancellation
package floe

const (
	// Name is the service name used in logs and health responses
	Name = "floe"

	// Version is the engine release version
	Version = "0.3.1"
)
