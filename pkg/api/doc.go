// Package api defines the core data types for the workflow engine
//
// This package contains all the shared types used across the orchestrator,
// including workflow and step definitions, execution state, step results,
// conditions, and HTTP messages
package api
