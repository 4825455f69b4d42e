// Package server exposes the engine over HTTP: workflow management,
// execution control and status, and a WebSocket feed of execution events
package server
