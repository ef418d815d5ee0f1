// Package server wires and runs the application's HTTP transport.
//
// It owns the listener lifecycle: startup, and graceful shutdown once the
// caller's context is cancelled by a termination signal.
package server
