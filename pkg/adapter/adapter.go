// Package adapter provides the protocol-independent TCP server lifecycle
// shared by protocol adapters.
package adapter

import (
	"context"
)

// Adapter represents a protocol server that can be managed by the server
// runtime.
//
// Lifecycle:
//  1. Creation: Adapter is created with protocol-specific configuration
//  2. Startup: Serve() starts the protocol server and blocks until shutdown
//  3. Shutdown: Stop() initiates graceful shutdown with timeout
//
// Thread safety:
// Implementations must be safe for concurrent use. Stop() may be called
// concurrently with Serve().
type Adapter interface {
	// Serve starts the protocol server and blocks until the context is cancelled
	// or an unrecoverable error occurs.
	//
	// When the context is cancelled, Serve must initiate graceful shutdown:
	//   - Stop accepting new connections
	//   - Wait for active sessions to complete (with timeout)
	//   - Clean up resources
	//
	// Returns nil on graceful shutdown, or an error if startup fails or
	// shutdown is not graceful.
	Serve(ctx context.Context) error

	// Stop initiates graceful shutdown of the protocol server.
	//
	// Implementations must be idempotent, safe to call concurrently with
	// Serve(), and must respect the context deadline.
	Stop(ctx context.Context) error

	// Protocol returns the human-readable protocol name for logging and metrics.
	Protocol() string

	// Port returns the configured TCP port.
	Port() int
}
