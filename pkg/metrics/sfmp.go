package metrics

import (
	"time"
)

// SFMPMetrics provides observability for SFMP adapter operations.
//
// Implementations collect command outcomes, transfer volume and connection
// lifecycle. Pass nil to disable metrics collection.
type SFMPMetrics interface {
	// RecordCommand records a finished command with its header (GET, PUT,
	// LS, or "malformed"), outcome label and total duration including the
	// handshake and payload.
	RecordCommand(header string, outcome string, duration time.Duration)

	// RecordVerdict counts VALID/INVALID replies per header.
	RecordVerdict(header string, valid bool)

	// RecordBytesTransferred records payload bytes moved by a command.
	// direction is "in" (client to server) or "out" (server to client).
	RecordBytesTransferred(header string, direction string, bytes int64)

	// SetActiveConnections updates the current connection count.
	SetActiveConnections(count int32)

	// RecordConnectionAccepted increments the total accepted connections counter.
	RecordConnectionAccepted()

	// RecordConnectionClosed increments the total closed connections counter.
	RecordConnectionClosed()

	// RecordConnectionForceClosed increments the force-closed connections
	// counter, used when the shutdown timeout expires.
	RecordConnectionForceClosed()
}
