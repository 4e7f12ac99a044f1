package client

import (
	"errors"
	"strings"

	wire "github.com/marmos91/sfmp/internal/protocol/sfmp"
)

var (
	// ErrQuit is returned by Execute for the "quit" line. Nothing is sent.
	ErrQuit = errors.New("quit")

	// ErrUsage is returned for lines with an unknown header or the wrong
	// number of arguments. Nothing is sent.
	ErrUsage = errors.New("invalid command")

	// ErrInfeasible is returned when a local pre-flight check fails.
	// Nothing is sent.
	ErrInfeasible = errors.New("command cannot be carried out locally")

	// ErrRejected is returned when the server answered INVALID.
	ErrRejected = wire.ErrRejected

	// ErrConnection is returned when the connection failed or timed out.
	// The client is unusable afterwards.
	ErrConnection = errors.New("there was a problem communicating with the server")
)

var usageMessages = map[wire.Header]string{
	wire.HeaderGet: "Usage: GET remote-path local-path",
	wire.HeaderPut: "Usage: PUT local-path remote-path",
	wire.HeaderLS:  "Usage: LS client|server",
}

// Usage returns the usage line for h, or every usage line, one per line,
// when h is not a known header.
func Usage(h wire.Header) string {
	if msg, ok := usageMessages[h]; ok {
		return msg
	}
	lines := make([]string, 0, len(usageMessages))
	for _, hh := range wire.Headers() {
		lines = append(lines, usageMessages[hh])
	}
	return strings.Join(lines, "\n")
}

// UsageError reports a line that is not a valid command. It matches
// ErrUsage with errors.Is.
type UsageError struct {
	// Header is the recognised header, or HeaderUnknown.
	Header wire.Header
	Err    error
}

func (e *UsageError) Error() string {
	return "invalid command: " + e.Err.Error()
}

func (e *UsageError) Unwrap() error { return e.Err }

func (e *UsageError) Is(target error) bool { return target == ErrUsage }

// Usage returns the usage text matching the header of the rejected line.
func (e *UsageError) Usage() string { return Usage(e.Header) }
