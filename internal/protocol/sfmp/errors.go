package sfmp

import "errors"

var (
	// ErrEmptyCommand is returned by Parse for an empty line.
	ErrEmptyCommand = errors.New("sfmp: empty command")

	// ErrUnknownHeader is returned when the header is not GET, PUT or LS.
	ErrUnknownHeader = errors.New("sfmp: unknown header")

	// ErrArity is returned when the argument count does not match the header.
	ErrArity = errors.New("sfmp: wrong number of arguments")

	// ErrMalformed is returned when a command cannot be represented on the wire.
	ErrMalformed = errors.New("sfmp: malformed command")

	// ErrLineTooLong is returned when a line exceeds MaxLineLength. The rest
	// of the line has been consumed, so the stream stays in sync.
	ErrLineTooLong = errors.New("sfmp: line too long")

	// ErrUnexpectedToken is returned when a handshake reply is neither
	// VALID nor INVALID.
	ErrUnexpectedToken = errors.New("sfmp: unexpected handshake token")

	// ErrRejected is returned to the initiator when the responder replied INVALID.
	ErrRejected = errors.New("sfmp: command rejected by peer")

	// ErrFrameTooLarge is returned when a payload frame exceeds MaxFrameSize.
	ErrFrameTooLarge = errors.New("sfmp: payload frame too large")

	// ErrBadMarker is returned when a payload does not start with a known marker.
	ErrBadMarker = errors.New("sfmp: invalid payload marker")
)

// IsMalformed reports whether err describes a command that failed to parse.
// Malformed commands are recoverable: the responder answers INVALID.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrEmptyCommand) ||
		errors.Is(err, ErrUnknownHeader) ||
		errors.Is(err, ErrArity) ||
		errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrLineTooLong)
}
