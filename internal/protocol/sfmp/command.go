// Package sfmp implements the SFMP wire grammar: command lines, handshake
// tokens and payload framing. It performs no filesystem access.
package sfmp

import (
	"fmt"
	"strings"
)

// Header identifies the command keyword of an SFMP command line.
type Header uint8

const (
	// HeaderUnknown is the zero value and never appears on a parsed Command.
	HeaderUnknown Header = iota
	HeaderGet
	HeaderPut
	HeaderLS
)

// headers maps the canonical (upper-case) keyword to its Header.
var headers = map[string]Header{
	"GET": HeaderGet,
	"PUT": HeaderPut,
	"LS":  HeaderLS,
}

// Headers returns all recognised headers in wire order.
func Headers() []Header {
	return []Header{HeaderGet, HeaderPut, HeaderLS}
}

// ParseHeader normalises s to upper case and looks it up.
func ParseHeader(s string) (Header, bool) {
	h, ok := headers[strings.ToUpper(s)]
	return h, ok
}

// String returns the canonical keyword.
func (h Header) String() string {
	switch h {
	case HeaderGet:
		return "GET"
	case HeaderPut:
		return "PUT"
	case HeaderLS:
		return "LS"
	default:
		return "UNKNOWN"
	}
}

// Arity returns the number of arguments that must follow the header.
func (h Header) Arity() int {
	switch h {
	case HeaderGet, HeaderPut:
		return 2
	case HeaderLS:
		return 1
	default:
		return -1
	}
}

// Command is a parsed SFMP command. It is immutable once returned by Parse
// or NewCommand; Args returns a copy.
type Command struct {
	header Header
	args   []string
}

// NewCommand builds a Command, checking the arity for the header.
func NewCommand(h Header, args ...string) (Command, error) {
	if h.Arity() < 0 {
		return Command{}, ErrUnknownHeader
	}
	if len(args) != h.Arity() {
		return Command{}, fmt.Errorf("%w: %s takes %d argument(s), got %d", ErrArity, h, h.Arity(), len(args))
	}
	for _, a := range args {
		if strings.ContainsAny(a, " \n") {
			return Command{}, fmt.Errorf("%w: argument %q contains a space or newline", ErrMalformed, a)
		}
	}
	return Command{header: h, args: append([]string(nil), args...)}, nil
}

// Parse decodes a command line. The line is split on the single space
// character with no escaping, so consecutive spaces produce empty arguments.
// A trailing "\r\n" or "\n" is ignored.
func Parse(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return Command{}, ErrEmptyCommand
	}

	fields := strings.Split(line, " ")
	h, ok := ParseHeader(fields[0])
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownHeader, fields[0])
	}

	args := fields[1:]
	if len(args) != h.Arity() {
		return Command{}, fmt.Errorf("%w: %s takes %d argument(s), got %d", ErrArity, h, h.Arity(), len(args))
	}

	return Command{header: h, args: args}, nil
}

// Header returns the command keyword.
func (c Command) Header() Header {
	return c.header
}

// Args returns a copy of the arguments following the header.
func (c Command) Args() []string {
	return append([]string(nil), c.args...)
}

// Arg returns the i-th argument, or "" if out of range.
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.args) {
		return ""
	}
	return c.args[i]
}

// IsZero reports whether c is the zero Command.
func (c Command) IsZero() bool {
	return c.header == HeaderUnknown
}

// String renders the command without a line terminator.
func (c Command) String() string {
	if len(c.args) == 0 {
		return c.header.String()
	}
	return c.header.String() + " " + strings.Join(c.args, " ")
}

// Encode renders the command as a wire line, including the terminator.
func (c Command) Encode() string {
	return c.String() + "\n"
}
