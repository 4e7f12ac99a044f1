package logger

import "log/slog"

// Standard field keys. Use them consistently so log lines can be queried
// across the server and client.
const (
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	KeySessionID  = "session_id"
	KeyClientAddr = "client"
	KeyActive     = "active"

	KeyHeader  = "header"
	KeyCommand = "command"
	KeyVerdict = "verdict"
	KeyOutcome = "outcome"

	KeyPath    = "path"
	KeyDir     = "dir"
	KeyBytes   = "bytes"
	KeyEntries = "entries"

	KeyDurationMs = "duration_ms"
	KeyError      = "error"
)

// SessionID returns a session_id attribute.
func SessionID(id string) slog.Attr {
	return slog.String(KeySessionID, id)
}

// ClientAddr returns a client address attribute.
func ClientAddr(addr string) slog.Attr {
	return slog.String(KeyClientAddr, addr)
}

// Header returns a command header attribute.
func Header(h string) slog.Attr {
	return slog.String(KeyHeader, h)
}

// Command returns the raw command line attribute.
func Command(line string) slog.Attr {
	return slog.String(KeyCommand, line)
}

// Path returns a file path attribute.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Bytes returns a byte count attribute.
func Bytes(n int64) slog.Attr {
	return slog.Int64(KeyBytes, n)
}

// DurationMs returns a duration attribute in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns an error attribute. A nil error yields an empty attribute,
// which handlers skip.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
