package transfer

import "errors"

// Feasibility errors. They are returned before any file is opened and map to
// an INVALID verdict.
var (
	ErrNotFound    = errors.New("no such file")
	ErrNotRegular  = errors.New("not a regular file")
	ErrNotReadable = errors.New("file is not readable")
	ErrIsDirectory = errors.New("destination is a directory")
	ErrNotWritable = errors.New("destination is not writable")
)

// ErrLocal marks a failure on the local filesystem side of a transfer. The
// payload was still consumed or terminated, so the stream remains usable.
// Errors not wrapping ErrLocal come from the connection and are fatal.
var ErrLocal = errors.New("local file error")

// ErrFileTooLarge is returned by ReceiveFile when the payload exceeds the
// configured size limit. It always wraps ErrLocal.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// IsLocal reports whether err left the stream synchronized.
func IsLocal(err error) bool {
	return errors.Is(err, ErrLocal)
}
