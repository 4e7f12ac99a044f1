package sfmp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Payload framing
//
// A payload is either the empty sentinel (a single MarkerEmpty byte), or
// MarkerFramed followed by frames of the form
//
//	uint32 big-endian length N (1..MaxFrameSize) | N bytes
//
// terminated by a zero-length frame. Senders may split content into frames
// of any size within the bound, so payloads of arbitrary length stream in
// bounded reads and writes.

type flusher interface {
	Flush() error
}

// FrameWriter encodes a payload onto an underlying writer. Content written
// through Write is emitted as frames; Close ends the payload. A FrameWriter
// that is closed without any content emits the empty sentinel.
type FrameWriter struct {
	w       io.Writer
	started bool
	closed  bool
	written int64
	hdr     [4]byte
}

// NewFrameWriter returns a FrameWriter writing to w.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// Write emits p as one or more frames. Empty writes are ignored.
func (fw *FrameWriter) Write(p []byte) (int, error) {
	if fw.closed {
		return 0, errors.New("sfmp: write on closed payload")
	}
	if len(p) == 0 {
		return 0, nil
	}
	if !fw.started {
		if _, err := fw.w.Write([]byte{MarkerFramed}); err != nil {
			return 0, err
		}
		fw.started = true
	}

	total := 0
	for len(p) > 0 {
		n := min(len(p), MaxFrameSize)
		binary.BigEndian.PutUint32(fw.hdr[:], uint32(n))
		if _, err := fw.w.Write(fw.hdr[:]); err != nil {
			return total, err
		}
		m, err := fw.w.Write(p[:n])
		total += m
		fw.written += int64(m)
		if err != nil {
			return total, err
		}
		p = p[n:]
	}
	return total, nil
}

// Written returns the number of content bytes emitted so far.
func (fw *FrameWriter) Written() int64 {
	return fw.written
}

// Close terminates the payload and flushes the underlying writer if it
// supports flushing. Close is idempotent.
func (fw *FrameWriter) Close() error {
	if fw.closed {
		return nil
	}
	fw.closed = true

	var err error
	if fw.started {
		binary.BigEndian.PutUint32(fw.hdr[:], 0)
		_, err = fw.w.Write(fw.hdr[:])
	} else {
		_, err = fw.w.Write([]byte{MarkerEmpty})
	}
	if err != nil {
		return err
	}
	if f, ok := fw.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// FrameReader decodes a payload from an underlying reader. Read returns
// io.EOF once the terminating frame (or the empty sentinel) is consumed;
// the underlying reader is then positioned at the next protocol line.
type FrameReader struct {
	r         io.Reader
	maxFrame  uint32
	opened    bool
	empty     bool
	done      bool
	remaining uint32
	read      int64
	hdr       [4]byte
}

// NewFrameReader returns a FrameReader reading from r.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: r, maxFrame: MaxFrameSize}
}

// Open consumes the payload marker and reports whether the payload is the
// empty sentinel. Read calls Open implicitly.
func (fr *FrameReader) Open() (empty bool, err error) {
	if fr.opened {
		return fr.empty, nil
	}
	var marker [1]byte
	if _, err := io.ReadFull(fr.r, marker[:]); err != nil {
		return false, err
	}
	fr.opened = true

	switch marker[0] {
	case MarkerEmpty:
		fr.empty = true
		fr.done = true
	case MarkerFramed:
	default:
		return false, fmt.Errorf("%w: 0x%02x", ErrBadMarker, marker[0])
	}
	return fr.empty, nil
}

// Empty reports whether the payload was the empty sentinel. It is only
// meaningful after Open or the first Read.
func (fr *FrameReader) Empty() bool {
	return fr.empty
}

// BytesRead returns the number of content bytes decoded so far.
func (fr *FrameReader) BytesRead() int64 {
	return fr.read
}

// Read implements io.Reader over the payload content.
func (fr *FrameReader) Read(p []byte) (int, error) {
	if !fr.opened {
		if _, err := fr.Open(); err != nil {
			return 0, err
		}
	}
	if len(p) == 0 {
		return 0, nil
	}

	for fr.remaining == 0 {
		if fr.done {
			return 0, io.EOF
		}
		if _, err := io.ReadFull(fr.r, fr.hdr[:]); err != nil {
			return 0, unexpected(err)
		}
		size := binary.BigEndian.Uint32(fr.hdr[:])
		if size == 0 {
			fr.done = true
			return 0, io.EOF
		}
		if size > fr.maxFrame {
			return 0, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
		}
		fr.remaining = size
	}

	if uint32(len(p)) > fr.remaining {
		p = p[:fr.remaining]
	}
	n, err := fr.r.Read(p)
	fr.remaining -= uint32(n)
	fr.read += int64(n)
	if err != nil {
		return n, unexpected(err)
	}
	return n, nil
}

// Drain discards the rest of the payload.
func (fr *FrameReader) Drain() (int64, error) {
	return io.Copy(io.Discard, fr)
}

// unexpected converts a premature EOF inside a payload into
// io.ErrUnexpectedEOF; the terminator, not EOF, ends a payload.
func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
