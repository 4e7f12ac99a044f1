package sfmp

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// Stream wraps a connection with the buffered reader and writer shared by
// the line-oriented and payload phases of the protocol. A single bufio.Reader
// must serve both phases: bytes buffered while reading a command line may
// already belong to the payload that follows.
//
// Stream implements io.Reader and io.Writer; every Read and Write arms the
// corresponding deadline when a timeout is configured. Writes are buffered
// until Flush.
//
// Stream is not safe for concurrent use. SFMP is strictly sequential per
// connection, so one goroutine owns the stream.
type Stream struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer

	// IdleTimeout bounds the wait for a command or handshake line.
	// 0 means no timeout.
	IdleTimeout time.Duration

	// ReadTimeout bounds each payload read. 0 means no timeout.
	ReadTimeout time.Duration

	// WriteTimeout bounds each write and flush. 0 means no timeout.
	WriteTimeout time.Duration
}

// NewStream creates a Stream over conn.
func NewStream(conn net.Conn) *Stream {
	return &Stream{
		conn: conn,
		r:    bufio.NewReaderSize(conn, 4*MaxLineLength),
		w:    bufio.NewWriterSize(conn, 4*MaxLineLength),
	}
}

// Conn returns the underlying connection.
func (s *Stream) Conn() net.Conn {
	return s.conn
}

// Read reads payload bytes, arming ReadTimeout.
func (s *Stream) Read(p []byte) (int, error) {
	s.armRead(s.ReadTimeout)
	return s.r.Read(p)
}

// Write buffers p, arming WriteTimeout. Call Flush to push it to the peer.
func (s *Stream) Write(p []byte) (int, error) {
	s.armWrite()
	return s.w.Write(p)
}

// Flush writes any buffered data to the connection.
func (s *Stream) Flush() error {
	s.armWrite()
	return s.w.Flush()
}

// ReadLine reads one line, without its terminator. Lines longer than
// MaxLineLength are consumed entirely and reported as ErrLineTooLong so the
// stream stays aligned on the next line.
func (s *Stream) ReadLine() (string, error) {
	s.armRead(s.IdleTimeout)

	var line []byte
	tooLong := false
	for {
		frag, err := s.r.ReadSlice('\n')
		if !tooLong {
			line = append(line, frag...)
			if len(bytes.TrimRight(line, "\r\n")) > MaxLineLength {
				tooLong = true
				line = nil
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil {
			return "", err
		}
		break
	}

	if tooLong {
		return "", ErrLineTooLong
	}
	return strings.TrimRight(string(line), "\r\n"), nil
}

// WriteLine writes line followed by "\n" and flushes.
func (s *Stream) WriteLine(line string) error {
	if strings.ContainsAny(line, "\n") {
		return fmt.Errorf("%w: line contains a newline", ErrMalformed)
	}
	if len(line) > MaxLineLength {
		return ErrLineTooLong
	}
	if _, err := s.Write([]byte(line + "\n")); err != nil {
		return err
	}
	return s.Flush()
}

// deadline returns the absolute deadline for d; zero clears any deadline
// left over from a previous phase.
func deadline(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return time.Now().Add(d)
}

func (s *Stream) armRead(d time.Duration) {
	_ = s.conn.SetReadDeadline(deadline(d))
}

func (s *Stream) armWrite() {
	_ = s.conn.SetWriteDeadline(deadline(s.WriteTimeout))
}
