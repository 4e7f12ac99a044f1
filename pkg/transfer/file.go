// Package transfer moves file contents and directory listings across an
// SFMP connection once the validation handshake has succeeded.
//
// Senders read the source in bounded chunks and emit one payload frame per
// chunk; receivers loop until the payload terminator, so files of any size
// transfer completely. A zero-byte file travels as the empty sentinel.
//
// Errors are split in two classes. Errors wrapping ErrLocal concern the
// local file and leave the connection synchronized on the next command.
// Every other error comes from the connection and ends the session.
package transfer

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/marmos91/sfmp/internal/protocol/sfmp"
	"github.com/marmos91/sfmp/pkg/bufpool"
)

// Options tunes a single transfer.
type Options struct {
	// ChunkSize is the read size used when streaming a file.
	// Zero means sfmp.DefaultChunkSize; values above sfmp.MaxFrameSize are
	// clamped.
	ChunkSize int

	// MaxSize bounds the number of bytes ReceiveFile accepts. Zero means
	// unlimited.
	MaxSize int64
}

func (o Options) chunkSize() int {
	switch {
	case o.ChunkSize <= 0:
		return sfmp.DefaultChunkSize
	case o.ChunkSize > sfmp.MaxFrameSize:
		return sfmp.MaxFrameSize
	default:
		return o.ChunkSize
	}
}

// Stats describes a finished transfer.
type Stats struct {
	Bytes       int64
	Empty       bool
	CreatedDirs bool
	Duration    time.Duration
}

// SendFile streams the file at path onto w as a framed payload.
//
// If the file cannot be opened or read after the handshake, the payload is
// still terminated so the peer stays in sync, and the error wraps ErrLocal.
// The peer then holds a truncated (possibly empty) copy.
func SendFile(w io.Writer, path string, opts Options) (Stats, error) {
	start := time.Now()
	fw := sfmp.NewFrameWriter(w)

	stats := func() Stats {
		return Stats{Bytes: fw.Written(), Empty: fw.Written() == 0, Duration: time.Since(start)}
	}

	f, err := os.Open(path)
	if err != nil {
		if cerr := fw.Close(); cerr != nil {
			return stats(), cerr
		}
		return stats(), fmt.Errorf("%w: open %s: %w", ErrLocal, path, err)
	}
	defer func() { _ = f.Close() }()

	buf := bufpool.Get(opts.chunkSize())
	defer bufpool.Put(buf)

	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			if _, err := fw.Write(buf[:n]); err != nil {
				return stats(), err
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			if cerr := fw.Close(); cerr != nil {
				return stats(), cerr
			}
			return stats(), fmt.Errorf("%w: read %s: %w", ErrLocal, path, rerr)
		}
	}

	if err := fw.Close(); err != nil {
		return stats(), err
	}
	return stats(), nil
}

// ReceiveFile reads a framed payload from r and writes it to path,
// truncating or creating the file (mode 0644) and any missing parent
// directories (mode 0755). An empty payload creates an empty file.
//
// When the payload exceeds opts.MaxSize, or the local file cannot be
// written, the rest of the payload is drained, the partial file is removed
// and the returned error wraps ErrLocal.
func ReceiveFile(r io.Reader, path string, opts Options) (Stats, error) {
	start := time.Now()
	fr := sfmp.NewFrameReader(r)
	stats := Stats{}
	finish := func() Stats {
		stats.Bytes = fr.BytesRead()
		stats.Empty = fr.Empty()
		stats.Duration = time.Since(start)
		return stats
	}

	if _, err := fr.Open(); err != nil {
		return finish(), err
	}

	created, err := ensureParent(path)
	if err != nil {
		return finish(), discard(fr, fmt.Errorf("%w: create directories for %s: %w", ErrLocal, path, err))
	}
	stats.CreatedDirs = created

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return finish(), discard(fr, fmt.Errorf("%w: create %s: %w", ErrLocal, path, err))
	}

	buf := bufpool.Get(opts.chunkSize())
	defer bufpool.Put(buf)

	var written int64
	for {
		n, rerr := fr.Read(buf)
		if n > 0 {
			if opts.MaxSize > 0 && written+int64(n) > opts.MaxSize {
				abandon(f, path)
				return finish(), discard(fr, fmt.Errorf("%w: %s: %w (limit %d bytes)", ErrLocal, path, ErrFileTooLarge, opts.MaxSize))
			}
			if _, err := f.Write(buf[:n]); err != nil {
				abandon(f, path)
				return finish(), discard(fr, fmt.Errorf("%w: write %s: %w", ErrLocal, path, err))
			}
			written += int64(n)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			abandon(f, path)
			return finish(), rerr
		}
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return finish(), fmt.Errorf("%w: close %s: %w", ErrLocal, path, err)
	}
	return finish(), nil
}

// discard drains the rest of the payload. A drain failure replaces cause:
// the stream is then no longer usable, so the result must not wrap ErrLocal.
func discard(fr *sfmp.FrameReader, cause error) error {
	if _, err := fr.Drain(); err != nil {
		return fmt.Errorf("drain payload after %v: %w", cause, err)
	}
	return cause
}

func abandon(f *os.File, path string) {
	_ = f.Close()
	_ = os.Remove(path)
}
