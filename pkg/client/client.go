// Package client implements the initiating side of SFMP: local pre-flight
// checks, the validation handshake and the local half of GET, PUT and LS.
//
// A Client owns one connection and is used by a single goroutine; commands
// are executed one at a time and never pipelined.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/marmos91/sfmp/internal/logger"
	wire "github.com/marmos91/sfmp/internal/protocol/sfmp"
	"github.com/marmos91/sfmp/internal/telemetry"
	"github.com/marmos91/sfmp/pkg/transfer"
)

// LS targets.
const (
	TargetClient = "client"
	TargetServer = "server"
)

// Result describes a finished command.
type Result struct {
	// Header is the command header.
	Header wire.Header `json:"-" yaml:"-"`

	// Command is the line sent to the server; empty for LS client.
	Command string `json:"command,omitempty" yaml:"command,omitempty"`

	// Messages are progress lines produced while the command ran.
	Messages []string `json:"messages,omitempty" yaml:"messages,omitempty"`

	// Status is the final human-readable status line.
	Status string `json:"status" yaml:"status"`

	// Path is the local file read or written.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	Bytes       int64         `json:"bytes" yaml:"bytes"`
	Empty       bool          `json:"empty" yaml:"empty"`
	CreatedDirs bool          `json:"created_dirs,omitempty" yaml:"created_dirs,omitempty"`
	Duration    time.Duration `json:"duration" yaml:"duration"`

	// Target and Entries are set by LS.
	Target  string   `json:"target,omitempty" yaml:"target,omitempty"`
	Entries []string `json:"entries,omitempty" yaml:"entries,omitempty"`
}

// IsListing reports whether r is the result of an LS command.
func (r Result) IsListing() bool { return r.Target != "" }

// ListingOwner returns the side whose directory was listed.
func (r Result) ListingOwner() string { return r.Target }

// ListingEntries returns the listed entry names.
func (r Result) ListingEntries() []string { return r.Entries }

// Client is a connection to an SFMP server.
type Client struct {
	cfg    Config
	conn   net.Conn
	stream *wire.Stream
	addr   string
	broken bool
}

// Dial connects to the server described by cfg.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	d := net.Dialer{Timeout: cfg.Timeouts.Connect}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: connect to %s: %w", ErrConnection, addr, err)
	}
	logger.Debug("Connected to server", logger.KeyClientAddr, addr)

	return newClient(cfg, conn), nil
}

// newClient wraps an established connection.
func newClient(cfg Config, conn net.Conn) *Client {
	stream := wire.NewStream(conn)
	stream.IdleTimeout = cfg.Timeouts.Read
	stream.ReadTimeout = cfg.Timeouts.Read
	stream.WriteTimeout = cfg.Timeouts.Write

	return &Client{
		cfg:    cfg,
		conn:   conn,
		stream: stream,
		addr:   conn.RemoteAddr().String(),
	}
}

// RemoteAddr returns the server address.
func (c *Client) RemoteAddr() string {
	return c.addr
}

// Close closes the connection.
func (c *Client) Close() error {
	c.broken = true
	return c.conn.Close()
}

// Execute runs one user command line: "GET remote local", "PUT local
// remote", "LS client|server" or "quit". Headers are case-insensitive.
//
// Errors match ErrQuit, ErrUsage (see UsageError), ErrInfeasible,
// ErrRejected, ErrConnection, or wrap transfer.ErrLocal when the local file
// failed after the server accepted the command.
func (c *Client) Execute(ctx context.Context, line string) (Result, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "quit" {
		return Result{}, ErrQuit
	}

	fields := strings.Split(line, " ")
	h, ok := wire.ParseHeader(fields[0])
	if !ok {
		return Result{}, &UsageError{Header: wire.HeaderUnknown, Err: fmt.Errorf("%w: %q", wire.ErrUnknownHeader, fields[0])}
	}
	if len(fields)-1 != h.Arity() {
		return Result{Header: h}, &UsageError{Header: h, Err: fmt.Errorf("%w: %s takes %d, got %d", wire.ErrArity, h, h.Arity(), len(fields)-1)}
	}

	switch h {
	case wire.HeaderGet:
		return c.Get(ctx, fields[1], fields[2])
	case wire.HeaderPut:
		return c.Put(ctx, fields[1], fields[2])
	default:
		switch fields[1] {
		case TargetClient:
			return c.ListClient()
		case TargetServer:
			return c.ListServer(ctx)
		default:
			return Result{Header: h}, &UsageError{Header: h, Err: fmt.Errorf("unknown LS target %q", fields[1])}
		}
	}
}

// local resolves a local path against LocalDir.
func (c *Client) local(p string) string {
	return localPath(c.cfg, p)
}

func localPath(cfg Config, p string) string {
	root := cfg.LocalDir
	if root == "" {
		root = "."
	}
	resolved, err := filepath.Abs(transfer.Resolve(root, p))
	if err != nil {
		return transfer.Resolve(root, p)
	}
	return resolved
}

func (c *Client) options() transfer.Options {
	return transfer.Options{ChunkSize: c.cfg.ChunkSize.Int()}
}

// Get fetches remote into local, creating missing local directories once
// the server has accepted the command.
func (c *Client) Get(ctx context.Context, remote, local string) (Result, error) {
	cmd, err := wire.NewCommand(wire.HeaderGet, remote, local)
	if err != nil {
		return Result{Header: wire.HeaderGet}, &UsageError{Header: wire.HeaderGet, Err: err}
	}
	path := c.local(local)
	res := Result{Header: wire.HeaderGet, Command: cmd.String(), Path: path}

	if err := transfer.CheckWritableDest(path); err != nil {
		return res, fmt.Errorf("%w: cannot write %s: %w", ErrInfeasible, path, err)
	}

	err = c.run(ctx, cmd, &res, func() error {
		stats, err := transfer.ReceiveFile(c.stream, path, c.options())
		res.Bytes, res.Empty, res.CreatedDirs = stats.Bytes, stats.Empty, stats.CreatedDirs
		if stats.CreatedDirs {
			res.Messages = append(res.Messages, fmt.Sprintf("Created directories '%s'", filepath.Dir(path)))
		}
		return err
	})
	if err != nil {
		return res, err
	}

	if res.Empty {
		res.Status = fmt.Sprintf("File requested was blank, file '%s' created but nothing written.", filepath.Base(path))
	} else {
		res.Status = fmt.Sprintf("Successfully wrote %d bytes to '%s'", res.Bytes, path)
	}
	return res, nil
}

// Put uploads local to remote.
func (c *Client) Put(ctx context.Context, local, remote string) (Result, error) {
	cmd, err := wire.NewCommand(wire.HeaderPut, local, remote)
	if err != nil {
		return Result{Header: wire.HeaderPut}, &UsageError{Header: wire.HeaderPut, Err: err}
	}
	path := c.local(local)
	res := Result{Header: wire.HeaderPut, Command: cmd.String(), Path: path}

	if err := transfer.CheckReadable(path); err != nil {
		return res, fmt.Errorf("%w: file at %s does not appear to exist or is not readable: %w", ErrInfeasible, path, err)
	}

	err = c.run(ctx, cmd, &res, func() error {
		stats, err := transfer.SendFile(c.stream, path, c.options())
		res.Bytes, res.Empty = stats.Bytes, stats.Empty
		return err
	})
	if err != nil {
		return res, err
	}

	if res.Empty {
		res.Status = fmt.Sprintf("File '%s' was blank, sent an empty file", filepath.Base(path))
	} else {
		res.Status = fmt.Sprintf("Successfully sent %d bytes from '%s' to '%s'", res.Bytes, path, remote)
	}
	return res, nil
}

// ListServer lists the server's directory.
func (c *Client) ListServer(ctx context.Context) (Result, error) {
	cmd, _ := wire.NewCommand(wire.HeaderLS, TargetServer)
	res := Result{Header: wire.HeaderLS, Command: cmd.String(), Target: TargetServer}

	err := c.run(ctx, cmd, &res, func() error {
		names, err := transfer.ReceiveListing(c.stream)
		res.Entries = names
		res.Empty = len(names) == 0
		return err
	})
	if err != nil {
		return res, err
	}
	res.Status = fmt.Sprintf("%d entries in server's directory", len(res.Entries))
	return res, nil
}

// ListClient lists the local directory. It never touches the connection.
func (c *Client) ListClient() (Result, error) {
	return ListLocal(c.cfg)
}

// ListLocal lists cfg.LocalDir without a connection, as LS client does.
func ListLocal(cfg Config) (Result, error) {
	start := time.Now()
	dir := localPath(cfg, ".")
	names, err := transfer.ListDir(dir)
	if err != nil {
		return Result{Header: wire.HeaderLS, Target: TargetClient}, fmt.Errorf("%w: %w", ErrInfeasible, err)
	}
	return Result{
		Header:   wire.HeaderLS,
		Target:   TargetClient,
		Path:     dir,
		Entries:  names,
		Empty:    len(names) == 0,
		Duration: time.Since(start),
		Status:   fmt.Sprintf("%d entries in client's directory", len(names)),
	}, nil
}

// VerdictMessage is the status line printed when the server answers cmd.
func VerdictMessage(cmd string, v wire.Verdict) string {
	action := "aborting"
	if v == wire.Valid {
		action = "forwarding"
	}
	return fmt.Sprintf("Server says command '%s' is %s, %s...", cmd, v, action)
}

// run performs the handshake for cmd and, on VALID, the payload phase.
// Cancelling ctx interrupts blocking I/O and leaves the client unusable.
func (c *Client) run(ctx context.Context, cmd wire.Command, res *Result, payload func() error) (err error) {
	if c.broken {
		return fmt.Errorf("%w: connection is closed", ErrConnection)
	}
	if len(cmd.String()) > wire.MaxLineLength {
		return &UsageError{Header: cmd.Header(), Err: wire.ErrLineTooLong}
	}

	start := time.Now()
	header := cmd.Header().String()
	ctx, span := telemetry.StartClientSpan(ctx, header,
		telemetry.Command(cmd.String()),
		telemetry.ClientAddr(c.addr))
	defer span.End()
	defer func() {
		res.Duration = time.Since(start)
		telemetry.SetAttributes(ctx, telemetry.Bytes(res.Bytes), telemetry.Empty(res.Empty))
		telemetry.RecordError(ctx, err)
		logger.DebugCtx(ctx, "Command finished",
			logger.KeyHeader, header,
			logger.KeyBytes, res.Bytes,
			logger.KeyDurationMs, logger.Duration(start),
			logger.KeyError, err)
	}()

	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Now())
	})
	defer stop()

	err = wire.Negotiate(c.stream, cmd)
	switch {
	case errors.Is(err, wire.ErrRejected):
		telemetry.SetAttributes(ctx, telemetry.Verdict(false))
		res.Messages = append(res.Messages, VerdictMessage(cmd.String(), wire.Invalid))
		return ErrRejected
	case err != nil:
		return c.fail(ctx, err)
	}
	telemetry.SetAttributes(ctx, telemetry.Verdict(true))
	res.Messages = append(res.Messages, VerdictMessage(cmd.String(), wire.Valid))

	if err := payload(); err != nil {
		if transfer.IsLocal(err) {
			return err
		}
		return c.fail(ctx, err)
	}
	return nil
}

// fail marks the client unusable and wraps err as a connection error.
func (c *Client) fail(ctx context.Context, err error) error {
	c.broken = true
	_ = c.conn.Close()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ErrConnection, ctxErr)
	}
	return fmt.Errorf("%w: %w", ErrConnection, err)
}
