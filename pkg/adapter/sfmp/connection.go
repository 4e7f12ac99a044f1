package sfmp

import (
	"context"
	"errors"
	"io"
	"net"
	"runtime/debug"

	"github.com/marmos91/sfmp/internal/logger"
	wire "github.com/marmos91/sfmp/internal/protocol/sfmp"
	"github.com/marmos91/sfmp/internal/telemetry"
	"github.com/marmos91/sfmp/pkg/session"
	"go.opentelemetry.io/otel/trace"
)

// Connection serves one SFMP session. It owns the session's stream; no
// other goroutine reads from or writes to the connection.
type Connection struct {
	server  *Adapter
	session *session.Session
	stream  *wire.Stream
}

func newConnection(server *Adapter, s *session.Session) *Connection {
	stream := wire.NewStream(s.Conn())
	stream.IdleTimeout = server.config.Timeouts.Idle
	stream.ReadTimeout = server.config.Timeouts.Read
	stream.WriteTimeout = server.config.Timeouts.Write

	return &Connection{
		server:  server,
		session: s,
		stream:  stream,
	}
}

// Serve runs the session loop until the client disconnects, an idle or I/O
// timeout expires, a fatal protocol error occurs, or the server shuts down.
//
// Each iteration waits for a command line (AwaitingCommand), answers the
// handshake (Validating) and, on VALID, moves the payload (Transferring).
// A panic terminates this session only.
func (c *Connection) Serve(ctx context.Context) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanSession,
		trace.WithAttributes(
			telemetry.SessionID(c.session.ID()),
			telemetry.ClientAddr(c.session.Addr()),
		),
		trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	lc := logger.NewLogContext(c.session.ID(), c.session.Addr()).
		WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx))
	ctx = logger.WithContext(ctx, lc)

	defer c.handleConnectionClose(ctx)

	logger.InfoCtx(ctx, "Received connection from new client")
	c.logClients(ctx)

	// On shutdown an idle session is closed at once; a session in the
	// middle of a command finishes it and stops at the top of the loop.
	stop := context.AfterFunc(ctx, func() {
		if c.session.State() == session.AwaitingCommand {
			_ = c.session.Close()
		}
	})
	defer stop()

	for {
		c.session.SetState(session.AwaitingCommand)

		select {
		case <-ctx.Done():
			logger.DebugCtx(ctx, "Session closed due to server shutdown")
			return
		default:
		}

		cmd, line, err := wire.ReceiveProposal(c.stream)
		if err != nil && !wire.IsMalformed(err) {
			c.logReadError(ctx, err)
			return
		}

		c.session.SetState(session.Validating)
		if err != nil {
			if c.reject(ctx, line, err) == OutcomeFatal {
				return
			}
			continue
		}

		if c.dispatch(ctx, cmd, line) == OutcomeFatal {
			return
		}
	}
}

// logReadError reports why the session stopped waiting for commands.
func (c *Connection) logReadError(ctx context.Context, err error) {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF):
		logger.InfoCtx(ctx, "Client has disconnected")
	case errors.As(err, &netErr) && netErr.Timeout():
		select {
		case <-ctx.Done():
			logger.DebugCtx(ctx, "Session interrupted by server shutdown")
		default:
			logger.InfoCtx(ctx, "Client idle timeout expired", logger.KeyError, err)
		}
	case errors.Is(err, net.ErrClosed):
		logger.DebugCtx(ctx, "Connection closed", logger.KeyError, err)
	default:
		logger.InfoCtx(ctx, "Error reading command", logger.KeyError, err)
	}
}

// handleConnectionClose recovers from panics, terminates the session and
// removes it from the registry. It runs exactly once per session.
func (c *Connection) handleConnectionClose(ctx context.Context) {
	if r := recover(); r != nil {
		logger.ErrorCtx(ctx, "Panic in session handler",
			"error", r,
			"stack", string(debug.Stack()))
	}

	c.session.SetState(session.Terminated)
	if err := c.session.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		logger.DebugCtx(ctx, "Error closing connection", logger.KeyError, err)
	}
	c.server.registry.Remove(c.session)

	info := c.session.Info()
	logger.DebugCtx(ctx, "Session terminated",
		"commands", info.Commands,
		"rejected", info.Rejected,
		"bytes_in", info.BytesIn,
		"bytes_out", info.BytesOut)
	c.logClients(ctx)
}

// logClients logs the number of connected clients.
func (c *Connection) logClients(ctx context.Context) {
	logger.InfoCtx(ctx, "Clients connected", logger.KeyActive, c.server.registry.Count())
}
