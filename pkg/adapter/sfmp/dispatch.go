package sfmp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marmos91/sfmp/internal/logger"
	wire "github.com/marmos91/sfmp/internal/protocol/sfmp"
	"github.com/marmos91/sfmp/internal/telemetry"
	"github.com/marmos91/sfmp/pkg/session"
	"github.com/marmos91/sfmp/pkg/transfer"
	"go.opentelemetry.io/otel/codes"
)

// Outcome is the result of serving one command line.
type Outcome uint8

const (
	// OutcomeRejected: the server replied INVALID. No payload follows.
	OutcomeRejected Outcome = iota

	// OutcomeCompleted: VALID, and a non-empty payload was transferred.
	OutcomeCompleted

	// OutcomeEmpty: VALID, and the payload was the empty sentinel.
	OutcomeEmpty

	// OutcomeAborted: VALID, the payload was fully exchanged but the local
	// file could not be read or written. The stream is still in sync.
	OutcomeAborted

	// OutcomeFatal: the connection is unusable; the session terminates.
	OutcomeFatal
)

var outcomeNames = [...]string{
	OutcomeRejected:  "rejected",
	OutcomeCompleted: "completed",
	OutcomeEmpty:     "empty",
	OutcomeAborted:   "aborted",
	OutcomeFatal:     "fatal",
}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// headerMalformed labels metrics and spans for lines that did not parse.
const headerMalformed = "malformed"

// Payload directions, as seen from the server.
const (
	directionIn  = "in"
	directionOut = "out"
)

// handler serves one command header. check runs before the verdict is sent
// and must not modify the filesystem; run only starts after VALID.
type handler struct {
	check     func(c *Connection, cmd wire.Command) error
	run       func(ctx context.Context, c *Connection, cmd wire.Command) (transfer.Stats, error)
	direction string
}

// handlers is the dispatch table, indexed by header.
var handlers = [...]handler{
	wire.HeaderGet: {check: checkGet, run: runGet, direction: directionOut},
	wire.HeaderPut: {check: checkPut, run: runPut, direction: directionIn},
	wire.HeaderLS:  {check: checkLS, run: runLS, direction: directionOut},
}

// errNotServer is returned by checkLS when the argument is not "server".
var errNotServer = errors.New(`LS argument must be "server"`)

// resolve maps a command path onto the server root.
func (c *Connection) resolve(p string) string {
	return transfer.Resolve(c.server.config.Root, p)
}

func checkGet(c *Connection, cmd wire.Command) error {
	return transfer.CheckReadable(c.resolve(cmd.Arg(0)))
}

func checkPut(c *Connection, cmd wire.Command) error {
	return transfer.CheckWritableDest(c.resolve(cmd.Arg(1)))
}

func checkLS(_ *Connection, cmd wire.Command) error {
	if cmd.Arg(0) != "server" {
		return fmt.Errorf("%w: got %q", errNotServer, cmd.Arg(0))
	}
	return nil
}

func runGet(ctx context.Context, c *Connection, cmd wire.Command) (transfer.Stats, error) {
	path := c.resolve(cmd.Arg(0))
	telemetry.SetAttributes(ctx, telemetry.Path(path))
	stats, err := transfer.SendFile(c.stream, path, c.server.transferOptions())
	if err != nil {
		return stats, err
	}
	if stats.Empty {
		logger.InfoCtx(ctx, "File is blank, informing client", logger.KeyPath, path)
	} else {
		logger.InfoCtx(ctx, "File successfully sent to client", logger.KeyPath, path, logger.KeyBytes, stats.Bytes)
	}
	return stats, nil
}

func runPut(ctx context.Context, c *Connection, cmd wire.Command) (transfer.Stats, error) {
	path := c.resolve(cmd.Arg(1))
	telemetry.SetAttributes(ctx, telemetry.Path(path))
	stats, err := transfer.ReceiveFile(c.stream, path, c.server.transferOptions())
	if stats.CreatedDirs {
		logger.InfoCtx(ctx, "Created directories", logger.KeyPath, path)
	}
	if err != nil {
		return stats, err
	}
	logger.InfoCtx(ctx, "File successfully created", logger.KeyPath, path, logger.KeyBytes, stats.Bytes)
	return stats, nil
}

func runLS(ctx context.Context, c *Connection, _ wire.Command) (transfer.Stats, error) {
	names, listErr := transfer.ListDir(c.server.config.Root)
	if listErr != nil {
		names = nil
	}
	stats, err := transfer.SendListing(c.stream, names)
	if err != nil {
		return stats, err
	}
	if listErr != nil {
		return stats, fmt.Errorf("%w: %w", transfer.ErrLocal, listErr)
	}
	telemetry.SetAttributes(ctx, telemetry.Entries(len(names)))
	logger.InfoCtx(ctx, "Sent listing to client", logger.KeyDir, c.server.config.Root, logger.KeyEntries, len(names))
	return stats, nil
}

// dispatch serves a well-formed command: feasibility check, verdict, and on
// VALID the header's transfer.
func (c *Connection) dispatch(ctx context.Context, cmd wire.Command, line string) Outcome {
	start := time.Now()
	header := cmd.Header().String()
	h := handlers[cmd.Header()]

	ctx, span := telemetry.StartCommandSpan(ctx, header, telemetry.Command(line))
	defer span.End()
	ctx = logger.WithContext(ctx, logger.FromContext(ctx).WithHeader(header))

	logger.InfoCtx(ctx, "Received request", logger.KeyCommand, line)

	if err := h.check(c, cmd); err != nil {
		logger.InfoCtx(ctx, "Request is INVALID, replying and discarding", logger.KeyError, err)
		return c.finish(ctx, header, c.respond(ctx, header, wire.Invalid, line), transfer.Stats{}, h.direction, start)
	}

	if c.respond(ctx, header, wire.Valid, line) == OutcomeFatal {
		return c.finish(ctx, header, OutcomeFatal, transfer.Stats{}, h.direction, start)
	}
	logger.DebugCtx(ctx, "Request is VALID, replying")

	c.session.SetState(session.Transferring)
	stats, err := h.run(ctx, c, cmd)

	switch h.direction {
	case directionIn:
		c.session.AddBytesIn(stats.Bytes)
	default:
		c.session.AddBytesOut(stats.Bytes)
	}

	var outcome Outcome
	switch {
	case err == nil && stats.Empty:
		outcome = OutcomeEmpty
	case err == nil:
		outcome = OutcomeCompleted
	case transfer.IsLocal(err):
		logger.WarnCtx(ctx, "Transfer aborted, session continues", logger.KeyError, err)
		telemetry.RecordError(ctx, err)
		outcome = OutcomeAborted
	default:
		logger.InfoCtx(ctx, "Transfer failed, terminating session", logger.KeyError, err)
		telemetry.RecordError(ctx, err)
		outcome = OutcomeFatal
	}
	return c.finish(ctx, header, outcome, stats, h.direction, start)
}

// reject answers a line that failed to parse with INVALID.
func (c *Connection) reject(ctx context.Context, line string, perr error) Outcome {
	start := time.Now()

	ctx, span := telemetry.StartCommandSpan(ctx, headerMalformed, telemetry.Command(line))
	defer span.End()

	logger.InfoCtx(ctx, "Received malformed request, replying INVALID",
		logger.KeyCommand, line, logger.KeyError, perr)

	outcome := c.respond(ctx, headerMalformed, wire.Invalid, line)
	return c.finish(ctx, headerMalformed, outcome, transfer.Stats{}, "", start)
}

// respond sends the verdict. It returns OutcomeFatal if the verdict could
// not be written, OutcomeRejected for INVALID and OutcomeCompleted for VALID.
func (c *Connection) respond(ctx context.Context, header string, v wire.Verdict, line string) Outcome {
	c.session.RecordCommand(line, bool(v))
	if c.server.metrics != nil {
		c.server.metrics.RecordVerdict(header, bool(v))
	}
	telemetry.SetAttributes(ctx, telemetry.Verdict(bool(v)))

	if err := wire.Respond(c.stream, v); err != nil {
		logger.InfoCtx(ctx, "Failed to send verdict", logger.KeyError, err)
		telemetry.RecordError(ctx, err)
		return OutcomeFatal
	}
	telemetry.AddEvent(ctx, telemetry.EventHandshake, telemetry.Verdict(bool(v)))
	if v == wire.Invalid {
		return OutcomeRejected
	}
	return OutcomeCompleted
}

// finish records the command's span attributes, metrics and log line.
func (c *Connection) finish(ctx context.Context, header string, outcome Outcome, stats transfer.Stats, direction string, start time.Time) Outcome {
	elapsed := time.Since(start)

	telemetry.SetAttributes(ctx,
		telemetry.Outcome(outcome.String()),
		telemetry.Bytes(stats.Bytes),
		telemetry.Empty(stats.Empty))
	if outcome != OutcomeFatal && outcome != OutcomeAborted {
		telemetry.SetStatus(ctx, codes.Ok, "")
	}

	if m := c.server.metrics; m != nil {
		m.RecordCommand(header, outcome.String(), elapsed)
		if direction != "" && (outcome == OutcomeCompleted || outcome == OutcomeEmpty) {
			m.RecordBytesTransferred(header, direction, stats.Bytes)
		}
	}

	logger.DebugCtx(ctx, "Command finished",
		logger.KeyOutcome, outcome.String(),
		logger.KeyBytes, stats.Bytes,
		logger.KeyDurationMs, float64(elapsed.Microseconds())/1000.0)
	return outcome
}
