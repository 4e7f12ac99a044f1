// Package logger is the structured logger shared by sfmpd and sfmp.
//
// It wraps log/slog behind package-level helpers. Lines are written as
// colored text on a terminal or as JSON, to stdout, stderr or a file. The
// *Ctx variants prepend the session fields carried by a LogContext.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Level is a minimum log level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

func (l Level) toSlog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel converts a level name, in any case, into a Level. WARNING is
// accepted for WARN.
func ParseLevel(s string) (Level, bool) {
	s = strings.ToUpper(s)
	if s == "WARNING" {
		return LevelWarn, true
	}
	for l, name := range levelNames {
		if name == s {
			return Level(l), true
		}
	}
	return LevelInfo, false
}

// Config holds logger configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or file path
}

// sink is where lines go and how they are rendered. The level lives in a
// slog.LevelVar, so changing it never rebuilds the handler.
type sink struct {
	mu     sync.RWMutex
	w      io.Writer
	file   *os.File
	color  bool
	json   bool
	logger *slog.Logger
}

var (
	minLevel = new(slog.LevelVar)
	std      = &sink{w: os.Stdout}
)

func init() {
	std.color = isTerminal(os.Stdout.Fd())
	std.rebuild()
}

// rebuild recreates the handler; the caller holds s.mu or owns s.
func (s *sink) rebuild() {
	opts := &slog.HandlerOptions{Level: minLevel}
	if s.json {
		s.logger = slog.New(slog.NewJSONHandler(s.w, opts))
		return
	}
	s.logger = slog.New(NewColorTextHandler(s.w, opts, s.color))
}

// redirect switches the destination and returns the previous writer and
// color setting. A previously opened log file other than file is closed.
func (s *sink) redirect(w io.Writer, file *os.File, color bool) (io.Writer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevW, prevColor := s.w, s.color
	if s.file != nil && s.file != file {
		_ = s.file.Close()
	}
	s.w, s.file, s.color = w, file, color
	s.rebuild()
	return prevW, prevColor
}

func (s *sink) setJSON(json bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.json != json {
		s.json = json
		s.rebuild()
	}
}

func (s *sink) get() *slog.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logger
}

// Init configures the logger. Empty fields keep their current value.
func Init(cfg Config) error {
	switch out := strings.ToLower(cfg.Output); out {
	case "":
	case "stdout":
		std.redirect(os.Stdout, nil, isTerminal(os.Stdout.Fd()))
	case "stderr":
		std.redirect(os.Stderr, nil, isTerminal(os.Stderr.Fd()))
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
		}
		std.redirect(f, f, false)
	}

	if cfg.Level != "" {
		SetLevel(cfg.Level)
	}
	if cfg.Format != "" {
		SetFormat(cfg.Format)
	}
	return nil
}

// InitWithWriter sends log lines to w. Tests use it to capture output.
func InitWithWriter(w io.Writer, level, format string, enableColor bool) {
	std.redirect(w, nil, enableColor)
	if level != "" {
		SetLevel(level)
	}
	if format != "" {
		SetFormat(format)
	}
}

// SetLevel sets the minimum log level. Unknown names are ignored.
func SetLevel(name string) {
	if l, ok := ParseLevel(name); ok {
		minLevel.Set(l.toSlog())
	}
}

// GetLevel returns the current minimum log level.
func GetLevel() Level {
	switch l := minLevel.Level(); {
	case l >= slog.LevelError:
		return LevelError
	case l >= slog.LevelWarn:
		return LevelWarn
	case l >= slog.LevelInfo:
		return LevelInfo
	default:
		return LevelDebug
	}
}

// SetFormat selects "text" or "json". Other values are ignored.
func SetFormat(format string) {
	switch strings.ToLower(format) {
	case "text":
		std.setJSON(false)
	case "json":
		std.setJSON(true)
	}
}

func log(ctx context.Context, l slog.Level, msg string, args []any) {
	if l < minLevel.Level() {
		return
	}
	std.get().Log(ctx, l, msg, appendContextFields(ctx, args)...)
}

// Debug logs at debug level with key/value pairs:
//
//	logger.Debug("Connection accepted", logger.KeyClientAddr, addr)
func Debug(msg string, args ...any) { log(context.Background(), slog.LevelDebug, msg, args) }

// Info logs at info level.
func Info(msg string, args ...any) { log(context.Background(), slog.LevelInfo, msg, args) }

// Warn logs at warn level.
func Warn(msg string, args ...any) { log(context.Background(), slog.LevelWarn, msg, args) }

// Error logs at error level.
func Error(msg string, args ...any) { log(context.Background(), slog.LevelError, msg, args) }

// DebugCtx logs at debug level, prepending the fields of the LogContext
// carried by ctx (trace, session, client, header).
func DebugCtx(ctx context.Context, msg string, args ...any) {
	log(ctx, slog.LevelDebug, msg, args)
}

// InfoCtx logs at info level with context fields.
func InfoCtx(ctx context.Context, msg string, args ...any) {
	log(ctx, slog.LevelInfo, msg, args)
}

// WarnCtx logs at warn level with context fields.
func WarnCtx(ctx context.Context, msg string, args ...any) {
	log(ctx, slog.LevelWarn, msg, args)
}

// ErrorCtx logs at error level with context fields.
func ErrorCtx(ctx context.Context, msg string, args ...any) {
	log(ctx, slog.LevelError, msg, args)
}

func appendContextFields(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}

	fields := make([]any, 0, 10+len(args))
	for _, kv := range [...][2]string{
		{KeyTraceID, lc.TraceID},
		{KeySpanID, lc.SpanID},
		{KeySessionID, lc.SessionID},
		{KeyClientAddr, lc.ClientAddr},
		{KeyHeader, lc.Header},
	} {
		if kv[1] != "" {
			fields = append(fields, kv[0], kv[1])
		}
	}
	return append(fields, args...)
}

// With returns a slog.Logger that adds args to every line.
func With(args ...any) *slog.Logger {
	return std.get().With(args...)
}

// Duration returns the time elapsed since start in milliseconds.
func Duration(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
