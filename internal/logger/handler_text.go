package logger

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// timeLayout keeps microsecond precision so the order of lines from
// concurrent sessions stays visible.
const timeLayout = "2006-01-02 15:04:05.000000"

const (
	colorReset = "\033[0m"
	colorKey   = "\033[36m"
)

// levelStyles maps the four levels to their label and ANSI colour.
var levelStyles = [...]struct {
	min   slog.Level
	label string
	color string
}{
	{slog.LevelError, "ERROR", "\033[31m"},
	{slog.LevelWarn, "WARN", "\033[33m"},
	{slog.LevelInfo, "INFO", "\033[32m"},
	{slog.Level(-1 << 31), "DEBUG", "\033[90m"},
}

// textSink is shared by a handler and every handler derived from it, so
// lines written through With/WithGroup children never interleave.
type textSink struct {
	mu    sync.Mutex
	w     io.Writer
	level slog.Leveler
	color bool
}

// ColorTextHandler writes one line per record:
//
//	[2006-01-02 15:04:05.000000] [INFO] Transfer complete header=PUT bytes=5
//
// Group attributes are flattened into dotted keys.
type ColorTextHandler struct {
	sink   *textSink
	attrs  []byte
	prefix string
}

// NewColorTextHandler creates a text handler writing to w.
func NewColorTextHandler(w io.Writer, opts *slog.HandlerOptions, useColor bool) *ColorTextHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &ColorTextHandler{sink: &textSink{w: w, level: level, color: useColor}}
}

// Enabled reports whether the handler handles records at the given level.
func (h *ColorTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.sink.level.Level()
}

// Handle formats and writes a log record.
func (h *ColorTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)
	buf = append(buf, '[')
	buf = r.Time.AppendFormat(buf, timeLayout)
	buf = append(buf, "] ["...)
	buf = h.appendLevel(buf, r.Level)
	buf = append(buf, "] "...)
	buf = append(buf, r.Message...)
	buf = append(buf, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		buf = h.appendAttr(buf, h.prefix, a)
		return true
	})
	buf = append(buf, '\n')

	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	_, err := h.sink.w.Write(buf)
	return err
}

func (h *ColorTextHandler) appendLevel(buf []byte, level slog.Level) []byte {
	for _, s := range levelStyles {
		if level < s.min {
			continue
		}
		if !h.sink.color {
			return append(buf, s.label...)
		}
		buf = append(buf, s.color...)
		buf = append(buf, s.label...)
		return append(buf, colorReset...)
	}
	return buf
}

// appendAttr appends " key=value", recursing into groups.
func (h *ColorTextHandler) appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	if a.Equal(slog.Attr{}) {
		return buf
	}
	a.Value = a.Value.Resolve()

	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			buf = h.appendAttr(buf, key, ga)
		}
		return buf
	}

	buf = append(buf, ' ')
	if h.sink.color {
		buf = append(buf, colorKey...)
		buf = append(buf, key...)
		buf = append(buf, colorReset...)
	} else {
		buf = append(buf, key...)
	}
	buf = append(buf, '=')
	return appendValue(buf, a.Value)
}

// appendValue renders v, quoting strings that contain blanks or quotes.
func appendValue(buf []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindInt64:
		return strconv.AppendInt(buf, v.Int64(), 10)
	case slog.KindUint64:
		return strconv.AppendUint(buf, v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.AppendFloat(buf, v.Float64(), 'f', 3, 64)
	case slog.KindBool:
		return strconv.AppendBool(buf, v.Bool())
	case slog.KindDuration:
		return append(buf, v.Duration().String()...)
	case slog.KindTime:
		return v.Time().AppendFormat(buf, time.RFC3339)
	}

	s := v.String()
	if strings.ContainsAny(s, " \t\"") {
		return strconv.AppendQuote(buf, s)
	}
	return append(buf, s...)
}

// WithAttrs returns a handler that renders attrs on every line.
func (h *ColorTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	child := *h
	child.attrs = append([]byte(nil), h.attrs...)
	for _, a := range attrs {
		child.attrs = h.appendAttr(child.attrs, h.prefix, a)
	}
	return &child
}

// WithGroup returns a handler that prefixes later keys with name.
func (h *ColorTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	child := *h
	if h.prefix == "" {
		child.prefix = name
	} else {
		child.prefix = h.prefix + "." + name
	}
	return &child
}
