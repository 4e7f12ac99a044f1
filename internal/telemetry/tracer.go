package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for SFMP spans. Client attributes follow OpenTelemetry
// semantic conventions; protocol attributes use the "sfmp." prefix.
const (
	AttrClientAddr = "client.address"

	AttrSessionID = "sfmp.session_id"
	AttrHeader    = "sfmp.header"
	AttrCommand   = "sfmp.command"
	AttrVerdict   = "sfmp.verdict"
	AttrOutcome   = "sfmp.outcome"
	AttrPath      = "sfmp.path"
	AttrBytes     = "sfmp.bytes"
	AttrEmpty     = "sfmp.empty"
	AttrEntries   = "sfmp.entries"
)

// Span and event names.
const (
	SpanSession = "sfmp.session"

	// EventHandshake is added to a command span once the verdict is sent.
	EventHandshake = "sfmp.handshake"
)

// ClientAddr returns an attribute for the full client address
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// SessionID returns an attribute for the session identifier
func SessionID(id string) attribute.KeyValue {
	return attribute.String(AttrSessionID, id)
}

// Header returns an attribute for the command header
func Header(h string) attribute.KeyValue {
	return attribute.String(AttrHeader, h)
}

// Command returns an attribute for the raw command line
func Command(line string) attribute.KeyValue {
	return attribute.String(AttrCommand, line)
}

// Verdict returns an attribute for the handshake verdict
func Verdict(valid bool) attribute.KeyValue {
	if valid {
		return attribute.String(AttrVerdict, "VALID")
	}
	return attribute.String(AttrVerdict, "INVALID")
}

// Outcome returns an attribute for the command outcome
func Outcome(o string) attribute.KeyValue {
	return attribute.String(AttrOutcome, o)
}

// Path returns an attribute for a file path
func Path(p string) attribute.KeyValue {
	return attribute.String(AttrPath, p)
}

// Bytes returns an attribute for a payload byte count
func Bytes(n int64) attribute.KeyValue {
	return attribute.Int64(AttrBytes, n)
}

// Empty returns an attribute marking an empty payload
func Empty(empty bool) attribute.KeyValue {
	return attribute.Bool(AttrEmpty, empty)
}

// Entries returns an attribute for a listing size
func Entries(n int) attribute.KeyValue {
	return attribute.Int(AttrEntries, n)
}

// StartCommandSpan starts a span for one SFMP command. header is the
// upper-case command header, or "malformed" when the line did not parse.
func StartCommandSpan(ctx context.Context, header string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		Header(header),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "sfmp."+header, trace.WithAttributes(allAttrs...), trace.WithSpanKind(trace.SpanKindServer))
}

// StartClientSpan starts a client-side span for one command.
func StartClientSpan(ctx context.Context, header string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		Header(header),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "sfmp.client."+header, trace.WithAttributes(allAttrs...), trace.WithSpanKind(trace.SpanKindClient))
}
