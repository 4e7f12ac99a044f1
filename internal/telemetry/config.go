package telemetry

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config holds the tracing settings of one SFMP process (sfmpd or sfmp).
type Config struct {
	Enabled bool

	// ServiceName is reported as service.name; "sfmpd" or "sfmp".
	ServiceName    string
	ServiceVersion string

	// Endpoint is the OTLP gRPC collector address, host:port.
	Endpoint string
	Insecure bool

	// SampleRate is the fraction of command spans kept, 0.0 to 1.0.
	SampleRate float64
}

// DefaultConfig returns tracing disabled with a local collector endpoint.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "sfmp",
		ServiceVersion: "dev",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SampleRate:     1.0,
	}
}

// sampler turns SampleRate into a root sampler. Child spans follow the
// decision of their parent, so a command's transfer span is never dropped
// while the command span is kept.
func (c Config) sampler() sdktrace.Sampler {
	var root sdktrace.Sampler
	switch {
	case c.SampleRate >= 1.0:
		root = sdktrace.AlwaysSample()
	case c.SampleRate <= 0.0:
		root = sdktrace.NeverSample()
	default:
		root = sdktrace.TraceIDRatioBased(c.SampleRate)
	}
	return sdktrace.ParentBased(root)
}

// ProfilingConfig holds the Pyroscope settings.
type ProfilingConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string

	// Endpoint is the Pyroscope server URL, e.g. "http://localhost:4040".
	Endpoint string

	// ProfileTypes lists the profiles to collect; see ProfileTypeNames.
	ProfileTypes []string
}
