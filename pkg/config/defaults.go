package config

import (
	"strings"
	"time"

	wire "github.com/marmos91/sfmp/internal/protocol/sfmp"
	"github.com/marmos91/sfmp/pkg/adapter/sfmp"
	"github.com/marmos91/sfmp/pkg/api"
	"github.com/marmos91/sfmp/pkg/client"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyServerDefaults(&cfg.Server)
	applyClientDefaults(&cfg.Client)
	applyAPIDefaults(&cfg.API)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	applyProfilingDefaults(&cfg.Profiling)
}

// applyProfilingDefaults sets Pyroscope profiling defaults.
func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

// applyServerDefaults sets SFMP listener defaults. Root is left empty so
// the adapter resolves it against the working directory at start-up.
func applyServerDefaults(cfg *sfmp.Config) {
	if cfg.Port == 0 {
		cfg.Port = sfmp.DefaultPort
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = wire.DefaultChunkSize
	}
	if cfg.Timeouts.Idle == 0 {
		cfg.Timeouts.Idle = 5 * time.Minute
	}
	if cfg.Timeouts.Read == 0 {
		cfg.Timeouts.Read = time.Minute
	}
	if cfg.Timeouts.Write == 0 {
		cfg.Timeouts.Write = time.Minute
	}
	if cfg.Timeouts.Shutdown == 0 {
		cfg.Timeouts.Shutdown = 30 * time.Second
	}
}

// applyClientDefaults fills the client section from client.DefaultConfig.
func applyClientDefaults(cfg *client.Config) {
	def := client.DefaultConfig()
	if cfg.Host == "" {
		cfg.Host = def.Host
	}
	if cfg.Port == 0 {
		cfg.Port = def.Port
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.Timeouts.Connect == 0 {
		cfg.Timeouts.Connect = def.Timeouts.Connect
	}
	if cfg.Timeouts.Read == 0 {
		cfg.Timeouts.Read = def.Timeouts.Read
	}
	if cfg.Timeouts.Write == 0 {
		cfg.Timeouts.Write = def.Timeouts.Write
	}
}

// applyAPIDefaults sets status API server defaults.
func applyAPIDefaults(cfg *api.APIConfig) {
	cfg.ApplyDefaults()
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
