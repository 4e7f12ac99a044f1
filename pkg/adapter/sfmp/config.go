package sfmp

import (
	"fmt"
	"os"
	"time"

	"github.com/marmos91/sfmp/internal/bytesize"
	wire "github.com/marmos91/sfmp/internal/protocol/sfmp"
)

// DefaultPort is the well-known SFMP port (0xDEAD).
const DefaultPort = 0xDEAD

// TimeoutsConfig groups all timeout-related configuration.
type TimeoutsConfig struct {
	// Idle is the maximum time a session may wait for the next command line.
	// An expired idle timeout terminates the session.
	// 0 means no timeout.
	Idle time.Duration `mapstructure:"idle" validate:"min=0" yaml:"idle"`

	// Read bounds each payload read during PUT.
	// 0 means no timeout.
	Read time.Duration `mapstructure:"read" validate:"min=0" yaml:"read"`

	// Write bounds each verdict or payload write.
	// 0 means no timeout.
	Write time.Duration `mapstructure:"write" validate:"min=0" yaml:"write"`

	// Shutdown is the maximum duration to wait for active sessions during
	// graceful shutdown. Remaining connections are then force-closed.
	Shutdown time.Duration `mapstructure:"shutdown" validate:"required,gt=0" yaml:"shutdown"`
}

// Config holds configuration parameters for the SFMP server.
//
// Default values (applied by New if zero):
//   - ChunkSize: 4KiB
//   - Root: the process working directory
//   - Timeouts.Idle: 5m
//   - Timeouts.Read: 1m
//   - Timeouts.Write: 1m
//   - Timeouts.Shutdown: 30s
//
// Port 0 binds an ephemeral port; pkg/config defaults it to DefaultPort.
type Config struct {
	// BindAddress is the IP address to bind to. Empty binds all interfaces.
	BindAddress string `mapstructure:"bind_address" validate:"omitempty,ip" yaml:"bind_address"`

	// Port is the TCP port to listen on.
	Port int `mapstructure:"port" validate:"min=0,max=65535" yaml:"port"`

	// Root is the directory relative command paths resolve against and
	// the directory listed by LS server.
	Root string `mapstructure:"root" yaml:"root"`

	// MaxConnections limits the number of concurrent sessions.
	// 0 means unlimited.
	MaxConnections int `mapstructure:"max_connections" validate:"min=0" yaml:"max_connections"`

	// ChunkSize is the read size used when sending a file, and therefore
	// the size of each payload frame. Must not exceed 1MiB.
	ChunkSize bytesize.ByteSize `mapstructure:"chunk_size" validate:"lte=1048576" yaml:"chunk_size"`

	// MaxFileSize bounds the size of files accepted by PUT.
	// 0 means unlimited.
	MaxFileSize bytesize.ByteSize `mapstructure:"max_file_size" yaml:"max_file_size"`

	// Timeouts groups all timeout-related configuration
	Timeouts TimeoutsConfig `mapstructure:"timeouts" yaml:"timeouts"`

	// MetricsLogInterval is the interval at which to log the active
	// session count. 0 disables periodic logging.
	MetricsLogInterval time.Duration `mapstructure:"metrics_log_interval" validate:"min=0" yaml:"metrics_log_interval"`
}

// applyDefaults fills in zero values with sensible defaults.
func (c *Config) applyDefaults() {
	if c.ChunkSize == 0 {
		c.ChunkSize = wire.DefaultChunkSize
	}
	if c.Root == "" {
		if wd, err := os.Getwd(); err == nil {
			c.Root = wd
		}
	}
	if c.Timeouts.Idle == 0 {
		c.Timeouts.Idle = 5 * time.Minute
	}
	if c.Timeouts.Read == 0 {
		c.Timeouts.Read = time.Minute
	}
	if c.Timeouts.Write == 0 {
		c.Timeouts.Write = time.Minute
	}
	if c.Timeouts.Shutdown == 0 {
		c.Timeouts.Shutdown = 30 * time.Second
	}
}

// validate checks the configuration after defaults have been applied.
func (c *Config) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be 0-65535", c.Port)
	}
	if c.MaxConnections < 0 {
		return fmt.Errorf("invalid max_connections %d: must be >= 0", c.MaxConnections)
	}
	if c.ChunkSize > wire.MaxFrameSize {
		return fmt.Errorf("invalid chunk_size %s: must be <= %s", c.ChunkSize, bytesize.ByteSize(wire.MaxFrameSize))
	}
	if c.Timeouts.Idle < 0 || c.Timeouts.Read < 0 || c.Timeouts.Write < 0 {
		return fmt.Errorf("invalid timeouts: must be >= 0")
	}
	if c.Timeouts.Shutdown <= 0 {
		return fmt.Errorf("invalid timeouts.shutdown %v: must be > 0", c.Timeouts.Shutdown)
	}
	info, err := os.Stat(c.Root)
	if err != nil {
		return fmt.Errorf("invalid root %q: %w", c.Root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("invalid root %q: not a directory", c.Root)
	}
	return nil
}
