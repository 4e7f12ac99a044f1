package client

import (
	"time"

	"github.com/marmos91/sfmp/internal/bytesize"
)

// TimeoutsConfig groups the client's network timeouts. 0 disables a timeout.
type TimeoutsConfig struct {
	// Connect bounds the TCP connect.
	Connect time.Duration `mapstructure:"connect" validate:"min=0" yaml:"connect"`

	// Read bounds the wait for a verdict and each payload read.
	Read time.Duration `mapstructure:"read" validate:"min=0" yaml:"read"`

	// Write bounds each command or payload write.
	Write time.Duration `mapstructure:"write" validate:"min=0" yaml:"write"`
}

// Config holds the client settings.
type Config struct {
	// Host is the server host name or IP address.
	Host string `mapstructure:"host" validate:"required" yaml:"host"`

	// Port is the server TCP port.
	Port int `mapstructure:"port" validate:"min=1,max=65535" yaml:"port"`

	// ChunkSize is the read size used when uploading a file.
	ChunkSize bytesize.ByteSize `mapstructure:"chunk_size" validate:"lte=1048576" yaml:"chunk_size"`

	// LocalDir is the directory relative local paths resolve against and
	// the directory listed by LS client. Empty means the working directory.
	LocalDir string `mapstructure:"local_dir" yaml:"local_dir,omitempty"`

	// Timeouts groups all timeout-related configuration
	Timeouts TimeoutsConfig `mapstructure:"timeouts" yaml:"timeouts"`
}

// DefaultConfig returns the client defaults.
func DefaultConfig() Config {
	return Config{
		Host:      "localhost",
		Port:      0xDEAD,
		ChunkSize: 4 * bytesize.KiB,
		Timeouts: TimeoutsConfig{
			Connect: 10 * time.Second,
			Read:    time.Minute,
			Write:   time.Minute,
		},
	}
}
