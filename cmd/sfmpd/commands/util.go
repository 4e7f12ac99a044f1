package commands

import (
	"fmt"

	"github.com/marmos91/sfmp/internal/logger"
	"github.com/marmos91/sfmp/pkg/config"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	if err := logger.Init(cfg.Logging.LoggerConfig()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}

// apiBaseURL returns the status API URL for a server on this host.
func apiBaseURL(port int) string {
	return fmt.Sprintf("http://localhost:%d", port)
}
