package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/sfmp/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the sfmpd configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  sfmpd config validate

  # Validate specific config file
  sfmpd config validate --config /etc/sfmp/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configPath(cmd)

	cfg, err := config.MustLoad(path)
	if err != nil {
		return err
	}

	displayPath := path
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	var warnings []string
	if cfg.Server.Root == "" {
		warnings = append(warnings, "server.root not set - the working directory at start-up will be served")
	}
	if cfg.Server.MaxFileSize == 0 {
		warnings = append(warnings, "server.max_file_size not set - uploads are unbounded")
	}
	if cfg.Metrics.Enabled && !cfg.API.IsEnabled() {
		warnings = append(warnings, "metrics enabled but api disabled - /metrics will not be served")
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  SFMP port:       %d\n", cfg.Server.Port)
	_, _ = fmt.Fprintf(out, "  Chunk size:      %s\n", cfg.Server.ChunkSize)
	_, _ = fmt.Fprintf(out, "  API port:        %d\n", cfg.API.Port)
	_, _ = fmt.Fprintf(out, "  Log level:       %s\n", cfg.Logging.Level)
	return nil
}
