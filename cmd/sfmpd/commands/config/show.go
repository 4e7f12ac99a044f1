package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/sfmp/internal/cli/output"
	"github.com/marmos91/sfmp/pkg/config"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective sfmpd configuration: file values merged with
defaults and SFMP_* environment overrides.

Examples:
  # Show as YAML
  sfmpd config show

  # Show as JSON
  sfmpd config show --output json`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(configPath(cmd))
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}
	if format == output.FormatTable {
		format = output.FormatYAML
	}
	return output.Encode(cmd.OutOrStdout(), format, cfg)
}
