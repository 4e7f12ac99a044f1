package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/sfmp/internal/cli/output"
	"github.com/marmos91/sfmp/internal/cli/prompt"
	"github.com/marmos91/sfmp/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a configuration file",
	Long: `Write an sfmpd configuration file populated with the defaults.

By default, the configuration file is created at $XDG_CONFIG_HOME/sfmp/config.yaml.
Use --config to specify a custom path. When the file already exists you are
asked before it is replaced, unless --force is given.

Examples:
  # Initialize with default location
  sfmpd config init

  # Initialize with custom path
  sfmpd config init --config /etc/sfmp/config.yaml

  # Force overwrite existing config
  sfmpd config init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath(cmd)
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	force := initForce
	if _, err := os.Stat(path); err == nil && !force && output.IsTerminal(os.Stdin) {
		ok, err := prompt.ConfirmWithForce(fmt.Sprintf("Overwrite %s?", path), false)
		if err != nil {
			if prompt.IsAborted(err) {
				return nil
			}
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
		force = true
	}

	written, err := config.InitConfig(path, force)
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file created at: %s\n", written)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Set server.root to the directory you want to serve")
	_, _ = fmt.Fprintln(out, "  2. Start the server with: sfmpd start")
	_, _ = fmt.Fprintf(out, "  3. Or specify custom config: sfmpd start --config %s\n", written)
	return nil
}
