// Package commands implements the sfmp client CLI: an interactive shell and
// one-shot get, put and ls commands.
package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/sfmp/internal/cli/output"
	"github.com/marmos91/sfmp/internal/logger"
	"github.com/marmos91/sfmp/pkg/client"
	"github.com/marmos91/sfmp/pkg/config"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile      string
	hostFlag     string
	portFlag     int
	localDirFlag string
	outputFlag   string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sfmp [HOST PORT]",
	Short: "sfmp - Simple File Moving Protocol client",
	Long: `sfmp talks to an sfmpd server. Invoked with HOST and PORT it opens the
interactive shell, the same as "sfmp shell HOST PORT".

Use "sfmp [command] --help" for more information about a command.`,
	Args:          cobra.RangeArgs(0, 2),
	RunE:          runRoot,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/sfmp/config.yaml)")
	flags.StringVar(&hostFlag, "host", "", "Server host (overrides client.host)")
	flags.IntVar(&portFlag, "port", 0, "Server port (overrides client.port)")
	flags.StringVar(&localDirFlag, "local-dir", "", "Directory local paths resolve against (overrides client.local_dir)")
	flags.StringVarP(&outputFlag, "output", "o", "table", "Output format (table|json|yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log protocol activity to stderr")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(lsCmd)
}

func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	return runShell(cmd, args)
}

// loadClientConfig returns the client section of the configuration with
// flags and positional HOST PORT applied, and initializes logging.
func loadClientConfig(cmd *cobra.Command, args []string) (client.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return client.Config{}, err
	}

	logCfg := cfg.Logging.LoggerConfig()
	logCfg.Output = "stderr"
	if !verbose {
		logCfg.Level = "WARN"
	}
	if err := logger.Init(logCfg); err != nil {
		return client.Config{}, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cc := cfg.Client
	flags := cmd.Flags()
	if flags.Changed("host") {
		cc.Host = hostFlag
	}
	if flags.Changed("port") {
		cc.Port = portFlag
	}
	if flags.Changed("local-dir") {
		cc.LocalDir = localDirFlag
	}
	if len(args) >= 1 {
		cc.Host = args[0]
	}
	if len(args) == 2 {
		port, err := strconv.Atoi(args[1])
		if err != nil || port < 1 || port > 65535 {
			return client.Config{}, fmt.Errorf("invalid port %q", args[1])
		}
		cc.Port = port
	}
	return cc, nil
}

// newPrinter returns a printer for the --output flag.
func newPrinter(cmd *cobra.Command) (*output.Printer, error) {
	format, err := output.ParseFormat(outputFlag)
	if err != nil {
		return nil, err
	}
	out := cmd.OutOrStdout()
	color := false
	if f, ok := out.(*os.File); ok {
		color = output.IsTerminal(f)
	}
	return output.NewPrinter(out, format, color), nil
}
