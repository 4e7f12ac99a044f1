package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/sfmp/pkg/client"
)

var getCmd = &cobra.Command{
	Use:   "get REMOTE LOCAL",
	Short: "Fetch a file from the server",
	Long: `Fetch REMOTE from the server into LOCAL. Missing local directories are
created once the server accepts the command.

Examples:
  sfmp get --host files.example.com notes/today.txt ./today.txt`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOneShot(cmd, fmt.Sprintf("GET %s %s", args[0], args[1]))
	},
}

var putCmd = &cobra.Command{
	Use:   "put LOCAL REMOTE",
	Short: "Store a file on the server",
	Long: `Upload LOCAL to REMOTE on the server.

Examples:
  sfmp put --port 9000 ./report.csv reports/2024-03.csv`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOneShot(cmd, fmt.Sprintf("PUT %s %s", args[0], args[1]))
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls [client|server]",
	Short: "List the server's or the client's directory",
	Long: `List a directory. The target defaults to server; "ls client" lists the
local directory without contacting the server.

Examples:
  sfmp ls
  sfmp ls client -o json`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{client.TargetClient, client.TargetServer},
	RunE: func(cmd *cobra.Command, args []string) error {
		target := client.TargetServer
		if len(args) == 1 {
			target = args[0]
		}
		return runOneShot(cmd, "LS "+target)
	},
}

// runOneShot connects, executes line and reports it. A failed command is
// returned as an error so the process exits non-zero.
func runOneShot(cmd *cobra.Command, line string) error {
	cfg, err := loadClientConfig(cmd, nil)
	if err != nil {
		return err
	}
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	var res client.Result
	if line == "LS "+client.TargetClient {
		res, err = client.ListLocal(cfg)
	} else {
		var c *client.Client
		c, err = client.Dial(cmd.Context(), cfg)
		if err != nil {
			p.Error(connectionMsg)
			return err
		}
		defer func() { _ = c.Close() }()
		res, err = c.Execute(cmd.Context(), line)
	}
	report(p, res, err)
	if err != nil && !errors.Is(err, client.ErrConnection) {
		return fmt.Errorf("%s failed: %w", res.Header, err)
	}
	return err
}
