package commands

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/marmos91/sfmp/internal/cli/output"
	"github.com/marmos91/sfmp/internal/cli/prompt"
	"github.com/marmos91/sfmp/pkg/client"
)

const (
	shellPrompt       = "Enter an SFMP command"
	invalidCommandMsg = "Please select a valid command."
	connectionMsg     = "There was a problem communicating with the server."
)

var shellCmd = &cobra.Command{
	Use:   "shell [HOST PORT]",
	Short: "Open an interactive SFMP session",
	Long: `Connect to an sfmpd server and read commands until "quit" or end of input.

Commands:
  GET remote-path local-path   fetch a file from the server
  PUT local-path remote-path   store a file on the server
  LS client|server             list the client's or the server's directory
  quit                         close the connection

Input that is not a terminal is read line by line, so the shell can be
scripted:

  printf 'PUT a.txt b.txt\nLS server\nquit\n' | sfmp localhost 57005`,
	Args: cobra.RangeArgs(0, 2),
	RunE: runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	cfg, err := loadClientConfig(cmd, args)
	if err != nil {
		return err
	}
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	if len(args) == 0 && !cmd.Flags().Changed("host") && output.IsTerminal(os.Stdin) {
		if cfg.Host, err = prompt.Input("Server host", cfg.Host); err != nil {
			return nil
		}
		if cfg.Port, err = prompt.InputPort("Server port", cfg.Port); err != nil {
			return nil
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	c, err := client.Dial(ctx, cfg)
	if err != nil {
		p.Error(connectionMsg)
		return err
	}
	defer func() { _ = c.Close() }()

	sh := &Shell{
		Client: c,
		In:     prompt.NewLineReader(cmd.InOrStdin(), cmd.OutOrStdout(), shellPrompt),
		Out:    p,
	}
	return sh.Run(ctx)
}

// Shell runs the read-execute-report loop of the interactive client.
type Shell struct {
	Client *client.Client
	In     prompt.LineReader
	Out    *output.Printer
}

// Run executes lines until quit, end of input, an aborted prompt or a
// connection error. Only input errors are returned; a lost connection is
// reported to the user and ends the loop.
func (s *Shell) Run(ctx context.Context) error {
	for {
		line, err := s.In.ReadLine()
		if errors.Is(err, io.EOF) || prompt.IsAborted(err) {
			return nil
		}
		if err != nil {
			return err
		}

		res, err := s.Client.Execute(ctx, line)
		if errors.Is(err, client.ErrQuit) {
			return nil
		}
		report(s.Out, res, err)
		if errors.Is(err, client.ErrConnection) {
			return nil
		}
	}
}

// record is the structured form of one command outcome.
type record struct {
	client.Result `yaml:",inline"`
	Error         string `json:"error,omitempty" yaml:"error,omitempty"`
}

// report prints the outcome of one command.
func report(p *output.Printer, res client.Result, err error) {
	if p.Structured() {
		rec := record{Result: res}
		if err != nil {
			rec.Error = err.Error()
		}
		if perr := p.Print(rec); perr != nil {
			p.Error(perr.Error())
		}
		return
	}

	for _, msg := range res.Messages {
		p.Println(msg)
	}

	var usageErr *client.UsageError
	switch {
	case err == nil && res.IsListing():
		if perr := p.Print(res); perr != nil {
			p.Error(perr.Error())
		}
	case err == nil:
		p.Success(res.Status)
	case errors.Is(err, client.ErrConnection):
		p.Error(connectionMsg)
	case errors.As(err, &usageErr):
		printInvalid(p, usageErr.Usage())
	case errors.Is(err, client.ErrInfeasible):
		p.Warning(err.Error())
		printInvalid(p, client.Usage(res.Header))
	case errors.Is(err, client.ErrRejected):
		printInvalid(p, client.Usage(res.Header))
	default:
		p.Error(err.Error())
	}
}

// printInvalid prints the invalid-command notice and the usage line, each
// followed by a blank line.
func printInvalid(p *output.Printer, usage string) {
	p.Println(invalidCommandMsg)
	p.Println()
	p.Println(usage)
	p.Println()
}
