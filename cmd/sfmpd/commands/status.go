package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/sfmp/internal/cli/health"
	"github.com/marmos91/sfmp/internal/cli/output"
	"github.com/marmos91/sfmp/internal/cli/timeutil"
)

var (
	statusOutput  string
	statusAPIPort int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Display the status of a running sfmpd.

The status is read from the server's status API, so api.enabled must be
true on the server.

Examples:
  # Check status (uses default settings)
  sfmpd status

  # Check status with custom API port
  sfmpd status --api-port 9080

  # Output as JSON
  sfmpd status --output json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusAPIPort, "api-port", 8080, "Status API port")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// ServerStatus represents the server status information.
type ServerStatus struct {
	Running     bool   `json:"running" yaml:"running"`
	Ready       bool   `json:"ready" yaml:"ready"`
	Message     string `json:"message" yaml:"message"`
	Address     string `json:"address,omitempty" yaml:"address,omitempty"`
	Connections int32  `json:"connections" yaml:"connections"`
	StartedAt   string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime      string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	status := fetchStatus(ctx, health.NewClient(apiBaseURL(statusAPIPort), 2*time.Second))

	out := cmd.OutOrStdout()
	if format != output.FormatTable {
		return output.Encode(out, format, status)
	}
	return printStatusTable(out, status)
}

func fetchStatus(ctx context.Context, c *health.Client) ServerStatus {
	status := ServerStatus{Message: "Server is not running"}

	live, err := c.Liveness(ctx)
	if err != nil {
		return status
	}
	status.Running = true
	status.StartedAt = live.Data.StartedAt
	status.Uptime = live.Data.Uptime

	ready, err := c.Readiness(ctx)
	switch {
	case err != nil:
		status.Message = "Server is running but readiness check failed"
	case !ready.Healthy():
		status.Message = fmt.Sprintf("Server is running but not ready: %s", ready.Error)
	default:
		status.Ready = true
		status.Address = ready.Data.Address
		status.Connections = ready.Data.Connections
		status.Message = "Server is running and accepting connections"
	}
	return status
}

func printStatusTable(w io.Writer, status ServerStatus) error {
	p := output.NewPrinter(w, output.FormatTable, false)
	p.Println()
	p.Println("SFMP Server Status")
	p.Println("==================")
	p.Println()

	state := "Stopped"
	switch {
	case status.Ready:
		state = "Running"
	case status.Running:
		state = "Running (not ready)"
	}

	pairs := [][2]string{{"Status", state}}
	if status.Address != "" {
		pairs = append(pairs,
			[2]string{"Address", status.Address},
			[2]string{"Connections", strconv.Itoa(int(status.Connections))},
		)
	}
	if status.StartedAt != "" {
		pairs = append(pairs, [2]string{"Started", timeutil.FormatTime(status.StartedAt)})
	}
	if status.Uptime != "" {
		pairs = append(pairs, [2]string{"Uptime", timeutil.FormatUptime(status.Uptime)})
	}
	if err := output.SimpleTable(w, pairs); err != nil {
		return err
	}

	p.Println()
	p.Println(status.Message)
	return nil
}
