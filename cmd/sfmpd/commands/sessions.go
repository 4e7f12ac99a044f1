package commands

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/sfmp/internal/bytesize"
	"github.com/marmos91/sfmp/internal/cli/health"
	"github.com/marmos91/sfmp/internal/cli/output"
	"github.com/marmos91/sfmp/internal/cli/timeutil"
	"github.com/marmos91/sfmp/pkg/session"
)

var (
	sessionsOutput  string
	sessionsAPIPort int
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List connected clients",
	Long: `List the clients currently connected to a running sfmpd, sorted by
remote address.

Examples:
  sfmpd sessions
  sfmpd sessions --api-port 9080 -o yaml`,
	RunE: runSessions,
}

func init() {
	sessionsCmd.Flags().IntVar(&sessionsAPIPort, "api-port", 8080, "Status API port")
	sessionsCmd.Flags().StringVarP(&sessionsOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// SessionList renders session snapshots as a table.
type SessionList struct {
	Sessions []session.Info
	Now      time.Time
}

// Headers implements output.TableRenderer.
func (l SessionList) Headers() []string {
	return []string{"Address", "State", "Age", "Commands", "Rejected", "In", "Out", "Last Command"}
}

// Rows implements output.TableRenderer.
func (l SessionList) Rows() [][]string {
	rows := make([][]string, 0, len(l.Sessions))
	for _, s := range l.Sessions {
		rows = append(rows, []string{
			s.Address,
			s.State,
			timeutil.FormatAge(s.StartedAt, l.Now),
			strconv.FormatUint(s.Commands, 10),
			strconv.FormatUint(s.Rejected, 10),
			bytesize.ByteSize(s.BytesIn).String(),
			bytesize.ByteSize(s.BytesOut).String(),
			s.LastCommand,
		})
	}
	return rows
}

func runSessions(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(sessionsOutput)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	infos, err := health.NewClient(apiBaseURL(sessionsAPIPort), 2*time.Second).Sessions(ctx)
	if err != nil {
		return err
	}

	p := output.NewPrinter(cmd.OutOrStdout(), format, false)
	if format != output.FormatTable {
		return p.Print(infos)
	}
	if len(infos) == 0 {
		p.Println("No clients connected.")
		return nil
	}
	return p.Print(SessionList{Sessions: infos, Now: time.Now()})
}
