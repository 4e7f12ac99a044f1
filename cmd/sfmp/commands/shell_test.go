package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/sfmp/internal/cli/output"
	"github.com/marmos91/sfmp/internal/cli/prompt"
	wire "github.com/marmos91/sfmp/internal/protocol/sfmp"
	sfmpadapter "github.com/marmos91/sfmp/pkg/adapter/sfmp"
	"github.com/marmos91/sfmp/pkg/client"
	"github.com/marmos91/sfmp/pkg/session"
)

func startServer(t *testing.T) (string, int) {
	t.Helper()

	root := t.TempDir()
	a, err := sfmpadapter.New(sfmpadapter.Config{
		BindAddress: "127.0.0.1",
		Root:        root,
		Timeouts:    sfmpadapter.TimeoutsConfig{Shutdown: 2 * time.Second},
	}, session.NewRegistry(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	addr := a.GetListenerAddr()
	require.NotEmpty(t, addr)
	t.Cleanup(func() {
		cancel()
		<-done
	})

	_, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return root, port
}

func runScript(t *testing.T, port int, localDir, script string) string {
	t.Helper()

	cfg := client.DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = port
	cfg.LocalDir = localDir
	cfg.Timeouts.Read = 5 * time.Second
	cfg.Timeouts.Write = 5 * time.Second

	c, err := client.Dial(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	var out bytes.Buffer
	sh := &Shell{
		Client: c,
		In:     prompt.NewLineReader(strings.NewReader(script), &out, shellPrompt),
		Out:    output.NewPrinter(&out, output.FormatTable, false),
	}
	require.NoError(t, sh.Run(context.Background()))
	return out.String()
}

func TestShell_HelloScenario(t *testing.T) {
	root, port := startServer(t)
	local := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(local, "local"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(local, "local", "a.txt"), []byte("hello"), 0644))

	out := runScript(t, port, local, strings.Join([]string{
		"PUT ./local/a.txt ./remote/b.txt",
		"GET ./remote/b.txt ./local/c.txt",
		"LS server",
		"quit",
		"LS client",
	}, "\n")+"\n")

	assert.Contains(t, out, "Server says command 'PUT ./local/a.txt ./remote/b.txt' is VALID, forwarding...")
	assert.Contains(t, out, "Successfully sent 5 bytes")
	assert.Contains(t, out, "Successfully wrote 5 bytes")
	assert.Contains(t, out, "Current files in server's directory:\n--------------------\nremote\n--------------------")
	assert.NotContains(t, out, "client's directory", "lines after quit must not run")

	got, err := os.ReadFile(filepath.Join(local, "local", "c.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	got, err = os.ReadFile(filepath.Join(root, "remote", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestShell_InvalidCommands(t *testing.T) {
	_, port := startServer(t)

	out := runScript(t, port, t.TempDir(), "FETCH a b\nGET onlyone\nPUT missing.txt x\nGET nothere.txt y\nLS client\n")

	assert.Equal(t, 4, strings.Count(out, invalidCommandMsg))
	assert.Contains(t, out, client.Usage(0))
	assert.Contains(t, out, "Usage: GET remote-path local-path")
	assert.Contains(t, out, "does not appear to exist")
	assert.Contains(t, out, "Server says command 'GET nothere.txt y' is INVALID, aborting...")
	assert.Contains(t, out, "Current files in client's directory:")
}

func TestReport_InvalidCommandLayout(t *testing.T) {
	var buf bytes.Buffer
	p := output.NewPrinter(&buf, output.FormatTable, false)

	report(p, client.Result{Header: wire.HeaderGet}, client.ErrRejected)

	assert.Equal(t, invalidCommandMsg+"\n\n"+client.Usage(wire.HeaderGet)+"\n\n", buf.String())
}

func TestShell_ConnectionLoss(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			_ = conn.Close()
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	out := runScript(t, port, t.TempDir(), "LS server\nLS client\n")

	assert.Contains(t, out, connectionMsg)
	assert.NotContains(t, out, "client's directory", "the shell stops after a connection error")
}

func TestReport_Structured(t *testing.T) {
	var buf bytes.Buffer
	p := output.NewPrinter(&buf, output.FormatJSON, false)

	report(p, client.Result{Status: "ok", Bytes: 3, Target: "server", Entries: []string{"a"}}, nil)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "ok", got["status"])
	assert.Equal(t, []any{"a"}, got["entries"])
	assert.NotContains(t, got, "error")

	buf.Reset()
	report(p, client.Result{}, client.ErrRejected)
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.NotEmpty(t, got["error"])
}

func TestRoot_DefaultsToShell(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root, port := startServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "x.txt"), nil, 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader("LS server\nquit\n"))
	rootCmd.SetArgs([]string{"127.0.0.1", strconv.Itoa(port)})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Enter an SFMP command: ")
	assert.Contains(t, out.String(), "x.txt")
}

func TestRoot_InvalidPort(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	rootCmd.SetArgs([]string{"localhost", "notaport"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	assert.ErrorContains(t, err, "invalid port")
}
