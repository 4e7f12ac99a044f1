package client

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	wire "github.com/marmos91/sfmp/internal/protocol/sfmp"
	sfmpadapter "github.com/marmos91/sfmp/pkg/adapter/sfmp"
	"github.com/marmos91/sfmp/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 5 * time.Second

// startServer runs an SFMP server rooted at a temporary directory and
// returns the root and the listening port.
func startServer(t *testing.T) (string, int) {
	t.Helper()

	root := t.TempDir()
	a, err := sfmpadapter.New(sfmpadapter.Config{
		BindAddress: "127.0.0.1",
		Root:        root,
		ChunkSize:   512,
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

func connect(t *testing.T, port int) (*Client, string) {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = port
	cfg.ChunkSize = 700
	cfg.LocalDir = t.TempDir()
	cfg.Timeouts = TimeoutsConfig{Connect: testTimeout, Read: testTimeout, Write: testTimeout}

	c, err := Dial(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, cfg.LocalDir
}

func TestHelloRoundTrip(t *testing.T) {
	root, port := startServer(t)
	c, local := connect(t, port)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(local, "hello.txt"), []byte("Hello World!"), 0o644))

	res, err := c.Execute(ctx, "PUT hello.txt hello.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(12), res.Bytes)
	assert.Equal(t, []string{"Server says command 'PUT hello.txt hello.txt' is VALID, forwarding..."}, res.Messages)

	// The server finishes the PUT before it reads the next command.
	res, err = c.Execute(ctx, "get hello.txt copies/hello2.txt")
	require.NoError(t, err)
	assert.True(t, res.CreatedDirs)

	got, err := os.ReadFile(filepath.Join(root, "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Hello World!", string(got))

	got, err = os.ReadFile(filepath.Join(local, "copies", "hello2.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Hello World!", string(got))

	res, err = c.Execute(ctx, "LS server")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello.txt"}, res.Entries)

	res, err = c.Execute(ctx, "LS client")
	require.NoError(t, err)
	assert.Equal(t, []string{"copies", "hello.txt"}, res.Entries)
	assert.Empty(t, res.Command)
}

func TestLargeFile(t *testing.T) {
	root, port := startServer(t)
	c, local := connect(t, port)

	data := make([]byte, 3*1024*1024+5)
	for i := range data {
		data[i] = byte(i * 7)
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.bin"), data, 0o644))

	res, err := c.Get(context.Background(), "big.bin", "big.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), res.Bytes)

	got, err := os.ReadFile(filepath.Join(local, "big.bin"))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestEmptyFile(t *testing.T) {
	root, port := startServer(t)
	c, local := connect(t, port)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(root, "blank"), nil, 0o644))

	res, err := c.Execute(ctx, "GET blank blank")
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.Contains(t, res.Status, "blank")

	info, err := os.Stat(filepath.Join(local, "blank"))
	require.NoError(t, err)
	assert.Zero(t, info.Size())

	res, err = c.Execute(ctx, "PUT blank uploaded")
	require.NoError(t, err)
	assert.True(t, res.Empty)

	res, err = c.Execute(ctx, "LS server")
	require.NoError(t, err)
	assert.Contains(t, res.Entries, "uploaded")
	info, err = os.Stat(filepath.Join(root, "uploaded"))
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestUsageErrors(t *testing.T) {
	_, port := startServer(t)
	c, _ := connect(t, port)

	tests := []struct {
		line   string
		header wire.Header
	}{
		{"FETCH a b", wire.HeaderUnknown},
		{"", wire.HeaderUnknown},
		{"GET a", wire.HeaderGet},
		{"PUT a b c", wire.HeaderPut},
		{"LS", wire.HeaderLS},
		{"LS elsewhere", wire.HeaderLS},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := c.Execute(context.Background(), tt.line)
			require.ErrorIs(t, err, ErrUsage)

			var ue *UsageError
			require.True(t, errors.As(err, &ue))
			assert.Equal(t, tt.header, ue.Header)
			assert.Equal(t, Usage(tt.header), ue.Usage())
		})
	}

	// The connection is still usable.
	_, err := c.Execute(context.Background(), "LS server")
	require.NoError(t, err)
}

func TestUsage(t *testing.T) {
	assert.Equal(t, "Usage: GET remote-path local-path", Usage(wire.HeaderGet))
	assert.Equal(t, "Usage: PUT local-path remote-path", Usage(wire.HeaderPut))
	assert.Equal(t,
		"Usage: GET remote-path local-path\nUsage: PUT local-path remote-path\nUsage: LS client|server",
		Usage(wire.HeaderUnknown))
}

func TestQuit(t *testing.T) {
	_, port := startServer(t)
	c, _ := connect(t, port)

	_, err := c.Execute(context.Background(), "quit")
	assert.ErrorIs(t, err, ErrQuit)
}

func TestInfeasible(t *testing.T) {
	root, port := startServer(t)
	c, local := connect(t, port)
	ctx := context.Background()

	_, err := c.Execute(ctx, "PUT missing.txt x")
	require.ErrorIs(t, err, ErrInfeasible)

	require.NoError(t, os.Mkdir(filepath.Join(local, "dir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "f"), []byte("x"), 0o644))
	_, err = c.Execute(ctx, "GET f dir")
	require.ErrorIs(t, err, ErrInfeasible)

	// A regular file where a parent directory should be.
	require.NoError(t, os.WriteFile(filepath.Join(local, "block"), []byte("x"), 0o644))
	_, err = c.Execute(ctx, "GET f block/f")
	require.ErrorIs(t, err, ErrInfeasible)

	// Nothing reached the server.
	_, err = os.Stat(filepath.Join(root, "x"))
	assert.True(t, os.IsNotExist(err))
	_, err = c.Execute(ctx, "LS server")
	require.NoError(t, err)
}

func TestRejected(t *testing.T) {
	_, port := startServer(t)
	c, _ := connect(t, port)
	ctx := context.Background()

	res, err := c.Execute(ctx, "GET nope.txt nope.txt")
	require.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, []string{"Server says command 'GET nope.txt nope.txt' is INVALID, aborting..."}, res.Messages)

	_, err = os.Stat(res.Path)
	assert.True(t, os.IsNotExist(err), "rejected GET must not create the local file")

	_, err = c.Execute(ctx, "LS server")
	require.NoError(t, err)
}

func TestLineTooLong(t *testing.T) {
	_, port := startServer(t)
	c, local := connect(t, port)

	name := make([]byte, wire.MaxLineLength)
	for i := range name {
		name[i] = 'a'
	}
	require.NoError(t, os.WriteFile(filepath.Join(local, "short"), []byte("x"), 0o644))

	_, err := c.Put(context.Background(), "short", string(name))
	require.ErrorIs(t, err, ErrUsage)

	_, err = c.Execute(context.Background(), "LS server")
	require.NoError(t, err)
}

func TestConnectionLoss(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		_ = conn.Close()
	}()

	c, _ := connect(t, ln.Addr().(*net.TCPAddr).Port)

	_, err = c.Execute(context.Background(), "LS server")
	require.ErrorIs(t, err, ErrConnection)

	_, err = c.Execute(context.Background(), "LS server")
	require.ErrorIs(t, err, ErrConnection)

	// LS client does not need the connection.
	_, err = c.Execute(context.Background(), "LS client")
	require.NoError(t, err)
}

func TestCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	c, _ := connect(t, ln.Addr().(*net.TCPAddr).Port)
	defer func() {
		select {
		case conn := <-accepted:
			_ = conn.Close()
		default:
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = c.Execute(ctx, "LS server")
	require.ErrorIs(t, err, ErrConnection)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), testTimeout)
}

func TestDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	cfg := DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = port
	_, err = Dial(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrConnection)
}

func TestVerdictMessage(t *testing.T) {
	assert.Equal(t, "Server says command 'LS server' is VALID, forwarding...", VerdictMessage("LS server", wire.Valid))
	assert.Equal(t, "Server says command 'LS server' is INVALID, aborting...", VerdictMessage("LS server", wire.Invalid))
}
