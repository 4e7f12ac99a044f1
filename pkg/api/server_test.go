package api

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/sfmp/pkg/session"
)

type listener struct{ addr string }

func (l listener) GetListenerAddr() string      { return l.addr }
func (l listener) GetActiveConnections() int32 { return 0 }

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestRouter_Routes(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "sfmp_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	srv := httptest.NewServer(NewRouter(Dependencies{
		Listener: listener{addr: "127.0.0.1:57005"},
		Sessions: session.NewRegistry(),
		Metrics:  reg,
	}))
	defer srv.Close()

	resp, _ := get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/health/ready")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := get(t, srv.URL+"/api/v1/sessions")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var payload struct {
		Status string            `json:"status"`
		Data   []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "ok", payload.Status)
	assert.Empty(t, payload.Data)

	resp, body = get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "sfmp_test_total 1")
}

func TestRouter_OptionalRoutes(t *testing.T) {
	srv := httptest.NewServer(NewRouter(Dependencies{}))
	defer srv.Close()

	resp, _ := get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/api/v1/sessions")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_StartStop(t *testing.T) {
	// Reserve a free port.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	s := NewServer(APIConfig{BindAddress: "127.0.0.1", Port: port}, Dependencies{})
	assert.Equal(t, port, s.Port())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	addr := s.Addr()
	require.NotEmpty(t, addr)

	resp, _ := get(t, "http://"+addr+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("API server did not stop")
	}
}

func TestServer_ListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	s := NewServer(APIConfig{BindAddress: "127.0.0.1", Port: ln.Addr().(*net.TCPAddr).Port}, Dependencies{})
	require.Error(t, s.Start(context.Background()))
	assert.Equal(t, "", s.Addr())
}

func TestAPIConfig_Defaults(t *testing.T) {
	var cfg APIConfig
	assert.True(t, cfg.IsEnabled())

	cfg.ApplyDefaults()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)

	disabled := false
	cfg.Enabled = &disabled
	assert.False(t, cfg.IsEnabled())
}
