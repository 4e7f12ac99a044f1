package health

import (
	"context"
	"net"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/sfmp/pkg/api"
	"github.com/marmos91/sfmp/pkg/session"
)

type fakeListener struct{ addr string }

func (f fakeListener) GetListenerAddr() string      { return f.addr }
func (f fakeListener) GetActiveConnections() int32 { return 1 }

func newStatusServer(t *testing.T, deps api.Dependencies) *Client {
	t.Helper()
	srv := httptest.NewServer(api.NewRouter(deps))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", time.Second)
}

func TestClient_Liveness(t *testing.T) {
	c := newStatusServer(t, api.Dependencies{})

	resp, err := c.Liveness(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.Healthy())
	assert.Equal(t, "sfmp", resp.Data.Service)
	assert.NotEmpty(t, resp.Data.StartedAt)
}

func TestClient_Readiness(t *testing.T) {
	c := newStatusServer(t, api.Dependencies{Listener: fakeListener{addr: "127.0.0.1:57005"}})

	resp, err := c.Readiness(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.Healthy())
	assert.Equal(t, "127.0.0.1:57005", resp.Data.Address)
	assert.Equal(t, int32(1), resp.Data.Connections)

	c = newStatusServer(t, api.Dependencies{Listener: fakeListener{}})
	resp, err = c.Readiness(context.Background())
	require.NoError(t, err)
	assert.False(t, resp.Healthy())
	assert.Equal(t, "listener not bound", resp.Error)
}

func TestClient_Sessions(t *testing.T) {
	reg := session.NewRegistry()
	server, peer := net.Pipe()
	defer server.Close()
	defer peer.Close()
	reg.Insert(session.New(server))

	c := newStatusServer(t, api.Dependencies{Sessions: reg})
	infos, err := c.Sessions(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "pipe", infos[0].Address)
	assert.NotEmpty(t, infos[0].ID)
}

func TestClient_SessionsDisabled(t *testing.T) {
	c := newStatusServer(t, api.Dependencies{})

	_, err := c.Sessions(context.Background())
	assert.ErrorContains(t, err, "not available")
}
