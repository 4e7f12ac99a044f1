// Package sfmp implements the SFMP server adapter: one session per accepted
// TCP connection, each running the command / handshake / transfer loop
// against the local filesystem.
package sfmp

import (
	"context"
	"fmt"
	"net"

	"github.com/marmos91/sfmp/internal/logger"
	"github.com/marmos91/sfmp/pkg/adapter"
	"github.com/marmos91/sfmp/pkg/metrics"
	"github.com/marmos91/sfmp/pkg/session"
	"github.com/marmos91/sfmp/pkg/transfer"
)

// Adapter implements adapter.Adapter for SFMP.
//
// Architecture:
// Adapter embeds BaseAdapter for the TCP lifecycle (listener, connection
// limit, graceful shutdown). For every accepted connection NewConnection
// creates a Session, registers it under the remote address, and returns
// the Connection that serves it on its own goroutine.
//
// Shutdown flow:
//  1. Context cancelled or Stop() called
//  2. Listener closed and blocking reads interrupted [BaseAdapter]
//  3. Sessions notice the cancelled context or the read error and terminate
//  4. Remaining connections are force-closed after Timeouts.Shutdown [BaseAdapter]
type Adapter struct {
	*adapter.BaseAdapter

	config Config

	// registry holds the live sessions keyed by remote address.
	registry *session.Registry

	// metrics is optional; nil disables collection.
	metrics metrics.SFMPMetrics
}

// New creates an SFMP adapter. registry must not be nil; m may be nil.
func New(cfg Config, registry *session.Registry, m metrics.SFMPMetrics) (*Adapter, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid SFMP config: %w", err)
	}
	if registry == nil {
		registry = session.NewRegistry()
	}

	base := adapter.NewBaseAdapter(adapter.BaseConfig{
		BindAddress:        cfg.BindAddress,
		Port:               cfg.Port,
		MaxConnections:     cfg.MaxConnections,
		ShutdownTimeout:    cfg.Timeouts.Shutdown,
		MetricsLogInterval: cfg.MetricsLogInterval,
	}, "SFMP")
	if m != nil {
		base.Metrics = m
	}

	return &Adapter{
		BaseAdapter: base,
		config:      cfg,
		registry:    registry,
		metrics:     m,
	}, nil
}

// Serve accepts connections until ctx is cancelled or Stop is called.
func (a *Adapter) Serve(ctx context.Context) error {
	logger.Info("SFMP server starting",
		"root", a.config.Root,
		"chunk_size", a.config.ChunkSize.String(),
		"max_file_size", a.config.MaxFileSize.String())
	return a.ServeWithFactory(ctx, a)
}

// NewConnection implements adapter.ConnectionFactory. It registers the
// session before the connection goroutine starts.
func (a *Adapter) NewConnection(conn net.Conn) adapter.ConnectionHandler {
	s := session.New(conn)
	if prev := a.registry.Insert(s); prev != nil {
		logger.Debug("Replaced stale session for address",
			logger.KeyClientAddr, s.Addr(),
			"previous_session", prev.ID())
	}
	return newConnection(a, s)
}

// Sessions returns the registry of live sessions.
func (a *Adapter) Sessions() *session.Registry {
	return a.registry
}

// Root returns the directory relative paths resolve against.
func (a *Adapter) Root() string {
	return a.config.Root
}

func (a *Adapter) transferOptions() transfer.Options {
	return transfer.Options{
		ChunkSize: a.config.ChunkSize.Int(),
		MaxSize:   a.config.MaxFileSize.Int64(),
	}
}

var _ adapter.Adapter = (*Adapter)(nil)
