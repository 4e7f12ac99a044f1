// Package server wires the SFMP adapter, the session registry, metrics and
// the status API into one process and runs them until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/marmos91/sfmp/internal/logger"
	"github.com/marmos91/sfmp/pkg/adapter/sfmp"
	"github.com/marmos91/sfmp/pkg/api"
	"github.com/marmos91/sfmp/pkg/config"
	"github.com/marmos91/sfmp/pkg/metrics"
	promMetrics "github.com/marmos91/sfmp/pkg/metrics/prometheus"
	"github.com/marmos91/sfmp/pkg/session"
)

// ErrAlreadyStarted is returned by a second call to Serve.
var ErrAlreadyStarted = errors.New("server already started")

// Server owns every long-running component of sfmpd.
type Server struct {
	adapter  *sfmp.Adapter
	api      *api.Server
	sessions *session.Registry

	started atomic.Bool
}

// New builds the server from a loaded configuration. Nothing listens until
// Serve is called.
func New(cfg *config.Config) (*Server, error) {
	sessions := session.NewRegistry()

	var m metrics.SFMPMetrics
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		m = promMetrics.NewSFMPMetrics()
	}

	adapter, err := sfmp.New(cfg.Server, sessions, m)
	if err != nil {
		return nil, err
	}

	s := &Server{
		adapter:  adapter,
		sessions: sessions,
	}

	if cfg.API.IsEnabled() {
		s.api = api.NewServer(cfg.API, api.Dependencies{
			Listener: adapter,
			Sessions: sessions,
			Metrics:  metrics.GetRegistry(),
		})
	}
	return s, nil
}

// Adapter returns the SFMP adapter.
func (s *Server) Adapter() *sfmp.Adapter {
	return s.adapter
}

// API returns the status API server, or nil when it is disabled.
func (s *Server) API() *api.Server {
	return s.api
}

// Sessions returns the live session registry.
func (s *Server) Sessions() *session.Registry {
	return s.sessions
}

// Serve runs the SFMP listener and the status API until ctx is cancelled or
// one of them fails; a failure stops the other. A clean shutdown returns nil.
// Serve may only be called once; later calls return ErrAlreadyStarted at
// once, even while the first is still running.
func (s *Server) Serve(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	return s.serve(ctx)
}

func (s *Server) serve(ctx context.Context) error {
	logger.Info("Starting SFMP server")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// The adapter returning for any reason ends the process.
		defer cancel()
		if err := s.adapter.Serve(gctx); err != nil {
			return fmt.Errorf("SFMP adapter: %w", err)
		}
		return nil
	})

	if s.api != nil {
		g.Go(func() error {
			return s.api.Start(gctx)
		})
	}

	err := g.Wait()
	if err != nil {
		logger.Error("Server stopped with error", logger.KeyError, err)
	} else {
		logger.Info("SFMP server stopped")
	}
	return err
}
