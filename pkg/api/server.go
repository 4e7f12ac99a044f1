package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/marmos91/sfmp/internal/logger"
)

// Server provides the HTTP server for the status API.
//
// Endpoints:
//   - GET /health: Liveness probe
//   - GET /health/ready: Readiness probe
//   - GET /api/v1/sessions: Live sessions
//   - GET /metrics: Prometheus metrics
//
// The server supports graceful shutdown.
type Server struct {
	server       *http.Server
	config       APIConfig
	shutdownOnce sync.Once

	addrOnce sync.Once
	ready    chan struct{}
	addr     string
}

// NewServer creates a new API HTTP server.
//
// The server is created in a stopped state. Call Start() to begin serving requests.
//
// Defaults are applied here so the server works when created directly
// (e.g., in tests); this is idempotent with config loading.
func NewServer(config APIConfig, deps Dependencies) *Server {
	config.ApplyDefaults()

	server := &http.Server{
		Addr:         net.JoinHostPort(config.BindAddress, strconv.Itoa(config.Port)),
		Handler:      NewRouter(deps),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		server: server,
		config: config,
		ready:  make(chan struct{}),
	}
}

// Start starts the API HTTP server and blocks until the context is cancelled
// or an error occurs.
//
// When the context is cancelled, Start initiates graceful shutdown and returns.
//
// Returns:
//   - nil on graceful shutdown
//   - error if the server fails to start or shutdown encounters an error
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		s.markReady("")
		return fmt.Errorf("API server failed to listen on %s: %w", s.server.Addr, err)
	}
	s.markReady(ln.Addr().String())

	errChan := make(chan error, 1)
	go func() {
		logger.Info("API server listening", "address", ln.Addr().String())
		logger.Debug("API endpoints available",
			"health", fmt.Sprintf("http://%s/health", ln.Addr()),
			"sessions", fmt.Sprintf("http://%s/api/v1/sessions", ln.Addr()),
		)

		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("API server shutdown signal received")
		// Don't use the cancelled ctx as it would cause immediate shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("API server failed: %w", err)
	}
}

// Stop initiates graceful shutdown of the API server.
//
// Stop is safe to call multiple times and safe to call concurrently with Start().
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		logger.Debug("API server shutdown initiated")

		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("API server shutdown error: %w", err)
			logger.Error("API server shutdown error", "error", err)
		} else {
			logger.Info("API server stopped gracefully")
		}
	})
	return shutdownErr
}

func (s *Server) markReady(addr string) {
	s.addrOnce.Do(func() {
		s.addr = addr
		close(s.ready)
	})
}

// Addr blocks until Start has bound the listener and returns its address,
// or "" when binding failed.
func (s *Server) Addr() string {
	<-s.ready
	return s.addr
}

// Port returns the configured TCP port.
func (s *Server) Port() int {
	return s.config.Port
}
