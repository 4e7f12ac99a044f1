package adapter

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marmos91/sfmp/internal/logger"
)

// ConnectionHandler represents a protocol-specific connection that can serve
// requests. The Serve method blocks until the connection is closed or the
// context is cancelled.
type ConnectionHandler interface {
	Serve(ctx context.Context)
}

// ConnectionFactory creates protocol-specific connection handlers for accepted
// TCP connections. NewConnection runs on the accept goroutine, before the
// handler's own goroutine starts, so per-connection registration done there
// is visible as soon as the connection is tracked.
type ConnectionFactory interface {
	NewConnection(conn net.Conn) ConnectionHandler
}

// BaseConfig holds configuration common to TCP protocol adapters.
type BaseConfig struct {
	// BindAddress is the IP address to bind to.
	// Empty string or "0.0.0.0" binds to all interfaces.
	BindAddress string

	// Port is the TCP port to listen on. 0 picks an ephemeral port.
	Port int

	// MaxConnections limits the number of concurrent client connections.
	// 0 means unlimited.
	MaxConnections int

	// ShutdownTimeout is the maximum duration to wait for active connections
	// to complete during graceful shutdown.
	ShutdownTimeout time.Duration

	// MetricsLogInterval is the interval at which to log server metrics.
	// 0 disables periodic metrics logging.
	MetricsLogInterval time.Duration
}

// MetricsRecorder records connection lifecycle metrics. metrics.SFMPMetrics
// satisfies it.
type MetricsRecorder interface {
	RecordConnectionAccepted()
	RecordConnectionClosed()
	RecordConnectionForceClosed()
	SetActiveConnections(count int32)
}

// BaseAdapter provides TCP lifecycle management for protocol adapters:
// listener, connection limit, connection tracking, graceful shutdown and
// metrics logging. Protocol behavior is injected through ConnectionFactory.
//
// The accept loop never waits on a connection: every accepted connection is
// served on its own goroutine.
//
// Thread safety:
// All exported methods are safe for concurrent use. The shutdown mechanism uses
// sync.Once to ensure idempotent behavior even if Stop() is called multiple times.
type BaseAdapter struct {
	// Config holds the shared configuration (bind address, port, limits, timeouts)
	Config BaseConfig

	// protocolName is the human-readable protocol name for logging
	protocolName string

	// Metrics is an optional recorder for connection lifecycle metrics.
	// If nil, no metrics are collected.
	Metrics MetricsRecorder

	listener   net.Listener
	listenerMu sync.RWMutex

	// activeConns tracks all currently active connections for graceful shutdown.
	activeConns sync.WaitGroup

	shutdownOnce sync.Once

	// Shutdown is closed when graceful shutdown has been initiated.
	Shutdown chan struct{}

	// ConnCount tracks the current number of active connections.
	ConnCount atomic.Int32

	// connSemaphore limits concurrent connections when MaxConnections > 0.
	// nil means unlimited.
	connSemaphore chan struct{}

	// ShutdownCtx is cancelled during shutdown and passed to every
	// ConnectionHandler.Serve call.
	ShutdownCtx    context.Context
	CancelRequests context.CancelFunc

	// ActiveConnections maps each open net.Conn to its remote address for
	// forced closure. Keys are the connections themselves, so a closing
	// connection never untracks a newer one from the same address.
	ActiveConnections sync.Map

	// ListenerReady is closed once the listener has been created, or once
	// creating it failed. Used by tests to synchronize with server startup.
	ListenerReady chan struct{}
	readyOnce     sync.Once
}

// NewBaseAdapter creates a new BaseAdapter with the specified configuration.
// The adapter is created in a stopped state. Call ServeWithFactory() to start.
func NewBaseAdapter(config BaseConfig, protocol string) *BaseAdapter {
	var connSemaphore chan struct{}
	if config.MaxConnections > 0 {
		connSemaphore = make(chan struct{}, config.MaxConnections)
		logger.Debug(protocol+" connection limit", "max_connections", config.MaxConnections)
	} else {
		logger.Debug(protocol+" connection limit", "max_connections", "unlimited")
	}

	shutdownCtx, cancelRequests := context.WithCancel(context.Background())

	return &BaseAdapter{
		Config:         config,
		protocolName:   protocol,
		Shutdown:       make(chan struct{}),
		connSemaphore:  connSemaphore,
		ShutdownCtx:    shutdownCtx,
		CancelRequests: cancelRequests,
		ListenerReady:  make(chan struct{}),
	}
}

// ListenAddress returns the host:port the adapter binds to.
func (b *BaseAdapter) ListenAddress() string {
	return net.JoinHostPort(b.Config.BindAddress, strconv.Itoa(b.Config.Port))
}

func (b *BaseAdapter) markReady() {
	b.readyOnce.Do(func() { close(b.ListenerReady) })
}

// ServeWithFactory runs the TCP accept loop, delegating to factory for
// protocol-specific connection creation. It blocks until ctx is cancelled
// or Stop is called.
//
// Returns:
//   - nil on graceful shutdown
//   - error if the listener fails to start or shutdown is not graceful
func (b *BaseAdapter) ServeWithFactory(ctx context.Context, factory ConnectionFactory) error {
	// net.Listen takes the accept backlog from the OS (somaxconn).
	listener, err := net.Listen("tcp", b.ListenAddress())
	if err != nil {
		b.markReady()
		return fmt.Errorf("failed to create %s listener on %s: %w", b.protocolName, b.ListenAddress(), err)
	}

	b.listenerMu.Lock()
	b.listener = listener
	b.listenerMu.Unlock()
	b.markReady()

	logger.Info(b.protocolName+" server listening", "address", listener.Addr().String())

	go func() {
		select {
		case <-ctx.Done():
			logger.Info(b.protocolName+" shutdown signal received", "error", ctx.Err())
			b.initiateShutdown()
		case <-b.Shutdown:
		}
	}()

	if b.Config.MetricsLogInterval > 0 {
		go b.logMetrics(b.ShutdownCtx)
	}

	for {
		if b.connSemaphore != nil {
			select {
			case b.connSemaphore <- struct{}{}:
			case <-b.Shutdown:
				return b.gracefulShutdown()
			}
		}

		tcpConn, err := listener.Accept()
		if err != nil {
			if b.connSemaphore != nil {
				<-b.connSemaphore
			}

			select {
			case <-b.Shutdown:
				return b.gracefulShutdown()
			default:
				logger.Debug("Error accepting "+b.protocolName+" connection", "error", err)
				continue
			}
		}

		if tcp, ok := tcpConn.(*net.TCPConn); ok {
			if err := tcp.SetNoDelay(true); err != nil {
				logger.Debug("Failed to set TCP_NODELAY", "error", err)
			}
		}

		b.activeConns.Add(1)
		b.ConnCount.Add(1)

		connAddr := tcpConn.RemoteAddr().String()
		b.ActiveConnections.Store(tcpConn, connAddr)

		currentConns := b.ConnCount.Load()
		if b.Metrics != nil {
			b.Metrics.RecordConnectionAccepted()
			b.Metrics.SetActiveConnections(currentConns)
		}

		logger.Debug(b.protocolName+" connection accepted", logger.KeyClientAddr, connAddr, logger.KeyActive, currentConns)

		conn := factory.NewConnection(tcpConn)

		go func(nc net.Conn, addr string) {
			defer func() {
				b.ActiveConnections.Delete(nc)

				remaining := b.ConnCount.Add(-1)
				if b.connSemaphore != nil {
					<-b.connSemaphore
				}

				if b.Metrics != nil {
					b.Metrics.RecordConnectionClosed()
					b.Metrics.SetActiveConnections(remaining)
				}

				logger.Debug(b.protocolName+" connection closed", logger.KeyClientAddr, addr, logger.KeyActive, remaining)

				// Done comes last: Stop returns as soon as it runs.
				b.activeConns.Done()
			}()

			conn.Serve(b.ShutdownCtx)
		}(tcpConn, connAddr)
	}
}

// initiateShutdown closes the shutdown channel and the listener, interrupts
// blocking reads and cancels ShutdownCtx. Safe to call more than once.
func (b *BaseAdapter) initiateShutdown() {
	b.shutdownOnce.Do(func() {
		logger.Debug(b.protocolName + " shutdown initiated")

		close(b.Shutdown)

		b.listenerMu.Lock()
		if b.listener != nil {
			if err := b.listener.Close(); err != nil {
				logger.Debug("Error closing "+b.protocolName+" listener", "error", err)
			}
		}
		b.listenerMu.Unlock()

		b.interruptBlockingReads()

		b.CancelRequests()
	})
}

// interruptBlockingReads sets a short deadline on all active connections so
// sessions blocked waiting for a command observe the shutdown.
func (b *BaseAdapter) interruptBlockingReads() {
	deadline := time.Now().Add(100 * time.Millisecond)

	b.ActiveConnections.Range(func(key, value any) bool {
		if conn, ok := key.(net.Conn); ok {
			if err := conn.SetReadDeadline(deadline); err != nil {
				logger.Debug("Error setting shutdown deadline on connection",
					logger.KeyClientAddr, value, "error", err)
			}
		}
		return true
	})
}

// waitConnections returns a channel closed once every connection goroutine
// has finished.
func (b *BaseAdapter) waitConnections() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		b.activeConns.Wait()
		close(done)
	}()
	return done
}

// gracefulShutdown waits for active connections to complete or timeout.
//
// Returns:
//   - nil if all connections completed gracefully
//   - error if shutdown timeout exceeded (connections were force-closed)
func (b *BaseAdapter) gracefulShutdown() error {
	activeCount := b.ConnCount.Load()
	logger.Info(b.protocolName+" graceful shutdown: waiting for active connections",
		logger.KeyActive, activeCount, "timeout", b.Config.ShutdownTimeout)

	done := b.waitConnections()

	var timeout <-chan time.Time
	if b.Config.ShutdownTimeout > 0 {
		timer := time.NewTimer(b.Config.ShutdownTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-done:
		logger.Info(b.protocolName + " graceful shutdown complete: all connections closed")
		return nil

	case <-timeout:
		remaining := b.ConnCount.Load()
		logger.Warn(b.protocolName+" shutdown timeout exceeded - forcing closure",
			logger.KeyActive, remaining, "timeout", b.Config.ShutdownTimeout)

		b.forceCloseConnections()

		return fmt.Errorf("%s shutdown timeout: %d connections force-closed", b.protocolName, remaining)
	}
}

// forceCloseConnections closes all active TCP connections.
func (b *BaseAdapter) forceCloseConnections() {
	closedCount := 0
	b.ActiveConnections.Range(func(key, value any) bool {
		conn := key.(net.Conn)

		if err := conn.Close(); err != nil {
			logger.Debug("Error force-closing connection", logger.KeyClientAddr, value, "error", err)
		} else {
			closedCount++
			if b.Metrics != nil {
				b.Metrics.RecordConnectionForceClosed()
			}
		}

		return true
	})

	if closedCount > 0 {
		logger.Info("Force-closed connections", "count", closedCount)
	}
}

// Stop initiates graceful shutdown of the server and waits for active
// connections to finish. When ctx expires first, the remaining connections
// are force-closed and ctx.Err() is returned.
//
// Stop is safe to call multiple times and concurrently with
// ServeWithFactory().
func (b *BaseAdapter) Stop(ctx context.Context) error {
	b.initiateShutdown()

	if ctx == nil {
		return b.gracefulShutdown()
	}

	select {
	case <-b.waitConnections():
		return nil

	case <-ctx.Done():
		remaining := b.ConnCount.Load()
		logger.Warn(b.protocolName+" shutdown context cancelled",
			logger.KeyActive, remaining, "error", ctx.Err())
		b.forceCloseConnections()
		return ctx.Err()
	}
}

// logMetrics periodically logs the active connection count.
func (b *BaseAdapter) logMetrics(ctx context.Context) {
	ticker := time.NewTicker(b.Config.MetricsLogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logger.Info(b.protocolName+" metrics", "active_connections", b.ConnCount.Load())
		}
	}
}

// GetActiveConnections returns the current number of active connections.
func (b *BaseAdapter) GetActiveConnections() int32 {
	return b.ConnCount.Load()
}

// GetListenerAddr returns the address the server is listening on. It blocks
// until the listener is ready and returns "" if the listener failed to start.
func (b *BaseAdapter) GetListenerAddr() string {
	<-b.ListenerReady

	b.listenerMu.RLock()
	defer b.listenerMu.RUnlock()

	if b.listener == nil {
		return ""
	}
	return b.listener.Addr().String()
}

// Port returns the configured TCP port.
func (b *BaseAdapter) Port() int {
	return b.Config.Port
}

// Protocol returns the human-readable protocol name.
func (b *BaseAdapter) Protocol() string {
	return b.protocolName
}
