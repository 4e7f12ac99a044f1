package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marmos91/sfmp/internal/logger"
	"github.com/marmos91/sfmp/internal/telemetry"
	"github.com/marmos91/sfmp/pkg/config"
	"github.com/marmos91/sfmp/pkg/server"
)

var (
	startBind string
	startPort int
	startRoot string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the SFMP server",
	Long: `Start the SFMP server in the foreground.

The server runs until it receives SIGINT or SIGTERM, then stops accepting
connections, waits up to server.timeouts.shutdown for running transfers and
closes whatever is left.

Examples:
  # Serve the current directory on the default port (57005)
  sfmpd start

  # Serve /srv/files on port 9000, loopback only
  sfmpd start --bind 127.0.0.1 --port 9000 --root /srv/files

  # Start with environment variable overrides
  SFMP_LOGGING_LEVEL=DEBUG sfmpd start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&startBind, "bind", "", "Address to bind (overrides server.bind_address)")
	startCmd.Flags().IntVar(&startPort, "port", 0, "TCP port to listen on (overrides server.port)")
	startCmd.Flags().StringVar(&startRoot, "root", "", "Directory to serve (overrides server.root)")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := applyStartFlags(cmd, cfg); err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, cfg.Telemetry.TracingConfig("sfmpd", Version))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", logger.KeyError, err)
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(cfg.Telemetry.Profiling.PyroscopeConfig("sfmpd", Version))
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.KeyError, err)
		}
	}()

	source := getConfigSource(GetConfigFile())
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", source)
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint)
	}
	if source != "defaults" {
		config.WatchLogLevel(source)
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	if srv.API() != nil {
		logger.Info("Status API configured", "port", cfg.API.Port)
	}
	if !cfg.Metrics.Enabled {
		logger.Info("Metrics collection disabled")
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Serve(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("Server is running. Press Ctrl+C to stop.", "root", srv.Adapter().Root())

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error", logger.KeyError, err)
			return err
		}
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		if err != nil {
			return err
		}
		logger.Info("Server stopped")
	}

	return nil
}

// applyStartFlags copies explicitly set flags over the loaded configuration
// and re-validates it.
func applyStartFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("bind") {
		cfg.Server.BindAddress = startBind
	}
	if flags.Changed("port") {
		cfg.Server.Port = startPort
	}
	if flags.Changed("root") {
		cfg.Server.Root = startRoot
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid start flags: %w", err)
	}
	return nil
}
