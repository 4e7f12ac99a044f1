package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_Server(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.Port != 0xDEAD {
		t.Errorf("Expected default port 57005, got %d", cfg.Server.Port)
	}
	if cfg.Server.Timeouts.Idle != 5*time.Minute {
		t.Errorf("Expected default idle timeout 5m, got %v", cfg.Server.Timeouts.Idle)
	}
	if cfg.Server.Timeouts.Shutdown != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.Server.Timeouts.Shutdown)
	}
	if cfg.Server.Root != "" {
		t.Errorf("Expected empty root, got %q", cfg.Server.Root)
	}
}

func TestApplyDefaults_Client(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Client.Host != "localhost" {
		t.Errorf("Expected default host 'localhost', got %q", cfg.Client.Host)
	}
	if cfg.Client.Timeouts.Connect != 10*time.Second {
		t.Errorf("Expected default connect timeout 10s, got %v", cfg.Client.Timeouts.Connect)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "debug"
	cfg.Server.Port = 1234
	cfg.Telemetry.SampleRate = 0.25
	cfg.API.Port = 9999
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized level 'DEBUG', got %q", cfg.Logging.Level)
	}
	if cfg.Server.Port != 1234 {
		t.Errorf("Expected port 1234 preserved, got %d", cfg.Server.Port)
	}
	if cfg.Telemetry.SampleRate != 0.25 {
		t.Errorf("Expected sample rate 0.25 preserved, got %v", cfg.Telemetry.SampleRate)
	}
	if cfg.API.Port != 9999 {
		t.Errorf("Expected API port 9999 preserved, got %d", cfg.API.Port)
	}
}

func TestApplyDefaults_Telemetry(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Telemetry.Enabled {
		t.Error("Expected telemetry disabled by default")
	}
	if cfg.Telemetry.Endpoint != "localhost:4317" {
		t.Errorf("Expected endpoint 'localhost:4317', got %q", cfg.Telemetry.Endpoint)
	}
	if len(cfg.Telemetry.Profiling.ProfileTypes) == 0 {
		t.Error("Expected default profile types")
	}
}
