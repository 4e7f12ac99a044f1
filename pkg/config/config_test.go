package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/marmos91/sfmp/internal/bytesize"
	"github.com/marmos91/sfmp/pkg/adapter/sfmp"
)

// yamlSafePath converts a filesystem path to a YAML-safe representation.
// On Windows, backslashes in double-quoted YAML strings are interpreted as
// escape sequences (e.g. \U -> Unicode escape), causing parse errors.
func yamlSafePath(p string) string {
	return filepath.ToSlash(p)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_PartialConfig(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, `
logging:
  level: "debug"

server:
  root: "`+yamlSafePath(root)+`"
  port: 9000
  chunk_size: 64Ki
  max_file_size: 10Mi
  timeouts:
    idle: 90s

client:
  host: files.example.com
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized level 'DEBUG', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.ChunkSize != 64*bytesize.KiB {
		t.Errorf("Expected chunk size 64Ki, got %s", cfg.Server.ChunkSize)
	}
	if cfg.Server.MaxFileSize != 10*bytesize.MiB {
		t.Errorf("Expected max file size 10Mi, got %s", cfg.Server.MaxFileSize)
	}
	if cfg.Server.Timeouts.Idle != 90*time.Second {
		t.Errorf("Expected idle timeout 90s, got %v", cfg.Server.Timeouts.Idle)
	}
	if cfg.Server.Timeouts.Shutdown != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.Server.Timeouts.Shutdown)
	}
	if cfg.Client.Host != "files.example.com" {
		t.Errorf("Expected client host 'files.example.com', got %q", cfg.Client.Host)
	}
	if cfg.Client.Port != sfmp.DefaultPort {
		t.Errorf("Expected default client port %d, got %d", sfmp.DefaultPort, cfg.Client.Port)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("Expected API port 8080, got %d", cfg.API.Port)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Loading with no config file returns a valid default config.
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Expected no error when loading default config, got: %v", err)
	}
	if cfg.Server.Port != 57005 {
		t.Errorf("Expected default server port 57005, got %d", cfg.Server.Port)
	}
	if cfg.Server.ChunkSize != 4096 {
		t.Errorf("Expected default chunk size 4096, got %d", cfg.Server.ChunkSize)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SFMP_SERVER_PORT", "6000")
	t.Setenv("SFMP_LOGGING_LEVEL", "warn")
	t.Setenv("SFMP_CLIENT_TIMEOUTS_CONNECT", "3s")
	t.Setenv("SFMP_METRICS_ENABLED", "true")

	path := writeConfig(t, "server:\n  port: 9000\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Server.Port != 6000 {
		t.Errorf("Expected env port 6000 to win over file, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected level 'WARN', got %q", cfg.Logging.Level)
	}
	if cfg.Client.Timeouts.Connect != 3*time.Second {
		t.Errorf("Expected connect timeout 3s, got %v", cfg.Client.Timeouts.Connect)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Expected metrics to be enabled from env")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unclosed\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for malformed YAML")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, "server:\n  chunk_size: 2Mi\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected validation error for chunk size above 1Mi")
	}
	if !strings.Contains(err.Error(), "lte") {
		t.Errorf("Expected 'lte' validation error, got: %v", err)
	}
}

func TestMustLoad_MissingFile(t *testing.T) {
	_, err := MustLoad(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing explicit config file")
	}
	if !strings.Contains(err.Error(), "sfmpd config init") {
		t.Errorf("Expected init hint in error, got: %v", err)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.Port = 7000
	cfg.Server.ChunkSize = 8 * bytesize.KiB
	cfg.Server.Timeouts.Idle = 2 * time.Minute

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to reload saved config: %v", err)
	}
	if loaded.Server.Port != 7000 {
		t.Errorf("Expected port 7000, got %d", loaded.Server.Port)
	}
	if loaded.Server.ChunkSize != 8*bytesize.KiB {
		t.Errorf("Expected chunk size 8Ki, got %s", loaded.Server.ChunkSize)
	}
	if loaded.Server.Timeouts.Idle != 2*time.Minute {
		t.Errorf("Expected idle 2m, got %v", loaded.Server.Timeouts.Idle)
	}
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sfmp", "config.yaml")

	written, err := InitConfig(path, false)
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	if written != path {
		t.Errorf("Expected path %s, got %s", path, written)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}
	for _, section := range []string{"# SFMP Configuration File", "logging:", "server:", "client:", "api:"} {
		if !strings.Contains(string(content), section) {
			t.Errorf("Config file missing section: %s", section)
		}
	}

	if _, err := Load(path); err != nil {
		t.Errorf("Generated config does not load: %v", err)
	}

	if _, err := InitConfig(path, false); err == nil {
		t.Error("Expected error when config already exists")
	}
	if _, err := InitConfig(path, true); err != nil {
		t.Errorf("Expected force to overwrite, got: %v", err)
	}
}

func TestGetConfigDir_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	if got := GetConfigDir(); got != filepath.Join(dir, "sfmp") {
		t.Errorf("Expected %s, got %s", filepath.Join(dir, "sfmp"), got)
	}
	if DefaultConfigExists() {
		t.Error("Expected no default config in a fresh directory")
	}
}
