package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configHeader = `# SFMP Configuration File
#
# Every key can be overridden from the environment with the SFMP_ prefix,
# e.g. SFMP_SERVER_PORT=9000 or SFMP_LOGGING_LEVEL=DEBUG.
#
# Sizes accept human-readable values ("4Ki", "1Mi"); durations accept Go
# duration strings ("30s", "5m").

`

// InitConfig writes a configuration file populated with the defaults to
// path, or to the default location when path is empty. An existing file is
// only replaced when force is set. It returns the path written.
func InitConfig(path string, force bool) (string, error) {
	if path == "" {
		path = GetDefaultConfigPath()
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", path)
		}
	}

	data, err := RenderDefault()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}

// RenderDefault returns the default configuration as commented YAML.
func RenderDefault() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(configHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(GetDefaultConfig()); err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
