package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/marmos91/sfmp/internal/telemetry"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg against the struct tags and the cross-field rules
// the tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return formatValidationErrors(verrs)
		}
		return err
	}

	if err := telemetry.ValidateProfileTypes(cfg.Telemetry.Profiling.ProfileTypes); err != nil {
		return fmt.Errorf("telemetry.profiling.profile_types: %w", err)
	}

	if cfg.Server.Root != "" {
		info, err := os.Stat(cfg.Server.Root)
		if err != nil {
			return fmt.Errorf("server.root: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("server.root: %s is not a directory", cfg.Server.Root)
		}
	}
	if cfg.Client.LocalDir != "" {
		info, err := os.Stat(cfg.Client.LocalDir)
		if err != nil {
			return fmt.Errorf("client.local_dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("client.local_dir: %s is not a directory", cfg.Client.LocalDir)
		}
	}
	return nil
}

// formatValidationErrors renders every failed field as
// "Config.Server.Port: failed 'max' (value 70000)".
func formatValidationErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed '%s' (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
