package config

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned when no generation credentials are available
	ErrMissingAPIKey = errors.New("missing API key for generation provider")

	// ErrNoToolServers is returned when neither backend class is configured
	ErrNoToolServers = errors.New("no tool servers configured")
)

// Validate checks that a loaded configuration is usable
func Validate(cfg *Config) error {
	switch cfg.AI.Provider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("unsupported generation provider: %q", cfg.AI.Provider)
	}

	if cfg.AI.APIKey == "" {
		return ErrMissingAPIKey
	}

	if cfg.AI.Model == "" {
		return errors.New("generation model must be set")
	}

	if cfg.Servers.Primary.Command == "" && cfg.Servers.Secondary.URL == "" {
		return ErrNoToolServers
	}

	if cfg.Selection.MaxToolsPerStep < 0 {
		return errors.New("selection.max_tools_per_step cannot be negative")
	}

	if cfg.Executor.Timeout < 0 {
		return errors.New("executor.timeout cannot be negative")
	}

	return nil
}
