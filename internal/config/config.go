// Package config loads the code-help server configuration from a YAML file,
// environment variables and flags via viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the complete code-help configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Provider ProviderConfig `mapstructure:"provider"`
	Session  SessionConfig  `mapstructure:"session"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `mapstructure:"addr"`
}

// ProviderConfig selects the model backend.
type ProviderConfig struct {
	// Name is one of "anthropic", "openai" or "demo". The demo provider
	// needs no credentials and echoes scripted responses.
	Name string `mapstructure:"name"`
	// Model overrides the provider's default model identifier.
	Model string `mapstructure:"model"`
	// Temperature applies to anthropic and openai providers.
	Temperature float64 `mapstructure:"temperature"`
}

// SessionConfig bounds turn execution.
type SessionConfig struct {
	// MaxToolRounds caps specialist tool rounds within one turn.
	MaxToolRounds int `mapstructure:"max_tool_rounds"`
	// MaxHandoffs caps specialist transfers within one turn.
	MaxHandoffs int `mapstructure:"max_handoffs"`
	// RejectWhenBusy rejects a second concurrent turn on a session with
	// a conflict instead of queueing it.
	RejectWhenBusy bool `mapstructure:"reject_when_busy"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is "text" or "json".
	Format string `mapstructure:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Provider: ProviderConfig{Name: "demo", Temperature: 0.7},
		Session: SessionConfig{
			MaxToolRounds: 8,
			MaxHandoffs:   4,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// SetDefaults registers default values with viper.
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("server.addr", defaults.Server.Addr)

	viper.SetDefault("provider.name", defaults.Provider.Name)
	viper.SetDefault("provider.model", defaults.Provider.Model)
	viper.SetDefault("provider.temperature", defaults.Provider.Temperature)

	viper.SetDefault("session.max_tool_rounds", defaults.Session.MaxToolRounds)
	viper.SetDefault("session.max_handoffs", defaults.Session.MaxHandoffs)
	viper.SetDefault("session.reject_when_busy", defaults.Session.RejectWhenBusy)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.format", defaults.Logging.Format)
}

// Load unmarshals and validates the active viper state.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case "anthropic", "openai", "demo":
	default:
		return fmt.Errorf("provider.name must be anthropic, openai or demo, got %q", c.Provider.Name)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	if c.Session.MaxToolRounds < 1 {
		return fmt.Errorf("session.max_tool_rounds must be at least 1, got %d", c.Session.MaxToolRounds)
	}
	if c.Session.MaxHandoffs < 0 {
		return fmt.Errorf("session.max_handoffs must not be negative, got %d", c.Session.MaxHandoffs)
	}
	return nil
}

// ConfigDir returns the path to the user's config directory.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "code-help")
}
