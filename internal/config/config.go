// ABOUTME: Configuration loading for the spira client.
// ABOUTME: Loads TOML from an XDG path with environment variable expansion.

package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the complete client configuration.
type Config struct {
	Gateway  GatewayConfig  `toml:"gateway"`
	Realtime RealtimeConfig `toml:"realtime"`
	Storage  StorageConfig  `toml:"storage"`
	Logging  LoggingConfig  `toml:"logging"`
}

// GatewayConfig holds the backend HTTP API location.
type GatewayConfig struct {
	URL string `toml:"url"`
}

// RealtimeConfig holds the base URL task subscriptions are dialed under.
type RealtimeConfig struct {
	URL string `toml:"url"`
}

// StorageConfig holds the credential database location. An empty path
// defers to the XDG data directory.
type StorageConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Gateway:  GatewayConfig{URL: "http://localhost:8000"},
		Realtime: RealtimeConfig{URL: "ws://localhost:8000/ws/v1"},
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Load reads config from the given path, expanding environment
// variables. A missing file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables (${VAR} syntax)
	expanded := expandEnvVars(string(data))

	cfg := Default()
	if _, err := toml.Decode(expanded, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

// Validate checks that required config fields are present and valid.
func (c *Config) Validate() error {
	if c.Gateway.URL == "" {
		return fmt.Errorf("gateway.url is required")
	}
	u, err := url.Parse(c.Gateway.URL)
	if err != nil {
		return fmt.Errorf("gateway.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("gateway.url must use http or https scheme")
	}

	if c.Realtime.URL == "" {
		return fmt.Errorf("realtime.url is required")
	}
	ru, err := url.Parse(c.Realtime.URL)
	if err != nil {
		return fmt.Errorf("realtime.url is not a valid URL: %w", err)
	}
	if ru.Scheme != "ws" && ru.Scheme != "wss" {
		return fmt.Errorf("realtime.url must use ws or wss scheme")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}

	return nil
}
