// ABOUTME: Configuration loading and parsing for session-gateway
// ABOUTME: YAML files with environment variable expansion, defaults, and validation

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete session-gateway configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Relay   RelayConfig   `yaml:"relay"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// BackendConfig describes how to reach the identity backend.
type BackendConfig struct {
	// BaseURL is the identity backend's absolute base URL.
	BaseURL string `yaml:"base_url"`

	// Mode is "direct" or "forwarded". Forwarded routes client calls
	// through the same-origin relay.
	Mode string `yaml:"mode"`

	// RelayURL is the relay's origin for forwarded-mode clients.
	// Defaults to localhost at the relay listen address.
	RelayURL string `yaml:"relay_url"`
}

// RelayConfig holds the forwarding server configuration.
type RelayConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	Prefix     string `yaml:"prefix"`
}

// StorageConfig holds session persistence configuration.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig holds the metrics endpoint configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads a configuration file, expands ${VAR_NAME} references from the
// environment, applies defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func (c *Config) applyDefaults() {
	if c.Backend.Mode == "" {
		c.Backend.Mode = "forwarded"
	}
	if c.Relay.ListenAddr == "" {
		c.Relay.ListenAddr = ":3000"
	}
	if c.Relay.Prefix == "" {
		c.Relay.Prefix = "/api"
	}
	if c.Backend.RelayURL == "" && strings.HasPrefix(c.Relay.ListenAddr, ":") {
		c.Backend.RelayURL = "http://localhost" + c.Relay.ListenAddr
	}
	if c.Storage.Path == "" {
		c.Storage.Path = defaultStoragePath()
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate checks that required fields are present and valid, returning the
// first failure encountered.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}

	switch c.Backend.Mode {
	case "direct", "forwarded":
	default:
		return fmt.Errorf("backend.mode must be \"direct\" or \"forwarded\", got %q", c.Backend.Mode)
	}

	if c.Backend.Mode == "forwarded" && c.Backend.RelayURL == "" {
		return fmt.Errorf("backend.relay_url is required in forwarded mode")
	}

	if !strings.HasPrefix(c.Relay.Prefix, "/") {
		return fmt.Errorf("relay.prefix must start with /, got %q", c.Relay.Prefix)
	}

	return nil
}

// defaultStoragePath resolves the session database location.
// Priority: XDG_DATA_HOME/session-gateway > ~/.local/share/session-gateway.
func defaultStoragePath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join("data", "session.db") // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "session-gateway", "session.db")
}
