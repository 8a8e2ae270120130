// Package config provides configuration structures for the Meltano CLI.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config represents the CLI configuration.
type Config struct {
	// Backend settings
	BaseURL  string        `yaml:"base_url" json:"base_url"`
	Token    string        `yaml:"token" json:"token"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
	LogLevel string        `yaml:"log_level" json:"log_level"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// MetricsConfig represents metrics exposition configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Address string `yaml:"address" json:"address"`
	Path    string `yaml:"path" json:"path"`
}

// Validate validates the configuration and applies defaults.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported base URL scheme: %q", u.Scheme)
	}

	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.Metrics.Address == "" {
		c.Metrics.Address = ":9090"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}

	return nil
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:  "http://localhost:5000/api/v1",
		Timeout:  30 * time.Second,
		LogLevel: "info",
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9090",
			Path:    "/metrics",
		},
	}
}
