package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	t.Run("missing base URL", func(t *testing.T) {
		cfg := &Config{}
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad scheme", func(t *testing.T) {
		cfg := &Config{BaseURL: "ftp://example.com"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("defaults applied", func(t *testing.T) {
		cfg := &Config{BaseURL: "http://localhost:5000/api/v1"}
		require.NoError(t, cfg.Validate())

		assert.Equal(t, 30*time.Second, cfg.Timeout)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, ":9090", cfg.Metrics.Address)
		assert.Equal(t, "/metrics", cfg.Metrics.Path)
	})

	t.Run("explicit values kept", func(t *testing.T) {
		cfg := &Config{
			BaseURL:  "https://meltano.example.com/api/v1",
			Timeout:  5 * time.Second,
			LogLevel: "debug",
			Metrics:  MetricsConfig{Enabled: true, Address: ":9191", Path: "/m"},
		}
		require.NoError(t, cfg.Validate())

		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, ":9191", cfg.Metrics.Address)
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:5000/api/v1", cfg.BaseURL)
	assert.False(t, cfg.Metrics.Enabled)
}
