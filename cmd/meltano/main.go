// Package main provides the entry point for the Meltano semantic-layer CLI.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/attaxia/meltano/cmd/meltano/config"
	"github.com/attaxia/meltano/pkg/client"
	"github.com/attaxia/meltano/pkg/infrastructure/metrics"
)

var (
	// Version information (set by build flags)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "meltano",
	Short: "Meltano semantic-layer API client",
	Long: `A command line client for the Meltano semantic-layer API.

Fetch designs and tables, render designs to SQL, inspect distinct field
values, and manage saved reports.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "config file path")
	pf.String("base-url", "http://localhost:5000/api/v1", "backend API base URL")
	pf.String("token", "", "bearer token for the backend API")
	pf.Duration("timeout", 30*time.Second, "request timeout")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.Bool("metrics", false, "expose Prometheus metrics while running")
	pf.String("metrics-address", ":9090", "metrics server address")
	pf.String("path", "", "extract a value from the JSON response (gjson path)")

	if err := viper.BindPFlags(pf); err != nil {
		panic(fmt.Errorf("failed to bind flags: %w", err))
	}
	viper.SetEnvPrefix("MELTANO")
	viper.AutomaticEnv()

	rootCmd.AddCommand(newModelCmd())
	rootCmd.AddCommand(newDesignCmd())
	rootCmd.AddCommand(newTableCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newSQLCmd())

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Meltano API client\n")
			fmt.Printf("Version:    %s\n", version)
			fmt.Printf("Commit:     %s\n", commit)
			fmt.Printf("Build Date: %s\n", buildDate)
		},
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &config.Config{
		BaseURL:  viper.GetString("base-url"),
		Token:    viper.GetString("token"),
		Timeout:  viper.GetDuration("timeout"),
		LogLevel: viper.GetString("log-level"),
		Metrics: config.MetricsConfig{
			Enabled: viper.GetBool("metrics"),
			Address: viper.GetString("metrics-address"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setupLogging(level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond

	var logLevel zerolog.Level
	switch level {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stderr).
		Level(logLevel).
		With().
		Timestamp().
		Str("service", "meltano-client")

	if logLevel == zerolog.DebugLevel {
		logger = logger.Caller()
	}

	return logger.Logger()
}

// newAPIClient builds a client from the resolved configuration. The
// returned stop function shuts down the metrics server, if one was
// started.
func newAPIClient() (*client.Client, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger := setupLogging(cfg.LogLevel)

	var collector metrics.Collector
	stop := func() {}
	if cfg.Metrics.Enabled {
		prom := metrics.NewPrometheusCollector()
		server := metrics.NewMetricsServer(cfg.Metrics.Address, cfg.Metrics.Path)
		go func() {
			logger.Info().Str("address", cfg.Metrics.Address).Msg("Starting metrics server")
			if err := server.Start(prom); err != nil {
				logger.Debug().Err(err).Msg("Metrics server stopped")
			}
		}()
		stop = func() {
			if err := server.Stop(); err != nil {
				logger.Error().Err(err).Msg("Error stopping metrics server")
			}
		}
		collector = prom
	} else {
		collector = metrics.NewNoOpCollector()
	}

	apiClient, err := client.New(client.Config{
		BaseURL: cfg.BaseURL,
		Token:   cfg.Token,
		Timeout: cfg.Timeout,
	}, logger, collector)
	if err != nil {
		stop()
		return nil, nil, err
	}

	return apiClient, stop, nil
}
