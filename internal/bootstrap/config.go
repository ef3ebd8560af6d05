package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/target/mmk-queue-monitor/config"
)

// ConfigFileEnv names the optional YAML or TOML file layered beneath the environment.
const ConfigFileEnv = "CONFIG_FILE"

// InitLogger initializes the structured logger. Development mode logs text.
func InitLogger(level string, dev bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var h slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if dev {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// LoadConfig loads configuration from .env, CONFIG_FILE and environment variables.
// Process environment wins over the file.
func LoadConfig() (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var fileEnv map[string]string
	if path := strings.TrimSpace(os.Getenv(ConfigFileEnv)); path != "" {
		var err error
		if fileEnv, err = config.LoadFileEnvironment(path); err != nil {
			return config.AppConfig{}, err
		}
	}

	var cfg config.AppConfig
	opts := env.Options{Environment: config.MergeEnvironment(fileEnv, os.Environ())}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}

// ValidateServiceConfig validates that at least one service is enabled.
func ValidateServiceConfig(cfg *config.AppConfig) error {
	if cfg == nil {
		return errors.New("service config is required")
	}
	services, err := cfg.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("invalid service configuration: %w", err)
	}

	if len(services) == 0 {
		return errors.New("no services enabled")
	}
	if services[config.ServiceModeCollector] && !cfg.Observability.Metrics.IsEnabled() {
		return errors.New("collector service requires OBSERVABILITY_METRICS_ENABLED=true")
	}
	if _, err := cfg.Monitor.Location(); err != nil {
		return err
	}

	return nil
}

// GetEnabledServices returns a list of enabled service names.
func GetEnabledServices(cfg *config.AppConfig) []string {
	if cfg == nil {
		return []string{}
	}
	services, err := cfg.GetEnabledServices()
	if err != nil {
		// Return empty list on error - validation will catch this
		return []string{}
	}

	enabledServices := make([]string, 0, len(services))
	for _, mode := range config.ValidServiceModes() {
		if services[mode] {
			enabledServices = append(enabledServices, string(mode))
		}
	}

	return enabledServices
}
