package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"lawkit/internal/errors"
)

// ServiceConfig holds process-level settings for the CLI and HTTP server.
// Analysis options never come from the environment; they are resolved per
// call.
type ServiceConfig struct {
	Server  ServerConfig
	Logging LoggingConfig
	Output  OutputConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string
	GinMode         string
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	// CacheSize bounds the LRU of recent responses; 0 disables it.
	CacheSize int
}

// LoggingConfig holds log handler settings
type LoggingConfig struct {
	Level   slog.Level
	NoColor bool
}

// OutputConfig holds the CLI rendering default
type OutputConfig struct {
	Format OutputFormat
}

// LoadServiceConfig reads configuration from environment variables and validates it.
// Callers load an optional .env file with godotenv beforehand.
func LoadServiceConfig() (*ServiceConfig, error) {
	level, err := parseLevel(getEnvOrDefault("LAWKIT_LOG_LEVEL", "info"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load logging configuration")
	}

	format, err := ParseFormat(getEnvOrDefault("LAWKIT_FORMAT", string(FormatText)))
	if err != nil {
		return nil, errors.Wrap(errors.InvalidConfiguration("LAWKIT_FORMAT", err), "failed to load output configuration")
	}

	cfg := &ServiceConfig{
		Server: ServerConfig{
			Addr:            getEnvOrDefault("LAWKIT_ADDR", ":8080"),
			GinMode:         getEnvOrDefault("GIN_MODE", "release"),
			ReadTimeout:     getEnvDurationOrDefault("LAWKIT_READ_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvDurationOrDefault("LAWKIT_SHUTDOWN_TIMEOUT", 10*time.Second),
			MaxBodyBytes:    int64(getEnvIntOrDefault("LAWKIT_MAX_BODY_MB", 32)) << 20,
			CacheSize:       getEnvIntOrDefault("LAWKIT_CACHE_SIZE", 256),
		},
		Logging: LoggingConfig{
			Level:   level,
			NoColor: getEnvBoolOrDefault("NO_COLOR", false),
		},
		Output: OutputConfig{Format: format},
	}

	if err := validateServiceConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validateServiceConfig(cfg *ServiceConfig) error {
	if cfg.Server.Addr == "" {
		return errors.InvalidConfigurationf("LAWKIT_ADDR", "server address is required")
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		return errors.InvalidConfigurationf("LAWKIT_MAX_BODY_MB", "must be positive")
	}
	if cfg.Server.CacheSize < 0 {
		return errors.InvalidConfigurationf("LAWKIT_CACHE_SIZE", "must not be negative")
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, errors.InvalidConfiguration("LAWKIT_LOG_LEVEL", err)
	}
	return level, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
