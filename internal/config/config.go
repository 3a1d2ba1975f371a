// Package config loads the dashboard configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings for the dashboard and worker binaries.
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	BackendBaseURL string
	BackendTimeout time.Duration

	BulkConcurrency int
	HourlyHours     int

	// AutoIngestCron is a standard five-field cron spec. Empty disables it.
	AutoIngestCron string
	StartupWait    time.Duration

	OTelEnabled     bool
	OTLPEndpoint    string
	OTelSampleRatio float64

	ShutdownTimeout time.Duration
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment take precedence over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:           getEnvOrDefault("APP_PORT", "8080"),
		Env:            getEnvOrDefault("APP_ENV", "development"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:      getEnvOrDefault("LOG_FORMAT", "json"),
		BackendBaseURL: getEnvOrDefault("BACKEND_BASE_URL", "http://localhost:8081"),
		AutoIngestCron: os.Getenv("AUTO_INGEST_CRON"),
		OTelEnabled:    os.Getenv("OTEL_ENABLED") == "true",
		OTLPEndpoint:   getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	var err error
	if cfg.BackendTimeout, err = durationEnv("BACKEND_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.StartupWait, err = durationEnv("STARTUP_WAIT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.OTelSampleRatio, err = ratioEnv("OTEL_SAMPLE_RATIO", 1); err != nil {
		return nil, err
	}
	if cfg.BulkConcurrency, err = positiveIntEnv("BULK_CONCURRENCY", 32); err != nil {
		return nil, err
	}
	if cfg.HourlyHours, err = positiveIntEnv("HOURLY_HOURS", 24); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive, got %s", key, raw)
	}
	return d, nil
}

func positiveIntEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("invalid %s: must be at least 1, got %d", key, n)
	}
	return n, nil
}

func ratioEnv(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("invalid %s: must be between 0 and 1, got %s", key, raw)
	}
	return f, nil
}
