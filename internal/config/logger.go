package config

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger from LogLevel and LogFormat. An
// unknown level falls back to info.
func (c *Config) NewLogger(service, version string) zerolog.Logger {
	return c.newLogger(os.Stdout, service, version)
}

func (c *Config) newLogger(out io.Writer, service, version string) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if c.LogFormat == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Str("version", version).
		Logger()
}
