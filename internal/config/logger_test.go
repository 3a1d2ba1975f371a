package config

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: "warn", LogFormat: "json"}
	log := cfg.newLogger(&buf, "weatherdash", "1.2.3")

	log.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("kept")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "weatherdash", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Contains(t, entry, "time")
}

func TestNewLogger_UnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: "chatty"}
	log := cfg.newLogger(&buf, "weatherdash", "dev")

	log.Debug().Msg("dropped")
	assert.Zero(t, buf.Len())
	log.Info().Msg("kept")
	assert.NotZero(t, buf.Len())
}

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: "info", LogFormat: "console"}
	log := cfg.newLogger(&buf, "weatherdash", "dev")

	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
