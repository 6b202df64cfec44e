package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger("warn", "json", &buf)

	log.Info().Msg("hidden")
	log.Warn().Str("path", "/").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "shown", line["message"])
	assert.Equal(t, "/", line["path"])
	assert.Contains(t, line, "time")
}

func TestNewLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger("loud", "json", &buf)

	log.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Info().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger("info", "console", &buf)
	log.Info().Msg("hello board")

	assert.Contains(t, buf.String(), "hello board")
	assert.NotContains(t, buf.String(), `"message"`)
}
