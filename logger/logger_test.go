package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	require.NoError(t, Init(Config{Level: "warn"}))
	assert.Equal(t, zerolog.WarnLevel, GetLogger().GetLevel())

	require.NoError(t, Init(Config{Level: "error", Debug: true}))
	assert.Equal(t, zerolog.DebugLevel, GetLogger().GetLevel())

	assert.Error(t, Init(Config{Level: "loud"}))
}

func TestWithComponent(t *testing.T) {
	require.NoError(t, Init(Config{Level: "info"}))

	var buf bytes.Buffer
	SetOutput(&buf)

	l := WithComponent("pipeline")
	l.Info().Int("rows", 3).Msg("classified")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "pipeline", entry["component"])
	assert.Equal(t, "classified", entry["message"])
	assert.EqualValues(t, 3, entry["rows"])
}

func TestDefaultConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DEBUG", "yes")
	t.Setenv("LOG_OUTPUT", "")

	cfg := DefaultConfig()

	assert.Equal(t, "debug", cfg.Level)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "stderr", cfg.Output)
}

func TestPackageLevelEvents(t *testing.T) {
	require.NoError(t, Init(Config{Level: "info"}))

	var buf bytes.Buffer
	SetOutput(&buf)

	Info().Str("driver", "sqlite").Msg("configuration loaded")
	Error().Msg("fatal error")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "sqlite", entry["driver"])

	require.NoError(t, json.Unmarshal(lines[1], &entry))
	assert.Equal(t, "error", entry["level"])
}
