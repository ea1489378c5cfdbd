package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/battletracker/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "json"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_Console(t *testing.T) {
	cfg := config.LoggingConfig{Level: "debug", Format: "console"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_JSONCarriesServiceField(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json"}, WithOutput(zapcore.AddSync(&buf)))
	require.NoError(t, err)

	logger.Debug("dropped")
	logger.Info("fight created", FightFields("Goblin Ambush", 2)...)
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "debug is below the configured level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "fight created", entry["msg"])
	assert.Equal(t, ServiceName, entry["service"])
	assert.Equal(t, "Goblin Ambush", entry["fight"])
	assert.Equal(t, float64(2), entry["characters"])
}

func TestNewLogger_ConsoleIsReadable(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LoggingConfig{Level: "debug", Format: "console"}, WithOutput(zapcore.AddSync(&buf)))
	require.NoError(t, err)

	logger.Debug("rolled", zap.Int("total", 17))
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.Contains(t, out, "rolled")
	assert.Contains(t, out, `"total": 17`)
	assert.Contains(t, out, "logging_test.go", "console output reports the caller")
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := config.LoggingConfig{Level: "trace", Format: "json"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "xml"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_AllLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := config.LoggingConfig{Level: level, Format: "json"}
		logger, err := NewLogger(cfg)
		require.NoError(t, err, "level %q should be valid", level)
		assert.NotNil(t, logger)
	}
}

func TestSessionLogger_AddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := SessionLogger(zap.New(core), "abc", "127.0.0.1:5000")

	logger.Info("hello", FightFields("Goblin Ambush", 3)...)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "session", entries[0].LoggerName)
	fields := entries[0].ContextMap()
	assert.Equal(t, "abc", fields["session_id"])
	assert.Equal(t, "127.0.0.1:5000", fields["remote_addr"])
	assert.Equal(t, "Goblin Ambush", fields["fight"])
	assert.Equal(t, int64(3), fields["characters"])
}

func TestCharacterFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	zap.New(core).Debug("damage", CharacterFields("id-1", "Goblin 2", 3, 7)...)

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "id-1", fields["character_id"])
	assert.Equal(t, "Goblin 2", fields["character"])
	assert.Equal(t, int64(3), fields["hp"])
	assert.Equal(t, int64(7), fields["max_hp"])
}
