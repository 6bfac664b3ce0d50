package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, &config.Config{Environment: "production", LogLevel: slog.LevelInfo})

	WithWorldID(l, "w-1").Info("advanced", "minutes", 15)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "advanced", entry["msg"])
	assert.Equal(t, "w-1", entry["world_id"])
	assert.Equal(t, float64(15), entry["minutes"])
}

func TestNew_DevelopmentWritesText(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, &config.Config{Environment: "development", LogLevel: slog.LevelWarn})

	l.Info("hidden")
	WithError(l, errors.New("boom")).Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, "msg=shown"))
	assert.Contains(t, out, "error=boom")
}
