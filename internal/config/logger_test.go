package config

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Production(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "face-api")

	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
	logger.Info("ready", "port", 3000)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "face-api", record["service"])
	assert.Equal(t, "ready", record["msg"])
}

func TestNewLogger_Development(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "development", "gateway")

	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	logger.Debug("detail")
	assert.Contains(t, buf.String(), "service=gateway")
	assert.Contains(t, buf.String(), "source=")
}
