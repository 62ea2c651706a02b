package logger

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	log, err := New(Config{ServiceName: "userapp", Level: "debug", OutputPath: path})
	require.NoError(t, err)

	log.Ctx(context.Background()).Info("hello")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"service":"userapp"`)
}

func TestNewFallsBackToInfo(t *testing.T) {
	log, err := New(Config{Level: "loud"})
	require.NoError(t, err)

	assert.NotNil(t, log.Zap())
	assert.NoError(t, NewNop().Close())
}

func TestNewSlogLevel(t *testing.T) {
	assert.True(t, NewSlog("debug").Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, NewSlog("warn").Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, NewSlog("nonsense").Enabled(context.Background(), slog.LevelInfo))
}
