package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerWritesFileAtLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bestroute.log")

	logger, err := InitLogger(LogOptions{Level: "warn", File: path})
	require.NoError(t, err)
	assert.Same(t, logger, GetLogger())

	logger.Info("pool cache warmed")
	logger.Warn("quote failed")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "quote failed")
	assert.NotContains(t, string(data), "pool cache warmed")
}

func TestInitLoggerDebugOverridesLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	logger, err := InitLogger(LogOptions{Level: "error", File: path, Debug: true})
	require.NoError(t, err)

	logger.Debug("cycle started")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cycle started")
}

func TestInitLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := InitLogger(LogOptions{Level: "loud"})
	assert.Error(t, err)
}
