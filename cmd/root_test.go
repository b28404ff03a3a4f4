package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/michaelpento.lv/bestroute/config"
	"github.com/michaelpento.lv/bestroute/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useConfig(t *testing.T, body string) string {
	t.Helper()
	t.Setenv(config.EnvRPCEndpoint, "")
	t.Setenv(config.EnvChainID, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "router.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfgFile, envFile = path, filepath.Join(dir, ".env")
	t.Cleanup(func() {
		cfgFile, envFile, cfg = "", ".env", nil
	})
	return dir
}

func TestSetupLoggerFollowsConfig(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "router.log")
	useConfig(t, `{"logging": {"level": "debug", "file": "`+logPath+`"}}`)

	require.NoError(t, setup(nil, nil))
	require.NotNil(t, cfg)
	assert.Equal(t, "debug", cfg.Logging.Level)

	utils.GetLogger().Debug("setup complete")
	_ = utils.GetLogger().Sync()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "setup complete")
}

func TestSetupRejectsBadLogLevel(t *testing.T) {
	useConfig(t, `{"logging": {"level": "loud"}}`)

	assert.Error(t, setup(nil, nil))
	assert.Nil(t, cfg)
}
