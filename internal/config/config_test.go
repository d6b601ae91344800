package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Borbofruto/Ruki/internal/emit"
	"github.com/Borbofruto/Ruki/internal/logging"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, emit.DefaultArchiveVersion, cfg.ArchiveVersion)
	assert.True(t, cfg.PrettyIR)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		EnvCatalog:        " /etc/ruki/robots.cue ",
		EnvArchiveVersion: "5.21.0",
		EnvHistoryDB:      "history.db",
		EnvLogLevel:       "debug",
		EnvLogFormat:      "json",
		EnvLogFile:        "ruki.log",
		EnvPrettyIR:       "false",
	}))
	require.NoError(t, err)

	assert.Equal(t, Config{
		CatalogPath:    "/etc/ruki/robots.cue",
		ArchiveVersion: "5.21.0",
		HistoryDB:      "history.db",
		LogLevel:       logging.LevelDebug,
		LogFormat:      logging.FormatJSON,
		LogFile:        "ruki.log",
		PrettyIR:       false,
	}, cfg)
}

func TestFromEnvInvalid(t *testing.T) {
	for key, value := range map[string]string{
		EnvLogLevel:  "loud",
		EnvLogFormat: "yaml",
		EnvPrettyIR:  "sometimes",
	} {
		_, err := FromEnv(envMap(map[string]string{key: value}))
		require.Error(t, err, key)
		assert.Contains(t, err.Error(), key)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("RUKI_ARCHIVE_VERSION=5.11.0\nRUKI_LOG_LEVEL=warn\n"), 0o644))

	t.Setenv(EnvArchiveVersion, "")
	os.Unsetenv(EnvArchiveVersion)
	t.Setenv(EnvLogLevel, "error")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "5.11.0", cfg.ArchiveVersion)
	assert.Equal(t, logging.LevelError, cfg.LogLevel, "existing variables win over the file")
}

func TestLoadMissingEnvFile(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	_, err := Load(filepath.Join(t.TempDir(), "none.env"))
	assert.NoError(t, err)
}
