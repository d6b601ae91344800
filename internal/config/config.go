// Package config resolves runtime settings from an optional .env file and
// RUKI_* environment variables. Command-line flags are applied on top by
// the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Borbofruto/Ruki/internal/emit"
	"github.com/Borbofruto/Ruki/internal/logging"
)

// Environment variables.
const (
	EnvCatalog        = "RUKI_CATALOG"
	EnvArchiveVersion = "RUKI_ARCHIVE_VERSION"
	EnvHistoryDB      = "RUKI_HISTORY_DB"
	EnvLogLevel       = "RUKI_LOG_LEVEL"
	EnvLogFormat      = "RUKI_LOG_FORMAT"
	EnvLogFile        = "RUKI_LOG_FILE"
	EnvPrettyIR       = "RUKI_PRETTY_IR"
)

// Config holds resolved settings.
type Config struct {
	// CatalogPath is a CUE catalog file; empty selects the built-in one.
	CatalogPath string

	// ArchiveVersion is stamped into generated program archives.
	ArchiveVersion string

	// HistoryDB is the SQLite file for conversion history; empty disables
	// recording.
	HistoryDB string

	LogLevel  logging.Level
	LogFormat logging.Format
	LogFile   string

	// PrettyIR indents .ruki documents written by build.
	PrettyIR bool
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		ArchiveVersion: emit.DefaultArchiveVersion,
		LogLevel:       logging.LevelInfo,
		LogFormat:      logging.FormatText,
		PrettyIR:       true,
	}
}

// Load reads envFiles (".env" when none are given) into the process
// environment without overriding variables already set, then resolves
// the configuration. Missing env files are ignored.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv resolves the configuration from getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	env := func(key string) string { return strings.TrimSpace(getenv(key)) }

	cfg.CatalogPath = env(EnvCatalog)
	cfg.HistoryDB = env(EnvHistoryDB)
	cfg.LogFile = env(EnvLogFile)
	if v := env(EnvArchiveVersion); v != "" {
		cfg.ArchiveVersion = v
	}

	var err error
	if v := env(EnvLogLevel); v != "" {
		if cfg.LogLevel, err = logging.ParseLevel(v); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", EnvLogLevel, err)
		}
	}
	if v := env(EnvLogFormat); v != "" {
		if cfg.LogFormat, err = logging.ParseFormat(v); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", EnvLogFormat, err)
		}
	}
	if v := env(EnvPrettyIR); v != "" {
		if cfg.PrettyIR, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", EnvPrettyIR, err)
		}
	}
	return cfg, nil
}
