package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Borbofruto/Ruki/internal/config"
)

// execute runs the root command with a clean RUKI_* environment and
// returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{
		config.EnvCatalog, config.EnvArchiveVersion, config.EnvHistoryDB,
		config.EnvLogLevel, config.EnvLogFormat, config.EnvLogFile, config.EnvPrettyIR,
	} {
		t.Setenv(key, "")
	}

	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--env-file=" + t.TempDir() + "/none.env"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "ruki", cmd.Use)
	assert.Contains(t, cmd.Long, ".urp")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"convert", "detect", "models", "conversions", "build", "inspect", "validate", "history", "serve"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("catalog"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("history-db"))
}

func TestConvertCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	convertCmd, _, err := cmd.Find([]string{"convert"})
	require.NoError(t, err)

	for name, short := range map[string]string{"brand": "b", "conversion": "c", "model": "m", "out": "o"} {
		flag := convertCmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, short, flag.Shorthand)
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "models", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestMissingCatalogFile(t *testing.T) {
	_, err := execute(t, "models", "--catalog", t.TempDir()+"/missing.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
