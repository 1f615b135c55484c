package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "dlf", cmd.Use)
	assert.Contains(t, cmd.Long, "data logger firmware")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"inspect", "decode", "follow", "ingest", "runs", "pack"}

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

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	levelFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, levelFlag)
	assert.Equal(t, "info", levelFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("log-format"))
}

func TestRoot_UsageErrors(t *testing.T) {
	dir := writeTestRun(t)

	badConfig := filepath.Join(t.TempDir(), "dlf.yaml")
	require.NoError(t, os.WriteFile(badConfig, []byte("log: {level: loud}"), 0o600))

	tests := []struct {
		name string
		args []string
	}{
		{name: "invalid format", args: []string{"inspect", dir, "--format", "xml"}},
		{name: "invalid log level", args: []string{"inspect", dir, "--log-level", "loud"}},
		{name: "invalid config", args: []string{"inspect", dir, "--config", badConfig}},
		{name: "no run", args: []string{"inspect"}},
		{name: "unknown stream", args: []string{"decode", dir, "--streams", "gpsData.speed"}},
		{name: "zero downsample", args: []string{"decode", dir, "--downsample", "0"}},
		{name: "polled and events", args: []string{"decode", dir, "--polled", "--events"}},
		{name: "bad run id", args: []string{"ingest", dir, "--run-id", "run-1"}},
		{name: "bad codec", args: []string{"pack", dir, "--codec", "gzip"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			require.Equal(t, ExitUsage, GetExitCode(err), "error: %v", err)
		})
	}
}

func TestRoot_ConfigSource(t *testing.T) {
	dir := writeTestRun(t)

	cfg := filepath.Join(t.TempDir(), "dlf.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("source:\n  dir: "+dir+"\n"), 0o600))

	out, err := execute(t, "decode", "--config", cfg, "--end", "1", "--streams", "gpsData.satellites")
	require.NoError(t, err)
	require.Equal(t, "2025-11-18T17:07:31.000Z 0 polled gpsData.satellites=3\n", out)
}

func TestRoot_MissingRun(t *testing.T) {
	_, err := execute(t, "inspect", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	require.Equal(t, ExitFailure, GetExitCode(err))
}
