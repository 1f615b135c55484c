package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/dlf/format"
	"github.com/arloliu/dlf/internal/config"
	"github.com/arloliu/dlf/internal/fixture"
	"github.com/arloliu/dlf/source"
)

const gpsSamples = 37 + 3*184

var eventStreams = []fixture.Stream{
	{Structure: "uint32_t", ID: "button", Notes: "N/A", TypeSize: 4},
	{Structure: "fix;lat:double:0;lng:double:8", ID: "fix", Notes: "N/A", TypeSize: 16},
}

func testEvents() []byte {
	return fixture.Concat(
		fixture.Header(format.StreamEvent, 12, eventStreams),
		fixture.Event(0, 5, fixture.U32(1)),
		fixture.Event(1, 10, fixture.Concat(fixture.F64(35.5), fixture.F64(-120.5))),
	)
}

// writeTestRun writes the GPS run with two events into a new run directory.
func writeTestRun(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string][]byte{
		source.MetaFile:   fixture.GPSMeta(),
		source.PolledFile: fixture.GPSPolled(),
		source.EventFile:  testEvents(),
	}
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o600))
	}

	return dir
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	return executeContext(context.Background(), t, args...)
}

func executeContext(ctx context.Context, t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvVar, "")

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)

	return stdout.String(), err
}

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()

	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}
