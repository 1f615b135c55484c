package store

import (
	"database/sql"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dlf"
	"github.com/arloliu/dlf/format"
	"github.com/arloliu/dlf/internal/fixture"
)

const (
	testRunID  = "0f8fad5b-d9cb-469f-a165-70867728950e"
	testDevice = "logger-07"

	gpsSamples = 37 + 3*184
)

var buttonStreams = []fixture.Stream{
	{Structure: "uint32_t", ID: "button", Notes: "N/A", TypeSize: 4},
	{Structure: "fix;lat:double:0;lng:double:8", ID: "fix", Notes: "N/A", TypeSize: 16},
}

// createTestStore opens a store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func eventLog(records ...[]byte) []byte {
	return append(fixture.Header(format.StreamEvent, 0, buttonStreams), fixture.Concat(records...)...)
}

func gpsEventLog() []byte {
	return eventLog(
		fixture.Event(0, 12, fixture.U32(1)),
		fixture.Event(1, 40, fixture.Concat(fixture.F64(35.5), fixture.F64(-120.5))),
		fixture.Event(0, 900, fixture.U32(2)),
	)
}

func newRun(t *testing.T, meta, polled, events []byte) *dlf.Run {
	t.Helper()

	run, err := dlf.NewRun(meta, polled, events)
	require.NoError(t, err)

	return run
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	s, err := Open(path)
	require.NoError(t, err)

	var mode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	require.Equal(t, "wal", mode)

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	require.Equal(t, currentSchemaVersion, version)
	require.NoError(t, s.Close())

	// Reopening applies the schema again without error.
	s, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestOpen_NewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Open(path)
	require.ErrorContains(t, err, "newer than supported")
}

func TestStore_Close_Nil(t *testing.T) {
	var s Store
	require.NoError(t, s.Close())
}

func TestEncodeValue(t *testing.T) {
	run := newRun(t, fixture.GPSMeta(), nil, gpsEventLog())
	res, err := run.Events()
	require.NoError(t, err)
	require.Len(t, res.Samples, 3)

	got, err := encodeValue(res.Samples[1].Value)
	require.NoError(t, err)
	require.Equal(t, `{"lat":35.5,"lng":-120.5}`, got)

	tests := []struct {
		in   any
		want string
	}{
		{in: uint32(7), want: "7"},
		{in: int16(-3), want: "-3"},
		{in: 1.5, want: "1.5"},
		{in: float32(0.1), want: "0.1"},
		{in: math.NaN(), want: "NaN"},
		{in: math.Inf(-1), want: "-Inf"},
	}
	for _, tt := range tests {
		got, err := encodeValue(tt.in)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
}
