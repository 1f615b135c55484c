package cli

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode_CSV(t *testing.T) {
	out, err := execute(t, "decode", writeTestRun(t), "--end", "11", "--format", "csv")
	require.NoError(t, err)

	newGoldie(t).Assert(t, "decode_csv", []byte(out))
}

func TestDecode_TextDownsample(t *testing.T) {
	out, err := execute(t, "decode", writeTestRun(t),
		"--end", "101",
		"--downsample", "50",
		"--streams", "gpsData.satellites,gpsData.alt,button",
	)
	require.NoError(t, err)

	newGoldie(t).Assert(t, "decode_downsample", []byte(out))
}

func TestDecode_JSON(t *testing.T) {
	out, err := execute(t, "decode", writeTestRun(t), "--format", "json")
	require.NoError(t, err)

	lines := 0
	prev := uint64(0)
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var rec jsonRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		require.GreaterOrEqual(t, rec.Tick, prev)
		prev = rec.Tick
		lines++
	}
	require.NoError(t, scanner.Err())
	require.Equal(t, gpsSamples+2, lines)
}

func TestDecode_KindFilters(t *testing.T) {
	dir := writeTestRun(t)

	out, err := execute(t, "decode", dir, "--events")
	require.NoError(t, err)
	require.Equal(t,
		"2025-11-18T17:07:31.500Z 5 event button=1\n"+
			"2025-11-18T17:07:32.000Z 10 event fix={\"lat\":35.5,\"lng\":-120.5}\n",
		out)

	out, err = execute(t, "decode", dir, "--polled", "--start", "1830")
	require.NoError(t, err)
	require.Equal(t, 3, strings.Count(out, "\n"))
}

func TestDecode_HTTP(t *testing.T) {
	dir := writeTestRun(t)
	srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
	t.Cleanup(srv.Close)

	out, err := execute(t, "decode", srv.URL, "--end", "11", "--format", "csv")
	require.NoError(t, err)

	newGoldie(t).Assert(t, "decode_csv", []byte(out))
}

func TestDecode_Packed(t *testing.T) {
	dir := writeTestRun(t)

	_, err := execute(t, "pack", dir, "--codec", "s2")
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, "polled.dlf.s2"))
	require.NoFileExists(t, filepath.Join(dir, "polled.dlf"))

	out, err := execute(t, "decode", dir, "--end", "11", "--format", "csv")
	require.NoError(t, err)

	newGoldie(t).Assert(t, "decode_csv", []byte(out))
}
