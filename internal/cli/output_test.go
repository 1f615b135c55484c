package cli

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dlf/decoder"
	"github.com/arloliu/dlf/structure"
)

func TestGetExitCode(t *testing.T) {
	require.Equal(t, ExitSuccess, GetExitCode(nil))
	require.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
	require.Equal(t, ExitUsage, GetExitCode(NewExitError(ExitUsage, "bad flag")))

	err := WrapExitError(ExitFailure, "open run", errors.New("not found"))
	require.Equal(t, "open run: not found", err.Error())
	require.EqualError(t, errors.Unwrap(err), "not found")
}

func TestSampleWriter(t *testing.T) {
	ts := time.Date(2025, 11, 18, 17, 7, 31, 500_000_000, time.UTC)
	r := record{
		Time: ts,
		Kind: kindEvent,
		Sample: decoder.Sample{
			Value:    structure.Record{{Name: "lat", Value: 35.5}, {Name: "lng", Value: -120.5}},
			StreamID: "fix",
			Tick:     5,
		},
	}

	tests := []struct {
		format string
		want   string
	}{
		{format: "text", want: "2025-11-18T17:07:31.500Z 5 event fix={\"lat\":35.5,\"lng\":-120.5}\n"},
		{format: "csv", want: "tick,time,kind,stream,value\n5,2025-11-18T17:07:31.500Z,event,fix,\"{\"\"lat\"\":35.5,\"\"lng\"\":-120.5}\"\n"},
		{format: "json", want: "{\"tick\":5,\"time\":\"2025-11-18T17:07:31.5Z\",\"kind\":\"event\",\"stream\":\"fix\",\"value\":{\"lat\":35.5,\"lng\":-120.5}}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			w := newSampleWriter(&buf, tt.format)
			require.NoError(t, w.Write(r))
			require.NoError(t, w.Flush())
			require.Equal(t, tt.want, buf.String())
		})
	}
}

func TestSampleWriter_NonFinite(t *testing.T) {
	ts := time.Date(2025, 11, 18, 17, 7, 31, 0, time.UTC)
	records := []record{
		{Time: ts, Kind: kindPolled, Sample: decoder.Sample{StreamID: "gpsData.lat", Value: math.NaN()}},
		{Time: ts, Kind: kindEvent, Sample: decoder.Sample{
			StreamID: "fix",
			Tick:     1,
			Value:    structure.Record{{Name: "lat", Value: math.Inf(-1)}, {Name: "lng", Value: 2.0}},
		}},
	}

	var buf bytes.Buffer
	w := newSampleWriter(&buf, "json")
	for _, r := range records {
		require.NoError(t, w.Write(r))
	}
	require.NoError(t, w.Flush())

	want := "{\"tick\":0,\"time\":\"2025-11-18T17:07:31Z\",\"kind\":\"polled\",\"stream\":\"gpsData.lat\",\"value\":\"NaN\"}\n" +
		"{\"tick\":1,\"time\":\"2025-11-18T17:07:31Z\",\"kind\":\"event\",\"stream\":\"fix\",\"value\":{\"lat\":\"-Inf\",\"lng\":2}}\n"
	require.Equal(t, want, buf.String())
}
