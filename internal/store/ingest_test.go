package store

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dlf/format"
	"github.com/arloliu/dlf/internal/fixture"
)

func TestIngest_GPS(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := newRun(t, fixture.GPSMeta(), fixture.GPSPolled(), gpsEventLog())
	stats, err := s.Ingest(ctx, IngestRequest{RunID: testRunID, DeviceUID: testDevice}, run)
	require.NoError(t, err)
	require.True(t, stats.Created)
	require.Equal(t, gpsSamples, stats.Polled)
	require.Equal(t, 3, stats.Events)
	require.False(t, stats.Truncated)

	info, err := s.Run(ctx, testRunID)
	require.NoError(t, err)
	require.Equal(t, testDevice, info.DeviceUID)
	require.Equal(t, uint32(fixture.GPSEpochTimeS), info.EpochTimeS)
	require.Equal(t, uint32(fixture.GPSTickBaseUs), info.TickBaseUs)
	require.Equal(t, "1.5", info.Meta)
	require.Equal(t, len(gpsEventLog())-len(fixture.Header(format.StreamEvent, 0, buttonStreams)), info.EventOffset)
	require.False(t, info.Active)

	rows, err := s.Data(ctx, testRunID, Query{Kind: KindPolled, StreamID: "gpsData.satellites"})
	require.NoError(t, err)
	require.Len(t, rows, 37)
	require.Equal(t, Row{Kind: KindPolled, StreamID: "gpsData.satellites", Data: "3", Tick: 0}, rows[0])
	require.Equal(t, uint64(1800), rows[36].Tick)

	rows, err = s.Data(ctx, testRunID, Query{StreamID: "gpsData.lat", EndTick: 1})
	require.NoError(t, err)
	require.Equal(t, []Row{{Kind: KindPolled, StreamID: "gpsData.lat", Data: "35.3053619", Tick: 0}}, rows)
}

func TestIngest_Reingest(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	req := IngestRequest{RunID: testRunID, DeviceUID: testDevice}

	run := newRun(t, fixture.GPSMeta(), fixture.GPSPolled(), gpsEventLog())
	_, err := s.Ingest(ctx, req, run)
	require.NoError(t, err)

	stats, err := s.Ingest(ctx, req, run)
	require.NoError(t, err)
	require.Equal(t, IngestStats{}, stats)

	rows, err := s.Data(ctx, testRunID, Query{})
	require.NoError(t, err)
	require.Len(t, rows, gpsSamples+3)
}

func TestIngest_Incremental(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	full := fixture.GPSPolled()
	headerLen := len(fixture.Header(format.StreamPolled, fixture.GPSTickSpan, fixture.GPSStreams))
	events := gpsEventLog()
	eventHeaderLen := len(fixture.Header(format.StreamEvent, 0, buttonStreams))

	cuts := []struct {
		polled int
		events int
	}{
		{polled: headerLen, events: eventHeaderLen},
		{polled: headerLen + 1001, events: eventHeaderLen + 5},
		{polled: headerLen + 2500, events: eventHeaderLen + 14},
		{polled: headerLen + 5003, events: len(events) - 1},
		{polled: len(full), events: len(events)},
	}

	polled, recorded := 0, 0
	for i, cut := range cuts {
		active := i < len(cuts)-1
		run := newRun(t, fixture.GPSMeta(), full[:cut.polled], events[:cut.events])

		stats, err := s.Ingest(ctx, IngestRequest{RunID: testRunID, DeviceUID: testDevice, Active: active}, run)
		require.NoError(t, err, "cut %d", i)
		require.Equal(t, i == 0, stats.Created)
		polled += stats.Polled
		recorded += stats.Events

		info, err := s.Run(ctx, testRunID)
		require.NoError(t, err)
		require.Equal(t, active, info.Active)
	}

	require.Equal(t, gpsSamples, polled)
	require.Equal(t, 3, recorded)

	rows, err := s.Data(ctx, testRunID, Query{Kind: KindPolled})
	require.NoError(t, err)
	require.Len(t, rows, gpsSamples)

	rows, err = s.Data(ctx, testRunID, Query{Kind: KindEvent})
	require.NoError(t, err)
	require.Equal(t, []Row{
		{Kind: KindEvent, StreamID: "button", Data: "1", Tick: 12},
		{Kind: KindEvent, StreamID: "fix", Data: `{"lat":35.5,"lng":-120.5}`, Tick: 40},
		{Kind: KindEvent, StreamID: "button", Data: "2", Tick: 900},
	}, rows)
}

func TestIngest_MissingStreams(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	stats, err := s.Ingest(ctx, IngestRequest{RunID: testRunID, DeviceUID: testDevice, Active: true},
		newRun(t, fixture.GPSMeta(), nil, nil))
	require.NoError(t, err)
	require.True(t, stats.Created)
	require.Zero(t, stats.Polled)
	require.Zero(t, stats.Events)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.True(t, runs[0].Active)
}

func TestIngest_Errors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	run := newRun(t, fixture.GPSMeta(), fixture.GPSPolled(), nil)

	_, err := s.Ingest(ctx, IngestRequest{RunID: "run-1", DeviceUID: testDevice}, run)
	require.ErrorIs(t, err, ErrInvalidRunID)

	_, err = s.Ingest(ctx, IngestRequest{RunID: testRunID}, run)
	require.ErrorIs(t, err, ErrMissingDevice)

	_, err = s.Ingest(ctx, IngestRequest{RunID: testRunID, DeviceUID: testDevice}, run)
	require.NoError(t, err)

	_, err = s.Ingest(ctx, IngestRequest{RunID: testRunID, DeviceUID: "logger-08"}, run)
	require.ErrorIs(t, err, ErrDeviceMismatch)

	// The failed ingest rolled back: no device row was left behind for logger-08.
	var devices int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM devices").Scan(&devices))
	require.Equal(t, 1, devices)
}

func TestIngest_EventOffsetBeyondData(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	req := IngestRequest{RunID: testRunID, DeviceUID: testDevice}

	_, err := s.Ingest(ctx, req, newRun(t, fixture.GPSMeta(), nil, gpsEventLog()))
	require.NoError(t, err)

	// A shorter event log than already ingested means the file was replaced.
	_, err = s.Ingest(ctx, req, newRun(t, fixture.GPSMeta(), nil, eventLog()))
	require.Error(t, err)
}

func TestIngest_UppercaseRunID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.Ingest(ctx, IngestRequest{RunID: "0F8FAD5B-D9CB-469F-A165-70867728950E", DeviceUID: testDevice},
		newRun(t, fixture.GPSMeta(), nil, nil))
	require.NoError(t, err)

	info, err := s.Run(ctx, "0F8FAD5B-D9CB-469F-A165-70867728950E")
	require.NoError(t, err)
	require.Equal(t, testRunID, info.UUID)
}

func TestIngest_NonFiniteValues(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	events := eventLog(
		fixture.Event(1, 3, fixture.Concat(fixture.F64(math.NaN()), fixture.F64(-120.5))),
		fixture.Event(1, 4, fixture.Concat(fixture.F64(math.Inf(1)), fixture.F64(math.Inf(-1)))),
	)
	run := newRun(t, fixture.GPSMeta(), nil, events)

	stats, err := s.Ingest(ctx, IngestRequest{RunID: testRunID, DeviceUID: testDevice}, run)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Events)

	rows, err := s.Data(ctx, testRunID, Query{Kind: KindEvent, StreamID: "fix"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, `{"lat":"NaN","lng":-120.5}`, rows[0].Data)
	require.Equal(t, `{"lat":"+Inf","lng":"-Inf"}`, rows[1].Data)
}

func TestIngest_DuplicateStreamIDs(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	streams := []fixture.Stream{
		{Structure: "uint8_t", ID: "speed", TypeSize: 1, Interval: 1},
		{Structure: "uint8_t", ID: "speed", TypeSize: 1, Interval: 2},
	}
	polled := fixture.Concat(
		fixture.Header(format.StreamPolled, 4, streams),
		[]byte{10, 20, 11, 12, 22, 13},
	)
	run := newRun(t, fixture.GPSMeta(), polled, nil)

	stats, err := s.Ingest(ctx, IngestRequest{RunID: testRunID, DeviceUID: testDevice}, run)
	require.NoError(t, err)
	require.Equal(t, 4, stats.Polled)
	require.Equal(t, 2, stats.Duplicates)

	rows, err := s.Data(ctx, testRunID, Query{Kind: KindPolled, StreamID: "speed"})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for i, want := range []string{"10", "11", "12", "13"} {
		require.Equal(t, want, rows[i].Data)
		require.Equal(t, uint64(i), rows[i].Tick)
	}

	stats, err = s.Ingest(ctx, IngestRequest{RunID: testRunID, DeviceUID: testDevice}, run)
	require.NoError(t, err)
	require.Equal(t, IngestStats{}, stats)
}
