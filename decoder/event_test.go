package decoder

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dlf/errs"
	"github.com/arloliu/dlf/format"
	"github.com/arloliu/dlf/internal/fixture"
	"github.com/arloliu/dlf/section"
)

var eventStreams = []fixture.Stream{
	{Structure: "uint8_t", ID: "button", TypeSize: 1},
	{Structure: "!dump", ID: "dump", TypeSize: 4},
	{Structure: "fault;code:uint16_t:0;axis:int8_t:2", ID: "fault", TypeSize: 4},
}

func eventLog(records ...[]byte) []byte {
	return fixture.Concat(append([][]byte{fixture.Header(format.StreamEvent, 100, eventStreams)}, records...)...)
}

func newEvents(t *testing.T, data []byte) *EventDecoder {
	t.Helper()

	h, err := section.ParseLogfileHeader(data, format.StreamEvent)
	require.NoError(t, err)

	dec, err := NewEventDecoder(&h)
	require.NoError(t, err)

	return dec
}

func TestEventDecoder_Decode(t *testing.T) {
	records := [][]byte{
		fixture.Event(0, 7, fixture.U8(1)),
		fixture.Event(1, 8, []byte{1, 2, 3, 4}),
		fixture.Event(2, 3, fixture.Concat(fixture.U16(500), []byte{0xfe, 0})),
		fixture.Event(0, 9, fixture.U8(0)),
	}
	dec := newEvents(t, eventLog(records...))

	res, err := dec.Decode()
	require.NoError(t, err)
	require.False(t, res.Truncated)
	require.Equal(t, len(dec.Header().Data), res.Consumed)

	require.Len(t, res.Samples, 3, "opaque records are consumed but not emitted")
	require.Equal(t, Sample{Value: uint8(1), StreamID: "button", StreamIndex: 0, Tick: 7}, res.Samples[0])

	fault := res.Samples[1]
	require.Equal(t, "fault", fault.StreamID)
	require.Equal(t, uint64(3), fault.Tick, "file order, not tick order")
	require.JSONEq(t, `{"code":500,"axis":-2}`, mustJSON(t, fault.Value))

	require.Equal(t, uint64(9), res.Samples[2].Tick)
}

func TestEventDecoder_PartialTrailingRecord(t *testing.T) {
	complete := eventLog(fixture.Event(0, 1, fixture.U8(1)), fixture.Event(2, 2, fixture.U32(0)))
	dec := newEvents(t, complete)
	recordsLen := len(dec.Header().Data)

	full, err := dec.Decode()
	require.NoError(t, err)

	for cut := 1; cut < 14; cut++ {
		dec := newEvents(t, complete[:len(complete)-cut])

		res, err := dec.Decode()
		require.NoError(t, err, "cut %d", cut)
		require.True(t, res.Truncated)
		require.Equal(t, full.Samples[:1], res.Samples)
		require.Equal(t, recordsLen-14, res.Consumed)
	}
}

func TestEventDecoder_HugeTypeSize(t *testing.T) {
	streams := []fixture.Stream{
		{Structure: "uint8_t", ID: "button", TypeSize: 1},
		{Structure: "!frame", ID: "frame", TypeSize: math.MaxUint32},
	}
	data := fixture.Concat(
		fixture.Header(format.StreamEvent, 0, streams),
		fixture.Event(0, 4, fixture.U8(1)),
		fixture.Event(1, 5, []byte{1, 2, 3}),
	)
	dec := newEvents(t, data)

	res, err := dec.Decode()
	require.NoError(t, err)
	require.True(t, res.Truncated)
	require.Equal(t, []Sample{{Value: uint8(1), StreamID: "button", StreamIndex: 0, Tick: 4}}, res.Samples)
	require.Equal(t, 11, res.Consumed)
}

func TestEventDecoder_InvalidStreamIndex(t *testing.T) {
	dec := newEvents(t, eventLog(
		fixture.Event(0, 1, fixture.U8(1)),
		fixture.Event(3, 2, fixture.U8(1)),
	))

	_, err := dec.Decode()
	require.ErrorIs(t, err, errs.ErrInvalidStreamIndex)

	var got []Sample
	var lastErr error
	for s, err := range dec.All() {
		if err != nil {
			lastErr = err
			continue
		}
		got = append(got, s)
	}
	require.Len(t, got, 1)
	require.ErrorIs(t, lastErr, errs.ErrInvalidStreamIndex)
}

func TestEventDecoder_Options(t *testing.T) {
	records := [][]byte{
		fixture.Event(0, 5, fixture.U8(1)),
		fixture.Event(2, 6, fixture.U32(9)),
		fixture.Event(0, 7, fixture.U8(2)),
	}
	dec := newEvents(t, eventLog(records...))

	t.Run("Tick range", func(t *testing.T) {
		res, err := dec.Decode(WithStartTick(6), WithEndTick(7))
		require.NoError(t, err)
		require.Len(t, res.Samples, 1)
		require.Equal(t, "fault", res.Samples[0].StreamID)
		require.Equal(t, len(dec.Header().Data), res.Consumed)
	})

	t.Run("Stream filter", func(t *testing.T) {
		res, err := dec.Decode(WithStreams("button"))
		require.NoError(t, err)
		require.Len(t, res.Samples, 2)
	})

	t.Run("Resume from byte offset", func(t *testing.T) {
		first := len(records[0])

		res, err := dec.Decode(WithByteOffset(first))
		require.NoError(t, err)
		require.Len(t, res.Samples, 2)
		require.Equal(t, uint64(6), res.Samples[0].Tick)
		require.Equal(t, len(dec.Header().Data), res.Consumed)
	})

	t.Run("Byte offset beyond data", func(t *testing.T) {
		_, err := dec.Decode(WithByteOffset(len(dec.Header().Data) + 1))
		require.ErrorIs(t, err, errs.ErrInvalidByteOffset)

		_, err = dec.Decode(WithByteOffset(-1))
		require.ErrorIs(t, err, errs.ErrInvalidByteOffset)
	})

	t.Run("Early stop", func(t *testing.T) {
		n := 0
		for range dec.All() {
			n++
			break
		}
		require.Equal(t, 1, n)
	})
}

func TestEventDecoder_Empty(t *testing.T) {
	dec := newEvents(t, fixture.GPSEvents())

	res, err := dec.Decode()
	require.NoError(t, err)
	require.Empty(t, res.Samples)
	require.Zero(t, res.Consumed)
	require.False(t, res.Truncated)
}

func TestNewEventDecoder_PolledHeader(t *testing.T) {
	h, err := section.ParseLogfileHeader(fixture.GPSPolled(), format.StreamPolled)
	require.NoError(t, err)

	_, err = NewEventDecoder(&h)
	require.ErrorIs(t, err, errs.ErrNotEventStream)
}
