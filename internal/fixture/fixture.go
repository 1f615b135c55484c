// Package fixture builds DLF byte streams for tests.
//
// It writes exactly the layout the logger firmware produces, so decoders can be
// tested against synthetic runs. It is not a general purpose DLF writer.
package fixture

import (
	"math"

	"github.com/arloliu/dlf/endian"
	"github.com/arloliu/dlf/format"
)

// Magic is the magic number written by the logger firmware.
const Magic = 0x8414

var engine = endian.GetLittleEndianEngine()

// Stream describes one stream of a logfile header.
type Stream struct {
	Structure string
	ID        string
	Notes     string
	TypeSize  uint32
	Interval  uint64 // polled only
	Phase     uint64 // polled only
}

// Meta describes a meta stream.
type Meta struct {
	EpochTimeS uint32
	TickBaseUs uint32
	Structure  string
	Payload    []byte
}

// MetaBytes encodes a meta stream. meta_size is len(m.Payload).
func MetaBytes(m Meta) []byte {
	var b []byte
	b = engine.AppendUint16(b, Magic)
	b = engine.AppendUint32(b, m.EpochTimeS)
	b = engine.AppendUint32(b, m.TickBaseUs)
	b = appendCString(b, m.Structure)
	b = engine.AppendUint32(b, uint32(len(m.Payload))) //nolint:gosec
	b = append(b, m.Payload...)

	return b
}

// Header encodes a logfile header followed by no data.
func Header(kind format.StreamType, tickSpan uint64, streams []Stream) []byte {
	var b []byte
	b = engine.AppendUint16(b, Magic)
	b = append(b, byte(kind))
	b = engine.AppendUint64(b, tickSpan)
	b = engine.AppendUint16(b, uint16(len(streams))) //nolint:gosec

	for _, s := range streams {
		b = appendCString(b, s.Structure)
		b = appendCString(b, s.ID)
		b = appendCString(b, s.Notes)
		b = engine.AppendUint32(b, s.TypeSize)
		if kind == format.StreamPolled {
			b = engine.AppendUint64(b, s.Interval)
			b = engine.AppendUint64(b, s.Phase)
		}
	}

	return b
}

// ValueFunc returns the encoded sample of stream idx at tick. The result must be
// exactly the stream's type size.
type ValueFunc func(idx int, tick uint64) []byte

// PolledData encodes the polled data region for ticks [0, tickSpan) by walking
// every tick and appending the samples of each due stream in declaration order,
// the same way the logger samples them.
func PolledData(tickSpan uint64, streams []Stream, value ValueFunc) []byte {
	var b []byte
	for tick := uint64(0); tick < tickSpan; tick++ {
		for i, s := range streams {
			if (tick+s.Phase)%s.Interval == 0 {
				b = append(b, value(i, tick)...)
			}
		}
	}

	return b
}

// Polled encodes a complete polled logfile.
func Polled(tickSpan uint64, streams []Stream, value ValueFunc) []byte {
	return append(Header(format.StreamPolled, tickSpan, streams), PolledData(tickSpan, streams, value)...)
}

// Event encodes one event record.
func Event(streamIdx uint16, tick uint64, payload []byte) []byte {
	b := engine.AppendUint16(nil, streamIdx)
	b = engine.AppendUint64(b, tick)

	return append(b, payload...)
}

// U8 encodes a uint8_t.
func U8(v uint8) []byte { return []byte{v} }

// U16 encodes a uint16_t.
func U16(v uint16) []byte { return engine.AppendUint16(nil, v) }

// U32 encodes a uint32_t.
func U32(v uint32) []byte { return engine.AppendUint32(nil, v) }

// U64 encodes a uint64_t.
func U64(v uint64) []byte { return engine.AppendUint64(nil, v) }

// F32 encodes a float.
func F32(v float32) []byte { return engine.AppendUint32(nil, math.Float32bits(v)) }

// F64 encodes a double.
func F64(v float64) []byte { return engine.AppendUint64(nil, math.Float64bits(v)) }

// Concat joins encoded fields.
func Concat(parts ...[]byte) []byte {
	var b []byte
	for _, p := range parts {
		b = append(b, p...)
	}

	return b
}

func appendCString(b []byte, s string) []byte {
	b = append(b, s...)
	return append(b, 0)
}
