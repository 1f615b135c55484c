// Package dlf decodes DLF runs, the binary time-series logs written by the
// data logger firmware.
//
// A run consists of three little-endian streams:
//
//   - meta: wall-clock epoch, tick length and a run-level metadata value
//   - polled: streams sampled on fixed tick schedules, packed without framing
//   - events: streams recorded on demand as {stream, tick, payload} records
//
// Every logfile is self-describing. Its header declares each stream's id, its
// type structure (a primitive such as "double", a composite such as
// "pos;lat:double:0;lng:double:8", or an opaque "!blob") and, for polled
// streams, its sampling interval and phase.
//
// # Basic Usage
//
// Decoding a run directory:
//
//	run, err := dlf.OpenRun(ctx, source.NewDirSource("/data/runs/42"))
//	if err != nil {
//	    return err
//	}
//	res, err := run.Polled(decoder.WithStartTick(0), decoder.WithEndTick(600))
//	for _, s := range res.Samples {
//	    fmt.Println(run.Time(s.Tick), s.StreamID, s.Value)
//	}
//
// Decoding single streams:
//
//	header, err := dlf.ParseLogfile(data, format.StreamPolled)
//	samples, err := dlf.DecodePolled(&header, decoder.WithEndTick(100))
//
// # Live Runs
//
// Logs are routinely read while the logger is still writing them. A data
// region that ends mid-sample is not an error: decoding stops at the last
// complete sample and returns a cursor to resume from once more data arrives.
// See decoder.WithCursor and decoder.WithUnboundedTickSpan.
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the section,
// decoder and source packages. Use those directly for finer control.
package dlf

import (
	"github.com/arloliu/dlf/decoder"
	"github.com/arloliu/dlf/format"
	"github.com/arloliu/dlf/internal/hash"
	"github.com/arloliu/dlf/section"
)

// ParseMeta parses a meta stream.
func ParseMeta(data []byte) (section.MetaHeader, error) {
	return section.ParseMetaHeader(data)
}

// ParseLogfile parses the header of a polled or event logfile. The returned
// header's Data aliases data.
func ParseLogfile(data []byte, kind format.StreamType) (section.LogfileHeader, error) {
	return section.ParseLogfileHeader(data, kind)
}

// DecodeEvents decodes every complete record of an event logfile, in file order.
func DecodeEvents(header *section.LogfileHeader, opts ...decoder.Option) ([]decoder.Sample, error) {
	dec, err := decoder.NewEventDecoder(header)
	if err != nil {
		return nil, err
	}

	res, err := dec.Decode(opts...)
	if err != nil {
		return nil, err
	}

	return res.Samples, nil
}

// DecodePolled decodes the samples of a polled logfile in tick order. Without
// options it decodes [0, tick_span).
func DecodePolled(header *section.LogfileHeader, opts ...decoder.Option) ([]decoder.Sample, error) {
	dec, err := decoder.NewPolledDecoder(header)
	if err != nil {
		return nil, err
	}

	res, err := dec.Decode(opts...)
	if err != nil {
		return nil, err
	}

	return res.Samples, nil
}

// StreamKey returns the 64-bit key of a stream id, as used by the header index.
//
// The key is the xxHash64 of the id.
func StreamKey(id string) uint64 {
	return hash.StreamKey(id)
}
