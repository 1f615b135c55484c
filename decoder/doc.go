// Package decoder decodes the data regions of polled and event logfiles.
//
// # Polled Logfiles
//
// A polled data region has no framing. At every tick the logger appends one
// sample for each stream that is due, in declaration order, so a sample's
// position follows from the schedules alone. PolledDecoder exploits this:
//
//   - Seek computes the byte offset of any tick in O(streams)
//   - Decode walks only the due samples of a range using a min-heap of next due ticks
//
// Example:
//
//	dec, err := decoder.NewPolledDecoder(&header)
//	res, err := dec.Decode(decoder.WithStartTick(100), decoder.WithEndTick(200))
//	for _, s := range res.Samples {
//	    fmt.Println(s.Tick, s.StreamID, s.Value)
//	}
//
// A data region that ends mid-sample is not an error: logs are read while the
// logger is still writing. Decode stops at the last complete sample, sets
// Truncated, and returns a Cursor that resumes exactly there.
//
// # Event Logfiles
//
// An event data region is a sequence of {u16 stream index, u64 tick, payload}
// records. EventDecoder reads them in file order and reports the byte offset
// after the last complete record for resumption.
//
// # Thread Safety
//
// Decoders hold no mutable state and may be shared between goroutines.
package decoder
