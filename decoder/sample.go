package decoder

import "fmt"

// Sample is one decoded value.
type Sample struct {
	// Value is a primitive Go value (uint32, float64, ...) or a structure.Record.
	Value    any
	StreamID string
	// StreamIndex is the declaration index of the stream in its header.
	StreamIndex int
	Tick        uint64
}

func (s Sample) String() string {
	return fmt.Sprintf("%d %s=%v", s.Tick, s.StreamID, s.Value)
}

// Cursor is a resumable position in a polled data region.
type Cursor struct {
	// Tick is the first tick not yet fully consumed.
	Tick uint64
	// Done is the number of samples due at Tick that were already consumed,
	// counted in declaration order.
	Done int
}

// PolledResult is the outcome of a polled decode.
type PolledResult struct {
	Samples []Sample
	// Next resumes the decode after the last consumed sample.
	Next Cursor
	// Consumed is the byte offset in the data region at which decoding
	// stopped, capped at the region's length.
	Consumed int
	// Truncated reports that the data region ended before the end of the range.
	Truncated bool
}

// EventResult is the outcome of an event decode.
type EventResult struct {
	Samples []Sample
	// Consumed is the byte offset in the data region after the last complete record.
	Consumed int
	// Truncated reports that a partial record follows Consumed.
	Truncated bool
}
