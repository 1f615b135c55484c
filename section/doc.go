// Package section parses the self-describing headers of DLF streams.
//
// A DLF run is stored as three little-endian byte streams written by the
// logger firmware: a meta stream, a polled logfile and an event logfile.
//
// # Meta Stream
//
//	Field           | Type    | Description
//	----------------|---------|-----------------------------------------
//	magic           | uint16  | 0x8414, recorded but not enforced
//	epoch_time_s    | uint32  | wall-clock second of tick 0
//	tick_base_us    | uint32  | microseconds per tick
//	meta_structure  | cstring | type structure of the meta payload
//	meta_size       | uint32  | payload size in bytes
//	meta            | bytes   | meta_size bytes
//
// # Logfile Stream
//
//	┌─────────────────────────────────────────────────────────┐
//	│ magic (u16) │ stream_type (u8) │ tick_span (u64)        │
//	│ num_streams (u16)                                       │
//	├─────────────────────────────────────────────────────────┤
//	│ Descriptor × num_streams                                │
//	│  - type_structure, id, notes (cstring each)             │
//	│  - type_size (u32)                                      │
//	│  - interval, phase (u64 each, polled only)              │
//	├─────────────────────────────────────────────────────────┤
//	│ Data region (to end of input)                           │
//	│  - polled: samples in tick order, no framing            │
//	│  - event: {u16 stream_idx, u64 tick, type_size bytes}   │
//	└─────────────────────────────────────────────────────────┘
//
// stream_type is 0 for polled logfiles and 1 for event logfiles. The
// firmware patches tick_span only when it flushes, so the tick_span of a file
// that is still being written may lag behind its data.
//
// # Parsing
//
// ParseMetaHeader and ParseLogfileHeader never copy the payload: Meta and
// Data alias the input slice. Each stream's type structure is compiled into
// a structure.Plan once, at parse time, and checked against its type size.
//
//	header, err := section.ParseLogfileHeader(data, format.StreamPolled)
//	if err != nil {
//	    return err
//	}
//	lat, ok := header.Stream("gpsData.lat")
package section
