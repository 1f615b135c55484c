package section

// MagicNumber is the magic number the logger firmware writes at the start of
// every DLF stream. It is recorded by the parsers but never enforced.
const MagicNumber = 0x8414

// Fixed field sizes in bytes.
const (
	// MetaFixedSize covers magic, epoch_time_s and tick_base_us.
	MetaFixedSize = 2 + 4 + 4
	// LogfileFixedSize covers magic, stream_type, tick_span and num_streams.
	LogfileFixedSize = 2 + 1 + 8 + 2
	// EventRecordPrefixSize covers the stream index and tick of an event record.
	EventRecordPrefixSize = 2 + 8
)
