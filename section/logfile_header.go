package section

import (
	"fmt"

	"github.com/arloliu/dlf/endian"
	"github.com/arloliu/dlf/errs"
	"github.com/arloliu/dlf/format"
	"github.com/arloliu/dlf/internal/collision"
	"github.com/arloliu/dlf/internal/hash"
	"github.com/arloliu/dlf/schedule"
	"github.com/arloliu/dlf/structure"
)

// LogfileHeader is the parsed header of a polled or event logfile.
type LogfileHeader struct {
	index *collision.Tracker
	// Data is the data region. It aliases the parsed input.
	Data []byte
	// Streams are the declared streams in declaration order.
	Streams []StreamDescriptor
	// TickSpan is the number of ticks covered by the file as of its last flush.
	TickSpan uint64
	// DataOffset is the byte offset of the data region in the parsed input.
	DataOffset int
	Magic      uint16
	StreamType format.StreamType
}

// ParseLogfileHeader parses a logfile and checks that it holds kind streams.
//
// Errors:
//   - errs.ErrTruncatedHeader: any header field or string is cut short
//   - errs.ErrUnknownStreamType: stream_type is neither 0 nor 1
//   - errs.ErrStreamTypeMismatch: the file holds the other kind of stream
//   - errs.ErrInvalidScheduleInterval, errs.ErrInvalidSchedulePhase: bad polled schedule
//   - errs.ErrUnknownPrimitiveType, errs.ErrMalformedStructureDescriptor: bad type structure
//   - errs.ErrTypeSizeMismatch: type_size cannot hold the type structure
func ParseLogfileHeader(data []byte, kind format.StreamType) (LogfileHeader, error) {
	var h LogfileHeader

	r := endian.NewReader(data, endian.GetLittleEndianEngine())

	var err error
	if h.Magic, err = r.Uint16(); err != nil {
		return h, fmt.Errorf("logfile magic: %w", err)
	}

	tag, err := r.Uint8()
	if err != nil {
		return h, fmt.Errorf("logfile stream_type: %w", err)
	}
	h.StreamType = format.StreamType(tag)
	if !h.StreamType.IsValid() {
		return h, fmt.Errorf("%w: %d", errs.ErrUnknownStreamType, tag)
	}
	if h.StreamType != kind {
		return h, fmt.Errorf("%w: file holds %s streams, want %s", errs.ErrStreamTypeMismatch, h.StreamType, kind)
	}

	if h.TickSpan, err = r.Uint64(); err != nil {
		return h, fmt.Errorf("logfile tick_span: %w", err)
	}

	count, err := r.Uint16()
	if err != nil {
		return h, fmt.Errorf("logfile num_streams: %w", err)
	}

	h.Streams = make([]StreamDescriptor, count)
	h.index = collision.NewTracker(hash.StreamKey)
	for i := range h.Streams {
		if err := parseDescriptor(r, h.StreamType, &h.Streams[i]); err != nil {
			return h, fmt.Errorf("stream %d: %w", i, err)
		}
		h.index.Track(h.Streams[i].ID)
	}

	h.DataOffset = r.Offset()
	h.Data = r.Rest()

	return h, nil
}

func parseDescriptor(r *endian.Reader, kind format.StreamType, d *StreamDescriptor) error {
	var err error
	if d.TypeStructure, err = r.CString(); err != nil {
		return fmt.Errorf("type_structure: %w", err)
	}
	if d.ID, err = r.CString(); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	if d.Notes, err = r.CString(); err != nil {
		return fmt.Errorf("notes: %w", err)
	}
	if d.TypeSize, err = r.Uint32(); err != nil {
		return fmt.Errorf("type_size: %w", err)
	}

	if kind == format.StreamPolled {
		var s schedule.Schedule
		if s.Interval, err = r.Uint64(); err != nil {
			return fmt.Errorf("interval: %w", err)
		}
		if s.Phase, err = r.Uint64(); err != nil {
			return fmt.Errorf("phase: %w", err)
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("%s: %w", d.ID, err)
		}
		d.Schedule = s
	}

	if d.Plan, err = structure.Compile(d.TypeStructure); err != nil {
		return fmt.Errorf("%s: %w", d.ID, err)
	}

	if err := structure.Validate(d.Plan, d.TypeSize); err != nil {
		return fmt.Errorf("%s: %w", d.ID, err)
	}

	return nil
}

// HasValidMagic reports whether the magic number matches the firmware's.
func (h *LogfileHeader) HasValidMagic() bool {
	return h.Magic == MagicNumber
}

// StreamIndex returns the declaration index of the stream with the given id.
//
// When an id is declared more than once the first declaration wins.
func (h *LogfileHeader) StreamIndex(id string) (int, bool) {
	if h.index == nil {
		return -1, false
	}

	return h.index.Lookup(id)
}

// Stream returns the descriptor of the stream with the given id.
func (h *LogfileHeader) Stream(id string) (StreamDescriptor, bool) {
	idx, ok := h.StreamIndex(id)
	if !ok {
		return StreamDescriptor{}, false
	}

	return h.Streams[idx], true
}

// DuplicateIDs returns the ids declared more than once, in the order their
// repeats were seen.
func (h *LogfileHeader) DuplicateIDs() []string {
	if h.index == nil {
		return nil
	}

	return h.index.Duplicates()
}

// SampleSize returns the total type size of all declared streams.
func (h *LogfileHeader) SampleSize() uint64 {
	var total uint64
	for _, s := range h.Streams {
		total += uint64(s.TypeSize)
	}

	return total
}
