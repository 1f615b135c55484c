package section

import (
	"fmt"
	"time"

	"github.com/arloliu/dlf/endian"
	"github.com/arloliu/dlf/structure"
)

// MetaHeader is the parsed meta stream of a run.
type MetaHeader struct {
	// Meta is the raw payload. It aliases the parsed input.
	Meta []byte
	// MetaPlan is the compiled MetaStructure.
	MetaPlan structure.Plan
	// MetaStructure is the type structure of the payload.
	MetaStructure string
	// EpochTimeS is the Unix second of tick 0.
	EpochTimeS uint32
	// TickBaseUs is the tick length in microseconds.
	TickBaseUs uint32
	// MetaSize is the declared payload size.
	MetaSize uint32
	Magic    uint16
}

// ParseMetaHeader parses a meta stream.
//
// Returns errs.ErrTruncatedHeader when the fixed fields, the structure string
// terminator, or meta_size payload bytes are missing. Bytes past the payload
// are ignored.
func ParseMetaHeader(data []byte) (MetaHeader, error) {
	var h MetaHeader

	r := endian.NewReader(data, endian.GetLittleEndianEngine())

	var err error
	if h.Magic, err = r.Uint16(); err != nil {
		return h, fmt.Errorf("meta magic: %w", err)
	}
	if h.EpochTimeS, err = r.Uint32(); err != nil {
		return h, fmt.Errorf("meta epoch_time_s: %w", err)
	}
	if h.TickBaseUs, err = r.Uint32(); err != nil {
		return h, fmt.Errorf("meta tick_base_us: %w", err)
	}
	if h.MetaStructure, err = r.CString(); err != nil {
		return h, fmt.Errorf("meta structure: %w", err)
	}
	if h.MetaSize, err = r.Uint32(); err != nil {
		return h, fmt.Errorf("meta size: %w", err)
	}
	if h.Meta, err = r.BytesU32(h.MetaSize); err != nil {
		return h, fmt.Errorf("meta payload: %w", err)
	}

	if h.MetaPlan, err = structure.Compile(h.MetaStructure); err != nil {
		return h, fmt.Errorf("meta structure %q: %w", h.MetaStructure, err)
	}

	return h, nil
}

// HasValidMagic reports whether the magic number matches the firmware's.
func (h MetaHeader) HasValidMagic() bool {
	return h.Magic == MagicNumber
}

// TickDuration returns the length of one tick.
func (h MetaHeader) TickDuration() time.Duration {
	return time.Duration(h.TickBaseUs) * time.Microsecond
}

// Epoch returns the wall-clock time of tick 0 in UTC.
func (h MetaHeader) Epoch() time.Time {
	return time.Unix(int64(h.EpochTimeS), 0).UTC()
}

// TickTime converts a tick into wall-clock time.
func (h MetaHeader) TickTime(tick uint64) time.Time {
	return h.Epoch().Add(time.Duration(tick) * h.TickDuration()) //nolint:gosec
}

// Value decodes the meta payload with MetaPlan.
//
// ok is false for an opaque meta structure.
func (h MetaHeader) Value() (value any, ok bool, err error) {
	if h.MetaPlan == nil {
		return nil, false, nil
	}

	return h.MetaPlan.Decode(h.Meta)
}
