package section

import (
	"github.com/arloliu/dlf/schedule"
	"github.com/arloliu/dlf/structure"
)

// StreamDescriptor describes one declared stream of a logfile.
type StreamDescriptor struct {
	// Plan is the compiled TypeStructure.
	Plan          structure.Plan
	TypeStructure string
	ID            string
	Notes         string
	// Schedule is the zero value for event streams.
	Schedule schedule.Schedule
	// TypeSize is the size of one sample in bytes.
	TypeSize uint32
}

// IsOpaque reports whether samples of the stream are skipped without decoding.
func (d StreamDescriptor) IsOpaque() bool {
	_, ok := d.Plan.(structure.Opaque)
	return ok
}
