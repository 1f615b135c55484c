package decoder

import (
	"fmt"
	"iter"

	"github.com/arloliu/dlf/endian"
	"github.com/arloliu/dlf/errs"
	"github.com/arloliu/dlf/format"
	"github.com/arloliu/dlf/section"
)

// EventDecoder decodes the data region of an event logfile.
type EventDecoder struct {
	header *section.LogfileHeader
}

// NewEventDecoder creates a decoder for a parsed event logfile.
func NewEventDecoder(header *section.LogfileHeader) (*EventDecoder, error) {
	if header.StreamType != format.StreamEvent {
		return nil, fmt.Errorf("%w: got %s", errs.ErrNotEventStream, header.StreamType)
	}

	return &EventDecoder{header: header}, nil
}

// Header returns the header the decoder reads.
func (d *EventDecoder) Header() *section.LogfileHeader {
	return d.header
}

// Decode reads event records in file order.
//
// WithStartTick, WithEndTick and WithStreams filter the emitted samples; every
// record is still consumed. Reading stops without error at a partial trailing
// record. A record naming an undeclared stream aborts the decode with
// errs.ErrInvalidStreamIndex.
func (d *EventDecoder) Decode(opts ...Option) (EventResult, error) {
	var res EventResult

	cfg, err := newConfig(opts...)
	if err != nil {
		return res, err
	}

	consumed, truncated, err := d.walk(cfg, func(s Sample) bool {
		res.Samples = append(res.Samples, s)
		return true
	})
	if err != nil {
		return EventResult{}, err
	}

	res.Consumed = consumed
	res.Truncated = truncated

	return res, nil
}

// All returns an iterator over the samples Decode would return. Errors are
// yielded once, after the samples that preceded them.
func (d *EventDecoder) All(opts ...Option) iter.Seq2[Sample, error] {
	return func(yield func(Sample, error) bool) {
		cfg, err := newConfig(opts...)
		if err != nil {
			yield(Sample{}, err)
			return
		}

		stopped := false
		_, _, err = d.walk(cfg, func(s Sample) bool {
			if !yield(s, nil) {
				stopped = true
				return false
			}

			return true
		})
		if err != nil && !stopped {
			yield(Sample{}, err)
		}
	}
}

func (d *EventDecoder) walk(cfg *config, emit func(Sample) bool) (consumed int, truncated bool, err error) {
	h := d.header
	if cfg.byteOffset > len(h.Data) {
		return 0, false, fmt.Errorf("%w: %d > %d", errs.ErrInvalidByteOffset, cfg.byteOffset, len(h.Data))
	}

	mask, err := emitMask(h, cfg.streams)
	if err != nil {
		return 0, false, err
	}

	r := endian.NewReader(h.Data[cfg.byteOffset:], endian.GetLittleEndianEngine())
	base := cfg.byteOffset

	for r.Remaining() > 0 {
		recordStart := r.Offset()

		if r.Remaining() < section.EventRecordPrefixSize {
			return base + recordStart, true, nil
		}

		idx, _ := r.Uint16()
		tick, _ := r.Uint64()
		if int(idx) >= len(h.Streams) {
			return base + recordStart, false, fmt.Errorf("%w: record at offset %d names stream %d of %d",
				errs.ErrInvalidStreamIndex, base+recordStart, idx, len(h.Streams))
		}

		s := &h.Streams[idx]
		payload, err := r.BytesU32(s.TypeSize)
		if err != nil {
			return base + recordStart, true, nil //nolint:nilerr
		}

		if !mask[idx] || tick < cfg.startTick || (cfg.endTick != nil && tick >= *cfg.endTick) {
			continue
		}

		value, ok, err := s.Plan.Decode(payload)
		if err != nil {
			return base + recordStart, false, fmt.Errorf("stream %s at tick %d: %w", s.ID, tick, err)
		}
		if ok && !emit(Sample{Value: value, StreamID: s.ID, StreamIndex: int(idx), Tick: tick}) {
			return base + r.Offset(), false, nil
		}
	}

	return base + r.Offset(), false, nil
}
