package decoder

import (
	"container/heap"
	"fmt"
	"iter"
	"math"
	"math/bits"

	"github.com/arloliu/dlf/errs"
	"github.com/arloliu/dlf/format"
	"github.com/arloliu/dlf/section"
)

// PolledDecoder decodes the data region of a polled logfile.
type PolledDecoder struct {
	header *section.LogfileHeader
}

// NewPolledDecoder creates a decoder for a parsed polled logfile.
//
// Returns errs.ErrNotPolledStream for an event header, or a schedule error
// when a stream's schedule is invalid.
func NewPolledDecoder(header *section.LogfileHeader) (*PolledDecoder, error) {
	if header.StreamType != format.StreamPolled {
		return nil, fmt.Errorf("%w: got %s", errs.ErrNotPolledStream, header.StreamType)
	}

	for i, s := range header.Streams {
		if err := s.Schedule.Validate(); err != nil {
			return nil, fmt.Errorf("stream %d (%s): %w", i, s.ID, err)
		}
	}

	return &PolledDecoder{header: header}, nil
}

// Header returns the header the decoder reads.
func (d *PolledDecoder) Header() *section.LogfileHeader {
	return d.header
}

// Seek returns the byte offset in the data region of the first sample due at
// or after tick: the sum over all streams of due count times type size.
//
// Returns errs.ErrOffsetOverflow when the offset does not fit in a uint64.
// The offset may lie past the end of the data.
func (d *PolledDecoder) Seek(tick uint64) (uint64, error) {
	var off uint64
	for _, s := range d.header.Streams {
		n, err := s.Schedule.ByteCount(tick, s.TypeSize)
		if err != nil {
			return 0, fmt.Errorf("seek tick %d, stream %s: %w", tick, s.ID, err)
		}

		var carry uint64
		off, carry = bits.Add64(off, n, 0)
		if carry != 0 {
			return 0, fmt.Errorf("seek tick %d: %w", tick, errs.ErrOffsetOverflow)
		}
	}

	return off, nil
}

// offsetOf returns the byte offset of cur: Seek(cur.Tick) plus the samples of
// the first cur.Done streams due at cur.Tick.
func (d *PolledDecoder) offsetOf(cur Cursor) (uint64, error) {
	off, err := d.Seek(cur.Tick)
	if err != nil {
		return 0, err
	}

	done := cur.Done
	for _, s := range d.header.Streams {
		if done == 0 {
			break
		}
		if !s.Schedule.IsDue(cur.Tick) {
			continue
		}

		var carry uint64
		off, carry = bits.Add64(off, uint64(s.TypeSize), 0)
		if carry != 0 {
			return 0, errs.ErrOffsetOverflow
		}
		done--
	}

	return off, nil
}

// liveBound returns an exclusive tick bound past which no sample can be
// present in the data region. It is used instead of the header's tick span
// for files that are still being written.
func (d *PolledDecoder) liveBound() uint64 {
	bound := uint64(math.MaxUint64)
	sized := false

	size := uint64(len(d.header.Data))
	for _, s := range d.header.Streams {
		if s.TypeSize == 0 {
			continue
		}
		sized = true

		// The sample with index size/TypeSize cannot be complete.
		hi, lo := bits.Mul64(size/uint64(s.TypeSize), s.Schedule.Interval)
		if hi != 0 {
			continue
		}
		last, carry := bits.Add64(lo, s.Schedule.FirstDue(), 0)
		if carry != 0 {
			continue
		}
		end, carry := bits.Add64(last, 1, 0)
		if carry != 0 {
			continue
		}
		bound = min(bound, end)
	}

	if !sized {
		return d.header.TickSpan
	}

	return bound
}

// polledState is the outcome of a walk without the samples.
type polledState struct {
	next      Cursor
	consumed  int
	truncated bool
}

// Decode decodes the due samples in the range, in tick order with ties in
// declaration order.
//
// An empty or out-of-span range, or a start beyond the data, yields an empty
// result and no error.
func (d *PolledDecoder) Decode(opts ...Option) (PolledResult, error) {
	var res PolledResult

	cfg, err := newConfig(opts...)
	if err != nil {
		return res, err
	}

	state, err := d.walk(cfg, func(s Sample) bool {
		res.Samples = append(res.Samples, s)
		return true
	})
	if err != nil {
		return PolledResult{}, err
	}

	res.Next = state.next
	res.Consumed = state.consumed
	res.Truncated = state.truncated

	return res, nil
}

// All returns an iterator over the samples Decode would return.
//
// An option error is yielded once as the only element.
func (d *PolledDecoder) All(opts ...Option) iter.Seq2[Sample, error] {
	return func(yield func(Sample, error) bool) {
		cfg, err := newConfig(opts...)
		if err != nil {
			yield(Sample{}, err)
			return
		}

		stopped := false
		_, err = d.walk(cfg, func(s Sample) bool {
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

// walk consumes the data region from the configured position and calls emit
// for every selected sample until emit returns false, the range ends, or the
// data runs out.
func (d *PolledDecoder) walk(cfg *config, emit func(Sample) bool) (polledState, error) {
	h := d.header

	mask, err := emitMask(h, cfg.streams)
	if err != nil {
		return polledState{}, err
	}

	start := Cursor{Tick: cfg.startTick}
	if cfg.cursor != nil && cfg.cursor.Tick >= cfg.startTick {
		start = *cfg.cursor
	}

	end := h.TickSpan
	if cfg.unbounded {
		end = d.liveBound()
	}
	if cfg.endTick != nil {
		end = min(end, *cfg.endTick)
	}

	state := polledState{next: start}

	off, err := d.offsetOf(start)
	if err != nil || off > uint64(len(h.Data)) {
		state.consumed = len(h.Data)
		state.truncated = true

		return state, nil
	}
	state.consumed = int(off)

	if start.Tick >= end {
		return state, nil
	}

	scratch, cleanup := duePool.Get(len(h.Streams))
	defer cleanup()

	queue := dueQueue(scratch)
	for i, s := range h.Streams {
		if next, ok := s.Schedule.NextDueAtOrAfter(start.Tick); ok && next < end {
			queue = append(queue, dueEntry{tick: next, idx: i})
		}
	}
	heap.Init(&queue)

	skip := start.Done
	cur := start
	pos := state.consumed
	data := h.Data

	for queue.Len() > 0 {
		e := queue[0]
		s := &h.Streams[e.idx]
		stop := false

		if skip > 0 && e.tick == start.Tick {
			skip--
		} else {
			if uint64(len(data)-pos) < uint64(s.TypeSize) {
				state.truncated = true
				break
			}
			size := int(s.TypeSize)

			if e.tick != cur.Tick {
				cur = Cursor{Tick: e.tick}
			}

			if mask[e.idx] && (e.tick-cfg.startTick)%cfg.downsample == 0 {
				value, ok, err := s.Plan.Decode(data[pos : pos+size])
				if err != nil {
					return polledState{}, fmt.Errorf("stream %s at tick %d: %w", s.ID, e.tick, err)
				}
				stop = ok && !emit(Sample{Value: value, StreamID: s.ID, StreamIndex: e.idx, Tick: e.tick})
			}

			pos += size
			cur.Done++
		}

		if next, ok := s.Schedule.Next(e.tick); ok && next < end {
			queue[0].tick = next
			heap.Fix(&queue, 0)
		} else {
			heap.Pop(&queue)
		}

		if stop {
			break
		}
	}

	state.consumed = pos
	state.next = nextCursor(queue, cur, end)

	return state, nil
}

// nextCursor returns the cursor of the head of the queue, the first sample
// not yet consumed, given that the last consumed sample was at cur.
func nextCursor(queue dueQueue, cur Cursor, end uint64) Cursor {
	switch {
	case len(queue) == 0:
		return Cursor{Tick: end}
	case queue[0].tick == cur.Tick:
		return cur
	default:
		return Cursor{Tick: queue[0].tick}
	}
}
