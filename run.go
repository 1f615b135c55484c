package dlf

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/arloliu/dlf/decoder"
	"github.com/arloliu/dlf/errs"
	"github.com/arloliu/dlf/format"
	"github.com/arloliu/dlf/section"
	"github.com/arloliu/dlf/source"
)

// Run is a decoded view of the three streams of one logger run.
//
// A Run is a snapshot: re-open it to pick up data appended by a live logger.
// It is safe for concurrent use.
type Run struct {
	polled *decoder.PolledDecoder
	events *decoder.EventDecoder
	Meta   section.MetaHeader
}

// OpenRun fetches and parses the streams of a run from src.
//
// The meta stream is required. A run whose polled or event logfile does not
// exist yet decodes as if that logfile were empty.
func OpenRun(ctx context.Context, src source.Source) (*Run, error) {
	var (
		wg    sync.WaitGroup
		data  [3][]byte
		fetch [3]error
	)

	for i, stream := range []source.Stream{source.StreamMeta, source.StreamPolled, source.StreamEvents} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data[i], fetch[i] = source.Fetch(ctx, src, stream)
		}()
	}
	wg.Wait()

	if fetch[0] != nil {
		return nil, fmt.Errorf("meta: %w", fetch[0])
	}
	for i, err := range fetch[1:] {
		if err != nil && !errors.Is(err, errs.ErrStreamNotFound) {
			return nil, fmt.Errorf("%s: %w", source.Stream(i+1), err)
		}
	}

	return NewRun(data[0], data[1], data[2])
}

// NewRun parses already-fetched streams. A nil polled or events slice marks
// the logfile as absent.
func NewRun(meta, polled, events []byte) (*Run, error) {
	var (
		r   Run
		err error
	)

	if r.Meta, err = section.ParseMetaHeader(meta); err != nil {
		return nil, err
	}

	if polled != nil {
		h, err := section.ParseLogfileHeader(polled, format.StreamPolled)
		if err != nil {
			return nil, fmt.Errorf("polled: %w", err)
		}
		if r.polled, err = decoder.NewPolledDecoder(&h); err != nil {
			return nil, fmt.Errorf("polled: %w", err)
		}
	}

	if events != nil {
		h, err := section.ParseLogfileHeader(events, format.StreamEvent)
		if err != nil {
			return nil, fmt.Errorf("events: %w", err)
		}
		if r.events, err = decoder.NewEventDecoder(&h); err != nil {
			return nil, fmt.Errorf("events: %w", err)
		}
	}

	return &r, nil
}

// PolledHeader returns the polled logfile header, or nil when the run has none.
func (r *Run) PolledHeader() *section.LogfileHeader {
	if r.polled == nil {
		return nil
	}

	return r.polled.Header()
}

// EventHeader returns the event logfile header, or nil when the run has none.
func (r *Run) EventHeader() *section.LogfileHeader {
	if r.events == nil {
		return nil
	}

	return r.events.Header()
}

// PolledDecoder returns the decoder of the polled logfile, or nil when the run has none.
func (r *Run) PolledDecoder() *decoder.PolledDecoder {
	return r.polled
}

// Polled decodes the polled logfile.
func (r *Run) Polled(opts ...decoder.Option) (decoder.PolledResult, error) {
	if r.polled == nil {
		return decoder.PolledResult{}, nil
	}

	return r.polled.Decode(opts...)
}

// Events decodes the event logfile.
func (r *Run) Events(opts ...decoder.Option) (decoder.EventResult, error) {
	if r.events == nil {
		return decoder.EventResult{}, nil
	}

	return r.events.Decode(opts...)
}

// Samples returns every polled and event sample of the run ordered by tick.
// At equal ticks polled samples come first, then events in file order.
func (r *Run) Samples() ([]decoder.Sample, error) {
	polled, err := r.Polled()
	if err != nil {
		return nil, fmt.Errorf("polled: %w", err)
	}

	events, err := r.Events()
	if err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}

	return MergeByTick(polled.Samples, events.Samples), nil
}

// MergeByTick merges tick-ordered polled samples with events in file order.
// At equal ticks polled samples come first. Events keep their file order
// among equal ticks.
func MergeByTick(polled, events []decoder.Sample) []decoder.Sample {
	events = slices.Clone(events)
	slices.SortStableFunc(events, func(a, b decoder.Sample) int {
		return cmp.Compare(a.Tick, b.Tick)
	})

	out := make([]decoder.Sample, 0, len(polled)+len(events))
	i, j := 0, 0
	for i < len(polled) && j < len(events) {
		if events[j].Tick < polled[i].Tick {
			out = append(out, events[j])
			j++
		} else {
			out = append(out, polled[i])
			i++
		}
	}
	out = append(out, polled[i:]...)

	return append(out, events[j:]...)
}

// Time converts a tick of this run into wall-clock time.
func (r *Run) Time(tick uint64) time.Time {
	return r.Meta.TickTime(tick)
}
