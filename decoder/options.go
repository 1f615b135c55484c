package decoder

import (
	"fmt"

	"github.com/arloliu/dlf/errs"
	"github.com/arloliu/dlf/internal/options"
)

// Option configures a Decode call.
//
// WithCursor, WithDownsample and WithUnboundedTickSpan only apply to polled
// decoding, WithByteOffset only to event decoding. Options that do not apply
// to a decoder are ignored.
type Option = options.Option[*config]

type config struct {
	cursor     *Cursor
	endTick    *uint64
	streams    []string
	startTick  uint64
	downsample uint64
	byteOffset int
	unbounded  bool
}

func newConfig(opts ...Option) (*config, error) {
	cfg := &config{downsample: 1}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithStartTick sets the first tick of the range. Defaults to 0.
func WithStartTick(tick uint64) Option {
	return options.NoError(func(c *config) {
		c.startTick = tick
	})
}

// WithEndTick sets the exclusive end of the range.
//
// Polled decoding never goes past the header's tick span unless
// WithUnboundedTickSpan is given.
func WithEndTick(tick uint64) Option {
	return options.NoError(func(c *config) {
		c.endTick = &tick
	})
}

// WithStreams restricts the emitted samples to the given stream ids.
//
// Samples of other streams are still consumed, so cursors and offsets are
// unaffected by the filter.
func WithStreams(ids ...string) Option {
	return options.NoError(func(c *config) {
		c.streams = append(c.streams[:0:0], ids...)
	})
}

// WithDownsample emits only the ticks t with (t - start) % n == 0, where start
// is the WithStartTick value.
func WithDownsample(n uint64) Option {
	return options.New(func(c *config) error {
		if n == 0 {
			return errs.ErrInvalidDownsample
		}
		c.downsample = n

		return nil
	})
}

// WithCursor resumes a polled decode from a cursor returned by an earlier call.
// A cursor before the start tick is ignored.
func WithCursor(cur Cursor) Option {
	return options.New(func(c *config) error {
		if cur.Done < 0 {
			return fmt.Errorf("cursor done count %d is negative", cur.Done)
		}
		c.cursor = &cur

		return nil
	})
}

// WithUnboundedTickSpan decodes past the header's tick span up to the end of
// the available data.
//
// The logger only rewrites tick_span when it flushes, so the header of a file
// that is still being written understates how much data it holds.
func WithUnboundedTickSpan() Option {
	return options.NoError(func(c *config) {
		c.unbounded = true
	})
}

// WithByteOffset starts an event decode at a record boundary returned as
// EventResult.Consumed by an earlier call.
func WithByteOffset(off int) Option {
	return options.New(func(c *config) error {
		if off < 0 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidByteOffset, off)
		}
		c.byteOffset = off

		return nil
	})
}
