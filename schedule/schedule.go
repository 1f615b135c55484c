// Package schedule implements the tick arithmetic of polled DLF streams.
//
// A polled stream with (interval, phase) is due at tick t iff
// (t + phase) mod interval == 0. Its first due tick is therefore
// f = (-phase) mod interval, and every interval ticks after that.
//
// All arithmetic is on uint64 and guarded against overflow: tick spans,
// intervals and sizes come straight from firmware-written headers.
package schedule

import (
	"fmt"
	"math/bits"

	"github.com/arloliu/dlf/errs"
)

// Schedule is the sampling schedule of a polled stream.
//
// The methods other than Validate assume a valid schedule.
type Schedule struct {
	// Interval is the number of ticks between samples. Must be positive.
	Interval uint64
	// Phase shifts the schedule. Must be below Interval.
	Phase uint64
}

// Validate checks interval > 0 and phase < interval.
func (s Schedule) Validate() error {
	if s.Interval == 0 {
		return fmt.Errorf("%w: interval must be positive", errs.ErrInvalidScheduleInterval)
	}
	if s.Phase >= s.Interval {
		return fmt.Errorf("%w: phase %d, interval %d", errs.ErrInvalidSchedulePhase, s.Phase, s.Interval)
	}

	return nil
}

// FirstDue returns the first tick at which the stream is due, in [0, Interval).
func (s Schedule) FirstDue() uint64 {
	p := s.Phase % s.Interval
	if p == 0 {
		return 0
	}

	return s.Interval - p
}

// IsDue reports whether the stream has a sample at tick t.
func (s Schedule) IsDue(t uint64) bool {
	return t%s.Interval == s.FirstDue()
}

// DueCount returns the number of due ticks in [0, t).
func (s Schedule) DueCount(t uint64) uint64 {
	f := s.FirstDue()
	if t <= f {
		return 0
	}

	return 1 + (t-1-f)/s.Interval
}

// NextDueAtOrAfter returns the smallest due tick >= start.
//
// It reports false when that tick is not representable as a uint64.
func (s Schedule) NextDueAtOrAfter(start uint64) (uint64, bool) {
	f := s.FirstDue()
	if start <= f {
		return f, true
	}

	d := start - f
	q := d / s.Interval
	if d%s.Interval != 0 {
		q++
	}

	hi, lo := bits.Mul64(q, s.Interval)
	if hi != 0 {
		return 0, false
	}

	next, carry := bits.Add64(f, lo, 0)
	if carry != 0 {
		return 0, false
	}

	return next, true
}

// Next returns the due tick following a due tick t, reporting false on overflow.
func (s Schedule) Next(t uint64) (uint64, bool) {
	next, carry := bits.Add64(t, s.Interval, 0)
	return next, carry == 0
}

// ByteCount returns DueCount(t) * size, reporting errs.ErrOffsetOverflow when
// the product does not fit in a uint64.
func (s Schedule) ByteCount(t uint64, size uint32) (uint64, error) {
	hi, lo := bits.Mul64(s.DueCount(t), uint64(size))
	if hi != 0 {
		return 0, errs.ErrOffsetOverflow
	}

	return lo, nil
}

func (s Schedule) String() string {
	return fmt.Sprintf("every %d ticks, phase %d", s.Interval, s.Phase)
}
