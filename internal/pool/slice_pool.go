// Package pool provides pooled scratch slices for hot decode paths.
package pool

import "sync"

// MaxPooledCap is the largest capacity returned to a pool. Bigger slices are
// left to the garbage collector so one huge header cannot pin memory.
const MaxPooledCap = 1 << 16

// SlicePool pools slices of T.
//
// Scratch slices are used by the polled decoder, which needs one entry per
// stream on every call and is re-run on every poll of a live run.
type SlicePool[T any] struct {
	pool sync.Pool
}

// NewSlicePool creates an empty pool.
func NewSlicePool[T any]() *SlicePool[T] {
	return &SlicePool[T]{
		pool: sync.Pool{
			New: func() any { return &[]T{} },
		},
	}
}

// Get returns a zero-length slice with capacity of at least size.
//
// The caller must call the returned cleanup function (typically with defer)
// once the slice is no longer referenced.
//
// Example:
//
//	queue, cleanup := duePool.Get(len(streams))
//	defer cleanup()
func (p *SlicePool[T]) Get(size int) ([]T, func()) {
	ptr, _ := p.pool.Get().(*[]T)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]T, 0, size)
	}

	return slice, func() {
		if cap(slice) > MaxPooledCap {
			return
		}
		clear(slice[:cap(slice)])
		*ptr = slice[:0]
		p.pool.Put(ptr)
	}
}
