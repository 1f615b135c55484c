package decoder

import (
	"container/heap"

	"github.com/arloliu/dlf/internal/pool"
)

// dueEntry is the next due tick of one stream.
type dueEntry struct {
	tick uint64
	idx  int
}

// dueQueue is a min-heap ordered by tick, then by declaration index, which is
// exactly the order in which the logger wrote the samples.
type dueQueue []dueEntry

var _ heap.Interface = (*dueQueue)(nil)

var duePool = pool.NewSlicePool[dueEntry]()

func (q dueQueue) Len() int { return len(q) }

func (q dueQueue) Less(i, j int) bool {
	if q[i].tick != q[j].tick {
		return q[i].tick < q[j].tick
	}

	return q[i].idx < q[j].idx
}

func (q dueQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *dueQueue) Push(x any) {
	*q = append(*q, x.(dueEntry)) //nolint:forcetypeassert
}

func (q *dueQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]

	return e
}
