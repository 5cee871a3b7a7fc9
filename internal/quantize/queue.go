package quantize

import (
	"container/heap"
	"slices"
)

// queueItem pairs a box with the order in which it entered the queue.
type queueItem struct {
	box *VBox
	seq uint64
}

// volumeQueue is a max-heap of boxes ordered by volume. Boxes of equal volume
// are ordered by insertion sequence, which matches a stable descending sort.
type volumeQueue struct {
	items []queueItem
	next  uint64
}

func (q *volumeQueue) Len() int { return len(q.items) }

func (q *volumeQueue) Less(i, j int) bool {
	return before(q.items[i], q.items[j])
}

func (q *volumeQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *volumeQueue) Push(x any) { q.items = append(q.items, x.(queueItem)) }

func (q *volumeQueue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	old[n-1] = queueItem{}
	q.items = old[:n-1]
	return item
}

// before reports whether a is ahead of b in queue order.
func before(a, b queueItem) bool {
	va, vb := a.box.Volume(), b.box.Volume()
	if va != vb {
		return va > vb
	}
	return a.seq < b.seq
}

// offer adds a box to the queue.
func (q *volumeQueue) offer(b *VBox) {
	heap.Push(q, queueItem{box: b, seq: q.next})
	q.next++
}

// poll removes and returns the box with the largest volume.
func (q *volumeQueue) poll() *VBox {
	if q.Len() == 0 {
		return nil
	}
	return heap.Pop(q).(queueItem).box
}

// boxes returns the queued boxes in queue order without draining the queue.
func (q *volumeQueue) boxes() []*VBox {
	items := slices.Clone(q.items)
	slices.SortFunc(items, func(a, b queueItem) int {
		if before(a, b) {
			return -1
		}
		if before(b, a) {
			return 1
		}
		return 0
	})

	out := make([]*VBox, len(items))
	for i, item := range items {
		out[i] = item.box
	}
	return out
}
