package alarmlib

import (
	"container/heap"
	"time"
)

// armedEntry is one armed alarm in the scheduler heap. seq ties the
// entry to the arming that produced it: a cancel or re-arm bumps the
// alarm's sequence, so stale heap entries are dropped at pop time
// instead of being searched out eagerly on every mutation.
type armedEntry struct {
	alarmId     string
	seq         uint64
	at          time.Time
	scheduledAt time.Time
	alarm       *Alarm
}

// armedHeap is a min-heap of armedEntry ordered by trigger time.
type armedHeap []*armedEntry

func (h armedHeap) Len() int           { return len(h) }
func (h armedHeap) Less(i, j int) bool { return h[i].at.Before(h[j].at) }
func (h armedHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *armedHeap) Push(x any) {
	*h = append(*h, x.(*armedEntry))
}

func (h *armedHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

func heapPush(h *armedHeap, e *armedEntry) {
	heap.Push(h, e)
}

// heapPop removes and returns the entry with the earliest trigger time.
// Panics if the heap is empty.
func heapPop(h *armedHeap) *armedEntry {
	return heap.Pop(h).(*armedEntry)
}

// heapPeek returns the earliest entry without removing it, or nil.
func heapPeek(h *armedHeap) *armedEntry {
	if h.Len() == 0 {
		return nil
	}
	return (*h)[0]
}
