package scheduler

import "container/heap"

// eventHeap implements a priority queue with deterministic ordering:
// timestamp, then insertion sequence — two events landing on the same
// tick execute in the order Schedule was called, never reordered by kind.
type eventHeap struct {
	events []*Event
}

func newEventHeap() *eventHeap {
	h := &eventHeap{events: make([]*Event, 0)}
	heap.Init(h)
	return h
}

func (h *eventHeap) Len() int { return len(h.events) }

func (h *eventHeap) Less(i, j int) bool {
	ei, ej := h.events[i], h.events[j]
	if ei.Time != ej.Time {
		return ei.Time < ej.Time
	}
	return ei.seq < ej.seq
}

func (h *eventHeap) Swap(i, j int) { h.events[i], h.events[j] = h.events[j], h.events[i] }

func (h *eventHeap) Push(x interface{}) {
	h.events = append(h.events, x.(*Event))
}

func (h *eventHeap) Pop() interface{} {
	old := h.events
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	h.events = old[:n-1]
	return item
}

func (h *eventHeap) peek() *Event {
	if h.Len() == 0 {
		return nil
	}
	return h.events[0]
}
