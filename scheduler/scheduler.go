package scheduler

import (
	"container/heap"

	"github.com/sirupsen/logrus"
)

// Scheduler owns the only clock in a simulation run. It is exclusively
// responsible for mutating the event queue; callers schedule events and
// the scheduler calls back into them in non-decreasing timestamp order.
type Scheduler struct {
	queue *eventHeap
	clock int64
	seq   uint64
}

// New creates an empty Scheduler with the clock at zero.
func New() *Scheduler {
	return &Scheduler{queue: newEventHeap()}
}

// Clock returns the current simulated time in seconds since service open.
func (s *Scheduler) Clock() int64 { return s.clock }

// Len reports the number of events still pending.
func (s *Scheduler) Len() int { return s.queue.Len() }

// Schedule enqueues an event at ts. If ts precedes the current clock, the
// event is coerced to run at the current clock and a warning is logged —
// scheduling into the past is never silently dropped and never panics,
// since a stale re-prediction is an expected, recoverable condition here
// (unlike the cluster simulator's hard causality invariant).
func (s *Scheduler) Schedule(ts int64, kind Kind, orderID, runnerID string, run func(now int64)) *Event {
	if ts < s.clock {
		logrus.Warnf("scheduler: event %s for order=%s runner=%s scheduled at %ds before clock %ds; coercing to now",
			kind, orderID, runnerID, ts, s.clock)
		ts = s.clock
	}
	s.seq++
	e := &Event{
		Time:     ts,
		seq:      s.seq,
		Kind:     kind,
		OrderID:  orderID,
		RunnerID: runnerID,
		Run:      run,
	}
	heap.Push(s.queue, e)
	return e
}

// RunUntil drains the queue in non-decreasing timestamp order, dispatching
// each event's Run callback, until the heap is empty or the next event's
// timestamp exceeds tEnd (that event remains queued — callers inspect
// Len() to know whether the run was truncated by the horizon).
func (s *Scheduler) RunUntil(tEnd int64) {
	for s.queue.Len() > 0 {
		next := s.queue.peek()
		if next.Time > tEnd {
			return
		}
		e := heap.Pop(s.queue).(*Event)
		if e.Time < s.clock {
			// Schedule() already coerces forward-only timestamps, so this
			// can only happen if a caller builds an Event by hand.
			panic("scheduler: clock went backwards")
		}
		s.clock = e.Time
		e.Run(s.clock)
	}
}
