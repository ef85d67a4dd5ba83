// Package scheduler implements the single-threaded discrete-event loop that
// drives the delivery simulation: a min-heap of scheduled callbacks ordered
// by (timestamp, insertion sequence) so that two events landing on the same
// tick always execute in the deterministic order Schedule was called in.
package scheduler

// Kind names the five event types the engine schedules.
type Kind string

const (
	KindOrderPlaced     Kind = "order_placed"
	KindPrepComplete    Kind = "prep_complete"
	KindArriveAtMeeting Kind = "arrive_at_meeting"
	KindHandoffComplete Kind = "handoff_complete"
	KindReturnComplete  Kind = "return_complete"
)

// Event is a single scheduled callback. Run receives the clock value it
// actually executed at (which may differ from the time it was scheduled for,
// if Schedule coerced a past timestamp forward — see Scheduler.Schedule).
type Event struct {
	Time     int64
	seq      uint64
	Kind     Kind
	OrderID  string
	RunnerID string
	Run      func(now int64)
}

// Sequence returns the insertion order used as the final tie-breaker.
func (e *Event) Sequence() uint64 { return e.seq }
