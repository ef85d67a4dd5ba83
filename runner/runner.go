// Package runner implements the per-runner lifecycle: idle, preparing an
// order at the clubhouse, driving out to the meeting point, handing off,
// and driving back. Every transition is driven by a Scheduler callback;
// a Runner never polls or sleeps — it schedules the next event and
// returns.
package runner

import (
	"github.com/golfsim/golfsim/course"
	"github.com/golfsim/golfsim/orders"
	"github.com/golfsim/golfsim/routing"
	"github.com/golfsim/golfsim/scheduler"
	"github.com/golfsim/golfsim/telemetry"
)

// State is one of the five positions in a runner's cycle.
type State string

const (
	StateIdle        State = "idle"
	StatePrepping    State = "prepping"
	StateDrivingOut  State = "driving_out"
	StateHandoff     State = "handoff"
	StateDrivingBack State = "driving_back"
)

// Activity is one interval of a runner's activity log.
type Activity struct {
	StartS int64
	EndS   int64
	Kind   State
}

// Sink receives the telemetry a Runner produces as it executes.
type Sink interface {
	Event(e telemetry.DeliveryEvent)
	Coordinates(recs []telemetry.CoordinateRecord)
}

// OnReturn is called once a runner reaches the clubhouse idle, whether
// because a delivery completed or an order failed before departure —
// Dispatch uses it to pop the pending queue.
type OnReturn func(now int64, runnerID string)

// Runner owns exactly one in-flight order at a time (the exclusivity
// invariant: |{orders assigned to r and not yet delivered}| <= 1).
type Runner struct {
	RunnerID       string
	State          State
	Position       string
	CurrentOrderID string
	ActivityLog    []Activity

	course   *course.Course
	router   *routing.Router
	sched    *scheduler.Scheduler
	sink     Sink
	handoffS int64
	speedMS  float64
}

// New creates an idle Runner stationed at the course's clubhouse node.
func New(runnerID string, c *course.Course, r *routing.Router, sched *scheduler.Scheduler, sink Sink, handoffS int64, speedMS float64) *Runner {
	return &Runner{
		RunnerID: runnerID,
		State:    StateIdle,
		Position: c.ClubhouseNodeID,
		course:   c,
		router:   r,
		sched:    sched,
		sink:     sink,
		handoffS: handoffS,
		speedMS:  speedMS,
	}
}

// IsAvailable reports whether the runner can accept a new assignment.
func (r *Runner) IsAvailable() bool { return r.State == StateIdle }

func (r *Runner) transition(now int64, next State) {
	if n := len(r.ActivityLog); n > 0 && r.ActivityLog[n-1].EndS == 0 {
		r.ActivityLog[n-1].EndS = now
	}
	r.ActivityLog = append(r.ActivityLog, Activity{StartS: now, Kind: next})
	r.State = next
}

// Assign moves an idle runner into prepping and schedules prep_complete.
// prepTimeS is fixed for the run; placed_s guards against assigning a
// runner to an order before it was actually placed (should not happen in
// practice, but the max() keeps the schedule sane if it ever does).
func (r *Runner) Assign(now int64, order *orders.Order, prepTimeS int64, onReturn OnReturn) {
	r.CurrentOrderID = order.OrderID
	order.AssignedRunnerID = r.RunnerID
	order.Status = orders.StatusPrepping
	r.transition(now, StatePrepping)

	prepBase := now
	if order.PlacedS > prepBase {
		prepBase = order.PlacedS
	}
	prepCompleteAt := prepBase + prepTimeS

	r.sched.Schedule(prepCompleteAt, scheduler.KindPrepComplete, order.OrderID, r.RunnerID, func(now int64) {
		r.onPrepComplete(now, order, onReturn)
	})
}

func (r *Runner) onPrepComplete(now int64, order *orders.Order, onReturn OnReturn) {
	route, err := r.router.ShortestPath(r.course.ClubhouseNodeID, order.PredictedMeetingNode)
	if err != nil {
		order.Status = orders.StatusFailed
		order.FailReason = "unroutable"
		r.sink.Event(telemetry.DeliveryEvent{TimestampS: now, Kind: telemetry.EventOrderFailed, OrderID: order.OrderID, RunnerID: r.RunnerID, Extra: map[string]string{"reason": "unroutable"}})
		r.returnToIdle(now, onReturn)
		return
	}

	meetingS := order.PredictedMeetingS
	if meetingS < now {
		meetingS = now
	}
	meetLat, meetLon, _ := r.course.NodeCoord(order.PredictedMeetingNode)
	coords := r.router.EmitPathCoordinates(route, now, meetingS, r.RunnerID, telemetry.ActorRunner, order.OrderID, meetLat, meetLon)
	r.sink.Coordinates(coords)

	order.Status = orders.StatusInTransit
	r.transition(now, StateDrivingOut)

	r.sched.Schedule(meetingS, scheduler.KindArriveAtMeeting, order.OrderID, r.RunnerID, func(now int64) {
		r.onArrive(now, order, onReturn)
	})
}

func (r *Runner) onArrive(now int64, order *orders.Order, onReturn OnReturn) {
	lat, lon, _ := r.course.NodeCoord(order.PredictedMeetingNode)
	hole := r.course.HoleAt(lat, lon)
	order.ActualMeetingS = now
	r.Position = order.PredictedMeetingNode

	r.sink.Event(telemetry.DeliveryEvent{TimestampS: now, Kind: telemetry.EventArriveAtMeeting, OrderID: order.OrderID, RunnerID: r.RunnerID, Hole: hole})
	r.sink.Coordinates([]telemetry.CoordinateRecord{
		{TimestampS: now, ActorID: order.GroupID, ActorKind: telemetry.ActorGolfer, Lat: lat, Lon: lon, Hole: hole, IsDeliveryEvent: true, OrderID: order.OrderID},
		{TimestampS: now, ActorID: r.RunnerID, ActorKind: telemetry.ActorRunner, Lat: lat, Lon: lon, Hole: hole, IsDeliveryEvent: true, OrderID: order.OrderID},
	})

	r.transition(now, StateHandoff)
	handoffCompleteAt := now + r.handoffS
	r.sched.Schedule(handoffCompleteAt, scheduler.KindHandoffComplete, order.OrderID, r.RunnerID, func(now int64) {
		r.onHandoffComplete(now, order, onReturn)
	})
}

func (r *Runner) onHandoffComplete(now int64, order *orders.Order, onReturn OnReturn) {
	order.Status = orders.StatusDelivered
	r.sink.Event(telemetry.DeliveryEvent{TimestampS: now, Kind: telemetry.EventHandoffComplete, OrderID: order.OrderID, RunnerID: r.RunnerID})

	route, err := r.router.ShortestPath(order.PredictedMeetingNode, r.course.ClubhouseNodeID)
	if err != nil {
		// The cart-path graph is undirected, so a return route must exist
		// whenever the outbound route did; reaching this means the graph
		// was mutated mid-run (e.g. an injected unroutable-edge test).
		r.returnToIdle(now, onReturn)
		return
	}
	returnTravelS := route.TravelTime(r.speedMS)
	clubLat, clubLon, _ := r.course.NodeCoord(r.course.ClubhouseNodeID)
	coords := r.router.EmitPathCoordinates(route, now, now+returnTravelS, r.RunnerID, telemetry.ActorRunner, order.OrderID, clubLat, clubLon)
	r.sink.Coordinates(coords)

	r.transition(now, StateDrivingBack)
	returnCompleteAt := now + returnTravelS
	r.sched.Schedule(returnCompleteAt, scheduler.KindReturnComplete, order.OrderID, r.RunnerID, func(now int64) {
		order.RunnerReturnS = now
		r.sink.Event(telemetry.DeliveryEvent{TimestampS: now, Kind: telemetry.EventReturnComplete, OrderID: order.OrderID, RunnerID: r.RunnerID})
		r.returnToIdle(now, onReturn)
	})
}

func (r *Runner) returnToIdle(now int64, onReturn OnReturn) {
	r.transition(now, StateIdle)
	r.Position = r.course.ClubhouseNodeID
	r.CurrentOrderID = ""
	if onReturn != nil {
		onReturn(now, r.RunnerID)
	}
}

// FinalizeAt closes a trailing activity interval that never received a
// terminating transition because the event that would have closed it fell
// beyond the run horizon (e.g. a return trip still in progress at
// service_close_s + grace_s). Safe to call on a runner that already
// reached idle; it is then a no-op.
func (r *Runner) FinalizeAt(now int64) {
	n := len(r.ActivityLog)
	if n == 0 {
		return
	}
	if r.ActivityLog[n-1].EndS == 0 {
		r.ActivityLog[n-1].EndS = now
	}
}

// ActiveHoursS sums the durations of all logged activity that is not
// idle — the numerator shared by both utilization bases. Call
// FinalizeAt first if the run may have stopped mid-activity.
func (r *Runner) ActiveHoursS() int64 {
	var total int64
	for _, a := range r.ActivityLog {
		if a.Kind == StateIdle || a.EndS == 0 {
			continue
		}
		total += a.EndS - a.StartS
	}
	return total
}

// ServiceSpanS returns the span from this runner's first assignment to
// its last logged activity boundary — the denominator for the secondary
// "active hours" utilization basis (time in service, not nominal shift
// length). Zero if the runner was never assigned.
func (r *Runner) ServiceSpanS() int64 {
	var firstStart, lastEnd int64 = -1, 0
	for _, a := range r.ActivityLog {
		if a.Kind == StateIdle {
			continue
		}
		if firstStart == -1 {
			firstStart = a.StartS
		}
		if a.EndS > lastEnd {
			lastEnd = a.EndS
		}
	}
	if firstStart == -1 {
		return 0
	}
	return lastEnd - firstStart
}
