// Package telemetry holds the pure data records that flow from the
// simulation core to the I/O serializer. It has no dependencies on any
// other internal package — routing, runner, dispatch, and engine each
// produce these records but never read this package's own state back.
package telemetry

// EventKind names a DeliveryEvent's kind. Values match the Scheduler's
// event names so the event log reads directly off the simulated timeline.
type EventKind string

const (
	EventOrderPlaced     EventKind = "order_placed"
	EventPrepComplete    EventKind = "prep_complete"
	EventArriveAtMeeting EventKind = "arrive_at_meeting"
	EventHandoffComplete EventKind = "handoff_complete"
	EventReturnComplete  EventKind = "return_complete"
	EventOrderFailed     EventKind = "order_failed"
	EventOrderPending    EventKind = "order_pending"
)

// DeliveryEvent is a single append-only log entry, written out as one
// row of events.csv.
type DeliveryEvent struct {
	TimestampS int64
	Kind       EventKind
	OrderID    string
	RunnerID   string
	Hole       int
	Extra      map[string]string
}

// ActorKind distinguishes the two kinds of moving point in a coordinate
// stream.
type ActorKind string

const (
	ActorGolfer ActorKind = "golfer"
	ActorRunner ActorKind = "runner"
)

// CoordinateRecord is one sample of a golfer's or runner's position.
// For a delivered order, exactly two flagged records — one golfer, one
// runner — share an identical (TimestampS, Lat, Lon).
type CoordinateRecord struct {
	TimestampS      int64
	ActorID         string
	ActorKind       ActorKind
	Lat             float64
	Lon             float64
	Hole            int
	IsDeliveryEvent bool
	OrderID         string
}
