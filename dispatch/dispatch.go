// Package dispatch assigns orders to runners, owns the FIFO pending
// queue, and re-predicts a queued order's meeting time the moment a
// runner frees up. It is the only component besides runner that mutates
// an Order.
package dispatch

import (
	"github.com/golfsim/golfsim/orders"
	"github.com/golfsim/golfsim/predict"
	"github.com/golfsim/golfsim/routing"
	"github.com/golfsim/golfsim/runner"
	"github.com/golfsim/golfsim/scheduler"
	"github.com/golfsim/golfsim/telemetry"
)

// GroupLookup resolves a group_id to its GolferGroup, needed to
// re-predict a queued order.
type GroupLookup func(groupID string) (orders.GolferGroup, bool)

// Controller owns the runner roster and the pending FIFO queue.
type Controller struct {
	runners       []*runner.Runner
	pending       []*orders.Order
	predictor     *predict.Predictor
	router        *routing.Router
	sched         *scheduler.Scheduler
	sink          runner.Sink
	groupLookup   GroupLookup
	prepTimeS     int64
	serviceCloseS int64
	graceS        int64
}

// New builds a dispatch controller over a fixed runner roster.
func New(runners []*runner.Runner, predictor *predict.Predictor, r *routing.Router, sched *scheduler.Scheduler, sink runner.Sink, groupLookup GroupLookup, prepTimeS, serviceCloseS, graceS int64) *Controller {
	return &Controller{
		runners:       runners,
		predictor:     predictor,
		router:        r,
		sched:         sched,
		sink:          sink,
		groupLookup:   groupLookup,
		prepTimeS:     prepTimeS,
		serviceCloseS: serviceCloseS,
		graceS:        graceS,
	}
}

// Submit places order into the system at the moment it is placed: it is
// predicted immediately and either assigned to an idle runner or queued.
func (c *Controller) Submit(now int64, order *orders.Order) {
	group, ok := c.groupLookup(order.GroupID)
	if !ok {
		order.Status = orders.StatusFailed
		order.FailReason = "unknown_group"
		c.sink.Event(telemetry.DeliveryEvent{TimestampS: now, Kind: telemetry.EventOrderFailed, OrderID: order.OrderID, Extra: map[string]string{"reason": "unknown_group"}})
		return
	}

	node, meetingS, err := c.predictor.Predict(order.PlacedS, group)
	if err != nil {
		order.Status = orders.StatusFailed
		order.FailReason = "unroutable"
		c.sink.Event(telemetry.DeliveryEvent{TimestampS: now, Kind: telemetry.EventOrderFailed, OrderID: order.OrderID, Extra: map[string]string{"reason": "unroutable"}})
		return
	}
	order.PredictedMeetingNode = node
	order.PredictedMeetingS = meetingS

	if meetingS > c.serviceCloseS+c.graceS {
		order.Status = orders.StatusFailed
		order.FailReason = "stale_prediction"
		c.sink.Event(telemetry.DeliveryEvent{TimestampS: now, Kind: telemetry.EventOrderFailed, OrderID: order.OrderID, Extra: map[string]string{"reason": "stale_prediction"}})
		return
	}

	if idle := c.pickIdleRunner(node); idle != nil {
		idle.Assign(now, order, c.prepTimeS, c.onRunnerReturn)
		return
	}
	order.Status = orders.StatusQueued
	c.pending = append(c.pending, order)
}

// pickIdleRunner returns the idle runner whose current position yields
// the smallest drive-out to meetingNode, or nil if every runner is busy.
// Degenerates to the single available runner in the common single-runner
// case.
func (c *Controller) pickIdleRunner(meetingNode string) *runner.Runner {
	var best *runner.Runner
	bestLen := -1.0
	for _, rn := range c.runners {
		if !rn.IsAvailable() {
			continue
		}
		route, err := c.router.ShortestPath(rn.Position, meetingNode)
		if err != nil {
			continue
		}
		if best == nil || route.LengthM < bestLen {
			best, bestLen = rn, route.LengthM
		}
	}
	return best
}

// onRunnerReturn fires whenever a runner reaches idle (delivered, or
// failed before departure). It pops the head of the pending queue and
// re-predicts its meeting time, since the original prediction is stale.
func (c *Controller) onRunnerReturn(now int64, runnerID string) {
	if len(c.pending) == 0 {
		return
	}
	order := c.pending[0]
	c.pending = c.pending[1:]

	var target *runner.Runner
	for _, rn := range c.runners {
		if rn.RunnerID == runnerID {
			target = rn
			break
		}
	}
	if target == nil || !target.IsAvailable() {
		// Should not happen: onRunnerReturn only fires once a runner has
		// just transitioned to idle. Defensive no-op if it does.
		c.pending = append([]*orders.Order{order}, c.pending...)
		return
	}

	group, ok := c.groupLookup(order.GroupID)
	if !ok {
		order.Status = orders.StatusFailed
		order.FailReason = "unknown_group"
		c.sink.Event(telemetry.DeliveryEvent{TimestampS: now, Kind: telemetry.EventOrderFailed, OrderID: order.OrderID})
		c.onRunnerReturn(now, runnerID) // runner is still idle; try the next pending order
		return
	}

	node, meetingS, err := c.predictor.Predict(now, group)
	if err != nil {
		order.Status = orders.StatusFailed
		order.FailReason = "unroutable"
		c.sink.Event(telemetry.DeliveryEvent{TimestampS: now, Kind: telemetry.EventOrderFailed, OrderID: order.OrderID, Extra: map[string]string{"reason": "unroutable"}})
		c.onRunnerReturn(now, runnerID)
		return
	}
	if meetingS > c.serviceCloseS+c.graceS {
		order.Status = orders.StatusFailed
		order.FailReason = "stale_prediction"
		c.sink.Event(telemetry.DeliveryEvent{TimestampS: now, Kind: telemetry.EventOrderFailed, OrderID: order.OrderID, Extra: map[string]string{"reason": "stale_prediction"}})
		c.onRunnerReturn(now, runnerID)
		return
	}
	order.PredictedMeetingNode = node
	order.PredictedMeetingS = meetingS
	target.Assign(now, order, c.prepTimeS, c.onRunnerReturn)
}

// FinalizePending marks every order still in the queue at service close
// + grace as pending (not failed) — orders that were never reached are
// accounted separately from orders that were tried and rejected. The
// one exception is a fleet of zero runners: no order could ever be
// reached in that configuration, so it is `failed` (reason
// "no_runner_available") rather than indefinitely "still queued".
func (c *Controller) FinalizePending(now int64) []*orders.Order {
	remaining := c.pending
	c.pending = nil
	noRunners := len(c.runners) == 0
	for _, o := range remaining {
		if noRunners {
			o.Status = orders.StatusFailed
			o.FailReason = "no_runner_available"
			c.sink.Event(telemetry.DeliveryEvent{TimestampS: now, Kind: telemetry.EventOrderFailed, OrderID: o.OrderID, Extra: map[string]string{"reason": "no_runner_available"}})
			continue
		}
		o.Status = orders.StatusPending
		c.sink.Event(telemetry.DeliveryEvent{TimestampS: now, Kind: telemetry.EventOrderPending, OrderID: o.OrderID})
	}
	return remaining
}

// PendingLen reports the number of orders currently queued.
func (c *Controller) PendingLen() int { return len(c.pending) }
