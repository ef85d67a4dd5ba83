// Package engine wires every layer — course, router, predictor,
// scheduler, runners, dispatch, order generation, and metrics — into the
// two stable entry points the rest of the system calls through:
// RunSimulation and AggregateRuns. A single loop drains the event queue
// to the horizon over a handful of wired components.
package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/golfsim/golfsim/config"
	"github.com/golfsim/golfsim/course"
	"github.com/golfsim/golfsim/dispatch"
	"github.com/golfsim/golfsim/metrics"
	"github.com/golfsim/golfsim/orders"
	"github.com/golfsim/golfsim/predict"
	"github.com/golfsim/golfsim/routing"
	"github.com/golfsim/golfsim/runner"
	"github.com/golfsim/golfsim/scheduler"
	"github.com/golfsim/golfsim/telemetry"
)

// RunResult is everything one simulation run produces: the full order
// lifecycle, the event and coordinate streams, and the derived KPIs.
type RunResult struct {
	Config           *config.SimulationConfig
	Seed             int64
	CombinationIndex int
	Orders           []orders.Order
	Events           []telemetry.DeliveryEvent
	Coordinates      []telemetry.CoordinateRecord
	Metrics          metrics.RunMetrics
	Shortfall        bool
}

// recordingSink accumulates every telemetry record a run produces, for
// the I/O serializer to write out afterward.
type recordingSink struct {
	events []telemetry.DeliveryEvent
	coords []telemetry.CoordinateRecord
}

func (s *recordingSink) Event(e telemetry.DeliveryEvent) { s.events = append(s.events, e) }
func (s *recordingSink) Coordinates(recs []telemetry.CoordinateRecord) {
	s.coords = append(s.coords, recs...)
}

// golferTrack replays the course's canonical golfer path for one group,
// shifted by its tee time and clipped to the run horizon, as the
// unscheduled half of the combined golfer+runner coordinate stream — the
// runner's own track is emitted event-by-event as it drives; a group that
// never orders still walks the course and still belongs in
// coordinates.csv.
func golferTrack(c *course.Course, g orders.GolferGroup, horizonS int64) []telemetry.CoordinateRecord {
	var recs []telemetry.CoordinateRecord
	for _, sample := range c.GolferPath {
		ts := g.TeeTimeS + sample.CumulativeS
		if ts < 0 || ts > horizonS {
			continue
		}
		lat, lon, ok := c.NodeCoord(sample.NodeID)
		if !ok {
			continue
		}
		recs = append(recs, telemetry.CoordinateRecord{
			TimestampS: ts,
			ActorID:    g.GroupID,
			ActorKind:  telemetry.ActorGolfer,
			Lat:        lat,
			Lon:        lon,
			Hole:       c.HoleAt(lat, lon),
		})
	}
	return recs
}

// RunSimulation runs one simulation using the configuration's own
// base_seed. Use RunSimulationAt to run the same configuration under a
// different seed, as the batch driver does across repeated runs.
func RunSimulation(cfg *config.SimulationConfig) (*RunResult, error) {
	return RunSimulationAt(cfg, cfg.Orders.BaseSeed, 0)
}

// RunSimulationAt runs cfg with an explicit seed and combination index,
// recorded on the result for the batch driver's per-worker bookkeeping.
func RunSimulationAt(cfg *config.SimulationConfig, seed int64, combinationIndex int) (*RunResult, error) {
	c, err := course.Load(cfg.CourseID)
	if err != nil {
		return nil, fmt.Errorf("engine: loading course: %w", err)
	}
	groups, err := orders.LoadTeeSheet(cfg.TeeSheet)
	if err != nil {
		return nil, fmt.Errorf("engine: loading tee sheet: %w", err)
	}

	router := routing.New(c)
	sched := scheduler.New()
	sink := &recordingSink{}
	predictor := predict.New(c, router, cfg.Timing.PrepTimeS, cfg.Timing.RunnerSpeedMS)

	runners := make([]*runner.Runner, cfg.Runners.RunnerCount)
	for i := range runners {
		runners[i] = runner.New(fmt.Sprintf("runner_%d", i), c, router, sched, sink, cfg.Timing.HandoffS, cfg.Timing.RunnerSpeedMS)
	}

	groupByID := make(map[string]orders.GolferGroup, len(groups))
	for _, g := range groups {
		groupByID[g.GroupID] = g
	}
	horizonForTrack := cfg.Timing.ServiceCloseS + cfg.Timing.GraceS
	for _, g := range groups {
		sink.Coordinates(golferTrack(c, g, horizonForTrack))
	}
	lookup := func(id string) (orders.GolferGroup, bool) {
		g, ok := groupByID[id]
		return g, ok
	}

	ctrl := dispatch.New(runners, predictor, router, sched, sink, lookup,
		cfg.Timing.PrepTimeS, cfg.Timing.ServiceCloseS, cfg.Timing.GraceS)

	gen := orders.NewGenerator(c, groups, cfg.Orders.BlockedHoles, cfg.Orders.HourlyDistribution,
		cfg.Timing.ServiceOpenS, cfg.Timing.ServiceCloseS, seed)
	generated, shortfall, err := gen.Generate(cfg.Orders.TotalOrders)
	if err != nil {
		return nil, fmt.Errorf("engine: generating orders: %w", err)
	}
	// Generate already returns orders sorted by PlacedS with IDs assigned
	// in that order.
	if shortfall {
		logrus.Warnf("engine: order generation fell short of total_orders=%d given the tee sheet and blocked holes", cfg.Orders.TotalOrders)
	}

	allOrders := make([]*orders.Order, len(generated))
	for i := range generated {
		allOrders[i] = &generated[i]
	}
	for _, order := range allOrders {
		order := order
		sched.Schedule(order.PlacedS, scheduler.KindOrderPlaced, order.OrderID, "", func(now int64) {
			ctrl.Submit(now, order)
		})
	}

	horizon := cfg.Timing.ServiceCloseS + cfg.Timing.GraceS
	logrus.Infof("engine: run seed=%d combination=%d runners=%d orders=%d horizon=%ds",
		seed, combinationIndex, len(runners), len(allOrders), horizon)
	sched.RunUntil(horizon)
	ctrl.FinalizePending(horizon)

	finalOrders := make([]orders.Order, len(allOrders))
	for i, o := range allOrders {
		finalOrders[i] = *o
	}

	activeS := make([]int64, len(runners))
	serviceSpanS := make([]int64, len(runners))
	for i, rn := range runners {
		rn.FinalizeAt(horizon)
		activeS[i] = rn.ActiveHoursS()
		serviceSpanS[i] = rn.ServiceSpanS()
	}
	shiftDurationS := cfg.Timing.ServiceCloseS - cfg.Timing.ServiceOpenS
	m := metrics.Compute(finalOrders, activeS, serviceSpanS, shiftDurationS, cfg.Timing.SLAS, cfg.Runners.AvgOrderValue)

	logrus.Infof("engine: run complete delivered=%d failed=%d pending=%d", m.Delivered, m.Failed, m.Pending)

	return &RunResult{
		Config:           cfg,
		Seed:             seed,
		CombinationIndex: combinationIndex,
		Orders:           finalOrders,
		Events:           sink.events,
		Coordinates:      sink.coords,
		Metrics:          m,
		Shortfall:        shortfall,
	}, nil
}

// AggregateRuns folds a batch of RunResults (expected to share the same
// configuration, differing only in seed) into cross-run statistics.
func AggregateRuns(results []*RunResult) (*metrics.Aggregate, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("engine: cannot aggregate zero runs")
	}
	runMetrics := make([]metrics.RunMetrics, len(results))
	for i, r := range results {
		runMetrics[i] = r.Metrics
	}
	agg := metrics.AggregateRuns(runMetrics)
	return &agg, nil
}
