// Package orders generates the deterministic-given-seed order list that
// feeds Dispatch, and owns the Order type's lifecycle states. Orders are
// created here and thereafter mutated only by dispatch and runner.
package orders

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/golfsim/golfsim/course"
)

// Status is the tagged-variant lifecycle state of an Order. Transitions
// are monotonic in the order listed below, except the queued -> failed
// edge which may fire at any point before delivery.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusPrepping Status = "prepping"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
	StatusPending   Status = "pending"
)

// GolferGroup is a tee-time sheet entry.
type GolferGroup struct {
	GroupID  string
	TeeTimeS int64
	Size     int
}

// Order is a single delivery request. PlacedS <= PredictedMeetingS always
// holds; once Status is Delivered, ActualMeetingS is fixed.
type Order struct {
	OrderID              string
	GroupID              string
	PlacedS              int64
	HoleAtPlacement      int
	PredictedMeetingNode string
	PredictedMeetingS    int64
	AssignedRunnerID     string
	Status               Status
	FailReason           string
	ActualMeetingS       int64
	RunnerReturnS        int64
}

// DeliveryCycleS is actual_meeting_s - placed_s. Only meaningful once the
// order has been delivered.
func (o *Order) DeliveryCycleS() int64 {
	if o.Status != StatusDelivered {
		return 0
	}
	return o.ActualMeetingS - o.PlacedS
}

// TotalCycleS is runner_return_s - placed_s.
func (o *Order) TotalCycleS() int64 {
	if o.Status != StatusDelivered {
		return 0
	}
	return o.RunnerReturnS - o.PlacedS
}

// Generator produces an order list honoring a blocked-hole set with
// exact-count preservation: blocking is enforced at generation, never as
// a post-filter that would silently corrupt cross-scenario comparisons.
//
// Group selection draws from one shared stream (groupRNG); each group's
// own placement-time retries draw from an isolated stream handed out by
// a PartitionedRNG, keyed on group_id. That isolation means adding or
// removing a group from the tee sheet never perturbs another group's
// draw sequence, matching the isolation per-client workload streams
// give an arrival generator.
type Generator struct {
	course        *course.Course
	groups        []GolferGroup
	blockedHoles  map[int]bool
	hourlyDist    []float64
	serviceOpenS  int64
	serviceCloseS int64
	groupRNG      *rand.Rand
	prng          *PartitionedRNG
}

const maxPlacementAttempts = 20

// NewGenerator builds a Generator over the given groups and blocked-hole
// set. hourlyDist must sum to 1 across the service window, or be empty
// for a uniform distribution.
func NewGenerator(c *course.Course, groups []GolferGroup, blockedHoles []int, hourlyDist []float64, serviceOpenS, serviceCloseS int64, seed int64) *Generator {
	blocked := make(map[int]bool, len(blockedHoles))
	for _, h := range blockedHoles {
		blocked[h] = true
	}
	return &Generator{
		course:        c,
		groups:        groups,
		blockedHoles:  blocked,
		hourlyDist:    hourlyDist,
		serviceOpenS:  serviceOpenS,
		serviceCloseS: serviceCloseS,
		groupRNG:      rand.New(rand.NewSource(seed)),
		prng:          NewPartitionedRNG(seed),
	}
}

// Generate returns exactly n orders unless n exceeds what is feasible
// given the groups' tee times and the blocked-hole set, in which case it
// returns as many as could be placed and reports shortfall = true.
func (g *Generator) Generate(n int) (result []Order, shortfall bool, err error) {
	if n < 0 {
		return nil, false, fmt.Errorf("orders: n must be >= 0, got %d", n)
	}
	if n == 0 {
		return nil, false, nil
	}
	if len(g.groups) == 0 {
		return nil, true, nil
	}

	result = make([]Order, 0, n)
	for i := 0; i < n; i++ {
		group := g.groups[g.groupRNG.Intn(len(g.groups))]
		groupStream := g.prng.ForSubsystem(group.GroupID)

		placedS, hole, ok := g.samplePlacement(group, groupStream)
		if !ok {
			placedS, hole, ok = g.snapPlacement(group)
		}
		if !ok {
			shortfall = true
			continue
		}

		result = append(result, Order{
			GroupID:         group.GroupID,
			PlacedS:         placedS,
			HoleAtPlacement: hole,
			Status:          StatusQueued,
		})
	}

	// IDs are assigned after sorting by placement time, not in draw order,
	// so order_id is monotonic in the emitted results.json/events.csv —
	// the same order callers already see once engine.go hands the list to
	// the scheduler.
	SortByPlacement(result)
	for i := range result {
		result[i].OrderID = fmt.Sprintf("order_%d", i)
	}
	return result, shortfall, nil
}

// samplePlacement draws up to maxPlacementAttempts candidate placement
// times for group from its own isolated RNG stream, retrying whenever
// the inferred hole is blocked.
func (g *Generator) samplePlacement(group GolferGroup, stream *rand.Rand) (int64, int, bool) {
	for attempt := 0; attempt < maxPlacementAttempts; attempt++ {
		t := g.sampleServiceTime(stream)
		offset := t - group.TeeTimeS
		if offset < 0 || offset > g.course.RoundDurationS() {
			continue
		}
		hole := g.holeAtOffset(offset)
		if !g.blockedHoles[hole] {
			return t, hole, true
		}
	}
	return 0, 0, false
}

// sampleServiceTime draws a time within [serviceOpenS, serviceCloseS),
// weighted by the per-hour distribution (uniform if none was supplied).
func (g *Generator) sampleServiceTime(stream *rand.Rand) int64 {
	window := g.serviceCloseS - g.serviceOpenS
	if window <= 0 {
		return g.serviceOpenS
	}
	numBuckets := len(g.hourlyDist)
	if numBuckets == 0 {
		return g.serviceOpenS + int64(stream.Int63n(window))
	}
	bucket := g.weightedBucket(stream)
	bucketWidth := window / int64(numBuckets)
	if bucketWidth <= 0 {
		return g.serviceOpenS
	}
	return g.serviceOpenS + int64(bucket)*bucketWidth + stream.Int63n(bucketWidth)
}

func (g *Generator) weightedBucket(stream *rand.Rand) int {
	r := stream.Float64()
	var cum float64
	for i, p := range g.hourlyDist {
		cum += p
		if r <= cum {
			return i
		}
	}
	return len(g.hourlyDist) - 1
}

// snapPlacement scans the group's golfer-path samples (in round order)
// for the first one, clipped to the service window, at which the group
// is on a non-blocked hole — the fallback when retried random sampling
// fails to find one.
func (g *Generator) snapPlacement(group GolferGroup) (int64, int, bool) {
	for _, sample := range g.course.GolferPath {
		candidate := group.TeeTimeS + sample.CumulativeS
		if candidate < g.serviceOpenS || candidate >= g.serviceCloseS {
			continue
		}
		hole := g.holeAtOffset(sample.CumulativeS)
		if !g.blockedHoles[hole] {
			return candidate, hole, true
		}
	}
	return 0, 0, false
}

func (g *Generator) holeAtOffset(offsetS int64) int {
	node := g.course.PositionAt(offsetS)
	lat, lon, _ := g.course.NodeCoord(node)
	return g.course.HoleAt(lat, lon)
}

// SortByPlacement orders a slice of orders by PlacedS, stable on ties.
func SortByPlacement(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].PlacedS < orders[j].PlacedS
	})
}
