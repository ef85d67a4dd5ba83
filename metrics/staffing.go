package metrics

import "sort"

// StaffingPoint is one evaluated runner count's aggregate result, with
// the composite score the frontier and knee-point logic rank on.
type StaffingPoint struct {
	RunnerCount int
	Aggregate   Aggregate
	Score       float64
	OnFrontier  bool
	IsKnee      bool
	Stable      bool
}

// CompositeScore implements s(r) = 0.3*on_time + 0.3*(1-failed) +
// 0.2*(1 - p90/normalizer) + 0.2*(orders_per_runner_hour/normalizer).
func CompositeScore(a Aggregate, p90Normalizer, throughputNormalizer float64) float64 {
	onTimeTerm := 0.3 * a.MeanOnTimeRate
	failedTerm := 0.3 * (1 - a.MeanFailedRate)

	p90Term := 0.0
	if p90Normalizer > 0 {
		p90Term = 0.2 * (1 - a.MeanP90/p90Normalizer)
	}
	throughputTerm := 0.0
	if throughputNormalizer > 0 {
		throughputTerm = 0.2 * (a.MeanOrdersPerHour / throughputNormalizer)
	}
	return onTimeTerm + failedTerm + p90Term + throughputTerm
}

// RecommendStaffing evaluates runner counts r in {1..Rmax} (already
// aggregated by the caller into `points`, one per r, sorted ascending by
// RunnerCount), flags the Pareto frontier and knee point, and returns
// the recommended runner count. ok is false if no runner count
// stable-meets-target — "no viable staffing at this order level" is
// reported rather than picking an unstable one.
func RecommendStaffing(points []StaffingPoint, targets StabilityTargets) (recommended int, ok bool) {
	sort.Slice(points, func(i, j int) bool { return points[i].RunnerCount < points[j].RunnerCount })

	for i := range points {
		points[i].Stable = points[i].Aggregate.IsStable(targets)
	}
	markParetoFrontier(points)

	frontier := make([]int, 0, len(points))
	for i, p := range points {
		if p.OnFrontier {
			frontier = append(frontier, i)
		}
	}

	kneeIdx, found := kneePoint(points, frontier)
	if found {
		points[kneeIdx].IsKnee = true
		if points[kneeIdx].Stable {
			return points[kneeIdx].RunnerCount, true
		}
	}

	// Fall back to the minimal runner count that stable-meets-target.
	for _, p := range points {
		if p.Stable {
			return p.RunnerCount, true
		}
	}
	return 0, false
}

// markParetoFrontier flags every point not dominated on the 4-tuple
// (on_time up, 1-failed up, -p90 up, orders_per_runner_hour up).
func markParetoFrontier(points []StaffingPoint) {
	for i := range points {
		dominated := false
		for j := range points {
			if i == j {
				continue
			}
			if dominates(points[j], points[i]) {
				dominated = true
				break
			}
		}
		points[i].OnFrontier = !dominated
	}
}

func dominates(a, b StaffingPoint) bool {
	aOnTime, bOnTime := a.Aggregate.MeanOnTimeRate, b.Aggregate.MeanOnTimeRate
	aFailed, bFailed := 1-a.Aggregate.MeanFailedRate, 1-b.Aggregate.MeanFailedRate
	aP90, bP90 := -a.Aggregate.MeanP90, -b.Aggregate.MeanP90
	aThroughput, bThroughput := a.Aggregate.MeanOrdersPerHour, b.Aggregate.MeanOrdersPerHour

	betterOrEqual := aOnTime >= bOnTime && aFailed >= bFailed && aP90 >= bP90 && aThroughput >= bThroughput
	strictlyBetter := aOnTime > bOnTime || aFailed > bFailed || aP90 > bP90 || aThroughput > bThroughput
	return betterOrEqual && strictlyBetter
}

// kneePoint finds the frontier point at which the second difference of
// the composite score is most negative — diminishing returns.
func kneePoint(points []StaffingPoint, frontier []int) (idx int, found bool) {
	if len(frontier) < 3 {
		if len(frontier) > 0 {
			return frontier[len(frontier)-1], true
		}
		return 0, false
	}

	bestIdx := frontier[1]
	bestSecondDiff := 0.0
	first := true
	for k := 1; k < len(frontier)-1; k++ {
		prev, cur, next := points[frontier[k-1]].Score, points[frontier[k]].Score, points[frontier[k+1]].Score
		secondDiff := (next - cur) - (cur - prev)
		if first || secondDiff < bestSecondDiff {
			bestSecondDiff = secondDiff
			bestIdx = frontier[k]
			first = false
		}
	}
	return bestIdx, true
}
