package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompositeScore_HigherIsBetter(t *testing.T) {
	good := Aggregate{MeanOnTimeRate: 0.95, MeanFailedRate: 0.01, MeanP90: 600, MeanOrdersPerHour: 5}
	bad := Aggregate{MeanOnTimeRate: 0.6, MeanFailedRate: 0.2, MeanP90: 1800, MeanOrdersPerHour: 1}
	require.Greater(t, CompositeScore(good, 1200, 5), CompositeScore(bad, 1200, 5))
}

func TestCompositeScore_ZeroNormalizersDontPanic(t *testing.T) {
	a := Aggregate{MeanOnTimeRate: 0.9, MeanFailedRate: 0.1, MeanP90: 900, MeanOrdersPerHour: 3}
	_ = CompositeScore(a, 0, 0)
}

// mkPoint builds a StaffingPoint as if it came from a large, tight batch
// of runs: the Wilson lower bound and upper-CI fields are derived from the
// same rates (assuming near-zero across-run variance), so IsStable reads
// off them the same way RecommendStaffing does on real aggregated data.
func mkPoint(r int, onTime, failed, p90, opph float64) StaffingPoint {
	const assumedN = 1000
	a := Aggregate{
		MeanOnTimeRate:    onTime,
		MeanFailedRate:    failed,
		MeanP90:           p90,
		MeanOrdersPerHour: opph,
		WilsonLoOnTime:    wilsonLowerBound(int(onTime*assumedN), assumedN),
		UpperCIFailedRate: failed,
		UpperCIP90:        p90,
	}
	return StaffingPoint{RunnerCount: r, Aggregate: a, Score: CompositeScore(a, 1200, 6)}
}

func TestRecommendStaffing_PicksMinimalStableWhenNoKneeStable(t *testing.T) {
	points := []StaffingPoint{
		mkPoint(1, 0.5, 0.3, 2000, 2),
		mkPoint(2, 0.93, 0.02, 900, 5),
		mkPoint(3, 0.94, 0.015, 850, 5.2),
	}
	targets := StabilityTargets{TargetOnTime: 0.9, MaxFailed: 0.05, MaxP90S: 1200}
	rec, ok := RecommendStaffing(points, targets)
	require.True(t, ok, "expected a viable recommendation")
	require.GreaterOrEqual(t, rec, 2, "first stable runner count")
}

func TestRecommendStaffing_NoViableStaffing(t *testing.T) {
	points := []StaffingPoint{
		mkPoint(1, 0.3, 0.4, 3000, 1),
		mkPoint(2, 0.4, 0.35, 2800, 1.5),
	}
	targets := StabilityTargets{TargetOnTime: 0.9, MaxFailed: 0.05, MaxP90S: 1200}
	_, ok := RecommendStaffing(points, targets)
	require.False(t, ok, "expected no viable staffing recommendation")
}

func TestRecommendStaffing_DiminishingReturnsPicksKnee(t *testing.T) {
	// Runner counts 1..5: on-time climbs steeply then flattens after r=3,
	// while orders per runner-hour peaks at r=2 and then falls, so r=2..5
	// each trade service against throughput and all sit on the frontier.
	points := []StaffingPoint{
		mkPoint(1, 0.5, 0.2, 2000, 3),
		mkPoint(2, 0.8, 0.08, 1400, 6),
		mkPoint(3, 0.95, 0.02, 900, 5.5),
		mkPoint(4, 0.96, 0.018, 880, 4.4),
		mkPoint(5, 0.965, 0.017, 870, 3.6),
	}
	targets := StabilityTargets{TargetOnTime: 0.9, MaxFailed: 0.05, MaxP90S: 1200}
	rec, ok := RecommendStaffing(points, targets)
	require.True(t, ok, "expected a viable recommendation")
	require.Less(t, rec, 5, "want a knee well below the saturated tail")
}

func TestMarkParetoFrontier_DominatedPointExcluded(t *testing.T) {
	points := []StaffingPoint{
		mkPoint(1, 0.7, 0.1, 1500, 3),
		mkPoint(2, 0.9, 0.05, 1000, 5), // strictly better than r=1 on every axis
	}
	markParetoFrontier(points)
	require.False(t, points[0].OnFrontier, "r=1 should be dominated by r=2 and excluded from the frontier")
	require.True(t, points[1].OnFrontier, "r=2 should be on the frontier")
}
