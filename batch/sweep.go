package batch

import (
	"context"
	"fmt"

	"github.com/golfsim/golfsim/config"
	"github.com/golfsim/golfsim/metrics"
	"github.com/golfsim/golfsim/serialize"
)

// SweepResult is one order level's full staffing evaluation: one
// StaffingPoint per candidate runner count, and the recommended runner
// count (if any configuration stable-meets-target at this order level).
type SweepResult struct {
	OrderLevel  int
	Points      []metrics.StaffingPoint
	Recommended int
	Found       bool
}

// Sweep evaluates every (order_level, runner_count) combination named by
// cfg.Batch.OrderLevels x cfg.Batch.RunnerCounts (each defaulting to the
// single value already on cfg.Orders.TotalOrders / cfg.Runners.RunnerCount
// when left empty), runs RunsPerCombination repetitions of each, and
// returns the Pareto frontier, knee point, and stability-based staffing
// recommendation per order level.
func Sweep(ctx context.Context, cfg *config.SimulationConfig, outDir string) ([]SweepResult, error) {
	orderLevels := cfg.Batch.OrderLevels
	if len(orderLevels) == 0 {
		orderLevels = []int{cfg.Orders.TotalOrders}
	}
	runnerCounts := cfg.Batch.RunnerCounts
	if len(runnerCounts) == 0 {
		runnerCounts = []int{cfg.Runners.RunnerCount}
	}

	targets := metrics.StabilityTargets{
		TargetOnTime: cfg.Batch.TargetOnTime,
		MaxFailed:    cfg.Batch.MaxFailedRate,
		MaxP90S:      cfg.Batch.MaxP90S,
	}

	results := make([]SweepResult, 0, len(orderLevels))
	combinationIndex := 0
	for _, orderLevel := range orderLevels {
		points := make([]metrics.StaffingPoint, 0, len(runnerCounts))
		for _, runnerCount := range runnerCounts {
			runCfg := *cfg
			runCfg.Orders.TotalOrders = orderLevel
			runCfg.Runners.RunnerCount = runnerCount

			combo := Combination{RunnerCount: runnerCount, OrderLevel: orderLevel, Index: combinationIndex}
			combinationIndex++

			cr, err := RunCombination(ctx, &runCfg, combo, outDir)
			if err != nil {
				return nil, fmt.Errorf("batch: sweep order_level=%d runner_count=%d: %w", orderLevel, runnerCount, err)
			}
			points = append(points, metrics.StaffingPoint{RunnerCount: runnerCount, Aggregate: cr.Aggregate})
		}

		scoreNormalizers(points, targets)
		recommended, found := metrics.RecommendStaffing(points, targets)
		results = append(results, SweepResult{
			OrderLevel:  orderLevel,
			Points:      points,
			Recommended: recommended,
			Found:       found,
		})
	}
	return results, nil
}

// scoreNormalizers fills in each point's composite score, normalizing
// p90 and orders-per-runner-hour against the max observed across the
// sweep so the 0.2-weighted terms in CompositeScore stay in [0,1]-ish
// range regardless of the scenario's absolute magnitudes.
func scoreNormalizers(points []metrics.StaffingPoint, _ metrics.StabilityTargets) {
	var p90Max, throughputMax float64
	for _, p := range points {
		if p.Aggregate.MeanP90 > p90Max {
			p90Max = p.Aggregate.MeanP90
		}
		if p.Aggregate.MeanOrdersPerHour > throughputMax {
			throughputMax = p.Aggregate.MeanOrdersPerHour
		}
	}
	for i := range points {
		points[i].Score = metrics.CompositeScore(points[i].Aggregate, p90Max, throughputMax)
	}
}

// ToStaffingRows flattens a Sweep's results into the flat per-row shape
// staffing_summary.csv writes: one row per (scenario, order_level,
// runner_count).
func ToStaffingRows(scenario string, results []SweepResult) []serialize.StaffingRow {
	var rows []serialize.StaffingRow
	for _, r := range results {
		for _, p := range r.Points {
			rows = append(rows, serialize.StaffingRow{
				Scenario:    scenario,
				OrderLevel:  r.OrderLevel,
				RunnerCount: p.RunnerCount,
				Aggregate:   p.Aggregate,
				Frontier:    p.OnFrontier,
				Knee:        p.IsKnee,
				Stable:      p.Stable,
			})
		}
	}
	return rows
}
