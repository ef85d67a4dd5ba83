// Package batch sweeps staffing combinations concurrently on top of
// engine.RunSimulation/engine.AggregateRuns: a bounded errgroup of
// goroutines over (base_seed, combination_index) pairs, with no shared
// mutable state between workers and a per-run wall-clock budget
// enforced by context.WithTimeout.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/golfsim/golfsim/config"
	"github.com/golfsim/golfsim/engine"
	"github.com/golfsim/golfsim/metrics"
	"github.com/golfsim/golfsim/serialize"
)

// Combination is one (runner_count, order_level) staffing scenario
// evaluated over runs_per_combination repetitions.
type Combination struct {
	RunnerCount int
	OrderLevel  int
	Index       int
}

// CombinationResult is the cross-run aggregate for one Combination, plus
// bookkeeping for workers that missed their wall-clock budget or
// otherwise failed — those repetitions are reported as missing, not
// silently folded into the aggregate.
type CombinationResult struct {
	Combination Combination
	Aggregate   metrics.Aggregate
	Missing     int
}

// runOutcome is what one worker goroutine reports back to the
// coordinator: either a completed run's metrics or a failure reason.
type runOutcome struct {
	metrics metrics.RunMetrics
	err     error
}

// RunCombination runs RunsPerCombination repetitions of cfg (already
// set to Combination's runner count and order level) concurrently,
// bounded to GOMAXPROCS workers, each under a per-run wall-clock budget.
// Per-worker results are written to outDir as independent JSON files,
// one per worker so no two goroutines ever contend for the same path.
// The coordinator merges purely from the in-memory metrics each
// goroutine returns; the written files exist for audit and crash
// forensics, not for the merge itself.
func RunCombination(ctx context.Context, cfg *config.SimulationConfig, combo Combination, outDir string) (CombinationResult, error) {
	reps := cfg.Batch.RunsPerCombination
	timeout := time.Duration(cfg.Batch.PerRunTimeoutS) * time.Second

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxWorkers())

	var mu sync.Mutex
	outcomes := make([]runOutcome, reps)

	for rep := 0; rep < reps; rep++ {
		rep := rep
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			seed := combinationSeed(cfg.Orders.BaseSeed, combo.Index, rep)
			runCtx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()

			res, err := runOneBounded(runCtx, cfg, seed, combo.Index)
			mu.Lock()
			if err != nil {
				outcomes[rep] = runOutcome{err: err}
				logrus.Warnf("batch: combination=%d rep=%d seed=%d failed: %v", combo.Index, rep, seed, err)
			} else {
				outcomes[rep] = runOutcome{metrics: res.Metrics}
				if outDir != "" {
					writeWorkerFiles(outDir, combo, rep, res)
				}
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CombinationResult{}, fmt.Errorf("batch: combination %d: %w", combo.Index, err)
	}

	var collected []metrics.RunMetrics
	missing := 0
	for _, o := range outcomes {
		if o.err != nil {
			missing++
			continue
		}
		collected = append(collected, o.metrics)
	}
	return CombinationResult{
		Combination: combo,
		Aggregate:   metrics.AggregateRuns(collected),
		Missing:     missing,
	}, nil
}

func maxWorkers() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	return n
}

// combinationSeed derives a distinct seed per (combination, rep) pair
// from a single base seed, so every worker draws an independent,
// reproducible random stream with no state shared across workers.
func combinationSeed(baseSeed int64, combinationIndex, rep int) int64 {
	return baseSeed + int64(combinationIndex)*1009 + int64(rep)
}

// runOneBounded runs one simulation in its own goroutine and returns
// early if the wall-clock budget in ctx expires first. The simulation
// itself is synchronous CPU-bound code with no internal cancellation
// points, so a timed-out run keeps executing in the background; its
// result is simply discarded by the coordinator.
func runOneBounded(ctx context.Context, cfg *config.SimulationConfig, seed int64, combinationIndex int) (*engine.RunResult, error) {
	type outcome struct {
		res *engine.RunResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := engine.RunSimulationAt(cfg, seed, combinationIndex)
		done <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("exceeded per-run wall-clock budget: %w", ctx.Err())
	case o := <-done:
		return o.res, o.err
	}
}

func writeWorkerFiles(outDir string, combo Combination, rep int, res *engine.RunResult) {
	base := fmt.Sprintf("worker_c%d_r%d", combo.Index, rep)
	metricsPath := filepath.Join(outDir, base+"_metrics.json")
	if err := serialize.WriteMetrics(metricsPath, res.Metrics); err != nil {
		logrus.Warnf("batch: writing %s: %v", metricsPath, err)
	}
}
