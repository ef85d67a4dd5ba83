// Package metrics computes per-run KPIs, cross-run statistical
// aggregation, and the Pareto-frontier / knee-point staffing
// recommender.
package metrics

import (
	"math"
	"sort"

	"github.com/golfsim/golfsim/orders"
)

// RunMetrics holds the KPIs computed from a single simulation run.
type RunMetrics struct {
	TotalOrders            int      `json:"total_orders"`
	Delivered              int      `json:"delivered"`
	Failed                 int      `json:"failed"`
	Pending                int      `json:"pending"`
	OnTimeRate             *float64 `json:"on_time_rate"`
	FailedRate             float64  `json:"failed_rate"`
	P50DeliveryCycleS      *float64 `json:"p50_delivery_cycle_s"`
	P90DeliveryCycleS      *float64 `json:"p90_delivery_cycle_s"`
	OrdersPerRunnerHour    *float64 `json:"orders_per_runner_hour"`
	RunnerUtilization      float64  `json:"runner_utilization"`
	ActiveHoursUtilization float64  `json:"active_hours_utilization"`
	Revenue                float64  `json:"revenue"`
}

// Compute derives RunMetrics from the final order list and the runner
// roster's activity logs. slaS is the on-time threshold; shiftDurationS
// is the nominal shift length used as the primary utilization basis.
// runnerServiceSpanS (first assignment to last activity boundary, per
// runner) backs the secondary active-hours utilization basis, since
// shift-duration and active-hours denominators answer different
// staffing questions: "how busy was the fleet I paid for" versus "how
// busy was a runner once they started working".
func Compute(allOrders []orders.Order, runnerActiveS []int64, runnerServiceSpanS []int64, shiftDurationS int64, slaS int64, avgOrderValue float64) RunMetrics {
	m := RunMetrics{TotalOrders: len(allOrders)}

	var cycles []float64
	var onTime, delivered int
	for _, o := range allOrders {
		switch o.Status {
		case orders.StatusDelivered:
			delivered++
			cycle := float64(o.DeliveryCycleS())
			cycles = append(cycles, cycle)
			if o.DeliveryCycleS() <= slaS {
				onTime++
			}
		case orders.StatusFailed:
			m.Failed++
		case orders.StatusPending:
			m.Pending++
		}
	}
	m.Delivered = delivered

	if len(allOrders) > 0 {
		m.FailedRate = float64(m.Failed) / float64(len(allOrders))
	}
	if delivered > 0 {
		rate := float64(onTime) / float64(delivered)
		m.OnTimeRate = &rate
		p50 := Percentile(cycles, 50)
		p90 := Percentile(cycles, 90)
		m.P50DeliveryCycleS = &p50
		m.P90DeliveryCycleS = &p90
		m.Revenue = float64(delivered) * avgOrderValue
	}

	var totalActiveS int64
	for _, a := range runnerActiveS {
		totalActiveS += a
	}
	numRunners := len(runnerActiveS)
	if numRunners > 0 && shiftDurationS > 0 {
		m.RunnerUtilization = float64(totalActiveS) / float64(int64(numRunners)*shiftDurationS)
	}
	if totalActiveS > 0 {
		activeHours := float64(totalActiveS) / 3600.0
		rate := float64(delivered) / activeHours
		m.OrdersPerRunnerHour = &rate
	}

	var totalServiceSpanS int64
	for _, s := range runnerServiceSpanS {
		totalServiceSpanS += s
	}
	if totalServiceSpanS > 0 {
		m.ActiveHoursUtilization = float64(totalActiveS) / float64(totalServiceSpanS)
	}

	return m
}

// Percentile returns the p-th percentile of data via linear
// interpolation between the two bracketing order statistics.
func Percentile(data []float64, p float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, data)
	sort.Float64s(sorted)

	rank := p / 100.0 * float64(n-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	if upper >= n {
		return sorted[n-1]
	}
	frac := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}
