package metrics

import (
	"testing"

	"github.com/golfsim/golfsim/orders"
)

func TestPercentile_Interpolates(t *testing.T) {
	data := []float64{10, 20, 30, 40}
	if got := Percentile(data, 50); got != 25 {
		t.Errorf("Percentile(50) = %v, want 25", got)
	}
	if got := Percentile(data, 0); got != 10 {
		t.Errorf("Percentile(0) = %v, want 10", got)
	}
	if got := Percentile(data, 100); got != 40 {
		t.Errorf("Percentile(100) = %v, want 40", got)
	}
}

func TestPercentile_Empty(t *testing.T) {
	if got := Percentile(nil, 50); got != 0 {
		t.Errorf("Percentile(nil) = %v, want 0", got)
	}
}

func delivered(id string, placedS, meetingS int64) orders.Order {
	return orders.Order{
		OrderID:        id,
		Status:         orders.StatusDelivered,
		PlacedS:        placedS,
		ActualMeetingS: meetingS,
	}
}

func TestCompute_OnTimeRateAndPercentiles(t *testing.T) {
	allOrders := []orders.Order{
		delivered("o1", 0, 500),
		delivered("o2", 0, 1500),
		{OrderID: "o3", Status: orders.StatusFailed, FailReason: "unroutable"},
		{OrderID: "o4", Status: orders.StatusPending},
	}
	m := Compute(allOrders, []int64{3600}, []int64{3600}, 28800, 1200, 8.0)

	if m.TotalOrders != 4 {
		t.Errorf("TotalOrders = %d, want 4", m.TotalOrders)
	}
	if m.Delivered != 2 {
		t.Errorf("Delivered = %d, want 2", m.Delivered)
	}
	if m.Failed != 1 {
		t.Errorf("Failed = %d, want 1", m.Failed)
	}
	if m.Pending != 1 {
		t.Errorf("Pending = %d, want 1", m.Pending)
	}
	if m.OnTimeRate == nil || *m.OnTimeRate != 0.5 {
		t.Errorf("OnTimeRate = %v, want 0.5", m.OnTimeRate)
	}
	if m.Revenue != 16.0 {
		t.Errorf("Revenue = %v, want 16.0", m.Revenue)
	}
}

func TestCompute_NoDeliveriesLeavesRatesNil(t *testing.T) {
	allOrders := []orders.Order{
		{OrderID: "o1", Status: orders.StatusFailed},
	}
	m := Compute(allOrders, nil, nil, 28800, 1200, 8.0)
	if m.OnTimeRate != nil {
		t.Errorf("OnTimeRate = %v, want nil with zero deliveries", m.OnTimeRate)
	}
	if m.P90DeliveryCycleS != nil {
		t.Errorf("P90DeliveryCycleS = %v, want nil", m.P90DeliveryCycleS)
	}
}

func TestCompute_RunnerUtilization(t *testing.T) {
	allOrders := []orders.Order{delivered("o1", 0, 500)}
	m := Compute(allOrders, []int64{3600, 1800}, []int64{3600, 1800}, 7200, 1200, 8.0)
	// total active 5400s over 2 runners * 7200s shift = 0.375
	want := 5400.0 / (2 * 7200.0)
	if m.RunnerUtilization != want {
		t.Errorf("RunnerUtilization = %v, want %v", m.RunnerUtilization, want)
	}
}

func TestWilsonLowerBound_BelowRawRate(t *testing.T) {
	lo := wilsonLowerBound(90, 100)
	if lo >= 0.9 {
		t.Errorf("wilsonLowerBound(90,100) = %v, want < 0.9 (lower bound shrinks raw rate)", lo)
	}
	if lo <= 0 {
		t.Errorf("wilsonLowerBound(90,100) = %v, want > 0", lo)
	}
}

func TestWilsonLowerBound_ZeroTotal(t *testing.T) {
	if got := wilsonLowerBound(0, 0); got != 0 {
		t.Errorf("wilsonLowerBound(0,0) = %v, want 0", got)
	}
}

func TestAggregateRuns_PooledAcrossRuns(t *testing.T) {
	r1OnTime := 0.9
	r2OnTime := 0.8
	runs := []RunMetrics{
		{Delivered: 10, OnTimeRate: &r1OnTime, FailedRate: 0.05},
		{Delivered: 10, OnTimeRate: &r2OnTime, FailedRate: 0.10},
	}
	agg := AggregateRuns(runs)
	if agg.Runs != 2 {
		t.Errorf("Runs = %d, want 2", agg.Runs)
	}
	wantMean := (r1OnTime + r2OnTime) / 2
	if agg.MeanOnTimeRate != wantMean {
		t.Errorf("MeanOnTimeRate = %v, want %v", agg.MeanOnTimeRate, wantMean)
	}
	if agg.WilsonLoOnTime <= 0 || agg.WilsonLoOnTime >= 1 {
		t.Errorf("WilsonLoOnTime = %v, want in (0,1)", agg.WilsonLoOnTime)
	}
}

func TestAggregateRuns_Empty(t *testing.T) {
	agg := AggregateRuns(nil)
	if agg.Runs != 0 {
		t.Errorf("Runs = %d, want 0", agg.Runs)
	}
}

func TestIsStable(t *testing.T) {
	agg := Aggregate{WilsonLoOnTime: 0.9, MeanFailedRate: 0.02, MeanP90: 900}
	targets := StabilityTargets{TargetOnTime: 0.85, MaxFailed: 0.05, MaxP90S: 1200}
	if !agg.IsStable(targets) {
		t.Error("expected stable")
	}
	targets.TargetOnTime = 0.95
	if agg.IsStable(targets) {
		t.Error("expected unstable when on-time target not met")
	}
}
