package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeTempConfig(t, `
course_dir: testdata/course
tee_sheet: testdata/tees.csv
timing:
  service_open_s: 0
  service_close_s: 25200
  grace_s: 600
  sla_s: 2100
  prep_time_s: 600
  handoff_s: 60
  runner_speed_m_s: 2.68
runners:
  runner_count: 1
  avg_order_value: 12.5
orders:
  total_orders: 10
  base_seed: 42
batch:
  runs_per_combination: 1
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Orders.TotalOrders != 10 {
		t.Errorf("TotalOrders = %d, want 10", cfg.Orders.TotalOrders)
	}
	if cfg.Timing.RunnerSpeedMS != 2.68 {
		t.Errorf("RunnerSpeedMS = %f, want 2.68", cfg.Timing.RunnerSpeedMS)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeTempConfig(t, `
timing:
  service_open_s: 0
  service_close_s: 3600
  sla_s: 900
orders:
  total_orders: 1
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Timing.RunnerSpeedMS != 2.68 {
		t.Errorf("default RunnerSpeedMS = %f, want 2.68", cfg.Timing.RunnerSpeedMS)
	}
	if cfg.Batch.RunsPerCombination != 1 {
		t.Errorf("default RunsPerCombination = %d, want 1", cfg.Batch.RunsPerCombination)
	}
}

func TestLoad_RejectsUnknownField(t *testing.T) {
	path := writeTempConfig(t, `
timing:
  service_open_s: 0
  service_close_s: 3600
  sla_s: 900
  prep_tme_s: 600
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load() with a typo'd field should fail under strict parsing")
	}
}

func TestValidate_RejectsInvertedServiceWindow(t *testing.T) {
	cfg := SimulationConfig{Timing: TimingConfig{ServiceOpenS: 1000, ServiceCloseS: 500, SLAS: 900}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should reject service_close_s <= service_open_s")
	}
}

func TestValidate_RejectsAllHolesBlocked(t *testing.T) {
	blocked := make([]int, 18)
	for i := range blocked {
		blocked[i] = i + 1
	}
	cfg := SimulationConfig{
		Timing: TimingConfig{ServiceOpenS: 0, ServiceCloseS: 3600, SLAS: 900, RunnerSpeedMS: 2.68},
		Orders: OrderConfig{BlockedHoles: blocked},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should reject blocking every hole")
	}
}

func TestValidate_RejectsBadHourlyDistribution(t *testing.T) {
	cfg := SimulationConfig{
		Timing: TimingConfig{ServiceOpenS: 0, ServiceCloseS: 3600, SLAS: 900, RunnerSpeedMS: 2.68},
		Orders: OrderConfig{HourlyDistribution: []float64{0.5, 0.4}},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should reject a distribution that does not sum to 1")
	}
}

func TestValidate_AcceptsZeroRunners(t *testing.T) {
	cfg := SimulationConfig{
		Timing:  TimingConfig{ServiceOpenS: 0, ServiceCloseS: 3600, SLAS: 900, RunnerSpeedMS: 2.68},
		Runners: RunnerConfig{RunnerCount: 0},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() should accept runner_count = 0, got %v", err)
	}
}
