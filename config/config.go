// Package config loads and validates the single structured configuration
// record that every downstream component receives a read-only reference to.
// There is deliberately no mutable global configuration object: Load returns
// one SimulationConfig, Validate rejects it outright on any contradiction,
// and nothing past startup may alter it.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SimulationConfig is the full set of recognized options for a single run.
type SimulationConfig struct {
	Timing   TimingConfig   `yaml:"timing"`
	Runners  RunnerConfig   `yaml:"runners"`
	Orders   OrderConfig    `yaml:"orders"`
	Batch    BatchConfig    `yaml:"batch"`
	CourseID string         `yaml:"course_dir"`
	TeeSheet string         `yaml:"tee_sheet"`
}

// TimingConfig groups the service-window and per-order duration parameters.
type TimingConfig struct {
	ServiceOpenS  int64   `yaml:"service_open_s"`
	ServiceCloseS int64   `yaml:"service_close_s"`
	GraceS        int64   `yaml:"grace_s"`
	SLAS          int64   `yaml:"sla_s"`
	PrepTimeS     int64   `yaml:"prep_time_s"`
	HandoffS      int64   `yaml:"handoff_s"`
	RunnerSpeedMS float64 `yaml:"runner_speed_m_s"`
}

// RunnerConfig groups the runner fleet and dispatch economics.
type RunnerConfig struct {
	RunnerCount   int     `yaml:"runner_count"`
	AvgOrderValue float64 `yaml:"avg_order_value"`
}

// OrderConfig groups order-generation parameters.
type OrderConfig struct {
	TotalOrders        int       `yaml:"total_orders"`
	HourlyDistribution []float64 `yaml:"hourly_distribution"`
	BlockedHoles       []int     `yaml:"blocked_holes"`
	BaseSeed           int64     `yaml:"base_seed"`
}

// BatchConfig groups cross-run aggregation and staffing-sweep parameters.
// RunnerCounts and OrderLevels are the combination space the batch driver
// sweeps; a zero-length list defaults to the single value already carried
// on RunnerConfig/OrderConfig, so a plain `run` config doubles as a
// one-combination batch config.
type BatchConfig struct {
	RunsPerCombination int     `yaml:"runs_per_combination"`
	RunnerCounts       []int   `yaml:"runner_counts"`
	OrderLevels        []int   `yaml:"order_levels"`
	Scenario           string  `yaml:"scenario"`
	TargetOnTime       float64 `yaml:"target_on_time"`
	MaxFailedRate      float64 `yaml:"max_failed_rate"`
	MaxP90S            float64 `yaml:"max_p90_s"`
	PerRunTimeoutS     int64   `yaml:"per_run_timeout_s"`
}

// Load reads and parses a YAML simulation configuration file. Uses strict
// parsing: unrecognized keys (typos) are rejected rather than silently
// ignored.
func Load(path string) (*SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading simulation config: %w", err)
	}
	var cfg SimulationConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing simulation config: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *SimulationConfig) {
	if cfg.Timing.RunnerSpeedMS == 0 {
		cfg.Timing.RunnerSpeedMS = 2.68
	}
	if cfg.Batch.RunsPerCombination == 0 {
		cfg.Batch.RunsPerCombination = 1
	}
	if cfg.Batch.Scenario == "" {
		cfg.Batch.Scenario = "default"
	}
	if cfg.Batch.TargetOnTime == 0 {
		cfg.Batch.TargetOnTime = 0.9
	}
	if cfg.Batch.MaxFailedRate == 0 {
		cfg.Batch.MaxFailedRate = 0.05
	}
	if cfg.Batch.MaxP90S == 0 {
		cfg.Batch.MaxP90S = float64(cfg.Timing.SLAS) * 2
	}
	if cfg.Batch.PerRunTimeoutS == 0 {
		cfg.Batch.PerRunTimeoutS = 300
	}
}

// Validate rejects missing or contradictory configuration. This is the only
// place startup configuration errors are produced; every downstream
// component trusts a *SimulationConfig that passed Validate.
func (c *SimulationConfig) Validate() error {
	if c.Timing.ServiceCloseS <= c.Timing.ServiceOpenS {
		return fmt.Errorf("config: service_close_s (%d) must be after service_open_s (%d)", c.Timing.ServiceCloseS, c.Timing.ServiceOpenS)
	}
	if c.Timing.GraceS < 0 {
		return fmt.Errorf("config: grace_s must be >= 0, got %d", c.Timing.GraceS)
	}
	if c.Timing.SLAS <= 0 {
		return fmt.Errorf("config: sla_s must be > 0, got %d", c.Timing.SLAS)
	}
	if c.Timing.PrepTimeS < 0 {
		return fmt.Errorf("config: prep_time_s must be >= 0, got %d", c.Timing.PrepTimeS)
	}
	if c.Timing.HandoffS < 0 {
		return fmt.Errorf("config: handoff_s must be >= 0, got %d", c.Timing.HandoffS)
	}
	if c.Timing.RunnerSpeedMS <= 0 {
		return fmt.Errorf("config: runner_speed_m_s must be > 0, got %f", c.Timing.RunnerSpeedMS)
	}
	if c.Runners.RunnerCount < 0 {
		return fmt.Errorf("config: runner_count must be >= 0, got %d", c.Runners.RunnerCount)
	}
	if c.Orders.TotalOrders < 0 {
		return fmt.Errorf("config: total_orders must be >= 0, got %d", c.Orders.TotalOrders)
	}
	if len(c.Orders.HourlyDistribution) > 0 {
		var sum float64
		for _, p := range c.Orders.HourlyDistribution {
			if p < 0 {
				return fmt.Errorf("config: hourly_distribution entries must be >= 0")
			}
			sum += p
		}
		if sum < 0.999 || sum > 1.001 {
			return fmt.Errorf("config: hourly_distribution must sum to 1.0, got %f", sum)
		}
	}
	blocked := make(map[int]bool, len(c.Orders.BlockedHoles))
	for _, h := range c.Orders.BlockedHoles {
		if h < 1 || h > 18 {
			return fmt.Errorf("config: blocked_holes entries must be in 1..18, got %d", h)
		}
		blocked[h] = true
	}
	if len(blocked) >= 18 {
		return fmt.Errorf("config: blocked_holes may not cover every hole (no orders could ever be placed)")
	}
	if c.Batch.RunsPerCombination < 0 {
		return fmt.Errorf("config: runs_per_combination must be >= 0, got %d", c.Batch.RunsPerCombination)
	}
	for _, rc := range c.Batch.RunnerCounts {
		if rc < 0 {
			return fmt.Errorf("config: batch runner_counts entries must be >= 0, got %d", rc)
		}
	}
	for _, ol := range c.Batch.OrderLevels {
		if ol < 0 {
			return fmt.Errorf("config: batch order_levels entries must be >= 0, got %d", ol)
		}
	}
	if c.Batch.TargetOnTime < 0 || c.Batch.TargetOnTime > 1 {
		return fmt.Errorf("config: target_on_time must be in [0,1], got %f", c.Batch.TargetOnTime)
	}
	if c.Batch.MaxFailedRate < 0 || c.Batch.MaxFailedRate > 1 {
		return fmt.Errorf("config: max_failed_rate must be in [0,1], got %f", c.Batch.MaxFailedRate)
	}
	if c.Batch.MaxP90S < 0 {
		return fmt.Errorf("config: max_p90_s must be >= 0, got %f", c.Batch.MaxP90S)
	}
	if c.Batch.PerRunTimeoutS < 0 {
		return fmt.Errorf("config: per_run_timeout_s must be >= 0, got %d", c.Batch.PerRunTimeoutS)
	}
	return nil
}
