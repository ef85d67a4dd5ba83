// cmd/root.go
package cmd

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/golfsim/golfsim/batch"
	"github.com/golfsim/golfsim/config"
	"github.com/golfsim/golfsim/engine"
	"github.com/golfsim/golfsim/serialize"
)

var (
	configPath string
	outDir     string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "coursesim",
	Short: "Discrete-event simulator for on-course golf delivery",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single simulation and write its per-run outputs",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configPath)
		if err != nil {
			logrus.Fatalf("loading config: %v", err)
		}
		logrus.Infof("run: course=%s runners=%d total_orders=%d seed=%d",
			cfg.CourseID, cfg.Runners.RunnerCount, cfg.Orders.TotalOrders, cfg.Orders.BaseSeed)

		result, err := engine.RunSimulation(cfg)
		if err != nil {
			logrus.Fatalf("simulation failed: %v", err)
		}

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			logrus.Fatalf("creating output dir %s: %v", outDir, err)
		}
		if err := writeRunOutputs(outDir, cfg, result); err != nil {
			logrus.Fatalf("writing outputs: %v", err)
		}
		logrus.Infof("run complete: delivered=%d failed=%d pending=%d, outputs written to %s",
			result.Metrics.Delivered, result.Metrics.Failed, result.Metrics.Pending, outDir)
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Sweep runner counts/order levels and recommend staffing",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configPath)
		if err != nil {
			logrus.Fatalf("loading config: %v", err)
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			logrus.Fatalf("creating output dir %s: %v", outDir, err)
		}

		results, err := batch.Sweep(context.Background(), cfg, outDir)
		if err != nil {
			logrus.Fatalf("batch sweep failed: %v", err)
		}
		for _, r := range results {
			if r.Found {
				logrus.Infof("batch: order_level=%d recommended_runner_count=%d", r.OrderLevel, r.Recommended)
			} else {
				logrus.Warnf("batch: order_level=%d: no viable staffing at this order level", r.OrderLevel)
			}
		}

		rows := batch.ToStaffingRows(cfg.Batch.Scenario, results)
		summaryPath := outDir + "/staffing_summary.csv"
		if err := serialize.WriteStaffingSummary(summaryPath, rows); err != nil {
			logrus.Fatalf("writing %s: %v", summaryPath, err)
		}
		logrus.Infof("batch complete: %s written", summaryPath)
	},
}

// writeRunOutputs writes every per-run artifact: the coordinate stream,
// its delivery-point projection, the event log, and the two JSON
// documents.
func writeRunOutputs(dir string, cfg *config.SimulationConfig, result *engine.RunResult) error {
	if err := serialize.WriteCoordinates(dir+"/coordinates.csv", result.Coordinates); err != nil {
		return err
	}
	if err := serialize.WriteDeliveryPoints(dir+"/coordinates_delivery_points.csv", result.Coordinates); err != nil {
		return err
	}
	if err := serialize.WriteEvents(dir+"/events.csv", result.Events); err != nil {
		return err
	}
	run := serialize.RunMetadata{Seed: result.Seed, CombinationIndex: result.CombinationIndex}
	if err := serialize.WriteResults(dir+"/results.json", result.Orders, run, cfg); err != nil {
		return err
	}
	return serialize.WriteMetrics(dir+"/simulation_metrics.json", result.Metrics)
}

// Execute runs the root command; callers (main.go) exit non-zero only
// on fatal configuration or I/O errors.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to the simulation configuration YAML")
	rootCmd.PersistentFlags().StringVar(&outDir, "out", ".", "Output directory for written artifacts")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
}
