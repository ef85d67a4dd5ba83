package serialize

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/golfsim/golfsim/metrics"
)

var staffingColumns = []string{
	"scenario", "order_level", "runner_count",
	"mean_on_time_rate", "std_on_time_rate", "wilson_lo_on_time",
	"mean_failed_rate", "upper_ci_failed_rate",
	"mean_p90_s", "upper_ci_p90_s", "mean_orders_per_runner_hour",
	"frontier_flag", "knee_flag", "stability_flag",
}

// StaffingRow is one (scenario, order_level, runner_count) summary row.
type StaffingRow struct {
	Scenario    string
	OrderLevel  int
	RunnerCount int
	Aggregate   metrics.Aggregate
	Frontier    bool
	Knee        bool
	Stable      bool
}

// WriteStaffingSummary writes the batch-level staffing_summary.csv.
func WriteStaffingSummary(path string, rows []StaffingRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write(staffingColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, r := range rows {
		if err := w.Write(staffingRow(r)); err != nil {
			return fmt.Errorf("writing staffing row %d: %w", i, err)
		}
	}
	return w.Error()
}

func staffingRow(r StaffingRow) []string {
	a := r.Aggregate
	return []string{
		r.Scenario,
		strconv.Itoa(r.OrderLevel),
		strconv.Itoa(r.RunnerCount),
		strconv.FormatFloat(a.MeanOnTimeRate, 'f', -1, 64),
		strconv.FormatFloat(a.StdOnTimeRate, 'f', -1, 64),
		strconv.FormatFloat(a.WilsonLoOnTime, 'f', -1, 64),
		strconv.FormatFloat(a.MeanFailedRate, 'f', -1, 64),
		strconv.FormatFloat(a.UpperCIFailedRate, 'f', -1, 64),
		strconv.FormatFloat(a.MeanP90, 'f', -1, 64),
		strconv.FormatFloat(a.UpperCIP90, 'f', -1, 64),
		strconv.FormatFloat(a.MeanOrdersPerHour, 'f', -1, 64),
		strconv.FormatBool(r.Frontier),
		strconv.FormatBool(r.Knee),
		strconv.FormatBool(r.Stable),
	}
}
