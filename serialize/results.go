package serialize

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/golfsim/golfsim/config"
	"github.com/golfsim/golfsim/metrics"
	"github.com/golfsim/golfsim/orders"
)

// OrderResult is one order's full lifecycle as written to results.json.
type OrderResult struct {
	OrderID              string `json:"order_id"`
	GroupID              string `json:"group_id"`
	PlacedS              int64  `json:"placed_s"`
	HoleAtPlacement      int    `json:"hole_at_placement"`
	PredictedMeetingNode string `json:"predicted_meeting_node,omitempty"`
	PredictedMeetingS    int64  `json:"predicted_meeting_s,omitempty"`
	AssignedRunnerID     string `json:"assigned_runner_id,omitempty"`
	Status               string `json:"status"`
	FailReason           string `json:"fail_reason,omitempty"`
	ActualMeetingS       int64  `json:"actual_meeting_s,omitempty"`
	RunnerReturnS        int64  `json:"runner_return_s,omitempty"`
	DeliveryCycleS       int64  `json:"delivery_cycle_s,omitempty"`
}

// RunMetadata captures the non-order context a results.json file carries
// alongside the order list: the seed and the batch combination index.
type RunMetadata struct {
	Seed              int64 `json:"seed"`
	CombinationIndex   int   `json:"combination_index"`
}

// ResultsDocument is the full results.json payload: order lifecycle,
// run metadata, and the configuration snapshot that produced it.
type ResultsDocument struct {
	Orders []OrderResult            `json:"orders"`
	Run     RunMetadata              `json:"run"`
	Config  *config.SimulationConfig `json:"config"`
}

// WriteResults writes results.json: the full per-order lifecycle, run
// metadata, and a snapshot of the configuration that produced the run.
func WriteResults(path string, allOrders []orders.Order, run RunMetadata, cfg *config.SimulationConfig) error {
	doc := ResultsDocument{
		Orders: make([]OrderResult, len(allOrders)),
		Run:    run,
		Config: cfg,
	}
	for i, o := range allOrders {
		doc.Orders[i] = OrderResult{
			OrderID:              o.OrderID,
			GroupID:              o.GroupID,
			PlacedS:              o.PlacedS,
			HoleAtPlacement:      o.HoleAtPlacement,
			PredictedMeetingNode: o.PredictedMeetingNode,
			PredictedMeetingS:    o.PredictedMeetingS,
			AssignedRunnerID:     o.AssignedRunnerID,
			Status:               string(o.Status),
			FailReason:           o.FailReason,
			ActualMeetingS:       o.ActualMeetingS,
			RunnerReturnS:        o.RunnerReturnS,
			DeliveryCycleS:       o.DeliveryCycleS(),
		}
	}
	return writeJSON(path, doc)
}

// WriteMetrics writes simulation_metrics.json.
func WriteMetrics(path string, m metrics.RunMetrics) error {
	return writeJSON(path, m)
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
