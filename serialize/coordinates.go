// Package serialize writes per-run and per-batch output files: the
// coordinate and event CSV streams, the JSON result/metrics documents,
// and the batch staffing summary CSV.
package serialize

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/golfsim/golfsim/telemetry"
)

var coordinateColumns = []string{
	"ts_s", "actor_id", "actor_kind", "lat", "lon", "hole", "is_delivery_event", "order_id",
}

// WriteCoordinates writes the unified golfer+runner coordinate stream.
func WriteCoordinates(path string, records []telemetry.CoordinateRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write(coordinateColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, r := range records {
		if err := w.Write(coordinateRow(r)); err != nil {
			return fmt.Errorf("writing coordinate row %d: %w", i, err)
		}
	}
	return w.Error()
}

// WriteDeliveryPoints writes the subset of records flagged
// is_delivery_event = true — exactly two rows per delivered order.
func WriteDeliveryPoints(path string, records []telemetry.CoordinateRecord) error {
	var subset []telemetry.CoordinateRecord
	for _, r := range records {
		if r.IsDeliveryEvent {
			subset = append(subset, r)
		}
	}
	return WriteCoordinates(path, subset)
}

func coordinateRow(r telemetry.CoordinateRecord) []string {
	return []string{
		strconv.FormatInt(r.TimestampS, 10),
		r.ActorID,
		string(r.ActorKind),
		strconv.FormatFloat(r.Lat, 'f', -1, 64),
		strconv.FormatFloat(r.Lon, 'f', -1, 64),
		strconv.Itoa(r.Hole),
		strconv.FormatBool(r.IsDeliveryEvent),
		r.OrderID,
	}
}
