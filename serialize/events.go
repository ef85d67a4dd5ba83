package serialize

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/golfsim/golfsim/telemetry"
)

var eventColumns = []string{"ts_s", "kind", "order_id", "runner_id", "hole", "extra_json"}

// WriteEvents writes the DeliveryEvent log.
func WriteEvents(path string, events []telemetry.DeliveryEvent) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write(eventColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, e := range events {
		row, err := eventRow(e)
		if err != nil {
			return fmt.Errorf("encoding event row %d: %w", i, err)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing event row %d: %w", i, err)
		}
	}
	return w.Error()
}

func eventRow(e telemetry.DeliveryEvent) ([]string, error) {
	extraJSON := "{}"
	if len(e.Extra) > 0 {
		b, err := json.Marshal(e.Extra)
		if err != nil {
			return nil, err
		}
		extraJSON = string(b)
	}
	return []string{
		strconv.FormatInt(e.TimestampS, 10),
		string(e.Kind),
		e.OrderID,
		e.RunnerID,
		strconv.Itoa(e.Hole),
		extraJSON,
	}, nil
}
