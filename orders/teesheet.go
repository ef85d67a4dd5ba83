package orders

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// LoadTeeSheet reads a tee-time sheet CSV with columns
// group_id,tee_time_s,group_size.
func LoadTeeSheet(path string) ([]GolferGroup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("orders: opening tee sheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("orders: tee sheet is empty, expected a header row")
		}
		return nil, fmt.Errorf("orders: reading tee sheet header: %w", err)
	}

	var groups []GolferGroup
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("orders: reading tee sheet row: %w", err)
		}
		if len(row) < 3 {
			return nil, fmt.Errorf("orders: tee sheet row has %d columns, want group_id,tee_time_s,group_size", len(row))
		}
		teeTimeS, err := strconv.ParseInt(row[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("orders: tee sheet tee_time_s %q: %w", row[1], err)
		}
		size, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("orders: tee sheet group_size %q: %w", row[2], err)
		}
		groups = append(groups, GolferGroup{GroupID: row[0], TeeTimeS: teeTimeS, Size: size})
	}
	return groups, nil
}
