package course

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

func loadNodes(path string) (map[string]Node, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, fmt.Errorf("course: reading nodes: %w", err)
	}
	nodes := make(map[string]Node, len(rows))
	for i, row := range rows {
		if len(row) < 3 {
			return nil, fmt.Errorf("course: nodes row %d has %d columns, want 3", i, len(row))
		}
		lat, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("course: nodes row %d lat: %w", i, err)
		}
		lon, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("course: nodes row %d lon: %w", i, err)
		}
		nodes[row[0]] = Node{ID: row[0], Lat: lat, Lon: lon}
	}
	return nodes, nil
}

func loadEdges(path string) ([]Edge, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, fmt.Errorf("course: reading edges: %w", err)
	}
	edges := make([]Edge, 0, len(rows))
	for i, row := range rows {
		if len(row) < 3 {
			return nil, fmt.Errorf("course: edges row %d has %d columns, want 3", i, len(row))
		}
		length, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("course: edges row %d length_m: %w", i, err)
		}
		edges = append(edges, Edge{From: row[0], To: row[1], LengthM: length})
	}
	return edges, nil
}

func loadHoles(path string) (map[int]HolePolygon, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, fmt.Errorf("course: reading holes: %w", err)
	}
	holes := make(map[int]HolePolygon)
	for i, row := range rows {
		if len(row) < 3 {
			return nil, fmt.Errorf("course: holes row %d has %d columns, want hole,lat,lon", i, len(row))
		}
		hole, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("course: holes row %d hole number: %w", i, err)
		}
		lat, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("course: holes row %d lat: %w", i, err)
		}
		lon, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("course: holes row %d lon: %w", i, err)
		}
		poly := holes[hole]
		poly.Number = hole
		poly.Vertices = append(poly.Vertices, [2]float64{lat, lon})
		holes[hole] = poly
	}
	return holes, nil
}

func loadGolferPath(path string) ([]GolferPathSample, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, fmt.Errorf("course: reading golfer_path: %w", err)
	}
	samples := make([]GolferPathSample, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("course: golfer_path row %d has %d columns, want node_id,cumulative_s", i, len(row))
		}
		cumulative, err := strconv.ParseInt(row[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("course: golfer_path row %d cumulative_s: %w", i, err)
		}
		samples = append(samples, GolferPathSample{NodeID: row[0], CumulativeS: cumulative})
	}
	return samples, nil
}

// readCSV opens a headered CSV file and returns the data rows, skipping
// the header row.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty file, expected a header row")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
