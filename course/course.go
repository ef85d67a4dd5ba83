// Package course loads the immutable, read-only-after-load bundle that
// everything else in a run is built against: the cart-path graph, the
// hole polygons used to label a position, and the golfer path used by
// the predictor. Course data is prepared out of process (geofencing,
// OSM extraction) and is out of scope here — this package only parses
// the serialized tables.
package course

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Node is one intersection or waypoint on the cart-path graph.
type Node struct {
	ID  string
	Lat float64
	Lon float64
}

// Edge is a weighted, undirected connection between two nodes.
type Edge struct {
	From    string
	To      string
	LengthM float64
}

// HolePolygon is a closed ring of (lat, lon) vertices labeling hole Number.
type HolePolygon struct {
	Number   int
	Vertices [][2]float64
}

// GolferPathSample is one point along the canonical golfer path: the node
// occupied at CumulativeS seconds after a group's tee time. Samples are
// 60 s apart and CumulativeS is non-decreasing across the whole path.
type GolferPathSample struct {
	NodeID      string
	CumulativeS int64
}

// manifest is the small YAML document identifying the clubhouse and the
// paths to the CSV tables that make up the rest of the bundle.
type manifest struct {
	ClubhouseNodeID string `yaml:"clubhouse_node_id"`
	NodesFile       string `yaml:"nodes_file"`
	EdgesFile       string `yaml:"edges_file"`
	HolesFile       string `yaml:"holes_file"`
	GolferPathFile  string `yaml:"golfer_path_file"`
}

// Course is the immutable bundle shared read-only across an entire run.
type Course struct {
	ClubhouseNodeID string
	Nodes           map[string]Node
	Edges           []Edge
	HolePolygons    map[int]HolePolygon
	// NodeTravelTimes is a reference-speed distance table, not a live
	// routing cache: Predict always queries Router.ShortestPath fresh,
	// since that is the only source of truth that stays correct if the
	// cart-path graph is ever mutated after load (e.g. the
	// unroutable-edge fault injection in predict/predictor_test.go and
	// spec scenario S6). Exposed for callers — course-prep tooling,
	// diagnostics — that want a quick clubhouse-distance estimate
	// without running Dijkstra.
	NodeTravelTimes map[string]int64
	GolferPath      []GolferPathSample

	adjacency map[string][]Edge
}

// Load parses a course bundle directory containing course.yaml plus the
// nodes/edges/holes/golfer_path CSV tables it references.
func Load(dir string) (*Course, error) {
	data, err := os.ReadFile(filepath.Join(dir, "course.yaml"))
	if err != nil {
		return nil, fmt.Errorf("course: reading manifest: %w", err)
	}
	var m manifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("course: parsing manifest: %w", err)
	}
	if m.ClubhouseNodeID == "" {
		return nil, fmt.Errorf("course: manifest missing clubhouse_node_id")
	}

	nodes, err := loadNodes(filepath.Join(dir, m.NodesFile))
	if err != nil {
		return nil, err
	}
	edges, err := loadEdges(filepath.Join(dir, m.EdgesFile))
	if err != nil {
		return nil, err
	}
	holes, err := loadHoles(filepath.Join(dir, m.HolesFile))
	if err != nil {
		return nil, err
	}
	path, err := loadGolferPath(filepath.Join(dir, m.GolferPathFile))
	if err != nil {
		return nil, err
	}

	if _, ok := nodes[m.ClubhouseNodeID]; !ok {
		return nil, fmt.Errorf("course: clubhouse_node_id %q not present in nodes table", m.ClubhouseNodeID)
	}

	c := &Course{
		ClubhouseNodeID: m.ClubhouseNodeID,
		Nodes:           nodes,
		Edges:           edges,
		HolePolygons:    holes,
		GolferPath:      path,
		adjacency:       buildAdjacency(edges),
	}
	c.NodeTravelTimes = c.computeClubhouseTravelTimes()
	if err := c.validateGolferPath(); err != nil {
		return nil, err
	}
	return c, nil
}

func buildAdjacency(edges []Edge) map[string][]Edge {
	adj := make(map[string][]Edge)
	for _, e := range edges {
		adj[e.From] = append(adj[e.From], e)
		adj[e.To] = append(adj[e.To], Edge{From: e.To, To: e.From, LengthM: e.LengthM})
	}
	return adj
}

// Neighbors returns the edges leaving node id, in both directions since
// the cart-path graph is undirected.
func (c *Course) Neighbors(id string) []Edge { return c.adjacency[id] }

// validateGolferPath checks the course-data invariant that cumulative
// time is non-decreasing across the path. A violation is a course data
// error, fatal at startup.
func (c *Course) validateGolferPath() error {
	if len(c.GolferPath) == 0 {
		return fmt.Errorf("course: golfer_path is empty")
	}
	for i := 1; i < len(c.GolferPath); i++ {
		if c.GolferPath[i].CumulativeS < c.GolferPath[i-1].CumulativeS {
			return fmt.Errorf("course: golfer_path cumulative_s is not non-decreasing at sample %d", i)
		}
		if _, ok := c.Nodes[c.GolferPath[i].NodeID]; !ok {
			return fmt.Errorf("course: golfer_path sample %d references unknown node %q", i, c.GolferPath[i].NodeID)
		}
	}
	return nil
}

// computeClubhouseTravelTimes runs a Dijkstra-style relaxation from the
// clubhouse node at load time, populating the NodeTravelTimes reference
// table (see its doc comment on Course for why the live Predictor does
// not read from it).
func (c *Course) computeClubhouseTravelTimes() map[string]int64 {
	const referenceSpeedMS = 2.68
	dist := make(map[string]float64, len(c.Nodes))
	for id := range c.Nodes {
		dist[id] = -1
	}
	dist[c.ClubhouseNodeID] = 0
	visited := make(map[string]bool, len(c.Nodes))

	for {
		cur, curDist, found := nextUnvisited(dist, visited)
		if !found {
			break
		}
		visited[cur] = true
		for _, e := range c.adjacency[cur] {
			nd := curDist + e.LengthM
			if d, ok := dist[e.To]; !ok || d < 0 || nd < d {
				dist[e.To] = nd
			}
		}
	}

	out := make(map[string]int64, len(c.Nodes))
	for id, d := range dist {
		if d < 0 {
			continue
		}
		out[id] = int64(d / referenceSpeedMS)
	}
	return out
}

func nextUnvisited(dist map[string]float64, visited map[string]bool) (string, float64, bool) {
	best := ""
	bestDist := -1.0
	found := false
	ids := make([]string, 0, len(dist))
	for id := range dist {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if visited[id] {
			continue
		}
		d := dist[id]
		if d < 0 {
			continue
		}
		if !found || d < bestDist {
			best, bestDist, found = id, d, true
		}
	}
	return best, bestDist, found
}

// HoleAt returns the hole number containing (lat, lon), or 0 if the
// position does not fall in any known polygon.
func (c *Course) HoleAt(lat, lon float64) int {
	holeNums := make([]int, 0, len(c.HolePolygons))
	for n := range c.HolePolygons {
		holeNums = append(holeNums, n)
	}
	sort.Ints(holeNums)
	for _, n := range holeNums {
		if pointInPolygon(lat, lon, c.HolePolygons[n].Vertices) {
			return n
		}
	}
	return 0
}

// pointInPolygon is the standard ray-casting test.
func pointInPolygon(lat, lon float64, poly [][2]float64) bool {
	inside := false
	n := len(poly)
	if n < 3 {
		return false
	}
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := poly[i][0], poly[i][1]
		xj, yj := poly[j][0], poly[j][1]
		if (yi > lon) != (yj > lon) &&
			lat < (xj-xi)*(lon-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// PositionAt returns the node occupied at offsetS seconds after tee time,
// by finding the golfer_path sample at or before offsetS. If offsetS is
// before the first sample, the first sample is used; if offsetS is past
// the round's completion time, the last sample is used (the group has
// finished and is back at the clubhouse-adjacent final node).
func (c *Course) PositionAt(offsetS int64) string {
	samples := c.GolferPath
	lo, hi := 0, len(samples)-1
	best := 0
	for lo <= hi {
		mid := (lo + hi) / 2
		if samples[mid].CumulativeS <= offsetS {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return samples[best].NodeID
}

// RoundDurationS returns the cumulative seconds of the last golfer_path
// sample: the time at which a group finishes its round.
func (c *Course) RoundDurationS() int64 {
	if len(c.GolferPath) == 0 {
		return 0
	}
	return c.GolferPath[len(c.GolferPath)-1].CumulativeS
}

// NodeCoord returns the (lat, lon) of a node.
func (c *Course) NodeCoord(id string) (float64, float64, bool) {
	n, ok := c.Nodes[id]
	if !ok {
		return 0, 0, false
	}
	return n.Lat, n.Lon, true
}
