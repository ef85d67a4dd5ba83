package routing

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/golfsim/golfsim/course"
	"github.com/golfsim/golfsim/telemetry"
)

func writeDiamondCourse(t *testing.T) *course.Course {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"course.yaml": `
clubhouse_node_id: ch
nodes_file: nodes.csv
edges_file: edges.csv
holes_file: holes.csv
golfer_path_file: golfer_path.csv
`,
		"nodes.csv":       "id,lat,lon\nch,0,0\na,0,1\nb,1,0\nf,1,1\n",
		"edges.csv":       "from,to,length_m\nch,a,100\nch,b,300\na,f,100\nb,f,100\n",
		"holes.csv":       "hole,lat,lon\n1,0.9,0.9\n1,0.9,1.1\n1,1.1,1.1\n1,1.1,0.9\n",
		"golfer_path.csv": "node_id,cumulative_s\nch,0\na,600\nf,1200\nb,1800\nch,2400\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	c, err := course.Load(dir)
	require.NoError(t, err)
	return c
}

func TestShortestPath_PicksCheaperRoute(t *testing.T) {
	r := New(writeDiamondCourse(t))
	route, err := r.ShortestPath("ch", "f")
	require.NoError(t, err)
	// ch->a->f costs 200, ch->b->f costs 400.
	require.Equal(t, 200.0, route.LengthM)
	require.Equal(t, []string{"ch", "a", "f"}, route.Nodes)
}

func TestShortestPath_SameNode(t *testing.T) {
	r := New(writeDiamondCourse(t))
	route, err := r.ShortestPath("ch", "ch")
	require.NoError(t, err)
	require.Equal(t, 0.0, route.LengthM)
	require.Len(t, route.Nodes, 1)
}

func TestShortestPath_Unreachable(t *testing.T) {
	c := writeDiamondCourse(t)
	// Drop the edges touching "f" to isolate it.
	var filtered []course.Edge
	for _, e := range c.Edges {
		if e.From != "f" && e.To != "f" {
			filtered = append(filtered, e)
		}
	}
	c.Edges = filtered
	r := New(c)

	_, err := r.ShortestPath("ch", "f")
	require.Error(t, err)
	var unreach *ErrUnreachable
	require.True(t, errors.As(err, &unreach), "error = %v, want *ErrUnreachable", err)
}

func TestTravelTime(t *testing.T) {
	route := &Route{LengthM: 268}
	require.Equal(t, int64(100), route.TravelTime(2.68))
}

func TestEmitPathCoordinates_FinalPointSnapped(t *testing.T) {
	r := New(writeDiamondCourse(t))
	route, err := r.ShortestPath("ch", "f")
	require.NoError(t, err)
	records := r.EmitPathCoordinates(route, 0, 120, "runner-1", telemetry.ActorRunner, "order-1", 1.0, 1.0)
	require.NotEmpty(t, records)
	last := records[len(records)-1]
	require.Equal(t, 1.0, last.Lat)
	require.Equal(t, 1.0, last.Lon)
	require.False(t, last.IsDeliveryEvent, "EmitPathCoordinates itself never flags a delivery point; runner.onArrive does")
	require.Equal(t, int64(120), last.TimestampS)
}
