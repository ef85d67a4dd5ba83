package dispatch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/golfsim/golfsim/course"
	"github.com/golfsim/golfsim/orders"
	"github.com/golfsim/golfsim/predict"
	"github.com/golfsim/golfsim/routing"
	"github.com/golfsim/golfsim/runner"
	"github.com/golfsim/golfsim/scheduler"
	"github.com/golfsim/golfsim/telemetry"
)

type recordingSink struct {
	events []telemetry.DeliveryEvent
	coords []telemetry.CoordinateRecord
}

func (s *recordingSink) Event(e telemetry.DeliveryEvent) { s.events = append(s.events, e) }
func (s *recordingSink) Coordinates(recs []telemetry.CoordinateRecord) {
	s.coords = append(s.coords, recs...)
}

func straightCourse(t *testing.T) *course.Course {
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
		"nodes.csv":       "id,lat,lon\nch,0,0\nn1,0,1\nn2,0,2\n",
		"edges.csv":       "from,to,length_m\nch,n1,268\nn1,n2,268\n",
		"holes.csv":       "hole,lat,lon\n1,-0.5,0.5\n1,-0.5,2.5\n1,0.5,2.5\n1,0.5,0.5\n",
		"golfer_path.csv": "node_id,cumulative_s\nch,0\nn1,600\nn2,1200\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	c, err := course.Load(dir)
	if err != nil {
		t.Fatalf("course.Load() error = %v", err)
	}
	return c
}

func newController(t *testing.T, numRunners int) (*Controller, []*runner.Runner, *recordingSink, *scheduler.Scheduler) {
	t.Helper()
	c := straightCourse(t)
	r := routing.New(c)
	sched := scheduler.New()
	sink := &recordingSink{}
	p := predict.New(c, r, 300, 2.68)

	runners := make([]*runner.Runner, numRunners)
	for i := range runners {
		runners[i] = runner.New("runner-"+string(rune('a'+i)), c, r, sched, sink, 60, 2.68)
	}

	groups := map[string]orders.GolferGroup{
		"g1": {GroupID: "g1", TeeTimeS: 0, Size: 4},
	}
	lookup := func(id string) (orders.GolferGroup, bool) {
		g, ok := groups[id]
		return g, ok
	}

	ctrl := New(runners, p, r, sched, sink, lookup, 300, 25200, 600)
	return ctrl, runners, sink, sched
}

func TestSubmit_SingleRunnerDelivers(t *testing.T) {
	ctrl, runners, _, sched := newController(t, 1)
	order := &orders.Order{OrderID: "order_0", GroupID: "g1", PlacedS: 0}
	ctrl.Submit(0, order)

	require.False(t, runners[0].IsAvailable(), "runner should be assigned immediately when idle")
	sched.RunUntil(100000)

	require.Equal(t, orders.StatusDelivered, order.Status)
}

func TestSubmit_QueuesWhenAllRunnersBusy(t *testing.T) {
	ctrl, _, _, _ := newController(t, 1)
	o1 := &orders.Order{OrderID: "order_0", GroupID: "g1", PlacedS: 0}
	o2 := &orders.Order{OrderID: "order_1", GroupID: "g1", PlacedS: 0}

	ctrl.Submit(0, o1)
	ctrl.Submit(0, o2)

	require.Equal(t, 1, ctrl.PendingLen())
	require.Equal(t, orders.StatusQueued, o2.Status)
}

func TestSubmit_QueuedOrderEventuallyDelivered(t *testing.T) {
	ctrl, _, _, sched := newController(t, 1)
	o1 := &orders.Order{OrderID: "order_0", GroupID: "g1", PlacedS: 0}
	o2 := &orders.Order{OrderID: "order_1", GroupID: "g1", PlacedS: 0}

	ctrl.Submit(0, o1)
	ctrl.Submit(0, o2)

	sched.RunUntil(100000)

	require.Equal(t, orders.StatusDelivered, o1.Status)
	require.Equal(t, orders.StatusDelivered, o2.Status)
	require.Equal(t, 0, ctrl.PendingLen(), "want 0 after drain")
}

func TestSubmit_FailsOnUnknownGroup(t *testing.T) {
	ctrl, _, _, _ := newController(t, 1)
	order := &orders.Order{OrderID: "order_0", GroupID: "nonexistent", PlacedS: 0}
	ctrl.Submit(0, order)

	require.Equal(t, orders.StatusFailed, order.Status)
	require.Equal(t, "unknown_group", order.FailReason)
}

func TestFinalizePending_MarksPendingNotFailed(t *testing.T) {
	ctrl, _, _, _ := newController(t, 1)
	o1 := &orders.Order{OrderID: "order_0", GroupID: "g1", PlacedS: 0}
	o2 := &orders.Order{OrderID: "order_1", GroupID: "g1", PlacedS: 0}
	ctrl.Submit(0, o1)
	ctrl.Submit(0, o2)

	remaining := ctrl.FinalizePending(25800)
	require.Len(t, remaining, 1)
	require.Equal(t, orders.StatusPending, remaining[0].Status)
}

func TestFinalizePending_ZeroRunnersMarksFailed(t *testing.T) {
	ctrl, _, _, _ := newController(t, 0)
	order := &orders.Order{OrderID: "order_0", GroupID: "g1", PlacedS: 0}
	ctrl.Submit(0, order)

	remaining := ctrl.FinalizePending(25800)
	require.Len(t, remaining, 1)
	require.Equal(t, orders.StatusFailed, remaining[0].Status, "no runners in the fleet")
	require.Equal(t, "no_runner_available", remaining[0].FailReason)
}
