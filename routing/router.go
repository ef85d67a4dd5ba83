// Package routing answers shortest-path and travel-time queries over the
// course's cart-path graph, and produces the time-scaled coordinate
// streams the runner state machine and I/O serializer consume. Routing
// is confined strictly to the graph: there is no off-graph interpolation
// or reverse-path fallback (DESIGN NOTES, "ad-hoc fallbacks in routing").
package routing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/golfsim/golfsim/course"
	"github.com/golfsim/golfsim/telemetry"
)

// ErrUnreachable is returned by ShortestPath when no path exists between
// src and dst. Callers (Predictor, Runner) must treat this as a fatal
// per-order error and mark the order failed with reason "unroutable" —
// never synthesize an off-graph route.
type ErrUnreachable struct {
	Src, Dst string
}

func (e *ErrUnreachable) Error() string {
	return fmt.Sprintf("routing: no path from %q to %q", e.Src, e.Dst)
}

// Route is a resolved shortest path: the ordered node sequence and its
// total length in meters.
type Route struct {
	Nodes   []string
	LengthM float64
}

// Router wraps a weighted undirected graph built once from a course.Course
// and cached for the lifetime of a run.
type Router struct {
	course *course.Course
	g      *simple.WeightedUndirectedGraph
	idOf   map[string]int64
	nodeOf map[int64]string
}

// New builds a Router from a loaded course. The graph is built once;
// ShortestPath queries run Dijkstra fresh per call, beyond the
// clubhouse-anchored table course.Course already carries.
func New(c *course.Course) *Router {
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	idOf := make(map[string]int64, len(c.Nodes))
	nodeOf := make(map[int64]string, len(c.Nodes))

	var next int64
	for id := range c.Nodes {
		idOf[id] = next
		nodeOf[next] = id
		g.AddNode(simple.Node(next))
		next++
	}
	for _, e := range c.Edges {
		g.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(idOf[e.From]),
			T: simple.Node(idOf[e.To]),
			W: e.LengthM,
		})
	}

	return &Router{course: c, g: g, idOf: idOf, nodeOf: nodeOf}
}

// NearestNode performs a linear scan, O(|V|); caller must cache results
// it reuses.
func (r *Router) NearestNode(lat, lon float64) string {
	best := ""
	bestDist := math.Inf(1)
	for id, n := range r.course.Nodes {
		d := haversineApprox(lat, lon, n.Lat, n.Lon)
		if d < bestDist {
			best, bestDist = id, d
		}
	}
	return best
}

// haversineApprox is a flat-earth approximation adequate at golf-course
// scale; it is only used to pick the nearest graph node, never to weight
// routing (routing weight is always length_m from the graph).
func haversineApprox(lat1, lon1, lat2, lon2 float64) float64 {
	const metersPerDegLat = 111320.0
	dy := (lat1 - lat2) * metersPerDegLat
	dx := (lon1 - lon2) * metersPerDegLat * math.Cos(lat1*math.Pi/180)
	return math.Hypot(dx, dy)
}

// ShortestPath runs Dijkstra weighted by length_m. Returns ErrUnreachable
// if dst is not reachable from src.
func (r *Router) ShortestPath(src, dst string) (*Route, error) {
	srcID, ok := r.idOf[src]
	if !ok {
		return nil, fmt.Errorf("routing: unknown source node %q", src)
	}
	dstID, ok := r.idOf[dst]
	if !ok {
		return nil, fmt.Errorf("routing: unknown destination node %q", dst)
	}
	if src == dst {
		return &Route{Nodes: []string{src}, LengthM: 0}, nil
	}

	shortest := path.DijkstraFrom(simple.Node(srcID), r.g)
	nodes, weight := shortest.To(dstID)
	if len(nodes) == 0 || math.IsInf(weight, 1) {
		return nil, &ErrUnreachable{Src: src, Dst: dst}
	}

	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = r.nodeOf[n.ID()]
	}
	return &Route{Nodes: out, LengthM: weight}, nil
}

// TravelTime returns the time in seconds to traverse route at speedMS.
func (route *Route) TravelTime(speedMS float64) int64 {
	if speedMS <= 0 {
		return 0
	}
	return int64(math.Round(route.LengthM / speedMS))
}

// EmitPathCoordinates produces a coordinate stream for actorID/actorKind
// by time-scaling each edge of route so the last node lands exactly at
// endS. Step resolution is 60 s. The final point's coordinates are
// overwritten to (snapLat, snapLon) — the exact golfer meeting point —
// so visualization sees pixel-level coincidence while every intermediate
// point still lies on a graph edge. None of these records are flagged
// is_delivery_event: runner.onArrive is the sole emitter of the flagged
// golfer+runner pair, so the same meeting point is never double-counted
// here, and a return-trip call (endpoint = clubhouse) never mislabels
// the clubhouse arrival as a delivery point.
func (r *Router) EmitPathCoordinates(route *Route, startS, endS int64, actorID string, actorKind telemetry.ActorKind, orderID string, snapLat, snapLon float64) []telemetry.CoordinateRecord {
	if len(route.Nodes) == 0 || endS <= startS {
		return nil
	}

	// Cumulative distance at each node along the route.
	cum := make([]float64, len(route.Nodes))
	for i := 1; i < len(route.Nodes); i++ {
		edgeLen := r.edgeLength(route.Nodes[i-1], route.Nodes[i])
		cum[i] = cum[i-1] + edgeLen
	}
	total := cum[len(cum)-1]
	duration := float64(endS - startS)

	var records []telemetry.CoordinateRecord
	const stepS = int64(60)
	for t := startS; t < endS; t += stepS {
		frac := 0.0
		if total > 0 {
			frac = float64(t-startS) / duration
		}
		lat, lon := r.positionAlong(route, cum, frac*total)
		records = append(records, telemetry.CoordinateRecord{
			TimestampS: t,
			ActorID:    actorID,
			ActorKind:  actorKind,
			Lat:        lat,
			Lon:        lon,
			Hole:       r.course.HoleAt(lat, lon),
			OrderID:    orderID,
		})
	}

	finalLat, finalLon := snapLat, snapLon
	final := telemetry.CoordinateRecord{
		TimestampS: endS,
		ActorID:    actorID,
		ActorKind:  actorKind,
		Lat:        finalLat,
		Lon:        finalLon,
		Hole:       r.course.HoleAt(finalLat, finalLon),
		OrderID:    orderID,
	}
	records = append(records, final)
	return records
}

func (r *Router) edgeLength(from, to string) float64 {
	for _, e := range r.course.Neighbors(from) {
		if e.To == to {
			return e.LengthM
		}
	}
	return 0
}

// positionAlong linearly interpolates between the two route nodes that
// straddle distAlong.
func (r *Router) positionAlong(route *Route, cum []float64, distAlong float64) (float64, float64) {
	if len(route.Nodes) == 1 {
		lat, lon, _ := r.course.NodeCoord(route.Nodes[0])
		return lat, lon
	}
	for i := 1; i < len(cum); i++ {
		if distAlong <= cum[i] || i == len(cum)-1 {
			segLen := cum[i] - cum[i-1]
			t := 1.0
			if segLen > 0 {
				t = (distAlong - cum[i-1]) / segLen
				if t < 0 {
					t = 0
				}
				if t > 1 {
					t = 1
				}
			}
			lat0, lon0, _ := r.course.NodeCoord(route.Nodes[i-1])
			lat1, lon1, _ := r.course.NodeCoord(route.Nodes[i])
			return lat0 + t*(lat1-lat0), lon0 + t*(lon1-lon0)
		}
	}
	lat, lon, _ := r.course.NodeCoord(route.Nodes[len(route.Nodes)-1])
	return lat, lon
}
