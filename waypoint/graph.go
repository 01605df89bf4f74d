// Package waypoint builds a navigation graph over a generated layout and
// answers shortest-carry-path queries against it: the distance a Pikmin
// carrying a treasure would actually walk, not a straight line through
// walls.
package waypoint

import (
	"github.com/mayabyte/caveripper/layout"
	"github.com/mayabyte/caveripper/pikminmath"
)

// Node is one point in the navigation graph: either a unit-local waypoint
// (with a nonzero radius, representing the carrying berth around it) or a
// door crossing (zero radius, connecting two adjacent units at zero
// additional cost).
type Node struct {
	Pos   pikminmath.Point3
	R     float32
	edges []edge
}

type edge struct {
	to   int
	dist float32
}

// Graph is the full navigation graph for one generated layout.
type Graph struct {
	Nodes    []Node
	shipNode int
}

func (g *Graph) addEdge(a, b int, dist float32) {
	g.Nodes[a].edges = append(g.Nodes[a].edges, edge{to: b, dist: dist})
	g.Nodes[b].edges = append(g.Nodes[b].edges, edge{to: a, dist: dist})
}

// Build constructs the waypoint graph for a generated layout: one node
// per unit-local waypoint with the in-unit links the caveinfo loader
// parsed, plus one node per placed door, linked to the unit-local
// waypoint its DoorUnit.WaypointIndex declares and, across an open seam,
// to its matching door on the neighboring unit at zero cost.
func Build(l *layout.Layout) *Graph {
	g := &Graph{shipNode: -1}

	type span struct {
		base, count int
	}
	spans := make([]span, len(l.MapUnits))

	for ui, u := range l.MapUnits {
		spans[ui] = span{base: len(g.Nodes), count: len(u.Unit.Waypoints)}
		for _, wp := range u.Unit.Waypoints {
			g.Nodes = append(g.Nodes, Node{Pos: u.LocalToGlobal(wp.Pos), R: wp.R})
		}
	}

	for ui, u := range l.MapUnits {
		s := spans[ui]
		for i, wp := range u.Unit.Waypoints {
			from := s.base + i
			for _, link := range wp.Links {
				to := s.base + link
				if to <= from {
					continue
				}
				g.addEdge(from, to, g.Nodes[from].Pos.Dist2(g.Nodes[to].Pos))
			}
		}
	}

	doorNodeOf := make(map[*layout.PlacedDoor]int)
	for ui, u := range l.MapUnits {
		s := spans[ui]
		for _, d := range u.Doors {
			idx := len(g.Nodes)
			g.Nodes = append(g.Nodes, Node{Pos: d.Center()})
			doorNodeOf[d] = idx

			if s.count == 0 {
				continue
			}
			waypoint := s.base + d.DoorUnit.WaypointIndex
			if d.DoorUnit.WaypointIndex < 0 || d.DoorUnit.WaypointIndex >= s.count {
				waypoint = s.base
			}
			g.addEdge(idx, waypoint, g.Nodes[idx].Pos.Dist2(g.Nodes[waypoint].Pos))
		}
	}

	for _, u := range l.MapUnits {
		for _, d := range u.Doors {
			if d.Adjacent == nil {
				continue
			}
			a, b := doorNodeOf[d], doorNodeOf[d.Adjacent]
			if a < b {
				g.addEdge(a, b, 0)
			}
		}
	}

	if ship, ok := l.FindShip(); ok {
		g.shipNode = g.NearestNode(ship)
	}

	return g
}

// NearestNode returns the index of the graph node closest to pos, or -1
// if the graph has no nodes.
func (g *Graph) NearestNode(pos pikminmath.Point3) int {
	best := -1
	var bestDist float32
	for i, n := range g.Nodes {
		d := n.Pos.Dist2(pos)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
