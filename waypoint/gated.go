package waypoint

import (
	"github.com/mayabyte/caveripper/layout"
	"github.com/mayabyte/caveripper/pikminmath"
)

// gateThreshold is the maximum point-to-line distance, in game units, for
// a path segment to be considered blocked by a gate whose seam lies near
// it, matching the original's own tolerance.
const gateThreshold = 80.0

// GatePositions returns the world-space seam position of every gate
// placed in l.
func GatePositions(l *layout.Layout) []pikminmath.Point3 {
	var out []pikminmath.Point3
	for _, u := range l.MapUnits {
		for _, d := range u.Doors {
			if d.SeamSpawnpoint != nil && d.SeamSpawnpoint.Kind == layout.SpawnGate {
				out = append(out, d.Center())
			}
		}
	}
	return out
}

// IsGatedFromShip reports whether the shortest carry path from the ship
// to pos passes within gateThreshold of any placed gate's seam, i.e.
// whether reaching pos requires breaking through a gate.
func (g *Graph) IsGatedFromShip(pos pikminmath.Point3, gates []pikminmath.Point3) bool {
	if len(gates) == 0 {
		return false
	}
	path := g.pathFromShip(pos)
	for i := 0; i+1 < len(path); i++ {
		a, b := g.Nodes[path[i]].Pos.TwoD(), g.Nodes[path[i+1]].Pos.TwoD()
		for _, gate := range gates {
			if pikminmath.PointToLineDist(gate.TwoD(), a, b) <= gateThreshold {
				return true
			}
		}
	}
	return false
}
