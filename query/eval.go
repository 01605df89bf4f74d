package query

import (
	"github.com/mayabyte/caveripper/caveinfo"
	"github.com/mayabyte/caveripper/layout"
	"github.com/mayabyte/caveripper/pikminmath"
	"github.com/mayabyte/caveripper/waypoint"
)

// CaveInfoProvider resolves a sublevel to its normalized floor spec, the
// one thing the evaluator needs from outside this package besides the
// seed itself.
type CaveInfoProvider interface {
	CaveInfo(s caveinfo.Sublevel) (*caveinfo.CaveInfo, error)
}

// Matches generates the layout for every sublevel q references at seed and
// reports whether every clause holds against its respective layout.
func (q StructuralQuery) Matches(seed uint32, provider CaveInfoProvider) (bool, error) {
	type built struct {
		ci *caveinfo.CaveInfo
		l  *layout.Layout
		g  *waypoint.Graph
	}
	layouts := make(map[string]built, len(q.Sublevels()))
	for _, sl := range q.Sublevels() {
		ci, err := provider.CaveInfo(sl)
		if err != nil {
			return false, err
		}
		l := layout.Generate(seed, ci)
		layouts[sl.NormalizedName()] = built{ci: ci, l: l, g: waypoint.Build(l)}
	}

	for _, c := range q.Clauses {
		b := layouts[c.Sublevel.NormalizedName()]
		ok, err := evalKind(c.Kind, b.ci, b.l, b.g)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// requireReference returns a *ReferenceError (spec §7's QueryReference) if
// m names an entity that never appears in ci's floor spec at all. Only
// carry_dist/straight_dist/gated/not_gated are fatal on this: compare
// clauses are allowed to legitimately evaluate a declared-but-absent
// entity's count as zero, so CountEntity/CountRoom don't call this.
func requireReference(m EntityMatcher, ci *caveinfo.CaveInfo, sublevel string) error {
	if m.ExistsOn(ci) {
		return nil
	}
	return &ReferenceError{Sublevel: sublevel, Name: m.String()}
}

func evalKind(k QueryKind, ci *caveinfo.CaveInfo, l *layout.Layout, g *waypoint.Graph) (bool, error) {
	switch k := k.(type) {
	case CountEntity:
		n := 0
		for _, so := range l.SpawnObjects() {
			if k.Entity.Matches(so.Object) {
				n++
			}
		}
		return k.Relationship.satisfiedBy(cmp(n, k.Amount)), nil

	case CountRoom:
		n := 0
		for _, u := range l.MapUnits {
			if k.Unit.Matches(u.Unit) {
				n++
			}
		}
		return k.Relationship.satisfiedBy(cmp(n, k.Amount)), nil

	case CarryDist:
		if err := requireReference(k.Entity, ci, l.Sublevel.ShortName()); err != nil {
			return false, err
		}
		for _, so := range l.SpawnObjects() {
			if !k.Entity.Matches(so.Object) {
				continue
			}
			d := g.CarryDistFromShip(so.Pos)
			if k.Relationship.satisfiedBy(cmpFloat(d, k.ReqDist)) {
				return true, nil
			}
		}
		return false, nil

	case StraightLineDist:
		if err := requireReference(k.Entity1, ci, l.Sublevel.ShortName()); err != nil {
			return false, err
		}
		if err := requireReference(k.Entity2, ci, l.Sublevel.ShortName()); err != nil {
			return false, err
		}
		var e1, e2 []layout.PlacedObject
		for _, so := range l.SpawnObjects() {
			if k.Entity1.Matches(so.Object) {
				e1 = append(e1, so)
			}
			if k.Entity2.Matches(so.Object) {
				e2 = append(e2, so)
			}
		}
		for _, a := range e1 {
			for _, b := range e2 {
				d := a.Pos.Dist2(b.Pos)
				if k.Relationship.satisfiedBy(cmpFloat(d, k.ReqDist)) {
					return true, nil
				}
			}
		}
		return false, nil

	case Gated:
		if err := requireReference(k.Entity, ci, l.Sublevel.ShortName()); err != nil {
			return false, err
		}
		gates := gatePositions(l)
		for _, so := range l.SpawnObjects() {
			if k.Entity.Matches(so.Object) && g.IsGatedFromShip(so.Pos, gates) {
				return true, nil
			}
		}
		return false, nil

	case NotGated:
		if err := requireReference(k.Entity, ci, l.Sublevel.ShortName()); err != nil {
			return false, err
		}
		gates := gatePositions(l)
		for _, so := range l.SpawnObjects() {
			if k.Entity.Matches(so.Object) && g.IsGatedFromShip(so.Pos, gates) {
				return false, nil
			}
		}
		return true, nil

	case RoomPath:
		return roomPathMatches(k, l), nil

	default:
		return false, nil
	}
}

func gatePositions(l *layout.Layout) []pikminmath.Point3 {
	return waypoint.GatePositions(l)
}

func cmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat(a, b float32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// roomPathMatches reimplements the original's frontier search: starting
// from every placed unit in turn, walk the path components in order,
// requiring each component's unit+entity constraints to match at least one
// unit in the current frontier, then advancing the frontier to every
// distinct neighbor (across a matched door) of every unit that matched.
func roomPathMatches(rp RoomPath, l *layout.Layout) bool {
	for _, start := range l.MapUnits {
		frontier := []*layout.PlacedMapUnit{start}
		visited := make(map[*layout.PlacedMapUnit]bool)
		ok := true
		for _, comp := range rp.Components {
			if len(frontier) == 0 {
				ok = false
				break
			}
			var next []*layout.PlacedMapUnit
			matched := false
			for _, u := range frontier {
				if visited[u] {
					continue
				}
				visited[u] = true
				if !comp.Unit.Matches(u.Unit) {
					continue
				}
				if !unitContainsAll(u, comp.Entities) {
					continue
				}
				matched = true
				for _, d := range u.Doors {
					if d.Adjacent == nil {
						continue
					}
					neighbor := d.Adjacent.Parent
					if neighbor != u {
						next = append(next, neighbor)
					}
				}
			}
			if !matched {
				ok = false
				break
			}
			frontier = next
		}
		if ok {
			return true
		}
	}
	return false
}

func unitContainsAll(u *layout.PlacedMapUnit, entities []EntityMatcher) bool {
	for _, em := range entities {
		found := false
		for _, sp := range u.Spawnpoints {
			for _, so := range sp.Contains {
				if em.Matches(so) {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
