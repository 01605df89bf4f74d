// Package layout builds a concrete floor layout from a CaveInfo floor spec
// and a 32-bit seed, reproducing the original game's map-unit placement,
// scoring, and spawn-object population passes exactly.
package layout

import (
	"encoding/json"

	"github.com/mayabyte/caveripper/caveinfo"
	"github.com/mayabyte/caveripper/pikminmath"
)

// SpawnObjectKind discriminates the union of things that can occupy a spawn
// point or door seam.
type SpawnObjectKind int

const (
	SpawnTeki SpawnObjectKind = iota
	SpawnCapTeki
	SpawnItem
	SpawnGate
	SpawnHole
	SpawnGeyser
	SpawnShip
)

// SpawnObject is any object placed into the layout: an enemy, a treasure, a
// gate, the exit hole/geyser, or the ship pod. Only the fields relevant to
// Kind are populated, matching the original's tagged-union semantics without
// Go lacking sum types.
type SpawnObject struct {
	Kind SpawnObjectKind

	Teki          *caveinfo.TekiInfo
	TekiOffsetX   float32
	TekiOffsetZ   float32
	CapTeki       *caveinfo.CapInfo
	CapTekiAmount uint32
	Item          *caveinfo.ItemInfo
	Gate          *caveinfo.GateInfo
	Plugged       bool // Hole/Geyser only
}

// Name returns the internal/display name of this spawn object.
func (so SpawnObject) Name() string {
	switch so.Kind {
	case SpawnTeki:
		return so.Teki.InternalName
	case SpawnCapTeki:
		return so.CapTeki.InternalName
	case SpawnItem:
		return so.Item.InternalName
	case SpawnGate:
		return "gate"
	case SpawnHole:
		return "hole"
	case SpawnGeyser:
		return "geyser"
	case SpawnShip:
		return "ship"
	default:
		return ""
	}
}

// PlacedDoor is a door slot on a placed map unit, in world grid coordinates
// (one grid cell is 170 game units). Adjacent lives directly as a pointer
// rather than an index, so it stays valid across map-unit slice mutation.
type PlacedDoor struct {
	X, Z           int
	DoorUnit       *caveinfo.DoorUnit
	Parent         *PlacedMapUnit
	MarkedAsCap    bool
	Adjacent       *PlacedDoor
	HasDoorScore   bool
	DoorScore      uint32
	SeamTekiScore  uint32
	SeamSpawnpoint *SpawnObject
}

// Facing reports whether d and other face directly into each other (their
// directions differ by exactly 2 quarter-turns).
func (d *PlacedDoor) Facing(other *PlacedDoor) bool {
	diff := d.DoorUnit.Direction - other.DoorUnit.Direction
	if diff < 0 {
		diff = -diff
	}
	return diff == 2
}

// LinesUpWith reports whether d and other occupy the same grid cell and
// face each other, i.e. they could be linked as a matched pair.
func (d *PlacedDoor) LinesUpWith(other *PlacedDoor) bool {
	return d.Facing(other) && d.X == other.X && d.Z == other.Z
}

// Center returns the door seam's global-space position, used for seam teki
// and gates.
func (d *PlacedDoor) Center() pikminmath.Point3 {
	p := pikminmath.Point3{X: float32(d.X) * 170.0, Z: float32(d.Z) * 170.0}
	if d.DoorUnit.Direction%2 == 0 {
		p.X += 85.0
	} else {
		p.Z += 85.0
	}
	return p
}

// PlacedSpawnPoint is a spawn point in global layout coordinates, along with
// whatever spawn objects ended up placed there.
type PlacedSpawnPoint struct {
	SpawnPointUnit *caveinfo.SpawnPoint
	Pos            pikminmath.Point3
	AngleDegrees   float32
	HoleScore      uint32
	TreasureScore  uint32
	Contains       []SpawnObject
}

// Dist is the game-accurate distance between two spawn points.
func (p *PlacedSpawnPoint) Dist(o *PlacedSpawnPoint) float32 {
	return p.Pos.Dist2(o.Pos)
}

// PlacedMapUnit is one CaveUnit instance placed at a grid position within a
// layout, with its doors and spawn points translated into world space.
type PlacedMapUnit struct {
	Unit        *caveinfo.CaveUnit
	X, Z        int
	Doors       []*PlacedDoor
	Spawnpoints []*PlacedSpawnPoint
	TekiScore   uint32
	TotalScore  uint32
}

// NewPlacedMapUnit instantiates unit at grid position (x, z), translating
// its door offsets and spawn point coordinates into world space per the
// unit's rotation.
func NewPlacedMapUnit(unit *caveinfo.CaveUnit, x, z int) *PlacedMapUnit {
	pmu := &PlacedMapUnit{Unit: unit, X: x, Z: z}

	pmu.Doors = make([]*PlacedDoor, len(unit.Doors))
	for i := range unit.Doors {
		du := &unit.Doors[i]
		var dx, dz int
		switch du.Direction {
		case 0:
			dx, dz = x+du.SideLateralOffset, z
		case 1:
			dx, dz = x+unit.Width, z+du.SideLateralOffset
		case 2:
			dx, dz = x+du.SideLateralOffset, z+unit.Height
		case 3:
			dx, dz = x, z+du.SideLateralOffset
		}
		pmu.Doors[i] = &PlacedDoor{X: dx, Z: dz, DoorUnit: du, Parent: pmu, HasDoorScore: true, DoorScore: 0}
	}

	pmu.Spawnpoints = make([]*PlacedSpawnPoint, len(unit.Spawnpoints))
	baseX := (float32(x) + float32(unit.Width)/2.0) * 170.0
	baseZ := (float32(z) + float32(unit.Height)/2.0) * 170.0
	for i := range unit.Spawnpoints {
		sp := &unit.Spawnpoints[i]
		var ax, az float32
		switch unit.Rotation {
		case 0:
			ax, az = baseX+sp.Pos.X, baseZ+sp.Pos.Z
		case 1:
			ax, az = baseX-sp.Pos.Z, baseZ+sp.Pos.X
		case 2:
			ax, az = baseX-sp.Pos.X, baseZ-sp.Pos.Z
		case 3:
			ax, az = baseX+sp.Pos.Z, baseZ-sp.Pos.X
		}
		angle := sp.AngleDegrees - float32(unit.Rotation)*90.0
		// Keep in [0, 360) like the original's float modulo.
		for angle < 0 {
			angle += 360.0
		}
		for angle >= 360.0 {
			angle -= 360.0
		}
		pmu.Spawnpoints[i] = &PlacedSpawnPoint{
			SpawnPointUnit: sp,
			Pos:            pikminmath.Point3{X: ax, Y: sp.Pos.Y, Z: az},
			AngleDegrees:   angle,
		}
	}

	return pmu
}

// LocalToGlobal converts a unit-local position (as stored on a CaveUnit's
// waypoints and spawn points) into world space, applying this unit's grid
// position and rotation exactly as NewPlacedMapUnit does for spawn points.
func (u *PlacedMapUnit) LocalToGlobal(local pikminmath.Point3) pikminmath.Point3 {
	baseX := (float32(u.X) + float32(u.Unit.Width)/2.0) * 170.0
	baseZ := (float32(u.Z) + float32(u.Unit.Height)/2.0) * 170.0
	var ax, az float32
	switch u.Unit.Rotation {
	case 0:
		ax, az = baseX+local.X, baseZ+local.Z
	case 1:
		ax, az = baseX-local.Z, baseZ+local.X
	case 2:
		ax, az = baseX-local.X, baseZ-local.Z
	case 3:
		ax, az = baseX+local.Z, baseZ-local.X
	}
	return pikminmath.Point3{X: ax, Y: local.Y, Z: az}
}

// Overlaps reports whether u and other's grid footprints intersect.
func (u *PlacedMapUnit) Overlaps(other *PlacedMapUnit) bool {
	return boxesOverlap(u.X, u.Z, u.Unit.Width, u.Unit.Height, other.X, other.Z, other.Unit.Width, other.Unit.Height)
}

func boxesOverlap(x1, z1, w1, h1, x2, z2, w2, h2 int) bool {
	return !(x1+w1 <= x2 || x2+w2 <= x1 || z1+h1 <= z2 || z2+h2 <= z1)
}

// PlacedObject pairs a spawn object with its resolved global position, the
// unit used by anything that needs to enumerate everything in a layout
// (scoring, waypoint graph construction, query evaluation).
type PlacedObject struct {
	Object SpawnObject
	Pos    pikminmath.Point3
}

// Layout is a fully generated floor: every map unit at its final grid
// position, with every spawn point resolved and populated.
type Layout struct {
	Sublevel     caveinfo.Sublevel
	StartingSeed uint32
	CaveName     string
	MapUnits     []*PlacedMapUnit
}

// SpawnObjects enumerates every placed spawn object in the layout (room
// spawn points and door seams alike) paired with its global position.
func (l *Layout) SpawnObjects() []PlacedObject {
	var out []PlacedObject
	for _, unit := range l.MapUnits {
		for _, sp := range unit.Spawnpoints {
			for _, so := range sp.Contains {
				pos := sp.Pos
				if so.Kind == SpawnTeki {
					pos.X += so.TekiOffsetX
					pos.Z += so.TekiOffsetZ
				}
				out = append(out, PlacedObject{Object: so, Pos: pos})
			}
		}
		for _, door := range unit.Doors {
			if door.SeamSpawnpoint != nil {
				out = append(out, PlacedObject{Object: *door.SeamSpawnpoint, Pos: door.Center()})
			}
		}
	}
	return out
}

// FindShip returns the ship's resolved global position, if one was placed.
func (l *Layout) FindShip() (pikminmath.Point3, bool) {
	obj, ok := l.findKind(SpawnShip)
	return obj.Pos, ok
}

// FindHole returns the exit hole's resolved global position, if present.
func (l *Layout) FindHole() (pikminmath.Point3, bool) {
	obj, ok := l.findKind(SpawnHole)
	return obj.Pos, ok
}

// FindGeyser returns the exit geyser's resolved global position, if present.
func (l *Layout) FindGeyser() (pikminmath.Point3, bool) {
	obj, ok := l.findKind(SpawnGeyser)
	return obj.Pos, ok
}

func (l *Layout) findKind(kind SpawnObjectKind) (PlacedObject, bool) {
	for _, so := range l.SpawnObjects() {
		if so.Object.Kind == kind {
			return so, true
		}
	}
	return PlacedObject{}, false
}

// Score returns the layout's overall Total Score: the lowest
// breadth-first-relaxed Total Score among every placed unit (0 when no
// unit has one). Total Score grows with distance from the start room, so
// this is normally the starting room's own score.
func (l *Layout) Score() uint32 {
	best := ^uint32(0)
	for _, u := range l.MapUnits {
		if u.TotalScore < best {
			best = u.TotalScore
		}
	}
	if best == ^uint32(0) {
		return 0
	}
	return best
}

// TekiScore returns the sum of every placed unit's Teki Score, the
// enemy-difficulty weight set-score accumulates while relaxing room
// distances.
func (l *Layout) TekiScore() uint32 {
	var total uint32
	for _, u := range l.MapUnits {
		total += u.TekiScore
	}
	return total
}

// DoorScore returns the sum of every placed door's Door Score, including
// the seam teki contribution each carries.
func (l *Layout) DoorScore() uint32 {
	var total uint32
	for _, u := range l.MapUnits {
		for _, d := range u.Doors {
			if d.HasDoorScore {
				total += d.DoorScore
			}
		}
	}
	return total
}

type jsonVec2 [2]float32

type jsonSpawnPoint struct {
	Type   string  `json:"type"`
	Object string  `json:"object"`
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
}

type jsonDoor struct {
	X         int `json:"x"`
	Y         int `json:"y"`
	Direction int `json:"direction"`
}

type jsonMapUnit struct {
	Name        string           `json:"name"`
	X           int              `json:"x"`
	Y           int              `json:"y"`
	Rotation    int              `json:"rotation"`
	Doors       []jsonDoor       `json:"doors"`
	SpawnPoints []jsonSpawnPoint `json:"spawn_points"`
}

type jsonLayout struct {
	Name     string        `json:"name"`
	Seed     uint32        `json:"seed"`
	Ship     *jsonVec2     `json:"ship"`
	Hole     *jsonVec2     `json:"hole,omitempty"`
	Geyser   *jsonVec2     `json:"geyser,omitempty"`
	MapUnits []jsonMapUnit `json:"map_units"`
}

func spawnKindName(k SpawnObjectKind) string {
	switch k {
	case SpawnTeki:
		return "teki"
	case SpawnCapTeki:
		return "cap_teki"
	case SpawnItem:
		return "item"
	case SpawnGate:
		return "gate"
	case SpawnHole:
		return "hole"
	case SpawnGeyser:
		return "geyser"
	case SpawnShip:
		return "ship"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the layout per the external layout output schema:
// name/seed/ship/hole/geyser plus one entry per placed map unit with its
// doors and populated spawn points.
func (l *Layout) MarshalJSON() ([]byte, error) {
	out := jsonLayout{
		Name: l.Sublevel.ShortName(),
		Seed: l.StartingSeed,
	}
	if ship, ok := l.findKind(SpawnShip); ok {
		out.Ship = &jsonVec2{ship.Pos.X, ship.Pos.Z}
	}
	if hole, ok := l.findKind(SpawnHole); ok {
		out.Hole = &jsonVec2{hole.Pos.X, hole.Pos.Z}
	}
	if geyser, ok := l.findKind(SpawnGeyser); ok {
		out.Geyser = &jsonVec2{geyser.Pos.X, geyser.Pos.Z}
	}

	for _, unit := range l.MapUnits {
		jmu := jsonMapUnit{
			Name:     unit.Unit.UnitFolderName,
			X:        unit.X,
			Y:        unit.Z,
			Rotation: unit.Unit.Rotation,
		}
		for _, d := range unit.Doors {
			jmu.Doors = append(jmu.Doors, jsonDoor{X: d.X, Y: d.Z, Direction: d.DoorUnit.Direction})
		}
		for _, sp := range unit.Spawnpoints {
			for _, so := range sp.Contains {
				pos := sp.Pos
				if so.Kind == SpawnTeki {
					pos.X += so.TekiOffsetX
					pos.Z += so.TekiOffsetZ
				}
				jmu.SpawnPoints = append(jmu.SpawnPoints, jsonSpawnPoint{
					Type:   spawnKindName(so.Kind),
					Object: so.Name(),
					X:      pos.X,
					Y:      pos.Z,
				})
			}
		}
		out.MapUnits = append(out.MapUnits, jmu)
	}

	return json.Marshal(out)
}
