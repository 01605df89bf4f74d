package layout

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/mayabyte/caveripper/caveinfo"
	"github.com/mayabyte/caveripper/pikminmath"
)

func approxEqual(a, b, eps float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

// TestNewPlacedMapUnitPreservesRelativeDistances checks that placing a unit
// at every rotation is a rigid transform: the distance between two spawn
// points in unit-local space survives into world space unchanged.
func TestNewPlacedMapUnitPreservesRelativeDistances(t *testing.T) {
	p1 := pikminmath.Point3{X: 10, Y: 0, Z: 5}
	p2 := pikminmath.Point3{X: -20, Y: 0, Z: 40}
	localDist := p1.Dist(p2)

	for rotation := 0; rotation < 4; rotation++ {
		unit := caveinfo.CaveUnit{
			Width:    2,
			Height:   3,
			Rotation: rotation,
			Spawnpoints: []caveinfo.SpawnPoint{
				{Group: 0, Pos: p1},
				{Group: 0, Pos: p2},
			},
		}
		pmu := NewPlacedMapUnit(&unit, 3, -2)
		got := pmu.Spawnpoints[0].Pos.Dist(pmu.Spawnpoints[1].Pos)
		if !approxEqual(got, localDist, 1e-2) {
			t.Errorf("rotation %d: world-space spawn point distance = %v, want %v", rotation, got, localDist)
		}
	}
}

// TestNewPlacedMapUnitDoorsLieOnFootprintEdge checks that each door's placed
// position sits on the corresponding edge of the unit's grid footprint.
func TestNewPlacedMapUnitDoorsLieOnFootprintEdge(t *testing.T) {
	const x, z, w, h = 5, 7, 3, 2
	unit := caveinfo.CaveUnit{
		Width:  w,
		Height: h,
		Doors: []caveinfo.DoorUnit{
			{Direction: 0, SideLateralOffset: 1}, // north
			{Direction: 1, SideLateralOffset: 0}, // east
			{Direction: 2, SideLateralOffset: 2}, // south
			{Direction: 3, SideLateralOffset: 1}, // west
		},
	}
	pmu := NewPlacedMapUnit(&unit, x, z)

	north, east, south, west := pmu.Doors[0], pmu.Doors[1], pmu.Doors[2], pmu.Doors[3]
	if north.Z != z {
		t.Errorf("north door Z = %d, want %d", north.Z, z)
	}
	if east.X != x+w {
		t.Errorf("east door X = %d, want %d", east.X, x+w)
	}
	if south.Z != z+h {
		t.Errorf("south door Z = %d, want %d", south.Z, z+h)
	}
	if west.X != x {
		t.Errorf("west door X = %d, want %d", west.X, x)
	}
}

func TestOverlapsDetectsIntersectionNotAdjacency(t *testing.T) {
	base := &PlacedMapUnit{Unit: &caveinfo.CaveUnit{Width: 2, Height: 2}, X: 0, Z: 0}

	overlapping := &PlacedMapUnit{Unit: &caveinfo.CaveUnit{Width: 2, Height: 2}, X: 1, Z: 1}
	if !base.Overlaps(overlapping) {
		t.Error("expected overlapping footprints to be detected")
	}

	adjacent := &PlacedMapUnit{Unit: &caveinfo.CaveUnit{Width: 2, Height: 2}, X: 2, Z: 0}
	if base.Overlaps(adjacent) {
		t.Error("footprints sharing only an edge should not count as overlapping")
	}

	disjoint := &PlacedMapUnit{Unit: &caveinfo.CaveUnit{Width: 2, Height: 2}, X: 10, Z: 10}
	if base.Overlaps(disjoint) {
		t.Error("far-apart footprints should not overlap")
	}
}

func TestLayoutScoreAggregation(t *testing.T) {
	l := &Layout{
		MapUnits: []*PlacedMapUnit{
			{TotalScore: 50, TekiScore: 3, Doors: []*PlacedDoor{{HasDoorScore: true, DoorScore: 10}}},
			{TotalScore: 20, TekiScore: 7, Doors: []*PlacedDoor{{HasDoorScore: true, DoorScore: 5}, {HasDoorScore: false, DoorScore: 999}}},
		},
	}
	if got := l.Score(); got != 20 {
		t.Errorf("Score() = %d, want 20 (the minimum TotalScore)", got)
	}
	if got := l.TekiScore(); got != 10 {
		t.Errorf("TekiScore() = %d, want 10", got)
	}
	if got := l.DoorScore(); got != 15 {
		t.Errorf("DoorScore() = %d, want 15 (excluding the door with HasDoorScore=false)", got)
	}
}

func TestLayoutScoreEmpty(t *testing.T) {
	l := &Layout{}
	if got := l.Score(); got != 0 {
		t.Errorf("Score() on an empty layout = %d, want 0", got)
	}
}

func TestLayoutMarshalJSONSchema(t *testing.T) {
	unit := caveinfo.CaveUnit{
		UnitFolderName: "room_a",
		Width:          1,
		Height:         1,
		Doors:          []caveinfo.DoorUnit{{Direction: 0}},
		Spawnpoints: []caveinfo.SpawnPoint{
			{Group: 7},
			{Group: 0},
		},
	}
	pmu := NewPlacedMapUnit(&unit, 0, 0)
	pmu.Spawnpoints[0].Contains = append(pmu.Spawnpoints[0].Contains, SpawnObject{Kind: SpawnShip})
	pmu.Spawnpoints[1].Contains = append(pmu.Spawnpoints[1].Contains, SpawnObject{
		Kind: SpawnTeki,
		Teki: &caveinfo.TekiInfo{InternalName: "chappy"},
	})

	l := &Layout{
		Sublevel:     caveinfo.Sublevel{Cfg: caveinfo.CaveConfig{Aliases: []string{"SCx"}}, Floor: 1},
		StartingSeed: 0xDEADBEEF,
		MapUnits:     []*PlacedMapUnit{pmu},
	}

	raw, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded struct {
		Name     string `json:"name"`
		Seed     uint32 `json:"seed"`
		Ship     *[2]float32 `json:"ship"`
		Hole     *[2]float32 `json:"hole,omitempty"`
		MapUnits []struct {
			Name        string `json:"name"`
			Doors       []struct{ X, Y, Direction int }
			SpawnPoints []struct {
				Type   string  `json:"type"`
				Object string  `json:"object"`
				X      float32 `json:"x"`
				Y      float32 `json:"y"`
			} `json:"spawn_points"`
		} `json:"map_units"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded.Name != "SCx1" {
		t.Errorf("name = %q, want %q", decoded.Name, "SCx1")
	}
	if decoded.Seed != 0xDEADBEEF {
		t.Errorf("seed = %#x, want 0xDEADBEEF", decoded.Seed)
	}
	if decoded.Ship == nil {
		t.Fatal("expected a ship entry")
	}
	if decoded.Hole != nil {
		t.Error("expected no hole entry when none was placed")
	}
	if len(decoded.MapUnits) != 1 || len(decoded.MapUnits[0].Doors) != 1 {
		t.Fatalf("unexpected map unit/door shape: %+v", decoded.MapUnits)
	}
	if len(decoded.MapUnits[0].SpawnPoints) != 2 {
		t.Fatalf("expected 2 spawn point entries, got %d", len(decoded.MapUnits[0].SpawnPoints))
	}
	foundShip, foundTeki := false, false
	for _, sp := range decoded.MapUnits[0].SpawnPoints {
		switch sp.Type {
		case "ship":
			foundShip = true
		case "teki":
			foundTeki = true
			if sp.Object != "chappy" {
				t.Errorf("teki object = %q, want chappy", sp.Object)
			}
		}
	}
	if !foundShip || !foundTeki {
		t.Errorf("expected both a ship and a teki spawn point entry, got %+v", decoded.MapUnits[0].SpawnPoints)
	}
}

func TestSpawnObjectsAppliesTekiOffset(t *testing.T) {
	unit := caveinfo.CaveUnit{
		Width:       1,
		Height:      1,
		Spawnpoints: []caveinfo.SpawnPoint{{Group: 0}},
	}
	pmu := NewPlacedMapUnit(&unit, 0, 0)
	pmu.Spawnpoints[0].Contains = append(pmu.Spawnpoints[0].Contains, SpawnObject{
		Kind:        SpawnTeki,
		Teki:        &caveinfo.TekiInfo{InternalName: "chappy"},
		TekiOffsetX: 12.5,
		TekiOffsetZ: -4,
	})
	l := &Layout{MapUnits: []*PlacedMapUnit{pmu}}

	objs := l.SpawnObjects()
	if len(objs) != 1 {
		t.Fatalf("expected 1 spawn object, got %d", len(objs))
	}
	base := pmu.Spawnpoints[0].Pos
	want := pikminmath.Point3{X: base.X + 12.5, Y: base.Y, Z: base.Z - 4}
	if objs[0].Pos != want {
		t.Errorf("teki position = %v, want %v", objs[0].Pos, want)
	}
}

func TestPointToLineDistSanity(t *testing.T) {
	a := pikminmath.Point2{X: 0, Z: 0}
	b := pikminmath.Point2{X: 10, Z: 0}
	mid := pikminmath.Point2{X: 5, Z: 3}
	got := pikminmath.PointToLineDist(mid, a, b)
	if !approxEqual(got, 3, 1e-4) {
		t.Errorf("PointToLineDist = %v, want 3", got)
	}

	beyond := pikminmath.Point2{X: 20, Z: 4}
	got = pikminmath.PointToLineDist(beyond, a, b)
	want := float32(math.Hypot(10, 4))
	if !approxEqual(got, want, 1e-4) {
		t.Errorf("PointToLineDist beyond segment = %v, want %v", got, want)
	}
}
