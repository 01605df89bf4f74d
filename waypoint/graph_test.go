package waypoint

import (
	"math"
	"testing"

	"github.com/mayabyte/caveripper/caveinfo"
	"github.com/mayabyte/caveripper/layout"
)

// twoRoomLayout builds a minimal two-room layout by hand, without going
// through the generator: a start room holding the ship, linked through a
// single matched door pair to a second room holding one treasure.
func twoRoomLayout() (*layout.Layout, *layout.PlacedMapUnit, *layout.PlacedMapUnit) {
	unitA := caveinfo.CaveUnit{
		UnitFolderName: "start_room",
		Width:          1,
		Height:         1,
		RoomType:       caveinfo.RoomTypeRoom,
		NumDoors:       1,
		Doors:          []caveinfo.DoorUnit{{Direction: 0}},
		Spawnpoints:    []caveinfo.SpawnPoint{{Group: 7}},
		Waypoints:      []caveinfo.Waypoint{{Index: 0, R: 30}},
	}
	unitB := caveinfo.CaveUnit{
		UnitFolderName: "treasure_room",
		Width:          1,
		Height:         1,
		RoomType:       caveinfo.RoomTypeRoom,
		NumDoors:       1,
		Doors:          []caveinfo.DoorUnit{{Direction: 2}},
		Spawnpoints:    []caveinfo.SpawnPoint{{Group: 2}},
		Waypoints:      []caveinfo.Waypoint{{Index: 0, R: 30}},
	}

	pmuA := layout.NewPlacedMapUnit(&unitA, 0, 0)
	pmuB := layout.NewPlacedMapUnit(&unitB, 0, -1)
	pmuA.Doors[0].Adjacent = pmuB.Doors[0]
	pmuB.Doors[0].Adjacent = pmuA.Doors[0]

	pmuA.Spawnpoints[0].Contains = append(pmuA.Spawnpoints[0].Contains, layout.SpawnObject{Kind: layout.SpawnShip})
	pmuB.Spawnpoints[0].Contains = append(pmuB.Spawnpoints[0].Contains, layout.SpawnObject{
		Kind: layout.SpawnItem,
		Item: &caveinfo.ItemInfo{InternalName: "bomb_rock"},
	})

	l := &layout.Layout{MapUnits: []*layout.PlacedMapUnit{pmuA, pmuB}}
	return l, pmuA, pmuB
}

func TestBuildConnectsRoomsThroughSharedDoor(t *testing.T) {
	l, pmuA, pmuB := twoRoomLayout()
	g := Build(l)

	ship, ok := l.FindShip()
	if !ok {
		t.Fatal("expected a ship in the layout")
	}
	if got := g.NearestNode(ship); got != g.shipNode {
		t.Fatalf("graph's own shipNode = %d, NearestNode(ship) = %d", g.shipNode, got)
	}

	doorA := pmuA.Doors[0].Center()
	doorB := pmuB.Doors[0].Center()
	if doorA != doorB {
		t.Fatalf("expected the two linked doors to share a seam position, got %v vs %v", doorA, doorB)
	}

	treasurePos := pmuB.Spawnpoints[0].Pos
	wpA := g.Nodes[g.shipNode].Pos
	wpB := g.Nodes[g.NearestNode(treasurePos)].Pos

	want := wpA.Dist2(doorA) + doorB.Dist2(wpB)
	got := g.CarryDistFromShip(treasurePos)
	if math.Abs(float64(got-want)) > 1e-2 {
		t.Errorf("CarryDistFromShip = %v, want %v", got, want)
	}
	if got <= 0 {
		t.Errorf("expected a nonzero carry distance between two distinct rooms, got %v", got)
	}
}

func TestCarryDistUnreachableWithoutShip(t *testing.T) {
	l, _, pmuB := twoRoomLayout()
	// Strip the ship so the graph never resolves a shipNode.
	l.MapUnits[0].Spawnpoints[0].Contains = nil
	g := Build(l)

	if g.shipNode != -1 {
		t.Fatalf("expected no shipNode once the ship is removed, got %d", g.shipNode)
	}
	if got := g.CarryDistFromShip(pmuB.Spawnpoints[0].Pos); !math.IsInf(float64(got), 1) {
		t.Errorf("CarryDistFromShip with no ship = %v, want +Inf", got)
	}
}

func TestCarryDistDisconnectedRooms(t *testing.T) {
	l, pmuA, pmuB := twoRoomLayout()
	// Break the link: the two rooms no longer share a matched door.
	pmuA.Doors[0].Adjacent = nil
	pmuB.Doors[0].Adjacent = nil
	g := Build(l)

	got := g.CarryDistFromShip(pmuB.Spawnpoints[0].Pos)
	if !math.IsInf(float64(got), 1) {
		t.Errorf("CarryDistFromShip across a disconnected seam = %v, want +Inf", got)
	}
}

func TestIsGatedFromShipDetectsGateOnPath(t *testing.T) {
	l, pmuA, pmuB := twoRoomLayout()
	g := Build(l)
	treasurePos := pmuB.Spawnpoints[0].Pos

	if g.IsGatedFromShip(treasurePos, GatePositions(l)) {
		t.Fatal("expected the treasure to be ungated before any gate is placed")
	}

	gate := layout.SpawnObject{Kind: layout.SpawnGate, Gate: &caveinfo.GateInfo{Health: 4000}}
	pmuA.Doors[0].SeamSpawnpoint = &gate

	gates := GatePositions(l)
	if len(gates) != 1 {
		t.Fatalf("expected exactly 1 gate position, got %d", len(gates))
	}
	if !g.IsGatedFromShip(treasurePos, gates) {
		t.Error("expected the treasure to be gated once a gate sits on the only connecting door")
	}
}

func TestIsGatedFromShipFalseForShipItself(t *testing.T) {
	l, pmuA, _ := twoRoomLayout()
	g := Build(l)

	gate := layout.SpawnObject{Kind: layout.SpawnGate, Gate: &caveinfo.GateInfo{Health: 4000}}
	pmuA.Doors[0].SeamSpawnpoint = &gate
	gates := GatePositions(l)

	shipPos, _ := l.FindShip()
	if g.IsGatedFromShip(shipPos, gates) {
		t.Error("the ship's own position should never be reported as gated from itself")
	}
}

func TestGatePositionsEmptyWithoutGates(t *testing.T) {
	l, _, _ := twoRoomLayout()
	if gates := GatePositions(l); len(gates) != 0 {
		t.Errorf("expected no gates, got %v", gates)
	}
}
