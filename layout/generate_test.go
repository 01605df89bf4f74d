package layout

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/mayabyte/caveripper/caveinfo"
)

// minimalCaveInfo returns a two-unit floor spec: a 1x1 starting room with a
// ship spawn point and a door facing north, and a 1x1 dead-end alcove with a
// matching south-facing door and a synthetic hole/geyser spawn point. Every
// object budget is zero, so every teki/treasure/gate pass in Generate is a
// guaranteed no-op: this fixture exercises placement, scoring, and hole
// placement without depending on any table data.
func minimalCaveInfo() *caveinfo.CaveInfo {
	startRoom := caveinfo.CaveUnit{
		UnitFolderName: "start_room",
		Width:          1,
		Height:         1,
		RoomType:       caveinfo.RoomTypeRoom,
		NumDoors:       1,
		Doors:          []caveinfo.DoorUnit{{Direction: 0}},
		Spawnpoints:    []caveinfo.SpawnPoint{{Group: 7}},
	}
	deadEnd := caveinfo.CaveUnit{
		UnitFolderName: "dead_end_cap",
		Width:          1,
		Height:         1,
		RoomType:       caveinfo.RoomTypeDeadEnd,
		NumDoors:       1,
		Doors:          []caveinfo.DoorUnit{{Direction: 2}},
		Spawnpoints:    []caveinfo.SpawnPoint{{Group: 9}},
	}

	return &caveinfo.CaveInfo{
		CaveCfg:  caveinfo.CaveConfig{Aliases: []string{"TST"}},
		FloorNum: 1,
		NumRooms: 1,

		CaveUnits: []caveinfo.CaveUnit{startRoom, deadEnd},
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	ci := minimalCaveInfo()

	a, err := json.Marshal(Generate(0x1234ABCD, ci))
	if err != nil {
		t.Fatalf("marshal first layout: %v", err)
	}
	b, err := json.Marshal(Generate(0x1234ABCD, ci))
	if err != nil {
		t.Fatalf("marshal second layout: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("two Generate calls with the same seed produced different layouts:\n%s\nvs\n%s", a, b)
	}
}

func TestGenerateStructuralInvariants(t *testing.T) {
	for _, seed := range []uint32{0, 1, 0xCAFEBABE, 0xFFFFFFFF} {
		ci := minimalCaveInfo()
		l := Generate(seed, ci)

		if len(l.MapUnits) != 2 {
			t.Fatalf("seed %#x: expected 2 placed map units, got %d", seed, len(l.MapUnits))
		}

		for i, u := range l.MapUnits {
			for j, other := range l.MapUnits {
				if i == j {
					continue
				}
				if u.Overlaps(other) {
					t.Errorf("seed %#x: unit %d overlaps unit %d", seed, i, j)
				}
			}
			for _, d := range u.Doors {
				if d.Adjacent == nil {
					t.Errorf("seed %#x: unit %q has an unlinked open door", seed, u.Unit.UnitFolderName)
				}
			}
		}

		var ships, holes, geysers int
		for _, obj := range l.SpawnObjects() {
			switch obj.Object.Kind {
			case SpawnShip:
				ships++
			case SpawnHole:
				holes++
			case SpawnGeyser:
				geysers++
			}
		}
		if ships != 1 {
			t.Errorf("seed %#x: expected exactly 1 ship, got %d", seed, ships)
		}
		if holes != 1 {
			t.Errorf("seed %#x: expected exactly 1 hole, got %d", seed, holes)
		}
		if geysers != 0 {
			t.Errorf("seed %#x: expected 0 geysers on a non-final floor without HasGeyser, got %d", seed, geysers)
		}
	}
}

func TestGenerateRecentersToNonNegativeOrigin(t *testing.T) {
	ci := minimalCaveInfo()
	l := Generate(0x42, ci)

	minX, minZ := l.MapUnits[0].X, l.MapUnits[0].Z
	for _, u := range l.MapUnits {
		if u.X < minX {
			minX = u.X
		}
		if u.Z < minZ {
			minZ = u.Z
		}
	}
	if minX != 0 || minZ != 0 {
		t.Errorf("expected the layout to be recentered to a (0, 0) minimum, got (%d, %d)", minX, minZ)
	}
}

func TestGenerateCaveNameAndSeedRoundTrip(t *testing.T) {
	ci := minimalCaveInfo()
	const seed = 0x9001
	l := Generate(seed, ci)

	if l.StartingSeed != seed {
		t.Errorf("StartingSeed = %#x, want %#x", l.StartingSeed, uint32(seed))
	}
	if l.Sublevel.NormalizedName() != "TST-1" {
		t.Errorf("Sublevel.NormalizedName() = %q, want %q", l.Sublevel.NormalizedName(), "TST-1")
	}
}
