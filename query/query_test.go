package query

import (
	"testing"

	"github.com/mayabyte/caveripper/caveinfo"
	"github.com/mayabyte/caveripper/layout"
)

func testCfgs() []caveinfo.CaveConfig {
	return []caveinfo.CaveConfig{
		{GameTag: "pikmin2", HumanName: "Shower Room", CaveinfoFilename: "shx.txt", Aliases: []string{"SCx"}, Game: "pikmin2"},
		{GameTag: "pikmin2", HumanName: "Hole of Heroes", CaveinfoFilename: "hoh.txt", Aliases: []string{"HoH"}, Game: "pikmin2"},
	}
}

func TestTryParseCompareEntity(t *testing.T) {
	q, err := Try("scx7 bomb_rock > 2", testCfgs())
	if err != nil {
		t.Fatalf("Try: %v", err)
	}
	if len(q.Clauses) != 1 {
		t.Fatalf("expected 1 clause, got %d", len(q.Clauses))
	}
	ce, ok := q.Clauses[0].Kind.(CountEntity)
	if !ok {
		t.Fatalf("expected CountEntity, got %T", q.Clauses[0].Kind)
	}
	if ce.Relationship != Greater || ce.Amount != 2 {
		t.Errorf("got %v %d, want > 2", ce.Relationship, ce.Amount)
	}
	if ce.Entity.name != "bomb_rock" {
		t.Errorf("got entity name %q", ce.Entity.name)
	}
}

func TestTryParseCompareRoom(t *testing.T) {
	q, err := Try("scx7 room = 3", testCfgs())
	if err != nil {
		t.Fatalf("Try: %v", err)
	}
	cr, ok := q.Clauses[0].Kind.(CountRoom)
	if !ok {
		t.Fatalf("expected CountRoom, got %T", q.Clauses[0].Kind)
	}
	if !cr.Unit.byType || cr.Unit.roomType != caveinfo.RoomTypeRoom {
		t.Errorf("expected room-type matcher, got %+v", cr.Unit)
	}
}

func TestTryParseCarryDistSynonyms(t *testing.T) {
	for _, phrase := range []string{"carry dist", "carry distance", "carry path"} {
		q, err := Try("scx7 any "+phrase+" > 500", testCfgs())
		if err != nil {
			t.Fatalf("Try(%q): %v", phrase, err)
		}
		cd, ok := q.Clauses[0].Kind.(CarryDist)
		if !ok {
			t.Fatalf("Try(%q): expected CarryDist, got %T", phrase, q.Clauses[0].Kind)
		}
		if cd.Relationship != Greater || cd.ReqDist != 500 {
			t.Errorf("Try(%q): got %v %g", phrase, cd.Relationship, cd.ReqDist)
		}
	}
}

func TestTryParseGatedNotGated(t *testing.T) {
	cases := map[string]bool{
		"scx7 ship gated":     true,
		"scx7 ship not gated": false,
		"scx7 ship!gated":     false,
	}
	for input, wantGated := range cases {
		q, err := Try(input, testCfgs())
		if err != nil {
			t.Fatalf("Try(%q): %v", input, err)
		}
		switch k := q.Clauses[0].Kind.(type) {
		case Gated:
			if !wantGated {
				t.Errorf("Try(%q): got Gated, want NotGated", input)
			}
			_ = k
		case NotGated:
			if wantGated {
				t.Errorf("Try(%q): got NotGated, want Gated", input)
			}
		default:
			t.Errorf("Try(%q): got %T", input, k)
		}
	}
}

func TestTryParseRoomPath(t *testing.T) {
	q, err := Try("scx7 start_room + ship -> any", testCfgs())
	if err != nil {
		t.Fatalf("Try: %v", err)
	}
	rp, ok := q.Clauses[0].Kind.(RoomPath)
	if !ok {
		t.Fatalf("expected RoomPath, got %T", q.Clauses[0].Kind)
	}
	if len(rp.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(rp.Components))
	}
	if len(rp.Components[0].Entities) != 1 || rp.Components[0].Entities[0].category != entityShip {
		t.Errorf("expected first component to require ship, got %+v", rp.Components[0])
	}
}

func TestTryParseSecondClauseInheritsSublevel(t *testing.T) {
	q, err := Try("scx7 ship gated & hole > 0", testCfgs())
	if err != nil {
		t.Fatalf("Try: %v", err)
	}
	if len(q.Clauses) != 2 {
		t.Fatalf("expected 2 clauses, got %d", len(q.Clauses))
	}
	if q.Clauses[1].Sublevel.NormalizedName() != q.Clauses[0].Sublevel.NormalizedName() {
		t.Errorf("second clause did not inherit sublevel: %v vs %v", q.Clauses[1].Sublevel, q.Clauses[0].Sublevel)
	}
}

func TestTryParseMultipleSublevels(t *testing.T) {
	q, err := Try("scx7 ship gated & hoh1 hole > 0", testCfgs())
	if err != nil {
		t.Fatalf("Try: %v", err)
	}
	if len(q.Sublevels()) != 2 {
		t.Errorf("expected 2 distinct sublevels, got %d", len(q.Sublevels()))
	}
}

func TestTryParseUnknownSublevel(t *testing.T) {
	if _, err := Try("zzz99 ship gated", testCfgs()); err == nil {
		t.Error("expected an error for an unresolvable sublevel shortcode")
	}
}

func TestEntityMatcherCarrying(t *testing.T) {
	m := ParseEntityMatcher("pom/bomb_rock")
	teki := layout.SpawnObject{
		Kind: layout.SpawnTeki,
		Teki: &caveinfo.TekiInfo{InternalName: "pom", Carrying: "bomb_rock"},
	}
	if !m.Matches(teki) {
		t.Error("expected pom/bomb_rock to match a pom carrying bomb_rock")
	}
	teki.Teki = &caveinfo.TekiInfo{InternalName: "pom", Carrying: "bluegem"}
	if m.Matches(teki) {
		t.Error("expected pom/bomb_rock not to match a pom carrying bluegem")
	}
}

func TestUnitMatcherAny(t *testing.T) {
	m := ParseUnitMatcher("any")
	u := &caveinfo.CaveUnit{UnitFolderName: "whatever_room", RoomType: caveinfo.RoomTypeRoom}
	if !m.Matches(u) {
		t.Error("expected any to match every unit")
	}
}
