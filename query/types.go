// Package query implements the structural query language used to describe
// seeds of interest ("find me a sublevel with at least 3 bomb rocks gated
// from the ship"), and evaluates such queries against generated layouts.
package query

import (
	"fmt"
	"strings"

	"github.com/mayabyte/caveripper/caveinfo"
	"github.com/mayabyte/caveripper/internal/casefold"
	"github.com/mayabyte/caveripper/layout"
)

// Ordering is the result of comparing an observed value against a query's
// stated amount: <, =, or >.
type Ordering int

const (
	Less Ordering = iota
	Equal
	Greater
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "<"
	case Equal:
		return "="
	case Greater:
		return ">"
	default:
		return "?"
	}
}

// satisfiedBy reports whether the sign of cmp (as from a three-way
// comparison, negative/zero/positive) satisfies o.
func (o Ordering) satisfiedBy(cmp int) bool {
	switch {
	case cmp < 0:
		return o == Less
	case cmp > 0:
		return o == Greater
	default:
		return o == Equal
	}
}

func parseOrdering(s string) (Ordering, error) {
	switch s {
	case "<":
		return Less, nil
	case "=":
		return Equal, nil
	case ">":
		return Greater, nil
	default:
		return 0, fmt.Errorf("invalid comparator %q", s)
	}
}

// EntityMatcher matches a placed spawn object: a named teki/cap-teki/item
// (optionally constrained by what it's carrying), or one of the fixed
// categories hole/geyser/ship/gate.
type EntityMatcher struct {
	category entityCategory
	name     string   // only set for category==entityNamed
	carrying string   // only set when a "/carrying" suffix was present
	hasCarry bool
}

type entityCategory int

const (
	entityNamed entityCategory = iota
	entityHole
	entityGeyser
	entityShip
	entityGate
)

// ParseEntityMatcher parses an `entity := ident ("/" ident)?` token.
func ParseEntityMatcher(s string) EntityMatcher {
	lower := casefold.Fold(strings.TrimSpace(s))
	switch lower {
	case "hole":
		return EntityMatcher{category: entityHole}
	case "geyser":
		return EntityMatcher{category: entityGeyser}
	case "ship":
		return EntityMatcher{category: entityShip}
	case "gate":
		return EntityMatcher{category: entityGate}
	}
	if idx := strings.IndexByte(lower, '/'); idx >= 0 {
		return EntityMatcher{
			category: entityNamed,
			name:     strings.TrimSpace(lower[:idx]),
			carrying: strings.TrimSpace(lower[idx+1:]),
			hasCarry: true,
		}
	}
	return EntityMatcher{category: entityNamed, name: lower}
}

func (m EntityMatcher) String() string {
	switch m.category {
	case entityHole:
		return "hole"
	case entityGeyser:
		return "geyser"
	case entityShip:
		return "ship"
	case entityGate:
		return "gate"
	case entityNamed:
		if m.hasCarry {
			return m.name + "/" + m.carrying
		}
		return m.name
	default:
		return ""
	}
}

// Matches reports whether so satisfies this matcher.
func (m EntityMatcher) Matches(so layout.SpawnObject) bool {
	switch m.category {
	case entityHole:
		return so.Kind == layout.SpawnHole
	case entityGeyser:
		return so.Kind == layout.SpawnGeyser
	case entityShip:
		return so.Kind == layout.SpawnShip
	case entityGate:
		return so.Kind == layout.SpawnGate
	case entityNamed:
		switch so.Kind {
		case layout.SpawnTeki:
			return m.nameMatches(so.Teki.InternalName) && m.carryMatches(so.Teki.Carrying)
		case layout.SpawnCapTeki:
			return m.nameMatches(so.CapTeki.InternalName) && m.carryMatches(so.CapTeki.Carrying)
		case layout.SpawnItem:
			return m.nameMatches(so.Item.InternalName) && !m.hasCarry
		default:
			return false
		}
	default:
		return false
	}
}

func (m EntityMatcher) nameMatches(internalName string) bool {
	return m.name == "any" || casefold.Equal(m.name, internalName)
}

// ExistsOn reports whether m could ever match something on ci's floor: the
// fixed categories (hole/geyser/ship/gate) always exist as floor concepts,
// "any" always matches, and a named entity exists iff it appears in the
// floor's teki, item, or cap-teki tables. Used to distinguish "this entity
// is declared on the floor but has zero placed instances this generation"
// (a legitimate false/zero result) from "this entity was never declared on
// the floor at all" (spec §7's QueryReference).
func (m EntityMatcher) ExistsOn(ci *caveinfo.CaveInfo) bool {
	switch m.category {
	case entityHole, entityGeyser, entityShip, entityGate:
		return true
	case entityNamed:
		if m.name == "any" {
			return true
		}
		for i := range ci.TekiInfo {
			if casefold.Equal(m.name, ci.TekiInfo[i].InternalName) {
				return true
			}
		}
		for i := range ci.ItemInfo {
			if casefold.Equal(m.name, ci.ItemInfo[i].InternalName) {
				return true
			}
		}
		for i := range ci.CapInfo {
			if casefold.Equal(m.name, ci.CapInfo[i].InternalName) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (m EntityMatcher) carryMatches(carrying string) bool {
	if !m.hasCarry {
		return true
	}
	if carrying == "" {
		return casefold.Equal(m.carrying, "any")
	}
	return casefold.Equal(m.carrying, carrying)
}

// UnitMatcher matches a placed map unit: by shape class (room/hallway/cap)
// or by its unit folder name, with "any" matching every unit.
type UnitMatcher struct {
	byType   bool
	roomType caveinfo.RoomType
	name     string
}

// ParseUnitMatcher parses a `unit_matcher` token: one of "room",
// "hallway"/"hall", "alcove"/"cap", "any", or an exact unit folder name.
func ParseUnitMatcher(s string) UnitMatcher {
	if rt, ok := caveinfo.ParseRoomType(s); ok {
		return UnitMatcher{byType: true, roomType: rt}
	}
	return UnitMatcher{name: strings.TrimSpace(s)}
}

func (m UnitMatcher) String() string {
	if m.byType {
		return m.roomType.String()
	}
	if casefold.Equal(m.name, "any") {
		return "any(room)"
	}
	return m.name
}

// Matches reports whether u satisfies this matcher.
func (m UnitMatcher) Matches(u *caveinfo.CaveUnit) bool {
	if m.byType {
		return u.RoomType == m.roomType
	}
	if casefold.Equal(m.name, "any") {
		return true
	}
	return casefold.Equal(m.name, u.UnitFolderName)
}

// QueryKind is the evaluable predicate a single clause carries: one of
// CountEntity, CountRoom, CarryDist, StraightLineDist, Gated, NotGated, or
// RoomPath. Evaluation itself lives in eval.go, as a type switch over the
// sealed set of implementations below.
type QueryKind interface {
	fmt.Stringer
	queryKind()
}

func (CountEntity) queryKind()      {}
func (CountRoom) queryKind()        {}
func (CarryDist) queryKind()        {}
func (StraightLineDist) queryKind() {}
func (Gated) queryKind()            {}
func (NotGated) queryKind()         {}
func (RoomPath) queryKind()         {}

// CountEntity counts placed spawn objects matching Entity against Amount.
type CountEntity struct {
	Entity       EntityMatcher
	Relationship Ordering
	Amount       int
}

func (q CountEntity) String() string {
	return fmt.Sprintf("%s %s %d", q.Entity, q.Relationship, q.Amount)
}

// CountRoom counts placed map units matching Unit against Amount.
type CountRoom struct {
	Unit         UnitMatcher
	Relationship Ordering
	Amount       int
}

func (q CountRoom) String() string {
	return fmt.Sprintf("%s %s %d", q.Unit, q.Relationship, q.Amount)
}

// CarryDist tests the carry-path distance from the ship to any matching
// entity against ReqDist (existential: true if any matching object
// satisfies the comparison).
type CarryDist struct {
	Entity       EntityMatcher
	Relationship Ordering
	ReqDist      float32
}

func (q CarryDist) String() string {
	return fmt.Sprintf("%s carry dist %s %g", q.Entity, q.Relationship, q.ReqDist)
}

// StraightLineDist tests the straight-line distance between any pair of
// objects matching Entity1 and Entity2 against ReqDist (existential).
type StraightLineDist struct {
	Entity1, Entity2 EntityMatcher
	Relationship     Ordering
	ReqDist          float32
}

func (q StraightLineDist) String() string {
	return fmt.Sprintf("%s straight dist %s %s %g", q.Entity1, q.Entity2, q.Relationship, q.ReqDist)
}

// Gated is true iff some matching object's carry path from the ship passes
// within gating range of a placed gate.
type Gated struct{ Entity EntityMatcher }

func (q Gated) String() string { return fmt.Sprintf("%s gated", q.Entity) }

// NotGated is true iff every matching object's carry path from the ship
// never comes within gating range of a placed gate.
type NotGated struct{ Entity EntityMatcher }

func (q NotGated) String() string { return fmt.Sprintf("%s not gated", q.Entity) }

// RoomPath is a sequence of unit constraints connected by door adjacency.
type RoomPath struct {
	Components []PathComponent
}

// PathComponent is one step of a RoomPath: a unit matcher plus the set of
// entities that unit must contain.
type PathComponent struct {
	Unit     UnitMatcher
	Entities []EntityMatcher
}

func (q RoomPath) String() string {
	var sb strings.Builder
	for i, c := range q.Components {
		if i > 0 {
			sb.WriteString(" -> ")
		}
		sb.WriteString(c.Unit.String())
		for _, e := range c.Entities {
			sb.WriteString(" + ")
			sb.WriteString(e.String())
		}
	}
	return sb.String()
}

// Clause pairs a single predicate with the sublevel it's evaluated
// against.
type Clause struct {
	Sublevel caveinfo.Sublevel
	Kind     QueryKind
}

func (c Clause) String() string {
	return c.Sublevel.ShortName() + " " + c.Kind.String()
}

// StructuralQuery is a full parsed query: a conjunction of clauses, each
// against its own (possibly repeated) sublevel.
type StructuralQuery struct {
	Clauses []Clause
}

func (q StructuralQuery) String() string {
	parts := make([]string, len(q.Clauses))
	for i, c := range q.Clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, " & ")
}

// Sublevels returns the distinct sublevels referenced by q's clauses, in
// first-appearance order.
func (q StructuralQuery) Sublevels() []caveinfo.Sublevel {
	var out []caveinfo.Sublevel
	seen := make(map[string]bool)
	for _, c := range q.Clauses {
		key := c.Sublevel.NormalizedName()
		if !seen[key] {
			seen[key] = true
			out = append(out, c.Sublevel)
		}
	}
	return out
}
