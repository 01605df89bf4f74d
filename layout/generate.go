package layout

import (
	"github.com/mayabyte/caveripper/caveinfo"
	"github.com/mayabyte/caveripper/pikminmath"
)

// layoutBuilder holds all of the mutable state threaded through the
// placement, scoring, and spawn-population passes. Unlike the original's
// Rc<RefCell<>> graph, PlacedDoor.Adjacent and PlacedDoor.Parent are plain
// pointers: once a PlacedMapUnit is constructed its address never moves, so
// no index bookkeeping (parent_idx, recalculate_door_parents) is needed.
type layoutBuilder struct {
	rng          *pikminmath.Rng
	startingSeed uint32
	caveName     string

	mapUnits []*PlacedMapUnit

	capQueue      []*caveinfo.CaveUnit
	roomQueue     []*caveinfo.CaveUnit
	corridorQueue []*caveinfo.CaveUnit

	allocatedEnemySlotsByGroup [10]uint32
	enemyWeightSumByGroup      [10]uint32
	numSlotsUsedForMin         uint32
	minTeki0                   uint32
	placedTeki                 uint32

	mapMinX, mapMinZ, mapMaxX, mapMaxZ int
	mapHasDiameter36                   bool
	markedOpenDoorsAsCaps              bool

	placedStartPoint *PlacedSpawnPoint
	placedExitHole   *PlacedSpawnPoint
	placedExitGeyser *PlacedSpawnPoint
}

// Generate builds a complete layout for the given floor spec and seed,
// reproducing the original algorithm's map-unit placement, scoring, and
// spawn-object population passes in the exact order and with the exact PRNG
// draws it performs. The returned layout is deterministic: the same seed and
// CaveInfo always produce the same result.
//
// The RNG is seeded directly from seed, unmixed with anything
// sublevel-specific: the original game code this is grounded on never
// perturbs its seed per floor, so there is no constant here to mix in.
func Generate(seed uint32, ci *caveinfo.CaveInfo) *Layout {
	b := &layoutBuilder{
		rng:          pikminmath.NewRng(seed),
		startingSeed: seed,
		caveName:     ci.Name(),
	}
	return b.generate(ci)
}

func (b *layoutBuilder) generate(ci *caveinfo.CaveInfo) *Layout {
	isChallengeMode := ci.CaveCfg.IsChallengeMode

	for i := range ci.CaveUnits {
		u := &ci.CaveUnits[i]
		switch u.RoomType {
		case caveinfo.RoomTypeDeadEnd:
			b.capQueue = append(b.capQueue, u)
		case caveinfo.RoomTypeRoom:
			b.roomQueue = append(b.roomQueue, u)
		case caveinfo.RoomTypeHallway:
			b.corridorQueue = append(b.corridorQueue, u)
		}
	}
	b.capQueue = pikminmath.Backs(b.rng, b.capQueue)
	b.roomQueue = pikminmath.Backs(b.rng, b.roomQueue)
	b.corridorQueue = pikminmath.Backs(b.rng, b.corridorQueue)

	b.allocateEnemySlots(ci)

	var startUnit *caveinfo.CaveUnit
	for _, u := range b.roomQueue {
		if u.HasStartSpawnpoint() {
			startUnit = u
			break
		}
	}
	if startUnit == nil {
		panic("layout: no room in this floor's unit set has a start (ship) spawn point")
	}
	b.placeMapUnit(NewPlacedMapUnit(startUnit, 0, 0), true)

	if len(b.openDoors()) > 0 {
		b.mainPlacementLoop(ci)
	}

	b.recenter()
	b.placeShip()

	b.setScore()

	if !ci.IsFinalFloor {
		b.placeHole(SpawnHole, ci.ExitPlugged, isChallengeMode)
	}
	if ci.IsFinalFloor || ci.HasGeyser {
		b.placeHole(SpawnGeyser, isChallengeMode && ci.IsFinalFloor, isChallengeMode)
	}

	b.placeSeamTeki(ci)
	b.placeDistanceFilteredTeki(ci, 8, 300.0, 150.0, 150.0)
	b.placeDistanceFilteredTeki(ci, 1, 300.0, 200.0, 200.0)
	b.placeEasyTeki(ci)

	b.setScore()

	b.placePlants(ci)
	b.placeTreasures(ci, isChallengeMode)
	b.placeCapTeki(ci)
	b.placeGates(ci)

	return &Layout{
		Sublevel:     caveinfo.Sublevel{Cfg: ci.CaveCfg, Floor: ci.FloorNum},
		StartingSeed: b.startingSeed,
		CaveName:     b.caveName,
		MapUnits:     b.mapUnits,
	}
}

// allocateEnemySlots reserves each group's declared minimums, then
// distributes the remaining budget up to MaxMainObjects by weighted draw
// across groups 0 (easy), 1 (hard), 5 (seam), and 8 (special) — the only
// groups with a filler pool. Every draw happens whether or not it lands on
// a real group, since a wasted RNG call here shifts everything downstream.
func (b *layoutBuilder) allocateEnemySlots(ci *caveinfo.CaveInfo) {
	for _, group := range []uint32{0, 1, 5, 8} {
		for _, teki := range ci.TekiGroup(group) {
			b.allocatedEnemySlotsByGroup[group] += teki.MinimumAmount
			b.enemyWeightSumByGroup[group] += teki.FillerDistributionWeight
			b.numSlotsUsedForMin += teki.MinimumAmount
		}
	}
	b.minTeki0 = b.allocatedEnemySlotsByGroup[0]

	var remainingBudget uint32
	if ci.MaxMainObjects > b.numSlotsUsedForMin {
		remainingBudget = ci.MaxMainObjects - b.numSlotsUsedForMin
	}
	for i := uint32(0); i < remainingBudget; i++ {
		if group := b.rng.RandIndexWeight(b.enemyWeightSumByGroup[:]); group >= 0 {
			b.allocatedEnemySlotsByGroup[group]++
		}
	}
}

func (b *layoutBuilder) openDoors() []*PlacedDoor {
	var out []*PlacedDoor
	for _, u := range b.mapUnits {
		for _, d := range u.Doors {
			if d.Adjacent == nil {
				out = append(out, d)
			}
		}
	}
	return out
}

func (b *layoutBuilder) placeMapUnit(unit *PlacedMapUnit, checks bool) {
	b.mapUnits = append(b.mapUnits, unit)
	if !checks {
		return
	}
	b.attachCloseDoors(unit)
	b.shuffleUnitPriority(unit)
	b.recomputeMapSize(unit)
}

func (b *layoutBuilder) attachCloseDoors(newUnit *PlacedMapUnit) {
	for _, newDoor := range newUnit.Doors {
		for _, openDoor := range b.openDoors() {
			if newDoor.LinesUpWith(openDoor) {
				newDoor.Adjacent = openDoor
				openDoor.Adjacent = newDoor
			}
		}
	}
}

func (b *layoutBuilder) recomputeMapSize(newUnit *PlacedMapUnit) {
	if newUnit.X < b.mapMinX {
		b.mapMinX = newUnit.X
	}
	if newUnit.Z < b.mapMinZ {
		b.mapMinZ = newUnit.Z
	}
	if maxX := newUnit.X + newUnit.Unit.Width; maxX > b.mapMaxX {
		b.mapMaxX = maxX
	}
	if maxZ := newUnit.Z + newUnit.Unit.Height; maxZ > b.mapMaxZ {
		b.mapMaxZ = maxZ
	}
	b.mapHasDiameter36 = (b.mapMaxX-b.mapMinX >= 36) || (b.mapMaxZ-b.mapMinZ >= 36)
}

// shuffleUnitPriority re-shuffles the queue the newly placed unit came from,
// so the next unit of that kind drawn isn't always the same one. Rooms get
// a more elaborate treatment: units are grouped by folder name, the groups
// are ordered by how many of each have been placed so far (least-placed
// first), and each group of (up to) 4 rotations is moved to the back of the
// queue together.
func (b *layoutBuilder) shuffleUnitPriority(newUnit *PlacedMapUnit) {
	switch newUnit.Unit.RoomType {
	case caveinfo.RoomTypeDeadEnd:
		b.capQueue = pikminmath.Backs(b.rng, b.capQueue)
	case caveinfo.RoomTypeHallway:
		b.corridorQueue = pikminmath.Backs(b.rng, b.corridorQueue)
	case caveinfo.RoomTypeRoom:
		type placedCount struct {
			name  string
			count int
		}
		var counts []placedCount
		for _, u := range b.mapUnits {
			if u.Unit.RoomType != caveinfo.RoomTypeRoom {
				continue
			}
			found := false
			for i := range counts {
				if counts[i].name == u.Unit.UnitFolderName {
					counts[i].count++
					found = true
					break
				}
			}
			if !found {
				counts = append(counts, placedCount{u.Unit.UnitFolderName, 1})
			}
		}
		for i := 0; i < len(counts); i++ {
			for j := i + 1; j < len(counts); j++ {
				if counts[i].count > counts[j].count {
					counts[i], counts[j] = counts[j], counts[i]
				}
			}
		}

		for _, pc := range counts {
			var matching, remaining []*caveinfo.CaveUnit
			for _, u := range b.roomQueue {
				if u.UnitFolderName == pc.name {
					matching = append(matching, u)
				} else {
					remaining = append(remaining, u)
				}
			}
			b.roomQueue = remaining
			matching = pikminmath.BacksN(b.rng, matching, 4)
			b.roomQueue = append(b.roomQueue, matching...)
		}
	}
}

// shuffleCorridorPriority reorders the corridor queue by door count,
// favoring more doors when few doors are open (fewer than 4) and fewer
// doors when many are open (10 or more), so the map keeps branching while
// it is sparse and closes off once it is crowded. When the open-door count
// is in between, door-count priority is
// itself shuffled (with the original's biased swap).
func (b *layoutBuilder) shuffleCorridorPriority(ci *caveinfo.CaveInfo) {
	maxDoors := ci.MaxNumDoorsSingleUnit()
	numOpenDoors := len(b.openDoors())

	corridorPriority := make([]int, maxDoors)
	switch {
	case numOpenDoors < 4:
		for i := range corridorPriority {
			corridorPriority[i] = maxDoors - i
		}
	case numOpenDoors >= 10:
		for i := range corridorPriority {
			corridorPriority[i] = i + 1
		}
	default:
		for i := range corridorPriority {
			corridorPriority[i] = i + 1
		}
		pikminmath.Swaps(b.rng, corridorPriority)
	}

	var newQueue []*caveinfo.CaveUnit
	for _, numDoors := range corridorPriority {
		var remaining []*caveinfo.CaveUnit
		for _, u := range b.corridorQueue {
			if u.NumDoors == numDoors {
				newQueue = append(newQueue, u)
			} else {
				remaining = append(remaining, u)
			}
		}
		b.corridorQueue = remaining
	}
	b.corridorQueue = newQueue
}

// tryPlaceUnitAt attempts to attach newUnit's door doorIndex to dest,
// returning the candidate PlacedMapUnit (not yet added to the layout) if
// the placement is geometrically valid, or nil otherwise.
func (b *layoutBuilder) tryPlaceUnitAt(dest *PlacedDoor, newUnit *caveinfo.CaveUnit, doorIndex int) *PlacedMapUnit {
	newUnitDoor := newUnit.Doors[doorIndex]
	if !dest.DoorUnit.FacesAcrossSeam(newUnitDoor) {
		return nil
	}

	var cx, cz int
	switch newUnitDoor.Direction {
	case 0:
		cx, cz = dest.X-newUnitDoor.SideLateralOffset, dest.Z
	case 1:
		cx, cz = dest.X-newUnit.Width, dest.Z-newUnitDoor.SideLateralOffset
	case 2:
		cx, cz = dest.X-newUnitDoor.SideLateralOffset, dest.Z-newUnit.Height
	case 3:
		cx, cz = dest.X, dest.Z-newUnitDoor.SideLateralOffset
	}
	candidate := NewPlacedMapUnit(newUnit, cx, cz)

	for _, placed := range b.mapUnits {
		if placed.Overlaps(candidate) {
			return nil
		}
	}

	openDoors := b.openDoors()

	for _, newDoor := range candidate.Doors {
		if doorHasMatch(newDoor, openDoors) {
			continue
		}
		if b.doorOpenSpaceBlocked(newDoor) {
			return nil
		}
	}

	for _, openDoor := range openDoors {
		if doorHasMatch(openDoor, candidate.Doors) {
			continue
		}
		openSpaceX, openSpaceZ := openDoorSpace(openDoor)
		if boxesOverlap(openSpaceX, openSpaceZ, 1, 1, candidate.X, candidate.Z, candidate.Unit.Width, candidate.Unit.Height) {
			return nil
		}
	}

	return candidate
}

func doorHasMatch(d *PlacedDoor, others []*PlacedDoor) bool {
	for _, o := range others {
		if d.LinesUpWith(o) {
			return true
		}
	}
	return false
}

// openDoorSpace returns the grid cell one step out from d, in the
// direction it faces: the space that must stay clear of other units for d
// to remain usable.
func openDoorSpace(d *PlacedDoor) (int, int) {
	x, z := d.X, d.Z
	switch d.DoorUnit.Direction {
	case 3:
		x--
	case 0:
		z--
	}
	return x, z
}

func (b *layoutBuilder) doorOpenSpaceBlocked(d *PlacedDoor) bool {
	x, z := openDoorSpace(d)
	for _, placed := range b.mapUnits {
		if boxesOverlap(x, z, 1, 1, placed.X, placed.Z, placed.Unit.Width, placed.Unit.Height) {
			return true
		}
	}
	return false
}

func (b *layoutBuilder) markRandomOpenDoorsAsCaps(ci *caveinfo.CaveInfo) {
	if b.markedOpenDoorsAsCaps {
		return
	}
	b.markedOpenDoorsAsCaps = true

	numMarked := 0
	for _, od := range b.openDoors() {
		if b.rng.RandFloat() < ci.CapProbability {
			od.MarkedAsCap = true
			numMarked++
			if numMarked >= 16 {
				break
			}
		}
	}
}

func (b *layoutBuilder) countPlacedRoomType(rt caveinfo.RoomType) int {
	count := 0
	for _, u := range b.mapUnits {
		if u.Unit.RoomType == rt {
			count++
		}
	}
	return count
}

func (b *layoutBuilder) removeMapUnitAt(idx int) {
	b.mapUnits = append(b.mapUnits[:idx], b.mapUnits[idx+1:]...)
}

func (b *layoutBuilder) unitIndex(u *PlacedMapUnit) int {
	for i, mu := range b.mapUnits {
		if mu == u {
			return i
		}
	}
	return -1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// doorLinkTarget returns unit's other door referenced by d's first
// in-unit door link — used to find the door on the far side of a 2-door
// hallway or alcove, not d itself.
func doorLinkTarget(unit *PlacedMapUnit, d *PlacedDoor) *PlacedDoor {
	return unit.Doors[d.DoorUnit.DoorLinks[0].DoorID]
}
