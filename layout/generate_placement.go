package layout

import (
	"github.com/mayabyte/caveripper/caveinfo"
	"github.com/mayabyte/caveripper/pikminmath"
)

// mainPlacementLoop runs the core map-unit placement loop: alternately
// placing rooms/hallways/caps at a random open door until NumRooms rooms
// are down, then filling remaining open doors with short connecting
// hallways and caps, finishing with two cleanup passes (replacing alcoves
// that back directly onto a corridor, and combining adjacent 1x1 corridor
// pairs into a single 2x1 piece) that only ever reduce the unit count.
func (b *layoutBuilder) mainPlacementLoop(ci *caveinfo.CaveInfo) {
mainLoop:
	for numLoops := 0; numLoops <= 10000; numLoops++ {
		var unitToPlace *PlacedMapUnit

		if b.countPlacedRoomType(caveinfo.RoomTypeRoom) < int(ci.NumRooms) {
			unitToPlace = b.placeNextRoomOrHallway(ci)
		} else {
			unitToPlace = b.placeConnectingHallway(ci)
		}

		if unitToPlace != nil {
			b.placeMapUnit(unitToPlace, true)
		} else {
			b.placeCap(ci)
		}

		if len(b.openDoors()) > 0 {
			continue
		}

		b.changeCapsToHallways()
		if len(b.openDoors()) > 0 {
			continue
		}

		b.combineAdjacentHallways()
		break mainLoop
	}
}

// placeNextRoomOrHallway picks a random open door and tries, in a
// priority order biased toward hallways on crowded maps and rooms
// otherwise, to attach a room, hallway, or cap there.
func (b *layoutBuilder) placeNextRoomOrHallway(ci *caveinfo.CaveInfo) *PlacedMapUnit {
	openDoors := b.openDoors()
	destDoor := openDoors[b.rng.RandInt(uint32(len(openDoors)))]

	corridorProbability := ci.CorridorProbability
	if b.mapHasDiameter36 {
		corridorProbability = 0
	}
	if destDoor.Parent.Unit.RoomType == caveinfo.RoomTypeRoom {
		corridorProbability *= 2
	}

	var roomTypePriority [3]caveinfo.RoomType
	if b.rng.RandFloat() < corridorProbability {
		roomTypePriority = [3]caveinfo.RoomType{caveinfo.RoomTypeHallway, caveinfo.RoomTypeRoom, caveinfo.RoomTypeDeadEnd}
	} else {
		roomTypePriority = [3]caveinfo.RoomType{caveinfo.RoomTypeRoom, caveinfo.RoomTypeHallway, caveinfo.RoomTypeDeadEnd}
	}

	for _, roomType := range roomTypePriority {
		var unitQueue []*caveinfo.CaveUnit
		switch roomType {
		case caveinfo.RoomTypeRoom:
			unitQueue = b.roomQueue
		case caveinfo.RoomTypeDeadEnd:
			unitQueue = b.capQueue
		case caveinfo.RoomTypeHallway:
			b.shuffleCorridorPriority(ci)
			unitQueue = b.corridorQueue
		}

		for _, mapUnit := range unitQueue {
			doorPriority := make([]int, mapUnit.NumDoors)
			for i := range doorPriority {
				doorPriority[i] = i
			}
			pikminmath.Swaps(b.rng, doorPriority)

			for _, doorIndex := range doorPriority {
				if approved := b.tryPlaceUnitAt(destDoor, mapUnit, doorIndex); approved != nil {
					return approved
				}
			}
		}
	}
	return nil
}

// placeConnectingHallway is used once the room quota is met: it marks some
// open doors as permanent caps, then tries to connect the remaining open
// doors pairwise with short 1x1 hallway pieces, snaking each hallway's
// door directions toward its nearest unmarked neighbor.
func (b *layoutBuilder) placeConnectingHallway(ci *caveinfo.CaveInfo) *PlacedMapUnit {
	b.markRandomOpenDoorsAsCaps(ci)

	var hallwayQueue []*caveinfo.CaveUnit
	for _, u := range b.corridorQueue {
		if u.Width == 1 && u.Height == 1 && u.NumDoors == 2 {
			hallwayQueue = append(hallwayQueue, u)
		}
	}
	pikminmath.Swaps(b.rng, hallwayQueue)

	for _, openDoor := range b.openDoors() {
		if openDoor.MarkedAsCap {
			continue
		}

		linkDoor := b.nearestLinkableDoor(openDoor)
		if linkDoor == nil {
			continue
		}

		dx := linkDoor.X - openDoor.X
		dz := linkDoor.Z - openDoor.Z
		openDoorDir := openDoor.DoorUnit.Direction
		linkDoorDir := linkDoor.DoorUnit.Direction
		priority := hallwaySnakePriority(openDoorDir, dx, dz, linkDoorDir)
		dirHallway0 := (openDoorDir + 2) % 4

		for _, dirHallway1 := range [2]int{priority, openDoorDir} {
			for _, hallwayUnit := range hallwayQueue {
				doorDir0 := hallwayUnit.Doors[0].Direction
				doorDir1 := hallwayUnit.Doors[1].Direction

				var approved *PlacedMapUnit
				if doorDir0 == dirHallway0 && doorDir1 == dirHallway1 {
					approved = b.tryPlaceUnitAt(openDoor, hallwayUnit, 0)
				} else if doorDir0 == dirHallway1 && doorDir1 == dirHallway0 {
					approved = b.tryPlaceUnitAt(openDoor, hallwayUnit, 1)
				}
				if approved != nil {
					return approved
				}
			}
		}
	}
	return nil
}

// nearestLinkableDoor finds the open door closest to openDoor (within a
// 10x10 box, and positioned in the direction openDoor actually faces) that
// belongs to a different map unit.
func (b *layoutBuilder) nearestLinkableDoor(openDoor *PlacedDoor) *PlacedDoor {
	var linkDoor *PlacedDoor
	linkDist := int(^uint(0) >> 1)
	for _, candidate := range b.openDoors() {
		if openDoor.Parent == candidate.Parent {
			continue
		}
		dx := candidate.X - openDoor.X
		dz := candidate.Z - openDoor.Z
		if abs(dx) >= 10 || abs(dz) >= 10 {
			continue
		}
		switch openDoor.DoorUnit.Direction {
		case 0:
			if dz > 0 {
				continue
			}
		case 1:
			if dx < 0 {
				continue
			}
		case 2:
			if dz < 0 {
				continue
			}
		case 3:
			if dx > 0 {
				continue
			}
		}
		if distance := abs(dx) + abs(dz); distance < linkDist {
			linkDoor = candidate
			linkDist = distance
		}
	}
	return linkDoor
}

// hallwaySnakePriority picks the secondary door direction a connecting
// hallway piece should try first, so hallways snake plausibly toward
// their target instead of doubling back on themselves. This table is
// empirical, mirroring the original's own undocumented direction logic.
func hallwaySnakePriority(openDoorDir, dx, dz, linkDoorDir int) int {
	switch openDoorDir {
	case 0:
		if dz > -2 {
			if dx >= 0 {
				return 1
			}
			return 3
		}
		switch {
		case dx < -1:
			return 3
		case dx == -1:
			if linkDoorDir == 2 || linkDoorDir == 3 {
				return 3
			}
			return 0
		case dx == 0:
			if linkDoorDir == 0 || linkDoorDir == 3 {
				return 3
			}
			return 0
		case dx == 1:
			if linkDoorDir == 1 || linkDoorDir == 2 {
				return 1
			}
			return 0
		default:
			return 1
		}
	case 1:
		if dx == 0 {
			if dz > 0 {
				return 2
			}
			return 0
		}
		switch {
		case dz < -1:
			return 0
		case dz == -1:
			if linkDoorDir == 0 || linkDoorDir == 3 {
				return 0
			}
			return 1
		case dz == 0:
			if linkDoorDir == 0 || linkDoorDir == 1 {
				return 0
			}
			return 1
		case dz == 1:
			if linkDoorDir == 2 || linkDoorDir == 3 {
				return 2
			}
			return 1
		default:
			return 2
		}
	case 2:
		if dz == 0 {
			if dx > 0 {
				return 1
			}
			return 3
		}
		switch {
		case dx < -1:
			return 3
		case dx == -1:
			if linkDoorDir == 0 || linkDoorDir == 3 {
				return 3
			}
			return 2
		case dx == 0:
			if linkDoorDir == 2 || linkDoorDir == 3 {
				return 3
			}
			return 2
		case dx == 1:
			if linkDoorDir == 0 || linkDoorDir == 1 {
				return 1
			}
			return 2
		default:
			return 1
		}
	default: // case 3
		if dx > -2 {
			if dz > 0 {
				return 2
			}
			return 0
		}
		switch {
		case dz < -1:
			return 0
		case dz == -1:
			if linkDoorDir == 0 || linkDoorDir == 1 {
				return 0
			}
			return 3
		case dz == 0:
			if linkDoorDir == 0 || linkDoorDir == 3 {
				return 0
			}
			return 3
		case dz == 1:
			if linkDoorDir == 1 || linkDoorDir == 2 {
				return 2
			}
			return 3
		default:
			return 2
		}
	}
}

// placeCap is the last-resort placement pass: try every open door against
// every remaining unit (caps first, then hallways, then rooms) ordered by
// door count, attaching the first one that fits.
func (b *layoutBuilder) placeCap(ci *caveinfo.CaveInfo) {
	for _, openDoor := range b.openDoors() {
		for _, roomType := range [3]caveinfo.RoomType{caveinfo.RoomTypeDeadEnd, caveinfo.RoomTypeHallway, caveinfo.RoomTypeRoom} {
			var unitQueue []*caveinfo.CaveUnit
			switch roomType {
			case caveinfo.RoomTypeRoom:
				unitQueue = b.roomQueue
			case caveinfo.RoomTypeDeadEnd:
				unitQueue = b.capQueue
			case caveinfo.RoomTypeHallway:
				unitQueue = b.corridorQueue
			}

			for numDoors := 1; numDoors <= ci.MaxNumDoorsSingleUnit(); numDoors++ {
				for _, mapUnit := range unitQueue {
					if mapUnit.NumDoors != numDoors {
						continue
					}
					doorPriority := make([]int, numDoors)
					for i := range doorPriority {
						doorPriority[i] = i
					}
					pikminmath.Swaps(b.rng, doorPriority)

					for _, doorIndex := range doorPriority {
						if approved := b.tryPlaceUnitAt(openDoor, mapUnit, doorIndex); approved != nil {
							b.placeMapUnit(approved, true)
							return
						}
					}
				}
			}
		}
	}
}

// changeCapsToHallways replaces the first placed alcove found that has a
// corridor unit directly behind its door with a corridor piece, then
// returns; each call replaces at most one alcove.
func (b *layoutBuilder) changeCapsToHallways() {
	var hallwayUnitNames []string
	for _, u := range b.corridorQueue {
		if u.Width == 1 && u.Height == 1 && u.NumDoors == 2 &&
			u.Doors[0].Direction == 0 && u.Doors[1].Direction == 2 {
			hallwayUnitNames = append(hallwayUnitNames, u.UnitFolderName)
		}
	}
	if len(hallwayUnitNames) == 0 {
		return
	}

	for i := 0; i < len(b.mapUnits); i++ {
		placedUnit := b.mapUnits[i]
		if placedUnit.Unit.RoomType != caveinfo.RoomTypeDeadEnd {
			continue
		}

		var spaceX, spaceZ int
		switch placedUnit.Doors[0].DoorUnit.Direction {
		case 0:
			spaceX, spaceZ = placedUnit.X, placedUnit.Z+1
		case 1:
			spaceX, spaceZ = placedUnit.X-1, placedUnit.Z
		case 2:
			spaceX, spaceZ = placedUnit.X, placedUnit.Z-1
		case 3:
			spaceX, spaceZ = placedUnit.X+1, placedUnit.Z
		}

		corridorBehindIdx := -1
		for idx, u := range b.mapUnits {
			if u.Unit.RoomType == caveinfo.RoomTypeHallway && u.X == spaceX && u.Z == spaceZ {
				corridorBehindIdx = idx
				break
			}
		}
		if corridorBehindIdx < 0 {
			continue
		}

		capDoorDir := placedUnit.Doors[0].DoorUnit.Direction
		attachTo := placedUnit.Doors[0].Adjacent
		if attachTo != nil {
			attachTo.Adjacent = nil
		}
		corridorBehind := b.mapUnits[corridorBehindIdx]
		for _, d := range corridorBehind.Doors {
			if d.Adjacent != nil {
				d.Adjacent.Adjacent = nil
			}
		}

		if i > corridorBehindIdx {
			b.removeMapUnitAt(i)
			b.removeMapUnitAt(corridorBehindIdx)
		} else {
			b.removeMapUnitAt(corridorBehindIdx)
			b.removeMapUnitAt(i)
		}

		placed := false
		chosenName := hallwayUnitNames[b.rng.RandInt(uint32(len(hallwayUnitNames)))]
		for _, newUnit := range b.corridorQueue {
			if newUnit.UnitFolderName == chosenName && newUnit.Doors[0].Direction == capDoorDir {
				if approved := b.tryPlaceUnitAt(attachTo, newUnit, 0); approved != nil {
					b.placeMapUnit(approved, true)
					placed = true
					break
				}
			}
		}
		if !placed {
			panic("layout: deleted an alcove behind a corridor but couldn't replace it with a hallway piece")
		}
		return
	}
}

// combineAdjacentHallways merges every pair of adjacent straight 1x1
// corridor pieces into a single 2x1 piece, repeating until no pair
// remains. This only runs once, after the room quota and door-filling
// passes are both fully settled.
func (b *layoutBuilder) combineAdjacentHallways() {
	var names1x1, names2x1 []string
	for _, u := range b.corridorQueue {
		if u.RoomType != caveinfo.RoomTypeHallway {
			continue
		}
		if u.Width == 1 && u.Height == 1 && u.NumDoors == 2 && u.Doors[0].Direction == 0 && u.Doors[1].Direction == 2 {
			names1x1 = append(names1x1, u.UnitFolderName)
		}
		if u.Width == 1 && u.Height == 2 && u.NumDoors == 2 && u.Doors[0].Direction == 0 && u.Doors[1].Direction == 2 {
			names2x1 = append(names2x1, u.UnitFolderName)
		}
	}
	if len(names1x1) == 0 || len(names2x1) == 0 {
		return
	}
	is1x1 := func(name string) bool {
		for _, n := range names1x1 {
			if n == name {
				return true
			}
		}
		return false
	}

	unit1Idx := 0
	for unit1Idx < len(b.mapUnits) {
		if !is1x1(b.mapUnits[unit1Idx].Unit.UnitFolderName) {
			unit1Idx++
			continue
		}

		var md, od *PlacedDoor
		unit2Idx := -1
		for j := 0; j < 2; j++ {
			cand := b.mapUnits[unit1Idx].Doors[j]
			neighbor := cand.Adjacent
			if neighbor == nil {
				continue
			}
			u2 := b.unitIndex(neighbor.Parent)
			if u2 >= 0 && is1x1(b.mapUnits[u2].Unit.UnitFolderName) {
				md = cand
				od = neighbor
				unit2Idx = u2
				break
			}
		}
		if od == nil {
			unit1Idx++
			continue
		}

		unit1 := b.mapUnits[unit1Idx]
		unit2 := b.mapUnits[unit2Idx]

		var expandFrom *PlacedDoor
		if unit1.X > unit2.X || unit1.Z < unit2.Z {
			expandFrom = doorLinkTarget(unit1, md).Adjacent
		} else {
			expandFrom = doorLinkTarget(unit2, od).Adjacent
		}

		for _, d := range unit1.Doors {
			if d.Adjacent != nil {
				d.Adjacent.Adjacent = nil
			}
		}
		for _, d := range unit2.Doors {
			if d.Adjacent != nil {
				d.Adjacent.Adjacent = nil
			}
		}

		desiredDirection := 0
		if unit1.X != unit2.X {
			desiredDirection = 1
		}

		if unit1Idx > unit2Idx {
			b.removeMapUnitAt(unit1Idx)
			b.removeMapUnitAt(unit2Idx)
		} else {
			b.removeMapUnitAt(unit2Idx)
			b.removeMapUnitAt(unit1Idx)
		}

		placed := false
		chosenName := names2x1[b.rng.RandInt(uint32(len(names2x1)))]
		for _, newUnit := range b.corridorQueue {
			if newUnit.UnitFolderName == chosenName && newUnit.Doors[0].Direction == desiredDirection {
				if approved := b.tryPlaceUnitAt(expandFrom, newUnit, 0); approved != nil {
					b.placeMapUnit(approved, true)
					placed = true
					unit1Idx = 0
					break
				}
			}
		}
		if !placed {
			panic("layout: deleted two hallway pieces to combine but couldn't place the replacement")
		}
	}
}

// recenter shifts every placed unit, door, and spawn point so the layout's
// minimum grid coordinate sits at (0, 0).
func (b *layoutBuilder) recenter() {
	if len(b.mapUnits) == 0 {
		return
	}
	minX, minZ := b.mapUnits[0].X, b.mapUnits[0].Z
	for _, u := range b.mapUnits {
		if u.X < minX {
			minX = u.X
		}
		if u.Z < minZ {
			minZ = u.Z
		}
	}
	if minX == 0 && minZ == 0 {
		return
	}
	for _, u := range b.mapUnits {
		u.X -= minX
		u.Z -= minZ
		for _, d := range u.Doors {
			d.X -= minX
			d.Z -= minZ
		}
		for _, sp := range u.Spawnpoints {
			sp.Pos.X -= float32(minX) * 170.0
			sp.Pos.Z -= float32(minZ) * 170.0
		}
	}
}

// placeShip picks one of the starting room's group-7 spawn points and
// marks it as the ship landing site.
func (b *layoutBuilder) placeShip() {
	startUnit := b.mapUnits[0]
	var candidates []*PlacedSpawnPoint
	for _, sp := range startUnit.Spawnpoints {
		if sp.SpawnPointUnit.Group == 7 {
			candidates = append(candidates, sp)
		}
	}
	if len(candidates) == 0 {
		panic("layout: starting room has no ship spawn point")
	}
	chosen := candidates[b.rng.RandInt(uint32(len(candidates)))]
	chosen.Contains = append(chosen.Contains, SpawnObject{Kind: SpawnShip})
	b.placedStartPoint = chosen
}
