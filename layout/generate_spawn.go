package layout

import (
	"math"
	"strings"

	"github.com/mayabyte/caveripper/caveinfo"
	"github.com/mayabyte/caveripper/pikminmath"
)

// chooseRandTeki picks the teki this draw should spawn for group: the
// next entry whose cumulative minimum hasn't been met yet, or else a
// weighted draw among entries with a nonzero filler weight. Returns nil
// (spawning nothing) once both are exhausted.
func (b *layoutBuilder) chooseRandTeki(ci *caveinfo.CaveInfo, group uint32, numSpawned uint32) *caveinfo.TekiInfo {
	var cumulativeMin uint32
	var filler []*caveinfo.TekiInfo
	var weights []uint32
	for _, teki := range ci.TekiGroup(group) {
		cumulativeMin += teki.MinimumAmount
		if numSpawned < cumulativeMin {
			return teki
		}
		if teki.FillerDistributionWeight > 0 {
			filler = append(filler, teki)
			weights = append(weights, teki.FillerDistributionWeight)
		}
	}
	if len(filler) > 0 {
		if idx := b.rng.RandIndexWeight(weights); idx >= 0 {
			return filler[idx]
		}
	}
	return nil
}

func (b *layoutBuilder) chooseRandItem(ci *caveinfo.CaveInfo, numSpawned uint32) *caveinfo.ItemInfo {
	var cumulativeMin uint32
	var filler []*caveinfo.ItemInfo
	var weights []uint32
	for i := range ci.ItemInfo {
		item := &ci.ItemInfo[i]
		cumulativeMin += uint32(item.MinAmount)
		if numSpawned < cumulativeMin {
			return item
		}
		if item.FillerDistributionWeight > 0 {
			filler = append(filler, item)
			weights = append(weights, item.FillerDistributionWeight)
		}
	}
	if len(filler) > 0 {
		if idx := b.rng.RandIndexWeight(weights); idx >= 0 {
			return filler[idx]
		}
	}
	return nil
}

// chooseRandCapTeki is like chooseRandTeki but for alcove occupants,
// restricted to either the grounded pool (candypop buds and non-falling
// enemies) or the falling pool, and returning how many copies to spawn:
// a Group-0 entry spawns 2 at once when drawn as filler, or inside its
// minimum-quota run while at least 2 of that run remain; everything else
// spawns 1.
func (b *layoutBuilder) chooseRandCapTeki(ci *caveinfo.CaveInfo, numSpawned uint32, falling bool) (*caveinfo.CapInfo, uint32) {
	var cumulativeMin uint32
	var filler []*caveinfo.CapInfo
	var weights []uint32
	for i := range ci.CapInfo {
		teki := &ci.CapInfo[i]
		if falling {
			if !teki.IsFalling() || teki.IsCandypop() {
				continue
			}
		} else {
			if teki.IsFalling() && !teki.IsCandypop() {
				continue
			}
		}

		cumulativeMin += teki.MinimumAmount
		if numSpawned < cumulativeMin {
			if teki.Group == 0 && numSpawned+1 < cumulativeMin {
				return teki, 2
			}
			return teki, 1
		}
		if teki.FillerDistributionWeight > 0 {
			filler = append(filler, teki)
			weights = append(weights, teki.FillerDistributionWeight)
		}
	}
	if len(filler) > 0 {
		if idx := b.rng.RandIndexWeight(weights); idx >= 0 {
			chosen := filler[idx]
			if chosen.Group == 0 {
				return chosen, 2
			}
			return chosen, 1
		}
	}
	// Still draws even with nothing to choose, since the original does;
	// skipping this call would desync every subsequent draw.
	b.rng.RandRaw()
	return nil, 0
}

// placeSeamTeki fills door seams with group-5 enemies, weighting room-side
// seams far more heavily than hallway/alcove seams, and mirroring each
// placement onto the matching door on the far side of the seam.
func (b *layoutBuilder) placeSeamTeki(ci *caveinfo.CaveInfo) {
	for numSpawned := uint32(0); numSpawned < b.allocatedEnemySlotsByGroup[5]; numSpawned++ {
		var spawnpoints []*PlacedDoor
		var weights []uint32
		for _, u := range b.mapUnits {
			if u.Unit.RoomType == caveinfo.RoomTypeDeadEnd {
				continue
			}
			for _, d := range u.Doors {
				if d.SeamSpawnpoint != nil {
					continue
				}
				spawnpoints = append(spawnpoints, d)
				if u.Unit.RoomType == caveinfo.RoomTypeRoom {
					weights = append(weights, 100)
				} else {
					weights = append(weights, 1)
				}
			}
		}

		var chosenSpot *PlacedDoor
		if len(spawnpoints) > 0 {
			if idx := b.rng.RandIndexWeight(weights); idx >= 0 {
				chosenSpot = spawnpoints[idx]
			}
		}

		tekiToSpawn := b.chooseRandTeki(ci, 5, numSpawned)

		if chosenSpot == nil || tekiToSpawn == nil {
			break
		}
		so := SpawnObject{Kind: SpawnTeki, Teki: tekiToSpawn}
		chosenSpot.SeamSpawnpoint = &so
		if chosenSpot.Adjacent != nil {
			chosenSpot.Adjacent.SeamSpawnpoint = &so
		}
		b.placedTeki++
	}
}

// placeDistanceFilteredTeki fills group's allocated slots among room
// spawn points of that group, excluding any too close to the ship, hole,
// or geyser. Used for groups 8 (special) and 1 (hard).
func (b *layoutBuilder) placeDistanceFilteredTeki(ci *caveinfo.CaveInfo, group uint32, minShipDist, minHoleDist, minGeyserDist float32) {
	var spawnpoints []*PlacedSpawnPoint
	for _, u := range b.mapUnits {
		if u.Unit.RoomType != caveinfo.RoomTypeRoom {
			continue
		}
		for _, sp := range u.Spawnpoints {
			if sp.SpawnPointUnit.Group != int(group) || len(sp.Contains) > 0 {
				continue
			}
			if b.placedStartPoint.Dist(sp) < minShipDist {
				continue
			}
			if b.placedExitHole != nil && b.placedExitHole.Dist(sp) < minHoleDist {
				continue
			}
			if b.placedExitGeyser != nil && b.placedExitGeyser.Dist(sp) < minGeyserDist {
				continue
			}
			spawnpoints = append(spawnpoints, sp)
		}
	}

	for numSpawned := uint32(0); numSpawned < b.allocatedEnemySlotsByGroup[group]; numSpawned++ {
		var chosenSpot *PlacedSpawnPoint
		if len(spawnpoints) > 0 {
			idx := b.rng.RandInt(uint32(len(spawnpoints)))
			chosenSpot = spawnpoints[idx]
			spawnpoints = append(spawnpoints[:idx], spawnpoints[idx+1:]...)
		}

		tekiToSpawn := b.chooseRandTeki(ci, group, numSpawned)

		if chosenSpot == nil || tekiToSpawn == nil {
			break
		}
		chosenSpot.Contains = append(chosenSpot.Contains, SpawnObject{Kind: SpawnTeki, Teki: tekiToSpawn})
		b.placedTeki++
	}
}

// placeEasyTeki fills group-0 slots, which is the one group that can
// spawn multiple enemies per chosen spot in a scattered cluster (offset
// by a random radius/angle, then pushed apart over a fixed number of
// passes wherever two lie within 35 units of each other).
func (b *layoutBuilder) placeEasyTeki(ci *caveinfo.CaveInfo) {
	var spawnpoints []*PlacedSpawnPoint
	for _, u := range b.mapUnits {
		if u.Unit.RoomType != caveinfo.RoomTypeRoom {
			continue
		}
		for _, sp := range u.Spawnpoints {
			if sp.SpawnPointUnit.Group != 0 || len(sp.Contains) > 0 {
				continue
			}
			if b.placedStartPoint.Dist(sp) < 300.0 {
				continue
			}
			spawnpoints = append(spawnpoints, sp)
		}
	}

	numSpawned := uint32(0)
	for numSpawned < b.allocatedEnemySlotsByGroup[0] {
		var chosenSpot *PlacedSpawnPoint
		var minNum, maxNum int
		if len(spawnpoints) > 0 {
			idx := b.rng.RandInt(uint32(len(spawnpoints)))
			chosenSpot = spawnpoints[idx]
			minNum, maxNum = chosenSpot.SpawnPointUnit.MinNum, chosenSpot.SpawnPointUnit.MaxNum
			spawnpoints = append(spawnpoints[:idx], spawnpoints[idx+1:]...)
		}

		tekiToSpawn := b.chooseRandTeki(ci, 0, numSpawned)

		var spawnBudget uint32
		if numSpawned < b.minTeki0 {
			var cumulativeMin uint32
			for _, teki := range ci.TekiGroup(0) {
				cumulativeMin += teki.MinimumAmount
				if cumulativeMin > numSpawned {
					break
				}
			}
			spawnBudget = cumulativeMin - numSpawned
		} else if ci.MaxMainObjects > b.placedTeki {
			spawnBudget = ci.MaxMainObjects - b.placedTeki
		}

		if uint32(maxNum) > spawnBudget {
			maxNum = int(spawnBudget)
		}
		var numToSpawn uint32
		if maxNum <= minNum {
			if maxNum > 0 {
				numToSpawn = uint32(maxNum)
			}
		} else {
			numToSpawn = uint32(minNum) + b.rng.RandInt(uint32(maxNum-minNum+1))
		}

		if numToSpawn == 0 || chosenSpot == nil || tekiToSpawn == nil {
			break
		}

		toSpawn := make([]*SpawnObject, 0, numToSpawn)
		for i := uint32(0); i < numToSpawn; i++ {
			radius := chosenSpot.SpawnPointUnit.Radius * b.rng.RandFloat()
			angle := 2.0 * math.Pi * float64(b.rng.RandFloat())
			ox := float32(math.Sin(angle)) * radius
			oz := float32(math.Cos(angle)) * radius
			toSpawn = append(toSpawn, &SpawnObject{Kind: SpawnTeki, Teki: tekiToSpawn, TekiOffsetX: ox, TekiOffsetZ: oz})
			numSpawned++
			b.placedTeki++
		}

		for pass := 0; pass < 5; pass++ {
			for i := range toSpawn {
				for j := range toSpawn {
					if i == j {
						continue
					}
					dx := toSpawn[i].TekiOffsetX - toSpawn[j].TekiOffsetX
					dz := toSpawn[i].TekiOffsetZ - toSpawn[j].TekiOffsetZ
					dist := pikminmath.Sqrt(dx*dx + dz*dz)
					if dist > 0 && dist < 35.0 {
						mult := 0.5 * (35.0 - dist) / dist
						toSpawn[i].TekiOffsetX += dx * mult
						toSpawn[i].TekiOffsetZ += dz * mult
						toSpawn[j].TekiOffsetX -= dx * mult
						toSpawn[j].TekiOffsetZ -= dz * mult
					}
				}
			}
		}

		for _, so := range toSpawn {
			chosenSpot.Contains = append(chosenSpot.Contains, *so)
		}
	}
}

// placePlants fills every group-6 slot up to the group's total declared
// minimum; there is no filler budget concept for plants, they always
// spawn exactly their configured minimum count.
func (b *layoutBuilder) placePlants(ci *caveinfo.CaveInfo) {
	var spawnpoints []*PlacedSpawnPoint
	for _, u := range b.mapUnits {
		for _, sp := range u.Spawnpoints {
			if sp.SpawnPointUnit.Group == 6 && len(sp.Contains) == 0 {
				spawnpoints = append(spawnpoints, sp)
			}
		}
	}

	var minSum uint32
	for _, teki := range ci.TekiGroup(6) {
		minSum += teki.MinimumAmount
	}

	for numSpawned := uint32(0); numSpawned < minSum; numSpawned++ {
		var chosenSpot *PlacedSpawnPoint
		if len(spawnpoints) > 0 {
			idx := b.rng.RandInt(uint32(len(spawnpoints)))
			chosenSpot = spawnpoints[idx]
			spawnpoints = append(spawnpoints[:idx], spawnpoints[idx+1:]...)
		}
		tekiToSpawn := b.chooseRandTeki(ci, 6, numSpawned)
		if chosenSpot == nil || tekiToSpawn == nil {
			break
		}
		chosenSpot.Contains = append(chosenSpot.Contains, SpawnObject{Kind: SpawnTeki, Teki: tekiToSpawn})
		b.placedTeki++
	}
}

// placeTreasures runs MaxTreasures placement rounds (a round with no free
// spot or no treasure to draw places nothing), each draw scoring
// every room's unoccupied group-2 spawn points (and every item-alcove
// unit's group-9 spot) by unit total score, divided by how crowded the
// room already is. Challenge-mode floors draw weighted by that score;
// normal floors draw uniformly among the single highest-scoring spot.
func (b *layoutBuilder) placeTreasures(ci *caveinfo.CaveInfo, isChallengeMode bool) {
	for numSpawned := uint32(0); numSpawned < ci.MaxTreasures; numSpawned++ {
		var spawnpoints []*PlacedSpawnPoint
		var weights []uint32

		for _, u := range b.mapUnits {
			if u.Unit.RoomType == caveinfo.RoomTypeRoom {
				numItemsInUnit := 0
				numTreasureSpawnpoints := 0
				for _, sp := range u.Spawnpoints {
					if sp.SpawnPointUnit.Group == 2 {
						numTreasureSpawnpoints++
					}
					for _, so := range sp.Contains {
						if so.Kind == SpawnItem {
							numItemsInUnit++
						}
					}
				}
				if numTreasureSpawnpoints == 0 {
					continue
				}
				for _, sp := range u.Spawnpoints {
					if sp.SpawnPointUnit.Group != 2 || len(sp.Contains) > 0 {
						continue
					}
					var score uint32
					if isChallengeMode {
						score = 1 + u.TotalScore/uint32(numTreasureSpawnpoints)
					} else {
						score = uint32(float32(u.TotalScore) / float32(1+numItemsInUnit))
					}
					sp.TreasureScore = score
					spawnpoints = append(spawnpoints, sp)
					weights = append(weights, score)
				}
			} else if strings.Contains(u.Unit.UnitFolderName, "item") {
				var spawnpoint *PlacedSpawnPoint
				for _, sp := range u.Spawnpoints {
					if sp.SpawnPointUnit.Group == 9 {
						spawnpoint = sp
						break
					}
				}
				if spawnpoint == nil {
					panic("layout: item-alcove unit has no group-9 spawn point")
				}
				if len(spawnpoint.Contains) > 0 {
					continue
				}
				var score uint32
				if isChallengeMode {
					score = 1 + u.TotalScore*10
				} else {
					score = 1 + u.TotalScore
				}
				spawnpoint.TreasureScore = score
				spawnpoints = append(spawnpoints, spawnpoint)
				weights = append(weights, score)
			}
		}

		var chosenSpot *PlacedSpawnPoint
		if len(spawnpoints) > 0 {
			if isChallengeMode {
				if idx := b.rng.RandIndexWeight(weights); idx >= 0 {
					chosenSpot = spawnpoints[idx]
				}
			} else {
				var maxWeight uint32
				for _, w := range weights {
					if w > maxWeight {
						maxWeight = w
					}
				}
				var maxSpawnpoints []*PlacedSpawnPoint
				for i, sp := range spawnpoints {
					if weights[i] == maxWeight {
						maxSpawnpoints = append(maxSpawnpoints, sp)
					}
				}
				chosenSpot = maxSpawnpoints[b.rng.RandInt(uint32(len(maxSpawnpoints)))]
			}
		}

		chosenTreasure := b.chooseRandItem(ci, numSpawned)

		if chosenSpot != nil && chosenTreasure != nil {
			chosenSpot.Contains = append(chosenSpot.Contains, SpawnObject{Kind: SpawnItem, Item: chosenTreasure})
		}
	}
}

// placeCapTeki fills every item-alcove's group-9 spot: first a grounded
// pass (candypop buds and non-falling enemies), then a falling pass that
// skips any alcove already holding a grounded enemy, a falling candypop,
// or a hole/geyser.
func (b *layoutBuilder) placeCapTeki(ci *caveinfo.CaveInfo) {
	itemAlcoveSpawnpoint := func(u *PlacedMapUnit) *PlacedSpawnPoint {
		if u.Unit.RoomType != caveinfo.RoomTypeDeadEnd || !strings.Contains(u.Unit.UnitFolderName, "item") {
			return nil
		}
		for _, sp := range u.Spawnpoints {
			if sp.SpawnPointUnit.Group == 9 {
				return sp
			}
		}
		panic("layout: item-alcove unit has no group-9 spawn point")
	}

	numSpawned := uint32(0)
	for _, u := range b.mapUnits {
		spawnpoint := itemAlcoveSpawnpoint(u)
		if spawnpoint == nil || len(spawnpoint.Contains) > 0 {
			continue
		}
		teki, numToSpawn := b.chooseRandCapTeki(ci, numSpawned, false)
		if teki != nil {
			spawnpoint.Contains = append(spawnpoint.Contains, SpawnObject{Kind: SpawnCapTeki, CapTeki: teki, CapTekiAmount: numToSpawn})
			numSpawned += numToSpawn
		}
	}

	numSpawned = 0
	for _, u := range b.mapUnits {
		spawnpoint := itemAlcoveSpawnpoint(u)
		if spawnpoint == nil {
			continue
		}

		blocked := false
		for _, so := range spawnpoint.Contains {
			if so.Kind == SpawnCapTeki && (so.CapTeki.IsCandypop() || !so.CapTeki.IsFalling()) {
				blocked = true
			}
			if so.Kind == SpawnHole || so.Kind == SpawnGeyser {
				blocked = true
			}
		}
		if blocked {
			continue
		}

		teki, numToSpawn := b.chooseRandCapTeki(ci, numSpawned, true)
		if teki != nil {
			spawnpoint.Contains = append(spawnpoint.Contains, SpawnObject{Kind: SpawnCapTeki, CapTeki: teki, CapTekiAmount: numToSpawn})
			numSpawned += numToSpawn
		}
	}
}

// placeGates draws MaxGates gate types (weighted by spawn distribution
// weight) and attaches each to a door chosen by getGateSpawnSpot.
func (b *layoutBuilder) placeGates(ci *caveinfo.CaveInfo) {
	for i := uint32(0); i < ci.MaxGates; i++ {
		var gates []*caveinfo.GateInfo
		var weights []uint32
		for gi := range ci.GateInfo {
			gates = append(gates, &ci.GateInfo[gi])
			weights = append(weights, ci.GateInfo[gi].SpawnDistributionWeight)
		}
		var gateToSpawn *caveinfo.GateInfo
		if len(gates) > 0 {
			if idx := b.rng.RandIndexWeight(weights); idx >= 0 {
				gateToSpawn = gates[idx]
			}
		}

		spawnSpot := b.getGateSpawnSpot()

		if gateToSpawn != nil && spawnSpot != nil {
			so := SpawnObject{Kind: SpawnGate, Gate: gateToSpawn}
			spawnSpot.SeamSpawnpoint = &so
		}
	}
}

// getGateSpawnSpot picks where the next gate goes, trying four
// progressively looser strategies in order: in front of a filled,
// non-falling-candypop item alcove; at a room's single lowest-scoring
// door (skipping the ship's own room); at any room door weighted
// inversely by door score (80% of the time); or finally at any open
// door at all, weighted by door count.
func (b *layoutBuilder) getGateSpawnSpot() *PlacedDoor {
	var doors []*PlacedDoor
	for _, u := range b.mapUnits {
		if u.Unit.RoomType != caveinfo.RoomTypeDeadEnd || !strings.Contains(u.Unit.UnitFolderName, "item") {
			continue
		}
		if len(u.Spawnpoints) == 0 {
			continue
		}
		groundedContent := false
		fallingCandypop := false
		for _, so := range u.Spawnpoints[0].Contains {
			switch so.Kind {
			case SpawnCapTeki:
				if so.CapTeki.IsCandypop() && so.CapTeki.IsFalling() {
					fallingCandypop = true
				} else if !so.CapTeki.IsFalling() {
					groundedContent = true
				}
			case SpawnItem, SpawnHole, SpawnGeyser:
				groundedContent = true
			}
		}
		if !groundedContent || fallingCandypop {
			continue
		}
		if u.Doors[0].SeamSpawnpoint != nil {
			continue
		}
		doors = append(doors, u.Doors[0])
	}
	if len(doors) > 0 {
		return doors[b.rng.RandInt(uint32(len(doors)))]
	}

	for _, u := range b.mapUnits {
		if u.Unit.RoomType != caveinfo.RoomTypeRoom {
			continue
		}
		hasShip := false
		for _, sp := range u.Spawnpoints {
			for _, so := range sp.Contains {
				if so.Kind == SpawnShip {
					hasShip = true
				}
			}
		}
		if hasShip {
			continue
		}

		var minDoor *PlacedDoor
		minScore := ^uint32(0)
		for _, d := range u.Doors {
			if d.DoorScore < minScore {
				minScore = d.DoorScore
				minDoor = d
			}
		}
		if minDoor != nil && minDoor.SeamSpawnpoint == nil {
			return minDoor
		}
	}

	if b.rng.RandFloat() < 0.8 {
		var maxOpenDoorScore uint32
		for _, u := range b.mapUnits {
			if u.Unit.RoomType != caveinfo.RoomTypeRoom {
				continue
			}
			for _, d := range u.Doors {
				if d.SeamSpawnpoint == nil && d.DoorScore > maxOpenDoorScore {
					maxOpenDoorScore = d.DoorScore
				}
			}
		}

		var spawnpoints []*PlacedDoor
		var weights []uint32
		for _, u := range b.mapUnits {
			if u.Unit.RoomType != caveinfo.RoomTypeRoom {
				continue
			}
			for _, d := range u.Doors {
				if d.SeamSpawnpoint != nil {
					continue
				}
				spawnpoints = append(spawnpoints, d)
				weights = append(weights, maxOpenDoorScore+1-d.DoorScore)
			}
		}
		if len(spawnpoints) > 0 {
			if idx := b.rng.RandIndexWeight(weights); idx >= 0 {
				return spawnpoints[idx]
			}
		}
	}

	var spawnpoints []*PlacedDoor
	var weights []uint32
	for _, u := range b.mapUnits {
		for _, d := range u.Doors {
			if d.SeamSpawnpoint != nil {
				continue
			}
			spawnpoints = append(spawnpoints, d)
			var weight uint32
			if u.Unit.RoomType == caveinfo.RoomTypeHallway {
				weight = 10 / uint32(len(u.Doors))
			} else {
				weight = uint32(len(u.Doors))
			}
			weights = append(weights, weight)
		}
	}
	if len(spawnpoints) > 0 {
		if idx := b.rng.RandIndexWeight(weights); idx >= 0 {
			return spawnpoints[idx]
		}
	}
	return nil
}
