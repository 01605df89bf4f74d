package layout

import (
	"github.com/mayabyte/caveripper/caveinfo"
	"github.com/mayabyte/caveripper/pikminmath"
)

// setScore computes Teki Score, Seam Teki Score, Door Score, and Total
// Score for every placed unit and door, by breadth-first relaxation
// outward from the starting room (whose Total Score is its own teki score
// and whose doors start at that plus one plus their seam teki score),
// growing with in-unit door-link distance and each unit's own teki score
// as the frontier spreads. These scores drive where holes, geysers, gates, and
// some teki groups prefer to spawn.
func (b *layoutBuilder) setScore() {
	for _, u := range b.mapUnits {
		u.TotalScore = ^uint32(0)
		u.TekiScore = 0
		for _, d := range u.Doors {
			d.HasDoorScore = false
			d.DoorScore = 0
			d.SeamTekiScore = 0
		}
	}

	for _, u := range b.mapUnits {
		for _, sp := range u.Spawnpoints {
			for _, so := range sp.Contains {
				if so.Kind != SpawnTeki {
					continue
				}
				switch so.Teki.Group {
				case 1:
					u.TekiScore += 10
				case 0:
					u.TekiScore += 2
				}
			}
		}
		for _, d := range u.Doors {
			if d.SeamSpawnpoint != nil && d.SeamSpawnpoint.Kind == SpawnTeki {
				d.SeamTekiScore += 5
				if d.Adjacent != nil {
					d.Adjacent.SeamTekiScore += 5
				}
			}
		}
	}

	start := b.mapUnits[0]
	start.TotalScore = start.TekiScore
	for _, d := range start.Doors {
		d.DoorScore = start.TotalScore + 1 + d.SeamTekiScore
		d.HasDoorScore = true

		adj := d.Adjacent
		if adj == nil {
			continue
		}
		adj.DoorScore = d.DoorScore
		adj.HasDoorScore = true
		adjUnit := adj.Parent
		if d.DoorScore+adjUnit.TekiScore < adjUnit.TotalScore {
			adjUnit.TotalScore = d.DoorScore + adjUnit.TekiScore
		}
	}

	for {
		var selectedDoor *PlacedDoor
		var selectedScore uint32
		found := false

		for _, u := range b.mapUnits {
			for _, startDoor := range u.Doors {
				if !startDoor.HasDoorScore {
					continue
				}
				for _, link := range startDoor.DoorUnit.DoorLinks {
					otherDoor := u.Doors[link.DoorID]
					if otherDoor.HasDoorScore {
						continue
					}
					potential := startDoor.DoorScore + uint32(link.Distance/10.0) + u.TekiScore + otherDoor.SeamTekiScore
					if !found || potential < selectedScore {
						selectedScore = potential
						selectedDoor = otherDoor
						found = true
					}
				}
			}
		}
		if !found {
			break
		}

		selectedDoor.DoorScore = selectedScore
		selectedDoor.HasDoorScore = true
		adj := selectedDoor.Adjacent
		if adj == nil {
			continue
		}
		adj.DoorScore = selectedScore
		adj.HasDoorScore = true

		adjUnit := adj.Parent
		current := adjUnit.TotalScore
		candidate := selectedScore + adjUnit.TekiScore
		if candidate < current {
			// The original adds TekiScore a second time here; preserved
			// verbatim since it shifts which spawnpoints end up favored.
			total := candidate + adjUnit.TekiScore
			if total < current {
				adjUnit.TotalScore = total
			}
		}
	}
}

// placeHole chooses where the exit hole or geyser goes: among unoccupied
// group-4 spawn points far enough from the ship, or any group-9
// (cap/item-alcove) spawn point, preferring hallways only when no room or
// alcove candidate exists. In challenge mode the choice is a weighted
// draw by unit score (sqrt-compressed); otherwise it's a uniform draw
// among the highest-scoring candidates.
func (b *layoutBuilder) placeHole(kind SpawnObjectKind, plugged, isChallengeMode bool) {
	var rooms, caps, hallways []*PlacedMapUnit
	for _, u := range b.mapUnits {
		switch u.Unit.RoomType {
		case caveinfo.RoomTypeRoom:
			rooms = append(rooms, u)
		case caveinfo.RoomTypeDeadEnd:
			caps = append(caps, u)
		case caveinfo.RoomTypeHallway:
			hallways = append(hallways, u)
		}
	}

	var holeSpawnpoints []*PlacedSpawnPoint
	collect := func(units []*PlacedMapUnit) {
		for _, u := range units {
			score := u.TotalScore
			if isChallengeMode {
				score = uint32(pikminmath.Sqrt(float32(u.TotalScore))) + 10
			}
			for _, sp := range u.Spawnpoints {
				if len(sp.Contains) > 0 {
					continue
				}
				if (sp.SpawnPointUnit.Group == 4 && b.placedStartPoint.Dist(sp) >= 150.0) || sp.SpawnPointUnit.Group == 9 {
					sp.HoleScore = score
					holeSpawnpoints = append(holeSpawnpoints, sp)
				}
			}
		}
	}
	collect(rooms)
	collect(caps)
	if len(holeSpawnpoints) == 0 {
		collect(hallways)
	}

	var holeLocation *PlacedSpawnPoint
	if isChallengeMode {
		weights := make([]uint32, len(holeSpawnpoints))
		for i, sp := range holeSpawnpoints {
			weights[i] = sp.HoleScore
		}
		idx := b.rng.RandIndexWeight(weights)
		if idx < 0 {
			panic("layout: no valid hole/geyser spawn point for this floor")
		}
		holeLocation = holeSpawnpoints[idx]
	} else {
		var maxScore uint32
		found := false
		for _, sp := range holeSpawnpoints {
			if !found || sp.HoleScore > maxScore {
				maxScore = sp.HoleScore
				found = true
			}
		}
		var candidates []*PlacedSpawnPoint
		for _, sp := range holeSpawnpoints {
			if sp.HoleScore == maxScore {
				candidates = append(candidates, sp)
			}
		}
		if len(candidates) == 0 {
			panic("layout: no valid hole/geyser spawn point for this floor")
		}
		holeLocation = candidates[b.rng.RandInt(uint32(len(candidates)))]
	}

	switch kind {
	case SpawnHole:
		b.placedExitHole = holeLocation
	case SpawnGeyser:
		b.placedExitGeyser = holeLocation
	}
	holeLocation.Contains = append(holeLocation.Contains, SpawnObject{Kind: kind, Plugged: plugged})
}
