package caveinfo

import (
	"path"
	"regexp"
	"strings"

	"github.com/mayabyte/caveripper/pikminmath"
)

// FileReader abstracts reading a text asset by path, so the parsing logic
// in this package stays pure and independently testable: given the same
// file contents it always produces the same floor spec, regardless of
// where those contents came from.
type FileReader interface {
	ReadText(path string) (string, error)
}

// LoadCaveinfo parses an entire caveinfo file into one CaveInfo per floor.
func LoadCaveinfo(fr FileReader, cfg CaveConfig) ([]CaveInfo, error) {
	caveinfoPath := path.Join(cfg.Game, cfg.CaveinfoFilename)
	text, err := fr.ReadText(caveinfoPath)
	if err != nil {
		return nil, err
	}

	sections, err := ParseSections(caveinfoPath, text, false)
	if err != nil {
		return nil, err
	}
	if len(sections) < 1 {
		return nil, &ParseError{File: caveinfoPath, Reason: "no sections found"}
	}
	// The first section is a file-level header (section count etc.) that
	// carries no per-floor data.
	sections = sections[1:]

	var floors []CaveInfo
	for len(sections) >= 5 {
		chunk := sections[:5]
		sections = sections[5:]

		header, teki, item, gate, cap := chunk[0], chunk[1], chunk[2], chunk[3], chunk[4]

		unitfileName, err := GetTag[string](header, "{f008}")
		if err != nil {
			return nil, err
		}
		units, err := loadUnitfile(fr, unitfileName, cfg)
		if err != nil {
			return nil, err
		}

		floorNum, err := GetTag[int](header, "{f000}")
		if err != nil {
			return nil, err
		}
		maxMain, err := GetTag[uint32](header, "{f002}")
		if err != nil {
			return nil, err
		}
		maxTreasures, err := GetTag[uint32](header, "{f003}")
		if err != nil {
			return nil, err
		}
		maxGates, err := GetTag[uint32](header, "{f004}")
		if err != nil {
			return nil, err
		}
		numRooms, err := GetTag[uint32](header, "{f005}")
		if err != nil {
			return nil, err
		}
		corridorProb, err := GetTag[float32](header, "{f006}")
		if err != nil {
			return nil, err
		}
		capProbPct, err := GetTag[float32](header, "{f014}")
		if err != nil {
			return nil, err
		}
		hasGeyser := GetTagOr[uint32](header, "{f007}", 0) > 0
		exitPlugged := GetTagOr[uint32](header, "{f010}", 0) > 0
		waterwraithTimer := GetTagOr[float32](header, "{f016}", 0.0)

		tekiInfo, err := parseTekiInfo(teki)
		if err != nil {
			return nil, err
		}
		itemInfo, err := parseItemInfo(item)
		if err != nil {
			return nil, err
		}
		gateInfo, err := parseGateInfo(gate)
		if err != nil {
			return nil, err
		}
		capInfo, err := parseCapInfo(cap)
		if err != nil {
			return nil, err
		}

		floors = append(floors, CaveInfo{
			CaveCfg:             cfg,
			FloorNum:            floorNum,
			MaxMainObjects:      maxMain,
			MaxTreasures:        maxTreasures,
			MaxGates:            maxGates,
			NumRooms:            numRooms,
			CorridorProbability: corridorProb,
			CapProbability:      capProbPct / 100,
			HasGeyser:           hasGeyser,
			ExitPlugged:         exitPlugged,
			WaterwraithTimer:    waterwraithTimer,
			CaveUnits:           ExpandRotations(SortCaveUnits(units)),
			TekiInfo:            tekiInfo,
			ItemInfo:            itemInfo,
			GateInfo:            gateInfo,
			CapInfo:             capInfo,
		})
	}
	if len(floors) > 0 {
		floors[len(floors)-1].IsFinalFloor = true
	}
	return floors, nil
}

func loadUnitfile(fr FileReader, unitfile string, cfg CaveConfig) ([]CaveUnit, error) {
	unitfilePath := path.Join(cfg.Game, "unitfiles", unitfile)
	text, err := fr.ReadText(unitfilePath)
	if err != nil {
		return nil, err
	}
	sections, err := ParseSections(unitfilePath, text, false)
	if err != nil {
		return nil, err
	}
	units := make([]CaveUnit, 0, len(sections))
	for _, s := range sections {
		u, err := parseCaveUnit(fr, s, cfg)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, nil
}

func parseCaveUnit(fr FileReader, s Section, cfg CaveConfig) (CaveUnit, error) {
	nameLine, err := s.GetLine(1)
	if err != nil {
		return CaveUnit{}, err
	}
	unitFolderName, err := nameLine.GetItem(0)
	if err != nil {
		return CaveUnit{}, err
	}

	dimsLine, err := s.GetLine(2)
	if err != nil {
		return CaveUnit{}, err
	}
	width, err := GetItemAs[int](dimsLine, 0)
	if err != nil {
		return CaveUnit{}, err
	}
	height, err := GetItemAs[int](dimsLine, 1)
	if err != nil {
		return CaveUnit{}, err
	}

	roomTypeLine, err := s.GetLine(3)
	if err != nil {
		return CaveUnit{}, err
	}
	roomTypeNum, err := GetItemAs[int](roomTypeLine, 0)
	if err != nil {
		return CaveUnit{}, err
	}
	roomType := RoomTypeFromInt(roomTypeNum)

	doorCountLine, err := s.GetLine(5)
	if err != nil {
		return CaveUnit{}, err
	}
	numDoors, err := GetItemAs[int](doorCountLine, 0)
	if err != nil {
		return CaveUnit{}, err
	}

	var doors []DoorUnit
	if numDoors > 0 {
		remaining := s.Lines[6:]
		perDoor := len(remaining) / numDoors
		for i := 0; i < numDoors; i++ {
			du, err := parseDoorUnit(remaining[i*perDoor : (i+1)*perDoor])
			if err != nil {
				return CaveUnit{}, err
			}
			doors = append(doors, du)
		}
	}

	spawnpoints, err := loadSpawnpoints(fr, cfg, unitFolderName)
	if err != nil {
		return CaveUnit{}, err
	}
	waterboxes, err := loadWaterboxes(fr, cfg, unitFolderName)
	if err != nil {
		return CaveUnit{}, err
	}
	waypoints, err := loadWaypoints(fr, cfg, unitFolderName, width, height)
	if err != nil {
		return CaveUnit{}, err
	}

	// Synthetic group-9 hole/geyser spawn points: not present in caveinfo
	// text files, but the generation algorithm behaves as if they are, so
	// the loader adds them here rather than special-casing every consumer.
	if (roomType == RoomTypeDeadEnd && strings.HasPrefix(unitFolderName, "item")) || roomType == RoomTypeHallway {
		spawnpoints = append(spawnpoints, SpawnPoint{Group: 9, MinNum: 1, MaxNum: 1})
	}

	return CaveUnit{
		UnitFolderName: unitFolderName,
		Width:          width,
		Height:         height,
		RoomType:       roomType,
		NumDoors:       numDoors,
		Doors:          doors,
		Spawnpoints:    spawnpoints,
		Waterboxes:     waterboxes,
		Waypoints:      waypoints,
	}, nil
}

func parseDoorUnit(lines []InfoLine) (DoorUnit, error) {
	if len(lines) < 3 {
		return DoorUnit{}, &ParseError{Reason: "door unit section too short"}
	}
	direction, err := GetItemAs[int](lines[1], 0)
	if err != nil {
		return DoorUnit{}, err
	}
	lateralOffset, err := GetItemAs[int](lines[1], 1)
	if err != nil {
		return DoorUnit{}, err
	}
	waypointIdx, err := GetItemAs[int](lines[1], 2)
	if err != nil {
		return DoorUnit{}, err
	}
	numLinks, err := GetItemAs[int](lines[2], 0)
	if err != nil {
		return DoorUnit{}, err
	}
	var links []DoorLink
	for _, line := range lines[3:] {
		dist, err := GetItemAs[float32](line, 0)
		if err != nil {
			return DoorUnit{}, err
		}
		doorID, err := GetItemAs[int](line, 1)
		if err != nil {
			return DoorUnit{}, err
		}
		tekiFlagN, err := GetItemAs[uint32](line, 2)
		if err != nil {
			return DoorUnit{}, err
		}
		links = append(links, DoorLink{Distance: dist, DoorID: doorID, TekiFlag: tekiFlagN > 0})
	}
	return DoorUnit{
		Direction:         direction,
		SideLateralOffset: lateralOffset,
		WaypointIndex:     waypointIdx,
		NumLinks:          numLinks,
		DoorLinks:         links,
	}, nil
}

func loadSpawnpoints(fr FileReader, cfg CaveConfig, unitFolderName string) ([]SpawnPoint, error) {
	p := path.Join(cfg.Game, "mapunits", unitFolderName, "texts", "layout.txt")
	text, err := fr.ReadText(p)
	if err != nil {
		return nil, nil // absent layout.txt means no spawn points, not an error
	}
	sections, err := ParseSections(p, text, false)
	if err != nil {
		return nil, err
	}
	var out []SpawnPoint
	for _, s := range sections {
		sp, err := parseSpawnPoint(s)
		if err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, nil
}

func parseSpawnPoint(s Section) (SpawnPoint, error) {
	groupLine, err := s.GetLine(0)
	if err != nil {
		return SpawnPoint{}, err
	}
	group, err := GetItemAs[int](groupLine, 0)
	if err != nil {
		return SpawnPoint{}, err
	}
	posLine, err := s.GetLine(1)
	if err != nil {
		return SpawnPoint{}, err
	}
	x, err := GetItemAs[float32](posLine, 0)
	if err != nil {
		return SpawnPoint{}, err
	}
	y, err := GetItemAs[float32](posLine, 1)
	if err != nil {
		return SpawnPoint{}, err
	}
	z, err := GetItemAs[float32](posLine, 2)
	if err != nil {
		return SpawnPoint{}, err
	}
	angleLine, err := s.GetLine(2)
	if err != nil {
		return SpawnPoint{}, err
	}
	angle, err := GetItemAs[float32](angleLine, 0)
	if err != nil {
		return SpawnPoint{}, err
	}
	radiusLine, err := s.GetLine(3)
	if err != nil {
		return SpawnPoint{}, err
	}
	radius, err := GetItemAs[float32](radiusLine, 0)
	if err != nil {
		return SpawnPoint{}, err
	}
	minLine, err := s.GetLine(4)
	if err != nil {
		return SpawnPoint{}, err
	}
	minNum, err := GetItemAs[int](minLine, 0)
	if err != nil {
		return SpawnPoint{}, err
	}
	maxLine, err := s.GetLine(5)
	if err != nil {
		return SpawnPoint{}, err
	}
	maxNum, err := GetItemAs[int](maxLine, 0)
	if err != nil {
		return SpawnPoint{}, err
	}
	return SpawnPoint{
		Group:        group,
		Pos:          pikminmath.Point3{X: x, Y: y, Z: z},
		AngleDegrees: angle,
		Radius:       radius,
		MinNum:       minNum,
		MaxNum:       maxNum,
	}, nil
}

func loadWaterboxes(fr FileReader, cfg CaveConfig, unitFolderName string) ([]Waterbox, error) {
	p := path.Join(cfg.Game, "mapunits", unitFolderName, "texts", "waterbox.txt")
	text, err := fr.ReadText(p)
	if err != nil {
		return nil, nil
	}
	sections, err := ParseSections(p, text, false)
	if err != nil || len(sections) == 0 {
		return nil, err
	}
	s := sections[0]
	countLine, err := s.GetLine(0)
	if err != nil {
		return nil, err
	}
	count, err := GetItemAs[int](countLine, 0)
	if err != nil {
		return nil, err
	}
	out := make([]Waterbox, 0, count)
	for i := 0; i < count; i++ {
		line, err := s.GetLine(i + 1)
		if err != nil {
			return nil, err
		}
		var vals [6]float32
		for j := 0; j < 6; j++ {
			vals[j], err = GetItemAs[float32](line, j)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, Waterbox{
			P1: pikminmath.Point3{X: vals[0], Y: vals[1], Z: vals[2]},
			P2: pikminmath.Point3{X: vals[3], Y: vals[4], Z: vals[5]},
		})
	}
	return out, nil
}

func loadWaypoints(fr FileReader, cfg CaveConfig, unitFolderName string, width, height int) ([]Waypoint, error) {
	p := path.Join(cfg.Game, "mapunits", unitFolderName, "texts", "route.txt")
	text, err := fr.ReadText(p)
	if err != nil {
		return nil, err
	}
	sections, err := ParseSections(p, text, false)
	if err != nil {
		return nil, err
	}
	out := make([]Waypoint, 0, len(sections))
	for _, s := range sections {
		wp, err := parseWaypoint(s)
		if err != nil {
			return nil, err
		}
		// Recenter unit-local coordinates around the unit's center, per
		// the original loader's documented transform.
		wp.Pos.X += float32(width) * 170.0 / 2.0
		wp.Pos.Z += float32(height) * 170.0 / 2.0
		out = append(out, wp)
	}
	return out, nil
}

func parseWaypoint(s Section) (Waypoint, error) {
	idxLine, err := s.GetLine(0)
	if err != nil {
		return Waypoint{}, err
	}
	index, err := GetItemAs[int](idxLine, 0)
	if err != nil {
		return Waypoint{}, err
	}
	numLinksLine, err := s.GetLine(1)
	if err != nil {
		return Waypoint{}, err
	}
	numLinks, err := GetItemAs[int](numLinksLine, 0)
	if err != nil {
		return Waypoint{}, err
	}
	coordsLine, err := s.GetLine(numLinks + 2)
	if err != nil {
		return Waypoint{}, err
	}
	x, err := GetItemAs[float32](coordsLine, 0)
	if err != nil {
		return Waypoint{}, err
	}
	y, err := GetItemAs[float32](coordsLine, 1)
	if err != nil {
		return Waypoint{}, err
	}
	z, err := GetItemAs[float32](coordsLine, 2)
	if err != nil {
		return Waypoint{}, err
	}
	r, err := GetItemAs[float32](coordsLine, 3)
	if err != nil {
		return Waypoint{}, err
	}
	links := make([]int, 0, numLinks)
	for lineNo := 2; lineNo < numLinks+2; lineNo++ {
		line, err := s.GetLine(lineNo)
		if err != nil {
			return Waypoint{}, err
		}
		link, err := GetItemAs[int](line, 0)
		if err != nil {
			return Waypoint{}, err
		}
		links = append(links, link)
	}
	return Waypoint{
		Index: index,
		Pos:   pikminmath.Point3{X: x, Y: y, Z: z},
		R:     r,
		Links: links,
	}, nil
}

func parseTekiInfo(s Section) ([]TekiInfo, error) {
	var out []TekiInfo
	lines := s.Lines
	if len(lines) < 1 {
		return out, nil
	}
	lines = lines[1:]
	for i := 0; i+1 < len(lines); i += 2 {
		itemLine, groupLine := lines[i], lines[i+1]
		internalIdentifier, err := itemLine.GetItem(0)
		if err != nil {
			return nil, err
		}
		amountCode, err := GetItemAs[uint32](itemLine, 1)
		if err != nil {
			return nil, err
		}
		group, err := GetItemAs[uint32](groupLine, 0)
		if err != nil {
			return nil, err
		}
		spawnMethod, internalName, carrying := extractInternalIdentifier(internalIdentifier)

		var minimumAmount, filler uint32
		if group == 6 {
			minimumAmount = amountCode
		} else {
			minimumAmount = amountCode / 10
			filler = amountCode % 10
		}
		out = append(out, TekiInfo{
			InternalName:             internalName,
			Carrying:                 carrying,
			MinimumAmount:            minimumAmount,
			FillerDistributionWeight: filler,
			Group:                    group,
			SpawnMethod:              spawnMethod,
		})
	}
	return out, nil
}

func parseItemInfo(s Section) ([]ItemInfo, error) {
	var out []ItemInfo
	lines := s.Lines
	if len(lines) < 1 {
		return out, nil
	}
	for _, line := range lines[1:] {
		name, err := line.GetItem(0)
		if err != nil {
			return nil, err
		}
		amountCode, err := GetItemAs[uint32](line, 1)
		if err != nil {
			return nil, err
		}
		out = append(out, ItemInfo{
			InternalName:             name,
			MinAmount:                uint8(amountCode / 10),
			FillerDistributionWeight: amountCode % 10,
		})
	}
	return out, nil
}

func parseGateInfo(s Section) ([]GateInfo, error) {
	var out []GateInfo
	lines := s.Lines
	if len(lines) < 1 {
		return out, nil
	}
	lines = lines[1:]
	for i := 0; i+1 < len(lines); i += 2 {
		health, err := GetItemAs[float32](lines[i], 1)
		if err != nil {
			return nil, err
		}
		weight, err := GetItemAs[uint32](lines[i+1], 0)
		if err != nil {
			return nil, err
		}
		out = append(out, GateInfo{Health: health, SpawnDistributionWeight: weight % 10})
	}
	return out, nil
}

func parseCapInfo(s Section) ([]CapInfo, error) {
	var out []CapInfo
	lines := s.Lines
	if len(lines) < 1 {
		return out, nil
	}
	lines = lines[1:]
	for i := 0; i+2 < len(lines); i += 3 {
		itemLine, groupLine := lines[i+1], lines[i+2]
		internalIdentifier, err := itemLine.GetItem(0)
		if err != nil {
			return nil, err
		}
		amountCode, err := GetItemAs[uint32](itemLine, 1)
		if err != nil {
			return nil, err
		}
		group, err := GetItemAs[uint32](groupLine, 0)
		if err != nil {
			return nil, err
		}
		spawnMethod, internalName, carrying := extractInternalIdentifier(internalIdentifier)
		out = append(out, CapInfo{
			InternalName:             internalName,
			Carrying:                 carrying,
			MinimumAmount:            amountCode / 10,
			FillerDistributionWeight: amountCode % 10,
			Group:                    uint8(group),
			SpawnMethod:              spawnMethod,
		})
	}
	return out, nil
}

var spawnMethodRe = regexp.MustCompile(`^\$\d?`)

// extractInternalIdentifier splits a combined internal identifier as used
// by TekiInfo/CapInfo into its spawn method (the digit after a leading
// "$", e.g. "1" for "$1"; "" for a bare "$" or no prefix), the
// teki's own internal name, and any carried-treasure internal name after
// it, following the capitalization-run convention the original games' data
// files use to glue several identifiers into one token.
func extractInternalIdentifier(combined string) (spawnMethod, teki, treasure string) {
	rest := combined
	if m := spawnMethodRe.FindString(combined); m != "" {
		spawnMethod = strings.TrimPrefix(m, "$")
		rest = combined[len(m):]
	}

	parts := strings.Split(rest, "_")
	var tekiParts, treasureParts []string
	inTeki := true
	for i, part := range parts {
		isUpperStart := part != "" && part[0] >= 'A' && part[0] <= 'Z'
		if i == 0 || isUpperStart || part == "s" || part == "l" {
			if inTeki {
				tekiParts = append(tekiParts, part)
				continue
			}
		} else {
			inTeki = false
		}
		if !inTeki {
			treasureParts = append(treasureParts, part)
		}
	}
	teki = strings.Join(tekiParts, "_")
	if treasure = strings.Join(treasureParts, "_"); treasure == "" {
		treasure = ""
	}

	// Some special teki have an "F" variant that doesn't move; normalized
	// to share assets with their mobile counterpart.
	switch teki {
	case "FminiHoudai":
		teki = "MiniHoudai"
	case "Fkabuto":
		teki = "Kabuto"
	}

	return spawnMethod, teki, treasure
}
