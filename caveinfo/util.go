package caveinfo

import "sort"

// SortCaveUnits sorts cave units largest-first (by grid area, doors as a
// tiebreak), matching the order the original placement algorithm relies on
// when it walks the unit pool looking for a fit.
func SortCaveUnits(units []CaveUnit) []CaveUnit {
	out := make([]CaveUnit, len(units))
	copy(out, units)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Size() != out[j].Size() {
			return out[i].Size() > out[j].Size()
		}
		return out[i].NumDoors > out[j].NumDoors
	})
	return out
}

// ExpandRotations returns, for every unit, all four quarter-turn rotated
// variants (0, 90, 180, 270 degrees), since the generator treats each
// rotation as an independent candidate when trying to match an open door.
// Units with a square, door-symmetric footprint still get four (possibly
// duplicate) entries; the original generator does the same, so dropping
// "redundant" rotations here would change draw counts during placement.
func ExpandRotations(units []CaveUnit) []CaveUnit {
	out := make([]CaveUnit, 0, len(units)*4)
	for _, u := range units {
		for r := 0; r < 4; r++ {
			out = append(out, u.CopyAndRotateTo(r))
		}
	}
	return out
}
