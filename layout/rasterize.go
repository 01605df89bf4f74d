package layout

import (
	"codeberg.org/anaseto/gruid"
	"codeberg.org/anaseto/gruid/rl"

	"github.com/mayabyte/caveripper/caveinfo"
)

// Terrain cell kinds for Layout.Rasterize's output grid. These are the
// rl.Cell values a debug/export viewer keys its glyphs and colors off of;
// they carry no gameplay meaning beyond "what's visually at this cell".
const (
	TerrainWall rl.Cell = iota
	TerrainRoomFloor
	TerrainHallwayFloor
	TerrainCapFloor
	TerrainDoor
)

// TerrainName returns a short label for a rasterized terrain cell.
func TerrainName(t rl.Cell) string {
	switch t {
	case TerrainWall:
		return "wall"
	case TerrainRoomFloor:
		return "room"
	case TerrainHallwayFloor:
		return "hallway"
	case TerrainCapFloor:
		return "cap"
	case TerrainDoor:
		return "door"
	default:
		return "unknown"
	}
}

// Rasterize renders the layout's placed units onto a grid-cell terrain map,
// one cell per map-unit grid square plus a one-cell door marker at every
// linked or sealed door. This is the bridge to the rendering pipeline named
// out of scope by the spec (no PNG output here) and to the in-repo debug
// viewer in cmd/caveripper-view, which pages a tcell UI over the returned
// grid. Coordinates are shifted so the minimum placed unit corner sits at
// (0, 0).
func (l *Layout) Rasterize() rl.Grid {
	if len(l.MapUnits) == 0 {
		return rl.NewGrid(1, 1)
	}

	minX, minZ, maxX, maxZ := l.MapUnits[0].X, l.MapUnits[0].Z, 0, 0
	for _, u := range l.MapUnits {
		if u.X < minX {
			minX = u.X
		}
		if u.Z < minZ {
			minZ = u.Z
		}
		if x := u.X + u.Unit.Width; x > maxX {
			maxX = x
		}
		if z := u.Z + u.Unit.Height; z > maxZ {
			maxZ = z
		}
	}

	w, h := maxX-minX, maxZ-minZ
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	gd := rl.NewGrid(w, h)
	gd.Fill(TerrainWall)

	floorCell := func(rt caveinfo.RoomType) rl.Cell {
		switch rt {
		case caveinfo.RoomTypeHallway:
			return TerrainHallwayFloor
		case caveinfo.RoomTypeDeadEnd:
			return TerrainCapFloor
		default:
			return TerrainRoomFloor
		}
	}

	for _, u := range l.MapUnits {
		cell := floorCell(u.Unit.RoomType)
		for dx := 0; dx < u.Unit.Width; dx++ {
			for dz := 0; dz < u.Unit.Height; dz++ {
				p := gruid.Point{X: u.X + dx - minX, Y: u.Z + dz - minZ}
				if p.X >= 0 && p.X < w && p.Y >= 0 && p.Y < h {
					gd.Set(p, cell)
				}
			}
		}
		for _, d := range u.Doors {
			p := gruid.Point{X: d.X - minX, Y: d.Z - minZ}
			if p.X >= 0 && p.X < w && p.Y >= 0 && p.Y < h {
				gd.Set(p, TerrainDoor)
			}
		}
	}

	return gd
}

// RasterOrigin returns the world-to-raster translation Rasterize applied,
// so callers positioning spawn objects onto the same grid (in 170-unit
// cells) can reuse the identical offset.
func (l *Layout) RasterOrigin() (minX, minZ int) {
	if len(l.MapUnits) == 0 {
		return 0, 0
	}
	minX, minZ = l.MapUnits[0].X, l.MapUnits[0].Z
	for _, u := range l.MapUnits {
		if u.X < minX {
			minX = u.X
		}
		if u.Z < minZ {
			minZ = u.Z
		}
	}
	return minX, minZ
}
