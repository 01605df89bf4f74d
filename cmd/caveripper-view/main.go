// Command caveripper-view is a small terminal browser over one generated
// layout: it rasterizes the layout's placed units (layout.Layout.Rasterize)
// onto a tcell-backed gruid grid, tinting each unit by its Total Score (the
// depth/difficulty gradient from layout/generate_score.go) using a
// go-colorful Luv blend, and prints a status line with the sublevel, seed,
// unit count, and score. It is a debug aid over the rendering pipeline named out of
// scope by the spec, not a reimplementation of it: no PNG output, no asset
// extraction.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"codeberg.org/anaseto/gruid"
	tcelldriver "codeberg.org/anaseto/gruid-tcell"
	"codeberg.org/anaseto/gruid/rl"
	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/mayabyte/caveripper/internal/assetfs"
	"github.com/mayabyte/caveripper/layout"
)

func main() {
	log.SetPrefix("caveripper-view: ")
	log.SetFlags(0)
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("caveripper-view", flag.ContinueOnError)
	assetRoot := fs.String("assets", ".", "path to the asset root directory")
	game := fs.String("game", "pikmin2", "game tag")
	sublevel := fs.String("sublevel", "", "sublevel shortcode, e.g. scx7")
	seedStr := fs.String("seed", "0x0", "seed to generate and view (hex or decimal)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *sublevel == "" {
		log.Print("-sublevel is required")
		return 2
	}
	seed, err := parseSeed(*seedStr)
	if err != nil {
		log.Print(err)
		return 2
	}

	root := assetfs.NewRoot(*assetRoot)
	sl, err := root.Sublevel(*game, *sublevel)
	if err != nil {
		log.Print(err)
		return 2
	}
	ci, err := root.CaveInfo(sl)
	if err != nil {
		log.Print(err)
		return 2
	}

	l := layout.Generate(seed, ci)
	md := newModel(l)

	driver := tcelldriver.NewDriver(tcelldriver.Config{StyleManager: newStyler()})
	app := gruid.NewApp(gruid.AppConfig{Driver: driver, Model: md})
	if err := app.Start(context.Background()); err != nil {
		log.Print(err)
		return 1
	}
	return 0
}

func parseSeed(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	n, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid seed %q: %w", s, err)
	}
	return uint32(n), nil
}

// scoreBuckets is the number of distinct shallow-to-deep colors the styler
// blends between; finer than this would be imperceptible in a 256-color
// terminal and isn't worth the extra gruid.Color indices.
const scoreBuckets = 12

// model is the gruid.Model for the paged layout view: one static screen,
// redrawn on resize, that quits on any of q/Escape/Enter/ctrl+c.
type model struct {
	l    *layout.Layout
	grid rl.Grid
	gd   gruid.Grid
}

func newModel(l *layout.Layout) *model {
	return &model{l: l, grid: l.Rasterize()}
}

// Update implements gruid.Model.
func (md *model) Update(msg gruid.Msg) gruid.Effect {
	switch msg := msg.(type) {
	case gruid.MsgInit:
		sz := md.grid.Size()
		md.gd = gruid.NewGrid(sz.X, sz.Y+2)
	case gruid.MsgKeyDown:
		switch msg.Key {
		case gruid.KeyEscape, "q", "Q", gruid.KeyEnter:
			return gruid.End()
		case "c", "C":
			if msg.Mod&gruid.ModCtrl != 0 {
				return gruid.End()
			}
		}
	case gruid.MsgQuit:
		return gruid.End()
	}
	return nil
}

// Draw implements gruid.Model.
func (md *model) Draw() gruid.Grid {
	if md.gd.Size().X == 0 {
		sz := md.grid.Size()
		md.gd = gruid.NewGrid(sz.X, sz.Y+2)
	}
	md.gd.Fill(gruid.Cell{Rune: ' '})

	for p := range md.grid.Points() {
		cell := md.grid.At(p)
		r, style := glyphFor(cell)
		if unit := md.unitAt(p); unit != nil && cell != layout.TerrainWall && cell != layout.TerrainDoor {
			style.Fg = scoreColor(unit.TotalScore, md.maxScore())
		}
		md.gd.Set(p, gruid.Cell{Rune: r, Style: style})
	}

	status := fmt.Sprintf("%s  seed=0x%08X  units=%d  score=%d  (q to quit)",
		md.l.Sublevel.ShortName(), md.l.StartingSeed, len(md.l.MapUnits), md.l.Score())
	drawString(md.gd, gruid.Point{X: 0, Y: md.grid.Size().Y}, status, gruid.Style{Fg: colorText})

	return md.gd
}

func glyphFor(c rl.Cell) (rune, gruid.Style) {
	switch c {
	case layout.TerrainRoomFloor:
		return '.', gruid.Style{}
	case layout.TerrainHallwayFloor:
		return '#', gruid.Style{}
	case layout.TerrainCapFloor:
		return 'c', gruid.Style{}
	case layout.TerrainDoor:
		return '+', gruid.Style{Fg: colorDoor}
	default:
		return ' ', gruid.Style{}
	}
}

func (md *model) unitAt(p gruid.Point) *layout.PlacedMapUnit {
	minX, minZ := md.l.RasterOrigin()
	for _, u := range md.l.MapUnits {
		if p.X >= u.X-minX && p.X < u.X-minX+u.Unit.Width && p.Y >= u.Z-minZ && p.Y < u.Z-minZ+u.Unit.Height {
			return u
		}
	}
	return nil
}

func (md *model) maxScore() uint32 {
	var max uint32
	for _, u := range md.l.MapUnits {
		if u.TotalScore > max {
			max = u.TotalScore
		}
	}
	return max
}

func drawString(gd gruid.Grid, p gruid.Point, s string, style gruid.Style) {
	for i, r := range s {
		q := gruid.Point{X: p.X + i, Y: p.Y}
		if q.X < 0 || q.X >= gd.Size().X {
			continue
		}
		gd.Set(q, gruid.Cell{Rune: r, Style: style})
	}
}

// Palette layout: gruid.Color 0 is gruid.ColorDefault; 1..scoreBuckets are
// the depth gradient; the two indices after that are fixed accents.
const (
	colorDoor gruid.Color = scoreBuckets + 1
	colorText gruid.Color = scoreBuckets + 2
)

func scoreColor(score, max uint32) gruid.Color {
	if max == 0 {
		return gruid.Color(1)
	}
	t := float64(score) / float64(max)
	bucket := int(t * float64(scoreBuckets-1))
	if bucket < 0 {
		bucket = 0
	}
	if bucket > scoreBuckets-1 {
		bucket = scoreBuckets - 1
	}
	return gruid.Color(bucket + 1)
}

// styler implements gruid-tcell's StyleManager, resolving the score
// gradient's gruid.Color indices against a palette blended with
// go-colorful: shallow (near the ship) is a cool blue-green, deep (far
// along the breadth-first score relaxation) is a warm red, interpolated in
// the perceptually-uniform Luv space rather than naive RGB lerp so the
// gradient doesn't dip through a muddy gray band in the middle.
type styler struct {
	palette [scoreBuckets + 3]tcell.Color
}

func newStyler() styler {
	var st styler
	shallow := colorful.Color{R: 0.20, G: 0.55, B: 0.95}
	deep := colorful.Color{R: 0.90, G: 0.20, B: 0.20}
	for i := 0; i < scoreBuckets; i++ {
		t := float64(i) / float64(scoreBuckets-1)
		c := shallow.BlendLuv(deep, t)
		r, g, b := c.RGB255()
		st.palette[i] = tcell.NewRGBColor(int32(r), int32(g), int32(b))
	}
	st.palette[scoreBuckets] = tcell.ColorYellow   // colorDoor
	st.palette[scoreBuckets+1] = tcell.ColorSilver // colorText
	return st
}

// GetStyle implements tcelldriver.StyleManager.
func (s styler) GetStyle(cst gruid.Style) tcell.Style {
	st := tcell.StyleDefault
	if cst.Fg == gruid.ColorDefault {
		st = st.Foreground(tcell.ColorDefault)
	} else {
		idx := int(cst.Fg) - 1
		if idx >= 0 && idx < len(s.palette) {
			st = st.Foreground(s.palette[idx])
		}
	}
	st = st.Background(tcell.ColorDefault)
	return st
}
