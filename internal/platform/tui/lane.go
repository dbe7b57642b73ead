package tui

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/tui-tiles/internal/core"
	"github.com/vovakirdan/tui-tiles/internal/tiles"
)

// Screen layout of the game view.
const (
	panelRows  = 2 // Status lines above the lane
	footerRows = 1 // Help bar
	pxPerRow   = 2 // Lane pixels per terminal row; one pixel per column
)

// laneLayout converts between terminal cells and lane pixels.
// A terminal cell is about twice as tall as it is wide, so one row holds two
// pixels and tiles come out square.
type laneLayout struct {
	top   int // First terminal row of the lane
	rows  int
	width int
}

func newLaneLayout(width, height int) laneLayout {
	return laneLayout{
		top:   panelRows,
		rows:  max(height-panelRows-footerRows, 0),
		width: max(width, 0),
	}
}

// viewport returns the lane area in pixels.
func (l laneLayout) viewport(desktop bool) tiles.Viewport {
	return tiles.Viewport{Width: l.width, Height: l.rows * pxPerRow, Desktop: desktop}
}

// toLane returns the lane pixel at the centre of the terminal cell (cx, cy).
// ok is false for cells outside the lane rows.
func (l laneLayout) toLane(g tiles.Geometry, cx, cy int) (x, y int, ok bool) {
	if cy < l.top || cy >= l.top+l.rows {
		return 0, 0, false
	}
	return cx - g.LaneLeft, (cy-l.top)*pxPerRow + pxPerRow/2, true
}

// tileGlyph returns how a tile is drawn, or ok=false for blank cells.
func tileGlyph(t tiles.TileView) (ch rune, c core.Color, ok bool) {
	switch {
	case t.Tag == tiles.TagBad:
		return '█', core.ColorBrightRed, true
	case t.Tag == tiles.TagResolved:
		return '▒', core.ColorGray, true
	case t.Occupied:
		v := t.Variant - 1
		if v < 0 || v >= len(core.TileColors) {
			v = 0
		}
		return '█', core.TileColors[v], true
	}
	return 0, core.ColorDefault, false
}

// drawLane renders the tiles and the lane edges. The edges are drawn heavier
// beside the strike zone.
func drawLane(s *core.Screen, l laneLayout, g *tiles.Game) {
	geom := g.Geometry()
	if !geom.Valid() {
		return
	}
	bounds := core.NewRect(0, 0, geom.LaneWidth, geom.Height)

	for _, t := range g.Tiles() {
		ch, color, ok := tileGlyph(t)
		if !ok {
			continue
		}
		r := t.Rect.Clip(bounds)
		if r.W == 0 || r.H == 0 {
			continue
		}
		first := true
		for cy := r.Y / pxPerRow; cy*pxPerRow < r.Bottom(); cy++ {
			py := cy*pxPerRow + pxPerRow/2
			if py < r.Y || py >= r.Bottom() {
				continue
			}
			glyph := ch
			// Half block on a tile's top row keeps stacked tiles apart
			if first && r.Y == t.Rect.Y && ch == '█' {
				glyph = '▄'
			}
			first = false
			s.DrawHLine(geom.LaneLeft+r.X, l.top+cy, r.W, glyph, color)
		}
	}

	for cy := 0; cy < l.rows; cy++ {
		edge, color := '│', core.ColorGray
		if geom.InTouchBand(float64(cy*pxPerRow + pxPerRow/2)) {
			edge, color = '┃', core.ColorWhite
		}
		s.Set(geom.LaneLeft-1, l.top+cy, edge, color)
		s.Set(geom.LaneLeft+geom.LaneWidth, l.top+cy, edge, color)
	}
}

// panelLines formats the two status lines.
func panelLines(p tiles.Panel, text tiles.Localizer, notice string) (stats, status string) {
	parts := []string{p.ModeLabel, fmt.Sprintf("%s %d", text.Text("score"), p.Score)}
	switch p.Mode {
	case tiles.ModeFixedTime:
		parts = append(parts,
			fmt.Sprintf("%s %d", text.Text("best"), p.Best.Score),
			fmt.Sprintf("%s %ds", text.Text("time"), p.TimeLeft),
			fmt.Sprintf("%s %s", text.Text("rate"), p.RateText))
	case tiles.ModeEndless:
		parts = append(parts,
			fmt.Sprintf("%s %d", text.Text("best"), p.Best.Score),
			fmt.Sprintf("%s %ds", text.Text("elapsed"), p.Elapsed),
			fmt.Sprintf("%s %s", text.Text("rate"), p.RateText))
	}
	stats = strings.Join(parts, "   ")

	switch {
	case notice != "":
		status = notice
	case p.Error:
		status = text.Text("layers-error")
	case p.Over:
		head := text.Text("game-over")
		if p.Mode == tiles.ModeFixedTime && p.TimeLeft <= 0 {
			head = text.Text("time-up")
		}
		words := []string{head}
		if p.NewBest {
			words = append(words, text.Text("new-best"))
		}
		if p.LevelText != "" {
			words = append(words, p.LevelText)
		}
		status = strings.Join(words, "  ")
	case p.State == tiles.StateIdle:
		status = text.Text("game-intro1") + " " + text.Text("game-intro3")
	}
	return stats, status
}

// drawPanel writes the status lines above the lane.
func drawPanel(s *core.Screen, p tiles.Panel, text tiles.Localizer, notice string) {
	stats, status := panelLines(p, text, notice)
	s.DrawTextCentered(0, stats, core.ColorBrightWhite)

	color := core.ColorGray
	switch {
	case notice != "", p.Error:
		color = core.ColorOrange
	case p.Over:
		color = core.ColorYellow
	}
	s.DrawTextCentered(1, status, color)
}
