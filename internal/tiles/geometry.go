package tiles

import (
	"errors"
	"fmt"
	"math"
)

// ErrViewportNotReady is returned when the viewport is too small to hold a
// single tile per column.
var ErrViewportNotReady = errors.New("tiles: viewport not ready")

// Viewport is the drawable area in pixels. Y grows downward.
type Viewport struct {
	Width   int
	Height  int
	Desktop bool // Desktop-class viewports cap the lane width
}

// Geometry holds the derived tile size and strike zone.
// All values are pixels; lane-relative X starts at LaneLeft.
type Geometry struct {
	BlockSize  int
	BandTop    int // Upper edge of the strike zone
	BandBottom int // Lower edge of the strike zone (viewport height)
	LaneLeft   int
	LaneWidth  int
	Width      int
	Height     int
	Columns    int
}

// ComputeGeometry derives the tile size from the shorter viewport side,
// capped at desktopCap on desktop-class viewports, divided by the column count.
// The strike zone is the lowest touchRows tile rows.
func ComputeGeometry(vp Viewport, columns, desktopCap, touchRows int) (Geometry, error) {
	if columns <= 0 {
		return Geometry{}, fmt.Errorf("tiles: %d columns: %w", columns, ErrViewportNotReady)
	}
	if vp.Width <= 0 || vp.Height <= 0 {
		return Geometry{}, fmt.Errorf("tiles: viewport %dx%d: %w", vp.Width, vp.Height, ErrViewportNotReady)
	}

	limit := vp.Width
	if vp.Desktop && desktopCap > 0 {
		limit = desktopCap
	}
	side := min(vp.Width, vp.Height, limit)
	bs := side / columns
	if bs <= 0 {
		return Geometry{}, fmt.Errorf("tiles: viewport %dx%d too small for %d columns: %w",
			vp.Width, vp.Height, columns, ErrViewportNotReady)
	}

	laneW := bs * columns
	return Geometry{
		BlockSize:  bs,
		BandTop:    vp.Height - touchRows*bs,
		BandBottom: vp.Height,
		LaneLeft:   (vp.Width - laneW) / 2,
		LaneWidth:  laneW,
		Width:      vp.Width,
		Height:     vp.Height,
		Columns:    columns,
	}, nil
}

// Valid reports whether the geometry came from a usable viewport.
func (g Geometry) Valid() bool {
	return g.BlockSize > 0 && g.Columns > 0
}

// InTouchBand reports whether a viewport y coordinate lies in the strike zone.
func (g Geometry) InTouchBand(y float64) bool {
	return y >= float64(g.BandTop) && y <= float64(g.BandBottom)
}

// Tolerance returns the horizontal hit slack for the given fraction of a tile.
func (g Geometry) Tolerance(fraction float64) float64 {
	return fraction * float64(g.BlockSize)
}

// ColumnAt returns the column under a lane-relative x coordinate.
// The result may fall outside [0, Columns) for points beside the lane.
func (g Geometry) ColumnAt(x float64) int {
	if g.BlockSize <= 0 {
		return -1
	}
	return int(math.Floor(x / float64(g.BlockSize)))
}
