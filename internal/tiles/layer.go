package tiles

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/tui-tiles/internal/core"
)

// Tag is the visual state of a cell.
type Tag int

const (
	TagEmpty    Tag = iota
	TagActive       // Waiting to be tapped
	TagResolved     // Tapped
	TagBad          // Wrong tap indicator
)

// VariantCount is the number of color variants for active cells.
const VariantCount = 5

// Cell is one tile slot of a layer. Position fields are pixels relative to
// the lane's left edge and the layer's bottom edge.
type Cell struct {
	ID       string
	Index    int
	LeftPx   int
	BottomPx int
	Occupied bool // Holds the row's active tile
	Tag      Tag
	Variant  int // 1..VariantCount for occupied cells, 0 otherwise
}

// ExpectedTap is the active tile of one generated row.
type ExpectedTap struct {
	Cell  int    // Column index
	ID    string // Cell identifier
	Layer int    // Owning layer
	Index int    // Cell index inside the layer
}

// Layer is one scrolling strip of rows. Row 0 sits at the strip's bottom.
// Its vertical offset Y grows as the lane scrolls down.
type Layer struct {
	index   int
	columns int
	rows    int
	cells   []Cell
	y       int

	recyclePending bool
}

// NewLayer allocates a layer sized for (columns+4)*bufferRows cells,
// trimmed to whole rows.
func NewLayer(index, columns, bufferRows int) *Layer {
	columns = max(columns, 1)
	rows := (columns + 4) * max(bufferRows, 1) / columns
	l := &Layer{
		index:   index,
		columns: columns,
		rows:    rows,
		cells:   make([]Cell, rows*columns),
	}
	for j := range l.cells {
		l.cells[j] = Cell{ID: fmt.Sprintf("layer%d-%d", index+1, j), Index: j}
	}
	return l
}

// Index returns the layer's position in the session's layer pair.
func (l *Layer) Index() int { return l.index }

// Rows returns the number of rows in the strip.
func (l *Layer) Rows() int { return l.rows }

// Columns returns the number of cells per row.
func (l *Layer) Columns() int { return l.columns }

// Y returns the vertical offset in pixels.
func (l *Layer) Y() int { return l.y }

// Span returns the strip height in pixels for block size bs.
func (l *Layer) Span(bs int) int { return bs * l.rows }

// Generate repopulates the strip with one active cell per row and returns the
// new expected taps in bottom-to-top order.
//
// The first active index is a random column, shifted one row up unless loop
// is set so that a fresh lane starts with an empty lead-in row. After each
// active cell the next one is a random column of the following row.
//
// With loop set the offset moves the strip above its sibling:
// y = -bs * (rows + offset). Without it the offset resets to 0.
func (l *Layer) Generate(rng *rand.Rand, bs int, loop bool, offset int) []ExpectedTap {
	cols := l.columns
	next := rng.Intn(cols)
	if !loop {
		next += cols
	}

	taps := make([]ExpectedTap, 0, l.rows)
	for j := range l.cells {
		c := &l.cells[j]
		c.LeftPx = (j % cols) * bs
		c.BottomPx = (j / cols) * bs
		c.Occupied = j == next
		c.Tag = TagEmpty
		c.Variant = 0

		if c.Occupied {
			c.Tag = TagActive
			c.Variant = rng.Intn(VariantCount) + 1
			taps = append(taps, ExpectedTap{Cell: j % cols, ID: c.ID, Layer: l.index, Index: j})
			next = (j/cols+1)*cols + rng.Intn(cols)
		}
	}

	if loop {
		l.y = -bs * (l.rows + offset)
	} else {
		l.y = 0
	}
	l.recyclePending = false
	return taps
}

// Advance scrolls the strip down by one tile. It returns true the first time
// the strip has moved past its own height and needs recycling.
func (l *Layer) Advance(bs int) bool {
	l.y += bs
	if l.y > l.Span(bs) && !l.recyclePending {
		l.recyclePending = true
		return true
	}
	return false
}

// Relayout rescales cell positions and the offset to a new block size.
// The offset keeps its value in rows.
func (l *Layer) Relayout(oldBs, newBs int) {
	for j := range l.cells {
		l.cells[j].LeftPx = (j % l.columns) * newBs
		l.cells[j].BottomPx = (j / l.columns) * newBs
	}
	if oldBs > 0 {
		l.y = l.y / oldBs * newBs
	}
}

// Cell returns the cell at index j.
func (l *Layer) Cell(j int) (Cell, bool) {
	if j < 0 || j >= len(l.cells) {
		return Cell{}, false
	}
	return l.cells[j], true
}

// SetTag changes the visual tag of cell j.
func (l *Layer) SetTag(j int, tag Tag) {
	if j >= 0 && j < len(l.cells) {
		l.cells[j].Tag = tag
	}
}

// CellRect returns the cell's box in lane coordinates: X from the lane's left
// edge, Y from the viewport top.
func (l *Layer) CellRect(j int, g Geometry) core.Rect {
	c := l.cells[j]
	bs := g.BlockSize
	return core.NewRect(c.LeftPx, g.Height-c.BottomPx-bs+l.y, bs, bs)
}

// CellAt returns the cell covering the lane point (x, y).
func (l *Layer) CellAt(x, y int, g Geometry) (Cell, bool) {
	if !g.Valid() {
		return Cell{}, false
	}
	for j := range l.cells {
		if l.CellRect(j, g).Contains(x, y) {
			return l.cells[j], true
		}
	}
	return Cell{}, false
}
