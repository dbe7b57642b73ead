package tiles

import (
	"math/rand"
	"testing"
)

func TestNewLayerSize(t *testing.T) {
	tests := []struct {
		columns, bufferRows int
		wantRows            int
	}{
		{4, 10, 20},
		{3, 10, 23}, // 70 cells trimmed to whole rows
		{1, 10, 50},
		{8, 10, 15},
	}

	for _, tc := range tests {
		l := NewLayer(0, tc.columns, tc.bufferRows)
		if l.Rows() != tc.wantRows {
			t.Errorf("columns=%d: Rows() = %d, expected %d", tc.columns, l.Rows(), tc.wantRows)
		}
		if got := len(l.cells); got != tc.wantRows*tc.columns {
			t.Errorf("columns=%d: %d cells, expected %d", tc.columns, got, tc.wantRows*tc.columns)
		}
	}
}

func activePerRow(l *Layer) []int {
	counts := make([]int, l.Rows())
	for _, c := range l.cells {
		if c.Occupied {
			counts[c.Index/l.Columns()]++
		}
	}
	return counts
}

func TestGenerateOneActivePerRow(t *testing.T) {
	for _, columns := range []int{1, 2, 4, 5, 8} {
		for seed := int64(1); seed <= 20; seed++ {
			rng := rand.New(rand.NewSource(seed))
			l := NewLayer(0, columns, 10)

			taps := l.Generate(rng, 50, false, 0)
			counts := activePerRow(l)
			if counts[0] != 0 {
				t.Fatalf("columns=%d seed=%d: lead-in row has %d active cells", columns, seed, counts[0])
			}
			for row := 1; row < l.Rows(); row++ {
				if counts[row] != 1 {
					t.Fatalf("columns=%d seed=%d: row %d has %d active cells", columns, seed, row, counts[row])
				}
			}
			if len(taps) != l.Rows()-1 {
				t.Fatalf("columns=%d: %d taps, expected %d", columns, len(taps), l.Rows()-1)
			}

			taps = l.Generate(rng, 50, true, 0)
			for row, n := range activePerRow(l) {
				if n != 1 {
					t.Fatalf("columns=%d seed=%d loop: row %d has %d active cells", columns, seed, row, n)
				}
			}
			if len(taps) != l.Rows() {
				t.Fatalf("columns=%d loop: %d taps, expected %d", columns, len(taps), l.Rows())
			}
		}
	}
}

func TestGenerateTapsMatchCells(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	l := NewLayer(1, 4, 10)
	taps := l.Generate(rng, 100, true, 0)

	prev := -1
	for _, tap := range taps {
		c, ok := l.Cell(tap.Index)
		if !ok || !c.Occupied || c.Tag != TagActive {
			t.Fatalf("tap %+v does not point at an active cell", tap)
		}
		if c.ID != tap.ID || tap.Layer != 1 {
			t.Errorf("tap %+v mismatches cell %q", tap, c.ID)
		}
		if tap.Cell != tap.Index%4 {
			t.Errorf("tap.Cell = %d for index %d", tap.Cell, tap.Index)
		}
		if c.Variant < 1 || c.Variant > VariantCount {
			t.Errorf("variant %d out of range", c.Variant)
		}
		if tap.Index <= prev {
			t.Errorf("taps not in bottom-to-top order: %d after %d", tap.Index, prev)
		}
		prev = tap.Index
	}
}

func TestGenerateOffset(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	l := NewLayer(0, 4, 10)

	l.Generate(rng, 100, true, 0)
	if l.Y() != -2000 {
		t.Errorf("loop offset 0: Y() = %d, expected -2000", l.Y())
	}
	l.Generate(rng, 100, true, -1)
	if l.Y() != -1900 {
		t.Errorf("loop offset -1: Y() = %d, expected -1900", l.Y())
	}
	l.Generate(rng, 100, false, 5)
	if l.Y() != 0 {
		t.Errorf("no loop: Y() = %d, expected 0", l.Y())
	}
}

func TestQueueLengthTracksGeneratedRows(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	var q TapQueue
	l := NewLayer(0, 4, 10)

	rows := 0
	for i := 0; i < 5; i++ {
		q.Push(l.Generate(rng, 10, true, 0)...)
		rows += l.Rows()
		if q.Len() != rows {
			t.Fatalf("after %d generations: Len() = %d, expected %d", i+1, q.Len(), rows)
		}
	}

	for i := 0; i < 7; i++ {
		q.Pop()
	}
	if q.Len() != rows || q.Index() != 7 || len(q.pending) != rows-7 {
		t.Errorf("after 7 pops: Len()=%d Index()=%d pending=%d", q.Len(), q.Index(), len(q.pending))
	}

	q.Reset()
	if _, ok := q.Head(); ok || q.Len() != 0 {
		t.Error("Reset() should empty the queue")
	}
	if _, ok := q.Pop(); ok {
		t.Error("Pop() on an empty queue should fail")
	}
}

func TestLayerAdvanceSignalsRecycleOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	l := NewLayer(0, 4, 10)
	l.Generate(rng, 10, false, 0)

	signals := 0
	for i := 1; i <= 25; i++ {
		if l.Advance(10) {
			signals++
			if i != 21 {
				t.Errorf("recycle signalled after %d advances, expected 21", i)
			}
		}
	}
	if signals != 1 {
		t.Errorf("recycle signalled %d times, expected 1", signals)
	}

	l.Generate(rng, 10, true, -1)
	for i := 0; i < 40; i++ {
		if l.Advance(10) {
			return
		}
	}
	t.Error("regenerated layer never signalled recycle again")
}

func TestLayerRectsAndRelayout(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g, err := ComputeGeometry(Viewport{Width: 400, Height: 800}, 4, 632, 3)
	if err != nil {
		t.Fatal(err)
	}
	l := NewLayer(0, 4, 10)
	l.Generate(rng, g.BlockSize, false, 0)

	// Cell 5 is row 1, column 1
	r := l.CellRect(5, g)
	if r.X != 100 || r.Y != 600 || r.W != 100 || r.H != 100 {
		t.Errorf("CellRect(5) = %+v", r)
	}
	c, ok := l.CellAt(150, 650, g)
	if !ok || c.Index != 5 {
		t.Errorf("CellAt(150, 650) = %+v, %v", c, ok)
	}
	if _, ok := l.CellAt(150, 850, g); ok {
		t.Error("CellAt below the viewport should find nothing")
	}

	l.Advance(g.BlockSize)
	l.Advance(g.BlockSize)
	l.Relayout(100, 50)
	if l.Y() != 100 {
		t.Errorf("Relayout kept Y() = %d, expected 2 rows of 50", l.Y())
	}
	cell, _ := l.Cell(5)
	if cell.LeftPx != 50 || cell.BottomPx != 50 {
		t.Errorf("Relayout cell 5 = (%d, %d), expected (50, 50)", cell.LeftPx, cell.BottomPx)
	}
}
