package tiles

// Target is the cell a pointer or key event landed on.
type Target struct {
	ID       string
	Layer    int
	Index    int
	Occupied bool
}

// Tap resolves a pointer event. x is lane-relative, y is from the viewport
// top. It returns true when the tap counted as a hit or a miss.
//
// Taps are ignored while input is locked, within the debounce window of the
// previous resolved tap, after game over, with nothing left to hit, without a
// target cell, or outside the strike zone.
func (g *Game) Tap(x, y float64, target *Target) bool {
	if !g.clickable || !g.active || g.state == StateOver {
		return false
	}
	now := g.clock.Now()
	if !g.lastTapAt.IsZero() && now.Sub(g.lastTapAt) < g.opts.TapDebounce {
		return false
	}
	head, ok := g.queue.Head()
	if !ok || target == nil || target.Layer < 0 || target.Layer >= len(g.layers) {
		return false
	}
	if !g.geom.InTouchBand(y) {
		return false
	}

	if g.isHit(x, head, target) {
		g.lastTapAt = now
		g.hit(head)
		return true
	}
	if g.state == StateRunning && !target.Occupied {
		g.lastTapAt = now
		g.miss(target)
		return true
	}
	return false
}

// KeyTap taps the given column of the row waiting to be hit, in the middle
// of the strike zone.
func (g *Game) KeyTap(column int) bool {
	if !g.geom.Valid() || column < 0 || column >= g.opts.Columns {
		return false
	}
	head, ok := g.queue.Head()
	if !ok {
		return false
	}

	l := g.layers[head.Layer]
	cols := l.Columns()
	cell, ok := l.Cell(head.Index/cols*cols + column)
	if !ok {
		return false
	}

	bs := float64(g.geom.BlockSize)
	x := float64(column)*bs + bs/2
	y := float64(g.geom.BandTop+g.geom.BandBottom) / 2
	return g.Tap(x, y, &Target{ID: cell.ID, Layer: l.index, Index: cell.Index, Occupied: cell.Occupied})
}

// isHit accepts the head cell itself, or a point in the head's column.
// The column bounds are widened by the tolerance, so a point rounded onto the
// head column just past its edge still counts.
func (g *Game) isHit(x float64, head ExpectedTap, target *Target) bool {
	if target.ID == head.ID && target.Occupied {
		return true
	}
	col := g.geom.ColumnAt(x)
	if col != head.Cell {
		return false
	}
	bs := float64(g.geom.BlockSize)
	tol := g.geom.Tolerance(g.opts.Tolerance)
	return x >= float64(col)*bs-tol && x < float64(col+1)*bs+tol
}

func (g *Game) hit(head ExpectedTap) {
	if g.state == StateIdle {
		g.start()
	}
	g.queue.Pop()
	g.layers[head.Layer].SetTag(head.Index, TagResolved)
	g.score++
	g.play(EffectTap)
	g.advanceLayers()
}

// advanceLayers scrolls both strips one row. A strip that left the lane is
// regenerated behind its sibling on the next scheduler pass.
func (g *Game) advanceLayers() {
	bs := g.geom.BlockSize
	for i, l := range g.layers {
		if l.Advance(bs) {
			idx := i
			g.sched.ScheduleOnce(0, func() { g.recycle(idx) })
		}
	}
}

func (g *Game) recycle(idx int) {
	l, sibling := g.layers[idx], g.layers[1-idx]
	bs := g.geom.BlockSize
	if bs <= 0 {
		return
	}
	// Generate places the strip at -bs*(rows+offset); this offset puts it
	// directly above the sibling's top row.
	offset := -sibling.Y() / bs
	g.queue.Push(l.Generate(g.rng, bs, true, offset)...)
	g.log.Debug("recycle", "layer", idx, "y", l.Y(), "queued", g.queue.Len())
}

func (g *Game) miss(target *Target) {
	g.play(EffectErr)
	l := g.layers[target.Layer]
	l.SetTag(target.Index, TagBad)

	if g.mode == ModePractice {
		g.sched.ScheduleOnce(g.opts.MissDelay, func() {
			if c, ok := l.Cell(target.Index); ok && c.Tag == TagBad {
				l.SetTag(target.Index, TagEmpty)
			}
		})
		return
	}

	g.clickable = false
	g.sched.CancelTick()
	rate := g.wallRate()
	g.log.Debug("miss", "mode", g.mode, "score", g.score)
	g.sched.ScheduleOnce(g.opts.MissDelay, func() { g.gameOver(rate) })
}
