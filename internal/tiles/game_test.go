package tiles

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/vovakirdan/tui-tiles/internal/config"
)

type recordAudio struct {
	effects []Effect
}

func (a *recordAudio) PlayEffect(e Effect) { a.effects = append(a.effects, e) }

func (a *recordAudio) count(e Effect) int {
	n := 0
	for _, got := range a.effects {
		if got == e {
			n++
		}
	}
	return n
}

type recordSink struct {
	results []Result
}

func (s *recordSink) RecordResult(r Result) error {
	s.results = append(s.results, r)
	return nil
}

type testEnv struct {
	game    *Game
	clock   *fakeClock
	audio   *recordAudio
	results *recordSink
	prefs   *MemoryPreferences
}

// portrait is 400x800 with 4 columns: 100px tiles, strike zone [500, 800].
var portrait = Viewport{Width: 400, Height: 800}

func newTestEnv(t *testing.T, mode Mode) *testEnv {
	t.Helper()
	env := &testEnv{
		clock:   newFakeClock(),
		audio:   &recordAudio{},
		results: &recordSink{},
		prefs:   NewMemoryPreferences(),
	}
	env.game = NewGame(DefaultOptions(), mode, portrait, Deps{
		Clock:   env.clock,
		Audio:   env.audio,
		Prefs:   env.prefs,
		Results: env.results,
		Rand:    rand.New(rand.NewSource(42)),
	})
	if env.game.Panel().Error {
		t.Fatal("game failed to lay out")
	}
	return env
}

// headTarget returns the head cell and the center of its tile.
func (e *testEnv) headTarget(t *testing.T) (float64, float64, *Target) {
	t.Helper()
	head, ok := e.game.Head()
	if !ok {
		t.Fatal("queue is empty")
	}
	bs := float64(e.game.Geometry().BlockSize)
	return float64(head.Cell)*bs + bs/2, 650, &Target{ID: head.ID, Layer: head.Layer, Index: head.Index, Occupied: true}
}

// hitHead waits out the debounce, then taps the head tile.
func (e *testEnv) hitHead(t *testing.T) {
	t.Helper()
	e.clock.Add(10 * time.Millisecond)
	x, y, target := e.headTarget(t)
	if !e.game.Tap(x, y, target) {
		t.Fatalf("tap on head %q was not resolved", target.ID)
	}
	e.game.Advance()
}

// emptyTarget returns an unoccupied cell next to the head on its row.
func (e *testEnv) emptyTarget(t *testing.T) (int, *Target) {
	t.Helper()
	head, _ := e.game.Head()
	col := (head.Cell + 2) % 4
	idx := head.Index - head.Cell + col
	c, _ := e.game.layers[head.Layer].Cell(idx)
	return col, &Target{ID: c.ID, Layer: head.Layer, Index: idx, Occupied: c.Occupied}
}

func TestNewGameStartsIdle(t *testing.T) {
	env := newTestEnv(t, ModeFixedTime)
	g := env.game

	if g.State() != StateIdle || g.Score() != 0 || g.QueueIndex() != 0 {
		t.Errorf("state=%v score=%d index=%d", g.State(), g.Score(), g.QueueIndex())
	}
	if g.sched.TickActive() {
		t.Error("tick must not run before the first hit")
	}
	p := g.Panel()
	if p.TimeLeft != 20 || p.RateText != "calculating" {
		t.Errorf("panel = %+v", p)
	}
}

func TestHitByIDIgnoresX(t *testing.T) {
	env := newTestEnv(t, ModeFixedTime)
	_, y, target := env.headTarget(t)

	// Far outside the head's column
	if !env.game.Tap(5000, y, target) {
		t.Fatal("tap on the head id should hit regardless of x")
	}
	if env.game.Score() != 1 || env.game.QueueIndex() != 1 {
		t.Errorf("score=%d index=%d, expected 1/1", env.game.Score(), env.game.QueueIndex())
	}
	if env.game.State() != StateRunning {
		t.Errorf("state = %v, expected running", env.game.State())
	}
	if env.audio.count(EffectTap) != 1 {
		t.Errorf("effects = %v", env.audio.effects)
	}
	c, _ := env.game.layers[target.Layer].Cell(target.Index)
	if c.Tag != TagResolved {
		t.Errorf("hit cell tag = %v, expected resolved", c.Tag)
	}
}

func TestToleranceLaw(t *testing.T) {
	env := newTestEnv(t, ModeEndless)
	env.hitHead(t) // start the run
	bs := 100.0

	// Outside the strike zone nothing resolves
	head, _ := env.game.Head()
	_, empty := env.emptyTarget(t)
	env.clock.Add(10 * time.Millisecond)
	if env.game.Tap(float64(head.Cell)*bs+bs/2, 10, empty) {
		t.Fatal("tap above the strike zone should be ignored")
	}

	// Anywhere inside the head's column hits, even on another cell id
	for _, dx := range []float64{0, 1, 50, 99.9} {
		head, _ = env.game.Head()
		_, empty = env.emptyTarget(t)
		score := env.game.Score()
		env.clock.Add(10 * time.Millisecond)
		if !env.game.Tap(float64(head.Cell)*bs+dx, 650, empty) {
			t.Fatalf("tap at +%.1f in the head column was not resolved", dx)
		}
		if env.game.Score() != score+1 {
			t.Fatalf("tap at +%.1f in the head column should hit, score = %d", dx, env.game.Score())
		}
		env.game.Advance()
	}

	// A neighbour column within the slack of the shared edge misses
	head, _ = env.game.Head()
	col, x := head.Cell+1, float64(head.Cell+1)*bs+5
	if head.Cell == 3 {
		col, x = head.Cell-1, float64(head.Cell)*bs-5
	}
	idx := head.Index - head.Cell + col
	c, _ := env.game.layers[head.Layer].Cell(idx)
	neighbour := &Target{ID: c.ID, Layer: head.Layer, Index: idx, Occupied: c.Occupied}
	if neighbour.Occupied {
		t.Fatal("neighbour cell of the head row should be empty")
	}

	score := env.game.Score()
	env.clock.Add(10 * time.Millisecond)
	if !env.game.Tap(x, 650, neighbour) {
		t.Fatal("tap on an empty neighbour cell should resolve as a miss")
	}
	if env.game.Score() != score {
		t.Errorf("miss changed score from %d to %d", score, env.game.Score())
	}
	if env.audio.count(EffectErr) != 1 {
		t.Errorf("effects = %v, expected one err", env.audio.effects)
	}
	c, _ = env.game.layers[head.Layer].Cell(idx)
	if c.Tag != TagBad {
		t.Errorf("missed cell tag = %v, expected bad", c.Tag)
	}
}

func TestDebounce(t *testing.T) {
	env := newTestEnv(t, ModeFixedTime)
	env.hitHead(t)

	env.clock.Add(5 * time.Millisecond)
	x, y, target := env.headTarget(t)
	if env.game.Tap(x, y, target) {
		t.Fatal("tap within 8ms should be ignored")
	}
	if env.game.Score() != 1 {
		t.Errorf("score = %d, expected 1", env.game.Score())
	}

	env.clock.Add(3 * time.Millisecond)
	if !env.game.Tap(x, y, target) {
		t.Fatal("tap 8ms after the previous one should resolve")
	}
	if env.game.Score() != 2 {
		t.Errorf("score = %d, expected 2", env.game.Score())
	}
}

func TestIgnoredTaps(t *testing.T) {
	env := newTestEnv(t, ModeFixedTime)
	x, _, target := env.headTarget(t)

	if env.game.Tap(x, 450, target) {
		t.Error("tap above the strike zone should be ignored")
	}
	if env.game.Tap(x, 650, nil) {
		t.Error("tap without a target should be ignored")
	}

	// Before the first hit a wrong tap is not a miss
	col, empty := env.emptyTarget(t)
	if env.game.Tap(float64(col)*100+50, 650, empty) || env.game.State() != StateIdle {
		t.Error("wrong tap before start should not resolve")
	}
	if env.audio.count(EffectErr) != 0 {
		t.Error("wrong tap before start should not play err")
	}

	env.game.SetActive(false)
	if env.game.Tap(x, 650, target) {
		t.Error("tap while inactive should be ignored")
	}
	if env.game.Score() != 0 {
		t.Errorf("score = %d after ignored taps", env.game.Score())
	}
}

func TestFixedTimeRun(t *testing.T) {
	env := newTestEnv(t, ModeFixedTime)
	g := env.game

	for i := 0; i < 20; i++ {
		if i > 0 {
			env.clock.Add(time.Second - 10*time.Millisecond)
			g.Advance()
		}
		env.hitHead(t)
	}
	if g.Over() {
		t.Fatal("run ended early")
	}
	if p := g.Panel(); p.TimeLeft != 1 {
		t.Errorf("TimeLeft = %d, expected 1", p.TimeLeft)
	}

	env.clock.Add(time.Second)
	g.Advance()
	if !g.Over() {
		t.Fatalf("state = %v at t0+20s, expected over", g.State())
	}
	if env.audio.count(EffectEnd) != 1 {
		t.Errorf("end effect played %d times", env.audio.count(EffectEnd))
	}
	if math.Abs(g.Rate()-1.0) > 1e-9 {
		t.Errorf("Rate() = %v, expected score/20 = 1", g.Rate())
	}
	if g.sched.TickActive() {
		t.Error("tick still active after time up")
	}
	if len(env.results.results) != 1 || env.results.results[0].Score != 20 {
		t.Errorf("results = %+v", env.results.results)
	}
}

func TestEndlessRate(t *testing.T) {
	env := newTestEnv(t, ModeEndless)
	g := env.game

	env.hitHead(t)
	start := env.clock.Now()
	if g.Rate() != 0 {
		t.Errorf("Rate() = %v right after start", g.Rate())
	}

	env.clock.Add(time.Second - 10*time.Millisecond)
	g.Advance()
	env.hitHead(t)
	if g.Rate() != 0 {
		t.Errorf("Rate() = %v after one second, expected 0", g.Rate())
	}

	env.clock.Add(time.Second)
	g.Advance()
	elapsed := env.clock.Now().Sub(start).Seconds()
	if want := 2 / elapsed; math.Abs(g.Rate()-want) > 1e-9 {
		t.Errorf("Rate() = %v, expected %v", g.Rate(), want)
	}
	if p := g.Panel(); p.RateText == "calculating" {
		t.Error("rate text should show a number after two seconds")
	}
}

func TestRestartIdempotent(t *testing.T) {
	env := newTestEnv(t, ModeFixedTime)
	g := env.game

	env.hitHead(t)
	env.hitHead(t)
	if !g.sched.TickActive() {
		t.Fatal("tick should run after the first hit")
	}

	for i := 0; i < 2; i++ {
		if err := g.Restart(); err != nil {
			t.Fatalf("Restart() failed: %v", err)
		}
		if g.Score() != 0 || g.QueueIndex() != 0 || g.Over() || g.State() != StateIdle {
			t.Fatalf("restart %d: score=%d index=%d state=%v", i, g.Score(), g.QueueIndex(), g.State())
		}
		if g.sched.Pending() != 0 {
			t.Fatalf("restart %d left %d timers", i, g.sched.Pending())
		}
	}

	env.hitHead(t)
	if g.sched.Pending() != 1 || !g.sched.TickActive() {
		t.Errorf("after restart and hit: Pending()=%d TickActive()=%v, expected a single tick",
			g.sched.Pending(), g.sched.TickActive())
	}
}

func TestMissEndsRunAfterDelay(t *testing.T) {
	env := newTestEnv(t, ModeEndless)
	g := env.game
	env.hitHead(t)

	col, empty := env.emptyTarget(t)
	env.clock.Add(10 * time.Millisecond)
	if !g.Tap(float64(col)*100+50, 650, empty) {
		t.Fatal("miss should resolve")
	}
	if g.Over() {
		t.Fatal("game over should wait for the miss delay")
	}
	c, _ := g.layers[empty.Layer].Cell(empty.Index)
	if c.Tag != TagBad {
		t.Errorf("missed cell tag = %v, expected bad", c.Tag)
	}

	// Input is locked during the delay
	env.clock.Add(10 * time.Millisecond)
	x, y, target := env.headTarget(t)
	if g.Tap(x, y, target) {
		t.Error("tap during the miss delay should be ignored")
	}

	env.clock.Add(490 * time.Millisecond)
	g.Advance()
	if !g.Over() {
		t.Fatal("game should be over 500ms after the miss")
	}
	if len(env.results.results) != 1 {
		t.Errorf("results = %+v", env.results.results)
	}
}

func TestPracticeMissClears(t *testing.T) {
	env := newTestEnv(t, ModePractice)
	g := env.game
	env.hitHead(t)

	col, empty := env.emptyTarget(t)
	env.clock.Add(10 * time.Millisecond)
	g.Tap(float64(col)*100+50, 650, empty)

	c, _ := g.layers[empty.Layer].Cell(empty.Index)
	if c.Tag != TagBad {
		t.Fatalf("tag = %v, expected bad", c.Tag)
	}

	env.clock.Add(500 * time.Millisecond)
	g.Advance()
	c, _ = g.layers[empty.Layer].Cell(empty.Index)
	if c.Tag != TagEmpty {
		t.Errorf("tag = %v after 500ms, expected empty", c.Tag)
	}
	if g.Over() || g.State() != StateRunning {
		t.Errorf("practice should keep running, state = %v", g.State())
	}
	if g.sched.TickActive() {
		t.Error("practice should not tick")
	}

	env.hitHead(t)
	if g.Score() != 2 {
		t.Errorf("score = %d, expected 2", g.Score())
	}
	if p := g.Panel(); p.RateText != "" {
		t.Errorf("practice rate text = %q, expected empty", p.RateText)
	}
}

func TestHeadStaysInStrikeZoneAcrossRecycles(t *testing.T) {
	for _, columns := range []int{1, 3, 4, 8} {
		opts := DefaultOptions()
		opts.Columns = columns
		clock := newFakeClock()
		g := NewGame(opts, ModePractice, portrait, Deps{Clock: clock, Rand: rand.New(rand.NewSource(9))})
		bs := g.Geometry().BlockSize

		for i := 0; i < 200; i++ {
			head, ok := g.Head()
			if !ok {
				t.Fatalf("columns=%d: queue ran dry after %d hits", columns, i)
			}
			r := g.layers[head.Layer].CellRect(head.Index, g.Geometry())
			if r.Y != portrait.Height-2*bs {
				t.Fatalf("columns=%d hit %d: head row at y=%d, expected %d", columns, i, r.Y, portrait.Height-2*bs)
			}

			clock.Add(10 * time.Millisecond)
			target := &Target{ID: head.ID, Layer: head.Layer, Index: head.Index, Occupied: true}
			if !g.Tap(float64(r.X+bs/2), float64(r.Y+bs/2), target) {
				t.Fatalf("columns=%d: hit %d not resolved", columns, i)
			}
			g.Advance()
		}
		if g.QueueIndex() != 200 {
			t.Errorf("columns=%d: QueueIndex() = %d", columns, g.QueueIndex())
		}
	}
}

func TestKeyTap(t *testing.T) {
	env := newTestEnv(t, ModeFixedTime)
	g := env.game

	head, _ := g.Head()
	if !g.KeyTap(head.Cell) {
		t.Fatal("key on the head column should hit")
	}
	g.Advance()

	if g.KeyTap(-1) || g.KeyTap(4) {
		t.Error("keys outside the lane should be ignored")
	}

	env.clock.Add(10 * time.Millisecond)
	head, _ = g.Head()
	if !g.KeyTap((head.Cell + 2) % 4) {
		t.Fatal("key on an empty column should miss")
	}
	if env.audio.count(EffectErr) != 1 {
		t.Errorf("effects = %v", env.audio.effects)
	}
}

func TestBestScore(t *testing.T) {
	env := newTestEnv(t, ModeEndless)
	g := env.game

	env.prefs.Set("endless-best-score", "3", PrefTTLDays)
	env.prefs.Set("endless-best-tap-rate", "1.5", PrefTTLDays)
	if err := g.Restart(); err != nil {
		t.Fatal(err)
	}
	if p := g.Panel(); p.Best.Score != 3 || p.Best.Rate != 1.5 {
		t.Fatalf("loaded best = %+v", p.Best)
	}

	tests := []struct {
		name  string
		score int
		rate  float64
		want  bool
	}{
		{"lower score", 2, 9, false},
		{"same score lower rate", 3, 1.0, false},
		{"same score higher rate", 3, 2.0, true},
		{"higher score", 4, 0.5, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g.best = Best{Score: 3, Rate: 1.5}
			if got := g.saveBest(tc.score, tc.rate); got != tc.want {
				t.Errorf("saveBest(%d, %v) = %v, expected %v", tc.score, tc.rate, got, tc.want)
			}
		})
	}

	v, _ := env.prefs.Get("endless-best-score")
	if v != "4" {
		t.Errorf("stored best = %q, expected 4", v)
	}

	// Practice keeps no records
	if err := g.SetMode(ModePractice); err != nil {
		t.Fatal(err)
	}
	if g.saveBest(100, 10) {
		t.Error("practice should not record a best score")
	}
}

func TestLayersNotReadyRetries(t *testing.T) {
	clock := newFakeClock()
	g := NewGame(DefaultOptions(), ModeFixedTime, Viewport{}, Deps{Clock: clock})

	if !g.Panel().Error {
		t.Fatal("zero viewport should raise the error flag")
	}
	if err := g.Restart(); !errors.Is(err, ErrLayersNotReady) || !errors.Is(err, ErrViewportNotReady) {
		t.Fatalf("Restart() error = %v", err)
	}
	if g.sched.Pending() != 1 {
		t.Errorf("Pending() = %d, expected one retry", g.sched.Pending())
	}
	if g.KeyTap(0) {
		t.Error("taps must be ignored without a layout")
	}

	// Viewport arrives; the retry picks it up
	g.vp = portrait
	clock.Add(time.Second)
	g.Advance()
	if g.Panel().Error || !g.Geometry().Valid() {
		t.Error("retry should recover once the viewport is usable")
	}
}

func TestResizeDebounced(t *testing.T) {
	env := newTestEnv(t, ModeEndless)
	g := env.game
	env.hitHead(t)
	env.hitHead(t)

	g.Resize(Viewport{Width: 300, Height: 800})
	env.clock.Add(100 * time.Millisecond)
	g.Advance()
	g.Resize(Viewport{Width: 200, Height: 800})

	env.clock.Add(150 * time.Millisecond)
	g.Advance()
	if g.Geometry().BlockSize != 100 {
		t.Fatalf("resize applied before the debounce window closed")
	}

	env.clock.Add(50 * time.Millisecond)
	g.Advance()
	bs := g.Geometry().BlockSize
	if bs != 50 {
		t.Fatalf("BlockSize = %d, expected 50", bs)
	}

	head, _ := g.Head()
	r := g.layers[head.Layer].CellRect(head.Index, g.Geometry())
	if r.Y != 800-2*bs {
		t.Errorf("head row at y=%d after resize, expected %d", r.Y, 800-2*bs)
	}
	if g.Score() != 2 {
		t.Errorf("resize changed score to %d", g.Score())
	}
}

func TestSettersValidate(t *testing.T) {
	env := newTestEnv(t, ModeFixedTime)
	g := env.game

	if err := g.SetColumns(9); !errors.Is(err, config.ErrInvalidColumns) {
		t.Errorf("SetColumns(9) error = %v", err)
	}
	if err := g.SetDuration(0); !errors.Is(err, config.ErrInvalidDuration) {
		t.Errorf("SetDuration(0) error = %v", err)
	}
	if err := g.SetMode(Mode(9)); err == nil {
		t.Error("SetMode(9) should fail")
	}

	if err := g.SetColumns(5); err != nil {
		t.Fatal(err)
	}
	if g.Geometry().BlockSize != 80 || len(g.layers[0].cells) != 90 {
		t.Errorf("after SetColumns(5): block=%d cells=%d", g.Geometry().BlockSize, len(g.layers[0].cells))
	}
	if err := g.SetDuration(30); err != nil {
		t.Fatal(err)
	}
	if g.Panel().TimeLeft != 30 {
		t.Errorf("TimeLeft = %d, expected 30", g.Panel().TimeLeft)
	}
}

func TestLevelKey(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{0, "text-level-1"},
		{2.5, "text-level-1"},
		{2.51, "text-level-2"},
		{5, "text-level-2"},
		{7.5, "text-level-3"},
		{10, "text-level-4"},
		{10.01, "text-level-5"},
	}
	for _, tc := range tests {
		if got := LevelKey(tc.rate); got != tc.want {
			t.Errorf("LevelKey(%v) = %q, expected %q", tc.rate, got, tc.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
		got, err = ParseMode(m.Code())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.Code(), got, err)
		}
	}
	if _, err := ParseMode("arcade"); err == nil {
		t.Error("ParseMode should reject unknown names")
	}
}
