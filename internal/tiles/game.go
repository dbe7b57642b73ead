package tiles

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-tiles/internal/config"
	"github.com/vovakirdan/tui-tiles/internal/core"
)

// ErrLayersNotReady is returned by Restart when the layers cannot be laid out.
// A retry is scheduled automatically.
var ErrLayersNotReady = errors.New("tiles: layers not ready")

// Deps are the collaborators of a session. Nil fields get silent defaults.
type Deps struct {
	Clock   Clock
	Audio   Audio
	Prefs   Preferences
	Text    Localizer
	Results ResultSink
	Logger  *log.Logger
	Rand    *rand.Rand
}

// Best is a stored record for one mode.
type Best struct {
	Score int
	Rate  float64
}

// Game is one player's session: the layer pair, the expected-tap queue and
// the mode state machine. All methods must be called from a single goroutine.
type Game struct {
	opts  Options
	mode  Mode
	clock Clock
	sched *Scheduler
	rng   *rand.Rand

	audio   Audio
	prefs   Preferences
	text    Localizer
	results ResultSink
	log     *log.Logger

	vp     Viewport
	geom   Geometry
	layers [2]*Layer
	queue  TapQueue

	state     State
	score     int
	startedAt time.Time
	remaining int // Seconds left in fixed-time mode
	elapsed   int // Ticks since start
	lastTapAt time.Time
	clickable bool
	active    bool
	layerErr  bool
	finalRate float64
	best      Best
	newBest   bool

	resizeTimer TimerID
}

// NewGame creates a session and lays out the lane for vp.
// If vp is not usable yet the game reports an error state and retries.
func NewGame(opts Options, mode Mode, vp Viewport, deps Deps) *Game {
	opts.fillDefaults()
	if !mode.Valid() {
		mode = ModeFixedTime
	}

	g := &Game{
		opts:    opts,
		mode:    mode,
		clock:   deps.Clock,
		rng:     deps.Rand,
		audio:   deps.Audio,
		prefs:   deps.Prefs,
		text:    deps.Text,
		results: deps.Results,
		log:     deps.Logger,
		vp:      vp,
		active:  true,
	}
	if g.clock == nil {
		g.clock = SystemClock{}
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if g.audio == nil {
		g.audio = nopAudio{}
	}
	if g.prefs == nil {
		g.prefs = NewMemoryPreferences()
	}
	if g.text == nil {
		g.text = keyText{}
	}
	if g.results == nil {
		g.results = nopSink{}
	}
	if g.log == nil {
		g.log = log.New(io.Discard)
	}
	g.sched = NewScheduler(g.clock)
	g.buildLayers()

	//nolint:errcheck // Failure sets the error flag and schedules a retry
	g.Restart()
	return g
}

func (g *Game) buildLayers() {
	for i := range g.layers {
		g.layers[i] = NewLayer(i, g.opts.Columns, g.opts.BufferRows)
	}
}

// Restart resets the session to idle and regenerates both layers: the front
// one from the bottom of the lane, the back one stacked above it.
// Every pending timer is cancelled first.
func (g *Game) Restart() error {
	g.sched.CancelAll()
	g.resizeTimer = 0

	g.queue.Reset()
	g.state = StateIdle
	g.score = 0
	g.startedAt = time.Time{}
	g.elapsed = 0
	g.remaining = max(int(g.opts.Duration/time.Second), 1)
	g.lastTapAt = time.Time{}
	g.finalRate = 0
	g.newBest = false
	g.clickable = false
	g.best = g.loadBest()

	geom, err := ComputeGeometry(g.vp, g.opts.Columns, g.opts.DesktopMaxWidth, g.opts.TouchRows)
	if err != nil || g.layers[0] == nil || g.layers[1] == nil {
		if err == nil {
			err = errors.New("tiles: layer pair missing")
		}
		g.layerErr = true
		g.geom = Geometry{}
		g.log.Warn("restart failed, retrying", "err", err, "in", g.opts.RetryDelay)
		g.sched.ScheduleOnce(g.opts.RetryDelay, func() {
			//nolint:errcheck // Reschedules itself on failure
			g.Restart()
		})
		return fmt.Errorf("%w: %w", ErrLayersNotReady, err)
	}

	g.geom = geom
	g.layerErr = false
	bs := geom.BlockSize
	g.queue.Push(g.layers[0].Generate(g.rng, bs, false, 0)...)
	g.queue.Push(g.layers[1].Generate(g.rng, bs, true, 0)...)
	g.clickable = true

	g.log.Debug("restart", "mode", g.mode, "columns", g.opts.Columns, "block", bs)
	return nil
}

// Advance runs due timers. Call it once per UI frame.
func (g *Game) Advance() {
	g.sched.Advance()
}

// Resize records a new viewport. Layout follows after the resize debounce;
// repeated calls within the window collapse into one.
func (g *Game) Resize(vp Viewport) {
	g.vp = vp
	if g.resizeTimer != 0 {
		g.sched.Cancel(g.resizeTimer)
	}
	g.resizeTimer = g.sched.ScheduleOnce(g.opts.ResizeDebounce, g.applyResize)
}

func (g *Game) applyResize() {
	g.resizeTimer = 0
	if g.layerErr || !g.geom.Valid() {
		//nolint:errcheck // Failure schedules a retry
		g.Restart()
		return
	}

	geom, err := ComputeGeometry(g.vp, g.opts.Columns, g.opts.DesktopMaxWidth, g.opts.TouchRows)
	if err != nil {
		g.log.Warn("resize ignored", "err", err)
		return
	}
	old := g.geom.BlockSize
	g.geom = geom
	if old != geom.BlockSize {
		for _, l := range g.layers {
			l.Relayout(old, geom.BlockSize)
		}
	}
	g.log.Debug("resize", "width", g.vp.Width, "height", g.vp.Height, "block", geom.BlockSize)
}

// SetMode switches mode and restarts.
func (g *Game) SetMode(m Mode) error {
	if !m.Valid() {
		return fmt.Errorf("tiles: invalid mode %d", int(m))
	}
	g.mode = m
	return g.Restart()
}

// SetColumns changes the lane width in tiles and restarts.
func (g *Game) SetColumns(n int) error {
	if err := config.ValidateColumns(n); err != nil {
		return err
	}
	g.opts.Columns = n
	g.buildLayers()
	return g.Restart()
}

// SetDuration changes the fixed-time run length and restarts.
func (g *Game) SetDuration(secs int) error {
	if err := config.ValidateDuration(secs); err != nil {
		return err
	}
	g.opts.Duration = time.Duration(secs) * time.Second
	return g.Restart()
}

// SetActive enables or disables input, e.g. while a menu covers the lane.
func (g *Game) SetActive(active bool) {
	g.active = active
}

func (g *Game) start() {
	g.state = StateRunning
	g.startedAt = g.clock.Now()
	if g.mode.Timed() {
		g.sched.ScheduleTick(time.Second, g.onTick)
	}
	g.log.Debug("start", "mode", g.mode)
}

func (g *Game) onTick() {
	if g.state != StateRunning {
		g.sched.CancelTick()
		return
	}
	g.elapsed++
	if g.mode != ModeFixedTime {
		return
	}

	g.remaining--
	if g.remaining <= 0 {
		g.remaining = 0
		g.sched.CancelTick()
		g.play(EffectEnd)
		g.log.Debug("time up", "score", g.score)
		g.gameOver(g.wallRate())
	}
}

// wallRate is score per wall-clock second since the first hit.
func (g *Game) wallRate() float64 {
	if g.startedAt.IsZero() || g.score == 0 {
		return 0
	}
	secs := g.clock.Now().Sub(g.startedAt).Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(g.score) / secs
}

func (g *Game) gameOver(rate float64) {
	if g.state == StateOver {
		return
	}
	g.state = StateOver
	g.clickable = false
	g.sched.CancelTick()
	g.finalRate = rate

	now := g.clock.Now()
	var elapsed time.Duration
	if !g.startedAt.IsZero() {
		elapsed = now.Sub(g.startedAt)
	}
	g.newBest = g.saveBest(g.score, rate)

	res := Result{
		Mode:    g.mode,
		Score:   g.score,
		Rate:    rate,
		Elapsed: elapsed,
		Columns: g.opts.Columns,
		NewBest: g.newBest,
		EndedAt: now,
	}
	if g.mode == ModeFixedTime {
		res.Duration = g.opts.Duration
	}
	if err := g.results.RecordResult(res); err != nil {
		g.log.Warn("record result failed", "err", err)
	}
	g.log.Debug("game over", "mode", g.mode, "score", g.score, "rate", rate, "best", g.newBest)
}

func (g *Game) play(e Effect) {
	g.audio.PlayEffect(e)
}

func (g *Game) loadBest() Best {
	var b Best
	key := g.mode.BestScoreKey()
	if key == "" {
		return b
	}
	if v := g.pref(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			b.Score = n
		}
	}
	if v := g.pref(g.mode.BestRateKey()); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			b.Rate = f
		}
	}
	return b
}

// saveBest stores the run if it beats the record: a higher score, or the same
// score at a higher rate.
func (g *Game) saveBest(score int, rate float64) bool {
	key := g.mode.BestScoreKey()
	if key == "" {
		return false
	}
	if score < g.best.Score || (score == g.best.Score && rate <= g.best.Rate) {
		return false
	}
	g.best = Best{Score: score, Rate: rate}
	if err := g.prefs.Set(key, strconv.Itoa(score), PrefTTLDays); err != nil {
		g.log.Warn("save best score failed", "err", err)
	}
	if err := g.prefs.Set(g.mode.BestRateKey(), strconv.FormatFloat(rate, 'f', -1, 64), PrefTTLDays); err != nil {
		g.log.Warn("save best rate failed", "err", err)
	}
	return true
}

func (g *Game) pref(key string) string {
	v, err := g.prefs.Get(key)
	if err != nil {
		g.log.Warn("read preference failed", "key", key, "err", err)
		return ""
	}
	return v
}

// Rate returns taps per second. While running it needs two elapsed ticks and
// a point scored; after game over it is the final rate. Practice has none.
func (g *Game) Rate() float64 {
	switch {
	case g.mode == ModePractice:
		return 0
	case g.state == StateOver:
		return g.finalRate
	case g.state != StateRunning:
		return 0
	case g.elapsed < 2 || g.score == 0:
		return 0
	}
	return g.wallRate()
}

// LevelKey returns the localization key rating a tap rate.
func LevelKey(rate float64) string {
	switch {
	case rate <= 2.5:
		return "text-level-1"
	case rate <= 5:
		return "text-level-2"
	case rate <= 7.5:
		return "text-level-3"
	case rate <= 10:
		return "text-level-4"
	}
	return "text-level-5"
}

// Panel is what the presentation shows next to the lane.
type Panel struct {
	Mode      Mode
	ModeLabel string
	State     State
	Score     int
	Best      Best
	NewBest   bool
	TimeLeft  int // Fixed-time only
	Elapsed   int // Seconds since start
	Rate      float64
	RateText  string // Empty in practice mode
	LevelText string // Set once a timed run is over
	Over      bool
	Error     bool
	Clickable bool
}

// Panel returns the current display state.
func (g *Game) Panel() Panel {
	p := Panel{
		Mode:      g.mode,
		ModeLabel: g.text.Text(g.mode.LabelKey()),
		State:     g.state,
		Score:     g.score,
		Best:      g.best,
		NewBest:   g.newBest,
		TimeLeft:  g.remaining,
		Elapsed:   g.elapsed,
		Rate:      g.Rate(),
		Over:      g.state == StateOver,
		Error:     g.layerErr,
		Clickable: g.clickable,
	}
	if g.mode.Timed() {
		if p.Rate == 0 {
			p.RateText = g.text.Text("calculating")
		} else {
			p.RateText = strconv.FormatFloat(p.Rate, 'f', 2, 64)
		}
		if p.Over {
			p.LevelText = g.text.Text(LevelKey(p.Rate))
		}
	}
	return p
}

// TileView is a cell positioned for drawing.
type TileView struct {
	ID       string
	Rect     core.Rect // Lane coordinates
	Tag      Tag
	Variant  int
	Occupied bool
}

// Tiles returns every cell that overlaps the viewport.
func (g *Game) Tiles() []TileView {
	if !g.geom.Valid() {
		return nil
	}
	view := core.NewRect(0, 0, g.geom.LaneWidth, g.geom.Height)
	var out []TileView
	for _, l := range g.layers {
		for j := range l.cells {
			r := l.CellRect(j, g.geom)
			if !r.Intersects(view) {
				continue
			}
			c := l.cells[j]
			out = append(out, TileView{ID: c.ID, Rect: r, Tag: c.Tag, Variant: c.Variant, Occupied: c.Occupied})
		}
	}
	return out
}

// CellAt returns the cell under a lane point, or nil if there is none.
func (g *Game) CellAt(x, y int) *Target {
	for _, l := range g.layers {
		if c, ok := l.CellAt(x, y, g.geom); ok {
			return &Target{ID: c.ID, Layer: l.index, Index: c.Index, Occupied: c.Occupied}
		}
	}
	return nil
}

// Mode returns the current mode.
func (g *Game) Mode() Mode { return g.mode }

// State returns the lifecycle phase.
func (g *Game) State() State { return g.state }

// Score returns the taps scored this run.
func (g *Game) Score() int { return g.score }

// QueueIndex returns the number of resolved rows.
func (g *Game) QueueIndex() int { return g.queue.Index() }

// Head returns the next expected tap.
func (g *Game) Head() (ExpectedTap, bool) { return g.queue.Head() }

// Geometry returns the current layout.
func (g *Game) Geometry() Geometry { return g.geom }

// Options returns the session options.
func (g *Game) Options() Options { return g.opts }

// Over reports whether the run has ended.
func (g *Game) Over() bool { return g.state == StateOver }
