// Package audio plays the game's sound effects through the system speaker.
package audio

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"

	"github.com/vovakirdan/tui-tiles/internal/config"
	"github.com/vovakirdan/tui-tiles/internal/tiles"
)

// Player mixes effects into a single speaker stream.
// Until Init succeeds every PlayEffect is a no-op, so a missing audio device
// only costs sound.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	rate        beep.SampleRate
	volume      float64
	enabled     bool
	initialized bool
	custom      map[tiles.Effect]*beep.Buffer
	logger      *log.Logger
}

// NewPlayer creates a player from the audio configuration.
func NewPlayer(cfg config.AudioConfig, logger *log.Logger) *Player {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	rate := cfg.SampleRate
	if rate <= 0 {
		rate = config.DefaultTilesConfig().Audio.SampleRate
	}
	return &Player{
		mixer:   &beep.Mixer{},
		rate:    beep.SampleRate(rate),
		volume:  cfg.Volume,
		enabled: cfg.Enabled,
		custom:  make(map[tiles.Effect]*beep.Buffer),
		logger:  logger,
	}
}

// Init opens the speaker and loads any configured WAV files.
// Load failures are logged and fall back to the built-in effects.
func (p *Player) Init(files config.SoundFiles) error {
	for e, path := range map[tiles.Effect]string{
		tiles.EffectTap: files.Tap,
		tiles.EffectErr: files.Err,
		tiles.EffectEnd: files.End,
	} {
		if path == "" {
			continue
		}
		if err := p.LoadFile(e, path); err != nil {
			p.logger.Warn("custom sound ignored", "effect", e, "err", err)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("audio: init speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// LoadFile replaces effect e with a WAV file, resampled to the player's rate.
func (p *Player) LoadFile(e tiles.Effect, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("audio: open %s: %w", path, err)
	}
	defer f.Close()

	buf, err := p.decode(f)
	if err != nil {
		return fmt.Errorf("audio: decode %s: %w", path, err)
	}

	p.mu.Lock()
	p.custom[e] = buf
	p.mu.Unlock()
	return nil
}

func (p *Player) decode(r io.Reader) (*beep.Buffer, error) {
	streamer, format, err := wav.Decode(r)
	if err != nil {
		return nil, err
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != p.rate {
		s = beep.Resample(4, format.SampleRate, p.rate, streamer)
	}
	buf := beep.NewBuffer(beep.Format{SampleRate: p.rate, NumChannels: 2, Precision: 2})
	buf.Append(s)
	if err := streamer.Err(); err != nil {
		return nil, err
	}
	return buf, nil
}

// PlayEffect implements tiles.Audio.
func (p *Player) PlayEffect(e tiles.Effect) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized || !p.enabled {
		return
	}
	s := p.streamer(e)
	if s == nil {
		p.logger.Warn("unknown sound effect", "effect", e)
		return
	}

	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// streamer builds a fresh stream for e. Caller holds p.mu.
func (p *Player) streamer(e tiles.Effect) beep.Streamer {
	if buf, ok := p.custom[e]; ok {
		return newVolume(buf.Streamer(0, buf.Len()), p.volume)
	}
	switch e {
	case tiles.EffectTap:
		return tapSound(p.rate, p.volume)
	case tiles.EffectErr:
		return errSound(p.rate, p.volume)
	case tiles.EffectEnd:
		return endSound(p.rate, p.volume)
	}
	return nil
}

// SetEnabled turns playback on or off.
func (p *Player) SetEnabled(on bool) {
	p.mu.Lock()
	p.enabled = on
	p.mu.Unlock()
}

// Enabled reports whether playback is on.
func (p *Player) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Toggle flips playback and returns the new state.
func (p *Player) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = !p.enabled
	return p.enabled
}

// Close stops all sounds and releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	p.initialized = false
}
