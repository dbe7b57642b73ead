package tiles

import (
	"sync"
	"time"
)

// Effect names a sound played by the audio collaborator.
type Effect string

const (
	EffectTap Effect = "tap"
	EffectErr Effect = "err"
	EffectEnd Effect = "end"
)

// Audio plays effects. Implementations must not block and swallow their own
// failures.
type Audio interface {
	PlayEffect(e Effect)
}

// Preferences is a best-effort key/value store with per-key expiry.
// Get returns "" for missing or expired keys.
type Preferences interface {
	Get(key string) (string, error)
	Set(key, value string, ttlDays int) error
}

// Localizer looks up display text, returning the key when it has no entry.
type Localizer interface {
	Text(key string) string
}

// Result is a finished run.
type Result struct {
	Mode     Mode
	Score    int
	Rate     float64 // Taps per second, 0 when not computed
	Elapsed  time.Duration
	Columns  int
	NewBest  bool
	EndedAt  time.Time
	Duration time.Duration // Configured length for fixed-time runs
}

// ResultSink receives finished runs, typically for score history.
type ResultSink interface {
	RecordResult(r Result) error
}

// PrefTTLDays is the expiry applied to every stored preference.
const PrefTTLDays = 100

type nopAudio struct{}

func (nopAudio) PlayEffect(Effect) {}

type keyText struct{}

func (keyText) Text(key string) string { return key }

type nopSink struct{}

func (nopSink) RecordResult(Result) error { return nil }

// MemoryPreferences keeps preferences in memory. Expiry is not enforced.
// It is safe for concurrent use.
type MemoryPreferences struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryPreferences returns an empty in-memory store.
func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{values: make(map[string]string)}
}

// Get returns the stored value or "".
func (p *MemoryPreferences) Get(key string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.values[key], nil
}

// Set stores value under key.
func (p *MemoryPreferences) Set(key, value string, _ int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
	return nil
}
