package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// WaveType defines oscillator wave shapes.
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator generates a raw wave for a fixed number of samples.
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator creates a finite wave streamer.
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = rand.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack and release to a stream.
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	totalSamples   int
}

// NewEnvelope shapes s over duration with the given attack and release.
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer:       s,
		attackSamples:  rate.N(attack),
		releaseSamples: rate.N(release),
		totalSamples:   rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	if e.position >= e.totalSamples {
		return 0, false
	}
	n, ok = e.streamer.Stream(samples)

	releaseStart := e.totalSamples - e.releaseSamples
	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples && e.attackSamples > 0 {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		if e.position >= releaseStart && e.releaseSamples > 0 {
			vol = math.Max(float64(e.totalSamples-e.position)/float64(e.releaseSamples), 0)
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales a stream by a linear factor; 0 mutes it.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// Effect lengths.
const (
	tapDuration  = 60 * time.Millisecond
	errDuration  = 260 * time.Millisecond
	endNote      = 140 * time.Millisecond
	attackLength = 4 * time.Millisecond
)

// tapSound is a short bright blip.
func tapSound(rate beep.SampleRate, vol float64) beep.Streamer {
	osc := NewOscillator(1318.51, tapDuration, WaveSine, rate)
	return newVolume(NewEnvelope(osc, tapDuration, attackLength, 40*time.Millisecond, rate), vol)
}

// errSound is a low saw buzz with a noise burst on top.
func errSound(rate beep.SampleRate, vol float64) beep.Streamer {
	buzz := NewEnvelope(NewOscillator(110, errDuration, WaveSaw, rate), errDuration, attackLength, 120*time.Millisecond, rate)
	noise := NewEnvelope(NewOscillator(0, errDuration/3, WaveNoise, rate), errDuration/3, attackLength, 60*time.Millisecond, rate)
	mixed := beep.Mix(newVolume(buzz, 0.7), newVolume(noise, 0.25))
	return newVolume(beep.Take(rate.N(errDuration), mixed), vol)
}

// endSound is a falling three-note chime.
func endSound(rate beep.SampleRate, vol float64) beep.Streamer {
	notes := []float64{1046.50, 783.99, 523.25}
	parts := make([]beep.Streamer, 0, len(notes))
	for _, f := range notes {
		tone, err := generators.SineTone(rate, f)
		if err != nil {
			// Frequency above Nyquist for a tiny sample rate
			tone = NewOscillator(f, endNote, WaveSine, rate)
		}
		note := beep.Take(rate.N(endNote), tone)
		parts = append(parts, NewEnvelope(note, endNote, attackLength, 90*time.Millisecond, rate))
	}
	return newVolume(beep.Seq(parts...), vol)
}
