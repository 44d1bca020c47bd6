// Package audio synthesizes the game's sound cues and engine hum with beep.
package audio

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/pkg/errors"

	"github.com/tomz197/asteroidfield/internal/game"
)

const sampleRate = beep.SampleRate(44100)

// engineHum is an endless low rumble whose loudness follows a target set
// from the game goroutine. The level glides towards the target to avoid
// clicks.
type engineHum struct {
	target atomic.Uint64 // math.Float64bits of the intensity in [0, 1]
	level  float64
	phase  float64
	seed   uint32
	rate   beep.SampleRate
}

func (h *engineHum) set(intensity float64) {
	h.target.Store(math.Float64bits(math.Max(0, math.Min(1, intensity))))
}

func (h *engineHum) intensity() float64 {
	return math.Float64frombits(h.target.Load())
}

func (h *engineHum) Stream(samples [][2]float64) (n int, ok bool) {
	target := h.intensity()
	glide := 1 / (0.05 * float64(h.rate)) // ~50ms to settle
	for i := range samples {
		h.level += (target - h.level) * glide
		freq := 45 + 30*h.level

		h.seed = h.seed*1664525 + 1013904223
		noise := float64(h.seed)/float64(math.MaxUint32)*2 - 1

		v := h.level * 0.18 * (2*(h.phase-0.5) + 0.4*noise)
		samples[i][0] = v
		samples[i][1] = v

		h.phase += freq / float64(h.rate)
		h.phase -= math.Floor(h.phase)
	}
	return len(samples), true
}

func (h *engineHum) Err() error { return nil }

// Player is a game.Audio that plays through the system speaker.
type Player struct {
	rate beep.SampleRate
	play func(...beep.Streamer)
	hum  *engineHum
}

var _ game.Audio = (*Player)(nil)

// NewPlayer opens the speaker and starts the engine hum. It fails when no
// audio device is available; callers fall back to a silent game.
func NewPlayer() (*Player, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return nil, errors.Wrap(err, "audio: init speaker")
	}
	p := newPlayer(sampleRate, speaker.Play)
	p.play(p.hum)
	return p, nil
}

func newPlayer(rate beep.SampleRate, play func(...beep.Streamer)) *Player {
	return &Player{
		rate: rate,
		play: play,
		hum:  &engineHum{rate: rate, seed: 1},
	}
}

// Play starts a one-shot cue. It never blocks on the audio device.
func (p *Player) Play(c game.Cue) {
	if s := cueStreamer(c, p.rate); s != nil {
		p.play(s)
	}
}

// SetEngine sets the engine hum intensity in [0, 1].
func (p *Player) SetEngine(intensity float64) {
	p.hum.set(intensity)
}

// Close silences everything.
func (p *Player) Close() {
	p.hum.set(0)
	speaker.Clear()
}
