package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Wave selects an oscillator shape.
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator produces a fixed-length tone. A non-zero slide moves the
// frequency linearly to freq+slide over the duration.
type oscillator struct {
	freq, slide float64
	phase       float64
	pos, length int
	wave        Wave
	rate        beep.SampleRate
	rng         *rand.Rand
}

func newOscillator(freq, slide float64, d time.Duration, wave Wave, rate beep.SampleRate) *oscillator {
	return &oscillator{
		freq:   freq,
		slide:  slide,
		length: rate.N(d),
		wave:   wave,
		rate:   rate,
		rng:    rand.New(rand.NewSource(int64(freq*1000) + int64(d))),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.pos >= o.length {
			return i, i > 0
		}
		var v float64
		switch o.wave {
		case WaveSine:
			v = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			v = 1
			if o.phase >= 0.5 {
				v = -1
			}
		case WaveSaw:
			v = 2 * (o.phase - 0.5)
		case WaveNoise:
			v = o.rng.Float64()*2 - 1
		}
		samples[i][0] = v
		samples[i][1] = v

		freq := o.freq + o.slide*float64(o.pos)/float64(o.length)
		o.phase += freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.pos++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope shapes a stream with a linear attack and an exponential tail.
type envelope struct {
	s              beep.Streamer
	pos            int
	attack, length int
	decay          float64 // per-second exponent after the attack
	rate           beep.SampleRate
}

func newEnvelope(s beep.Streamer, d, attack time.Duration, decay float64, rate beep.SampleRate) *envelope {
	return &envelope{s: s, attack: rate.N(attack), length: rate.N(d), decay: decay, rate: rate}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	if e.pos >= e.length {
		return 0, false
	}
	if remaining := e.length - e.pos; len(samples) > remaining {
		samples = samples[:remaining]
	}
	n, ok = e.s.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.pos < e.attack {
			vol = float64(e.pos) / float64(e.attack)
		} else {
			vol = math.Exp(-e.decay * float64(e.pos-e.attack) / float64(e.rate))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.s.Err() }

// withVolume scales a stream linearly; zero or less is silent.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// tone is an enveloped oscillator.
func tone(freq, slide float64, d time.Duration, wave Wave, decay, vol float64, rate beep.SampleRate) beep.Streamer {
	osc := newOscillator(freq, slide, d, wave, rate)
	return withVolume(newEnvelope(osc, d, 5*time.Millisecond, decay, rate), vol)
}
