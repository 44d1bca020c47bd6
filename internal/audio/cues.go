package audio

import (
	"time"

	"github.com/gopxl/beep"

	"github.com/tomz197/asteroidfield/internal/game"
)

// gameOverDelay lets the explosion ring out before the jingle starts.
const gameOverDelay = 400 * time.Millisecond

// cueStreamer builds a fresh one-shot streamer for c, or nil for cues that
// have no sound.
func cueStreamer(c game.Cue, rate beep.SampleRate) beep.Streamer {
	switch c {
	case game.CueFire:
		return tone(1200, -700, 90*time.Millisecond, WaveSquare, 30, 0.12, rate)
	case game.CueImpact:
		return beep.Mix(
			tone(140, -60, 250*time.Millisecond, WaveSaw, 10, 0.25, rate),
			tone(0, 0, 120*time.Millisecond, WaveNoise, 25, 0.15, rate),
		)
	case game.CueExplosion:
		return beep.Mix(
			tone(0, 0, 900*time.Millisecond, WaveNoise, 4, 0.35, rate),
			tone(70, -40, 900*time.Millisecond, WaveSine, 3, 0.4, rate),
		)
	case game.CueRockBreak:
		return tone(0, 0, 180*time.Millisecond, WaveNoise, 18, 0.18, rate)
	case game.CueGameOver:
		note := 220 * time.Millisecond
		return beep.Seq(
			beep.Silence(rate.N(gameOverDelay)),
			tone(392, 0, note, WaveSquare, 3, 0.12, rate),
			tone(330, 0, note, WaveSquare, 3, 0.12, rate),
			tone(262, 0, note, WaveSquare, 3, 0.12, rate),
			tone(196, 0, 2*note, WaveSquare, 2, 0.12, rate),
		)
	case game.CueStart:
		note := 90 * time.Millisecond
		return beep.Seq(
			tone(523, 0, note, WaveSquare, 6, 0.1, rate),
			tone(784, 0, 2*note, WaveSquare, 4, 0.1, rate),
		)
	}
	return nil
}
