package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tomz197/asteroidfield/internal/input"
	"github.com/tomz197/asteroidfield/internal/object"
	"github.com/tomz197/asteroidfield/internal/physics"
	"github.com/tomz197/asteroidfield/internal/timer"
)

type keys map[input.Key]bool

func (k keys) IsPressed(key input.Key) bool { return k[key] }

type recAudio struct {
	cues   []Cue
	engine float64
}

func (a *recAudio) Play(c Cue)              { a.cues = append(a.cues, c) }
func (a *recAudio) SetEngine(level float64) { a.engine = level }

func (a *recAudio) index(c Cue) int {
	for i, got := range a.cues {
		if got == c {
			return i
		}
	}
	return -1
}

type recRenderer struct {
	frames []Frame
}

func (r *recRenderer) Render(f Frame) { r.frames = append(r.frames, f) }

func (r *recRenderer) last() Frame { return r.frames[len(r.frames)-1] }

type harness struct {
	t        *testing.T
	g        *Game
	world    *fakeWorld
	clock    *timer.ManualClock
	audio    *recAudio
	renderer *recRenderer
}

// newHarness builds a game on the fake world with an empty asteroid field
// unless mutate says otherwise.
func newHarness(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()
	cfg := DefaultConfig()
	cfg.InitialCapacity = 0
	if mutate != nil {
		mutate(&cfg)
	}

	h := &harness{
		t:        t,
		world:    newFakeWorld(),
		clock:    timer.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		audio:    &recAudio{},
		renderer: &recRenderer{},
	}
	g, err := New(cfg, Options{
		World:    h.world,
		Clock:    h.clock,
		Rand:     rand.New(rand.NewSource(7)),
		Renderer: h.renderer,
		Audio:    h.audio,
	})
	require.NoError(t, err)
	h.g = g
	return h
}

// tick advances the clock by one tick interval and runs Tick.
func (h *harness) tick(k keys) {
	h.clock.Advance(h.g.cfg.TickInterval)
	if k == nil {
		h.g.Tick(nil)
		return
	}
	h.g.Tick(k)
}

// start presses and releases the start key.
func (h *harness) start() {
	h.t.Helper()
	h.tick(keys{input.KeyStart: true})
	h.tick(nil)
	require.Equal(h.t, Playing, h.g.State())
}

// rock places an asteroid directly, bypassing the spawn annulus.
func (h *harness) rock(pos physics.Vec2, size int) *object.Entity {
	h.t.Helper()
	a, err := h.g.spawnAsteroid(h.g.newOccupancy(), pos, size, physics.Vec2{}, physics.Vec2{})
	require.NoError(h.t, err)
	return a
}
