// Package game is the simulation core: it owns the live entities, spawns and
// culls asteroids around the ship, resolves collisions, runs fragmentation
// and shrapnel, tracks score and difficulty, and drives the session state
// machine. Rendering, audio and input are collaborators behind small
// interfaces; the physics engine sits behind physics.World.
//
// A Game is single-threaded. Tick runs one complete simulation step and must
// not be called concurrently.
package game

import (
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/tomz197/asteroidfield/internal/object"
	"github.com/tomz197/asteroidfield/internal/physics"
	"github.com/tomz197/asteroidfield/internal/timer"
)

// Options wires a Game to its collaborators. Every field is optional.
type Options struct {
	// World is the physics engine. Nil creates a Box2D world.
	World physics.World
	// Clock is real time. Nil means the system clock. Game time is derived
	// from it and stops while paused.
	Clock timer.Clock
	// Rand drives every random choice. Nil seeds from the clock.
	Rand *rand.Rand
	// SessionID names the game in logs and frames. Empty generates a UUID.
	SessionID string

	Renderer Renderer
	Audio    Audio
	Logger   *log.Logger
}

// Game is one play session host: it survives restarts and owns the world.
type Game struct {
	cfg   Config
	id    string
	world physics.World
	rng   *rand.Rand
	log   *log.Logger

	renderer Renderer
	audio    Audio

	clock      *timer.PausableClock
	timers     *timer.Scheduler // game time: grace, ttl, cooldown
	realTimers *timer.Scheduler // real time: restart latch

	live *liveSet
	grid *physics.SpatialGrid
	ship *object.Entity

	state        State
	paused       bool
	allowRestart bool
	restartTimer timer.ID
	edges        edges

	score     int
	capacity  int
	lastRaise time.Time
	canFire   bool

	nextID   object.ID
	ticks    uint64
	sessions int
}

// New creates a game waiting for the start key. It fails if the
// configuration is invalid or the physics engine cannot be initialised.
func New(cfg Config, opts Options) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	world := opts.World
	if world == nil {
		w, err := physics.NewBox2DWorld(physics.DefaultSettings())
		if err != nil {
			return nil, errors.Wrap(err, "initialise physics")
		}
		world = w
	}

	base := opts.Clock
	if base == nil {
		base = timer.SystemClock{}
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(base.Now().UnixNano()))
	}

	id := opts.SessionID
	if id == "" {
		id = uuid.NewV4().String()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.With("session", id)

	var renderer Renderer = nopRenderer{}
	if opts.Renderer != nil {
		renderer = opts.Renderer
	}
	var audio Audio = nopAudio{}
	if opts.Audio != nil {
		audio = opts.Audio
	}

	clock := timer.NewPausableClock(base)
	cellSize := cfg.OverlapEpsilon
	if cellSize < 1 {
		cellSize = 1
	}

	g := &Game{
		cfg:          cfg,
		id:           id,
		world:        world,
		rng:          rng,
		log:          logger,
		renderer:     renderer,
		audio:        audio,
		clock:        clock,
		timers:       timer.NewScheduler(clock),
		realTimers:   timer.NewScheduler(base),
		live:         newLiveSet(),
		grid:         physics.NewSpatialGrid(cellSize),
		state:        AwaitingStart,
		allowRestart: true,
		capacity:     cfg.InitialCapacity,
		canFire:      true,
	}
	g.log.Info("game created")
	return g, nil
}

// Tick runs one step of the simulation:
//
//	timers → state input → cull → spawn → steer → step → sync → resolve →
//	difficulty → render
//
// While paused only the state input and render phases run. After game over
// the world keeps stepping so shrapnel drifts, but nothing spawns, collides
// or listens to the ship controls.
func (g *Game) Tick(c Controls) {
	if c == nil {
		c = noControls{}
	}
	g.ticks++

	g.realTimers.RunDue()
	g.handleStateInput(c)

	switch {
	case g.state == Playing && !g.paused:
		g.timers.RunDue()
		g.cull()
		g.fillAsteroids()
		g.steer(c)
		g.world.Step(g.cfg.TickInterval.Seconds())
		g.syncAll()
		g.resolveCollisions()
		if g.state == Playing {
			g.raiseDifficulty()
			g.audio.SetEngine(g.engineIntensity())
		}
	case g.state == GameOver:
		g.timers.RunDue()
		g.world.Step(g.cfg.TickInterval.Seconds())
		g.syncAll()
	}

	g.renderer.Render(g.Frame())
}

// Frame builds the render projection of the current state.
func (g *Game) Frame() Frame {
	f := Frame{
		Session:      g.id,
		Tick:         g.ticks,
		State:        g.state,
		Paused:       g.paused,
		AllowRestart: g.allowRestart,
		Camera:       g.camera(),
		Score:        g.score,
		Entities:     make([]EntityView, 0, g.live.Len()),
	}
	if g.ship != nil {
		f.Health = g.ship.Health
		f.MaxHealth = g.ship.MaxHealth
	}
	for _, e := range g.live.entities {
		f.Entities = append(f.Entities, EntityView{
			ID:           e.ID,
			Kind:         e.Kind,
			Position:     e.Position,
			Rotation:     e.Rotation,
			Outline:      e.Outline,
			Invulnerable: e.Invulnerable(),
		})
	}
	return f
}

// ID returns the session identifier used in logs and spectator feeds.
func (g *Game) ID() string { return g.id }

// State returns the session phase.
func (g *Game) State() State { return g.state }

// Paused reports whether the simulation is frozen.
func (g *Game) Paused() bool { return g.paused }

// AllowRestart reports whether a restart would be accepted.
func (g *Game) AllowRestart() bool { return g.allowRestart }

// Score returns the current session score.
func (g *Game) Score() int { return g.score }

// Capacity returns the current asteroid population target.
func (g *Game) Capacity() int { return g.capacity }

// Ship returns the current ship, or nil before the first session. After game
// over it is the disposed ship of the finished session.
func (g *Game) Ship() *object.Entity { return g.ship }

// Entities returns a copy of the live entities of kind k.
func (g *Game) Entities(k object.Kind) []*object.Entity {
	return g.live.Snapshot(k)
}

// Count returns how many live entities have kind k.
func (g *Game) Count(k object.Kind) int {
	return g.live.Count(k)
}

// Config returns the configuration the game runs with.
func (g *Game) Config() Config { return g.cfg }
