package game

import (
	"github.com/pkg/errors"

	"github.com/tomz197/asteroidfield/internal/input"
	"github.com/tomz197/asteroidfield/internal/object"
)

// State is the session phase. Paused is tracked separately and only exists
// while Playing.
type State uint8

const (
	AwaitingStart State = iota
	Playing
	GameOver
)

func (s State) String() string {
	switch s {
	case AwaitingStart:
		return "awaiting-start"
	case Playing:
		return "playing"
	case GameOver:
		return "game-over"
	}
	return "unknown"
}

// MarshalText renders the state by name in JSON frames.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for _, candidate := range []State{AwaitingStart, Playing, GameOver} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return errors.Errorf("game: unknown state %q", text)
}

// edges tracks the previous level of the edge-triggered keys.
type edges struct {
	start, pause bool
}

// handleStateInput applies start, restart and pause. All three react to the
// key going down, never to it being held.
func (g *Game) handleStateInput(c Controls) {
	start := c.IsPressed(input.KeyStart)
	pause := c.IsPressed(input.KeyPause)
	startEdge := start && !g.edges.start
	pauseEdge := pause && !g.edges.pause
	g.edges = edges{start: start, pause: pause}

	switch g.state {
	case AwaitingStart:
		if startEdge {
			g.startSession()
		}
	case Playing:
		if pauseEdge {
			g.SetPaused(!g.paused)
		}
	case GameOver:
		if startEdge {
			if err := g.Restart(); err != nil {
				g.log.Debug("restart ignored", "err", err)
			}
		}
	}
}

// SetPaused freezes or resumes the simulation. It is a no-op outside Playing.
func (g *Game) SetPaused(paused bool) {
	if g.state != Playing || g.paused == paused {
		return
	}
	g.paused = paused
	if paused {
		g.clock.Pause()
		g.audio.SetEngine(0)
	} else {
		g.clock.Resume()
	}
	g.log.Info("pause toggled", "paused", paused)
}

// Restart ends a finished session and starts a new one. It fails with
// ErrNotGameOver outside GameOver and with ErrRestartLocked while the
// restart latch is still closed.
func (g *Game) Restart() error {
	if g.state != GameOver {
		return ErrNotGameOver
	}
	if !g.allowRestart {
		return ErrRestartLocked
	}
	g.reset()
	g.log.Info("session restarted")
	g.startSession()
	return nil
}

// reset disposes everything and returns to AwaitingStart.
func (g *Game) reset() {
	for _, e := range g.live.All() {
		g.dispose(e)
	}
	g.timers.Clear()
	g.realTimers.Cancel(g.restartTimer)
	g.restartTimer = 0

	g.ship = nil
	g.score = 0
	g.capacity = g.cfg.InitialCapacity
	g.canFire = true
	g.paused = false
	g.clock.Resume()
	g.state = AwaitingStart
}

// startSession spawns a fresh ship at the origin and enters Playing.
func (g *Game) startSession() {
	ship := object.NewShip(g.cfg.ShipHealth)
	if err := g.spawn(ship); err != nil {
		g.log.Error("spawn ship", "err", err)
		return
	}
	g.ship = ship
	g.score = 0
	g.capacity = g.cfg.InitialCapacity
	g.canFire = true
	g.allowRestart = false
	g.lastRaise = g.clock.Now()
	g.state = Playing
	g.sessions++
	g.audio.Play(CueStart)
	g.log.Info("session started", "run", g.sessions)
}

// endSession moves to GameOver after the ship is destroyed. The restart latch
// opens once RestartDelay of real time has passed.
func (g *Game) endSession() {
	g.state = GameOver
	g.paused = false
	g.allowRestart = false
	g.audio.SetEngine(0)
	g.audio.Play(CueGameOver)

	g.realTimers.Cancel(g.restartTimer)
	g.restartTimer = g.realTimers.After(g.cfg.RestartDelay, func() {
		g.allowRestart = true
		g.restartTimer = 0
	})
	g.log.Info("game over", "score", g.score)
}
