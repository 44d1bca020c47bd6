package game

import (
	"github.com/tomz197/asteroidfield/internal/input"
	"github.com/tomz197/asteroidfield/internal/object"
	"github.com/tomz197/asteroidfield/internal/physics"
)

// Controls is sampled once per tick. IsPressed must not block.
type Controls interface {
	IsPressed(k input.Key) bool
}

// Renderer receives one Frame per tick. Frames are values; a renderer may
// keep one after Render returns.
type Renderer interface {
	Render(f Frame)
}

// Cue is a semantic audio trigger.
type Cue uint8

const (
	CueFire      Cue = iota // bullet fired
	CueImpact               // ship damaged but alive
	CueExplosion            // ship destroyed
	CueRockBreak            // asteroid hit
	CueGameOver             // session over
	CueStart                // session started
)

func (c Cue) String() string {
	switch c {
	case CueFire:
		return "fire"
	case CueImpact:
		return "impact"
	case CueExplosion:
		return "explosion"
	case CueRockBreak:
		return "rock-break"
	case CueGameOver:
		return "game-over"
	case CueStart:
		return "start"
	}
	return "unknown"
}

// Audio receives fire-and-forget cues. Nothing it returns is consumed.
type Audio interface {
	Play(c Cue)
	// SetEngine sets the engine hum intensity in [0, 1].
	SetEngine(intensity float64)
}

// EntityView is the render-facing projection of one live entity.
type EntityView struct {
	ID           object.ID      `json:"id"`
	Kind         object.Kind    `json:"kind"`
	Position     physics.Vec2   `json:"pos"`
	Rotation     float64        `json:"rot"`
	Outline      []physics.Vec2 `json:"outline"`
	Invulnerable bool           `json:"invulnerable,omitempty"`
}

// Frame is everything a renderer needs for one tick.
type Frame struct {
	Session      string       `json:"session"`
	Tick         uint64       `json:"tick"`
	State        State        `json:"state"`
	Paused       bool         `json:"paused"`
	AllowRestart bool         `json:"allowRestart"`
	Camera       physics.Vec2 `json:"camera"`
	Score        int          `json:"score"`
	Health       int          `json:"health"`
	MaxHealth    int          `json:"maxHealth"`
	Entities     []EntityView `json:"entities"`
}

// MultiRenderer fans a frame out to several renderers.
type MultiRenderer []Renderer

func (m MultiRenderer) Render(f Frame) {
	for _, r := range m {
		if r != nil {
			r.Render(f)
		}
	}
}

type nopRenderer struct{}

func (nopRenderer) Render(Frame) {}

type nopAudio struct{}

func (nopAudio) Play(Cue)          {}
func (nopAudio) SetEngine(float64) {}

type noControls struct{}

func (noControls) IsPressed(input.Key) bool { return false }
