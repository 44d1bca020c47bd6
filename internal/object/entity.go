// Package object defines the simulated entities: the ship, asteroids, bullets
// and the debris left behind by a destroyed ship.
//
// Every entity is the same record tagged with a Kind. Behavior that differs
// between kinds lives in the Behavior table instead of in per-type methods, so
// the collision and disposal code dispatches explicitly on data.
package object

import (
	"github.com/tomz197/asteroidfield/internal/physics"
	"github.com/tomz197/asteroidfield/internal/timer"
)

// ID identifies an entity for the lifetime of a session.
type ID uint64

// HitResult is the outcome of TakeHit.
type HitResult uint8

const (
	// HitIgnored means nothing changed: the entity was invulnerable, disposed,
	// already dying, or not damageable at all.
	HitIgnored HitResult = iota
	// HitDamaged means health dropped but the entity survives. It is now
	// invulnerable until ClearInvulnerable is called.
	HitDamaged
	// HitDestroyed means health reached zero. The caller must dispose it.
	HitDestroyed
)

func (r HitResult) String() string {
	switch r {
	case HitDamaged:
		return "damaged"
	case HitDestroyed:
		return "destroyed"
	}
	return "ignored"
}

// Entity pairs a physics body with gameplay state.
//
// The physics world owns the transform. Position, Rotation and Velocity are a
// read-only projection refreshed once per tick through Sync.
type Entity struct {
	ID   ID
	Kind Kind

	Body     physics.BodyHandle
	Collider physics.ColliderHandle

	Health    int
	MaxHealth int

	// Size is the asteroid size class in [1, max size]. Zero for other kinds.
	Size int

	// Outline is the visual shape in body-local coordinates. The simulation
	// only reads it (to build shrapnel); renderers draw it.
	Outline []physics.Vec2

	Position physics.Vec2
	Rotation float64
	Velocity physics.Vec2

	invulnerable bool
	disposed     bool
	dying        bool
	timers       []timer.ID
}

// Behavior returns the rule table for the entity's kind.
func (e *Entity) Behavior() Behavior {
	return e.Kind.Behavior()
}

// Invulnerable reports whether hits are currently ignored.
func (e *Entity) Invulnerable() bool {
	return e.invulnerable
}

// Disposed reports whether the entity has been released. Terminal.
func (e *Entity) Disposed() bool {
	return e.disposed
}

// Alive is the inverse of Disposed.
func (e *Entity) Alive() bool {
	return !e.disposed
}

// TakeHit applies one point of damage.
func (e *Entity) TakeHit() HitResult {
	if e.disposed || e.dying || e.invulnerable || !e.Behavior().Damageable {
		return HitIgnored
	}

	e.Health--
	if e.Health <= 0 {
		e.Health = 0
		e.dying = true
		return HitDestroyed
	}

	e.invulnerable = true
	return HitDamaged
}

// ClearInvulnerable ends a grace period. No-op once disposed.
func (e *Entity) ClearInvulnerable() {
	if e.disposed {
		return
	}
	e.invulnerable = false
}

// GrantHealth raises both max and current health by n.
func (e *Entity) GrantHealth(n int) {
	if e.disposed || e.dying {
		return
	}
	e.MaxHealth += n
	e.Health += n
}

// Sync copies the physics transform into the entity. No-op once disposed.
func (e *Entity) Sync(position physics.Vec2, rotation float64, velocity physics.Vec2) {
	if e.disposed {
		return
	}
	e.Position = position
	e.Rotation = rotation
	e.Velocity = velocity
}

// Track records a pending timer so it can be cancelled on disposal.
func (e *Entity) Track(id timer.ID) {
	if id == timer.None {
		return
	}
	e.timers = append(e.timers, id)
}

// Untrack forgets a timer that has fired.
func (e *Entity) Untrack(id timer.ID) {
	for i, t := range e.timers {
		if t == id {
			e.timers = append(e.timers[:i], e.timers[i+1:]...)
			return
		}
	}
}

// TrackedTimers returns the number of timers still tracked.
func (e *Entity) TrackedTimers() int {
	return len(e.timers)
}

// MarkDisposed flips the entity to disposed and returns the timers that were
// still tracked. It reports false, and returns nothing, if the entity was
// already disposed. This is the only way the flag is ever set.
func (e *Entity) MarkDisposed() ([]timer.ID, bool) {
	if e.disposed {
		return nil, false
	}
	e.disposed = true
	e.invulnerable = false
	timers := e.timers
	e.timers = nil
	return timers, true
}

// Forward returns the unit vector the entity's nose points along. Outlines are
// authored nose-up, so rotation zero faces +Y.
func (e *Entity) Forward() physics.Vec2 {
	return physics.V(0, 1).Rotate(e.Rotation)
}

// WorldOutline returns the outline transformed by the current pose.
func (e *Entity) WorldOutline() []physics.Vec2 {
	out := make([]physics.Vec2, len(e.Outline))
	for i, p := range e.Outline {
		out[i] = p.Rotate(e.Rotation).Add(e.Position)
	}
	return out
}
