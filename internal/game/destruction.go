package game

import (
	"math"
	"math/rand"

	"github.com/tomz197/asteroidfield/internal/object"
	"github.com/tomz197/asteroidfield/internal/physics"
	"github.com/tomz197/asteroidfield/internal/timer"
)

// hit applies one point of damage to e and runs whatever follows from it.
func (g *Game) hit(e *object.Entity) {
	switch e.TakeHit() {
	case object.HitDamaged:
		if e.Kind == object.KindShip {
			g.audio.Play(CueImpact)
			g.log.Debug("ship damaged", "health", e.Health)
		}
		var grace timer.ID
		grace = g.timers.After(g.cfg.GracePeriod, func() {
			e.Untrack(grace)
			e.ClearInvulnerable()
		})
		e.Track(grace)
	case object.HitDestroyed:
		g.destroy(e)
	}
}

// destroy runs the kind's destruction effect, then disposes e. Effects read
// the pose before the body is released.
func (g *Game) destroy(e *object.Entity) {
	if e.Disposed() {
		return
	}

	switch e.Behavior().Destruction {
	case object.EffectFragment:
		g.audio.Play(CueRockBreak)
		g.fragment(e)
		g.dispose(e)
	case object.EffectShrapnel:
		g.audio.Play(CueExplosion)
		g.shrapnel(e)
		g.dispose(e)
		g.log.Info("ship destroyed", "score", g.score)
		g.endSession()
	default:
		g.dispose(e)
	}
}

// dispose is the only path that releases an entity. Every caller goes through
// it: collisions, timers, culling and reset. A second call for the same
// entity does nothing.
func (g *Game) dispose(e *object.Entity) {
	timers, ok := e.MarkDisposed()
	if !ok {
		return
	}
	for _, id := range timers {
		g.timers.Cancel(id)
	}
	if err := g.world.RemoveCollider(e.Collider); err != nil {
		g.log.Error("release collider", "id", e.ID, "kind", e.Kind, "err", err)
	}
	if err := g.world.RemoveBody(e.Body); err != nil {
		g.log.Error("release body", "id", e.ID, "kind", e.Kind, "err", err)
	}
	g.live.Remove(e)
}

// fragment splits a destroyed asteroid of size s into 1..3 children of size
// s-1, evenly spaced on a circle of radius s around its last position. Each
// child keeps the parent's velocity plus an outward kick. Size 1 asteroids
// leave nothing behind.
func (g *Game) fragment(parent *object.Entity) {
	size := parent.Size - 1
	if size <= 0 {
		return
	}

	origin := parent.Position
	vel := parent.Velocity
	if v, err := g.world.LinearVelocity(parent.Body); err == nil {
		vel = v
	}

	count := g.cfg.FragmentMin + g.rng.Intn(g.cfg.FragmentMax-g.cfg.FragmentMin+1)
	step := 2 * math.Pi / float64(count)
	o := g.newOccupancy()

	for i := 0; i < count; i++ {
		theta := float64(i) * step
		pos := origin.Add(physics.FromAngle(theta, float64(parent.Size)))
		kick := physics.FromAngle(theta, randRange(g.rng, 1, 10)*g.cfg.KickScale)

		if _, err := g.spawnAsteroid(o, pos, size, vel, kick); err != nil {
			g.log.Warn("fragment skipped", "parent", parent.ID, "err", err)
		}
	}
}

// shrapnel replaces the ship with one debris segment per outline edge, each
// at the ship's last pose, carrying its velocity, and pushed out along the
// edge's outward normal.
func (g *Game) shrapnel(ship *object.Entity) {
	pos, rot := ship.Position, ship.Rotation
	vel := ship.Velocity
	if v, err := g.world.LinearVelocity(ship.Body); err == nil {
		vel = v
	}

	for _, edge := range object.Edges(ship.Outline) {
		d := object.NewDebris(edge.A, edge.B)
		d.Position = pos
		d.Rotation = rot
		d.Velocity = vel
		if err := g.spawn(d); err != nil {
			g.log.Error("spawn debris", "err", err)
			continue
		}
		push := edge.Normal.Rotate(rot).Scale(g.cfg.ShrapnelSpeed * d.Mass())
		if err := g.world.ApplyImpulse(d.Body, push); err != nil {
			g.log.Debug("push debris", "err", err)
		}
	}
}

func randRange(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
