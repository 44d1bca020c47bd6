package game

import (
	"github.com/tomz197/asteroidfield/internal/input"
	"github.com/tomz197/asteroidfield/internal/object"
	"github.com/tomz197/asteroidfield/internal/physics"
	"github.com/tomz197/asteroidfield/internal/timer"
)

// steer applies one tick of player input to the ship: rotation is set
// directly, thrust is a force along the nose, and fire spawns a bullet if
// the cooldown allows it.
func (g *Game) steer(c Controls) {
	ship := g.ship
	if ship == nil || ship.Disposed() {
		return
	}
	dt := g.cfg.TickInterval.Seconds()

	turn := 0.0
	if c.IsPressed(input.KeyLeft) {
		turn += g.cfg.RotateSpeed * dt
	}
	if c.IsPressed(input.KeyRight) {
		turn -= g.cfg.RotateSpeed * dt
	}
	if turn != 0 {
		ship.Rotation += turn
		if err := g.world.SetRotation(ship.Body, ship.Rotation); err != nil {
			g.log.Debug("rotate ship", "err", err)
		}
	}

	if c.IsPressed(input.KeyThrust) {
		if err := g.world.AddForce(ship.Body, ship.Forward().Scale(g.cfg.ThrustForce)); err != nil {
			g.log.Debug("thrust", "err", err)
		}
	}

	if c.IsPressed(input.KeyFire) && g.canFire {
		if err := g.fire(); err != nil {
			g.log.Error("fire", "err", err)
		}
	}
}

// fire spawns a bullet at the ship's nose travelling at BulletSpeed on top of
// the ship's own velocity. The bullet expires after BulletTTL unless it hits
// something first.
func (g *Game) fire() error {
	ship := g.ship
	if ship == nil || ship.Disposed() || g.state != Playing {
		return ErrNotPlaying
	}

	b := object.NewBullet()
	b.Position = ship.Nose()
	b.Rotation = ship.Rotation
	b.Velocity = ship.Velocity.Add(ship.Forward().Scale(g.cfg.BulletSpeed))
	if err := g.spawn(b); err != nil {
		return err
	}
	b.Track(g.timers.After(g.cfg.BulletTTL, func() {
		g.dispose(b)
	}))

	g.canFire = false
	var cooldown timer.ID
	cooldown = g.timers.After(g.cfg.FireCooldown, func() {
		ship.Untrack(cooldown)
		g.canFire = true
	})
	ship.Track(cooldown)

	g.audio.Play(CueFire)
	return nil
}

// engineIntensity maps ship speed to [0, 1].
func (g *Game) engineIntensity() float64 {
	if g.ship == nil || g.ship.Disposed() {
		return 0
	}
	rate := g.ship.Velocity.Len() / g.cfg.EngineSpeedScale
	if rate > g.cfg.EngineMaxRate {
		rate = g.cfg.EngineMaxRate
	}
	return rate / g.cfg.EngineMaxRate
}

// syncAll copies physics transforms into every live entity.
func (g *Game) syncAll() {
	for _, e := range g.live.entities {
		pos, err := g.world.Translation(e.Body)
		if err != nil {
			g.log.Debug("sync stale body", "id", e.ID, "err", err)
			continue
		}
		rot, _ := g.world.Rotation(e.Body)
		vel, _ := g.world.LinearVelocity(e.Body)
		e.Sync(pos, rot, vel)
	}
}

// camera is where renderers should centre the view.
func (g *Game) camera() physics.Vec2 {
	if g.ship != nil {
		return g.ship.Position
	}
	return physics.Vec2{}
}
