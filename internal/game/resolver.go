package game

import (
	"github.com/tomz197/asteroidfield/internal/object"
)

// resolveCollisions walks the asteroids that were alive when the phase began
// and dispatches damage for every contact they report. Asteroids created
// during the phase (fragments) are not part of the walk; they are resolved
// from the next tick on.
func (g *Game) resolveCollisions() {
	index := g.live.Index()
	limit := g.cfg.CullRadius()

	for _, a := range g.live.Snapshot(object.KindAsteroid) {
		if g.state != Playing {
			return
		}
		if a.Disposed() {
			continue
		}
		if g.ship != nil && g.ship.Alive() && g.tooFar(a, limit) {
			g.dispose(a)
			continue
		}

		contacts, err := g.world.ContactsOf(a.Collider)
		if err != nil {
			g.log.Debug("contacts of stale asteroid", "id", a.ID, "err", err)
			continue
		}

		for _, c := range contacts {
			if a.Disposed() {
				break
			}
			other, ok := index.Lookup(c.Other)
			if !ok {
				// Disposed earlier this tick, or never ours. A missed event.
				g.log.Debug("contact with unknown collider", "asteroid", a.ID, "collider", c.Other)
				continue
			}
			g.resolveContact(a, other)
		}
	}
}

// resolveContact applies the rules for one asteroid touching other.
//
// Only kinds harmed by asteroids (ship, bullets) take part; asteroid against
// asteroid or debris is left to the physics engine. The other party is always
// damaged before the asteroid: destroying the asteroid spawns fragments from
// its current pose, and the other party must already be settled when that
// happens.
func (g *Game) resolveContact(a, other *object.Entity) {
	rules := other.Behavior()
	if !rules.HarmedByAsteroids {
		return
	}

	if rules.ScoresOnHit {
		g.addScore(g.cfg.ScorePerHit)
	}

	g.hit(other)
	if a.Alive() {
		g.hit(a)
	}
}
