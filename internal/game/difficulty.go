package game

import "github.com/tomz197/asteroidfield/internal/object"

// addScore adds points and grants the ship one extra health point for every
// milestone the new score reaches.
func (g *Game) addScore(points int) {
	before := g.score
	g.score += points

	crossed := g.score/g.cfg.MilestoneEvery - before/g.cfg.MilestoneEvery
	if crossed <= 0 || g.ship == nil {
		return
	}
	g.ship.GrantHealth(crossed)
	g.log.Debug("milestone reached", "score", g.score, "maxHealth", g.ship.MaxHealth)
}

// raiseDifficulty grows the asteroid capacity by floor(score/divisor)+1 for
// every full DifficultyInterval of game time since the last raise. Capacity
// never shrinks during a session.
func (g *Game) raiseDifficulty() {
	now := g.clock.Now()
	for now.Sub(g.lastRaise) >= g.cfg.DifficultyInterval {
		g.lastRaise = g.lastRaise.Add(g.cfg.DifficultyInterval)
		g.capacity += g.score/g.cfg.DifficultyScoreDivisor + 1
		g.log.Debug("capacity raised", "capacity", g.capacity, "asteroids", g.live.Count(object.KindAsteroid))
	}
}
