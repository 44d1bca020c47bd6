package game

import (
	"math"

	"github.com/pkg/errors"

	"github.com/tomz197/asteroidfield/internal/object"
	"github.com/tomz197/asteroidfield/internal/physics"
)

// spawn creates the body and collider for e at its current pose and adds it
// to the live-set. On failure nothing is left behind in the world.
func (g *Game) spawn(e *object.Entity) error {
	body, err := g.world.CreateBody(e.BodyDef())
	if err != nil {
		return errors.Wrapf(err, "create %s body", e.Kind)
	}
	collider, err := g.world.CreateCollider(e.ColliderShape(), body)
	if err != nil {
		if rerr := g.world.RemoveBody(body); rerr != nil {
			g.log.Error("release half-built body", "err", rerr)
		}
		return errors.Wrapf(err, "create %s collider", e.Kind)
	}

	g.nextID++
	e.ID = g.nextID
	e.Body = body
	e.Collider = collider
	g.live.Add(e)
	return nil
}

// occupancy answers "is anything already here" for spawn placement. It is
// built from the live asteroids and the ship and grows as spawns land.
type occupancy struct {
	grid   *physics.SpatialGrid
	points []physics.Vec2
	eps    float64
}

func (g *Game) newOccupancy() *occupancy {
	o := &occupancy{
		grid: g.grid,
		eps:  g.cfg.OverlapEpsilon,
	}
	o.grid.Clear()
	if g.ship != nil && g.ship.Alive() {
		o.add(g.ship.Position)
	}
	for _, a := range g.live.Snapshot(object.KindAsteroid) {
		o.add(a.Position)
	}
	return o
}

func (o *occupancy) add(p physics.Vec2) {
	o.grid.Insert(p, len(o.points))
	o.points = append(o.points, p)
}

func (o *occupancy) taken(p physics.Vec2) bool {
	hit := false
	o.grid.QueryAround(p, func(i int) bool {
		if physics.PointInCircle(o.points[i], p, o.eps) {
			hit = true
		}
		return hit
	})
	return hit
}

// place nudges p until it is clear of every occupied point, up to
// SpawnRetries times. It returns ErrOverlappingSpawn if no free spot was found.
func (g *Game) place(o *occupancy, p physics.Vec2) (physics.Vec2, error) {
	candidate := p
	for try := 0; ; try++ {
		if !o.taken(candidate) {
			o.add(candidate)
			return candidate, nil
		}
		if try >= g.cfg.SpawnRetries {
			return p, errors.Wrapf(ErrOverlappingSpawn, "at (%.3f, %.3f)", p.X, p.Y)
		}
		candidate = p.Add(physics.FromAngle(g.rng.Float64()*2*math.Pi, g.cfg.PerturbDistance))
	}
}

// spawnAsteroid places and creates one asteroid. vel is its starting velocity
// and kick an impulse per unit mass applied once the body exists.
func (g *Game) spawnAsteroid(o *occupancy, pos physics.Vec2, size int, vel, kick physics.Vec2) (*object.Entity, error) {
	pos, err := g.place(o, pos)
	if err != nil {
		return nil, err
	}

	a := object.NewAsteroid(size, g.rng)
	a.Position = pos
	a.Velocity = vel
	if err := g.spawn(a); err != nil {
		return nil, err
	}
	if err := g.world.ApplyImpulse(a.Body, kick.Scale(a.Mass())); err != nil {
		g.log.Debug("kick asteroid", "err", err)
	}
	return a, nil
}

// fillAsteroids tops the live asteroid count up to capacity. Each new
// asteroid appears at a random point of the spawn annulus around the ship,
// drifting roughly back toward it.
func (g *Game) fillAsteroids() {
	deficit := g.capacity - g.live.Count(object.KindAsteroid)
	if deficit <= 0 || g.ship == nil {
		return
	}

	lower, upper := g.cfg.LowerSpawnRadius(), g.cfg.UpperSpawnRadius()
	center := g.ship.Position
	o := g.newOccupancy()

	for i := 0; i < deficit; i++ {
		theta := g.rng.Float64() * 2 * math.Pi
		dist := lower + g.rng.Float64()*(upper-lower)
		pos := center.Add(physics.FromAngle(theta, dist))
		size := 1 + g.rng.Intn(g.cfg.MaxAsteroidSize)

		// Mostly inward with some sideways drift.
		kick := physics.V(randRange(g.rng, 1, 10), randRange(g.rng, -5, 5)).
			Rotate(theta).
			Scale(-g.cfg.KickScale)

		if _, err := g.spawnAsteroid(o, pos, size, physics.Vec2{}, kick); err != nil {
			if errors.Is(err, ErrOverlappingSpawn) {
				g.log.Warn("spawn skipped", "err", err)
				continue
			}
			g.log.Error("spawn asteroid", "err", err)
		}
	}
}

// cull disposes asteroids that drifted beyond CullRadius of the ship.
func (g *Game) cull() {
	if g.ship == nil || g.ship.Disposed() {
		return
	}
	limit := g.cfg.CullRadius()
	for _, a := range g.live.Snapshot(object.KindAsteroid) {
		if g.tooFar(a, limit) {
			g.dispose(a)
		}
	}
}

func (g *Game) tooFar(a *object.Entity, limit float64) bool {
	return physics.DistanceSquared(a.Position, g.ship.Position) > limit*limit
}
