package object

import (
	"math"
	"math/rand"

	"github.com/tomz197/asteroidfield/internal/physics"
)

// Outline resolution for asteroids. Every third vertex is pushed in to make a
// crater.
const (
	asteroidVertices = 12
	craterEvery      = 3
)

// NewAsteroid creates an asteroid of the given size class. The collider is a
// disc of radius size and the body mass equals size.
func NewAsteroid(size int, rng *rand.Rand) *Entity {
	return &Entity{
		Kind:      KindAsteroid,
		Size:      size,
		Health:    KindAsteroid.Behavior().Health,
		MaxHealth: KindAsteroid.Behavior().Health,
		Outline:   AsteroidOutline(size, rng),
	}
}

// AsteroidOutline builds an irregular rock: a unit circle of 12 vertices
// where every third one is dented inward and sideways, scaled by size.
func AsteroidOutline(size int, rng *rand.Rand) []physics.Vec2 {
	step := 2 * math.Pi / asteroidVertices
	s := float64(size)

	vertices := make([]physics.Vec2, asteroidVertices)
	for i := range vertices {
		theta := float64(i) * step
		v := physics.FromAngle(theta, 1)

		if i%craterEvery == 0 {
			// X is the crater depth, Y shifts it along the rim.
			dent := physics.V(randRange(rng, 0.2, 0.5), randRange(rng, -0.4, 0.4))
			v = v.Sub(dent.Rotate(theta))
		}

		vertices[i] = v.Scale(s)
	}
	return vertices
}

func randRange(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
