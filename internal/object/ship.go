package object

import "github.com/tomz197/asteroidfield/internal/physics"

// ShipOutline is the player craft, nose up: a chevron with a notched tail.
// Its five edges become five pieces of shrapnel.
var ShipOutline = []physics.Vec2{
	{X: 0, Y: 1},
	{X: -0.8, Y: -1},
	{X: -0.3, Y: -0.6},
	{X: 0.3, Y: -0.6},
	{X: 0.8, Y: -1},
}

// shipHull is the collision triangle. The tail notch is visual only.
var shipHull = []physics.Vec2{
	{X: 0, Y: 1},
	{X: -0.8, Y: -1},
	{X: 0.8, Y: -1},
}

// ShipMass is the ship's body mass.
const ShipMass = 1.7

// NewShip creates the player ship with the given starting health.
func NewShip(health int) *Entity {
	outline := make([]physics.Vec2, len(ShipOutline))
	copy(outline, ShipOutline)
	return &Entity{
		Kind:      KindShip,
		Health:    health,
		MaxHealth: health,
		Outline:   outline,
	}
}

// Nose returns the world position of the ship's tip.
func (e *Entity) Nose() physics.Vec2 {
	return ShipOutline[0].Rotate(e.Rotation).Add(e.Position)
}
