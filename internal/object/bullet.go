package object

import "github.com/tomz197/asteroidfield/internal/physics"

// BulletOutline is a short streak pointing along the direction of travel.
var BulletOutline = []physics.Vec2{
	{X: 0, Y: 0.8},
	{X: 0, Y: 0},
}

// BulletMass is the bullet's body mass.
const BulletMass = 1.0

// NewBullet creates a bullet. Its collider is a sensor so it never shoves
// what it hits.
func NewBullet() *Entity {
	outline := make([]physics.Vec2, len(BulletOutline))
	copy(outline, BulletOutline)
	return &Entity{
		Kind:      KindBullet,
		Health:    KindBullet.Behavior().Health,
		MaxHealth: KindBullet.Behavior().Health,
		Outline:   outline,
	}
}
