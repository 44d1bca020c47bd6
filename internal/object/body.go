package object

import "github.com/tomz197/asteroidfield/internal/physics"

// ColliderShape returns the physics shape for the entity's kind.
func (e *Entity) ColliderShape() physics.Shape {
	var s physics.Shape
	switch e.Kind {
	case KindShip:
		s = physics.Polygon(shipHull...)
	case KindAsteroid:
		s = physics.Disc(float64(e.Size))
	case KindBullet:
		s = physics.Segment(BulletOutline[0], BulletOutline[1])
	case KindDebris:
		s = physics.Segment(e.Outline[0], e.Outline[1])
	}
	if e.Behavior().Sensor {
		s = s.AsSensor()
	}
	return s
}

// Mass returns the body mass for the entity's kind.
func (e *Entity) Mass() float64 {
	switch e.Kind {
	case KindShip:
		return ShipMass
	case KindAsteroid:
		return float64(e.Size)
	case KindBullet:
		return BulletMass
	case KindDebris:
		return DebrisMass
	}
	return 0
}

// BodyDef describes the body to create for the entity at its current pose.
func (e *Entity) BodyDef() physics.BodyDef {
	return physics.BodyDef{
		Kind:     physics.Dynamic,
		Position: e.Position,
		Rotation: e.Rotation,
		Velocity: e.Velocity,
		Mass:     e.Mass(),
	}
}
