package physics

import "github.com/pkg/errors"

// Errors returned by World implementations.
var (
	ErrUnknownBody     = errors.New("physics: unknown body handle")
	ErrUnknownCollider = errors.New("physics: unknown collider handle")
	ErrInvalidConfig   = errors.New("physics: invalid world settings")
	ErrInvalidShape    = errors.New("physics: invalid collider shape")
)

// BodyHandle identifies a rigid body inside a World. Handles are never reused,
// so a released handle stays invalid for the lifetime of the world.
type BodyHandle uint64

// ColliderHandle identifies a collider attached to a body.
type ColliderHandle uint64

// NoBody and NoCollider are the zero handles; no live object ever uses them.
const (
	NoBody     BodyHandle     = 0
	NoCollider ColliderHandle = 0
)

// BodyKind selects how the engine integrates a body.
type BodyKind uint8

const (
	Dynamic BodyKind = iota
	Kinematic
	Static
)

// BodyDef describes a body at creation time.
type BodyDef struct {
	Kind     BodyKind
	Position Vec2
	Rotation float64
	Velocity Vec2
	// Mass is the target mass of the body once its collider is attached.
	// Zero lets the engine pick its default.
	Mass float64
}

// ShapeType enumerates the collider geometries the simulation needs.
type ShapeType uint8

const (
	ShapeDisc ShapeType = iota
	ShapePolygon
	ShapeSegment
)

// Shape is a collider geometry in body-local coordinates.
type Shape struct {
	Type     ShapeType
	Radius   float64 // ShapeDisc
	Vertices []Vec2  // ShapePolygon (convex, counter-clockwise, 3..8 vertices)
	A, B     Vec2    // ShapeSegment
	// Sensor colliders report contacts but exert no force.
	Sensor bool
}

// Disc returns a circle collider shape.
func Disc(radius float64) Shape {
	return Shape{Type: ShapeDisc, Radius: radius}
}

// Polygon returns a convex polygon collider shape.
func Polygon(vertices ...Vec2) Shape {
	return Shape{Type: ShapePolygon, Vertices: vertices}
}

// Segment returns a line segment collider shape.
func Segment(a, b Vec2) Shape {
	return Shape{Type: ShapeSegment, A: a, B: b}
}

// AsSensor returns a copy of s flagged as a sensor.
func (s Shape) AsSensor() Shape {
	s.Sensor = true
	return s
}

// BoundingRadius returns the radius of the smallest origin-centred circle that
// contains the shape.
func (s Shape) BoundingRadius() float64 {
	switch s.Type {
	case ShapeDisc:
		return s.Radius
	case ShapePolygon:
		r := 0.0
		for _, v := range s.Vertices {
			if l := v.Len(); l > r {
				r = l
			}
		}
		return r
	case ShapeSegment:
		ra, rb := s.A.Len(), s.B.Len()
		if ra > rb {
			return ra
		}
		return rb
	}
	return 0
}

// Validate reports whether the shape can be handed to an engine.
func (s Shape) Validate() error {
	switch s.Type {
	case ShapeDisc:
		if s.Radius <= 0 {
			return errors.Wrapf(ErrInvalidShape, "disc radius %v", s.Radius)
		}
	case ShapePolygon:
		if len(s.Vertices) < 3 || len(s.Vertices) > 8 {
			return errors.Wrapf(ErrInvalidShape, "polygon with %d vertices", len(s.Vertices))
		}
	case ShapeSegment:
		if DistanceSquared(s.A, s.B) == 0 {
			return errors.Wrap(ErrInvalidShape, "zero-length segment")
		}
	default:
		return errors.Wrapf(ErrInvalidShape, "unknown shape type %d", s.Type)
	}
	return nil
}

// Contact is one touching pair reported for a collider during the last step.
type Contact struct {
	Other ColliderHandle
}

// World is the physics engine boundary. The simulation treats it as a black
// box: it owns every transform and velocity, and the game only reads them back.
// Implementations are not safe for concurrent use.
type World interface {
	CreateBody(def BodyDef) (BodyHandle, error)
	CreateCollider(shape Shape, body BodyHandle) (ColliderHandle, error)
	RemoveCollider(h ColliderHandle) error
	RemoveBody(h BodyHandle) error

	// Step advances the simulation by dt seconds and refreshes contacts.
	Step(dt float64)

	ApplyImpulse(h BodyHandle, impulse Vec2) error
	AddForce(h BodyHandle, force Vec2) error

	SetTranslation(h BodyHandle, p Vec2) error
	SetRotation(h BodyHandle, angle float64) error
	SetLinearVelocity(h BodyHandle, v Vec2) error

	Translation(h BodyHandle) (Vec2, error)
	Rotation(h BodyHandle) (float64, error)
	LinearVelocity(h BodyHandle) (Vec2, error)

	// ContactsOf lists the colliders currently touching h.
	ContactsOf(h ColliderHandle) ([]Contact, error)

	// BodyCount returns the number of live bodies.
	BodyCount() int
}
