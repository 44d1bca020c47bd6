package physics

import (
	"fmt"
	"math"

	"github.com/ByteArena/box2d"
	"github.com/pkg/errors"
)

// Settings configures a Box2DWorld.
type Settings struct {
	Gravity            Vec2
	VelocityIterations int
	PositionIterations int
	Friction           float64
	Restitution        float64
	// DefaultDensity is used for colliders whose body has no target mass.
	DefaultDensity float64
}

// DefaultSettings returns a zero-gravity, top-down world.
func DefaultSettings() Settings {
	return Settings{
		VelocityIterations: 8,
		PositionIterations: 3,
		Friction:           0.3,
		Restitution:        0.4,
		DefaultDensity:     1.0,
	}
}

func (s Settings) validate() error {
	if s.VelocityIterations <= 0 || s.PositionIterations <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "solver iterations %d/%d", s.VelocityIterations, s.PositionIterations)
	}
	if s.DefaultDensity <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "default density %v", s.DefaultDensity)
	}
	if s.Friction < 0 || s.Restitution < 0 {
		return errors.Wrap(ErrInvalidConfig, "negative friction or restitution")
	}
	return nil
}

type b2body struct {
	body      *box2d.B2Body
	mass      float64
	colliders []ColliderHandle
}

type b2collider struct {
	fixture *box2d.B2Fixture
	body    BodyHandle
}

// Box2DWorld implements World on top of the Box2D port.
type Box2DWorld struct {
	world     *box2d.B2World
	settings  Settings
	bodies    map[BodyHandle]*b2body
	colliders map[ColliderHandle]*b2collider

	nextBody     BodyHandle
	nextCollider ColliderHandle
}

// Compile-time check that Box2DWorld implements World.
var _ World = (*Box2DWorld)(nil)

// NewBox2DWorld creates a physics world. It fails when the settings are
// unusable or the engine cannot create and destroy a probe body.
func NewBox2DWorld(settings Settings) (w *Box2DWorld, err error) {
	if err := settings.validate(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			w = nil
			err = errors.Wrap(ErrInvalidConfig, fmt.Sprintf("box2d init panic: %v", r))
		}
	}()

	world := box2d.MakeB2World(box2d.MakeB2Vec2(settings.Gravity.X, settings.Gravity.Y))

	// Probe the engine once so a broken build fails at startup, not mid-game.
	def := box2d.MakeB2BodyDef()
	probe := world.CreateBody(&def)
	world.DestroyBody(probe)

	return &Box2DWorld{
		world:     &world,
		settings:  settings,
		bodies:    make(map[BodyHandle]*b2body),
		colliders: make(map[ColliderHandle]*b2collider),
	}, nil
}

func toB2(v Vec2) box2d.B2Vec2 {
	return box2d.MakeB2Vec2(v.X, v.Y)
}

func fromB2(v box2d.B2Vec2) Vec2 {
	return Vec2{X: v.X, Y: v.Y}
}

// CreateBody adds a body to the world.
func (w *Box2DWorld) CreateBody(def BodyDef) (BodyHandle, error) {
	bd := box2d.MakeB2BodyDef()
	switch def.Kind {
	case Dynamic:
		bd.Type = box2d.B2BodyType.B2_dynamicBody
	case Kinematic:
		bd.Type = box2d.B2BodyType.B2_kinematicBody
	case Static:
		bd.Type = box2d.B2BodyType.B2_staticBody
	default:
		return NoBody, errors.Errorf("physics: unknown body kind %d", def.Kind)
	}
	bd.Position = toB2(def.Position)
	bd.Angle = def.Rotation
	bd.LinearVelocity = toB2(def.Velocity)
	bd.AllowSleep = false

	w.nextBody++
	h := w.nextBody

	body := w.world.CreateBody(&bd)
	body.SetUserData(h)
	w.bodies[h] = &b2body{body: body, mass: def.Mass}
	return h, nil
}

// CreateCollider attaches a collider to an existing body.
func (w *Box2DWorld) CreateCollider(shape Shape, h BodyHandle) (ColliderHandle, error) {
	b, ok := w.bodies[h]
	if !ok {
		return NoCollider, errors.Wrapf(ErrUnknownBody, "create collider on %d", h)
	}
	if err := shape.Validate(); err != nil {
		return NoCollider, err
	}

	fd := box2d.MakeB2FixtureDef()
	fd.IsSensor = shape.Sensor
	fd.Friction = w.settings.Friction
	fd.Restitution = w.settings.Restitution

	area := shapeArea(shape)
	fd.Density = w.settings.DefaultDensity
	if b.mass > 0 && area > 0 {
		fd.Density = b.mass / area
	}

	switch shape.Type {
	case ShapeDisc:
		s := box2d.MakeB2CircleShape()
		s.SetRadius(shape.Radius)
		fd.Shape = &s
	case ShapePolygon:
		vertices := make([]box2d.B2Vec2, len(shape.Vertices))
		for i, v := range shape.Vertices {
			vertices[i] = toB2(v)
		}
		s := box2d.MakeB2PolygonShape()
		s.Set(vertices, len(vertices))
		fd.Shape = &s
	case ShapeSegment:
		s := box2d.MakeB2EdgeShape()
		s.Set(toB2(shape.A), toB2(shape.B))
		fd.Shape = &s
	}

	fixture := b.body.CreateFixtureFromDef(&fd)

	w.nextCollider++
	ch := w.nextCollider
	fixture.SetUserData(ch)

	// Segments have no area, so Box2D would fall back to a unit mass.
	if area == 0 && b.mass > 0 {
		center := shape.A.Add(shape.B).Scale(0.5)
		length := Distance(shape.A, shape.B)
		md := box2d.B2MassData{
			Mass:   b.mass,
			Center: toB2(center),
			I:      b.mass*length*length/12 + b.mass*center.Dot(center),
		}
		b.body.SetMassData(&md)
	}

	w.colliders[ch] = &b2collider{fixture: fixture, body: h}
	b.colliders = append(b.colliders, ch)
	return ch, nil
}

// RemoveCollider detaches and destroys a collider.
func (w *Box2DWorld) RemoveCollider(h ColliderHandle) error {
	c, ok := w.colliders[h]
	if !ok {
		return errors.Wrapf(ErrUnknownCollider, "remove collider %d", h)
	}
	if b, ok := w.bodies[c.body]; ok {
		b.body.DestroyFixture(c.fixture)
		kept := b.colliders[:0]
		for _, other := range b.colliders {
			if other != h {
				kept = append(kept, other)
			}
		}
		b.colliders = kept
	}
	delete(w.colliders, h)
	return nil
}

// RemoveBody destroys a body together with any collider still attached.
func (w *Box2DWorld) RemoveBody(h BodyHandle) error {
	b, ok := w.bodies[h]
	if !ok {
		return errors.Wrapf(ErrUnknownBody, "remove body %d", h)
	}
	for _, ch := range b.colliders {
		delete(w.colliders, ch)
	}
	w.world.DestroyBody(b.body)
	delete(w.bodies, h)
	return nil
}

// Step advances the world.
func (w *Box2DWorld) Step(dt float64) {
	if dt <= 0 {
		return
	}
	w.world.Step(dt, w.settings.VelocityIterations, w.settings.PositionIterations)
}

func (w *Box2DWorld) lookup(h BodyHandle) (*box2d.B2Body, error) {
	b, ok := w.bodies[h]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownBody, "body %d", h)
	}
	return b.body, nil
}

// ApplyImpulse applies an instantaneous impulse at the body's centre of mass.
func (w *Box2DWorld) ApplyImpulse(h BodyHandle, impulse Vec2) error {
	body, err := w.lookup(h)
	if err != nil {
		return err
	}
	body.ApplyLinearImpulse(toB2(impulse), body.GetWorldCenter(), true)
	return nil
}

// AddForce accumulates a force that acts during the next step.
func (w *Box2DWorld) AddForce(h BodyHandle, force Vec2) error {
	body, err := w.lookup(h)
	if err != nil {
		return err
	}
	body.ApplyForceToCenter(toB2(force), true)
	return nil
}

func (w *Box2DWorld) SetTranslation(h BodyHandle, p Vec2) error {
	body, err := w.lookup(h)
	if err != nil {
		return err
	}
	body.SetTransform(toB2(p), body.GetAngle())
	return nil
}

func (w *Box2DWorld) SetRotation(h BodyHandle, angle float64) error {
	body, err := w.lookup(h)
	if err != nil {
		return err
	}
	body.SetTransform(body.GetPosition(), angle)
	body.SetAngularVelocity(0)
	return nil
}

func (w *Box2DWorld) SetLinearVelocity(h BodyHandle, v Vec2) error {
	body, err := w.lookup(h)
	if err != nil {
		return err
	}
	body.SetLinearVelocity(toB2(v))
	return nil
}

func (w *Box2DWorld) Translation(h BodyHandle) (Vec2, error) {
	body, err := w.lookup(h)
	if err != nil {
		return Vec2{}, err
	}
	return fromB2(body.GetPosition()), nil
}

func (w *Box2DWorld) Rotation(h BodyHandle) (float64, error) {
	body, err := w.lookup(h)
	if err != nil {
		return 0, err
	}
	return body.GetAngle(), nil
}

func (w *Box2DWorld) LinearVelocity(h BodyHandle) (Vec2, error) {
	body, err := w.lookup(h)
	if err != nil {
		return Vec2{}, err
	}
	return fromB2(body.GetLinearVelocity()), nil
}

// ContactsOf walks the owning body's contact list and keeps the touching
// contacts that involve this collider.
func (w *Box2DWorld) ContactsOf(h ColliderHandle) ([]Contact, error) {
	c, ok := w.colliders[h]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownCollider, "contacts of %d", h)
	}
	b, ok := w.bodies[c.body]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownBody, "contacts of %d", h)
	}

	var contacts []Contact
	for edge := b.body.GetContactList(); edge != nil; edge = edge.Next {
		contact := edge.Contact
		if contact == nil || !contact.IsTouching() {
			continue
		}

		var other *box2d.B2Fixture
		switch c.fixture {
		case contact.GetFixtureA():
			other = contact.GetFixtureB()
		case contact.GetFixtureB():
			other = contact.GetFixtureA()
		default:
			continue
		}

		otherHandle, ok := other.GetUserData().(ColliderHandle)
		if !ok {
			continue
		}
		contacts = append(contacts, Contact{Other: otherHandle})
	}
	return contacts, nil
}

// BodyCount returns the number of bodies created through this adapter that
// are still alive.
func (w *Box2DWorld) BodyCount() int {
	return len(w.bodies)
}

// shapeArea returns the area used to derive density from a target mass.
func shapeArea(s Shape) float64 {
	switch s.Type {
	case ShapeDisc:
		return math.Pi * s.Radius * s.Radius
	case ShapePolygon:
		area := 0.0
		n := len(s.Vertices)
		for i := 0; i < n; i++ {
			a := s.Vertices[i]
			b := s.Vertices[(i+1)%n]
			area += a.X*b.Y - b.X*a.Y
		}
		return math.Abs(area) / 2
	}
	return 0
}
