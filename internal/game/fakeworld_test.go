package game

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/tomz197/asteroidfield/internal/physics"
)

// fakeWorld is a deterministic stand-in for the physics engine. Bodies move
// in straight lines, nothing pushes anything, and two colliders touch when
// their bounding circles overlap after a step.
type fakeWorld struct {
	bodies    map[physics.BodyHandle]*fakeBody
	colliders map[physics.ColliderHandle]*fakeCollider
	contacts  map[physics.ColliderHandle][]physics.Contact

	// injected contacts reported on top of the computed ones
	extra map[physics.ColliderHandle][]physics.Contact

	nextBody     physics.BodyHandle
	nextCollider physics.ColliderHandle

	steps          int
	badReleases    int
	failCreateBody bool
}

type fakeBody struct {
	pos, vel, force physics.Vec2
	rot             float64
	mass            float64
}

type fakeCollider struct {
	body  physics.BodyHandle
	shape physics.Shape
}

var _ physics.World = (*fakeWorld)(nil)

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		bodies:    make(map[physics.BodyHandle]*fakeBody),
		colliders: make(map[physics.ColliderHandle]*fakeCollider),
		contacts:  make(map[physics.ColliderHandle][]physics.Contact),
		extra:     make(map[physics.ColliderHandle][]physics.Contact),
	}
}

func (w *fakeWorld) CreateBody(def physics.BodyDef) (physics.BodyHandle, error) {
	if w.failCreateBody {
		return physics.NoBody, errors.New("fake: body creation disabled")
	}
	w.nextBody++
	mass := def.Mass
	if mass <= 0 {
		mass = 1
	}
	w.bodies[w.nextBody] = &fakeBody{pos: def.Position, vel: def.Velocity, rot: def.Rotation, mass: mass}
	return w.nextBody, nil
}

func (w *fakeWorld) CreateCollider(shape physics.Shape, body physics.BodyHandle) (physics.ColliderHandle, error) {
	if _, ok := w.bodies[body]; !ok {
		return physics.NoCollider, physics.ErrUnknownBody
	}
	if err := shape.Validate(); err != nil {
		return physics.NoCollider, err
	}
	w.nextCollider++
	w.colliders[w.nextCollider] = &fakeCollider{body: body, shape: shape}
	return w.nextCollider, nil
}

func (w *fakeWorld) RemoveCollider(h physics.ColliderHandle) error {
	if _, ok := w.colliders[h]; !ok {
		w.badReleases++
		return physics.ErrUnknownCollider
	}
	delete(w.colliders, h)
	delete(w.contacts, h)
	return nil
}

func (w *fakeWorld) RemoveBody(h physics.BodyHandle) error {
	if _, ok := w.bodies[h]; !ok {
		w.badReleases++
		return physics.ErrUnknownBody
	}
	for ch, c := range w.colliders {
		if c.body == h {
			delete(w.colliders, ch)
		}
	}
	delete(w.bodies, h)
	return nil
}

func (w *fakeWorld) Step(dt float64) {
	w.steps++
	for _, b := range w.bodies {
		b.vel = b.vel.Add(b.force.Scale(dt / b.mass))
		b.force = physics.Vec2{}
		b.pos = b.pos.Add(b.vel.Scale(dt))
	}

	handles := make([]physics.ColliderHandle, 0, len(w.colliders))
	for h := range w.colliders {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	w.contacts = make(map[physics.ColliderHandle][]physics.Contact)
	for i, a := range handles {
		ca := w.colliders[a]
		for _, b := range handles[i+1:] {
			cb := w.colliders[b]
			if ca.body == cb.body {
				continue
			}
			pa, pb := w.bodies[ca.body].pos, w.bodies[cb.body].pos
			if physics.CirclesOverlap(pa, ca.shape.BoundingRadius(), pb, cb.shape.BoundingRadius()) {
				w.contacts[a] = append(w.contacts[a], physics.Contact{Other: b})
				w.contacts[b] = append(w.contacts[b], physics.Contact{Other: a})
			}
		}
	}
}

func (w *fakeWorld) body(h physics.BodyHandle) (*fakeBody, error) {
	b, ok := w.bodies[h]
	if !ok {
		return nil, physics.ErrUnknownBody
	}
	return b, nil
}

func (w *fakeWorld) ApplyImpulse(h physics.BodyHandle, impulse physics.Vec2) error {
	b, err := w.body(h)
	if err != nil {
		return err
	}
	b.vel = b.vel.Add(impulse.Scale(1 / b.mass))
	return nil
}

func (w *fakeWorld) AddForce(h physics.BodyHandle, force physics.Vec2) error {
	b, err := w.body(h)
	if err != nil {
		return err
	}
	b.force = b.force.Add(force)
	return nil
}

func (w *fakeWorld) SetTranslation(h physics.BodyHandle, p physics.Vec2) error {
	b, err := w.body(h)
	if err != nil {
		return err
	}
	b.pos = p
	return nil
}

func (w *fakeWorld) SetRotation(h physics.BodyHandle, angle float64) error {
	b, err := w.body(h)
	if err != nil {
		return err
	}
	b.rot = angle
	return nil
}

func (w *fakeWorld) SetLinearVelocity(h physics.BodyHandle, v physics.Vec2) error {
	b, err := w.body(h)
	if err != nil {
		return err
	}
	b.vel = v
	return nil
}

func (w *fakeWorld) Translation(h physics.BodyHandle) (physics.Vec2, error) {
	b, err := w.body(h)
	if err != nil {
		return physics.Vec2{}, err
	}
	return b.pos, nil
}

func (w *fakeWorld) Rotation(h physics.BodyHandle) (float64, error) {
	b, err := w.body(h)
	if err != nil {
		return 0, err
	}
	return b.rot, nil
}

func (w *fakeWorld) LinearVelocity(h physics.BodyHandle) (physics.Vec2, error) {
	b, err := w.body(h)
	if err != nil {
		return physics.Vec2{}, err
	}
	return b.vel, nil
}

func (w *fakeWorld) ContactsOf(h physics.ColliderHandle) ([]physics.Contact, error) {
	if _, ok := w.colliders[h]; !ok {
		return nil, physics.ErrUnknownCollider
	}
	out := append([]physics.Contact(nil), w.contacts[h]...)
	return append(out, w.extra[h]...), nil
}

func (w *fakeWorld) BodyCount() int {
	return len(w.bodies)
}
