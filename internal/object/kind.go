package object

// Kind tags an Entity with its variant. It never changes after creation.
type Kind uint8

const (
	KindShip Kind = iota
	KindAsteroid
	KindBullet
	KindDebris
)

func (k Kind) String() string {
	switch k {
	case KindShip:
		return "ship"
	case KindAsteroid:
		return "asteroid"
	case KindBullet:
		return "bullet"
	case KindDebris:
		return "debris"
	}
	return "unknown"
}

// Effect is what happens to the world when an entity of some kind is destroyed.
type Effect uint8

const (
	// EffectNone just disposes the entity.
	EffectNone Effect = iota
	// EffectFragment splits an asteroid into smaller ones.
	EffectFragment
	// EffectShrapnel replaces the ship with one debris segment per outline edge.
	EffectShrapnel
)

// Behavior is the per-kind rule table the simulation dispatches on.
type Behavior struct {
	// Damageable entities lose health when hit. Debris is not.
	Damageable bool
	// HarmedByAsteroids marks kinds that take a hit when they touch an asteroid
	// (and deal one back).
	HarmedByAsteroids bool
	// ScoresOnHit kinds award points when they hit an asteroid.
	ScoresOnHit bool
	// Sensor colliders report contacts without pushing anything.
	Sensor bool
	// Health is the starting health. The ship's comes from configuration.
	Health int
	// Destruction runs when health reaches zero.
	Destruction Effect
}

var behaviors = [...]Behavior{
	KindShip: {
		Damageable:        true,
		HarmedByAsteroids: true,
		Health:            3,
		Destruction:       EffectShrapnel,
	},
	KindAsteroid: {
		Damageable:  true,
		Health:      1,
		Destruction: EffectFragment,
	},
	KindBullet: {
		Damageable:        true,
		HarmedByAsteroids: true,
		ScoresOnHit:       true,
		Sensor:            true,
		Health:            1,
	},
	KindDebris: {},
}

// Behavior returns the rule table for k.
func (k Kind) Behavior() Behavior {
	if int(k) < len(behaviors) {
		return behaviors[k]
	}
	return Behavior{}
}
