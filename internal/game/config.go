package game

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/tomz197/asteroidfield/internal/config"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("game: invalid config")

// Config holds every gameplay tunable. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	// TickInterval is the fixed physics step.
	TickInterval time.Duration

	// View half-extents in world units. The spawn annulus sits just outside
	// the rectangle they describe.
	ViewHalfWidth  float64
	ViewHalfHeight float64

	// Ship
	ShipHealth   int
	GracePeriod  time.Duration
	RotateSpeed  float64 // radians per second
	ThrustForce  float64
	FireCooldown time.Duration

	// Bullets
	BulletSpeed float64
	BulletTTL   time.Duration

	// Asteroids
	MaxAsteroidSize int
	InitialCapacity int
	// KickScale converts the random spawn and fragment kicks into speeds.
	KickScale float64
	// FragmentMin and FragmentMax bound how many children a split produces.
	FragmentMin int
	FragmentMax int

	// Shrapnel
	ShrapnelSpeed float64

	// Scoring and difficulty
	ScorePerHit        int
	MilestoneEvery     int
	DifficultyInterval time.Duration
	// DifficultyScoreDivisor: each raise adds floor(score/divisor)+1.
	DifficultyScoreDivisor int

	// RestartDelay is real time, measured from the ship's destruction.
	RestartDelay time.Duration

	// Spawns closer than OverlapEpsilon to an existing body are nudged by
	// PerturbDistance up to SpawnRetries times, then dropped.
	OverlapEpsilon  float64
	PerturbDistance float64
	SpawnRetries    int

	// EngineSpeedScale maps ship speed to engine intensity: speed/scale,
	// clamped to [0, EngineMaxRate], then normalised to [0, 1].
	EngineSpeedScale float64
	EngineMaxRate    float64
}

// DefaultConfig returns the tuning of the original arcade game.
func DefaultConfig() Config {
	return Config{
		TickInterval: time.Second / 60,

		ViewHalfWidth:  20,
		ViewHalfHeight: 12,

		ShipHealth:   3,
		GracePeriod:  5 * time.Second,
		RotateSpeed:  3.5,
		ThrustForce:  12,
		FireCooldown: 200 * time.Millisecond,

		BulletSpeed: 40,
		BulletTTL:   4 * time.Second,

		MaxAsteroidSize: 2,
		InitialCapacity: 20,
		KickScale:       0.5,
		FragmentMin:     1,
		FragmentMax:     3,

		ShrapnelSpeed: 3,

		ScorePerHit:            1,
		MilestoneEvery:         25,
		DifficultyInterval:     10 * time.Second,
		DifficultyScoreDivisor: 10,

		RestartDelay: 6 * time.Second,

		OverlapEpsilon:  0.05,
		PerturbDistance: 0.5,
		SpawnRetries:    4,

		EngineSpeedScale: 10,
		EngineMaxRate:    3,
	}
}

// ConfigFromEnv overlays environment variables on DefaultConfig.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	ints := []struct {
		key string
		dst *int
	}{
		{"ASTEROIDS_CAP", &cfg.InitialCapacity},
		{"ASTEROIDS_MAX_SIZE", &cfg.MaxAsteroidSize},
		{"SHIP_HEALTH", &cfg.ShipHealth},
		{"SCORE_MILESTONE", &cfg.MilestoneEvery},
	}
	for _, v := range ints {
		n, err := config.GetEnvInt(v.key, *v.dst)
		if err != nil {
			return cfg, errors.Wrap(ErrInvalidConfig, err.Error())
		}
		*v.dst = n
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"GRACE_PERIOD", &cfg.GracePeriod},
		{"BULLET_TTL", &cfg.BulletTTL},
		{"FIRE_COOLDOWN", &cfg.FireCooldown},
		{"RESTART_DELAY", &cfg.RestartDelay},
		{"DIFFICULTY_INTERVAL", &cfg.DifficultyInterval},
	}
	for _, v := range durations {
		d, err := config.GetEnvDuration(v.key, *v.dst)
		if err != nil {
			return cfg, errors.Wrap(ErrInvalidConfig, err.Error())
		}
		*v.dst = d
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"VIEW_HALF_WIDTH", &cfg.ViewHalfWidth},
		{"VIEW_HALF_HEIGHT", &cfg.ViewHalfHeight},
		{"BULLET_SPEED", &cfg.BulletSpeed},
	}
	for _, v := range floats {
		f, err := config.GetEnvFloat(v.key, *v.dst)
		if err != nil {
			return cfg, errors.Wrap(ErrInvalidConfig, err.Error())
		}
		*v.dst = f
	}

	return cfg, cfg.Validate()
}

// Validate rejects configurations the simulation cannot run with.
func (c Config) Validate() error {
	switch {
	case c.TickInterval <= 0:
		return errors.Wrap(ErrInvalidConfig, "tick interval must be positive")
	case c.ViewHalfWidth <= 0 || c.ViewHalfHeight <= 0:
		return errors.Wrap(ErrInvalidConfig, "view extents must be positive")
	case c.ShipHealth < 1:
		return errors.Wrapf(ErrInvalidConfig, "ship health %d", c.ShipHealth)
	case c.MaxAsteroidSize < 1:
		return errors.Wrapf(ErrInvalidConfig, "max asteroid size %d", c.MaxAsteroidSize)
	case c.InitialCapacity < 0:
		return errors.Wrapf(ErrInvalidConfig, "asteroid capacity %d", c.InitialCapacity)
	case c.FragmentMin < 1 || c.FragmentMax < c.FragmentMin:
		return errors.Wrapf(ErrInvalidConfig, "fragment count [%d, %d]", c.FragmentMin, c.FragmentMax)
	case c.MilestoneEvery < 1:
		return errors.Wrapf(ErrInvalidConfig, "milestone every %d", c.MilestoneEvery)
	case c.DifficultyInterval <= 0 || c.DifficultyScoreDivisor < 1:
		return errors.Wrap(ErrInvalidConfig, "difficulty interval and divisor must be positive")
	case c.GracePeriod < 0 || c.BulletTTL <= 0 || c.FireCooldown < 0 || c.RestartDelay < 0:
		return errors.Wrap(ErrInvalidConfig, "negative timer")
	case c.OverlapEpsilon <= 0 || c.SpawnRetries < 0:
		return errors.Wrap(ErrInvalidConfig, "overlap guard")
	case c.EngineSpeedScale <= 0 || c.EngineMaxRate <= 0:
		return errors.Wrap(ErrInvalidConfig, "engine scale")
	}
	return nil
}

// LowerSpawnRadius is the view's half diagonal plus the largest asteroid
// radius, so anything spawned beyond it starts fully off screen.
func (c Config) LowerSpawnRadius() float64 {
	return math.Hypot(c.ViewHalfWidth, c.ViewHalfHeight) + float64(c.MaxAsteroidSize)
}

// UpperSpawnRadius is the outer edge of the spawn annulus.
func (c Config) UpperSpawnRadius() float64 {
	return 1.5 * c.LowerSpawnRadius()
}

// CullRadius is the distance from the ship beyond which asteroids are removed.
func (c Config) CullRadius() float64 {
	return 3 * c.LowerSpawnRadius()
}
