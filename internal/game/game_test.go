package game

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/asteroidfield/internal/input"
	"github.com/tomz197/asteroidfield/internal/object"
	"github.com/tomz197/asteroidfield/internal/physics"
	"github.com/tomz197/asteroidfield/internal/timer"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShipHealth = 0
	_, err := New(cfg, Options{World: newFakeWorld()})
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestNewStartsAwaitingStart(t *testing.T) {
	h := newHarness(t, nil)
	h.tick(nil)
	assert.Equal(t, AwaitingStart, h.g.State())
	assert.Nil(t, h.g.Ship())
	assert.Equal(t, 0, h.world.steps, "nothing simulates before the first start")
	assert.NotEmpty(t, h.g.ID())
}

func TestStartIsEdgeTriggered(t *testing.T) {
	h := newHarness(t, nil)
	h.tick(keys{input.KeyStart: true})
	require.Equal(t, Playing, h.g.State())
	ship := h.g.Ship()
	require.NotNil(t, ship)
	assert.Equal(t, 3, ship.Health)
	assert.Equal(t, 3, ship.MaxHealth)
	assert.Equal(t, CueStart, h.audio.cues[0])
}

func TestFireIntoAsteroidScoresAndFragments(t *testing.T) {
	h := newHarness(t, nil)
	h.start()

	rock := h.rock(physics.V(0, 4), 2)
	origin := rock.Position

	h.tick(keys{input.KeyFire: true})

	assert.Equal(t, 1, h.g.Score())
	assert.True(t, rock.Disposed())
	assert.Equal(t, 0, h.g.Count(object.KindBullet), "the bullet dies on its first hit")

	children := h.g.Entities(object.KindAsteroid)
	require.GreaterOrEqual(t, len(children), 1)
	require.LessOrEqual(t, len(children), 3)
	for _, c := range children {
		assert.Equal(t, 1, c.Size)
		assert.LessOrEqual(t, physics.Distance(c.Position, origin), 2+1e-9)
	}
	assert.Equal(t, 0, h.world.badReleases)
}

func TestSmallestAsteroidLeavesNothing(t *testing.T) {
	h := newHarness(t, nil)
	h.start()

	rock := h.rock(physics.V(0, 3), 1)
	h.tick(keys{input.KeyFire: true})

	assert.True(t, rock.Disposed())
	assert.Equal(t, 0, h.g.Count(object.KindAsteroid))
	assert.Equal(t, 1, h.g.Score())
}

func TestFragmentCountsAndSizes(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.MaxAsteroidSize = 4 })
	h.start()

	for i := 0; i < 20; i++ {
		parent := h.rock(physics.V(float64(i*40), 200), 4)
		before := h.g.Count(object.KindAsteroid)

		h.g.destroy(parent)

		spawned := h.g.Count(object.KindAsteroid) - (before - 1)
		assert.GreaterOrEqual(t, spawned, 1)
		assert.LessOrEqual(t, spawned, 3)
		for _, c := range h.g.Entities(object.KindAsteroid) {
			if c.ID > parent.ID {
				assert.Equal(t, 3, c.Size)
			}
		}
		for _, c := range h.g.Entities(object.KindAsteroid) {
			h.g.dispose(c)
		}
	}
	assert.Equal(t, 0, h.world.badReleases)
}

func TestShipDestructionScenario(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.ShipHealth = 1 })
	h.start()
	ship := h.g.Ship()

	h.rock(physics.V(0, 2), 1)
	h.tick(nil)

	assert.True(t, ship.Disposed())
	assert.Equal(t, GameOver, h.g.State())
	assert.Equal(t, len(object.ShipOutline), h.g.Count(object.KindDebris))
	assert.False(t, h.g.AllowRestart())

	debris := h.g.Entities(object.KindDebris)
	for _, d := range debris {
		assert.Equal(t, ship.Position, d.Position)
	}

	// Shrapnel keeps drifting after game over.
	steps := h.world.steps
	h.tick(nil)
	assert.Equal(t, steps+1, h.world.steps)
	moved := false
	for _, d := range debris {
		if d.Position != ship.Position {
			moved = true
		}
	}
	assert.True(t, moved)

	// The latch opens after the delay, not before.
	cfg := h.g.Config()
	h.clock.Advance(cfg.RestartDelay - 3*cfg.TickInterval)
	h.tick(nil)
	assert.False(t, h.g.AllowRestart())
	h.tick(nil)
	assert.True(t, h.g.AllowRestart())
	assert.Equal(t, 0, h.world.badReleases)
}

func TestDamageOrderOtherBeforeAsteroid(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.ShipHealth = 1 })
	h.start()

	rock := h.rock(physics.V(0, 3.2), 2)
	h.tick(nil)

	require.True(t, rock.Disposed())
	explosion := h.audio.index(CueExplosion)
	rockBreak := h.audio.index(CueRockBreak)
	require.NotEqual(t, -1, explosion)
	require.NotEqual(t, -1, rockBreak)
	assert.Less(t, explosion, rockBreak)
	assert.GreaterOrEqual(t, h.g.Count(object.KindAsteroid), 1, "fragments still spawn from the pre-damage pose")
}

func TestRestartLockedThenAllowed(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.ShipHealth = 1 })
	h.start()
	h.rock(physics.V(0, 2), 1)
	h.tick(nil)
	require.Equal(t, GameOver, h.g.State())

	h.tick(keys{input.KeyStart: true})
	assert.Equal(t, GameOver, h.g.State())
	assert.True(t, errors.Is(h.g.Restart(), ErrRestartLocked))

	h.clock.Advance(h.g.Config().RestartDelay)
	h.tick(nil)
	require.True(t, h.g.AllowRestart())

	h.tick(keys{input.KeyStart: true})
	assert.Equal(t, Playing, h.g.State())
	assert.Equal(t, 0, h.g.Count(object.KindDebris))
	assert.Equal(t, 0, h.g.Score())
	require.NotNil(t, h.g.Ship())
	assert.True(t, h.g.Ship().Alive())
	assert.Equal(t, 1, h.g.Ship().Health)
	assert.Equal(t, h.g.live.Len(), h.world.BodyCount())
	assert.Equal(t, 0, h.world.badReleases)
}

func TestRestartOnlyFromGameOver(t *testing.T) {
	h := newHarness(t, nil)
	assert.True(t, errors.Is(h.g.Restart(), ErrNotGameOver))
	h.start()
	assert.True(t, errors.Is(h.g.Restart(), ErrNotGameOver))
}

func TestMilestoneGrantsHealthOnThatTick(t *testing.T) {
	h := newHarness(t, nil)
	h.start()
	ship := h.g.Ship()

	h.g.score = 24
	h.tick(nil)
	assert.Equal(t, 3, ship.MaxHealth)

	h.rock(physics.V(0, 3), 1)
	h.tick(keys{input.KeyFire: true})

	assert.Equal(t, 25, h.g.Score())
	assert.Equal(t, 4, ship.MaxHealth)
	assert.Equal(t, 4, ship.Health)
}

func TestGracePeriodBlocksDamage(t *testing.T) {
	h := newHarness(t, nil)
	h.start()
	ship := h.g.Ship()

	h.rock(physics.V(0, 2), 1)
	h.tick(nil)
	assert.Equal(t, 2, ship.Health)
	assert.True(t, ship.Invulnerable())
	assert.Equal(t, CueImpact, h.audio.cues[len(h.audio.cues)-2])

	h.rock(physics.V(0, 2), 1)
	h.tick(nil)
	assert.Equal(t, 2, ship.Health, "hits during the grace period are ignored")

	h.clock.Advance(h.g.Config().GracePeriod)
	h.tick(nil)
	assert.False(t, ship.Invulnerable())
	assert.Zero(t, ship.TrackedTimers())

	h.rock(physics.V(0, 2), 1)
	h.tick(nil)
	assert.Equal(t, 1, ship.Health)
}

func TestBulletExpiresOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.start()

	h.tick(keys{input.KeyFire: true})
	require.Equal(t, 1, h.g.Count(object.KindBullet))
	bullet := h.g.Entities(object.KindBullet)[0]

	h.clock.Advance(h.g.Config().BulletTTL)
	h.tick(nil)
	assert.True(t, bullet.Disposed())
	assert.Equal(t, 0, h.g.Count(object.KindBullet))

	// A later dispose from any other path is harmless.
	h.g.dispose(bullet)
	assert.Equal(t, 0, h.world.badReleases)
}

func TestBulletHitCancelsExpiry(t *testing.T) {
	h := newHarness(t, nil)
	h.start()
	h.rock(physics.V(0, 3), 1)
	h.tick(keys{input.KeyFire: true})
	require.Equal(t, 0, h.g.Count(object.KindBullet))

	h.clock.Advance(time.Minute)
	h.tick(nil)
	assert.Equal(t, 0, h.g.timers.Len())
	assert.Equal(t, 0, h.world.badReleases)
}

func TestFireCooldown(t *testing.T) {
	h := newHarness(t, nil)
	h.start()

	h.tick(keys{input.KeyFire: true})
	h.tick(keys{input.KeyFire: true})
	assert.Equal(t, 1, h.g.Count(object.KindBullet))

	h.clock.Advance(h.g.Config().FireCooldown)
	h.tick(keys{input.KeyFire: true})
	assert.Equal(t, 2, h.g.Count(object.KindBullet))
}

func TestCooldownTimersAreForgotten(t *testing.T) {
	h := newHarness(t, nil)
	h.start()
	ship := h.g.Ship()

	for i := 0; i < 20; i++ {
		h.tick(keys{input.KeyFire: true})
		h.clock.Advance(h.g.Config().FireCooldown)
		h.tick(nil)
	}
	assert.Zero(t, ship.TrackedTimers())

	h.tick(keys{input.KeyFire: true})
	assert.Equal(t, 1, ship.TrackedTimers())
}

func TestBulletInheritsShipVelocity(t *testing.T) {
	h := newHarness(t, nil)
	h.start()
	ship := h.g.Ship()
	require.NoError(t, h.world.SetLinearVelocity(ship.Body, physics.V(5, 0)))
	h.tick(nil)

	h.tick(keys{input.KeyFire: true})
	b := h.g.Entities(object.KindBullet)[0]
	v, err := h.world.LinearVelocity(b.Body)
	require.NoError(t, err)
	assert.InDelta(t, 5, v.X, 1e-9)
	assert.InDelta(t, h.g.Config().BulletSpeed, v.Y, 1e-9)
}

func TestSteering(t *testing.T) {
	h := newHarness(t, nil)
	h.start()
	ship := h.g.Ship()
	cfg := h.g.Config()

	h.tick(keys{input.KeyLeft: true})
	assert.InDelta(t, cfg.RotateSpeed*cfg.TickInterval.Seconds(), ship.Rotation, 1e-9)

	h.tick(keys{input.KeyRight: true})
	assert.InDelta(t, 0, ship.Rotation, 1e-9)

	h.tick(keys{input.KeyThrust: true})
	assert.Greater(t, ship.Velocity.Y, 0.0)
	assert.InDelta(t, 0, ship.Velocity.X, 1e-9)
}

func TestSpawnerFillsAnnulusWithoutOvershoot(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.InitialCapacity = 20 })
	h.start()
	cfg := h.g.Config()

	require.Equal(t, 20, h.g.Count(object.KindAsteroid))
	for _, a := range h.g.Entities(object.KindAsteroid) {
		d := physics.Distance(a.Position, h.g.Ship().Position)
		assert.GreaterOrEqual(t, d, cfg.LowerSpawnRadius()-0.5)
		assert.LessOrEqual(t, d, cfg.UpperSpawnRadius()+0.5)
		assert.GreaterOrEqual(t, a.Size, 1)
		assert.LessOrEqual(t, a.Size, cfg.MaxAsteroidSize)
	}

	for i := 0; i < 30; i++ {
		h.tick(nil)
		assert.LessOrEqual(t, h.g.Count(object.KindAsteroid), h.g.Capacity())
	}

	h.g.capacity = 25
	h.tick(nil)
	assert.Equal(t, 25, h.g.Count(object.KindAsteroid))
}

func TestSpawnedAsteroidsDriftInward(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.InitialCapacity = 20 })
	h.start()
	ship := h.g.Ship().Position

	for _, a := range h.g.Entities(object.KindAsteroid) {
		outward := a.Position.Sub(ship).Normalize()
		assert.Less(t, a.Velocity.Dot(outward), 0.0)
	}
}

func TestCullingFollowsTheShip(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.InitialCapacity = 20 })
	h.start()
	cfg := h.g.Config()
	ship := h.g.Ship()

	require.NoError(t, h.world.SetTranslation(ship.Body, physics.V(1000, 0)))
	h.tick(nil)
	for _, a := range h.g.Entities(object.KindAsteroid) {
		assert.LessOrEqual(t, physics.Distance(a.Position, ship.Position), cfg.CullRadius())
	}

	h.tick(nil)
	assert.Equal(t, 20, h.g.Count(object.KindAsteroid))
	for _, a := range h.g.Entities(object.KindAsteroid) {
		assert.LessOrEqual(t, physics.Distance(a.Position, ship.Position), cfg.UpperSpawnRadius()+0.5)
	}
	assert.Equal(t, h.g.live.Len(), h.world.BodyCount())
}

func TestCullBoundary(t *testing.T) {
	h := newHarness(t, nil)
	h.start()
	limit := h.g.Config().CullRadius()

	near := h.rock(physics.V(limit-1, 0), 1)
	far := h.rock(physics.V(limit+1, 0), 2)
	h.g.cull()

	assert.True(t, near.Alive())
	assert.True(t, far.Disposed())
}

func TestPauseIsEdgeTriggeredAndFreezes(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.InitialCapacity = 3 })
	h.start()

	h.tick(keys{input.KeyFire: true})
	bullet := h.g.Entities(object.KindBullet)[0]

	h.tick(keys{input.KeyPause: true})
	require.True(t, h.g.Paused())
	steps := h.world.steps
	pos := bullet.Position
	assert.Equal(t, 0.0, h.audio.engine)

	for i := 0; i < 3; i++ {
		h.tick(keys{input.KeyPause: true})
	}
	h.clock.Advance(time.Minute)
	h.tick(nil)
	assert.True(t, h.g.Paused(), "holding the key does not toggle again")
	assert.Equal(t, steps, h.world.steps)
	assert.Equal(t, pos, bullet.Position)
	assert.False(t, bullet.Disposed(), "game time stands still while paused")
	assert.True(t, h.renderer.last().Paused)

	h.tick(keys{input.KeyPause: true})
	assert.False(t, h.g.Paused())
	assert.Equal(t, steps+1, h.world.steps)
	assert.False(t, bullet.Disposed())
}

func TestPauseOnlyWhilePlaying(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.ShipHealth = 1 })
	h.tick(keys{input.KeyPause: true})
	assert.False(t, h.g.Paused())

	h.start()
	h.rock(physics.V(0, 2), 1)
	h.tick(nil)
	require.Equal(t, GameOver, h.g.State())

	h.tick(keys{input.KeyPause: true})
	assert.False(t, h.g.Paused())
}

func TestDifficultyRaisesCapacity(t *testing.T) {
	h := newHarness(t, nil)
	h.start()
	require.Equal(t, 0, h.g.Capacity())

	h.g.score = 15
	h.clock.Advance(h.g.Config().DifficultyInterval)
	h.tick(nil)
	assert.Equal(t, 2, h.g.Capacity())

	h.tick(nil)
	assert.Equal(t, 2, h.g.Count(object.KindAsteroid))
}

func TestOverlappingSpawnIsPerturbedOrSkipped(t *testing.T) {
	h := newHarness(t, nil)
	h.start()
	p := physics.V(50, 50)
	h.rock(p, 1)

	h.g.cfg.SpawnRetries = 0
	bodies := h.world.BodyCount()
	_, err := h.g.spawnAsteroid(h.g.newOccupancy(), p, 1, physics.Vec2{}, physics.Vec2{})
	assert.True(t, errors.Is(err, ErrOverlappingSpawn))
	assert.Equal(t, bodies, h.world.BodyCount())

	h.g.cfg.SpawnRetries = 4
	a, err := h.g.spawnAsteroid(h.g.newOccupancy(), p, 1, physics.Vec2{}, physics.Vec2{})
	require.NoError(t, err)
	assert.InDelta(t, h.g.cfg.PerturbDistance, physics.Distance(a.Position, p), 1e-9)
}

func TestStaleContactIsSkipped(t *testing.T) {
	h := newHarness(t, nil)
	h.start()
	rock := h.rock(physics.V(0, 10), 2)
	h.world.extra[rock.Collider] = []physics.Contact{{Other: 9999}}

	assert.NotPanics(t, func() { h.tick(nil) })
	assert.True(t, rock.Alive())
	assert.Equal(t, 0, h.g.Score())
}

func TestBulletDisposedMidPhaseIsMissedByOthers(t *testing.T) {
	h := newHarness(t, nil)
	h.start()
	left := h.rock(physics.V(-1, 2.5), 1)
	right := h.rock(physics.V(1, 2.5), 1)

	h.tick(keys{input.KeyFire: true})

	assert.Equal(t, 1, h.g.Score())
	assert.NotEqual(t, left.Disposed(), right.Disposed(), "exactly one rock takes the bullet")
	assert.Equal(t, 0, h.world.badReleases)
}

func TestDebrisTakesNoDamage(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.ShipHealth = 1 })
	h.start()
	h.rock(physics.V(0, 2), 1)
	h.tick(nil)
	require.Equal(t, GameOver, h.g.State())

	d := h.g.Entities(object.KindDebris)[0]
	h.g.resolveContact(h.rock(physics.V(0, 0), 1), d)
	assert.True(t, d.Alive())
}

func TestEngineIntensity(t *testing.T) {
	h := newHarness(t, nil)
	h.start()
	require.NoError(t, h.world.SetLinearVelocity(h.g.Ship().Body, physics.V(15, 0)))
	h.tick(nil)
	assert.InDelta(t, 0.5, h.audio.engine, 1e-9)

	require.NoError(t, h.world.SetLinearVelocity(h.g.Ship().Body, physics.V(100, 0)))
	h.tick(nil)
	assert.InDelta(t, 1, h.audio.engine, 1e-9)
}

func TestFrameProjection(t *testing.T) {
	h := newHarness(t, nil)
	h.start()
	h.rock(physics.V(0, 10), 2)
	h.tick(nil)

	f := h.renderer.last()
	assert.Equal(t, h.g.ID(), f.Session)
	assert.Equal(t, Playing, f.State)
	assert.Equal(t, 3, f.Health)
	assert.Equal(t, 3, f.MaxHealth)
	assert.Len(t, f.Entities, 2)
	assert.Equal(t, h.g.Ship().Position, f.Camera)

	raw, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"state":"playing"`)
}

func TestBox2DSessionRunsClean(t *testing.T) {
	clock := timer.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	g, err := New(DefaultConfig(), Options{Clock: clock, Rand: rand.New(rand.NewSource(3))})
	require.NoError(t, err)

	g.Tick(keys{input.KeyStart: true})
	require.Equal(t, Playing, g.State())

	controls := keys{input.KeyThrust: true, input.KeyFire: true, input.KeyLeft: true}
	for i := 0; i < 240; i++ {
		clock.Advance(g.Config().TickInterval)
		g.Tick(controls)
		assert.Equal(t, g.live.Len(), g.world.BodyCount())
	}
	assert.Greater(t, g.Count(object.KindAsteroid), 0)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("ASTEROIDS_CAP", "30")
	t.Setenv("GRACE_PERIOD", "2s")
	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.InitialCapacity)
	assert.Equal(t, 2*time.Second, cfg.GracePeriod)

	t.Setenv("SHIP_HEALTH", "lots")
	_, err = ConfigFromEnv()
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestSpawnRadii(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ViewHalfWidth, cfg.ViewHalfHeight, cfg.MaxAsteroidSize = 3, 4, 2
	assert.Equal(t, 7.0, cfg.LowerSpawnRadius())
	assert.Equal(t, 10.5, cfg.UpperSpawnRadius())
	assert.Equal(t, 21.0, cfg.CullRadius())
}

func TestStateTextRoundTrip(t *testing.T) {
	for _, s := range []State{AwaitingStart, Playing, GameOver} {
		text, err := s.MarshalText()
		require.NoError(t, err)
		var got State
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, s, got)
	}
	var bad State
	assert.Error(t, bad.UnmarshalText([]byte("warp-speed")))
}
