package controller

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/locomotion/common"
	"github.com/milk9111/locomotion/mover"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var flat = mgl64.Vec3{0, 1, 0}

func horizontalLen(v mgl64.Vec3) float64 {
	return common.RemoveDotVector(v, common.Up).Len()
}

func TestNewValidatesCollaborators(t *testing.T) {
	body := &simBody{rot: mgl64.QuatIdent()}
	m, err := mover.New(body, &plane{}, mover.DefaultConfig())
	require.NoError(t, err)

	_, err = New(body, m, nil, DefaultConfig())
	require.ErrorIs(t, err, ErrNoInput)

	_, err = New(body, nil, &fakeInput{}, DefaultConfig())
	require.ErrorIs(t, err, ErrNoMover)

	_, err = New(nil, m, &fakeInput{}, DefaultConfig())
	require.ErrorIs(t, err, ErrNoTransform)

	cfg := DefaultConfig()
	cfg.SlopeLimit = 120
	_, err = New(body, m, &fakeInput{}, cfg)
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative_speed", func(c *Config) { c.MovementSpeed = -1 }, true},
		{"negative_duration", func(c *Config) { c.JumpDuration = -0.1 }, true},
		{"negative_gravity", func(c *Config) { c.Gravity = -30 }, true},
		{"slope_limit_90", func(c *Config) { c.SlopeLimit = 90 }, false},
		{"slope_limit_negative", func(c *Config) { c.SlopeLimit = -1 }, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			c.mutate(&cfg)
			err := cfg.Validate()
			if c.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStaysFallingWithoutGround(t *testing.T) {
	r := newRig(t, 10, mgl64.Vec3{}, DefaultConfig())
	require.Equal(t, Falling, r.ctrl.State())

	prev := 0.0
	for i := 0; i < 200; i++ {
		r.step()
		require.Equal(t, Falling, r.ctrl.State(), "step %d", i)

		down := -r.ctrl.Momentum().Y()
		require.Greater(t, down, prev, "step %d", i)
		prev = down
	}
	assert.InDelta(t, 200*30*fixedDT, prev, 1e-6)
	assert.False(t, r.ctrl.IsGrounded())
	assert.Equal(t, 0, r.countEvents(EventLand))
}

func TestDropLandsExactlyOnce(t *testing.T) {
	r := newRig(t, 5, flat, DefaultConfig())

	landedAt := -1
	for i := 0; i < 300; i++ {
		before := r.ctrl.State()
		r.step()
		if before != Grounded && r.ctrl.State() == Grounded {
			require.Equal(t, -1, landedAt, "entered grounded twice")
			landedAt = i
			require.Less(t, r.ctrl.Momentum().Y(), 0.0)

			r.ctrl.FixedUpdate(fixedDT)
			assert.Equal(t, 0.0, r.ctrl.Momentum().Y())
			r.body.integrate(fixedDT)
			r.ctrl.Update()
		}
	}

	require.NotEqual(t, -1, landedAt)
	assert.Equal(t, Grounded, r.ctrl.State())
	assert.Equal(t, 1, r.countEvents(EventLand))
	assert.InDelta(t, restHeight, r.body.pos.Y(), 1e-6)

	require.NotEmpty(t, r.events)
	assert.Equal(t, EventFall, r.events[0].Kind)
	for _, evt := range r.events {
		if evt.Kind == EventLand {
			assert.Less(t, evt.Momentum.Y(), 0.0)
		}
	}
}

func settle(t *testing.T, r *rig) {
	t.Helper()
	for i := 0; i < 5; i++ {
		r.step()
	}
	require.Equal(t, Grounded, r.ctrl.State())
}

func TestJumpPinsVerticalUntilTimerExpires(t *testing.T) {
	r := newRig(t, restHeight, flat, DefaultConfig())
	settle(t, r)

	r.input.held = true
	r.ctrl.Update()
	require.Equal(t, Jumping, r.ctrl.State())
	assert.Equal(t, 10.0, r.ctrl.Momentum().Y())
	assert.True(t, r.ctrl.JumpInputLocked())
	require.Equal(t, 1, r.countEvents(EventJump))
	assert.InDelta(t, 10, r.events[len(r.events)-1].Momentum.Y(), 1e-12)

	steps := 0
	for r.ctrl.State() == Jumping && steps < 50 {
		r.ctrl.FixedUpdate(fixedDT)
		assert.InDelta(t, 10, r.ctrl.Momentum().Y(), 1e-12)
		r.body.integrate(fixedDT)
		r.ctrl.Update()
		steps++
	}

	assert.Equal(t, Rising, r.ctrl.State())
	assert.GreaterOrEqual(t, steps, 10)
	assert.LessOrEqual(t, steps, 11)
	assert.Greater(t, r.body.pos.Y(), restHeight+1.5)
}

func TestJumpEndsOnRelease(t *testing.T) {
	r := newRig(t, restHeight, flat, DefaultConfig())
	settle(t, r)

	r.input.held = true
	r.ctrl.Update()
	require.Equal(t, Jumping, r.ctrl.State())

	for i := 0; i < 3; i++ {
		r.step()
		require.Equal(t, Jumping, r.ctrl.State())
	}

	r.input.held = false
	r.step()
	assert.Equal(t, Rising, r.ctrl.State())
	assert.False(t, r.ctrl.JumpInputLocked())
}

func TestHeldJumpKeyDoesNotRejump(t *testing.T) {
	r := newRig(t, restHeight, flat, DefaultConfig())
	settle(t, r)

	r.input.held = true
	for i := 0; i < 300 && r.countEvents(EventLand) < 2; i++ {
		r.step()
	}
	require.Equal(t, 2, r.countEvents(EventLand))
	require.Equal(t, 1, r.countEvents(EventJump))

	for i := 0; i < 20; i++ {
		r.step()
	}
	assert.Equal(t, Grounded, r.ctrl.State())
	assert.Equal(t, 1, r.countEvents(EventJump))

	r.input.held = false
	r.step()
	r.input.held = true
	r.step()
	assert.Equal(t, Jumping, r.ctrl.State())
	assert.Equal(t, 2, r.countEvents(EventJump))
}

func TestCeilingHitEndsJump(t *testing.T) {
	ceiling := &fakeCeiling{}
	r := newRig(t, restHeight, flat, DefaultConfig(), WithCeilingDetector(ceiling))
	settle(t, r)

	r.input.held = true
	r.ctrl.Update()
	require.Equal(t, Jumping, r.ctrl.State())
	assert.Equal(t, 1, ceiling.resets)

	r.step()
	ceiling.hit = true
	r.step()
	assert.Equal(t, Falling, r.ctrl.State())
	assert.Equal(t, 2, ceiling.resets)
	assert.False(t, ceiling.hit)
}

func TestSlopeLimit(t *testing.T) {
	cases := []struct {
		name  string
		angle float64
		want  State
	}{
		{"gentle", 25, Grounded},
		{"flat", 0, Grounded},
		{"steep", 35, Sliding},
		{"very_steep", 60, Sliding},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newRig(t, restHeight, flat, DefaultConfig())
			settle(t, r)

			r.ground.normal = tilted(c.angle)
			for i := 0; i < 5; i++ {
				r.step()
				require.Equal(t, c.want, r.ctrl.State(), "step %d", i)
			}
		})
	}
}

func TestSlidingAcceleratesDownhill(t *testing.T) {
	r := newRig(t, restHeight, flat, DefaultConfig())
	settle(t, r)

	r.ground.normal = tilted(45)
	r.step()
	require.Equal(t, Sliding, r.ctrl.State())

	prevX := 0.0
	for i := 0; i < 10; i++ {
		r.step()
		require.Equal(t, Sliding, r.ctrl.State())
		x := r.ctrl.Momentum().X()
		require.Greater(t, x, prevX)
		prevX = x
		assert.LessOrEqual(t, r.ctrl.Momentum().Dot(tilted(45)), 1e-9)
	}
	assert.Greater(t, r.body.pos.X(), 0.0)
}

func TestAirControlClamp(t *testing.T) {
	cases := []struct {
		name    string
		initial mgl64.Vec3
		input   mgl64.Vec2
	}{
		{"below_cap_along", mgl64.Vec3{2, 0, 0}, mgl64.Vec2{1, 0}},
		{"below_cap_against", mgl64.Vec3{2, 0, 0}, mgl64.Vec2{-1, 0}},
		{"below_cap_diagonal", mgl64.Vec3{0, 0, 6.5}, mgl64.Vec2{1, 1}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newRig(t, 100, mgl64.Vec3{}, DefaultConfig())
			r.ctrl.SetMomentum(c.initial)
			r.input.dir = c.input

			for i := 0; i < 100; i++ {
				r.step()
				require.LessOrEqual(t, horizontalLen(r.ctrl.Momentum()), 7+1e-9, "step %d", i)
			}
		})
	}
}

func TestAirControlAboveCapCannotAccelerate(t *testing.T) {
	cases := []struct {
		name  string
		input mgl64.Vec2
	}{
		{"along", mgl64.Vec2{1, 0}},
		{"sideways", mgl64.Vec2{0, 1}},
		{"none", mgl64.Vec2{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newRig(t, 100, mgl64.Vec3{}, DefaultConfig())
			r.ctrl.SetMomentum(mgl64.Vec3{12, 0, 0})
			r.input.dir = c.input

			prev := 12.0
			for i := 0; i < 20; i++ {
				r.step()
				h := horizontalLen(r.ctrl.Momentum())
				require.Less(t, h, prev, "step %d", i)
				prev = h
			}
		})
	}
}

func TestGroundContactLost(t *testing.T) {
	cases := []struct {
		name     string
		momentum mgl64.Vec3
		movement mgl64.Vec3
		want     mgl64.Vec3
	}{
		{"no_momentum", mgl64.Vec3{}, mgl64.Vec3{7, 0, 0}, mgl64.Vec3{7, 0, 0}},
		{"momentum_exceeds_movement", mgl64.Vec3{10, 0, 0}, mgl64.Vec3{7, 0, 0}, mgl64.Vec3{10, 0, 0}},
		{"momentum_equals_movement", mgl64.Vec3{7, 0, 0}, mgl64.Vec3{7, 0, 0}, mgl64.Vec3{7, 0, 0}},
		{"partial_overlap", mgl64.Vec3{3, 0, 0}, mgl64.Vec3{7, 0, 0}, mgl64.Vec3{7, 0, 0}},
		{"opposing", mgl64.Vec3{-3, 0, 0}, mgl64.Vec3{7, 0, 0}, mgl64.Vec3{4, 0, 0}},
		{"vertical_only", mgl64.Vec3{0, 5, 0}, mgl64.Vec3{7, 0, 0}, mgl64.Vec3{7, 5, 0}},
		{"no_movement", mgl64.Vec3{3, 0, 0}, mgl64.Vec3{}, mgl64.Vec3{3, 0, 0}},
		{"oblique", mgl64.Vec3{3, 0, 4}, mgl64.Vec3{7, 0, 0}, mgl64.Vec3{7, 0, 4}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newRig(t, 100, mgl64.Vec3{}, DefaultConfig())
			r.ctrl.SetMomentum(c.momentum)
			r.ctrl.savedMovementVelocity = c.movement

			r.ctrl.onGroundContactLost()
			got := r.ctrl.Momentum()
			assert.True(t, c.want.ApproxEqualThreshold(got, 1e-9), "want %v, got %v", c.want, got)
		})
	}
}

func TestMovementOnlyAppliedWhenGrounded(t *testing.T) {
	r := newRig(t, restHeight, flat, DefaultConfig())
	settle(t, r)

	r.input.dir = mgl64.Vec2{1, 0}
	r.step()
	assert.True(t, mgl64.Vec3{7, 0, 0}.ApproxEqualThreshold(r.ctrl.Velocity(), 1e-9), "velocity %v", r.ctrl.Velocity())
	assert.Equal(t, 0.0, r.ctrl.Momentum().Len())

	air := newRig(t, 100, mgl64.Vec3{}, DefaultConfig())
	air.input.dir = mgl64.Vec2{1, 0}
	air.step()
	assert.InDelta(t, 7*fixedDT*2-0.5*fixedDT, air.ctrl.Velocity().X(), 1e-9)
	assert.True(t, mgl64.Vec3{7, 0, 0}.ApproxEqualThreshold(air.ctrl.MovementVelocity(), 1e-9))
}

type fixedCamera struct {
	right, forward mgl64.Vec3
}

func (c fixedCamera) Right() mgl64.Vec3 { return c.right }
func (c fixedCamera) Forward() mgl64.Vec3 { return c.forward }

func TestMovementDirection(t *testing.T) {
	pitched := fixedCamera{right: mgl64.Vec3{1, 0, 0}, forward: mgl64.Vec3{0, -1, 1}}
	yawed := fixedCamera{right: mgl64.Vec3{0, 0, -1}, forward: mgl64.Vec3{1, 0, 0}}

	cases := []struct {
		name   string
		camera CameraProvider
		input  mgl64.Vec2
		want   mgl64.Vec3
	}{
		{"body_forward", nil, mgl64.Vec2{0, 1}, mgl64.Vec3{0, 0, 7}},
		{"body_partial", nil, mgl64.Vec2{0.5, 0}, mgl64.Vec3{3.5, 0, 0}},
		{"body_diagonal_normalized", nil, mgl64.Vec2{1, 1}, mgl64.Vec3{7 / math.Sqrt2, 0, 7 / math.Sqrt2}},
		{"camera_pitch_flattened", pitched, mgl64.Vec2{0, 1}, mgl64.Vec3{0, 0, 7}},
		{"camera_yaw", yawed, mgl64.Vec2{1, 0}, mgl64.Vec3{0, 0, -7}},
		{"camera_yaw_forward", yawed, mgl64.Vec2{0, 0.5}, mgl64.Vec3{3.5, 0, 0}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var opts []Option
			if c.camera != nil {
				opts = append(opts, WithCamera(c.camera))
			}
			r := newRig(t, 100, mgl64.Vec3{}, DefaultConfig(), opts...)
			r.input.dir = c.input
			r.step()
			got := r.ctrl.MovementVelocity()
			assert.True(t, c.want.ApproxEqualThreshold(got, 1e-9), "want %v, got %v", c.want, got)
		})
	}
}

func TestLocalMomentumFollowsRotation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseLocalMomentum = true
	r := newRig(t, 100, mgl64.Vec3{}, cfg)
	r.body.rot = mgl64.QuatRotate(mgl64.DegToRad(37), common.Up)

	world := mgl64.Vec3{1.5, -2, 3}
	r.ctrl.SetMomentum(world)
	assert.True(t, world.ApproxEqualThreshold(r.ctrl.Momentum(), 1e-9))

	// Local storage turns momentum with the body.
	r.body.rot = mgl64.QuatRotate(mgl64.DegToRad(127), common.Up)
	turned := mgl64.QuatRotate(mgl64.DegToRad(90), common.Up).Rotate(world)
	assert.True(t, turned.ApproxEqualThreshold(r.ctrl.Momentum(), 1e-9), "got %v", r.ctrl.Momentum())

	// Switching to world storage keeps the world-space value.
	cfg.UseLocalMomentum = false
	require.NoError(t, r.ctrl.Configure(cfg))
	assert.True(t, turned.ApproxEqualThreshold(r.ctrl.Momentum(), 1e-9))
}

func TestLocalMomentumIntegratesLikeWorld(t *testing.T) {
	local := DefaultConfig()
	local.UseLocalMomentum = true

	a := newRig(t, 100, mgl64.Vec3{}, DefaultConfig())
	b := newRig(t, 100, mgl64.Vec3{}, local)
	b.body.rot = mgl64.QuatRotate(mgl64.DegToRad(60), common.Up)
	a.body.rot = b.body.rot

	for _, r := range []*rig{a, b} {
		r.ctrl.SetMomentum(mgl64.Vec3{3, 0, 1})
		r.input.dir = mgl64.Vec2{1, 0.5}
	}
	for i := 0; i < 25; i++ {
		a.step()
		b.step()
	}
	assert.True(t, a.ctrl.Momentum().ApproxEqualThreshold(b.ctrl.Momentum(), 1e-9))
}

func TestConfigureChangesJumpSpeed(t *testing.T) {
	r := newRig(t, restHeight, flat, DefaultConfig())
	settle(t, r)

	cfg := DefaultConfig()
	cfg.JumpSpeed = 14
	require.NoError(t, r.ctrl.Configure(cfg))

	bad := cfg
	bad.Gravity = -1
	require.Error(t, r.ctrl.Configure(bad))

	r.input.held = true
	r.ctrl.Update()
	assert.Equal(t, 14.0, r.ctrl.Momentum().Y())
}
