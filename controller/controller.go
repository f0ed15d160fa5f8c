// Package controller turns directional input and ground contact into a body
// velocity every fixed step while tracking the locomotion State.
//
// Call Update once per rendered frame and FixedUpdate once per physics step.
// State transitions are evaluated only in Update; FixedUpdate senses ground,
// integrates momentum and hands the resulting velocity to the Mover.
package controller

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/locomotion/common"
	"github.com/milk9111/locomotion/fsm"
	"go.uber.org/zap"
)

var (
	ErrNoTransform = errors.New("controller: transform is required")
	ErrNoMover     = errors.New("controller: mover is required")
	ErrNoInput     = errors.New("controller: input provider is required")
)

// Transform is the orientation of the controlled body.
type Transform interface {
	Rotation() mgl64.Quat
}

// Mover senses ground and applies velocity to the body.
type Mover interface {
	CheckForGround(dt float64)
	IsGrounded() bool
	GroundNormal() mgl64.Vec3
	SetVelocity(v mgl64.Vec3)
	SetExtendSensorRange(extend bool)
}

// InputProvider supplies the raw movement direction (each axis in [-1, 1],
// not normalized) and the jump key state.
type InputProvider interface {
	Direction() mgl64.Vec2
	JumpHeld() bool
}

// CameraProvider aligns movement input with a camera.
type CameraProvider interface {
	Right() mgl64.Vec3
	Forward() mgl64.Vec3
}

// CeilingDetector latches when the body bumps its head.
type CeilingDetector interface {
	HitCeiling() bool
	Reset()
}

type Option func(*Controller)

func WithCamera(camera CameraProvider) Option {
	return func(c *Controller) {
		c.camera = camera
	}
}

func WithCeilingDetector(detector CeilingDetector) Option {
	return func(c *Controller) {
		c.ceiling = detector
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type Controller struct {
	transform Transform
	mover     Mover
	input     InputProvider
	camera    CameraProvider
	ceiling   CeilingDetector
	logger    *zap.Logger

	cfg     Config
	machine *fsm.Machine[State]

	// momentum is in local space when cfg.UseLocalMomentum is set.
	momentum              mgl64.Vec3
	savedVelocity         mgl64.Vec3
	savedMovementVelocity mgl64.Vec3

	jumpTimer       *common.CountdownTimer
	jumpPressed     *fsm.Trigger
	jumpReleased    *fsm.Trigger
	jumpKeyHeld     bool
	jumpInputLocked bool

	dt          float64
	step        uint64
	events      eventQueue
	subscribers []func(Event)
}

func New(transform Transform, mover Mover, input InputProvider, cfg Config, opts ...Option) (*Controller, error) {
	if transform == nil {
		return nil, ErrNoTransform
	}
	if mover == nil {
		return nil, ErrNoMover
	}
	if input == nil {
		return nil, ErrNoInput
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		transform: transform,
		mover:     mover,
		input:     input,
		logger:    zap.NewNop(),
		cfg:       cfg,
		jumpTimer: common.NewCountdownTimer(cfg.JumpDuration),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.setupStateMachine()
	if err := c.machine.SetState(Falling); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Controller) setupStateMachine() {
	m := fsm.New[State]()
	c.machine = m
	c.jumpPressed = m.NewTrigger()
	c.jumpReleased = m.NewTrigger()

	m.AddState(Grounded, fsm.Hooks{OnEnter: c.onGroundContactRegained})
	m.AddState(Falling, fsm.Hooks{OnEnter: c.onFallStart})
	m.AddState(Sliding, fsm.Hooks{OnEnter: c.onGroundContactLost})
	m.AddState(Rising, fsm.Hooks{OnEnter: c.onGroundContactLost})
	m.AddState(Jumping, fsm.Hooks{
		OnEnter: func() {
			c.onGroundContactLost()
			c.onJumpStart()
		},
		OnExit:      c.resetCeiling,
		FixedUpdate: func() { c.jumpTimer.Tick(c.dt) },
	})

	grounded := c.mover.IsGrounded
	steep := c.isGroundTooSteep
	walkable := fsm.And(grounded, fsm.Not(steep))
	slope := fsm.And(grounded, steep)

	m.At(Grounded, Rising, c.isRising)
	m.At(Grounded, Sliding, slope)
	m.At(Grounded, Falling, fsm.Not(grounded))
	m.At(Grounded, Jumping, fsm.And(
		fsm.Or(fsm.Flag(&c.jumpKeyHeld), c.jumpPressed.Predicate()),
		fsm.Not(fsm.Flag(&c.jumpInputLocked)),
	))

	m.At(Falling, Rising, c.isRising)
	m.At(Falling, Grounded, walkable)
	m.At(Falling, Sliding, slope)

	m.At(Sliding, Rising, c.isRising)
	m.At(Sliding, Falling, fsm.Not(grounded))
	m.At(Sliding, Grounded, walkable)

	m.At(Rising, Grounded, walkable)
	m.At(Rising, Sliding, slope)
	m.At(Rising, Falling, c.isFalling)

	m.At(Jumping, Rising, fsm.Or(c.jumpTimer.IsFinished, c.jumpReleased.Predicate()))
	m.At(Jumping, Falling, c.hitCeiling)

	m.OnChange(func(from, to State) {
		c.logger.Debug("state transition",
			zap.Stringer("from", from),
			zap.Stringer("to", to),
			zap.Uint64("step", c.step),
		)
	})
}

// Update runs once per frame: it samples the jump key, evaluates state
// transitions and delivers queued events.
func (c *Controller) Update() {
	c.HandleJumpInput(c.input.JumpHeld())
	c.machine.Update()
	c.flushEvents()
}

// HandleJumpInput records the jump key state. Event-driven input sources may
// call it at any time between frames.
func (c *Controller) HandleJumpInput(pressed bool) {
	if !c.jumpKeyHeld && pressed {
		c.jumpPressed.Fire()
	}
	if c.jumpKeyHeld && !pressed {
		c.jumpReleased.Fire()
		c.jumpInputLocked = false
	}
	c.jumpKeyHeld = pressed
}

// FixedUpdate advances the simulation by dt seconds.
func (c *Controller) FixedUpdate(dt float64) {
	c.dt = dt
	c.step++

	c.machine.FixedUpdate()
	c.mover.CheckForGround(dt)
	c.handleMomentum(dt)

	velocity := mgl64.Vec3{}
	if c.machine.Current() == Grounded {
		velocity = c.movementVelocity()
	}
	velocity = velocity.Add(c.worldMomentum())

	c.mover.SetExtendSensorRange(c.IsGrounded())
	c.mover.SetVelocity(velocity)

	c.savedVelocity = velocity
	c.savedMovementVelocity = c.movementVelocity()
	c.flushEvents()
}

// Subscribe registers fn to receive jump, land and fall events. Events are
// delivered synchronously at the end of the step that produced them.
func (c *Controller) Subscribe(fn func(Event)) {
	if fn != nil {
		c.subscribers = append(c.subscribers, fn)
	}
}

func (c *Controller) emit(kind EventKind) {
	c.events.push(Event{Kind: kind, Momentum: c.worldMomentum(), Step: c.step})
}

func (c *Controller) flushEvents() {
	for _, evt := range c.events.drain() {
		for _, fn := range c.subscribers {
			fn(evt)
		}
	}
}

// Configure swaps tuning values. The jump timer picks up a new duration on
// its next start.
func (c *Controller) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.UseLocalMomentum != c.cfg.UseLocalMomentum {
		world := c.worldMomentum()
		c.cfg.UseLocalMomentum = cfg.UseLocalMomentum
		c.SetMomentum(world)
	}
	c.cfg = cfg
	c.jumpTimer.SetDuration(cfg.JumpDuration)
	return nil
}

func (c *Controller) Config() Config {
	return c.cfg
}

func (c *Controller) State() State {
	return c.machine.Current()
}

// IsGrounded reports whether the current state is Grounded or Sliding.
func (c *Controller) IsGrounded() bool {
	return c.machine.Current().IsGroundedFamily()
}

// Velocity is the velocity handed to the mover on the last fixed step,
// excluding the mover's ground adjustment.
func (c *Controller) Velocity() mgl64.Vec3 {
	return c.savedVelocity
}

// Momentum returns the momentum in world space.
func (c *Controller) Momentum() mgl64.Vec3 {
	return c.worldMomentum()
}

// SetMomentum replaces the momentum, given in world space.
func (c *Controller) SetMomentum(world mgl64.Vec3) {
	if c.cfg.UseLocalMomentum {
		c.momentum = common.ToLocal(c.transform.Rotation(), world)
		return
	}
	c.momentum = world
}

func (c *Controller) MovementVelocity() mgl64.Vec3 {
	return c.savedMovementVelocity
}

func (c *Controller) JumpInputLocked() bool {
	return c.jumpInputLocked
}

func (c *Controller) worldMomentum() mgl64.Vec3 {
	if c.cfg.UseLocalMomentum {
		return common.ToWorld(c.transform.Rotation(), c.momentum)
	}
	return c.momentum
}

func (c *Controller) up() mgl64.Vec3 {
	return common.SafeNormalize(c.transform.Rotation().Rotate(common.Up))
}

// movementDirection projects input onto the movement plane, using the camera
// basis when one is set and the body's axes otherwise.
func (c *Controller) movementDirection() mgl64.Vec3 {
	in := c.input.Direction()
	rot := c.transform.Rotation()

	var right, forward mgl64.Vec3
	if c.camera == nil {
		right = rot.Rotate(common.Right)
		forward = rot.Rotate(common.Forward)
	} else {
		up := c.up()
		right = common.SafeNormalize(common.ProjectOnPlane(c.camera.Right(), up))
		forward = common.SafeNormalize(common.ProjectOnPlane(c.camera.Forward(), up))
	}

	dir := right.Mul(in[0]).Add(forward.Mul(in[1]))
	if dir.Len() > 1 {
		dir = common.SafeNormalize(dir)
	}
	return dir
}

func (c *Controller) movementVelocity() mgl64.Vec3 {
	return c.movementDirection().Mul(c.cfg.MovementSpeed)
}

func (c *Controller) isRising() bool {
	return c.worldMomentum().Dot(c.up()) > 0
}

func (c *Controller) isFalling() bool {
	return c.worldMomentum().Dot(c.up()) < 0
}

// isGroundTooSteep is also true when there is no ground at all.
func (c *Controller) isGroundTooSteep() bool {
	if !c.mover.IsGrounded() {
		return true
	}
	return common.Angle(c.mover.GroundNormal(), c.up()) > c.cfg.SlopeLimit
}

func (c *Controller) hitCeiling() bool {
	return c.ceiling != nil && c.ceiling.HitCeiling()
}

func (c *Controller) resetCeiling() {
	if c.ceiling != nil {
		c.ceiling.Reset()
	}
}
