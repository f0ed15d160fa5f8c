package system

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/locomotion/controller"
	"github.com/milk9111/locomotion/mover"
	"github.com/milk9111/locomotion/obj"
	"github.com/milk9111/locomotion/prefabs"
	"go.uber.org/zap"
)

const (
	// FixedDT is the physics step in seconds.
	FixedDT = 0.02
	// maxStepsPerFrame bounds catch-up after a long frame.
	maxStepsPerFrame = 5
)

// ScriptedInput is input that is recomputed once per fixed step from the
// controller's observable state.
type ScriptedInput interface {
	controller.InputProvider
	Observe(state string, grounded bool)
	Update(step uint64) error
}

// World owns the level, the player body and its locomotion stack, and runs
// them on a fixed timestep.
type World struct {
	Level      *obj.Level
	Collision  *obj.CollisionWorld
	Body       *obj.PlayerBody
	Mover      *mover.Mover
	Controller *controller.Controller
	Ceiling    *obj.CeilingDetector
	Camera     *obj.CameraRig
	Turn       *obj.TurnToward

	levelSpec  prefabs.LevelSpec
	playerSpec prefabs.PlayerSpec
	input      inputSlot
	logger     *zap.Logger

	accumulator float64
	step        uint64
	respawns    int
	listeners   []func(controller.Event)
}

type Option func(*World)

func WithLogger(logger *zap.Logger) Option {
	return func(w *World) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWorld creates a new world and loads the requested level.
func NewWorld(level prefabs.LevelSpec, player prefabs.PlayerSpec, input controller.InputProvider, opts ...Option) (*World, error) {
	if input == nil {
		return nil, controller.ErrNoInput
	}
	w := &World{
		levelSpec:  level,
		playerSpec: player,
		input:      inputSlot{current: input},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.build(); err != nil {
		return nil, err
	}
	return w, nil
}

// build recreates the collision world and everything attached to it.
func (w *World) build() error {
	collision := obj.NewCollisionWorld(obj.WithWorldLogger(w.logger.Named("collision")))
	level, err := obj.BuildLevel(collision, w.levelSpec)
	if err != nil {
		return err
	}

	ps := w.playerSpec
	body, err := collision.AttachPlayer(level.Spawn, ps.Mover.Layer, ps.Transform.Scale)
	if err != nil {
		return fmt.Errorf("system: attach player: %w", err)
	}
	body.SetYaw(ps.Transform.Yaw)

	m, err := mover.New(body, collision.RaycasterFor(body), ps.MoverConfig(),
		mover.WithLayerMatrix(collision),
		mover.WithLogger(w.logger.Named("mover")),
	)
	if err != nil {
		return fmt.Errorf("system: mover: %w", err)
	}

	ceiling := obj.NewCeilingDetector(collision, body, ps.CeilingDetector.AngleLimit)
	camera := obj.NewCameraRig(ps.Camera.UpperVerticalLimit, ps.Camera.LowerVerticalLimit, ps.Camera.Speed)

	ctrl, err := controller.New(body, m, &w.input, ps.ControllerConfig(),
		controller.WithCamera(obj.NewPlanarCamera(camera)),
		controller.WithCeilingDetector(ceiling),
		controller.WithLogger(w.logger.Named("controller")),
	)
	if err != nil {
		return fmt.Errorf("system: controller: %w", err)
	}
	ctrl.Subscribe(w.dispatch)

	w.Level = level
	w.Collision = collision
	w.Body = body
	w.Mover = m
	w.Ceiling = ceiling
	w.Camera = camera
	w.Controller = ctrl
	w.Turn = obj.NewTurnToward(ctrl, body, ps.TurnToward.TurnSpeed, ps.TurnToward.FallOffAngle, ps.TurnToward.IgnoreMomentum)
	w.accumulator = 0

	w.logger.Info("level loaded",
		zap.String("level", level.Name),
		zap.Int("colliders", level.Colliders),
		zap.Float64s("spawn", level.Spawn[:]),
	)
	return nil
}

// Subscribe registers fn for controller events. Subscriptions survive level
// reloads.
func (w *World) Subscribe(fn func(controller.Event)) {
	if fn != nil {
		w.listeners = append(w.listeners, fn)
	}
}

func (w *World) dispatch(evt controller.Event) {
	for _, fn := range w.listeners {
		fn(evt)
	}
}

// Update advances the world by a frame of frameDT seconds: as many fixed
// steps as have accumulated, then one controller frame update.
func (w *World) Update(frameDT float64) (int, error) {
	w.accumulator += frameDT
	steps := 0
	for w.accumulator >= FixedDT && steps < maxStepsPerFrame {
		if err := w.fixedStep(); err != nil {
			return steps, err
		}
		w.accumulator -= FixedDT
		steps++
	}
	if steps == maxStepsPerFrame {
		w.accumulator = 0
	}
	w.Controller.Update()
	return steps, nil
}

// Step runs exactly one fixed step followed by a controller frame update.
func (w *World) Step() error {
	if err := w.fixedStep(); err != nil {
		return err
	}
	w.Controller.Update()
	return nil
}

func (w *World) fixedStep() error {
	if scripted, ok := w.input.current.(ScriptedInput); ok {
		scripted.Observe(w.Controller.State().String(), w.Controller.IsGrounded())
		if err := scripted.Update(w.step); err != nil {
			return err
		}
		// Scripts can pulse jump for a single step, so feed the edge now
		// rather than waiting for the frame update.
		w.Controller.HandleJumpInput(scripted.JumpHeld())
	}

	w.Controller.FixedUpdate(FixedDT)
	w.Collision.Step(FixedDT)
	w.Turn.Update(FixedDT)
	w.step++

	w.handleTriggers()
	return nil
}

func (w *World) StepCount() uint64 { return w.step }

func (w *World) Respawns() int { return w.respawns }

// SetInput swaps the input the controller reads from.
func (w *World) SetInput(input controller.InputProvider) {
	if input != nil {
		w.input.current = input
	}
}

func (w *World) Input() controller.InputProvider { return w.input.current }

func (w *World) PlayerSpec() prefabs.PlayerSpec { return w.playerSpec }

// ApplyPlayerSpec retunes the running player without resetting its state.
func (w *World) ApplyPlayerSpec(spec prefabs.PlayerSpec) error {
	if err := w.Controller.Configure(spec.ControllerConfig()); err != nil {
		return err
	}
	if err := w.Mover.Configure(spec.MoverConfig()); err != nil {
		return err
	}
	if err := w.Body.SetLayer(spec.Mover.Layer); err != nil {
		return err
	}
	w.Body.SetYaw(spec.Transform.Yaw)
	w.Ceiling.SetAngleLimit(spec.CeilingDetector.AngleLimit)
	w.Turn.TurnSpeed = spec.TurnToward.TurnSpeed
	w.Turn.FallOffAngle = spec.TurnToward.FallOffAngle
	w.Turn.IgnoreMomentum = spec.TurnToward.IgnoreMomentum
	w.playerSpec = spec
	w.logger.Info("player spec applied", zap.String("player", spec.Name))
	return nil
}

// LoadLevel replaces the level and rebuilds the player at its spawn.
func (w *World) LoadLevel(spec prefabs.LevelSpec) error {
	prev := w.levelSpec
	w.levelSpec = spec
	if err := w.build(); err != nil {
		w.levelSpec = prev
		return err
	}
	return nil
}

// Reload re-reads a changed prefab by name. Unknown names are ignored.
func (w *World) Reload(name string) error {
	switch {
	case name == prefabs.PlayerSpecFile:
		spec, err := prefabs.LoadPlayerSpec(name)
		if err != nil {
			return err
		}
		return w.ApplyPlayerSpec(spec)
	case name == prefabs.LevelSpecFile || name == w.levelSpec.Name+".yaml":
		spec, err := prefabs.LoadLevelSpec(name)
		if err != nil {
			return err
		}
		return w.LoadLevel(spec)
	}

	if scripted, ok := w.input.current.(*obj.ScriptInput); ok && "scripts/"+scriptBase(scripted.Path()) == name {
		in, err := obj.NewScriptInput(scripted.Path())
		if err != nil {
			return err
		}
		w.input.current = in
		w.logger.Info("input script reloaded", zap.String("script", name))
	}
	return nil
}

// PlayerPosition is the body position in world units.
func (w *World) PlayerPosition() mgl64.Vec3 {
	return w.Body.Position()
}

// inputSlot lets the world swap input sources under a running controller.
type inputSlot struct {
	current controller.InputProvider
}

func (s *inputSlot) Direction() mgl64.Vec2 { return s.current.Direction() }
func (s *inputSlot) JumpHeld() bool { return s.current.JumpHeld() }
