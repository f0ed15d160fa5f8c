// Package mover keeps a rigid body riding a fixed step offset above the
// ground. It sizes the body's capsule collider, probes for ground with a
// RaycastSensor and adds a vertical correction to every velocity it applies.
package mover

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/locomotion/common"
	"go.uber.org/zap"
)

var (
	ErrNoBody      = errors.New("mover: body is required")
	ErrNoRaycaster = errors.New("mover: raycaster is required")
)

// safetyDistanceFactor lengthens the base cast so a body resting exactly at
// its step offset still detects ground.
const safetyDistanceFactor = 0.001

// Body is the rigid body the mover drives.
type Body interface {
	Position() mgl64.Vec3
	Rotation() mgl64.Quat
	Scale() mgl64.Vec3
	Layer() int
	SetVelocity(v mgl64.Vec3)
}

// ShapedBody is implemented by bodies whose collider follows the mover's
// derived capsule.
type ShapedBody interface {
	Body
	SetColliderShape(shape ColliderShape)
}

// ColliderShape is a capsule in the body's local frame, aligned with its up
// axis.
type ColliderShape struct {
	Height float64
	Radius float64
	Center mgl64.Vec3
}

type Config struct {
	// StepHeightRatio is the fraction of ColliderHeight left below the
	// collider for stepping over small ledges.
	StepHeightRatio   float64
	ColliderHeight    float64
	ColliderThickness float64
	// ColliderOffset is scaled by ColliderHeight.
	ColliderOffset mgl64.Vec3
}

func DefaultConfig() Config {
	return Config{
		StepHeightRatio:   0.1,
		ColliderHeight:    2,
		ColliderThickness: 1,
	}
}

func (c Config) Validate() error {
	if c.StepHeightRatio < 0 || c.StepHeightRatio > 1 {
		return fmt.Errorf("mover: step height ratio %v outside [0, 1]", c.StepHeightRatio)
	}
	if c.ColliderHeight <= 0 {
		return fmt.Errorf("mover: collider height must be positive, got %v", c.ColliderHeight)
	}
	if c.ColliderThickness < 0 {
		return fmt.Errorf("mover: collider thickness must not be negative, got %v", c.ColliderThickness)
	}
	return nil
}

type Option func(*Mover)

func WithLayerMatrix(matrix LayerMatrix) Option {
	return func(m *Mover) {
		m.matrix = matrix
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *Mover) {
		if logger != nil {
			m.logger = logger
		}
	}
}

type Mover struct {
	body   Body
	sensor *RaycastSensor
	matrix LayerMatrix
	logger *zap.Logger

	cfg      Config
	collider ColliderShape

	mask      LayerMask
	maskLayer int
	maskReady bool

	baseSensorRange   float64
	extendSensorRange bool

	grounded         bool
	adjustment       mgl64.Vec3
	lastCastDistance float64
}

func New(body Body, caster Raycaster, cfg Config, opts ...Option) (*Mover, error) {
	if body == nil {
		return nil, ErrNoBody
	}
	if caster == nil {
		return nil, ErrNoRaycaster
	}

	m := &Mover{
		body:              body,
		sensor:            NewRaycastSensor(body, caster),
		logger:            zap.NewNop(),
		extendSensorRange: true,
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.Configure(cfg); err != nil {
		return nil, err
	}
	return m, nil
}

// Configure applies new dimensions and recomputes collider and sensor
// geometry.
func (m *Mover) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.cfg = cfg
	m.recalculateCollider()
	return nil
}

func (m *Mover) Config() Config {
	return m.cfg
}

func (m *Mover) recalculateCollider() {
	h := m.cfg.ColliderHeight
	r := m.cfg.StepHeightRatio

	shape := ColliderShape{
		Height: h * (1 - r),
		Radius: m.cfg.ColliderThickness / 2,
	}
	shape.Center = m.cfg.ColliderOffset.Mul(h).Add(mgl64.Vec3{0, r * shape.Height / 2, 0})
	if shape.Height/2 < shape.Radius {
		shape.Radius = shape.Height / 2
	}
	m.collider = shape

	if sb, ok := m.body.(ShapedBody); ok {
		sb.SetColliderShape(shape)
	}

	m.recalibrateSensor()
}

func (m *Mover) recalibrateSensor() {
	m.sensor.SetOrigin(m.collider.Center)
	m.sensor.SetDirection(CastDown)
	m.recalculateMask()

	h := m.cfg.ColliderHeight
	r := m.cfg.StepHeightRatio
	length := h*(1-r)*0.5 + h*r
	m.baseSensorRange = length * (1 + safetyDistanceFactor) * m.scale()
}

func (m *Mover) recalculateMask() {
	layer := m.body.Layer()
	m.mask = SensorMask(layer, m.matrix)
	m.maskLayer = layer
	m.maskReady = true
	m.logger.Debug("sensor mask recalculated",
		zap.Int("layer", layer),
		zap.Uint32("mask", uint32(m.mask)),
	)
}

// scale is the body's x scale; bodies are assumed to scale uniformly.
func (m *Mover) scale() float64 {
	return m.body.Scale()[0]
}

// CheckForGround casts the sensor and recomputes the grounded flag and the
// adjustment velocity. dt is the fixed step the adjustment is spread over.
func (m *Mover) CheckForGround(dt float64) {
	if !m.maskReady || m.body.Layer() != m.maskLayer {
		m.recalculateMask()
	}

	m.adjustment = mgl64.Vec3{}

	castLength := m.baseSensorRange
	if m.extendSensorRange {
		castLength += m.cfg.ColliderHeight * m.scale() * m.cfg.StepHeightRatio
	}
	m.lastCastDistance = castLength
	m.sensor.Cast(castLength, m.mask)

	m.grounded = m.sensor.HasHit()
	if !m.grounded || dt <= 0 {
		return
	}

	h := m.cfg.ColliderHeight * m.scale()
	r := m.cfg.StepHeightRatio
	upperLimit := h * (1 - r) * 0.5
	middle := upperLimit + h*r
	distanceToGo := middle - m.sensor.Distance()

	up := common.SafeNormalize(m.body.Rotation().Rotate(common.Up))
	m.adjustment = up.Mul(distanceToGo / dt)
}

func (m *Mover) IsGrounded() bool {
	return m.grounded
}

func (m *Mover) GroundNormal() mgl64.Vec3 {
	return m.sensor.Normal()
}

func (m *Mover) GroundPoint() mgl64.Vec3 {
	return m.sensor.Point()
}

// SetVelocity applies v plus the current ground adjustment to the body.
func (m *Mover) SetVelocity(v mgl64.Vec3) {
	m.body.SetVelocity(v.Add(m.adjustment))
}

// SetExtendSensorRange lengthens the next casts by the step height. The
// controller enables it while the body is on the ground.
func (m *Mover) SetExtendSensorRange(extend bool) {
	m.extendSensorRange = extend
}

func (m *Mover) AdjustmentVelocity() mgl64.Vec3 {
	return m.adjustment
}

func (m *Mover) Collider() ColliderShape {
	return m.collider
}

func (m *Mover) Sensor() *RaycastSensor {
	return m.sensor
}

func (m *Mover) Mask() LayerMask {
	return m.mask
}

// CastLength returns the length used by the last CheckForGround.
func (m *Mover) CastLength() float64 {
	return m.lastCastDistance
}

func (m *Mover) BaseSensorRange() float64 {
	return m.baseSensorRange
}
