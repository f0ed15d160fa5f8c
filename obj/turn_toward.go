package obj

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/locomotion/common"
)

// VelocitySource is the controller side of TurnToward.
type VelocitySource interface {
	Velocity() mgl64.Vec3
	MovementVelocity() mgl64.Vec3
}

// TurnToward rotates a visual yaw toward the controller's velocity. The turn
// rate falls off linearly inside FallOffAngle so it eases into the heading.
// It only drives presentation and never feeds back into the body.
type TurnToward struct {
	source VelocitySource
	parent *PlayerBody

	TurnSpeed      float64
	FallOffAngle   float64
	IgnoreMomentum bool

	yaw float64
}

func NewTurnToward(source VelocitySource, parent *PlayerBody, turnSpeed, fallOffAngle float64, ignoreMomentum bool) *TurnToward {
	return &TurnToward{
		source:         source,
		parent:         parent,
		TurnSpeed:      turnSpeed,
		FallOffAngle:   fallOffAngle,
		IgnoreMomentum: ignoreMomentum,
	}
}

func (t *TurnToward) Update(dt float64) {
	velocity := t.source.Velocity()
	if t.IgnoreMomentum {
		velocity = t.source.MovementVelocity()
	}

	up := common.Up
	if t.parent != nil {
		up = t.parent.Rotation().Rotate(common.Up)
	}
	velocity = common.ProjectOnPlane(velocity, up)
	if velocity.Len() < 0.001 {
		return
	}

	diff := common.SignedAngle(t.Forward(), velocity.Normalize(), up)
	factor := common.InverseLerp(0, t.FallOffAngle, math.Abs(diff))
	step := math.Copysign(factor*dt*t.TurnSpeed, diff)
	if math.Abs(step) > math.Abs(diff) {
		step = diff
	}

	t.yaw += step
	if t.yaw > 360 {
		t.yaw -= 360
	}
	if t.yaw < -360 {
		t.yaw += 360
	}
}

// Yaw is the visual heading in degrees relative to the parent body.
func (t *TurnToward) Yaw() float64 { return t.yaw }

// Forward is the visual facing in world space.
func (t *TurnToward) Forward() mgl64.Vec3 {
	rot := mgl64.QuatRotate(mgl64.DegToRad(t.yaw), common.Up)
	if t.parent != nil {
		rot = t.parent.Rotation().Mul(rot)
	}
	return rot.Rotate(common.Forward)
}
