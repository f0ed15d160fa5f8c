package controller

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/locomotion/common"
	"go.uber.org/zap"
)

func (c *Controller) handleMomentum(dt float64) {
	state := c.machine.Current()
	up := c.up()
	movement := c.movementVelocity()
	momentum := c.worldMomentum()

	vertical := common.ExtractDotVector(momentum, up)
	horizontal := momentum.Sub(vertical)

	vertical = vertical.Sub(up.Mul(c.cfg.Gravity * dt))
	if state == Grounded && vertical.Dot(up) < 0 {
		vertical = mgl64.Vec3{}
	}

	if !state.IsGroundedFamily() {
		horizontal = c.adjustHorizontalMomentum(horizontal, movement, dt)
	}
	if state == Sliding {
		horizontal = c.steerOnSlope(horizontal, movement, dt)
	}

	friction := c.cfg.AirFriction
	if state == Grounded {
		friction = c.cfg.GroundFriction
	}
	horizontal = common.MoveTowards(horizontal, mgl64.Vec3{}, friction*dt)

	momentum = horizontal.Add(vertical)

	if state == Jumping {
		momentum = common.RemoveDotVector(momentum, up).Add(up.Mul(c.cfg.JumpSpeed))
	}

	if state == Sliding {
		normal := c.mover.GroundNormal()
		momentum = common.ProjectOnPlane(momentum, normal)
		if momentum.Dot(up) > 0 {
			momentum = common.RemoveDotVector(momentum, up)
		}
		slideDir := common.SafeNormalize(common.ProjectOnPlane(up.Mul(-1), normal))
		momentum = momentum.Add(slideDir.Mul(c.cfg.SlideGravity * dt))
	}

	c.SetMomentum(momentum)
}

// adjustHorizontalMomentum applies air control. Above movement speed only a
// quarter of the input applies and it cannot push further along the current
// momentum; below it the result is clamped to movement speed.
func (c *Controller) adjustHorizontalMomentum(horizontal, movement mgl64.Vec3, dt float64) mgl64.Vec3 {
	if horizontal.Len() > c.cfg.MovementSpeed {
		dir := common.SafeNormalize(horizontal)
		if movement.Dot(dir) > 0 {
			movement = common.RemoveDotVector(movement, dir)
		}
		return horizontal.Add(movement.Mul(dt * c.cfg.AirControlRate * 0.25))
	}
	horizontal = horizontal.Add(movement.Mul(dt * c.cfg.AirControlRate))
	return common.ClampMagnitude(horizontal, c.cfg.MovementSpeed)
}

// steerOnSlope lets input push sideways across a slope but not against or
// along the downhill direction.
func (c *Controller) steerOnSlope(horizontal, movement mgl64.Vec3, dt float64) mgl64.Vec3 {
	downhill := common.SafeNormalize(common.ProjectOnPlane(c.mover.GroundNormal(), c.up()))
	movement = common.RemoveDotVector(movement, downhill)
	return horizontal.Add(movement.Mul(dt))
}

// onGroundContactLost folds the last movement velocity into momentum so
// leaving the ground keeps horizontal speed without double counting what
// momentum already carries.
func (c *Controller) onGroundContactLost() {
	momentum := c.worldMomentum()
	velocity := c.savedMovementVelocity

	if momentum.LenSqr() > 0 {
		dir := common.SafeNormalize(velocity)
		projected := common.ExtractDotVector(momentum, dir)
		dot := common.SafeNormalize(projected).Dot(dir)
		if projected.LenSqr() >= velocity.LenSqr() && dot > 0 {
			velocity = mgl64.Vec3{}
		} else if dot > 0 {
			velocity = velocity.Sub(projected)
		}
	}

	c.SetMomentum(momentum.Add(velocity))
}

func (c *Controller) onJumpStart() {
	up := c.up()
	momentum := common.RemoveDotVector(c.worldMomentum(), up).Add(up.Mul(c.cfg.JumpSpeed))
	c.SetMomentum(momentum)

	c.resetCeiling()
	c.jumpTimer.Start()
	c.jumpInputLocked = c.jumpKeyHeld

	c.logger.Info("jump", zap.Float64s("momentum", momentum[:]), zap.Uint64("step", c.step))
	c.emit(EventJump)
}

func (c *Controller) onGroundContactRegained() {
	momentum := c.worldMomentum()
	c.logger.Info("land", zap.Float64s("momentum", momentum[:]), zap.Uint64("step", c.step))
	c.emit(EventLand)
}

func (c *Controller) onFallStart() {
	c.emit(EventFall)
}
