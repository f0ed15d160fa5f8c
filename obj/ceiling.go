package obj

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/locomotion/common"
)

const DefaultCeilingAngleLimit = 10.0

// CeilingDetector latches once the player touches a surface whose normal is
// within AngleLimit degrees of the body's down axis. Reset clears the latch.
type CeilingDetector struct {
	body       *PlayerBody
	angleLimit float64
	hit        bool
}

func NewCeilingDetector(world *CollisionWorld, body *PlayerBody, angleLimit float64) *CeilingDetector {
	if angleLimit <= 0 {
		angleLimit = DefaultCeilingAngleLimit
	}
	d := &CeilingDetector{body: body, angleLimit: angleLimit}
	world.OnPlayerContact(d.onContact)
	return d
}

func (d *CeilingDetector) onContact(normal mgl64.Vec3) {
	down := d.body.Rotation().Rotate(common.Up).Mul(-1)
	if common.Angle(down, normal) < d.angleLimit {
		d.hit = true
	}
}

func (d *CeilingDetector) HitCeiling() bool { return d.hit }

func (d *CeilingDetector) Reset() { d.hit = false }

func (d *CeilingDetector) SetAngleLimit(degrees float64) {
	if degrees > 0 {
		d.angleLimit = degrees
	}
}
