package obj

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/locomotion/common"
	"github.com/milk9111/locomotion/mover"
)

// PlayerBody is a rotation-locked chipmunk body with a capsule collider. It
// moves in the XY plane and ignores world gravity; the controller owns its
// velocity.
type PlayerBody struct {
	world *CollisionWorld
	body  *cp.Body
	shape *cp.Shape

	layer    int
	scale    float64
	yaw      float64
	collider mover.ColliderShape
}

var _ mover.ShapedBody = (*PlayerBody)(nil)

// AttachPlayer adds the player body at pos. Only one player body exists per
// world; later calls return the existing body.
func (cw *CollisionWorld) AttachPlayer(pos mgl64.Vec3, layer int, scale float64) (*PlayerBody, error) {
	if cw.player != nil {
		return cw.player, nil
	}
	if err := checkLayer(layer); err != nil {
		return nil, err
	}
	if scale <= 0 {
		scale = 1
	}

	body := cp.NewBody(1, math.Inf(1))
	body.SetAngle(0)
	body.SetAngularVelocity(0)
	body.SetPosition(cp.Vector{X: pos.X(), Y: pos.Y()})
	body.SetVelocityUpdateFunc(func(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
		cp.BodyUpdateVelocity(body, cp.Vector{}, 1, dt)
	})
	cw.space.AddBody(body)

	p := &PlayerBody{world: cw, body: body, layer: layer, scale: scale}
	cw.player = p
	return p, nil
}

func (p *PlayerBody) Position() mgl64.Vec3 {
	pos := p.body.Position()
	return mgl64.Vec3{pos.X, pos.Y, 0}
}

func (p *PlayerBody) Rotation() mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(p.yaw), common.Up)
}

func (p *PlayerBody) Scale() mgl64.Vec3 {
	return mgl64.Vec3{p.scale, p.scale, p.scale}
}

func (p *PlayerBody) Layer() int { return p.layer }

// SetVelocity drops the Z component.
func (p *PlayerBody) SetVelocity(v mgl64.Vec3) {
	p.body.SetVelocityVector(cp.Vector{X: v.X(), Y: v.Y()})
}

func (p *PlayerBody) Velocity() mgl64.Vec3 {
	v := p.body.Velocity()
	return mgl64.Vec3{v.X, v.Y, 0}
}

// SetYaw sets the body heading in degrees around the up axis.
func (p *PlayerBody) SetYaw(degrees float64) { p.yaw = degrees }

func (p *PlayerBody) Yaw() float64 { return p.yaw }

func (p *PlayerBody) SetLayer(layer int) error {
	if err := checkLayer(layer); err != nil {
		return err
	}
	p.layer = layer
	p.applyFilter()
	return nil
}

// Teleport moves the body and clears its velocity.
func (p *PlayerBody) Teleport(pos mgl64.Vec3) {
	p.body.SetPosition(cp.Vector{X: pos.X(), Y: pos.Y()})
	p.body.SetVelocityVector(cp.Vector{})
}

// SetColliderShape rebuilds the capsule as a rounded segment along the
// body's up axis.
func (p *PlayerBody) SetColliderShape(shape mover.ColliderShape) {
	p.collider = shape
	if p.shape != nil {
		p.world.space.RemoveShape(p.shape)
		p.shape = nil
	}

	radius := shape.Radius * p.scale
	half := math.Max(shape.Height*p.scale*0.5-radius, 0)
	center := shape.Center.Mul(p.scale)
	a := cp.Vector{X: center.X(), Y: center.Y() - half}
	b := cp.Vector{X: center.X(), Y: center.Y() + half}

	seg := cp.NewSegment(p.body, a, b, radius)
	seg.SetFriction(0)
	seg.SetCollisionType(collisionTypePlayer)
	p.shape = seg
	p.applyFilter()
	p.world.space.AddShape(seg)
}

func (p *PlayerBody) Collider() mover.ColliderShape { return p.collider }

func (p *PlayerBody) applyFilter() {
	if p.shape == nil {
		return
	}
	p.shape.SetFilter(p.world.filterFor(p.layer, playerGroup))
}
