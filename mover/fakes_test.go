package mover

import (
	"github.com/go-gl/mathgl/mgl64"
)

type fakeBody struct {
	pos      mgl64.Vec3
	rot      mgl64.Quat
	scale    mgl64.Vec3
	layer    int
	velocity mgl64.Vec3
	shapes   []ColliderShape
}

func newFakeBody(pos mgl64.Vec3) *fakeBody {
	return &fakeBody{pos: pos, rot: mgl64.QuatIdent(), scale: mgl64.Vec3{1, 1, 1}}
}

func (b *fakeBody) Position() mgl64.Vec3 { return b.pos }
func (b *fakeBody) Rotation() mgl64.Quat { return b.rot }
func (b *fakeBody) Scale() mgl64.Vec3 { return b.scale }
func (b *fakeBody) Layer() int { return b.layer }
func (b *fakeBody) SetVelocity(v mgl64.Vec3) { b.velocity = v }
func (b *fakeBody) SetColliderShape(shape ColliderShape) { b.shapes = append(b.shapes, shape) }

// planeCaster hits an infinite plane through point with the given normal.
type planeCaster struct {
	point  mgl64.Vec3
	normal mgl64.Vec3
	layer  int
	id     ColliderID

	casts    int
	lastDir  mgl64.Vec3
	lastLen  float64
	lastMask LayerMask
}

func flatGround(y float64) *planeCaster {
	return &planeCaster{point: mgl64.Vec3{0, y, 0}, normal: mgl64.Vec3{0, 1, 0}, id: 7}
}

func (c *planeCaster) Raycast(origin, dir mgl64.Vec3, maxDist float64, mask LayerMask) (RaycastHit, bool) {
	c.casts++
	c.lastDir = dir
	c.lastLen = maxDist
	c.lastMask = mask

	if !mask.Has(c.layer) {
		return RaycastHit{}, false
	}
	denom := dir.Dot(c.normal)
	if denom >= 0 {
		return RaycastHit{}, false
	}
	t := c.point.Sub(origin).Dot(c.normal) / denom
	if t < 0 || t > maxDist {
		return RaycastHit{}, false
	}
	return RaycastHit{
		Distance: t,
		Normal:   c.normal,
		Point:    origin.Add(dir.Mul(t)),
		Collider: c.id,
	}, true
}

type countingMatrix struct {
	ignored map[[2]int]bool
	calls   int
}

func (m *countingMatrix) IgnoresLayerCollision(a, b int) bool {
	m.calls++
	return m.ignored[[2]int{a, b}] || m.ignored[[2]int{b, a}]
}
