package controller

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/locomotion/mover"
	"github.com/stretchr/testify/require"
)

const fixedDT = 0.02

// restHeight is where a body with the default mover config settles above
// flat ground.
const restHeight = 1.01

// simBody integrates its velocity explicitly, with no collision response.
type simBody struct {
	pos      mgl64.Vec3
	rot      mgl64.Quat
	velocity mgl64.Vec3
}

func (b *simBody) Position() mgl64.Vec3 { return b.pos }
func (b *simBody) Rotation() mgl64.Quat { return b.rot }
func (b *simBody) Scale() mgl64.Vec3 { return mgl64.Vec3{1, 1, 1} }
func (b *simBody) Layer() int { return 0 }
func (b *simBody) SetVelocity(v mgl64.Vec3) { b.velocity = v }

func (b *simBody) integrate(dt float64) {
	b.pos = b.pos.Add(b.velocity.Mul(dt))
}

// plane is an infinite ground plane through the origin. A zero normal means
// no ground.
type plane struct {
	normal mgl64.Vec3
}

func (p *plane) Raycast(origin, dir mgl64.Vec3, maxDist float64, mask mover.LayerMask) (mover.RaycastHit, bool) {
	if p.normal.Len() == 0 {
		return mover.RaycastHit{}, false
	}
	denom := dir.Dot(p.normal)
	if denom >= 0 {
		return mover.RaycastHit{}, false
	}
	t := -origin.Dot(p.normal) / denom
	if t < 0 || t > maxDist {
		return mover.RaycastHit{}, false
	}
	return mover.RaycastHit{Distance: t, Normal: p.normal, Point: origin.Add(dir.Mul(t)), Collider: 1}, true
}

func tilted(degrees float64) mgl64.Vec3 {
	rad := mgl64.DegToRad(degrees)
	return mgl64.Vec3{math.Sin(rad), math.Cos(rad), 0}
}

type fakeInput struct {
	dir  mgl64.Vec2
	held bool
}

func (i *fakeInput) Direction() mgl64.Vec2 { return i.dir }
func (i *fakeInput) JumpHeld() bool { return i.held }

type fakeCeiling struct {
	hit    bool
	resets int
}

func (f *fakeCeiling) HitCeiling() bool { return f.hit }
func (f *fakeCeiling) Reset() {
	f.hit = false
	f.resets++
}

type rig struct {
	body   *simBody
	ground *plane
	input  *fakeInput
	mover  *mover.Mover
	ctrl   *Controller
	events []Event
}

func newRig(t *testing.T, y float64, ground mgl64.Vec3, cfg Config, opts ...Option) *rig {
	t.Helper()
	r := &rig{
		body:   &simBody{pos: mgl64.Vec3{0, y, 0}, rot: mgl64.QuatIdent()},
		ground: &plane{normal: ground},
		input:  &fakeInput{},
	}
	m, err := mover.New(r.body, r.ground, mover.DefaultConfig())
	require.NoError(t, err)
	r.mover = m

	c, err := New(r.body, m, r.input, cfg, opts...)
	require.NoError(t, err)
	c.Subscribe(func(evt Event) { r.events = append(r.events, evt) })
	r.ctrl = c
	return r
}

// step runs one fixed step, moves the body, then one frame update.
func (r *rig) step() {
	r.ctrl.FixedUpdate(fixedDT)
	r.body.integrate(fixedDT)
	r.ctrl.Update()
}

func (r *rig) countEvents(kind EventKind) int {
	n := 0
	for _, evt := range r.events {
		if evt.Kind == kind {
			n++
		}
	}
	return n
}
