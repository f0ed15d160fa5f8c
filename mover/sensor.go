package mover

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/locomotion/common"
)

// MinCastLength keeps sensor casts from degenerating to zero or negative
// lengths.
const MinCastLength = 0.001

// ColliderID identifies the collider a sensor hit. Zero means none.
type ColliderID uint64

type RaycastHit struct {
	Distance float64
	Normal   mgl64.Vec3
	Point    mgl64.Vec3
	Collider ColliderID
}

// Raycaster is the physics query used by the sensor. Implementations must not
// report trigger volumes and must skip layers missing from mask.
type Raycaster interface {
	Raycast(origin, dir mgl64.Vec3, maxDist float64, mask LayerMask) (RaycastHit, bool)
}

// CastDirection is an axis of the body's local frame.
type CastDirection int

const (
	CastForward CastDirection = iota
	CastRight
	CastUp
	CastBackward
	CastLeft
	CastDown
)

func (d CastDirection) Vector() mgl64.Vec3 {
	switch d {
	case CastForward:
		return common.Forward
	case CastRight:
		return common.Right
	case CastUp:
		return common.Up
	case CastBackward:
		return common.Forward.Mul(-1)
	case CastLeft:
		return common.Right.Mul(-1)
	default:
		return common.Up.Mul(-1)
	}
}

func (d CastDirection) String() string {
	switch d {
	case CastForward:
		return "forward"
	case CastRight:
		return "right"
	case CastUp:
		return "up"
	case CastBackward:
		return "backward"
	case CastLeft:
		return "left"
	case CastDown:
		return "down"
	default:
		return "unknown"
	}
}

// DebugCast is a snapshot of the last cast for debug drawing.
type DebugCast struct {
	Origin mgl64.Vec3
	End    mgl64.Vec3
	Hit    bool
	Point  mgl64.Vec3
	Normal mgl64.Vec3
}

// RaycastSensor casts a single ray from a point in the body's local frame
// along one of its local axes.
type RaycastSensor struct {
	body   Body
	caster Raycaster

	origin    mgl64.Vec3
	direction CastDirection

	hit    RaycastHit
	hasHit bool
	debug  DebugCast
}

func NewRaycastSensor(body Body, caster Raycaster) *RaycastSensor {
	return &RaycastSensor{body: body, caster: caster, direction: CastDown}
}

// SetOrigin sets the cast origin in the body's local (unscaled) frame.
func (s *RaycastSensor) SetOrigin(local mgl64.Vec3) {
	s.origin = local
}

func (s *RaycastSensor) SetDirection(dir CastDirection) {
	s.direction = dir
}

func (s *RaycastSensor) Origin() mgl64.Vec3 {
	return s.origin
}

func (s *RaycastSensor) Direction() CastDirection {
	return s.direction
}

// Cast probes up to length world units. The caller scales length; it is
// clamped to MinCastLength. A miss clears the previous hit.
func (s *RaycastSensor) Cast(length float64, mask LayerMask) {
	if length < MinCastLength {
		length = MinCastLength
	}

	origin := s.worldOrigin()
	dir := common.SafeNormalize(s.body.Rotation().Rotate(s.direction.Vector()))

	s.hit, s.hasHit = s.caster.Raycast(origin, dir, length, mask)
	if !s.hasHit {
		s.hit = RaycastHit{}
	}

	s.debug = DebugCast{
		Origin: origin,
		End:    origin.Add(dir.Mul(length)),
		Hit:    s.hasHit,
		Point:  s.hit.Point,
		Normal: s.hit.Normal,
	}
}

func (s *RaycastSensor) worldOrigin() mgl64.Vec3 {
	scale := s.body.Scale()
	scaled := mgl64.Vec3{s.origin[0] * scale[0], s.origin[1] * scale[1], s.origin[2] * scale[2]}
	return s.body.Position().Add(s.body.Rotation().Rotate(scaled))
}

func (s *RaycastSensor) HasHit() bool { return s.hasHit }
func (s *RaycastSensor) Distance() float64 { return s.hit.Distance }
func (s *RaycastSensor) Normal() mgl64.Vec3 { return s.hit.Normal }
func (s *RaycastSensor) Point() mgl64.Vec3 { return s.hit.Point }
func (s *RaycastSensor) Collider() ColliderID { return s.hit.Collider }
func (s *RaycastSensor) DebugCast() DebugCast { return s.debug }
