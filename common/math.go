package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-9

var (
	Up      = mgl64.Vec3{0, 1, 0}
	Right   = mgl64.Vec3{1, 0, 0}
	Forward = mgl64.Vec3{0, 0, 1}
)

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// InverseLerp returns where v lies between a and b, clamped to [0, 1].
func InverseLerp(a, b, v float64) float64 {
	if a == b {
		return 0
	}
	return Clamp01((v - a) / (b - a))
}

func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// SafeNormalize returns the unit vector of v, or the zero vector when v has
// no meaningful length.
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < Epsilon {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// ExtractDotVector returns the component of v along dir.
func ExtractDotVector(v, dir mgl64.Vec3) mgl64.Vec3 {
	dir = SafeNormalize(dir)
	return dir.Mul(v.Dot(dir))
}

// RemoveDotVector returns v with its component along dir removed.
func RemoveDotVector(v, dir mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(ExtractDotVector(v, dir))
}

// ProjectOnPlane projects v onto the plane with the given normal.
func ProjectOnPlane(v, normal mgl64.Vec3) mgl64.Vec3 {
	return RemoveDotVector(v, normal)
}

func ClampMagnitude(v mgl64.Vec3, maxLen float64) mgl64.Vec3 {
	if maxLen <= 0 {
		return mgl64.Vec3{}
	}
	l := v.Len()
	if l <= maxLen {
		return v
	}
	return v.Mul(maxLen / l)
}

// MoveTowards moves current toward target by at most maxDelta.
func MoveTowards(current, target mgl64.Vec3, maxDelta float64) mgl64.Vec3 {
	diff := target.Sub(current)
	dist := diff.Len()
	if dist <= maxDelta || dist < Epsilon {
		return target
	}
	return current.Add(diff.Mul(maxDelta / dist))
}

// Angle returns the unsigned angle between a and b in degrees. Zero-length
// inputs yield 0.
func Angle(a, b mgl64.Vec3) float64 {
	denom := math.Sqrt(a.LenSqr() * b.LenSqr())
	if denom < Epsilon {
		return 0
	}
	cos := math.Max(-1, math.Min(1, a.Dot(b)/denom))
	return mgl64.RadToDeg(math.Acos(cos))
}

// SignedAngle returns the angle from a to b in degrees, signed by the
// right-hand rule around axis.
func SignedAngle(a, b, axis mgl64.Vec3) float64 {
	angle := Angle(a, b)
	if axis.Dot(a.Cross(b)) < 0 {
		return -angle
	}
	return angle
}

// ToWorld rotates a local-space vector into world space.
func ToWorld(rot mgl64.Quat, local mgl64.Vec3) mgl64.Vec3 {
	return rot.Rotate(local)
}

// ToLocal rotates a world-space vector into the local space of rot.
func ToLocal(rot mgl64.Quat, world mgl64.Vec3) mgl64.Vec3 {
	return rot.Inverse().Rotate(world)
}
