package obj

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/locomotion/common"
)

// CameraRig is an orbit camera around the player. Its yaw and pitch set the
// frame that movement input is read in.
type CameraRig struct {
	yaw   float64
	pitch float64

	upperLimit float64
	lowerLimit float64
	// speed is degrees per second at full input.
	speed float64
}

func NewCameraRig(upperLimit, lowerLimit, speed float64) *CameraRig {
	return &CameraRig{
		upperLimit: math.Abs(upperLimit),
		lowerLimit: math.Abs(lowerLimit),
		speed:      speed,
	}
}

// Rotate applies look input in [-1, 1] per axis over dt seconds. Pitch is
// clamped to the vertical limits.
func (c *CameraRig) Rotate(horizontal, vertical, dt float64) {
	c.yaw = math.Mod(c.yaw+horizontal*c.speed*dt, 360)
	c.pitch = clamp(c.pitch+vertical*c.speed*dt, -c.lowerLimit, c.upperLimit)
}

func (c *CameraRig) SetAngles(yaw, pitch float64) {
	c.yaw = math.Mod(yaw, 360)
	c.pitch = clamp(pitch, -c.lowerLimit, c.upperLimit)
}

func (c *CameraRig) Yaw() float64 { return c.yaw }
func (c *CameraRig) Pitch() float64 { return c.pitch }

func (c *CameraRig) rotation() mgl64.Quat {
	yaw := mgl64.QuatRotate(mgl64.DegToRad(c.yaw), common.Up)
	pitch := mgl64.QuatRotate(mgl64.DegToRad(-c.pitch), common.Right)
	return yaw.Mul(pitch)
}

func (c *CameraRig) Right() mgl64.Vec3 {
	return c.rotation().Rotate(common.Right)
}

func (c *CameraRig) Forward() mgl64.Vec3 {
	return c.rotation().Rotate(common.Forward)
}

// PlanarCamera aligns movement with a CameraRig for a world that lives in
// the XY plane. The rig's yaw only picks which way +X input faces, so input
// never rotates into the dropped Z axis.
type PlanarCamera struct {
	rig *CameraRig
}

func NewPlanarCamera(rig *CameraRig) *PlanarCamera {
	return &PlanarCamera{rig: rig}
}

func (p *PlanarCamera) facing() float64 {
	if p.rig != nil && math.Cos(mgl64.DegToRad(p.rig.Yaw())) < 0 {
		return -1
	}
	return 1
}

func (p *PlanarCamera) Right() mgl64.Vec3 { return common.Right.Mul(p.facing()) }
func (p *PlanarCamera) Forward() mgl64.Vec3 { return common.Forward.Mul(p.facing()) }

// View maps world units to screen pixels, following a target with
// smoothing. World Y points up, screen Y down.
type View struct {
	PosX float64
	PosY float64

	screenW int
	screenH int
	zoom    float64
	// smoothing factor (0..1). higher -> faster follow.
	smooth float64
}

func NewView(screenW, screenH int, zoom float64) *View {
	if zoom <= 0 {
		zoom = 1
	}
	return &View{screenW: screenW, screenH: screenH, zoom: zoom, smooth: 0.15}
}

func (v *View) SetZoom(z float64) {
	if z <= 0 {
		return
	}
	v.zoom = z
}

func (v *View) Zoom() float64 { return v.zoom }

func (v *View) SetScreenSize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	v.screenW = w
	v.screenH = h
}

func (v *View) SetSmooth(f float64) {
	v.smooth = clamp(f, 0, 1)
}

// Update moves the view toward the target. Call once per frame.
func (v *View) Update(targetX, targetY float64) {
	if v.smooth <= 0 {
		v.SnapTo(targetX, targetY)
		return
	}
	v.PosX = common.Lerp(v.PosX, targetX, v.smooth)
	v.PosY = common.Lerp(v.PosY, targetY, v.smooth)
}

func (v *View) SnapTo(x, y float64) {
	v.PosX = x
	v.PosY = y
}

func (v *View) WorldToScreen(x, y float64) (float64, float64) {
	sx := (x-v.PosX)*v.zoom + float64(v.screenW)/2
	sy := float64(v.screenH)/2 - (y-v.PosY)*v.zoom
	return sx, sy
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
