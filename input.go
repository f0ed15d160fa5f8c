package main

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const stickDeadzone = 0.3

// KeyboardInput samples keyboard and the first gamepad once per frame.
type KeyboardInput struct {
	// MoveX is -1 for left, 0 for none, +1 for right.
	MoveX float64
	// Jump is true while the jump key is held down.
	Jump bool
	// Pitch is the camera pitch request, -1..1.
	Pitch float64

	DebugToggled   bool
	RespawnPressed bool
}

func NewKeyboardInput() *KeyboardInput {
	return &KeyboardInput{}
}

func (i *KeyboardInput) Update() {
	moveX := 0.0
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		moveX -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		moveX += 1
	}
	pitch := 0.0
	if ebiten.IsKeyPressed(ebiten.KeyE) {
		pitch += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyQ) {
		pitch -= 1
	}
	jumpHeld := ebiten.IsKeyPressed(ebiten.KeySpace) || ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyUp)

	// Gamepad: left stick moves, right stick pitches, bottom face button jumps.
	ids := ebiten.GamepadIDs()
	if len(ids) > 0 {
		gid := ids[0]

		leftX := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickHorizontal)
		if leftX < -stickDeadzone || leftX > stickDeadzone {
			moveX = leftX
		}
		rightY := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisRightStickVertical)
		if rightY < -stickDeadzone || rightY > stickDeadzone {
			pitch = -rightY
		}
		jumpHeld = jumpHeld || ebiten.IsStandardGamepadButtonPressed(gid, ebiten.StandardGamepadButtonRightBottom)
	}

	i.MoveX = clampUnit(moveX)
	i.Pitch = clampUnit(pitch)
	i.Jump = jumpHeld
	i.DebugToggled = inpututil.IsKeyJustPressed(ebiten.KeyF3)
	i.RespawnPressed = inpututil.IsKeyJustPressed(ebiten.KeyBackspace)
}

// Direction is the movement request in the player's input plane.
func (i *KeyboardInput) Direction() mgl64.Vec2 { return mgl64.Vec2{i.MoveX, 0} }
func (i *KeyboardInput) JumpHeld() bool { return i.Jump }

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
