package main

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/milk9111/locomotion/obj"
	"github.com/milk9111/locomotion/prefabs"
	"github.com/milk9111/locomotion/system"
	"go.uber.org/zap"
	"golang.org/x/image/colornames"
)

const (
	baseWidth  = 1280
	baseHeight = 720
	frameDT    = 1.0 / 60.0
)

type Game struct {
	frames int
	debug  bool

	world    *system.World
	view     *obj.View
	keyboard *KeyboardInput
	scripted bool
	watcher  *prefabs.Watcher
	logger   *zap.Logger
}

func NewGame(world *system.World, keyboard *KeyboardInput, scripted, debug bool, watcher *prefabs.Watcher, logger *zap.Logger) *Game {
	cam := world.PlayerSpec().Camera
	view := obj.NewView(baseWidth, baseHeight, cam.Zoom)
	view.SetSmooth(cam.Smoothness)
	pos := world.PlayerPosition()
	view.SnapTo(pos.X(), pos.Y())

	return &Game{
		debug:    debug,
		world:    world,
		view:     view,
		keyboard: keyboard,
		scripted: scripted,
		watcher:  watcher,
		logger:   logger,
	}
}

func (g *Game) Update() error {
	g.frames++
	g.pollReloads()

	g.keyboard.Update()
	if g.keyboard.DebugToggled {
		g.debug = !g.debug
	}
	if g.keyboard.RespawnPressed {
		g.world.Respawn()
	}
	g.world.Camera.Rotate(0, g.keyboard.Pitch, frameDT)

	if _, err := g.world.Update(frameDT); err != nil {
		return err
	}

	pos := g.world.PlayerPosition()
	g.view.Update(pos.X(), pos.Y())
	return nil
}

// pollReloads applies any prefab changes reported since the last frame.
func (g *Game) pollReloads() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			name := prefabs.Name(path)
			if err := g.world.Reload(name); err != nil {
				g.logger.Warn("reload failed", zap.String("prefab", name), zap.Error(err))
				continue
			}
			if name == prefabs.PlayerSpecFile {
				cam := g.world.PlayerSpec().Camera
				g.view.SetZoom(cam.Zoom)
				g.view.SetSmooth(cam.Smoothness)
			}
			g.logger.Info("prefab reloaded", zap.String("prefab", name))
		case err, ok := <-g.watcher.Errors:
			if ok {
				g.logger.Warn("watcher error", zap.Error(err))
			}
		default:
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.world.Level.Background)

	sink := &screenSink{screen: screen, width: 2}
	g.world.Collision.DebugDraw(sink, g.view)

	pos := g.world.PlayerPosition()
	ctrl := g.world.Controller
	if g.debug {
		thin := &screenSink{screen: screen, width: 1}
		obj.DebugDrawCast(thin, g.view, g.world.Mover.Sensor().DebugCast())
		obj.DebugDrawVector(thin, g.view, pos, ctrl.Velocity(), 0.1, colornames.Orange)
		obj.DebugDrawVector(thin, g.view, pos, ctrl.Momentum(), 0.1, colornames.Magenta)
		obj.DebugDrawVector(thin, g.view, pos, g.world.Turn.Forward(), 1, colornames.White)
	}

	v := ctrl.Velocity()
	text := fmt.Sprintf("FPS: %.1f  level: %s  state: %s  grounded: %v\nvel: (%.2f, %.2f)  pos: (%.2f, %.2f)  respawns: %d",
		ebiten.ActualFPS(), g.world.Level.Name, ctrl.State(), ctrl.IsGrounded(),
		v.X(), v.Y(), pos.X(), pos.Y(), g.world.Respawns())
	if g.scripted {
		text += "  [script]"
	}
	ebitenutil.DebugPrint(screen, text)
}

// Layout renders at the window size so resizing shows more of the level
// instead of stretching it.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.view.SetScreenSize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}
