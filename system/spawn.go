package system

import (
	"path"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// RespawnTrigger is the trigger name that sends the player back to spawn.
const RespawnTrigger = "respawn"

func (w *World) handleTriggers() {
	respawn := false
	for _, name := range w.Collision.DrainTriggers() {
		if name == RespawnTrigger {
			respawn = true
		}
	}
	if w.Level.KillY != 0 && w.Body.Position().Y() < w.Level.KillY {
		respawn = true
	}
	if respawn {
		w.Respawn()
	}
}

// Respawn moves the player back to the level spawn and clears its momentum.
func (w *World) Respawn() {
	w.Body.Teleport(w.Level.Spawn)
	w.Controller.SetMomentum(mgl64.Vec3{})
	w.Ceiling.Reset()
	w.respawns++
	w.logger.Info("respawn",
		zap.Int("count", w.respawns),
		zap.Uint64("step", w.step),
	)
}

func scriptBase(p string) string {
	return path.Base(filepath.ToSlash(p))
}
