package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/locomotion/controller"
	"github.com/milk9111/locomotion/obj"
	"github.com/milk9111/locomotion/prefabs"
	"github.com/milk9111/locomotion/system"
	"go.uber.org/zap"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug drawing and logging")
	levelName := flag.String("level", "", "level spec in prefabs/ (basename, .yaml optional)")
	playerName := flag.String("player", "", "player spec in prefabs/ (basename, .yaml optional)")
	script := flag.String("script", "", "drive the player from a tengo script in prefabs/scripts/ instead of the keyboard")
	watch := flag.Bool("watch", true, "hot reload prefabs/ when files change")
	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	level, err := prefabs.LoadLevelSpec(*levelName)
	if err != nil {
		logger.Fatal("load level", zap.Error(err))
	}
	player, err := prefabs.LoadPlayerSpec(*playerName)
	if err != nil {
		logger.Fatal("load player", zap.Error(err))
	}

	keyboard := NewKeyboardInput()
	var input controller.InputProvider = keyboard
	if *script != "" {
		in, err := obj.NewScriptInput(*script)
		if err != nil {
			logger.Fatal("load script", zap.Error(err))
		}
		input = in
	}

	world, err := system.NewWorld(level, player, input, system.WithLogger(logger))
	if err != nil {
		logger.Fatal("create world", zap.Error(err))
	}

	var watcher *prefabs.Watcher
	if *watch {
		watcher = startWatcher(logger)
		if watcher != nil {
			defer watcher.Close()
		}
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("locomotion")

	game := NewGame(world, keyboard, *script != "", *debug, watcher, logger)
	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal("run game", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// startWatcher watches prefabs/ on disk when running from the repo root.
// Embedded prefabs are used as-is otherwise.
func startWatcher(logger *zap.Logger) *prefabs.Watcher {
	dirs := []string{}
	for _, dir := range []string{"prefabs", "prefabs/scripts"} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		return nil
	}
	w, err := prefabs.NewWatcher(dirs...)
	if err != nil {
		logger.Warn("prefab watcher disabled", zap.Error(err))
		return nil
	}
	logger.Info("watching prefabs", zap.Strings("dirs", dirs))
	return w
}
