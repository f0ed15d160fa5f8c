// Command locosim runs the locomotion stack headless, driven by a tengo
// input script, and optionally writes a per-step JSON trace.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/milk9111/locomotion/controller"
	"github.com/milk9111/locomotion/obj"
	"github.com/milk9111/locomotion/prefabs"
	"github.com/milk9111/locomotion/system"
	"go.uber.org/zap"
)

type options struct {
	level  string
	player string
	script string
	steps  int
	trace  string
	debug  bool
}

// traceRecord is one line of the -trace output.
type traceRecord struct {
	Step     uint64     `json:"step"`
	State    string     `json:"state"`
	Grounded bool       `json:"grounded"`
	Position [3]float64 `json:"pos"`
	Velocity [3]float64 `json:"velocity"`
	Momentum [3]float64 `json:"momentum"`
	Events   []string   `json:"events,omitempty"`
}

// summary is printed once the run finishes.
type summary struct {
	Steps    uint64         `json:"steps"`
	State    string         `json:"state"`
	Position [3]float64     `json:"pos"`
	Respawns int            `json:"respawns"`
	Events   map[string]int `json:"events"`
}

func main() {
	var opts options
	flag.StringVar(&opts.level, "level", "", "level spec in prefabs/ (basename, .yaml optional)")
	flag.StringVar(&opts.player, "player", "", "player spec in prefabs/ (basename, .yaml optional)")
	flag.StringVar(&opts.script, "script", "autopilot.tengo", "input script in prefabs/scripts/")
	flag.IntVar(&opts.steps, "steps", 1000, "number of fixed steps to simulate")
	flag.StringVar(&opts.trace, "trace", "", "write a JSON line per step to this file (- for stdout)")
	flag.BoolVar(&opts.debug, "debug", false, "log controller transitions")
	flag.Parse()

	logger, err := newLogger(opts.debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(opts, os.Stdout, logger); err != nil {
		logger.Fatal("locosim failed", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(opts options, out io.Writer, logger *zap.Logger) error {
	if opts.steps <= 0 {
		return errors.New("locosim: -steps must be positive")
	}

	level, err := prefabs.LoadLevelSpec(opts.level)
	if err != nil {
		return err
	}
	player, err := prefabs.LoadPlayerSpec(opts.player)
	if err != nil {
		return err
	}
	input, err := obj.NewScriptInput(opts.script)
	if err != nil {
		return err
	}
	world, err := system.NewWorld(level, player, input, system.WithLogger(logger))
	if err != nil {
		return err
	}

	var traceOut io.Writer
	switch opts.trace {
	case "":
	case "-":
		traceOut = out
	default:
		f, err := os.Create(opts.trace)
		if err != nil {
			return fmt.Errorf("locosim: create trace: %w", err)
		}
		defer f.Close()
		traceOut = f
	}

	counts := make(map[string]int)
	var pending []string
	world.Subscribe(func(evt controller.Event) {
		counts[evt.Kind.String()]++
		pending = append(pending, evt.Kind.String())
		logger.Debug("controller event",
			zap.Stringer("event", evt.Kind),
			zap.Uint64("step", evt.Step),
		)
	})

	var enc *json.Encoder
	if traceOut != nil {
		enc = json.NewEncoder(traceOut)
	}
	for i := 0; i < opts.steps; i++ {
		if err := world.Step(); err != nil {
			return err
		}
		if enc != nil {
			if err := enc.Encode(record(world, pending)); err != nil {
				return fmt.Errorf("locosim: write trace: %w", err)
			}
		}
		pending = pending[:0]
	}

	if opts.trace == "-" {
		return nil
	}
	return json.NewEncoder(out).Encode(summary{
		Steps:    world.StepCount(),
		State:    world.Controller.State().String(),
		Position: world.PlayerPosition(),
		Respawns: world.Respawns(),
		Events:   counts,
	})
}

func record(world *system.World, events []string) traceRecord {
	ctrl := world.Controller
	rec := traceRecord{
		Step:     world.StepCount(),
		State:    ctrl.State().String(),
		Grounded: ctrl.IsGrounded(),
		Position: world.PlayerPosition(),
		Velocity: ctrl.Velocity(),
		Momentum: ctrl.Momentum(),
	}
	if len(events) > 0 {
		rec.Events = append([]string(nil), events...)
	}
	return rec
}
