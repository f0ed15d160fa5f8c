package obj

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/locomotion/prefabs"
)

// ScriptInput drives the controller from a tengo script. The script sees
// __step, __state and __grounded and sets move_x, move_y and jump.
type ScriptInput struct {
	path     string
	compiled *tengo.Compiled

	state    string
	grounded bool

	direction mgl64.Vec2
	jump      bool
}

func NewScriptInput(path string) (*ScriptInput, error) {
	src, err := prefabs.LoadScript(path)
	if err != nil {
		return nil, fmt.Errorf("obj: load input script %s: %w", path, err)
	}
	return NewScriptInputFromSource(path, src)
}

func NewScriptInputFromSource(name string, src []byte) (*ScriptInput, error) {
	script := tengo.NewScript(src)
	_ = script.Add("__step", 0)
	_ = script.Add("__state", "")
	_ = script.Add("__grounded", false)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("obj: compile input script %s: %w", name, err)
	}
	return &ScriptInput{path: name, compiled: compiled}, nil
}

// Observe feeds the controller state the script sees on its next run.
func (s *ScriptInput) Observe(state string, grounded bool) {
	s.state = state
	s.grounded = grounded
}

// Update runs the script for step and latches its outputs.
func (s *ScriptInput) Update(step uint64) error {
	if err := s.compiled.Set("__step", int64(step)); err != nil {
		return err
	}
	if err := s.compiled.Set("__state", s.state); err != nil {
		return err
	}
	if err := s.compiled.Set("__grounded", s.grounded); err != nil {
		return err
	}
	if err := s.compiled.Run(); err != nil {
		return fmt.Errorf("obj: run input script %s: %w", s.path, err)
	}

	s.direction = mgl64.Vec2{s.float("move_x"), s.float("move_y")}
	s.jump = s.compiled.IsDefined("jump") && s.compiled.Get("jump").Bool()
	return nil
}

func (s *ScriptInput) float(name string) float64 {
	if !s.compiled.IsDefined(name) {
		return 0
	}
	return s.compiled.Get(name).Float()
}

func (s *ScriptInput) Direction() mgl64.Vec2 { return s.direction }

func (s *ScriptInput) JumpHeld() bool { return s.jump }

func (s *ScriptInput) Path() string { return s.path }
