package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

const (
	PlayerSpecFile = "player.yaml"
	LevelSpecFile  = "level.yaml"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type Vec2Spec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Vec3 places a level point in the simulation frame, with Z zero.
func (v Vec2Spec) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, 0}
}

type Vec3Spec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (v Vec3Spec) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// LevelSpec describes static geometry in world units with Y up.
// KillY respawns the player when it drops below that height.
type LevelSpec struct {
	Name                  string          `yaml:"name"`
	Spawn                 Vec2Spec        `yaml:"spawn"`
	KillY                 float64         `yaml:"kill_y"`
	IgnoreLayerCollisions []LayerPairSpec `yaml:"ignore_layer_collisions"`
	Segments              []SegmentSpec   `yaml:"segments"`
	Polygons              []PolygonSpec   `yaml:"polygons"`
	Triggers              []TriggerSpec   `yaml:"triggers"`
	Background            *YAMLColor      `yaml:"background"`
}

type LayerPairSpec struct {
	A int `yaml:"a"`
	B int `yaml:"b"`
}

type SegmentSpec struct {
	A      Vec2Spec   `yaml:"a"`
	B      Vec2Spec   `yaml:"b"`
	Radius float64    `yaml:"radius"`
	Layer  int        `yaml:"layer"`
	Color  *YAMLColor `yaml:"color"`
}

type PolygonSpec struct {
	Points []Vec2Spec `yaml:"points"`
	Radius float64    `yaml:"radius"`
	Layer  int        `yaml:"layer"`
	Color  *YAMLColor `yaml:"color"`
}

type TriggerSpec struct {
	Name   string     `yaml:"name"`
	Points []Vec2Spec `yaml:"points"`
	Layer  int        `yaml:"layer"`
}

func LoadLevelSpec(filename string) (LevelSpec, error) {
	if filename == "" {
		filename = LevelSpecFile
	}
	if !strings.HasSuffix(filename, ".yaml") && !strings.HasSuffix(filename, ".yml") {
		filename += ".yaml"
	}
	return LoadSpec[LevelSpec](filename)
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}

// ColorOr returns the parsed color, or fallback when c is unset.
func (c *YAMLColor) ColorOr(fallback color.Color) color.Color {
	if c == nil || c.Color == nil {
		return fallback
	}
	return c.Color
}
