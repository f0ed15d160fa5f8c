package prefabs

import (
	"fmt"
	"strings"

	"github.com/milk9111/locomotion/controller"
	"github.com/milk9111/locomotion/mover"
	"gopkg.in/yaml.v3"
)

type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

// DecodeComponentSpec decodes raw on top of def, so keys missing from the
// file keep their default values.
func DecodeComponentSpec[T any](raw any, def T) (T, error) {
	if raw == nil {
		return def, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return def, err
	}
	out := def
	if err := yaml.Unmarshal(b, &out); err != nil {
		return def, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	Scale float64 `yaml:"scale"`
	Yaw   float64 `yaml:"yaw"`
}

type ControllerComponentSpec struct {
	MovementSpeed    float64 `yaml:"movement_speed"`
	AirControlRate   float64 `yaml:"air_control_rate"`
	JumpSpeed        float64 `yaml:"jump_speed"`
	JumpDuration     float64 `yaml:"jump_duration"`
	AirFriction      float64 `yaml:"air_friction"`
	GroundFriction   float64 `yaml:"ground_friction"`
	Gravity          float64 `yaml:"gravity"`
	SlideGravity     float64 `yaml:"slide_gravity"`
	SlopeLimit       float64 `yaml:"slope_limit"`
	UseLocalMomentum bool    `yaml:"use_local_momentum"`
}

type MoverComponentSpec struct {
	StepHeightRatio   float64  `yaml:"step_height_ratio"`
	ColliderHeight    float64  `yaml:"collider_height"`
	ColliderThickness float64  `yaml:"collider_thickness"`
	ColliderOffset    Vec3Spec `yaml:"collider_offset"`
	Layer             int      `yaml:"layer"`
}

type CeilingDetectorComponentSpec struct {
	AngleLimit float64 `yaml:"angle_limit"`
}

type TurnTowardComponentSpec struct {
	TurnSpeed      float64 `yaml:"turn_speed"`
	FallOffAngle   float64 `yaml:"fall_off_angle"`
	IgnoreMomentum bool    `yaml:"ignore_momentum"`
}

type CameraComponentSpec struct {
	UpperVerticalLimit float64 `yaml:"upper_vertical_limit"`
	LowerVerticalLimit float64 `yaml:"lower_vertical_limit"`
	Speed              float64 `yaml:"speed"`
	Smoothness         float64 `yaml:"smoothness"`
	Zoom               float64 `yaml:"zoom"`
}

// PlayerSpec is the decoded player prefab with defaults filled in for any
// component the file leaves out.
type PlayerSpec struct {
	Name            string
	Transform       TransformComponentSpec
	Controller      ControllerComponentSpec
	Mover           MoverComponentSpec
	CeilingDetector CeilingDetectorComponentSpec
	TurnToward      TurnTowardComponentSpec
	Camera          CameraComponentSpec
}

func DefaultPlayerSpec() PlayerSpec {
	cc := controller.DefaultConfig()
	mc := mover.DefaultConfig()
	return PlayerSpec{
		Name:      "player",
		Transform: TransformComponentSpec{Scale: 1},
		Controller: ControllerComponentSpec{
			MovementSpeed:    cc.MovementSpeed,
			AirControlRate:   cc.AirControlRate,
			JumpSpeed:        cc.JumpSpeed,
			JumpDuration:     cc.JumpDuration,
			AirFriction:      cc.AirFriction,
			GroundFriction:   cc.GroundFriction,
			Gravity:          cc.Gravity,
			SlideGravity:     cc.SlideGravity,
			SlopeLimit:       cc.SlopeLimit,
			UseLocalMomentum: cc.UseLocalMomentum,
		},
		Mover: MoverComponentSpec{
			StepHeightRatio:   mc.StepHeightRatio,
			ColliderHeight:    mc.ColliderHeight,
			ColliderThickness: mc.ColliderThickness,
		},
		CeilingDetector: CeilingDetectorComponentSpec{AngleLimit: 10},
		TurnToward:      TurnTowardComponentSpec{TurnSpeed: 50, FallOffAngle: 90},
		Camera: CameraComponentSpec{
			UpperVerticalLimit: 35,
			LowerVerticalLimit: 35,
			Speed:              50,
			Smoothness:         0.15,
			Zoom:               40,
		},
	}
}

func LoadPlayerSpec(filename string) (PlayerSpec, error) {
	if filename == "" {
		filename = PlayerSpecFile
	}
	if !strings.HasSuffix(filename, ".yaml") && !strings.HasSuffix(filename, ".yml") {
		filename += ".yaml"
	}
	raw, err := LoadEntityBuildSpec(filename)
	if err != nil {
		return PlayerSpec{}, err
	}
	return BuildPlayerSpec(raw)
}

func BuildPlayerSpec(raw EntityBuildSpec) (PlayerSpec, error) {
	spec := DefaultPlayerSpec()
	if raw.Name != "" {
		spec.Name = raw.Name
	}

	var err error
	if spec.Transform, err = DecodeComponentSpec(raw.Components["transform"], spec.Transform); err != nil {
		return PlayerSpec{}, componentError(raw.Name, "transform", err)
	}
	if spec.Controller, err = DecodeComponentSpec(raw.Components["controller"], spec.Controller); err != nil {
		return PlayerSpec{}, componentError(raw.Name, "controller", err)
	}
	if spec.Mover, err = DecodeComponentSpec(raw.Components["mover"], spec.Mover); err != nil {
		return PlayerSpec{}, componentError(raw.Name, "mover", err)
	}
	if spec.CeilingDetector, err = DecodeComponentSpec(raw.Components["ceiling_detector"], spec.CeilingDetector); err != nil {
		return PlayerSpec{}, componentError(raw.Name, "ceiling_detector", err)
	}
	if spec.TurnToward, err = DecodeComponentSpec(raw.Components["turn_toward"], spec.TurnToward); err != nil {
		return PlayerSpec{}, componentError(raw.Name, "turn_toward", err)
	}
	if spec.Camera, err = DecodeComponentSpec(raw.Components["camera"], spec.Camera); err != nil {
		return PlayerSpec{}, componentError(raw.Name, "camera", err)
	}

	if err := spec.ControllerConfig().Validate(); err != nil {
		return PlayerSpec{}, fmt.Errorf("prefabs: %s: %w", spec.Name, err)
	}
	if err := spec.MoverConfig().Validate(); err != nil {
		return PlayerSpec{}, fmt.Errorf("prefabs: %s: %w", spec.Name, err)
	}
	if spec.Mover.Layer < 0 || spec.Mover.Layer >= mover.MaxLayers {
		return PlayerSpec{}, fmt.Errorf("prefabs: %s: mover layer %d outside [0, %d)", spec.Name, spec.Mover.Layer, mover.MaxLayers)
	}
	return spec, nil
}

func componentError(entity, component string, err error) error {
	return fmt.Errorf("prefabs: %s: decode %s: %w", entity, component, err)
}

func (s PlayerSpec) ControllerConfig() controller.Config {
	c := s.Controller
	return controller.Config{
		MovementSpeed:    c.MovementSpeed,
		AirControlRate:   c.AirControlRate,
		JumpSpeed:        c.JumpSpeed,
		JumpDuration:     c.JumpDuration,
		AirFriction:      c.AirFriction,
		GroundFriction:   c.GroundFriction,
		Gravity:          c.Gravity,
		SlideGravity:     c.SlideGravity,
		SlopeLimit:       c.SlopeLimit,
		UseLocalMomentum: c.UseLocalMomentum,
	}
}

func (s PlayerSpec) MoverConfig() mover.Config {
	m := s.Mover
	return mover.Config{
		StepHeightRatio:   m.StepHeightRatio,
		ColliderHeight:    m.ColliderHeight,
		ColliderThickness: m.ColliderThickness,
		ColliderOffset:    m.ColliderOffset.Vec3(),
	}
}
