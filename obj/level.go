package obj

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/locomotion/prefabs"
	"golang.org/x/image/colornames"
)

// Level is static geometry loaded into a CollisionWorld.
type Level struct {
	Name       string
	Spawn      mgl64.Vec3
	KillY      float64
	Background color.Color
	Colliders  int
}

func BuildLevel(world *CollisionWorld, spec prefabs.LevelSpec) (*Level, error) {
	for _, pair := range spec.IgnoreLayerCollisions {
		if err := world.IgnoreLayerCollision(pair.A, pair.B, true); err != nil {
			return nil, fmt.Errorf("obj: level %s: %w", spec.Name, err)
		}
	}

	level := &Level{
		Name:       spec.Name,
		Spawn:      spec.Spawn.Vec3(),
		KillY:      spec.KillY,
		Background: spec.Background.ColorOr(colornames.Black),
	}

	for i, seg := range spec.Segments {
		a := mgl64.Vec2{seg.A.X, seg.A.Y}
		b := mgl64.Vec2{seg.B.X, seg.B.Y}
		if _, err := world.AddStaticSegment(a, b, seg.Radius, seg.Layer, seg.Color.ColorOr(nil)); err != nil {
			return nil, fmt.Errorf("obj: level %s: segment %d: %w", spec.Name, i, err)
		}
		level.Colliders++
	}

	for i, poly := range spec.Polygons {
		if _, err := world.AddStaticPolygon(vec2s(poly.Points), poly.Radius, poly.Layer, poly.Color.ColorOr(nil)); err != nil {
			return nil, fmt.Errorf("obj: level %s: polygon %d: %w", spec.Name, i, err)
		}
		level.Colliders++
	}

	for _, trig := range spec.Triggers {
		if err := world.AddTrigger(trig.Name, vec2s(trig.Points), trig.Layer); err != nil {
			return nil, fmt.Errorf("obj: level %s: %w", spec.Name, err)
		}
	}

	return level, nil
}

func vec2s(points []prefabs.Vec2Spec) []mgl64.Vec2 {
	out := make([]mgl64.Vec2, len(points))
	for i, p := range points {
		out[i] = mgl64.Vec2{p.X, p.Y}
	}
	return out
}
