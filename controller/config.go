package controller

import "fmt"

type Config struct {
	MovementSpeed  float64
	AirControlRate float64
	JumpSpeed      float64
	// JumpDuration is how long, in seconds, the jump keeps its vertical
	// speed pinned to JumpSpeed.
	JumpDuration   float64
	AirFriction    float64
	GroundFriction float64
	Gravity        float64
	SlideGravity   float64
	// SlopeLimit is the steepest walkable ground, in degrees from up.
	SlopeLimit float64
	// UseLocalMomentum stores momentum in the body's local frame so it turns
	// with the body.
	UseLocalMomentum bool
}

func DefaultConfig() Config {
	return Config{
		MovementSpeed:  7,
		AirControlRate: 2,
		JumpSpeed:      10,
		JumpDuration:   0.2,
		AirFriction:    0.5,
		GroundFriction: 100,
		Gravity:        30,
		SlideGravity:   5,
		SlopeLimit:     30,
	}
}

func (c Config) Validate() error {
	nonNegative := []struct {
		name  string
		value float64
	}{
		{"movement speed", c.MovementSpeed},
		{"air control rate", c.AirControlRate},
		{"jump speed", c.JumpSpeed},
		{"jump duration", c.JumpDuration},
		{"air friction", c.AirFriction},
		{"ground friction", c.GroundFriction},
		{"gravity", c.Gravity},
		{"slide gravity", c.SlideGravity},
	}
	for _, f := range nonNegative {
		if f.value < 0 {
			return fmt.Errorf("controller: %s must not be negative, got %v", f.name, f.value)
		}
	}
	if c.SlopeLimit < 0 || c.SlopeLimit > 90 {
		return fmt.Errorf("controller: slope limit %v outside [0, 90]", c.SlopeLimit)
	}
	return nil
}
