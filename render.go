package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// screenSink draws debug lines onto an ebiten image.
type screenSink struct {
	screen *ebiten.Image
	width  float32
}

func (s *screenSink) Line(x1, y1, x2, y2 float64, c color.Color) {
	vector.StrokeLine(s.screen, float32(x1), float32(y1), float32(x2), float32(y2), s.width, c, true)
}
