package obj

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/locomotion/mover"
	"golang.org/x/image/colornames"
)

// LineSink receives screen-space debug lines.
type LineSink interface {
	Line(x1, y1, x2, y2 float64, c color.Color)
}

// DebugDraw renders chipmunk shapes through view into sink.
func (cw *CollisionWorld) DebugDraw(sink LineSink, view *View) {
	if cw == nil || cw.space == nil || sink == nil || view == nil {
		return
	}
	cp.DrawSpace(cw.space, &chipmunkDrawer{world: cw, sink: sink, view: view})
}

// DebugDrawCast draws the ground probe and marks its hit point.
func DebugDrawCast(sink LineSink, view *View, cast mover.DebugCast) {
	if sink == nil || view == nil {
		return
	}
	c := color.Color(colornames.Red)
	if cast.Hit {
		c = colornames.Lime
	}
	drawWorldLine(sink, view, cast.Origin, cast.End, c)
	if !cast.Hit {
		return
	}
	const mark = 0.15
	drawWorldLine(sink, view, cast.Point.Sub(mgl64.Vec3{mark, 0, 0}), cast.Point.Add(mgl64.Vec3{mark, 0, 0}), colornames.Yellow)
	drawWorldLine(sink, view, cast.Point, cast.Point.Add(cast.Normal.Mul(0.5)), colornames.Cyan)
}

// DebugDrawVector draws v from origin, scaled to world units.
func DebugDrawVector(sink LineSink, view *View, origin, v mgl64.Vec3, scale float64, c color.Color) {
	if sink == nil || view == nil {
		return
	}
	drawWorldLine(sink, view, origin, origin.Add(v.Mul(scale)), c)
}

func drawWorldLine(sink LineSink, view *View, a, b mgl64.Vec3, c color.Color) {
	x1, y1 := view.WorldToScreen(a.X(), a.Y())
	x2, y2 := view.WorldToScreen(b.X(), b.Y())
	sink.Line(x1, y1, x2, y2, c)
}

type chipmunkDrawer struct {
	world *CollisionWorld
	sink  LineSink
	view  *View
}

func (d *chipmunkDrawer) line(a, b cp.Vector, c color.Color) {
	x1, y1 := d.view.WorldToScreen(a.X, a.Y)
	x2, y2 := d.view.WorldToScreen(b.X, b.Y)
	d.sink.Line(x1, y1, x2, y2, c)
}

func (d *chipmunkDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	c := fcolorToRGBA(outline)
	steps := 20
	prev := cp.Vector{X: pos.X + radius, Y: pos.Y}
	for i := 1; i <= steps; i++ {
		th := float64(i) * (2 * math.Pi / float64(steps))
		cur := cp.Vector{X: pos.X + math.Cos(th)*radius, Y: pos.Y + math.Sin(th)*radius}
		d.line(prev, cur, c)
		prev = cur
	}
	d.line(pos, cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}, c)
}

func (d *chipmunkDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.line(a, b, fcolorToRGBA(fill))
}

func (d *chipmunkDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	c := fcolorToRGBA(fill)
	if radius <= 0 {
		d.line(a, b, c)
		return
	}
	// outline both sides of the rounded segment
	dir := b.Sub(a)
	n := cp.Vector{X: -dir.Y, Y: dir.X}
	if l := n.Length(); l > 0 {
		n = n.Mult(radius / l)
	}
	d.line(a.Add(n), b.Add(n), c)
	d.line(a.Sub(n), b.Sub(n), c)
	d.DrawCircle(a, 0, radius, fill, fill, data)
	d.DrawCircle(b, 0, radius, fill, fill, data)
}

func (d *chipmunkDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count == 0 {
		return
	}
	c := fcolorToRGBA(fill)
	for i := 0; i < count; i++ {
		d.line(verts[i], verts[(i+1)%count], c)
	}
}

func (d *chipmunkDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	c := fcolorToRGBA(fill)
	l := size / 2 / d.view.Zoom()
	d.line(cp.Vector{X: pos.X - l, Y: pos.Y}, cp.Vector{X: pos.X + l, Y: pos.Y}, c)
	d.line(cp.Vector{X: pos.X, Y: pos.Y - l}, cp.Vector{X: pos.X, Y: pos.Y + l}, c)
}

func (d *chipmunkDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *chipmunkDrawer) OutlineColor() cp.FColor {
	return toFColor(colornames.Lime)
}

func (d *chipmunkDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if shape == nil {
		return toFColor(colornames.White)
	}
	if shape.Sensor() {
		return toFColor(colornames.Gold)
	}
	if info, ok := d.world.shapes[shape]; ok && info.color != nil {
		return toFColor(info.color)
	}
	if shape.Body() != nil && shape.Body().GetType() == cp.BODY_STATIC {
		return toFColor(colornames.Lightskyblue)
	}
	return toFColor(colornames.Orchid)
}

func (d *chipmunkDrawer) ConstraintColor() cp.FColor {
	return toFColor(colornames.Lightgray)
}

func (d *chipmunkDrawer) CollisionPointColor() cp.FColor {
	return toFColor(colornames.Red)
}

func (d *chipmunkDrawer) Data() interface{} {
	return nil
}

func toFColor(c color.Color) cp.FColor {
	r, g, b, a := c.RGBA()
	return cp.FColor{R: float32(r) / 0xffff, G: float32(g) / 0xffff, B: float32(b) / 0xffff, A: float32(a) / 0xffff}
}

func fcolorToRGBA(c cp.FColor) color.RGBA {
	clamp := func(v float32) uint8 {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return uint8(v * 255)
	}
	return color.RGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}
