package obj

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/locomotion/mover"
	"go.uber.org/zap"
)

const (
	collisionTypePlayer cp.CollisionType = iota + 1
	collisionTypeSolid
	collisionTypeTrigger
)

// playerGroup keeps ground probes from hitting the player's own shapes.
const playerGroup uint = 1

// ContactFunc receives the contact normal of a player/solid contact, pointing
// from the solid toward the player.
type ContactFunc func(normal mgl64.Vec3)

type staticShape struct {
	id    mover.ColliderID
	layer int
	color color.Color
}

// CollisionWorld owns the chipmunk space holding level geometry and the
// player body. It implements mover.LayerMatrix and hands out per-body
// mover.Raycaster views.
type CollisionWorld struct {
	space  *cp.Space
	logger *zap.Logger

	ignore [mover.MaxLayers]uint32
	shapes map[*cp.Shape]*staticShape
	nextID mover.ColliderID

	player    *PlayerBody
	contacts  []ContactFunc
	triggered []string

	handlersReady bool
}

type WorldOption func(*CollisionWorld)

func WithWorldLogger(logger *zap.Logger) WorldOption {
	return func(cw *CollisionWorld) {
		if logger != nil {
			cw.logger = logger
		}
	}
}

func NewCollisionWorld(opts ...WorldOption) *CollisionWorld {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{})
	cw := &CollisionWorld{
		space:  space,
		logger: zap.NewNop(),
		shapes: make(map[*cp.Shape]*staticShape),
	}
	for _, opt := range opts {
		opt(cw)
	}
	cw.setupHandlers()
	return cw
}

// IgnoreLayerCollision toggles collisions and ground probes between two
// layers. The relation is symmetric.
func (cw *CollisionWorld) IgnoreLayerCollision(a, b int, ignore bool) error {
	if a < 0 || a >= mover.MaxLayers || b < 0 || b >= mover.MaxLayers {
		return fmt.Errorf("obj: layer pair (%d, %d) outside [0, %d)", a, b, mover.MaxLayers)
	}
	if ignore {
		cw.ignore[a] |= 1 << uint(b)
		cw.ignore[b] |= 1 << uint(a)
	} else {
		cw.ignore[a] &^= 1 << uint(b)
		cw.ignore[b] &^= 1 << uint(a)
	}
	cw.refreshFilters()
	return nil
}

func (cw *CollisionWorld) IgnoresLayerCollision(a, b int) bool {
	if a < 0 || a >= mover.MaxLayers || b < 0 || b >= mover.MaxLayers {
		return false
	}
	return cw.ignore[a]&(1<<uint(b)) != 0
}

// collisionMask is every layer a shape on layer collides with.
func (cw *CollisionWorld) collisionMask(layer int) uint {
	return uint(^cw.ignore[layer])
}

func (cw *CollisionWorld) filterFor(layer int, group uint) cp.ShapeFilter {
	return cp.ShapeFilter{
		Group:      group,
		Categories: 1 << uint(layer),
		Mask:       cw.collisionMask(layer),
	}
}

func (cw *CollisionWorld) refreshFilters() {
	for shape, info := range cw.shapes {
		shape.SetFilter(cw.filterFor(info.layer, cp.NO_GROUP))
	}
	if cw.player != nil {
		cw.player.applyFilter()
	}
}

func (cw *CollisionWorld) track(shape *cp.Shape, layer int, c color.Color) mover.ColliderID {
	cw.nextID++
	cw.shapes[shape] = &staticShape{id: cw.nextID, layer: layer, color: c}
	shape.SetFilter(cw.filterFor(layer, cp.NO_GROUP))
	cw.space.AddShape(shape)
	return cw.nextID
}

func checkLayer(layer int) error {
	if layer < 0 || layer >= mover.MaxLayers {
		return fmt.Errorf("obj: layer %d outside [0, %d)", layer, mover.MaxLayers)
	}
	return nil
}

func (cw *CollisionWorld) AddStaticSegment(a, b mgl64.Vec2, radius float64, layer int, c color.Color) (mover.ColliderID, error) {
	if err := checkLayer(layer); err != nil {
		return 0, err
	}
	shape := cp.NewSegment(cw.space.StaticBody, toVector(a), toVector(b), radius)
	shape.SetFriction(0)
	shape.SetCollisionType(collisionTypeSolid)
	return cw.track(shape, layer, c), nil
}

// AddStaticPolygon adds a convex polygon. Points may wind either way.
func (cw *CollisionWorld) AddStaticPolygon(points []mgl64.Vec2, radius float64, layer int, c color.Color) (mover.ColliderID, error) {
	if err := checkLayer(layer); err != nil {
		return 0, err
	}
	if len(points) < 3 {
		return 0, fmt.Errorf("obj: polygon needs at least 3 points, got %d", len(points))
	}
	verts := toVectors(points)
	shape := cp.NewPolyShapeRaw(cw.space.StaticBody, len(verts), verts, radius)
	shape.SetFriction(0)
	shape.SetCollisionType(collisionTypeSolid)
	return cw.track(shape, layer, c), nil
}

// AddTrigger adds a sensor polygon that reports name when the player enters
// it. Ground probes never hit triggers.
func (cw *CollisionWorld) AddTrigger(name string, points []mgl64.Vec2, layer int) error {
	if err := checkLayer(layer); err != nil {
		return err
	}
	if len(points) < 3 {
		return fmt.Errorf("obj: trigger %q needs at least 3 points, got %d", name, len(points))
	}
	verts := toVectors(points)
	shape := cp.NewPolyShapeRaw(cw.space.StaticBody, len(verts), verts, 0)
	shape.SetSensor(true)
	shape.SetCollisionType(collisionTypeTrigger)
	shape.UserData = name
	cw.track(shape, layer, nil)
	return nil
}

// OnPlayerContact registers fn for every player/solid contact during a step.
func (cw *CollisionWorld) OnPlayerContact(fn ContactFunc) {
	if fn != nil {
		cw.contacts = append(cw.contacts, fn)
	}
}

func (cw *CollisionWorld) setupHandlers() {
	if cw.handlersReady || cw.space == nil {
		return
	}
	handler := cw.space.NewCollisionHandler(collisionTypePlayer, collisionTypeSolid)
	handler.UserData = cw
	handler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		world, ok := userData.(*CollisionWorld)
		if !ok || world == nil || world.player == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		playerShape := world.player.shape
		if playerShape == nil || (shapeA != playerShape && shapeB != playerShape) {
			return true
		}
		// arb.Normal points from A to B; flip it so it points at the player.
		n := arb.Normal()
		if shapeA == playerShape {
			n = n.Neg()
		}
		normal := mgl64.Vec3{n.X, n.Y, 0}
		for _, fn := range world.contacts {
			fn(normal)
		}
		return true
	}

	triggerHandler := cw.space.NewCollisionHandler(collisionTypePlayer, collisionTypeTrigger)
	triggerHandler.UserData = cw
	triggerHandler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		world, ok := userData.(*CollisionWorld)
		if !ok || world == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		trigger := shapeB
		if shapeA.Sensor() {
			trigger = shapeA
		}
		if name, ok := trigger.UserData.(string); ok && name != "" {
			world.triggered = append(world.triggered, name)
			world.logger.Debug("trigger entered", zap.String("trigger", name))
		}
		return true
	}

	cw.handlersReady = true
}

func (cw *CollisionWorld) Step(dt float64) {
	if cw == nil || cw.space == nil {
		return
	}
	cw.space.Step(dt)
}

// DrainTriggers returns the triggers entered since the last call.
func (cw *CollisionWorld) DrainTriggers() []string {
	if len(cw.triggered) == 0 {
		return nil
	}
	out := cw.triggered
	cw.triggered = nil
	return out
}

// RaycasterFor returns a ray query that never hits body's own shapes.
func (cw *CollisionWorld) RaycasterFor(body *PlayerBody) mover.Raycaster {
	group := cp.NO_GROUP
	if body != nil {
		group = playerGroup
	}
	return &spaceRaycaster{world: cw, group: group}
}

type spaceRaycaster struct {
	world *CollisionWorld
	group uint
}

// Raycast ignores the Z axis; the space is the XY plane.
func (r *spaceRaycaster) Raycast(origin, dir mgl64.Vec3, maxDist float64, mask mover.LayerMask) (mover.RaycastHit, bool) {
	if maxDist <= 0 {
		return mover.RaycastHit{}, false
	}
	end := origin.Add(dir.Mul(maxDist))
	filter := cp.ShapeFilter{Group: r.group, Categories: cp.ALL_CATEGORIES, Mask: uint(mask)}
	info := r.world.space.SegmentQueryFirst(
		cp.Vector{X: origin.X(), Y: origin.Y()},
		cp.Vector{X: end.X(), Y: end.Y()},
		0,
		filter,
	)
	if info.Shape == nil {
		return mover.RaycastHit{}, false
	}
	hit := mover.RaycastHit{
		Distance: info.Alpha * maxDist,
		Normal:   mgl64.Vec3{info.Normal.X, info.Normal.Y, 0},
		Point:    mgl64.Vec3{info.Point.X, info.Point.Y, origin.Z()},
	}
	if s, ok := r.world.shapes[info.Shape]; ok {
		hit.Collider = s.id
	}
	return hit, true
}

func toVector(v mgl64.Vec2) cp.Vector {
	return cp.Vector{X: v.X(), Y: v.Y()}
}

// toVectors converts points to counter-clockwise chipmunk vertices.
func toVectors(points []mgl64.Vec2) []cp.Vector {
	verts := make([]cp.Vector, len(points))
	area := 0.0
	for i, p := range points {
		verts[i] = toVector(p)
		q := points[(i+1)%len(points)]
		area += p.X()*q.Y() - q.X()*p.Y()
	}
	if area < 0 {
		for i, j := 0, len(verts)-1; i < j; i, j = i+1, j-1 {
			verts[i], verts[j] = verts[j], verts[i]
		}
	}
	return verts
}
