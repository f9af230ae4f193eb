package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gaze/camera"
)

type oracleEntry struct {
	entity ecs.Entity
	box    rl.BoundingBox
}

// RaylibOracle answers visibility questions with raylib's ray and projection
// helpers. A box is on screen when it meets the eye's view volume or a corner
// in front of the eye projects into the viewport; a ray to the box centre must
// hit the box before any other indexed box or static occluder.
type RaylibOracle struct {
	width, height int32

	entries   []oracleEntry
	lookup    map[ecs.Entity]int
	occluders []rl.BoundingBox
}

// NewRaylibOracle creates an oracle for a viewport of the given size.
func NewRaylibOracle(width, height int32, occluders []r3.Box) *RaylibOracle {
	o := &RaylibOracle{
		width:  width,
		height: height,
		lookup: make(map[ecs.Entity]int),
	}
	for _, b := range occluders {
		o.occluders = append(o.occluders, toBoundingBox(b))
	}
	return o
}

// Resize updates the viewport size.
func (o *RaylibOracle) Resize(width, height int32) {
	o.width = width
	o.height = height
}

// Reset implements systems.IndexedOracle.
func (o *RaylibOracle) Reset() {
	o.entries = o.entries[:0]
	clear(o.lookup)
}

// Index implements systems.IndexedOracle.
func (o *RaylibOracle) Index(e ecs.Entity, box r3.Box) {
	bb := toBoundingBox(box)
	if i, ok := o.lookup[e]; ok {
		o.entries[i].box = bb
		return
	}
	o.lookup[e] = len(o.entries)
	o.entries = append(o.entries, oracleEntry{entity: e, box: bb})
}

// FrustumContains implements systems.VisibilityOracle. The view volume test
// decides; a corner projecting into the viewport also counts, which covers a
// window whose aspect differs from the eye's.
func (o *RaylibOracle) FrustumContains(eye *camera.Eye, box r3.Box) bool {
	if eye == nil {
		return false
	}
	if eye.BoxInView(box) {
		return true
	}
	cam := Camera3D(eye)
	for _, c := range box.Vertices() {
		depth := r3.Dot(r3.Sub(c, eye.Position), eye.Forward)
		if depth < eye.Near || depth > eye.Far {
			continue
		}
		p := rl.GetWorldToScreenEx(toVector3(c), cam, o.width, o.height)
		if p.X >= 0 && p.X <= float32(o.width) && p.Y >= 0 && p.Y <= float32(o.height) {
			return true
		}
	}
	return false
}

// IsVisible implements systems.VisibilityOracle. Unindexed objects are not visible.
func (o *RaylibOracle) IsVisible(e ecs.Entity, eye *camera.Eye) bool {
	if eye == nil {
		return false
	}
	idx, ok := o.lookup[e]
	if !ok {
		return false
	}
	target := o.entries[idx].box

	center := rl.Vector3Scale(rl.Vector3Add(target.Min, target.Max), 0.5)
	origin := toVector3(eye.Position)
	toTarget := rl.Vector3Subtract(center, origin)
	if rl.Vector3Length(toTarget) < 1e-6 {
		return true
	}
	ray := rl.Ray{Position: origin, Direction: rl.Vector3Normalize(toTarget)}

	hit := rl.GetRayCollisionBox(ray, target)
	if !hit.Hit {
		return false
	}

	for i, en := range o.entries {
		if i == idx {
			continue
		}
		if c := rl.GetRayCollisionBox(ray, en.box); c.Hit && c.Distance < hit.Distance {
			return false
		}
	}
	for _, b := range o.occluders {
		if c := rl.GetRayCollisionBox(ray, b); c.Hit && c.Distance < hit.Distance {
			return false
		}
	}
	return true
}
