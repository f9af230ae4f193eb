package systems

import (
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gaze/camera"
)

// VisibilityPolicy selects the occlusion test used by the gate.
// Exactly one policy is active per configuration.
type VisibilityPolicy uint8

const (
	VisibilityFrustum VisibilityPolicy = iota // range + bounding volume vs frustum planes
	VisibilityRaycast                         // range + single unoccluded ray
)

// String returns the config name of the policy.
func (p VisibilityPolicy) String() string {
	switch p {
	case VisibilityFrustum:
		return "frustum"
	case VisibilityRaycast:
		return "raycast"
	default:
		return "unknown"
	}
}

// ParseVisibilityPolicy maps a config value to a VisibilityPolicy.
func ParseVisibilityPolicy(s string) (VisibilityPolicy, error) {
	switch s {
	case "frustum":
		return VisibilityFrustum, nil
	case "raycast":
		return VisibilityRaycast, nil
	default:
		return 0, fmt.Errorf("unknown visibility policy %q", s)
	}
}

// VisibilityOracle answers on-screen and occlusion questions for the gate.
// Implementations are supplied by whatever owns the scene geometry.
type VisibilityOracle interface {
	// IsVisible reports whether a ray from the eye to the object hits the object first.
	IsVisible(e ecs.Entity, eye *camera.Eye) bool
	// FrustumContains reports whether the box intersects the eye's view frustum.
	FrustumContains(eye *camera.Eye, box r3.Box) bool
}

// IndexedOracle is an oracle that is fed object boxes once per frame.
type IndexedOracle interface {
	VisibilityOracle
	// Reset drops all object boxes from the previous frame.
	Reset()
	// Index records the current box of an object.
	Index(e ecs.Entity, box r3.Box)
}

// VisibilityGate decides per object per frame whether it is eligible for attention.
type VisibilityGate struct {
	policy     VisibilityPolicy
	rangeLimit float64
	oracle     VisibilityOracle
}

// NewVisibilityGate creates a gate. attentionRange is the maximum eye-to-object distance.
func NewVisibilityGate(policy VisibilityPolicy, attentionRange float64, oracle VisibilityOracle) *VisibilityGate {
	return &VisibilityGate{
		policy:     policy,
		rangeLimit: attentionRange,
		oracle:     oracle,
	}
}

// Policy returns the active visibility policy.
func (g *VisibilityGate) Policy() VisibilityPolicy {
	return g.policy
}

// SetOracle swaps the oracle, e.g. when a renderer becomes available.
func (g *VisibilityGate) SetOracle(o VisibilityOracle) {
	g.oracle = o
}

// Eligible reports whether the object passes range and the active occlusion test.
// Without an eye or an oracle nothing can be seen.
func (g *VisibilityGate) Eligible(e ecs.Entity, box r3.Box, center r3.Vec, eye *camera.Eye) bool {
	if eye == nil || g.oracle == nil {
		return false
	}
	if eye.Distance(center) > g.rangeLimit {
		return false
	}
	switch g.policy {
	case VisibilityRaycast:
		return g.oracle.IsVisible(e, eye)
	default:
		return g.oracle.FrustumContains(eye, box)
	}
}

// sceneEntry is one indexed box in the scene oracle.
type sceneEntry struct {
	entity ecs.Entity
	box    r3.Box
	static bool
}

// SceneOracle is a geometry-only VisibilityOracle: frustum planes from the eye
// and slab ray tests against indexed object boxes and static occluders.
// Object boxes are re-indexed every frame; static occluders persist.
type SceneOracle struct {
	entries []sceneEntry
	lookup  map[ecs.Entity]int

	frustumEye camera.Eye
	frustum    camera.Frustum
	hasFrustum bool
}

// NewSceneOracle creates an oracle with the given static occluders.
func NewSceneOracle(occluders []r3.Box) *SceneOracle {
	o := &SceneOracle{
		entries: make([]sceneEntry, 0, len(occluders)+32),
		lookup:  make(map[ecs.Entity]int),
	}
	for _, b := range occluders {
		o.entries = append(o.entries, sceneEntry{box: b, static: true})
	}
	return o
}

// Reset drops all object boxes, keeping static occluders.
func (o *SceneOracle) Reset() {
	n := 0
	for _, en := range o.entries {
		if en.static {
			o.entries[n] = en
			n++
		}
	}
	o.entries = o.entries[:n]
	clear(o.lookup)
}

// Index adds or replaces the box for an object.
func (o *SceneOracle) Index(e ecs.Entity, box r3.Box) {
	if i, ok := o.lookup[e]; ok {
		o.entries[i].box = box
		return
	}
	o.lookup[e] = len(o.entries)
	o.entries = append(o.entries, sceneEntry{entity: e, box: box})
}

// FrustumContains implements VisibilityOracle.
func (o *SceneOracle) FrustumContains(eye *camera.Eye, box r3.Box) bool {
	if eye == nil {
		return false
	}
	if !o.hasFrustum || o.frustumEye != *eye {
		o.frustum = eye.Frustum()
		o.frustumEye = *eye
		o.hasFrustum = true
	}
	return box.Contains(eye.Position) || o.frustum.IntersectsBox(box)
}

// IsVisible implements VisibilityOracle. Unindexed objects are not visible.
func (o *SceneOracle) IsVisible(e ecs.Entity, eye *camera.Eye) bool {
	if eye == nil {
		return false
	}
	idx, ok := o.lookup[e]
	if !ok {
		return false
	}
	target := o.entries[idx].box

	center := r3.Scale(0.5, r3.Add(target.Min, target.Max))
	toTarget := r3.Sub(center, eye.Position)
	dist := r3.Norm(toTarget)
	if dist < 1e-9 {
		return true
	}
	dir := r3.Scale(1/dist, toTarget)

	targetHit, hit := rayBox(eye.Position, dir, target, dist)
	if !hit {
		return false
	}

	for i, en := range o.entries {
		if i == idx {
			continue
		}
		if t, ok := rayBox(eye.Position, dir, en.box, dist); ok && t < targetHit {
			return false
		}
	}
	return true
}

// rayBox returns the entry distance of a ray against a box (slab method).
// Hits beyond maxT are ignored. A ray starting inside the box hits at 0.
func rayBox(origin, dir r3.Vec, box r3.Box, maxT float64) (float64, bool) {
	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{dir.X, dir.Y, dir.Z}
	lo := [3]float64{box.Min.X, box.Min.Y, box.Min.Z}
	hi := [3]float64{box.Max.X, box.Max.Y, box.Max.Z}

	tmin, tmax := 0.0, maxT
	for axis := 0; axis < 3; axis++ {
		if math.Abs(d[axis]) < 1e-12 {
			if o[axis] < lo[axis] || o[axis] > hi[axis] {
				return 0, false
			}
			continue
		}
		inv := 1 / d[axis]
		t1 := (lo[axis] - o[axis]) * inv
		t2 := (hi[axis] - o[axis]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}
