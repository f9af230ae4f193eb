// Package components defines ECS components for the attention simulation.
package components

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ObjectID identifies a salient object. Assigned once at creation from a
// monotonic counter and never reused.
type ObjectID uint64

// Salient marks an entity as a candidate for attention and carries its identity.
type Salient struct {
	ID ObjectID
}

// Transform holds an object's pose for the current frame.
type Transform struct {
	Position r3.Vec
	Rotation quat.Number // unit quaternion
}

// Kinematics drives the demo scene. The attention pipeline never reads it;
// cues are derived from pose deltas only.
type Kinematics struct {
	Velocity r3.Vec // world units per second
	Spin     r3.Vec // angular velocity vector, radians per second
}

// Bounds is an axis-aligned bounding volume centred on Transform.Position.
type Bounds struct {
	Half r3.Vec // half extents
}

// Box returns the world-space box for the given centre.
func (b Bounds) Box(center r3.Vec) r3.Box {
	return r3.Box{
		Min: r3.Sub(center, b.Half),
		Max: r3.Add(center, b.Half),
	}
}

// Size returns the largest full extent of the volume.
func (b Bounds) Size() float64 {
	return 2 * max(b.Half.X, b.Half.Y, b.Half.Z)
}

// History is the per-object state carried between frames.
// Initialised to the spawn pose so the first frame reports no motion.
type History struct {
	LastPosition r3.Vec
	LastRotation quat.Number
	LastTime     float64 // seconds
}

// Cues holds the five normalised saliency cues, each in [0,1].
// Recomputed once per frame from the owning object's own deltas.
type Cues struct {
	Motion            float64
	AngularVelocity   float64
	Proximity         float64
	ColorContrast     float64
	LuminanceContrast float64
}

// IdentityRotation is the unit quaternion with no rotation.
var IdentityRotation = quat.Number{Real: 1}

// NewHistory returns history seeded from the current pose.
func NewHistory(t Transform, now float64) History {
	return History{
		LastPosition: t.Position,
		LastRotation: t.Rotation,
		LastTime:     now,
	}
}
