// Package systems contains the per-frame systems of the attention simulation.
package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gaze/components"
)

// PhysicsSystem integrates the demo scene's kinematics.
type PhysicsSystem struct {
	filter ecs.Filter3[components.Transform, components.Kinematics, components.Bounds]
	bounds r3.Box
}

// NewPhysicsSystem creates a new physics system confined to bounds.
func NewPhysicsSystem(w *ecs.World, bounds r3.Box) *PhysicsSystem {
	return &PhysicsSystem{
		filter: *ecs.NewFilter3[components.Transform, components.Kinematics, components.Bounds](w),
		bounds: bounds,
	}
}

// Bounds returns the scene bounds.
func (s *PhysicsSystem) Bounds() r3.Box {
	return s.bounds
}

// Update advances every moving object by dt seconds.
func (s *PhysicsSystem) Update(dt float64) {
	query := s.filter.Query()
	for query.Next() {
		tr, kin, b := query.Get()

		tr.Position = r3.Add(tr.Position, r3.Scale(dt, kin.Velocity))
		tr.Rotation = integrateSpin(tr.Rotation, kin.Spin, dt)

		// Bounce off the walls, keeping the whole box inside.
		tr.Position.X, kin.Velocity.X = bounce(tr.Position.X, kin.Velocity.X, s.bounds.Min.X+b.Half.X, s.bounds.Max.X-b.Half.X)
		tr.Position.Y, kin.Velocity.Y = bounce(tr.Position.Y, kin.Velocity.Y, s.bounds.Min.Y+b.Half.Y, s.bounds.Max.Y-b.Half.Y)
		tr.Position.Z, kin.Velocity.Z = bounce(tr.Position.Z, kin.Velocity.Z, s.bounds.Min.Z+b.Half.Z, s.bounds.Max.Z-b.Half.Z)
	}
}

// bounce reflects p back into [lo, hi], flipping v when a wall is hit.
func bounce(p, v, lo, hi float64) (float64, float64) {
	if lo > hi {
		mid := (lo + hi) / 2
		return mid, 0
	}
	if p < lo {
		return lo, -v
	}
	if p > hi {
		return hi, -v
	}
	return p, v
}

// integrateSpin applies angular velocity omega (rad/s, world frame) to q for dt.
func integrateSpin(q quat.Number, omega r3.Vec, dt float64) quat.Number {
	if omega == (r3.Vec{}) {
		return q
	}
	w := quat.Number{Imag: omega.X, Jmag: omega.Y, Kmag: omega.Z}
	dq := quat.Scale(0.5*dt, quat.Mul(w, q))
	return normalizeQuat(quat.Add(q, dq))
}
