// Package camera provides the reference viewpoint used for proximity,
// visibility and field-of-view tests.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// WorldUp is the fixed up axis for all viewpoints.
var WorldUp = r3.Vec{Y: 1}

// Eye is a perspective viewpoint: position plus forward direction.
type Eye struct {
	Position r3.Vec
	Forward  r3.Vec // unit length
	Up       r3.Vec

	FovY   float64 // vertical field of view, radians
	Aspect float64 // width / height
	Near   float64
	Far    float64
}

// New creates an eye at position looking at target.
func New(position, target r3.Vec, fovY, aspect, near, far float64) *Eye {
	e := &Eye{
		Position: position,
		Forward:  r3.Vec{Z: 1},
		Up:       WorldUp,
		FovY:     fovY,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
	}
	e.LookAt(target)
	return e
}

// LookAt points the eye at target. A target at the eye position is ignored.
func (e *Eye) LookAt(target r3.Vec) {
	d := r3.Sub(target, e.Position)
	if r3.Norm(d) < 1e-9 {
		return
	}
	e.Forward = r3.Unit(d)
}

// Target returns the point one unit ahead of the eye.
func (e *Eye) Target() r3.Vec {
	return r3.Add(e.Position, e.Forward)
}

// Right returns the unit right vector.
func (e *Eye) Right() r3.Vec {
	r := r3.Cross(e.Forward, e.Up)
	if r3.Norm(r) < 1e-9 {
		// Looking straight up or down; any horizontal axis will do.
		return r3.Vec{X: 1}
	}
	return r3.Unit(r)
}

// Distance returns the straight-line distance from the eye to p.
func (e *Eye) Distance(p r3.Vec) float64 {
	return r3.Norm(r3.Sub(p, e.Position))
}

// TurnToward rotates Forward toward target by at most maxAngle radians and
// returns the angle still remaining afterwards.
func (e *Eye) TurnToward(target r3.Vec, maxAngle float64) float64 {
	d := r3.Sub(target, e.Position)
	if r3.Norm(d) < 1e-9 {
		return 0
	}
	want := r3.Unit(d)

	cos := clamp(r3.Dot(e.Forward, want), -1, 1)
	angle := math.Acos(cos)
	if angle <= maxAngle {
		e.Forward = want
		return 0
	}
	if maxAngle <= 0 {
		return angle
	}

	axis := r3.Cross(e.Forward, want)
	if r3.Norm(axis) < 1e-9 {
		// Directly behind: turn about the up axis.
		axis = e.Up
	}
	rot := r3.NewRotation(maxAngle, r3.Unit(axis))
	e.Forward = r3.Unit(rot.Rotate(e.Forward))
	return angle - maxAngle
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
