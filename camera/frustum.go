package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Plane is n·p + D = 0 with the normal pointing into the frustum.
type Plane struct {
	Normal r3.Vec
	D      float64
}

// Distance returns the signed distance from p to the plane (positive inside).
func (pl Plane) Distance(p r3.Vec) float64 {
	return r3.Dot(pl.Normal, p) + pl.D
}

func planeAt(normal, point r3.Vec) Plane {
	n := r3.Unit(normal)
	return Plane{Normal: n, D: -r3.Dot(n, point)}
}

// Frustum holds the six clipping planes of a perspective eye.
// Order: near, far, left, right, bottom, top.
type Frustum [6]Plane

// Frustum builds the clipping planes for the eye's current pose.
func (e *Eye) Frustum() Frustum {
	f := e.Forward
	r := e.Right()
	u := r3.Cross(r, f)

	halfV := math.Tan(e.FovY / 2)
	halfH := halfV * e.Aspect

	var fr Frustum
	fr[0] = planeAt(f, r3.Add(e.Position, r3.Scale(e.Near, f)))
	fr[1] = planeAt(r3.Scale(-1, f), r3.Add(e.Position, r3.Scale(e.Far, f)))

	// Side planes pass through the eye and contain one frustum edge direction.
	edges := [4]struct{ dir, along r3.Vec }{
		{r3.Sub(f, r3.Scale(halfH, r)), u}, // left
		{r3.Add(f, r3.Scale(halfH, r)), u}, // right
		{r3.Sub(f, r3.Scale(halfV, u)), r}, // bottom
		{r3.Add(f, r3.Scale(halfV, u)), r}, // top
	}
	for i, edge := range edges {
		n := r3.Cross(edge.dir, edge.along)
		if r3.Dot(n, f) < 0 {
			n = r3.Scale(-1, n)
		}
		fr[2+i] = planeAt(n, e.Position)
	}
	return fr
}

// FarCorners returns the four corners of the view rectangle at depth along
// Forward, in order top-left, top-right, bottom-right, bottom-left.
func (e *Eye) FarCorners(depth float64) [4]r3.Vec {
	f := e.Forward
	r := e.Right()
	u := r3.Cross(r, f)

	halfV := math.Tan(e.FovY/2) * depth
	halfH := halfV * e.Aspect
	c := r3.Add(e.Position, r3.Scale(depth, f))

	return [4]r3.Vec{
		r3.Add(r3.Sub(c, r3.Scale(halfH, r)), r3.Scale(halfV, u)),
		r3.Add(r3.Add(c, r3.Scale(halfH, r)), r3.Scale(halfV, u)),
		r3.Sub(r3.Add(c, r3.Scale(halfH, r)), r3.Scale(halfV, u)),
		r3.Sub(r3.Sub(c, r3.Scale(halfH, r)), r3.Scale(halfV, u)),
	}
}

// ContainsPoint reports whether p lies inside all six planes.
func (fr *Frustum) ContainsPoint(p r3.Vec) bool {
	for _, pl := range fr {
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsBox reports whether the box is at least partly inside the frustum.
// Conservative: a box straddling a frustum corner may be reported as visible.
func (fr *Frustum) IntersectsBox(box r3.Box) bool {
	for _, pl := range fr {
		// Corner furthest along the plane normal.
		p := box.Min
		if pl.Normal.X >= 0 {
			p.X = box.Max.X
		}
		if pl.Normal.Y >= 0 {
			p.Y = box.Max.Y
		}
		if pl.Normal.Z >= 0 {
			p.Z = box.Max.Z
		}
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}

// BoxInView reports whether any part of the box lies in the eye's view volume,
// including a box that fills the whole view or encloses the eye.
func (e *Eye) BoxInView(box r3.Box) bool {
	if box.Contains(e.Position) {
		return true
	}
	fr := e.Frustum()
	return fr.IntersectsBox(box)
}
