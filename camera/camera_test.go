package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func newTestEye() *Eye {
	// At origin looking down +Z with a 90 degree square frustum.
	return New(r3.Vec{}, r3.Vec{Z: 10}, math.Pi/2, 1, 0.1, 100)
}

func TestNew(t *testing.T) {
	e := newTestEye()

	if math.Abs(r3.Norm(e.Forward)-1) > 1e-9 {
		t.Errorf("forward not unit: %v", e.Forward)
	}
	if e.Forward != (r3.Vec{Z: 1}) {
		t.Errorf("expected forward +Z, got %v", e.Forward)
	}
}

func TestLookAtIgnoresOwnPosition(t *testing.T) {
	e := newTestEye()
	e.LookAt(e.Position)
	if e.Forward != (r3.Vec{Z: 1}) {
		t.Errorf("LookAt(position) changed forward to %v", e.Forward)
	}
}

func TestFrustumContainsPoint(t *testing.T) {
	e := newTestEye()
	fr := e.Frustum()

	tests := []struct {
		name string
		p    r3.Vec
		want bool
	}{
		{"straight ahead", r3.Vec{Z: 10}, true},
		{"inside left edge", r3.Vec{X: -9, Z: 10}, true},
		{"outside right", r3.Vec{X: 11, Z: 10}, false},
		{"above", r3.Vec{Y: 11, Z: 10}, false},
		{"behind", r3.Vec{Z: -5}, false},
		{"closer than near", r3.Vec{Z: 0.05}, false},
		{"beyond far", r3.Vec{Z: 150}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fr.ContainsPoint(tt.p); got != tt.want {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestFrustumIntersectsBox(t *testing.T) {
	e := newTestEye()
	fr := e.Frustum()

	// Centre outside the right plane, but the box reaches back inside.
	straddle := r3.Box{Min: r3.Vec{X: 9, Y: -1, Z: 9}, Max: r3.Vec{X: 12, Y: 1, Z: 11}}
	if !fr.IntersectsBox(straddle) {
		t.Error("box straddling the right plane should intersect")
	}

	behind := r3.Box{Min: r3.Vec{X: -1, Y: -1, Z: -3}, Max: r3.Vec{X: 1, Y: 1, Z: -1}}
	if fr.IntersectsBox(behind) {
		t.Error("box behind the eye should not intersect")
	}
}

func TestTurnTowardBounded(t *testing.T) {
	e := newTestEye()

	// Target 90 degrees to the side, turn at most 30 degrees.
	remaining := e.TurnToward(r3.Vec{X: 10}, math.Pi/6)
	if math.Abs(remaining-math.Pi/3) > 1e-6 {
		t.Errorf("remaining = %v, want pi/3", remaining)
	}
	turned := math.Acos(r3.Dot(e.Forward, r3.Vec{Z: 1}))
	if math.Abs(turned-math.Pi/6) > 1e-6 {
		t.Errorf("turned %v, want pi/6", turned)
	}

	// Large step snaps onto the target direction.
	if rem := e.TurnToward(r3.Vec{X: 10}, math.Pi); rem != 0 {
		t.Errorf("remaining after snap = %v, want 0", rem)
	}
	if math.Abs(e.Forward.X-1) > 1e-9 {
		t.Errorf("forward after snap = %v, want +X", e.Forward)
	}
}

func TestFarCorners(t *testing.T) {
	e := newTestEye()
	corners := e.FarCorners(2)

	// Looking down +Z with +Y up, screen right is -X.
	want := [4]r3.Vec{
		{X: 2, Y: 2, Z: 2},
		{X: -2, Y: 2, Z: 2},
		{X: -2, Y: -2, Z: 2},
		{X: 2, Y: -2, Z: 2},
	}
	for i := range want {
		if r3.Norm(r3.Sub(corners[i], want[i])) > 1e-9 {
			t.Errorf("corner %d = %v, want %v", i, corners[i], want[i])
		}
	}
}

func TestBoxInView(t *testing.T) {
	e := newTestEye()

	tests := []struct {
		name string
		box  r3.Box
		want bool
	}{
		// Every corner lies outside the view, yet the box covers it.
		{"fills the view", r3.Box{Min: r3.Vec{X: -5, Y: -5, Z: 2}, Max: r3.Vec{X: 5, Y: 5, Z: 3}}, true},
		{"wall spanning the view", r3.Box{Min: r3.Vec{X: -200, Y: -200, Z: 40}, Max: r3.Vec{X: 200, Y: 200, Z: 41}}, true},
		{"encloses the eye", r3.Box{Min: r3.Vec{X: -1, Y: -1, Z: -1}, Max: r3.Vec{X: 1, Y: 1, Z: 1}}, true},
		{"small ahead", r3.Box{Min: r3.Vec{X: -0.5, Y: -0.5, Z: 9.5}, Max: r3.Vec{X: 0.5, Y: 0.5, Z: 10.5}}, true},
		{"behind", r3.Box{Min: r3.Vec{X: -1, Y: -1, Z: -3}, Max: r3.Vec{X: 1, Y: 1, Z: -2}}, false},
		{"off to the side", r3.Box{Min: r3.Vec{X: 20, Y: -1, Z: 5}, Max: r3.Vec{X: 22, Y: 1, Z: 6}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.BoxInView(tt.box); got != tt.want {
				t.Errorf("BoxInView(%v) = %v, want %v", tt.box, got, tt.want)
			}
		})
	}
}
