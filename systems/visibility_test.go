package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gaze/components"
)

func unitBox(center r3.Vec) r3.Box {
	return components.Bounds{Half: r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}}.Box(center)
}

func newEntities(n int) []ecs.Entity {
	w := ecs.NewWorld()
	m := ecs.NewMap1[components.Salient](w)
	out := make([]ecs.Entity, n)
	for i := range out {
		out[i] = m.NewEntity(&components.Salient{ID: components.ObjectID(i + 1)})
	}
	return out
}

func TestGateFrustumPolicy(t *testing.T) {
	e := newEntities(1)[0]
	gate := NewVisibilityGate(VisibilityFrustum, 20, NewSceneOracle(nil))
	eye := testEye()

	tests := []struct {
		name   string
		center r3.Vec
		want   bool
	}{
		{"ahead", r3.Vec{Z: 10}, true},
		{"behind", r3.Vec{Z: -10}, false},
		{"far off to the side", r3.Vec{X: 15, Z: 5}, false},
		{"edge overlap", r3.Vec{X: 5.4, Z: 5}, true},
		{"out of range", r3.Vec{Z: 25}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gate.Eligible(e, unitBox(tt.center), tt.center, eye); got != tt.want {
				t.Errorf("Eligible(%v) = %v, want %v", tt.center, got, tt.want)
			}
		})
	}
}

func TestGateMissingReferences(t *testing.T) {
	e := newEntities(1)[0]
	center := r3.Vec{Z: 5}

	gate := NewVisibilityGate(VisibilityFrustum, 100, NewSceneOracle(nil))
	if gate.Eligible(e, unitBox(center), center, nil) {
		t.Error("eligible without an eye")
	}

	gate = NewVisibilityGate(VisibilityRaycast, 100, nil)
	if gate.Eligible(e, unitBox(center), center, testEye()) {
		t.Error("eligible without an oracle")
	}
}

func TestSceneOracleRaycast(t *testing.T) {
	ents := newEntities(3)
	target, blocker, other := ents[0], ents[1], ents[2]
	eye := testEye()

	wall := r3.Box{Min: r3.Vec{X: -2, Y: -2, Z: 4}, Max: r3.Vec{X: 2, Y: 2, Z: 4.5}}
	oracle := NewSceneOracle([]r3.Box{wall})

	oracle.Index(target, unitBox(r3.Vec{Z: 10}))
	oracle.Index(other, unitBox(r3.Vec{X: 8, Z: 10}))

	if oracle.IsVisible(target, eye) {
		t.Error("target behind wall reported visible")
	}
	if !oracle.IsVisible(other, eye) {
		t.Error("object beside wall reported occluded")
	}
	if oracle.IsVisible(blocker, eye) {
		t.Error("unindexed object reported visible")
	}

	// Object-on-object occlusion without the wall.
	oracle = NewSceneOracle(nil)
	oracle.Index(target, unitBox(r3.Vec{Z: 10}))
	if !oracle.IsVisible(target, eye) {
		t.Fatal("unobstructed target reported occluded")
	}
	oracle.Index(blocker, unitBox(r3.Vec{Z: 6}))
	if oracle.IsVisible(target, eye) {
		t.Error("target behind another object reported visible")
	}
	if !oracle.IsVisible(blocker, eye) {
		t.Error("front object reported occluded")
	}

	// Re-indexing moves the blocker out of the way.
	oracle.Index(blocker, unitBox(r3.Vec{X: 5, Z: 6}))
	if !oracle.IsVisible(target, eye) {
		t.Error("target still occluded after blocker moved")
	}
}

func TestSceneOracleResetKeepsOccluders(t *testing.T) {
	e := newEntities(1)[0]
	eye := testEye()
	wall := r3.Box{Min: r3.Vec{X: -2, Y: -2, Z: 4}, Max: r3.Vec{X: 2, Y: 2, Z: 4.5}}
	oracle := NewSceneOracle([]r3.Box{wall})

	oracle.Index(e, unitBox(r3.Vec{Z: 10}))
	oracle.Reset()
	if oracle.IsVisible(e, eye) {
		t.Error("object visible after reset without re-indexing")
	}

	oracle.Index(e, unitBox(r3.Vec{Z: 10}))
	if oracle.IsVisible(e, eye) {
		t.Error("static occluder lost on reset")
	}
}

func TestGateRaycastPolicy(t *testing.T) {
	ents := newEntities(2)
	eye := testEye()
	oracle := NewSceneOracle(nil)
	gate := NewVisibilityGate(VisibilityRaycast, 50, oracle)

	front, back := r3.Vec{Z: 6}, r3.Vec{Z: 10}
	oracle.Index(ents[0], unitBox(front))
	oracle.Index(ents[1], unitBox(back))

	if !gate.Eligible(ents[0], unitBox(front), front, eye) {
		t.Error("front object not eligible")
	}
	if gate.Eligible(ents[1], unitBox(back), back, eye) {
		t.Error("occluded object eligible")
	}
}

func TestRayBox(t *testing.T) {
	box := unitBox(r3.Vec{Z: 5})

	if d, ok := rayBox(r3.Vec{}, r3.Vec{Z: 1}, box, 100); !ok || d != 4.5 {
		t.Errorf("hit = %v at %v, want true at 4.5", ok, d)
	}
	if _, ok := rayBox(r3.Vec{}, r3.Vec{Z: 1}, box, 3); ok {
		t.Error("hit beyond maxT")
	}
	if _, ok := rayBox(r3.Vec{}, r3.Vec{Z: -1}, box, 100); ok {
		t.Error("hit behind origin")
	}
	if d, ok := rayBox(r3.Vec{Z: 5}, r3.Vec{X: 1}, box, 100); !ok || d != 0 {
		t.Errorf("inside hit = %v at %v, want true at 0", ok, d)
	}
}

func TestParseVisibilityPolicy(t *testing.T) {
	for _, p := range []VisibilityPolicy{VisibilityFrustum, VisibilityRaycast} {
		got, err := ParseVisibilityPolicy(p.String())
		if err != nil || got != p {
			t.Errorf("ParseVisibilityPolicy(%q) = %v, %v", p.String(), got, err)
		}
	}
	if _, err := ParseVisibilityPolicy("both"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
