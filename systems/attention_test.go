package systems

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gaze/components"
)

// testScene is a minimal population source backed by an ark world.
type testScene struct {
	world   *ecs.World
	mapper  *ecs.Map5[components.Salient, components.Transform, components.Bounds, components.Appearance, components.Cues]
	objects []ecs.Entity
	nextID  components.ObjectID
}

func newTestScene() *testScene {
	w := ecs.NewWorld()
	return &testScene{
		world:  w,
		mapper: ecs.NewMap5[components.Salient, components.Transform, components.Bounds, components.Appearance, components.Cues](w),
	}
}

func (s *testScene) Objects() []ecs.Entity {
	return s.objects
}

func (s *testScene) add(pos r3.Vec, color components.RGB) ecs.Entity {
	s.nextID++
	e := s.mapper.NewEntity(
		&components.Salient{ID: s.nextID},
		&components.Transform{Position: pos, Rotation: components.IdentityRotation},
		&components.Bounds{Half: r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}},
		&components.Appearance{Base: color},
		&components.Cues{},
	)
	s.objects = append(s.objects, e)
	return e
}

func candidate(id components.ObjectID, cues components.Cues) Candidate {
	return Candidate{ID: id, Cues: cues, Eligible: true, Score: NoScore}
}

func TestSelectTieFirstWins(t *testing.T) {
	policy := NewWeightPolicy(WeightsFixed, Weights{0.25, 0.25, 0.25, 0.25, 0.25}, true, 0)
	sel := NewSelector(policy)

	a := candidate(1, components.Cues{Motion: 0.9})
	b := candidate(2, components.Cues{ColorContrast: 0.9})

	rows := []Candidate{a, b}
	res, _, _ := sel.Select(1, rows)
	if !res.Found || res.ID != 1 {
		t.Fatalf("winner = %+v, want object 1", res)
	}
	if math.Abs(res.Score-0.225) > 1e-12 {
		t.Errorf("score = %v, want 0.225", res.Score)
	}
	if rows[0].Score != rows[1].Score {
		t.Errorf("scores differ: %v vs %v", rows[0].Score, rows[1].Score)
	}
	if !rows[0].Best || rows[1].Best {
		t.Errorf("best flags = %v, %v", rows[0].Best, rows[1].Best)
	}

	// Reversing enumeration order reverses the winner.
	res, _, _ = sel.Select(2, []Candidate{b, a})
	if res.ID != 2 {
		t.Errorf("reversed winner = %d, want 2", res.ID)
	}
}

func TestSelectAdaptiveMotionOnly(t *testing.T) {
	policy := NewWeightPolicy(WeightsAdaptive, Weights{}, false, 0)
	sel := NewSelector(policy)

	motions := []float64{0.1, 0.5, 0.9}
	rows := make([]Candidate, len(motions))
	for i, m := range motions {
		rows[i] = candidate(components.ObjectID(i+1), components.Cues{
			Motion:            m,
			Proximity:         0.3,
			ColorContrast:     0.3,
			LuminanceContrast: 0.3,
		})
	}

	res, w, _ := sel.Select(1, rows)
	if w != (Weights{Motion: 1}) {
		t.Fatalf("weights = %+v, want motion only", w)
	}
	for i, m := range motions {
		if rows[i].Score != m {
			t.Errorf("object %d score = %v, want %v", i+1, rows[i].Score, m)
		}
	}
	if res.ID != 3 || res.Score != 0.9 {
		t.Errorf("winner = %+v, want object 3 at 0.9", res)
	}
}

func TestSelectIgnoresIneligibleForWeights(t *testing.T) {
	policy := NewWeightPolicy(WeightsAdaptive, Weights{}, false, 0)
	sel := NewSelector(policy)

	rows := []Candidate{
		candidate(1, components.Cues{Motion: 0.2, ColorContrast: 0.5}),
		candidate(2, components.Cues{Motion: 0.2, ColorContrast: 0.5}),
		{ID: 3, Cues: components.Cues{Motion: 1, ColorContrast: 0}, Eligible: false},
	}
	res, w, _ := sel.Select(1, rows)
	if w != EqualWeights(false) {
		t.Errorf("weights = %+v, want equal fallback", w)
	}
	if res.ID != 1 {
		t.Errorf("winner = %d, want 1", res.ID)
	}
	if rows[2].Score != NoScore || rows[2].Best {
		t.Errorf("ineligible row = %+v", rows[2])
	}
}

func TestSelectEmpty(t *testing.T) {
	for _, mode := range []WeightMode{WeightsFixed, WeightsAdaptive} {
		sel := NewSelector(NewWeightPolicy(mode, Weights{Motion: 1}, true, 0))

		res, _, _ := sel.Select(7, nil)
		if res != NoneResult(7) {
			t.Errorf("%v: empty selection = %+v", mode, res)
		}

		rows := []Candidate{{ID: 1, Cues: components.Cues{Motion: 1}}}
		res, _, _ = sel.Select(8, rows)
		if res.Found || res.Score != NoScore || res.Frame != 8 {
			t.Errorf("%v: all-ineligible selection = %+v", mode, res)
		}
	}
}

func TestSelectDeterministic(t *testing.T) {
	sel := NewSelector(NewWeightPolicy(WeightsAdaptive, Weights{}, true, 0))
	rows := make([]Candidate, 0, 20)
	for i, c := range []components.Cues{
		{Motion: 0.4, Proximity: 0.8, ColorContrast: 0.1},
		{Motion: 0.9, AngularVelocity: 0.2, LuminanceContrast: 0.6},
		{Proximity: 0.3, ColorContrast: 0.9},
		{Motion: 0.9, AngularVelocity: 0.2, LuminanceContrast: 0.6},
	} {
		rows = append(rows, candidate(components.ObjectID(i+1), c))
	}

	first, w1, _ := sel.Select(3, rows)
	second, w2, _ := sel.Select(3, rows)
	if first != second || w1 != w2 {
		t.Errorf("reruns differ: %+v / %+v", first, second)
	}
	// Objects 2 and 4 are identical; 2 comes first.
	if first.ID == 4 {
		t.Error("later duplicate won the tie")
	}
}

func TestComputeScoreClamp(t *testing.T) {
	values := []float64{0, 0.1, 0.5, 0.9, 1}
	for _, v := range values {
		for _, wv := range values {
			c := components.Cues{Motion: v, AngularVelocity: v, Proximity: v, ColorContrast: v, LuminanceContrast: v}
			w := Weights{wv, wv, wv, wv, wv}
			s := ComputeScore(c, w)
			if s < 0 || s > 1 {
				t.Fatalf("ComputeScore(%v, %v) = %v out of range", v, wv, s)
			}
		}
	}
	if s := ComputeScore(components.Cues{Motion: math.NaN()}, Weights{Motion: 1}); s != 0 {
		t.Errorf("NaN cue score = %v, want 0", s)
	}
}

func newTestAttention(scene *testScene, rangeLimit float64, weights Weights) *AttentionSystem {
	extractor := NewCueExtractor(testCueParams())
	gate := NewVisibilityGate(VisibilityFrustum, rangeLimit, NewSceneOracle(nil))
	policy := NewWeightPolicy(WeightsFixed, weights, true, 0)
	return NewAttentionSystem(scene.world, scene, extractor, gate, policy)
}

func TestAttentionRangeExcludesFarObject(t *testing.T) {
	scene := newTestScene()
	near := scene.add(r3.Vec{Z: 5}, components.RGB{})
	far := scene.add(r3.Vec{Z: 50}, components.RGB{R: 1, G: 1, B: 1})

	sys := newTestAttention(scene, 10, Weights{Color: 1})
	report := sys.Update(1, 0, testEye())

	if !report.Result.Found || report.Result.Entity != near {
		t.Fatalf("winner = %+v, want near object", report.Result)
	}
	if len(report.Rows) != 2 {
		t.Fatalf("rows = %d, want 2 (ineligible objects are still reported)", len(report.Rows))
	}
	farRow := report.Rows[1]
	if farRow.Entity != far || farRow.Eligible || farRow.Score != NoScore {
		t.Errorf("far row = %+v", farRow)
	}
	if farRow.Cues.ColorContrast < 0.99 {
		t.Errorf("far object should have the highest raw cue, got %v", farRow.Cues.ColorContrast)
	}
	if report.Eligible != 1 {
		t.Errorf("eligible = %d, want 1", report.Eligible)
	}

	// With a wider range the far object wins.
	sys = newTestAttention(scene, 100, Weights{Color: 1})
	report = sys.Update(2, 1, testEye())
	if report.Result.Entity != far {
		t.Errorf("winner with wide range = %+v, want far object", report.Result)
	}
}

func TestAttentionNoViewpoint(t *testing.T) {
	scene := newTestScene()
	scene.add(r3.Vec{Z: 5}, components.RGB{R: 1})

	sys := newTestAttention(scene, 100, Weights{Color: 1})
	report := sys.Update(1, 0, nil)

	if report.Result.Found || report.Result.Score != NoScore {
		t.Errorf("result without eye = %+v", report.Result)
	}
	if len(report.Rows) != 1 || report.Rows[0].Eligible {
		t.Errorf("rows = %+v", report.Rows)
	}
	if report.Rows[0].Cues.Proximity != 0 {
		t.Errorf("proximity without eye = %v", report.Rows[0].Cues.Proximity)
	}
	if got := sys.GetCurrentTarget(); got.Found || got.Score != NoScore {
		t.Errorf("target = %+v", got)
	}
}

func TestAttentionStaleTarget(t *testing.T) {
	scene := newTestScene()
	e := scene.add(r3.Vec{Z: 5}, components.RGB{R: 1})

	sys := newTestAttention(scene, 100, Weights{Color: 1})
	sys.Update(1, 0, testEye())

	target := sys.GetCurrentTarget()
	if !target.Found || target.Entity != e || target.ID != 1 {
		t.Fatalf("target = %+v", target)
	}

	scene.world.RemoveEntity(e)
	target = sys.GetCurrentTarget()
	if target.Found || target.Score != NoScore {
		t.Errorf("stale target = %+v, want none", target)
	}

	// The dead handle is skipped on the next frame.
	report := sys.Update(2, 1, testEye())
	if len(report.Rows) != 0 || report.Result.Found {
		t.Errorf("report after despawn = %+v", report)
	}
}

func TestAttentionWritesCuesAndHistory(t *testing.T) {
	scene := newTestScene()
	e := scene.add(r3.Vec{Z: 5}, components.RGB{G: 1})

	sys := newTestAttention(scene, 100, Weights{Motion: 1})
	sys.Update(1, 0, testEye())

	trMap := ecs.NewMap[components.Transform](scene.world)
	trMap.Get(e).Position = r3.Vec{X: 1, Z: 5}
	report := sys.Update(2, 1, testEye())

	// Moved 1 unit in 1 second with sigma 1.
	if got := report.Rows[0].Cues.Motion; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("motion = %v, want 0.5", got)
	}
	stored := ecs.NewMap[components.Cues](scene.world).Get(e)
	if *stored != report.Rows[0].Cues {
		t.Errorf("stored cues = %+v, report = %+v", *stored, report.Rows[0].Cues)
	}
	hist := ecs.NewMap[components.History](scene.world).Get(e)
	if hist.LastTime != 1 || hist.LastPosition != (r3.Vec{X: 1, Z: 5}) {
		t.Errorf("history = %+v", *hist)
	}
}
