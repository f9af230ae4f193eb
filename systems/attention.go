package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gaze/camera"
	"github.com/pthm-cable/gaze/components"
)

// NoScore is the best-score sentinel, strictly below any attainable score.
const NoScore = -1.0

// PopulationSource enumerates the live salient objects in insertion order.
type PopulationSource interface {
	Objects() []ecs.Entity
}

// Candidate is one object's per-frame view for selection and telemetry.
type Candidate struct {
	Entity   ecs.Entity
	ID       components.ObjectID
	Position r3.Vec
	Cues     components.Cues
	Eligible bool
	Score    float64 // NoScore when not eligible
	Best     bool
}

// Result is the published outcome of one frame's selection.
type Result struct {
	Entity   ecs.Entity
	ID       components.ObjectID
	Position r3.Vec
	Score    float64
	Frame    uint64
	Found    bool
}

// NoneResult returns the "no current gaze target" result for a frame.
func NoneResult(frame uint64) Result {
	return Result{Score: NoScore, Frame: frame}
}

// Selector picks the arg-max eligible candidate.
type Selector struct {
	policy   *WeightPolicy
	eligible []components.Cues
}

// NewSelector creates a selector that draws its weights from policy.
func NewSelector(policy *WeightPolicy) *Selector {
	return &Selector{policy: policy}
}

// Policy returns the selector's weight policy.
func (s *Selector) Policy() *WeightPolicy {
	return s.policy
}

// Select scores the eligible candidates and returns the winner.
// Ties keep the first enumerated candidate. Candidates are annotated in place
// with their score and best flag.
func (s *Selector) Select(frame uint64, candidates []Candidate) (Result, Weights, Spreads) {
	var (
		weights Weights
		spreads Spreads
	)

	if s.policy.Mode() == WeightsAdaptive {
		// Weights need the whole eligible distribution before any score.
		s.eligible = s.eligible[:0]
		for i := range candidates {
			if candidates[i].Eligible {
				s.eligible = append(s.eligible, candidates[i].Cues)
			}
		}
		weights, spreads = s.policy.Compute(s.eligible)
	} else {
		weights, spreads = s.policy.Compute(nil)
	}

	result := NoneResult(frame)
	best := -1
	for i := range candidates {
		c := &candidates[i]
		c.Best = false
		if !c.Eligible {
			c.Score = NoScore
			continue
		}
		c.Score = ComputeScore(c.Cues, weights)
		if c.Score > result.Score {
			result.Score = c.Score
			best = i
		}
	}

	if best >= 0 {
		c := &candidates[best]
		c.Best = true
		result.Entity = c.Entity
		result.ID = c.ID
		result.Position = c.Position
		result.Found = true
	}
	return result, weights, spreads
}

// FrameReport is everything one attention pass produced.
// Rows are reused by the next Update.
type FrameReport struct {
	Frame    uint64
	Rows     []Candidate
	Eligible int
	Weights  Weights
	Spreads  Spreads
	Result   Result
	Angular  bool
}

// Target is the gaze actuator's view of the current result.
type Target struct {
	Entity   ecs.Entity
	ID       components.ObjectID
	Position r3.Vec
	Score    float64
	Found    bool
}

// AttentionSystem runs extract, gate, weight, score and select once per frame
// over the population.
type AttentionSystem struct {
	world      *ecs.World
	population PopulationSource

	salientMap    *ecs.Map[components.Salient]
	transformMap  *ecs.Map[components.Transform]
	boundsMap     *ecs.Map[components.Bounds]
	appearanceMap *ecs.Map[components.Appearance]
	historyMap    *ecs.Map[components.History]
	cuesMap       *ecs.Map[components.Cues]

	extractor *CueExtractor
	gate      *VisibilityGate
	selector  *Selector

	result Result
	report FrameReport
}

// NewAttentionSystem creates an attention system over the world's salient objects.
func NewAttentionSystem(
	w *ecs.World,
	population PopulationSource,
	extractor *CueExtractor,
	gate *VisibilityGate,
	policy *WeightPolicy,
) *AttentionSystem {
	return &AttentionSystem{
		world:         w,
		population:    population,
		salientMap:    ecs.NewMap[components.Salient](w),
		transformMap:  ecs.NewMap[components.Transform](w),
		boundsMap:     ecs.NewMap[components.Bounds](w),
		appearanceMap: ecs.NewMap[components.Appearance](w),
		historyMap:    ecs.NewMap[components.History](w),
		cuesMap:       ecs.NewMap[components.Cues](w),
		extractor:     extractor,
		gate:          gate,
		selector:      NewSelector(policy),
		result:        NoneResult(0),
	}
}

// Gate returns the visibility gate.
func (s *AttentionSystem) Gate() *VisibilityGate {
	return s.gate
}

// Policy returns the weight policy.
func (s *AttentionSystem) Policy() *WeightPolicy {
	return s.selector.Policy()
}

// Result returns the last published result as-is, without a liveness check.
func (s *AttentionSystem) Result() Result {
	return s.result
}

// Update runs one attention pass. A nil eye means no viewpoint: cues that need
// one are 0 and nothing is eligible.
func (s *AttentionSystem) Update(frame uint64, now float64, eye *camera.Eye) *FrameReport {
	rows := s.report.Rows[:0]
	eligible := 0

	for _, e := range s.population.Objects() {
		if !s.world.Alive(e) || !s.transformMap.Has(e) || !s.salientMap.Has(e) {
			continue
		}
		// Adding a component moves the entity, so fetch pointers afterwards.
		if !s.historyMap.Has(e) {
			h := components.NewHistory(*s.transformMap.Get(e), now)
			s.historyMap.Add(e, &h)
		}
		tr := s.transformMap.Get(e)
		hist := s.historyMap.Get(e)

		var bounds *components.Bounds
		if s.boundsMap.Has(e) {
			bounds = s.boundsMap.Get(e)
		}
		var app *components.Appearance
		if s.appearanceMap.Has(e) {
			app = s.appearanceMap.Get(e)
		}

		cues := s.extractor.Extract(tr, bounds, app, hist, eye, now)
		if s.cuesMap.Has(e) {
			*s.cuesMap.Get(e) = cues
		}

		box := r3.Box{Min: tr.Position, Max: tr.Position}
		if bounds != nil {
			box = bounds.Box(tr.Position)
		}
		ok := s.gate.Eligible(e, box, tr.Position, eye)
		if ok {
			eligible++
		}

		rows = append(rows, Candidate{
			Entity:   e,
			ID:       s.salientMap.Get(e).ID,
			Position: tr.Position,
			Cues:     cues,
			Eligible: ok,
			Score:    NoScore,
		})
	}

	result, weights, spreads := s.selector.Select(frame, rows)
	s.result = result

	s.report = FrameReport{
		Frame:    frame,
		Rows:     rows,
		Eligible: eligible,
		Weights:  weights,
		Spreads:  spreads,
		Result:   result,
		Angular:  s.extractor.Params().Angular,
	}
	return &s.report
}

// GetCurrentTarget returns the current gaze target. A target whose object has
// since been destroyed resolves to none.
func (s *AttentionSystem) GetCurrentTarget() Target {
	r := s.result
	if !r.Found || !s.world.Alive(r.Entity) {
		return Target{Score: NoScore}
	}
	return Target{
		Entity:   r.Entity,
		ID:       r.ID,
		Position: r.Position,
		Score:    r.Score,
		Found:    true,
	}
}
