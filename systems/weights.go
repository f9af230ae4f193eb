package systems

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/gaze/components"
)

// Percentiles used for the adaptive spread.
const (
	SpreadLow  = 0.10
	SpreadHigh = 0.90
)

// DefaultSpreadEpsilon is the total spread below which adaptive weights fall back to equal.
const DefaultSpreadEpsilon = 1e-6

// WeightMode selects fixed or adaptive cue weighting.
type WeightMode uint8

const (
	WeightsFixed    WeightMode = iota // configured constants, no population dependency
	WeightsAdaptive                   // per-frame percentile spread of eligible cues
)

// String returns the config name of the mode.
func (m WeightMode) String() string {
	switch m {
	case WeightsFixed:
		return "fixed"
	case WeightsAdaptive:
		return "adaptive"
	default:
		return "unknown"
	}
}

// ParseWeightMode maps a config value to a WeightMode.
func ParseWeightMode(s string) (WeightMode, error) {
	switch s {
	case "fixed":
		return WeightsFixed, nil
	case "adaptive":
		return WeightsAdaptive, nil
	default:
		return 0, fmt.Errorf("unknown weight mode %q", s)
	}
}

// Weights holds one non-negative weight per cue.
type Weights struct {
	Motion    float64
	Angular   float64
	Proximity float64
	Color     float64
	Luminance float64
}

// Sum returns the total of all five weights.
func (w Weights) Sum() float64 {
	return floats.Sum([]float64{w.Motion, w.Angular, w.Proximity, w.Color, w.Luminance})
}

// Clamped returns the weights clamped to [0,1].
func (w Weights) Clamped() Weights {
	return Weights{
		Motion:    clamp01(w.Motion),
		Angular:   clamp01(w.Angular),
		Proximity: clamp01(w.Proximity),
		Color:     clamp01(w.Color),
		Luminance: clamp01(w.Luminance),
	}
}

// EqualWeights returns 1/k for every active cue. Angular is 0 when inactive.
func EqualWeights(angular bool) Weights {
	k := 4.0
	if angular {
		k = 5
	}
	w := Weights{Motion: 1 / k, Proximity: 1 / k, Color: 1 / k, Luminance: 1 / k}
	if angular {
		w.Angular = 1 / k
	}
	return w
}

// Spreads holds the per-cue p90-p10 spread for one frame.
type Spreads Weights

// percentileAt returns the value at index floor(p*(n-1)) of a sorted slice.
// Returns 0 for an empty slice.
func percentileAt(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Floor(p * float64(n-1)))
	if idx < 0 {
		idx = 0
	} else if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}

// Spread returns max(0, v90 - v10) of values. The input is not modified.
func Spread(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sortedSpread(sorted)
}

func sortedSpread(sorted []float64) float64 {
	return math.Max(0, percentileAt(sorted, SpreadHigh)-percentileAt(sorted, SpreadLow))
}

// WeightPolicy produces the combination weights for a frame.
type WeightPolicy struct {
	mode    WeightMode
	fixed   Weights
	angular bool
	epsilon float64

	// scratch columns reused across frames
	cols [5][]float64
}

// NewWeightPolicy creates a weight policy. Fixed weights are clamped to [0,1];
// the angular weight is forced to 0 when the angular cue is inactive.
func NewWeightPolicy(mode WeightMode, fixed Weights, angular bool, epsilon float64) *WeightPolicy {
	if epsilon <= 0 {
		epsilon = DefaultSpreadEpsilon
	}
	fixed = fixed.Clamped()
	if !angular {
		fixed.Angular = 0
	}
	return &WeightPolicy{
		mode:    mode,
		fixed:   fixed,
		angular: angular,
		epsilon: epsilon,
	}
}

// Mode returns the active weight mode.
func (p *WeightPolicy) Mode() WeightMode {
	return p.mode
}

// Angular reports whether the angular cue is part of the active cue set.
func (p *WeightPolicy) Angular() bool {
	return p.angular
}

// SetMode switches between fixed and adaptive weighting.
func (p *WeightPolicy) SetMode(m WeightMode) {
	p.mode = m
}

// Fixed returns the configured fixed weights.
func (p *WeightPolicy) Fixed() Weights {
	return p.fixed
}

// SetFixed replaces the fixed weights (clamped to [0,1]).
func (p *WeightPolicy) SetFixed(w Weights) {
	w = w.Clamped()
	if !p.angular {
		w.Angular = 0
	}
	p.fixed = w
}

// Compute returns the weights for this frame from the eligible objects' cues,
// plus the per-cue spreads (zero in fixed mode).
func (p *WeightPolicy) Compute(eligible []components.Cues) (Weights, Spreads) {
	if p.mode == WeightsFixed {
		return p.fixed, Spreads{}
	}
	return p.adaptive(eligible)
}

// adaptive weights each cue by its share of the total percentile spread.
func (p *WeightPolicy) adaptive(eligible []components.Cues) (Weights, Spreads) {
	for i := range p.cols {
		p.cols[i] = p.cols[i][:0]
	}
	for _, c := range eligible {
		p.cols[0] = append(p.cols[0], c.Motion)
		p.cols[1] = append(p.cols[1], c.AngularVelocity)
		p.cols[2] = append(p.cols[2], c.Proximity)
		p.cols[3] = append(p.cols[3], c.ColorContrast)
		p.cols[4] = append(p.cols[4], c.LuminanceContrast)
	}

	// Sorting in place is fine: the columns are scratch copies.
	var s [5]float64
	for i := range p.cols {
		if i == 1 && !p.angular {
			continue
		}
		sort.Float64s(p.cols[i])
		s[i] = sortedSpread(p.cols[i])
	}

	spreads := Spreads{Motion: s[0], Angular: s[1], Proximity: s[2], Color: s[3], Luminance: s[4]}
	total := floats.Sum(s[:])
	if total < p.epsilon {
		return EqualWeights(p.angular), spreads
	}

	return Weights{
		Motion:    s[0] / total,
		Angular:   s[1] / total,
		Proximity: s[2] / total,
		Color:     s[3] / total,
		Luminance: s[4] / total,
	}, spreads
}
