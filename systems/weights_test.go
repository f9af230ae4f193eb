package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/pthm-cable/gaze/components"
)

func TestSpreadEdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{0.7}, 0},
		{"constant", []float64{0.3, 0.3, 0.3, 0.3}, 0},
		{"three values", []float64{0.9, 0.1, 0.5}, 0.4},
		{"eleven values", []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}, 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Spread(tt.values); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Spread(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestSpreadDoesNotModifyInput(t *testing.T) {
	values := []float64{0.9, 0.1, 0.5}
	Spread(values)
	if values[0] != 0.9 || values[1] != 0.1 || values[2] != 0.5 {
		t.Errorf("input reordered: %v", values)
	}
}

func TestSpreadAppendOutside(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		extra  float64
	}{
		{"above three", []float64{0.2, 0.4, 0.6}, 0.9},
		{"below three", []float64{0.2, 0.4, 0.6}, 0.0},
		{"above five", []float64{1, 2, 3, 4, 5}, 10},
		{"below five", []float64{1, 2, 3, 4, 5}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := Spread(tt.values)
			after := Spread(append(append([]float64{}, tt.values...), tt.extra))
			if after < before {
				t.Errorf("spread decreased from %v to %v", before, after)
			}
		})
	}
}

func randomCues(rng *rand.Rand, n int) []components.Cues {
	out := make([]components.Cues, n)
	for i := range out {
		out[i] = components.Cues{
			Motion:            rng.Float64(),
			AngularVelocity:   rng.Float64(),
			Proximity:         rng.Float64(),
			ColorContrast:     rng.Float64(),
			LuminanceContrast: rng.Float64(),
		}
	}
	return out
}

func TestAdaptiveWeightsSumToOne(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, angular := range []bool{true, false} {
		p := NewWeightPolicy(WeightsAdaptive, Weights{}, angular, 0)
		for trial := 0; trial < 100; trial++ {
			w, _ := p.Compute(randomCues(rng, 2+rng.Intn(30)))
			if math.Abs(w.Sum()-1) > 1e-9 {
				t.Fatalf("angular=%v trial %d: weights sum to %v: %+v", angular, trial, w.Sum(), w)
			}
			if !angular && w.Angular != 0 {
				t.Fatalf("inactive angular cue got weight %v", w.Angular)
			}
		}
	}
}

func TestAdaptiveEqualFallback(t *testing.T) {
	same := components.Cues{Motion: 0.3, AngularVelocity: 0.3, Proximity: 0.3, ColorContrast: 0.3, LuminanceContrast: 0.3}
	opt := cmpopts.EquateApprox(0, 1e-12)

	tests := []struct {
		name     string
		angular  bool
		eligible []components.Cues
		want     Weights
	}{
		{"empty five cues", true, nil, Weights{0.2, 0.2, 0.2, 0.2, 0.2}},
		{"constant five cues", true, []components.Cues{same, same, same}, Weights{0.2, 0.2, 0.2, 0.2, 0.2}},
		{"constant four cues", false, []components.Cues{same, same}, Weights{Motion: 0.25, Proximity: 0.25, Color: 0.25, Luminance: 0.25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewWeightPolicy(WeightsAdaptive, Weights{}, tt.angular, 1e-6)
			w, spreads := p.Compute(tt.eligible)
			if diff := cmp.Diff(tt.want, w, opt); diff != "" {
				t.Errorf("weights mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(Spreads{}, spreads, opt); diff != "" {
				t.Errorf("spreads should be zero (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAdaptiveSingleInformativeCue(t *testing.T) {
	eligible := []components.Cues{
		{Motion: 0.1, Proximity: 0.3, ColorContrast: 0.3, LuminanceContrast: 0.3},
		{Motion: 0.5, Proximity: 0.3, ColorContrast: 0.3, LuminanceContrast: 0.3},
		{Motion: 0.9, Proximity: 0.3, ColorContrast: 0.3, LuminanceContrast: 0.3},
	}
	p := NewWeightPolicy(WeightsAdaptive, Weights{}, false, 0)
	w, spreads := p.Compute(eligible)

	if diff := cmp.Diff(Weights{Motion: 1}, w); diff != "" {
		t.Errorf("weights mismatch (-want +got):\n%s", diff)
	}
	// floor(p*(n-1)) indexing picks 0.1 and 0.5 for three values.
	if math.Abs(spreads.Motion-0.4) > 1e-12 {
		t.Errorf("motion spread = %v, want 0.4", spreads.Motion)
	}
}

func TestAdaptiveSpreadsMatchSpread(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	eligible := randomCues(rng, 23)
	column := func(f func(components.Cues) float64) []float64 {
		out := make([]float64, len(eligible))
		for i, c := range eligible {
			out[i] = f(c)
		}
		return out
	}
	want := Spreads{
		Motion:    Spread(column(func(c components.Cues) float64 { return c.Motion })),
		Angular:   Spread(column(func(c components.Cues) float64 { return c.AngularVelocity })),
		Proximity: Spread(column(func(c components.Cues) float64 { return c.Proximity })),
		Color:     Spread(column(func(c components.Cues) float64 { return c.ColorContrast })),
		Luminance: Spread(column(func(c components.Cues) float64 { return c.LuminanceContrast })),
	}

	p := NewWeightPolicy(WeightsAdaptive, Weights{}, true, 0)
	_, got := p.Compute(eligible)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("spreads mismatch (-want +got):\n%s", diff)
	}
}

func TestFixedWeights(t *testing.T) {
	p := NewWeightPolicy(WeightsFixed, Weights{Motion: 1.5, Angular: 0.5, Proximity: -1, Color: 0.25, Luminance: 0.75}, false, 0)
	w, spreads := p.Compute(randomCues(rand.New(rand.NewSource(1)), 10))

	want := Weights{Motion: 1, Proximity: 0, Color: 0.25, Luminance: 0.75}
	if diff := cmp.Diff(want, w); diff != "" {
		t.Errorf("fixed weights mismatch (-want +got):\n%s", diff)
	}
	if spreads != (Spreads{}) {
		t.Errorf("fixed mode spreads = %+v, want zero", spreads)
	}

	// Population does not matter.
	w2, _ := p.Compute(nil)
	if w2 != w {
		t.Errorf("fixed weights changed with population: %+v vs %+v", w2, w)
	}

	p.SetFixed(Weights{Motion: 0.5, Angular: 1})
	if got := p.Fixed(); got.Angular != 0 || got.Motion != 0.5 {
		t.Errorf("SetFixed = %+v", got)
	}
}

func TestParseWeightMode(t *testing.T) {
	for _, m := range []WeightMode{WeightsFixed, WeightsAdaptive} {
		got, err := ParseWeightMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseWeightMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseWeightMode("learned"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
