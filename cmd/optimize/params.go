// Package main provides CMA-ES fitting of fixed cue weights to the
// adaptive policy's gaze choices.
package main

import (
	"github.com/pthm-cable/gaze/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the fixed-weight parameter set, starting from the
// base config's fixed weights.
func NewParamVector(base *config.Config) *ParamVector {
	w := base.Attention.FixedWeights
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "weight_motion", Path: "attention.fixed_weights.motion", Min: 0, Max: 1, Default: w.Motion},
			{Name: "weight_angular", Path: "attention.fixed_weights.angular", Min: 0, Max: 1, Default: w.Angular},
			{Name: "weight_proximity", Path: "attention.fixed_weights.proximity", Min: 0, Max: 1, Default: w.Proximity},
			{Name: "weight_color", Path: "attention.fixed_weights.color", Min: 0, Max: 1, Default: w.Color},
			{Name: "weight_luminance", Path: "attention.fixed_weights.luminance", Min: 0, Max: 1, Default: w.Luminance},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig switches cfg to fixed weights and sets them from values.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Attention.WeightMode = "fixed"
	cfg.Attention.FixedWeights = config.WeightsConfig{
		Motion:    clamped[0],
		Angular:   clamped[1],
		Proximity: clamped[2],
		Color:     clamped[3],
		Luminance: clamped[4],
	}
}
