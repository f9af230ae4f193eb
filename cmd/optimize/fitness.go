package main

import (
	"fmt"
	"math"
	"sync"

	"github.com/pthm-cable/gaze/components"
	"github.com/pthm-cable/gaze/config"
	"github.com/pthm-cable/gaze/game"
	"github.com/pthm-cable/gaze/telemetry"
)

// Fitness component weights.
const (
	switchPenalty = 0.25 // per unit of switch-rate mismatch
	warmupFrames  = 10   // frames skipped before comparing
)

// gazeTrace is the per-frame target of one run. 0 means no target.
type gazeTrace struct {
	targets  []components.ObjectID
	switches int
}

// agreement returns the fraction of frames where both traces chose the same
// target (or both chose none), skipping warmup.
func agreement(ref, got gazeTrace) float64 {
	n := min(len(ref.targets), len(got.targets))
	if n <= warmupFrames {
		return 0
	}
	same := 0
	for i := warmupFrames; i < n; i++ {
		if ref.targets[i] == got.targets[i] {
			same++
		}
	}
	return float64(same) / float64(n-warmupFrames)
}

// switchRate returns target switches per frame.
func (t gazeTrace) switchRate() float64 {
	if len(t.targets) == 0 {
		return 0
	}
	return float64(t.switches) / float64(len(t.targets))
}

// FitnessEvaluator runs headless simulations with fixed weights and scores
// them against reference runs under the adaptive policy.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    uint64
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64
	references  []gazeTrace

	// Best run tracking
	mu             sync.Mutex
	bestFitness    float64
	bestHallOfFame *telemetry.HallOfFame
	lastAgreement  float64
}

// NewFitnessEvaluator creates an evaluator and records one adaptive
// reference run per seed.
func NewFitnessEvaluator(params *ParamVector, maxTicks uint64, seeds []int64, baseCfg *config.Config) (*FitnessEvaluator, error) {
	fe := &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 10.0,
		bestFitness: math.Inf(1),
		references:  make([]gazeTrace, len(seeds)),
	}

	ref := fe.copyConfig()
	ref.Attention.WeightMode = "adaptive"
	for i, seed := range seeds {
		trace, _, err := fe.runSimulation(ref, seed)
		if err != nil {
			return nil, fmt.Errorf("reference run (seed %d): %w", seed, err)
		}
		fe.references[i] = trace
	}
	return fe, nil
}

// BestHallOfFame returns the hall of fame from the best evaluation.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// LastAgreement returns the mean agreement from the most recent evaluation.
func (fe *FitnessEvaluator) LastAgreement() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastAgreement
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness    float64
	agreement  float64
	hallOfFame *telemetry.HallOfFame
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			trace, hof, err := fe.runSimulation(cfg, s)
			if err != nil {
				results[idx] = seedResult{fitness: math.Inf(1)}
				return
			}
			ag := agreement(fe.references[idx], trace)
			results[idx] = seedResult{
				fitness:    computeFitness(ag, fe.references[idx], trace),
				agreement:  ag,
				hallOfFame: hof,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalAgreement float64
	bestSeedFitness := math.Inf(1)
	var bestSeedHallOfFame *telemetry.HallOfFame

	for _, r := range results {
		totalFitness += r.fitness
		totalAgreement += r.agreement
		if r.fitness < bestSeedFitness {
			bestSeedFitness = r.fitness
			bestSeedHallOfFame = r.hallOfFame
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestHallOfFame = bestSeedHallOfFame
	}
	fe.lastAgreement = totalAgreement / n
	fe.mu.Unlock()

	return avgFitness
}

// computeFitness is disagreement plus a penalty for switching at a
// different rate than the reference.
func computeFitness(ag float64, ref, got gazeTrace) float64 {
	return (1 - ag) + switchPenalty*math.Abs(got.switchRate()-ref.switchRate())
}

// runSimulation executes a single headless run and records its gaze trace.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) (gazeTrace, *telemetry.HallOfFame, error) {
	var trace gazeTrace

	g, err := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Config:         cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			trace.switches += stats.TargetSwitches
		},
	})
	if err != nil {
		return trace, nil, err
	}
	defer g.Unload()

	trace.targets = make([]components.ObjectID, 0, fe.maxTicks)
	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()

		var id components.ObjectID
		if t := g.Attention().GetCurrentTarget(); t.Found {
			id = t.ID
		}
		trace.targets = append(trace.targets, id)
	}

	return trace, g.HallOfFame(), nil
}

// copyConfig returns a copy of the base config. Slices are shared and must
// not be mutated.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}
