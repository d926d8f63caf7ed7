package main

import (
	"context"
	"math"
	"sync"

	"github.com/pthm-cable/wturb/config"
	"github.com/pthm-cable/wturb/scene"
	"github.com/pthm-cable/wturb/telemetry"
)

// Target is the particle speed distribution the calibration aims for.
type Target struct {
	SpeedP50 float64
	SpeedP90 float64
}

// warmupWindows are skipped before scoring so the cross-fade settles.
const warmupWindows = 1

// FitnessEvaluator runs headless scenes and scores their speed statistics.
type FitnessEvaluator struct {
	params     *ParamVector
	steps      int
	seeds      []int64
	baseConfig *config.Config
	target     Target

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	lastStats   telemetry.WindowStats // final window of the most recent run
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, steps int, seeds []int64, baseCfg *config.Config, target Target) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		steps:       steps,
		seeds:       seeds,
		baseConfig:  baseCfg,
		target:      target,
		bestFitness: math.Inf(1),
	}
}

// LastStats returns the final window stats of the most recent evaluation.
func (fe *FitnessEvaluator) LastStats() telemetry.WindowStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the mean squared relative error of the speed percentiles
// against the target, averaged over windows and seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	// Run all seeds in parallel
	results := make([]float64, len(fe.seeds))
	finals := make([]telemetry.WindowStats, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows, err := fe.runScene(cfg, s)
			if err != nil || len(windows) == 0 {
				results[idx] = math.Inf(1)
				return
			}
			results[idx] = fe.computeFitness(windows)
			finals[idx] = windows[len(windows)-1]
		}(i, seed)
	}
	wg.Wait()

	var total float64
	for _, r := range results {
		total += r
	}
	fitness := total / float64(len(fe.seeds))

	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
	}
	fe.lastStats = finals[0]
	fe.mu.Unlock()

	return fitness
}

// runScene runs one scene and returns the window stats it produced.
func (fe *FitnessEvaluator) runScene(base *config.Config, seed int64) ([]telemetry.WindowStats, error) {
	cfg := *base
	cfg.Turbulence.Seed = seed
	cfg.Telemetry.OutputDir = ""

	var windows []telemetry.WindowStats
	sim, err := scene.New(&cfg, scene.Options{
		StatsCallback: func(s telemetry.WindowStats) {
			windows = append(windows, s)
		},
	})
	if err != nil {
		return nil, err
	}
	defer sim.Close()

	if err := sim.Run(context.Background(), fe.steps); err != nil {
		return nil, err
	}
	return windows, nil
}

// computeFitness scores the windows after warm-up.
func (fe *FitnessEvaluator) computeFitness(windows []telemetry.WindowStats) float64 {
	if len(windows) > warmupWindows {
		windows = windows[warmupWindows:]
	}
	var sum float64
	for _, w := range windows {
		sum += relErrSq(w.SpeedP50, fe.target.SpeedP50) + relErrSq(w.SpeedP90, fe.target.SpeedP90)
	}
	return sum / float64(len(windows))
}

func relErrSq(got, want float64) float64 {
	if want == 0 {
		return got * got
	}
	d := (got - want) / want
	return d * d
}

// copyConfig returns a copy of the base config. Config holds only values and
// fixed-size arrays, so a struct copy is deep.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}
