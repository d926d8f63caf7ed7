package scene

import (
	"github.com/pthm-cable/wturb/grid"
	"github.com/pthm-cable/wturb/systems"
	"github.com/pthm-cable/wturb/telemetry"
)

// Step runs one simulation step and returns the synthesis report.
//
// Order: velocity, energy, wavelet coefficients, density inflow, particle
// synthesis, obstacle cleanup, telemetry. Solver time advances at the end.
func (s *Simulation) Step() systems.SynthesisReport {
	cfg := s.cfg
	s.perfCollector.StartStep()

	s.perfCollector.StartPhase(telemetry.PhaseVelocity)
	s.updateVelocity()

	s.perfCollector.StartPhase(telemetry.PhaseEnergy)
	systems.ComputeEnergy(s.flags, s.vel, s.energy)
	systems.ExtrapolateSimpleFlags(s.flags, s.energy, energyExtrapolation, grid.TypeFluid, grid.TypeObstacle)

	s.perfCollector.StartPhase(telemetry.PhaseCoefficients)
	if cfg.Turbulence.WaveletEnergy {
		systems.ComputeWaveletCoeffs(s.energy)
	}

	s.perfCollector.StartPhase(telemetry.PhaseInflow)
	if cfg.Scene.InflowDensity != 0 {
		systems.ApplyNoiseToGrid(s.flags, s.density, s.field, s.source, float32(cfg.Scene.InflowDensity))
	}

	s.perfCollector.StartPhase(telemetry.PhaseSynthesis)
	report := s.particles.Synthesize(s.flags, s.energy, s.params)

	s.perfCollector.StartPhase(telemetry.PhaseObstacles)
	removed := 0
	if cfg.Turbulence.DeleteInObstacle {
		removed = s.particles.DeleteInObstacle(s.flags)
	}
	// Keep the population topped up from the source.
	if missing := cfg.Turbulence.Particles - s.particles.Size(); missing > 0 && removed > 0 {
		s.particles.Seed(s.source, missing)
	}

	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.step++
	s.solver.Advance()
	s.collector.RecordStep(report, removed)
	s.flushTelemetry()

	s.perfCollector.EndStep()
	return report
}

// updateVelocity resets the flow to the base velocity and adds curl noise.
func (s *Simulation) updateVelocity() {
	s.vel.Fill(s.baseVel)
	if noiseScale := float32(s.cfg.Scene.VelocityNoise); noiseScale != 0 {
		systems.ApplyNoiseVec3(s.flags, s.vel, s.field, noiseScale, 1, nil, nil)
	}
}
