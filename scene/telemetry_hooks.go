package scene

import (
	"log/slog"

	"github.com/pthm-cable/wturb/telemetry"
)

// flushTelemetry saves due snapshots and flushes the stats window when it ends.
func (s *Simulation) flushTelemetry() {
	if every := s.cfg.Telemetry.SnapshotEvery; every > 0 && s.step%every == 0 {
		s.saveSnapshot()
	}

	if !s.collector.ShouldFlush(s.step) {
		return
	}

	stats := s.collector.Flush(s.step, s.solver.Time, s.particles.Particles(), s.energy)
	perfStats := s.perfCollector.Stats()

	// Call stats callback if provided
	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if s.outputManager != nil {
		if err := s.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEndStep); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// saveSnapshot writes the particle state to the output directory.
func (s *Simulation) saveSnapshot() {
	if s.outputManager == nil {
		return
	}
	inflow := s.particles.Inflow()
	snap := &telemetry.Snapshot{
		Version:   telemetry.SnapshotVersion,
		RNGSeed:   s.cfg.Turbulence.Seed,
		TileSeed:  s.field.Seed(),
		GridSize:  s.solver.Size,
		Step:      s.step,
		SimTime:   s.solver.Time,
		Inflow:    inflow,
		Particles: telemetry.NewParticleStates(s.particles.Particles()),
	}
	path, err := s.outputManager.WriteSnapshot(snap)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "step", s.step, "particles", len(snap.Particles))
}
