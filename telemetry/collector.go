package telemetry

import (
	"github.com/pthm-cable/wturb/grid"
	"github.com/pthm-cable/wturb/systems"
)

// Collector accumulates per-step synthesis reports within windows and
// produces WindowStats.
type Collector struct {
	windowSteps int

	// Current window tracking
	windowStartStep int

	// Counters for current window
	steps      int
	removed    int
	tex0Resets int
	tex1Resets int
	alphaSum   float64
	speedMax   float64
	inBounds   int
}

// NewCollector creates a new stats collector that flushes every windowSteps
// steps.
func NewCollector(windowSteps int) *Collector {
	if windowSteps < 1 {
		windowSteps = 1
	}
	return &Collector{windowSteps: windowSteps}
}

// RecordStep records one synthesis step and the particles removed after it.
func (c *Collector) RecordStep(r systems.SynthesisReport, removed int) {
	c.steps++
	c.removed += removed
	if r.ResetTex0 {
		c.tex0Resets++
	}
	if r.ResetTex1 {
		c.tex1Resets++
	}
	c.alphaSum += float64(r.Alpha)
	if float64(r.MaxSpeed) > c.speedMax {
		c.speedMax = float64(r.MaxSpeed)
	}
	c.inBounds = r.InBounds
}

// ShouldFlush returns true if enough steps have passed to flush the window.
func (c *Collector) ShouldFlush(currentStep int) bool {
	return currentStep-c.windowStartStep >= c.windowSteps
}

// Flush produces a WindowStats and resets counters for the next window.
// particles supplies the speed distribution and energy the grid statistics;
// energy may be nil.
func (c *Collector) Flush(currentStep int, simTime float32, particles []systems.Particle, energy *grid.RealGrid) WindowStats {
	speeds := make([]float64, len(particles))
	for i, p := range particles {
		speeds[i] = float64(p.Vel.Len())
	}
	speedMean, p10, p50, p90 := ComputeEnergyStats(speeds)

	stats := WindowStats{
		WindowStartStep: c.windowStartStep,
		WindowEndStep:   currentStep,
		SimTime:         float64(simTime),

		Particles: len(particles),
		InBounds:  c.inBounds,

		Removed:    c.removed,
		Tex0Resets: c.tex0Resets,
		Tex1Resets: c.tex1Resets,

		SpeedMean: speedMean,
		SpeedP10:  p10,
		SpeedP50:  p50,
		SpeedP90:  p90,
		SpeedMax:  c.speedMax,
	}
	if c.steps > 0 {
		stats.AlphaMean = c.alphaSum / float64(c.steps)
	}
	if energy != nil {
		stats.EnergyMean, stats.EnergyStd, stats.EnergyMax = ComputeGridStats(energy.Data())
	}

	// Reset for next window
	c.windowStartStep = currentStep
	c.steps = 0
	c.removed = 0
	c.tex0Resets = 0
	c.tex1Resets = 0
	c.alphaSum = 0
	c.speedMax = 0

	return stats
}

// WindowSteps returns the number of steps per window.
func (c *Collector) WindowSteps() int {
	return c.windowSteps
}
