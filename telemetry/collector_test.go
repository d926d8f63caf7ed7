package telemetry

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/wturb/grid"
	"github.com/pthm-cable/wturb/systems"
)

func TestCollector_Window(t *testing.T) {
	c := NewCollector(3)

	reports := []systems.SynthesisReport{
		{Alpha: 0.2, MaxSpeed: 1, InBounds: 4},
		{Alpha: 0.4, MaxSpeed: 5, ResetTex1: true, InBounds: 4},
		{Alpha: 0.6, MaxSpeed: 2, ResetTex0: true, InBounds: 3},
	}
	for i, r := range reports {
		if c.ShouldFlush(i) {
			t.Fatalf("flush requested early at step %d", i)
		}
		c.RecordStep(r, i)
	}
	if !c.ShouldFlush(3) {
		t.Fatal("expected flush after three steps")
	}

	particles := []systems.Particle{
		{Vel: mgl32.Vec3{3, 4, 0}},
		{Vel: mgl32.Vec3{0, 0, 1}},
	}
	energy := grid.NewSized[float32](2, 2, 1, false)
	energy.Fill(0.5)

	s := c.Flush(3, 1.5, particles, energy)

	if s.WindowStartStep != 0 || s.WindowEndStep != 3 {
		t.Errorf("window %d..%d, want 0..3", s.WindowStartStep, s.WindowEndStep)
	}
	if s.Removed != 3 {
		t.Errorf("removed %d, want 3", s.Removed)
	}
	if s.Tex0Resets != 1 || s.Tex1Resets != 1 {
		t.Errorf("resets %d/%d, want 1/1", s.Tex0Resets, s.Tex1Resets)
	}
	if math.Abs(s.AlphaMean-0.4) > 1e-6 {
		t.Errorf("alpha mean %v, want 0.4", s.AlphaMean)
	}
	if s.SpeedMax != 5 {
		t.Errorf("speed max %v, want 5", s.SpeedMax)
	}
	if s.SpeedMean != 3 {
		t.Errorf("speed mean %v, want 3", s.SpeedMean)
	}
	if s.Particles != 2 || s.InBounds != 3 {
		t.Errorf("particles %d in bounds %d", s.Particles, s.InBounds)
	}
	if s.EnergyMean != 0.5 || s.EnergyMax != 0.5 || s.EnergyStd != 0 {
		t.Errorf("energy stats %v %v %v", s.EnergyMean, s.EnergyStd, s.EnergyMax)
	}
	if s.SimTime != 1.5 {
		t.Errorf("sim time %v", s.SimTime)
	}

	// Counters reset for the next window.
	if c.ShouldFlush(5) {
		t.Error("flush requested before the next window ended")
	}
	next := c.Flush(6, 3, nil, nil)
	if next.Removed != 0 || next.Tex0Resets != 0 || next.AlphaMean != 0 || next.SpeedMax != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
	if next.WindowStartStep != 3 {
		t.Errorf("next window starts at %d, want 3", next.WindowStartStep)
	}
}

func TestNewCollector_MinimumWindow(t *testing.T) {
	if got := NewCollector(0).WindowSteps(); got != 1 {
		t.Errorf("window %d, want 1", got)
	}
}
