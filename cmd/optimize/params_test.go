package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/wturb/config"
)

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-12 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestParamVectorApplyClamps(t *testing.T) {
	pv := NewParamVector()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv.ApplyToConfig(cfg, []float64{100, -1, 0.25, 1})
	if cfg.Turbulence.Scale != 5 {
		t.Errorf("scale %v, want clamped to 5", cfg.Turbulence.Scale)
	}
	if cfg.Turbulence.L0 != 0.02 {
		t.Errorf("l0 %v, want clamped to 0.02", cfg.Turbulence.L0)
	}
	if cfg.Turbulence.KMin != 0.25 || cfg.Scene.VelocityNoise != 1 {
		t.Errorf("unexpected k_min %v velocity_noise %v", cfg.Turbulence.KMin, cfg.Scene.VelocityNoise)
	}
}

func TestRelErrSq(t *testing.T) {
	if got := relErrSq(1.5, 1); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("relErrSq(1.5, 1) = %v", got)
	}
	if got := relErrSq(2, 0); got != 4 {
		t.Errorf("relErrSq(2, 0) = %v", got)
	}
}
