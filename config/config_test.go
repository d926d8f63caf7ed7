package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	if cfg.Grid.Dim != 3 || cfg.Derived.Size != [3]int{64, 64, 64} {
		t.Errorf("unexpected grid: dim %d size %v", cfg.Grid.Dim, cfg.Derived.Size)
	}
	if cfg.Derived.DT32 != 0.5 {
		t.Errorf("expected DT32 0.5, got %v", cfg.Derived.DT32)
	}
	if cfg.Turbulence.EnableCrossfadeBlend {
		t.Error("cross-fade blending should default to off")
	}
	if cfg.Noise.PosScale != [3]float64{32, 32, 32} {
		t.Errorf("unexpected pos_scale %v", cfg.Noise.PosScale)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.yaml")
	user := "grid:\n  dim: 2\n  size_z: 40\nturbulence:\n  octaves: 5\n"
	if err := os.WriteFile(path, []byte(user), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading overlay: %v", err)
	}
	if cfg.Turbulence.Octaves != 5 {
		t.Errorf("expected octaves 5, got %d", cfg.Turbulence.Octaves)
	}
	if cfg.Turbulence.L0 != 0.1 {
		t.Errorf("fields absent from the overlay should keep defaults, l0 = %v", cfg.Turbulence.L0)
	}
	if cfg.Derived.Is3D || cfg.Derived.Size[2] != 1 {
		t.Errorf("2-D config should force z size 1, got %v", cfg.Derived.Size)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	bad := "grid:\n  dim: 4\nturbulence:\n  l0: 0\nscene:\n  obstacle:\n    kind: torus\n"
	if err := os.WriteFile(path, []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, want := range []string{"grid.dim", "turbulence.l0", "torus"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Turbulence.Scale = 2.5

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatal(err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.Turbulence.Scale != 2.5 || back.Scene.Source != cfg.Scene.Source {
		t.Errorf("round trip lost values: %+v", back.Turbulence)
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("Cfg should panic before Init")
		}
	}()
	Cfg()
}

func TestMustInit(t *testing.T) {
	MustInit("")
	if Cfg().Scene.Steps <= 0 {
		t.Error("expected positive default step count")
	}
}
