package systems

import (
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/wturb/grid"
	"github.com/pthm-cable/wturb/noise"
)

var (
	tileOnce sync.Once
	tileReg  *noise.TileRegistry
)

// testField returns a field over a tile generated once per test binary.
func testField(t testing.TB, solver *grid.Solver) *noise.Field {
	t.Helper()
	tileOnce.Do(func() {
		tileReg = noise.NewTileRegistry(noise.RegistryOptions{})
		// Held for the whole run so fields never regenerate the tile.
		tileReg.MustAcquire(5, false)
	})
	f := noise.MustNewField(tileReg, solver, 5, false)
	t.Cleanup(f.Close)
	return f
}

func newTestParticles(t *testing.T) (*TurbulenceParticles, *grid.Solver) {
	t.Helper()
	solver := grid.NewSolver(16, 16, 16, 3, 0.1)
	tp := NewTurbulenceParticles(ecs.NewWorld(), solver, testField(t, solver), 1)
	return tp, solver
}

func unitCube() Box {
	return Box{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
}

func filledEnergy(solver *grid.Solver, v float32) *grid.RealGrid {
	e := grid.New[float32](solver)
	e.Fill(v)
	return e
}

func TestSeedPlacesParticlesInsideShape(t *testing.T) {
	tp, _ := newTestParticles(t)
	if n := tp.Seed(unitCube(), 8); n != 8 {
		t.Fatalf("expected 8 particles placed, got %d", n)
	}
	if tp.Size() != 8 {
		t.Fatalf("expected size 8, got %d", tp.Size())
	}
	for _, p := range tp.Particles() {
		if !unitCube().IsInside(p.Pos) {
			t.Errorf("particle %v outside the shape", p.Pos)
		}
		if p.Tex0 != p.Pos || p.Tex1 != p.Pos {
			t.Errorf("seeded texture coordinates should equal position: %v %v %v", p.Pos, p.Tex0, p.Tex1)
		}
		if p.Color[0] < 0 || p.Color[0] > 1 || p.Color[1] < 0 || p.Color[1] > 1 || p.Color[2] < 0 || p.Color[2] > 1 {
			t.Errorf("colour out of range: %v", p.Color)
		}
	}
}

func TestSeedSphere(t *testing.T) {
	tp, _ := newTestParticles(t)
	s := Sphere{Center: mgl32.Vec3{8, 8, 8}, Radius: 3}
	tp.Seed(s, 50)
	for _, p := range tp.Particles() {
		if p.Pos.Sub(s.Center).Len() > 3+1e-4 {
			t.Errorf("particle %v outside sphere", p.Pos)
		}
	}
}

// hollowShape has a bounding box but no interior.
type hollowShape struct{}

func (hollowShape) IsInside(mgl32.Vec3) bool { return false }

func (hollowShape) Bounds() (lo, hi mgl32.Vec3) { return mgl32.Vec3{}, mgl32.Vec3{1, 1, 1} }

func TestSeedGivesUpOnEmptyShape(t *testing.T) {
	tp, _ := newTestParticles(t)
	if n := tp.Seed(hollowShape{}, 3); n != 0 {
		t.Fatalf("expected no particles placed, got %d", n)
	}
	if tp.Size() != 0 {
		t.Errorf("expected empty system, got %d", tp.Size())
	}
}

func TestResetTexCoordsWithZeroInflow(t *testing.T) {
	tp, _ := newTestParticles(t)
	tp.Seed(unitCube(), 8)
	tp.ResetTexCoords(0, mgl32.Vec3{})
	for _, p := range tp.Particles() {
		if p.Tex0 != p.Pos {
			t.Errorf("tex0 %v != pos %v", p.Tex0, p.Pos)
		}
	}

	inflow := mgl32.Vec3{1, 2, 3}
	tp.ResetTexCoords(1, inflow)
	for _, p := range tp.Particles() {
		if p.Tex1 != p.Pos.Sub(inflow) {
			t.Errorf("tex1 %v != pos-inflow %v", p.Tex1, p.Pos.Sub(inflow))
		}
	}
}

func TestSynthesizeMovesParticlesWithEnergy(t *testing.T) {
	tp, solver := newTestParticles(t)
	flags := grid.NewFlagGrid(solver)
	tp.Seed(unitCube(), 8)
	tp.ResetTexCoords(0, mgl32.Vec3{})
	before := tp.Particles()

	params := SynthesisParams{Octaves: 1, SwitchLength: 10, L0: 0.25, Scale: 1}
	report := tp.Synthesize(flags, filledEnergy(solver, 1), params)
	if report.InBounds != 8 {
		t.Fatalf("expected 8 particles in bounds, got %d", report.InBounds)
	}

	after := tp.Particles()
	for i := range after {
		if after[i].Pos == before[i].Pos {
			t.Errorf("particle %d did not move", i)
		}
		d := after[i].Pos.Sub(before[i].Pos)
		if !vecNear(after[i].Tex0.Sub(before[i].Tex0), d, 1e-5) {
			t.Errorf("particle %d: tex0 not advected with position", i)
		}
	}
	if report.MaxSpeed <= 0 {
		t.Error("expected non-zero speed")
	}
}

func TestSynthesizeZeroEnergyKeepsParticles(t *testing.T) {
	tp, solver := newTestParticles(t)
	flags := grid.NewFlagGrid(solver)
	tp.Seed(unitCube(), 8)
	before := tp.Particles()

	params := SynthesisParams{Octaves: 3, SwitchLength: 10, L0: 0.25, Scale: 2}
	tp.Synthesize(flags, filledEnergy(solver, 0), params)

	after := tp.Particles()
	for i := range after {
		if after[i].Pos != before[i].Pos {
			t.Errorf("particle %d moved without energy: %v -> %v", i, before[i].Pos, after[i].Pos)
		}
	}
}

func TestSynthesizeKMinSuppressesLowEnergy(t *testing.T) {
	tp, solver := newTestParticles(t)
	flags := grid.NewFlagGrid(solver)
	tp.Seed(unitCube(), 4)
	before := tp.Particles()

	params := SynthesisParams{Octaves: 2, SwitchLength: 10, L0: 0.5, Scale: 1, KMin: 2}
	tp.Synthesize(flags, filledEnergy(solver, 1), params)
	for i, p := range tp.Particles() {
		if p.Pos != before[i].Pos {
			t.Errorf("particle %d moved with energy below KMin", i)
		}
	}
}

func TestSynthesizeSkipsOutOfBounds(t *testing.T) {
	tp, solver := newTestParticles(t)
	flags := grid.NewFlagGrid(solver)
	outside := mgl32.Vec3{-3, 4, 4}
	tp.Add(outside, mgl32.Vec3{1, 1, 1})
	tp.Compress()

	report := tp.Synthesize(flags, filledEnergy(solver, 1), SynthesisParams{Octaves: 1, L0: 1, Scale: 1})
	if report.InBounds != 0 {
		t.Errorf("expected no in-bounds particles, got %d", report.InBounds)
	}
	if got := tp.Particles()[0].Pos; got != outside {
		t.Errorf("out-of-bounds particle moved to %v", got)
	}
}

func TestSynthesizeCrossfadeResets(t *testing.T) {
	tp, solver := newTestParticles(t)
	solver.Dt = 0.3
	flags := grid.NewFlagGrid(solver)
	energy := filledEnergy(solver, 0)
	tp.Seed(unitCube(), 4)

	params := SynthesisParams{
		Octaves:              1,
		SwitchLength:         1,
		L0:                   1,
		Scale:                1,
		InflowBias:           mgl32.Vec3{1, 0, 0},
		EnableCrossfadeBlend: true,
	}

	// t = 0.3: rising half, no reset.
	r := tp.Synthesize(flags, energy, params)
	if r.ResetTex0 || r.ResetTex1 {
		t.Errorf("step 1: unexpected reset %+v", r)
	}
	if !near(r.Alpha, 0.6, 1e-5) {
		t.Errorf("step 1: alpha %v, want 0.6", r.Alpha)
	}

	// t = 0.6: the falling half starts, tex1 has zero weight and is reset.
	r = tp.Synthesize(flags, energy, params)
	if !r.ResetTex1 || r.ResetTex0 {
		t.Errorf("step 2: expected tex1 reset only, got %+v", r)
	}
	inflow := tp.Inflow()
	for _, p := range tp.Particles() {
		if p.Tex1 != p.Pos.Sub(inflow) {
			t.Errorf("tex1 %v not reset to pos-inflow %v", p.Tex1, p.Pos.Sub(inflow))
		}
	}

	// t = 0.9: still falling.
	r = tp.Synthesize(flags, energy, params)
	if r.ResetTex0 || r.ResetTex1 {
		t.Errorf("step 3: unexpected reset %+v", r)
	}

	// t = 1.2: a new rising half starts and tex0 is reset.
	r = tp.Synthesize(flags, energy, params)
	if !r.ResetTex0 || r.ResetTex1 {
		t.Errorf("step 4: expected tex0 reset only, got %+v", r)
	}
	if !vecNear(tp.Inflow(), mgl32.Vec3{1.2, 0, 0}, 1e-5) {
		t.Errorf("inflow %v, want (1.2,0,0)", tp.Inflow())
	}
}

func TestSynthesizeLegacyAlphaIsOne(t *testing.T) {
	tp, solver := newTestParticles(t)
	flags := grid.NewFlagGrid(solver)
	tp.Seed(unitCube(), 2)
	r := tp.Synthesize(flags, filledEnergy(solver, 0), SynthesisParams{Octaves: 1, SwitchLength: 1, L0: 1, Scale: 1})
	if r.Alpha != 1 {
		t.Errorf("expected alpha 1 without cross-fade blending, got %v", r.Alpha)
	}
}

func TestDeleteInObstacleRemovesExactlyOne(t *testing.T) {
	tp, solver := newTestParticles(t)
	flags := grid.NewFlagGrid(solver)
	flags.Set(3, 4, 5, grid.TypeObstacle)

	tp.Seed(unitCube(), 8)
	tp.Add(mgl32.Vec3{3.5, 4.5, 5.5}, mgl32.Vec3{1, 0, 0})
	tp.Add(mgl32.Vec3{40, 4.5, 5.5}, mgl32.Vec3{0, 1, 0}) // outside the grid
	tp.Compress()
	if tp.Size() != 10 {
		t.Fatalf("expected 10 particles, got %d", tp.Size())
	}

	if removed := tp.DeleteInObstacle(flags); removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if tp.Size() != 9 {
		t.Errorf("expected 9 particles left, got %d", tp.Size())
	}
	for _, p := range tp.Particles() {
		if p.Pos == (mgl32.Vec3{3.5, 4.5, 5.5}) {
			t.Error("obstacle particle survived")
		}
	}
}

func TestKillAndCompress(t *testing.T) {
	tp, _ := newTestParticles(t)
	tp.Seed(unitCube(), 5)
	ps := tp.Particles()
	tp.Kill(ps[1].Entity)
	tp.Kill(ps[3].Entity)
	if tp.Size() != 5 {
		t.Errorf("kill should only take effect on compress")
	}
	if removed := tp.Compress(); removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}
	if tp.Size() != 3 || len(tp.Particles()) != 3 {
		t.Errorf("expected 3 particles, got size %d", tp.Size())
	}
	tp.Kill(ps[1].Entity) // already removed
	if removed := tp.Compress(); removed != 0 {
		t.Errorf("killing a removed particle should be a no-op, removed %d", removed)
	}
}

func BenchmarkSynthesize(b *testing.B) {
	solver := grid.NewSolver(32, 32, 32, 3, 0.1)
	tp := NewTurbulenceParticles(ecs.NewWorld(), solver, testField(b, solver), 1)
	tp.Seed(Box{Min: mgl32.Vec3{4, 4, 4}, Max: mgl32.Vec3{28, 28, 28}}, 2000)
	flags := grid.NewFlagGrid(solver)
	energy := filledEnergy(solver, 0.5)
	params := SynthesisParams{Octaves: 3, SwitchLength: 5, L0: 2, Scale: 1}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tp.Synthesize(flags, energy, params)
	}
}
