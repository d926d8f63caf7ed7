package noise

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/wturb/grid"
)

// Field is one noise field instance evaluated by the simulation. It reads the
// shared tile through a registry handle and maps solver grid positions into
// tile space through its own seed offset, animation and scale parameters.
//
// The exported parameters may be changed freely between evaluations. Evaluation
// itself is read-only and safe for concurrent use.
type Field struct {
	PosOffset mgl32.Vec3
	PosScale  mgl32.Vec3
	ValOffset float32
	ValScale  float32
	Clamp     bool
	ClampMin  float32
	ClampMax  float32
	TimeAnim  float32 // animation speed along the tile diagonal

	solver     *grid.Solver
	handle     *TileHandle
	tile       *Tile
	seed       int64
	gsInv      mgl32.Vec3
	seedOffset mgl32.Vec3
}

// NewField acquires the session tile from reg and creates a field for solver.
// A negative seed draws the next automatic seed from the registry.
func NewField(reg *TileRegistry, solver *grid.Solver, seed int64, loadFromFile bool) (*Field, error) {
	if seed < 0 {
		seed = reg.NextSeed()
	}
	h, err := reg.Acquire(seed, loadFromFile)
	if err != nil {
		return nil, err
	}

	inv := 1 / float32(solver.MaxSize())
	gsInv := mgl32.Vec3{inv, inv, inv}
	if !solver.Is3D() {
		gsInv[2] = 1
	}

	rs := NewRandomStream(seed)
	return &Field{
		PosScale: mgl32.Vec3{1, 1, 1},
		ValScale: 1,
		ClampMax: 1,
		TimeAnim: 0.1,

		solver:     solver,
		handle:     h,
		tile:       h.Tile(),
		seed:       seed,
		gsInv:      gsInv,
		seedOffset: rs.Vec3Norm().Mul(NoiseTileSize / 2),
	}, nil
}

// MustNewField is like NewField but panics on error.
func MustNewField(reg *TileRegistry, solver *grid.Solver, seed int64, loadFromFile bool) *Field {
	f, err := NewField(reg, solver, seed, loadFromFile)
	if err != nil {
		panic(fmt.Sprintf("noise: failed to create field: %v", err))
	}
	return f
}

// Close releases the field's tile reference.
func (f *Field) Close() {
	f.handle.Release()
}

// Seed returns the seed the field was constructed with.
func (f *Field) Seed() int64 { return f.seed }

// Tile returns the shared tile the field samples.
func (f *Field) Tile() *Tile { return f.tile }

// GridSizeInverse returns the per-axis normalisation applied to positions.
func (f *Field) GridSizeInverse() mgl32.Vec3 { return f.gsInv }

// SeedOffset returns the field's random offset into the tile.
func (f *Field) SeedOffset() mgl32.Vec3 { return f.seedOffset }

// TileSpace maps a solver grid position to the tile coordinates sampled for it.
func (f *Field) TileSpace(pos mgl32.Vec3) mgl32.Vec3 {
	p := mgl32.Vec3{pos[0] * f.gsInv[0], pos[1] * f.gsInv[1], pos[2] * f.gsInv[2]}
	p = p.Add(f.seedOffset)
	anim := f.solver.Time * f.solver.Dx() * f.TimeAnim
	p = p.Add(mgl32.Vec3{anim, anim, anim})
	p = mgl32.Vec3{p[0] * f.PosScale[0], p[1] * f.PosScale[1], p[2] * f.PosScale[2]}
	return p.Add(f.PosOffset)
}

// Evaluate returns the scalar noise of the given channel at pos.
func (f *Field) Evaluate(pos mgl32.Vec3, channel int) float32 {
	v := f.tile.Sample(channel, f.TileSpace(pos))
	return f.shape(v)
}

// EvaluateVec returns the spatial derivatives of the given channel at pos,
// each passed through the field's value offset, scale and clamp.
func (f *Field) EvaluateVec(pos mgl32.Vec3, channel int) mgl32.Vec3 {
	g := f.tile.Gradient(channel, f.TileSpace(pos))
	return mgl32.Vec3{f.shape(g[0]), f.shape(g[1]), f.shape(g[2])}
}

// EvaluateCurl combines the derivatives of the three tile channels into a
// divergence-free vector.
func (f *Field) EvaluateCurl(pos mgl32.Vec3) mgl32.Vec3 {
	d0 := f.EvaluateVec(pos, 0)
	d1 := f.EvaluateVec(pos, 1)
	d2 := f.EvaluateVec(pos, 2)
	return mgl32.Vec3{
		d0[1] - d1[2],
		d2[2] - d0[0],
		d1[0] - d2[1],
	}
}

func (f *Field) shape(v float32) float32 {
	v = (v + f.ValOffset) * f.ValScale
	if f.Clamp {
		if v < f.ClampMin {
			v = f.ClampMin
		}
		if v > f.ClampMax {
			v = f.ClampMax
		}
	}
	return v
}
