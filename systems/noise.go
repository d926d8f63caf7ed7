package systems

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/wturb/grid"
	"github.com/pthm-cable/wturb/noise"
)

// ApplyNoiseToGrid injects noise as density inflow: every fluid cell whose
// centre lies inside shape is raised to field(cell)*scale if it is lower.
func ApplyNoiseToGrid(flags *grid.FlagGrid, density *grid.RealGrid, field *noise.Field, shape Shape, scale float32) {
	grid.ParallelCells(flags.SizeX(), flags.SizeY(), flags.SizeZ(), func(i, j, k int) {
		if !flags.IsFluid(i, j, k) {
			return
		}
		centre := mgl32.Vec3{float32(i) + 0.5, float32(j) + 0.5, float32(k) + 0.5}
		if !shape.IsInside(centre) {
			return
		}
		target := field.Evaluate(mgl32.Vec3{float32(i), float32(j), float32(k)}, 0) * scale
		if density.Get(i, j, k) < target {
			density.Set(i, j, k, target)
		}
	})
}

// ApplyNoiseVec3 adds curl noise to target at every fluid cell, scaled by
// scale and by the optional per-cell weight grid. Cells with zero weight are
// skipped. The lookup position is the cell index, or the uv grid value when
// uv is given so the pattern follows advected coordinates. Either way it is
// multiplied by scaleSpatial.
func ApplyNoiseVec3(flags *grid.FlagGrid, target *grid.VecGrid, field *noise.Field, scale, scaleSpatial float32, weight *grid.RealGrid, uv *grid.VecGrid) {
	grid.ParallelCells(flags.SizeX(), flags.SizeY(), flags.SizeZ(), func(i, j, k int) {
		if !flags.IsFluid(i, j, k) {
			return
		}
		factor := float32(1)
		if weight != nil {
			factor = weight.Get(i, j, k)
			if factor == 0 {
				return
			}
		}
		pos := mgl32.Vec3{float32(i), float32(j), float32(k)}
		if uv != nil {
			pos = uv.Get(i, j, k)
		}
		n := field.EvaluateCurl(pos.Mul(scaleSpatial)).Mul(scale * factor)
		target.Set(i, j, k, target.Get(i, j, k).Add(n))
	})
}
