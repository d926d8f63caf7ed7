package systems

import (
	"github.com/pthm-cable/wturb/grid"
	"github.com/pthm-cable/wturb/noise"
)

// ComputeEnergy fills energy with the kinetic energy 0.5*|v|^2 of vel at fluid
// cells. Obstacle cells and fluid cells touching an obstacle along an axis get
// zero, so turbulence is not synthesized against walls.
func ComputeEnergy(flags *grid.FlagGrid, vel *grid.VecGrid, energy *grid.RealGrid) {
	sx, sy, sz := flags.SizeX(), flags.SizeY(), flags.SizeZ()
	is3D := flags.Is3D()

	grid.ParallelCells(sx, sy, sz, func(i, j, k int) {
		var e float32
		if flags.IsFluid(i, j, k) && !nearObstacle(flags, i, j, k, is3D) {
			v := vel.Get(i, j, k)
			e = 0.5 * v.Dot(v)
		}
		energy.Set(i, j, k, e)
	})
}

func nearObstacle(flags *grid.FlagGrid, i, j, k int, is3D bool) bool {
	if flags.IsObstacle(i, j, k) {
		return true
	}
	sx, sy, sz := flags.SizeX(), flags.SizeY(), flags.SizeZ()
	if i > 0 && flags.IsObstacle(i-1, j, k) || i < sx-1 && flags.IsObstacle(i+1, j, k) {
		return true
	}
	if j > 0 && flags.IsObstacle(i, j-1, k) || j < sy-1 && flags.IsObstacle(i, j+1, k) {
		return true
	}
	if is3D && (k > 0 && flags.IsObstacle(i, j, k-1) || k < sz-1 && flags.IsObstacle(i, j, k+1)) {
		return true
	}
	return false
}

// ComputeWaveletCoeffs turns an energy grid into smoothed wavelet detail
// energy in place, allocating the scratch grids it needs.
func ComputeWaveletCoeffs(input *grid.RealGrid) {
	s1 := grid.NewSized[float32](input.SizeX(), input.SizeY(), input.SizeZ(), input.Is3D())
	s2 := grid.NewSized[float32](input.SizeX(), input.SizeY(), input.SizeZ(), input.Is3D())
	noise.ComputeCoefficients(input, s1, s2)
}
