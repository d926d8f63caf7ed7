package noise

import (
	"fmt"
	"math"

	"github.com/pthm-cable/wturb/grid"
)

// ComputeCoefficients replaces input with its smoothed wavelet detail energy.
//
// The grid is low-passed with the clamped-boundary down/up transform along X, Y
// and (for 3-D grids) Z. The residual sqrt(|input - coarse|) is written to
// scratch1 and every interior cell of input becomes the mean of the residual at
// its 4 (2-D) or 6 (3-D) axis neighbours. Border cells of input are left as is.
// All three grids must have the same size; ComputeCoefficients panics otherwise.
func ComputeCoefficients(input, scratch1, scratch2 *grid.RealGrid) {
	sx, sy, sz := input.SizeX(), input.SizeY(), input.SizeZ()
	if !scratch1.SameSize(sx, sy, sz) || !scratch2.SameSize(sx, sy, sz) {
		panic(fmt.Sprintf("noise: coefficient scratch grids must be %dx%dx%d", sx, sy, sz))
	}
	sxy := sx * sy
	in := input.Data()
	t1 := scratch1.Data()
	t2 := scratch2.Data()

	scratch1.Clear()
	scratch2.Clear()

	// src tracks the most recent low-passed signal; axes shorter than two
	// cells cannot be halved and pass it through untouched.
	src := in

	if sx >= 2 {
		from := src
		grid.ParallelFor(sy*sz, func(l int) {
			iy, iz := l%sy, l/sy
			i := iz*sxy + iy*sx
			DownsampleNeumann(from[i:], t1[i:], sx, 1)
			UpsampleNeumann(t1[i:], t2[i:], sx, 1)
		})
		src = t2
	}
	if sy >= 2 {
		from := src
		grid.ParallelFor(sx*sz, func(l int) {
			ix, iz := l%sx, l/sx
			i := iz*sxy + ix
			DownsampleNeumann(from[i:], t1[i:], sy, sx)
			UpsampleNeumann(t1[i:], t2[i:], sy, sx)
		})
		src = t2
	}
	if input.Is3D() && sz >= 2 {
		from := src
		grid.ParallelFor(sxy, func(l int) {
			ix, iy := l%sx, l/sx
			i := iy*sx + ix
			DownsampleNeumann(from[i:], t1[i:], sz, sxy)
			UpsampleNeumann(t1[i:], t2[i:], sz, sxy)
		})
		src = t2
	}

	coarse := src
	grid.ParallelChunks(len(in), func(start, end int) {
		for i := start; i < end; i++ {
			d := in[i] - coarse[i]
			t1[i] = float32(math.Sqrt(math.Abs(float64(d))))
		}
	})

	if input.Is3D() {
		const inv = float32(1.0 / 6.0)
		if sz < 3 {
			return
		}
		grid.ParallelFor(sz-2, func(l int) {
			z := l + 1
			for y := 1; y < sy-1; y++ {
				for x := 1; x < sx-1; x++ {
					i := x + y*sx + z*sxy
					sum := t1[i-1] + t1[i+1] + t1[i-sx] + t1[i+sx] + t1[i-sxy] + t1[i+sxy]
					in[i] = sum * inv
				}
			}
		})
		return
	}

	const inv = float32(0.25)
	if sy < 3 {
		return
	}
	grid.ParallelFor(sy-2, func(l int) {
		y := l + 1
		for x := 1; x < sx-1; x++ {
			i := x + y*sx
			sum := t1[i-1] + t1[i+1] + t1[i-sx] + t1[i+sx]
			in[i] = sum * inv
		}
	})
}
