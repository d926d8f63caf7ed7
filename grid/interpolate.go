package grid

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Interpolate samples a scalar grid trilinearly at p. Values are stored at cell
// centres, so p is shifted by half a cell; lookups outside the grid clamp to the
// nearest border cell.
func Interpolate(g *RealGrid, p mgl32.Vec3) float32 {
	px := p[0] - 0.5
	py := p[1] - 0.5
	pz := p[2] - 0.5

	x0, fx := splitClamp(px, g.sx)
	y0, fy := splitClamp(py, g.sy)
	if !g.is3D {
		return bilerp(g, x0, y0, 0, fx, fy)
	}
	z0, fz := splitClamp(pz, g.sz)
	z1 := min(z0+1, g.sz-1)

	a := bilerp(g, x0, y0, z0, fx, fy)
	b := bilerp(g, x0, y0, z1, fx, fy)
	return a + (b-a)*fz
}

func bilerp(g *RealGrid, x0, y0, z int, fx, fy float32) float32 {
	x1 := min(x0+1, g.sx-1)
	y1 := min(y0+1, g.sy-1)
	v00 := g.Get(x0, y0, z)
	v10 := g.Get(x1, y0, z)
	v01 := g.Get(x0, y1, z)
	v11 := g.Get(x1, y1, z)
	a := v00 + (v10-v00)*fx
	b := v01 + (v11-v01)*fx
	return a + (b-a)*fy
}

// splitClamp returns the lower cell index and fractional weight for coordinate
// c on an axis of n cells, clamped so both taps stay in range.
func splitClamp(c float32, n int) (int, float32) {
	if c <= 0 {
		return 0, 0
	}
	if c >= float32(n-1) {
		return n - 1, 0
	}
	f := float32(math.Floor(float64(c)))
	return int(f), c - f
}
