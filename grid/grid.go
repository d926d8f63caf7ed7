// Package grid provides the dense 3-D storage the turbulence kernels operate on.
package grid

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Elem is the set of cell types a Grid can hold.
type Elem interface {
	float32 | mgl32.Vec3 | int32
}

// Grid is a dense 3-D array laid out x-fastest: index = x + y*sx + z*sx*sy.
// A 2-D grid has SizeZ == 1.
type Grid[T Elem] struct {
	sx, sy, sz int
	is3D       bool
	data       []T
}

// RealGrid holds scalar cells (density, energy, wavelet coefficients).
type RealGrid = Grid[float32]

// VecGrid holds cell-centred vectors (velocity, uv coordinates).
type VecGrid = Grid[mgl32.Vec3]

// New allocates a zeroed grid sized to the solver.
func New[T Elem](s *Solver) *Grid[T] {
	return NewSized[T](s.Size[0], s.Size[1], s.Size[2], s.Is3D())
}

// NewSized allocates a zeroed grid with explicit dimensions.
func NewSized[T Elem](sx, sy, sz int, is3D bool) *Grid[T] {
	if !is3D {
		sz = 1
	}
	return &Grid[T]{
		sx: sx, sy: sy, sz: sz,
		is3D: is3D,
		data: make([]T, sx*sy*sz),
	}
}

// SizeX returns the number of cells along x.
func (g *Grid[T]) SizeX() int { return g.sx }

// SizeY returns the number of cells along y.
func (g *Grid[T]) SizeY() int { return g.sy }

// SizeZ returns the number of cells along z (1 for 2-D grids).
func (g *Grid[T]) SizeZ() int { return g.sz }

// Is3D reports whether the grid spans three dimensions.
func (g *Grid[T]) Is3D() bool { return g.is3D }

// Len returns the total cell count.
func (g *Grid[T]) Len() int { return len(g.data) }

// Data exposes the backing slice. Strided transforms work directly on it.
func (g *Grid[T]) Data() []T { return g.data }

// Index converts cell coordinates to a linear index.
func (g *Grid[T]) Index(i, j, k int) int {
	return i + j*g.sx + k*g.sx*g.sy
}

// Get returns the value at cell (i,j,k).
func (g *Grid[T]) Get(i, j, k int) T {
	return g.data[i+j*g.sx+k*g.sx*g.sy]
}

// Set stores v at cell (i,j,k).
func (g *Grid[T]) Set(i, j, k int, v T) {
	g.data[i+j*g.sx+k*g.sx*g.sy] = v
}

// Fill sets every cell to v.
func (g *Grid[T]) Fill(v T) {
	for i := range g.data {
		g.data[i] = v
	}
}

// Clear zeroes every cell.
func (g *Grid[T]) Clear() {
	var zero T
	g.Fill(zero)
}

// SameSize reports whether the grid has dimensions sx, sy and sz.
func (g *Grid[T]) SameSize(sx, sy, sz int) bool {
	return g.sx == sx && g.sy == sy && g.sz == sz
}

// IsInBoundsIdx reports whether the integer cell lies inside the grid
// shrunk by bnd cells on every present axis.
func (g *Grid[T]) IsInBoundsIdx(i, j, k, bnd int) bool {
	ok := i >= bnd && j >= bnd && i < g.sx-bnd && j < g.sy-bnd
	if g.is3D {
		ok = ok && k >= bnd && k < g.sz-bnd
	} else {
		ok = ok && k == 0
	}
	return ok
}

// IsInBounds reports whether a world position lies inside the grid shrunk by
// margin cells. In 2-D the z component is ignored.
func (g *Grid[T]) IsInBounds(p mgl32.Vec3, margin float32) bool {
	ok := p[0] >= margin && p[1] >= margin &&
		p[0] < float32(g.sx)-margin && p[1] < float32(g.sy)-margin
	if g.is3D {
		ok = ok && p[2] >= margin && p[2] < float32(g.sz)-margin
	}
	return ok
}

// CellOf returns the integer cell containing p (truncation, as positions are
// non-negative inside the domain).
func CellOf(p mgl32.Vec3) (int, int, int) {
	return int(p[0]), int(p[1]), int(p[2])
}
