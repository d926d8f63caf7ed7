package grid

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Cell type bits stored in a FlagGrid.
const (
	TypeNone     int32 = 0
	TypeFluid    int32 = 1
	TypeObstacle int32 = 2
	TypeEmpty    int32 = 4
	TypeInflow   int32 = 8
	TypeOutflow  int32 = 16
)

// FlagGrid classifies every cell of the domain.
type FlagGrid struct {
	*Grid[int32]
}

// NewFlagGrid allocates a flag grid with every cell marked fluid.
func NewFlagGrid(s *Solver) *FlagGrid {
	f := &FlagGrid{Grid: New[int32](s)}
	f.Fill(TypeFluid)
	return f
}

// InitDomain marks a boundary layer of width cells as obstacle and
// everything else as fluid.
func (f *FlagGrid) InitDomain(width int) {
	for k := 0; k < f.sz; k++ {
		for j := 0; j < f.sy; j++ {
			for i := 0; i < f.sx; i++ {
				if f.IsInBoundsIdx(i, j, k, width) {
					f.Set(i, j, k, TypeFluid)
				} else {
					f.Set(i, j, k, TypeObstacle)
				}
			}
		}
	}
}

// FillBox sets flag on every cell whose index lies in [lo, hi).
func (f *FlagGrid) FillBox(lo, hi [3]int, flag int32) {
	for k := max(lo[2], 0); k < min(hi[2], f.sz); k++ {
		for j := max(lo[1], 0); j < min(hi[1], f.sy); j++ {
			for i := max(lo[0], 0); i < min(hi[0], f.sx); i++ {
				f.Set(i, j, k, flag)
			}
		}
	}
}

// IsFluid reports whether cell (i,j,k) carries the fluid bit.
func (f *FlagGrid) IsFluid(i, j, k int) bool { return f.Get(i, j, k)&TypeFluid != 0 }

// IsObstacle reports whether cell (i,j,k) carries the obstacle bit.
func (f *FlagGrid) IsObstacle(i, j, k int) bool { return f.Get(i, j, k)&TypeObstacle != 0 }

// IsInflow reports whether cell (i,j,k) carries the inflow bit.
func (f *FlagGrid) IsInflow(i, j, k int) bool { return f.Get(i, j, k)&TypeInflow != 0 }

// IsOutflow reports whether cell (i,j,k) carries the outflow bit.
func (f *FlagGrid) IsOutflow(i, j, k int) bool { return f.Get(i, j, k)&TypeOutflow != 0 }

// IsObstacleAt reports whether the cell containing p is an obstacle.
// Positions outside the grid are never obstacles.
func (f *FlagGrid) IsObstacleAt(p mgl32.Vec3) bool {
	if !f.IsInBounds(p, 0) {
		return false
	}
	i, j, k := CellOf(p)
	if !f.is3D {
		k = 0
	}
	return f.IsObstacle(i, j, k)
}
