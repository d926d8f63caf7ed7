package systems

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/wturb/grid"
)

// ExtrapolateSimpleFlags fills cells flagged to with values taken from cells
// flagged from, one layer per iteration, for up to distance layers. Each
// filled cell gets the mean of its axis neighbours filled in the previous
// layer; the outermost cell layer is never written.
//
// Only float32 and Vec3 grids can be averaged; any other element type panics.
func ExtrapolateSimpleFlags[T grid.Elem](flags *grid.FlagGrid, g *grid.Grid[T], distance int, from, to int32) {
	switch gg := any(g).(type) {
	case *grid.Grid[float32]:
		extrapolate(flags, gg, distance, from, to,
			func(a, b float32) float32 { return a + b },
			func(a float32, n int) float32 { return a / float32(n) })
	case *grid.Grid[mgl32.Vec3]:
		extrapolate(flags, gg, distance, from, to,
			mgl32.Vec3.Add,
			func(a mgl32.Vec3, n int) mgl32.Vec3 { return a.Mul(1 / float32(n)) })
	default:
		panic(fmt.Sprintf("systems: cannot extrapolate %T, only float32 and Vec3 grids are supported", g))
	}
}

func extrapolate[S grid.Elem](
	flags *grid.FlagGrid,
	g *grid.Grid[S],
	distance int,
	from, to int32,
	add func(a, b S) S,
	div func(a S, n int) S,
) {
	sx, sy, sz := flags.SizeX(), flags.SizeY(), flags.SizeZ()
	layer := make([]int, flags.Len())

	found := false
	for idx, f := range flags.Data() {
		if f&from != 0 {
			layer[idx] = 1
		}
		if f&to != 0 {
			found = true
		}
	}
	if !found {
		return
	}

	nbs := [][3]int{{-1, 0, 0}, {1, 0, 0}, {0, -1, 0}, {0, 1, 0}, {0, 0, -1}, {0, 0, 1}}
	if !flags.Is3D() {
		nbs = nbs[:4]
	}

	data := g.Data()
	for d := 1; d <= distance; d++ {
		for k := 0; k < sz; k++ {
			for j := 0; j < sy; j++ {
				for i := 0; i < sx; i++ {
					if !flags.IsInBoundsIdx(i, j, k, 1) {
						continue
					}
					idx := flags.Index(i, j, k)
					if layer[idx] != 0 || flags.Data()[idx]&to == 0 {
						continue
					}

					var sum S
					n := 0
					for _, o := range nbs {
						ni := flags.Index(i+o[0], j+o[1], k+o[2])
						if layer[ni] == d {
							sum = add(sum, data[ni])
							n++
						}
					}
					if n > 0 {
						layer[idx] = d + 1
						data[idx] = div(sum, n)
					}
				}
			}
		}
	}
}
