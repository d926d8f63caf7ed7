package noise

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// splineWeights returns the centre sample index of the quadratic B-spline
// footprint around c together with the three basis weights and their
// derivatives with respect to c. All arithmetic is float32.
func splineWeights(c float32) (mid int, w, dw [3]float32) {
	s := c - 0.5
	m := float32(math.Ceil(float64(s)))
	t := m - s
	w[0] = t * t * 0.5
	w[2] = (1 - t) * (1 - t) * 0.5
	w[1] = 1 - w[0] - w[2]
	dw[0] = -t
	dw[1] = 2*t - 1
	dw[2] = 1 - t
	return int(m), w, dw
}

// Sample reconstructs channel c of the tile at tile-space position p. The tile
// repeats every NoiseTileSize units along each axis.
func (t *Tile) Sample(c int, p mgl32.Vec3) float32 {
	const n = NoiseTileSize
	data := t.Channel(c)

	mx, wx, _ := splineWeights(p[0])
	my, wy, _ := splineWeights(p[1])
	mz, wz, _ := splineWeights(p[2])

	var result float32
	for k := -1; k <= 1; k++ {
		zc := modFast128(mz+k) * n * n
		for j := -1; j <= 1; j++ {
			yc := modFast128(my+j) * n
			wyz := wz[k+1] * wy[j+1]
			for i := -1; i <= 1; i++ {
				result += wx[i+1] * wyz * data[zc+yc+modFast128(mx+i)]
			}
		}
	}
	return result
}

// Gradient returns the analytic partial derivatives (d/dx, d/dy, d/dz) of
// Sample for channel c at tile-space position p.
func (t *Tile) Gradient(c int, p mgl32.Vec3) mgl32.Vec3 {
	const n = NoiseTileSize
	data := t.Channel(c)

	mx, wx, dwx := splineWeights(p[0])
	my, wy, dwy := splineWeights(p[1])
	mz, wz, dwz := splineWeights(p[2])

	var g mgl32.Vec3
	for k := -1; k <= 1; k++ {
		zc := modFast128(mz+k) * n * n
		for j := -1; j <= 1; j++ {
			yc := modFast128(my+j) * n
			for i := -1; i <= 1; i++ {
				v := data[zc+yc+modFast128(mx+i)]
				g[0] += v * dwx[i+1] * wy[j+1] * wz[k+1]
				g[1] += v * wx[i+1] * dwy[j+1] * wz[k+1]
				g[2] += v * wx[i+1] * wy[j+1] * dwz[k+1]
			}
		}
	}
	return g
}
