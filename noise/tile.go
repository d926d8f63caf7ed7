package noise

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/wturb/grid"
)

// ErrTileSize is returned when tile generation is asked for an edge length the
// fast periodic wraparound cannot handle.
var ErrTileSize = errors.New("noise: periodic tile generation requires a 128^3 tile")

// Tile is the band-limited noise volume shared by every Field. It holds
// NoiseTileChannels independent channels of NoiseTileSize^3 samples, laid out
// channel*n^3 + z*n^2 + y*n + x. A Tile is immutable once built.
type Tile struct {
	seed int64
	data []float32
}

// tileCells is the sample count of one channel.
const tileCells = NoiseTileSize * NoiseTileSize * NoiseTileSize

// tileLen is the sample count of the whole tile.
const tileLen = NoiseTileChannels * tileCells

// Seed returns the seed the tile was generated from (0 for loaded tiles).
func (t *Tile) Seed() int64 { return t.seed }

// Data returns the packed samples of all channels.
func (t *Tile) Data() []float32 { return t.data }

// Channel returns the samples of a single channel.
func (t *Tile) Channel(c int) []float32 {
	return t.data[c*tileCells : (c+1)*tileCells]
}

// At returns the sample of channel c at (x,y,z), wrapping coordinates.
func (t *Tile) At(c, x, y, z int) float32 {
	const n = NoiseTileSize
	return t.data[c*tileCells+modFast128(z)*n*n+modFast128(y)*n+modFast128(x)]
}

// GenerateTile builds a fresh tile from seed.
func GenerateTile(seed int64) (*Tile, error) {
	data, err := generateTileData(seed, NoiseTileSize)
	if err != nil {
		return nil, err
	}
	return &Tile{seed: seed, data: data}, nil
}

// generateTileData runs the wavelet noise construction: random fill, a
// separable down/up pass along X, Y and Z per channel, subtraction of the
// coarse signal, and an odd-offset self-addition that evens out the variance
// of even and odd samples.
func generateTileData(seed int64, n int) ([]float32, error) {
	if n != NoiseTileSize {
		return nil, fmt.Errorf("%w: got %d", ErrTileSize, n)
	}
	n2 := n * n
	n3 := n2 * n
	total := NoiseTileChannels * n3

	rs := NewRandomStream(seed)
	noise3 := make([]float32, total)
	temp1 := make([]float32, total)
	temp2 := make([]float32, total)

	for i := range noise3 {
		noise3[i] = rs.RandNorm(0, 1)
	}

	for tile := 0; tile < NoiseTileChannels; tile++ {
		off := tile * n3

		// X lines
		grid.ParallelFor(n2, func(l int) {
			iy, iz := l%n, l/n
			i := off + iy*n + iz*n2
			DownsamplePeriodic(noise3[i:], temp1[i:], n, 1)
			UpsamplePeriodic(temp1[i:], temp2[i:], n, 1)
		})
		// Y lines
		grid.ParallelFor(n2, func(l int) {
			ix, iz := l%n, l/n
			i := off + ix + iz*n2
			DownsamplePeriodic(temp2[i:], temp1[i:], n, n)
			UpsamplePeriodic(temp1[i:], temp2[i:], n, n)
		})
		// Z lines
		grid.ParallelFor(n2, func(l int) {
			ix, iy := l%n, l/n
			i := off + ix + iy*n
			DownsamplePeriodic(temp2[i:], temp1[i:], n, n2)
			UpsamplePeriodic(temp1[i:], temp2[i:], n, n2)
		})
	}

	for i := range noise3 {
		noise3[i] -= temp2[i]
	}

	offset := n / 2
	if offset%2 == 0 {
		offset++
	}
	for tile := 0; tile < NoiseTileChannels; tile++ {
		off := tile * n3
		grid.ParallelFor(n, func(iz int) {
			zs := modFast128(iz+offset) * n2
			for iy := 0; iy < n; iy++ {
				ys := modFast128(iy+offset) * n
				row := off + iz*n2 + iy*n
				for ix := 0; ix < n; ix++ {
					temp1[row+ix] = noise3[off+zs+ys+modFast128(ix+offset)]
				}
			}
		})
	}
	for i := range noise3 {
		noise3[i] += temp1[i]
	}

	return noise3, nil
}
