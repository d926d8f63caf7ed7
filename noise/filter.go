package noise

// NoiseTileSize is the edge length of the shared noise tile. The periodic
// transforms wrap with a bitmask, so it must stay a power of two.
const NoiseTileSize = 128

// NoiseTileChannels is the number of independent noise channels per tile.
const NoiseTileChannels = 3

// Compile-time check that NoiseTileSize is a power of two.
var _ = [1]struct{}{}[NoiseTileSize&(NoiseTileSize-1)]

// Analysis (downsample) coefficients of the quadratic B-spline wavelet,
// indexed k-2i+16 for k in [2i-16, 2i+16).
var downCoeffs = [32]float32{
	0.000334, -0.001528, 0.000410, 0.003545, -0.000938, -0.008233, 0.002172, 0.019120,
	-0.005040, -0.044412, 0.011655, 0.103311, -0.025936, -0.243780, 0.033979, 0.655340,
	0.655340, 0.033979, -0.243780, -0.025936, 0.103311, 0.011655, -0.044412, -0.005040,
	0.019120, 0.002172, -0.008233, -0.000938, 0.003546, 0.000410, -0.001528, 0.000334,
}

// Synthesis (upsample) coefficients, indexed i-2k+2 for k in {i/2, i/2+1}.
var upCoeffs = [4]float32{0.25, 0.75, 0.75, 0.25}

func modFast128(x int) int { return (x + NoiseTileSize) & (NoiseTileSize - 1) }

func modFast64(x int) int { return (x + NoiseTileSize/2) & (NoiseTileSize/2 - 1) }

// DownsamplePeriodic writes the n/2 analysis samples of the strided line
// from[0], from[stride], ... into to, wrapping source indices around the tile.
// Only valid for n == NoiseTileSize.
func DownsamplePeriodic(from, to []float32, n, stride int) {
	for i := 0; i < n/2; i++ {
		var sum float32
		for k := 2*i - 16; k < 2*i+16; k++ {
			sum += downCoeffs[k-2*i+16] * from[modFast128(k)*stride]
		}
		to[i*stride] = sum
	}
}

// UpsamplePeriodic expands n/2 samples back to n, wrapping around the
// half-size line. Only valid for n == NoiseTileSize.
func UpsamplePeriodic(from, to []float32, n, stride int) {
	for i := 0; i < n; i++ {
		var sum float32
		for k := i / 2; k <= i/2+1; k++ {
			sum += upCoeffs[i-2*k+2] * from[modFast64(k)*stride]
		}
		to[i*stride] = sum
	}
}

// DownsampleNeumann is the clamped-boundary analysis pass for lines of
// arbitrary length: source samples left of the line replicate from[0], right of
// it replicate the last sample.
func DownsampleNeumann(from, to []float32, n, stride int) {
	last := (n - 1) * stride
	for i := 0; i < n/2; i++ {
		var sum float32
		for k := 2*i - 16; k < 2*i+16; k++ {
			var v float32
			switch {
			case k < 0:
				v = from[0]
			case k > n-1:
				v = from[last]
			default:
				v = from[k*stride]
			}
			sum += downCoeffs[k-2*i+16] * v
		}
		to[i*stride] = sum
	}
}

// UpsampleNeumann is the clamped-boundary synthesis pass: indices past the
// half-length line replicate its last sample.
func UpsampleNeumann(from, to []float32, n, stride int) {
	half := n / 2
	for i := 0; i < n; i++ {
		var sum float32
		for k := i / 2; k <= i/2+1; k++ {
			var v float32
			if k > half-1 {
				v = from[(half-1)*stride]
			} else {
				v = from[k*stride]
			}
			sum += upCoeffs[i-2*k+2] * v
		}
		to[i*stride] = sum
	}
}
