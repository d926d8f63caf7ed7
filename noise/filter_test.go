package noise

import (
	"math/rand"
	"testing"
)

func clampIdx(k, n int) int {
	if k < 0 {
		return 0
	}
	if k > n-1 {
		return n - 1
	}
	return k
}

func TestDownsampleNeumannClampsBoundary(t *testing.T) {
	const n = 16
	ramp := make([]float32, n)
	for i := range ramp {
		ramp[i] = float32(i)
	}
	to := make([]float32, n)
	DownsampleNeumann(ramp, to, n, 1)

	// Hand-computed clamped convolution for the first and last output sample.
	for _, i := range []int{0, n/2 - 1} {
		var want float32
		for k := 2*i - 16; k < 2*i+16; k++ {
			want += downCoeffs[k-2*i+16] * ramp[clampIdx(k, n)]
		}
		if to[i] != want {
			t.Errorf("sample %d: got %v, want %v", i, to[i], want)
		}
	}
}

func TestUpsampleNeumannReplicatesLastSample(t *testing.T) {
	const n = 16
	from := make([]float32, n)
	for i := 0; i < n/2; i++ {
		from[i] = float32(i*i) + 0.5
	}
	to := make([]float32, n)
	UpsampleNeumann(from, to, n, 1)

	if to[n-1] != from[n/2-1] {
		t.Errorf("last sample should replicate from[%d]=%v, got %v", n/2-1, from[n/2-1], to[n-1])
	}
	// First sample: 0.75*from[0] + 0.25*from[1].
	want := upCoeffs[2]*from[0] + upCoeffs[0]*from[1]
	if to[0] != want {
		t.Errorf("first sample: got %v, want %v", to[0], want)
	}
}

func TestStridedNeumannMatchesContiguous(t *testing.T) {
	const n, stride = 24, 5
	rng := rand.New(rand.NewSource(3))
	line := make([]float32, n)
	strided := make([]float32, n*stride)
	for i := range line {
		line[i] = rng.Float32()*2 - 1
		strided[i*stride] = line[i]
	}

	a := make([]float32, n)
	b := make([]float32, n*stride)
	DownsampleNeumann(line, a, n, 1)
	DownsampleNeumann(strided, b, n, stride)
	for i := 0; i < n/2; i++ {
		if a[i] != b[i*stride] {
			t.Fatalf("downsample mismatch at %d: %v vs %v", i, a[i], b[i*stride])
		}
	}

	ua := make([]float32, n)
	ub := make([]float32, n*stride)
	UpsampleNeumann(a, ua, n, 1)
	UpsampleNeumann(b, ub, n, stride)
	for i := 0; i < n; i++ {
		if ua[i] != ub[i*stride] {
			t.Fatalf("upsample mismatch at %d: %v vs %v", i, ua[i], ub[i*stride])
		}
	}
}

func TestPeriodicAndNeumannAgreeAwayFromBoundary(t *testing.T) {
	const n = NoiseTileSize
	rng := rand.New(rand.NewSource(11))
	line := make([]float32, n)
	for i := range line {
		line[i] = float32(rng.NormFloat64())
	}

	p := make([]float32, n)
	q := make([]float32, n)
	DownsamplePeriodic(line, p, n, 1)
	DownsampleNeumann(line, q, n, 1)
	// Windows [2i-16, 2i+16) stay inside the line for 8 <= i <= 56.
	for i := 8; i <= 56; i++ {
		if p[i] != q[i] {
			t.Errorf("downsample %d: periodic %v != neumann %v", i, p[i], q[i])
		}
	}

	up := make([]float32, n)
	uq := make([]float32, n)
	UpsamplePeriodic(p, up, n, 1)
	UpsampleNeumann(p, uq, n, 1)
	for i := 0; i < n-2; i++ {
		if up[i] != uq[i] {
			t.Errorf("upsample %d: periodic %v != neumann %v", i, up[i], uq[i])
		}
	}
}

func TestPeriodicDownsampleIsShiftInvariant(t *testing.T) {
	const n = NoiseTileSize
	rng := rand.New(rand.NewSource(5))
	line := make([]float32, n)
	shifted := make([]float32, n)
	for i := range line {
		line[i] = float32(rng.NormFloat64())
	}
	for i := range shifted {
		shifted[i] = line[(i+2)%n]
	}

	a := make([]float32, n)
	b := make([]float32, n)
	DownsamplePeriodic(line, a, n, 1)
	DownsamplePeriodic(shifted, b, n, 1)
	for i := 0; i < n/2; i++ {
		if b[i] != a[(i+1)%(n/2)] {
			t.Fatalf("shift by two samples should shift output by one at %d: %v vs %v", i, b[i], a[(i+1)%(n/2)])
		}
	}
}

func TestModFastWrapsNegatives(t *testing.T) {
	cases := map[int]int{-1: 127, -128: 0, -200: 56, 0: 0, 127: 127, 128: 0, 300: 44}
	for in, want := range cases {
		if got := modFast128(in); got != want {
			t.Errorf("modFast128(%d) = %d, want %d", in, got, want)
		}
	}
	if modFast64(-1) != 63 || modFast64(64) != 0 {
		t.Error("modFast64 does not wrap on 64")
	}
}

func BenchmarkDownsamplePeriodic(b *testing.B) {
	line := make([]float32, NoiseTileSize)
	to := make([]float32, NoiseTileSize)
	for i := range line {
		line[i] = float32(i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		DownsamplePeriodic(line, to, NoiseTileSize, 1)
	}
}
