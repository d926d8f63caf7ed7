package noise

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/mathext/prng"
)

// RandomStream is a seeded Mersenne-twister stream. The same seed always yields
// the same sequence, which keeps tile generation and per-field offsets
// reproducible.
type RandomStream struct {
	rng *rand.Rand
}

// NewRandomStream creates a stream seeded with seed.
func NewRandomStream(seed int64) *RandomStream {
	src := prng.NewMT19937()
	src.Seed(uint64(seed))
	return &RandomStream{rng: rand.New(src)}
}

// Real returns a uniform sample in [0,1).
func (r *RandomStream) Real() float32 {
	return r.rng.Float32()
}

// RandNorm returns a normally distributed sample.
func (r *RandomStream) RandNorm(mean, stddev float32) float32 {
	return mean + stddev*float32(r.rng.NormFloat64())
}

// Vec3 returns a vector with independent uniform components in [0,1).
func (r *RandomStream) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{r.Real(), r.Real(), r.Real()}
}

// Vec3Norm returns a uniformly oriented unit vector.
func (r *RandomStream) Vec3Norm() mgl32.Vec3 {
	for {
		v := mgl32.Vec3{r.RandNorm(0, 1), r.RandNorm(0, 1), r.RandNorm(0, 1)}
		if l := v.Len(); l > 1e-6 {
			return v.Mul(1 / l)
		}
	}
}
