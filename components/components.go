// Package components defines ECS components for turbulence particles.
package components

import "github.com/go-gl/mathgl/mgl32"

// Particle flag bits.
const (
	FlagDelete uint32 = 1 << 10 // removed on the next compress
)

// Color is the display colour assigned at seed time.
type Color struct {
	RGB mgl32.Vec3
}

// ParticleFlags holds per-particle state bits.
type ParticleFlags struct {
	Bits uint32
}

// Has reports whether all bits in f are set.
func (p ParticleFlags) Has(f uint32) bool { return p.Bits&f == f }

// Set sets the bits in f.
func (p *ParticleFlags) Set(f uint32) { p.Bits |= f }
