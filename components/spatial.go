package components

import "github.com/go-gl/mathgl/mgl32"

// Position is a particle's location in grid coordinates.
type Position struct {
	Vec mgl32.Vec3
}

// Velocity is the turbulence velocity synthesized for a particle in the last step.
type Velocity struct {
	Vec mgl32.Vec3
}

// TexCoords are the two noise-space coordinates a particle carries. They are
// advected with the particle and reset alternately so the sampled noise
// never drifts too far from the current flow.
type TexCoords struct {
	Tex0 mgl32.Vec3
	Tex1 mgl32.Vec3
}
