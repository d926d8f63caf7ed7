package systems

import "github.com/go-gl/mathgl/mgl32"

// Shape is a region of the simulation domain in grid coordinates.
type Shape interface {
	IsInside(p mgl32.Vec3) bool
	// Bounds returns the axis-aligned bounding box of the shape.
	Bounds() (lo, hi mgl32.Vec3)
}

// Box is an axis-aligned box with inclusive faces.
type Box struct {
	Min, Max mgl32.Vec3
}

// NewBoxCentered creates a box from its centre and half extents.
func NewBoxCentered(center, half mgl32.Vec3) Box {
	return Box{Min: center.Sub(half), Max: center.Add(half)}
}

func (b Box) IsInside(p mgl32.Vec3) bool {
	return p[0] >= b.Min[0] && p[1] >= b.Min[1] && p[2] >= b.Min[2] &&
		p[0] <= b.Max[0] && p[1] <= b.Max[1] && p[2] <= b.Max[2]
}

func (b Box) Bounds() (lo, hi mgl32.Vec3) { return b.Min, b.Max }

// Sphere is a ball with an optional per-axis scale.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
	Scale  mgl32.Vec3 // zero means (1,1,1)
}

func (s Sphere) scale() mgl32.Vec3 {
	if s.Scale == (mgl32.Vec3{}) {
		return mgl32.Vec3{1, 1, 1}
	}
	return s.Scale
}

func (s Sphere) IsInside(p mgl32.Vec3) bool {
	sc := s.scale()
	d := p.Sub(s.Center)
	d = mgl32.Vec3{d[0] / sc[0], d[1] / sc[1], d[2] / sc[2]}
	return d.Dot(d) <= s.Radius*s.Radius
}

func (s Sphere) Bounds() (lo, hi mgl32.Vec3) {
	sc := s.scale()
	ext := mgl32.Vec3{s.Radius * sc[0], s.Radius * sc[1], s.Radius * sc[2]}
	return s.Center.Sub(ext), s.Center.Add(ext)
}
