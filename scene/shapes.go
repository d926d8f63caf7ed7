package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/wturb/config"
	"github.com/pthm-cable/wturb/grid"
	"github.com/pthm-cable/wturb/systems"
)

// buildShape converts a shape config to a Shape. It returns nil for an empty
// kind. In 2-D the shape is flattened onto the single cell layer.
func buildShape(c config.ShapeConfig, is3D bool) systems.Shape {
	center := vec3(c.Center)
	if !is3D {
		center[2] = 0.5
	}
	switch c.Kind {
	case "box":
		half := vec3(c.Half)
		if !is3D {
			half[2] = 0.5
		}
		return systems.NewBoxCentered(center, half)
	case "sphere":
		return systems.Sphere{Center: center, Radius: float32(c.Radius)}
	}
	return nil
}

// markObstacle flags every cell whose centre lies inside shape as obstacle.
func markObstacle(flags *grid.FlagGrid, shape systems.Shape) int {
	marked := 0
	for k := 0; k < flags.SizeZ(); k++ {
		for j := 0; j < flags.SizeY(); j++ {
			for i := 0; i < flags.SizeX(); i++ {
				centre := mgl32.Vec3{float32(i) + 0.5, float32(j) + 0.5, float32(k) + 0.5}
				if shape.IsInside(centre) {
					flags.Set(i, j, k, grid.TypeObstacle)
					marked++
				}
			}
		}
	}
	return marked
}
