// Package kernel defines the solid modeling interface used to turn scene
// primitives into triangle meshes. The sdfx subpackage is the only
// implementation; tessellate depends on this interface alone.
package kernel

import (
	"github.com/Wheel2Motor/voxelizer/pkg/geom"
	"github.com/Wheel2Motor/voxelizer/pkg/mesh"
)

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() geom.Box
}

// Kernel builds solids and meshes them. Primitive constructors reject
// non-positive dimensions with an error wrapping geom.ErrInvalidInput.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)
	Sphere(radius float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, v geom.Vector3) Solid
	Rotate(s Solid, deg geom.Vector3) Solid // Euler angles in degrees, applied X then Y then Z

	// ToMesh tessellates s into a closed, outward-wound mesh.
	ToMesh(s Solid) (*mesh.Mesh, error)
}
