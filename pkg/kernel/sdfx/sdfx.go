// Package sdfx implements kernel.Kernel with the github.com/deadsy/sdfx
// signed-distance-field library. Meshes come from uniform marching cubes.
package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/Wheel2Motor/voxelizer/pkg/geom"
	"github.com/Wheel2Motor/voxelizer/pkg/kernel"
	"github.com/Wheel2Motor/voxelizer/pkg/mesh"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultCells is the marching cubes resolution along the longest axis.
const DefaultCells = 200

// ErrEmptyMesh is returned by ToMesh when the solid produced no triangles.
var ErrEmptyMesh = errors.New("sdfx: solid produced an empty mesh")

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

func (s *sdfxSolid) BoundingBox() geom.Box {
	bb := s.s.BoundingBox()
	return geom.Box{
		Min: geom.Vec(bb.Min.X, bb.Min.Y, bb.Min.Z),
		Max: geom.Vec(bb.Max.X, bb.Max.Y, bb.Max.Z),
	}
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a kernel meshing with the given marching cubes resolution.
// A non-positive cells selects DefaultCells.
func New(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultCells
	}
	return &SdfxKernel{cells: cells}
}

// Cells returns the marching cubes resolution.
func (k *SdfxKernel) Cells() int {
	return k.cells
}

func unwrap(s kernel.Solid) sdf.SDF3 {
	ss, ok := s.(*sdfxSolid)
	if !ok {
		panic(fmt.Sprintf("sdfx: foreign solid %T", s))
	}
	return ss.s
}

func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

func checkDim(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return geom.NewInputError(name, fmt.Sprintf("must be positive and finite, got %g", v))
	}
	return nil
}

// Box creates a box with its minimum corner at the origin, so that a
// placement translation moves the corner. sdf.Box3D is centered, hence the
// half-size shift.
func (k *SdfxKernel) Box(x, y, z float64) (kernel.Solid, error) {
	for _, d := range []struct {
		name string
		v    float64
	}{{"box width", x}, {"box depth", y}, {"box height", z}} {
		if err := checkDim(d.name, d.v); err != nil {
			return nil, err
		}
	}
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: box: %w", err)
	}
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	return wrap(sdf.Transform3D(s, m)), nil
}

// Cylinder creates a cylinder along Z centered on the origin.
func (k *SdfxKernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	if err := checkDim("cylinder height", height); err != nil {
		return nil, err
	}
	if err := checkDim("cylinder radius", radius); err != nil {
		return nil, err
	}
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: cylinder: %w", err)
	}
	return wrap(s), nil
}

// Sphere creates a sphere centered on the origin.
func (k *SdfxKernel) Sphere(radius float64) (kernel.Solid, error) {
	if err := checkDim("sphere radius", radius); err != nil {
		return nil, err
	}
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx: sphere: %w", err)
	}
	return wrap(s), nil
}

func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns a minus b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

func (k *SdfxKernel) Translate(s kernel.Solid, v geom.Vector3) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: v.X, Y: v.Y, Z: v.Z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates s by Euler angles in degrees, X first.
func (k *SdfxKernel) Rotate(s kernel.Solid, deg geom.Vector3) kernel.Solid {
	rad := deg.Scale(math.Pi / 180)
	m := sdf.RotateZ(rad.Z).Mul(sdf.RotateY(rad.Y)).Mul(sdf.RotateX(rad.X))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh renders s with marching cubes and welds the resulting triangle
// soup into an indexed mesh. Triangles that collapse after welding are
// dropped; they contribute no volume.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*mesh.Mesh, error) {
	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(unwrap(s), renderer)

	b := mesh.NewBuilder("")
	for _, tri := range triangles {
		p := toVector(tri[0])
		q := toVector(tri[1])
		r := toVector(tri[2])
		if p == q || q == r || p == r {
			continue
		}
		b.Triangle(p, q, r)
	}
	if b.Len() == 0 {
		return nil, ErrEmptyMesh
	}
	return b.Mesh(), nil
}

func toVector(v v3.Vec) geom.Vector3 {
	return geom.Vec(v.X, v.Y, v.Z)
}
