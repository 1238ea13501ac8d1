package kernel

import (
	"testing"

	"github.com/Wheel2Motor/voxelizer/pkg/geom"
	"github.com/Wheel2Motor/voxelizer/pkg/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boxSolid is a minimal Solid: an axis-aligned box.
type boxSolid struct {
	box geom.Box
}

func (s *boxSolid) BoundingBox() geom.Box {
	return s.box
}

// boxKernel proves the interface is satisfiable with exact box meshes.
// Booleans keep the bounding union or overlap; rotation is ignored.
type boxKernel struct{}

func (k *boxKernel) Box(x, y, z float64) (Solid, error) {
	return &boxSolid{geom.Box{Max: geom.Vec(x, y, z)}}, nil
}

func (k *boxKernel) Cylinder(height, radius float64) (Solid, error) {
	return &boxSolid{geom.Box{
		Min: geom.Vec(-radius, -radius, -height/2),
		Max: geom.Vec(radius, radius, height/2),
	}}, nil
}

func (k *boxKernel) Sphere(radius float64) (Solid, error) {
	return &boxSolid{geom.Box{
		Min: geom.Vec(-radius, -radius, -radius),
		Max: geom.Vec(radius, radius, radius),
	}}, nil
}

func (k *boxKernel) Union(a, b Solid) Solid {
	return &boxSolid{a.BoundingBox().Extend(b.BoundingBox().Min).Extend(b.BoundingBox().Max)}
}

func (k *boxKernel) Difference(a, _ Solid) Solid { return a }

func (k *boxKernel) Intersection(a, b Solid) Solid {
	ab, bb := a.BoundingBox(), b.BoundingBox()
	return &boxSolid{geom.Box{Min: ab.Min.Max(bb.Min), Max: ab.Max.Min(bb.Max)}}
}

func (k *boxKernel) Translate(s Solid, v geom.Vector3) Solid {
	b := s.BoundingBox()
	return &boxSolid{geom.Box{Min: b.Min.Add(v), Max: b.Max.Add(v)}}
}

func (k *boxKernel) Rotate(s Solid, _ geom.Vector3) Solid { return s }

func (k *boxKernel) ToMesh(s Solid) (*mesh.Mesh, error) {
	b := s.BoundingBox()
	return mesh.NewBox(b.Min, b.Max), nil
}

var _ Solid = (*boxSolid)(nil)
var _ Kernel = (*boxKernel)(nil)

func TestBoxKernelBoundingBox(t *testing.T) {
	var k Kernel = &boxKernel{}
	s, err := k.Box(10, 20, 30)
	require.NoError(t, err)
	bb := s.BoundingBox()
	assert.Equal(t, geom.Vec(0, 0, 0), bb.Min)
	assert.Equal(t, geom.Vec(10, 20, 30), bb.Max)
}

func TestBoxKernelPipeline(t *testing.T) {
	var k Kernel = &boxKernel{}
	a, err := k.Box(2, 2, 2)
	require.NoError(t, err)
	b := k.Translate(a, geom.Vec(1, 1, 1))

	tests := []struct {
		name string
		s    Solid
		want float64
	}{
		{"box", a, 8},
		{"union", k.Union(a, b), 27},
		{"intersection", k.Intersection(a, b), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := k.ToMesh(tt.s)
			require.NoError(t, err)
			require.NoError(t, m.Validate())
			vol, err := m.Volume()
			require.NoError(t, err)
			assert.InDelta(t, tt.want, vol, 1e-9)
		})
	}
}
