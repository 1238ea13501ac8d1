// Package mesh holds the indexed triangle mesh model and the signed-volume
// integrator. A Mesh is read-only input to every computation here.
package mesh

import (
	"fmt"

	"github.com/Wheel2Motor/voxelizer/pkg/geom"
)

// Mesh is an indexed triangle mesh. Indices holds 3 vertex positions per
// triangle: [a0,b0,c0, a1,b1,c1, ...].
type Mesh struct {
	Vertices []geom.Vector3 `json:"vertices"`
	Indices  []uint         `json:"indices"`
	Name     string         `json:"name,omitempty"` // part or file this mesh came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Triangle returns the corners of triangle i. It does not validate indices.
func (m *Mesh) Triangle(i int) (a, b, c geom.Vector3) {
	f := m.Indices[i*3 : i*3+3]
	return m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
}

// Validate checks that the index buffer is a whole number of triangles and
// that every index references an existing vertex.
func (m *Mesh) Validate() error {
	return checkFlat(len(m.Vertices), m.Indices)
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *Mesh) Bounds() (geom.Box, error) {
	return geom.Bounds(m.Vertices)
}

// Volume returns the signed volume enclosed by the mesh.
func (m *Mesh) Volume() (float64, error) {
	return SignedVolumeFlat(m.Vertices, m.Indices)
}

// Reversed returns a copy of the mesh with every triangle's winding flipped
// by swapping its second and third index. Vertices are shared.
func (m *Mesh) Reversed() *Mesh {
	idx := make([]uint, len(m.Indices))
	copy(idx, m.Indices)
	for i := 0; i+2 < len(idx); i += 3 {
		idx[i+1], idx[i+2] = idx[i+2], idx[i+1]
	}
	return &Mesh{Vertices: m.Vertices, Indices: idx, Name: m.Name}
}

// Transform returns a copy of the mesh with fn applied to every vertex.
func (m *Mesh) Transform(fn func(geom.Vector3) geom.Vector3) *Mesh {
	verts := make([]geom.Vector3, len(m.Vertices))
	for i, v := range m.Vertices {
		verts[i] = fn(v)
	}
	idx := make([]uint, len(m.Indices))
	copy(idx, m.Indices)
	return &Mesh{Vertices: verts, Indices: idx, Name: m.Name}
}

// Merge concatenates meshes into one named mesh. Vertices are not welded
// across parts.
func Merge(name string, meshes ...*Mesh) *Mesh {
	out := &Mesh{Name: name}
	for _, m := range meshes {
		base := uint(len(out.Vertices))
		out.Vertices = append(out.Vertices, m.Vertices...)
		for _, i := range m.Indices {
			out.Indices = append(out.Indices, base+i)
		}
	}
	return out
}

func (m *Mesh) String() string {
	name := m.Name
	if name == "" {
		name = "mesh"
	}
	return fmt.Sprintf("%s (%d vertices, %d triangles)", name, m.VertexCount(), m.TriangleCount())
}

// checkFlat validates a flat index buffer against a vertex count.
func checkFlat(nverts int, faces []uint) error {
	if len(faces)%3 != 0 {
		return geom.NewInputError("indices",
			fmt.Sprintf("length %d is not a multiple of 3", len(faces)))
	}
	for i, idx := range faces {
		if idx >= uint(nverts) {
			return &geom.InputError{
				Buffer:     "indices",
				Constraint: fmt.Sprintf("index %d out of range for %d vertices (triangle %d)", idx, nverts, i/3),
				Index:      i,
			}
		}
	}
	return nil
}

// checkTriples validates a triangle list against a vertex count. Element
// indices in errors are flattened so both input shapes report alike.
func checkTriples(nverts int, tris [][3]uint) error {
	for t, tri := range tris {
		for c, idx := range tri {
			if idx >= uint(nverts) {
				return &geom.InputError{
					Buffer:     "indices",
					Constraint: fmt.Sprintf("index %d out of range for %d vertices (triangle %d)", idx, nverts, t),
					Index:      t*3 + c,
				}
			}
		}
	}
	return nil
}
