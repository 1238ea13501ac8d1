package mesh

import "github.com/Wheel2Motor/voxelizer/pkg/geom"

// Builder assembles an indexed Mesh from triangle soup, welding corners
// whose coordinates are exactly equal into a single vertex.
type Builder struct {
	name  string
	verts []geom.Vector3
	idx   []uint
	seen  map[geom.Vector3]uint
}

// NewBuilder returns an empty Builder whose meshes carry the given name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name, seen: make(map[geom.Vector3]uint)}
}

// Vertex returns the index of v, adding it if it has not been seen.
// NaN coordinates never compare equal, so such vertices are never welded.
func (b *Builder) Vertex(v geom.Vector3) uint {
	if i, ok := b.seen[v]; ok {
		return i
	}
	i := uint(len(b.verts))
	b.verts = append(b.verts, v)
	b.seen[v] = i
	return i
}

// Triangle appends the triangle (p, q, r) keeping its winding.
func (b *Builder) Triangle(p, q, r geom.Vector3) {
	b.idx = append(b.idx, b.Vertex(p), b.Vertex(q), b.Vertex(r))
}

// Len returns the number of triangles added so far.
func (b *Builder) Len() int {
	return len(b.idx) / 3
}

// Mesh returns the assembled mesh. The Builder must not be used afterwards.
func (b *Builder) Mesh() *Mesh {
	return &Mesh{Vertices: b.verts, Indices: b.idx, Name: b.name}
}

// boxFaces lists the 12 outward, counter-clockwise triangles of a box. The
// corners run counter-clockwise around the bottom face (0-3), then the top
// face (4-7), starting at the min corner.
var boxFaces = [12][3]uint{
	{0, 2, 1}, {0, 3, 2}, // -z
	{4, 5, 6}, {4, 6, 7}, // +z
	{0, 1, 5}, {0, 5, 4}, // -y
	{3, 7, 6}, {3, 6, 2}, // +y
	{0, 4, 7}, {0, 7, 3}, // -x
	{1, 2, 6}, {1, 6, 5}, // +x
}

// NewBox returns a closed, outward-wound 12-triangle mesh of the box with
// the given corners. Its signed volume is the box volume.
func NewBox(min, max geom.Vector3) *Mesh {
	verts := []geom.Vector3{
		{X: min.X, Y: min.Y, Z: min.Z},
		{X: max.X, Y: min.Y, Z: min.Z},
		{X: max.X, Y: max.Y, Z: min.Z},
		{X: min.X, Y: max.Y, Z: min.Z},
		{X: min.X, Y: min.Y, Z: max.Z},
		{X: max.X, Y: min.Y, Z: max.Z},
		{X: max.X, Y: max.Y, Z: max.Z},
		{X: min.X, Y: max.Y, Z: max.Z},
	}
	idx := make([]uint, 0, len(boxFaces)*3)
	for _, f := range boxFaces {
		idx = append(idx, f[0], f[1], f[2])
	}
	return &Mesh{Vertices: verts, Indices: idx, Name: "box"}
}
