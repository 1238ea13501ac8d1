package meshio_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Wheel2Motor/voxelizer/pkg/geom"
	"github.com/Wheel2Motor/voxelizer/pkg/mesh"
	"github.com/Wheel2Motor/voxelizer/pkg/meshio"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cubeOBJ = `# unit cube, quads
o cube
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0 0 1
v 1 0 1
v 1 1 1
v 0 1 1
vn 0 0 1
f 1 4 3 2
f 5 6 7 8
f 1 2 6 5
f 4 8 7 3   # trailing comment
f 1/1 5/2 8/3 4/4
f 2//1 3//1 7//1 6//1
`

func TestReadOBJCube(t *testing.T) {
	m, err := meshio.ReadOBJ(strings.NewReader(cubeOBJ), "cube")
	require.NoError(t, err)
	assert.Equal(t, "cube", m.Name)
	assert.Equal(t, 8, m.VertexCount())
	assert.Equal(t, 12, m.TriangleCount())

	vol, err := m.Volume()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, vol, 1e-12)
}

func TestReadOBJNegativeIndices(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n"
	m, err := meshio.ReadOBJ(strings.NewReader(src), "tri")
	require.NoError(t, err)
	assert.Equal(t, []uint{0, 1, 2}, m.Indices)
}

func TestReadOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		msg  string
	}{
		{"short vertex", "v 1 2\n", 1, "3 coordinates"},
		{"bad coordinate", "v 1 x 2\n", 1, `"x"`},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n", 3, "at least 3 corners"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", 4, "1-based"},
		{"out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\n\nf 1 2 4\n", 5, "out of range"},
		{"forward reference", "v 0 0 0\nf 1 2 3\nv 1 0 0\nv 0 1 0\n", 2, "out of range"},
		{"not integer", "v 0 0 0\nf a b c\n", 2, "not an integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := meshio.ReadOBJ(strings.NewReader(tt.src), "x")
			require.Error(t, err)
			var pe *meshio.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, "obj", pe.Format)
			assert.Equal(t, tt.line, pe.Line)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestWriteOBJRoundTrip(t *testing.T) {
	box := mesh.NewBox(geom.Vec(-0.1, 0, 0.3), geom.Vec(1.7, 2, 3.1))
	box.Name = "block"

	var buf bytes.Buffer
	require.NoError(t, meshio.WriteOBJ(&buf, box))
	assert.True(t, strings.HasPrefix(buf.String(), "o block\n"))

	back, err := meshio.ReadOBJ(&buf, "block")
	require.NoError(t, err)
	assert.Equal(t, box.Vertices, back.Vertices)
	assert.Equal(t, box.Indices, back.Indices)
}

func TestWriteOBJInvalid(t *testing.T) {
	bad := &mesh.Mesh{Vertices: []geom.Vector3{{}}, Indices: []uint{0, 0, 4}}
	err := meshio.WriteOBJ(&bytes.Buffer{}, bad)
	assert.ErrorIs(t, err, geom.ErrInvalidInput)
}

const tetraSTL = `solid tetra
  facet normal 0 0 -1
    outer loop
      vertex 0 0 0
      vertex 0 1 0
      vertex 1 0 0
    endloop
  endfacet
  facet normal 0 -1 0
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 0 1
    endloop
  endfacet
  facet normal -1 0 0
    outer loop
      vertex 0 0 0
      vertex 0 0 1
      vertex 0 1 0
    endloop
  endfacet
  facet normal 1 1 1
    outer loop
      vertex 1 0 0
      vertex 0 1 0
      vertex 0 0 1
    endloop
  endfacet
endsolid tetra
`

func TestReadSTLASCII(t *testing.T) {
	m, err := meshio.ReadSTL(strings.NewReader(tetraSTL), "tetra")
	require.NoError(t, err)
	assert.Equal(t, 4, m.VertexCount(), "corners are welded")
	assert.Equal(t, 4, m.TriangleCount())

	vol, err := m.Volume()
	require.NoError(t, err)
	assert.InDelta(t, 1.0/6, vol, 1e-12)
}

func TestReadSTLASCIIErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"vertex outside facet", "solid x\nvertex 0 0 0\n", "outside facet"},
		{"two vertices", "solid x\nfacet\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nendloop\nendfacet\n", "2 vertices"},
		{"unterminated", "solid x\nfacet\nouter loop\nvertex 0 0 0\n", "unterminated"},
		{"bad number", "solid x\nfacet\nouter loop\nvertex 0 q 0\n", `"q"`},
		{"unknown keyword", "solid x\nbanana\n", "banana"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := meshio.ReadSTL(strings.NewReader(tt.src), "x")
			require.Error(t, err)
			var pe *meshio.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, "stl", pe.Format)
			assert.Positive(t, pe.Line)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestSTLBinaryRoundTrip(t *testing.T) {
	box := mesh.NewBox(geom.Vec(0, 0, 0), geom.Vec(2, 3, 4))

	var buf bytes.Buffer
	require.NoError(t, meshio.WriteSTL(&buf, box))
	assert.Equal(t, 84+50*12, buf.Len())

	// Header text must not trip ASCII detection.
	copy(buf.Bytes(), "solid block")

	back, err := meshio.ReadSTL(&buf, "block")
	require.NoError(t, err)
	assert.Equal(t, 8, back.VertexCount())
	assert.Equal(t, 12, back.TriangleCount())

	vol, err := back.Volume()
	require.NoError(t, err)
	assert.InDelta(t, 24.0, vol, 1e-9)
}

func TestReadSTLBinaryTruncated(t *testing.T) {
	box := mesh.NewBox(geom.Vec(0, 0, 0), geom.Vec(1, 1, 1))
	var buf bytes.Buffer
	require.NoError(t, meshio.WriteSTL(&buf, box))
	data := buf.Bytes()

	_, err := meshio.ReadSTL(bytes.NewReader(data[:len(data)-10]), "cut")
	var pe *meshio.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 12, pe.Record)

	_, err = meshio.ReadSTL(bytes.NewReader(data[:40]), "header")
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, err.Error(), "truncated")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	objPath := filepath.Join(dir, "cube.OBJ")
	require.NoError(t, os.WriteFile(objPath, []byte(cubeOBJ), 0o644))
	stlPath := filepath.Join(dir, "tetra.stl")
	require.NoError(t, os.WriteFile(stlPath, []byte(tetraSTL), 0o644))

	m, err := meshio.Load(objPath)
	require.NoError(t, err)
	assert.Equal(t, "cube", m.Name)
	assert.Equal(t, 12, m.TriangleCount())

	m, err = meshio.Load(stlPath)
	require.NoError(t, err)
	assert.Equal(t, "tetra", m.Name)

	_, err = meshio.Load(filepath.Join(dir, "model.ply"))
	assert.ErrorIs(t, err, meshio.ErrUnsupportedFormat)

	_, err = meshio.Load(filepath.Join(dir, "missing.obj"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	badPath := filepath.Join(dir, "bad.obj")
	require.NoError(t, os.WriteFile(badPath, []byte("v 1 2\n"), 0o644))
	_, err = meshio.Load(badPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), badPath)
}

func TestSaveLoad(t *testing.T) {
	box := mesh.NewBox(geom.Vec(0, 0, 0), geom.Vec(1, 2, 3))
	dir := t.TempDir()

	for _, file := range []string{"box.stl", "box.obj"} {
		t.Run(file, func(t *testing.T) {
			path := filepath.Join(dir, file)
			require.NoError(t, meshio.Save(path, box))

			back, err := meshio.Load(path)
			require.NoError(t, err)
			assert.Equal(t, "box", back.Name)
			assert.Equal(t, 8, back.VertexCount())
			assert.Equal(t, 12, back.TriangleCount())

			vol, err := back.Volume()
			require.NoError(t, err)
			assert.InDelta(t, 6.0, vol, 1e-9)
		})
	}

	err := meshio.Save(filepath.Join(dir, "box.ply"), box)
	assert.ErrorIs(t, err, meshio.ErrUnsupportedFormat)

	bad := &mesh.Mesh{Vertices: []geom.Vector3{{}}, Indices: []uint{0, 1, 2}}
	err = meshio.Save(filepath.Join(dir, "bad.stl"), bad)
	assert.ErrorIs(t, err, geom.ErrInvalidInput)
}

func TestLoadShortASCIISTL(t *testing.T) {
	// Shorter than a binary header.
	src := "solid t\nfacet\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nvertex 0 1 0\nendloop\nendfacet\n"
	require.Less(t, len(src), 84)
	path := filepath.Join(t.TempDir(), "t.stl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	m, err := meshio.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, m.TriangleCount())

	// A dangling vertex is a parse error, not a crash.
	src = strings.Replace(src, "vertex 0 1 0\n", "", 1)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	_, err = meshio.Load(path)
	var pe *meshio.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, err.Error(), path)
}

func TestTrianglesWeldBack(t *testing.T) {
	box := mesh.NewBox(geom.Vec(-1, -1, -1), geom.Vec(1, 1, 1))
	tris := meshio.Triangles(box)
	require.Len(t, tris, 12)

	back := meshio.FromTriangles("box", tris)
	assert.Equal(t, "box", back.Name)
	assert.Equal(t, 8, back.VertexCount())
	assert.ElementsMatch(t, box.Vertices, back.Vertices)
	for i := 0; i < 12; i++ {
		a, b, c := back.Triangle(i)
		assert.Equal(t, [3]v3.Vec(*tris[i]), [3]v3.Vec{{X: a.X, Y: a.Y, Z: a.Z}, {X: b.X, Y: b.Y, Z: b.Z}, {X: c.X, Y: c.Y, Z: c.Z}})
	}
}
