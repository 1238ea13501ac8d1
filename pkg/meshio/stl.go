package meshio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Wheel2Motor/voxelizer/pkg/geom"
	"github.com/Wheel2Motor/voxelizer/pkg/mesh"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const stlHeaderSize = 84

var stlTriSize = binary.Size(render.STLTriangle{})

// ReadSTL parses a binary or ASCII STL stream. Corners with identical
// coordinates are welded into shared vertices; facet winding is kept and
// stored normals are ignored.
func ReadSTL(r io.Reader, name string) (*mesh.Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if isBinarySTL(data) {
		return readBinarySTL(data, name)
	}
	return readASCIISTL(data, name)
}

// isBinarySTL decides by size: a binary file is exactly header plus the
// declared number of triangle records. ASCII files start with "solid", but
// so do some binary headers, so the size check wins.
func isBinarySTL(data []byte) bool {
	if len(data) >= stlHeaderSize {
		n := binary.LittleEndian.Uint32(data[80:84])
		if uint64(len(data)) == stlHeaderSize+uint64(n)*uint64(stlTriSize) {
			return true
		}
	}
	return !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid"))
}

func readBinarySTL(data []byte, name string) (*mesh.Mesh, error) {
	r := bytes.NewReader(data)
	var hdr render.STLHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, &ParseError{Format: "stl", Err: fmt.Errorf("binary header truncated at %d bytes", len(data))}
	}
	b := mesh.NewBuilder(name)
	for i := 0; i < int(hdr.Count); i++ {
		var tri render.STLTriangle
		if err := binary.Read(r, binary.LittleEndian, &tri); err != nil {
			return nil, &ParseError{Format: "stl", Record: i + 1, Err: io.ErrUnexpectedEOF}
		}
		b.Triangle(fromFloat32(tri.Vertex1), fromFloat32(tri.Vertex2), fromFloat32(tri.Vertex3))
	}
	return b.Mesh(), nil
}

// loadSTL reads an STL file. Binary files go through render.LoadSTL; its
// ASCII reader is not used since it indexes past the end on a vertex
// count that is not a multiple of three and rejects files shorter than a
// binary header.
func loadSTL(path, name string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	var hdr render.STLHeader
	if info.Size() >= stlHeaderSize {
		if err := binary.Read(f, binary.LittleEndian, &hdr); err != nil {
			return nil, err
		}
		if info.Size() == stlHeaderSize+int64(hdr.Count)*int64(stlTriSize) {
			tris, err := render.LoadSTL(path)
			if err != nil {
				return nil, &ParseError{Format: "stl", Err: err}
			}
			return FromTriangles(name, tris), nil
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
	}
	return ReadSTL(f, name)
}

// FromTriangles welds sdfx triangle soup into an indexed mesh.
func FromTriangles(name string, tris []*sdf.Triangle3) *mesh.Mesh {
	b := mesh.NewBuilder(name)
	for _, t := range tris {
		b.Triangle(fromVec(t[0]), fromVec(t[1]), fromVec(t[2]))
	}
	return b.Mesh()
}

// Triangles returns the faces of m as sdfx triangles.
func Triangles(m *mesh.Mesh) []*sdf.Triangle3 {
	tris := make([]*sdf.Triangle3, m.TriangleCount())
	for i := range tris {
		a, b, c := m.Triangle(i)
		tris[i] = &sdf.Triangle3{toVec(a), toVec(b), toVec(c)}
	}
	return tris
}

func fromVec(v v3.Vec) geom.Vector3 {
	return geom.Vec(v.X, v.Y, v.Z)
}

func toVec(v geom.Vector3) v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

func fromFloat32(v [3]float32) geom.Vector3 {
	return geom.Vec(float64(v[0]), float64(v[1]), float64(v[2]))
}

func toFloat32(v geom.Vector3) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

func readASCIISTL(data []byte, name string) (*mesh.Mesh, error) {
	b := mesh.NewBuilder(name)
	sc := bufio.NewScanner(bytes.NewReader(data))

	line := 0
	fail := func(err error) error {
		return &ParseError{Format: "stl", Line: line, Err: err}
	}

	var corners []geom.Vector3
	inFacet := false
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "facet":
			if inFacet {
				return nil, fail(errors.New("facet inside facet"))
			}
			inFacet = true
			corners = corners[:0]
		case "vertex":
			if !inFacet {
				return nil, fail(errors.New("vertex outside facet"))
			}
			if len(fields) != 4 {
				return nil, fail(fmt.Errorf("vertex needs 3 coordinates, got %d", len(fields)-1))
			}
			var xyz [3]float64
			for i := range xyz {
				f, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fail(fmt.Errorf("vertex coordinate %q: %w", fields[i+1], errors.Unwrap(err)))
				}
				xyz[i] = f
			}
			corners = append(corners, geom.Vec(xyz[0], xyz[1], xyz[2]))
		case "endfacet":
			if !inFacet {
				return nil, fail(errors.New("endfacet without facet"))
			}
			if len(corners) != 3 {
				return nil, fail(fmt.Errorf("facet has %d vertices, want 3", len(corners)))
			}
			b.Triangle(corners[0], corners[1], corners[2])
			inFacet = false
		case "solid", "endsolid", "outer", "endloop":
		default:
			return nil, fail(fmt.Errorf("unexpected keyword %q", fields[0]))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fail(err)
	}
	if inFacet {
		return nil, fail(errors.New("unterminated facet"))
	}
	return b.Mesh(), nil
}

// WriteSTL writes m as binary STL with float32 coordinates and per-facet
// normals computed from the winding.
func WriteSTL(w io.Writer, m *mesh.Mesh) error {
	if err := m.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)

	hdr := render.STLHeader{Count: uint32(m.TriangleCount())}
	if err := binary.Write(bw, binary.LittleEndian, &hdr); err != nil {
		return err
	}
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.Triangle(i)
		n := b.Sub(a).Cross(c.Sub(a))
		if l := n.Length(); l > 0 {
			n = n.Scale(1 / l)
		}
		tri := render.STLTriangle{
			Normal:  toFloat32(n),
			Vertex1: toFloat32(a),
			Vertex2: toFloat32(b),
			Vertex3: toFloat32(c),
		}
		if err := binary.Write(bw, binary.LittleEndian, &tri); err != nil {
			return err
		}
	}
	return bw.Flush()
}
