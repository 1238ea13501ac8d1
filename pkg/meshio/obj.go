package meshio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Wheel2Motor/voxelizer/pkg/geom"
	"github.com/Wheel2Motor/voxelizer/pkg/mesh"
)

// ReadOBJ parses the v and f records of a Wavefront OBJ stream. Faces with
// more than three corners are fan triangulated from their first corner.
// Negative indices count back from the latest vertex. All other records
// are ignored.
func ReadOBJ(r io.Reader, name string) (*mesh.Mesh, error) {
	m := &mesh.Mesh{Name: name}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	fail := func(format string, args ...any) error {
		return &ParseError{Format: "obj", Line: line, Err: fmt.Errorf(format, args...)}
	}

	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fail("vertex needs 3 coordinates, got %d", len(fields)-1)
			}
			var xyz [3]float64
			for i := range xyz {
				f, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fail("vertex coordinate %q: %w", fields[i+1], errors.Unwrap(err))
				}
				xyz[i] = f
			}
			m.Vertices = append(m.Vertices, geom.Vec(xyz[0], xyz[1], xyz[2]))

		case "f":
			if len(fields) < 4 {
				return nil, fail("face needs at least 3 corners, got %d", len(fields)-1)
			}
			corners := make([]uint, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				idx, err := objIndex(tok, len(m.Vertices))
				if err != nil {
					return nil, fail("face corner %q: %w", tok, err)
				}
				corners = append(corners, idx)
			}
			for i := 1; i+1 < len(corners); i++ {
				m.Indices = append(m.Indices, corners[0], corners[i], corners[i+1])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{Format: "obj", Line: line + 1, Err: err}
	}
	return m, nil
}

// objIndex resolves the vertex part of a face corner ("7", "7/1", "7//3",
// "-1") to a 0-based index.
func objIndex(tok string, nverts int) (uint, error) {
	if i := strings.IndexByte(tok, '/'); i >= 0 {
		tok = tok[:i]
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, errors.New("not an integer")
	}
	switch {
	case n > 0 && n <= nverts:
		return uint(n - 1), nil
	case n < 0 && -n <= nverts:
		return uint(nverts + n), nil
	case n == 0:
		return 0, errors.New("indices are 1-based")
	}
	return 0, fmt.Errorf("index %d out of range for %d vertices", n, nverts)
}

// WriteOBJ writes m as OBJ v and f records with 1-based indices.
func WriteOBJ(w io.Writer, m *mesh.Mesh) error {
	if err := m.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if m.Name != "" {
		fmt.Fprintf(bw, "o %s\n", m.Name)
	}
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %s %s %s\n", fmtFloat(v.X), fmtFloat(v.Y), fmtFloat(v.Z))
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		fmt.Fprintf(bw, "f %d %d %d\n", m.Indices[i]+1, m.Indices[i+1]+1, m.Indices[i+2]+1)
	}
	return bw.Flush()
}

// fmtFloat prints the shortest representation that parses back exactly.
func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
