// Package meshio reads and writes triangle meshes in Wavefront OBJ and STL
// (binary and ASCII) form.
package meshio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Wheel2Motor/voxelizer/pkg/mesh"
	"github.com/deadsy/sdfx/render"
)

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = errors.New("meshio: unsupported mesh format")

// ParseError locates a malformed record in a mesh file.
type ParseError struct {
	Format string // "obj" or "stl"
	Line   int    // 1-based line, 0 for binary input
	Record int    // triangle number for binary STL, else 0
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("meshio: %s line %d: %v", e.Format, e.Line, e.Err)
	case e.Record > 0:
		return fmt.Sprintf("meshio: %s triangle %d: %v", e.Format, e.Record, e.Err)
	}
	return fmt.Sprintf("meshio: %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads the mesh at path, choosing the parser by extension. The mesh
// is named after the file without its extension.
func Load(path string) (*mesh.Mesh, error) {
	ext := strings.ToLower(filepath.Ext(path))
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var (
		m   *mesh.Mesh
		err error
	)
	switch ext {
	case ".obj":
		var f *os.File
		if f, err = os.Open(path); err != nil {
			return nil, err
		}
		defer f.Close()
		m, err = ReadOBJ(f, name)
	case ".stl":
		m, err = loadSTL(path, name)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, err
	}
	return m, nil
}

// Save writes m to path in the format named by its extension. STL files
// are binary.
func Save(path string, m *mesh.Mesh) error {
	if err := m.Validate(); err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".stl":
		return render.SaveSTL(path, Triangles(m))
	case ".obj":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := WriteOBJ(f, m); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}
