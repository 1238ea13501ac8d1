// Package voxel sizes a cubic voxel grid over a mesh's bounding box.
//
// The grid spans the box starting at its min corner. Each axis gets
// ceil(extent / size) voxels, and never fewer than one, so a mesh that is
// flat along an axis still occupies a single layer of voxels there.
package voxel

import (
	"fmt"
	"math"

	"github.com/Wheel2Motor/voxelizer/pkg/geom"
)

// Resolution is the number of voxels spanning each axis.
type Resolution struct {
	X uint `json:"x" yaml:"x"`
	Y uint `json:"y" yaml:"y"`
	Z uint `json:"z" yaml:"z"`
}

// Valid reports whether every axis has at least one voxel. Only grids
// derived from NaN, infinite or overflowing extents are invalid.
func (r Resolution) Valid() bool {
	return r.X > 0 && r.Y > 0 && r.Z > 0
}

// Count returns the total number of voxels, saturating at math.MaxUint.
func (r Resolution) Count() uint {
	n := r.X
	for _, f := range []uint{r.Y, r.Z} {
		if f != 0 && n > math.MaxUint/f {
			return math.MaxUint
		}
		n *= f
	}
	return n
}

// Axis returns the count along axis i (0 = X, 1 = Y, 2 = Z).
func (r Resolution) Axis(i int) uint {
	switch i {
	case 0:
		return r.X
	case 1:
		return r.Y
	case 2:
		return r.Z
	}
	panic(fmt.Sprintf("voxel: axis %d out of range", i))
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%dx%d", r.X, r.Y, r.Z)
}

// CheckSize validates a voxel edge length.
func CheckSize(size float64) error {
	if math.IsNaN(size) || math.IsInf(size, 0) || size <= 0 {
		return geom.NewInputError("voxel size", fmt.Sprintf("must be a finite value > 0, got %g", size))
	}
	return nil
}

// ResolutionFromBox returns the voxel counts needed to cover box with cubes
// of the given edge length.
func ResolutionFromBox(box geom.Box, size float64) (Resolution, error) {
	if err := CheckSize(size); err != nil {
		return Resolution{}, err
	}
	ext := box.Size()
	return Resolution{
		X: axisCount(ext.X, size),
		Y: axisCount(ext.Y, size),
		Z: axisCount(ext.Z, size),
	}, nil
}

// maxCount bounds counts so that float64 -> uint conversion stays exact.
const maxCount = 1 << 53

// axisCount returns max(ceil(extent/size), 1), or 0 when the quotient is
// NaN, infinite or too large to represent.
func axisCount(extent, size float64) uint {
	n := math.Ceil(extent / size)
	switch {
	case math.IsNaN(n), n > maxCount:
		return 0
	case n < 1:
		return 1
	}
	return uint(n)
}
