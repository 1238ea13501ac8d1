package voxel

import (
	"fmt"

	"github.com/Wheel2Motor/voxelizer/pkg/geom"
)

// Grid is a voxel grid placed over a bounding box.
type Grid struct {
	Resolution Resolution `json:"resolution" yaml:"resolution"`
	Box        geom.Box   `json:"box" yaml:"box"` // bounding box the grid was sized from
	VoxelSize  float64    `json:"voxel_size" yaml:"voxel_size"`
}

// GridResolution computes the bounding box of verts and the voxel counts
// needed to cover it with cubes of edge length size. The box is recomputed
// on every call.
func GridResolution(verts []geom.Vector3, size float64) (Grid, error) {
	if err := CheckSize(size); err != nil {
		return Grid{}, err
	}
	box, err := geom.Bounds(verts)
	if err != nil {
		return Grid{}, err
	}
	res, err := ResolutionFromBox(box, size)
	if err != nil {
		return Grid{}, err
	}
	return Grid{Resolution: res, Box: box, VoxelSize: size}, nil
}

// Center returns the world-space center of voxel (x, y, z).
func (g Grid) Center(x, y, z uint) geom.Vector3 {
	h := g.VoxelSize / 2
	return geom.Vector3{
		X: g.Box.Min.X + float64(x)*g.VoxelSize + h,
		Y: g.Box.Min.Y + float64(y)*g.VoxelSize + h,
		Z: g.Box.Min.Z + float64(z)*g.VoxelSize + h,
	}
}

// Extent returns the region actually covered by the voxels. It starts at
// the bounding box min corner and is at least as large as the box.
func (g Grid) Extent() geom.Box {
	r := g.Resolution
	return geom.Box{
		Min: g.Box.Min,
		Max: g.Box.Min.Add(geom.Vector3{
			X: float64(r.X) * g.VoxelSize,
			Y: float64(r.Y) * g.VoxelSize,
			Z: float64(r.Z) * g.VoxelSize,
		}),
	}
}

// Anomaly reports whether the grid was derived from non-finite input.
func (g Grid) Anomaly() error {
	if err := geom.Anomaly("bounding box", g.Box.Min.X, g.Box.Min.Y, g.Box.Min.Z,
		g.Box.Max.X, g.Box.Max.Y, g.Box.Max.Z); err != nil {
		return err
	}
	if !g.Resolution.Valid() {
		return fmt.Errorf("resolution %v has an empty axis: %w", g.Resolution, geom.ErrNumericAnomaly)
	}
	return nil
}

func (g Grid) String() string {
	return fmt.Sprintf("%v voxels of %g over %v", g.Resolution, g.VoxelSize, g.Box)
}
