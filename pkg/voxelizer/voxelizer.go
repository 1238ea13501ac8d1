// Package voxelizer exposes the three mesh computations as plain functions:
// signed volume over a triangle list, the same over a legacy flat face
// list, and voxel-grid resolution with its bounding box. Every function is
// pure, reads its inputs without modifying them, and may be called
// concurrently.
package voxelizer

import (
	"github.com/Wheel2Motor/voxelizer/pkg/geom"
	"github.com/Wheel2Motor/voxelizer/pkg/mesh"
	"github.com/Wheel2Motor/voxelizer/pkg/voxel"
)

// Volume returns the signed volume enclosed by the triangles tris over verts.
// Outward counter-clockwise winding yields a positive result.
func Volume(verts []geom.Vector3, tris [][3]uint) (float64, error) {
	return mesh.SignedVolume(verts, tris)
}

// VolumeLegacy returns the signed volume of a flat face-index list whose
// length is three times the face count. It agrees bit-for-bit with Volume.
func VolumeLegacy(verts []geom.Vector3, faces []uint) (float64, error) {
	return mesh.SignedVolumeFlat(verts, faces)
}

// GridResolution returns the voxel counts per axis for cubes of edge
// voxelSize over the bounding box of verts, together with that box.
func GridResolution(verts []geom.Vector3, voxelSize float64) (voxel.Grid, error) {
	return voxel.GridResolution(verts, voxelSize)
}
