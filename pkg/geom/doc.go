// Package geom defines the value types shared by every voxelizer package:
// Vector3, the axis-aligned Box, and the error taxonomy used to report
// invalid input. All functions are pure and safe for concurrent use.
package geom
