package geom

import "fmt"

// Box is an axis-aligned bounding box. Min and Max are inclusive.
type Box struct {
	Min Vector3 `json:"min" yaml:"min"`
	Max Vector3 `json:"max" yaml:"max"`
}

// Bounds returns the smallest Box containing every vertex. The box is
// seeded with the first vertex and widened in a single pass, so a NaN
// coordinate only reaches the result when it belongs to verts[0].
func Bounds(verts []Vector3) (Box, error) {
	if len(verts) == 0 {
		return Box{}, NewInputError("vertices", "at least one vertex required")
	}
	b := Box{Min: verts[0], Max: verts[0]}
	for _, v := range verts[1:] {
		b.Min = b.Min.Min(v)
		b.Max = b.Max.Max(v)
	}
	return b, nil
}

// Size returns the extent of the box along each axis.
func (b Box) Size() Vector3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b Box) Center() Vector3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Volume returns the product of the box extents.
func (b Box) Volume() float64 {
	s := b.Size()
	return s.X * s.Y * s.Z
}

// Contains reports whether p lies inside the box or on its boundary.
func (b Box) Contains(p Vector3) bool {
	return b.Min.X <= p.X && p.X <= b.Max.X &&
		b.Min.Y <= p.Y && p.Y <= b.Max.Y &&
		b.Min.Z <= p.Z && p.Z <= b.Max.Z
}

// Extend returns the box grown to include p.
func (b Box) Extend(p Vector3) Box {
	return Box{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// IsFinite reports whether both corners are finite.
func (b Box) IsFinite() bool {
	return b.Min.IsFinite() && b.Max.IsFinite()
}

func (b Box) String() string {
	return fmt.Sprintf("[%v .. %v]", b.Min, b.Max)
}
