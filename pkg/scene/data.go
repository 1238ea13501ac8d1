package scene

import (
	"github.com/Wheel2Motor/voxelizer/pkg/geom"
	"github.com/Wheel2Motor/voxelizer/pkg/mesh"
)

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// BoxData is an axis-aligned box with its minimum corner at the origin.
type BoxData struct {
	Size geom.Vector3 `json:"size"`
}

func (BoxData) nodeData() {}

// CylinderData is a Z-aligned cylinder centered on the origin.
type CylinderData struct {
	Height float64 `json:"height"`
	Radius float64 `json:"radius"`
}

func (CylinderData) nodeData() {}

// SphereData is a sphere centered on the origin.
type SphereData struct {
	Radius float64 `json:"radius"`
}

func (SphereData) nodeData() {}

// MeshData is an explicit triangle mesh given by vertices and faces.
// It is passed through tessellation unchanged apart from placement.
type MeshData struct {
	Mesh *mesh.Mesh `json:"mesh"`
}

func (MeshData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData places its children. Rotation is applied before
// translation. Created by the (place ...) form.
type TransformData struct {
	Translation *geom.Vector3 `json:"translation,omitempty"`
	Rotation    *geom.Vector3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// Apply maps p through the rotation and then the translation.
func (td TransformData) Apply(p geom.Vector3) geom.Vector3 {
	if td.Rotation != nil {
		p = geom.RotateDeg(p, *td.Rotation)
	}
	if td.Translation != nil {
		p = p.Add(*td.Translation)
	}
	return p
}

// ---------------------------------------------------------------------------
// CSG
// ---------------------------------------------------------------------------

// CSGOp selects the boolean operation of a CSG node.
type CSGOp int

const (
	OpUnion CSGOp = iota
	OpDifference   // first child minus the rest
	OpIntersection
)

func (op CSGOp) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpDifference:
		return "difference"
	case OpIntersection:
		return "intersection"
	default:
		return "unknown"
	}
}

// CSGData combines its children, in order, into a single solid.
type CSGData struct {
	Op CSGOp `json:"op"`
}

func (CSGData) nodeData() {}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData is a logical grouping. Created by the (assembly ...) form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
