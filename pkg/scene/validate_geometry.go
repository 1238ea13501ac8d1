package scene

import (
	"fmt"
	"math"
)

// validateGeometry checks node payloads: dimensions, explicit meshes, CSG
// operands and empty groups.
func validateGeometry(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, id := range sortedIDs(g) {
		errs = append(errs, validateNode(g, g.Nodes[id])...)
	}
	return errs
}

func validateNode(g *Graph, n *Node) []ValidationError {
	fail := func(sev ValidationSeverity, format string, args ...any) []ValidationError {
		return []ValidationError{{NodeID: n.ID, Message: fmt.Sprintf(format, args...), Severity: sev}}
	}

	switch d := n.Data.(type) {
	case BoxData:
		var errs []ValidationError
		for i, axis := range []string{"X", "Y", "Z"} {
			if v := d.Size.Axis(i); !positive(v) {
				errs = append(errs, fail(SeverityError, "box dimension %s is %.4f, must be positive", axis, v)...)
			}
		}
		return errs
	case CylinderData:
		if !positive(d.Height) || !positive(d.Radius) {
			return fail(SeverityError, "cylinder height %.4f and radius %.4f must be positive", d.Height, d.Radius)
		}
	case SphereData:
		if !positive(d.Radius) {
			return fail(SeverityError, "sphere radius is %.4f, must be positive", d.Radius)
		}
	case MeshData:
		if d.Mesh == nil || d.Mesh.IsEmpty() {
			return fail(SeverityError, "mesh has no vertices")
		}
		if err := d.Mesh.Validate(); err != nil {
			return fail(SeverityError, "mesh: %v", err)
		}
		if d.Mesh.TriangleCount() == 0 {
			return fail(SeverityWarning, "mesh has no faces")
		}
		if vol, err := d.Mesh.Volume(); err == nil && vol < 0 {
			return fail(SeverityWarning, "mesh encloses negative volume %.4g (inward winding)", vol)
		}
	case CSGData:
		if len(n.Children) < 2 {
			return fail(SeverityError, "%s needs at least 2 operands, got %d", d.Op, len(n.Children))
		}
		for _, c := range g.Children(n) {
			if hasMesh(g, c) {
				return fail(SeverityError, "%s operand %q contains an explicit mesh", d.Op, c.DisplayName())
			}
		}
	case GroupData:
		if len(n.Children) == 0 {
			return fail(SeverityWarning, "group %q is empty", n.DisplayName())
		}
	case TransformData:
		if len(n.Children) == 0 {
			return fail(SeverityWarning, "placement has nothing to place")
		}
	}
	return nil
}

// hasMesh reports whether an explicit mesh appears at or below n.
// Cycles are reported by validateDAG; seen stops the walk on them.
func hasMesh(g *Graph, n *Node) bool {
	seen := make(map[NodeID]bool)
	var walk func(*Node) bool
	walk = func(n *Node) bool {
		if seen[n.ID] {
			return false
		}
		seen[n.ID] = true
		if _, ok := n.Data.(MeshData); ok {
			return true
		}
		for _, c := range g.Children(n) {
			if walk(c) {
				return true
			}
		}
		return false
	}
	return walk(n)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
