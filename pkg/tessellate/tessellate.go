// Package tessellate walks a scene graph and produces triangle meshes.
// One mesh is produced per primitive or CSG node reached from the roots.
package tessellate

import (
	"fmt"

	"github.com/Wheel2Motor/voxelizer/pkg/geom"
	"github.com/Wheel2Motor/voxelizer/pkg/kernel"
	"github.com/Wheel2Motor/voxelizer/pkg/mesh"
	"github.com/Wheel2Motor/voxelizer/pkg/scene"
)

// transformStack holds the placements between a root and the current node,
// outermost first.
type transformStack struct {
	frames []scene.TransformData
}

func (ts *transformStack) push(td scene.TransformData) {
	ts.frames = append(ts.frames, td)
}

func (ts *transformStack) pop() {
	if len(ts.frames) > 0 {
		ts.frames = ts.frames[:len(ts.frames)-1]
	}
}

// applySolid places s by every frame, innermost first.
func (ts *transformStack) applySolid(k kernel.Kernel, s kernel.Solid) kernel.Solid {
	for i := len(ts.frames) - 1; i >= 0; i-- {
		s = placeSolid(k, s, ts.frames[i])
	}
	return s
}

// applyMesh returns a copy of m placed by every frame, innermost first.
func (ts *transformStack) applyMesh(m *mesh.Mesh) *mesh.Mesh {
	frames := ts.frames
	return m.Transform(func(p geom.Vector3) geom.Vector3 {
		for i := len(frames) - 1; i >= 0; i-- {
			p = frames[i].Apply(p)
		}
		return p
	})
}

func placeSolid(k kernel.Kernel, s kernel.Solid, td scene.TransformData) kernel.Solid {
	if td.Rotation != nil && *td.Rotation != (geom.Vector3{}) {
		s = k.Rotate(s, *td.Rotation)
	}
	if td.Translation != nil && *td.Translation != (geom.Vector3{}) {
		s = k.Translate(s, *td.Translation)
	}
	return s
}

// Tessellate walks the scene graph from its roots and returns one named
// mesh per primitive or CSG node, in traversal order. Analytic solids are
// meshed by k; explicit meshes are only placed. The graph is only read.
func Tessellate(g *scene.Graph, k kernel.Kernel) ([]*mesh.Mesh, error) {
	if g == nil {
		return nil, nil
	}

	var meshes []*mesh.Mesh
	ts := &transformStack{}
	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		collected, err := walkNode(g, k, root, ts)
		if err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", root.DisplayName(), err)
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}

func walkNode(g *scene.Graph, k kernel.Kernel, n *scene.Node, ts *transformStack) ([]*mesh.Mesh, error) {
	switch n.Kind {
	case scene.NodePrimitive:
		return handlePrimitive(k, n, ts)
	case scene.NodeCSG:
		return handleCSG(g, k, n, ts)
	case scene.NodeTransform:
		return handleTransform(g, k, n, ts)
	case scene.NodeGroup:
		return handleGroup(g, k, n, ts)
	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

func handlePrimitive(k kernel.Kernel, n *scene.Node, ts *transformStack) ([]*mesh.Mesh, error) {
	if md, ok := n.Data.(scene.MeshData); ok {
		if md.Mesh == nil {
			return nil, fmt.Errorf("mesh node %s has no mesh", n.DisplayName())
		}
		m := ts.applyMesh(md.Mesh)
		m.Name = n.DisplayName()
		return []*mesh.Mesh{m}, nil
	}

	solid, err := primitiveSolid(k, n)
	if err != nil {
		return nil, err
	}
	return meshSolid(k, n, ts.applySolid(k, solid))
}

func handleCSG(g *scene.Graph, k kernel.Kernel, n *scene.Node, ts *transformStack) ([]*mesh.Mesh, error) {
	solid, err := buildSolid(g, k, n, &transformStack{})
	if err != nil {
		return nil, err
	}
	return meshSolid(k, n, ts.applySolid(k, solid))
}

func meshSolid(k kernel.Kernel, n *scene.Node, s kernel.Solid) ([]*mesh.Mesh, error) {
	m, err := k.ToMesh(s)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for node %s: %w", n.DisplayName(), err)
	}
	m.Name = n.DisplayName()
	return []*mesh.Mesh{m}, nil
}

// primitiveSolid creates the kernel solid for an analytic primitive.
func primitiveSolid(k kernel.Kernel, n *scene.Node) (kernel.Solid, error) {
	var (
		s   kernel.Solid
		err error
	)
	switch d := n.Data.(type) {
	case scene.BoxData:
		s, err = k.Box(d.Size.X, d.Size.Y, d.Size.Z)
	case scene.CylinderData:
		s, err = k.Cylinder(d.Height, d.Radius)
	case scene.SphereData:
		s, err = k.Sphere(d.Radius)
	default:
		return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.DisplayName(), n.Data)
	}
	if err != nil {
		return nil, fmt.Errorf("primitive node %s: %w", n.DisplayName(), err)
	}
	return s, nil
}

// buildSolid folds the subtree under n into one kernel solid. Groups below
// a CSG node union their children.
func buildSolid(g *scene.Graph, k kernel.Kernel, n *scene.Node, ts *transformStack) (kernel.Solid, error) {
	switch n.Kind {
	case scene.NodePrimitive:
		s, err := primitiveSolid(k, n)
		if err != nil {
			return nil, err
		}
		return ts.applySolid(k, s), nil

	case scene.NodeTransform:
		td, ok := n.Data.(scene.TransformData)
		if !ok {
			return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.DisplayName(), n.Data)
		}
		ts.push(td)
		defer ts.pop()
		return foldChildren(g, k, n, ts, k.Union)

	case scene.NodeGroup:
		return foldChildren(g, k, n, ts, k.Union)

	case scene.NodeCSG:
		cd, ok := n.Data.(scene.CSGData)
		if !ok {
			return nil, fmt.Errorf("csg node %s has unexpected data type %T", n.DisplayName(), n.Data)
		}
		switch cd.Op {
		case scene.OpUnion:
			return foldChildren(g, k, n, ts, k.Union)
		case scene.OpDifference:
			return foldChildren(g, k, n, ts, k.Difference)
		case scene.OpIntersection:
			return foldChildren(g, k, n, ts, k.Intersection)
		}
		return nil, fmt.Errorf("csg node %s has unknown op %v", n.DisplayName(), cd.Op)

	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

func foldChildren(g *scene.Graph, k kernel.Kernel, n *scene.Node, ts *transformStack,
	op func(a, b kernel.Solid) kernel.Solid) (kernel.Solid, error) {
	var acc kernel.Solid
	for _, child := range g.Children(n) {
		s, err := buildSolid(g, k, child, ts)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = s
		} else {
			acc = op(acc, s)
		}
	}
	if acc == nil {
		return nil, fmt.Errorf("%s node %s has no operands", n.Kind, n.DisplayName())
	}
	return acc, nil
}

// handleTransform pushes the transform, recurses into children, then pops.
func handleTransform(g *scene.Graph, k kernel.Kernel, n *scene.Node, ts *transformStack) ([]*mesh.Mesh, error) {
	td, ok := n.Data.(scene.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.DisplayName(), n.Data)
	}
	ts.push(td)
	defer ts.pop()
	return walkChildren(g, k, n, ts)
}

// handleGroup recurses into children transparently.
func handleGroup(g *scene.Graph, k kernel.Kernel, n *scene.Node, ts *transformStack) ([]*mesh.Mesh, error) {
	return walkChildren(g, k, n, ts)
}

func walkChildren(g *scene.Graph, k kernel.Kernel, n *scene.Node, ts *transformStack) ([]*mesh.Mesh, error) {
	var meshes []*mesh.Mesh
	for _, child := range g.Children(n) {
		collected, err := walkNode(g, k, child, ts)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}
