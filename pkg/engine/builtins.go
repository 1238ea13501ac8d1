package engine

import (
	"fmt"
	"strings"

	"github.com/Wheel2Motor/voxelizer/pkg/geom"
	"github.com/Wheel2Motor/voxelizer/pkg/mesh"
	"github.com/Wheel2Motor/voxelizer/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpShape is a node that has been described but not yet added to the
// graph: a primitive, explicit mesh or CSG operation. defpart adds it under
// a name; any other consumer adds it anonymously.
type sexpShape struct {
	kind     scene.NodeKind
	label    string // construction path prefix: "box", "mesh", "union", ...
	data     scene.NodeData
	children []scene.NodeID
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	switch d := s.data.(type) {
	case scene.BoxData:
		return fmt.Sprintf("(box %gx%gx%g)", d.Size.X, d.Size.Y, d.Size.Z)
	case scene.MeshData:
		return fmt.Sprintf("(mesh %d vertices %d triangles)", d.Mesh.VertexCount(), d.Mesh.TriangleCount())
	case scene.CSGData:
		return fmt.Sprintf("(%s %d operands)", d.Op, len(s.children))
	}
	return "(" + s.label + ")"
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef wraps a scene.NodeID already in the graph.
type sexpNodeRef struct {
	id   scene.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a geom.Vector3.
type sexpVec3 struct {
	vec geom.Vector3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string and returns the
// keyword name without its prefix.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			// Trailing keyword with no value: a flag.
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// float returns keyword key as a number, or def when absent.
func (a kwArgs) float(key string, def float64) (float64, error) {
	v, ok := a.kw[key]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toIndex extracts a non-negative integer vertex index.
func toIndex(s zygo.Sexp) (uint, error) {
	v, ok := s.(*zygo.SexpInt)
	if !ok {
		return 0, fmt.Errorf("expected integer index, got %T (%s)", s, s.SexpString(nil))
	}
	if v.Val < 0 {
		return 0, fmt.Errorf("index %d is negative", v.Val)
	}
	return uint(v.Val), nil
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vector3 from a sexpVec3.
func toVec3(s zygo.Sexp) (geom.Vector3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geom.Vector3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Graph builder
// ---------------------------------------------------------------------------

// builder accumulates the graph during one evaluation. Anonymous node IDs
// are numbered per evaluation, so the same source yields the same graph.
type builder struct {
	g     *scene.Graph
	anon  int
	parts []scene.NodeID // defpart nodes in definition order
}

func newBuilder() *builder {
	return &builder{g: scene.New()}
}

func (b *builder) nextPath(prefix string) string {
	b.anon++
	return fmt.Sprintf("%s/_anon_%d", prefix, b.anon)
}

// add inserts a described shape into the graph.
func (b *builder) add(s *sexpShape, name string) scene.NodeID {
	path := s.label + "/" + name
	if name == "" {
		path = b.nextPath(s.label)
	}
	id := scene.NewNodeID(path)
	b.g.AddNode(&scene.Node{
		ID:       id,
		Kind:     s.kind,
		Name:     name,
		Children: s.children,
		Data:     s.data,
	})
	return id
}

// toNodeRef returns the graph node for s, adding pending shapes
// anonymously.
func (b *builder) toNodeRef(s zygo.Sexp) (scene.NodeID, error) {
	switch v := s.(type) {
	case *sexpNodeRef:
		return v.id, nil
	case *sexpShape:
		return b.add(v, ""), nil
	}
	return scene.ZeroID, fmt.Errorf("expected shape or node reference, got %T (%s)", s, s.SexpString(nil))
}

// finish returns the graph. Without any assembly, every defpart is a root.
func (b *builder) finish() *scene.Graph {
	if len(b.g.Roots) == 0 {
		for _, id := range b.parts {
			b.g.AddRoot(id)
		}
	}
	return b.g
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

type builtin = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// registerBuiltins installs the scene builtins into a zygomys environment.
// Source must be preprocessed with preprocessSource so that :keyword
// tokens arrive as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {
	fns := map[string]builtin{
		"vec3":         b.vec3,
		"box":          b.box,
		"cylinder":     b.cylinder,
		"sphere":       b.sphere,
		"mesh":         b.mesh,
		"union":        b.csg(scene.OpUnion),
		"difference":   b.csg(scene.OpDifference),
		"intersection": b.csg(scene.OpIntersection),
		"defpart":      b.defpart,
		"part":         b.part,
		"place":        b.place,
		"assembly":     b.assembly,
	}
	for name, fn := range fns {
		env.AddFunction(name, fn)
	}
}

// (vec3 1 2 3)
func (b *builder) vec3(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
	}
	var xyz [3]float64
	for i, axis := range []string{"x", "y", "z"} {
		f, err := toFloat64(args[i])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
		}
		xyz[i] = f
	}
	return &sexpVec3{vec: geom.Vec(xyz[0], xyz[1], xyz[2])}, nil
}

// (box 10 20 30) or (box :size (vec3 10 20 30))
func (b *builder) box(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	var size geom.Vector3
	switch {
	case len(pa.positional) == 3:
		var xyz [3]float64
		for i, p := range pa.positional {
			f, err := toFloat64(p)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: dimension %d: %w", i+1, err)
			}
			xyz[i] = f
		}
		size = geom.Vec(xyz[0], xyz[1], xyz[2])
	case pa.kw["size"] != nil:
		v, err := toVec3(pa.kw["size"])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: size: %w", err)
		}
		size = v
	default:
		return zygo.SexpNull, fmt.Errorf("box requires 3 dimensions or :size")
	}
	return &sexpShape{kind: scene.NodePrimitive, label: "box", data: scene.BoxData{Size: size}}, nil
}

// (cylinder :height 10 :radius 2)
func (b *builder) cylinder(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	h, err := pa.float("height", 0)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
	}
	r, err := pa.float("radius", 0)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
	}
	return &sexpShape{kind: scene.NodePrimitive, label: "cylinder", data: scene.CylinderData{Height: h, Radius: r}}, nil
}

// (sphere :radius 5)
func (b *builder) sphere(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	r, err := pa.float("radius", 0)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
	}
	return &sexpShape{kind: scene.NodePrimitive, label: "sphere", data: scene.SphereData{Radius: r}}, nil
}

// (mesh :vertices (list (vec3 0 0 0) ...) :faces (list 0 1 2 ...))
//
// Faces may also be given as a list of index triples.
func (b *builder) mesh(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	m := &mesh.Mesh{}

	items, err := sexpListToSlice(pa.kw["vertices"])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("mesh: vertices: %w", err)
	}
	for i, item := range items {
		v, err := toVec3(item)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: vertex %d: %w", i, err)
		}
		m.Vertices = append(m.Vertices, v)
	}

	faces, err := sexpListToSlice(pa.kw["faces"])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("mesh: faces: %w", err)
	}
	for i, f := range faces {
		if _, ok := f.(*zygo.SexpInt); ok {
			idx, err := toIndex(f)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("mesh: face entry %d: %w", i, err)
			}
			m.Indices = append(m.Indices, idx)
			continue
		}
		tri, err := sexpListToSlice(f)
		if err != nil || len(tri) != 3 {
			return zygo.SexpNull, fmt.Errorf("mesh: face entry %d: expected index or index triple", i)
		}
		for _, c := range tri {
			idx, err := toIndex(c)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("mesh: face %d: %w", i, err)
			}
			m.Indices = append(m.Indices, idx)
		}
	}

	if err := m.Validate(); err != nil {
		return zygo.SexpNull, fmt.Errorf("mesh: %w", err)
	}
	return &sexpShape{kind: scene.NodePrimitive, label: "mesh", data: scene.MeshData{Mesh: m}}, nil
}

// (union a b ...), (difference a b ...), (intersection a b ...)
func (b *builder) csg(op scene.CSGOp) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("%s requires at least 2 operands, got %d", op, len(args))
		}
		children := make([]scene.NodeID, 0, len(args))
		for i, a := range args {
			id, err := b.toNodeRef(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: operand %d: %w", op, i+1, err)
			}
			children = append(children, id)
		}
		return &sexpShape{kind: scene.NodeCSG, label: op.String(), data: scene.CSGData{Op: op}, children: children}, nil
	}
}

// (defpart "name" shape)
func (b *builder) defpart(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) < 2 {
		return zygo.SexpNull, fmt.Errorf("defpart requires a name and a body expression")
	}
	partName, err := toString(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("defpart: name: %w", err)
	}
	if partName == "" {
		return zygo.SexpNull, fmt.Errorf("defpart: name must not be empty")
	}
	if b.g.Lookup(partName) != nil {
		return zygo.SexpNull, fmt.Errorf("defpart: %q is already defined", partName)
	}
	body, ok := args[1].(*sexpShape)
	if !ok {
		return zygo.SexpNull, fmt.Errorf("defpart: expected shape expression, got %T (%s)",
			args[1], args[1].SexpString(nil))
	}

	id := b.add(&sexpShape{kind: body.kind, label: "defpart", data: body.data, children: body.children}, partName)
	b.parts = append(b.parts, id)
	return &sexpNodeRef{id: id, name: partName}, nil
}

// (part "name")
func (b *builder) part(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) < 1 {
		return zygo.SexpNull, fmt.Errorf("part requires a name argument")
	}
	partName, err := toString(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
	}
	n := b.g.Lookup(partName)
	if n == nil {
		return zygo.SexpNull, fmt.Errorf("part: no part named %q", partName)
	}
	return &sexpNodeRef{id: n.ID, name: partName}, nil
}

// (place (part "leg") :at (vec3 0 0 19) :rotate (vec3 0 0 90))
func (b *builder) place(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) < 1 {
		return zygo.SexpNull, fmt.Errorf("place requires a part reference as first argument")
	}

	var children []scene.NodeID
	for i, p := range pa.positional {
		id, err := b.toNodeRef(p)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: child %d: %w", i+1, err)
		}
		children = append(children, id)
	}

	td := scene.TransformData{}
	if v, ok := pa.kw["at"]; ok {
		vec, err := toVec3(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: at: %w", err)
		}
		td.Translation = &vec
	}
	if v, ok := pa.kw["rotate"]; ok {
		vec, err := toVec3(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: rotate: %w", err)
		}
		td.Rotation = &vec
	}

	prefix := "place"
	if c := b.g.Get(children[0]); c != nil && c.Name != "" {
		prefix = "place/" + c.Name
	}
	id := scene.NewNodeID(b.nextPath(prefix))
	b.g.AddNode(&scene.Node{
		ID:       id,
		Kind:     scene.NodeTransform,
		Children: children,
		Data:     td,
	})
	return &sexpNodeRef{id: id}, nil
}

// (assembly "name" child ...)
func (b *builder) assembly(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) < 1 {
		return zygo.SexpNull, fmt.Errorf("assembly requires a name argument")
	}
	asmName, err := toString(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("assembly: name: %w", err)
	}
	if b.g.Lookup(asmName) != nil {
		return zygo.SexpNull, fmt.Errorf("assembly: %q is already defined", asmName)
	}

	var children []scene.NodeID
	for i, a := range args[1:] {
		id, err := b.toNodeRef(a)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("assembly: child %d: %w", i+1, err)
		}
		children = append(children, id)
	}

	id := scene.NewNodeID("assembly/" + asmName)
	b.g.AddNode(&scene.Node{
		ID:       id,
		Kind:     scene.NodeGroup,
		Name:     asmName,
		Children: children,
		Data:     scene.GroupData{},
	})
	b.g.AddRoot(id)
	return &sexpNodeRef{id: id, name: asmName}, nil
}
