package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Wheel2Motor/voxelizer/pkg/config"
	"github.com/Wheel2Motor/voxelizer/pkg/engine"
	"github.com/Wheel2Motor/voxelizer/pkg/kernel"
	"github.com/Wheel2Motor/voxelizer/pkg/kernel/sdfx"
	"github.com/Wheel2Motor/voxelizer/pkg/mesh"
	"github.com/Wheel2Motor/voxelizer/pkg/meshio"
	"github.com/Wheel2Motor/voxelizer/pkg/scene"
	"github.com/Wheel2Motor/voxelizer/pkg/tessellate"
	"github.com/Wheel2Motor/voxelizer/pkg/voxelizer"
)

// App turns an input file into meshes and analyzes them.
type App struct {
	cfg     config.Config
	engine  *engine.Engine
	kernel  kernel.Kernel
	verbose bool
}

// NewApp creates an App with an engine and the sdfx kernel configured
// from cfg.
func NewApp(cfg config.Config, verbose bool) *App {
	e := engine.NewEngine()
	e.Timeout = cfg.Engine.Timeout.Duration
	return &App{
		cfg:     cfg,
		engine:  e,
		kernel:  sdfx.New(cfg.Mesh.Cells),
		verbose: verbose,
	}
}

func (a *App) logf(format string, args ...any) {
	if a.verbose {
		log.Printf(format, args...)
	}
}

// Load returns the meshes described by path. Scene scripts (.lisp) are
// evaluated and tessellated; anything else is read as a mesh file.
func (a *App) Load(path string) ([]*mesh.Mesh, error) {
	if strings.EqualFold(filepath.Ext(path), ".lisp") {
		source, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		meshes, err := a.Evaluate(string(source))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return meshes, nil
	}

	m, err := meshio.Load(path)
	if err != nil {
		return nil, err
	}
	a.logf("read %s: %d vertices, %d triangles", path, m.VertexCount(), m.TriangleCount())
	return []*mesh.Mesh{m}, nil
}

// Evaluate takes scene script source and returns one mesh per part.
func (a *App) Evaluate(source string) ([]*mesh.Mesh, error) {
	// Step 1: Evaluate the script into a scene graph.
	g, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		errs := make([]error, len(evalErrs))
		for i, e := range evalErrs {
			errs[i] = e
		}
		return nil, errors.Join(errs...)
	}

	// Step 2: Reject graphs that cannot be tessellated.
	res := scene.ValidateAll(g)
	for _, w := range res.Warnings {
		log.Printf("warning: %v", w)
	}
	if !res.OK() {
		errs := make([]error, len(res.Errors))
		for i, e := range res.Errors {
			errs[i] = e
		}
		return nil, errors.Join(errs...)
	}
	a.logf("scene: %d nodes, %d roots", g.NodeCount(), len(g.Roots))

	// Step 3: Tessellate the scene into triangle meshes.
	meshes, err := tessellate.Tessellate(g, a.kernel)
	if err != nil {
		return nil, err
	}
	for _, m := range meshes {
		a.logf("part %s: %d vertices, %d triangles", m.Name, m.VertexCount(), m.TriangleCount())
	}
	return meshes, nil
}

// Analyze computes a report for each mesh at the configured voxel size.
func (a *App) Analyze(meshes []*mesh.Mesh) ([]voxelizer.Report, error) {
	reports, err := voxelizer.AnalyzeAll(meshes, a.cfg.Voxel.Size)
	if err != nil {
		return nil, err
	}
	for _, r := range reports {
		for _, an := range r.Anomalies {
			log.Printf("%s: %s", r.Part, an)
		}
	}
	return reports, nil
}

// Export writes meshes to path as a single mesh named after the file. A
// path of "-" writes binary STL to stdout.
func (a *App) Export(path string, stdout io.Writer, meshes []*mesh.Mesh) error {
	if path == "-" {
		return meshio.WriteSTL(stdout, mesh.Merge("", meshes...))
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m := mesh.Merge(name, meshes...)
	if err := meshio.Save(path, m); err != nil {
		return err
	}
	a.logf("wrote %s: %d vertices, %d triangles", path, m.VertexCount(), m.TriangleCount())
	return nil
}
