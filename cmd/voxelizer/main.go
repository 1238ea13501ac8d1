// Command voxelizer reports the signed volume and voxel-grid resolution
// of triangle meshes read from OBJ or STL files or built by scene scripts.
//
// Usage:
//
//	voxelizer [flags] volume|grid|report <input.obj|input.stl|input.lisp>
//	voxelizer [flags] export <input> <output.obj|output.stl>
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Wheel2Motor/voxelizer/pkg/config"
	"github.com/Wheel2Motor/voxelizer/pkg/voxelizer"
)

const usage = `usage: voxelizer [flags] <command> <input> [output]

commands:
  volume   signed volume of each mesh
  grid     voxel grid resolution and bounding box of each mesh
  report   both, with mesh statistics and numeric anomalies
  export   write all meshes as one .obj or .stl file to output
           ("-" writes binary STL to stdout)

input is an .obj or .stl mesh file or a .lisp scene script.

flags:
`

var errUsage = errors.New("invalid usage")

func main() {
	log.SetPrefix("voxelizer: ")
	log.SetFlags(0)

	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("voxelizer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	var (
		cfgPath = fs.String("config", "", "settings file (.ini or .toml)")
		size    = fs.Float64("size", 0, "voxel edge length (overrides config)")
		cells   = fs.Int("cells", 0, "marching-cubes cells for scene scripts (overrides config)")
		format  = fs.String("format", "", "output format: text, json or yaml (overrides config)")
		verbose = fs.Bool("v", false, "log progress")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}
	cmd := fs.Arg(0)
	want := 2
	if cmd == "export" {
		want = 3
	}
	if fs.NArg() != want {
		fs.Usage()
		return errUsage
	}
	input := fs.Arg(1)

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			return err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "size":
			cfg.Voxel.Size = *size
		case "cells":
			cfg.Mesh.Cells = *cells
		case "format":
			cfg.Output.Format = *format
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	var write func(io.Writer, []voxelizer.Report, string) error
	switch cmd {
	case "volume":
		write = writeVolumes
	case "grid":
		write = writeGrids
	case "report":
		write = writeReports
	case "export":
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		fs.Usage()
		return errUsage
	}

	app := NewApp(cfg, *verbose)
	meshes, err := app.Load(input)
	if err != nil {
		return err
	}
	if cmd == "export" {
		return app.Export(fs.Arg(2), stdout, meshes)
	}
	reports, err := app.Analyze(meshes)
	if err != nil {
		return err
	}
	return write(stdout, reports, cfg.Output.Format)
}
