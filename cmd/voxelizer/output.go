package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Wheel2Motor/voxelizer/pkg/config"
	"github.com/Wheel2Motor/voxelizer/pkg/geom"
	"github.com/Wheel2Motor/voxelizer/pkg/voxel"
	"github.com/Wheel2Motor/voxelizer/pkg/voxelizer"
	"gopkg.in/yaml.v3"
)

type volumeRow struct {
	Part   string  `json:"part" yaml:"part"`
	Volume geom.Float `json:"volume" yaml:"volume"`
}

type gridRow struct {
	Part       string           `json:"part" yaml:"part"`
	Resolution voxel.Resolution `json:"resolution" yaml:"resolution"`
	Voxels     uint             `json:"voxels" yaml:"voxels"`
	VoxelSize  float64          `json:"voxel_size" yaml:"voxel_size"`
	Box        geom.Box         `json:"box" yaml:"box"`
}

func writeVolumes(w io.Writer, reports []voxelizer.Report, format string) error {
	rows := make([]volumeRow, len(reports))
	for i, r := range reports {
		rows[i] = volumeRow{Part: r.Part, Volume: geom.Float(r.Volume)}
	}
	return encode(w, format, rows, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "PART\tVOLUME")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%g\n", r.Part, r.Volume)
		}
	})
}

func writeGrids(w io.Writer, reports []voxelizer.Report, format string) error {
	rows := make([]gridRow, len(reports))
	for i, r := range reports {
		rows[i] = gridRow{
			Part:       r.Part,
			Resolution: r.Resolution,
			Voxels:     r.Resolution.Count(),
			VoxelSize:  r.VoxelSize,
			Box:        r.Box,
		}
	}
	return encode(w, format, rows, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "PART\tRESOLUTION\tVOXELS\tMIN\tMAX")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%v\t%d\t%v\t%v\n", r.Part, r.Resolution, r.Voxels, r.Box.Min, r.Box.Max)
		}
	})
}

func writeReports(w io.Writer, reports []voxelizer.Report, format string) error {
	return encode(w, format, reports, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "PART\tVERTICES\tTRIANGLES\tVOLUME\tRESOLUTION\tNOTES")
		for _, r := range reports {
			notes := ""
			if r.Inverted {
				notes = "inverted"
			}
			if len(r.Anomalies) > 0 {
				if notes != "" {
					notes += ", "
				}
				notes += fmt.Sprintf("%d anomalies", len(r.Anomalies))
			}
			fmt.Fprintf(tw, "%s\t%d\t%d\t%g\t%v\t%s\n",
				r.Part, r.Vertices, r.Triangles, r.Volume, r.Resolution, notes)
		}
	})
}

func encode(w io.Writer, format string, v any, text func(*tabwriter.Writer)) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case config.FormatText, "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		text(tw)
		return tw.Flush()
	}
	return fmt.Errorf("unknown output format %q", format)
}
