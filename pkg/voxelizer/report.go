package voxelizer

import (
	"encoding/json"
	"fmt"

	"github.com/Wheel2Motor/voxelizer/pkg/geom"
	"github.com/Wheel2Motor/voxelizer/pkg/mesh"
	"github.com/Wheel2Motor/voxelizer/pkg/voxel"
)

// Report summarizes one mesh: its signed volume and the voxel grid sized
// over its bounding box.
type Report struct {
	Part       string           `json:"part" yaml:"part"`
	Vertices   int              `json:"vertices" yaml:"vertices"`
	Triangles  int              `json:"triangles" yaml:"triangles"`
	Volume     float64          `json:"volume" yaml:"volume"`
	Inverted   bool             `json:"inverted" yaml:"inverted"` // negative volume: winding is inward
	Box        geom.Box         `json:"box" yaml:"box"`
	Resolution voxel.Resolution `json:"resolution" yaml:"resolution"`
	VoxelSize  float64          `json:"voxel_size" yaml:"voxel_size"`
	Anomalies  []string         `json:"anomalies,omitempty" yaml:"anomalies,omitempty"`
}

// MarshalJSON writes a non-finite volume as a string so the report,
// anomalies included, still encodes.
func (r Report) MarshalJSON() ([]byte, error) {
	type plain Report
	return json.Marshal(struct {
		plain
		Volume geom.Float `json:"volume"`
	}{plain(r), geom.Float(r.Volume)})
}

func (r *Report) UnmarshalJSON(data []byte) error {
	type plain Report
	aux := struct {
		*plain
		Volume geom.Float `json:"volume"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Volume = float64(aux.Volume)
	return nil
}

// Analyze validates m and computes its Report. Non-finite results are not
// errors; they are listed in Report.Anomalies.
func Analyze(m *mesh.Mesh, voxelSize float64) (Report, error) {
	if m == nil {
		return Report{}, geom.NewInputError("mesh", "must not be nil")
	}
	if err := voxel.CheckSize(voxelSize); err != nil {
		return Report{}, err
	}
	if err := m.Validate(); err != nil {
		return Report{}, fmt.Errorf("%s: %w", partName(m), err)
	}

	vol, err := m.Volume()
	if err != nil {
		return Report{}, fmt.Errorf("%s: volume: %w", partName(m), err)
	}
	grid, err := voxel.GridResolution(m.Vertices, voxelSize)
	if err != nil {
		return Report{}, fmt.Errorf("%s: grid: %w", partName(m), err)
	}

	r := Report{
		Part:       partName(m),
		Vertices:   m.VertexCount(),
		Triangles:  m.TriangleCount(),
		Volume:     vol,
		Inverted:   vol < 0,
		Box:        grid.Box,
		Resolution: grid.Resolution,
		VoxelSize:  voxelSize,
	}
	if err := geom.Anomaly("volume", vol); err != nil {
		r.Anomalies = append(r.Anomalies, err.Error())
	}
	if err := grid.Anomaly(); err != nil {
		r.Anomalies = append(r.Anomalies, err.Error())
	}
	return r, nil
}

// AnalyzeAll analyzes each mesh in order and stops at the first error.
func AnalyzeAll(meshes []*mesh.Mesh, voxelSize float64) ([]Report, error) {
	reports := make([]Report, 0, len(meshes))
	for _, m := range meshes {
		r, err := Analyze(m, voxelSize)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func partName(m *mesh.Mesh) string {
	if m.Name != "" {
		return m.Name
	}
	return "mesh"
}
