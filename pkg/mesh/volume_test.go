package mesh

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/Wheel2Motor/voxelizer/pkg/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const volumeTol = 1e-9

// unitCube returns the cube with corners at ±0.5, wound outward.
func unitCube() *Mesh {
	return NewBox(geom.Vec(-0.5, -0.5, -0.5), geom.Vec(0.5, 0.5, 0.5))
}

// triples regroups a flat index buffer.
func triples(flat []uint) [][3]uint {
	out := make([][3]uint, len(flat)/3)
	for i := range out {
		out[i] = [3]uint{flat[i*3], flat[i*3+1], flat[i*3+2]}
	}
	return out
}

// randomSoup returns n random triangles over nv random vertices.
func randomSoup(r *rand.Rand, nv, n int) ([]geom.Vector3, []uint) {
	verts := make([]geom.Vector3, nv)
	for i := range verts {
		verts[i] = geom.Vec(r.Float64()*20-10, r.Float64()*20-10, r.Float64()*20-10)
	}
	idx := make([]uint, n*3)
	for i := range idx {
		idx[i] = uint(r.Intn(nv))
	}
	return verts, idx
}

func TestUnitCubeVolume(t *testing.T) {
	m := unitCube()
	got, err := m.Volume()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, volumeTol)
}

func TestBoxVolumeAwayFromOrigin(t *testing.T) {
	tests := []struct {
		name     string
		min, max geom.Vector3
	}{
		{"positive octant", geom.Vec(1, 2, 3), geom.Vec(4, 6, 8)},
		{"negative octant", geom.Vec(-9, -7, -5), geom.Vec(-8, -6, -1)},
		{"far away", geom.Vec(1000, -2000, 500), geom.Vec(1002, -1999, 503)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewBox(tt.min, tt.max)
			want := geom.Box{Min: tt.min, Max: tt.max}.Volume()
			got, err := m.Volume()
			require.NoError(t, err)
			assert.InDelta(t, want, got, 1e-6*math.Max(1, want))
		})
	}
}

func TestTriplesAndFlatAgreeBitForBit(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		verts, flat := randomSoup(r, 30, 50)
		a, err := SignedVolumeFlat(verts, flat)
		require.NoError(t, err)
		b, err := SignedVolume(verts, triples(flat))
		require.NoError(t, err)
		assert.Equal(t, math.Float64bits(a), math.Float64bits(b), "iteration %d", i)
	}
}

func TestReversedWindingNegatesExactly(t *testing.T) {
	meshes := []*Mesh{unitCube(), NewBox(geom.Vec(0.1, 0.2, 0.3), geom.Vec(1.7, 2.9, 3.1))}
	r := rand.New(rand.NewSource(7))
	verts, idx := randomSoup(r, 12, 40)
	meshes = append(meshes, &Mesh{Vertices: verts, Indices: idx})

	for _, m := range meshes {
		fwd, err := m.Volume()
		require.NoError(t, err)
		rev, err := m.Reversed().Volume()
		require.NoError(t, err)
		assert.Equal(t, -fwd, rev)
	}
}

func TestInwardCubeIsNegative(t *testing.T) {
	got, err := unitCube().Reversed().Volume()
	require.NoError(t, err)
	assert.InDelta(t, -1.0, got, volumeTol)
}

func TestDegenerateTriangles(t *testing.T) {
	verts := []geom.Vector3{geom.Vec(0.3, -1.7, 2.2), geom.Vec(4.1, 0.9, -3.3), geom.Vec(-2.6, 5.5, 0.4)}
	tests := []struct {
		name string
		tri  [3]uint
	}{
		{"first two equal", [3]uint{0, 0, 1}},
		{"last two equal", [3]uint{0, 1, 1}},
		{"outer two equal", [3]uint{2, 1, 2}},
		{"all equal", [3]uint{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SignedVolume(verts, [][3]uint{tt.tri})
			require.NoError(t, err)
			assert.Equal(t, 0.0, got)
		})
	}

	t.Run("coincident distinct vertices", func(t *testing.T) {
		dup := []geom.Vector3{verts[0], verts[1], verts[0]}
		got, err := SignedVolume(dup, [][3]uint{{0, 1, 2}})
		require.NoError(t, err)
		assert.Equal(t, 0.0, got)
	})
}

func TestDegenerateTriangleDoesNotChangeSum(t *testing.T) {
	m := unitCube()
	want, err := m.Volume()
	require.NoError(t, err)

	m.Indices = append(m.Indices, 3, 3, 5)
	got, err := m.Volume()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestZeroFaces(t *testing.T) {
	verts := []geom.Vector3{geom.Vec(1, 2, 3)}

	got, err := SignedVolume(verts, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	got, err = SignedVolumeFlat(verts, []uint{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	got, err = SignedVolumeFlat(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestScenarioTriangle(t *testing.T) {
	a, b, c := geom.Vec(1, 1, -1), geom.Vec(-1, -1, -1), geom.Vec(0, 0, 1)
	want := a.Dot(b.Cross(c)) / 6

	got, err := SignedVolumeFlat([]geom.Vector3{a, b, c}, []uint{0, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 0.0, got)
}

func TestSingleTetraFace(t *testing.T) {
	// Triangle spanning the unit axes: tetrahedron with the origin has
	// volume 1/6, positive for this winding.
	verts := []geom.Vector3{geom.Vec(1, 0, 0), geom.Vec(0, 1, 0), geom.Vec(0, 0, 1)}
	got, err := SignedVolume(verts, [][3]uint{{0, 1, 2}})
	require.NoError(t, err)
	assert.InDelta(t, 1.0/6, got, 1e-15)
}

func TestVolumeInvalidIndices(t *testing.T) {
	verts := []geom.Vector3{{}, geom.Vec(1, 0, 0), geom.Vec(0, 1, 0)}

	t.Run("triples out of range", func(t *testing.T) {
		_, err := SignedVolume(verts, [][3]uint{{0, 1, 2}, {0, 7, 1}})
		require.Error(t, err)
		var ie *geom.InputError
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, 4, ie.Index)
		assert.Contains(t, err.Error(), "triangle 1")
	})

	t.Run("flat out of range", func(t *testing.T) {
		_, err := SignedVolumeFlat(verts, []uint{0, 1, 3})
		require.Error(t, err)
		assert.True(t, errors.Is(err, geom.ErrInvalidInput))
	})

	t.Run("flat length", func(t *testing.T) {
		_, err := SignedVolumeFlat(verts, []uint{0, 1, 2, 0})
		require.Error(t, err)
		assert.True(t, errors.Is(err, geom.ErrInvalidInput))
		assert.Contains(t, err.Error(), "not a multiple of 3")
	})

	t.Run("no vertices", func(t *testing.T) {
		_, err := SignedVolume(nil, [][3]uint{{0, 0, 0}})
		assert.True(t, errors.Is(err, geom.ErrInvalidInput))
	})
}

func TestVolumeNaNPropagates(t *testing.T) {
	m := unitCube()
	verts := make([]geom.Vector3, len(m.Vertices))
	copy(verts, m.Vertices)
	verts[6].Y = math.NaN()

	got, err := SignedVolumeFlat(verts, m.Indices)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got))
	assert.ErrorIs(t, geom.Anomaly("volume", got), geom.ErrNumericAnomaly)
}

func TestCoincidentCornersMaskNonFinite(t *testing.T) {
	tests := []struct {
		name string
		bad  float64
	}{
		{"nan", math.NaN()},
		{"inf", math.Inf(1)},
		{"negative inf", math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verts := []geom.Vector3{geom.Vec(1, 2, 3), geom.Vec(tt.bad, 0, 0)}
			got, err := SignedVolume(verts, [][3]uint{{0, 0, 1}})
			require.NoError(t, err)
			assert.Equal(t, 0.0, got)
			assert.Equal(t, 0.0, TetraVolume(verts[1], verts[0], verts[0]))

			// Without the coincident pair the non-finite corner propagates.
			verts = append(verts, geom.Vec(0, 1, 0))
			got, err = SignedVolume(verts, [][3]uint{{0, 2, 1}})
			require.NoError(t, err)
			assert.True(t, math.IsNaN(got))
		})
	}
}

func TestVolumeDoesNotMutateInput(t *testing.T) {
	m := unitCube()
	verts := append([]geom.Vector3(nil), m.Vertices...)
	idx := append([]uint(nil), m.Indices...)

	_, err := m.Volume()
	require.NoError(t, err)
	assert.Equal(t, verts, m.Vertices)
	assert.Equal(t, idx, m.Indices)
}

func BenchmarkSignedVolume(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	verts, idx := randomSoup(r, 10000, 20000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := SignedVolumeFlat(verts, idx); err != nil {
			b.Fatal(err)
		}
	}
}
