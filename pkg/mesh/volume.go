package mesh

import "github.com/Wheel2Motor/voxelizer/pkg/geom"

// SignedVolume returns the signed volume enclosed by the triangles in tris.
//
// Each triangle (A, B, C) contributes the signed volume of the tetrahedron it
// forms with the origin, dot(A, cross(B, C)) / 6, summed in input order. For
// a closed mesh wound counter-clockwise when seen from outside the result is
// the enclosed volume; reversed winding negates it. Closedness is not
// checked: an open mesh yields its signed flux through the origin cone.
// Degenerate triangles contribute exactly zero. Zero triangles yield zero.
func SignedVolume(verts []geom.Vector3, tris [][3]uint) (float64, error) {
	if err := checkTriples(len(verts), tris); err != nil {
		return 0, err
	}
	return accumulate(verts, len(tris), func(i int) (uint, uint, uint) {
		t := tris[i]
		return t[0], t[1], t[2]
	}), nil
}

// SignedVolumeFlat is SignedVolume over a flat face-index list, where the
// face count is len(faces)/3. Given the same faces in the same order it
// returns bit-for-bit the same value as SignedVolume.
func SignedVolumeFlat(verts []geom.Vector3, faces []uint) (float64, error) {
	if err := checkFlat(len(verts), faces); err != nil {
		return 0, err
	}
	return accumulate(verts, len(faces)/3, func(i int) (uint, uint, uint) {
		return faces[i*3], faces[i*3+1], faces[i*3+2]
	}), nil
}

// TetraVolume returns the signed volume of the tetrahedron (origin, a, b, c).
// A triangle with two coincident corners yields exactly zero; the triple
// product alone can leave a rounding residue when a equals b or c. The
// zero takes precedence over NaN or infinite coordinates in the third
// corner, so such a face never turns the sum into NaN.
func TetraVolume(a, b, c geom.Vector3) float64 {
	if a == b || b == c || a == c {
		return 0
	}
	return a.Dot(b.Cross(c)) / 6
}

// accumulate sums tetrahedral contributions. Indices must already be valid.
func accumulate(verts []geom.Vector3, n int, face func(int) (uint, uint, uint)) float64 {
	var sum float64
	for i := 0; i < n; i++ {
		a, b, c := face(i)
		sum += TetraVolume(verts[a], verts[b], verts[c])
	}
	return sum
}
