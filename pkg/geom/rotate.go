package geom

import "math"

// RotateDeg rotates p about the origin by Euler angles in degrees, first
// about X, then Y, then Z.
func RotateDeg(p, deg Vector3) Vector3 {
	if deg.X != 0 {
		s, c := math.Sincos(deg.X * math.Pi / 180)
		p = Vector3{X: p.X, Y: c*p.Y - s*p.Z, Z: s*p.Y + c*p.Z}
	}
	if deg.Y != 0 {
		s, c := math.Sincos(deg.Y * math.Pi / 180)
		p = Vector3{X: c*p.X + s*p.Z, Y: p.Y, Z: -s*p.X + c*p.Z}
	}
	if deg.Z != 0 {
		s, c := math.Sincos(deg.Z * math.Pi / 180)
		p = Vector3{X: c*p.X - s*p.Y, Y: s*p.X + c*p.Y, Z: p.Z}
	}
	return p
}
