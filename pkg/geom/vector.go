package geom

import (
	"fmt"
	"math"
)

// Vector3 is a point or direction in 3D space.
type Vector3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Vec returns the vector (x, y, z).
func Vec(x, y, z float64) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// Add returns a + b.
func (a Vector3) Add(b Vector3) Vector3 {
	return Vector3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Sub returns a - b.
func (a Vector3) Sub(b Vector3) Vector3 {
	return Vector3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// Mul returns the componentwise product of a and b.
func (a Vector3) Mul(b Vector3) Vector3 {
	return Vector3{a.X * b.X, a.Y * b.Y, a.Z * b.Z}
}

// Div returns the componentwise quotient of a and b.
func (a Vector3) Div(b Vector3) Vector3 {
	return Vector3{a.X / b.X, a.Y / b.Y, a.Z / b.Z}
}

// Scale returns a * k.
func (a Vector3) Scale(k float64) Vector3 {
	return Vector3{a.X * k, a.Y * k, a.Z * k}
}

// Dot returns the dot product of a and b.
func (a Vector3) Dot(b Vector3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross returns the cross product a × b.
func (a Vector3) Cross(b Vector3) Vector3 {
	return Vector3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Length returns the Euclidean norm of a.
func (a Vector3) Length() float64 {
	return math.Sqrt(a.Dot(a))
}

// Dist returns the Euclidean distance between a and b.
func (a Vector3) Dist(b Vector3) float64 {
	return a.Sub(b).Length()
}

// Min returns the componentwise minimum of a and b. A NaN component in b
// never replaces the corresponding component of a.
func (a Vector3) Min(b Vector3) Vector3 {
	if b.X < a.X {
		a.X = b.X
	}
	if b.Y < a.Y {
		a.Y = b.Y
	}
	if b.Z < a.Z {
		a.Z = b.Z
	}
	return a
}

// Max returns the componentwise maximum of a and b. A NaN component in b
// never replaces the corresponding component of a.
func (a Vector3) Max(b Vector3) Vector3 {
	if b.X > a.X {
		a.X = b.X
	}
	if b.Y > a.Y {
		a.Y = b.Y
	}
	if b.Z > a.Z {
		a.Z = b.Z
	}
	return a
}

// Axis returns component i (0 = X, 1 = Y, 2 = Z).
func (a Vector3) Axis(i int) float64 {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	case 2:
		return a.Z
	}
	panic(fmt.Sprintf("geom: axis %d out of range", i))
}

// HasNaN reports whether any component is NaN.
func (a Vector3) HasNaN() bool {
	return math.IsNaN(a.X) || math.IsNaN(a.Y) || math.IsNaN(a.Z)
}

// IsFinite reports whether every component is neither NaN nor infinite.
func (a Vector3) IsFinite() bool {
	return isFinite(a.X) && isFinite(a.Y) && isFinite(a.Z)
}

func (a Vector3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", a.X, a.Y, a.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
