// Package v3 provides a 3D float64 vector type used for world-space
// coordinates throughout the perforation engine (mesh vertices, grid
// bounds, marching-cubes corners).
package v3

import "math"

// Vec is a 3D vector / point.
type Vec struct {
	X, Y, Z float64
}

// Add returns a + b.
func (a Vec) Add(b Vec) Vec {
	return Vec{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Sub returns a - b.
func (a Vec) Sub(b Vec) Vec {
	return Vec{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// AddScalar returns a + k (applied to every component).
func (a Vec) AddScalar(k float64) Vec {
	return Vec{a.X + k, a.Y + k, a.Z + k}
}

// MulScalar returns a * k.
func (a Vec) MulScalar(k float64) Vec {
	return Vec{a.X * k, a.Y * k, a.Z * k}
}

// DivScalar returns a / k.
func (a Vec) DivScalar(k float64) Vec {
	return Vec{a.X / k, a.Y / k, a.Z / k}
}

// Div returns the elementwise quotient a / b.
func (a Vec) Div(b Vec) Vec {
	return Vec{a.X / b.X, a.Y / b.Y, a.Z / b.Z}
}

// Min returns the elementwise minimum of a and b.
func (a Vec) Min(b Vec) Vec {
	return Vec{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)}
}

// Max returns the elementwise maximum of a and b.
func (a Vec) Max(b Vec) Vec {
	return Vec{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)}
}

// Ceil rounds every component up to the nearest integer.
func (a Vec) Ceil() Vec {
	return Vec{math.Ceil(a.X), math.Ceil(a.Y), math.Ceil(a.Z)}
}

// MaxComponent returns the largest of the three components.
func (a Vec) MaxComponent() float64 {
	return math.Max(a.X, math.Max(a.Y, a.Z))
}

// Length returns the Euclidean norm of a.
func (a Vec) Length() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
}

// Equals reports whether a and b are within tol of each other on every axis.
func (a Vec) Equals(b Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}
