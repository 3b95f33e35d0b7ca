package geom

import (
	"math"

	v3 "github.com/MASAGDT/desolidify-web/vec/v3"
)

// epsilon is the default tolerance used when detecting degenerate
// triangles.
const epsilon = 1e-5

// Triangle3 is a triangle described by three world-space vertices, in the
// order produced by the isosurface extractor (front-facing per marching
// cubes winding).
type Triangle3 struct {
	V [3]v3.Vec
}

// Normal returns the (unnormalized) face normal.
func (t *Triangle3) Normal() v3.Vec {
	e0 := t.V[1].Sub(t.V[0])
	e1 := t.V[2].Sub(t.V[0])
	return v3.Vec{
		X: e0.Y*e1.Z - e0.Z*e1.Y,
		Y: e0.Z*e1.X - e0.X*e1.Z,
		Z: e0.X*e1.Y - e0.Y*e1.X,
	}
}

// Degenerate reports whether the triangle has zero (within tol) area, i.e.
// two or more vertices coincide.
func (t *Triangle3) Degenerate(tol float64) bool {
	if tol == 0 {
		tol = epsilon
	}
	if t.V[0].Equals(t.V[1], tol) || t.V[1].Equals(t.V[2], tol) || t.V[2].Equals(t.V[0], tol) {
		return true
	}
	n := t.Normal()
	return n.Length() < tol
}

// Epsilon returns the package's degenerate-triangle tolerance, exposed for
// callers that need the same constant. The marching cubes extractor in
// render keeps its own mcEpsilon of the same value.
func Epsilon() float64 {
	return math.Abs(epsilon)
}
