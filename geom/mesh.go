package geom

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	v3 "github.com/MASAGDT/desolidify-web/vec/v3"
)

// Mesh is a closed triangle mesh: a vertex array and a face array of
// vertex indices. It is the shared representation between the mesh
// loader, the perforation engine and the isosurface extractor.
type Mesh struct {
	Vertices []v3.Vec
	Faces    [][3]int
}

// NewMesh returns an empty mesh.
func NewMesh() *Mesh {
	return &Mesh{}
}

// NumTriangles returns the number of faces.
func (m *Mesh) NumTriangles() int {
	return len(m.Faces)
}

// Triangle returns the i'th face as a Triangle3.
func (m *Mesh) Triangle(i int) Triangle3 {
	f := m.Faces[i]
	return Triangle3{V: [3]v3.Vec{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}}
}

// Append concatenates other's vertices and faces onto m, re-basing other's
// face indices by the current vertex count. This is how a multi-geometry
// container (a 3MF build with several objects) is flattened into one
// triangle mesh (spec §4.2).
func (m *Mesh) Append(other *Mesh) {
	base := len(m.Vertices)
	m.Vertices = append(m.Vertices, other.Vertices...)
	for _, f := range other.Faces {
		m.Faces = append(m.Faces, [3]int{f[0] + base, f[1] + base, f[2] + base})
	}
}

// Bounds returns the mesh's axis-aligned bounding box.
//
// Copies each axis's coordinates out of the vertex slice into a flat
// slice, then uses gonum/floats.Min and floats.Max for the per-axis
// reduction rather than a hand-rolled loop.
func (m *Mesh) Bounds() Box3 {
	if len(m.Vertices) == 0 {
		return Box3{}
	}
	xs := make([]float64, len(m.Vertices))
	ys := make([]float64, len(m.Vertices))
	zs := make([]float64, len(m.Vertices))
	for i, v := range m.Vertices {
		xs[i], ys[i], zs[i] = v.X, v.Y, v.Z
	}
	min := v3.Vec{X: floats.Min(xs), Y: floats.Min(ys), Z: floats.Min(zs)}
	max := v3.Vec{X: floats.Max(xs), Y: floats.Max(ys), Z: floats.Max(zs)}
	return Box3{Min: min, Max: max}
}

// Centroid returns the mean of the mesh's vertex positions.
//
// Uses gonum/stat.Mean rather than a hand-rolled sum/len, matching the way
// the bounding box reduction above leans on gonum for per-axis folds.
func (m *Mesh) Centroid() v3.Vec {
	if len(m.Vertices) == 0 {
		return v3.Vec{}
	}
	xs := make([]float64, len(m.Vertices))
	ys := make([]float64, len(m.Vertices))
	zs := make([]float64, len(m.Vertices))
	for i, v := range m.Vertices {
		xs[i], ys[i], zs[i] = v.X, v.Y, v.Z
	}
	return v3.Vec{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil), Z: stat.Mean(zs, nil)}
}

// RemoveUnreferencedVertices drops any vertex that no face points at, and
// re-bases the remaining face indices. Required post-load step (spec
// §4.2) and post-marching-cubes step (spec §4.7).
func (m *Mesh) RemoveUnreferencedVertices() {
	used := make([]bool, len(m.Vertices))
	for _, f := range m.Faces {
		used[f[0]] = true
		used[f[1]] = true
		used[f[2]] = true
	}
	remap := make([]int, len(m.Vertices))
	kept := make([]v3.Vec, 0, len(m.Vertices))
	for i, u := range used {
		if u {
			remap[i] = len(kept)
			kept = append(kept, m.Vertices[i])
		} else {
			remap[i] = -1
		}
	}
	for i, f := range m.Faces {
		m.Faces[i] = [3]int{remap[f[0]], remap[f[1]], remap[f[2]]}
	}
	m.Vertices = kept
}

// FixNormals attempts to re-orient every face so that its normal points
// away from the mesh centroid. This is a cheap, non-robust heuristic (not
// a true consistent-orientation propagation); failures are tolerated by
// the caller (spec §4.7 "tolerate failure — non-fatal").
func (m *Mesh) FixNormals() error {
	if len(m.Faces) == 0 {
		return nil
	}
	c := m.Centroid()
	for i, f := range m.Faces {
		t := m.Triangle(i)
		n := t.Normal()
		toFace := t.V[0].Sub(c)
		if n.X*toFace.X+n.Y*toFace.Y+n.Z*toFace.Z < 0 {
			m.Faces[i] = [3]int{f[1], f[0], f[2]}
		}
	}
	return nil
}
