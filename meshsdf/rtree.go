package meshsdf

import (
	"math"

	"github.com/dhconnelly/rtreego"

	"github.com/MASAGDT/desolidify-web/geom"
	v3 "github.com/MASAGDT/desolidify-web/vec/v3"
)

// boxEpsilon pads a triangle's AABB so rtreego never sees a degenerate
// (zero-thickness) rectangle, which it rejects as invalid.
const boxEpsilon = 1e-6

// neighborCount is how many nearest-AABB candidate triangles are
// exact-distance-checked per query point. The AABB tree narrows a
// mesh-wide scan down to a small candidate set; exact closest-point math
// then picks the true nearest triangle among them.
const neighborCount = 8

// trianglePrimitive is the rtreego.Spatial wrapper around one mesh
// triangle.
type trianglePrimitive struct {
	tri geom.Triangle3
}

func (t *trianglePrimitive) Bounds() *rtreego.Rect {
	min := t.tri.V[0]
	max := t.tri.V[0]
	for _, v := range t.tri.V[1:] {
		min = min.Min(v)
		max = max.Max(v)
	}
	lengths := []float64{
		math.Max(max.X-min.X, boxEpsilon),
		math.Max(max.Y-min.Y, boxEpsilon),
		math.Max(max.Z-min.Z, boxEpsilon),
	}
	rect, err := rtreego.NewRect(rtreego.Point{min.X, min.Y, min.Z}, lengths)
	if err != nil {
		// Only reachable if a length ended up <= 0, which boxEpsilon
		// above prevents; the panic surfaces a real bug in the padding
		// logic rather than silently building a bad tree.
		panic(err)
	}
	return rect
}

// RTreeSampler is the default Sampler: an R-tree over the mesh's triangle
// bounding boxes, with exact point-to-triangle distance computed over the
// small candidate set the tree returns, and sign resolved by the winning
// triangle's face normal (a face-normal approximation of the pseudo-normal
// method the Design Notes mention — see DESIGN.md for the tradeoff).
type RTreeSampler struct {
	tree      *rtreego.Rtree
	triangles []geom.Triangle3
}

// NewRTreeSampler indexes every triangle of mesh into an R-tree.
func NewRTreeSampler(mesh *geom.Mesh) (*RTreeSampler, error) {
	tree := rtreego.NewTree(3, 25, 50)
	triangles := make([]geom.Triangle3, mesh.NumTriangles())
	for i := 0; i < mesh.NumTriangles(); i++ {
		tri := mesh.Triangle(i)
		triangles[i] = tri
		tree.Insert(&trianglePrimitive{tri: tri})
	}
	return &RTreeSampler{tree: tree, triangles: triangles}, nil
}

// Query implements Sampler.
func (s *RTreeSampler) Query(pts []v3.Vec) ([]float32, error) {
	out := make([]float32, len(pts))
	for i, p := range pts {
		out[i] = float32(s.queryOne(p))
	}
	return out, nil
}

func (s *RTreeSampler) queryOne(p v3.Vec) float64 {
	rp := rtreego.Point{p.X, p.Y, p.Z}
	candidates := s.tree.NearestNeighbors(neighborCount, rp)

	bestDist := math.Inf(1)
	var bestTri geom.Triangle3
	found := false
	for _, c := range candidates {
		prim, ok := c.(*trianglePrimitive)
		if !ok {
			continue
		}
		closest := closestPointOnTriangle(p, prim.tri)
		d := p.Sub(closest).Length()
		if d < bestDist {
			bestDist = d
			bestTri = prim.tri
			found = true
		}
	}
	if !found {
		return math.Inf(1)
	}

	closest := closestPointOnTriangle(p, bestTri)
	n := bestTri.Normal()
	toPoint := p.Sub(closest)
	sign := 1.0
	if n.X*toPoint.X+n.Y*toPoint.Y+n.Z*toPoint.Z < 0 {
		sign = -1.0
	}
	return sign * bestDist
}

// closestPointOnTriangle returns the point on triangle t closest to p,
// using the standard barycentric region test (Ericson, "Real-Time
// Collision Detection" section 5.1.5).
func closestPointOnTriangle(p v3.Vec, t geom.Triangle3) v3.Vec {
	a, b, c := t.V[0], t.V[1], t.V[2]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := dot(ab, ap)
	d2 := dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3 := dot(ab, bp)
	d4 := dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.MulScalar(v))
	}

	cp := p.Sub(c)
	d5 := dot(ab, cp)
	d6 := dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.MulScalar(w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).MulScalar(w))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.MulScalar(v)).Add(ac.MulScalar(w))
}

func dot(a, b v3.Vec) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}
