package meshio

import (
	"fmt"
	"os"

	"github.com/hpinc/go3mf"

	"github.com/MASAGDT/desolidify-web/errs"
	"github.com/MASAGDT/desolidify-web/geom"
	v3 "github.com/MASAGDT/desolidify-web/vec/v3"
)

// Load3MFFile reads a 3MF package and concatenates every build item's
// mesh into a single geom.Mesh (spec §4.2: "a container of multiple
// geometries is accepted and treated as their concatenation"), applying
// each item's placement transform before merging.
func Load3MFFile(path string) (*geom.Mesh, error) {
	var model go3mf.Model
	reader, err := go3mf.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("meshio: open 3MF %s: %w", path, err)
	}
	defer reader.Close()
	if err := reader.Decode(&model); err != nil {
		return nil, fmt.Errorf("meshio: decode 3MF %s: %w", path, err)
	}

	out := geom.NewMesh()
	for _, item := range model.Build.Items {
		obj, ok := findObject(&model, item.ObjectID)
		if !ok || obj.Mesh == nil {
			continue
		}
		part := meshFromObject(obj, item.Transform)
		out.Append(part)
	}
	out.RemoveUnreferencedVertices()
	if out.NumTriangles() == 0 {
		return nil, errs.New(errs.KindEmptyGeometry, "3MF contained no triangles")
	}
	return out, nil
}

func findObject(model *go3mf.Model, id uint32) (*go3mf.Object, bool) {
	for _, res := range model.Resources.Objects {
		if res.ID == id {
			return res, true
		}
	}
	return nil, false
}

// meshFromObject converts a single 3MF object's mesh into a geom.Mesh,
// transforming every vertex by xform (the identity matrix if the build
// item carried none).
func meshFromObject(obj *go3mf.Object, xform go3mf.Matrix) *geom.Mesh {
	m := geom.NewMesh()
	m.Vertices = make([]v3.Vec, len(obj.Mesh.Vertices.Vertex))
	for i, v := range obj.Mesh.Vertices.Vertex {
		m.Vertices[i] = applyMatrix(xform, v3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])})
	}
	m.Faces = make([][3]int, 0, len(obj.Mesh.Triangles.Triangle))
	for _, tri := range obj.Mesh.Triangles.Triangle {
		m.Faces = append(m.Faces, [3]int{int(tri.V1), int(tri.V2), int(tri.V3)})
	}
	return m
}

// applyMatrix applies a 3MF 4x4 row-major affine transform (or the
// identity, if xform is the zero value) to a point.
func applyMatrix(xform go3mf.Matrix, p v3.Vec) v3.Vec {
	if xform == (go3mf.Matrix{}) {
		return p
	}
	x := xform[0]*float32(p.X) + xform[4]*float32(p.Y) + xform[8]*float32(p.Z) + xform[12]
	y := xform[1]*float32(p.X) + xform[5]*float32(p.Y) + xform[9]*float32(p.Z) + xform[13]
	z := xform[2]*float32(p.X) + xform[6]*float32(p.Y) + xform[10]*float32(p.Z) + xform[14]
	return v3.Vec{X: float64(x), Y: float64(y), Z: float64(z)}
}

// LoadAny dispatches on file extension between the STL and 3MF loaders
// (spec §4.2's single mesh-loading entry point).
func LoadAny(path string) (*geom.Mesh, error) {
	ext := extOf(path)
	switch ext {
	case ".3mf":
		return Load3MFFile(path)
	case ".stl":
		return LoadSTLFile(path)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("meshio: read %s: %w", path, err)
		}
		return LoadSTLBytes(data)
	}
}

func extOf(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return toLowerASCII(path[i:])
		}
	}
	return ""
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
