package meshio

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MASAGDT/desolidify-web/errs"
	v3 "github.com/MASAGDT/desolidify-web/vec/v3"
)

func buildBinarySTL(tris [][3][3]float32) []byte {
	buf := &bytes.Buffer{}
	var header [80]byte
	buf.Write(header[:])
	binary.Write(buf, binary.LittleEndian, uint32(len(tris)))
	for _, t := range tris {
		var n [3]float32
		binary.Write(buf, binary.LittleEndian, n)
		for _, v := range t {
			binary.Write(buf, binary.LittleEndian, v)
		}
		binary.Write(buf, binary.LittleEndian, uint16(0))
	}
	return buf.Bytes()
}

func unitTriangleSTL() []byte {
	return buildBinarySTL([][3][3]float32{
		{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
	})
}

func TestLoadBinarySTLSingleTriangle(t *testing.T) {
	mesh, err := LoadSTLBytes(unitTriangleSTL())
	require.NoError(t, err)
	assert.Equal(t, 1, mesh.NumTriangles())
	assert.Len(t, mesh.Vertices, 3)
}

func TestLoadBinarySTLDedupesSharedVertices(t *testing.T) {
	data := buildBinarySTL([][3][3]float32{
		{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		{{1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
	})
	mesh, err := LoadSTLBytes(data)
	require.NoError(t, err)
	assert.Equal(t, 2, mesh.NumTriangles())
	assert.Len(t, mesh.Vertices, 4, "the two shared vertices must be deduplicated")
}

func TestLoadEmptySTLFails(t *testing.T) {
	data := buildBinarySTL(nil)
	_, err := LoadSTLBytes(data)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindEmptyGeometry))
}

func TestLoadASCIISTL(t *testing.T) {
	src := `solid test
facet normal 0 0 1
  outer loop
    vertex 0 0 0
    vertex 1 0 0
    vertex 0 1 0
  endloop
endfacet
endsolid test
`
	mesh, err := loadASCIISTL([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, 1, mesh.NumTriangles())
}

func TestRoundTripSaveLoad(t *testing.T) {
	mesh, err := LoadSTLBytes(unitTriangleSTL())
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, writeBinarySTL(buf, mesh))

	reloaded, err := LoadSTLBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, mesh.NumTriangles(), reloaded.NumTriangles())
	for i, v := range mesh.Vertices {
		assert.InDelta(t, v.X, reloaded.Vertices[i].X, 1e-4)
		assert.InDelta(t, v.Y, reloaded.Vertices[i].Y, 1e-4)
		assert.InDelta(t, v.Z, reloaded.Vertices[i].Z, 1e-4)
	}
}

func TestQuantizeStability(t *testing.T) {
	a := quantize(v3.Vec{X: 1.0000001, Y: 2, Z: 3})
	b := quantize(v3.Vec{X: 1.0000002, Y: 2, Z: 3})
	assert.Equal(t, a, b, "coordinates within merge tolerance must quantize identically")
}
