// Package meshio loads and saves the triangle-mesh container formats the
// perforation engine's core entry point accepts (spec §4.2, §6): STL
// (binary and ASCII) as the required baseline, and 3MF as a supplemental
// multi-object container format (SPEC_FULL.md §B).
//
// The STL reader/writer is grounded on
// other_examples/bcb59e14_ansipixels-trophy__models-stl.go.go's
// STLLoader, adapted from that package's own Mesh/MeshVertex type onto
// geom.Mesh (which has no per-vertex normal, since the perforation engine
// never needs shading normals — only face winding for the signed-distance
// backend).
package meshio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/MASAGDT/desolidify-web/errs"
	"github.com/MASAGDT/desolidify-web/geom"
	v3 "github.com/MASAGDT/desolidify-web/vec/v3"
)

// quantizedKey handles float precision issues when deduplicating STL
// vertices (each STL triangle repeats its vertices verbatim).
type quantizedKey struct {
	x, y, z int64
}

const mergeTolerance = 1e-6

func quantize(p v3.Vec) quantizedKey {
	scale := 1.0 / mergeTolerance
	return quantizedKey{
		x: int64(math.Round(p.X * scale)),
		y: int64(math.Round(p.Y * scale)),
		z: int64(math.Round(p.Z * scale)),
	}
}

// LoadSTLFile reads an STL file (binary or ASCII, auto-detected) from
// disk.
func LoadSTLFile(path string) (*geom.Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("meshio: read %s: %w", path, err)
	}
	return LoadSTLBytes(data)
}

// LoadSTLBytes parses STL from an in-memory buffer (spec §4.2: "Accepts a
// filesystem path or a byte buffer tagged with a format hint").
func LoadSTLBytes(data []byte) (*geom.Mesh, error) {
	var m *geom.Mesh
	var err error
	if isBinarySTL(data) {
		m, err = loadBinarySTL(data)
	} else {
		m, err = loadASCIISTL(data)
	}
	if err != nil {
		return nil, err
	}
	m.RemoveUnreferencedVertices()
	if m.NumTriangles() == 0 {
		return nil, errs.New(errs.KindEmptyGeometry, "STL contained no triangles")
	}
	return m, nil
}

func isBinarySTL(data []byte) bool {
	if len(data) < 84 {
		return false
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("solid")) {
		triCount := binary.LittleEndian.Uint32(data[80:84])
		expected := 84 + triCount*50
		return uint32(len(data)) == expected
	}
	return true
}

func readFloat32LE(data []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data))
}

func loadBinarySTL(data []byte) (*geom.Mesh, error) {
	if len(data) < 84 {
		return nil, errs.Wrap(errs.KindInternal, "binary STL too short", fmt.Errorf("%d bytes", len(data)))
	}
	triCount := binary.LittleEndian.Uint32(data[80:84])
	expected := 84 + triCount*50
	if uint32(len(data)) < expected {
		return nil, errs.New(errs.KindInternal, "binary STL truncated")
	}

	m := geom.NewMesh()
	vertexMap := make(map[quantizedKey]int)
	offset := 84
	for i := uint32(0); i < triCount; i++ {
		offset += 12 // skip stored normal; recomputed from winding if needed
		var faceVerts [3]int
		for v := 0; v < 3; v++ {
			pos := v3.Vec{
				X: float64(readFloat32LE(data[offset:])),
				Y: float64(readFloat32LE(data[offset+4:])),
				Z: float64(readFloat32LE(data[offset+8:])),
			}
			offset += 12
			faceVerts[v] = internVertex(m, vertexMap, pos)
		}
		offset += 2 // attribute byte count
		m.Faces = append(m.Faces, faceVerts)
	}
	return m, nil
}

func internVertex(m *geom.Mesh, vertexMap map[quantizedKey]int, pos v3.Vec) int {
	key := quantize(pos)
	if idx, ok := vertexMap[key]; ok {
		return idx
	}
	idx := len(m.Vertices)
	m.Vertices = append(m.Vertices, pos)
	vertexMap[key] = idx
	return idx
}

func loadASCIISTL(data []byte) (*geom.Mesh, error) {
	m := geom.NewMesh()
	vertexMap := make(map[quantizedKey]int)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	var faceVerts []int
	inFacet, inLoop := false, false

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch strings.ToLower(fields[0]) {
		case "facet":
			inFacet = true
			faceVerts = nil
		case "outer":
			if len(fields) >= 2 && strings.ToLower(fields[1]) == "loop" {
				inLoop = true
			}
		case "vertex":
			if !inFacet || !inLoop {
				return nil, fmt.Errorf("meshio: line %d: vertex outside facet/loop", lineNum)
			}
			if len(fields) < 4 {
				return nil, fmt.Errorf("meshio: line %d: vertex needs x y z", lineNum)
			}
			x, err1 := strconv.ParseFloat(fields[1], 64)
			y, err2 := strconv.ParseFloat(fields[2], 64)
			z, err3 := strconv.ParseFloat(fields[3], 64)
			if err1 != nil || err2 != nil || err3 != nil {
				return nil, fmt.Errorf("meshio: line %d: invalid vertex coordinates", lineNum)
			}
			faceVerts = append(faceVerts, internVertex(m, vertexMap, v3.Vec{X: x, Y: y, Z: z}))
		case "endloop":
			inLoop = false
		case "endfacet":
			if len(faceVerts) >= 3 {
				m.Faces = append(m.Faces, [3]int{faceVerts[0], faceVerts[1], faceVerts[2]})
			}
			inFacet = false
			faceVerts = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("meshio: scanning ASCII STL: %w", err)
	}
	return m, nil
}

// SaveSTLFile writes mesh as a binary STL file.
func SaveSTLFile(path string, mesh *geom.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("meshio: create %s: %w", path, err)
	}
	defer f.Close()
	return writeBinarySTL(f, mesh)
}

func writeBinarySTL(w io.Writer, mesh *geom.Mesh) error {
	bw := bufio.NewWriter(w)
	var header [80]byte
	copy(header[:], []byte("desolidify-web perforation output"))
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(mesh.NumTriangles())); err != nil {
		return err
	}
	for i := 0; i < mesh.NumTriangles(); i++ {
		t := mesh.Triangle(i)
		n := t.Normal()
		if l := n.Length(); l > 0 {
			n = n.DivScalar(l)
		}
		if err := writeVec32(bw, n); err != nil {
			return err
		}
		for _, v := range t.V {
			if err := writeVec32(bw, v); err != nil {
				return err
			}
		}
		if err := binary.Write(bw, binary.LittleEndian, uint16(0)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeVec32(w io.Writer, v v3.Vec) error {
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(float32(v.X)))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(float32(v.Y)))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(float32(v.Z)))
	_, err := w.Write(buf)
	return err
}
