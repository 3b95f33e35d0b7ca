package perforate

import (
	"math"

	"github.com/MASAGDT/desolidify-web/errs"
	"github.com/MASAGDT/desolidify-web/geom"
	"github.com/MASAGDT/desolidify-web/settings"
	v3 "github.com/MASAGDT/desolidify-web/vec/v3"
)

// grid is the sampling grid for one perforation attempt: the voxel-axis
// coordinates and the effective z-gating bounds.
type grid struct {
	Xs, Ys, Zs []float32
	Centroid   [3]float32
	// zGateMin/zGateMax are the reference bounds for the rim/base gate
	// (spec §4.6 step 4); zBaseMin is the unpadded mesh bottom used by
	// the open-bottom window test (spec §4.6 step 3).
	zGateMin, zGateMax, zBaseMin float32
}

// buildGrid lays out the voxel axes over the mesh's padded bounding box
// (spec §4.2's loader hands off a mesh; the driver derives bounds+grid
// per §2's data flow). Fails GridTooSmall if any axis has fewer than 2
// samples (spec §3 invariant 3).
func buildGrid(mesh *geom.Mesh, s settings.Settings, voxel float64) (grid, error) {
	bounds := mesh.Bounds()
	centroid := mesh.Centroid()

	xMin := bounds.Min.X - s.Padding
	xMax := bounds.Max.X + s.Padding
	yMin := bounds.Min.Y - s.Padding
	yMax := bounds.Max.Y + s.Padding
	zMin := bounds.Min.Z - s.Padding
	zMax := bounds.Max.Z + s.Padding

	// An explicit zmin/zmax setting narrows the grid, it never widens it
	// past the padded mesh bounds (matches engine.py's max/min clamp
	// against the padded bmin/bmax).
	if s.HasZMin {
		zMin = math.Max(zMin, s.ZMin-s.Padding)
	}
	if s.HasZMax {
		zMax = math.Min(zMax, s.ZMax+s.Padding)
	}

	xs := axisVoxel(xMin, xMax, voxel)
	ys := axisVoxel(yMin, yMax, voxel)
	zs := axisVoxel(zMin, zMax, voxel)

	if len(xs) < 2 || len(ys) < 2 || len(zs) < 2 {
		return grid{}, errs.New(errs.KindGridTooSmall, "voxel grid has fewer than 2 samples on an axis")
	}

	return grid{
		Xs: xs, Ys: ys, Zs: zs,
		Centroid: [3]float32{float32(centroid.X), float32(centroid.Y), float32(centroid.Z)},
		// Rim/base gate reference is the (possibly overridden) grid's own
		// z bounds; the open-bottom window instead always measures from
		// the mesh's raw, un-overridden bottom (engine.py's bmin[2]).
		zGateMin: float32(zMin), zGateMax: float32(zMax),
		zBaseMin: float32(bounds.Min.Z),
	}, nil
}

// axisVoxel builds a half-open [min,max) voxel axis with no epsilon
// nudge, deliberately distinct from lattice.Axis's epsilon-nudged
// center rows (spec §9 open question, resolved in SPEC_FULL.md §D.1: the
// asymmetry is kept, not "fixed").
func axisVoxel(min, max, step float64) []float32 {
	if step <= 0 {
		return nil
	}
	var out []float32
	for v := min; v < max; v += step {
		out = append(out, float32(v))
	}
	return out
}

// worldOrigin is the world-space position of voxel (0,0,0), used by
// render.Volume.WorldPoint to recover sample coordinates during marching.
func worldOrigin(g grid) v3.Vec {
	return v3.Vec{X: float64(g.Xs[0]), Y: float64(g.Ys[0]), Z: float64(g.Zs[0])}
}

// worldSpacing is the uniform voxel edge length shared by all three axes.
func worldSpacing(voxel float64) v3.Vec {
	return v3.Vec{X: voxel, Y: voxel, Z: voxel}
}
