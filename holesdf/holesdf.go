// Package holesdf evaluates the analytic signed-distance field of the
// cylinder hole lattice, per family, over the 2D slabs the slab composer
// needs (spec §4.4).
//
// Composition across active families is an elementwise minimum, which is
// only an exact union-SDF outside all cylinders; inside overlaps it is an
// under-estimate (documented on Field, per SPEC_FULL.md §D.2 — this is
// adequate for the CSG max(mesh,-holes) formulation at level 0 and is not
// "fixed").
package holesdf

import (
	"github.com/chewxy/math32"

	"github.com/MASAGDT/desolidify-web/lattice"
	"github.com/MASAGDT/desolidify-web/settings"
)

var inf = math32.Inf(1)

// grid2D is a dense row-major (rows x cols) float32 grid.
type grid2D struct {
	rows, cols int
	data       []float32
}

func newGrid2D(rows, cols int, fill float32) grid2D {
	data := make([]float32, rows*cols)
	for i := range data {
		data[i] = fill
	}
	return grid2D{rows: rows, cols: cols, data: data}
}

func (g grid2D) at(r, c int) float32      { return g.data[r*g.cols+c] }
func (g grid2D) set(r, c int, v float32)  { g.data[r*g.cols+c] = v }
func (g grid2D) row(r int) []float32      { return g.data[r*g.cols : (r+1)*g.cols] }

// minCylSDF2D evaluates, for every point of the xs x ys grid, the minimum
// distance to the nearest cylinder surface among centers, minus radius.
// Mirrors _grid_min_cyl_sdf_xy in engine.py (original_source/). An empty
// center set contributes +inf everywhere.
func minCylSDF2D(us, vs []float32, centers []lattice.Center2, radius float32) grid2D {
	g := newGrid2D(len(vs), len(us), inf)
	if len(centers) == 0 {
		return g
	}
	for vi, v := range vs {
		rowOut := g.row(vi)
		for ui, u := range us {
			best := inf
			for _, c := range centers {
				du := u - c.U
				dv := v - c.V
				d := math32.Sqrt(du*du+dv*dv) - radius
				if d < best {
					best = d
				}
			}
			rowOut[ui] = best
		}
	}
	return g
}

// Field holds every active family's precomputed hole SDF data for one
// perforation call. All of it is computed once (the families don't
// depend on the mesh SDF) and is read-only for the rest of the call
// (spec §5 "Shared resources").
//
// The composed value (Slab, At) is the elementwise minimum over families:
// an exact union SDF outside all cylinders, but an under-estimate of the
// distance inside overlapping cylinders.
type Field struct {
	families lattice.Families
	radius   float32

	// Z family: independent of z, a single (ny,nx) slab.
	z grid2D
	// X family: d(y,z), one row of ny values per z index -> (nz,ny).
	x grid2D
	// Y family: d(x,z), one row of nx values per z index -> (nz,nx).
	y grid2D
	// Radial family: min squared perpendicular distance to any axis
	// line, over the (ny,nx) XY grid, plus one dz^2 per z index.
	radialPerpSq grid2D
	radialDzSq   []float32
}

// Params bundles the grid description needed to precompute all families.
type Params struct {
	Settings   settings.Settings
	Xs, Ys, Zs []float32  // voxel axis sample coordinates
	Centroid   [3]float32 // mesh centroid, (cx0, cy0, cz0)
}

// Build precomputes the hole SDF tables for every family named in
// p.Settings.Orientations (spec §4.4).
func Build(p Params) *Field {
	fam := lattice.ActiveFamilies(p.Settings.Orientations)
	spacing := float32(p.Settings.Spacing)
	radius := float32(p.Settings.Radius)
	align := p.Settings.GridAlign
	f := &Field{families: fam, radius: radius}

	xMin, xMax := axisRange(p.Xs)
	yMin, yMax := axisRange(p.Ys)
	zMin, zMax := axisRange(p.Zs)

	if fam.Z {
		centers := lattice.Centers2D(xMin, xMax, yMin, yMax, spacing, p.Settings.Stagger,
			align, p.Centroid[0], p.Centroid[1], true)
		f.z = minCylSDF2D(p.Xs, p.Ys, centers, radius)
	}
	if fam.X {
		centers := lattice.Centers2D(yMin, yMax, zMin, zMax, spacing, p.Settings.Stagger,
			settings.AlignMin, 0, 0, false)
		f.x = minCylSDF2D(p.Ys, p.Zs, centers, radius)
	}
	if fam.Y {
		centers := lattice.Centers2D(xMin, xMax, zMin, zMax, spacing, p.Settings.Stagger,
			settings.AlignMin, 0, 0, false)
		f.y = minCylSDF2D(p.Xs, p.Zs, centers, radius)
	}
	if fam.Radial {
		centers := lattice.Centers2D(xMin, xMax, yMin, yMax, spacing, p.Settings.Stagger,
			align, p.Centroid[0], p.Centroid[1], true)
		f.radialPerpSq = radialPerpSqGrid(p.Xs, p.Ys, centers, p.Centroid[0], p.Centroid[1])

		zStart := lattice.StartAligned(zMin, spacing, p.Centroid[2], true, align)
		var rows []float32
		for v := zStart; v <= zMax+1e-6; v += spacing {
			rows = append(rows, v)
		}
		if len(rows) == 0 {
			rows = []float32{zStart}
		}
		f.radialDzSq = make([]float32, len(p.Zs))
		for i, z := range p.Zs {
			best := inf
			for _, r := range rows {
				dz := z - r
				if sq := dz * dz; sq < best {
					best = sq
				}
			}
			f.radialDzSq[i] = best
		}
	}
	return f
}

func axisRange(axis []float32) (min, max float32) {
	if len(axis) == 0 {
		return 0, 0
	}
	return axis[0], axis[len(axis)-1]
}

// radialPerpSqGrid computes, for every (x,y) grid point, the minimum
// squared perpendicular distance to any radial axis line. Each axis line
// passes through (cx0,cy0) with direction given by the unit vector from
// centroid to its lattice center (spec §4.4).
func radialPerpSqGrid(xs, ys []float32, centers []lattice.Center2, cx0, cy0 float32) grid2D {
	g := newGrid2D(len(ys), len(xs), inf)
	if len(centers) == 0 {
		return g
	}
	type axis struct{ vx, vy float32 }
	axes := make([]axis, len(centers))
	for i, c := range centers {
		vx, vy := c.U-cx0, c.V-cy0
		norm := math32.Sqrt(vx*vx + vy*vy)
		if norm == 0 {
			norm = 1
		}
		axes[i] = axis{vx: vx / norm, vy: vy / norm}
	}
	for yi, y := range ys {
		rowOut := g.row(yi)
		for xi, x := range xs {
			best := inf
			for i, c := range centers {
				dx := x - c.U
				dy := y - c.V
				perp := math32.Abs(dx*axes[i].vy - dy*axes[i].vx)
				if sq := perp * perp; sq < best {
					best = sq
				}
			}
			rowOut[xi] = best
		}
	}
	return g
}

// Slab returns the composed hole SDF for z-slice k as a (ny,nx) grid: the
// elementwise minimum across every active family's contribution at that
// slice (spec §4.4 "Composition across families").
func (f *Field) Slab(k, ny, nx int) grid2D {
	out := newGrid2D(ny, nx, inf)
	if f.families.Z {
		for j := 0; j < ny; j++ {
			src := f.z.row(j)
			dst := out.row(j)
			for i := 0; i < nx; i++ {
				if src[i] < dst[i] {
					dst[i] = src[i]
				}
			}
		}
	}
	if f.families.X {
		xRow := f.x.row(k) // ny values, broadcast across every column
		for j := 0; j < ny; j++ {
			v := xRow[j]
			dst := out.row(j)
			for i := 0; i < nx; i++ {
				if v < dst[i] {
					dst[i] = v
				}
			}
		}
	}
	if f.families.Y {
		yRow := f.y.row(k) // nx values, broadcast down every row
		for j := 0; j < ny; j++ {
			dst := out.row(j)
			for i := 0; i < nx; i++ {
				if yRow[i] < dst[i] {
					dst[i] = yRow[i]
				}
			}
		}
	}
	if f.families.Radial {
		dzSq := f.radialDzSq[k]
		for j := 0; j < ny; j++ {
			perpRow := f.radialPerpSq.row(j)
			dst := out.row(j)
			for i := 0; i < nx; i++ {
				v := math32.Sqrt(perpRow[i]+dzSq) - f.radius
				if v < dst[i] {
					dst[i] = v
				}
			}
		}
	}
	return out
}

// At returns the composed hole SDF value at a single (j,i) grid point of
// slice k. It builds the whole slab and reads one element from it.
func (f *Field) At(k, j, i int, ny, nx int) float32 {
	return f.Slab(k, ny, nx).at(j, i)
}

// Row exposes a grid2D's row for test assertions.
func (g grid2D) Row(r int) []float32 { return g.row(r) }

// RowsCols exposes grid2D's shape for test assertions.
func (g grid2D) RowsCols() (int, int) { return g.rows, g.cols }

// Value reads a grid2D element (exported for the slab composer in
// perforate, and used by this package's tests).
func (g grid2D) Value(r, c int) float32 { return g.at(r, c) }

// Grid2D is the exported alias of grid2D, returned by Field.Slab.
type Grid2D = grid2D
