package render

import (
	v3 "github.com/MASAGDT/desolidify-web/vec/v3"
)

// Volume is a dense (nz,ny,nx) grid of signed-distance samples, indexed
// row-major with x fastest-varying (spec §4.6: the slab composer fills
// one such volume one z-slice at a time before the isosurface extractor
// consumes it as a whole).
type Volume struct {
	Nx, Ny, Nz int
	Data       []float32 // Data[k*Ny*Nx + j*Nx + i]
	Origin     v3.Vec    // world position of voxel (0,0,0)
	Spacing    v3.Vec    // world-space step per voxel axis
}

// NewVolume allocates a zero-filled volume of the given shape.
func NewVolume(nx, ny, nz int, origin, spacing v3.Vec) *Volume {
	return &Volume{
		Nx: nx, Ny: ny, Nz: nz,
		Data:    make([]float32, nx*ny*nz),
		Origin:  origin,
		Spacing: spacing,
	}
}

// At returns the sample at voxel (i,j,k).
func (v *Volume) At(i, j, k int) float32 {
	return v.Data[k*v.Ny*v.Nx+j*v.Nx+i]
}

// Set stores the sample at voxel (i,j,k).
func (v *Volume) Set(i, j, k int, value float32) {
	v.Data[k*v.Ny*v.Nx+j*v.Nx+i] = value
}

// Slice returns the writable backing slice for z-layer k, shaped
// (ny*nx), so the slab composer can fill an entire layer in one pass
// (spec §4.6 "writes exactly one z-slice of the volume per iteration").
func (v *Volume) Slice(k int) []float32 {
	start := k * v.Ny * v.Nx
	return v.Data[start : start+v.Ny*v.Nx]
}

// WorldPoint maps a voxel index to its world-space coordinate.
func (v *Volume) WorldPoint(i, j, k int) v3.Vec {
	return v3.Vec{
		X: v.Origin.X + float64(i)*v.Spacing.X,
		Y: v.Origin.Y + float64(j)*v.Spacing.Y,
		Z: v.Origin.Z + float64(k)*v.Spacing.Z,
	}
}
