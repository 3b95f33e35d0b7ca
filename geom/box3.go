// Package geom provides the mesh/triangle/bounding-box types shared by the
// mesh loader, the isosurface extractor, and the perforation driver.
package geom

import v3 "github.com/MASAGDT/desolidify-web/vec/v3"

// Box3 is an axis-aligned 3D bounding box.
type Box3 struct {
	Min, Max v3.Vec
}

// NewBox3Points returns the box enclosing min and max.
func NewBox3Points(min, max v3.Vec) Box3 {
	return Box3{Min: min, Max: max}
}

// Size returns the box's extent along each axis.
func (b Box3) Size() v3.Vec {
	return b.Max.Sub(b.Min)
}

// Center returns the box's midpoint.
func (b Box3) Center() v3.Vec {
	return b.Min.Add(b.Max).MulScalar(0.5)
}

// Extend returns a box that also encloses p.
func (b Box3) Extend(p v3.Vec) Box3 {
	return Box3{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box enclosing both b and o.
func (b Box3) Union(o Box3) Box3 {
	return Box3{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}
