// Package lattice generates the 2D hole-center arrays for each active
// cylinder family (spec §4.3) and picks which families are active from
// the Settings.Orientations string.
//
// Grounded on _grid_centers_xy / _start_aligned in
// backend/desolidify_engine/engine.py (original_source/). Centers are
// float32, matching the rest of the per-voxel pipeline (spec §3's Volume
// is float32); math32 (wired from soypat-gsdf, SPEC_FULL.md §B) supplies
// Mod so the centroid-alignment arithmetic never round-trips through
// float64.
package lattice

import (
	"github.com/chewxy/math32"

	"github.com/MASAGDT/desolidify-web/settings"
)

// centerEpsilon nudges the inclusive upper bound of a center-row arange so
// that a center landing exactly on umax isn't dropped by floating point
// rounding. The voxel sampling axes (built in perforate) deliberately do
// NOT carry this epsilon — see SPEC_FULL.md §D.1.
const centerEpsilon = 1e-6

// StartAligned returns the first row coordinate along one axis.
//
//   - align == min: starts exactly at aMin.
//   - align == centroid: starts at aMin + spacing/2 + ((anchor-aMin) mod
//     spacing), so the rows are locked to the anchor's projection onto this
//     axis, with the anchor lying midway between two adjacent rows.
func StartAligned(aMin, spacing, anchor float32, hasAnchor bool, align settings.Align) float32 {
	if align == settings.AlignCentroid {
		if !hasAnchor {
			return aMin + spacing*0.5
		}
		return aMin + spacing*0.5 + math32.Mod(anchor-aMin, spacing)
	}
	return aMin
}

// Axis returns the row coordinates along one axis: StartAligned, then
// every `spacing` after that up to (and including, within centerEpsilon)
// aMax.
func Axis(aMin, aMax, spacing, anchor float32, hasAnchor bool, align settings.Align) []float32 {
	start := StartAligned(aMin, spacing, anchor, hasAnchor, align)
	if spacing <= 0 {
		return nil
	}
	var out []float32
	limit := aMax + centerEpsilon
	for v := start; v <= limit; v += spacing {
		out = append(out, v)
	}
	return out
}

// Center2 is a hole center in a 2D plane orthogonal to its family's axis.
type Center2 struct {
	U, V float32
}

// Centers2D lays out a (possibly staggered) 2D grid of hole centers over
// [uMin,uMax] x [vMin,vMax]. Odd-indexed rows (0-based, along V) are
// shifted by +spacing/2 along U when stagger is set (spec §4.3).
func Centers2D(uMin, uMax, vMin, vMax, spacing float32, stagger bool, align settings.Align, anchorU, anchorV float32, hasAnchor bool) []Center2 {
	us := Axis(uMin, uMax, spacing, anchorU, hasAnchor, align)
	vs := Axis(vMin, vMax, spacing, anchorV, hasAnchor, align)
	if len(us) == 0 || len(vs) == 0 {
		return nil
	}
	centers := make([]Center2, 0, len(us)*len(vs))
	for vi, v := range vs {
		offset := float32(0)
		if stagger && len(vs) > 1 && vi%2 == 1 {
			offset = spacing * 0.5
		}
		for _, u := range us {
			centers = append(centers, Center2{U: u + offset, V: v})
		}
	}
	return centers
}

// Families describes which cylinder families are active, derived from
// Settings.Orientations by independent substring search (spec §4.3: "z,
// x, y, radial are independently selectable").
type Families struct {
	Z, X, Y, Radial bool
}

// ActiveFamilies inspects the lower-cased orientations string.
func ActiveFamilies(orientations string) Families {
	contains := func(s, sub string) bool {
		for i := 0; i+len(sub) <= len(s); i++ {
			if s[i:i+len(sub)] == sub {
				return true
			}
		}
		return false
	}
	lower := toLower(orientations)
	return Families{
		Z:      contains(lower, "z"),
		X:      contains(lower, "x"),
		Y:      contains(lower, "y"),
		Radial: contains(lower, "radial"),
	}
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
