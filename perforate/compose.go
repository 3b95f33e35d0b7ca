package perforate

import (
	"github.com/chewxy/math32"

	"github.com/MASAGDT/desolidify-web/holesdf"
	"github.com/MASAGDT/desolidify-web/meshsdf"
	"github.com/MASAGDT/desolidify-web/render"
	"github.com/MASAGDT/desolidify-web/settings"
	v3 "github.com/MASAGDT/desolidify-web/vec/v3"
)

// composeSlab fills z-slice k of vol following the slab composer (spec
// §4.6): mesh-SDF sampling, hole-SDF lookup, shell-band gate, rim/base
// gate, then the CSG combine.
//
// Volume's own sign convention is the isosurface extractor's (negative
// inside, matching render.ExtractIsosurface's marching-cubes tables,
// SPEC_FULL.md §D.3): composeSlab computes the spec's positive-inside
// quantity internally and negates once, right before writing it into the
// volume's z-slice, so that convention flip happens in exactly one place.
func composeSlab(vol *render.Volume, k int, s settings.Settings, field *holesdf.Field, sampler meshsdf.Sampler, g grid) error {
	ny, nx := len(g.Ys), len(g.Xs)
	z := g.Zs[k]

	pts := make([]v3.Vec, 0, ny*nx)
	for _, y := range g.Ys {
		for _, x := range g.Xs {
			pts = append(pts, v3.Vec{X: float64(x), Y: float64(y), Z: float64(z)})
		}
	}
	raw, err := meshsdf.ChunkedQuery(sampler, pts, s.ChunkPts)
	if err != nil {
		return err
	}

	holeSlab := field.Slab(k, ny, nx)

	openBottomActive := s.OpenBottom > 0 && float64(z) <= float64(g.zBaseMin)+s.OpenBottom
	rimGated := float64(z) >= float64(g.zGateMax)-s.KeepTop || float64(z) <= float64(g.zGateMin)+s.KeepBottom

	dst := vol.Slice(k)
	idx := 0
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			sdfMesh := -raw[idx] // positive inside, per spec §4.6 step 1

			sdfHoles := holeSlab.Value(j, i)
			if s.ShellBand > 0 && !openBottomActive && math32.Abs(float32(sdfMesh)) > float32(s.ShellBand) {
				sdfHoles = holesInf
			}
			if rimGated {
				sdfHoles = holesInf
			}

			combined := sdfMesh
			if neg := -sdfHoles; neg > combined {
				combined = neg
			}
			dst[j*nx+i] = -combined // flip to the extractor's negative-inside convention
			idx++
		}
	}
	return nil
}

// holesInf mirrors holesdf's +inf sentinel for a disabled gate.
var holesInf = math32.Inf(1)
