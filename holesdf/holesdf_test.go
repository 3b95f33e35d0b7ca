package holesdf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MASAGDT/desolidify-web/settings"
)

func axisFloat32(min, max, step float32) []float32 {
	var out []float32
	for v := min; v < max; v += step {
		out = append(out, v)
	}
	return out
}

func TestUnionMonotonicity(t *testing.T) {
	xs := axisFloat32(0, 20, 1)
	ys := axisFloat32(0, 20, 1)
	zs := axisFloat32(0, 20, 1)

	base := settings.Defaults()
	base.Orientations = "z"
	base.Spacing = 12
	base.Radius = 2.5

	more := base
	more.Orientations = "zx"

	fBase := Build(Params{Settings: base, Xs: xs, Ys: ys, Zs: zs, Centroid: [3]float32{10, 10, 10}})
	fMore := Build(Params{Settings: more, Xs: xs, Ys: ys, Zs: zs, Centroid: [3]float32{10, 10, 10}})

	for k := 0; k < len(zs); k++ {
		slabBase := fBase.Slab(k, len(ys), len(xs))
		slabMore := fMore.Slab(k, len(ys), len(xs))
		for j := 0; j < len(ys); j++ {
			for i := 0; i < len(xs); i++ {
				assert.LessOrEqual(t, slabMore.Value(j, i), slabBase.Value(j, i)+1e-4,
					"adding a family must not increase sdf_holes at (k=%d,j=%d,i=%d)", k, j, i)
			}
		}
	}
}

func TestEmptyFamilyContributesInfinity(t *testing.T) {
	s := settings.Defaults()
	s.Orientations = "z"
	s.Spacing = 1000 // so no centers fall in a tiny grid
	xs := axisFloat32(0, 2, 1)
	ys := axisFloat32(0, 2, 1)
	zs := axisFloat32(0, 2, 1)
	f := Build(Params{Settings: s, Xs: xs, Ys: ys, Zs: zs, Centroid: [3]float32{1, 1, 1}})
	slab := f.Slab(0, len(ys), len(xs))
	rows, cols := slab.RowsCols()
	require.Equal(t, len(ys), rows)
	require.Equal(t, len(xs), cols)
	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			assert.True(t, math.IsInf(float64(slab.Value(j, i)), 1),
				"an empty center set must contribute +inf at (j=%d,i=%d)", j, i)
		}
	}
}
