package lattice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MASAGDT/desolidify-web/settings"
)

func TestLatticeDeterminism(t *testing.T) {
	c1 := Centers2D(0, 20, 0, 20, 12, true, settings.AlignCentroid, 10, 10, true)
	c2 := Centers2D(0, 20, 0, 20, 12, true, settings.AlignCentroid, 10, 10, true)
	require.Equal(t, c1, c2)
}

func TestStaggerOffset(t *testing.T) {
	centers := Centers2D(0, 100, 0, 100, 12, true, settings.AlignMin, 0, 0, false)
	us := Axis(0, 100, 12, 0, false, settings.AlignMin)
	require.True(t, len(us) > 0)
	// Group centers by V to find consecutive rows, then compare U offsets.
	byV := map[float32][]float32{}
	for _, c := range centers {
		byV[c.V] = append(byV[c.V], c.U)
	}
	assert.True(t, len(byV) >= 2)
	// Row 1 (odd index) should be offset by spacing/2 from row 0.
	row0U := byV[us[0]][0]
	row1U := byV[us[1]][0]
	assert.InDelta(t, 6.0, row1U-row0U, 1e-4)
}

func TestActiveFamilies(t *testing.T) {
	f := ActiveFamilies("XY")
	assert.True(t, f.X)
	assert.True(t, f.Y)
	assert.False(t, f.Z)
	assert.False(t, f.Radial)

	f2 := ActiveFamilies("radial")
	assert.True(t, f2.Radial)
	assert.False(t, f2.X)
	assert.False(t, f2.Y)
	assert.False(t, f2.Z)
}

func TestEmptyCentersWhenGridDegenerate(t *testing.T) {
	centers := Centers2D(0, 0, 0, 0, 0, false, settings.AlignMin, 0, 0, false)
	assert.Nil(t, centers)
}
