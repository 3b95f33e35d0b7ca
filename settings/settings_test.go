package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampIdempotent(t *testing.T) {
	inputs := []map[string]any{
		{"spacing": 5.0, "radius": 3.0, "shell_band": 1.2},
		{"voxel": 0.3, "fast": 2},
		{"spacing": 40.0, "radius": 0.1, "chunk": 50},
		{},
	}
	for _, m := range inputs {
		s1, err := FromParams(m)
		require.NoError(t, err)
		s2 := Clamp(s1)
		assert.Equal(t, s1, s2, "clamp must be idempotent for %v", m)
	}
}

func TestRangeEnforcement(t *testing.T) {
	s, err := FromParams(map[string]any{
		"radius": 100.0, "voxel": -5.0, "shell_band": 99.0,
		"keep_top": -50.0, "keep_bottom": 50.0, "open_bottom": -1.0,
		"chunk": 10, "mem_delay": 1000.0, "mem_tries": 0,
	})
	require.NoError(t, err)
	assert.True(t, s.Radius >= Ranges["radius"].Min && s.Radius <= Ranges["radius"].Max)
	assert.True(t, s.Voxel >= Ranges["voxel"].Min && s.Voxel <= Ranges["voxel"].Max)
	assert.True(t, s.ShellBand >= Ranges["shell_band"].Min && s.ShellBand <= Ranges["shell_band"].Max)
	assert.True(t, float64(s.ChunkPts) >= Ranges["chunk"].Min)
	assert.True(t, s.MemDelay <= Ranges["mem_delay"].Max)
	assert.True(t, float64(s.MemTries) >= Ranges["mem_tries"].Min)
}

func TestFeasibility(t *testing.T) {
	s, err := FromParams(map[string]any{"spacing": 5.0, "radius": 3.0, "shell_band": 1.2})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, s.Spacing, 2.0*s.Radius+s.ShellBand-1e-9)
	// S3: spacing clamps up to the range minimum (8.0), since
	// 2*3+1.2=7.2 < 8.0.
	assert.InDelta(t, 8.0, s.Spacing, 1e-9)
}

func TestFastModeFloor(t *testing.T) {
	s, err := FromParams(map[string]any{"voxel": 0.3, "fast": 2})
	require.NoError(t, err)
	// S4: voxel floor is 0.6+0.3*2=1.2, which is also the range max.
	assert.InDelta(t, 1.2, s.Voxel, 1e-9)

	s1, err := FromParams(map[string]any{"voxel": 0.3, "fast": 1})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, s1.Voxel, 0.6+0.3*1-1e-9)
}

func TestUnknownKeysIgnored(t *testing.T) {
	s, err := FromParams(map[string]any{"totally_unknown_key": 42, "spacing": 10.0})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, s.Spacing, 1e-9)
}

func TestInvalidDensityMapFails(t *testing.T) {
	_, err := FromParams(map[string]any{"density": map[string]any{"bad": true}})
	require.Error(t, err)
}

func TestOrientationFallsBackOnInvalidEnum(t *testing.T) {
	s, err := FromParams(map[string]any{"orientations": "not-a-real-axis"})
	require.NoError(t, err)
	assert.Equal(t, Defaults().Orientations, s.Orientations)
}

func TestApplyPresetThenOverride(t *testing.T) {
	merged := ApplyPreset("Quick Radial — 2.5mm", map[string]any{"radius": 1.8})
	s, err := FromParams(merged)
	require.NoError(t, err)
	assert.InDelta(t, 1.8, s.Radius, 1e-9, "user override must win over preset")
	assert.Equal(t, "radial", s.Orientations)
}

func TestForPreviewForcesFastMode(t *testing.T) {
	s, err := ForPreview(map[string]any{"voxel": 0.3})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, s.FastFactor, 1)
	assert.LessOrEqual(t, s.ChunkPts, 800_000)
	assert.True(t, s.MemRetry)
}
