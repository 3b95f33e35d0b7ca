// Package settings builds the typed Settings record the perforation engine
// runs from: a loose key->value parameter map is coerced, defaulted, and
// clamped into ranges, with web-thickness feasibility enforced last.
//
// Grounded on backend/desolidify_engine/settings.py of the original
// implementation (original_source/), translated from a dynamic dataclass
// into a typed Go struct with an explicit range table, the way the teacher
// turns every dynamic "shape" concept (sdf.SDF3, render.RenderFE) into a
// Go interface or struct rather than a dict.
package settings

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/MASAGDT/desolidify-web/errs"
)

// Align selects how the lattice is anchored against the mesh bounds.
type Align string

const (
	AlignMin      Align = "min"
	AlignCentroid Align = "centroid"
)

// Settings is the fully-resolved, clamped configuration for one
// perforation call. All length fields are millimeters.
type Settings struct {
	// Lattice.
	Spacing      float64 // mm between hole centers
	Radius       float64 // mm, cylinder radius
	Voxel        float64 // mm, isotropic sampling step
	Orientations string  // substring-matched family selector: any of z,x,y,radial
	Stagger      bool
	GridAlign    Align
	Density      float64 // optional target pi*r^2/s^2; 0 means "unset"
	HasDensity   bool

	// Gating.
	ShellBand  float64
	KeepTop    float64
	KeepBottom float64
	OpenBottom float64
	ZMin       float64
	HasZMin    bool
	ZMax       float64
	HasZMax    bool
	Padding    float64

	// Memory.
	ChunkPts int
	MemRetry bool
	MemDelay float64 // seconds
	MemTries int

	// Transient.
	FastFactor int // 0, 1 or 2
}

// Range is an inclusive closed range for one ranged parameter.
type Range struct {
	Min, Max float64
}

func (r Range) clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Ranges is the authoritative parameter range table (spec §6).
var Ranges = map[string]Range{
	"spacing":     {8.0, 30.0},
	"radius":      {1.2, 5.0},
	"voxel":       {0.2, 1.2},
	"shell_band":  {0.8, 2.0},
	"keep_top":    {-1.0, 4.0},
	"keep_bottom": {-1.0, 4.0},
	"open_bottom": {0.0, 6.0},
	"density":     {0.02, 0.35},
	"fast":        {0, 2},
	"chunk":       {100_000, 2_500_000},
	"mem_delay":   {5.0, 60.0},
	"mem_tries":   {1, 10},
}

// Defaults mirror the authoritative range table's Default column (spec §6),
// except FastFactor, which is left at 0 (full resolution); ForPreview is
// what raises it to at least 1.
func Defaults() Settings {
	return Settings{
		Spacing:      12.0,
		Radius:       2.5,
		Voxel:        0.3,
		Orientations: "radial",
		Stagger:      true,
		GridAlign:    AlignCentroid,
		ShellBand:    1.2,
		KeepTop:      1.0,
		KeepBottom:   0.5,
		OpenBottom:   1.5,
		Padding:      2.0,
		ChunkPts:     1_500_000,
		MemRetry:     true,
		MemDelay:     12.0,
		MemTries:     6,
	}
}

// coerceFloat casts v to float64 if it is any numeric type or a numeric
// string; otherwise returns (0, false). Spec §4.1: "non-numeric values
// fall back to default."
func coerceFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// coerceInt truncates toward zero (spec §4.1: "Integer keys truncate
// toward zero").
func coerceInt(v any) (int, bool) {
	f, ok := coerceFloat(v)
	if !ok {
		return 0, false
	}
	return int(math.Trunc(f)), true
}

// coerceBool uses Go truthiness for the types the parameter map can
// reasonably carry (spec §4.1: "Boolean keys use truthiness").
func coerceBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case float64:
		return x != 0, true
	case int:
		return x != 0, true
	case string:
		return x != "", true
	default:
		return false, false
	}
}

func floatOr(m map[string]any, key string, def float64) float64 {
	if v, ok := m[key]; ok {
		if f, ok := coerceFloat(v); ok {
			return f
		}
	}
	return def
}

func intOr(m map[string]any, key string, def int) int {
	if v, ok := m[key]; ok {
		if i, ok := coerceInt(v); ok {
			return i
		}
	}
	return def
}

func boolOr(m map[string]any, key string, def bool) bool {
	if v, ok := m[key]; ok {
		if b, ok := coerceBool(v); ok {
			return b
		}
	}
	return def
}

var orientationChoices = map[string]bool{
	"z": true, "x": true, "y": true, "xy": true, "xz": true, "yz": true,
	"xyz": true, "radial": true,
}

func stringOr(m map[string]any, key string, def string, choices map[string]bool) string {
	v, ok := m[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	if choices != nil && !choices[s] {
		return def
	}
	return s
}

var alignChoices = map[string]bool{"min": true, "centroid": true}

// FromParams constructs a Settings record from a loose key->value map.
// Unknown keys are ignored; missing keys take the documented defaults.
// The result is clamped before being returned, so FromParams always
// returns a feasible Settings (spec §4.1).
func FromParams(params map[string]any) (Settings, error) {
	d := Defaults()
	s := d

	s.Spacing = floatOr(params, "spacing", d.Spacing)
	s.Radius = floatOr(params, "radius", d.Radius)
	s.Voxel = floatOr(params, "voxel", d.Voxel)
	s.Orientations = stringOr(params, "orientations", d.Orientations, orientationChoices)
	s.Stagger = boolOr(params, "stagger", d.Stagger)
	s.Padding = floatOr(params, "padding", d.Padding)
	s.ShellBand = floatOr(params, "shell_band", d.ShellBand)
	s.KeepTop = floatOr(params, "keep_top", d.KeepTop)
	s.KeepBottom = floatOr(params, "keep_bottom", d.KeepBottom)
	s.OpenBottom = floatOr(params, "open_bottom", d.OpenBottom)
	align := stringOr(params, "grid_align", string(d.GridAlign), alignChoices)
	s.GridAlign = Align(align)
	s.ChunkPts = intOr(params, "chunk", d.ChunkPts)
	s.MemRetry = !boolOr(params, "mem_retry_off", false)
	s.MemDelay = floatOr(params, "mem_delay", d.MemDelay)
	s.MemTries = intOr(params, "mem_tries", d.MemTries)
	s.FastFactor = intOr(params, "fast", 0)

	if v, ok := params["density"]; ok {
		if f, ok := coerceFloat(v); ok {
			s.Density = f
			s.HasDensity = true
		} else if _, isMap := v.(map[string]any); isMap {
			return Settings{}, fmt.Errorf("settings: %w: density must be a scalar, got a map", errs.ErrInvalidParameter)
		}
	}
	if v, ok := params["zmin"]; ok {
		if f, ok := coerceFloat(v); ok {
			s.ZMin = f
			s.HasZMin = true
		}
	}
	if v, ok := params["zmax"]; ok {
		if f, ok := coerceFloat(v); ok {
			s.ZMax = f
			s.HasZMax = true
		}
	}

	if s.FastFactor > 0 {
		s.Voxel = math.Max(s.Voxel, 0.6+0.3*float64(s.FastFactor))
	}

	return Clamp(s), nil
}

// Clamp applies the range table (spec §6) and then the web-thickness
// feasibility rule (spec §3 invariant 2), re-clamping spacing afterward.
// Clamp is idempotent: Clamp(Clamp(s)) == Clamp(s).
func Clamp(s Settings) Settings {
	out := s
	out.Radius = Ranges["radius"].clamp(out.Radius)
	out.Voxel = Ranges["voxel"].clamp(out.Voxel)
	out.ShellBand = Ranges["shell_band"].clamp(out.ShellBand)
	out.KeepTop = Ranges["keep_top"].clamp(out.KeepTop)
	out.KeepBottom = Ranges["keep_bottom"].clamp(out.KeepBottom)
	out.OpenBottom = Ranges["open_bottom"].clamp(out.OpenBottom)
	if out.HasDensity {
		out.Density = Ranges["density"].clamp(out.Density)
	}
	out.ChunkPts = int(Ranges["chunk"].clamp(float64(out.ChunkPts)))
	out.MemDelay = Ranges["mem_delay"].clamp(out.MemDelay)
	out.MemTries = int(Ranges["mem_tries"].clamp(float64(out.MemTries)))
	out.FastFactor = int(Ranges["fast"].clamp(float64(out.FastFactor)))

	if out.FastFactor > 0 {
		out.Voxel = math.Max(out.Voxel, 0.6+0.3*float64(out.FastFactor))
		out.Voxel = Ranges["voxel"].clamp(out.Voxel)
	}

	// Feasibility: spacing >= 2*radius + shell_band (web thickness), then
	// re-clamp spacing to its own range.
	minSpacing := math.Max(out.Spacing, 2.0*out.Radius+out.ShellBand)
	out.Spacing = Ranges["spacing"].clamp(minSpacing)

	if out.GridAlign != AlignMin && out.GridAlign != AlignCentroid {
		out.GridAlign = AlignCentroid
	}
	return out
}

// ForPreview forces fast-preview behavior regardless of the caller's
// params.fast: fast_factor >= 1 (lifting the voxel floor), a smaller
// default chunk budget, and memory retry left on. Grounded on
// backend/desolidify_engine/preview.py's run_preview_mesh: "Preview path
// is a parameter tweak, not a second engine" (spec §9).
func ForPreview(params map[string]any) (Settings, error) {
	merged := make(map[string]any, len(params)+1)
	for k, v := range params {
		merged[k] = v
	}
	fast := intOr(params, "fast", 1)
	if fast < 1 {
		fast = 1
	}
	merged["fast"] = fast

	s, err := FromParams(merged)
	if err != nil {
		return Settings{}, err
	}
	s.ChunkPts = maxInt(300_000, 800_000/maxInt(1, s.FastFactor))
	s.MemRetry = true
	s.MemDelay = math.Max(6.0, s.MemDelay)
	return Clamp(s), nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
