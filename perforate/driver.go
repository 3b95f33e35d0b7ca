// Package perforate wires the lattice, hole-SDF, mesh-SDF, slab composer
// and isosurface extractor into the single perforation operation (spec
// §4.8, §6), including the memory-resilient retry driver.
package perforate

import (
	"time"

	"github.com/MASAGDT/desolidify-web/errs"
	"github.com/MASAGDT/desolidify-web/geom"
	"github.com/MASAGDT/desolidify-web/holesdf"
	"github.com/MASAGDT/desolidify-web/meshsdf"
	"github.com/MASAGDT/desolidify-web/render"
	"github.com/MASAGDT/desolidify-web/settings"
)

// ProgressFunc is invoked once per completed z-slice with the fraction of
// slices done so far, in strictly increasing order, ending at exactly 1.0
// (spec §5, §8 property 10). Returning true requests cancellation; the
// driver stops at the next slice boundary and returns a Cancelled error.
type ProgressFunc func(frac float64) (abort bool)

// Options configures one Perforate call. NewSampler and Sleep default to
// the production backends; tests override them to inject determinism
// (SPEC_FULL.md §A.4).
type Options struct {
	Settings   settings.Settings
	Progress   ProgressFunc
	NewSampler func(mesh *geom.Mesh) (meshsdf.Sampler, error)
	Sleep      func(time.Duration)
}

func (o *Options) applyDefaults() {
	if o.NewSampler == nil {
		o.NewSampler = func(mesh *geom.Mesh) (meshsdf.Sampler, error) {
			return meshsdf.NewRTreeSampler(mesh)
		}
	}
	if o.Sleep == nil {
		o.Sleep = time.Sleep
	}
	if o.Progress == nil {
		o.Progress = func(float64) bool { return false }
	}
}

// Perforate is the single core entry point (spec §6): subtract the
// cylinder hole lattice from mesh according to settings, returning the
// resulting triangle mesh.
//
// The driver is the memory-resilient state machine of spec §4.8: Idle ->
// Attempt(i) -> (Success | Retry(i+1) if i<tries && mem_retry && err=OOM |
// Fatal). Every attempt rebuilds the grid and volume from scratch at the
// shrunk chunk size / coarsened voxel; the sampler (the expensive,
// memory-independent R-tree build) is built exactly once up front.
func Perforate(mesh *geom.Mesh, opts Options) (*geom.Mesh, error) {
	opts.applyDefaults()

	sampler, err := opts.NewSampler(mesh)
	if err != nil {
		return nil, errs.Wrap(errs.KindMissingDependency, "building mesh SDF sampler", err)
	}

	s := opts.Settings
	chunkPts := s.ChunkPts
	voxel := s.Voxel
	voxel0 := voxel

	for attempt := 1; ; attempt++ {
		attemptSettings := s
		attemptSettings.ChunkPts = chunkPts
		attemptSettings.Voxel = voxel

		out, attemptErr := perforateOnce(mesh, attemptSettings, sampler, opts.Progress)
		if attemptErr == nil {
			return out, nil
		}
		if !errs.Is(attemptErr, errs.KindOutOfMemory) {
			return nil, attemptErr
		}
		if !s.MemRetry || attempt >= s.MemTries {
			return nil, attemptErr
		}

		chunkPts = maxInt(250_000, roundInt(float64(chunkPts)*0.65))
		voxel = minFloat(maxFloat(voxel0, voxel*1.10), voxel0*1.8)
		opts.Sleep(time.Duration(s.MemDelay * float64(time.Second)))
	}
}

// perforateOnce is one driver attempt (spec §4.8's "_perforate_once"):
// build the grid, precompute the hole-SDF families, then fill and extract
// the volume one z-slice at a time.
func perforateOnce(mesh *geom.Mesh, s settings.Settings, sampler meshsdf.Sampler, progress ProgressFunc) (*geom.Mesh, error) {
	g, err := buildGrid(mesh, s, s.Voxel)
	if err != nil {
		return nil, err
	}

	field := holesdf.Build(holesdf.Params{
		Settings: s,
		Xs:       g.Xs, Ys: g.Ys, Zs: g.Zs,
		Centroid: g.Centroid,
	})

	origin := worldOrigin(g)
	spacing := worldSpacing(s.Voxel)
	vol := render.NewVolume(len(g.Xs), len(g.Ys), len(g.Zs), origin, spacing)

	nz := len(g.Zs)
	for k := 0; k < nz; k++ {
		if err := composeSlab(vol, k, s, field, sampler, g); err != nil {
			return nil, err
		}
		if abort := progress(float64(k+1) / float64(nz)); abort {
			return nil, errs.New(errs.KindCancelled, "cancelled via progress callback")
		}
	}

	out := render.ExtractIsosurface(vol)
	out.RemoveUnreferencedVertices()
	if err := out.FixNormals(); err != nil {
		// Non-fatal per spec §4.7: normal orientation is a best-effort
		// touch-up, not a correctness requirement of the extracted mesh.
		_ = err
	}
	return out, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func roundInt(v float64) int {
	return int(v + 0.5)
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
