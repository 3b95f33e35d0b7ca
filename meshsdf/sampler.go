// Package meshsdf implements chunked, batched signed-distance queries
// against an input mesh (spec §4.5), backed by default by an
// github.com/dhconnelly/rtreego AABB tree (SPEC_FULL.md §B) — the "native
// spatial index" the Design Notes ask for (spec §9).
package meshsdf

import (
	v3 "github.com/MASAGDT/desolidify-web/vec/v3"
)

// Sampler evaluates the signed distance from a batch of points to a
// mesh's surface, one float per point. The sign convention here is the
// backend's native one (positive outside); the slab composer negates it
// (spec §4.6 step 1, SPEC_FULL.md §D.3).
//
// Any type satisfying this interface is an acceptable backend (spec §9,
// "Optional native spatial index... any implementation that returns
// signed distance for a batch of points satisfies the contract").
type Sampler interface {
	Query(pts []v3.Vec) ([]float32, error)
}

// ChunkedQuery queries sampler in chunks of at most chunkPts points, so
// that a slab with millions of points never holds more than one chunk's
// worth of query/result buffers live at once (spec §4.5). The returned
// slice has one entry per input point, in order.
func ChunkedQuery(sampler Sampler, pts []v3.Vec, chunkPts int) ([]float32, error) {
	if chunkPts <= 0 {
		chunkPts = len(pts)
	}
	out := make([]float32, len(pts))
	start := 0
	for start < len(pts) {
		end := start + chunkPts
		if end > len(pts) {
			end = len(pts)
		}
		// A fresh slice per chunk: the previous chunk's backing array is
		// eligible for GC as soon as this iteration moves on, bounding
		// the sampler's working set (spec §4.5 "Release the temporary
		// point buffer and collected results before the next chunk").
		chunk := make([]v3.Vec, end-start)
		copy(chunk, pts[start:end])

		result, err := sampler.Query(chunk)
		if err != nil {
			return nil, err
		}
		copy(out[start:end], result)
		start = end
	}
	return out, nil
}
