package perforate

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/golang/mock/gomock"

	"github.com/MASAGDT/desolidify-web/errs"
	"github.com/MASAGDT/desolidify-web/geom"
	"github.com/MASAGDT/desolidify-web/meshsdf"
	"github.com/MASAGDT/desolidify-web/settings"
	v3 "github.com/MASAGDT/desolidify-web/vec/v3"
)

// cubeMesh returns a closed axis-aligned cube of the given side length,
// centered at the origin, as a 12-triangle mesh (S1's fixture geometry).
func cubeMesh(side float64) *geom.Mesh {
	h := side / 2
	v := []v3.Vec{
		{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h}, {X: h, Y: h, Z: -h}, {X: -h, Y: h, Z: -h},
		{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h}, {X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h},
	}
	faces := [][3]int{
		{0, 2, 1}, {0, 3, 2}, // bottom
		{4, 5, 6}, {4, 6, 7}, // top
		{0, 1, 5}, {0, 5, 4}, // -y
		{1, 2, 6}, {1, 6, 5}, // +x
		{2, 3, 7}, {2, 7, 6}, // +y
		{3, 0, 4}, {3, 4, 7}, // -x
	}
	return &geom.Mesh{Vertices: v, Faces: faces}
}

// cylinderMesh returns a closed upright N-sided prism approximating a
// cylinder of the given radius and height, centered on the Z axis with
// its base at z=0 (S2's fixture geometry for the radial family).
func cylinderMesh(radius, height float64, sides int) *geom.Mesh {
	m := geom.NewMesh()
	bottomCenter := len(m.Vertices)
	m.Vertices = append(m.Vertices, v3.Vec{X: 0, Y: 0, Z: 0})
	topCenter := len(m.Vertices)
	m.Vertices = append(m.Vertices, v3.Vec{X: 0, Y: 0, Z: height})

	bottomStart := len(m.Vertices)
	for i := 0; i < sides; i++ {
		a := 2 * math.Pi * float64(i) / float64(sides)
		m.Vertices = append(m.Vertices, v3.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a), Z: 0})
	}
	topStart := len(m.Vertices)
	for i := 0; i < sides; i++ {
		a := 2 * math.Pi * float64(i) / float64(sides)
		m.Vertices = append(m.Vertices, v3.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a), Z: height})
	}

	for i := 0; i < sides; i++ {
		j := (i + 1) % sides
		m.Faces = append(m.Faces, [3]int{bottomCenter, bottomStart + j, bottomStart + i})
		m.Faces = append(m.Faces, [3]int{topCenter, topStart + i, topStart + j})
		m.Faces = append(m.Faces, [3]int{bottomStart + i, bottomStart + j, topStart + j})
		m.Faces = append(m.Faces, [3]int{bottomStart + i, topStart + j, topStart + i})
	}
	return m
}

func cubeSettings() settings.Settings {
	s := settings.Defaults()
	s.Orientations = "z"
	s.Spacing = 8
	s.Radius = 1.2
	s.Voxel = 1.0
	s.Padding = 1.0
	s.MemRetry = false
	return settings.Clamp(s)
}

var _ = Describe("Perforate", func() {

	// S1: a cube mesh with a single Z-axis hole family perforates into a
	// non-empty, strictly-more-triangulated mesh, and the progress callback
	// is invoked once per z-slice, strictly increasing, ending at 1.0
	// (testable property 10).
	Describe("a cube mesh with a Z-axis hole lattice", func() {
		It("produces a perforated mesh with monotonically increasing progress", func() {
			mesh := cubeMesh(20)
			s := cubeSettings()

			var fracs []float64
			out, err := Perforate(mesh, Options{
				Settings: s,
				Progress: func(frac float64) bool {
					fracs = append(fracs, frac)
					return false
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(out).NotTo(BeNil())
			Expect(out.NumTriangles()).To(BeNumerically(">", mesh.NumTriangles()))

			Expect(fracs).NotTo(BeEmpty())
			Expect(fracs[len(fracs)-1]).To(BeNumerically("~", 1.0, 1e-9))
			for i := 1; i < len(fracs); i++ {
				Expect(fracs[i]).To(BeNumerically(">", fracs[i-1]))
			}
		})
	})

	// S2: a cylindrical mesh with the radial hole family active perforates
	// without error, exercising lattice.Centers2D's anchor-at-centroid
	// branch and holesdf's radialPerpSq/radialDzSq tables end to end.
	Describe("a cylinder mesh with the radial hole family", func() {
		It("produces a perforated mesh", func() {
			mesh := cylinderMesh(10, 30, 16)
			s := settings.Defaults()
			s.Orientations = "radial"
			s.Spacing = 10
			s.Radius = 1.5
			s.Voxel = 1.2
			s.Padding = 1.0
			s.MemRetry = false
			s = settings.Clamp(s)

			out, err := Perforate(mesh, Options{Settings: s})
			Expect(err).NotTo(HaveOccurred())
			Expect(out).NotTo(BeNil())
			Expect(out.NumTriangles()).To(BeNumerically(">", 0))
		})
	})

	// S5: a sampler that fails its first Query call with OutOfMemory must
	// be retried by the driver (chunk_pts shrunk, voxel coarsened, exactly
	// one mem_delay sleep), not surfaced to the caller.
	Describe("a sampler that reports OutOfMemory once", func() {
		It("retries and eventually succeeds", func() {
			ctrl := gomock.NewController(GinkgoT())
			defer ctrl.Finish()

			mesh := cubeMesh(20)
			s := cubeSettings()
			s.MemRetry = true
			s.MemTries = 3
			s.MemDelay = 5.0

			real, err := meshsdf.NewRTreeSampler(mesh)
			Expect(err).NotTo(HaveOccurred())

			mock := NewMockSampler(ctrl)
			first := mock.EXPECT().Query(gomock.Any()).
				Return(nil, errs.New(errs.KindOutOfMemory, "simulated allocator failure"))
			mock.EXPECT().Query(gomock.Any()).
				DoAndReturn(real.Query).
				AnyTimes().
				After(first)

			var sleeps []time.Duration
			out, err := Perforate(mesh, Options{
				Settings:   s,
				NewSampler: func(*geom.Mesh) (meshsdf.Sampler, error) { return mock, nil },
				Sleep:      func(d time.Duration) { sleeps = append(sleeps, d) },
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(out).NotTo(BeNil())
			Expect(sleeps).To(HaveLen(1))
			Expect(sleeps[0]).To(Equal(5 * time.Second))
		})
	})

	// Gives up once mem_tries attempts are exhausted, surfacing the
	// OutOfMemory error rather than retrying forever.
	Describe("a sampler that always reports OutOfMemory", func() {
		It("gives up after mem_tries attempts", func() {
			ctrl := gomock.NewController(GinkgoT())
			defer ctrl.Finish()

			mesh := cubeMesh(20)
			s := cubeSettings()
			s.MemRetry = true
			s.MemTries = 2
			s.MemDelay = 1.0

			mock := NewMockSampler(ctrl)
			mock.EXPECT().Query(gomock.Any()).
				Return(nil, errs.New(errs.KindOutOfMemory, "simulated allocator failure")).
				AnyTimes()

			_, err := Perforate(mesh, Options{
				Settings:   s,
				NewSampler: func(*geom.Mesh) (meshsdf.Sampler, error) { return mock, nil },
				Sleep:      func(time.Duration) {},
			})
			Expect(err).To(HaveOccurred())
			Expect(errs.Is(err, errs.KindOutOfMemory)).To(BeTrue())
		})
	})

	// S6: a progress callback that requests abort stops the driver at the
	// next slice boundary and surfaces Cancelled.
	Describe("a progress callback that requests cancellation", func() {
		It("stops after the first slice and reports Cancelled", func() {
			mesh := cubeMesh(20)
			s := cubeSettings()

			seen := 0
			_, err := Perforate(mesh, Options{
				Settings: s,
				Progress: func(float64) bool {
					seen++
					return true
				},
			})
			Expect(err).To(HaveOccurred())
			Expect(errs.Is(err, errs.KindCancelled)).To(BeTrue())
			Expect(seen).To(Equal(1))
		})
	})

	// A non-OutOfMemory sampler failure propagates on the first attempt
	// and never triggers the memory-retry backoff (spec §7 propagation
	// policy): retry is reserved strictly for KindOutOfMemory.
	Describe("a sampler that fails with a non-memory error", func() {
		It("propagates immediately without retrying", func() {
			ctrl := gomock.NewController(GinkgoT())
			defer ctrl.Finish()

			mesh := cubeMesh(20)
			s := cubeSettings()
			s.MemRetry = true
			s.MemTries = 5

			mock := NewMockSampler(ctrl)
			mock.EXPECT().Query(gomock.Any()).
				Return(nil, errs.New(errs.KindInternal, "unexpected failure")).
				AnyTimes()

			slept := 0
			_, err := Perforate(mesh, Options{
				Settings:   s,
				NewSampler: func(*geom.Mesh) (meshsdf.Sampler, error) { return mock, nil },
				Sleep:      func(time.Duration) { slept++ },
			})
			Expect(err).To(HaveOccurred())
			Expect(errs.Is(err, errs.KindInternal)).To(BeTrue())
			Expect(slept).To(Equal(0))
		})
	})

	// A voxel far larger than the padded bounding box collapses an axis to
	// fewer than 2 samples and must fail fast with GridTooSmall (§3
	// invariant 3), before any slice is sampled.
	Describe("a voxel size too coarse for the mesh", func() {
		It("fails with GridTooSmall", func() {
			mesh := cubeMesh(1)
			s := cubeSettings()
			s.Voxel = 1.2 // clamp range max; still too coarse for a 1mm cube + 0.1mm padding
			s.Padding = 0.1

			queried := false
			_, err := Perforate(mesh, Options{
				Settings: s,
				NewSampler: func(m *geom.Mesh) (meshsdf.Sampler, error) {
					real, err := meshsdf.NewRTreeSampler(m)
					return countingSampler{Sampler: real, queried: &queried}, err
				},
			})
			Expect(err).To(HaveOccurred())
			Expect(errs.Is(err, errs.KindGridTooSmall)).To(BeTrue())
			Expect(queried).To(BeFalse())
		})
	})
})

// countingSampler records whether Query was ever called.
type countingSampler struct {
	meshsdf.Sampler
	queried *bool
}

func (c countingSampler) Query(pts []v3.Vec) ([]float32, error) {
	*c.queried = true
	return c.Sampler.Query(pts)
}
