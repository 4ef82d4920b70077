package viewcam

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func lookAtTestDomain(bounds Box3, minFov, maxFov, minRoll, maxRoll float32) *ProblemDomain {
	return NewLookAtDomain(LookAtDomainConfig{
		Bounds:    bounds,
		LookAtBox: Box3{Min: mgl32.Vec3{-100, -100, -100}, Max: mgl32.Vec3{100, 100, 100}},
		Dim:       LookAtDimWithFov,
		MinFov:    minFov,
		MaxFov:    maxFov,
		MinRoll:   minRoll,
		MaxRoll:   maxRoll,
	})
}

func TestLookAtDomainInDomainBounds(t *testing.T) {
	d := lookAtTestDomain(Box3{Min: mgl32.Vec3{-10, -10, -10}, Max: mgl32.Vec3{10, 10, 10}}, 20, 90, -10, 10)

	inside := []float32{0, 0, 0, 0, 0, 0, 0, 45}
	if !d.InDomain(inside, nil) {
		t.Errorf("expected in-bounds params to be in domain")
	}

	outsidePos := []float32{100, 0, 0, 0, 0, 0, 0, 45}
	if d.InDomain(outsidePos, nil) {
		t.Errorf("expected out-of-bounds position to be rejected")
	}

	outsideFov := []float32{0, 0, 0, 0, 0, 0, 0, 5}
	if d.InDomain(outsideFov, nil) {
		t.Errorf("expected out-of-range fov to be rejected")
	}
}

func TestLookAtDomainStagedDimensionality(t *testing.T) {
	bounds := Box3{Min: mgl32.Vec3{-10, -10, -10}, Max: mgl32.Vec3{10, 10, 10}}
	lookAtBox := Box3{Min: mgl32.Vec3{-2, -2, -2}, Max: mgl32.Vec3{2, 2, 2}}

	posOnly := NewLookAtDomain(LookAtDomainConfig{Bounds: bounds, Dim: LookAtDimPositionOnly, MinFov: 20, MaxFov: 90, MinRoll: -10, MaxRoll: 10})
	if posOnly.Dim() != 3 {
		t.Fatalf("expected dim 3, got %d", posOnly.Dim())
	}
	if !posOnly.InDomain([]float32{0, 0, 0}, nil) {
		t.Errorf("expected position-only params in bounds to be in domain")
	}

	withLookAt := NewLookAtDomain(LookAtDomainConfig{Bounds: bounds, LookAtBox: lookAtBox, Dim: LookAtDimWithLookAt, MinFov: 20, MaxFov: 90, MinRoll: -10, MaxRoll: 10})
	if withLookAt.Dim() != 6 {
		t.Fatalf("expected dim 6, got %d", withLookAt.Dim())
	}
	if withLookAt.InDomain([]float32{0, 0, 0, 100, 100, 100}, nil) {
		t.Errorf("expected look-at point outside its box to be rejected")
	}
	if !withLookAt.InDomain([]float32{0, 0, 0, 1, 1, 1}, nil) {
		t.Errorf("expected look-at point inside its box to be accepted")
	}

	withFov := NewLookAtDomain(LookAtDomainConfig{Bounds: bounds, LookAtBox: lookAtBox, Dim: LookAtDimWithFov, MinFov: 20, MaxFov: 90, MinRoll: -10, MaxRoll: 10})
	cam := withFov.Bind([]float32{0, 0, 0, 1, 1, 1, 5, 45}, mgl32.Vec3{})
	if cam.LookAt != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("expected Dim 8 to search the look-at point directly, got %v", cam.LookAt)
	}
	if cam.Roll != 5 || cam.Fov != 45 {
		t.Errorf("expected roll/fov taken from params, got roll=%f fov=%f", cam.Roll, cam.Fov)
	}

	posOnlyCam := posOnly.Bind([]float32{0, 0, 0}, mgl32.Vec3{3, 3, 3})
	if posOnlyCam.LookAt != (mgl32.Vec3{3, 3, 3}) {
		t.Errorf("expected Dim 3 to fall back to the supplied look-at point, got %v", posOnlyCam.LookAt)
	}
}

func TestOrbitDomainBindAndInDomain(t *testing.T) {
	pivot := mgl32.Vec3{1, 2, 3}
	d := NewOrbitDomain(pivot, 2, 10, -80, 80, 20, 90, -10, 10)

	params := []float32{0, 0, 5, 45, 0}
	if !d.InDomain(params, nil) {
		t.Errorf("expected valid orbit params to be in domain")
	}
	cam := d.Bind(params, mgl32.Vec3{})
	if cam.LookAt != pivot {
		t.Errorf("orbit camera should always look at its pivot, got %v", cam.LookAt)
	}
	if got := cam.Position.Sub(pivot).Len(); absf(got-5) > 1e-3 {
		t.Errorf("expected camera at distance 5 from pivot, got %f", got)
	}

	tooFar := []float32{0, 0, 50, 45, 0}
	if d.InDomain(tooFar, nil) {
		t.Errorf("expected out-of-range distance to be rejected")
	}
}

func TestDomainRandomViewpointStaysInBounds(t *testing.T) {
	d := lookAtTestDomain(Box3{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}, 30, 60, -5, 5)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		params := d.RandomViewpoint(rng)
		if !d.InDomain(params, nil) {
			t.Fatalf("random viewpoint %v not in domain", params)
		}
	}
}

func TestDomainMinClearanceRejectsOverlap(t *testing.T) {
	d := lookAtTestDomain(Box3{Min: mgl32.Vec3{-10, -10, -10}, Max: mgl32.Vec3{10, 10, 10}}, 20, 90, -10, 10)
	d.MinClearance = 1
	d.ClearanceLayerMask = 1

	oracle := &fakeClearanceOracle{blocked: true}
	params := []float32{0, 0, 0, 0, 0, 0, 0, 45}
	if d.InDomain(params, oracle) {
		t.Errorf("expected clearance overlap to reject the candidate")
	}

	oracle.blocked = false
	if !d.InDomain(params, oracle) {
		t.Errorf("expected no overlap to admit the candidate")
	}
}

type fakeClearanceOracle struct {
	fakeOracle
	blocked bool
}

func (f *fakeClearanceOracle) SphereOverlap(center mgl32.Vec3, radius float32, layerMask uint32) bool {
	return f.blocked
}
